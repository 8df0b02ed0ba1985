// Package emissions estimates CO2-equivalent output for truck freight.
package emissions

import (
	"fmt"

	"fleetops/internal/config"
	"fleetops/internal/model"
)

// LegEmissions computes CO2e in kilograms for moving numTrucks over a leg.
// The air fraction is a placeholder for a future blended air/road factor; it
// must be within [0,1] and defaults to zero (pure road freight).
func LegEmissions(leg model.Leg, numTrucks int, p config.Params) (model.EmissionsResult, error) {
	if numTrucks < 1 {
		return model.EmissionsResult{}, fmt.Errorf("emissions: numTrucks must be >= 1, got %d", numTrucks)
	}
	if err := p.Validate(); err != nil {
		return model.EmissionsResult{}, err
	}
	if leg.DistanceKm < 0 {
		return model.EmissionsResult{}, fmt.Errorf("emissions: leg distance must be >= 0, got %g", leg.DistanceKm)
	}
	grams := leg.DistanceKm * p.CO2GPerKmPerTruck * float64(numTrucks) * (1 + p.AirFraction)
	return model.EmissionsResult{CO2eKg: grams / 1000.0}, nil
}

// SeasonEmissions sums leg emissions over all legs using a single truck
// count. Zero legs yields zero emissions.
func SeasonEmissions(legs []model.Leg, numTrucks int, p config.Params) (model.EmissionsResult, error) {
	var total model.EmissionsResult
	for _, leg := range legs {
		e, err := LegEmissions(leg, numTrucks, p)
		if err != nil {
			return model.EmissionsResult{}, err
		}
		total.CO2eKg += e.CO2eKg
	}
	return total, nil
}

// PerKm returns kg CO2e per kilometer, zero for a zero distance.
func PerKm(e model.EmissionsResult, distanceKm float64) float64 {
	if distanceKm == 0 {
		return 0
	}
	return e.CO2eKg / distanceKm
}

// OffsetCost prices carbon offsetting for the given emissions at a per-tonne
// rate.
func OffsetCost(e model.EmissionsResult, eurPerTonne float64) float64 {
	return (e.CO2eKg / 1000.0) * eurPerTonne
}
