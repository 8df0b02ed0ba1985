// Package cost prices travel legs for a truck fleet.
package cost

import (
	"fmt"
	"math"

	"fleetops/internal/config"
	"fleetops/internal/model"
)

// Trucks run with two drivers working in shifts.
const driversPerTruck = 2

// LegCost computes the four-component cost of moving numTrucks over a leg.
// The fixed component is flat per leg, independent of the truck count.
func LegCost(leg model.Leg, numTrucks int, p config.Params) (model.CostBreakdown, error) {
	if numTrucks < 1 {
		return model.CostBreakdown{}, fmt.Errorf("cost: numTrucks must be >= 1, got %d", numTrucks)
	}
	if err := p.Validate(); err != nil {
		return model.CostBreakdown{}, err
	}
	if leg.DistanceKm < 0 {
		return model.CostBreakdown{}, fmt.Errorf("cost: leg distance must be >= 0, got %g", leg.DistanceKm)
	}

	trucks := float64(numTrucks)
	fuel := leg.DistanceKm * (p.FuelConsumptionLPer100Km / 100.0) * p.FuelPriceEURPerL * trucks
	labor := leg.TravelHours * p.DriverWageEURPerHour * driversPerTruck * trucks
	toll := leg.DistanceKm * p.TollRatePerKm * trucks
	fixed := p.FixedCostPerLeg

	return model.CostBreakdown{
		FuelEUR:  fuel,
		LaborEUR: labor,
		TollEUR:  toll,
		FixedEUR: fixed,
		TotalEUR: fuel + labor + toll + fixed,
	}, nil
}

// SeasonCost sums leg costs component-wise over all legs using a single
// truck count. Zero legs yields a zero breakdown.
func SeasonCost(legs []model.Leg, numTrucks int, p config.Params) (model.CostBreakdown, error) {
	var total model.CostBreakdown
	for _, leg := range legs {
		c, err := LegCost(leg, numTrucks, p)
		if err != nil {
			return model.CostBreakdown{}, err
		}
		total = total.Add(c)
	}
	return total, nil
}

// PerKm returns total cost per kilometer, zero for a zero distance.
func PerKm(c model.CostBreakdown, distanceKm float64) float64 {
	if distanceKm == 0 {
		return 0
	}
	return c.TotalEUR / distanceKm
}

// CompareScenarios prices a leg for each candidate truck count.
func CompareScenarios(leg model.Leg, truckCounts []int, p config.Params) (map[int]model.CostBreakdown, error) {
	out := make(map[int]model.CostBreakdown, len(truckCounts))
	for _, n := range truckCounts {
		c, err := LegCost(leg, n, p)
		if err != nil {
			return nil, err
		}
		out[n] = c
	}
	return out, nil
}

// MinTrucksForFreight returns the smallest whole number of trucks whose
// combined capacity covers the freight weight, at least one.
func MinTrucksForFreight(freightKg, truckCapacityKg float64) (int, error) {
	if truckCapacityKg <= 0 {
		return 0, fmt.Errorf("cost: truck capacity must be > 0, got %g", truckCapacityKg)
	}
	if freightKg < 0 {
		return 0, fmt.Errorf("cost: freight weight must be >= 0, got %g", freightKg)
	}
	n := int(math.Ceil(freightKg / truckCapacityKg))
	if n < 1 {
		n = 1
	}
	return n, nil
}
