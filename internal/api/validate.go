package api

import (
	"fmt"

	"fleetops/internal/model"
	"fleetops/internal/season"
)

func validateAllocateRequest(req *model.AllocateRequest) error {
	if req.NumTrucks < 1 {
		return fmt.Errorf("numTrucks must be >= 1, got %d", req.NumTrucks)
	}
	if req.CapacityKg <= 0 {
		return fmt.Errorf("capacityKg must be > 0, got %g", req.CapacityKg)
	}
	return validateCargo(req.Cargo)
}

func validateFleetSizeRequest(req *model.FleetSizeRequest) error {
	if req.CapacityKg <= 0 {
		return fmt.Errorf("capacityKg must be > 0, got %g", req.CapacityKg)
	}
	if req.MaxTrucks < 0 {
		return fmt.Errorf("maxTrucks must be >= 0, got %d", req.MaxTrucks)
	}
	return validateCargo(req.Cargo)
}

func validateLegPriceRequest(req *model.LegPriceRequest) error {
	if req.NumTrucks < 1 {
		return fmt.Errorf("numTrucks must be >= 1, got %d", req.NumTrucks)
	}
	if req.Leg.DistanceKm < 0 {
		return fmt.Errorf("leg distance must be >= 0, got %g", req.Leg.DistanceKm)
	}
	if req.Leg.TravelHours < 0 {
		return fmt.Errorf("leg travel hours must be >= 0, got %g", req.Leg.TravelHours)
	}
	return nil
}

func validateAnalyzeRequest(req *model.AnalyzeRequest) error {
	switch season.PricingMode(req.PricingMode) {
	case "", season.PricingFixed, season.PricingAllocated:
	default:
		return fmt.Errorf("unknown pricingMode %q (allowed: fixed, allocated)", req.PricingMode)
	}
	if req.MaxTrucks < 0 {
		return fmt.Errorf("maxTrucks must be >= 0, got %d", req.MaxTrucks)
	}
	return validateCargo(req.Cargo)
}

func validateCargo(items []model.CargoItem) error {
	for _, it := range items {
		if it.WeightKg < 0 {
			return fmt.Errorf("cargo item %q has negative weight %g", it.Name, it.WeightKg)
		}
	}
	return nil
}

func validateRaces(races []model.RaceEvent) error {
	for i, r := range races {
		if !r.Circuit.Location.Valid() {
			return fmt.Errorf("race %d (%s): coordinate out of range (%g, %g)",
				i, r.Name, r.Circuit.Location.Lat, r.Circuit.Location.Lon)
		}
	}
	return nil
}
