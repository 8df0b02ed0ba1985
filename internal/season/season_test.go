package season

import (
	"math"
	"testing"

	"fleetops/internal/config"
	"fleetops/internal/model"
)

var testRaces = []model.RaceEvent{
	{Round: 1, Name: "Monaco GP", Circuit: model.Circuit{
		City: "Monte Carlo", Country: "Monaco",
		Location: model.Coordinate{Lat: 43.7347, Lon: 7.4206},
	}},
	{Round: 2, Name: "Spanish GP", Circuit: model.Circuit{
		City: "Barcelona", Country: "Spain",
		Location: model.Coordinate{Lat: 41.5700, Lon: 2.2611},
	}},
	{Round: 3, Name: "Hungarian GP", Circuit: model.Circuit{
		City: "Budapest", Country: "Hungary",
		Location: model.Coordinate{Lat: 47.5789, Lon: 19.2486},
	}},
}

func TestAnalyzeFixedMode(t *testing.T) {
	a, err := Analyze(2025, testRaces, Options{Params: config.Default()})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Season != 2025 {
		t.Fatalf("season: got %d", a.Season)
	}
	if len(a.Legs) != 2 {
		t.Fatalf("legs: got %d, want 2", len(a.Legs))
	}
	if a.PricingTrucks != config.Default().NumTrucks {
		t.Fatalf("pricing trucks: got %d, want configured %d", a.PricingTrucks, config.Default().NumTrucks)
	}
	var wantKm, wantHours float64
	var wantCost model.CostBreakdown
	var wantCO2 float64
	for _, la := range a.Legs {
		wantKm += la.Leg.DistanceKm
		wantHours += la.Leg.TravelHours
		wantCost = wantCost.Add(la.Cost)
		wantCO2 += la.Emissions.CO2eKg
	}
	if math.Abs(a.TotalDistanceKm-wantKm) > 1e-9 {
		t.Fatalf("total km: got %g, want %g", a.TotalDistanceKm, wantKm)
	}
	if math.Abs(a.TotalTravelHours-wantHours) > 1e-9 {
		t.Fatalf("total hours: got %g, want %g", a.TotalTravelHours, wantHours)
	}
	if math.Abs(a.TotalCost.TotalEUR-wantCost.TotalEUR) > 1e-9 {
		t.Fatalf("total cost: got %g, want %g", a.TotalCost.TotalEUR, wantCost.TotalEUR)
	}
	if math.Abs(a.TotalEmissions.CO2eKg-wantCO2) > 1e-9 {
		t.Fatalf("total CO2e: got %g, want %g", a.TotalEmissions.CO2eKg, wantCO2)
	}
}

func TestAnalyzeAllocatedMode(t *testing.T) {
	cargo := []model.CargoItem{
		{Name: "Garage", WeightKg: 8000},
		{Name: "Spares", WeightKg: 6000},
		{Name: "Hospitality", WeightKg: 7000},
	}
	a, err := Analyze(2025, testRaces, Options{
		Params: config.Default(),
		Cargo:  cargo,
		Mode:   PricingAllocated,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// 21000 kg over 20000 kg trucks needs 2 trucks.
	if a.PricingTrucks != 2 {
		t.Fatalf("allocated pricing trucks: got %d, want 2", a.PricingTrucks)
	}
	if len(a.Allocation.Trucks) != 2 || len(a.Allocation.Overflow) != 0 {
		t.Fatalf("allocation: %+v", a.Allocation)
	}
}

func TestAnalyzeAllocatedModeInfeasibleKeepsConfiguredFleet(t *testing.T) {
	cargo := []model.CargoItem{{Name: "Monolith", WeightKg: 25000}}
	a, err := Analyze(2025, testRaces, Options{
		Params: config.Default(),
		Cargo:  cargo,
		Mode:   PricingAllocated,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.PricingTrucks != config.Default().NumTrucks {
		t.Fatalf("infeasible should keep configured fleet: got %d", a.PricingTrucks)
	}
	if len(a.Allocation.Overflow) != 1 {
		t.Fatalf("overflow should be reported: %+v", a.Allocation)
	}
}

func TestAnalyzeEmptySeason(t *testing.T) {
	a, err := Analyze(2025, nil, Options{Params: config.Default()})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Legs) != 0 || a.TotalDistanceKm != 0 || a.TotalCost.TotalEUR != 0 || a.TotalEmissions.CO2eKg != 0 {
		t.Fatalf("empty season totals: %+v", a)
	}
}

func TestAnalyzeRejectsBadInputs(t *testing.T) {
	bad := config.Default()
	bad.NumTrucks = 0
	if _, err := Analyze(2025, testRaces, Options{Params: bad}); err == nil {
		t.Fatal("expected error for invalid params")
	}
	if _, err := Analyze(2025, testRaces, Options{Params: config.Default(), Mode: "turbo"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
