package emissions

import (
	"math"
	"testing"

	"fleetops/internal/config"
	"fleetops/internal/model"
)

func TestLegEmissionsDefaults(t *testing.T) {
	p := config.Default()
	// 500 km x 850 g/km x 8 trucks = 3_400_000 g = 3400 kg
	e, err := LegEmissions(model.Leg{DistanceKm: 500}, 8, p)
	if err != nil {
		t.Fatalf("LegEmissions: %v", err)
	}
	if math.Abs(e.CO2eKg-3400) > 1e-6 {
		t.Fatalf("CO2e: got %.3f, want 3400", e.CO2eKg)
	}
}

func TestLegEmissionsAirFraction(t *testing.T) {
	p := config.Default()
	p.AirFraction = 0.5
	e, err := LegEmissions(model.Leg{DistanceKm: 100}, 2, p)
	if err != nil {
		t.Fatalf("LegEmissions: %v", err)
	}
	want := 100 * 850.0 * 2 * 1.5 / 1000.0
	if math.Abs(e.CO2eKg-want) > 1e-9 {
		t.Fatalf("CO2e with air fraction: got %g, want %g", e.CO2eKg, want)
	}
}

func TestLegEmissionsValidation(t *testing.T) {
	p := config.Default()
	if _, err := LegEmissions(model.Leg{DistanceKm: 100}, 0, p); err == nil {
		t.Fatal("expected error for zero trucks")
	}
	if _, err := LegEmissions(model.Leg{DistanceKm: -5}, 1, p); err == nil {
		t.Fatal("expected error for negative distance")
	}
	bad := p
	bad.AirFraction = 1.5
	if _, err := LegEmissions(model.Leg{DistanceKm: 100}, 1, bad); err == nil {
		t.Fatal("expected error for air fraction above 1")
	}
	bad.AirFraction = -0.1
	if _, err := LegEmissions(model.Leg{DistanceKm: 100}, 1, bad); err == nil {
		t.Fatal("expected error for negative air fraction")
	}
}

func TestSeasonEmissionsSum(t *testing.T) {
	p := config.Default()
	legs := []model.Leg{{DistanceKm: 100}, {DistanceKm: 200}, {DistanceKm: 300}}
	total, err := SeasonEmissions(legs, 3, p)
	if err != nil {
		t.Fatalf("SeasonEmissions: %v", err)
	}
	want := 600 * 850.0 * 3 / 1000.0
	if math.Abs(total.CO2eKg-want) > 1e-9 {
		t.Fatalf("season CO2e: got %g, want %g", total.CO2eKg, want)
	}
}

func TestPerKm(t *testing.T) {
	e := model.EmissionsResult{CO2eKg: 340}
	if got := PerKm(e, 100); math.Abs(got-3.4) > 1e-9 {
		t.Fatalf("per km: got %g", got)
	}
	if got := PerKm(e, 0); got != 0 {
		t.Fatalf("zero distance: got %g", got)
	}
}

func TestOffsetCost(t *testing.T) {
	e := model.EmissionsResult{CO2eKg: 3400}
	// 3.4 tonnes at 25 EUR/tonne
	if got := OffsetCost(e, 25); math.Abs(got-85) > 1e-9 {
		t.Fatalf("offset cost: got %g, want 85", got)
	}
}
