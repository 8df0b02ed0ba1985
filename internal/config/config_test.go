package config

import (
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	p := Default()
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if p.NumTrucks != 8 || p.TruckCapacityKg != 20000 {
		t.Fatalf("fleet defaults: %+v", p)
	}
	if p.FuelConsumptionLPer100Km != 30.0 || p.FuelPriceEURPerL != 1.50 {
		t.Fatalf("fuel defaults: %+v", p)
	}
	if p.DriverWageEURPerHour != 35.0 || p.AvgSpeedKmh != 80.0 {
		t.Fatalf("driver defaults: %+v", p)
	}
	if p.TollRatePerKm != 0.25 || p.FixedCostPerLeg != 500.0 {
		t.Fatalf("road defaults: %+v", p)
	}
	if p.CO2GPerKmPerTruck != 850.0 || p.AirFraction != 0.0 {
		t.Fatalf("emissions defaults: %+v", p)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	p, err := Parse([]byte("num_trucks: 4\nfuel_price_eur_per_l: 2.0\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.NumTrucks != 4 || p.FuelPriceEURPerL != 2.0 {
		t.Fatalf("overrides not applied: %+v", p)
	}
	// Untouched keys keep their defaults.
	if p.TruckCapacityKg != 20000 || p.AvgSpeedKmh != 80.0 {
		t.Fatalf("defaults lost: %+v", p)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("num_trucks: 4\nwarp_factor: 9\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "warp_factor") {
		t.Fatalf("error should name the unknown key: %v", err)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	if _, err := Parse([]byte("num_trucks: 0\n")); err == nil {
		t.Fatal("expected error for zero trucks")
	}
	if _, err := Parse([]byte("air_fraction: 1.2\n")); err == nil {
		t.Fatal("expected error for air fraction above 1")
	}
}

func TestValidateRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"num_trucks", func(p *Params) { p.NumTrucks = 0 }},
		{"truck_capacity_kg", func(p *Params) { p.TruckCapacityKg = 0 }},
		{"fuel_consumption", func(p *Params) { p.FuelConsumptionLPer100Km = -1 }},
		{"fuel_price", func(p *Params) { p.FuelPriceEURPerL = -0.01 }},
		{"driver_wage", func(p *Params) { p.DriverWageEURPerHour = -5 }},
		{"avg_speed", func(p *Params) { p.AvgSpeedKmh = 0 }},
		{"toll_rate", func(p *Params) { p.TollRatePerKm = -0.1 }},
		{"fixed_cost", func(p *Params) { p.FixedCostPerLeg = -1 }},
		{"co2_factor", func(p *Params) { p.CO2GPerKmPerTruck = -1 }},
		{"air_fraction_low", func(p *Params) { p.AirFraction = -0.01 }},
		{"air_fraction_high", func(p *Params) { p.AirFraction = 1.01 }},
	}
	for _, tc := range cases {
		p := Default()
		tc.mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
