// Package config holds the recognized model parameters and their defaults.
package config

import (
	"bytes"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Params enumerates every recognized tuning parameter. Unknown keys in a
// params file are rejected at load time rather than silently accepted.
type Params struct {
	NumTrucks                int     `yaml:"num_trucks" json:"numTrucks"`
	TruckCapacityKg          float64 `yaml:"truck_capacity_kg" json:"truckCapacityKg"`
	FuelConsumptionLPer100Km float64 `yaml:"fuel_consumption_l_per_100km" json:"fuelConsumptionLPer100Km"`
	FuelPriceEURPerL         float64 `yaml:"fuel_price_eur_per_l" json:"fuelPriceEurPerL"`
	DriverWageEURPerHour     float64 `yaml:"driver_wage_eur_per_hour" json:"driverWageEurPerHour"`
	AvgSpeedKmh              float64 `yaml:"avg_speed_kmh" json:"avgSpeedKmh"`
	TollRatePerKm            float64 `yaml:"toll_rate_per_km" json:"tollRatePerKm"`
	FixedCostPerLeg          float64 `yaml:"fixed_cost_per_leg" json:"fixedCostPerLeg"`
	CO2GPerKmPerTruck        float64 `yaml:"co2_g_per_km_per_truck" json:"co2GPerKmPerTruck"`
	AirFraction              float64 `yaml:"air_fraction" json:"airFraction"`
}

// Default returns the documented defaults for every parameter.
func Default() Params {
	return Params{
		NumTrucks:                8,
		TruckCapacityKg:          20000,
		FuelConsumptionLPer100Km: 30.0,
		FuelPriceEURPerL:         1.50,
		DriverWageEURPerHour:     35.0,
		AvgSpeedKmh:              80.0,
		TollRatePerKm:            0.25,
		FixedCostPerLeg:          500.0,
		CO2GPerKmPerTruck:        850.0,
		AirFraction:              0.0,
	}
}

// Load reads a YAML params file over the defaults. Keys not declared on
// Params fail the load.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes over the defaults, rejecting unknown fields.
func Parse(data []byte) (Params, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Params{}, fmt.Errorf("config: parse params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks every parameter against its legal range. Invalid values
// are rejected, never clamped.
func (p Params) Validate() error {
	if p.NumTrucks < 1 {
		return fmt.Errorf("config: num_trucks must be >= 1, got %d", p.NumTrucks)
	}
	if p.TruckCapacityKg <= 0 {
		return fmt.Errorf("config: truck_capacity_kg must be > 0, got %g", p.TruckCapacityKg)
	}
	if p.FuelConsumptionLPer100Km < 0 {
		return fmt.Errorf("config: fuel_consumption_l_per_100km must be >= 0, got %g", p.FuelConsumptionLPer100Km)
	}
	if p.FuelPriceEURPerL < 0 {
		return fmt.Errorf("config: fuel_price_eur_per_l must be >= 0, got %g", p.FuelPriceEURPerL)
	}
	if p.DriverWageEURPerHour < 0 {
		return fmt.Errorf("config: driver_wage_eur_per_hour must be >= 0, got %g", p.DriverWageEURPerHour)
	}
	if p.AvgSpeedKmh <= 0 {
		return fmt.Errorf("config: avg_speed_kmh must be > 0, got %g", p.AvgSpeedKmh)
	}
	if p.TollRatePerKm < 0 {
		return fmt.Errorf("config: toll_rate_per_km must be >= 0, got %g", p.TollRatePerKm)
	}
	if p.FixedCostPerLeg < 0 {
		return fmt.Errorf("config: fixed_cost_per_leg must be >= 0, got %g", p.FixedCostPerLeg)
	}
	if p.CO2GPerKmPerTruck < 0 {
		return fmt.Errorf("config: co2_g_per_km_per_truck must be >= 0, got %g", p.CO2GPerKmPerTruck)
	}
	if p.AirFraction < 0 || p.AirFraction > 1 {
		return fmt.Errorf("config: air_fraction must be within [0,1], got %g", p.AirFraction)
	}
	return nil
}
