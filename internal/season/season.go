// Package season composes the geo, cost, emissions, and allocation models
// into per-season summaries.
package season

import (
	"errors"
	"fmt"

	"fleetops/internal/config"
	"fleetops/internal/cost"
	"fleetops/internal/emissions"
	"fleetops/internal/geo"
	"fleetops/internal/model"
	"fleetops/internal/opt"
)

// PricingMode selects how the truck count used for pricing is chosen.
// The allocator and the pricing models stay independently callable; the
// coupling between them is decided here, by the caller's mode.
type PricingMode string

const (
	// PricingFixed prices every leg with the configured fleet size.
	PricingFixed PricingMode = "fixed"
	// PricingAllocated prices with the smallest fleet that packs the cargo
	// manifest without overflow.
	PricingAllocated PricingMode = "allocated"
)

// DefaultMaxTrucks caps the allocated-mode fleet search.
const DefaultMaxTrucks = 20

// Options configures a season analysis.
type Options struct {
	Params    config.Params
	Cargo     []model.CargoItem
	Mode      PricingMode
	MaxTrucks int // cap for the allocated-mode search; 0 means DefaultMaxTrucks
}

// Analyze builds the legs for a season, packs the cargo manifest, prices
// every leg, and sums the totals. Zero legs (fewer than two races) is a
// degenerate valid case producing zero totals, not an error.
func Analyze(seasonYear int, races []model.RaceEvent, opts Options) (model.SeasonAnalysis, error) {
	p := opts.Params
	if err := p.Validate(); err != nil {
		return model.SeasonAnalysis{}, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = PricingFixed
	}
	if mode != PricingFixed && mode != PricingAllocated {
		return model.SeasonAnalysis{}, fmt.Errorf("season: unknown pricing mode %q", mode)
	}
	maxTrucks := opts.MaxTrucks
	if maxTrucks <= 0 {
		maxTrucks = DefaultMaxTrucks
	}

	legs := geo.BuildLegs(races, p.AvgSpeedKmh)

	// The allocation always reflects the configured fleet; allocated-mode
	// pricing additionally searches for the smallest overflow-free fleet.
	alloc, err := opt.Allocate(opts.Cargo, p.NumTrucks, p.TruckCapacityKg)
	if err != nil {
		return model.SeasonAnalysis{}, err
	}
	pricingTrucks := p.NumTrucks
	if mode == PricingAllocated {
		n, sized, err := opt.MinFleetSize(opts.Cargo, p.TruckCapacityKg, maxTrucks)
		switch {
		case err == nil:
			pricingTrucks = n
			alloc = sized
		case errors.Is(err, opt.ErrNoFeasibleFleet):
			// Keep the configured fleet and report its overflow.
		default:
			return model.SeasonAnalysis{}, err
		}
	}

	analysis := model.SeasonAnalysis{
		Season:        seasonYear,
		PricingTrucks: pricingTrucks,
		Legs:          make([]model.LegAnalysis, 0, len(legs)),
		Allocation:    alloc,
	}
	for _, leg := range legs {
		c, err := cost.LegCost(leg, pricingTrucks, p)
		if err != nil {
			return model.SeasonAnalysis{}, err
		}
		e, err := emissions.LegEmissions(leg, pricingTrucks, p)
		if err != nil {
			return model.SeasonAnalysis{}, err
		}
		analysis.Legs = append(analysis.Legs, model.LegAnalysis{
			Leg:       leg,
			NumTrucks: pricingTrucks,
			Cost:      c,
			Emissions: e,
		})
		analysis.TotalDistanceKm += leg.DistanceKm
		analysis.TotalTravelHours += leg.TravelHours
		analysis.TotalCost = analysis.TotalCost.Add(c)
		analysis.TotalEmissions.CO2eKg += e.CO2eKg
	}
	return analysis, nil
}
