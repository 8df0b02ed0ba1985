package opt

import (
	"errors"
	"fmt"
	"math"

	"fleetops/internal/config"
	"fleetops/internal/cost"
	"fleetops/internal/model"
)

// ErrNoFeasibleFleet is returned by MinFleetSize when no fleet within the
// cap packs the cargo without overflow, e.g. a single item heavier than the
// truck capacity.
var ErrNoFeasibleFleet = errors.New("opt: no fleet within cap packs cargo without overflow")

// EU driving-time rules used for compliance checks.
const (
	MaxDailyDriveHours      = 9.0
	MaxContinuousDriveHours = 4.5
	MinRestHours            = 11.0
	MaxWeeklyDriveHours     = 56.0
)

// MinFleetSize searches for the smallest fleet in [1, maxTrucks] that packs
// the cargo with empty overflow, running Allocate at each size. On success
// it returns the size and its allocation. If even maxTrucks overflows, it
// returns that last allocation alongside ErrNoFeasibleFleet so callers can
// report what could not be placed.
func MinFleetSize(cargo []model.CargoItem, capacityKg float64, maxTrucks int) (int, model.Allocation, error) {
	if maxTrucks < 1 {
		return 0, model.Allocation{}, fmt.Errorf("opt: maxTrucks must be >= 1, got %d", maxTrucks)
	}
	var last model.Allocation
	for n := 1; n <= maxTrucks; n++ {
		alloc, err := Allocate(cargo, n, capacityKg)
		if err != nil {
			return 0, model.Allocation{}, err
		}
		if len(alloc.Overflow) == 0 {
			return n, alloc, nil
		}
		last = alloc
	}
	return 0, last, ErrNoFeasibleFleet
}

// GreedyLegTrucks picks, for each leg, the truck count in [minTrucks,
// maxTrucks] with the lowest cost per truck. Returns one count per leg.
func GreedyLegTrucks(legs []model.Leg, minTrucks, maxTrucks int, p config.Params) ([]int, error) {
	if minTrucks < 1 {
		return nil, fmt.Errorf("opt: minTrucks must be >= 1, got %d", minTrucks)
	}
	if maxTrucks < minTrucks {
		return nil, fmt.Errorf("opt: maxTrucks %d below minTrucks %d", maxTrucks, minTrucks)
	}
	counts := make([]int, len(legs))
	for i, leg := range legs {
		bestCount := minTrucks
		bestPerTruck := math.MaxFloat64
		for n := minTrucks; n <= maxTrucks; n++ {
			c, err := cost.LegCost(leg, n, p)
			if err != nil {
				return nil, err
			}
			perTruck := c.TotalEUR / float64(n)
			if perTruck < bestPerTruck {
				bestPerTruck = perTruck
				bestCount = n
			}
		}
		counts[i] = bestCount
	}
	return counts, nil
}

// FleetPlan reports the outcome of distributing a fixed fleet across legs.
type FleetPlan struct {
	BaselineEUR  float64 `json:"baselineEur"`
	OptimizedEUR float64 `json:"optimizedEur"`
	SavingsEUR   float64 `json:"savingsEur"`
	SavingsPct   float64 `json:"savingsPct"`
	TrucksPerLeg []int   `json:"trucksPerLeg"`
}

// OptimizeFleetAllocation distributes a fixed total fleet across legs,
// weighting longer legs more heavily, and compares the result against an
// equal split baseline. Every leg keeps at least one truck.
func OptimizeFleetAllocation(legs []model.Leg, fleetSize int, p config.Params) (FleetPlan, error) {
	if fleetSize < 1 {
		return FleetPlan{}, fmt.Errorf("opt: fleetSize must be >= 1, got %d", fleetSize)
	}
	if len(legs) == 0 {
		return FleetPlan{TrucksPerLeg: []int{}}, nil
	}

	// Baseline: equal split, at least one truck per leg.
	basePerLeg := fleetSize / len(legs)
	if basePerLeg < 1 {
		basePerLeg = 1
	}
	baseline := 0.0
	for _, leg := range legs {
		c, err := cost.LegCost(leg, basePerLeg, p)
		if err != nil {
			return FleetPlan{}, err
		}
		baseline += c.TotalEUR
	}

	totalKm := 0.0
	for _, leg := range legs {
		totalKm += leg.DistanceKm
	}

	// Longest legs claim their distance-proportional share first; the final
	// leg in priority order absorbs whatever remains.
	priorities := make([]int, len(legs))
	for i := range priorities {
		priorities[i] = i
	}
	for i := 0; i < len(priorities); i++ {
		for j := i + 1; j < len(priorities); j++ {
			if legs[priorities[j]].DistanceKm > legs[priorities[i]].DistanceKm {
				priorities[i], priorities[j] = priorities[j], priorities[i]
			}
		}
	}

	trucksPerLeg := make([]int, len(legs))
	remaining := fleetSize
	for rank, idx := range priorities {
		legsLeft := len(priorities) - rank - 1
		var allocated int
		if legsLeft == 0 {
			allocated = remaining
		} else {
			share := 0.0
			if totalKm > 0 {
				share = legs[idx].DistanceKm / totalKm
			}
			allocated = int(share * float64(fleetSize))
			// Leave at least one truck for every leg still waiting.
			if allocated > remaining-legsLeft {
				allocated = remaining - legsLeft
			}
		}
		if allocated < 1 {
			allocated = 1
		}
		trucksPerLeg[idx] = allocated
		remaining -= allocated
	}

	optimized := 0.0
	for i, leg := range legs {
		c, err := cost.LegCost(leg, trucksPerLeg[i], p)
		if err != nil {
			return FleetPlan{}, err
		}
		optimized += c.TotalEUR
	}

	savings := baseline - optimized
	pct := 0.0
	if baseline > 0 {
		pct = savings / baseline * 100
	}
	return FleetPlan{
		BaselineEUR:  baseline,
		OptimizedEUR: optimized,
		SavingsEUR:   savings,
		SavingsPct:   pct,
		TrucksPerLeg: trucksPerLeg,
	}, nil
}

// CheckDriverHours reports, per leg, whether its travel time fits within the
// daily driving limit. A non-positive limit uses MaxDailyDriveHours.
func CheckDriverHours(legs []model.Leg, maxDailyHours float64) []bool {
	if maxDailyHours <= 0 {
		maxDailyHours = MaxDailyDriveHours
	}
	out := make([]bool, len(legs))
	for i, leg := range legs {
		out[i] = leg.TravelHours <= maxDailyHours
	}
	return out
}

// SplitAdvice describes whether a leg needs to be driven over multiple days.
type SplitAdvice struct {
	Leg              string  `json:"leg"`
	DistanceKm       float64 `json:"distanceKm"`
	TravelHours      float64 `json:"travelHours"`
	DaysNeeded       int     `json:"daysNeeded"`
	RecommendedStops int     `json:"recommendedStops"`
	RequiresSplit    bool    `json:"requiresSplit"`
}

// SuggestSplit computes how many driving days a leg needs under the daily
// limit and how many overnight stops that implies.
func SuggestSplit(leg model.Leg, maxDailyHours float64) SplitAdvice {
	if maxDailyHours <= 0 {
		maxDailyHours = MaxDailyDriveHours
	}
	days := int(math.Ceil(leg.TravelHours / maxDailyHours))
	if days < 1 {
		days = 1
	}
	return SplitAdvice{
		Leg:              leg.Label(),
		DistanceKm:       leg.DistanceKm,
		TravelHours:      leg.TravelHours,
		DaysNeeded:       days,
		RecommendedStops: days - 1,
		RequiresSplit:    days > 1,
	}
}
