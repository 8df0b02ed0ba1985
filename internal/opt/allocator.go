// Package opt implements the fleet allocation heuristics: first-fit-
// decreasing cargo packing, minimum fleet sizing, and per-leg truck
// allocation across a season.
package opt

import (
	"fmt"
	"sort"

	"fleetops/internal/model"
)

// Allocate packs cargo items onto a fleet of numTrucks trucks of uniform
// capacity using first-fit-decreasing: items are sorted by weight descending
// (ties keep input order), then each item goes to the first truck, scanned in
// identifier order, with enough remaining capacity. Items that fit on no
// truck land in the overflow list; overflow is a reportable outcome, not an
// error.
//
// The result is deterministic: identical input order and weights produce
// identical assignments. No truck ever exceeds capacity, and placed weight
// plus overflow weight always equals the input weight.
func Allocate(cargo []model.CargoItem, numTrucks int, capacityKg float64) (model.Allocation, error) {
	if numTrucks < 1 {
		return model.Allocation{}, fmt.Errorf("allocate: numTrucks must be >= 1, got %d", numTrucks)
	}
	if capacityKg <= 0 {
		return model.Allocation{}, fmt.Errorf("allocate: capacityKg must be > 0, got %g", capacityKg)
	}
	for _, it := range cargo {
		if it.WeightKg < 0 {
			return model.Allocation{}, fmt.Errorf("allocate: item %q has negative weight %g", it.Name, it.WeightKg)
		}
	}

	// Stable sort over indices keeps input order for equal weights.
	order := make([]int, len(cargo))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cargo[order[a]].WeightKg > cargo[order[b]].WeightKg
	})

	trucks := make([]model.TruckLoad, numTrucks)
	remaining := make([]float64, numTrucks)
	for i := range trucks {
		trucks[i] = model.TruckLoad{TruckID: i, Items: []model.CargoItem{}}
		remaining[i] = capacityKg
	}

	overflow := []model.CargoItem{}
	for _, idx := range order {
		it := cargo[idx]
		placed := false
		for t := 0; t < numTrucks; t++ {
			if remaining[t] >= it.WeightKg {
				trucks[t].Items = append(trucks[t].Items, it)
				trucks[t].LoadKg += it.WeightKg
				remaining[t] -= it.WeightKg
				placed = true
				break
			}
		}
		if !placed {
			overflow = append(overflow, it)
		}
	}

	return model.Allocation{Trucks: trucks, Overflow: overflow}, nil
}
