package model

// Core domain types shared across the service.

// Coordinate is a WGS84 point in decimal degrees.
// Latitude must be within [-90, 90] and longitude within [-180, 180].
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are within their legal ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Circuit is a race venue with a fixed location. Immutable once loaded.
type Circuit struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	City     string     `json:"city,omitempty"`
	Country  string     `json:"country,omitempty"`
	Location Coordinate `json:"location"`
}

// RaceEvent is one calendar entry in a season, ordered by round.
type RaceEvent struct {
	Season  int     `json:"season"`
	Round   int     `json:"round"`
	Name    string  `json:"name"`
	Circuit Circuit `json:"circuit"`
	Date    string  `json:"date,omitempty"`
}

// Leg is a point-to-point travel segment between two consecutive races.
type Leg struct {
	From        Circuit `json:"from"`
	To          Circuit `json:"to"`
	DistanceKm  float64 `json:"distanceKm"`
	TravelHours float64 `json:"travelHours"`
}

// Label returns a human-readable name for the leg.
func (l Leg) Label() string {
	from := l.From.City
	if from == "" {
		from = l.From.Name
	}
	to := l.To.City
	if to == "" {
		to = l.To.Name
	}
	return from + " -> " + to
}

// CargoItem is a labelled piece of freight. Weight must be non-negative;
// zero-weight items are legal no-ops.
type CargoItem struct {
	Name     string  `json:"name"`
	WeightKg float64 `json:"weightKg"`
}

// TruckLoad is the set of items assigned to one truck, in placement order.
type TruckLoad struct {
	TruckID int         `json:"truckId"`
	Items   []CargoItem `json:"items"`
	LoadKg  float64     `json:"loadKg"`
}

// Allocation is the result of packing a cargo manifest onto a fleet.
// Trucks is indexed by truck ID. Overflow holds items that fit on no truck;
// a non-empty overflow is a reportable condition, not an error.
type Allocation struct {
	Trucks   []TruckLoad `json:"trucks"`
	Overflow []CargoItem `json:"overflow,omitempty"`
}

// PlacedKg returns the total weight placed across all trucks.
func (a Allocation) PlacedKg() float64 {
	total := 0.0
	for _, t := range a.Trucks {
		total += t.LoadKg
	}
	return total
}

// OverflowKg returns the total weight of unplaced items.
func (a Allocation) OverflowKg() float64 {
	total := 0.0
	for _, it := range a.Overflow {
		total += it.WeightKg
	}
	return total
}

// CostBreakdown is a per-leg or per-season monetary breakdown in EUR.
type CostBreakdown struct {
	FuelEUR  float64 `json:"fuelEur"`
	LaborEUR float64 `json:"laborEur"`
	TollEUR  float64 `json:"tollEur"`
	FixedEUR float64 `json:"fixedEur"`
	TotalEUR float64 `json:"totalEur"`
}

// Add returns the component-wise sum of two breakdowns.
func (c CostBreakdown) Add(o CostBreakdown) CostBreakdown {
	return CostBreakdown{
		FuelEUR:  c.FuelEUR + o.FuelEUR,
		LaborEUR: c.LaborEUR + o.LaborEUR,
		TollEUR:  c.TollEUR + o.TollEUR,
		FixedEUR: c.FixedEUR + o.FixedEUR,
		TotalEUR: c.TotalEUR + o.TotalEUR,
	}
}

// EmissionsResult is CO2-equivalent output for a leg or season.
type EmissionsResult struct {
	CO2eKg float64 `json:"co2eKg"`
}

// LegAnalysis pairs a leg with its priced cost and emissions.
type LegAnalysis struct {
	Leg       Leg             `json:"leg"`
	NumTrucks int             `json:"numTrucks"`
	Cost      CostBreakdown   `json:"cost"`
	Emissions EmissionsResult `json:"emissions"`
}

// SeasonAnalysis is the full season summary produced by the aggregator.
type SeasonAnalysis struct {
	ID               string          `json:"id,omitempty"`
	Season           int             `json:"season"`
	PricingTrucks    int             `json:"pricingTrucks"`
	Legs             []LegAnalysis   `json:"legs"`
	Allocation       Allocation      `json:"allocation"`
	TotalDistanceKm  float64         `json:"totalDistanceKm"`
	TotalTravelHours float64         `json:"totalTravelHours"`
	TotalCost        CostBreakdown   `json:"totalCost"`
	TotalEmissions   EmissionsResult `json:"totalEmissions"`
	CreatedAt        string          `json:"createdAt,omitempty"`
}

// API request shapes.

type AllocateRequest struct {
	Cargo      []CargoItem `json:"cargo"`
	NumTrucks  int         `json:"numTrucks"`
	CapacityKg float64     `json:"capacityKg"`
}

type FleetSizeRequest struct {
	Cargo      []CargoItem `json:"cargo"`
	CapacityKg float64     `json:"capacityKg"`
	MaxTrucks  int         `json:"maxTrucks,omitempty"`
}

type LegPriceRequest struct {
	Leg       Leg `json:"leg"`
	NumTrucks int `json:"numTrucks"`
}

type AnalyzeRequest struct {
	Cargo       []CargoItem `json:"cargo"`
	PricingMode string      `json:"pricingMode,omitempty"` // fixed, allocated
	MaxTrucks   int         `json:"maxTrucks,omitempty"`
}

type SubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

type Subscription struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret,omitempty"`
}
