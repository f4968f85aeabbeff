// Package schema defines the JSON input and output records of the CashLog
// warehouse location app.
package schema

// These structs describe the expected json input for the model. The
// warehouse, region and shift tables are produced by the data-loading layer;
// the policy block carries the run-time knobs of a single solve.
type Input struct {
	Warehouses []Warehouse `json:"warehouses"`
	Regions    []Region    `json:"regions"`
	Shifts     []Shift     `json:"shifts"`
	Policy     Policy      `json:"policy"`
}

// A Warehouse is a candidate cash-handling center site.
type Warehouse struct {
	WarehouseID string  `json:"warehouseId"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// ID is implemented to fulfill the model.Identifier interface.
func (w Warehouse) ID() string {
	return w.WarehouseID
}

// A Region is a demand area that must be serviced by exactly one warehouse.
type Region struct {
	RegionID      string  `json:"regionId"`
	ZipCode       string  `json:"zipCode"`
	City          string  `json:"city"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	SumDeliveries float64 `json:"sumDeliveries"`
}

func (r Region) ID() string {
	return r.RegionID
}

// A Shift is an allowed warehouse-to-region service edge with its
// transportation cost. Pairs missing from the shift table are structurally
// forbidden assignments, not merely expensive ones.
type Shift struct {
	WarehouseID         string  `json:"warehouseId"`
	RegionID            string  `json:"regionId"`
	TransportationCosts float64 `json:"transportationCosts"`
}

func (s Shift) ID() string {
	return s.WarehouseID + "-" + s.RegionID
}

// Policy holds the run-time knobs of a solve.
type Policy struct {
	// TierFamily selects one of the catalog's cost tier families.
	TierFamily int `json:"tierFamily"`
	// OpenCount, if set, fixes the number of open warehouses exactly.
	OpenCount *int `json:"openCount,omitempty"`
	// ForcedOpen lists warehouses that must be open regardless of cost.
	ForcedOpen []string `json:"forcedOpen,omitempty"`
}

// Output is the output of the solver.
type Output struct {
	Status      string             `json:"status,omitempty"`
	Runtime     string             `json:"runtime,omitempty"`
	Value       float64            `json:"value,omitempty"`
	Assignments []RegionAssignment `json:"assignments"`
	Warehouses  []WarehouseStatus  `json:"warehouses"`
	Costs       CostBreakdown      `json:"costs"`
}

// A RegionAssignment reports which warehouse services a region in the
// solution, together with the region's display fields.
type RegionAssignment struct {
	RegionID    string  `json:"regionId"`
	WarehouseID string  `json:"warehouseId"`
	Serviced    float64 `json:"serviced"`
	ZipCode     string  `json:"zipCode"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// A WarehouseStatus reports whether a candidate site is open in the
// solution. Open is the sum of the site's solved tier indicators, so it is
// 0 or 1 up to solver tolerance.
type WarehouseStatus struct {
	WarehouseID string  `json:"warehouseId"`
	City        string  `json:"city"`
	Open        float64 `json:"open"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// CostBreakdown splits the total network cost into its three sources. All
// four figures are recomputed from the solved variable values rather than
// read from the solver's objective, as a consistency cross-check.
type CostBreakdown struct {
	Transportation float64 `json:"transportation"`
	TierFixed      float64 `json:"tierFixed"`
	TierVariable   float64 `json:"tierVariable"`
	Total          float64 `json:"total"`
}
