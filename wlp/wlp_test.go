package wlp

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d3wue/CashLog/schema"
	"github.com/d3wue/CashLog/tiers"
)

const eps = 1e-6

func intp(n int) *int { return &n }

// Two tiers: small sites pay 100 + 1.0/unit up to 1000 units, consolidated
// sites pay 150 + 0.5/unit beyond that. The break-even sits where the
// scenario tests need it: pooling all fixture demand into one site is
// cheaper than splitting, unless transportation says otherwise.
func testCatalog() tiers.Catalog {
	return tiers.Catalog{
		1: {
			{LowerBound: 0, UpperBound: 1000, FixedCost: 100, UnitCost: 1.0},
			{LowerBound: 1001, UpperBound: tiers.Unbounded, FixedCost: 150, UnitCost: 0.5},
		},
	}
}

// Two candidate sites, three regions, all six shift pairs with distinct
// transportation costs.
func testInput() schema.Input {
	return schema.Input{
		Warehouses: []schema.Warehouse{
			{WarehouseID: "W1", City: "Hamburg", Lat: 53.55, Lon: 9.99},
			{WarehouseID: "W2", City: "Munich", Lat: 48.14, Lon: 11.58},
		},
		Regions: []schema.Region{
			{RegionID: "R1", ZipCode: "20095", City: "Hamburg", Lat: 53.55, Lon: 10.00, SumDeliveries: 500},
			{RegionID: "R2", ZipCode: "50667", City: "Cologne", Lat: 50.94, Lon: 6.96, SumDeliveries: 800},
			{RegionID: "R3", ZipCode: "80331", City: "Munich", Lat: 48.14, Lon: 11.57, SumDeliveries: 1200},
		},
		Shifts: []schema.Shift{
			{WarehouseID: "W1", RegionID: "R1", TransportationCosts: 10},
			{WarehouseID: "W1", RegionID: "R2", TransportationCosts: 46},
			{WarehouseID: "W1", RegionID: "R3", TransportationCosts: 70},
			{WarehouseID: "W2", RegionID: "R1", TransportationCosts: 65},
			{WarehouseID: "W2", RegionID: "R2", TransportationCosts: 40},
			{WarehouseID: "W2", RegionID: "R3", TransportationCosts: 15},
		},
		Policy: schema.Policy{TierFamily: 1},
	}
}

// A plan is one fully specified candidate solution: the region assignments
// plus the open sites with their selected tier.
type plan struct {
	assign map[string]string // region -> warehouse
	open   map[string]int    // warehouse -> tier index
	cost   float64
}

// enumeratePlans brute-forces every feasible plan of a small instance:
// every region-to-warehouse map over the allowed shift pairs, combined with
// every open set covering the used and forced warehouses. It is the
// reference the model semantics are checked against.
func enumeratePlans(in schema.Input, family tiers.Family, forced []string, openCount *int) []plan {
	shiftCost := map[string]map[string]float64{}
	allowed := map[string][]string{}
	for _, s := range in.Shifts {
		if shiftCost[s.WarehouseID] == nil {
			shiftCost[s.WarehouseID] = map[string]float64{}
		}
		shiftCost[s.WarehouseID][s.RegionID] = s.TransportationCosts
		allowed[s.RegionID] = append(allowed[s.RegionID], s.WarehouseID)
	}
	mustOpen := map[string]bool{}
	for _, id := range forced {
		mustOpen[id] = true
	}

	var plans []plan
	assign := map[string]string{}
	var rec func(i int)
	rec = func(i int) {
		if i == len(in.Regions) {
			plans = append(plans, expandOpenSets(in, family, assign, mustOpen, openCount, shiftCost)...)
			return
		}
		r := in.Regions[i]
		for _, w := range allowed[r.RegionID] {
			assign[r.RegionID] = w
			rec(i + 1)
		}
		delete(assign, r.RegionID)
	}
	rec(0)
	return plans
}

func expandOpenSets(
	in schema.Input,
	family tiers.Family,
	assign map[string]string,
	mustOpen map[string]bool,
	openCount *int,
	shiftCost map[string]map[string]float64,
) []plan {
	used := map[string]bool{}
	demand := map[string]float64{}
	transport := 0.0
	for _, r := range in.Regions {
		w := assign[r.RegionID]
		used[w] = true
		demand[w] += r.SumDeliveries
		transport += shiftCost[w][r.RegionID]
	}

	var plans []plan
	for mask := 0; mask < 1<<len(in.Warehouses); mask++ {
		open := map[string]int{}
		cost := transport
		count := 0
		ok := true
		for i, w := range in.Warehouses {
			if mask&(1<<i) == 0 {
				if used[w.WarehouseID] || mustOpen[w.WarehouseID] {
					ok = false
				}
				continue
			}
			count++
			tier, tierCost, found := bestTier(family, demand[w.WarehouseID])
			if !found {
				ok = false
				continue
			}
			open[w.WarehouseID] = tier
			cost += tierCost
		}
		if !ok || (openCount != nil && count != *openCount) {
			continue
		}
		cp := make(map[string]string, len(assign))
		for k, v := range assign {
			cp[k] = v
		}
		plans = append(plans, plan{assign: cp, open: open, cost: cost})
	}
	return plans
}

// bestTier returns the cheapest tier whose interval contains d.
func bestTier(family tiers.Family, d float64) (int, float64, bool) {
	best, bestCost, found := 0, 0.0, false
	for i, t := range family {
		if d < t.LowerBound || d > t.UpperBound {
			continue
		}
		if c := t.FixedCost + t.UnitCost*d; !found || c < bestCost {
			best, bestCost, found = i, c, true
		}
	}
	return best, bestCost, found
}

func bestPlan(t *testing.T, plans []plan) plan {
	t.Helper()
	require.NotEmpty(t, plans)
	best := plans[0]
	for _, p := range plans[1:] {
		if p.cost < best.cost-1e-9 {
			best = p
		}
	}
	return best
}

// planSolution crafts the solver outcome that corresponds to a plan, with
// exact 0/1 values.
func planSolution(m *Model, p plan) *Solution {
	vals := make([]float64, len(m.vars))
	for k, v := range m.assign {
		if p.assign[k.region] == k.warehouse {
			vals[v] = 1
		}
	}
	demand := map[string]float64{}
	for _, r := range m.input.Regions {
		demand[p.assign[r.RegionID]] += r.SumDeliveries
	}
	for w, tier := range p.open {
		vals[m.pick[tierKey{w, tier}]] = 1
		vals[m.flow[tierKey{w, tier}]] = demand[w]
	}
	return &Solution{
		Status:    Optimal,
		Objective: objectiveValue(m, vals),
		Runtime:   time.Millisecond,
		values:    vals,
	}
}

func objectiveValue(m *Model, vals []float64) float64 {
	total := 0.0
	for _, t := range m.objective {
		total += t.coef * vals[t.v]
	}
	return total
}

// checkFeasible asserts that a value vector satisfies every generated
// constraint, the variable bounds, and 0/1 integrality of the binaries.
func checkFeasible(t *testing.T, m *Model, vals []float64) {
	t.Helper()
	for i, c := range m.constraints {
		lhs := 0.0
		for _, tm := range c.terms {
			lhs += tm.coef * vals[tm.v]
		}
		switch c.sense {
		case Equal:
			assert.InDeltaf(t, c.rhs, lhs, eps, "constraint %d not satisfied", i)
		case LessEqual:
			assert.LessOrEqualf(t, lhs, c.rhs+eps, "constraint %d not satisfied", i)
		case GreaterEqual:
			assert.GreaterOrEqualf(t, lhs, c.rhs-eps, "constraint %d not satisfied", i)
		}
	}
	for i, v := range m.vars {
		assert.GreaterOrEqualf(t, vals[i], v.lower-eps, "%s below lower bound", v.name)
		assert.LessOrEqualf(t, vals[i], v.upper+eps, "%s above upper bound", v.name)
		if v.kind == Binary {
			dist := math.Min(math.Abs(vals[i]), math.Abs(vals[i]-1))
			assert.LessOrEqualf(t, dist, eps, "%s not integral", v.name)
		}
	}
}
