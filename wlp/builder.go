package wlp

import (
	"errors"
	"fmt"

	"github.com/d3wue/CashLog/schema"
	"github.com/d3wue/CashLog/tiers"
)

// ErrInvalidPolicy is returned when a policy knob does not fit the problem
// tables, before any constraint is generated.
var ErrInvalidPolicy = errors.New("invalid policy")

// Build assembles the mixed-integer model for the given problem tables and
// policy. The tier family must resolve through the catalog and the policy
// knobs are validated up front; constraint generation itself never fails.
// Degenerate inputs (no warehouses, no shifts) yield a well-defined model
// whose infeasibility is left for the solver to report.
func Build(input schema.Input, catalog tiers.Catalog, policy schema.Policy) (*Model, error) {
	family, err := catalog.Family(policy.TierFamily)
	if err != nil {
		return nil, err
	}
	if err := family.Validate(); err != nil {
		return nil, fmt.Errorf("tier family %d: %w", policy.TierFamily, err)
	}
	if err := validatePolicy(input, policy); err != nil {
		return nil, err
	}

	m := &Model{
		input:  input,
		family: family,
		assign: make(map[shiftKey]Var, len(input.Shifts)),
		pick:   make(map[tierKey]Var, len(input.Warehouses)*len(family)),
		flow:   make(map[tierKey]Var, len(input.Warehouses)*len(family)),
	}

	// One assignment indicator per allowed shift pair. Pairs absent from
	// the shift table get no variable at all, which is cheaper than a full
	// cross product and also encodes service-area restrictions.
	for _, s := range input.Shifts {
		m.assign[shiftKey{s.WarehouseID, s.RegionID}] = m.newVar(Binary, 0, 1, "x["+s.ID()+"]")
	}

	// One tier indicator and one bounded throughput per warehouse and tier.
	for _, w := range input.Warehouses {
		for c, t := range family {
			k := tierKey{w.WarehouseID, c}
			m.pick[k] = m.newVar(Binary, 0, 1, fmt.Sprintf("y[%s,%d]", w.WarehouseID, c))
			m.flow[k] = m.newVar(Continuous, 0, t.UpperBound, fmt.Sprintf("z[%s,%d]", w.WarehouseID, c))
		}
	}

	// Helper indexes over the shift table, in input order.
	shiftsByRegion := make(map[string][]schema.Shift, len(input.Regions))
	shiftsByWarehouse := make(map[string][]schema.Shift, len(input.Warehouses))
	for _, s := range input.Shifts {
		shiftsByRegion[s.RegionID] = append(shiftsByRegion[s.RegionID], s)
		shiftsByWarehouse[s.WarehouseID] = append(shiftsByWarehouse[s.WarehouseID], s)
	}
	demand := make(map[string]float64, len(input.Regions))
	for _, r := range input.Regions {
		demand[r.RegionID] = r.SumDeliveries
	}

	/* Single sourcing -> every region is serviced by exactly one warehouse */
	for _, r := range input.Regions {
		c := constraint{sense: Equal, rhs: 1}
		for _, s := range shiftsByRegion[r.RegionID] {
			c.terms = append(c.terms, term{1, m.assign[shiftKey{s.WarehouseID, s.RegionID}]})
		}
		m.constraints = append(m.constraints, c)
	}

	/* Open-to-serve -> no region is serviced from a closed warehouse */
	for _, s := range input.Shifts {
		c := constraint{sense: LessEqual, rhs: 0,
			terms: []term{{1, m.assign[shiftKey{s.WarehouseID, s.RegionID}]}}}
		for ci := range family {
			c.terms = append(c.terms, term{-1, m.pick[tierKey{s.WarehouseID, ci}]})
		}
		m.constraints = append(m.constraints, c)
	}

	/* Tier disjunction -> a warehouse operates at most one tier; it is
	closed when none is selected */
	for _, w := range input.Warehouses {
		c := constraint{sense: LessEqual, rhs: 1}
		for ci := range family {
			c.terms = append(c.terms, term{1, m.pick[tierKey{w.WarehouseID, ci}]})
		}
		m.constraints = append(m.constraints, c)
	}

	/* Tier interval -> throughput is zero for unselected tiers and within
	the tier's interval for the selected one */
	for _, w := range input.Warehouses {
		for ci, t := range family {
			k := tierKey{w.WarehouseID, ci}
			m.constraints = append(m.constraints,
				constraint{sense: LessEqual, rhs: 0,
					terms: []term{{1, m.flow[k]}, {-t.UpperBound, m.pick[k]}}},
				constraint{sense: GreaterEqual, rhs: 0,
					terms: []term{{1, m.flow[k]}, {-t.LowerBound, m.pick[k]}}},
			)
		}
	}

	/* Flow reconciliation -> a warehouse's tier throughput equals the
	demand volume assigned to it */
	for _, w := range input.Warehouses {
		c := constraint{sense: Equal, rhs: 0}
		for ci := range family {
			c.terms = append(c.terms, term{1, m.flow[tierKey{w.WarehouseID, ci}]})
		}
		for _, s := range shiftsByWarehouse[w.WarehouseID] {
			c.terms = append(c.terms, term{-demand[s.RegionID], m.assign[shiftKey{s.WarehouseID, s.RegionID}]})
		}
		m.constraints = append(m.constraints, c)
	}

	/* Forced-open overrides */
	for _, id := range policy.ForcedOpen {
		c := constraint{sense: Equal, rhs: 1}
		for ci := range family {
			c.terms = append(c.terms, term{1, m.pick[tierKey{id, ci}]})
		}
		m.constraints = append(m.constraints, c)
	}

	/* Exact cardinality on the number of open warehouses */
	if policy.OpenCount != nil {
		c := constraint{sense: Equal, rhs: float64(*policy.OpenCount)}
		for _, w := range input.Warehouses {
			for ci := range family {
				c.terms = append(c.terms, term{1, m.pick[tierKey{w.WarehouseID, ci}]})
			}
		}
		m.constraints = append(m.constraints, c)
	}

	/* objective = transportation costs + tier fixed charges + all-units
	variable charges, the per-unit rate applied to the selected tier's
	entire throughput */
	for _, s := range input.Shifts {
		m.objective = append(m.objective, term{s.TransportationCosts, m.assign[shiftKey{s.WarehouseID, s.RegionID}]})
	}
	for _, w := range input.Warehouses {
		for ci, t := range family {
			k := tierKey{w.WarehouseID, ci}
			m.objective = append(m.objective,
				term{t.FixedCost, m.pick[k]},
				term{t.UnitCost, m.flow[k]},
			)
		}
	}

	return m, nil
}

func validatePolicy(input schema.Input, policy schema.Policy) error {
	known := make(map[string]bool, len(input.Warehouses))
	for _, w := range input.Warehouses {
		known[w.WarehouseID] = true
	}
	for _, id := range policy.ForcedOpen {
		if !known[id] {
			return fmt.Errorf("%w: forced-open warehouse %q is not in the warehouse table", ErrInvalidPolicy, id)
		}
	}
	if policy.OpenCount != nil {
		if n := *policy.OpenCount; n < 0 || n > len(input.Warehouses) {
			return fmt.Errorf("%w: open count %d outside [0, %d]", ErrInvalidPolicy, n, len(input.Warehouses))
		}
	}
	return nil
}
