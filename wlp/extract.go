package wlp

import (
	"errors"
	"fmt"

	"github.com/d3wue/CashLog/schema"
)

// ErrNoSolution is returned when extraction is attempted on a solve outcome
// that carries no usable variable values.
var ErrNoSolution = errors.New("no solution to extract")

// Assignment values below this threshold are not reported. The band absorbs
// solver floating-point noise around the binary 0/1 levels; a value inside
// the band that is not near 1 would indicate a misconfigured solver
// returning fractional binaries.
const reportThreshold = 0.1

// Extract maps solved variable values back to domain records: one
// assignment per serviced region (in shift-table order), one status per
// warehouse (in warehouse-table order), and the cost breakdown recomputed
// from the variable values independently of the solver's objective readout.
func Extract(m *Model, sol *Solution) (schema.Output, error) {
	if sol == nil || !sol.HasValues() {
		status := Infeasible
		if sol != nil {
			status = sol.Status
		}
		return schema.Output{}, fmt.Errorf("%w: solve status %q", ErrNoSolution, status)
	}

	regions := make(map[string]schema.Region, len(m.input.Regions))
	for _, r := range m.input.Regions {
		regions[r.RegionID] = r
	}

	out := schema.Output{
		Status:      string(sol.Status),
		Runtime:     sol.Runtime.String(),
		Value:       sol.Objective,
		Assignments: make([]schema.RegionAssignment, 0, len(m.input.Regions)),
		Warehouses:  make([]schema.WarehouseStatus, 0, len(m.input.Warehouses)),
	}

	for _, s := range m.input.Shifts {
		v := sol.Value(m.assign[shiftKey{s.WarehouseID, s.RegionID}])
		out.Costs.Transportation += v * s.TransportationCosts
		if v < reportThreshold {
			continue
		}
		r := regions[s.RegionID]
		out.Assignments = append(out.Assignments, schema.RegionAssignment{
			RegionID:    s.RegionID,
			WarehouseID: s.WarehouseID,
			Serviced:    v,
			ZipCode:     r.ZipCode,
			City:        r.City,
			Lat:         r.Lat,
			Lon:         r.Lon,
		})
	}

	for _, w := range m.input.Warehouses {
		open := 0.0
		for c, t := range m.family {
			k := tierKey{w.WarehouseID, c}
			y := sol.Value(m.pick[k])
			z := sol.Value(m.flow[k])
			open += y
			out.Costs.TierFixed += y * t.FixedCost
			out.Costs.TierVariable += z * t.UnitCost
		}
		out.Warehouses = append(out.Warehouses, schema.WarehouseStatus{
			WarehouseID: w.WarehouseID,
			City:        w.City,
			Open:        open,
			Lat:         w.Lat,
			Lon:         w.Lon,
		})
	}

	out.Costs.Total = out.Costs.Transportation + out.Costs.TierFixed + out.Costs.TierVariable
	return out, nil
}
