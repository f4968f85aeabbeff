// Package wlp implements the CashLog warehouse location problem: a
// mixed-integer model deciding which candidate warehouse sites to open as
// cash-handling centers, at which operating-cost tier, and which demand
// regions each open warehouse services, so that facility cost plus
// transportation cost is minimal.
//
// The package splits a solve into three stateless steps: Build assembles a
// Model from the problem tables and the policy knobs, an Engine hands the
// model to an external MIP backend, and Extract maps the solved variable
// values back to domain records. Each solve operates on a freshly built
// model, so independent solves (for example a scenario sweep over open
// counts) may run in parallel.
package wlp

import (
	"github.com/d3wue/CashLog/schema"
	"github.com/d3wue/CashLog/tiers"
)

// VarKind distinguishes binary indicators from bounded continuous variables.
type VarKind uint8

const (
	Binary VarKind = iota
	Continuous
)

// Var is a handle into a model's variable space.
type Var int

// Sense is the comparison direction of a linear constraint.
type Sense uint8

const (
	Equal Sense = iota
	LessEqual
	GreaterEqual
)

type variable struct {
	kind  VarKind
	lower float64
	upper float64
	name  string
}

type term struct {
	coef float64
	v    Var
}

type constraint struct {
	sense Sense
	rhs   float64
	terms []term
}

type shiftKey struct {
	warehouse string
	region    string
}

type tierKey struct {
	warehouse string
	tier      int
}

// A Model is the assembled mixed-integer program together with the
// bookkeeping needed to read a solution back in domain terms. It is an
// inert value: engines lower it to the backend's own representation at
// solve time and never mutate it.
type Model struct {
	input  schema.Input
	family tiers.Family

	vars        []variable
	constraints []constraint
	objective   []term // minimized

	assign map[shiftKey]Var // region serviced by warehouse
	pick   map[tierKey]Var  // warehouse operates at tier
	flow   map[tierKey]Var  // throughput attributed to warehouse and tier
}

func (m *Model) newVar(kind VarKind, lower, upper float64, name string) Var {
	m.vars = append(m.vars, variable{kind: kind, lower: lower, upper: upper, name: name})
	return Var(len(m.vars) - 1)
}

// NumVariables reports the size of the decision space.
func (m *Model) NumVariables() int {
	return len(m.vars)
}

// NumConstraints reports the number of generated constraints.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}
