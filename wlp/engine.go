package wlp

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nextmv-io/sdk/mip"
	"github.com/rs/zerolog"
)

// Status classifies a solve outcome.
type Status string

const (
	Optimal    Status = "optimal"
	Suboptimal Status = "suboptimal"
	Infeasible Status = "infeasible"
)

// A Solution carries the raw solver outcome: the status, the solver's own
// objective readout, and the value of every model variable.
type Solution struct {
	Status    Status
	Objective float64
	Runtime   time.Duration

	values []float64 // indexed by Var
}

// HasValues reports whether the solver produced a usable point.
func (s *Solution) HasValues() bool {
	return s.values != nil
}

// Value reads the solved value of a model variable.
func (s *Solution) Value(v Var) float64 {
	return s.values[v]
}

// An Engine is the seam to an external MIP backend. Implementations must
// treat the model as read-only so that independent solves can run in
// parallel. Infeasibility is reported through the solution status, not as
// an error; errors mean the backend itself failed.
type Engine interface {
	Solve(m *Model) (*Solution, error)
}

// HighsEngine solves models through the Nextmv SDK's HiGHS provider. Any
// other provider exposing binary and bounded continuous variables, linear
// constraints and a minimize objective is substitutable behind Engine.
type HighsEngine struct {
	// MaxDuration bounds a single solve. A duration limit of 0 is treated
	// as infinity.
	MaxDuration time.Duration
	Log         zerolog.Logger
}

// Solve lowers the model to a mip.Model and runs HiGHS on it. The relative
// MIP gap is pinned to zero so that two solves of the same model agree on
// the objective value even when they pick different tie-broken assignments.
func (e HighsEngine) Solve(m *Model) (*Solution, error) {
	run := uuid.NewString()
	e.Log.Info().
		Str("run", run).
		Int("variables", m.NumVariables()).
		Int("constraints", m.NumConstraints()).
		Msg("solving warehouse location model")

	mm := mip.NewModel()

	vars := make([]mip.Var, len(m.vars))
	for i, v := range m.vars {
		if v.kind == Binary {
			vars[i] = mm.NewBool()
		} else {
			vars[i] = mm.NewFloat(v.lower, v.upper)
		}
	}
	for _, c := range m.constraints {
		constr := mm.NewConstraint(mipSense(c.sense), c.rhs)
		for _, t := range c.terms {
			constr.NewTerm(t.coef, vars[t.v])
		}
	}
	mm.Objective().SetMinimize()
	for _, t := range m.objective {
		mm.Objective().NewTerm(t.coef, vars[t.v])
	}

	solver, err := mip.NewSolver("highs", mm)
	if err != nil {
		return nil, fmt.Errorf("create highs solver: %w", err)
	}

	solveOptions := mip.NewSolveOptions()
	if err := solveOptions.SetMaximumDuration(e.MaxDuration); err != nil {
		return nil, fmt.Errorf("set solve duration: %w", err)
	}
	// Set the relative gap to 0% (highs' default is 5%)
	if err := solveOptions.SetMIPGapRelative(0); err != nil {
		return nil, fmt.Errorf("set mip gap: %w", err)
	}
	solveOptions.SetVerbosity(mip.Off)

	solution, err := solver.Solve(solveOptions)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	out := &Solution{Status: Infeasible}
	if solution != nil {
		out.Runtime = solution.RunTime()
	}
	if solution != nil && solution.HasValues() {
		if solution.IsOptimal() {
			out.Status = Optimal
		} else {
			out.Status = Suboptimal
		}
		out.Objective = solution.ObjectiveValue()
		out.values = make([]float64, len(vars))
		for i := range vars {
			out.values[i] = solution.Value(vars[i])
		}
	}

	e.Log.Info().
		Str("run", run).
		Str("status", string(out.Status)).
		Float64("objective", out.Objective).
		Dur("runtime", out.Runtime).
		Msg("solve finished")
	return out, nil
}

func mipSense(s Sense) mip.Sense {
	switch s {
	case LessEqual:
		return mip.LessThanOrEqual
	case GreaterEqual:
		return mip.GreaterThanOrEqual
	default:
		return mip.Equal
	}
}
