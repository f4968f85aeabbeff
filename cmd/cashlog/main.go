// package main holds the implementation of the CashLog warehouse location
// app.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/nextmv-io/sdk/run"
	"github.com/rs/zerolog"

	"github.com/d3wue/CashLog/schema"
	"github.com/d3wue/CashLog/tiers"
	"github.com/d3wue/CashLog/wlp"
)

// This is a Mixed Integer Programming model for the CashLog network design
// question: which candidate warehouse sites should be opened as
// cash-handling centers, at which operating-cost tier, and which demand
// regions each open warehouse should service. Facility cost follows an
// all-units tiered cost curve, so consolidating volume into fewer, larger
// sites competes against the transportation cost of servicing regions from
// further away. The app reads the warehouse, region and shift tables plus
// the policy knobs as JSON, solves the model and writes the assignment and
// facility-status records back as JSON.
func main() {
	err := run.CLI(solver).Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
}

// The Option for the solver.
type Option struct {
	// A duration limit of 0 is treated as infinity. For cloud runs you need
	// to set an explicit duration limit which is why it is currently set to
	// 10s here in case no duration limit is set. For local runs there is no
	// time limitation.
	Limits struct {
		Duration time.Duration `json:"duration" default:"10s"`
	} `json:"limits"`
	// TierCatalog optionally points at a YAML file overriding the built-in
	// cost tier families.
	TierCatalog string `json:"tierCatalog" default:""`
}

func solver(input schema.Input, opts Option) ([]schema.Output, error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	catalog := tiers.DefaultCatalog()
	if opts.TierCatalog != "" {
		var err error
		catalog, err = tiers.Load(opts.TierCatalog)
		if err != nil {
			return nil, err
		}
	}

	model, err := wlp.Build(input, catalog, input.Policy)
	if err != nil {
		return nil, err
	}

	engine := wlp.HighsEngine{MaxDuration: opts.Limits.Duration, Log: logger}
	solution, err := engine.Solve(model)
	if err != nil {
		return nil, err
	}
	if !solution.HasValues() {
		// Infeasibility is a property of the input (for example an open
		// count too small for the demand volume), so it is reported as the
		// run's outcome rather than as a failure.
		return []schema.Output{{
			Status:  string(solution.Status),
			Runtime: solution.Runtime.String(),
		}}, nil
	}

	output, err := wlp.Extract(model, solution)
	if err != nil {
		return nil, err
	}
	return []schema.Output{output}, nil
}
