// Package tiers holds the cost tier catalog of the warehouse location model.
//
// A tier family approximates a warehouse's economies-of-scale cost curve
// with an ordered list of throughput intervals, each carrying a flat charge
// and a per-unit charge. The pricing is "all-units": the per-unit rate of
// the selected tier applies to the warehouse's entire throughput, not only
// to the portion inside the tier's interval.
package tiers

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Unbounded is the artificial ceiling of the last tier in a family. It
// stands in for +inf so the family covers every achievable throughput.
const Unbounded = 99999999

// ErrUnknownFamily is returned when a family key has no catalog entry.
var ErrUnknownFamily = errors.New("unknown tier family")

// A Tier is one throughput interval with its associated charges.
type Tier struct {
	LowerBound float64 `json:"lower_bound" yaml:"lower_bound"`
	UpperBound float64 `json:"upper_bound" yaml:"upper_bound"`
	FixedCost  float64 `json:"fix_fix" yaml:"fix_fix"`
	UnitCost   float64 `json:"var_fix" yaml:"var_fix"`
}

// A Family is an ordered list of contiguous tiers covering [0, Unbounded].
type Family []Tier

// A Catalog maps family keys to tier families.
type Catalog map[int]Family

// DefaultCatalog returns the built-in tier families of the CashLog network.
// Family 1 is the baseline cost structure; families 2 and 3 price small
// sites steeper and large consolidated sites cheaper.
func DefaultCatalog() Catalog {
	return Catalog{
		1: {
			{LowerBound: 0, UpperBound: 19348, FixedCost: 61165, UnitCost: 4.14},
			{LowerBound: 19349, UpperBound: 45415, FixedCost: 86071, UnitCost: 2.85},
			{LowerBound: 45416, UpperBound: 107327, FixedCost: 145100, UnitCost: 1.55},
			{LowerBound: 107328, UpperBound: 199999, FixedCost: 145100, UnitCost: 1.55},
			{LowerBound: 200000, UpperBound: Unbounded, FixedCost: 145100, UnitCost: 1.55},
		},
		2: {
			{LowerBound: 0, UpperBound: 19348, FixedCost: 61165, UnitCost: 5.20},
			{LowerBound: 19349, UpperBound: 45415, FixedCost: 86071, UnitCost: 3.91},
			{LowerBound: 45416, UpperBound: 107327, FixedCost: 228337, UnitCost: 0.78},
			{LowerBound: 107328, UpperBound: 199999, FixedCost: 145100, UnitCost: 1.55},
			{LowerBound: 200000, UpperBound: Unbounded, FixedCost: 145100, UnitCost: 1.55},
		},
		3: {
			{LowerBound: 0, UpperBound: 19348, FixedCost: 61165, UnitCost: 8.50},
			{LowerBound: 19349, UpperBound: 45415, FixedCost: 154384, UnitCost: 3.68},
			{LowerBound: 45416, UpperBound: 107327, FixedCost: 290789, UnitCost: 0.68},
			{LowerBound: 107328, UpperBound: 199999, FixedCost: 197059, UnitCost: 1.55},
			{LowerBound: 200000, UpperBound: Unbounded, FixedCost: 197059, UnitCost: 1.55},
		},
	}
}

// Family returns the ordered tier list for key.
func (c Catalog) Family(key int) (Family, error) {
	f, ok := c[key]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFamily, key)
	}
	return f, nil
}

// Validate checks every family in the catalog.
func (c Catalog) Validate() error {
	for key, f := range c {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("tier family %d: %w", key, err)
		}
	}
	return nil
}

// Validate checks that the tiers are ascending, contiguous, span from zero
// to an effectively unbounded ceiling, and carry non-negative charges.
func (f Family) Validate() error {
	if len(f) == 0 {
		return errors.New("family has no tiers")
	}
	if f[0].LowerBound != 0 {
		return fmt.Errorf("first tier starts at %v, want 0", f[0].LowerBound)
	}
	for i, t := range f {
		if t.UpperBound < t.LowerBound {
			return fmt.Errorf("tier %d: upper bound %v below lower bound %v", i, t.UpperBound, t.LowerBound)
		}
		if t.FixedCost < 0 || t.UnitCost < 0 {
			return fmt.Errorf("tier %d: negative charge", i)
		}
		if i == 0 {
			continue
		}
		prev := f[i-1]
		if t.LowerBound <= prev.LowerBound {
			return fmt.Errorf("tier %d: lower bound %v not ascending", i, t.LowerBound)
		}
		if t.LowerBound < prev.UpperBound {
			return fmt.Errorf("tier %d: interval overlaps tier %d", i, i-1)
		}
		if t.LowerBound > prev.UpperBound+1 {
			return fmt.Errorf("tier %d: gap after upper bound %v", i, prev.UpperBound)
		}
	}
	if f[len(f)-1].UpperBound < Unbounded {
		return fmt.Errorf("last tier ends at %v, want at least %d", f[len(f)-1].UpperBound, Unbounded)
	}
	return nil
}

// Load reads a tier catalog from a YAML file mapping family keys to tier
// lists, using the same field names as the production cost data
// (lower_bound, upper_bound, fix_fix, var_fix). The catalog is validated
// before it is returned.
func Load(path string) (Catalog, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(buf, &c); err != nil {
		return nil, fmt.Errorf("parse tier catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
