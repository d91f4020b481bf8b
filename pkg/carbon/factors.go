// Package carbon estimates embodied carbon from analysis metrics using a
// table of per-material carbon intensity factors.
package carbon

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/gomassing/pkg/scene"
)

// Kind says what quantity a factor value applies to
type Kind string

const (
	// PerVolume factors are kgCO2e per cubic meter
	PerVolume Kind = "volume"
	// PerMass factors are kgCO2e per kilogram and need a density
	PerMass Kind = "mass"
)

// ErrInvalidTable is wrapped by every factor table validation error
var ErrInvalidTable = errors.New("invalid factor table")

// Factor is the carbon intensity of one material
type Factor struct {
	Material string   `json:"material" yaml:"material" toml:"material"`
	Kind     Kind     `json:"kind" yaml:"kind" toml:"kind"`
	Value    float64  `json:"value" yaml:"value" toml:"value"`
	Density  float64  `json:"density,omitempty" yaml:"density,omitempty" toml:"density,omitempty"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases,omitempty"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
}

// CarbonFor returns the carbon of volume cubic meters of the material and
// the mass used, zero for volume factors.
func (f Factor) CarbonFor(volume float64) (carbon, mass float64) {
	if f.Kind == PerMass {
		mass = volume * f.Density
		return mass * f.Value, mass
	}
	return volume * f.Value, 0
}

// FactorTable is a read-only, versioned material lookup. Keys are
// normalized, so "  Reinforced  CONCRETE" finds "reinforced concrete".
type FactorTable struct {
	version string
	factors []Factor
	index   map[string]int
}

// NewFactorTable validates factors and builds the lookup index
func NewFactorTable(version string, factors []Factor) (*FactorTable, error) {
	t := &FactorTable{
		version: version,
		index:   make(map[string]int, len(factors)),
	}
	for i, f := range factors {
		if f.Kind == "" {
			f.Kind = PerVolume
		}
		if err := validate(f); err != nil {
			return nil, fmt.Errorf("%w: factor %d: %v", ErrInvalidTable, i, err)
		}
		f.Aliases = append([]string(nil), f.Aliases...)
		pos := len(t.factors)
		t.factors = append(t.factors, f)

		for _, name := range append([]string{f.Material}, f.Aliases...) {
			key := scene.NormalizeKey(name)
			if key == "" {
				return nil, fmt.Errorf("%w: factor %q has an empty alias", ErrInvalidTable, f.Material)
			}
			if prev, dup := t.index[key]; dup && prev != pos {
				return nil, fmt.Errorf("%w: %q is defined by both %q and %q", ErrInvalidTable, key, t.factors[prev].Material, f.Material)
			}
			t.index[key] = pos
		}
	}
	return t, nil
}

func validate(f Factor) error {
	if scene.NormalizeKey(f.Material) == "" {
		return errors.New("material is empty")
	}
	if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) || f.Value < 0 {
		return fmt.Errorf("%q: value must be a non-negative finite number", f.Material)
	}
	switch f.Kind {
	case PerVolume:
	case PerMass:
		if math.IsNaN(f.Density) || math.IsInf(f.Density, 0) || f.Density <= 0 {
			return fmt.Errorf("%q: mass factor needs a positive density", f.Material)
		}
	default:
		return fmt.Errorf("%q: unknown kind %q", f.Material, f.Kind)
	}
	return nil
}

// Version identifies the table, e.g. "ICE-3.0"
func (t *FactorTable) Version() string { return t.version }

// Len returns the number of factors
func (t *FactorTable) Len() int { return len(t.factors) }

// Lookup finds the factor for a material name or alias
func (t *FactorTable) Lookup(material string) (Factor, bool) {
	i, ok := t.index[scene.NormalizeKey(material)]
	if !ok {
		return Factor{}, false
	}
	return t.factors[i], true
}

// Factors returns a copy of all factors sorted by material
func (t *FactorTable) Factors() []Factor {
	out := append([]Factor(nil), t.factors...)
	sort.Slice(out, func(i, j int) bool {
		return scene.NormalizeKey(out[i].Material) < scene.NormalizeKey(out[j].Material)
	})
	return out
}
