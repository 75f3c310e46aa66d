// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flexval provides flexible parameter values for experiment
// designs: a value can be a fixed scalar or a named sampling
// distribution, and is resolved against an explicit random source so
// that seeded (reproducible) and unseeded streams stay separate.
package flexval

import (
	"fmt"
	"math"

	"github.com/goki/ki/kit"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dists are the supported value distributions. Loc / Scale / Shape
// follow the scipy parameterization used in experiment parameter files,
// so specs copy over directly from prior designs.
type Dists int

//go:generate stringer -type=Dists

var KiT_Dists = kit.Enums.AddEnum(DistsN, kit.NotBitFlag, nil)

func (ev Dists) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Dists) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// FixedVal is a constant: always Loc.
	FixedVal Dists = iota

	// UniformVal is uniform on [Loc, Loc+Scale).
	UniformVal

	// ExponVal is Loc + exponential with mean Scale.
	ExponVal

	// TruncExponVal is Loc + Scale * exponential truncated at Shape
	// scale units.
	TruncExponVal

	// NormVal is normal with mean Loc and sd Scale.
	NormVal

	// GeomVal is geometric (trials to first success, p = Shape) + Loc.
	GeomVal

	DistsN
)

// Spec is one flexible value: a distribution and its parameters.
// The zero Spec is a fixed 0.
type Spec struct {

	// Dist selects the distribution.
	Dist Dists

	// Shape is the distribution-specific shape parameter
	// (truncation point for TruncExponVal, success p for GeomVal).
	Shape float64

	// Loc is the location (fixed value, lower bound, mean, or shift).
	Loc float64

	// Scale is the scale parameter where the distribution has one.
	Scale float64
}

// Fixed returns a constant-valued Spec.
func Fixed(v float64) Spec { return Spec{Dist: FixedVal, Loc: v} }

// Uniform returns a uniform Spec on [loc, loc+scale).
func Uniform(loc, scale float64) Spec {
	return Spec{Dist: UniformVal, Loc: loc, Scale: scale}
}

// Expon returns an exponential Spec: loc + Exp(mean=scale).
func Expon(loc, scale float64) Spec {
	return Spec{Dist: ExponVal, Loc: loc, Scale: scale}
}

// TruncExpon returns a truncated exponential Spec: loc + scale * x where
// x is a unit-mean exponential truncated at b.
func TruncExpon(b, loc, scale float64) Spec {
	return Spec{Dist: TruncExponVal, Shape: b, Loc: loc, Scale: scale}
}

// Norm returns a normal Spec with given mean and sd.
func Norm(mean, sd float64) Spec {
	return Spec{Dist: NormVal, Loc: mean, Scale: sd}
}

// Geom returns a geometric Spec with success probability p, shifted by loc.
func Geom(p, loc float64) Spec {
	return Spec{Dist: GeomVal, Shape: p, Loc: loc}
}

// Validate returns a configuration error if the Spec names an unknown
// distribution or carries parameters outside the distribution's domain.
func (sp Spec) Validate() error {
	switch sp.Dist {
	case FixedVal:
		return nil
	case UniformVal, NormVal:
		if sp.Scale < 0 {
			return fmt.Errorf("flexval: %v scale %g must be >= 0", sp.Dist, sp.Scale)
		}
		return nil
	case ExponVal:
		if sp.Scale <= 0 {
			return fmt.Errorf("flexval: %v scale %g must be > 0", sp.Dist, sp.Scale)
		}
		return nil
	case TruncExponVal:
		if sp.Scale <= 0 || sp.Shape <= 0 {
			return fmt.Errorf("flexval: %v needs scale > 0 and truncation > 0, got scale %g shape %g", sp.Dist, sp.Scale, sp.Shape)
		}
		return nil
	case GeomVal:
		if sp.Shape <= 0 || sp.Shape > 1 {
			return fmt.Errorf("flexval: %v success probability %g outside (0, 1]", sp.Dist, sp.Shape)
		}
		return nil
	}
	return fmt.Errorf("flexval: unknown distribution %d", int(sp.Dist))
}

// IsZero reports whether the Spec always resolves to exactly 0,
// which several timing parameters use to mean "skip this phase".
func (sp Spec) IsZero() bool {
	return sp.Dist == FixedVal && sp.Loc == 0
}

// Value samples one value from the Spec using rng, which must not be
// nil: callers own their streams. Specs must be validated up front;
// Value panics on an unknown distribution rather than defaulting.
func (sp Spec) Value(rng *rand.Rand) float64 {
	switch sp.Dist {
	case FixedVal:
		return sp.Loc
	case UniformVal:
		if sp.Scale == 0 {
			return sp.Loc
		}
		return distuv.Uniform{Min: sp.Loc, Max: sp.Loc + sp.Scale, Src: rng}.Rand()
	case ExponVal:
		return sp.Loc + distuv.Exponential{Rate: 1 / sp.Scale, Src: rng}.Rand()
	case TruncExponVal:
		// inverse CDF of a unit exponential truncated at Shape
		u := rng.Float64()
		x := -math.Log(1 - u*(1-math.Exp(-sp.Shape)))
		return sp.Loc + sp.Scale*x
	case NormVal:
		if sp.Scale == 0 {
			return sp.Loc
		}
		return distuv.Normal{Mu: sp.Loc, Sigma: sp.Scale, Src: rng}.Rand()
	case GeomVal:
		if sp.Shape >= 1 {
			return sp.Loc + 1
		}
		u := rng.Float64()
		k := math.Ceil(math.Log(1-u) / math.Log(1-sp.Shape))
		if k < 1 {
			k = 1
		}
		return sp.Loc + k
	}
	panic(fmt.Sprintf("flexval: unknown distribution %d", int(sp.Dist)))
}

// Values samples n values from the Spec into a new slice.
func (sp Spec) Values(n int, rng *rand.Rand) []float64 {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = sp.Value(rng)
	}
	return vs
}

// MaxNormDraws caps the rejection loop in NormWithin. Exhausting it
// means the limits are unreachable from the given mean and sd, which is
// a configuration error, not bad luck.
const MaxNormDraws = 10000

// NormWithin draws one normal(mean, sd) value by rejection until it
// falls inside [lo, hi]. It returns a configuration error if the draw
// cannot be satisfied.
func NormWithin(mean, sd, lo, hi float64, rng *rand.Rand) (float64, error) {
	if sd == 0 {
		if mean < lo || mean > hi {
			return 0, fmt.Errorf("flexval: fixed value %g outside limits [%g, %g]", mean, lo, hi)
		}
		return mean, nil
	}
	nd := distuv.Normal{Mu: mean, Sigma: sd, Src: rng}
	for i := 0; i < MaxNormDraws; i++ {
		v := nd.Rand()
		if v >= lo && v <= hi {
			return v, nil
		}
	}
	return 0, fmt.Errorf("flexval: no normal(%g, %g) draw within [%g, %g] after %d attempts", mean, sd, lo, hi, MaxNormDraws)
}
