// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pulse

import (
	"fmt"

	"github.com/cogpsych/pulses/flexval"
	"github.com/emer/etable/etensor"
	"github.com/goki/ki/kit"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// TrainTarget selects how a sampled pulse train is truncated: at a
// target total duration, or at a sampled pulse count.
type TrainTarget int

//go:generate stringer -type=TrainTarget

var KiT_TrainTarget = kit.Enums.AddEnum(TrainTargetN, kit.NotBitFlag, nil)

func (ev TrainTarget) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *TrainTarget) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// TargetDuration truncates the train when the cumulative gap+pulse
	// time would first exceed a sampled target duration.
	TargetDuration TrainTarget = iota

	// TargetCount truncates the train at a sampled pulse count.
	TargetCount

	TrainTargetN
)

// TrainSpec configures the duration-or-count targeted train builder
// used by the saccade-response variant, where pulses are separated by
// sampled gaps rather than scheduled against a fixed trial duration.
type TrainSpec struct {

	// Target selects the truncation mode.
	Target TrainTarget

	// TotalDur is the target total train duration (TargetDuration mode).
	TotalDur flexval.Spec

	// Count is the pulse count distribution (TargetCount mode).
	Count flexval.Spec

	// CountMax caps the pulse count in either mode.
	CountMax int

	// Gap is the inter-pulse gap distribution, in seconds.
	Gap flexval.Spec

	// PulseDur is the single-pulse duration distribution, in seconds.
	PulseDur flexval.Spec

	// Contrast is the trial's single target contrast level.
	Contrast float64

	// ContrastSpread, when non-zero, spreads per-pulse contrast around
	// the target level instead of repeating it exactly.
	ContrastSpread flexval.Spec
}

// Validate returns a configuration error for an unknown target mode or
// invalid component distributions. Unknown modes are fatal, never
// silently defaulted.
func (ts *TrainSpec) Validate() error {
	if ts.Target < 0 || ts.Target >= TrainTargetN {
		return fmt.Errorf("pulse: unknown train target mode %d", int(ts.Target))
	}
	if ts.CountMax <= 0 {
		return fmt.Errorf("pulse: train CountMax %d must be > 0", ts.CountMax)
	}
	for _, sp := range []flexval.Spec{ts.TotalDur, ts.Count, ts.Gap, ts.PulseDur, ts.ContrastSpread} {
		if err := sp.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Train is a realized pulse train: per-pulse leading gaps, durations,
// and contrast values, all in seconds and contrast units.
type Train struct {

	// Gaps hold the gap before each pulse.
	Gaps []float64

	// Durs hold each pulse's duration.
	Durs []float64

	// Contrasts hold each pulse's contrast value.
	Contrasts []float64
}

// PulseCount returns the number of pulses in the train.
func (tr *Train) PulseCount() int { return len(tr.Durs) }

// TotalDur returns the summed gap+pulse time of the train.
func (tr *Train) TotalDur() float64 {
	tot := 0.0
	for i := range tr.Durs {
		tot += tr.Gaps[i] + tr.Durs[i]
	}
	return tot
}

// Build samples an over-provisioned batch of (gap, duration) pairs and
// truncates it per the configured target mode. Trains always contain at
// least one pulse. Contrast per pulse is the trial's target level, plus
// the configured spread when one is set.
func (ts *TrainSpec) Build(rng *rand.Rand) (*Train, error) {
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	n := ts.CountMax
	var target float64
	switch ts.Target {
	case TargetCount:
		n = int(ts.Count.Value(rng))
		if n > ts.CountMax {
			n = ts.CountMax
		}
		if n < 1 {
			n = 1
		}
	case TargetDuration:
		target = ts.TotalDur.Value(rng)
	}

	gaps := ts.Gap.Values(n, rng)
	durs := ts.PulseDur.Values(n, rng)

	if ts.Target == TargetDuration {
		cum := 0.0
		cut := n
		for i := 0; i < n; i++ {
			cum += gaps[i] + durs[i]
			if cum > target && i > 0 {
				cut = i
				break
			}
		}
		gaps = gaps[:cut]
		durs = durs[:cut]
	}

	tr := &Train{Gaps: gaps, Durs: durs, Contrasts: make([]float64, len(durs))}
	for i := range tr.Contrasts {
		c := ts.Contrast
		if !ts.ContrastSpread.IsZero() {
			c += ts.ContrastSpread.Value(rng)
		}
		tr.Contrasts[i] = c
	}
	return tr, nil
}

// Schedule renders the train as a frame-based Schedule. Each pulse's
// sampled contrast level becomes the per-pulse pedestal, displaced by
// -/+ delta/2 on the left/right side and clamped to [lo, hi]. When
// maxDur > 0 the train is cut at that many seconds, keeping at least
// one pulse.
func (tr *Train) Schedule(delta, lo, hi, refreshHz, maxDur float64) (*Schedule, error) {
	if tr.PulseCount() == 0 {
		return nil, fmt.Errorf("pulse: empty train")
	}
	onsets := make([]int, 0, tr.PulseCount())
	vals := [SidesN][]float64{}
	t := 0.0
	for i := range tr.Durs {
		t += tr.Gaps[i]
		if maxDur > 0 && i > 0 && t+tr.Durs[i] > maxDur {
			break
		}
		onsets = append(onsets, Frames(refreshHz, t))
		t += tr.Durs[i]
		vals[SideL] = append(vals[SideL], clamp(tr.Contrasts[i]-delta/2, lo, hi))
		vals[SideR] = append(vals[SideR], clamp(tr.Contrasts[i]+delta/2, lo, hi))
	}
	trialFrames := Frames(refreshHz, t)
	sc := &Schedule{
		Onsets:      onsets,
		PulseFrames: Frames(refreshHz, tr.Durs[0]),
		TrialFrames: trialFrames,
		Values:      vals,
	}
	sc.Matrix = etensor.NewFloat64([]int{trialFrames, SidesN}, nil, []string{"Frame", "Side"})
	for i, on := range onsets {
		end := on + Frames(refreshHz, tr.Durs[i])
		for f := on; f < end && f < trialFrames; f++ {
			sc.Matrix.Values[f*SidesN+SideL] = vals[SideL][i]
			sc.Matrix.Values[f*SidesN+SideR] = vals[SideR][i]
		}
	}
	for side := range vals {
		if len(vals[side]) > 0 {
			sc.Means[side] = stat.Mean(vals[side], nil)
		}
	}
	return sc, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
