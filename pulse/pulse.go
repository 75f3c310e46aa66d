// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pulse schedules stimulus pulse trains in display-frame units:
// onset frame indices within a trial's frame budget, per-pulse contrast
// values drawn from a bounded normal, and the per-frame contrast matrix
// the trial engine renders one row per flip.
package pulse

import (
	"fmt"
	"math"

	"github.com/cogpsych/pulses/flexval"
	"github.com/emer/etable/etensor"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Sides index the two stimulus channels (visual field sides) in
// contrast matrices and per-pulse value arrays.
const (
	SideL = iota
	SideR
	SidesN
)

// Frames converts a duration in seconds to whole display frames at the
// given refresh rate.
func Frames(refreshHz, secs float64) int {
	return int(math.Round(refreshHz * secs))
}

// OnsetFrames returns the frame indices where each pulse starts. The
// first pulse is at frame 0, and each subsequent onset follows the
// previous by the pulse duration plus a sampled gap, stopping before
// any pulse would extend past trialFrames. A gap distribution that can
// sample 0 yields abutting pulses, which is legal. If even the first
// pulse does not fit the result is empty; callers must tolerate zero
// pulses.
func OnsetFrames(pulseFrames int, gap flexval.Spec, refreshHz float64, trialFrames int, rng *rand.Rand) []int {
	if pulseFrames <= 0 || pulseFrames > trialFrames {
		return nil
	}
	onsets := []int{0}
	for {
		last := onsets[len(onsets)-1]
		gapFrames := Frames(refreshHz, gap.Value(rng))
		next := last + pulseFrames + gapFrames
		if next+pulseFrames > trialFrames {
			break
		}
		onsets = append(onsets, next)
	}
	return onsets
}

// ContrastVector draws one bounded-normal contrast value per onset and
// paints the per-frame vector, which is zero outside the
// [onset, onset+pulseFrames) windows. It returns the vector and the
// per-pulse values, or a configuration error if the limits are
// unreachable.
func ContrastVector(onsets []int, mean, sd, lo, hi float64, trialFrames, pulseFrames int, rng *rand.Rand) ([]float64, []float64, error) {
	vec := make([]float64, trialFrames)
	vals := make([]float64, 0, len(onsets))
	for _, on := range onsets {
		c, err := flexval.NormWithin(mean, sd, lo, hi, rng)
		if err != nil {
			return nil, nil, err
		}
		for f := on; f < on+pulseFrames && f < trialFrames; f++ {
			vec[f] = c
		}
		vals = append(vals, c)
	}
	return vec, vals, nil
}

// Schedule is the full pulse schedule for one trial: onsets, per-pulse
// contrast values for each side, and the (frame x side) contrast
// matrix. It is owned by the trial that generated it and discarded
// after logging.
type Schedule struct {

	// Onsets are the pulse onset frame indices, strictly increasing from 0.
	Onsets []int

	// PulseFrames is the duration of each pulse in frames.
	PulseFrames int

	// TrialFrames is the trial's total frame budget.
	TrialFrames int

	// Values holds the sampled per-pulse contrast for each side.
	Values [SidesN][]float64

	// Means are the achieved mean contrast per side across pulses.
	Means [SidesN]float64

	// Matrix is the per-frame contrast, shape (TrialFrames, SidesN).
	Matrix *etensor.Float64
}

// Build assembles the complete schedule for a trial: pulse onsets from
// the gap distribution and independent bounded-normal contrast draws
// per side around the generative means.
func Build(meanL, meanR, sd, lo, hi float64, pulseFrames, trialFrames int, gap flexval.Spec, refreshHz float64, rng *rand.Rand) (*Schedule, error) {
	sc := &Schedule{
		Onsets:      OnsetFrames(pulseFrames, gap, refreshHz, trialFrames, rng),
		PulseFrames: pulseFrames,
		TrialFrames: trialFrames,
	}
	sc.Matrix = etensor.NewFloat64([]int{trialFrames, SidesN}, nil, []string{"Frame", "Side"})
	for side, mean := range []float64{meanL, meanR} {
		vec, vals, err := ContrastVector(sc.Onsets, mean, sd, lo, hi, trialFrames, pulseFrames, rng)
		if err != nil {
			return nil, err
		}
		for f := 0; f < trialFrames; f++ {
			sc.Matrix.Values[f*SidesN+side] = vec[f]
		}
		sc.Values[side] = vals
		if len(vals) > 0 {
			sc.Means[side] = stat.Mean(vals, nil)
		}
	}
	return sc, nil
}

// PulseCount returns the number of scheduled pulses.
func (sc *Schedule) PulseCount() int { return len(sc.Onsets) }

// MeanDelta returns the achieved contrast difference (right - left)
// across pulses, for reconciliation against the generative delta.
func (sc *Schedule) MeanDelta() float64 { return sc.Means[SideR] - sc.Means[SideL] }

// FrameContrast returns the (left, right) contrast to render on the
// given frame.
func (sc *Schedule) FrameContrast(frame int) (l, r float64) {
	return sc.Matrix.Values[frame*SidesN+SideL], sc.Matrix.Values[frame*SidesN+SideR]
}

// Active reports whether any side is nonzero on the given frame, so
// the engine can skip drawing the patches between pulses.
func (sc *Schedule) Active(frame int) bool {
	l, r := sc.FrameContrast(frame)
	return l != 0 || r != 0
}

// String summarizes the schedule for trial debugging output.
func (sc *Schedule) String() string {
	return fmt.Sprintf("%d pulses in %d frames, mean delta %.4f", sc.PulseCount(), sc.TrialFrames, sc.MeanDelta())
}
