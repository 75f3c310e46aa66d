// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pulse

import (
	"testing"

	"github.com/cogpsych/pulses/flexval"
	"golang.org/x/exp/rand"
)

func TestOnsetFramesNoGaps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// 12-frame pulses, zero gap, 60-frame budget: pulses abut exactly
	onsets := OnsetFrames(12, flexval.Fixed(0), 60, 60, rng)
	want := []int{0, 12, 24, 36, 48}
	if len(onsets) != len(want) {
		t.Fatalf("got %v, want %v", onsets, want)
	}
	for i := range want {
		if onsets[i] != want[i] {
			t.Fatalf("got %v, want %v", onsets, want)
		}
	}
}

func TestOnsetFramesProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	gap := flexval.Expon(0.6, 2)
	for trial := 0; trial < 200; trial++ {
		trialFrames := 60 + rng.Intn(300)
		pulseFrames := 1 + rng.Intn(20)
		onsets := OnsetFrames(pulseFrames, gap, 60, trialFrames, rng)
		if pulseFrames <= trialFrames && len(onsets) == 0 {
			t.Fatalf("no pulses despite fitting budget: pulse %d trial %d", pulseFrames, trialFrames)
		}
		for i, on := range onsets {
			if i == 0 && on != 0 {
				t.Fatalf("first onset %d != 0", on)
			}
			if i > 0 && on <= onsets[i-1] {
				t.Fatalf("onsets not strictly increasing: %v", onsets)
			}
			if on+pulseFrames > trialFrames {
				t.Fatalf("pulse at %d overruns budget %d (pulse %d frames)", on, trialFrames, pulseFrames)
			}
		}
	}
}

func TestOnsetFramesDegenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	if onsets := OnsetFrames(100, flexval.Fixed(0), 60, 50, rng); len(onsets) != 0 {
		t.Errorf("expected empty schedule when first pulse does not fit, got %v", onsets)
	}
}

func TestContrastVectorLimits(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	onsets := []int{0, 20, 40}
	vec, vals, err := ContrastVector(onsets, 0.2, 0.02, 0.1, 0.3, 60, 12, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) != len(onsets) {
		t.Fatalf("got %d values for %d onsets", len(vals), len(onsets))
	}
	for _, v := range vals {
		if v < 0.1 || v > 0.3 {
			t.Errorf("contrast %g outside [0.1, 0.3]", v)
		}
	}
	// zero outside pulse windows, nonzero inside
	inPulse := func(f int) bool {
		for _, on := range onsets {
			if f >= on && f < on+12 {
				return true
			}
		}
		return false
	}
	for f, v := range vec {
		if inPulse(f) && v == 0 {
			t.Errorf("frame %d inside pulse has zero contrast", f)
		}
		if !inPulse(f) && v != 0 {
			t.Errorf("frame %d outside pulse has contrast %g", f, v)
		}
	}
}

func TestBuildSchedule(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	sc, err := Build(0.18, 0.22, 0.02, 0.1, 0.3, 12, 120, flexval.Fixed(0.2), 60, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.PulseCount() == 0 {
		t.Fatal("expected pulses in 120-frame budget")
	}
	if got := len(sc.Matrix.Values); got != 120*SidesN {
		t.Fatalf("matrix size %d, want %d", got, 120*SidesN)
	}
	for f := 0; f < sc.TrialFrames; f++ {
		l, r := sc.FrameContrast(f)
		if (l == 0) != (r == 0) {
			t.Fatalf("frame %d: sides disagree on pulse window (%g, %g)", f, l, r)
		}
	}
	if sc.Means[SideL] < 0.1 || sc.Means[SideL] > 0.3 || sc.Means[SideR] < 0.1 || sc.Means[SideR] > 0.3 {
		t.Errorf("achieved means outside limits: %v", sc.Means)
	}
}

func TestBuildScheduleBadLimits(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	if _, err := Build(5, 5, 0.001, 0.1, 0.3, 12, 120, flexval.Fixed(0.2), 60, rng); err == nil {
		t.Error("expected config error for unreachable contrast limits")
	}
}

func TestTrainCountMode(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	ts := &TrainSpec{
		Target:   TargetCount,
		Count:    flexval.Geom(0.25, 1),
		CountMax: 5,
		Gap:      flexval.TruncExpon(2, 2, 3),
		PulseDur: flexval.Fixed(0.2),
		Contrast: 0.15,
	}
	for i := 0; i < 100; i++ {
		tr, err := ts.Build(rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n := tr.PulseCount()
		if n < 1 || n > 5 {
			t.Fatalf("pulse count %d outside [1, 5]", n)
		}
		for _, c := range tr.Contrasts {
			if c != 0.15 {
				t.Fatalf("contrast %g != target level 0.15 with zero spread", c)
			}
		}
	}
}

func TestTrainDurationMode(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	ts := &TrainSpec{
		Target:   TargetDuration,
		TotalDur: flexval.Fixed(10),
		CountMax: 28,
		Gap:      flexval.TruncExpon(2, 2, 3),
		PulseDur: flexval.Fixed(0.2),
		Contrast: 0.15,
	}
	for i := 0; i < 100; i++ {
		tr, err := ts.Build(rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.PulseCount() < 1 {
			t.Fatal("train must contain at least one pulse")
		}
		// all pulses but possibly the first fit under the target
		if tr.PulseCount() > 1 && tr.TotalDur() > 10 {
			t.Fatalf("train duration %g exceeds target 10 with %d pulses", tr.TotalDur(), tr.PulseCount())
		}
	}
}

func TestTrainSchedule(t *testing.T) {
	tr := &Train{
		Gaps:      []float64{0.5, 1, 1},
		Durs:      []float64{0.2, 0.2, 0.2},
		Contrasts: []float64{0.2, 0.25, 0.15},
	}
	sc, err := tr.Schedule(0.08, 0.1, 0.3, 60, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.PulseCount() != 3 {
		t.Fatalf("pulse count %d, want 3", sc.PulseCount())
	}
	want := []int{30, 102, 174}
	for i, on := range sc.Onsets {
		if on != want[i] {
			t.Fatalf("onsets %v, want %v", sc.Onsets, want)
		}
	}
	for i := range tr.Contrasts {
		if got := sc.Values[SideR][i] - sc.Values[SideL][i]; got != 0.08 {
			t.Errorf("pulse %d delta %g, want 0.08", i, got)
		}
	}
	if sc.MeanDelta() <= 0 {
		t.Errorf("mean delta %g, want positive", sc.MeanDelta())
	}

	// a 1s cap keeps only the first pulse
	cut, err := tr.Schedule(0.08, 0.1, 0.3, 60, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cut.PulseCount() != 1 {
		t.Errorf("capped pulse count %d, want 1", cut.PulseCount())
	}
}

func TestTrainScheduleClamps(t *testing.T) {
	tr := &Train{Gaps: []float64{0.5}, Durs: []float64{0.2}, Contrasts: []float64{0.29}}
	sc, err := tr.Schedule(0.08, 0.1, 0.3, 60, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sc.Values[SideR][0]; got != 0.3 {
		t.Errorf("right contrast %g, want clamped to 0.3", got)
	}
}

func TestTrainUnknownTarget(t *testing.T) {
	ts := &TrainSpec{Target: TrainTargetN, CountMax: 5, PulseDur: flexval.Fixed(0.2)}
	if _, err := ts.Build(rand.New(rand.NewSource(9))); err == nil {
		t.Error("expected fatal config error for unknown target mode")
	}
}
