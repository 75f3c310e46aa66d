// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package design generates the full trial sequence for an experiment
// run: balanced, shuffled condition cycles with per-trial generative
// contrast means, sampled durations, deterministic seeds, break
// markers, and inter-trial intervals fitted to a target run length.
package design

import (
	"fmt"
	"math"

	"github.com/cogpsych/pulses/flexval"
	"github.com/emer/emergent/erand"
	"golang.org/x/exp/rand"
)

// Trial is one row of the run design: the immutable generative
// description of a single trial. Achieved outcomes live in
// trial.Result and are merged only at logging time.
type Trial struct {

	// Trial is the position in the shuffled run order.
	Trial int

	// GenMeanL and GenMeanR are the generative contrast means per side.
	GenMeanL float64
	GenMeanR float64

	// GenMeanDelta is the signed difference GenMeanR - GenMeanL.
	GenMeanDelta float64

	// TrialDur is the decision (pulse) period duration in seconds.
	TrialDur float64

	// PreStimDur and PostStimDur bracket the decision period.
	PreStimDur  float64
	PostStimDur float64

	// RespDur is the maximum response wait.
	RespDur float64

	// FeedbackDur is the feedback presentation duration.
	FeedbackDur float64

	// ITI is the inter-trial interval preceding this trial.
	ITI float64

	// Seed deterministically seeds this trial's stimulus stream.
	Seed int64

	// Paired marks trials belonging to a duplicated (repeated) cycle.
	Paired bool

	// Break marks trials preceded by a break screen.
	Break bool

	// StimTime is the scheduled absolute trial onset in run seconds.
	StimTime float64

	// FullDur is the total trial duration including the ITI.
	FullDur float64
}

// Params configure run design generation. Duration fields are
// flexible values sampled per trial.
type Params struct {

	// CyclesPerRun is the number of fresh condition cycles.
	CyclesPerRun int

	// CyclesRepeated is how many of the earliest cycles are duplicated
	// verbatim and flagged paired.
	CyclesRepeated int

	// ContrastDeltas are the unsigned contrast differences; each cycle
	// contains one trial per signed delta (mirrored around zero).
	ContrastDeltas []float64

	// ContrastPedestal is the baseline contrast level distribution.
	ContrastPedestal flexval.Spec

	// ContrastLimits bound both generative means (low, high).
	ContrastLimits [2]float64

	// Per-trial duration distributions, in seconds.
	TrialDur    flexval.Spec
	PreStimDur  flexval.Spec
	PostStimDur flexval.Spec
	RespDur     flexval.Spec
	FeedbackDur flexval.Spec
	ITIDur      flexval.Spec

	// TrialsPerBreak inserts a break marker every N trials (never on
	// the first trial).
	TrialsPerBreak int

	// SecondsPerRun, when > 0, is the target total run duration the
	// ITIs are fitted to.
	SecondsPerRun float64

	// ITIFloor is the minimum ITI; defaults to 1 second.
	ITIFloor float64
}

// Defaults fills in required defaults on unset fields.
func (p *Params) Defaults() {
	if p.ITIFloor == 0 {
		p.ITIFloor = 1
	}
}

// Validate returns a configuration error for inconsistent design
// parameters; unknown distributions are fatal here, at design time.
func (p *Params) Validate() error {
	if p.CyclesPerRun <= 0 {
		return fmt.Errorf("design: CyclesPerRun %d must be > 0", p.CyclesPerRun)
	}
	if p.CyclesRepeated < 0 || p.CyclesRepeated > p.CyclesPerRun {
		return fmt.Errorf("design: CyclesRepeated %d outside [0, %d]", p.CyclesRepeated, p.CyclesPerRun)
	}
	if len(p.ContrastDeltas) == 0 {
		return fmt.Errorf("design: no contrast deltas configured")
	}
	if p.ContrastLimits[0] >= p.ContrastLimits[1] {
		return fmt.Errorf("design: contrast limits %v not increasing", p.ContrastLimits)
	}
	if p.TrialsPerBreak <= 0 {
		return fmt.Errorf("design: TrialsPerBreak %d must be > 0", p.TrialsPerBreak)
	}
	for _, sp := range []flexval.Spec{p.ContrastPedestal, p.TrialDur, p.PreStimDur,
		p.PostStimDur, p.RespDur, p.FeedbackDur, p.ITIDur} {
		if err := sp.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MaxRejectPasses caps the batch rejection loops (contrast pairs, ITI
// fitting); exhaustion is a configuration error.
const MaxRejectPasses = 1000

// ContrastPairs finds valid (left, right) generative mean pairs for the
// given signed deltas: a sampled pedestal displaced by +/- delta/2,
// resampling the pedestal (never the delta) for any pair outside the
// limits. The whole batch is rechecked per pass rather than row by row.
func ContrastPairs(signed []float64, pedestal flexval.Spec, lo, hi float64, rng *rand.Rand) ([][2]float64, error) {
	pairs := make([][2]float64, len(signed))
	replace := make([]bool, len(signed))
	for i := range replace {
		replace[i] = true
	}
	for pass := 0; pass < MaxRejectPasses; pass++ {
		done := true
		for i, d := range signed {
			if !replace[i] {
				continue
			}
			ped := pedestal.Value(rng)
			pairs[i] = [2]float64{ped - d/2, ped + d/2}
			if math.Min(pairs[i][0], pairs[i][1]) < lo || math.Max(pairs[i][0], pairs[i][1]) > hi {
				done = false
				continue
			}
			replace[i] = false
		}
		if done {
			return pairs, nil
		}
	}
	return nil, fmt.Errorf("design: no valid contrast pairs within [%g, %g] after %d passes; pedestal %v cannot clear max delta", lo, hi, MaxRejectPasses, pedestal)
}

// GenerateRun produces the full shuffled trial sequence for one run.
// Sampling uses the unseeded design stream rng; trial-order shuffling
// uses the process-wide stream, matching the rest of the arbitration
// draws.
func GenerateRun(p *Params, rng *rand.Rand) ([]Trial, error) {
	p.Defaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// signed delta vector: one trial per sign per unsigned delta
	signed := make([]float64, 0, 2*len(p.ContrastDeltas))
	for _, d := range p.ContrastDeltas {
		signed = append(signed, -d)
	}
	signed = append(signed, p.ContrastDeltas...)

	var trials []Trial
	cycles := make([][]Trial, 0, p.CyclesPerRun+p.CyclesRepeated)
	for c := 0; c < p.CyclesPerRun; c++ {
		cyc, err := p.genCycle(signed, rng)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, cyc)
	}
	// duplicate the earliest cycles verbatim; duplicates are the
	// paired trials, reproducing their source cycle's seeds
	for i := 0; i < p.CyclesRepeated; i++ {
		dup := make([]Trial, len(cycles[i]))
		copy(dup, cycles[i])
		for j := range dup {
			dup[j].Paired = true
		}
		cycles = append(cycles, dup)
	}
	for _, cyc := range cycles {
		trials = append(trials, cyc...)
	}

	// randomize trial order without replacement
	n := len(trials)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	erand.PermuteInts(order)
	shuffled := make([]Trial, n)
	for i, oi := range order {
		shuffled[i] = trials[oi]
	}
	trials = shuffled

	for i := range trials {
		trials[i].Trial = i
		trials[i].Break = i > 0 && i%p.TrialsPerBreak == 0
	}

	if err := p.fitITIs(trials, rng); err != nil {
		return nil, err
	}

	// schedule absolute onsets: each trial starts after its own ITI,
	// offset by the cumulative duration of everything before it
	cum := 0.0
	for i := range trials {
		t := &trials[i]
		secs := t.PreStimDur + t.TrialDur + t.PostStimDur + t.RespDur + t.FeedbackDur
		t.FullDur = secs + t.ITI
		t.StimTime = cum + t.ITI
		cum += t.FullDur
	}
	return trials, nil
}

// genCycle builds one condition cycle: one trial per signed delta, with
// a shared seed base offset by the delta so identical conditions across
// cycles draw fresh stimuli while duplicated cycles reproduce exactly.
func (p *Params) genCycle(signed []float64, rng *rand.Rand) ([]Trial, error) {
	pairs, err := ContrastPairs(signed, p.ContrastPedestal, p.ContrastLimits[0], p.ContrastLimits[1], rng)
	if err != nil {
		return nil, err
	}
	seedBase := int64(1000 + rng.Intn(8000))
	cyc := make([]Trial, len(signed))
	for i, d := range signed {
		cyc[i] = Trial{
			GenMeanL:     pairs[i][0],
			GenMeanR:     pairs[i][1],
			GenMeanDelta: d,
			TrialDur:     p.TrialDur.Value(rng),
			PreStimDur:   p.PreStimDur.Value(rng),
			PostStimDur:  p.PostStimDur.Value(rng),
			RespDur:      p.RespDur.Value(rng),
			FeedbackDur:  p.FeedbackDur.Value(rng),
			Seed:         seedBase + int64(math.Round(10000*d)),
		}
	}
	return cyc, nil
}

// fitITIs samples inter-trial intervals, redistributing any shortfall
// or excess against the target run duration additively across all
// trials, and resampling until every ITI clears the floor.
func (p *Params) fitITIs(trials []Trial, rng *rand.Rand) error {
	n := len(trials)
	total := 0.0
	for i := range trials {
		t := &trials[i]
		total += t.PreStimDur + t.TrialDur + t.PostStimDur + t.RespDur + t.FeedbackDur
	}
	for pass := 0; pass < MaxRejectPasses; pass++ {
		itis := p.ITIDur.Values(n, rng)
		if p.SecondsPerRun > 0 {
			needed := p.SecondsPerRun - total
			for _, iti := range itis {
				needed -= iti
			}
			adj := needed / float64(n)
			for i := range itis {
				itis[i] += adj
			}
		}
		ok := true
		for _, iti := range itis {
			if iti <= p.ITIFloor {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for i := range trials {
			trials[i].ITI = itis[i]
		}
		return nil
	}
	return fmt.Errorf("design: could not fit ITIs above %gs floor to %gs run in %d passes", p.ITIFloor, p.SecondsPerRun, MaxRejectPasses)
}
