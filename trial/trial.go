// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trial runs single trials as a frame-synchronous state
// machine: fixation wait, pre-stimulus, pulse (decision) period,
// post-stimulus, response collection, and feedback, with quit and
// fixation-break checks at every frame. Expected behavioral exceptions
// (timeouts, fixation breaks) are tagged Outcomes; a subject quit is
// the ErrQuit error and aborts the whole run.
package trial

import (
	"errors"
	"math"

	"github.com/cogpsych/pulses/present"
	"github.com/goki/ki/kit"
)

// ErrQuit reports a subject-initiated abort: the run terminates
// immediately and the interrupted trial is not logged.
var ErrQuit = errors.New("trial: quit requested")

// Phase is the trial state; phases execute strictly in declaration
// order and are never re-entered.
type Phase int

//go:generate stringer -type=Phase

var KiT_Phase = kit.Enums.AddEnum(PhaseN, kit.NotBitFlag, nil)

func (ev Phase) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Phase) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	ITI Phase = iota
	Ready
	PreStim
	Decision
	PostStim
	Response
	Feedback
	End
	PhaseN
)

// Outcome is the per-trial result category. Everything but Answered is
// an expected behavioral exception, not an error.
type Outcome int

//go:generate stringer -type=Outcome

var KiT_Outcome = kit.Enums.AddEnum(OutcomeN, kit.NotBitFlag, nil)

func (ev Outcome) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Outcome) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Answered means a valid response was collected.
	Answered Outcome = iota

	// NoResponse means the response window elapsed without input.
	NoResponse

	// FixationBreak means gaze left the fixation window mid-trial.
	FixationBreak

	// NoFixation means fixation was never acquired at trial start.
	NoFixation

	OutcomeN
)

// Result holds the achieved outcomes of one trial, merged with the
// generative design row only after the trial completes.
type Result struct {

	// Outcome categorizes how the trial ended.
	Outcome Outcome

	// StimOnset is the achieved trial onset in run-clock seconds.
	StimOnset float64

	// RespOnset is the response-window onset in run-clock seconds.
	RespOnset float64

	// Key is the response key name, empty when missing.
	Key string

	// Response is the response index (0 or 1), -1 when missing.
	Response int

	// GenCorrect reports agreement with the generative rewarded response.
	GenCorrect bool

	// ObsCorrect reports agreement with the achieved stimulus asymmetry.
	ObsCorrect bool

	// RT is the reaction time from response-window onset; NaN when missing.
	RT float64

	// RespDuringStim reports key presses detected during stimulus phases.
	RespDuringStim bool

	// PulseCount is the number of pulses actually scheduled.
	PulseCount int

	// ObsMeanL, ObsMeanR, ObsMeanDelta are the achieved contrast means.
	ObsMeanL     float64
	ObsMeanR     float64
	ObsMeanDelta float64

	// DroppedFrames counts display frames dropped during the trial.
	DroppedFrames int
}

// newResult returns a Result initialized to the missing-response state.
func newResult() *Result {
	return &Result{Response: -1, RT: math.NaN()}
}

// PhaseColors are the fixation-point colors per phase and feedback
// category.
type PhaseColors struct {
	ITI          present.Color
	Ready        present.Color
	PreStim      present.Color
	Stim         present.Color
	PostStim     present.Color
	Resp         present.Color
	FeedbackPos  present.Color
	FeedbackNeg  present.Color
	FeedbackNone present.Color
}

// Feedback sound cue names, passed to the audio collaborator.
const (
	SoundPos      = "feedback_pos"
	SoundNeg      = "feedback_neg"
	SoundNone     = "feedback_none"
	SoundFixBreak = "fixbreak"
)
