// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package experiment

import (
	"fmt"
	"sort"

	"github.com/cogpsych/pulses/design"
	"github.com/cogpsych/pulses/flexval"
	"github.com/cogpsych/pulses/present"
	"github.com/cogpsych/pulses/pulse"
	"github.com/cogpsych/pulses/trial"
)

// Params collects everything one run needs: the design parameters, the
// pulse scheduling parameters, the trial state-machine configuration,
// and run-level session settings.
type Params struct {

	// Name is the run-mode name the params were built for.
	Name string

	// Subject and Run identify the session in log file names.
	Subject string
	Run     int

	// Design generates the per-run trial sequence.
	Design design.Params

	// PulseDur is the single-pulse duration in seconds.
	PulseDur float64

	// PulseGap is the inter-pulse gap distribution for fixed-duration
	// trials.
	PulseGap flexval.Spec

	// ContrastSD spreads per-pulse contrast draws around the generative
	// means; zero repeats the means exactly.
	ContrastSD float64

	// UseTrains switches stimulus generation to sampled pulse trains
	// (the saccade-response variant); the realized train then sets the
	// trial's decision duration.
	UseTrains bool

	// Train configures train sampling when UseTrains is set.
	Train pulse.TrainSpec

	// TrainMax caps the realized train duration in seconds; 0 = no cap.
	TrainMax float64

	// Trial configures the trial state machine.
	Trial trial.Config

	// LeadoutDur holds fixation after the last trial, in seconds.
	LeadoutDur float64

	// BreakDur is the minimum break-screen duration; in self-paced
	// modes the ready keys then advance past the break.
	BreakDur float64

	// RestDur is the fixation-only run duration for the rest mode.
	RestDur float64

	// LogDir is where log files are written; empty means the working
	// directory. NoLog disables file output entirely.
	LogDir string
	NoLog  bool

	// SavePlot renders the psychometric summary PNG at exit.
	SavePlot bool
}

// Base returns the shared base parameter set; every mode starts here
// and overlays its differences.
func Base() *Params {
	p := &Params{
		Design: design.Params{
			CyclesPerRun:     10,
			CyclesRepeated:   2,
			ContrastDeltas:   []float64{0, 0.005, 0.01, 0.02, 0.04, 0.08},
			ContrastPedestal: flexval.Uniform(0.15, 0.1),
			ContrastLimits:   [2]float64{0.1, 0.3},
			TrialDur:         flexval.TruncExpon(3, 4, 4),
			PreStimDur:       flexval.Uniform(0.5, 0.5),
			PostStimDur:      flexval.Fixed(0.5),
			RespDur:          flexval.Fixed(3),
			FeedbackDur:      flexval.Fixed(0.4),
			ITIDur:           flexval.Uniform(1.2, 0.8),
			TrialsPerBreak:   16,
		},
		PulseDur:   0.2,
		PulseGap:   flexval.Expon(0.6, 2),
		ContrastSD: 0.02,
		Trial: trial.Config{
			ReadyKeys:       []string{"lshift", "rshift"},
			RespKeys:        [2]string{"lshift", "rshift"},
			QuitKeys:        []string{"escape"},
			SettleWait:      0.1,
			PreStimContrast: flexval.Fixed(0),
			FeedbackSounds:  true,
			Colors: trial.PhaseColors{
				ITI:          present.Color{0.6, 0.6, 0.6},
				Ready:        present.Color{1, 1, 1},
				PreStim:      present.Color{1, 1, 1},
				Stim:         present.Color{1, 1, 1},
				PostStim:     present.Color{1, 1, 1},
				Resp:         present.Color{0, 0, 1},
				FeedbackPos:  present.Color{0, 1, 0},
				FeedbackNeg:  present.Color{1, 0, 0},
				FeedbackNone: present.Color{0.6, 0.6, 0.6},
			},
		},
		BreakDur: 2,
		SavePlot: true,
	}
	return p
}

// TrainingNoGaps is the first training mode: short trials of abutting
// pulses, self-paced.
func TrainingNoGaps() *Params {
	p := Base()
	p.Name = "training_no_gaps"
	p.Design.TrialDur = flexval.Expon(0.2, 0.6)
	p.PulseGap = flexval.Fixed(0)
	p.Trial.SelfPaced = true
	return p
}

// TrainingWithGaps is the second training mode: long trials with
// sampled inter-pulse gaps, still self-paced.
func TrainingWithGaps() *Params {
	p := Base()
	p.Name = "training_with_gaps"
	p.Trial.SelfPaced = true
	return p
}

// ScanPilot is the scanner-timing mode: onset-clock paced against a
// fixed run duration, leadout at the end, no breaks or sounds.
func ScanPilot() *Params {
	p := Base()
	p.Name = "scan_pilot"
	p.Design.SecondsPerRun = 460
	p.Design.TrialsPerBreak = 1 << 30
	p.Design.FeedbackDur = flexval.Fixed(0.2)
	p.Trial.SelfPaced = false
	p.Trial.FeedbackSounds = false
	p.LeadoutDur = 12
	return p
}

// Gaze is the saccade-response mode: gaze-contingent trials with
// sampled pulse trains, per-frame fixation enforcement, and gaze
// target response collection.
func Gaze() *Params {
	p := ScanPilot()
	p.Name = "gaze"
	p.UseTrains = true
	p.Train = pulse.TrainSpec{
		Target:   pulse.TargetCount,
		Count:    flexval.Geom(0.25, 1),
		CountMax: 5,
		Gap:      flexval.TruncExpon(4, 2, 2),
		PulseDur: flexval.Fixed(0.2),
	}
	p.TrainMax = 28
	p.Trial.MonitorEye = true
	p.Trial.EnforceFix = true
	p.Trial.FixWindow = 2
	p.Trial.WaitFix = 5
	p.Trial.EyeResponse = true
	p.Trial.TargetPos = [][2]float64{{-8, 3}, {8, 3}}
	p.Trial.TargetWindow = 3
	p.Trial.TargetHold = 0.3
	return p
}

// Rest is the fixation-only mode: no trials, just a held fixation point
// with abort checks.
func Rest() *Params {
	p := Base()
	p.Name = "rest"
	p.RestDur = 300
	p.Trial.FeedbackSounds = false
	p.SavePlot = false
	return p
}

// Modes maps run-mode names to their parameter constructors.
var Modes = map[string]func() *Params{
	"training_no_gaps":   TrainingNoGaps,
	"training_with_gaps": TrainingWithGaps,
	"scan_pilot":         ScanPilot,
	"gaze":               Gaze,
	"rest":               Rest,
}

// ModeParams returns the parameters for the named mode; unknown modes
// are a fatal configuration error listing the valid names.
func ModeParams(name string) (*Params, error) {
	ctor, ok := Modes[name]
	if !ok {
		names := make([]string, 0, len(Modes))
		for n := range Modes {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("experiment: unknown mode %q, have %v", name, names)
	}
	return ctor(), nil
}
