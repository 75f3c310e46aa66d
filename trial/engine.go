// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trial

import (
	"errors"
	"fmt"
	"math"

	"github.com/cogpsych/pulses/design"
	"github.com/cogpsych/pulses/flexval"
	"github.com/cogpsych/pulses/present"
	"github.com/cogpsych/pulses/pulse"
	"golang.org/x/exp/rand"
)

// behavioral sentinels, translated to Outcomes at the top of Run
var (
	errFixBreak = errors.New("trial: fixation break")
	errNoFix    = errors.New("trial: fixation not acquired")
)

// Config holds the presentation-side parameters of the trial state
// machine. The experiment fills it from the mode parameters.
type Config struct {

	// SelfPaced gates each trial on a ready-key press instead of the
	// scheduled onset clock alone.
	SelfPaced bool

	// ReadyKeys are the keys confirming readiness; with two keys, both
	// must arrive within SettleWait of each other.
	ReadyKeys []string

	// RespKeys map response index 0 (left) and 1 (right) to key names.
	RespKeys [2]string

	// QuitKeys abort the run from any phase.
	QuitKeys []string

	// SettleWait is the window for the second ready key, in seconds.
	SettleWait float64

	// PreStimContrast is the patch contrast shown during the
	// pre-stimulus phase; zero draws nothing.
	PreStimContrast flexval.Spec

	// MonitorEye enables gaze processing; the remaining eye fields are
	// ignored without it.
	MonitorEye bool

	// EnforceFix aborts the trial as a fixation break whenever gaze
	// leaves the fixation window during stimulus phases.
	EnforceFix bool

	// FixPos and FixWindow define the fixation window in degrees.
	FixPos    [2]float64
	FixWindow float64

	// WaitFix is the maximum wait to acquire fixation at trial start;
	// zero skips the acquisition gate.
	WaitFix float64

	// EyeResponse collects the response by sustained gaze on a target
	// instead of a key press.
	EyeResponse bool

	// TargetPos are the response target centers, indexed by response.
	TargetPos [][2]float64

	// TargetWindow and TargetHold define a gaze response: the gaze must
	// stay within TargetWindow of one target for TargetHold seconds.
	TargetWindow float64
	TargetHold   float64

	// Colors recolor the fixation point per phase.
	Colors PhaseColors

	// FeedbackSounds plays the outcome sound cues.
	FeedbackSounds bool
}

// Defaults fills required defaults on unset fields.
func (cf *Config) Defaults() {
	if cf.SettleWait == 0 {
		cf.SettleWait = 0.1
	}
}

// Validate returns a configuration error for inconsistent settings.
func (cf *Config) Validate() error {
	if cf.SelfPaced && len(cf.ReadyKeys) == 0 {
		return fmt.Errorf("trial: self-paced without ready keys")
	}
	if cf.EyeResponse {
		if !cf.MonitorEye {
			return fmt.Errorf("trial: gaze response requires eye monitoring")
		}
		if len(cf.TargetPos) == 0 {
			return fmt.Errorf("trial: gaze response without targets")
		}
	}
	if err := cf.PreStimContrast.Validate(); err != nil {
		return err
	}
	return nil
}

// Engine runs trials against the presentation collaborators. One
// engine serves a whole run; all per-trial state lives in Result.
type Engine struct {

	// Win is the display; all phase timing is frame-locked to it.
	Win present.Window

	// Keys is the keyboard event source.
	Keys present.Keyboard

	// Tracker is the eye tracker; nil unless Cfg.MonitorEye.
	Tracker present.EyeTracker

	// Audio plays feedback cues; may be nil.
	Audio present.AudioPlayer

	// Clock is the run clock, zeroed at run start by the caller;
	// scheduled onsets are on this clock.
	Clock present.Clock

	// RespClock times response and fixation-acquisition windows.
	RespClock present.Clock

	// Fix is the fixation point, recolored per phase.
	Fix present.ColorStimulus

	// Patches is the two-sided contrast stimulus.
	Patches present.ContrastStimulus

	// Cfg is the state-machine configuration.
	Cfg Config
}

// Run executes one trial and returns its Result. Behavioral exceptions
// (no fixation, fixation break, no response) come back as Outcomes
// with a nil error; ErrQuit aborts the run.
func (e *Engine) Run(td *design.Trial, sc *pulse.Schedule, rng *rand.Rand) (*Result, error) {
	e.Cfg.Defaults()
	if err := e.Cfg.Validate(); err != nil {
		return nil, err
	}
	res := newResult()
	res.PulseCount = sc.PulseCount()
	res.ObsMeanL = sc.Means[pulse.SideL]
	res.ObsMeanR = sc.Means[pulse.SideR]
	res.ObsMeanDelta = sc.MeanDelta()

	e.Win.ResetDroppedFrames()
	err := e.runPhases(td, sc, rng, res)
	res.DroppedFrames = e.Win.DroppedFrames()
	switch {
	case err == nil:
	case errors.Is(err, errFixBreak):
		res.Outcome = FixationBreak
		e.play(SoundFixBreak)
		e.resetDisplay()
	case errors.Is(err, errNoFix):
		res.Outcome = NoFixation
		e.play(SoundNone)
		e.resetDisplay()
	default:
		return nil, err
	}
	return res, nil
}

// runPhases advances the state machine in order; any error unwinds the
// trial immediately.
func (e *Engine) runPhases(td *design.Trial, sc *pulse.Schedule, rng *rand.Rand, res *Result) error {
	hz := e.Win.RefreshHz()

	e.setPhase(ITI)
	if err := e.waitUntil(td.StimTime); err != nil {
		return err
	}

	e.setPhase(Ready)
	if e.Cfg.SelfPaced {
		if err := e.waitForReady(); err != nil {
			return err
		}
	} else if e.Cfg.MonitorEye && e.Cfg.WaitFix > 0 {
		if err := e.waitForFixation(); err != nil {
			return err
		}
	}
	e.Keys.Clear()
	res.StimOnset = e.Clock.Seconds()

	e.setPhase(PreStim)
	pre := e.Cfg.PreStimContrast.Value(rng)
	for f := 0; f < pulse.Frames(hz, td.PreStimDur); f++ {
		if err := e.frameChecks(); err != nil {
			return err
		}
		if pre != 0 {
			e.Patches.SetContrast(pre, pre)
			e.Patches.Draw()
		}
		e.Fix.Draw()
		e.Win.Flip()
	}

	e.setPhase(Decision)
	for f := 0; f < sc.TrialFrames; f++ {
		if err := e.frameChecks(); err != nil {
			return err
		}
		if sc.Active(f) {
			l, r := sc.FrameContrast(f)
			e.Patches.SetContrast(l, r)
			e.Patches.Draw()
		}
		e.Fix.Draw()
		e.Win.Flip()
	}

	e.setPhase(PostStim)
	for f := 0; f < pulse.Frames(hz, td.PostStimDur); f++ {
		if err := e.frameChecks(); err != nil {
			return err
		}
		e.Fix.Draw()
		e.Win.Flip()
	}

	// responses leaked during stimulus phases are flagged, not scored
	if evs := e.Keys.GetKeys(e.Cfg.RespKeys[:], e.Clock); len(evs) > 0 {
		res.RespDuringStim = true
	}

	e.setPhase(Response)
	rewarded := rewardedResponse(td.GenMeanDelta)
	var err error
	if e.Cfg.EyeResponse {
		err = e.collectGazeResponse(td.RespDur, rewarded, res)
	} else {
		err = e.collectResponse(td.RespDur, rewarded, res)
	}
	if err != nil {
		return err
	}
	if res.Outcome == Answered {
		res.ObsCorrect = (res.Response == pulse.SideR) == (sc.MeanDelta() > 0)
	}

	e.feedback(res)
	for f := 0; f < pulse.Frames(hz, td.FeedbackDur); f++ {
		if err := e.checkQuit(); err != nil {
			return err
		}
		e.Fix.Draw()
		e.Win.Flip()
	}

	e.setPhase(End)
	e.Fix.Draw()
	e.Win.Flip()
	return nil
}

// waitUntil flips fixation-only frames until the run clock reaches the
// scheduled time, to within half a refresh period.
func (e *Engine) waitUntil(when float64) error {
	half := 0.5 / e.Win.RefreshHz()
	for e.Clock.Seconds() < when-half {
		if err := e.checkQuit(); err != nil {
			return err
		}
		e.Fix.Draw()
		e.Win.Flip()
	}
	return nil
}

// waitForReady blocks until the ready keys confirm. With two ready keys
// the second must land within SettleWait of the first, so a single
// resting hand cannot start the trial. An empty result from the
// unbounded wait means the input source is closed and quits the run.
func (e *Engine) waitForReady() error {
	listen := append(append([]string{}, e.Cfg.ReadyKeys...), e.Cfg.QuitKeys...)
	for {
		evs := e.Keys.WaitKeys(math.Inf(1), listen, e.Clock)
		if len(evs) == 0 {
			return ErrQuit
		}
		for _, ev := range evs {
			if keyIn(ev.Key, e.Cfg.QuitKeys) {
				return ErrQuit
			}
			others := make([]string, 0, len(e.Cfg.ReadyKeys))
			for _, rk := range e.Cfg.ReadyKeys {
				if rk != ev.Key {
					others = append(others, rk)
				}
			}
			if len(others) == 0 {
				return nil
			}
			if len(e.Keys.WaitKeys(e.Cfg.SettleWait, others, e.Clock)) > 0 {
				return nil
			}
		}
	}
}

// waitForFixation gates the trial on gaze entering the fixation window
// within WaitFix seconds.
func (e *Engine) waitForFixation() error {
	e.RespClock.Reset()
	for e.RespClock.Seconds() < e.Cfg.WaitFix {
		if err := e.checkQuit(); err != nil {
			return err
		}
		if e.Tracker.InWindow(e.Cfg.FixPos, e.Cfg.FixWindow) {
			return nil
		}
		e.Fix.Draw()
		e.Win.Flip()
	}
	return errNoFix
}

// frameChecks runs the per-frame quit and fixation checks during
// stimulus phases.
func (e *Engine) frameChecks() error {
	if err := e.checkQuit(); err != nil {
		return err
	}
	if e.Cfg.MonitorEye && e.Cfg.EnforceFix && !e.Tracker.InWindow(e.Cfg.FixPos, e.Cfg.FixWindow) {
		return errFixBreak
	}
	return nil
}

func (e *Engine) checkQuit() error {
	if len(e.Keys.GetKeys(e.Cfg.QuitKeys, e.Clock)) > 0 {
		return ErrQuit
	}
	return nil
}

// feedback recolors the fixation point and plays the cue matching the
// trial outcome.
func (e *Engine) feedback(res *Result) {
	e.mark(Feedback)
	switch {
	case res.Outcome == Answered && res.GenCorrect:
		e.Fix.SetColor(e.Cfg.Colors.FeedbackPos)
		e.play(SoundPos)
	case res.Outcome == Answered:
		e.Fix.SetColor(e.Cfg.Colors.FeedbackNeg)
		e.play(SoundNeg)
	default:
		e.Fix.SetColor(e.Cfg.Colors.FeedbackNone)
		e.play(SoundNone)
	}
}

// setPhase advances the state machine: recolors the fixation point and
// writes an event marker to the tracker record.
func (e *Engine) setPhase(ph Phase) {
	switch ph {
	case ITI, End:
		e.Fix.SetColor(e.Cfg.Colors.ITI)
	case Ready:
		e.Fix.SetColor(e.Cfg.Colors.Ready)
	case PreStim:
		e.Fix.SetColor(e.Cfg.Colors.PreStim)
	case Decision:
		e.Fix.SetColor(e.Cfg.Colors.Stim)
	case PostStim:
		e.Fix.SetColor(e.Cfg.Colors.PostStim)
	case Response:
		e.Fix.SetColor(e.Cfg.Colors.Resp)
	}
	e.mark(ph)
}

func (e *Engine) mark(ph Phase) {
	if e.Cfg.MonitorEye && e.Tracker != nil {
		e.Tracker.SendMessage("phase " + ph.String())
	}
}

// resetDisplay returns the screen to the inter-trial state after an
// aborted trial.
func (e *Engine) resetDisplay() {
	e.setPhase(ITI)
	e.Fix.Draw()
	e.Win.Flip()
}

func (e *Engine) play(name string) {
	if e.Audio != nil && e.Cfg.FeedbackSounds {
		e.Audio.Play(name)
	}
}

func keyIn(key string, keys []string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
