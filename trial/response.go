// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trial

import (
	"github.com/cogpsych/pulses/pulse"
	"github.com/emer/emergent/erand"
)

// rewardedResponse maps the generative delta to the rewarded response
// index. Zero-delta trials have no correct answer; the reward is a fair
// coin on the process-wide stream, independent of the trial's seeded
// stimulus stream.
func rewardedResponse(genDelta float64) int {
	if genDelta == 0 {
		if erand.BoolProb(0.5, -1) {
			return pulse.SideR
		}
		return pulse.SideL
	}
	if genDelta > 0 {
		return pulse.SideR
	}
	return pulse.SideL
}

// collectResponse waits up to respDur for the first response key. Only
// response and quit keys are considered; anything else is ignored. A
// timeout leaves the Result in the missing-response state.
func (e *Engine) collectResponse(respDur float64, rewarded int, res *Result) error {
	e.Fix.Draw()
	e.Win.Flip()
	res.RespOnset = e.Clock.Seconds()
	e.Keys.Clear()
	e.RespClock.Reset()
	listen := append(append([]string{}, e.Cfg.RespKeys[:]...), e.Cfg.QuitKeys...)
	for _, ev := range e.Keys.WaitKeys(respDur, listen, e.RespClock) {
		if keyIn(ev.Key, e.Cfg.QuitKeys) {
			return ErrQuit
		}
		for i, rk := range e.Cfg.RespKeys {
			if ev.Key != rk {
				continue
			}
			res.Key = ev.Key
			res.RT = ev.Time
			res.Response = i
			res.GenCorrect = i == rewarded
			res.Outcome = Answered
			return nil
		}
	}
	res.Outcome = NoResponse
	return nil
}

// collectGazeResponse waits up to respDur for the gaze to hold within
// one response target for TargetHold seconds. Straying off the target
// mid-hold invalidates that attempt but the window keeps running, so a
// later stable hold still counts. RT is the onset of the successful
// hold.
func (e *Engine) collectGazeResponse(respDur float64, rewarded int, res *Result) error {
	e.Fix.Draw()
	e.Win.Flip()
	res.RespOnset = e.Clock.Seconds()
	e.RespClock.Reset()
	cur := -1
	holdStart := 0.0
	for e.RespClock.Seconds() < respDur {
		if err := e.checkQuit(); err != nil {
			return err
		}
		hit := -1
		for i, pos := range e.Cfg.TargetPos {
			if e.Tracker.InWindow(pos, e.Cfg.TargetWindow) {
				hit = i
				break
			}
		}
		now := e.RespClock.Seconds()
		switch {
		case hit < 0:
			cur = -1
		case hit != cur:
			cur, holdStart = hit, now
		case now-holdStart >= e.Cfg.TargetHold:
			res.RT = holdStart
			res.Response = cur
			res.GenCorrect = cur == rewarded
			res.Outcome = Answered
			return nil
		}
		e.Fix.Draw()
		e.Win.Flip()
	}
	res.Outcome = NoResponse
	return nil
}
