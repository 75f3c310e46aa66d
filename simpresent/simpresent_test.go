// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simpresent

import (
	"math"
	"testing"
)

func TestWindowAdvancesTimeline(t *testing.T) {
	win := NewWindow(60)
	for i := 0; i < 60; i++ {
		win.Flip()
	}
	if math.Abs(win.TL.Now-1) > 1e-9 {
		t.Errorf("60 flips at 60 Hz advanced %g s, want 1", win.TL.Now)
	}
	if win.Flips != 60 {
		t.Errorf("flip count %d, want 60", win.Flips)
	}
}

func TestClockReset(t *testing.T) {
	win := NewWindow(60)
	c := NewClock(win.TL)
	for i := 0; i < 30; i++ {
		win.Flip()
	}
	c.Reset()
	win.Flip()
	if math.Abs(c.Seconds()-1.0/60) > 1e-9 {
		t.Errorf("clock %g after reset + one flip", c.Seconds())
	}
}

func TestKeyboardWaitConsumesAndAdvances(t *testing.T) {
	win := NewWindow(60)
	kb := NewKeyboard(win.TL, []ScriptKey{
		{Key: "a", At: 0.5},
		{Key: "b", At: 0.7},
	})
	c := NewClock(win.TL)

	evs := kb.WaitKeys(1, []string{"b"}, c)
	if len(evs) != 1 || evs[0].Key != "b" {
		t.Fatalf("got %v, want b", evs)
	}
	if math.Abs(win.TL.Now-0.7) > 1e-9 {
		t.Errorf("wait advanced to %g, want 0.7", win.TL.Now)
	}
	// consumed once: a second wait times out at the deadline
	if evs := kb.WaitKeys(1, []string{"b"}, c); len(evs) != 0 {
		t.Errorf("consumed key returned again: %v", evs)
	}
	if math.Abs(win.TL.Now-1.7) > 1e-9 {
		t.Errorf("timeout advanced to %g, want 1.7", win.TL.Now)
	}
}

func TestKeyboardUnboundedWaitStaysPut(t *testing.T) {
	win := NewWindow(60)
	kb := NewKeyboard(win.TL, nil)
	c := NewClock(win.TL)
	if evs := kb.WaitKeys(math.Inf(1), []string{"a"}, c); len(evs) != 0 {
		t.Fatalf("got %v from empty script", evs)
	}
	if win.TL.Now != 0 {
		t.Errorf("unbounded wait advanced time to %g", win.TL.Now)
	}
}

func TestKeyboardGetAndClear(t *testing.T) {
	win := NewWindow(60)
	kb := NewKeyboard(win.TL, []ScriptKey{
		{Key: "a", At: 0.1},
		{Key: "a", At: 0.9},
	})
	c := NewClock(win.TL)
	win.TL.Now = 0.5
	if evs := kb.GetKeys([]string{"a"}, c); len(evs) != 1 {
		t.Fatalf("got %d pending events, want 1", len(evs))
	}
	win.TL.Now = 1.0
	kb.Clear()
	if evs := kb.GetKeys([]string{"a"}, c); len(evs) != 0 {
		t.Errorf("clear left %v pending", evs)
	}
}

func TestTrackerSegments(t *testing.T) {
	win := NewWindow(60)
	tr := NewTracker(win.TL, []GazeSegment{{From: 0.2, To: 0.4, X: 5, Y: 0}})
	if !tr.InWindow([2]float64{0, 0}, 1) {
		t.Error("rest gaze not at origin")
	}
	win.TL.Now = 0.3
	if x, _ := tr.Gaze(); x != 5 {
		t.Errorf("gaze x %g during segment, want 5", x)
	}
	if tr.InWindow([2]float64{0, 0}, 1) {
		t.Error("gaze still within origin window during segment")
	}
	tr.SendMessage("probe")
	if len(tr.Messages) != 1 {
		t.Errorf("messages %v", tr.Messages)
	}
}
