// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simpresent implements the present interfaces against a shared
// virtual timeline instead of real hardware. Flipping the window
// advances virtual time by one refresh period, scripted key and gaze
// events play back at their scheduled times, and played sounds are
// recorded. It backs the trial engine tests and the dry-run mode of the
// command.
package simpresent

import (
	"fmt"
	"math"
	"sort"

	"github.com/cogpsych/pulses/present"
)

// Timeline is the shared virtual clock all simulated collaborators read.
type Timeline struct {

	// Now is the current virtual time in seconds.
	Now float64
}

// Window is a simulated display. Flip advances the shared timeline by
// one refresh period and returns the new time; dropped frames are
// injected by tests via DropFrames.
type Window struct {
	TL *Timeline
	Hz float64

	// Flips counts buffer swaps since construction.
	Flips int

	dropped int
}

// NewWindow returns a simulated window at the given refresh rate,
// creating a fresh timeline.
func NewWindow(hz float64) *Window {
	return &Window{TL: &Timeline{}, Hz: hz}
}

func (w *Window) RefreshHz() float64 { return w.Hz }

func (w *Window) Flip() float64 {
	w.TL.Now += 1 / w.Hz
	w.Flips++
	return w.TL.Now
}

func (w *Window) DroppedFrames() int  { return w.dropped }
func (w *Window) ResetDroppedFrames() { w.dropped = 0 }

// DropFrames injects n dropped frames into the current count.
func (w *Window) DropFrames(n int) { w.dropped += n }

// Clock reads the shared timeline with a resettable zero.
type Clock struct {
	TL   *Timeline
	zero float64
}

// NewClock returns a clock on tl, zeroed at the current time.
func NewClock(tl *Timeline) *Clock { return &Clock{TL: tl, zero: tl.Now} }

func (c *Clock) Reset()           { c.zero = c.TL.Now }
func (c *Clock) Seconds() float64 { return c.TL.Now - c.zero }

// ScriptKey is one scheduled key press on the timeline.
type ScriptKey struct {

	// Key is the key name.
	Key string

	// At is the press time in absolute timeline seconds.
	At float64
}

// Keyboard plays back a script of timed key presses. WaitKeys advances
// the timeline to the matching event (or the deadline); events are
// consumed once. An unbounded wait with no matching event left returns
// empty, which the engine treats as a closed input source.
type Keyboard struct {
	TL     *Timeline
	Script []ScriptKey

	used []bool
}

// NewKeyboard returns a keyboard playing back script on tl, sorted by
// time.
func NewKeyboard(tl *Timeline, script []ScriptKey) *Keyboard {
	sc := make([]ScriptKey, len(script))
	copy(sc, script)
	sort.SliceStable(sc, func(i, j int) bool { return sc[i].At < sc[j].At })
	return &Keyboard{TL: tl, Script: sc, used: make([]bool, len(sc))}
}

func match(key string, keys []string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func (k *Keyboard) WaitKeys(maxWait float64, keys []string, clock present.Clock) []present.KeyEvent {
	deadline := k.TL.Now + maxWait
	for i, ev := range k.Script {
		if k.used[i] || ev.At < k.TL.Now || !match(ev.Key, keys) {
			continue
		}
		if ev.At > deadline {
			break
		}
		k.used[i] = true
		k.TL.Now = ev.At
		return []present.KeyEvent{{Key: ev.Key, Time: clock.Seconds()}}
	}
	if !math.IsInf(maxWait, 1) {
		k.TL.Now = deadline
	}
	return nil
}

func (k *Keyboard) GetKeys(keys []string, clock present.Clock) []present.KeyEvent {
	var out []present.KeyEvent
	for i, ev := range k.Script {
		if k.used[i] || ev.At > k.TL.Now || !match(ev.Key, keys) {
			continue
		}
		k.used[i] = true
		elapsed := clock.Seconds() - (k.TL.Now - ev.At)
		out = append(out, present.KeyEvent{Key: ev.Key, Time: elapsed})
	}
	return out
}

func (k *Keyboard) Clear() {
	for i, ev := range k.Script {
		if ev.At <= k.TL.Now {
			k.used[i] = true
		}
	}
}

// GazeSegment pins the gaze to one position over a time span.
type GazeSegment struct {

	// From and To bound the span in absolute timeline seconds.
	From, To float64

	// X, Y is the gaze position in degrees over the span.
	X, Y float64
}

// Tracker is a scripted eye tracker: gaze follows the segment covering
// the current time, falling back to Rest between segments. Event
// markers are recorded with their timestamps.
type Tracker struct {
	TL       *Timeline
	Segments []GazeSegment

	// Rest is the gaze position outside all segments.
	Rest [2]float64

	// Messages records event markers as "t=<secs> <msg>".
	Messages []string
}

// NewTracker returns a tracker on tl resting at the origin.
func NewTracker(tl *Timeline, segs []GazeSegment) *Tracker {
	return &Tracker{TL: tl, Segments: segs}
}

func (t *Tracker) Gaze() (x, y float64) {
	for _, s := range t.Segments {
		if t.TL.Now >= s.From && t.TL.Now < s.To {
			return s.X, s.Y
		}
	}
	return t.Rest[0], t.Rest[1]
}

func (t *Tracker) InWindow(pos [2]float64, radius float64) bool {
	x, y := t.Gaze()
	return math.Hypot(x-pos[0], y-pos[1]) <= radius
}

func (t *Tracker) SendMessage(msg string) {
	t.Messages = append(t.Messages, fmt.Sprintf("t=%.4f %s", t.TL.Now, msg))
}

// Audio records played cue names in order.
type Audio struct {
	Played []string
}

func (a *Audio) Play(name string) { a.Played = append(a.Played, name) }

// Stim is a recording stimulus implementing all stimulus interfaces:
// it counts draws and keeps the last contrast and color set.
type Stim struct {
	Name     string
	Draws    int
	Contrast []float64
	Color    present.Color
	Text     string
}

func (s *Stim) Draw()                       { s.Draws++ }
func (s *Stim) SetContrast(vals ...float64) { s.Contrast = append(s.Contrast[:0], vals...) }
func (s *Stim) SetColor(c present.Color)    { s.Color = c }
func (s *Stim) SetText(t string)            { s.Text = t }
