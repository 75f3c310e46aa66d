// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package present defines the narrow interfaces to the external
// presentation collaborator: display window, monotonic clocks, keyboard
// events, eye tracker, and audio feedback. The trial engine consumes
// only these capabilities, so it runs unchanged against real hardware
// or the simulated implementations in simpresent.
package present

// Color is an RGB triple in the [-1, 1] signal convention used by the
// display collaborator.
type Color [3]float32

// Stimulus is the minimal capability of any drawable visual object.
// The engine holds stimuli by logical name and never probes beyond
// these interfaces.
type Stimulus interface {

	// Draw queues the stimulus for the next buffer swap.
	Draw()
}

// ContrastStimulus is a stimulus whose per-channel contrast can be set
// each frame (e.g. the two-sided patch array).
type ContrastStimulus interface {
	Stimulus

	// SetContrast sets the per-channel contrast values for the next draw.
	SetContrast(vals ...float64)
}

// ColorStimulus is a stimulus with a settable color (e.g. the fixation
// point, recolored per trial phase).
type ColorStimulus interface {
	Stimulus

	// SetColor sets the draw color.
	SetColor(c Color)
}

// TextStimulus is a stimulus rendering a text message (e.g. the break
// screen with run progress).
type TextStimulus interface {
	Stimulus

	// SetText sets the message for the next draw.
	SetText(s string)
}

// Window is the display handle: a frame-synchronous draw+swap primitive
// plus refresh-rate and dropped-frame accounting.
type Window interface {

	// RefreshHz returns the display refresh rate.
	RefreshHz() float64

	// Flip swaps the display buffer, blocking until the refresh, and
	// returns the swap timestamp in window-clock seconds.
	Flip() float64

	// DroppedFrames returns the dropped-frame count since the last reset.
	DroppedFrames() int

	// ResetDroppedFrames zeroes the dropped-frame count.
	ResetDroppedFrames()
}

// Clock is a monotonic clock with a resettable zero.
type Clock interface {

	// Reset sets the clock zero to now.
	Reset()

	// Seconds returns seconds elapsed since the last Reset.
	Seconds() float64
}

// KeyEvent is one timestamped key press.
type KeyEvent struct {

	// Key is the collaborator's key name.
	Key string

	// Time is the press time on the clock passed to the query.
	Time float64
}

// Keyboard exposes blocking and non-blocking key queries. Timestamps
// are relative to the supplied clock.
type Keyboard interface {

	// WaitKeys blocks up to maxWait seconds for any of keys, returning
	// all presses seen (empty on timeout). A zero maxWait polls once.
	WaitKeys(maxWait float64, keys []string, clock Clock) []KeyEvent

	// GetKeys drains any pending presses of keys without blocking.
	GetKeys(keys []string, clock Clock) []KeyEvent

	// Clear discards all pending key events.
	Clear()
}

// EyeTracker is the gaze hardware handle.
type EyeTracker interface {

	// Gaze returns the current gaze position in degrees.
	Gaze() (x, y float64)

	// InWindow reports whether gaze is currently within radius of pos.
	InWindow(pos [2]float64, radius float64) bool

	// SendMessage writes a timestamped event marker to the tracker record.
	SendMessage(msg string)
}

// AudioPlayer plays feedback sounds keyed by outcome category name.
type AudioPlayer interface {

	// Play plays the named cue; unknown names are ignored.
	Play(name string)
}
