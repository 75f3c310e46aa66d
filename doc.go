// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package pulses implements behavioral and neuroimaging psychophysics
experiments built around brief contrast pulses: run-design generation,
frame-locked pulse-train scheduling, a per-trial event engine with
keyboard and eye-gaze response collection, and tabular trial/pulse
logging for offline reconciliation of generative and achieved stimulus
values.

Presentation hardware (window, keyboard, eye tracker, audio) is reached
only through the narrow interfaces in the present package, so the engine
can run against a real display collaborator or the simulated one in
simpresent.
*/
package pulses
