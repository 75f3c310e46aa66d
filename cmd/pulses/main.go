// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pulses runs one session of the pulse contrast-discrimination
// experiment: it selects a run mode, wires the trial engine to a
// presentation backend, and executes the run, writing the trial and
// pulse logs and the psychometric summary.
//
// The simulated backend (-dryrun) validates designs and timing without
// display hardware; trials run against a virtual clock and time out
// without input.
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/cogpsych/pulses/experiment"
	"github.com/cogpsych/pulses/simpresent"
	"github.com/cogpsych/pulses/trial"
)

var (
	mode    = flag.String("mode", "training_no_gaps", "run mode name")
	subject = flag.String("subject", "test", "subject identifier for log files")
	run     = flag.Int("run", 1, "run number within the session")
	logDir  = flag.String("logdir", "", "directory for log files")
	noLog   = flag.Bool("nolog", false, "disable all file output")
	noPlot  = flag.Bool("noplot", false, "skip the psychometric summary plot")
	seconds = flag.Float64("seconds", 0, "override the target run duration")
	hz      = flag.Float64("hz", 60, "simulated display refresh rate")
	dryRun  = flag.Bool("dryrun", false, "run against the simulated presentation backend")
)

func main() {
	flag.Parse()
	p, err := experiment.ModeParams(*mode)
	if err != nil {
		log.Fatal(err)
	}
	p.Subject = *subject
	p.Run = *run
	p.LogDir = *logDir
	p.NoLog = *noLog
	if *noPlot {
		p.SavePlot = false
	}
	if *seconds > 0 {
		p.Design.SecondsPerRun = *seconds
	}

	if !*dryRun {
		log.Fatal("no hardware presentation backend is configured; use -dryrun for the simulated backend")
	}
	// the simulated keyboard has no live input, so self-pacing would
	// stall; run everything on the onset clock
	p.Trial.SelfPaced = false

	win := simpresent.NewWindow(*hz)
	eng := &trial.Engine{
		Win:       win,
		Keys:      simpresent.NewKeyboard(win.TL, nil),
		Tracker:   simpresent.NewTracker(win.TL, nil),
		Audio:     &simpresent.Audio{},
		Clock:     simpresent.NewClock(win.TL),
		RespClock: simpresent.NewClock(win.TL),
		Fix:       &simpresent.Stim{Name: "fix"},
		Patches:   &simpresent.Stim{Name: "patches"},
	}
	ex := experiment.New(p, eng)
	ex.BreakText = &simpresent.Stim{Name: "break"}

	if p.Name == "rest" {
		err = ex.RunRest()
	} else {
		err = ex.Run()
	}
	switch {
	case errors.Is(err, trial.ErrQuit):
		log.Println("run aborted by subject")
	case err != nil:
		log.Fatal(err)
	}
}
