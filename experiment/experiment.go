// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package experiment drives whole runs: it generates the run design,
// builds each trial's pulse schedule from the trial's seeded stream,
// hands trials to the engine, presents break screens and the leadout,
// and writes the logs and the exit summary.
package experiment

import (
	"fmt"
	"log"
	"math"
	"path/filepath"
	"time"

	"github.com/cogpsych/pulses/design"
	"github.com/cogpsych/pulses/present"
	"github.com/cogpsych/pulses/pulse"
	"github.com/cogpsych/pulses/runlog"
	"github.com/cogpsych/pulses/trial"
	"github.com/emer/emergent/env"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Experiment owns one session: the parameters, the trial engine wired
// to its presentation collaborators, run counters, and the logs.
type Experiment struct {

	// Params is the mode parameter set for this session.
	Params *Params

	// Engine runs the individual trials.
	Engine *trial.Engine

	// BreakText renders the break-screen message; nil skips the text.
	BreakText present.TextStimulus

	// RunCtr and TrialCtr track session position.
	RunCtr   env.Ctr
	TrialCtr env.Ctr

	// TrialLog and PulseLog are the session outputs.
	TrialLog *runlog.TrialLog
	PulseLog *runlog.PulseLog

	// DesignRNG is the unseeded design stream; per-trial stimulus
	// streams are seeded from the design rows instead.
	DesignRNG *rand.Rand
}

// New wires an experiment from a mode parameter set and an engine whose
// presentation collaborators are already connected.
func New(p *Params, eng *trial.Engine) *Experiment {
	ex := &Experiment{Params: p, Engine: eng}
	eng.Cfg = p.Trial
	ex.RunCtr.Scale = env.Run
	ex.TrialCtr.Scale = env.Trial
	ex.RunCtr.Init()
	ex.RunCtr.Cur = p.Run
	ex.DesignRNG = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	return ex
}

// Run executes the full session: design generation, the trial loop with
// break screens, the leadout, and the exit summary. A subject quit
// stops the trial loop but still saves everything logged so far and
// returns ErrQuit.
func (ex *Experiment) Run() error {
	p := ex.Params
	trials, err := design.GenerateRun(&p.Design, ex.DesignRNG)
	if err != nil {
		return err
	}
	ex.TrialLog, err = runlog.NewTrialLog(ex.logPath("trials.tsv"))
	if err != nil {
		return err
	}
	defer ex.TrialLog.Close()
	ex.PulseLog = runlog.NewPulseLog()

	ex.TrialCtr.Init()
	ex.TrialCtr.Max = len(trials)
	hz := ex.Engine.Win.RefreshHz()
	ex.Engine.Clock.Reset()

	var runErr error
	for i := range trials {
		td := &trials[i]
		if td.Break {
			if runErr = ex.breakScreen(float64(i) / float64(len(trials))); runErr != nil {
				break
			}
		}
		trng := rand.New(rand.NewSource(uint64(td.Seed)))
		sc, err := ex.schedule(td, hz, trng)
		if err != nil {
			runErr = err
			break
		}
		res, err := ex.Engine.Run(td, sc, trng)
		if err != nil {
			runErr = err
			break
		}
		if err := ex.TrialLog.AddTrial(td, res); err != nil {
			log.Println("trial log:", err)
		}
		ex.PulseLog.AddTrial(td.Trial, sc)
		ex.TrialCtr.Incr()
	}
	if runErr == nil && p.LeadoutDur > 0 {
		runErr = ex.holdFixation(p.LeadoutDur)
	}
	if err := ex.exit(); err != nil {
		log.Println("exit:", err)
	}
	return runErr
}

// RunRest executes the fixation-only rest mode: nothing is logged but
// the held duration.
func (ex *Experiment) RunRest() error {
	eng := ex.Engine
	eng.Clock.Reset()
	eng.Fix.SetColor(ex.Params.Trial.Colors.ITI)
	err := ex.holdFixation(ex.Params.RestDur)
	log.Printf("rest run held %.1fs", eng.Clock.Seconds())
	return err
}

// schedule builds the trial's pulse schedule from its seeded stream.
// Fixed-duration modes schedule against the sampled trial duration;
// train modes realize a sampled train, which then sets the decision
// duration.
func (ex *Experiment) schedule(td *design.Trial, hz float64, rng *rand.Rand) (*pulse.Schedule, error) {
	p := ex.Params
	lo, hi := p.Design.ContrastLimits[0], p.Design.ContrastLimits[1]
	if !p.UseTrains {
		return pulse.Build(td.GenMeanL, td.GenMeanR, p.ContrastSD, lo, hi,
			pulse.Frames(hz, p.PulseDur), pulse.Frames(hz, td.TrialDur), p.PulseGap, hz, rng)
	}
	ts := p.Train
	ts.Contrast = (td.GenMeanL + td.GenMeanR) / 2
	tr, err := ts.Build(rng)
	if err != nil {
		return nil, err
	}
	sc, err := tr.Schedule(td.GenMeanDelta, lo, hi, hz, p.TrainMax)
	if err != nil {
		return nil, err
	}
	td.TrialDur = float64(sc.TrialFrames) / hz
	return sc, nil
}

// breakScreen holds the break display for the minimum duration, then in
// self-paced modes waits for a ready key to resume.
func (ex *Experiment) breakScreen(progress float64) error {
	p := ex.Params
	eng := ex.Engine
	if ex.BreakText != nil {
		ex.BreakText.SetText(fmt.Sprintf("Take a break: %d%% done", int(math.Round(100*progress))))
	}
	frames := pulse.Frames(eng.Win.RefreshHz(), p.BreakDur)
	for f := 0; f < frames; f++ {
		if err := ex.checkQuit(); err != nil {
			return err
		}
		if ex.BreakText != nil {
			ex.BreakText.Draw()
		}
		eng.Win.Flip()
	}
	if !eng.Cfg.SelfPaced {
		return nil
	}
	listen := append(append([]string{}, eng.Cfg.ReadyKeys...), eng.Cfg.QuitKeys...)
	evs := eng.Keys.WaitKeys(math.Inf(1), listen, eng.Clock)
	if len(evs) == 0 {
		return trial.ErrQuit
	}
	for _, ev := range evs {
		for _, qk := range eng.Cfg.QuitKeys {
			if ev.Key == qk {
				return trial.ErrQuit
			}
		}
	}
	return nil
}

// holdFixation draws the fixation point for the given duration with
// quit checks every frame.
func (ex *Experiment) holdFixation(secs float64) error {
	eng := ex.Engine
	frames := pulse.Frames(eng.Win.RefreshHz(), secs)
	for f := 0; f < frames; f++ {
		if err := ex.checkQuit(); err != nil {
			return err
		}
		eng.Fix.Draw()
		eng.Win.Flip()
	}
	return nil
}

func (ex *Experiment) checkQuit() error {
	eng := ex.Engine
	if len(eng.Keys.GetKeys(eng.Cfg.QuitKeys, eng.Clock)) > 0 {
		return trial.ErrQuit
	}
	return nil
}

// exit saves the pulse log, reports the timing summary, and renders the
// psychometric plot when configured. It runs on quit as well, so
// completed trials always survive.
func (ex *Experiment) exit() error {
	p := ex.Params
	if !p.NoLog && ex.PulseLog.Table.Rows > 0 {
		if err := ex.PulseLog.Save(ex.logPath("pulses.tsv.gz")); err != nil {
			return err
		}
	}
	dt := ex.TrialLog.Table
	if dt.Rows == 0 {
		return nil
	}
	diffs := make([]float64, dt.Rows)
	correct := 0.0
	for i := range diffs {
		diffs[i] = math.Abs(dt.CellFloat("stim_onset", i) - dt.CellFloat("stim_time", i))
		correct += dt.CellFloat("obs_correct", i)
	}
	log.Printf("%d trials, accuracy %.3f, mean onset error %.3fs",
		dt.Rows, correct/float64(dt.Rows), stat.Mean(diffs, nil))
	sum := runlog.Summary(dt)
	if p.SavePlot && !p.NoLog && sum.Rows > 0 {
		if err := runlog.SavePsychometric(sum, ex.logPath("psycho.png")); err != nil {
			return err
		}
	}
	return nil
}

// logPath names a session output file; empty when logging is disabled.
func (ex *Experiment) logPath(suffix string) string {
	p := ex.Params
	if p.NoLog {
		return ""
	}
	name := fmt.Sprintf("%s_%s_run%02d_%s", p.Subject, p.Name, p.Run, suffix)
	return filepath.Join(p.LogDir, name)
}
