// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"bufio"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cogpsych/pulses/design"
	"github.com/cogpsych/pulses/flexval"
	"github.com/cogpsych/pulses/pulse"
	"github.com/cogpsych/pulses/trial"
	"golang.org/x/exp/rand"
)

func logTrial(num int, delta float64, resp int, correct bool) (*design.Trial, *trial.Result) {
	td := &design.Trial{
		Trial:        num,
		GenMeanL:     0.2 - delta/2,
		GenMeanR:     0.2 + delta/2,
		GenMeanDelta: delta,
		TrialDur:     0.8,
		RespDur:      3,
	}
	res := &trial.Result{
		Outcome:      trial.Answered,
		Response:     resp,
		Key:          "rshift",
		RT:           0.4,
		ObsCorrect:   correct,
		GenCorrect:   correct,
		PulseCount:   4,
		ObsMeanDelta: delta,
	}
	if resp < 0 {
		res.Outcome = trial.NoResponse
		res.Key = ""
	}
	return td, res
}

func TestTrialLogStreaming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.tsv")
	lg, err := NewTrialLog(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 3; i++ {
		td, res := logTrial(i, 0.08, 1, true)
		if err := lg.AddTrial(td, res); err != nil {
			t.Fatalf("add trial %d: %v", i, err)
		}
	}
	if err := lg.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if lg.Table.Rows != 3 {
		t.Errorf("table rows %d, want 3", lg.Table.Rows)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	lines := 0
	var header string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if lines == 0 {
			header = sc.Text()
		}
		lines++
	}
	if lines != 4 {
		t.Errorf("file lines %d, want header + 3 rows", lines)
	}
	if !strings.Contains(header, "obs_mean_delta") || !strings.Contains(header, "gen_mean_delta") {
		t.Errorf("header missing expected columns: %s", header)
	}
}

func TestTrialLogMemoryOnly(t *testing.T) {
	lg, err := NewTrialLog("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	td, res := logTrial(0, -0.02, 0, true)
	if err := lg.AddTrial(td, res); err != nil {
		t.Fatalf("add: %v", err)
	}
	if lg.Table.Rows != 1 {
		t.Errorf("table rows %d, want 1", lg.Table.Rows)
	}
}

func TestPulseLog(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sc, err := pulse.Build(0.18, 0.22, 0.05, 0.1, 0.3, 12, 48, flexval.Fixed(0), 60, rng)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	pl := NewPulseLog()
	pl.AddTrial(0, sc)
	pl.AddTrial(1, sc)
	if pl.Table.Rows != 2*sc.PulseCount() {
		t.Fatalf("rows %d, want %d", pl.Table.Rows, 2*sc.PulseCount())
	}

	path := filepath.Join(t.TempDir(), "pulses.tsv.gz")
	if err := pl.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	lines := 0
	scn := bufio.NewScanner(zr)
	for scn.Scan() {
		lines++
	}
	if lines != 1+pl.Table.Rows {
		t.Errorf("file lines %d, want header + %d rows", lines, pl.Table.Rows)
	}
}

func TestSummary(t *testing.T) {
	lg, err := NewTrialLog("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// leftward trials answered left, rightward answered right, plus one
	// missing response that must not enter the summary
	add := func(num int, delta float64, resp int, correct bool) {
		td, res := logTrial(num, delta, resp, correct)
		if err := lg.AddTrial(td, res); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	add(0, -0.08, 0, true)
	add(1, -0.08, 0, true)
	add(2, 0.08, 1, true)
	add(3, 0.08, 1, true)
	add(4, 0.08, -1, false)

	sum := Summary(lg.Table)
	if sum.Rows != 2 {
		t.Fatalf("summary rows %d, want 2", sum.Rows)
	}
	if d := sum.CellFloat("gen_mean_delta", 0); d != -0.08 {
		t.Errorf("first group delta %g, want -0.08 (sorted)", d)
	}
	if m := sum.CellFloat("response:Mean", 0); m != 0 {
		t.Errorf("leftward response rate %g, want 0", m)
	}
	if m := sum.CellFloat("response:Mean", 1); m != 1 {
		t.Errorf("rightward response rate %g, want 1", m)
	}
	if n := sum.CellFloat("response:Count", 1); n != 2 {
		t.Errorf("rightward count %g, want 2 with missing excluded", n)
	}

	path := filepath.Join(t.TempDir(), "psycho.png")
	if err := SavePsychometric(sum, path); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("plot file missing: %v", err)
	}
}
