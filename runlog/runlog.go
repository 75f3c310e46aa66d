// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runlog records experiment output: a per-trial log streamed
// durably to disk row by row, a per-pulse log saved at run end, and the
// psychometric summary computed from the trial log.
package runlog

import (
	"os"

	"github.com/cogpsych/pulses/design"
	"github.com/cogpsych/pulses/trial"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// Schema is the trial log layout: the generative design columns
// followed by the achieved-outcome columns.
func Schema() etable.Schema {
	sch := design.Schema()
	return append(sch, etable.Schema{
		{"outcome", etensor.STRING, nil, nil},
		{"stim_onset", etensor.FLOAT64, nil, nil},
		{"resp_onset", etensor.FLOAT64, nil, nil},
		{"key", etensor.STRING, nil, nil},
		{"response", etensor.INT64, nil, nil},
		{"rt", etensor.FLOAT64, nil, nil},
		{"response_during_stim", etensor.INT64, nil, nil},
		{"gen_correct", etensor.INT64, nil, nil},
		{"obs_correct", etensor.INT64, nil, nil},
		{"pulse_count", etensor.INT64, nil, nil},
		{"obs_mean_l", etensor.FLOAT64, nil, nil},
		{"obs_mean_r", etensor.FLOAT64, nil, nil},
		{"obs_mean_delta", etensor.FLOAT64, nil, nil},
		{"dropped_frames", etensor.INT64, nil, nil},
	}...)
}

// TrialLog accumulates one row per completed trial and streams each row
// to the log file as it lands, so an aborted run keeps everything up to
// the interrupted trial.
type TrialLog struct {

	// Table holds all logged trials in memory for end-of-run summaries.
	Table *etable.Table

	file *os.File
}

// NewTrialLog opens the log at path; an empty path keeps the log
// in memory only.
func NewTrialLog(path string) (*TrialLog, error) {
	lg := &TrialLog{Table: &etable.Table{}}
	lg.Table.SetMetaData("name", "TrialLog")
	lg.Table.SetFromSchema(Schema(), 0)
	if path == "" {
		return lg, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	lg.file = f
	return lg, nil
}

// AddTrial appends the merged design row and achieved result, writing
// the row (and headers, on the first trial) through to disk.
func (lg *TrialLog) AddTrial(td *design.Trial, res *trial.Result) error {
	dt := lg.Table
	row := dt.Rows
	dt.AddRows(1)
	design.SetRow(dt, row, td)
	dt.SetCellString("outcome", row, res.Outcome.String())
	dt.SetCellFloat("stim_onset", row, res.StimOnset)
	dt.SetCellFloat("resp_onset", row, res.RespOnset)
	dt.SetCellString("key", row, res.Key)
	dt.SetCellFloat("response", row, float64(res.Response))
	dt.SetCellFloat("rt", row, res.RT)
	dt.SetCellFloat("response_during_stim", row, boolToFloat(res.RespDuringStim))
	dt.SetCellFloat("gen_correct", row, boolToFloat(res.GenCorrect))
	dt.SetCellFloat("obs_correct", row, boolToFloat(res.ObsCorrect))
	dt.SetCellFloat("pulse_count", row, float64(res.PulseCount))
	dt.SetCellFloat("obs_mean_l", row, res.ObsMeanL)
	dt.SetCellFloat("obs_mean_r", row, res.ObsMeanR)
	dt.SetCellFloat("obs_mean_delta", row, res.ObsMeanDelta)
	dt.SetCellFloat("dropped_frames", row, float64(res.DroppedFrames))

	if lg.file == nil {
		return nil
	}
	if row == 0 {
		dt.WriteCSVHeaders(lg.file, etable.Tab)
	}
	dt.WriteCSVRow(lg.file, row, etable.Tab)
	return lg.file.Sync()
}

// Close closes the log file, if any.
func (lg *TrialLog) Close() error {
	if lg.file == nil {
		return nil
	}
	err := lg.file.Close()
	lg.file = nil
	return err
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
