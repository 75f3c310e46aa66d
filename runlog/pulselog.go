// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"compress/gzip"
	"os"

	"github.com/cogpsych/pulses/pulse"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// PulseLog records every scheduled pulse in long format, one row per
// pulse, so the per-trial stimulus streams can be reconstructed
// exactly. It is kept in memory during the run and saved once at exit.
type PulseLog struct {
	Table *etable.Table
}

// PulseSchema is the per-pulse log layout.
func PulseSchema() etable.Schema {
	return etable.Schema{
		{"trial", etensor.INT64, nil, nil},
		{"pulse", etensor.INT64, nil, nil},
		{"onset_frame", etensor.INT64, nil, nil},
		{"pulse_frames", etensor.INT64, nil, nil},
		{"contrast_l", etensor.FLOAT64, nil, nil},
		{"contrast_r", etensor.FLOAT64, nil, nil},
	}
}

// NewPulseLog returns an empty pulse log.
func NewPulseLog() *PulseLog {
	pl := &PulseLog{Table: &etable.Table{}}
	pl.Table.SetMetaData("name", "PulseLog")
	pl.Table.SetFromSchema(PulseSchema(), 0)
	return pl
}

// AddTrial appends every pulse of the trial's schedule.
func (pl *PulseLog) AddTrial(trialNum int, sc *pulse.Schedule) {
	dt := pl.Table
	for i, on := range sc.Onsets {
		row := dt.Rows
		dt.AddRows(1)
		dt.SetCellFloat("trial", row, float64(trialNum))
		dt.SetCellFloat("pulse", row, float64(i))
		dt.SetCellFloat("onset_frame", row, float64(on))
		dt.SetCellFloat("pulse_frames", row, float64(sc.PulseFrames))
		dt.SetCellFloat("contrast_l", row, sc.Values[pulse.SideL][i])
		dt.SetCellFloat("contrast_r", row, sc.Values[pulse.SideR][i])
	}
}

// Save writes the pulse log as a gzipped TSV.
func (pl *PulseLog) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	zw := gzip.NewWriter(f)
	dt := pl.Table
	dt.WriteCSVHeaders(zw, etable.Tab)
	for row := 0; row < dt.Rows; row++ {
		dt.WriteCSVRow(zw, row, etable.Tab)
	}
	return zw.Close()
}
