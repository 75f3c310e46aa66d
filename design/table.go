// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package design

import (
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// Schema is the tabular layout of the generative design fields, shared
// with the run log so achieved columns can be appended to the same rows.
func Schema() etable.Schema {
	return etable.Schema{
		{"trial", etensor.INT64, nil, nil},
		{"gen_mean_l", etensor.FLOAT64, nil, nil},
		{"gen_mean_r", etensor.FLOAT64, nil, nil},
		{"gen_mean_delta", etensor.FLOAT64, nil, nil},
		{"trial_dur", etensor.FLOAT64, nil, nil},
		{"pre_stim_dur", etensor.FLOAT64, nil, nil},
		{"post_stim_dur", etensor.FLOAT64, nil, nil},
		{"resp_dur", etensor.FLOAT64, nil, nil},
		{"feedback_dur", etensor.FLOAT64, nil, nil},
		{"iti", etensor.FLOAT64, nil, nil},
		{"random_seed", etensor.INT64, nil, nil},
		{"paired_trial", etensor.INT64, nil, nil},
		{"break", etensor.INT64, nil, nil},
		{"stim_time", etensor.FLOAT64, nil, nil},
		{"full_trial_dur", etensor.FLOAT64, nil, nil},
	}
}

// SetRow writes one trial's generative fields into row of dt, which
// must contain the Schema columns.
func SetRow(dt *etable.Table, row int, t *Trial) {
	dt.SetCellFloat("trial", row, float64(t.Trial))
	dt.SetCellFloat("gen_mean_l", row, t.GenMeanL)
	dt.SetCellFloat("gen_mean_r", row, t.GenMeanR)
	dt.SetCellFloat("gen_mean_delta", row, t.GenMeanDelta)
	dt.SetCellFloat("trial_dur", row, t.TrialDur)
	dt.SetCellFloat("pre_stim_dur", row, t.PreStimDur)
	dt.SetCellFloat("post_stim_dur", row, t.PostStimDur)
	dt.SetCellFloat("resp_dur", row, t.RespDur)
	dt.SetCellFloat("feedback_dur", row, t.FeedbackDur)
	dt.SetCellFloat("iti", row, t.ITI)
	dt.SetCellFloat("random_seed", row, float64(t.Seed))
	dt.SetCellFloat("paired_trial", row, boolToFloat(t.Paired))
	dt.SetCellFloat("break", row, boolToFloat(t.Break))
	dt.SetCellFloat("stim_time", row, t.StimTime)
	dt.SetCellFloat("full_trial_dur", row, t.FullDur)
}

// Table renders the full design as an etable for inspection or saving.
func Table(trials []Trial) *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", "RunDesign")
	dt.SetMetaData("desc", "generative per-trial design for one run")
	dt.SetFromSchema(Schema(), len(trials))
	for i := range trials {
		SetRow(dt, i, &trials[i])
	}
	return dt
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
