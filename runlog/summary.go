// Copyright (c) 2026, The Pulses Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"

	"github.com/emer/etable/agg"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/split"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Summary computes the psychometric summary from the trial log:
// grouped by signed generative delta, the mean rightward-response rate,
// accuracy against the achieved stimulus, and trial counts. Trials
// without a response are excluded.
func Summary(dt *etable.Table) *etable.Table {
	ix := etable.NewIdxView(dt)
	ix.Filter(func(et *etable.Table, row int) bool {
		return et.CellFloat("response", row) >= 0
	})
	ix.SortCol(dt.ColIdx("gen_mean_delta"), true)
	spl := split.GroupBy(ix, []string{"gen_mean_delta"})
	split.Agg(spl, "response", agg.AggMean)
	split.Agg(spl, "obs_correct", agg.AggMean)
	split.Agg(spl, "rt", agg.AggMean)
	split.Agg(spl, "response", agg.AggCount)
	return spl.AggsToTable(etable.AddAggName)
}

// SavePsychometric plots the rightward-response rate against the signed
// delta from a Summary table and saves it as a PNG.
func SavePsychometric(sum *etable.Table, path string) error {
	if sum.Rows == 0 {
		return fmt.Errorf("runlog: no answered trials to plot")
	}
	p := plot.New()
	p.Title.Text = "Psychometric function"
	p.X.Label.Text = "contrast delta (R - L)"
	p.Y.Label.Text = "P(respond right)"
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, sum.Rows)
	for i := 0; i < sum.Rows; i++ {
		pts[i].X = sum.CellFloat("gen_mean_delta", i)
		pts[i].Y = sum.CellFloat("response:Mean", i)
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(plotter.NewGrid(), line, points)
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
