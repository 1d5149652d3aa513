// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"
	"sort"
	"strconv"

	"github.com/aclements/go-dash/dash"
	"github.com/aclements/go-dash/dataset"
	"github.com/aclements/go-dash/figure"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
)

const title = "2013 Montreal mayoral election"

// view computes the dashboard outputs from the election dataset.
type view struct {
	data       *dataset.Dataset
	candidates []string
	results    []string // result types, in order of appearance

	// Static figures, computed once.
	voteShare, totals *figure.Figure
}

func newView(d *dataset.Dataset) *view {
	v := &view{
		data:       d,
		candidates: dataset.ElectionCandidates,
		results:    unique(d.Strings("result")),
	}
	v.voteShare = v.voteSharePie()
	v.totals = v.totalHeatmap()
	return v
}

// unique returns the distinct values of xs in order of first
// appearance.
func unique(xs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

// votes returns the votes for candidate in row i, treating a missing
// count as zero.
func (v *view) votes(candidate string, i int) float64 {
	x := v.data.Floats(candidate)[i]
	if math.IsNaN(x) {
		return 0
	}
	return x
}

// rowBar returns a bar chart of the votes for each candidate in the
// selected row. With no row selected, or a row that doesn't exist, it
// returns an empty figure.
func (v *view) rowBar(selected []int) *figure.Figure {
	if len(selected) == 0 {
		return figure.Empty()
	}
	i := selected[0]
	if i < 0 || i >= v.data.Len() {
		return figure.Empty()
	}
	district := v.data.Strings("district")[i]
	values := make([]float64, len(v.candidates))
	for j, c := range v.candidates {
		values[j] = v.votes(c, i)
	}
	return &figure.Figure{
		Traces: []figure.Trace{{
			Kind:        figure.KindBar,
			Name:        district,
			X:           v.candidates,
			Values:      values,
			MarkerColor: figure.DefaultPalette[0],
		}},
		Layout: figure.Layout{
			Title:      district,
			XAxisTitle: "candidate",
			YAxisTitle: "votes",
		},
	}
}

// candidateBar returns a bar chart of candidate's votes in each
// district, with one trace for each district winner.
func (v *view) candidateBar(candidate string) *figure.Figure {
	if !contains(v.candidates, candidate) {
		return figure.Empty()
	}
	districts := v.data.Strings("district")
	winners := v.data.Strings("winner")
	f := &figure.Figure{
		Layout: figure.Layout{
			Title:       candidate,
			XAxisTitle:  "district",
			YAxisTitle:  candidate,
			LegendTitle: "winner",
			BarMode:     "relative",
		},
	}
	for wi, w := range unique(winners) {
		tr := figure.Trace{
			Kind:        figure.KindBar,
			Name:        w,
			X:           []string{},
			Values:      []float64{},
			MarkerColor: figure.DefaultPalette[wi%len(figure.DefaultPalette)],
		}
		for i, district := range districts {
			if winners[i] != w {
				continue
			}
			tr.X = append(tr.X, district)
			tr.Values = append(tr.Values, v.votes(candidate, i))
		}
		f.Traces = append(f.Traces, tr)
	}
	return f
}

func contains(xs []string, x string) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}

// resultHeatmap returns a heatmap of votes per candidate in each
// district whose result is result. Its columns are exactly the
// districts with that result, in order of district ID.
func (v *view) resultHeatmap(result string) *figure.Figure {
	sel := table.FilterEq(v.data.Table, "result", result)
	long := table.Flatten(table.Unpivot(sel, "candidate", "votes", v.candidates...))

	var ids []int
	if col := table.Flatten(sel).Column("district_id"); col != nil {
		ids = col.([]int)
	}
	var cells []figure.Cell
	if long.Len() > 0 {
		lids := long.MustColumn("district_id").([]int)
		names := long.MustColumn("candidate").([]string)
		votes := dataset.Floats(long, "votes")
		for i := range lids {
			cells = append(cells, figure.Cell{X: strconv.Itoa(lids[i]), Y: names[i], Z: votes[i]})
		}
	}
	return &figure.Figure{
		Traces: []figure.Trace{figure.NewHeatmap(districtLabels(ids), v.candidates, cells)},
		Layout: figure.Layout{
			Title:      "Votes in " + result + " districts",
			XAxisTitle: "district",
			YAxisTitle: "candidate",
			ColorScale: "Viridis",
			ColorTitle: "votes",
		},
	}
}

// districtLabels returns the distinct ids in increasing order, as
// strings.
func districtLabels(ids []int) []string {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	labels := []string{}
	for i, id := range sorted {
		if i > 0 && id == sorted[i-1] {
			continue
		}
		labels = append(labels, strconv.Itoa(id))
	}
	return labels
}

// voteSharePie returns a pie chart of the total votes for each
// candidate.
func (v *view) voteSharePie() *figure.Figure {
	values := make([]float64, len(v.candidates))
	for i, c := range v.candidates {
		values[i] = total(v.data.Table, c)
	}
	return &figure.Figure{
		Traces: []figure.Trace{{
			Kind:   figure.KindPie,
			Labels: v.candidates,
			Values: values,
		}},
		Layout: figure.Layout{Title: "Vote share"},
	}
}

// total returns the sum of column col of t, skipping missing values.
func total(t *table.Table, col string) float64 {
	present := table.Flatten(table.Filter(t, func(x float64) bool { return !math.IsNaN(x) }, col))
	return stats.Sample{Xs: dataset.Floats(present, col)}.Sum()
}

// totalHeatmap returns a heatmap of the total votes in each district,
// with one row for each candidate that won a district.
func (v *view) totalHeatmap() *figure.Figure {
	ids := v.data.Ints("district_id")
	winners := v.data.Strings("winner")
	totals := v.data.Floats("total")
	cells := make([]figure.Cell, len(ids))
	for i := range ids {
		cells[i] = figure.Cell{X: strconv.Itoa(ids[i]), Y: winners[i], Z: totals[i]}
	}
	var rows []string
	for _, c := range v.candidates {
		if contains(winners, c) {
			rows = append(rows, c)
		}
	}
	return &figure.Figure{
		Traces: []figure.Trace{figure.NewHeatmap(districtLabels(ids), rows, cells)},
		Layout: figure.Layout{
			Title:      "Total votes by district winner",
			XAxisTitle: "district",
			YAxisTitle: "winner",
			ColorScale: "Viridis",
			ColorTitle: "total",
		},
	}
}

func (v *view) layout() dash.Component {
	results := figure.TableFrom(v.data.Table, figure.TableOptions{
		Striped:  true,
		Bordered: true,
		Hover:    true,
	})
	return &dash.Container{Class: "p-5", Children: []dash.Component{
		&dash.Row{Class: "p-3", Children: []dash.Component{
			&dash.H1{Text: title, Class: "text-primary text-center"},
		}},
		&dash.Row{Class: "p-3", Children: []dash.Component{
			&dash.Col{Width: 7, Children: []dash.Component{
				&dash.DataTable{ID: "results", Table: results, RowSelectable: true},
			}},
			&dash.Col{Width: 5, Children: []dash.Component{
				&dash.H4{Text: "Votes in the selected district"},
				&dash.Graph{ID: "row-bar"},
			}},
		}},
		&dash.Row{Class: "p-3", Children: []dash.Component{
			&dash.Col{Width: 3, Children: []dash.Component{
				&dash.H4{Text: "Candidate"},
				&dash.RadioItems{ID: "candidate", Options: v.candidates, Value: v.candidates[0]},
			}},
			&dash.Col{Width: 9, Children: []dash.Component{
				&dash.Graph{ID: "candidate-bar"},
			}},
		}},
		&dash.Row{Class: "p-3", Children: []dash.Component{
			&dash.Col{Width: 3, Children: []dash.Component{
				&dash.H4{Text: "Result"},
				&dash.RadioItems{ID: "result", Options: v.results, Value: first(v.results)},
			}},
			&dash.Col{Width: 9, Children: []dash.Component{
				&dash.Graph{ID: "result-heatmap"},
			}},
		}},
		&dash.Row{Class: "p-3", Children: []dash.Component{
			&dash.Col{Width: 5, Children: []dash.Component{
				&dash.Graph{ID: "vote-share", Figure: v.voteShare},
			}},
			&dash.Col{Width: 7, Children: []dash.Component{
				&dash.Graph{ID: "total-heatmap", Figure: v.totals},
			}},
		}},
	}}
}

func first(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[0]
}

// newApp returns the dashboard for v.
func newApp(v *view, cfg dash.Config) *dash.App {
	cfg.Title = title
	cfg.Layout = v.layout()
	app := dash.New(cfg)
	app.Callback(dash.Callback{
		Inputs:  []string{"results"},
		Outputs: []dash.Output{dash.Figure("row-bar")},
		Func: func(in dash.Inputs) ([]interface{}, error) {
			var rows []int
			if err := in.Decode("results", &rows); err != nil {
				return nil, err
			}
			return []interface{}{v.rowBar(rows)}, nil
		},
	})
	app.Callback(dash.Callback{
		Inputs:  []string{"candidate"},
		Outputs: []dash.Output{dash.Figure("candidate-bar")},
		Func: func(in dash.Inputs) ([]interface{}, error) {
			var name string
			if err := in.Decode("candidate", &name); err != nil {
				return nil, err
			}
			return []interface{}{v.candidateBar(name)}, nil
		},
	})
	app.Callback(dash.Callback{
		Inputs:  []string{"result"},
		Outputs: []dash.Output{dash.Figure("result-heatmap")},
		Func: func(in dash.Inputs) ([]interface{}, error) {
			var result string
			if err := in.Decode("result", &result); err != nil {
				return nil, err
			}
			return []interface{}{v.resultHeatmap(result)}, nil
		},
	})
	return app
}
