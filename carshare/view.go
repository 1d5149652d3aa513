// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aclements/go-dash/dash"
	"github.com/aclements/go-dash/dataset"
	"github.com/aclements/go-dash/figure"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/shopspring/decimal"
)

const title = "Car-sharing services in Montreal over a month-long period"

// view computes the dashboard outputs from the carshare dataset. It
// is immutable after newView.
type view struct {
	data  *dataset.Dataset
	token string

	// minHour and maxHour bound the peak_hour column.
	minHour, maxHour int

	// Map center.
	lat, lon float64
}

func newView(d *dataset.Dataset, token string) (*view, error) {
	lo, hi, err := d.IntBounds("peak_hour")
	if err != nil {
		return nil, err
	}
	return &view{
		data:    d,
		token:   token,
		minHour: lo,
		maxHour: hi,
		lat:     stats.Mean(present(d.Floats("centroid_lat"))),
		lon:     stats.Mean(present(d.Floats("centroid_lon"))),
	}, nil
}

// present returns the non-NaN values of xs.
func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// selectHours returns the rows whose peak hour is one of lo, lo+1,
// ..., hi. It is empty if lo > hi.
func (v *view) selectHours(lo, hi int) *table.Table {
	// Hours outside the data can't match anything.
	if lo < v.minHour {
		lo = v.minHour
	}
	if hi > v.maxHour {
		hi = v.maxHour
	}
	hours := make(map[int]bool)
	for h := lo; h <= hi; h++ {
		hours[h] = true
	}
	return table.Flatten(table.Filter(v.data.Table, func(h int) bool {
		return hours[h]
	}, "peak_hour"))
}

// updateColour returns the map of cars whose peak hour is in [lo, hi]
// and a summary table of their usage.
func (v *view) updateColour(lo, hi int) (*figure.Figure, *figure.Table) {
	sel := v.selectHours(lo, hi)
	return v.scatter(sel, lo, hi), summarize(sel).table()
}

func (v *view) scatter(sel *table.Table, lo, hi int) *figure.Figure {
	lat := dataset.Floats(sel, "centroid_lat")
	lon := dataset.Floats(sel, "centroid_lon")
	hours := dataset.Floats(sel, "peak_hour")
	carHours := dataset.Floats(sel, "car_hours")

	tr := figure.Trace{
		Kind:         figure.KindScatterMapbox,
		Lat:          []float64{},
		Lon:          []float64{},
		Color:        []float64{},
		Size:         []float64{},
		SizeMax:      13,
		HoverBgColor: "blue",
	}
	for i := range lat {
		if math.IsNaN(lat[i]) || math.IsNaN(lon[i]) || math.IsNaN(carHours[i]) {
			continue
		}
		tr.Lat = append(tr.Lat, lat[i])
		tr.Lon = append(tr.Lon, lon[i])
		tr.Color = append(tr.Color, hours[i])
		tr.Size = append(tr.Size, carHours[i])
	}

	return &figure.Figure{
		Traces: []figure.Trace{tr},
		Layout: figure.Layout{
			Title:        fmt.Sprintf("Car sharing between the hours of %d:00 & %d:00", lo, hi),
			TitleX:       0.5,
			ColorScale:   "Inferno",
			ReverseScale: true,
			ColorTitle:   "peak_hour",
			Mapbox: &figure.Mapbox{
				AccessToken: v.token,
				Style:       "dark",
				Zoom:        9.5,
				CenterLat:   v.lat,
				CenterLon:   v.lon,
			},
		},
	}
}

// carSummary summarizes car_hours over a set of cars. Missing values
// are skipped. For no cars, Total is 0 and Mean is NaN.
type carSummary struct {
	Count       int
	Total, Mean float64
}

func summarize(sel *table.Table) carSummary {
	s := stats.Sample{Xs: present(dataset.Floats(sel, "car_hours"))}
	return carSummary{
		Count: sel.Len(),
		Total: s.Sum(),
		Mean:  s.Mean(),
	}
}

func (s carSummary) table() *figure.Table {
	return &figure.Table{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Number of Cars", strconv.Itoa(s.Count)},
			{"Total hours", formatHours(s.Total)},
			{"Average hours", formatHours(s.Mean)},
		},
		Striped:  true,
		Bordered: true,
		Hover:    true,
		Style: map[string]string{
			"padding":        "0.25rem",
			"line-height":    "1.1",
			"text-align":     "center",
			"vertical-align": "center",
		},
	}
}

// formatHours rounds x to two decimal places.
func formatHours(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return decimal.NewFromFloat(x).Round(2).String()
}

func (v *view) layout() dash.Component {
	head := figure.TableFrom(v.data.Head(5), figure.TableOptions{
		Index:    true,
		Hover:    true,
		Bordered: true,
		Color:    "info",
	})
	return &dash.Container{Class: "p-5", Children: []dash.Component{
		&dash.Row{Class: "p-3", Children: []dash.Component{
			&dash.H1{Text: title, Class: "text-primary text-center"},
		}},
		&dash.Row{Class: "p-3", Children: []dash.Component{
			&dash.StaticTable{Table: head},
		}},
		&dash.RangeSlider{
			ID:      "slider",
			Min:     v.minHour,
			Max:     v.maxHour,
			Step:    1,
			Value:   [2]int{v.minHour, v.maxHour},
			Tooltip: true,
		},
		&dash.Row{Children: []dash.Component{
			&dash.Graph{ID: "scatter"},
			&dash.Div{ID: "shown-info", Class: "center"},
		}},
	}}
}

// newApp returns the dashboard for v.
func newApp(v *view, cfg dash.Config) *dash.App {
	cfg.Title = title
	cfg.Layout = v.layout()
	app := dash.New(cfg)
	app.Callback(dash.Callback{
		Inputs:  []string{"slider"},
		Outputs: []dash.Output{dash.Figure("scatter"), dash.Children("shown-info")},
		Func: func(in dash.Inputs) ([]interface{}, error) {
			var r [2]int
			if err := in.Decode("slider", &r); err != nil {
				return nil, err
			}
			fig, info := v.updateColour(r[0], r[1])
			return []interface{}{fig, info}, nil
		},
	})
	return app
}
