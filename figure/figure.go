// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package figure describes charts and tables as plain values.
//
// A Figure describes what to draw: a list of data traces
// and a layout. Figures are built fresh by every dashboard callback
// and carry no identity, so two figures built from the same inputs
// are deeply equal. A Figure marshals to the JSON figure format
// understood by plotly.js, which draws it in the browser, and can be
// rendered to static SVG or PNG with WriteSVG and WritePNG.
//
// Figures never contain NaN values, which JSON cannot represent.
package figure

import (
	"encoding/json"
	"math"
)

// Kind is the type of a trace.
type Kind string

const (
	KindScatterMapbox Kind = "scattermapbox"
	KindBar           Kind = "bar"
	KindPie           Kind = "pie"
	KindHeatmap       Kind = "heatmap"
)

// Figure describes a chart.
type Figure struct {
	Traces []Trace
	Layout Layout
}

// Empty returns a figure with no traces. It is the neutral output of
// a callback that has nothing to show.
func Empty() *Figure {
	return &Figure{}
}

// IsEmpty reports whether f has no traces.
func (f *Figure) IsEmpty() bool {
	return f == nil || len(f.Traces) == 0
}

// Trace is one data series. Which fields are used depends on Kind.
type Trace struct {
	Kind Kind
	Name string

	// X and Y are category labels. For bars, X holds one label
	// per bar. For heatmaps, X labels the columns and Y labels
	// the rows of Z.
	X, Y []string

	// Values are bar heights or pie slice sizes. Labels name pie
	// slices.
	Values []float64
	Labels []string

	// Z is the heatmap matrix, indexed [row][column].
	Z [][]float64

	// Lat and Lon locate scatter points. Color and Size, if
	// non-nil, give each point a continuous color and an area.
	// SizeMax is the diameter in pixels of the largest point.
	Lat, Lon    []float64
	Color, Size []float64
	SizeMax     float64

	// MarkerColor is a fixed color for every mark in the trace.
	MarkerColor string

	// HoverBgColor is the background color of hover labels.
	HoverBgColor string
}

// Layout describes everything about a figure other than its data.
type Layout struct {
	Title  string
	TitleX float64 // 0 = plotly's default position

	XAxisTitle, YAxisTitle string
	LegendTitle            string
	HideLegend             bool

	// ColorScale names the continuous color scale shared by all
	// traces, such as "Inferno". ColorTitle labels its color bar.
	ColorScale   string
	ReverseScale bool
	ColorTitle   string

	// BarMode is "group", "stack" or "" (plotly's default).
	BarMode string

	Mapbox *Mapbox

	Height int
}

// Mapbox configures the base map of scattermapbox traces.
type Mapbox struct {
	AccessToken string
	Style       string
	Zoom        float64
	CenterLat   float64
	CenterLon   float64
}

// DefaultPalette is the categorical color sequence for discrete color
// encodings, matching plotly's default.
var DefaultPalette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

type jsonText struct {
	Text string  `json:"text,omitempty"`
	X    float64 `json:"x,omitempty"`
}

type jsonAxis struct {
	Title *jsonText `json:"title,omitempty"`
}

type jsonLegend struct {
	Title *jsonText `json:"title,omitempty"`
}

type jsonColorAxis struct {
	ColorScale   string      `json:"colorscale,omitempty"`
	ReverseScale bool        `json:"reversescale,omitempty"`
	ColorBar     *jsonLegend `json:"colorbar,omitempty"`
}

type jsonCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type jsonMapbox struct {
	AccessToken string     `json:"accesstoken,omitempty"`
	Style       string     `json:"style,omitempty"`
	Zoom        float64    `json:"zoom,omitempty"`
	Center      jsonCenter `json:"center"`
}

type jsonLayout struct {
	Title      *jsonText      `json:"title,omitempty"`
	XAxis      *jsonAxis      `json:"xaxis,omitempty"`
	YAxis      *jsonAxis      `json:"yaxis,omitempty"`
	Legend     *jsonLegend    `json:"legend,omitempty"`
	ShowLegend *bool          `json:"showlegend,omitempty"`
	ColorAxis  *jsonColorAxis `json:"coloraxis,omitempty"`
	BarMode    string         `json:"barmode,omitempty"`
	Mapbox     *jsonMapbox    `json:"mapbox,omitempty"`
	Height     int            `json:"height,omitempty"`
}

type jsonMarker struct {
	Color     interface{} `json:"color,omitempty"`
	ColorAxis string      `json:"coloraxis,omitempty"`
	Size      []float64   `json:"size,omitempty"`
	SizeMode  string      `json:"sizemode,omitempty"`
	SizeRef   float64     `json:"sizeref,omitempty"`
}

type jsonHoverLabel struct {
	BgColor string `json:"bgcolor"`
}

type jsonTrace struct {
	Type       Kind            `json:"type"`
	Name       string          `json:"name,omitempty"`
	Mode       string          `json:"mode,omitempty"`
	X          []string        `json:"x,omitempty"`
	Y          interface{}     `json:"y,omitempty"`
	Z          [][]float64     `json:"z,omitempty"`
	Labels     []string        `json:"labels,omitempty"`
	Values     []float64       `json:"values,omitempty"`
	Lat        []float64       `json:"lat,omitempty"`
	Lon        []float64       `json:"lon,omitempty"`
	ColorAxis  string          `json:"coloraxis,omitempty"`
	Marker     *jsonMarker     `json:"marker,omitempty"`
	HoverLabel *jsonHoverLabel `json:"hoverlabel,omitempty"`
}

// MarshalJSON encodes f as a plotly.js figure. Like any nil pointer,
// a nil *Figure encodes as null; use Empty for a figure with nothing
// to show.
func (f *Figure) MarshalJSON() ([]byte, error) {
	out := struct {
		Data   []jsonTrace `json:"data"`
		Layout jsonLayout  `json:"layout"`
	}{Data: []jsonTrace{}}
	for i := range f.Traces {
		out.Data = append(out.Data, f.Traces[i].toJSON())
	}
	out.Layout = f.Layout.toJSON()
	return json.Marshal(out)
}

func (t *Trace) toJSON() jsonTrace {
	jt := jsonTrace{Type: t.Kind, Name: t.Name}
	if t.HoverBgColor != "" {
		jt.HoverLabel = &jsonHoverLabel{t.HoverBgColor}
	}
	switch t.Kind {
	case KindScatterMapbox:
		jt.Mode = "markers"
		jt.Lat, jt.Lon = t.Lat, t.Lon
		m := &jsonMarker{}
		if t.Color != nil {
			m.Color = t.Color
			m.ColorAxis = "coloraxis"
		} else if t.MarkerColor != "" {
			m.Color = t.MarkerColor
		}
		if t.Size != nil {
			m.Size = t.Size
			m.SizeMode = "area"
			m.SizeRef = sizeRef(t.Size, t.SizeMax)
		}
		jt.Marker = m

	case KindBar:
		jt.X = t.X
		jt.Y = t.Values
		if t.MarkerColor != "" {
			jt.Marker = &jsonMarker{Color: t.MarkerColor}
		}

	case KindPie:
		jt.Labels = t.Labels
		jt.Values = t.Values

	case KindHeatmap:
		jt.X = t.X
		jt.Y = t.Y
		jt.Z = t.Z
		jt.ColorAxis = "coloraxis"
	}
	return jt
}

// sizeRef scales marker areas so the largest is max pixels across,
// the way plotly express does.
func sizeRef(sizes []float64, max float64) float64 {
	if max <= 0 {
		max = 20
	}
	biggest := 0.0
	for _, s := range sizes {
		biggest = math.Max(biggest, s)
	}
	if biggest == 0 {
		return 0
	}
	return 2 * biggest / (max * max)
}

func (l *Layout) toJSON() jsonLayout {
	var jl jsonLayout
	if l.Title != "" {
		jl.Title = &jsonText{Text: l.Title, X: l.TitleX}
	}
	if l.XAxisTitle != "" {
		jl.XAxis = &jsonAxis{&jsonText{Text: l.XAxisTitle}}
	}
	if l.YAxisTitle != "" {
		jl.YAxis = &jsonAxis{&jsonText{Text: l.YAxisTitle}}
	}
	if l.LegendTitle != "" {
		jl.Legend = &jsonLegend{&jsonText{Text: l.LegendTitle}}
	}
	if l.HideLegend {
		f := false
		jl.ShowLegend = &f
	}
	if l.ColorScale != "" {
		jl.ColorAxis = &jsonColorAxis{ColorScale: l.ColorScale, ReverseScale: l.ReverseScale}
		if l.ColorTitle != "" {
			jl.ColorAxis.ColorBar = &jsonLegend{&jsonText{Text: l.ColorTitle}}
		}
	}
	jl.BarMode = l.BarMode
	if m := l.Mapbox; m != nil {
		jl.Mapbox = &jsonMapbox{
			AccessToken: m.AccessToken,
			Style:       m.Style,
			Zoom:        m.Zoom,
			Center:      jsonCenter{m.CenterLat, m.CenterLon},
		}
	}
	jl.Height = l.Height
	return jl
}
