// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package figure

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/palette"
	"github.com/aclements/go-gg/table"
	svg "github.com/ajstarks/svgo"
	"github.com/gonum/matrix/mat64"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/draw"
)

// ErrUnsupported is returned when a figure cannot be rendered in the
// requested format.
var ErrUnsupported = errors.New("figure kind not supported by this format")

// WriteSVG renders f as an SVG image of the given size.
//
// Scatter and heatmap figures are drawn with gg, bar and pie figures
// with go-chart. A figure with nothing to draw becomes a blank
// placeholder.
func WriteSVG(w io.Writer, f *Figure, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("bad image size %dx%d", width, height)
	}
	if !drawable(f) {
		caption := ""
		if f != nil {
			caption = f.Layout.Title
		}
		return writePlaceholder(w, caption, width, height)
	}
	switch f.Traces[0].Kind {
	case KindScatterMapbox:
		return scatterPlot(f).WriteSVG(w, width, height)
	case KindHeatmap:
		return heatmapPlot(f).WriteSVG(w, width, height)
	case KindBar:
		return barChart(f, width, height).Render(chart.SVG, w)
	case KindPie:
		return pieChart(f, width, height).Render(chart.SVG, w)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, f.Traces[0].Kind)
}

// WritePNG renders f as a PNG image of the given size. Scatter
// figures need a base map and are not supported.
func WritePNG(w io.Writer, f *Figure, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("bad image size %dx%d", width, height)
	}
	if !drawable(f) {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
		return png.Encode(w, dst)
	}
	switch f.Traces[0].Kind {
	case KindHeatmap:
		return heatmapPNG(w, f, width, height)
	case KindBar:
		return barChart(f, width, height).Render(chart.PNG, w)
	case KindPie:
		return pieChart(f, width, height).Render(chart.PNG, w)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, f.Traces[0].Kind)
}

// drawable reports whether f has at least one mark with a non-zero
// value. go-chart rejects charts with no bars or slices, and gg
// cannot train scales on no data.
func drawable(f *Figure) bool {
	if f.IsEmpty() {
		return false
	}
	for _, t := range f.Traces {
		switch t.Kind {
		case KindScatterMapbox:
			if len(t.Lat) > 0 {
				return true
			}
		case KindHeatmap:
			if t.matrix() != nil {
				return true
			}
		case KindBar, KindPie:
			for _, v := range t.Values {
				if v != 0 {
					return true
				}
			}
		}
	}
	return false
}

func scatterPlot(f *Figure) *gg.Plot {
	var lat, lon, colors, sizes []float64
	for _, t := range f.Traces {
		lat = append(lat, t.Lat...)
		lon = append(lon, t.Lon...)
		colors = append(colors, t.Color...)
		sizes = append(sizes, t.Size...)
	}
	b := table.NewBuilder(nil).Add("longitude", lon).Add("latitude", lat)
	layer := gg.LayerPoints{X: "longitude", Y: "latitude"}
	if len(colors) == len(lat) {
		name := f.Layout.ColorTitle
		if name == "" {
			name = "color"
		}
		b.Add(name, colors)
		layer.Color = name
	}
	if len(sizes) == len(lat) {
		b.Add("size", sizes)
		layer.Size = "size"
	}
	p := gg.NewPlot(b.Done())
	p.Add(layer)
	if f.Layout.Title != "" {
		p.Add(gg.Title(f.Layout.Title))
	}
	return p
}

func heatmapPlot(f *Figure) *gg.Plot {
	var xs, ys []string
	var zs []float64
	for _, t := range f.Traces {
		for i, row := range t.Z {
			for j, z := range row {
				xs = append(xs, t.X[j])
				ys = append(ys, t.Y[i])
				zs = append(zs, z)
			}
		}
	}
	xName, yName := f.Layout.XAxisTitle, f.Layout.YAxisTitle
	if xName == "" {
		xName = "x"
	}
	if yName == "" {
		yName = "y"
	}
	zName := f.Layout.ColorTitle
	if zName == "" {
		zName = "z"
	}
	tab := table.NewBuilder(nil).Add(xName, xs).Add(yName, ys).Add(zName, zs).Done()
	p := gg.NewPlot(tab)
	p.Add(gg.LayerTiles{X: xName, Y: yName, Fill: zName})
	if f.Layout.Title != "" {
		p.Add(gg.Title(f.Layout.Title))
	}
	return p
}

func barChart(f *Figure, width, height int) chart.BarChart {
	var bars []chart.Value
	for i, t := range f.Traces {
		c := t.MarkerColor
		if c == "" {
			c = DefaultPalette[i%len(DefaultPalette)]
		}
		style := chart.Style{FillColor: hexColor(c), StrokeColor: hexColor(c)}
		for j, v := range t.Values {
			bars = append(bars, chart.Value{Label: t.X[j], Value: v, Style: style})
		}
	}
	// go-chart rejects a zero-height value range, so always
	// include 0.
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo, hi = math.Min(lo, b.Value), math.Max(hi, b.Value)
	}
	barWidth := (width - 80) / (2 * len(bars))
	if barWidth < 4 {
		barWidth = 4
	}
	return chart.BarChart{
		Title:      f.Layout.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Bars:       bars,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: lo, Max: hi}},
	}
}

func pieChart(f *Figure, width, height int) chart.PieChart {
	var values []chart.Value
	t := f.Traces[0]
	for i, v := range t.Values {
		c := DefaultPalette[i%len(DefaultPalette)]
		values = append(values, chart.Value{
			Label: t.Labels[i],
			Value: v,
			Style: chart.Style{FillColor: hexColor(c)},
		})
	}
	return chart.PieChart{
		Title:  f.Layout.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
}

func hexColor(c string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
}

// inferno approximates matplotlib's inferno color map.
var inferno = palette.RGBGradient{
	Colors: []color.RGBA{
		{0x00, 0x00, 0x04, 0xff},
		{0x1b, 0x0c, 0x41, 0xff},
		{0x4a, 0x0c, 0x6b, 0xff},
		{0x78, 0x1c, 0x6d, 0xff},
		{0xa5, 0x2c, 0x60, 0xff},
		{0xcf, 0x44, 0x46, 0xff},
		{0xed, 0x69, 0x25, 0xff},
		{0xfb, 0x9b, 0x06, 0xff},
		{0xf7, 0xd1, 0x3d, 0xff},
		{0xfc, 0xff, 0xa4, 0xff},
	},
}

// heatmapPNG draws one pixel per cell and scales the result up to the
// requested size. Row 0 is at the bottom, as plotly draws it.
func heatmapPNG(w io.Writer, f *Figure, width, height int) error {
	var m *mat64.Dense
	for i := range f.Traces {
		if m = f.Traces[i].matrix(); m != nil {
			break
		}
	}
	lo, hi := mat64.Min(m), mat64.Max(m)
	rows, cols := m.Dims()
	src := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x := 0.0
			if hi > lo {
				x = (m.At(i, j) - lo) / (hi - lo)
			}
			if f.Layout.ReverseScale {
				x = 1 - x
			}
			src.Set(j, rows-1-i, inferno.Map(x))
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return png.Encode(w, dst)
}

// writePlaceholder draws an empty frame with a caption.
func writePlaceholder(w io.Writer, caption string, width, height int) error {
	if caption == "" {
		caption = "No data"
	}
	ew := &errWriter{w: w}
	s := svg.New(ew)
	s.Start(width, height)
	s.Rect(0, 0, width, height, "fill:white;stroke:#ddd")
	s.Text(width/2, height/2, caption, "text-anchor:middle;font-family:sans-serif;font-size:14px;fill:#999")
	s.End()
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
