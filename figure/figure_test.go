// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package figure

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/aclements/go-gg/table"
)

func TestEmptyJSON(t *testing.T) {
	for _, test := range []struct {
		f    *Figure
		want string
	}{
		{Empty(), `{"data":[],"layout":{}}`},
		{&Figure{Traces: []Trace{}}, `{"data":[],"layout":{}}`},
		{nil, `null`},
	} {
		data, err := json.Marshal(test.f)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != test.want {
			t.Errorf("want %s, have %s", test.want, data)
		}
	}
	if !Empty().IsEmpty() {
		t.Error("Empty().IsEmpty() = false")
	}
}

func TestNewHeatmap(t *testing.T) {
	tr := NewHeatmap([]string{"1", "2"}, []string{"a", "b"}, []Cell{
		{"1", "a", 3},
		{"1", "a", 4},
		{"2", "b", 5},
		{"3", "b", 100},        // Unknown column.
		{"2", "a", math.NaN()}, // Missing.
	})
	want := [][]float64{{7, 0}, {0, 5}}
	if !reflect.DeepEqual(tr.Z, want) {
		t.Errorf("want %v, have %v", want, tr.Z)
	}

	tr = NewHeatmap(nil, []string{"a", "b"}, nil)
	if len(tr.Z) != 2 || len(tr.Z[0]) != 0 || len(tr.Z[1]) != 0 {
		t.Errorf("no columns: want two empty rows, have %v", tr.Z)
	}
	if tr.matrix() != nil {
		t.Errorf("no columns: want nil matrix")
	}
}

func TestFigureJSON(t *testing.T) {
	f := &Figure{
		Traces: []Trace{{Kind: KindBar, Name: "Joly", X: []string{"a"}, Values: []float64{2}, MarkerColor: "#00cc96"}},
		Layout: Layout{Title: "Votes", TitleX: 0.5, BarMode: "group"},
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"data":[{"type":"bar","name":"Joly","x":["a"],"y":[2],"marker":{"color":"#00cc96"}}],"layout":{"title":{"text":"Votes","x":0.5},"barmode":"group"}}`
	if string(data) != want {
		t.Errorf("want %s\nhave %s", want, data)
	}
}

func TestSizeRef(t *testing.T) {
	if have := sizeRef([]float64{1, 169, 4}, 13); have != 2 {
		t.Errorf("want 2, have %v", have)
	}
	if have := sizeRef(nil, 13); have != 0 {
		t.Errorf("want 0, have %v", have)
	}
}

func TestTableFrom(t *testing.T) {
	tab := table.NewBuilder(nil).
		Add("name", []string{"Washington", "Adams"}).
		Add("terms", []int{2, 1}).
		Add("share", []float64{0.5, 0.25}).
		Done()
	out := TableFrom(tab, TableOptions{Index: true, Hover: true, Color: "info"})
	if want := []string{"", "name", "terms", "share"}; !reflect.DeepEqual(out.Header, want) {
		t.Errorf("header: want %v, have %v", want, out.Header)
	}
	want := [][]string{{"0", "Washington", "2", "0.5"}, {"1", "Adams", "1", "0.25"}}
	if !reflect.DeepEqual(out.Rows, want) {
		t.Errorf("rows: want %v, have %v", want, out.Rows)
	}
	if have := out.Class(); have != "table table-hover table-info" {
		t.Errorf("class: have %q", have)
	}
}

func TestTableHTML(t *testing.T) {
	tab := &Table{
		Header:  []string{"Metric", "Value"},
		Rows:    [][]string{{"Number of Cars", "0"}, {"<b>", "NaN"}},
		Striped: true,
		Style:   map[string]string{"text-align": "center", "padding": "0.25rem"},
	}
	html := string(tab.HTML())
	for _, want := range []string{
		`<table class="table table-striped" style="padding: 0.25rem; text-align: center;">`,
		`<th>Metric</th>`,
		`<td>Number of Cars</td>`,
		`<td>&lt;b&gt;</td>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q:\n%s", want, html)
		}
	}

	data, err := json.Marshal(tab)
	if err != nil {
		t.Fatal(err)
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s != html {
		t.Errorf("MarshalJSON should encode the HTML string; have %s", data)
	}
}

func TestWriteSVGPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, Empty(), 200, 100); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") || !strings.Contains(buf.String(), "No data") {
		t.Errorf("want placeholder SVG, have %s", buf.String())
	}

	if err := WriteSVG(&buf, Empty(), 0, 100); err == nil {
		t.Error("want error for zero width")
	}
}

func TestWriteSVG(t *testing.T) {
	for _, f := range []*Figure{
		{Traces: []Trace{{Kind: KindBar, X: []string{"a", "b"}, Values: []float64{1, 2}}}},
		{Traces: []Trace{{Kind: KindPie, Labels: []string{"a", "b"}, Values: []float64{1, 2}}}},
		{Traces: []Trace{NewHeatmap([]string{"1", "2"}, []string{"a", "b"}, []Cell{{"1", "a", 1}, {"2", "b", 3}})}},
	} {
		var buf bytes.Buffer
		if err := WriteSVG(&buf, f, 400, 300); err != nil {
			t.Errorf("%s: %v", f.Traces[0].Kind, err)
			continue
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Errorf("%s: output is not SVG", f.Traces[0].Kind)
		}
	}
}

func TestWritePNG(t *testing.T) {
	f := &Figure{Traces: []Trace{NewHeatmap([]string{"1", "2", "3"}, []string{"a", "b"}, []Cell{{"1", "a", 1}, {"3", "b", 9}})}}
	var buf bytes.Buffer
	if err := WritePNG(&buf, f, 60, 40); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
		t.Errorf("want 60x40 image, have %v", b)
	}

	scatter := &Figure{Traces: []Trace{{Kind: KindScatterMapbox, Lat: []float64{45.5}, Lon: []float64{-73.6}}}}
	if err := WritePNG(&buf, scatter, 60, 40); !errors.Is(err, ErrUnsupported) {
		t.Errorf("scatter PNG: want ErrUnsupported, have %v", err)
	}
}
