// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aclements/go-dash/dash"
	"github.com/aclements/go-dash/dataset"
)

func testView(t *testing.T) *view {
	t.Helper()
	d, err := dataset.Load("carshare")
	if err != nil {
		t.Fatal(err)
	}
	v, err := newView(d, "test-token")
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestHourBounds(t *testing.T) {
	v := testView(t)
	if v.minHour != 0 || v.maxHour != 23 {
		t.Errorf("want hours [0, 23], have [%d, %d]", v.minHour, v.maxHour)
	}
}

func TestSummaryCount(t *testing.T) {
	v := testView(t)
	hours := v.data.Ints("peak_hour")
	for lo := v.minHour; lo <= v.maxHour; lo++ {
		for hi := lo; hi <= v.maxHour; hi++ {
			want := 0
			for _, h := range hours {
				if lo <= h && h <= hi {
					want++
				}
			}
			if have := summarize(v.selectHours(lo, hi)).Count; have != want {
				t.Errorf("[%d, %d]: want %d cars, have %d", lo, hi, want, have)
			}
		}
	}
}

func TestSummaryAll(t *testing.T) {
	v := testView(t)
	s := summarize(v.selectHours(v.minHour, v.maxHour))
	if s.Count != v.data.Len() {
		t.Errorf("want %d cars, have %d", v.data.Len(), s.Count)
	}
	sum := 0.0
	for _, x := range v.data.Floats("car_hours") {
		sum += x
	}
	if math.Abs(s.Total-sum) > 1e-6 {
		t.Errorf("want total %v, have %v", sum, s.Total)
	}
	if want := sum / float64(s.Count); math.Abs(s.Mean-want) > 1e-6 {
		t.Errorf("want mean %v, have %v", want, s.Mean)
	}
}

func TestEmptySubset(t *testing.T) {
	v := testView(t)
	for _, r := range [][2]int{
		{11, 11}, // No cars peak at 11:00.
		{5, 3},   // Reversed range.
		{30, 40}, // Past the data.
	} {
		fig, info := v.updateColour(r[0], r[1])
		s := summarize(v.selectHours(r[0], r[1]))
		if s.Count != 0 || s.Total != 0 || !math.IsNaN(s.Mean) {
			t.Errorf("%v: want {0 0 NaN}, have %+v", r, s)
		}
		want := [][]string{{"Number of Cars", "0"}, {"Total hours", "0"}, {"Average hours", "NaN"}}
		if !reflect.DeepEqual(info.Rows, want) {
			t.Errorf("%v: want rows %v, have %v", r, want, info.Rows)
		}
		if len(fig.Traces) != 1 || len(fig.Traces[0].Lat) != 0 {
			t.Errorf("%v: want one empty trace, have %+v", r, fig.Traces)
		}
		if _, err := json.Marshal(fig); err != nil {
			t.Errorf("%v: %v", r, err)
		}
	}
}

func TestHugeRange(t *testing.T) {
	v := testView(t)
	if have := summarize(v.selectHours(-1<<40, 1<<40)).Count; have != v.data.Len() {
		t.Errorf("want %d cars, have %d", v.data.Len(), have)
	}
}

func TestScatter(t *testing.T) {
	v := testView(t)
	fig, _ := v.updateColour(8, 8)
	if want := "Car sharing between the hours of 8:00 & 8:00"; fig.Layout.Title != want {
		t.Errorf("want title %q, have %q", want, fig.Layout.Title)
	}
	tr := fig.Traces[0]
	if len(tr.Lat) != 6 {
		t.Errorf("want 6 cars at 8:00, have %d", len(tr.Lat))
	}
	for _, h := range tr.Color {
		if h != 8 {
			t.Errorf("want color 8, have %v", h)
		}
	}
	if tr.SizeMax != 13 || tr.HoverBgColor != "blue" {
		t.Errorf("marker style: have %+v", tr)
	}
	l := fig.Layout
	if l.ColorScale != "Inferno" || !l.ReverseScale || l.Mapbox.Style != "dark" || l.Mapbox.Zoom != 9.5 || l.Mapbox.AccessToken != "test-token" {
		t.Errorf("layout: have %+v %+v", l, l.Mapbox)
	}
}

func TestUpdateColourIdempotent(t *testing.T) {
	v := testView(t)
	marshal := func() []byte {
		fig, info := v.updateColour(3, 17)
		data, err := json.Marshal([]interface{}{fig, info})
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	if a, b := marshal(), marshal(); !bytes.Equal(a, b) {
		t.Errorf("outputs differ:\n%s\n%s", a, b)
	}
}

func TestFormatHours(t *testing.T) {
	for x, want := range map[float64]string{
		0:          "0",
		632.5966:   "632.6",
		1424.1909:  "1424.19",
		math.NaN(): "NaN",
	} {
		if have := formatHours(x); have != want {
			t.Errorf("formatHours(%v): want %s, have %s", x, want, have)
		}
	}
}

func TestApp(t *testing.T) {
	v := testView(t)
	app := newApp(v, dash.Config{Logger: log.New(new(bytes.Buffer), "", 0)})
	h := app.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	for _, want := range []string{title, `id="slider"`, `min="0" max="23"`, `<table class="table table-bordered table-hover table-info">`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("page missing %q", want)
		}
	}

	w = httptest.NewRecorder()
	body := `{"changed":["slider"],"inputs":{"slider":[11,11]}}`
	h.ServeHTTP(w, httptest.NewRequest("POST", "/_dash-update", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, have %d: %s", w.Code, w.Body)
	}
	var up dash.Update
	if err := json.Unmarshal(w.Body.Bytes(), &up); err != nil {
		t.Fatal(err)
	}
	var info string
	if err := json.Unmarshal(up.Outputs["shown-info.children"], &info); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(info, "<td>NaN</td>") {
		t.Errorf("summary for empty range: %s", info)
	}
	if !strings.Contains(string(up.Outputs["scatter.figure"]), "11:00 \\u0026 11:00") {
		t.Errorf("figure title: %s", up.Outputs["scatter.figure"])
	}
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()
	if _, err := readToken(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("missing file: want error")
	}

	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte(" \n"), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := readToken(empty); err == nil {
		t.Errorf("empty file: want error")
	}

	good := filepath.Join(dir, "good")
	if err := os.WriteFile(good, []byte("pk.abc\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if tok, err := readToken(good); err != nil || tok != "pk.abc" {
		t.Errorf("want pk.abc, have %q, %v", tok, err)
	}
}
