// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dash

import (
	"context"
	"encoding/json"
	"flag"
	"image/png"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/aclements/go-dash/figure"
)

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", url, nil))
	return w
}

func TestPage(t *testing.T) {
	a, _ := testApp(false)
	w := get(t, a.Handler(), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, have %d: %s", w.Code, w.Body)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<title>Test</title>",
		`<h1 class="">Test</h1>`,
		`<div class="col-md-4">`,
		`id="slider" class="dash-rangeslider" data-control="rangeslider"`,
		`value="ok" checked`,
		`<div id="graph" class="dash-graph"></div>`,
		"cerulean/bootstrap.min.css",
		"plotly",
		"static.figure",
		"radio-out.children",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `<div id="dash-errors"`) {
		t.Errorf("error box outside debug mode")
	}

	if w := get(t, a.Handler(), "/nope"); w.Code != http.StatusNotFound {
		t.Errorf("/nope: want 404, have %d", w.Code)
	}
}

func TestPageDataTable(t *testing.T) {
	a := New(Config{
		Layout: &DataTable{
			ID:            "t",
			Table:         &figure.Table{Header: []string{"name"}, Rows: [][]string{{"a"}, {"b"}}},
			RowSelectable: true,
			Selected:      []int{1},
		},
	})
	body := get(t, a.Handler(), "/").Body.String()
	for _, want := range []string{
		`<input class="form-check-input" type="radio" name="t" value="0">`,
		`<input class="form-check-input" type="radio" name="t" value="1" checked>`,
		`<td>b</td>`,
		`data-clear="t"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestUpdate(t *testing.T) {
	a, _ := testApp(false)
	h := a.Handler()

	w := httptest.NewRecorder()
	body := `{"changed":["slider"],"inputs":{"slider":[10,12],"radio":"ok"}}`
	h.ServeHTTP(w, httptest.NewRequest("POST", "/_dash-update", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, have %d: %s", w.Code, w.Body)
	}
	var up Update
	if err := json.Unmarshal(w.Body.Bytes(), &up); err != nil {
		t.Fatal(err)
	}
	if have := outputString(t, &up, "info.children"); have != "2" {
		t.Errorf("info.children: want 2, have %s", have)
	}
}

func TestUpdateErrors(t *testing.T) {
	for _, debug := range []bool{false, true} {
		a, _ := testApp(debug)
		h := a.Handler()
		for _, test := range []struct {
			method, body string
			code         int
			detail       string
		}{
			{"GET", "", http.StatusMethodNotAllowed, "method GET"},
			{"POST", "{", http.StatusBadRequest, "bad update request"},
			{"POST", `{"changed":["nope"]}`, http.StatusBadRequest, "unknown control"},
		} {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(test.method, "/_dash-update", strings.NewReader(test.body)))
			if w.Code != test.code {
				t.Errorf("%s %s: want %d, have %d", test.method, test.body, test.code, w.Code)
			}
			verbose := strings.Contains(w.Body.String(), test.detail)
			if verbose != debug {
				t.Errorf("%s %s: debug=%v, but body is %q", test.method, test.body, debug, w.Body)
			}
		}
	}
}

func TestLayout(t *testing.T) {
	a, _ := testApp(false)
	w := get(t, a.Handler(), "/_dash-layout")
	var out struct {
		Title    string
		Controls []struct {
			ID    string
			Type  string
			Value json.RawMessage
		}
		Callbacks []struct {
			Inputs  []string
			Outputs []string
		}
		Static []string
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Controls) != 2 || out.Controls[0].ID != "slider" || out.Controls[1].Type != "radioitems" {
		t.Errorf("controls: have %+v", out.Controls)
	}
	if string(out.Controls[0].Value) != "[3,5]" {
		t.Errorf("slider value: want [3,5], have %s", out.Controls[0].Value)
	}
	if want := []string{"graph.figure", "info.children"}; len(out.Callbacks) != 2 || !reflect.DeepEqual(out.Callbacks[0].Outputs, want) {
		t.Errorf("callbacks: have %+v", out.Callbacks)
	}
	if want := []string{"static"}; !reflect.DeepEqual(out.Static, want) {
		t.Errorf("static: want %v, have %v", want, out.Static)
	}
}

func TestReload(t *testing.T) {
	a, _ := testApp(true)
	w := get(t, a.Handler(), "/_dash-reload")
	var out struct{ Boot string }
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Boot != a.bootID || out.Boot == "" {
		t.Errorf("want boot %q, have %q", a.bootID, out.Boot)
	}
	if page := get(t, a.Handler(), "/").Body.String(); !strings.Contains(page, `<div id="dash-errors"`) {
		t.Errorf("debug page has no error box")
	}
}

func TestExport(t *testing.T) {
	a, _ := testApp(false)
	h := a.Handler()

	w := get(t, h, "/export/graph.svg?slider=%5B1,2%5D&width=300&height=200")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, have %d: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("want SVG content type, have %s", ct)
	}
	// The figure has no traces, so it is drawn as a placeholder
	// captioned with its title.
	if !strings.Contains(w.Body.String(), "1-2") {
		t.Errorf("export ignored control values: %s", w.Body)
	}

	w = get(t, h, "/export/static.png?width=30&height=20")
	if w.Code != http.StatusOK {
		t.Fatalf("static png: want 200, have %d: %s", w.Code, w.Body)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("want 30x20, have %v", b)
	}

	for url, code := range map[string]int{
		"/export/nope.svg":              http.StatusNotFound,
		"/export/graph.gif":             http.StatusNotFound,
		"/export/graph":                 http.StatusNotFound,
		"/export/info.svg":              http.StatusNotFound,
		"/export/graph.svg?width=0":     http.StatusBadRequest,
		"/export/graph.svg?slider=%5B1": http.StatusBadRequest,
		"/export/graph.svg?nope=1":      http.StatusBadRequest,
	} {
		if w := get(t, h, url); w.Code != code {
			t.Errorf("%s: want %d, have %d", url, code, w.Code)
		}
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	a, _ := testApp(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.ListenAndServe(ctx, "localhost:0"); err != nil {
		t.Errorf("want clean shutdown, have %v", err)
	}
}

func TestParseFlags(t *testing.T) {
	t.Setenv(EnvFlags, `-http ':9000' -debug`)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var f Flags
	f.Register(fs)
	if err := ParseFlags(fs, []string{"-http", "localhost:1", "extra"}); err != nil {
		t.Fatal(err)
	}
	if f.HTTP != "localhost:1" || !f.Debug {
		t.Errorf("have %+v", f)
	}
	if want := []string{"extra"}; !reflect.DeepEqual(fs.Args(), want) {
		t.Errorf("args: want %v, have %v", want, fs.Args())
	}

	t.Setenv(EnvFlags, `-http 'unterminated`)
	if err := ParseFlags(flag.NewFlagSet("test", flag.ContinueOnError), nil); err == nil {
		t.Errorf("want error for unterminated quote")
	}
}
