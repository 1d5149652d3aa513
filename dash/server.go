// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aclements/go-dash/figure"
	"golang.org/x/sync/errgroup"
)

const (
	defaultExportWidth  = 800
	defaultExportHeight = 500
	maxUpdateBytes      = 1 << 20
)

// Handler returns the HTTP handler serving the dashboard. After the
// first call, the App is read-only and Callback panics.
func (a *App) Handler() http.Handler {
	a.frozen = true
	mux := http.NewServeMux()
	mux.HandleFunc("/", a.httpMain)
	mux.HandleFunc("/_dash-update", a.httpUpdate)
	mux.HandleFunc("/_dash-layout", a.httpLayout)
	mux.HandleFunc("/_dash-reload", a.httpReload)
	mux.HandleFunc("/export/", a.httpExport)
	return mux
}

// ListenAndServe serves the dashboard on addr until ctx is done, then
// shuts the server down.
func (a *App) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create server socket: %w", err)
	}
	srv := &http.Server{Handler: a.Handler()}
	a.logger.Printf("Listening on http://%s", ln.Addr())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// httpError replies with err. Outside debug mode, only the status
// text is shown.
func (a *App) httpError(w http.ResponseWriter, err error, code int) {
	msg := http.StatusText(code)
	if a.debug {
		msg = err.Error()
	}
	if code >= 500 {
		a.logger.Print(highlight(err.Error()))
	}
	http.Error(w, msg, code)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (a *App) httpMain(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := a.writePage(&buf); err != nil {
		a.httpError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

type updateRequest struct {
	Changed []string                   `json:"changed"`
	Inputs  map[string]json.RawMessage `json:"inputs"`
}

func (a *App) httpUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		a.httpError(w, fmt.Errorf("method %s not allowed", r.Method), http.StatusMethodNotAllowed)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&req); err != nil {
		a.httpError(w, fmt.Errorf("bad update request: %w", err), http.StatusBadRequest)
		return
	}
	up, err := a.Dispatch(req.Changed, req.Inputs)
	if err != nil {
		a.httpError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, up)
}

type layoutControl struct {
	ID    string      `json:"id"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

type layoutCallback struct {
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// httpLayout describes the controls and callbacks of the App.
func (a *App) httpLayout(w http.ResponseWriter, r *http.Request) {
	out := struct {
		Title     string           `json:"title"`
		Controls  []layoutControl  `json:"controls"`
		Callbacks []layoutCallback `json:"callbacks"`
		Static    []string         `json:"static"`
	}{Title: a.title, Controls: []layoutControl{}, Callbacks: []layoutCallback{}, Static: []string{}}
	for _, id := range a.order {
		c := a.controls[id]
		out.Controls = append(out.Controls, layoutControl{id, c.tmpl(), c.InitialValue()})
	}
	for _, cb := range a.callbacks {
		out.Callbacks = append(out.Callbacks, layoutCallback{cb.Inputs, strings.Split(outputNames(cb), ",")})
	}
	for id, g := range a.graphs {
		if g.Figure != nil {
			out.Static = append(out.Static, id)
		}
	}
	sort.Strings(out.Static)
	writeJSON(w, out)
}

func (a *App) httpReload(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Boot string `json:"boot"`
	}{a.bootID})
}

// ExportFigure returns the figure of graph id for the given control
// values. Controls missing from values take their initial value.
func (a *App) ExportFigure(id string, values map[string]json.RawMessage) (*figure.Figure, error) {
	if g, ok := a.graphs[id]; ok && g.Figure != nil {
		return g.Figure, nil
	}
	out := Figure(id)
	cb, ok := a.claimed[out]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownOutput, out)
	}
	for cid := range values {
		if _, ok := a.controls[cid]; !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownControl, cid)
		}
	}
	vals := a.call(cb, a.inputs(values), nil)
	for i, o := range cb.Outputs {
		if o != out {
			continue
		}
		if f, ok := vals[i].(*figure.Figure); ok && f != nil {
			return f, nil
		}
	}
	return figure.Empty(), nil
}

// httpExport serves /export/<id>.svg and /export/<id>.png. Query
// parameters other than width and height are JSON control values.
func (a *App) httpExport(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/export/")
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		http.NotFound(w, r)
		return
	}
	id, ext := name[:dot], name[dot+1:]
	var write func(io.Writer, *figure.Figure, int, int) error
	var ctype string
	switch ext {
	case "svg":
		write, ctype = figure.WriteSVG, "image/svg+xml"
	case "png":
		write, ctype = figure.WritePNG, "image/png"
	default:
		http.NotFound(w, r)
		return
	}

	width, height := defaultExportWidth, defaultExportHeight
	values := make(map[string]json.RawMessage)
	for k, vs := range r.URL.Query() {
		v := vs[0]
		var err error
		switch k {
		case "width":
			width, err = strconv.Atoi(v)
			if err == nil && width <= 0 {
				err = fmt.Errorf("bad width %d", width)
			}
		case "height":
			height, err = strconv.Atoi(v)
			if err == nil && height <= 0 {
				err = fmt.Errorf("bad height %d", height)
			}
		default:
			if !json.Valid([]byte(v)) {
				err = fmt.Errorf("value of %s is not JSON", k)
			}
			values[k] = json.RawMessage(v)
		}
		if err != nil {
			a.httpError(w, err, http.StatusBadRequest)
			return
		}
	}

	f, err := a.ExportFigure(id, values)
	switch {
	case errors.Is(err, ErrUnknownOutput):
		http.NotFound(w, r)
		return
	case err != nil:
		a.httpError(w, err, http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, f, width, height); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, figure.ErrUnsupported) {
			code = http.StatusNotImplemented
		}
		a.httpError(w, err, code)
		return
	}
	w.Header().Set("Content-Type", ctype)
	buf.WriteTo(w)
}
