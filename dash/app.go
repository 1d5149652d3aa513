// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dash serves single-page reactive dashboards.
//
// An App combines a static page layout with a registry of callbacks.
// Each callback is a pure function from the current values of some
// controls to new values of some output properties, such as the
// "figure" of a Graph or the "children" of a Div. The browser owns all
// control state: whenever a control changes, the page posts the
// current values of every control to the server, which runs each
// callback watching that control and returns the new outputs.
//
// The App is built once at startup and is read-only once its handler
// is created, so any number of requests may dispatch concurrently.
package dash

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/aclements/go-dash/figure"
)

// ErrUnknownControl is returned when an update names a control that
// is not in the layout.
var ErrUnknownControl = errors.New("unknown control")

// ErrUnknownOutput is returned when an export names an output that no
// graph provides.
var ErrUnknownOutput = errors.New("unknown output")

// Config configures an App.
type Config struct {
	// Title is the page title.
	Title string

	// Layout is the root of the page.
	Layout Component

	// Debug enables auto-reload of the page when the server
	// restarts, dispatch logging, and error text in responses.
	Debug bool

	// Logger receives dispatch logs and recovered failures. If nil,
	// the standard logger is used.
	Logger *log.Logger
}

// Output names a property of a component.
type Output struct {
	ID       string
	Property string
}

// Figure returns the "figure" property of graph id.
func Figure(id string) Output { return Output{id, "figure"} }

// Children returns the "children" property of div id.
func Children(id string) Output { return Output{id, "children"} }

func (o Output) String() string {
	return o.ID + "." + o.Property
}

// neutral returns the value an output takes when its callback fails.
func (o Output) neutral() interface{} {
	switch o.Property {
	case "figure":
		return figure.Empty()
	case "children":
		return ""
	}
	return nil
}

// Inputs holds the control values passed to a callback.
type Inputs struct {
	values map[string]json.RawMessage
}

// Decode unmarshals the value of control id into v.
func (in Inputs) Decode(id string, v interface{}) error {
	raw, ok := in.values[id]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownControl, id)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("control %s: %w", id, err)
	}
	return nil
}

// Callback computes Outputs from the values of the Inputs controls.
type Callback struct {
	Inputs  []string
	Outputs []Output

	// Func returns one value per output, in order. Values must
	// marshal to JSON. A *figure.Figure is the value of a "figure"
	// property; a string or *figure.Table is the value of a
	// "children" property.
	Func func(in Inputs) ([]interface{}, error)
}

// App is a dashboard: a layout and the callbacks that update it.
type App struct {
	title  string
	layout Component
	debug  bool
	logger *log.Logger
	bootID string

	controls map[string]Control
	order    []string // control IDs in document order
	graphs   map[string]*Graph
	divs     map[string]*Div

	callbacks []*Callback
	claimed   map[Output]*Callback

	frozen bool
}

// New returns an App with the layout in cfg. It panics if two
// components share an ID.
func New(cfg Config) *App {
	a := &App{
		title:    cfg.Title,
		layout:   cfg.Layout,
		debug:    cfg.Debug,
		logger:   cfg.Logger,
		bootID:   strconv.FormatInt(time.Now().UnixNano(), 36),
		controls: make(map[string]Control),
		graphs:   make(map[string]*Graph),
		divs:     make(map[string]*Div),
		claimed:  make(map[Output]*Callback),
	}
	if a.logger == nil {
		a.logger = log.New(os.Stderr, log.Prefix(), log.Flags())
	}
	seen := make(map[string]bool)
	use := func(id string) {
		if id == "" {
			return
		}
		if seen[id] {
			panic(fmt.Sprintf("dash: duplicate component ID %q", id))
		}
		seen[id] = true
	}
	walk(cfg.Layout, func(c Component) {
		switch c := c.(type) {
		case Control:
			use(c.ControlID())
			a.controls[c.ControlID()] = c
			a.order = append(a.order, c.ControlID())
		case *Graph:
			use(c.ID)
			a.graphs[c.ID] = c
		case *Div:
			use(c.ID)
			a.divs[c.ID] = c
		}
	})
	return a
}

// Callback registers cb. It panics if cb names a control or output
// that is not in the layout, if an output is already claimed by
// another callback or is a static graph, or if the App's handler has
// already been created.
func (a *App) Callback(cb Callback) {
	if a.frozen {
		panic("dash: Callback called after Handler")
	}
	if cb.Func == nil {
		panic("dash: Callback with nil Func")
	}
	if len(cb.Inputs) == 0 || len(cb.Outputs) == 0 {
		panic("dash: Callback needs at least one input and one output")
	}
	for _, id := range cb.Inputs {
		if _, ok := a.controls[id]; !ok {
			panic(fmt.Sprintf("dash: callback input %q is not a control", id))
		}
	}
	p := &cb
	seen := make(map[Output]bool)
	for _, o := range cb.Outputs {
		switch o.Property {
		case "figure":
			g, ok := a.graphs[o.ID]
			if !ok {
				panic(fmt.Sprintf("dash: callback output %s is not a graph", o))
			}
			if g.Figure != nil {
				panic(fmt.Sprintf("dash: callback output %s is a static graph", o))
			}
		case "children":
			if _, ok := a.divs[o.ID]; !ok {
				panic(fmt.Sprintf("dash: callback output %s is not a div", o))
			}
		default:
			panic(fmt.Sprintf("dash: unknown output property %s", o))
		}
		if _, ok := a.claimed[o]; ok {
			panic(fmt.Sprintf("dash: output %s claimed by two callbacks", o))
		}
		if seen[o] {
			panic(fmt.Sprintf("dash: output %s listed twice", o))
		}
		seen[o] = true
	}
	for _, o := range cb.Outputs {
		a.claimed[o] = p
	}
	a.callbacks = append(a.callbacks, p)
}

// Update is the result of a dispatch.
type Update struct {
	// Outputs maps "id.property" to the new value.
	Outputs map[string]json.RawMessage `json:"outputs"`

	// Errors lists recovered callback failures. It is only
	// populated in debug mode.
	Errors []string `json:"errors,omitempty"`
}

// Dispatch runs every callback that watches one of the changed
// controls, in registration order, and returns their outputs.
//
// values holds the current JSON value of each control. A control
// missing from values takes its initial value. A callback that fails
// or panics is logged and its outputs are set to neutral values: an
// empty figure or empty children.
func (a *App) Dispatch(changed []string, values map[string]json.RawMessage) (*Update, error) {
	watch := make(map[string]bool)
	for _, id := range changed {
		if _, ok := a.controls[id]; !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownControl, id)
		}
		watch[id] = true
	}
	start := time.Now()
	in := a.inputs(values)
	up := &Update{Outputs: make(map[string]json.RawMessage)}
	var ran []string
	for _, cb := range a.callbacks {
		if !watches(cb, watch) {
			continue
		}
		for i, v := range a.call(cb, in, up) {
			data, err := json.Marshal(v)
			if err != nil {
				// call already checked each value.
				panic(err)
			}
			up.Outputs[cb.Outputs[i].String()] = data
			ran = append(ran, cb.Outputs[i].String())
		}
	}
	if a.debug {
		a.logger.Printf("dispatch %s -> %s (%s)", strings.Join(changed, ","), strings.Join(ran, ","), time.Since(start))
	}
	return up, nil
}

// Initial returns every callback output computed from the initial
// control values, as the page shows them on load.
func (a *App) Initial() *Update {
	up, err := a.Dispatch(a.order, nil)
	if err != nil {
		// a.order only contains known controls.
		panic(err)
	}
	return up
}

func watches(cb *Callback, changed map[string]bool) bool {
	for _, id := range cb.Inputs {
		if changed[id] {
			return true
		}
	}
	return false
}

// inputs fills in initial values for controls missing from values.
func (a *App) inputs(values map[string]json.RawMessage) Inputs {
	in := Inputs{make(map[string]json.RawMessage, len(a.controls))}
	for id, c := range a.controls {
		if v, ok := values[id]; ok {
			in.values[id] = v
			continue
		}
		data, err := json.Marshal(c.InitialValue())
		if err != nil {
			panic(fmt.Sprintf("dash: initial value of %s: %v", id, err))
		}
		in.values[id] = data
	}
	return in
}

// call runs cb and returns one JSON-encodable value per output. If
// cb fails, it logs the failure, records it in up, and returns
// neutral values.
func (a *App) call(cb *Callback, in Inputs, up *Update) []interface{} {
	vals, err := a.run(cb, in)
	if err == nil {
		if len(vals) != len(cb.Outputs) {
			err = fmt.Errorf("returned %d values for %d outputs", len(vals), len(cb.Outputs))
		} else {
			for i, v := range vals {
				if _, merr := json.Marshal(v); merr != nil {
					err = fmt.Errorf("output %s: %w", cb.Outputs[i], merr)
					break
				}
			}
		}
	}
	if err == nil {
		// A nil figure or table would marshal as null.
		for i, v := range vals {
			switch v := v.(type) {
			case *figure.Figure:
				if v == nil {
					vals[i] = cb.Outputs[i].neutral()
				}
			case *figure.Table:
				if v == nil {
					vals[i] = cb.Outputs[i].neutral()
				}
			}
		}
		return vals
	}

	name := outputNames(cb)
	a.logger.Print(highlight(fmt.Sprintf("callback %s failed: %v", name, err)))
	if up != nil && a.debug {
		up.Errors = append(up.Errors, fmt.Sprintf("%s: %v", name, err))
	}
	vals = make([]interface{}, len(cb.Outputs))
	for i, o := range cb.Outputs {
		vals[i] = o.neutral()
	}
	return vals
}

// run calls cb.Func, turning a panic into an error.
func (a *App) run(cb *Callback, in Inputs) (vals []interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			if a.debug {
				err = fmt.Errorf("%w\n%s", err, debug.Stack())
			}
		}
	}()
	return cb.Func(in)
}

func outputNames(cb *Callback) string {
	names := make([]string, len(cb.Outputs))
	for i, o := range cb.Outputs {
		names[i] = o.String()
	}
	return strings.Join(names, ",")
}
