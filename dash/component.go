// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dash

import (
	"github.com/aclements/go-dash/figure"
)

// A Component is a piece of page layout. Components are plain
// configuration: they are rendered once into the page and never
// change on the server.
type Component interface {
	// tmpl is the name of the template that renders the
	// component.
	tmpl() string
}

// A Control is a component whose value is owned by the browser and
// can be the input of a callback.
type Control interface {
	Component

	// ControlID is the DOM ID of the control.
	ControlID() string

	// InitialValue is the value of the control when the page
	// loads. It must marshal to JSON.
	InitialValue() interface{}
}

// parent is implemented by components with children.
type parent interface {
	children() []Component
}

// Container is a Bootstrap container.
type Container struct {
	Class    string
	Children []Component
}

// Row is a Bootstrap grid row. Its children are usually Cols.
type Row struct {
	Class    string
	Children []Component
}

// Col is a Bootstrap grid column. Width is a number of grid units out
// of 12, or 0 for an automatic width.
type Col struct {
	Width    int
	Children []Component
}

// H1 is a page title.
type H1 struct {
	Text  string
	Class string
}

// H4 is a section heading.
type H4 struct {
	Text string
}

// StaticTable shows a table that never changes.
type StaticTable struct {
	Table *figure.Table
}

// Div is an output container for HTML children, such as a table
// produced by a callback.
type Div struct {
	ID    string
	Class string
}

// Graph shows a figure. If Figure is non-nil, the graph is static;
// otherwise a callback must produce its "figure" property.
type Graph struct {
	ID     string
	Figure *figure.Figure
}

// RangeSlider selects an inclusive integer range [lo, hi]. Its value
// is a two-element JSON array.
type RangeSlider struct {
	ID             string
	Min, Max, Step int
	Value          [2]int

	// Tooltip shows the selected range next to the slider.
	Tooltip bool
}

// RadioItems selects one of Options. Its value is a JSON string.
type RadioItems struct {
	ID      string
	Options []string
	Value   string
	Inline  bool
}

// DataTable shows a table whose rows can be selected. Only single-row
// selection is supported. Its value is a JSON array of selected row
// indexes, empty when nothing is selected.
type DataTable struct {
	ID            string
	Table         *figure.Table
	RowSelectable bool
	Selected      []int
}

func (*Container) tmpl() string   { return "container" }
func (*Row) tmpl() string         { return "row" }
func (*Col) tmpl() string         { return "col" }
func (*H1) tmpl() string          { return "h1" }
func (*H4) tmpl() string          { return "h4" }
func (*StaticTable) tmpl() string { return "statictable" }
func (*Div) tmpl() string         { return "div" }
func (*Graph) tmpl() string       { return "graph" }
func (*RangeSlider) tmpl() string { return "rangeslider" }
func (*RadioItems) tmpl() string  { return "radioitems" }
func (*DataTable) tmpl() string   { return "datatable" }

func (c *Container) children() []Component { return c.Children }
func (c *Row) children() []Component       { return c.Children }
func (c *Col) children() []Component       { return c.Children }

func (c *RangeSlider) ControlID() string { return c.ID }
func (c *RadioItems) ControlID() string  { return c.ID }
func (c *DataTable) ControlID() string   { return c.ID }

func (c *RangeSlider) InitialValue() interface{} { return []int{c.Value[0], c.Value[1]} }
func (c *RadioItems) InitialValue() interface{}  { return c.Value }

func (c *DataTable) InitialValue() interface{} {
	if c.Selected == nil {
		return []int{}
	}
	return c.Selected
}

// IsSelected reports whether row i is initially selected.
func (c *DataTable) IsSelected(i int) bool {
	for _, s := range c.Selected {
		if s == i {
			return true
		}
	}
	return false
}

// walk calls fn on c and every component below it, in document order.
func walk(c Component, fn func(Component)) {
	if c == nil {
		return
	}
	fn(c)
	if p, ok := c.(parent); ok {
		for _, child := range p.children() {
			walk(child, fn)
		}
	}
}
