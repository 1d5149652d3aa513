// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package figure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
)

// Table describes an HTML table, styled with Bootstrap.
type Table struct {
	Header []string
	Rows   [][]string

	Striped, Bordered, Hover bool

	// Color is a Bootstrap contextual class suffix, such as "info".
	Color string

	// Style is the inline CSS of the table element.
	Style map[string]string
}

// TableOptions controls TableFrom.
type TableOptions struct {
	// Index adds a leading, unlabeled column of row numbers.
	Index bool

	Striped, Bordered, Hover bool
	Color                    string
	Style                    map[string]string
}

// TableFrom returns a Table showing every row of t.
func TableFrom(t *table.Table, opts TableOptions) *Table {
	out := &Table{
		Striped:  opts.Striped,
		Bordered: opts.Bordered,
		Hover:    opts.Hover,
		Color:    opts.Color,
		Style:    opts.Style,
	}
	cols := t.Columns()
	if opts.Index {
		out.Header = append(out.Header, "")
	}
	out.Header = append(out.Header, cols...)

	seqs := make([]reflect.Value, len(cols))
	for i, col := range cols {
		seqs[i] = reflect.ValueOf(t.Column(col))
	}
	out.Rows = make([][]string, t.Len())
	for r := range out.Rows {
		row := make([]string, 0, len(out.Header))
		if opts.Index {
			row = append(row, strconv.Itoa(r))
		}
		for _, seq := range seqs {
			row = append(row, FormatValue(seq.Index(r).Interface()))
		}
		out.Rows[r] = row
	}
	return out
}

// FormatValue formats a table cell the way pandas displays it:
// integers plainly, floats with the shortest exact representation.
func FormatValue(v interface{}) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	return fmt.Sprint(v)
}

var tableTmpl = template.Must(template.New("table").Parse(
	`<table class="{{.Class}}"{{with .Style}} style="{{.}}"{{end}}>` +
		`<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>` +
		`<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>` +
		`</table>`))

// Class returns the Bootstrap classes of t.
func (t *Table) Class() string {
	classes := []string{"table"}
	if t.Striped {
		classes = append(classes, "table-striped")
	}
	if t.Bordered {
		classes = append(classes, "table-bordered")
	}
	if t.Hover {
		classes = append(classes, "table-hover")
	}
	if t.Color != "" {
		classes = append(classes, "table-"+t.Color)
	}
	return strings.Join(classes, " ")
}

// HTML renders t.
func (t *Table) HTML() template.HTML {
	if t == nil {
		return ""
	}
	var style template.CSS
	if len(t.Style) > 0 {
		keys := make([]string, 0, len(t.Style))
		for k := range t.Style {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s; ", k, t.Style[k])
		}
		style = template.CSS(strings.TrimSpace(b.String()))
	}

	var buf bytes.Buffer
	err := tableTmpl.Execute(&buf, struct {
		Class  string
		Style  template.CSS
		Header []string
		Rows   [][]string
	}{t.Class(), style, t.Header, t.Rows})
	if err != nil {
		// The template only fails if buf does.
		panic(err)
	}
	return template.HTML(buf.String())
}

// MarshalJSON encodes t as its rendered HTML.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t.HTML()))
}
