// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset loads the small tabular datasets the dashboards
// display.
//
// A dataset is read once at startup into a go-gg table and is never
// modified afterwards, so a *Dataset may be shared freely between
// concurrent requests.
//
// The built-in datasets are embedded in the binary. They are a
// representative sample of the Montreal car-sharing and 2013
// mayoral election datasets; LoadDir reads the full files from a
// directory instead.
package dataset

import (
	"bytes"
	"compress/gzip"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
)

//go:embed data/*.csv
var builtin embed.FS

// ErrUnknownDataset is returned when a dataset name has no schema.
var ErrUnknownDataset = errors.New("unknown dataset")

// Dataset is an immutable in-memory table.
type Dataset struct {
	// Name is the dataset identifier, such as "carshare".
	Name string

	// Schema describes the columns of Table.
	Schema Schema

	// Table holds the rows. Callers must not modify the slices
	// returned by its columns.
	Table *table.Table
}

// Load loads the built-in dataset called name.
func Load(name string) (*Dataset, error) {
	if _, ok := schemas[name]; !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDataset, name)
	}
	data, err := builtin.ReadFile("data/" + name + ".csv")
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", name, err)
	}
	return Read(name, bytes.NewReader(data))
}

// LoadDir loads the dataset called name from dir. It looks for
// name.csv and then name.csv.gz.
func LoadDir(dir, name string) (*Dataset, error) {
	if _, ok := schemas[name]; !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDataset, name)
	}
	path := filepath.Join(dir, name+".csv")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		path += ".gz"
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	d, err := Read(name, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Read parses CSV data for the dataset called name. The first record
// must be a header naming at least every column in the dataset's
// schema. Columns not in the schema are ignored.
func Read(name string, r io.Reader) (*Dataset, error) {
	schema, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDataset, name)
	}

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s: missing header", name)
	}
	header, rows := records[0], records[1:]
	index := make(map[string]int, len(header))
	for i, h := range header {
		// Files written by pandas sometimes carry a BOM.
		index[strings.TrimPrefix(h, "\ufeff")] = i
	}

	b := table.NewBuilder(nil)
	for _, col := range schema {
		ci, ok := index[col.Name]
		if !ok {
			return nil, fmt.Errorf("dataset %s: missing column %q", name, col.Name)
		}
		data, err := parseColumn(col, ci, rows)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", name, err)
		}
		b.Add(col.Name, data)
	}
	return &Dataset{Name: name, Schema: schema, Table: b.Done()}, nil
}

func parseColumn(col Column, ci int, rows [][]string) (table.Slice, error) {
	cell := func(row int) string {
		return strings.TrimSpace(rows[row][ci])
	}
	switch col.Kind {
	case Int:
		out := make([]int, len(rows))
		for i := range rows {
			v, err := strconv.Atoi(cell(i))
			if err != nil {
				return nil, fmt.Errorf("row %d: column %q: %w", i+1, col.Name, err)
			}
			out[i] = v
		}
		return out, nil

	case Float:
		out := make([]float64, len(rows))
		for i := range rows {
			s := cell(i)
			if s == "" {
				out[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: column %q: %w", i+1, col.Name, err)
			}
			out[i] = v
		}
		return out, nil

	case String:
		out := make([]string, len(rows))
		for i := range rows {
			out[i] = cell(i)
		}
		return out, nil
	}
	panic(fmt.Sprintf("column %q has unknown kind %d", col.Name, col.Kind))
}

// Len returns the number of rows in d.
func (d *Dataset) Len() int {
	return d.Table.Len()
}

// Ints returns column col, which must be an Int column.
func (d *Dataset) Ints(col string) []int {
	return d.Table.MustColumn(col).([]int)
}

// Strings returns column col, which must be a String column.
func (d *Dataset) Strings(col string) []string {
	return d.Table.MustColumn(col).([]string)
}

// Floats returns column col converted to float64. The result may
// share storage with the table and must not be modified.
func (d *Dataset) Floats(col string) []float64 {
	return Floats(d.Table, col)
}

// Head returns the first n rows of d.
func (d *Dataset) Head(n int) *table.Table {
	return table.Flatten(table.Head(d.Table, n))
}

// Bounds returns the minimum and maximum of numeric column col,
// ignoring missing values. Both are NaN if the column has no values.
func (d *Dataset) Bounds(col string) (lo, hi float64) {
	xs := d.Floats(col)
	present := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			present = append(present, x)
		}
	}
	return stats.Bounds(present)
}

// IntBounds is like Bounds for an Int column. It returns an error if
// the dataset is empty.
func (d *Dataset) IntBounds(col string) (lo, hi int, err error) {
	if d.Len() == 0 {
		return 0, 0, fmt.Errorf("dataset %s: no rows to bound %q", d.Name, col)
	}
	flo, fhi := d.Bounds(col)
	return int(flo), int(fhi), nil
}

// Floats returns column col of t converted to []float64. The result
// must not be modified. Floats returns an empty slice if t has no
// such column, which is how go-gg represents a table with no rows
// left after filtering.
func Floats(t *table.Table, col string) []float64 {
	data := t.Column(col)
	if data == nil {
		return []float64{}
	}
	var xs []float64
	slice.Convert(&xs, data)
	if xs == nil {
		xs = []float64{}
	}
	return xs
}
