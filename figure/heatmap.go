// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package figure

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// Cell is one observation for a heatmap.
type Cell struct {
	X, Y string
	Z    float64
}

// NewHeatmap returns a heatmap trace with columns xs and rows ys.
//
// Cells with the same X and Y are summed. Every (row, column) pair
// with no cell is zero, so the matrix is always complete. Cells whose
// X or Y is not an axis label, or whose Z is NaN, are dropped.
func NewHeatmap(xs, ys []string, cells []Cell) Trace {
	t := Trace{Kind: KindHeatmap, X: xs, Y: ys}
	if len(ys) == 0 {
		return t
	}
	if len(xs) == 0 {
		// mat64 has no zero-sized matrices.
		t.Z = make([][]float64, len(ys))
		for i := range t.Z {
			t.Z[i] = []float64{}
		}
		return t
	}

	col := index(xs)
	row := index(ys)
	m := mat64.NewDense(len(ys), len(xs), nil)
	for _, c := range cells {
		i, ok1 := row[c.Y]
		j, ok2 := col[c.X]
		if !ok1 || !ok2 || math.IsNaN(c.Z) {
			continue
		}
		m.Set(i, j, m.At(i, j)+c.Z)
	}
	t.Z = rows(m)
	return t
}

func index(labels []string) map[string]int {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, ok := idx[l]; !ok {
			idx[l] = i
		}
	}
	return idx
}

// rows copies m into a slice of rows.
func rows(m *mat64.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return out
}

// matrix returns the Z matrix of a heatmap trace, or nil if it has no
// cells.
func (t *Trace) matrix() *mat64.Dense {
	if len(t.Z) == 0 || len(t.Z[0]) == 0 {
		return nil
	}
	r, c := len(t.Z), len(t.Z[0])
	data := make([]float64, 0, r*c)
	for _, row := range t.Z {
		data = append(data, row...)
	}
	return mat64.NewDense(r, c, data)
}
