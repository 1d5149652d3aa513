// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

// Kind is the element type of a column.
type Kind int

const (
	Int Kind = iota
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	}
	return "Kind(?)"
}

// Column describes one column of a dataset.
type Column struct {
	Name string
	Kind Kind
}

// Schema lists the columns of a dataset in table order.
type Schema []Column

// Has reports whether s has a column named name.
func (s Schema) Has(name string) bool {
	for _, c := range s {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ElectionCandidates are the per-candidate vote columns of the
// election dataset, in display order.
var ElectionCandidates = []string{"Coderre", "Bergeron", "Joly"}

var schemas = map[string]Schema{
	"carshare": {
		{"centroid_lat", Float},
		{"centroid_lon", Float},
		{"car_hours", Float},
		{"peak_hour", Int},
	},
	"election": {
		{"district", String},
		{"Coderre", Float},
		{"Bergeron", Float},
		{"Joly", Float},
		{"total", Float},
		{"winner", String},
		{"result", String},
		{"district_id", Int},
	},
}
