package relation

import "sort"

// Fact is a directed relation: Subject relates to Object via Relation.
// Measure carries the numeric attribute of the source table (bearing in
// degrees for direction, metres for distance) and is zero for topology.
type Fact struct {
	Subject  string  `json:"place1"`
	Object   string  `json:"place2"`
	Relation Token   `json:"relation"`
	Measure  float64 `json:"measure,omitempty"`
}

// Table holds the facts of a single dimension in input order.
type Table struct {
	Dimension Dimension
	Facts     []Fact
}

// NewTable keeps only facts whose token belongs to dim, preserving order.
func NewTable(dim Dimension, facts []Fact) *Table {
	t := &Table{Dimension: dim}
	for _, f := range facts {
		if f.Relation.In(dim) {
			t.Facts = append(t.Facts, f)
		}
	}
	return t
}

// Len returns the number of facts.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Facts)
}

// Places returns the sorted union of subjects and objects across tables.
// Nil tables are skipped.
func Places(tables ...*Table) []string {
	seen := make(map[string]struct{})
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, f := range t.Facts {
			seen[f.Subject] = struct{}{}
			seen[f.Object] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
