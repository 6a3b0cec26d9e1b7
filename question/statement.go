// Package question renders relation samples into yes/no and
// multiple-choice benchmark items.
package question

import (
	"github.com/brunobiangulo/geobench/relation"
)

// Part is one relation of a statement: the subject relates to Object via
// Token in the given dimension.
type Part struct {
	Dimension relation.Dimension `json:"dimension"`
	Token     relation.Token     `json:"token"`
	Object    string             `json:"object"`
}

// Statement is a subject place with one part per active dimension. Parts
// keep the driver's column order.
type Statement struct {
	Subject string `json:"place1"`
	Parts   []Part `json:"parts"`
}

// Part returns the statement's part for d.
func (s Statement) Part(d relation.Dimension) (Part, bool) {
	for _, p := range s.Parts {
		if p.Dimension == d {
			return p, true
		}
	}
	return Part{}, false
}

// Dimensions returns the active dimensions in column order.
func (s Statement) Dimensions() []relation.Dimension {
	out := make([]relation.Dimension, len(s.Parts))
	for i, p := range s.Parts {
		out[i] = p.Dimension
	}
	return out
}

func (s Statement) clone() Statement {
	parts := make([]Part, len(s.Parts))
	copy(parts, s.Parts)
	return Statement{Subject: s.Subject, Parts: parts}
}

// WithOpposite returns a copy with d's token replaced by its opposite.
func (s Statement) WithOpposite(d relation.Dimension) Statement {
	out := s.clone()
	for i := range out.Parts {
		if out.Parts[i].Dimension == d {
			out.Parts[i].Token = out.Parts[i].Token.Opposite()
		}
	}
	return out
}

// WithSwap returns a copy where the subject and d's object trade places.
func (s Statement) WithSwap(d relation.Dimension) Statement {
	out := s.clone()
	for i := range out.Parts {
		if out.Parts[i].Dimension == d {
			out.Subject, out.Parts[i].Object = out.Parts[i].Object, out.Subject
		}
	}
	return out
}
