package question

import (
	"fmt"
	"math/rand/v2"

	"github.com/brunobiangulo/geobench/relation"
)

// Transition labels. NoChange tags every Yes item; the others name the
// perturbation that produced a No item.
const (
	NoChange                 = "no_change"
	FlipPlace                = "flip_place"
	FlipPlaceY               = "flip_place_y"
	FlipPlaceZ               = "flip_place_z"
	ReplaceDirToken          = "replace_dir_token"
	ReplaceTopToken          = "replace_top_token"
	ReplaceDisToken          = "replace_dis_token"
	ReplaceDistance          = "replace_distance"
	ReplaceDirection         = "replace_direction"
	FlipPlaceReplaceDistance = "flip_place_replace_distance"
)

// Answers.
const (
	Yes = "Yes"
	No  = "No"
)

// Perturbation turns a true statement into a false one. Upper is the
// cumulative probability bound: it is chosen when the draw is below Upper
// and at or above the previous strategy's bound.
type Perturbation struct {
	Label string
	Upper float64
	Apply func(Statement) Statement
}

// Negator holds a fixed, ordered set of perturbations.
type Negator []Perturbation

// Pick returns the perturbation selected by draw r in [0, 1).
func (n Negator) Pick(r float64) Perturbation {
	for _, p := range n {
		if r < p.Upper {
			return p
		}
	}
	return n[len(n)-1]
}

// Labels returns the transition labels in order.
func (n Negator) Labels() []string {
	out := make([]string, len(n))
	for i, p := range n {
		out[i] = p.Label
	}
	return out
}

// Negate draws one perturbation from rng and applies it.
func (n Negator) Negate(rng *rand.Rand, s Statement) (Statement, string) {
	p := n.Pick(rng.Float64())
	return p.Apply(s), p.Label
}

func opposite(d relation.Dimension) func(Statement) Statement {
	return func(s Statement) Statement { return s.WithOpposite(d) }
}

func swap(d relation.Dimension) func(Statement) Statement {
	return func(s Statement) Statement { return s.WithSwap(d) }
}

// SingleNegator returns the perturbations for a one-dimension statement.
func SingleNegator(d relation.Dimension) Negator {
	switch d {
	case relation.Direction:
		return Negator{
			{Label: FlipPlace, Upper: 0.5, Apply: swap(d)},
			{Label: ReplaceDirToken, Upper: 1, Apply: opposite(d)},
		}
	case relation.Distance:
		return Negator{
			{Label: FlipPlace, Upper: 0.5, Apply: swap(d)},
			{Label: ReplaceDisToken, Upper: 1, Apply: opposite(d)},
		}
	default:
		return Negator{
			{Label: ReplaceTopToken, Upper: 1, Apply: opposite(d)},
		}
	}
}

// DirTopNegator perturbs direction+topology statements.
func DirTopNegator() Negator {
	return Negator{
		{Label: FlipPlaceY, Upper: 0.25, Apply: swap(relation.Direction)},
		{Label: ReplaceDirToken, Upper: 0.5, Apply: opposite(relation.Direction)},
		{Label: ReplaceTopToken, Upper: 0.75, Apply: opposite(relation.Topology)},
		{Label: FlipPlaceZ, Upper: 1, Apply: swap(relation.Topology)},
	}
}

// DisDirNegator perturbs distance+direction statements.
func DisDirNegator() Negator {
	return Negator{
		{Label: FlipPlaceReplaceDistance, Upper: 0.33, Apply: func(s Statement) Statement {
			return s.WithSwap(relation.Distance).WithOpposite(relation.Distance)
		}},
		{Label: ReplaceDistance, Upper: 0.66, Apply: opposite(relation.Distance)},
		{Label: ReplaceDirection, Upper: 1, Apply: opposite(relation.Direction)},
	}
}

// TopDisNegator perturbs topology+distance statements.
func TopDisNegator() Negator {
	return Negator{
		{Label: ReplaceTopToken, Upper: 0.33, Apply: opposite(relation.Topology)},
		{Label: ReplaceDisToken, Upper: 0.66, Apply: opposite(relation.Distance)},
		{Label: FlipPlace, Upper: 1, Apply: swap(relation.Topology)},
	}
}

// TripleNegator perturbs direction+topology+distance statements.
func TripleNegator() Negator {
	return Negator{
		{Label: ReplaceTopToken, Upper: 0.25, Apply: opposite(relation.Topology)},
		{Label: ReplaceDisToken, Upper: 0.5, Apply: opposite(relation.Distance)},
		{Label: ReplaceDirToken, Upper: 0.75, Apply: opposite(relation.Direction)},
		{Label: FlipPlace, Upper: 1, Apply: swap(relation.Topology)},
	}
}

// YesNoRow is a rendered yes/no item. Statement holds the sampled
// (unperturbed) facts for both the Yes and the No item.
type YesNoRow struct {
	Statement
	Triplet    string `json:"triplet"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Transition string `json:"transition"`
}

// YesNoPair renders the Yes item for s and one perturbed No item.
func YesNoPair(rng *rand.Rand, tpl Template, neg Negator, s Statement) ([2]YesNoRow, error) {
	if len(neg) == 0 {
		return [2]YesNoRow{}, fmt.Errorf("negator has no perturbations")
	}
	triplet := tpl.TripletText(s)
	yes := YesNoRow{
		Statement:  s,
		Triplet:    triplet,
		Question:   tpl.Question(s),
		Answer:     Yes,
		Transition: NoChange,
	}
	perturbed, label := neg.Negate(rng, s)
	no := YesNoRow{
		Statement:  s,
		Triplet:    triplet,
		Question:   tpl.Question(perturbed),
		Answer:     No,
		Transition: label,
	}
	return [2]YesNoRow{yes, no}, nil
}
