package question

import (
	"strings"

	"github.com/brunobiangulo/geobench/relation"
)

// Variant selects the phrasing family of a topology-bearing statement:
// "within" reads "Is X within Y", "borders" reads "Does X border Y".
type Variant int

const (
	VariantPlain Variant = iota
	VariantWithin
	VariantBorders
)

// VariantOf returns the variant for a statement's topology token, or
// VariantPlain when the statement has no topology part.
func VariantOf(s Statement) Variant {
	p, ok := s.Part(relation.Topology)
	if !ok {
		return VariantPlain
	}
	switch p.Token {
	case relation.Within:
		return VariantWithin
	case relation.Borders:
		return VariantBorders
	}
	return VariantPlain
}

// Phrasing is a question/prompt pair. Placeholders: {x} is the subject,
// {dir} {top} {dis} are tokens and {dir.obj} {top.obj} {dis.obj} the
// matching objects.
type Phrasing struct {
	Question string // yes/no form, names the subject
	Prompt   string // multiple-choice form, asks for the subject
}

// Template renders statements of one driver. Phrasings keyed by variant
// take precedence over Plain.
type Template struct {
	Plain    Phrasing
	Variants map[Variant]Phrasing
	Triplet  string
}

func (t Template) phrasing(s Statement) Phrasing {
	if p, ok := t.Variants[VariantOf(s)]; ok {
		return p
	}
	return t.Plain
}

// Question renders the yes/no question for s.
func (t Template) Question(s Statement) string {
	return fill(t.phrasing(s).Question, s)
}

// Prompt renders the multiple-choice question for s.
func (t Template) Prompt(s Statement) string {
	return fill(t.phrasing(s).Prompt, s)
}

// TripletText renders the declarative statement for s.
func (t Template) TripletText(s Statement) string {
	return fill(t.Triplet, s)
}

func fill(pattern string, s Statement) string {
	pairs := []string{"{x}", s.Subject}
	for _, p := range s.Parts {
		name := p.Dimension.String()
		pairs = append(pairs,
			"{"+name+".obj}", p.Object,
			"{"+name+"}", string(p.Token),
		)
	}
	return strings.NewReplacer(pairs...).Replace(pattern)
}

// Templates for each driver.
var (
	DirectionTemplate = Template{
		Plain: Phrasing{
			Question: "Is {x} {dir} of {dir.obj}?",
			Prompt:   "Which city is located in {dir} of {dir.obj}?",
		},
		Triplet: "{x} is {dir} {dir.obj}",
	}

	DistanceTemplate = Template{
		Plain: Phrasing{
			Question: "Is {x} {dis} to {dis.obj}?",
			Prompt:   "Which city is {dis} to {dis.obj}?",
		},
		Triplet: "{x} is {dis} {dis.obj}",
	}

	TopologyTemplate = Template{
		Variants: map[Variant]Phrasing{
			VariantWithin: {
				Question: "Is {x} within {top.obj}?",
				Prompt:   "Which city is within {top.obj}?",
			},
			VariantBorders: {
				Question: "Does {x} border {top.obj}?",
				Prompt:   "Which city borders {top.obj}?",
			},
		},
		Triplet: "{x} is {top} {top.obj}",
	}

	DirTopTemplate = Template{
		Plain: Phrasing{
			Question: "Is {x} {dir} of {dir.obj} and {top} {top.obj}?",
			Prompt:   "Which city lies {dir} to {dir.obj} and {top} {top.obj}?",
		},
		Triplet: "{x} is {dir} {dir.obj}, {top} {top.obj}",
	}

	DisDirTemplate = Template{
		Plain: Phrasing{
			Question: "Is {x} {dis} to {dis.obj} and {dir} of {dir.obj}?",
			Prompt:   "Which city is {dis} to {dis.obj} and also {dir} from {dir.obj}?",
		},
		Triplet: "{x} is {dis} {dis.obj}, {dir} {dir.obj}",
	}

	TopDisTemplate = Template{
		Variants: map[Variant]Phrasing{
			VariantWithin: {
				Question: "Is {x} within {top.obj} and {dis} to {dis.obj}?",
				Prompt:   "Which city is within {top.obj} and also {dis} to {dis.obj}?",
			},
			VariantBorders: {
				Question: "Does {x} border {top.obj} and {dis} to {dis.obj}?",
				Prompt:   "Which city borders {top.obj} and is also {dis} to {dis.obj}?",
			},
		},
		Triplet: "{x} is {top} {top.obj}, {dis} {dis.obj}",
	}

	TripleTemplate = Template{
		Variants: map[Variant]Phrasing{
			VariantWithin: {
				Question: "Is {x} within {top.obj} and {dis} to {dis.obj} and {dir} of {dir.obj}?",
				Prompt:   "Which city is within {top.obj} and also {dis} to {dis.obj} and {dir} of {dir.obj}?",
			},
			VariantBorders: {
				Question: "Does {x} border {top.obj} and {dis} to {dis.obj} and {dir} of {dir.obj}?",
				Prompt:   "Which city borders {top.obj} and is also {dis} to {dis.obj} and {dir} of {dir.obj}?",
			},
		},
		Triplet: "{x} is {top} {top.obj}, {dis} to {dis.obj}, and {dir} of {dir.obj}",
	}
)

// SingleTemplate returns the template for a one-dimension statement.
func SingleTemplate(d relation.Dimension) Template {
	switch d {
	case relation.Topology:
		return TopologyTemplate
	case relation.Distance:
		return DistanceTemplate
	default:
		return DirectionTemplate
	}
}
