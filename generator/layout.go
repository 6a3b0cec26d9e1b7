package generator

import (
	"github.com/brunobiangulo/geobench/question"
	"github.com/brunobiangulo/geobench/relation"
)

// objectColumns name the object of each part in column order.
var objectColumns = []string{"place2_Y", "place2_Z", "place2_W"}

// Layout is the column schema of a driver's output files. Atomic files
// carry place1, relation, place2; multi-concept files carry place1 then a
// token column and an object column per dimension.
type Layout struct {
	Atomic     bool
	Dimensions []relation.Dimension
}

func (l Layout) relationColumns() []string {
	if l.Atomic {
		return []string{"place1", "relation", "place2"}
	}
	cols := []string{"place1"}
	for i, d := range l.Dimensions {
		cols = append(cols, d.String(), objectColumns[i])
	}
	return cols
}

func (l Layout) relationValues(s question.Statement) []string {
	vals := []string{s.Subject}
	if l.Atomic {
		p := s.Parts[0]
		return append(vals, string(p.Token), p.Object)
	}
	for _, d := range l.Dimensions {
		p, _ := s.Part(d)
		vals = append(vals, string(p.Token), p.Object)
	}
	return vals
}

// YesNoHeader returns the yes/no CSV header.
func (l Layout) YesNoHeader() []string {
	return append(l.relationColumns(), "triplet", "question", "answer", "transition")
}

// MCQHeader returns the multiple-choice CSV header.
func (l Layout) MCQHeader() []string {
	return append(l.relationColumns(), "triplet", "question", "options", "answer", "option_sources")
}

// YesNoRecord projects r onto YesNoHeader.
func (l Layout) YesNoRecord(r question.YesNoRow) []string {
	return append(l.relationValues(r.Statement), r.Triplet, r.Question, r.Answer, r.Transition)
}

// MCQRecord projects r onto MCQHeader.
func (l Layout) MCQRecord(r question.MCQRow) []string {
	return append(l.relationValues(r.Statement), r.Triplet, r.Question, r.OptionsText(), r.AnswerText(), r.SourcesText())
}

// YesNoRecords projects every yes/no row of res.
func (l Layout) YesNoRecords(res *Result) [][]string {
	out := make([][]string, len(res.YesNo))
	for i, r := range res.YesNo {
		out[i] = l.YesNoRecord(r)
	}
	return out
}

// MCQRecords projects every multiple-choice row of res.
func (l Layout) MCQRecords(res *Result) [][]string {
	out := make([][]string, len(res.MCQ))
	for i, r := range res.MCQ {
		out[i] = l.MCQRecord(r)
	}
	return out
}
