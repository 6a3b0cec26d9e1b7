package report

import (
	"strings"
	"testing"

	"github.com/brunobiangulo/geobench/merge"
)

func sampleBenchmark() *merge.Benchmark {
	return &merge.Benchmark{
		YesNo: []merge.YesNoRow{
			{Question: "q1", Answer: "Yes", Transition: "no_change", Concept: 1, Flags: merge.Flags{Dir: 1}},
			{Question: "q1", Answer: "No", Transition: "flip_place", Concept: 1, Flags: merge.Flags{Dir: 1}},
			{Question: "q2", Answer: "Yes", Transition: "no_change", Concept: 2, Flags: merge.Flags{Dir: 1, Top: 1}},
			{Question: "q2", Answer: "No", Transition: "flip_place_z", Concept: 2, Flags: merge.Flags{Dir: 1, Top: 1}},
		},
		MCQ: []merge.MCQRow{
			{Options: "A. London\nB. Leeds\nC. York", OptionSources: "correct,hard,random", Answer: "A. London", Concept: 1, Flags: merge.Flags{Dir: 1}},
			{Options: "A. Hull\nB. Leeds\nC. Hull", OptionSources: "partial,correct,random", Answer: "B. Leeds", Concept: 2, Flags: merge.Flags{Dir: 1, Top: 1}},
		},
	}
}

func TestBuild(t *testing.T) {
	r := Build("test", sampleBenchmark())

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"yesno total", r.YesNoTotal, 4},
		{"mcq total", r.MCQTotal, 2},
		{"yes answers", r.Answers["Yes"], 2},
		{"no_change", r.Transitions["no_change"], 2},
		{"flip_place_z", r.Transitions["flip_place_z"], 1},
		{"correct sources", r.Sources["correct"], 2},
		{"partial sources", r.Sources["partial"], 1},
		{"letter A", r.Letters["A"], 1},
		{"letter B", r.Letters["B"], 1},
		{"concept 2:dir+top", r.YesNoByConcept["2:dir+top"], 2},
		{"mcq concept 1:dir", r.MCQByConcept["1:dir"], 1},
		{"degenerate", r.DegenerateMCQ, 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestDistinctOptions(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"A. London\nB. Leeds\nC. York", 3},
		{"A. Hull\nB. Leeds\nC. Hull", 2},
		{"A. St. Albans\nB. St. Albans\nC. York", 2},
		{"", 0},
	}
	for _, tt := range tests {
		if got := DistinctOptions(tt.in); got != tt.want {
			t.Errorf("DistinctOptions(%q): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(Build("geo", sampleBenchmark()))
	for _, want := range []string{
		"=== Benchmark Report: geo ===",
		"Yes/No: 4 | MCQ: 2",
		"flip_place_z",
		"Degenerate MCQ rows: 1 (50.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
