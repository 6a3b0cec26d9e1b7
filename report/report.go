// Package report summarizes a merged benchmark.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brunobiangulo/geobench/merge"
)

// Report holds distribution statistics of a merged benchmark.
type Report struct {
	Name        string         `json:"name"`
	YesNoTotal  int            `json:"yesno_total"`
	MCQTotal    int            `json:"mcq_total"`
	Answers     map[string]int `json:"answers"`       // Yes / No counts
	Transitions map[string]int `json:"transitions"`   // yes/no transition labels
	Sources     map[string]int `json:"option_sources"` // MCQ option provenance tags
	Letters     map[string]int `json:"answer_letters"` // MCQ correct letter positions

	// Per concept key ("2:dir+top") row counts.
	YesNoByConcept map[string]int `json:"yesno_by_concept"`
	MCQByConcept   map[string]int `json:"mcq_by_concept"`

	// MCQ rows whose options name fewer than three distinct places.
	DegenerateMCQ int `json:"degenerate_mcq"`

	RunTime time.Duration `json:"run_time_ns"`
}

// Build computes the statistics of b.
func Build(name string, b *merge.Benchmark) *Report {
	r := &Report{
		Name:           name,
		YesNoTotal:     len(b.YesNo),
		MCQTotal:       len(b.MCQ),
		Answers:        make(map[string]int),
		Transitions:    make(map[string]int),
		Sources:        make(map[string]int),
		Letters:        make(map[string]int),
		YesNoByConcept: make(map[string]int),
		MCQByConcept:   make(map[string]int),
	}
	for _, row := range b.YesNo {
		r.Answers[row.Answer]++
		r.Transitions[row.Transition]++
		r.YesNoByConcept[merge.ConceptKey(row.Concept, row.Flags)]++
	}
	for _, row := range b.MCQ {
		r.MCQByConcept[merge.ConceptKey(row.Concept, row.Flags)]++
		for _, s := range strings.Split(row.OptionSources, ",") {
			r.Sources[strings.TrimSpace(s)]++
		}
		if letter, _, ok := strings.Cut(row.Answer, "."); ok {
			r.Letters[letter]++
		}
		if DistinctOptions(row.Options) < 3 {
			r.DegenerateMCQ++
		}
	}
	return r
}

// DistinctOptions counts the distinct place names in a newline-joined
// "A. x" option block.
func DistinctOptions(options string) int {
	seen := make(map[string]struct{})
	for _, line := range strings.Split(options, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, name, ok := strings.Cut(line, ". "); ok {
			line = name
		}
		seen[line] = struct{}{}
	}
	return len(seen)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func writeSection(b *strings.Builder, title string, m map[string]int, total int) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(b, "  %-28s %6d (%.1f%%)\n", k, m[k], pct(m[k], total))
	}
	fmt.Fprintln(b)
}

// FormatReport renders r as plain text.
func FormatReport(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Benchmark Report: %s ===\n", r.Name)
	fmt.Fprintf(&b, "Yes/No: %d | MCQ: %d\n", r.YesNoTotal, r.MCQTotal)
	if r.RunTime > 0 {
		fmt.Fprintf(&b, "Run time: %s\n", r.RunTime.Round(time.Millisecond))
	}
	fmt.Fprintln(&b)

	writeSection(&b, "Yes/No by concept", r.YesNoByConcept, r.YesNoTotal)
	writeSection(&b, "Answers", r.Answers, r.YesNoTotal)
	writeSection(&b, "Transitions", r.Transitions, r.YesNoTotal)
	writeSection(&b, "MCQ by concept", r.MCQByConcept, r.MCQTotal)
	writeSection(&b, "Answer letters", r.Letters, r.MCQTotal)
	writeSection(&b, "Option sources", r.Sources, 3*r.MCQTotal)

	fmt.Fprintf(&b, "Degenerate MCQ rows: %d (%.1f%%)\n", r.DegenerateMCQ, pct(r.DegenerateMCQ, r.MCQTotal))
	return b.String()
}
