package question

import (
	"errors"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/brunobiangulo/geobench/relation"
)

// ErrNotEnoughPlaces is returned when no place other than the correct
// answer is available as a distractor.
var ErrNotEnoughPlaces = errors.New("geobench: not enough places for distractors")

// Source tags the provenance of a multiple-choice option.
type Source string

const (
	SourceCorrect Source = "correct"
	SourceHard    Source = "hard"
	SourcePartial Source = "partial"
	SourceRandom  Source = "random"
)

// Letters label options in presentation order.
var Letters = []string{"A", "B", "C"}

// MCQRow is a rendered three-option multiple-choice item.
type MCQRow struct {
	Statement
	Triplet     string   `json:"triplet"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Sources     []Source `json:"option_sources"`
	AnswerIndex int      `json:"answer_index"`
}

// OptionsText joins options as "A. x\nB. y\nC. z".
func (r MCQRow) OptionsText() string {
	lines := make([]string, len(r.Options))
	for i, o := range r.Options {
		lines[i] = Letters[i] + ". " + o
	}
	return strings.Join(lines, "\n")
}

// AnswerText returns "<letter>. <correct place>".
func (r MCQRow) AnswerText() string {
	return Letters[r.AnswerIndex] + ". " + r.Options[r.AnswerIndex]
}

// SourcesText joins the option sources with commas.
func (r MCQRow) SourcesText() string {
	parts := make([]string, len(r.Sources))
	for i, s := range r.Sources {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// Classifier picks distractors for a statement. Places relating to the
// same object via the same token in at least MinShared of the statement's
// dimensions are near-miss candidates, tagged Tier.
type Classifier struct {
	Indexes   relation.Indexes
	Places    []string // sorted universe of candidate places
	MinShared int
	Tier      Source

	// DistinctOptions redraws the random distractor so that it never
	// equals the near-miss one. Off by default to keep parity with
	// previously published datasets.
	DistinctOptions bool
}

// Candidates returns the sorted near-miss places for s, excluding the
// subject. Each dimension counts once per place.
func (c *Classifier) Candidates(s Statement) []string {
	counts := make(map[string]int)
	for _, p := range s.Parts {
		ix, ok := c.Indexes[p.Dimension]
		if !ok {
			continue
		}
		seen := make(map[string]struct{})
		for _, other := range ix.SubjectsRelatedTo(p.Object, p.Token) {
			if other == s.Subject {
				continue
			}
			if _, dup := seen[other]; dup {
				continue
			}
			seen[other] = struct{}{}
			counts[other]++
		}
	}
	min := c.MinShared
	if min < 1 {
		min = 1
	}
	var out []string
	for p, n := range counts {
		if n >= min {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// randomOther draws uniformly from Places minus exclude.
func (c *Classifier) randomOther(rng *rand.Rand, exclude ...string) (string, error) {
	pool := make([]string, 0, len(c.Places))
	for _, p := range c.Places {
		skip := false
		for _, e := range exclude {
			if p == e {
				skip = true
				break
			}
		}
		if !skip {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return "", ErrNotEnoughPlaces
	}
	return pool[rng.IntN(len(pool))], nil
}

// Distractors returns the near-miss (or fallback) distractor and the
// random distractor for s.
func (c *Classifier) Distractors(rng *rand.Rand, s Statement) (near, random string, err error) {
	if cands := c.Candidates(s); len(cands) > 0 {
		near = cands[rng.IntN(len(cands))]
	} else if near, err = c.randomOther(rng, s.Subject); err != nil {
		return "", "", err
	}

	if c.DistinctOptions {
		random, err = c.randomOther(rng, s.Subject, near)
		// With only two places the near-miss has to be repeated.
		if errors.Is(err, ErrNotEnoughPlaces) {
			random, err = c.randomOther(rng, s.Subject)
		}
	} else {
		random, err = c.randomOther(rng, s.Subject)
	}
	if err != nil {
		return "", "", err
	}
	return near, random, nil
}

// Assemble renders the multiple-choice item for s with shuffled options.
func (c *Classifier) Assemble(rng *rand.Rand, tpl Template, s Statement) (MCQRow, error) {
	near, random, err := c.Distractors(rng, s)
	if err != nil {
		return MCQRow{}, err
	}
	opts := []string{s.Subject, near, random}
	srcs := []Source{SourceCorrect, c.Tier, SourceRandom}
	rng.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
		srcs[i], srcs[j] = srcs[j], srcs[i]
	})

	answer := 0
	for i, src := range srcs {
		if src == SourceCorrect {
			answer = i
			break
		}
	}
	return MCQRow{
		Statement:   s,
		Triplet:     tpl.TripletText(s),
		Question:    tpl.Prompt(s),
		Options:     opts,
		Sources:     srcs,
		AnswerIndex: answer,
	}, nil
}
