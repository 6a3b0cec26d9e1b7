package relation

import (
	"fmt"
	"strings"
)

// Combination is one token per active dimension together with the places
// that satisfy all of them as subject.
type Combination struct {
	Dimensions []Dimension
	Tokens     []Token
	Witnesses  []string
}

// Token returns the combination's token for d.
func (c Combination) Token(d Dimension) (Token, bool) {
	for i, cd := range c.Dimensions {
		if cd == d {
			return c.Tokens[i], true
		}
	}
	return "", false
}

// Key renders the tokens joined by "/", e.g. "north/within/near".
func (c Combination) Key() string {
	parts := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		parts[i] = string(t)
	}
	return strings.Join(parts, "/")
}

// TokenProduct enumerates the cross product of the dimensions' vocabularies
// in canonical order: the last dimension varies fastest.
func TokenProduct(dims []Dimension) [][]Token {
	out := [][]Token{{}}
	for _, d := range dims {
		var next [][]Token
		for _, prefix := range out {
			for _, t := range d.Tokens() {
				combo := make([]Token, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, t))
			}
		}
		out = next
	}
	return out
}

// CommonSubjects intersects the subject sets of the given dimensions.
// The result is sorted.
func CommonSubjects(ix Indexes, dims []Dimension) []string {
	if len(dims) == 0 {
		return nil
	}
	first, ok := ix[dims[0]]
	if !ok {
		return nil
	}
	var out []string
	for _, p := range first.Subjects() {
		shared := true
		for _, d := range dims[1:] {
			other, ok := ix[d]
			if !ok || !other.HasSubject(p) {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, p)
		}
	}
	return out
}

// Discover returns every viable combination over dims, in TokenProduct
// order. A combination is viable when at least one place common to all
// dims has a fact for each of its tokens. Witness lists are sorted.
// An empty intersection produces no combinations; a missing index for any
// of dims is an error.
func Discover(ix Indexes, dims []Dimension) ([]Combination, error) {
	for _, d := range dims {
		if _, ok := ix[d]; !ok {
			return nil, fmt.Errorf("discover: no index for dimension %s", d)
		}
	}
	common := CommonSubjects(ix, dims)
	if len(common) == 0 {
		return nil, nil
	}

	var out []Combination
	for _, toks := range TokenProduct(dims) {
		var witnesses []string
		for _, p := range common {
			if satisfies(ix, dims, toks, p) {
				witnesses = append(witnesses, p)
			}
		}
		if len(witnesses) == 0 {
			continue
		}
		out = append(out, Combination{
			Dimensions: dims,
			Tokens:     toks,
			Witnesses:  witnesses,
		})
	}
	return out, nil
}

func satisfies(ix Indexes, dims []Dimension, toks []Token, place string) bool {
	for i, d := range dims {
		if !ix[d].Has(place, toks[i]) {
			return false
		}
	}
	return true
}
