package generator

import (
	"context"
	"math/rand/v2"

	"github.com/brunobiangulo/geobench/question"
	"github.com/brunobiangulo/geobench/relation"
)

// UsedSet records subject places already chosen in one driver invocation.
type UsedSet map[string]struct{}

// Has reports whether place was used.
func (u UsedSet) Has(place string) bool {
	_, ok := u[place]
	return ok
}

// Add marks place as used.
func (u UsedSet) Add(place string) { u[place] = struct{}{} }

func shuffled(rng *rand.Rand, in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func pick(rng *rand.Rand, in []string) string {
	return in[rng.IntN(len(in))]
}

// sampleCombination draws up to quota statements for c. Witnesses are
// visited in random order, used places are skipped and every accepted
// place is added to used. Objects are drawn uniformly per dimension.
// A quota of zero or less means no cap.
func sampleCombination(rng *rand.Rand, ix relation.Indexes, c relation.Combination, used UsedSet, quota int) []question.Statement {
	var out []question.Statement
	for _, place := range shuffled(rng, c.Witnesses) {
		if used.Has(place) {
			continue
		}
		s := question.Statement{Subject: place, Parts: make([]question.Part, len(c.Dimensions))}
		for i, d := range c.Dimensions {
			objs := ix[d].Objects(place, c.Tokens[i])
			s.Parts[i] = question.Part{Dimension: d, Token: c.Tokens[i], Object: pick(rng, objs)}
		}
		out = append(out, s)
		used.Add(place)
		if quota > 0 && len(out) >= quota {
			break
		}
	}
	return out
}

// sampleCombinations discovers the viable combinations over dims and
// samples each in canonical order, sharing one used set.
func sampleCombinations(ctx context.Context, rng *rand.Rand, ix relation.Indexes, dims []relation.Dimension, used UsedSet, quota int) ([]question.Statement, error) {
	combos, err := relation.Discover(ix, dims)
	if err != nil {
		return nil, err
	}
	var out []question.Statement
	for _, c := range combos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, sampleCombination(rng, ix, c, used, quota)...)
	}
	return out, nil
}

// pairing describes how a two-concept driver walks a place: every outer
// token the place has yields statements whose inner token has not been
// used for that place yet.
type pairing struct {
	outer, inner relation.Dimension

	// prefer lists inner tokens in priority order for an outer token.
	// When nil the inner fact is drawn uniformly among facts with an
	// unused token.
	prefer func(relation.Token) []relation.Token

	// perOuter caps inner draws per outer token in prefer mode. Each draw
	// takes the first unused preferred token; a place lacking it gets no
	// statement for that draw.
	perOuter int

	// columns is the part order of the produced statements.
	columns []relation.Dimension
}

type innerFact struct {
	token  relation.Token
	object string
}

// samplePairs walks the shuffled common subjects of the pairing.
func samplePairs(ctx context.Context, rng *rand.Rand, ix relation.Indexes, p pairing) ([]question.Statement, error) {
	dims := []relation.Dimension{p.outer, p.inner}
	common := relation.CommonSubjects(ix, dims)
	outer, inner := ix[p.outer], ix[p.inner]

	var out []question.Statement
	for _, place := range shuffled(rng, common) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		usedInner := make(map[relation.Token]bool)
		for _, otok := range outer.Tokens(place) {
			oobj := pick(rng, outer.Objects(place, otok))
			outerPart := question.Part{Dimension: p.outer, Token: otok, Object: oobj}

			var draws []innerFact
			if p.prefer == nil {
				var facts []innerFact
				for _, itok := range inner.Tokens(place) {
					if usedInner[itok] {
						continue
					}
					for _, obj := range inner.Objects(place, itok) {
						facts = append(facts, innerFact{itok, obj})
					}
				}
				if len(facts) == 0 {
					continue
				}
				f := facts[rng.IntN(len(facts))]
				usedInner[f.token] = true
				draws = append(draws, f)
			} else {
				for n := 0; n < p.perOuter; n++ {
					itok, ok := firstUnused(p.prefer(otok), usedInner)
					if !ok {
						break
					}
					// A missing token is not marked used, so the
					// remaining draws for this outer token stall on it.
					if !inner.Has(place, itok) {
						continue
					}
					usedInner[itok] = true
					draws = append(draws, innerFact{itok, pick(rng, inner.Objects(place, itok))})
				}
			}

			for _, f := range draws {
				innerPart := question.Part{Dimension: p.inner, Token: f.token, Object: f.object}
				out = append(out, p.statement(place, outerPart, innerPart))
			}
		}
	}
	return out, nil
}

// firstUnused returns the first token of order not yet used for the place.
func firstUnused(order []relation.Token, used map[relation.Token]bool) (relation.Token, bool) {
	for _, t := range order {
		if !used[t] {
			return t, true
		}
	}
	return "", false
}

func (p pairing) statement(subject string, parts ...question.Part) question.Statement {
	s := question.Statement{Subject: subject}
	for _, d := range p.columns {
		for _, part := range parts {
			if part.Dimension == d {
				s.Parts = append(s.Parts, part)
			}
		}
	}
	return s
}

// distancePreference favours short distances for bordering places and
// long ones for contained places, then the remaining tokens.
func distancePreference(top relation.Token) []relation.Token {
	first := []relation.Token{relation.Distant, relation.Far}
	if top == relation.Borders {
		first = []relation.Token{relation.Near, relation.Close}
	}
	out := append([]relation.Token{}, first...)
	for _, t := range relation.Distance.Tokens() {
		if t != first[0] && t != first[1] {
			out = append(out, t)
		}
	}
	return out
}
