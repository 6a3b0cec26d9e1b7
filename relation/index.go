package relation

import "sort"

type key struct {
	place string
	token Token
}

// Index maps (place, token) to the places related through that token,
// in both directions. It is built once from a Table and never mutated;
// lookups on a missing key return an empty slice.
type Index struct {
	dim      Dimension
	objects  map[key][]string // (subject, token) -> objects
	subjects map[key][]string // (object, token) -> subjects
	tokens   map[string]map[Token]struct{}
	sorted   []string
}

// NewIndex scans t once. A nil table yields an empty index.
func NewIndex(dim Dimension, t *Table) *Index {
	ix := &Index{
		dim:      dim,
		objects:  make(map[key][]string),
		subjects: make(map[key][]string),
		tokens:   make(map[string]map[Token]struct{}),
	}
	if t == nil {
		return ix
	}
	for _, f := range t.Facts {
		if !f.Relation.In(dim) {
			continue
		}
		fk := key{f.Subject, f.Relation}
		ix.objects[fk] = append(ix.objects[fk], f.Object)
		rk := key{f.Object, f.Relation}
		ix.subjects[rk] = append(ix.subjects[rk], f.Subject)

		toks, ok := ix.tokens[f.Subject]
		if !ok {
			toks = make(map[Token]struct{})
			ix.tokens[f.Subject] = toks
		}
		toks[f.Relation] = struct{}{}
	}
	ix.sorted = make([]string, 0, len(ix.tokens))
	for p := range ix.tokens {
		ix.sorted = append(ix.sorted, p)
	}
	sort.Strings(ix.sorted)
	return ix
}

// Dimension returns the dimension the index was built for.
func (ix *Index) Dimension() Dimension { return ix.dim }

// Objects returns the places that place relates to via tok.
// The returned slice must not be modified.
func (ix *Index) Objects(place string, tok Token) []string {
	return ix.objects[key{place, tok}]
}

// Has reports whether place has at least one fact with tok.
func (ix *Index) Has(place string, tok Token) bool {
	return len(ix.objects[key{place, tok}]) > 0
}

// SubjectsRelatedTo returns every subject that relates to object via tok,
// in input order. Duplicated facts yield duplicated entries.
func (ix *Index) SubjectsRelatedTo(object string, tok Token) []string {
	return ix.subjects[key{object, tok}]
}

// Subjects returns the sorted set of places with at least one fact.
func (ix *Index) Subjects() []string {
	return ix.sorted
}

// HasSubject reports whether place appears as a subject.
func (ix *Index) HasSubject(place string) bool {
	_, ok := ix.tokens[place]
	return ok
}

// Tokens returns the tokens place has facts for, in canonical order.
func (ix *Index) Tokens(place string) []Token {
	toks := ix.tokens[place]
	if len(toks) == 0 {
		return nil
	}
	var out []Token
	for _, t := range ix.dim.Tokens() {
		if _, ok := toks[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Indexes groups one index per dimension.
type Indexes map[Dimension]*Index

// BuildIndexes indexes every non-nil table by its own dimension.
func BuildIndexes(tables ...*Table) Indexes {
	out := make(Indexes, len(tables))
	for _, t := range tables {
		if t == nil {
			continue
		}
		out[t.Dimension] = NewIndex(t.Dimension, t)
	}
	return out
}
