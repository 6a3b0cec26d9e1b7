package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/brunobiangulo/geobench/question"
	"github.com/brunobiangulo/geobench/relation"
)

// style renders sampled statements of one driver.
type style struct {
	template  func(question.Statement) question.Template
	negator   func(question.Statement) question.Negator
	minShared int
	tier      question.Source
}

func (st style) render(ctx context.Context, rng *rand.Rand, cls *question.Classifier, name string, stmts []question.Statement) (*Result, error) {
	res := &Result{
		Driver: name,
		YesNo:  make([]question.YesNoRow, 0, 2*len(stmts)),
		MCQ:    make([]question.MCQRow, 0, len(stmts)),
	}
	for i, s := range stmts {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tpl := st.template(s)
		pair, err := question.YesNoPair(rng, tpl, st.negator(s), s)
		if err != nil {
			return nil, fmt.Errorf("%s: rendering %s: %w", name, s.Subject, err)
		}
		res.YesNo = append(res.YesNo, pair[0], pair[1])

		row, err := cls.Assemble(rng, tpl, s)
		if err != nil {
			return nil, fmt.Errorf("%s: distractors for %s: %w", name, s.Subject, err)
		}
		res.MCQ = append(res.MCQ, row)
	}
	return res, nil
}

func (st style) classifier(tables Tables, dims []relation.Dimension, distinct bool) *question.Classifier {
	return &question.Classifier{
		Indexes:         tables.indexes(dims),
		Places:          tables.places(dims),
		MinShared:       st.minShared,
		Tier:            st.tier,
		DistinctOptions: distinct,
	}
}

// comboDriver samples discovered combinations with a shared used set:
// each subject place is the correct answer at most once per invocation.
type comboDriver struct {
	name     string
	dims     []relation.Dimension // column order
	groups   [][]relation.Dimension
	quota    int
	distinct bool
	style    style
}

func (d *comboDriver) Name() string { return d.name }
func (d *comboDriver) Dimensions() []relation.Dimension { return d.dims }
func (d *comboDriver) Layout() Layout {
	return Layout{Atomic: d.name == Atomic, Dimensions: d.dims}
}

func (d *comboDriver) Generate(ctx context.Context, tables Tables, rng *rand.Rand) (*Result, error) {
	ix := tables.indexes(d.dims)
	used := make(UsedSet)

	var stmts []question.Statement
	for _, g := range d.groups {
		s, err := sampleCombinations(ctx, rng, ix, g, used, d.quota)
		if err != nil {
			return nil, fmt.Errorf("%s: sampling: %w", d.name, err)
		}
		stmts = append(stmts, s...)
	}
	slog.Debug("generator: sampled", "driver", d.name, "statements", len(stmts), "places_used", len(used))

	return d.style.render(ctx, rng, d.style.classifier(tables, d.dims, d.distinct), d.name, stmts)
}

// pairDriver walks places for a two-concept pairing.
type pairDriver struct {
	name     string
	pairing  pairing
	distinct bool
	style    style
}

func (d *pairDriver) Name() string { return d.name }
func (d *pairDriver) Dimensions() []relation.Dimension { return d.pairing.columns }
func (d *pairDriver) Layout() Layout { return Layout{Dimensions: d.pairing.columns} }

func (d *pairDriver) Generate(ctx context.Context, tables Tables, rng *rand.Rand) (*Result, error) {
	ix := tables.indexes(d.pairing.columns)
	stmts, err := samplePairs(ctx, rng, ix, d.pairing)
	if err != nil {
		return nil, fmt.Errorf("%s: sampling: %w", d.name, err)
	}
	slog.Debug("generator: sampled", "driver", d.name, "statements", len(stmts))

	return d.style.render(ctx, rng, d.style.classifier(tables, d.pairing.columns, d.distinct), d.name, stmts)
}

func fixed(t question.Template) func(question.Statement) question.Template {
	return func(question.Statement) question.Template { return t }
}

func fixedNegator(n question.Negator) func(question.Statement) question.Negator {
	return func(question.Statement) question.Negator { return n }
}

// NewAtomic returns the single-concept driver. Direction, distance and
// topology facts are sampled in that order, up to s.AtomicQuota per token.
func NewAtomic(s Settings) Driver {
	return &comboDriver{
		name: Atomic,
		dims: []relation.Dimension{relation.Direction, relation.Distance, relation.Topology},
		groups: [][]relation.Dimension{
			{relation.Direction},
			{relation.Distance},
			{relation.Topology},
		},
		quota:    s.AtomicQuota,
		distinct: s.DistinctOptions,
		style: style{
			template: func(st question.Statement) question.Template {
				return question.SingleTemplate(st.Parts[0].Dimension)
			},
			negator: func(st question.Statement) question.Negator {
				return question.SingleNegator(st.Parts[0].Dimension)
			},
			minShared: 1,
			tier:      question.SourceHard,
		},
	}
}

// NewThreeConcept returns the direction+topology+distance driver.
func NewThreeConcept(s Settings) Driver {
	dims := []relation.Dimension{relation.Direction, relation.Topology, relation.Distance}
	return &comboDriver{
		name:     ThreeConcept,
		dims:     dims,
		groups:   [][]relation.Dimension{dims},
		quota:    s.TripleQuota,
		distinct: s.DistinctOptions,
		style: style{
			template:  fixed(question.TripleTemplate),
			negator:   fixedNegator(question.TripleNegator()),
			minShared: 2,
			tier:      question.SourcePartial,
		},
	}
}

// NewDirTop returns the direction+topology driver. Each topology token a
// place has is paired with a direction fact whose token is new for the place.
func NewDirTop(s Settings) Driver {
	return &pairDriver{
		name: DirTop,
		pairing: pairing{
			outer:   relation.Topology,
			inner:   relation.Direction,
			columns: []relation.Dimension{relation.Direction, relation.Topology},
		},
		distinct: s.DistinctOptions,
		style: style{
			template:  fixed(question.DirTopTemplate),
			negator:   fixedNegator(question.DirTopNegator()),
			minShared: 1,
			tier:      question.SourcePartial,
		},
	}
}

// NewDisDir returns the distance+direction driver. Each distance token a
// place has is paired with a direction fact whose token is new for the place.
func NewDisDir(s Settings) Driver {
	return &pairDriver{
		name: DisDir,
		pairing: pairing{
			outer:   relation.Distance,
			inner:   relation.Direction,
			columns: []relation.Dimension{relation.Distance, relation.Direction},
		},
		distinct: s.DistinctOptions,
		style: style{
			template:  fixed(question.DisDirTemplate),
			negator:   fixedNegator(question.DisDirNegator()),
			minShared: 1,
			tier:      question.SourcePartial,
		},
	}
}

// NewTopDis returns the topology+distance driver. Up to two distance
// tokens per topology token, short distances first for bordering places
// and long distances first for contained ones.
func NewTopDis(s Settings) Driver {
	return &pairDriver{
		name: TopDis,
		pairing: pairing{
			outer:    relation.Topology,
			inner:    relation.Distance,
			prefer:   distancePreference,
			perOuter: 2,
			columns:  []relation.Dimension{relation.Topology, relation.Distance},
		},
		distinct: s.DistinctOptions,
		style: style{
			template:  fixed(question.TopDisTemplate),
			negator:   fixedNegator(question.TopDisNegator()),
			minShared: 1,
			tier:      question.SourcePartial,
		},
	}
}
