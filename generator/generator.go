// Package generator selects relation samples and drives the five benchmark
// generators (atomic, dir_top, dis_dir, top_dis, 3_concept).
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/brunobiangulo/geobench/question"
	"github.com/brunobiangulo/geobench/relation"
)

// ErrUnknownDriver is returned when a driver name is not registered.
var ErrUnknownDriver = errors.New("geobench: unknown driver")

// Driver names, in merge priority order.
const (
	Atomic       = "atomic"
	DisDir       = "dis_dir"
	DirTop       = "dir_top"
	TopDis       = "top_dis"
	ThreeConcept = "3_concept"
)

// Names lists every driver in merge priority order.
var Names = []string{Atomic, DisDir, DirTop, TopDis, ThreeConcept}

// Output subdirectories under the results directory.
const (
	YesNoDir = "binary"
	MCQDir   = "mcqs"
)

// YesNoFile returns the per-driver yes/no file name.
func YesNoFile(driver string) string { return driver + "_yesno.csv" }

// MCQFile returns the per-driver multiple-choice file name.
func MCQFile(driver string) string { return driver + "_mcq.csv" }

// Driver produces the yes/no and multiple-choice rows of one generator.
type Driver interface {
	// Name returns the driver name used in file names and flags.
	Name() string

	// Dimensions returns the active dimensions in column order.
	Dimensions() []relation.Dimension

	// Layout returns the per-driver CSV schema.
	Layout() Layout

	// Generate samples statements from tables and renders them. All
	// randomness is drawn from rng, so equal seeds give equal results.
	Generate(ctx context.Context, tables Tables, rng *rand.Rand) (*Result, error)
}

// Result holds the rows produced by one driver invocation.
type Result struct {
	Driver string
	YesNo  []question.YesNoRow
	MCQ    []question.MCQRow
}

// Tables groups the loaded relation tables by dimension.
type Tables map[relation.Dimension]*relation.Table

// table returns the table for d, or an empty one when it was not loaded.
func (t Tables) table(d relation.Dimension) *relation.Table {
	if tbl, ok := t[d]; ok && tbl != nil {
		return tbl
	}
	return relation.NewTable(d, nil)
}

// indexes builds indexes for dims, substituting empty tables where needed.
func (t Tables) indexes(dims []relation.Dimension) relation.Indexes {
	tables := make([]*relation.Table, len(dims))
	for i, d := range dims {
		tables[i] = t.table(d)
	}
	return relation.BuildIndexes(tables...)
}

// places returns the sorted place universe of dims.
func (t Tables) places(dims []relation.Dimension) []string {
	tables := make([]*relation.Table, len(dims))
	for i, d := range dims {
		tables[i] = t.table(d)
	}
	return relation.Places(tables...)
}

// Settings tunes driver behavior.
type Settings struct {
	AtomicQuota     int  // statements per single-concept token
	TripleQuota     int  // statements per three-concept combination
	DistinctOptions bool // never repeat a place among MCQ options
}

// DefaultSettings returns the quotas of the published benchmark.
func DefaultSettings() Settings {
	return Settings{
		AtomicQuota: 500,
		TripleQuota: 22,
	}
}

// Registry maps driver names to drivers.
type Registry struct {
	drivers map[string]Driver
}

// NewRegistry registers the five built-in drivers.
func NewRegistry(s Settings) *Registry {
	r := &Registry{drivers: make(map[string]Driver)}
	for _, d := range []Driver{
		NewAtomic(s),
		NewDisDir(s),
		NewDirTop(s),
		NewTopDis(s),
		NewThreeConcept(s),
	} {
		r.Register(d)
	}
	return r
}

// Register adds or replaces a driver under its own name.
func (r *Registry) Register(d Driver) {
	r.drivers[d.Name()] = d
}

// Get returns the driver registered under name.
func (r *Registry) Get(name string) (Driver, error) {
	d, ok := r.drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
	}
	return d, nil
}

// Select resolves names in the given order. An empty list selects every
// driver in merge priority order.
func (r *Registry) Select(names []string) ([]Driver, error) {
	if len(names) == 0 {
		names = Names
	}
	out := make([]Driver, 0, len(names))
	for _, n := range names {
		d, err := r.Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
