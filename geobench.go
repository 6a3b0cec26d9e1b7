package geobench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brunobiangulo/geobench/generator"
	"github.com/brunobiangulo/geobench/merge"
	"github.com/brunobiangulo/geobench/relation"
	"github.com/brunobiangulo/geobench/report"
	"github.com/brunobiangulo/geobench/store"
	"github.com/brunobiangulo/geobench/tableio"
)

// Engine is the main entry point for benchmark generation.
type Engine interface {
	// Generate loads the relation tables, runs the selected drivers and
	// writes their per-driver CSV files. A failing driver does not stop
	// the others; its error is joined into the returned error.
	Generate(ctx context.Context) (*Generation, error)

	// Merge combines the per-driver files in the results directory into
	// the two merged benchmark files.
	Merge(ctx context.Context) (*merge.Benchmark, error)

	// Run performs Generate and Merge, then records the run in the
	// database and exports the XLSX workbook when configured.
	Run(ctx context.Context) (*RunResult, error)

	// Inspect reports how many token combinations each driver can draw
	// from without generating anything.
	Inspect(ctx context.Context) ([]Inspection, error)

	// SimilarPlaces returns the places whose relation profiles are
	// closest to place. Requires a database.
	SimilarPlaces(ctx context.Context, place string, k int) ([]store.Neighbor, error)

	// Store returns the underlying store, or nil when none is configured.
	Store() *store.Store

	// Close releases the database, if any.
	Close() error
}

// DriverResult summarizes one driver invocation.
type DriverResult struct {
	Driver    string        `json:"driver"`
	YesNo     int           `json:"yesno_rows"`
	MCQ       int           `json:"mcq_rows"`
	YesNoPath string        `json:"yesno_path,omitempty"`
	MCQPath   string        `json:"mcq_path,omitempty"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Error     string        `json:"error,omitempty"`
}

// Generation is the outcome of Generate.
type Generation struct {
	Tables  generator.Tables    `json:"-"`
	Results []*generator.Result `json:"-"` // nil entries for failed drivers
	Drivers []DriverResult      `json:"drivers"`
}

// Counts returns "<driver>_yesno" and "<driver>_mcq" row counts.
func (g *Generation) Counts() map[string]int {
	out := make(map[string]int, 2*len(g.Drivers))
	for _, d := range g.Drivers {
		out[d.Driver+"_yesno"] = d.YesNo
		out[d.Driver+"_mcq"] = d.MCQ
	}
	return out
}

// RunResult is the outcome of Run.
type RunResult struct {
	RunID     string           `json:"run_id"`
	Seed      uint64           `json:"seed"`
	Status    string           `json:"status"`
	Drivers   []DriverResult   `json:"drivers"`
	Counts    map[string]int   `json:"counts"`
	Benchmark *merge.Benchmark `json:"-"`
	Report    *report.Report   `json:"report"`
	Files     []string         `json:"files"`
	Elapsed   time.Duration    `json:"elapsed_ns"`
}

// Inspection describes the sampling space of one driver.
type Inspection struct {
	Driver       string   `json:"driver"`
	Dimensions   []string `json:"dimensions"`
	Combinations int      `json:"combinations"` // viable token combinations
	Witnesses    int      `json:"witnesses"`    // sum of witness places over combinations
	Places       int      `json:"places"`       // distinct witness places
}

// Run statuses recorded in the database.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial" // at least one driver failed
	StatusFailed    = "failed"
)

// engine is the concrete implementation of Engine.
type engine struct {
	cfg     Config
	store   *store.Store
	drivers *generator.Registry
	readers *tableio.Registry
}

// New validates cfg and creates an engine. A database is opened only when
// cfg.DBPath is set.
func New(cfg Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &engine{
		cfg:     cfg,
		drivers: generator.NewRegistry(cfg.Settings()),
		readers: tableio.NewRegistry(),
	}
	if cfg.DBPath != "" {
		s, err := store.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		e.store = s
	}
	return e, nil
}

func (e *engine) Store() *store.Store { return e.store }

func (e *engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// DriverRNG returns the random stream of the named driver. The stream
// depends only on seed and name.
func DriverRNG(seed uint64, name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}

func (e *engine) loadTables(ctx context.Context) (generator.Tables, error) {
	tables, err := e.readers.LoadRelations(ctx, e.cfg.RelationsDir)
	if err != nil {
		return nil, err
	}
	return generator.Tables(tables), nil
}

func (e *engine) Generate(ctx context.Context) (*Generation, error) {
	tables, err := e.loadTables(ctx)
	if err != nil {
		return nil, err
	}
	return e.generate(ctx, tables)
}

func (e *engine) generate(ctx context.Context, tables generator.Tables) (*Generation, error) {
	drivers, err := e.drivers.Select(e.cfg.Drivers)
	if err != nil {
		return nil, err
	}

	gen := &Generation{
		Tables:  tables,
		Results: make([]*generator.Result, len(drivers)),
		Drivers: make([]DriverResult, len(drivers)),
	}
	errs := make([]error, len(drivers))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, d := range drivers {
		g.Go(func() error {
			start := time.Now()
			dr := DriverResult{Driver: d.Name()}
			res, err := d.Generate(gCtx, tables, DriverRNG(e.cfg.Seed, d.Name()))
			if err == nil {
				dr.YesNoPath, dr.MCQPath, err = e.writeResult(d, res)
			}
			dr.Elapsed = time.Since(start)
			if err != nil {
				slog.Error("driver failed", "driver", d.Name(), "error", err)
				dr.Error = err.Error()
				errs[i] = fmt.Errorf("driver %s: %w", d.Name(), err)
			} else {
				dr.YesNo, dr.MCQ = len(res.YesNo), len(res.MCQ)
				gen.Results[i] = res
				slog.Info("driver complete", "driver", d.Name(),
					"yesno_rows", dr.YesNo, "mcq_rows", dr.MCQ,
					"elapsed_ms", dr.Elapsed.Milliseconds())
			}
			gen.Drivers[i] = dr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return gen, errors.Join(errs...)
}

// writeResult writes the driver's yes/no and MCQ CSV files.
func (e *engine) writeResult(d generator.Driver, res *generator.Result) (yesno, mcq string, err error) {
	layout := d.Layout()
	yesno = filepath.Join(e.cfg.ResultsDir, generator.YesNoDir, generator.YesNoFile(d.Name()))
	if err := tableio.WriteCSV(yesno, layout.YesNoHeader(), layout.YesNoRecords(res)); err != nil {
		return "", "", err
	}
	mcq = filepath.Join(e.cfg.ResultsDir, generator.MCQDir, generator.MCQFile(d.Name()))
	if err := tableio.WriteCSV(mcq, layout.MCQHeader(), layout.MCQRecords(res)); err != nil {
		return "", "", err
	}
	return yesno, mcq, nil
}

func (e *engine) Merge(ctx context.Context) (*merge.Benchmark, error) {
	return e.merge(ctx, merge.Sources)
}

// selectedSources returns the merge sources of the configured drivers, in
// merge priority order.
func (e *engine) selectedSources() []merge.Source {
	if len(e.cfg.Drivers) == 0 {
		return merge.Sources
	}
	var out []merge.Source
	for _, src := range merge.Sources {
		if slices.Contains(e.cfg.Drivers, src.Driver) {
			out = append(out, src)
		}
	}
	return out
}

func (e *engine) merge(ctx context.Context, sources []merge.Source) (*merge.Benchmark, error) {
	m := merge.New(e.cfg.ResultsDir)
	m.Sources = sources
	m.Reader = e.readers
	b, err := m.Merge(ctx)
	if err != nil {
		return nil, fmt.Errorf("merging: %w", err)
	}
	if err := b.Write(e.cfg.ResultsDir); err != nil {
		return nil, fmt.Errorf("writing merged files: %w", err)
	}
	return b, nil
}

func (e *engine) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	rr := &RunResult{
		RunID:  uuid.NewString(),
		Seed:   e.cfg.Seed,
		Status: StatusRunning,
	}
	log := slog.With("run_id", rr.RunID)

	if e.store != nil {
		cfgJSON, err := json.Marshal(e.cfg)
		if err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}
		if err := e.store.CreateRun(ctx, store.Run{
			ID:        rr.RunID,
			Seed:      e.cfg.Seed,
			Config:    string(cfgJSON),
			GitCommit: GitCommit(),
		}); err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
	}
	fail := func(err error) (*RunResult, error) {
		rr.Status = StatusFailed
		rr.Elapsed = time.Since(start)
		if e.store != nil {
			// The caller's context may be the reason for failing.
			if ferr := e.store.FinishRun(context.WithoutCancel(ctx), rr.RunID, rr.Status, rr.Counts, rr.Elapsed); ferr != nil {
				log.Warn("recording failed run", "error", ferr)
			}
		}
		return rr, err
	}

	tables, err := e.loadTables(ctx)
	if err != nil {
		return fail(err)
	}
	if e.store != nil {
		if err := e.persistTables(ctx, rr.RunID, tables); err != nil {
			return fail(err)
		}
	}

	gen, genErr := e.generate(ctx, tables)
	if gen == nil {
		return fail(genErr)
	}
	rr.Drivers = gen.Drivers
	rr.Counts = gen.Counts()
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	for _, d := range gen.Drivers {
		if d.Error == "" {
			rr.Files = append(rr.Files, d.YesNoPath, d.MCQPath)
		}
	}

	bench, err := e.merge(ctx, e.selectedSources())
	if err != nil {
		return fail(errors.Join(genErr, err))
	}
	rr.Benchmark = bench
	mcqPath, yesnoPath := merge.Paths(e.cfg.ResultsDir)
	rr.Files = append(rr.Files, mcqPath, yesnoPath)
	rr.Counts["merged_yesno"] = len(bench.YesNo)
	rr.Counts["merged_mcq"] = len(bench.MCQ)

	if e.cfg.XLSXPath != "" {
		if err := exportWorkbook(e.cfg.XLSXPath, gen, e.drivers, bench); err != nil {
			return fail(errors.Join(genErr, err))
		}
		rr.Files = append(rr.Files, e.cfg.XLSXPath)
		log.Info("workbook written", "path", e.cfg.XLSXPath)
	}

	if e.store != nil {
		if err := e.store.InsertBenchmark(ctx, rr.RunID, bench); err != nil {
			return fail(errors.Join(genErr, err))
		}
	}

	rr.Status = StatusCompleted
	if genErr != nil {
		rr.Status = StatusPartial
	}
	rr.Elapsed = time.Since(start)
	rr.Report = report.Build(rr.RunID, bench)
	rr.Report.RunTime = rr.Elapsed

	if e.store != nil {
		if err := e.store.FinishRun(ctx, rr.RunID, rr.Status, rr.Counts, rr.Elapsed); err != nil {
			return rr, errors.Join(genErr, fmt.Errorf("finishing run: %w", err))
		}
	}
	log.Info("run complete", "status", rr.Status,
		"yesno_rows", len(bench.YesNo), "mcq_rows", len(bench.MCQ),
		"elapsed_ms", rr.Elapsed.Milliseconds())
	return rr, genErr
}

// persistTables stores the run's facts and refreshes place profiles.
func (e *engine) persistTables(ctx context.Context, runID string, tables generator.Tables) error {
	all := make([]*relation.Table, 0, len(relation.Dimensions))
	for _, d := range relation.Dimensions {
		all = append(all, tables[d])
	}
	n, err := e.store.InsertFacts(ctx, runID, all...)
	if err != nil {
		return fmt.Errorf("storing facts: %w", err)
	}
	profiles := store.Profiles(all...)
	if err := e.store.UpsertProfiles(ctx, profiles); err != nil {
		return fmt.Errorf("storing profiles: %w", err)
	}
	slog.Debug("relation tables stored", "run_id", runID, "facts", n, "profiles", len(profiles))
	return nil
}

// exportWorkbook writes one sheet per driver output and the two merged tables.
func exportWorkbook(path string, gen *Generation, drivers *generator.Registry, bench *merge.Benchmark) error {
	wb := &tableio.Workbook{}
	for _, res := range gen.Results {
		if res == nil {
			continue
		}
		d, err := drivers.Get(res.Driver)
		if err != nil {
			return err
		}
		layout := d.Layout()
		wb.Add(res.Driver+"_yesno", layout.YesNoHeader(), layout.YesNoRecords(res))
		wb.Add(res.Driver+"_mcq", layout.MCQHeader(), layout.MCQRecords(res))
	}
	wb.Add("all_yesno", merge.YesNoHeader, bench.YesNoRecords())
	wb.Add("all_mcq", merge.MCQHeader, bench.MCQRecords())
	return wb.Save(path)
}

func (e *engine) Inspect(ctx context.Context) ([]Inspection, error) {
	tables, err := e.loadTables(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := e.drivers.Select(e.cfg.Drivers)
	if err != nil {
		return nil, err
	}

	ix := relation.BuildIndexes(tables[relation.Direction], tables[relation.Topology], tables[relation.Distance])
	out := make([]Inspection, 0, len(drivers))
	for _, d := range drivers {
		dims := d.Dimensions()
		groups := [][]relation.Dimension{dims}
		if d.Layout().Atomic {
			groups = groups[:0]
			for _, dim := range dims {
				groups = append(groups, []relation.Dimension{dim})
			}
		}

		in := Inspection{Driver: d.Name()}
		for _, dim := range dims {
			in.Dimensions = append(in.Dimensions, dim.String())
		}
		places := make(map[string]struct{})
		for _, group := range groups {
			combos, err := relation.Discover(ix, group)
			if err != nil {
				return nil, fmt.Errorf("inspecting %s: %w", d.Name(), err)
			}
			in.Combinations += len(combos)
			for _, c := range combos {
				in.Witnesses += len(c.Witnesses)
				for _, p := range c.Witnesses {
					places[p] = struct{}{}
				}
			}
		}
		in.Places = len(places)
		out = append(out, in)
	}
	return out, nil
}

func (e *engine) SimilarPlaces(ctx context.Context, place string, k int) ([]store.Neighbor, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.SimilarPlaces(ctx, place, k)
}
