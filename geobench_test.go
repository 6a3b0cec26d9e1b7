package geobench

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/brunobiangulo/geobench/generator"
	"github.com/brunobiangulo/geobench/merge"
	"github.com/brunobiangulo/geobench/relation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeRelations lays out a small three-table fixture in which Camden and
// Leeds have a fact in every dimension.
func writeRelations(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"dir.csv": "place1,place2,bearing,relation\n" +
			"London,Manchester,160,north\n" +
			"Camden,Leeds,170,south\n" +
			"Leeds,York,80,east\n" +
			"York,Hull,270,west\n",
		"top.csv": "place1,place2,relation\n" +
			"Camden,London,within\n" +
			"Leeds,York,borders\n" +
			"Hull,York,borders\n",
		"dis.csv": "place1,place2,distance_m,relation\n" +
			"Camden,Leeds,280000,far\n" +
			"Leeds,York,35000,near\n" +
			"York,Camden,300000,distant\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.RelationsDir = writeRelations(t)
	cfg.ResultsDir = t.TempDir()
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) *engine {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e.(*engine)
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, uint64(42), cfg.Seed)
	require.Equal(t, 500, cfg.AtomicQuota)
	require.Equal(t, 22, cfg.TripleQuota)
	require.False(t, cfg.DistinctOptions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"negative atomic quota", func(c *Config) { c.AtomicQuota = -1 }, ErrInvalidConfig},
		{"negative triple quota", func(c *Config) { c.TripleQuota = -1 }, ErrInvalidConfig},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConfig},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidConfig},
		{"empty results dir", func(c *Config) { c.ResultsDir = "" }, ErrInvalidConfig},
		{"unknown driver", func(c *Config) { c.Drivers = []string{"atomic", "four_concept"} }, ErrUnknownDriver},
		{"subset of drivers", func(c *Config) { c.Drivers = []string{generator.TopDis} }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geobench.yaml")
	yaml := "relations_dir: data/rel\n" +
		"seed: 7\n" +
		"drivers: [atomic, 3_concept]\n" +
		"distinct_options: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "data/rel", cfg.RelationsDir)
	require.Equal(t, uint64(7), cfg.Seed)
	require.Equal(t, []string{"atomic", "3_concept"}, cfg.Drivers)
	require.True(t, cfg.DistinctOptions)
	// Unset keys keep their defaults.
	require.Equal(t, "geodata/results", cfg.ResultsDir)
	require.Equal(t, 500, cfg.AtomicQuota)

	require.NoError(t, os.WriteFile(path, []byte("seed: [1, 2\n"), 0o644))
	_, err = LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDriverRNG(t *testing.T) {
	a1, a2 := DriverRNG(42, generator.Atomic), DriverRNG(42, generator.Atomic)
	for range 8 {
		require.Equal(t, a1.Uint64(), a2.Uint64())
	}
	require.NotEqual(t, DriverRNG(42, generator.Atomic).Uint64(), DriverRNG(42, generator.TopDis).Uint64())
	require.NotEqual(t, DriverRNG(42, generator.Atomic).Uint64(), DriverRNG(43, generator.Atomic).Uint64())
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

func TestRunWritesAllFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.XLSXPath = filepath.Join(cfg.ResultsDir, "geobench.xlsx")
	e := newTestEngine(t, cfg)

	rr, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, rr.Status)
	require.NotEmpty(t, rr.RunID)
	require.Len(t, rr.Drivers, len(generator.Names))

	for _, name := range generator.Names {
		require.FileExists(t, filepath.Join(cfg.ResultsDir, generator.YesNoDir, generator.YesNoFile(name)))
		require.FileExists(t, filepath.Join(cfg.ResultsDir, generator.MCQDir, generator.MCQFile(name)))
	}
	mcqPath, yesnoPath := merge.Paths(cfg.ResultsDir)
	require.FileExists(t, mcqPath)
	require.FileExists(t, yesnoPath)
	require.FileExists(t, cfg.XLSXPath)

	// Every statement gives two yes/no rows and one MCQ row.
	for _, d := range rr.Drivers {
		require.Empty(t, d.Error)
		require.Equal(t, 2*d.MCQ, d.YesNo, d.Driver)
	}
	require.Equal(t, 2*len(rr.Benchmark.MCQ), len(rr.Benchmark.YesNo))
	require.Positive(t, rr.Counts["atomic_mcq"])
	require.Positive(t, rr.Counts["3_concept_mcq"])
	require.Equal(t, len(rr.Benchmark.MCQ), rr.Report.MCQTotal)
	require.Empty(t, rr.Benchmark.Missing)
}

func TestRunDeterministicAcrossConcurrency(t *testing.T) {
	rel := writeRelations(t)
	merged := func(concurrency int) (string, string) {
		cfg := DefaultConfig()
		cfg.RelationsDir = rel
		cfg.ResultsDir = t.TempDir()
		cfg.Concurrency = concurrency
		_, err := newTestEngine(t, cfg).Run(context.Background())
		require.NoError(t, err)

		mcqPath, yesnoPath := merge.Paths(cfg.ResultsDir)
		mcq, err := os.ReadFile(mcqPath)
		require.NoError(t, err)
		yesno, err := os.ReadFile(yesnoPath)
		require.NoError(t, err)
		return string(mcq), string(yesno)
	}

	mcq1, yn1 := merged(1)
	mcq5, yn5 := merged(5)
	require.Equal(t, mcq1, mcq5)
	require.Equal(t, yn1, yn5)
}

// brokenDriver always fails.
type brokenDriver struct{ name string }

func (d brokenDriver) Name() string { return d.name }
func (d brokenDriver) Dimensions() []relation.Dimension {
	return []relation.Dimension{relation.Distance, relation.Direction}
}
func (d brokenDriver) Layout() generator.Layout {
	return generator.Layout{Dimensions: d.Dimensions()}
}
func (d brokenDriver) Generate(context.Context, generator.Tables, *rand.Rand) (*generator.Result, error) {
	return nil, errors.New("boom")
}

func TestFailingDriverDoesNotBlockOthers(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	e.drivers.Register(brokenDriver{name: generator.DisDir})

	rr, err := e.Run(context.Background())
	require.Error(t, err)
	require.ErrorContains(t, err, "driver dis_dir")
	require.Equal(t, StatusPartial, rr.Status)

	for _, d := range rr.Drivers {
		if d.Driver == generator.DisDir {
			require.Equal(t, "boom", d.Error)
			continue
		}
		require.Empty(t, d.Error, d.Driver)
	}
	require.NoFileExists(t, filepath.Join(cfg.ResultsDir, generator.MCQDir, generator.MCQFile(generator.DisDir)))
	require.Len(t, rr.Benchmark.Missing, 2)
	require.NotEmpty(t, rr.Benchmark.MCQ)
}

func TestGenerateSelectedDrivers(t *testing.T) {
	cfg := testConfig(t)
	cfg.Drivers = []string{generator.TopDis}
	e := newTestEngine(t, cfg)

	gen, err := e.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, gen.Drivers, 1)
	require.Equal(t, generator.TopDis, gen.Drivers[0].Driver)
	require.NoFileExists(t, filepath.Join(cfg.ResultsDir, generator.MCQDir, generator.MCQFile(generator.Atomic)))

	counts := gen.Counts()
	require.Equal(t, gen.Drivers[0].YesNo, counts["top_dis_yesno"])
}

func TestRunMergesOnlySelectedDrivers(t *testing.T) {
	cfg := testConfig(t)
	full, err := newTestEngine(t, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Greater(t, len(full.Benchmark.MCQ), full.Counts["top_dis_mcq"])

	// Files from the full run stay in results_dir.
	cfg.Drivers = []string{generator.TopDis}
	rr, err := newTestEngine(t, cfg).Run(context.Background())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(cfg.ResultsDir, generator.MCQDir, generator.MCQFile(generator.Atomic)))
	require.Equal(t, rr.Counts["top_dis_mcq"], len(rr.Benchmark.MCQ))
	require.Equal(t, rr.Counts["top_dis_yesno"], len(rr.Benchmark.YesNo))
	require.Empty(t, rr.Benchmark.Missing)

	// An explicit merge still reads every driver's files.
	b, err := newTestEngine(t, cfg).Merge(context.Background())
	require.NoError(t, err)
	require.Len(t, b.MCQ, len(full.Benchmark.MCQ))
}

func TestGenerateCancelled(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMergeEmptyResults(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	b, err := e.Merge(context.Background())
	require.NoError(t, err)
	require.Empty(t, b.MCQ)
	require.Len(t, b.Missing, 2*len(merge.Sources))
}

func TestInspect(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	got, err := e.Inspect(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(generator.Names))

	byName := make(map[string]Inspection)
	for _, in := range got {
		byName[in.Driver] = in
	}
	// Atomic: north, east, south, west + far, near, distant + within, borders.
	require.Equal(t, 9, byName[generator.Atomic].Combinations)
	require.Equal(t, []string{"dir", "dis", "top"}, byName[generator.Atomic].Dimensions)
	// Camden south/within/far and Leeds east/borders/near.
	require.Equal(t, 2, byName[generator.ThreeConcept].Combinations)
	require.Equal(t, 2, byName[generator.ThreeConcept].Places)
}

func TestSimilarPlacesWithoutStore(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	require.Nil(t, e.Store())
	_, err := e.SimilarPlaces(context.Background(), "London", 3)
	require.ErrorIs(t, err, ErrNoStore)
}
