package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brunobiangulo/geobench/merge"
	"github.com/brunobiangulo/geobench/relation"
)

func init() {
	sqlite_vec.Auto()
}

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("geobench: run not found")

// Run represents a row in the runs table.
type Run struct {
	ID         string         `json:"id"`
	Seed       uint64         `json:"seed"`
	Config     string         `json:"config,omitempty"` // JSON
	GitCommit  string         `json:"git_commit,omitempty"`
	Status     string         `json:"status"`
	Counts     map[string]int `json:"counts,omitempty"`
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at,omitempty"`
	ElapsedMs  int64          `json:"elapsed_ms"`
}

// Neighbor is a place returned by SimilarPlaces.
type Neighbor struct {
	Place    string  `json:"place"`
	Distance float64 `json:"distance"`
}

// Store wraps the SQLite database for all geobench persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including the sqlite-vec profile table.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL(ProfileDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Run operations ---

// CreateRun inserts a run in the running state.
func (s *Store) CreateRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, config, git_commit, status)
		VALUES (?, ?, ?, ?, 'running')
	`, r.ID, int64(r.Seed), r.Config, r.GitCommit)
	return err
}

// FinishRun records the final status and per-driver row counts.
func (s *Store) FinishRun(ctx context.Context, id, status string, counts map[string]int, elapsed time.Duration) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encoding counts: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, counts = ?, elapsed_ms = ?, finished_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, string(raw), elapsed.Milliseconds(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

const runColumns = `id, seed, config, git_commit, status, counts, started_at, finished_at, elapsed_ms`

func scanRun(sc interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	var seed int64
	var config, commit, counts, finished sql.NullString
	if err := sc.Scan(&r.ID, &seed, &config, &commit, &r.Status, &counts,
		&r.StartedAt, &finished, &r.ElapsedMs); err != nil {
		return nil, err
	}
	r.Seed = uint64(seed)
	r.Config = config.String
	r.GitCommit = commit.String
	r.FinishedAt = finished.String
	if counts.Valid && counts.String != "" {
		if err := json.Unmarshal([]byte(counts.String), &r.Counts); err != nil {
			return nil, fmt.Errorf("decoding counts: %w", err)
		}
	}
	return &r, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return r, err
}

// DeleteRun removes a run and its facts and benchmark rows.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			"DELETE FROM relation_facts WHERE run_id = ?",
			"DELETE FROM yesno_items WHERE run_id = ?",
			"DELETE FROM mcq_items WHERE run_id = ?",
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil
	})
}

// --- Relation facts ---

// InsertFacts stores every fact of tables under runID. Returns the number
// of rows written.
func (s *Store) InsertFacts(ctx context.Context, runID string, tables ...*relation.Table) (int, error) {
	n := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO relation_facts (run_id, dimension, place1, place2, relation, measure)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tables {
			if t == nil {
				continue
			}
			for _, f := range t.Facts {
				if _, err := stmt.ExecContext(ctx, runID, t.Dimension.String(),
					f.Subject, f.Object, string(f.Relation), f.Measure); err != nil {
					return fmt.Errorf("inserting fact %s-%s: %w", f.Subject, f.Object, err)
				}
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// LoadFacts reads back the facts of one dimension for a run in insertion
// order.
func (s *Store) LoadFacts(ctx context.Context, runID string, d relation.Dimension) (*relation.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT place1, place2, relation, measure FROM relation_facts
		WHERE run_id = ? AND dimension = ? ORDER BY id
	`, runID, d.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []relation.Fact
	for rows.Next() {
		var f relation.Fact
		var tok string
		var measure sql.NullFloat64
		if err := rows.Scan(&f.Subject, &f.Object, &tok, &measure); err != nil {
			return nil, err
		}
		f.Relation = relation.Token(tok)
		f.Measure = measure.Float64
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return relation.NewTable(d, facts), nil
}

// --- Benchmark rows ---

// InsertBenchmark stores the merged rows of a run, preserving order.
func (s *Store) InsertBenchmark(ctx context.Context, runID string, b *merge.Benchmark) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		yn, err := tx.PrepareContext(ctx, `
			INSERT INTO yesno_items (run_id, position, question, answer, transition, concept, dir, dis, top)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer yn.Close()
		for i, r := range b.YesNo {
			if _, err := yn.ExecContext(ctx, runID, i, r.Question, r.Answer, r.Transition,
				r.Concept, r.Dir, r.Dis, r.Top); err != nil {
				return fmt.Errorf("inserting yes/no row %d: %w", i, err)
			}
		}

		mcq, err := tx.PrepareContext(ctx, `
			INSERT INTO mcq_items (run_id, position, question, options, option_sources, answer, concept, dir, dis, top)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer mcq.Close()
		for i, r := range b.MCQ {
			if _, err := mcq.ExecContext(ctx, runID, i, r.Question, r.Options, r.OptionSources,
				r.Answer, r.Concept, r.Dir, r.Dis, r.Top); err != nil {
				return fmt.Errorf("inserting MCQ row %d: %w", i, err)
			}
		}
		return nil
	})
}

// LoadBenchmark reads back the merged rows of a run.
func (s *Store) LoadBenchmark(ctx context.Context, runID string) (*merge.Benchmark, error) {
	b := &merge.Benchmark{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT question, answer, transition, concept, dir, dis, top
		FROM yesno_items WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var r merge.YesNoRow
		var transition sql.NullString
		if err := rows.Scan(&r.Question, &r.Answer, &transition, &r.Concept, &r.Dir, &r.Dis, &r.Top); err != nil {
			rows.Close()
			return nil, err
		}
		r.Transition = transition.String
		b.YesNo = append(b.YesNo, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT question, options, option_sources, answer, concept, dir, dis, top
		FROM mcq_items WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r merge.MCQRow
		var sources sql.NullString
		if err := rows.Scan(&r.Question, &r.Options, &sources, &r.Answer, &r.Concept, &r.Dir, &r.Dis, &r.Top); err != nil {
			return nil, err
		}
		r.OptionSources = sources.String
		b.MCQ = append(b.MCQ, r)
	}
	return b, rows.Err()
}

// DBStats holds row counts for the main tables.
type DBStats struct {
	Runs       int `json:"runs"`
	Facts      int `json:"facts"`
	Places     int `json:"places"`
	Profiles   int `json:"profiles"`
	YesNoItems int `json:"yesno_items"`
	MCQItems   int `json:"mcq_items"`
}

// DBStats returns counts of runs, facts, places, profiles and benchmark rows.
func (s *Store) DBStats(ctx context.Context) (*DBStats, error) {
	stats := &DBStats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM runs", &stats.Runs},
		{"SELECT COUNT(*) FROM relation_facts", &stats.Facts},
		{"SELECT COUNT(*) FROM places", &stats.Places},
		{"SELECT COUNT(*) FROM vec_places", &stats.Profiles},
		{"SELECT COUNT(*) FROM yesno_items", &stats.YesNoItems},
		{"SELECT COUNT(*) FROM mcq_items", &stats.MCQItems},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", q.query, err)
		}
	}
	return stats, nil
}

// --- helpers ---

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
