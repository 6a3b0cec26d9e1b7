package store

import "fmt"

// schemaSQL returns the DDL for all tables. profileDim controls the vec0
// virtual table dimension.
func schemaSQL(profileDim int) string {
	return fmt.Sprintf(`
-- One row per generation run
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    seed INTEGER NOT NULL,
    config JSON,
    git_commit TEXT,
    status TEXT DEFAULT 'running',
    counts JSON,
    started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    finished_at DATETIME
);

-- Relation facts as loaded for a run
CREATE TABLE IF NOT EXISTS relation_facts (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    dimension TEXT NOT NULL,
    place1 TEXT NOT NULL,
    place2 TEXT NOT NULL,
    relation TEXT NOT NULL,
    measure REAL
);

-- Place registry shared across runs
CREATE TABLE IF NOT EXISTS places (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

-- Per-place relation token profiles via sqlite-vec
CREATE VIRTUAL TABLE IF NOT EXISTS vec_places USING vec0(
    place_id INTEGER PRIMARY KEY,
    profile float[%d]
);

-- Merged yes/no benchmark rows
CREATE TABLE IF NOT EXISTS yesno_items (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    transition TEXT,
    concept INTEGER NOT NULL,
    dir INTEGER NOT NULL,
    dis INTEGER NOT NULL,
    top INTEGER NOT NULL
);

-- Merged multiple-choice benchmark rows
CREATE TABLE IF NOT EXISTS mcq_items (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    question TEXT NOT NULL,
    options TEXT NOT NULL,
    option_sources TEXT,
    answer TEXT NOT NULL,
    concept INTEGER NOT NULL,
    dir INTEGER NOT NULL,
    dis INTEGER NOT NULL,
    top INTEGER NOT NULL
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_facts_run ON relation_facts(run_id);
CREATE INDEX IF NOT EXISTS idx_facts_subject ON relation_facts(place1, relation);
CREATE INDEX IF NOT EXISTS idx_yesno_run ON yesno_items(run_id, position);
CREATE INDEX IF NOT EXISTS idx_mcq_run ON mcq_items(run_id, position);
`, profileDim)
}
