// Package store persists benchmark results: a sqlite index over episodes
// for querying, and compressed transcript archives for replay.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// EpisodeRow is one finished episode in the results index.
type EpisodeRow struct {
	EpisodeID  string
	RunID      string
	Game       string
	Experiment string
	InstanceID int
	Model      string
	Success    bool
	Aborted    bool
	Moves      int
	BenchScore float64
	RecordedAt time.Time
}

// Index is the sqlite-backed episode index. Writes are synchronous; the
// episode rate is far below what sqlite handles.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (and if needed creates) the index database at path.
func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS episodes (
	episode_id  TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	game        TEXT NOT NULL,
	experiment  TEXT NOT NULL,
	instance_id INTEGER NOT NULL,
	model       TEXT NOT NULL,
	success     INTEGER NOT NULL,
	aborted     INTEGER NOT NULL,
	moves       INTEGER NOT NULL,
	bench_score REAL NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id);
CREATE INDEX IF NOT EXISTS idx_episodes_game ON episodes(game, experiment);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// InsertEpisode records one finished episode.
func (x *Index) InsertEpisode(row EpisodeRow) error {
	recordedAt := row.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	_, err := x.db.Exec(`
INSERT INTO episodes
	(episode_id, run_id, game, experiment, instance_id, model,
	 success, aborted, moves, bench_score, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.EpisodeID, row.RunID, row.Game, row.Experiment, row.InstanceID, row.Model,
		boolInt(row.Success), boolInt(row.Aborted), row.Moves, row.BenchScore,
		recordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert episode %s: %w", row.EpisodeID, err)
	}
	return nil
}

// RunEpisodes returns the episodes of one run, oldest first.
func (x *Index) RunEpisodes(runID string) ([]EpisodeRow, error) {
	rows, err := x.db.Query(`
SELECT episode_id, run_id, game, experiment, instance_id, model,
       success, aborted, moves, bench_score, recorded_at
FROM episodes WHERE run_id = ? ORDER BY recorded_at, episode_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []EpisodeRow
	for rows.Next() {
		var row EpisodeRow
		var success, aborted int
		var recordedAt string
		if err := rows.Scan(
			&row.EpisodeID, &row.RunID, &row.Game, &row.Experiment, &row.InstanceID, &row.Model,
			&success, &aborted, &row.Moves, &row.BenchScore, &recordedAt,
		); err != nil {
			return nil, err
		}
		row.Success = success != 0
		row.Aborted = aborted != 0
		row.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (x *Index) Close() error { return x.db.Close() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
