// Package history keeps a local journal of sync runs in SQLite, so
// past runs can be inspected without round-tripping to the tracker.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// currentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const currentSchemaVersion = 1

// Entry is one recorded sync run.
type Entry struct {
	RunID        string
	StoryID      int
	CreatedIDs   []int
	UpdatedIDs   []int
	SkippedCount int
	DryRun       bool
	RecordedAt   time.Time
}

// Journal is the sync-run journal backed by a SQLite file.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	// Pragmas in the connection string apply to every connection
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS sync_runs (
		  run_id        TEXT PRIMARY KEY,
		  story_id      INTEGER NOT NULL,
		  created_ids   TEXT NOT NULL,
		  updated_ids   TEXT NOT NULL,
		  skipped_count INTEGER NOT NULL,
		  dry_run       INTEGER NOT NULL DEFAULT 0,
		  recorded_at   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sync_runs_story ON sync_runs(story_id, recorded_at);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}
	return nil
}

// Record journals one sync run.
func (j *Journal) Record(result *types.SyncResult, dryRun bool) error {
	createdJSON, err := json.Marshal(result.CreatedIDs)
	if err != nil {
		return fmt.Errorf("failed to encode created ids: %w", err)
	}
	updatedJSON, err := json.Marshal(result.UpdatedIDs)
	if err != nil {
		return fmt.Errorf("failed to encode updated ids: %w", err)
	}

	_, err = j.db.Exec(
		`INSERT INTO sync_runs (run_id, story_id, created_ids, updated_ids, skipped_count, dry_run, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.StoryID, string(createdJSON), string(updatedJSON),
		result.SkippedCount, boolToInt(dryRun), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. A storyID of 0
// returns runs for every story.
func (j *Journal) List(storyID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT run_id, story_id, created_ids, updated_ids, skipped_count, dry_run, recorded_at
	          FROM sync_runs`
	args := []any{}
	if storyID > 0 {
		query += " WHERE story_id = ?"
		args = append(args, storyID)
	}
	query += " ORDER BY recorded_at DESC, run_id LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			createdJSON string
			updatedJSON string
			dryRun      int
			recordedAt  string
		)
		if err := rows.Scan(&e.RunID, &e.StoryID, &createdJSON, &updatedJSON, &e.SkippedCount, &dryRun, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		if err := json.Unmarshal([]byte(createdJSON), &e.CreatedIDs); err != nil {
			return nil, fmt.Errorf("failed to decode created ids: %w", err)
		}
		if err := json.Unmarshal([]byte(updatedJSON), &e.UpdatedIDs); err != nil {
			return nil, fmt.Errorf("failed to decode updated ids: %w", err)
		}
		e.DryRun = dryRun != 0
		if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			e.RecordedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
