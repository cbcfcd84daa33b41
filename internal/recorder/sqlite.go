package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists screen runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS screen_runs (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			screen     TEXT,
			index_id   TEXT NOT NULL,
			filters    TEXT,
			from_cache INTEGER,
			total      INTEGER,
			survivors  INTEGER,
			failed     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON screen_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS screen_results (
			run_id   TEXT NOT NULL REFERENCES screen_runs(id),
			position INTEGER NOT NULL,
			name     TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,

		`CREATE TABLE IF NOT EXISTS screen_failures (
			run_id TEXT NOT NULL REFERENCES screen_runs(id),
			link   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_run ON screen_failures(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	filters, err := json.Marshal(run.Filters)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO screen_runs
		(id, timestamp, screen, index_id, filters, from_cache, total, survivors, failed)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Timestamp.Unix(), run.Screen, run.Index, string(filters),
		run.FromCache, run.Total, len(run.Survivors), len(run.Failed),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, name := range run.Survivors {
		if _, err := tx.Exec(`INSERT INTO screen_results (run_id, position, name) VALUES (?,?,?)`,
			run.ID, i, name); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}
	for _, link := range run.Failed {
		if _, err := tx.Exec(`INSERT INTO screen_failures (run_id, link) VALUES (?,?)`,
			run.ID, link); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}
	return tx.Commit()
}

// History returns the most recent runs, newest first, with survivors loaded.
func (r *SQLiteRecorder) History(limit int) ([]*RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, screen, index_id, filters, from_cache, total
		FROM screen_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var runs []*RunRecord
	for rows.Next() {
		var (
			run     RunRecord
			ts      int64
			filters string
		)
		if err := rows.Scan(&run.ID, &ts, &run.Screen, &run.Index, &filters, &run.FromCache, &run.Total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Timestamp = time.Unix(ts, 0)
		if filters != "" {
			if err := json.Unmarshal([]byte(filters), &run.Filters); err != nil {
				rows.Close()
				return nil, fmt.Errorf("decode filters of run %s: %w", run.ID, err)
			}
		}
		runs = append(runs, &run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, run := range runs {
		if run.Survivors, err = r.names(run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *SQLiteRecorder) names(runID string) ([]string, error) {
	rows, err := r.db.Query(`SELECT name FROM screen_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
