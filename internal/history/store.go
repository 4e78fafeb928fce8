// Package history persists finished batch runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Run is the summary row of one stored batch.
type Run struct {
	ID        string    `json:"id"`
	Tool      string    `json:"tool"`
	Source    string    `json:"source"`
	Output    string    `json:"output,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	OK        int       `json:"ok"`
	Undefined int       `json:"undefined"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// Entry is one stored per-file record.
type Entry struct {
	File   string          `json:"file"`
	Status string          `json:"status"`
	Reason string          `json:"reason,omitempty"`
	Line   string          `json:"line"`
	Values json.RawMessage `json:"values,omitempty"`
}

// Detail is a run together with its per-file records.
type Detail struct {
	Run
	Columns []string `json:"columns"`
	Records []Entry  `json:"records"`
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			source TEXT NOT NULL,
			output TEXT NOT NULL,
			columns_json TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			ok INTEGER NOT NULL,
			undefined INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_records (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			file TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL,
			line TEXT NOT NULL,
			values_json TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and all of its per-file records.
func (s *Store) InsertRun(ctx context.Context, res *batch.Result) (err error) {
	if res == nil {
		return fmt.Errorf("insert run: nil result")
	}
	cols, err := json.Marshal(res.Table.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	counts := res.Counts()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, tool, source, output, columns_json, started_at, ended_at, ok, undefined, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		string(res.Tool),
		res.Source,
		res.Output,
		string(cols),
		res.StartedAt.UTC().Format(time.RFC3339Nano),
		res.EndedAt.UTC().Format(time.RFC3339Nano),
		counts[batch.StatusOK],
		counts[batch.StatusUndefined],
		counts[batch.StatusSkipped],
		counts[batch.StatusFailed],
	)
	if err != nil {
		return err
	}

	if len(res.Table.Rows) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_records (run_id, seq, file, status, reason, line, values_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, rec := range res.Table.Rows {
			vals, merr := json.Marshal(rec.Values)
			if merr != nil {
				err = fmt.Errorf("encode values for %s: %w", rec.File, merr)
				return err
			}
			if _, err = stmt.ExecContext(ctx, res.ID, i, rec.File, string(rec.Status), rec.Reason, rec.Line, string(vals)); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, source, output, started_at, ended_at, ok, undefined, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []Run
	for rows.Next() {
		var (
			r              Run
			started, ended string
		)
		if err := rows.Scan(&r.ID, &r.Tool, &r.Source, &r.Output, &started, &ended, &r.OK, &r.Undefined, &r.Skipped, &r.Failed); err != nil {
			return nil, err
		}
		r.StartedAt = parseTime(started)
		r.EndedAt = parseTime(ended)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns a stored run with its records in processing order.
func (s *Store) GetRun(ctx context.Context, id string) (*Detail, error) {
	var (
		d              Detail
		cols           string
		started, ended string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tool, source, output, columns_json, started_at, ended_at, ok, undefined, skipped, failed
		 FROM runs WHERE id = ?`, id).
		Scan(&d.ID, &d.Tool, &d.Source, &d.Output, &cols, &started, &ended, &d.OK, &d.Undefined, &d.Skipped, &d.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.StartedAt = parseTime(started)
	d.EndedAt = parseTime(ended)
	if err := json.Unmarshal([]byte(cols), &d.Columns); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT file, status, reason, line, values_json FROM run_records WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var (
			e    Entry
			vals string
		)
		if err := rows.Scan(&e.File, &e.Status, &e.Reason, &e.Line, &vals); err != nil {
			return nil, err
		}
		if vals != "null" {
			e.Values = json.RawMessage(vals)
		}
		d.Records = append(d.Records, e)
	}
	return &d, rows.Err()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
