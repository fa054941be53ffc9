// Package history is the SQLite-backed archive of generated reports.
// Uses WAL mode for concurrent reads and crash-safe writes.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/metrics"
)

// Store wraps a SQLite connection with WAL mode and migrations.
type Store struct {
	db *sql.DB
}

// Open creates or opens the archive database at dir/state.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if n, err := s.Count(); err == nil {
		metrics.ReportsStored.Set(float64(n))
	}
	return s, nil
}

// Close cleanly shuts down the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks database connectivity.
func (s *Store) Ping() error { return s.db.Ping() }

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id           TEXT PRIMARY KEY,
			created_at   INTEGER NOT NULL,
			source       TEXT NOT NULL DEFAULT '',
			model        TEXT NOT NULL DEFAULT '',
			window_start INTEGER,
			window_end   INTEGER,
			line_count   INTEGER NOT NULL DEFAULT 0,
			duration_ms  INTEGER NOT NULL DEFAULT 0,
			analysis     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// Save stores a report. The report must already carry an ID.
func (s *Store) Save(r *domain.Report) error {
	var wstart, wend sql.NullInt64
	if r.Window != nil {
		wstart = sql.NullInt64{Int64: r.Window.Start.Unix(), Valid: true}
		wend = sql.NullInt64{Int64: r.Window.End.Unix(), Valid: true}
	}
	_, err := s.db.Exec(
		`INSERT INTO reports (id, created_at, source, model, window_start, window_end, line_count, duration_ms, analysis)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.Unix(), r.Source, r.Model,
		wstart, wend, r.LineCount, r.Duration.Milliseconds(), r.Analysis,
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", r.ID, err)
	}
	metrics.ReportsStored.Inc()
	return nil
}

// Get fetches one report by ID. Returns domain.ErrReportNotFound when absent.
func (s *Store) Get(id string) (*domain.Report, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, source, model, window_start, window_end, line_count, duration_ms, analysis
		 FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report %s: %w", id, err)
	}
	return r, nil
}

// List returns reports newest-first. limit <= 0 means no limit.
func (s *Store) List(limit int) ([]*domain.Report, error) {
	q := `SELECT id, created_at, source, model, window_start, window_end, line_count, duration_ms, analysis
	      FROM reports ORDER BY created_at DESC, id`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(q+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(q)
	}
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes a report. Returns domain.ErrReportNotFound when absent.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrReportNotFound
	}
	metrics.ReportsStored.Dec()
	return nil
}

// Count returns the number of stored reports.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*domain.Report, error) {
	var (
		r          domain.Report
		createdAt  int64
		wstart     sql.NullInt64
		wend       sql.NullInt64
		durationMS int64
	)
	err := sc.Scan(&r.ID, &createdAt, &r.Source, &r.Model, &wstart, &wend, &r.LineCount, &durationMS, &r.Analysis)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if wstart.Valid && wend.Valid {
		r.Window = &domain.TimeWindow{
			Start: time.Unix(wstart.Int64, 0).UTC(),
			End:   time.Unix(wend.Int64, 0).UTC(),
		}
	}
	return &r, nil
}
