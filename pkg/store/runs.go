package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run records one import: which partition, where the data came from and how
// much of it was stored.
type Run struct {
	ID         string    `json:"id"`
	Gender     string    `json:"gender"`
	Years      []string  `json:"years"`
	Source     string    `json:"source"`
	Warning    string    `json:"warning,omitempty"`
	Names      int       `json:"names"`
	Inserted   int       `json:"inserted"`
	Errors     int       `json:"errors"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// RecordRun stores r, assigning a new ID when r.ID is empty, and returns the ID.
func (s *Store) RecordRun(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = r.FinishedAt
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO import_runs (id, gender, years, source, warning, names, inserted, errors, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.Gender, strings.Join(r.Years, ","), r.Source, r.Warning,
		r.Names, r.Inserted, r.Errors, r.StartedAt.Unix(), r.FinishedAt.Unix())
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return r.ID, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, gender, years, source, warning, names, inserted, errors, started_at, finished_at
		FROM import_runs ORDER BY finished_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var years string
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Gender, &years, &r.Source, &r.Warning,
			&r.Names, &r.Inserted, &r.Errors, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if years != "" {
			r.Years = strings.Split(years, ",")
		}
		r.StartedAt = time.Unix(started, 0)
		r.FinishedAt = time.Unix(finished, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SourceCheck is the outcome of probing the statistics source.
type SourceCheck struct {
	URL       string    `json:"url"`
	CheckedAt time.Time `json:"checkedAt"`
	Status    int       `json:"status"`
	Error     string    `json:"error,omitempty"`
}

// OK reports whether the source answered with a 2xx or 3xx status.
func (c SourceCheck) OK() bool {
	return c.Status >= 200 && c.Status < 400
}

// RecordCheck appends a check result.
func (s *Store) RecordCheck(ctx context.Context, c SourceCheck) error {
	if c.CheckedAt.IsZero() {
		c.CheckedAt = time.Now()
	}
	var errMsg any
	if c.Error != "" {
		errMsg = c.Error
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO source_checks (url, checked_at, status, error) VALUES (?, ?, ?, ?)`),
		c.URL, c.CheckedAt.Unix(), c.Status, errMsg)
	if err != nil {
		return fmt.Errorf("record check: %w", err)
	}
	return nil
}

// LastCheck returns the latest check result, or nil if none was recorded.
func (s *Store) LastCheck(ctx context.Context) (*SourceCheck, error) {
	var c SourceCheck
	var checked int64
	var errMsg sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT url, checked_at, status, error FROM source_checks ORDER BY id DESC LIMIT 1`).
		Scan(&c.URL, &checked, &c.Status, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last check: %w", err)
	}
	c.CheckedAt = time.Unix(checked, 0)
	c.Error = errMsg.String
	return &c, nil
}
