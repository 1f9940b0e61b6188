// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps a local SQLite log of generation attempts: when they
// ran, with which settings, and how they ended. It stores no prompt text and
// no generated content.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"
)

// Outcome values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// startedAtLayout is fixed-width, so started_at sorts chronologically as
// text. RFC3339Nano drops trailing zeros and does not.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Attempt is one journaled generation call.
type Attempt struct {
	ID                string        `yaml:"id"`
	StartedAt         time.Time     `yaml:"started_at"`
	Duration          time.Duration `yaml:"duration"`
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	Style             string        `yaml:"style"`
	Category          string        `yaml:"category"`
	Shape             string        `yaml:"shape"`
	Pages             int           `yaml:"pages"`
	InternationalRefs int           `yaml:"international_refs"`
	NationalRefs      int           `yaml:"national_refs"`
	AttachmentKind    string        `yaml:"attachment_kind"`
	Outcome           string        `yaml:"outcome"`
	ErrorKind         string        `yaml:"error_kind,omitempty"`
	ErrorMessage      string        `yaml:"error_message,omitempty"`
	Sections          int           `yaml:"sections"`
	References        int           `yaml:"references"`
}

// Summary aggregates the journal.
type Summary struct {
	Total      int            `yaml:"total"`
	Succeeded  int            `yaml:"succeeded"`
	Failed     int            `yaml:"failed"`
	ByKind     map[string]int `yaml:"by_kind,omitempty"`
	ByProvider map[string]int `yaml:"by_provider,omitempty"`
	// MeanDuration covers successful attempts only.
	MeanDuration time.Duration `yaml:"mean_duration"`
}

// Journal is an open attempt log.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return j, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT,
			style TEXT,
			category TEXT,
			shape TEXT,
			pages INTEGER,
			international_refs INTEGER,
			national_refs INTEGER,
			attachment_kind TEXT,
			outcome TEXT NOT NULL,
			error_kind TEXT,
			error_message TEXT,
			sections INTEGER,
			refs INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_started_at ON attempts(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_outcome ON attempts(outcome)`,
	}
	for _, stmt := range statements {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a. Recording the same ID twice replaces the earlier row.
func (j *Journal) Record(ctx context.Context, a Attempt) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO attempts (id, started_at, duration_ms, provider, model, style, category,
			shape, pages, international_refs, national_refs, attachment_kind, outcome, error_kind,
			error_message, sections, refs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.StartedAt.UTC().Format(startedAtLayout), a.Duration.Milliseconds(),
		a.Provider, a.Model, a.Style, a.Category, a.Shape,
		a.Pages, a.InternationalRefs, a.NationalRefs, a.AttachmentKind,
		a.Outcome, a.ErrorKind, a.ErrorMessage, a.Sections, a.References,
	)
	if err != nil {
		return fmt.Errorf("recording attempt %s: %w", a.ID, err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first. limit <= 0 means 20.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, provider, model, style, category, shape, pages,
			international_refs, national_refs, attachment_kind, outcome, error_kind, error_message,
			sections, refs
		 FROM attempts ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			a          Attempt
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&a.ID, &startedAt, &durationMS, &a.Provider, &a.Model, &a.Style,
			&a.Category, &a.Shape, &a.Pages, &a.InternationalRefs, &a.NationalRefs,
			&a.AttachmentKind, &a.Outcome, &a.ErrorKind, &a.ErrorMessage, &a.Sections, &a.References); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		if a.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at of %s: %w", a.ID, err)
		}
		a.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, a)
	}
	return out, rows.Err()
}

// Summarize counts attempts by outcome, error kind and provider.
func (j *Journal) Summarize(ctx context.Context) (Summary, error) {
	s := Summary{ByKind: map[string]int{}, ByProvider: map[string]int{}}

	var meanMS sql.NullFloat64
	err := j.db.QueryRowContext(ctx,
		`SELECT count(*),
			coalesce(sum(outcome = 'success'), 0),
			avg(CASE WHEN outcome = 'success' THEN duration_ms END)
		 FROM attempts`).Scan(&s.Total, &s.Succeeded, &meanMS)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing attempts: %w", err)
	}
	s.Failed = s.Total - s.Succeeded
	if meanMS.Valid {
		s.MeanDuration = time.Duration(meanMS.Float64) * time.Millisecond
	}

	if err := j.countBy(ctx, `SELECT error_kind, count(*) FROM attempts WHERE outcome = 'failure' GROUP BY error_kind`, s.ByKind); err != nil {
		return Summary{}, err
	}
	if err := j.countBy(ctx, `SELECT provider, count(*) FROM attempts GROUP BY provider`, s.ByProvider); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (j *Journal) countBy(ctx context.Context, query string, into map[string]int) error {
	rows, err := j.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("grouping attempts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scanning group: %w", err)
		}
		into[key] = n
	}
	return rows.Err()
}

// ExportYAML writes the most recent attempts to w as a YAML list.
func (j *Journal) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	attempts, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(attempts); err != nil {
		return fmt.Errorf("encoding attempts: %w", err)
	}
	return enc.Close()
}
