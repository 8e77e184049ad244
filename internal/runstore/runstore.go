// Package runstore is an optional Postgres-backed ledger of pipeline runs,
// separate from the artifact files under outputs/<request_id>/: it exists
// so an operator can query run history and failure kinds without walking
// the filesystem. Nothing downstream of the orchestrator reads it back.
package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/google/uuid"
)

type Store struct {
	db *sql.DB
}

// New opens a Postgres connection pool. dsn empty disables the store; the
// orchestrator treats a nil *Store as "no ledger configured".
func New(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("runstore: failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("runstore: failed to connect: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Run is one pipeline invocation's ledger row.
type Run struct {
	ID          uuid.UUID
	Persona     string
	Prompt      string
	Status      string
	ErrorKind   string
	OutputDir   string
	StartedAt   time.Time
	FinishedAt  sql.NullTime
}

// Start records a new in-progress run.
func (s *Store) Start(ctx context.Context, run *Run) error {
	if s == nil {
		return nil
	}
	query := `
		INSERT INTO pipeline_runs (id, persona, prompt, status, output_dir, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query, run.ID, run.Persona, run.Prompt, run.Status, run.OutputDir, run.StartedAt)
	if err != nil {
		return fmt.Errorf("runstore: failed to insert run: %w", err)
	}
	return nil
}

// Finish marks a run complete, successfully or with an error kind.
func (s *Store) Finish(ctx context.Context, id uuid.UUID, status, errorKind string) error {
	if s == nil {
		return nil
	}
	query := `
		UPDATE pipeline_runs
		SET status = $2, error_kind = $3, finished_at = $4
		WHERE id = $1
	`
	_, err := s.db.ExecContext(ctx, query, id, status, errorKind, time.Now())
	if err != nil {
		return fmt.Errorf("runstore: failed to finish run: %w", err)
	}
	return nil
}

// Get fetches a single run by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	if s == nil {
		return nil, fmt.Errorf("runstore: no ledger configured")
	}
	query := `
		SELECT id, persona, prompt, status, COALESCE(error_kind, ''), output_dir, started_at, finished_at
		FROM pipeline_runs
		WHERE id = $1
	`
	run := &Run{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Persona, &run.Prompt, &run.Status, &run.ErrorKind,
		&run.OutputDir, &run.StartedAt, &run.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("runstore: run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("runstore: failed to get run: %w", err)
	}
	return run, nil
}
