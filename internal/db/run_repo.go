package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
)

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run is one deployment attempt as recorded in the journal. RepoURL is
// stored without credentials.
type Run struct {
	ID           string       `db:"id"`
	RepoURL      string       `db:"repo_url"`
	Branch       string       `db:"branch"`
	Host         string       `db:"host"`
	AppPort      int          `db:"app_port"`
	ManifestKind string       `db:"manifest_kind"`
	Status       string       `db:"status"`
	Stage        string       `db:"stage"`
	StartedAt    time.Time    `db:"started_at"`
	FinishedAt   sql.NullTime `db:"finished_at"`
}

// RunRepository handles journal operations for deployment runs
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create records the start of a deployment run and returns it with a
// fresh ID and start timestamp.
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	run.ID = xid.New().String()
	run.Status = RunStatusRunning
	run.StartedAt = time.Now().UTC()

	query := `
		INSERT INTO runs (id, repo_url, branch, host, app_port, manifest_kind, status, stage, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.RepoURL, run.Branch, run.Host, run.AppPort,
		run.ManifestKind, run.Status, run.Stage, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish marks a run as succeeded or failed. For failures, stage names
// the step that failed.
func (r *RunRepository) Finish(ctx context.Context, id, status, stage, manifestKind string) error {
	query := `
		UPDATE runs
		SET status = ?, stage = ?, manifest_kind = ?, finished_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, status, stage, manifestKind, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// ListRecent returns the most recent runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, repo_url, branch, host, app_port, manifest_kind, status, stage, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	var runs []*Run
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return runs, nil
}

// GetByID returns a single run.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	query := `
		SELECT id, repo_url, branch, host, app_port, manifest_kind, status, stage, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run := &Run{}
	if err := r.db.GetContext(ctx, run, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found")
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}
