// Package run persists workflow runs in SQLite so executions can be listed
// and inspected after the fact.
package run

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a run id does not exist in the workspace.
var ErrNotFound = errors.New("run not found")

// Run is one recorded workflow execution. PlanJSON and ResultJSON hold the
// exact documents the executor saw and produced.
type Run struct {
	ID         string `json:"id"`
	Workspace  string `json:"workspace"`
	Prompt     string `json:"prompt"`
	Provider   string `json:"provider"`
	PlanJSON   string `json:"plan_json,omitempty"`
	Status     string `json:"status"`
	ResultJSON string `json:"result_json,omitempty"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// Store reads and writes workflow_run rows.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an already-migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create records a new run in "running" state.
func (s *Store) Create(ctx context.Context, id, workspace, prompt, provider string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_run (id, workspace, prompt, provider, status)
		VALUES (?, ?, ?, ?, 'running')
	`, id, workspace, prompt, provider)
	if err != nil {
		return fmt.Errorf("run store: create %s: %w", id, err)
	}
	return nil
}

// Complete marks a run succeeded and stores the plan and aggregate result.
func (s *Store) Complete(ctx context.Context, id, planJSON, resultJSON string) error {
	return s.finish(ctx, id, "succeeded", planJSON, resultJSON, "")
}

// Fail marks a run failed with an error message. planJSON may be empty when
// planning itself failed.
func (s *Store) Fail(ctx context.Context, id, planJSON, errMsg string) error {
	return s.finish(ctx, id, "failed", planJSON, "", errMsg)
}

func (s *Store) finish(ctx context.Context, id, status, planJSON, resultJSON, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE workflow_run
		SET status = ?, plan_json = ?, result_json = ?, error = ?,
		    finished_at = datetime('now')
		WHERE id = ?
	`, status, nullable(planJSON), nullable(resultJSON), nullable(errMsg), id)
	if err != nil {
		return fmt.Errorf("run store: finish %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("run store: finish %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("run store: finish %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get fetches one run scoped to a workspace.
func (s *Store) Get(ctx context.Context, workspace, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, workspace, prompt, provider, plan_json, status,
		       result_json, error, started_at, finished_at
		FROM workflow_run
		WHERE workspace = ? AND id = ?
	`, workspace, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run store: get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("run store: get %s: %w", id, err)
	}
	return r, nil
}

// List returns a workspace's runs, newest first.
func (s *Store) List(ctx context.Context, workspace string, limit, offset int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace, prompt, provider, plan_json, status,
		       result_json, error, started_at, finished_at
		FROM workflow_run
		WHERE workspace = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, workspace, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("run store: list: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("run store: list: %w", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run store: list: %w", err)
	}
	return runs, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var planJSON, resultJSON, errMsg, finishedAt sql.NullString
	if err := sc.Scan(
		&r.ID, &r.Workspace, &r.Prompt, &r.Provider, &planJSON,
		&r.Status, &resultJSON, &errMsg, &r.StartedAt, &finishedAt,
	); err != nil {
		return nil, err
	}
	r.PlanJSON = planJSON.String
	r.ResultJSON = resultJSON.String
	r.Error = errMsg.String
	r.FinishedAt = finishedAt.String
	return &r, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
