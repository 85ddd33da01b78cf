package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

// RunRepository persists planning runs, each with its solved assignments
// stored as one JSON result.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new planning run outside of any transaction; an empty
// status defaults to pending.
func (r *RunRepository) Create(ctx context.Context, run *PlanningRun) error {
	return r.CreateTx(ctx, nil, run)
}

// CreateTx inserts a new planning run, optionally within a caller's
// transaction; an empty status defaults to pending.
func (r *RunRepository) CreateTx(ctx context.Context, exec sqlx.ExtContext, run *PlanningRun) error {
	if run.Status == "" {
		run.Status = RunStatusPending
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	const query = `
INSERT INTO planning_runs (id, status, lab_status, lecture_status, input_hash, input, result, error_code, error_message, created_at, updated_at, completed_at)
VALUES (:id, :status, :lab_status, :lecture_status, :input_hash, :input, :result, :error_code, :error_message, :created_at, :updated_at, :completed_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, run); err != nil {
		return fmt.Errorf("insert planning run: %w", err)
	}
	return nil
}

// UpdateSucceeded marks a run complete with its solved assignments attached.
func (r *RunRepository) UpdateSucceeded(ctx context.Context, id string, result types.JSONText) error {
	now := time.Now().UTC()
	const query = `
UPDATE planning_runs
SET status = $1, lab_status = $2, lecture_status = $3, result = $4, updated_at = $5, completed_at = $6
WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query, RunStatusSucceeded, "OPTIMAL", "OPTIMAL", result, now, now, id)
	if err != nil {
		return fmt.Errorf("update planning run success: %w", err)
	}
	return checkAffected(res)
}

// UpdateFailed marks a run failed with the given error classification.
func (r *RunRepository) UpdateFailed(ctx context.Context, id, labStatus, lectStatus, errorCode, errorMessage string) error {
	now := time.Now().UTC()
	const query = `
UPDATE planning_runs
SET status = $1, lab_status = $2, lecture_status = $3, error_code = $4, error_message = $5, updated_at = $6, completed_at = $7
WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query, RunStatusFailed, labStatus, lectStatus, errorCode, errorMessage, now, now, id)
	if err != nil {
		return fmt.Errorf("update planning run failure: %w", err)
	}
	return checkAffected(res)
}

// FindByID loads a run by its identifier.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*PlanningRun, error) {
	const query = `
SELECT id, status, lab_status, lecture_status, input_hash, input, result, error_code, error_message, created_at, updated_at, completed_at
FROM planning_runs WHERE id = $1`
	var run PlanningRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindByInputHash returns the most recent run for an identical input, used
// to short-circuit duplicate submissions before a solve is launched.
func (r *RunRepository) FindByInputHash(ctx context.Context, hash string) (*PlanningRun, error) {
	const query = `
SELECT id, status, lab_status, lecture_status, input_hash, input, result, error_code, error_message, created_at, updated_at, completed_at
FROM planning_runs WHERE input_hash = $1 ORDER BY created_at DESC LIMIT 1`
	var run PlanningRun
	if err := r.db.GetContext(ctx, &run, query, hash); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns planning runs newest-first.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]PlanningRun, error) {
	const query = `
SELECT id, status, lab_status, lecture_status, input_hash, input, result, error_code, error_message, created_at, updated_at, completed_at
FROM planning_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var runs []PlanningRun
	if err := r.db.SelectContext(ctx, &runs, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list planning runs: %w", err)
	}
	return runs, nil
}

// Delete removes a planning run.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM planning_runs WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete planning run: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
