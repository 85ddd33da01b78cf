package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRunRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO planning_runs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &PlanningRun{ID: "run-1", InputHash: "hash-1", Input: types.JSONText(`{}`)}
	require.NoError(t, repo.Create(context.Background(), run))
	assert.Equal(t, RunStatusPending, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryUpdateSucceeded(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE planning_runs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateSucceeded(context.Background(), "run-1", types.JSONText(`{"labs":[]}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryUpdateSucceededNoRowsAffected(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE planning_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSucceeded(context.Background(), "missing", types.JSONText(`{}`))
	require.Error(t, err)
}

func TestRunRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "status", "lab_status", "lecture_status", "input_hash", "input", "result",
		"error_code", "error_message", "created_at", "updated_at", "completed_at",
	}).AddRow("run-1", RunStatusSucceeded, "OPTIMAL", "OPTIMAL", "hash-1", []byte(`{}`), []byte(`{"labs":[]}`), "", "", now, now, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, lab_status, lecture_status, input_hash, input, result, error_code, error_message, created_at, updated_at, completed_at\nFROM planning_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.FindByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusSucceeded, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM planning_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
