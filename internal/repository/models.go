package repository

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Run statuses mirror the planning pipeline's lifecycle.
const (
	RunStatusPending = "pending"
	RunStatusRunning = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed   = "failed"
)

// PlanningRun is the persisted record of one lab+lecture planning request.
type PlanningRun struct {
	ID          string         `db:"id"`
	Status      string         `db:"status"`
	LabStatus   string         `db:"lab_status"`
	LectStatus  string         `db:"lecture_status"`
	InputHash   string         `db:"input_hash"`
	Input       types.JSONText `db:"input"`
	Result      types.JSONText `db:"result"`
	ErrorCode   string         `db:"error_code"`
	ErrorMessage string        `db:"error_message"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	CompletedAt *time.Time     `db:"completed_at"`
}

// StoredAssignment is the flattened one-row-per-assignment shape of a run's
// result, covering both lab and lecture kinds. No repository method reads
// or writes it; the export endpoints build their rows from the run's JSON
// result.
type StoredAssignment struct {
	RunID   string `db:"run_id"`
	Kind    string `db:"kind"` // "lab" or "lecture"
	Class   string `db:"class"`
	Subject string `db:"subject"`
	Batch   string `db:"batch"`
	Day     string `db:"day"`
	Slot    string `db:"slot"`
	Teacher string `db:"teacher"`
	Room    string `db:"room"`
}

// Operator is an authenticated planner operator account.
type Operator struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
