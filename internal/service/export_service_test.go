package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deptsched/timetable-api/internal/domain"
	"github.com/deptsched/timetable-api/internal/dto"
	"github.com/deptsched/timetable-api/internal/repository"
)

type mockRunRepo struct {
	run    *repository.PlanningRun
	findErr error
}

func (m *mockRunRepo) Create(ctx context.Context, run *repository.PlanningRun) error { return nil }
func (m *mockRunRepo) UpdateSucceeded(ctx context.Context, id string, result types.JSONText) error {
	return nil
}
func (m *mockRunRepo) UpdateFailed(ctx context.Context, id, labStatus, lectStatus, errorCode, errorMessage string) error {
	return nil
}
func (m *mockRunRepo) FindByID(ctx context.Context, id string) (*repository.PlanningRun, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.run, nil
}
func (m *mockRunRepo) FindByInputHash(ctx context.Context, hash string) (*repository.PlanningRun, error) {
	return nil, m.findErr
}
func (m *mockRunRepo) List(ctx context.Context, limit, offset int) ([]repository.PlanningRun, error) {
	return nil, nil
}
func (m *mockRunRepo) Delete(ctx context.Context, id string) error { return nil }

func succeededRun(t *testing.T) *repository.PlanningRun {
	t.Helper()
	result := storedResult{
		Labs: []dto.LabAssignmentView{
			{Class: "TE1", Subject: "DSA", Batch: "TE11", Day: "Monday", Start: "8:15-9:15", End: "9:15-10:15", Teacher: "Prof A", Room: "502"},
		},
		Lectures: []dto.LectureAssignmentView{
			{Class: "TE1", Subject: "OS", Day: "Tuesday", Slot: "9:15-10:15", Teacher: "Prof B", Room: "T1"},
		},
	}
	payload, err := json.Marshal(result)
	require.NoError(t, err)
	return &repository.PlanningRun{ID: "run-1", Status: repository.RunStatusSucceeded, Result: types.JSONText(payload)}
}

func TestExportServiceAssignmentsRejectsUnfinishedRun(t *testing.T) {
	repo := &mockRunRepo{run: &repository.PlanningRun{ID: "run-1", Status: repository.RunStatusRunning}}
	svc := NewExportService(repo, domain.NewTimeModel())

	_, err := svc.XLSX(context.Background(), "run-1")
	require.Error(t, err)
}

func TestExportServiceCSVRendersRows(t *testing.T) {
	repo := &mockRunRepo{run: succeededRun(t)}
	svc := NewExportService(repo, domain.NewTimeModel())

	data, err := svc.CSV(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Contains(t, string(data), "TE1")
	assert.Contains(t, string(data), "lab")
	assert.Contains(t, string(data), "lecture")
}

func TestExportServiceXLSXRendersWorkbook(t *testing.T) {
	repo := &mockRunRepo{run: succeededRun(t)}
	svc := NewExportService(repo, domain.NewTimeModel())

	data, err := svc.XLSX(context.Background(), "run-1")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
