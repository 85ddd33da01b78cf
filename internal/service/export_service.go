package service

import (
	"context"

	"github.com/deptsched/timetable-api/internal/domain"
	"github.com/deptsched/timetable-api/pkg/export"
	appErrors "github.com/deptsched/timetable-api/pkg/errors"
)

// ExportService renders a completed planning run's assignments into the
// downloadable artifact formats spec §6 requires.
type ExportService struct {
	runs plannerRunRepository
	tm   *domain.TimeModel
	xlsx *export.XLSXExporter
	csv  *export.CSVExporter
}

// NewExportService constructs an ExportService.
func NewExportService(runs plannerRunRepository, tm *domain.TimeModel) *ExportService {
	return &ExportService{runs: runs, tm: tm, xlsx: export.NewXLSXExporter(), csv: export.NewCSVExporter()}
}

func (s *ExportService) assignments(ctx context.Context, runID string) (domain.AssignmentSet, error) {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		return domain.AssignmentSet{}, appErrors.Clone(appErrors.ErrNotFound, "planning run not found")
	}
	if run.Status != "succeeded" {
		return domain.AssignmentSet{}, appErrors.Clone(appErrors.ErrConflict, "planning run has no completed assignments")
	}

	var stored storedResult
	if err := unmarshalResult(run.Result, &stored); err != nil {
		return domain.AssignmentSet{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode stored result")
	}

	var set domain.AssignmentSet
	for _, l := range stored.Labs {
		set.Labs = append(set.Labs, domain.LabAssignment{
			Class: domain.Class(l.Class), Subject: domain.Subject(l.Subject), Batch: domain.Batch(l.Batch),
			Day: domain.Day(l.Day), StartSlot: domain.Slot(l.Start), Teacher: domain.Teacher(l.Teacher), LabRoom: domain.Room(l.Room),
		})
	}
	for _, l := range stored.Lectures {
		set.Lectures = append(set.Lectures, domain.LectureAssignment{
			Class: domain.Class(l.Class), Subject: domain.Subject(l.Subject), LectureIndex: l.LectureIndex,
			Day: domain.Day(l.Day), Slot: domain.Slot(l.Slot), Teacher: domain.Teacher(l.Teacher), LectureRoom: domain.Room(l.Room),
		})
	}
	return set, nil
}

// XLSX renders the per-class timetable workbook for a completed run.
func (s *ExportService) XLSX(ctx context.Context, runID string) ([]byte, error) {
	set, err := s.assignments(ctx, runID)
	if err != nil {
		return nil, err
	}
	data, err := s.xlsx.RenderClassGrids(s.tm, set)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workbook")
	}
	return data, nil
}

// CSV renders a flat per-assignment row listing for a completed run.
func (s *ExportService) CSV(ctx context.Context, runID string) ([]byte, error) {
	set, err := s.assignments(ctx, runID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{"kind", "class", "subject", "batch", "day", "slot", "teacher", "room"}}
	for _, l := range set.Labs {
		slots := l.Slots(s.tm)
		dataset.Rows = append(dataset.Rows, map[string]string{
			"kind": "lab", "class": string(l.Class), "subject": string(l.Subject), "batch": string(l.Batch),
			"day": string(l.Day), "slot": string(slots[0]) + "/" + string(slots[1]), "teacher": string(l.Teacher), "room": string(l.LabRoom),
		})
	}
	for _, l := range set.Lectures {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"kind": "lecture", "class": string(l.Class), "subject": string(l.Subject), "batch": "",
			"day": string(l.Day), "slot": string(l.Slot), "teacher": string(l.Teacher), "room": string(l.LectureRoom),
		})
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}
