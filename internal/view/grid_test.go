package view

import (
	"testing"

	"github.com/deptsched/timetable-api/internal/domain"
)

func TestClassGridsMergesLabAndLecture(t *testing.T) {
	tm := domain.NewTimeModel()
	assignments := domain.AssignmentSet{
		Labs: []domain.LabAssignment{
			{Class: "TE1", Subject: "DSA", Batch: "TE11", Day: domain.Monday, StartSlot: domain.Slot("8:15-9:15"), Teacher: "Prof A", LabRoom: "502"},
		},
		Lectures: []domain.LectureAssignment{
			{Class: "TE1", Subject: "OS", Day: domain.Tuesday, Slot: domain.Slot("9:15-10:15"), Teacher: "Prof B", LectureRoom: "T1"},
		},
	}

	grids := ClassGrids(tm, assignments)
	g, ok := grids["TE1"]
	if !ok {
		t.Fatalf("expected a grid for TE1")
	}

	start := g.Rows[domain.Monday][domain.Slot("8:15-9:15")]
	if start.Kind != CellLab || start.Continued {
		t.Fatalf("expected lab start cell, got %+v", start)
	}
	cont := g.Rows[domain.Monday][domain.Slot("9:15-10:15")]
	if cont.Kind != CellLab || !cont.Continued {
		t.Fatalf("expected continued lab cell, got %+v", cont)
	}

	lec := g.Rows[domain.Tuesday][domain.Slot("9:15-10:15")]
	if lec.Kind != CellLecture || lec.Subject != "OS" {
		t.Fatalf("expected lecture cell, got %+v", lec)
	}
}

func TestClassGridsMarksBreaksByDefault(t *testing.T) {
	tm := domain.NewTimeModel()
	grids := ClassGrids(tm, domain.AssignmentSet{
		Lectures: []domain.LectureAssignment{
			{Class: "TE1", Day: domain.Monday, Slot: domain.Slot("8:15-9:15")},
		},
	})

	cell := grids["TE1"].Rows[domain.Monday][domain.MorningBreak]
	if cell.Kind != CellBreak {
		t.Fatalf("expected break slot pre-populated as CellBreak, got %+v", cell)
	}
}

func TestTeacherGridsIncludeClassOnCells(t *testing.T) {
	tm := domain.NewTimeModel()
	assignments := domain.AssignmentSet{
		Lectures: []domain.LectureAssignment{
			{Class: "TE2", Subject: "OS", Day: domain.Wednesday, Slot: domain.Slot("8:15-9:15"), Teacher: "Prof B", LectureRoom: "T1"},
		},
	}

	grids := TeacherGrids(tm, assignments)
	cell := grids["Prof B"].Rows[domain.Wednesday][domain.Slot("8:15-9:15")]
	if cell.Kind != CellLecture || cell.Class != "TE2" {
		t.Fatalf("expected teacher grid cell to carry the class, got %+v", cell)
	}
}
