package solver

import (
	"testing"

	"github.com/deptsched/timetable-api/internal/domain"
)

func TestLectureSchedulerCandidatesExcludeLabBlockedSlots(t *testing.T) {
	tm := domain.NewTimeModel()
	data := fixtureDepartment()

	labs := []domain.LabAssignment{
		{Class: "TE1", Subject: "DSA", Batch: "TE11", Day: domain.Monday, StartSlot: domain.Slot("8:15-9:15"), Teacher: "Prof A", LabRoom: "502"},
	}

	sched := NewLectureScheduler(tm, data, labs, DefaultParams())
	candidates, err := sched.Candidates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, c := range candidates {
		if c.Class == "TE1" && c.Day == domain.Monday && (c.Slot == domain.Slot("8:15-9:15") || c.Slot == domain.Slot("9:15-10:15")) {
			t.Fatalf("candidate %+v occupies a slot blocked by the class's lab", c)
		}
	}
}

func TestLectureSchedulerCandidatesExcludeTeacherBlockedByOwnLab(t *testing.T) {
	tm := domain.NewTimeModel()
	data := fixtureDepartment()

	labs := []domain.LabAssignment{
		{Class: "TE1", Subject: "DSA", Batch: "TE11", Day: domain.Monday, StartSlot: domain.Slot("8:15-9:15"), Teacher: "Prof A", LabRoom: "502"},
	}

	sched := NewLectureScheduler(tm, data, labs, DefaultParams())
	candidates, err := sched.Candidates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, c := range candidates {
		if c.Teacher == "Prof A" && c.Day == domain.Monday && c.Slot == domain.Slot("8:15-9:15") {
			t.Fatalf("candidate %+v schedules the teacher while they are teaching a lab", c)
		}
	}
}

func TestLectureSchedulerCandidatesUsePinnedRoom(t *testing.T) {
	tm := domain.NewTimeModel()
	data := fixtureDepartment()
	data.Rooms = []domain.Room{"S1", "T1", "B1"}

	sched := NewLectureScheduler(tm, data, nil, DefaultParams())
	candidates, err := sched.Candidates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatalf("expected candidates")
	}
	for _, c := range candidates {
		if c.Room != "T1" {
			t.Errorf("expected third-year lectures pinned to room T1, got %q", c.Room)
		}
	}
}

func TestLectureSchedulerBuildPostsConstraintsWithoutError(t *testing.T) {
	tm := domain.NewTimeModel()
	data := fixtureDepartment()

	sched := NewLectureScheduler(tm, data, nil, DefaultParams())
	if err := sched.Build(); err != nil {
		t.Fatalf("unexpected error building model: %v", err)
	}
	if len(sched.vars) == 0 {
		t.Fatalf("expected lecture variables to be allocated")
	}
}
