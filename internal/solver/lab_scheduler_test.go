package solver

import (
	"testing"

	"github.com/deptsched/timetable-api/internal/domain"
)

func fixtureDepartment() *domain.DepartmentData {
	return &domain.DepartmentData{
		Years:          []domain.Year{domain.ThirdYear},
		ClassesPerYear: 1,
		Teachers:       []domain.Teacher{"Prof A"},
		Rooms:          []domain.Room{"S1", "T1"},
		LabRooms:       []domain.Room{"502", "503"},
		SubjectsByYear: map[domain.Year][]domain.Subject{domain.ThirdYear: {"DSA"}},
		CourseStructure: map[domain.Subject]domain.CourseStructure{
			"DSA": {RequiredLectures: 2, RequiredLabs: 1},
		},
		TeacherAssignments:    map[domain.Year]map[domain.Subject]domain.Teacher{domain.ThirdYear: {"DSA": "Prof A"}},
		LabTeacherAssignments: map[domain.Year]map[domain.Subject]domain.Teacher{domain.ThirdYear: {"DSA": "Prof A"}},
		TeacherAvailability: map[domain.Teacher]map[domain.Day][]domain.Slot{
			"Prof A": fullWeekAvailability(),
		},
	}
}

func fullWeekAvailability() map[domain.Day][]domain.Slot {
	tm := domain.NewTimeModel()
	out := make(map[domain.Day][]domain.Slot)
	for _, d := range domain.Days {
		out[d] = tm.TeachingSlots()
	}
	return out
}

func TestLabSchedulerCandidatesRespectAllowedSlotsAndRooms(t *testing.T) {
	tm := domain.NewTimeModel()
	data := fixtureDepartment()
	sched := NewLabScheduler(tm, data, DefaultParams())

	candidates, err := sched.Candidates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatalf("expected at least one candidate")
	}

	allowedStart := domain.AllowedLabSlots(tm, domain.ThirdYear, "DSA")[0]
	for _, c := range candidates {
		if c.Start != allowedStart {
			t.Errorf("candidate start %q outside allowed set %q", c.Start, allowedStart)
		}
		if c.Room != "502" && c.Room != "503" {
			t.Errorf("candidate room %q outside configured lab rooms", c.Room)
		}
		if c.Teacher != "Prof A" {
			t.Errorf("unexpected candidate teacher %q", c.Teacher)
		}
	}
}

func TestLabSchedulerCandidatesSpanAllBatches(t *testing.T) {
	tm := domain.NewTimeModel()
	data := fixtureDepartment()
	sched := NewLabScheduler(tm, data, DefaultParams())

	candidates, err := sched.Candidates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	batches := make(map[domain.Batch]bool)
	for _, c := range candidates {
		batches[c.Batch] = true
	}
	if len(batches) != domain.BatchesPerClass {
		t.Fatalf("expected candidates spanning all %d batches, got %d", domain.BatchesPerClass, len(batches))
	}
}

func TestLabSchedulerCandidatesExcludeUnavailableTeacher(t *testing.T) {
	tm := domain.NewTimeModel()
	data := fixtureDepartment()
	data.TeacherAvailability["Prof A"] = map[domain.Day][]domain.Slot{
		domain.Monday: {},
	}
	sched := NewLabScheduler(tm, data, DefaultParams())

	candidates, err := sched.Candidates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates when the teacher has no availability, got %d", len(candidates))
	}
}

func TestLabSchedulerBuildPostsConstraintsWithoutError(t *testing.T) {
	tm := domain.NewTimeModel()
	data := fixtureDepartment()
	sched := NewLabScheduler(tm, data, DefaultParams())

	if err := sched.Build(); err != nil {
		t.Fatalf("unexpected error building model: %v", err)
	}
	if sched.model == nil {
		t.Fatalf("expected model to be constructed")
	}
	if len(sched.start) == 0 {
		t.Fatalf("expected start variables to be allocated")
	}
}
