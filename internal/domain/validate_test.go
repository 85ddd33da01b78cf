package domain

import "testing"

func baseValidDepartment() *DepartmentData {
	return &DepartmentData{
		Years:          []Year{ThirdYear},
		ClassesPerYear: 1,
		Teachers:       []Teacher{"Prof A"},
		Rooms:          []Room{"A1"},
		LabRooms:       []Room{"501", "504"},
		SubjectsByYear: map[Year][]Subject{ThirdYear: {"DSA"}},
		CourseStructure: map[Subject]CourseStructure{
			"DSA": {RequiredLectures: 2, RequiredLabs: 1},
		},
		TeacherAssignments:    map[Year]map[Subject]Teacher{ThirdYear: {"DSA": "Prof A"}},
		LabTeacherAssignments: map[Year]map[Subject]Teacher{ThirdYear: {"DSA": "Prof A"}},
		TeacherAvailability:   map[Teacher]map[Day][]Slot{"Prof A": {Monday: {"8:15-9:15"}}},
	}
}

func TestValidateAcceptsWellFormedDepartment(t *testing.T) {
	if err := baseValidDepartment().Validate(); err != nil {
		t.Fatalf("expected valid department to pass, got %v", err)
	}
}

func TestValidateRejectsUnknownYear(t *testing.T) {
	d := baseValidDepartment()
	d.Years = []Year{Year("First Year")}
	if err := d.Validate(); err == nil {
		t.Fatalf("expected error for unknown year prefix")
	}
}

func TestValidateRejectsMissingLabTeacher(t *testing.T) {
	d := baseValidDepartment()
	delete(d.LabTeacherAssignments[ThirdYear], "DSA")
	if err := d.Validate(); err == nil {
		t.Fatalf("expected error for missing lab teacher")
	}
}

func TestValidateRejectsTeacherNotInAvailability(t *testing.T) {
	d := baseValidDepartment()
	delete(d.TeacherAvailability, "Prof A")
	if err := d.Validate(); err == nil {
		t.Fatalf("expected error for teacher missing availability")
	}
}

func TestValidateRejectsMissingRestrictedRoom(t *testing.T) {
	d := baseValidDepartment()
	d.LabRooms = []Room{"502"}
	if err := d.Validate(); err == nil {
		t.Fatalf("expected error when room 501/504 are not configured")
	}
}
