package domain

import "testing"

func TestClassesForYear(t *testing.T) {
	d := &DepartmentData{ClassesPerYear: 3}

	classes, err := d.ClassesForYear(ThirdYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Class{"TE1", "TE2", "TE3"}
	if len(classes) != len(want) {
		t.Fatalf("expected %v, got %v", want, classes)
	}
	for i, c := range classes {
		if c != want[i] {
			t.Errorf("expected %q at index %d, got %q", want[i], i, c)
		}
	}
}

func TestClassesForYearUnknownPrefix(t *testing.T) {
	d := &DepartmentData{ClassesPerYear: 1}
	if _, err := d.ClassesForYear(Year("First Year")); err == nil {
		t.Fatalf("expected error for unconfigured year")
	}
}

func TestYearOf(t *testing.T) {
	cases := map[Class]Year{
		"SE1": SecondYear,
		"TE3": ThirdYear,
		"BE2": FourthYear,
	}
	for class, want := range cases {
		got, err := YearOf(class)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", class, err)
		}
		if got != want {
			t.Errorf("YearOf(%q) = %q, want %q", class, got, want)
		}
	}
}

func TestBatchesOfFixedCount(t *testing.T) {
	batches := BatchesOf("TE1")
	if len(batches) != BatchesPerClass {
		t.Fatalf("expected %d batches, got %d", BatchesPerClass, len(batches))
	}
	want := []Batch{"TE11", "TE12", "TE13", "TE14"}
	for i, b := range batches {
		if b != want[i] {
			t.Errorf("expected %q at index %d, got %q", want[i], i, b)
		}
	}
}

func TestAllowedLabSlotsAJPAlwaysEvening(t *testing.T) {
	tm := NewTimeModel()
	slots := AllowedLabSlots(tm, SecondYear, Subject("AJP"))
	if len(slots) != 1 || slots[0] != Slot("3:30-4:30") {
		t.Fatalf("expected AJP pinned to the evening block regardless of year, got %v", slots)
	}
}

func TestAllowedLabSlotsPerYear(t *testing.T) {
	tm := NewTimeModel()

	if slots := AllowedLabSlots(tm, ThirdYear, Subject("DC")); len(slots) != 1 || slots[0] != Slot("8:15-9:15") {
		t.Errorf("expected third-year labs pinned to the morning block, got %v", slots)
	}
	if slots := AllowedLabSlots(tm, SecondYear, Subject("DC")); len(slots) != 1 || slots[0] != Slot("10:30-11:30") {
		t.Errorf("expected second-year labs pinned to the midday block, got %v", slots)
	}
	if slots := AllowedLabSlots(tm, FourthYear, Subject("DC")); len(slots) != len(tm.LabStarts()) {
		t.Errorf("expected fourth-year labs to allow every block, got %v", slots)
	}
}

func TestAllowedLabRoomsRestricted(t *testing.T) {
	all := []Room{"501", "502", "504"}

	if rooms := AllowedLabRooms(all, Subject("ADE")); len(rooms) != 1 || rooms[0] != "501" {
		t.Errorf("expected ADE restricted to room 501, got %v", rooms)
	}
	if rooms := AllowedLabRooms(all, Subject("MNA")); len(rooms) != 1 || rooms[0] != "504" {
		t.Errorf("expected MNA restricted to room 504, got %v", rooms)
	}
	if rooms := AllowedLabRooms(all, Subject("DSA")); len(rooms) != len(all) {
		t.Errorf("expected unrestricted subject to allow every lab room, got %v", rooms)
	}
}

func TestAllowedLectureSlotsThirdYearCutoff(t *testing.T) {
	tm := NewTimeModel()
	slots := AllowedLectureSlots(tm, ThirdYear)
	if slots[len(slots)-1] != Slot("3:30-4:30") {
		t.Fatalf("expected third-year lectures to stop at 3:30-4:30, got last slot %q", slots[len(slots)-1])
	}
}

func TestAllowedLectureSlotsOtherYearsFull(t *testing.T) {
	tm := NewTimeModel()
	slots := AllowedLectureSlots(tm, SecondYear)
	if len(slots) != len(tm.TeachingSlots()) {
		t.Fatalf("expected second-year lectures to allow every teaching slot, got %d", len(slots))
	}
}

func TestPinnedLectureRoom(t *testing.T) {
	rooms := []Room{"A1", "A2", "A3"}

	room, err := PinnedLectureRoom(SecondYear, rooms)
	if err != nil || room != "A1" {
		t.Fatalf("expected A1 for second year, got %q err=%v", room, err)
	}
	room, err = PinnedLectureRoom(ThirdYear, rooms)
	if err != nil || room != "A2" {
		t.Fatalf("expected A2 for third year, got %q err=%v", room, err)
	}
}

func TestPinnedLectureRoomMissingConfiguration(t *testing.T) {
	if _, err := PinnedLectureRoom(FourthYear, []Room{"A1"}); err == nil {
		t.Fatalf("expected error when fourth-year's pinned room index is out of range")
	}
}
