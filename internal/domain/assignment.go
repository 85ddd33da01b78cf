package domain

// LabAssignment places one batch's lab session on a 2-slot occupancy
// starting at StartSlot, per spec §3.
type LabAssignment struct {
	Class     Class
	Subject   Subject
	Batch     Batch
	Day       Day
	StartSlot Slot
	Teacher   Teacher
	LabRoom   Room
}

// Slots returns the two slots a lab assignment occupies. tm supplies the
// consecutive-slot derivation; callers must have already validated
// StartSlot is a valid lab start.
func (a LabAssignment) Slots(tm *TimeModel) [2]Slot {
	next, _ := tm.Consecutive(a.StartSlot)
	return [2]Slot{a.StartSlot, next}
}

// LectureAssignment places one lecture occurrence of a class-subject at a
// single slot, per spec §3.
type LectureAssignment struct {
	Class         Class
	Subject       Subject
	LectureIndex  int
	Day           Day
	Slot          Slot
	Teacher       Teacher
	LectureRoom   Room
}

// AssignmentSet bundles the two phases' outputs, the data contract between
// the lab and lecture schedulers (spec §2).
type AssignmentSet struct {
	Labs     []LabAssignment
	Lectures []LectureAssignment
}

// BlockedClassSlots returns, for every class, the (day, slot) pairs
// occupied by any of that class's batches' labs — both slots of the
// 2-slot occupancy — per spec §4.3 "derived blocking sets".
func BlockedClassSlots(tm *TimeModel, labs []LabAssignment) map[Class]map[Day]map[Slot]bool {
	blocked := make(map[Class]map[Day]map[Slot]bool)
	for _, lab := range labs {
		if blocked[lab.Class] == nil {
			blocked[lab.Class] = make(map[Day]map[Slot]bool)
		}
		if blocked[lab.Class][lab.Day] == nil {
			blocked[lab.Class][lab.Day] = make(map[Slot]bool)
		}
		for _, s := range lab.Slots(tm) {
			blocked[lab.Class][lab.Day][s] = true
		}
	}
	return blocked
}

// BlockedTeacherSlots returns, for every teacher, the (day, slot) pairs
// occupied by a lab they teach — both slots of the 2-slot occupancy — per
// spec §4.3.
func BlockedTeacherSlots(tm *TimeModel, labs []LabAssignment) map[Teacher]map[Day]map[Slot]bool {
	blocked := make(map[Teacher]map[Day]map[Slot]bool)
	for _, lab := range labs {
		if blocked[lab.Teacher] == nil {
			blocked[lab.Teacher] = make(map[Day]map[Slot]bool)
		}
		if blocked[lab.Teacher][lab.Day] == nil {
			blocked[lab.Teacher][lab.Day] = make(map[Slot]bool)
		}
		for _, s := range lab.Slots(tm) {
			blocked[lab.Teacher][lab.Day][s] = true
		}
	}
	return blocked
}
