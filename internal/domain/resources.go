package domain

import "fmt"

// Year identifies one of the three supported academic years.
type Year string

const (
	SecondYear Year = "Second Year"
	ThirdYear  Year = "Third Year"
	FourthYear Year = "Fourth Year"
)

var yearPrefix = map[Year]string{
	SecondYear: "SE",
	ThirdYear:  "TE",
	FourthYear: "BE",
}

// BatchesPerClass is the fixed number of lab batches every class owns.
const BatchesPerClass = 4

// Class is a year-scoped cohort, e.g. "TE1".
type Class string

// Batch is a lab sub-group of a class, e.g. "TE13" (batch 3 of TE1).
type Batch string

// Subject is a per-year course offering.
type Subject string

// Teacher is a faculty identifier with per-day availability.
type Teacher string

// Room is a lab or lecture room identifier.
type Room string

// CourseStructure captures a subject's weekly demand.
type CourseStructure struct {
	RequiredLectures int
	RequiredLabs     int
	LabDurationHours float64
	LectureDuration  float64
}

// DepartmentData is the immutable configuration record both scheduler
// phases consume. All fields are read-only inputs; the solver never
// mutates them.
type DepartmentData struct {
	Years                   []Year
	ClassesPerYear          int
	Teachers                []Teacher
	Rooms                   []Room
	LabRooms                []Room
	SubjectsByYear          map[Year][]Subject
	CourseStructure         map[Subject]CourseStructure
	TeacherAssignments      map[Year]map[Subject]Teacher // lecture teachers
	LabTeacherAssignments   map[Year]map[Subject]Teacher // lab teachers
	TeacherAvailability     map[Teacher]map[Day][]Slot
}

// ClassesForYear returns the ordered class identifiers derived from a
// year's prefix and the configured class count, e.g. "TE1".."TE3".
func (d *DepartmentData) ClassesForYear(y Year) ([]Class, error) {
	prefix, ok := yearPrefix[y]
	if !ok {
		return nil, fmt.Errorf("unknown year prefix for %q", y)
	}
	classes := make([]Class, 0, d.ClassesPerYear)
	for i := 1; i <= d.ClassesPerYear; i++ {
		classes = append(classes, Class(fmt.Sprintf("%s%d", prefix, i)))
	}
	return classes, nil
}

// AllClasses returns every class across every configured year, in year
// order.
func (d *DepartmentData) AllClasses() ([]Class, error) {
	var out []Class
	for _, y := range d.Years {
		classes, err := d.ClassesForYear(y)
		if err != nil {
			return nil, err
		}
		out = append(out, classes...)
	}
	return out, nil
}

// YearOf recovers a class's year from its two-letter prefix.
func YearOf(c Class) (Year, error) {
	if len(c) < 3 {
		return "", fmt.Errorf("malformed class identifier %q", c)
	}
	switch c[:2] {
	case "SE":
		return SecondYear, nil
	case "TE":
		return ThirdYear, nil
	case "BE":
		return FourthYear, nil
	default:
		return "", fmt.Errorf("unknown year prefix %q in class %q", c[:2], c)
	}
}

// BatchesOf returns the fixed four batch identifiers for a class, e.g.
// "TE1" -> TE11..TE14.
func BatchesOf(c Class) []Batch {
	batches := make([]Batch, 0, BatchesPerClass)
	for i := 1; i <= BatchesPerClass; i++ {
		batches = append(batches, Batch(fmt.Sprintf("%s%d", c, i)))
	}
	return batches
}

// --- Subject-specific slot and room restrictions (spec §4.2/§4.3) ---

const (
	subjectAJP = Subject("AJP")
	subjectADE = Subject("ADE")
	subjectDC  = Subject("DC")
	subjectMNA = Subject("MNA")
)

// AllowedLabSlots returns the year- and subject-specific candidate lab
// start slots, per spec §4.2.
func AllowedLabSlots(tm *TimeModel, year Year, subject Subject) []Slot {
	switch {
	case subject == subjectAJP:
		return []Slot{"3:30-4:30"}
	case year == ThirdYear:
		return []Slot{"8:15-9:15"}
	case year == SecondYear:
		return []Slot{"10:30-11:30"}
	default:
		return tm.LabStarts()
	}
}

// AllowedLabRooms returns the subject-restricted lab room set, or the full
// lab room catalog when no restriction applies, per spec §4.2/I7.
func AllowedLabRooms(allLabRooms []Room, subject Subject) []Room {
	switch subject {
	case subjectADE, subjectDC:
		return []Room{"501"}
	case subjectMNA:
		return []Room{"504"}
	default:
		return allLabRooms
	}
}

// AllowedLectureSlots returns the year-specific subset of teaching slots a
// lecture may occupy, per spec §4.3.
func AllowedLectureSlots(tm *TimeModel, year Year) []Slot {
	all := tm.TeachingSlots()
	switch year {
	case ThirdYear:
		cut := Slot("3:30-4:30")
		out := make([]Slot, 0, len(all))
		for _, s := range all {
			out = append(out, s)
			if s == cut {
				break
			}
		}
		return out
	default:
		return all
	}
}

// PinnedLectureRoom returns the single lecture room assigned to a year,
// per spec glossary "Pinned room". SecondYear and ThirdYear each have one
// dedicated room; FourthYear falls back to the same convention.
func PinnedLectureRoom(year Year, rooms []Room) (Room, error) {
	idx := map[Year]int{SecondYear: 0, ThirdYear: 1, FourthYear: 2}[year]
	if idx >= len(rooms) {
		return "", fmt.Errorf("no pinned lecture room configured for %q", year)
	}
	return rooms[idx], nil
}
