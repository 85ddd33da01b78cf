// Package view assembles the solved lab and lecture assignments into the
// combined per-class and per-teacher timetable grids described in spec
// §4.4. The xlsx exporter renders the class grids; the HTTP run endpoints
// return assignment lists, not grids.
package view

import (
	"github.com/deptsched/timetable-api/internal/domain"
)

// CellKind distinguishes what occupies one grid cell.
type CellKind string

const (
	CellEmpty   CellKind = "empty"
	CellBreak   CellKind = "break"
	CellLecture CellKind = "lecture"
	CellLab     CellKind = "lab"
)

// Cell is one (day, slot) entry in a class or teacher grid.
type Cell struct {
	Kind    CellKind
	Subject domain.Subject
	Teacher domain.Teacher
	Room    domain.Room
	Class   domain.Class // populated only in teacher grids
	Batch   domain.Batch // populated only for CellLab
	// Continued marks a lab cell occupying the second of its two slots, so
	// renderers can merge or visually distinguish the pair (spec §4.4).
	Continued bool
}

// Grid is one entity's (class or teacher) full week, indexed by day then
// slot.
type Grid struct {
	Entity string
	Rows   map[domain.Day]map[domain.Slot]Cell
}

func newGrid(entity string, tm *domain.TimeModel) *Grid {
	g := &Grid{Entity: entity, Rows: make(map[domain.Day]map[domain.Slot]Cell)}
	for _, d := range domain.Days {
		g.Rows[d] = make(map[domain.Slot]Cell)
		for _, s := range tm.AllSlots() {
			kind := CellEmpty
			if tm.IsBreak(s) {
				kind = CellBreak
			}
			g.Rows[d][s] = Cell{Kind: kind}
		}
	}
	return g
}

// ClassGrids builds one combined lab+lecture grid per class, merging every
// batch's lab occupancy and every lecture occurrence onto the class's
// single week view.
func ClassGrids(tm *domain.TimeModel, assignments domain.AssignmentSet) map[domain.Class]*Grid {
	grids := make(map[domain.Class]*Grid)
	get := func(c domain.Class) *Grid {
		if grids[c] == nil {
			grids[c] = newGrid(string(c), tm)
		}
		return grids[c]
	}

	for _, lab := range assignments.Labs {
		g := get(lab.Class)
		slots := lab.Slots(tm)
		g.Rows[lab.Day][slots[0]] = Cell{
			Kind: CellLab, Subject: lab.Subject, Teacher: lab.Teacher,
			Room: lab.LabRoom, Batch: lab.Batch,
		}
		g.Rows[lab.Day][slots[1]] = Cell{
			Kind: CellLab, Subject: lab.Subject, Teacher: lab.Teacher,
			Room: lab.LabRoom, Batch: lab.Batch, Continued: true,
		}
	}

	for _, lec := range assignments.Lectures {
		g := get(lec.Class)
		g.Rows[lec.Day][lec.Slot] = Cell{
			Kind: CellLecture, Subject: lec.Subject, Teacher: lec.Teacher, Room: lec.LectureRoom,
		}
	}

	return grids
}

// TeacherGrids builds one combined grid per teacher across every class and
// batch they are assigned to.
func TeacherGrids(tm *domain.TimeModel, assignments domain.AssignmentSet) map[domain.Teacher]*Grid {
	grids := make(map[domain.Teacher]*Grid)
	get := func(t domain.Teacher) *Grid {
		if grids[t] == nil {
			grids[t] = newGrid(string(t), tm)
		}
		return grids[t]
	}

	for _, lab := range assignments.Labs {
		g := get(lab.Teacher)
		slots := lab.Slots(tm)
		g.Rows[lab.Day][slots[0]] = Cell{
			Kind: CellLab, Subject: lab.Subject, Class: lab.Class, Room: lab.LabRoom, Batch: lab.Batch,
		}
		g.Rows[lab.Day][slots[1]] = Cell{
			Kind: CellLab, Subject: lab.Subject, Class: lab.Class, Room: lab.LabRoom,
			Batch: lab.Batch, Continued: true,
		}
	}

	for _, lec := range assignments.Lectures {
		g := get(lec.Teacher)
		g.Rows[lec.Day][lec.Slot] = Cell{
			Kind: CellLecture, Subject: lec.Subject, Class: lec.Class, Room: lec.LectureRoom,
		}
	}

	return grids
}
