package solver

import (
	"context"
	"fmt"

	"github.com/deptsched/timetable-api/internal/domain"
)

// LectureCandidate is one content-addressed lecture placement option for a
// single weekly occurrence of a class-subject (spec §9).
type LectureCandidate struct {
	Class        domain.Class
	Subject      domain.Subject
	LectureIndex int
	Day          domain.Day
	Slot         domain.Slot
	Teacher      domain.Teacher
	Room         domain.Room
}

func (c LectureCandidate) key() string {
	return fmt.Sprintf("lec|%s|%s|%d|%s|%s|%s|%s", c.Class, c.Subject, c.LectureIndex, c.Day, c.Slot, c.Teacher, c.Room)
}

// LectureScheduler builds and solves the lecture-phase CP-SAT model (spec
// §4.3), treating the solved lab schedule as fixed blocking input rather
// than a decision variable.
type LectureScheduler struct {
	tm     *domain.TimeModel
	data   *domain.DepartmentData
	labs   []domain.LabAssignment
	params Params

	model *Model
	vars  map[LectureCandidate]Literal

	blockedClasses  map[domain.Class]map[domain.Day]map[domain.Slot]bool
	blockedTeachers map[domain.Teacher]map[domain.Day]map[domain.Slot]bool
}

// NewLectureScheduler prepares a scheduler given the department
// configuration and the already-solved lab schedule.
func NewLectureScheduler(tm *domain.TimeModel, data *domain.DepartmentData, labs []domain.LabAssignment, params Params) *LectureScheduler {
	return &LectureScheduler{
		tm:     tm,
		data:   data,
		labs:   labs,
		params: params,

		blockedClasses:  domain.BlockedClassSlots(tm, labs),
		blockedTeachers: domain.BlockedTeacherSlots(tm, labs),
	}
}

// Candidates enumerates every legal lecture placement option for every
// class-subject requiring lectures, per spec §4.3's allowed-slot and
// pinned-room rules, with the lab-derived blocking sets already excluded.
func (s *LectureScheduler) Candidates() ([]LectureCandidate, error) {
	var out []LectureCandidate

	for _, year := range s.data.Years {
		classes, err := s.data.ClassesForYear(year)
		if err != nil {
			return nil, err
		}
		room, err := domain.PinnedLectureRoom(year, s.data.Rooms)
		if err != nil {
			return nil, err
		}
		slots := domain.AllowedLectureSlots(s.tm, year)

		for _, subject := range s.data.SubjectsByYear[year] {
			structure, ok := s.data.CourseStructure[subject]
			if !ok || structure.RequiredLectures == 0 {
				continue
			}
			teacher, ok := s.data.TeacherAssignments[year][subject]
			if !ok {
				return nil, fmt.Errorf("no lecture teacher for %s/%s", year, subject)
			}
			availability := s.data.TeacherAvailability[teacher]

			for _, class := range classes {
				for idx := 0; idx < structure.RequiredLectures; idx++ {
					for _, day := range domain.Days {
						if s.blockedClasses[class][day] != nil && allBlocked(slots, s.blockedClasses[class][day]) {
							continue
						}
						for _, slot := range slots {
							if s.blockedClasses[class][day][slot] {
								continue
							}
							if s.blockedTeachers[teacher][day][slot] {
								continue
							}
							if !slotIn(availability[day], slot) {
								continue
							}
							out = append(out, LectureCandidate{
								Class: class, Subject: subject, LectureIndex: idx,
								Day: day, Slot: slot, Teacher: teacher, Room: room,
							})
						}
					}
				}
			}
		}
	}
	return out, nil
}

func allBlocked(slots []domain.Slot, blocked map[domain.Slot]bool) bool {
	for _, s := range slots {
		if !blocked[s] {
			return false
		}
	}
	return true
}

// Build constructs decision variables and posts every hard constraint and
// the weighted objective from spec §4.3.
func (s *LectureScheduler) Build() error {
	candidates, err := s.Candidates()
	if err != nil {
		return err
	}

	s.model = NewModel()
	s.vars = make(map[LectureCandidate]Literal, len(candidates))
	for _, c := range candidates {
		s.vars[c] = s.model.NewBoolVar(c.key())
	}

	s.postExactCount(candidates)
	s.postExclusivity(candidates)
	s.postObjective(candidates)
	return nil
}

// postExactCount enforces spec I5/§4.3 constraint 1: every class-subject
// requiring lectures gets exactly RequiredLectures weekly occurrences, one
// variable true per LectureIndex.
func (s *LectureScheduler) postExactCount(candidates []LectureCandidate) {
	type key struct {
		Class        domain.Class
		Subject      domain.Subject
		LectureIndex int
	}
	groups := make(map[key][]Literal)
	for _, c := range candidates {
		k := key{c.Class, c.Subject, c.LectureIndex}
		groups[k] = append(groups[k], s.vars[c])
	}
	for _, lits := range groups {
		s.model.AddExactly(lits, 1)
	}
}

// postExclusivity enforces spec §4.3 constraints 2-6: a class, a teacher,
// and a pinned lecture room can each host at most one occurrence per
// (day, slot), and the same class-subject cannot recur more than once on
// the same day across its distinct weekly occurrences.
func (s *LectureScheduler) postExclusivity(candidates []LectureCandidate) {
	type daySlot struct {
		Day  domain.Day
		Slot domain.Slot
	}
	byClassSlot := make(map[struct {
		Class domain.Class
		daySlot
	}][]Literal)
	byTeacherSlot := make(map[struct {
		Teacher domain.Teacher
		daySlot
	}][]Literal)
	byRoomSlot := make(map[struct {
		Room domain.Room
		daySlot
	}][]Literal)
	type classSubjectDay struct {
		Class   domain.Class
		Subject domain.Subject
		Day     domain.Day
	}
	byClassSubjectDay := make(map[classSubjectDay][]Literal)

	for _, c := range candidates {
		ds := daySlot{c.Day, c.Slot}
		lit := s.vars[c]

		ck := struct {
			Class domain.Class
			daySlot
		}{c.Class, ds}
		byClassSlot[ck] = append(byClassSlot[ck], lit)

		tk := struct {
			Teacher domain.Teacher
			daySlot
		}{c.Teacher, ds}
		byTeacherSlot[tk] = append(byTeacherSlot[tk], lit)

		rk := struct {
			Room domain.Room
			daySlot
		}{c.Room, ds}
		byRoomSlot[rk] = append(byRoomSlot[rk], lit)

		csk := classSubjectDay{c.Class, c.Subject, c.Day}
		byClassSubjectDay[csk] = append(byClassSubjectDay[csk], lit)
	}

	for _, lits := range byClassSlot {
		s.model.AddAtMostOne(lits)
	}
	for _, lits := range byTeacherSlot {
		s.model.AddAtMostOne(lits)
	}
	for _, lits := range byRoomSlot {
		s.model.AddAtMostOne(lits)
	}
	for _, lits := range byClassSubjectDay {
		s.model.AddAtMostOne(lits)
	}
}

// postObjective posts the four-term weighted objective from spec §4.3:
// interior-gap penalty (50), post-break-idle penalty (100), same-day spread
// penalty (20), and late-slot penalty (2*slot_index).
func (s *LectureScheduler) postObjective(candidates []LectureCandidate) {
	obj := s.model.NewObjective()

	activity := s.activityIndex(candidates)
	used := s.usedIndicators(activity)

	obj.AddAll(s.gapLiterals(used), 50)
	obj.AddAll(s.postBreakIdleLiterals(activity), 100)
	obj.AddAll(s.spreadLiterals(used), 20)
	obj.AddWeighted(s.lateSlotTerms(candidates))

	s.model.Minimize(obj)
}

// lecClassDay keys the per-class, per-day combined activity indicators the
// gap, post-break-idle, and spread objective terms all share.
type lecClassDay struct {
	Class domain.Class
	Day   domain.Day
}

// activityIndex returns, per (class, day, slot), every literal whose
// disjunction is the combined activity indicator a_i spec §4.3 defines: the
// OR of (a) every lecture candidate variable at that slot and (b) a
// constant-true indicator for every slot an already-placed lab occupies.
// Without (b), a class kept idle by its own lab would look like a free gap
// to the objective instead of a busy one.
func (s *LectureScheduler) activityIndex(candidates []LectureCandidate) map[lecClassDay]map[domain.Slot][]Literal {
	idx := make(map[lecClassDay]map[domain.Slot][]Literal)
	touch := func(cd lecClassDay) map[domain.Slot][]Literal {
		if idx[cd] == nil {
			idx[cd] = make(map[domain.Slot][]Literal)
		}
		return idx[cd]
	}
	for _, c := range candidates {
		m := touch(lecClassDay{c.Class, c.Day})
		m[c.Slot] = append(m[c.Slot], s.vars[c])
	}
	for _, lab := range s.labs {
		cd := lecClassDay{lab.Class, lab.Day}
		m := touch(cd)
		for _, slot := range lab.Slots(s.tm) {
			m[slot] = append(m[slot], s.model.TrueLiteral(fmt.Sprintf("labpresent|%s|%s|%s", cd.Class, cd.Day, slot)))
		}
	}
	return idx
}

// usedIndicators reifies, per (class, day) and teaching-slot index, whether
// that slot is occupied at all (lecture or lab), for use by the gap and
// spread terms below.
func (s *LectureScheduler) usedIndicators(activity map[lecClassDay]map[domain.Slot][]Literal) map[lecClassDay]map[int]Literal {
	teaching := s.tm.TeachingSlots()
	out := make(map[lecClassDay]map[int]Literal, len(activity))
	for cd, bySlot := range activity {
		idx := make(map[int]Literal)
		for i, slot := range teaching {
			lits := bySlot[slot]
			if len(lits) == 0 {
				continue
			}
			idx[i] = s.model.ReifyOr(fmt.Sprintf("lecused|%s|%s|%s", cd.Class, cd.Day, slot), lits)
		}
		out[cd] = idx
	}
	return out
}

// gapLiterals reifies, per (class, day), whether a teaching slot sits empty
// between two occupied slots that same day — an interior gap in the
// class's lecture day, counting both lectures and already-placed labs as
// occupying the day.
func (s *LectureScheduler) gapLiterals(used map[lecClassDay]map[int]Literal) []Literal {
	teaching := s.tm.TeachingSlots()
	n := len(teaching)

	var gaps []Literal
	for cd, idx := range used {
		for i := 1; i < n-1; i++ {
			prev, prevOK := idx[i-1]
			mid, midOK := idx[i]
			next, nextOK := idx[i+1]
			if !prevOK || !nextOK {
				continue
			}
			lits := []Literal{prev, next}
			if midOK {
				lits = append(lits, mid.Not())
			}
			gap := s.model.ReifyAnd(fmt.Sprintf("lecgap|%s|%s|%d", cd.Class, cd.Day, i), lits)
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

// postBreakIdleLiterals reifies, per (class, day, break), whether the
// teaching slot immediately following a break is left empty while the
// class has any activity that day — wasting the post-break period.
// "Activity" includes already-placed labs, not only lectures. A break whose
// following slot has no lecture candidate and no lab is skipped.
func (s *LectureScheduler) postBreakIdleLiterals(activity map[lecClassDay]map[domain.Slot][]Literal) []Literal {
	teaching := s.tm.TeachingSlots()

	var idle []Literal
	for cd, bySlot := range activity {
		var all []Literal
		for _, slot := range teaching {
			all = append(all, bySlot[slot]...)
		}
		if len(all) == 0 {
			continue
		}
		laterUsed := s.model.ReifyOr(fmt.Sprintf("lecany|%s|%s", cd.Class, cd.Day), all)
		for _, first := range s.tm.FirstAfterBreak() {
			lits := bySlot[first]
			if len(lits) == 0 {
				continue
			}
			empty := s.model.ReifyOr(fmt.Sprintf("lecafter|%s|%s|%s", cd.Class, cd.Day, first), lits)
			penalty := s.model.ReifyAnd(fmt.Sprintf("lecidle|%s|%s|%s", cd.Class, cd.Day, first), []Literal{laterUsed, empty.Not()})
			idle = append(idle, penalty)
		}
	}
	return idle
}

// spreadLiterals penalizes a class having combined activity at two
// teaching-slot indices 4 to 6 apart within the same day, the spread
// signal spec §4.3 defines over the per-(class, day) activity indicator.
func (s *LectureScheduler) spreadLiterals(used map[lecClassDay]map[int]Literal) []Literal {
	teaching := s.tm.TeachingSlots()
	n := len(teaching)

	var penalties []Literal
	for cd, idx := range used {
		for i := 0; i < n; i++ {
			ui, ok := idx[i]
			if !ok {
				continue
			}
			for j := i + 4; j <= i+6 && j < n; j++ {
				uj, ok := idx[j]
				if !ok {
					continue
				}
				name := fmt.Sprintf("lecspread|%s|%s|%d|%d", cd.Class, cd.Day, i, j)
				penalties = append(penalties, s.model.ReifyAnd(name, []Literal{ui, uj}))
			}
		}
	}
	return penalties
}

// lateSlotTerms weights every candidate's variable by twice its slot's
// position among the day's teaching slots, penalizing later occurrences
// more than earlier ones instead of only flagging the day's final slot.
func (s *LectureScheduler) lateSlotTerms(candidates []LectureCandidate) []WeightedLiteral {
	var terms []WeightedLiteral
	for _, c := range candidates {
		idx, ok := s.tm.Index(c.Slot)
		if !ok {
			continue
		}
		terms = append(terms, WeightedLiteral{Lit: s.vars[c], Weight: 2 * int64(idx)})
	}
	return terms
}

// Run builds, solves, and extracts the lecture schedule in one call.
func (s *LectureScheduler) Run(ctx context.Context) ([]domain.LectureAssignment, Status, error) {
	if err := s.Build(); err != nil {
		return nil, StatusModelInvalid, err
	}
	status, sol := s.model.Solve(ctx, s.params)
	if !status.Solved() {
		return nil, status, nil
	}
	return s.extract(sol), status, nil
}

func (s *LectureScheduler) extract(sol *Solution) []domain.LectureAssignment {
	var out []domain.LectureAssignment
	for c, lit := range s.vars {
		if sol.Value(lit) {
			out = append(out, domain.LectureAssignment{
				Class: c.Class, Subject: c.Subject, LectureIndex: c.LectureIndex,
				Day: c.Day, Slot: c.Slot, Teacher: c.Teacher, LectureRoom: c.Room,
			})
		}
	}
	return out
}
