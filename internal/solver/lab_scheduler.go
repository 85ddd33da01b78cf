package solver

import (
	"context"
	"fmt"

	"github.com/deptsched/timetable-api/internal/domain"
)

// LabCandidate is one content-addressed lab placement option: a batch's
// subject starting at a given slot, taught by a given teacher, in a given
// lab room (spec §9 "variable key tuples").
type LabCandidate struct {
	Class   domain.Class
	Subject domain.Subject
	Batch   domain.Batch
	Day     domain.Day
	Start   domain.Slot
	Teacher domain.Teacher
	Room    domain.Room
}

func (c LabCandidate) key() string {
	return fmt.Sprintf("lab|%s|%s|%s|%s|%s|%s|%s", c.Class, c.Subject, c.Batch, c.Day, c.Start, c.Teacher, c.Room)
}

// LabScheduler builds and solves the lab-phase CP-SAT model (spec §4.2).
type LabScheduler struct {
	tm     *domain.TimeModel
	data   *domain.DepartmentData
	params Params

	model *Model
	start map[LabCandidate]Literal // true iff this lab starts here
	cont  map[LabCandidate]Literal // the session's second slot; forced true by start => cont
}

// NewLabScheduler prepares a scheduler for one department configuration.
func NewLabScheduler(tm *domain.TimeModel, data *domain.DepartmentData, params Params) *LabScheduler {
	return &LabScheduler{tm: tm, data: data, params: params}
}

// Candidates enumerates every legal lab placement option for every
// batch-subject requiring a lab, per spec §4.2's allowed-slot and
// allowed-room restrictions. Pure and independent of the CP-SAT model, so
// it is unit-testable without a solver.
func (s *LabScheduler) Candidates() ([]LabCandidate, error) {
	var out []LabCandidate

	for _, year := range s.data.Years {
		classes, err := s.data.ClassesForYear(year)
		if err != nil {
			return nil, err
		}
		for _, subject := range s.data.SubjectsByYear[year] {
			structure, ok := s.data.CourseStructure[subject]
			if !ok || structure.RequiredLabs == 0 {
				continue
			}
			teacher, ok := s.data.LabTeacherAssignments[year][subject]
			if !ok {
				return nil, fmt.Errorf("no lab teacher for %s/%s", year, subject)
			}
			starts := domain.AllowedLabSlots(s.tm, year, subject)
			rooms := domain.AllowedLabRooms(s.data.LabRooms, subject)
			availability := s.data.TeacherAvailability[teacher]

			for _, class := range classes {
				for _, batch := range domain.BatchesOf(class) {
					for _, day := range domain.Days {
						for _, start := range starts {
							if !s.tm.IsValidLabStart(start) {
								continue
							}
							next, _ := s.tm.Consecutive(start)
							if !slotIn(availability[day], start) || !slotIn(availability[day], next) {
								continue
							}
							for _, room := range rooms {
								out = append(out, LabCandidate{
									Class: class, Subject: subject, Batch: batch,
									Day: day, Start: start, Teacher: teacher, Room: room,
								})
							}
						}
					}
				}
			}
		}
	}
	return out, nil
}

func slotIn(slots []domain.Slot, target domain.Slot) bool {
	for _, s := range slots {
		if s == target {
			return true
		}
	}
	return false
}

// Build constructs decision variables and posts every hard constraint and
// the weighted objective from spec §4.2.
func (s *LabScheduler) Build() error {
	candidates, err := s.Candidates()
	if err != nil {
		return err
	}

	s.model = NewModel()
	s.start = make(map[LabCandidate]Literal, len(candidates))
	s.cont = make(map[LabCandidate]Literal, len(candidates))

	for _, c := range candidates {
		s.start[c] = s.model.NewBoolVar(c.key())
		s.cont[c] = s.model.NewBoolVar(c.key() + "|cont")
		s.model.AddImplication(s.start[c], s.cont[c])
	}

	s.postExactCount(candidates)
	s.postRoomTeacherBatchClassExclusivity(candidates)
	s.postObjective(candidates)
	return nil
}

// postExactCount enforces spec I1/§4.2 constraint 1: every batch-subject
// requiring labs gets exactly RequiredLabs 2-slot sessions across the week.
func (s *LabScheduler) postExactCount(candidates []LabCandidate) {
	type key struct {
		Class   domain.Class
		Subject domain.Subject
		Batch   domain.Batch
	}
	groups := make(map[key][]Literal)
	for _, c := range candidates {
		k := key{c.Class, c.Subject, c.Batch}
		groups[k] = append(groups[k], s.start[c])
	}
	for k, lits := range groups {
		structure := s.data.CourseStructure[k.Subject]
		s.model.AddExactly(lits, int64(structure.RequiredLabs))
	}
}

// occupant is one candidate's contribution to a single (day, slot) of
// occupancy, carrying whichever of start/cont the candidate activates at
// that slot — the "twinning" link that lets resource exclusivity be
// expressed as flat per-slot sums instead of interval constraints.
type occupant struct {
	Candidate LabCandidate
	Lit       Literal
}

func (s *LabScheduler) occupancyIndex(candidates []LabCandidate) map[domain.Day]map[domain.Slot][]occupant {
	idx := make(map[domain.Day]map[domain.Slot][]occupant)
	add := func(day domain.Day, slot domain.Slot, o occupant) {
		if idx[day] == nil {
			idx[day] = make(map[domain.Slot][]occupant)
		}
		idx[day][slot] = append(idx[day][slot], o)
	}
	for _, c := range candidates {
		next, _ := s.tm.Consecutive(c.Start)
		add(c.Day, c.Start, occupant{c, s.start[c]})
		add(c.Day, next, occupant{c, s.cont[c]})
	}
	return idx
}

// postRoomTeacherBatchClassExclusivity posts spec §4.2 constraints 3-5: a
// lab room, a teacher, and a batch (and hence its class) can each host at
// most one occupancy per (day, slot).
func (s *LabScheduler) postRoomTeacherBatchClassExclusivity(candidates []LabCandidate) {
	idx := s.occupancyIndex(candidates)

	for _, dayOcc := range idx {
		for _, occs := range dayOcc {
			byRoom := make(map[domain.Room][]Literal)
			byTeacher := make(map[domain.Teacher][]Literal)
			byBatch := make(map[domain.Batch][]Literal)
			byClass := make(map[domain.Class][]Literal)
			for _, o := range occs {
				byRoom[o.Candidate.Room] = append(byRoom[o.Candidate.Room], o.Lit)
				byTeacher[o.Candidate.Teacher] = append(byTeacher[o.Candidate.Teacher], o.Lit)
				byBatch[o.Candidate.Batch] = append(byBatch[o.Candidate.Batch], o.Lit)
				byClass[o.Candidate.Class] = append(byClass[o.Candidate.Class], o.Lit)
			}
			for _, lits := range byRoom {
				s.model.AddAtMostOne(lits)
			}
			for _, lits := range byTeacher {
				s.model.AddAtMostOne(lits)
			}
			for _, lits := range byBatch {
				s.model.AddAtMostOne(lits)
			}
			for _, lits := range byClass {
				s.model.AddAtMostOne(lits)
			}
		}
	}
}

// postObjective posts the four-term weighted objective from spec §4.2:
// interior-gap penalty (10), late-start penalty (2*slot_index), room-diversity
// reward (-5), and same-day same-room subject-conflict penalty (100).
func (s *LabScheduler) postObjective(candidates []LabCandidate) {
	obj := s.model.NewObjective()

	obj.AddAll(s.gapLiterals(candidates), 10)
	obj.AddWeighted(s.lateStartTerms(candidates))
	obj.AddAll(s.roomDiversityLiterals(candidates), -5)
	obj.AddAll(s.roomConflictLiterals(candidates), 100)

	s.model.Minimize(obj)
}

// gapLiterals reifies, per (class, batch, day) and each interior teaching
// slot index, whether that slot is left empty of lab occupancy while the
// slots immediately before and after it are both occupied by the batch —
// an interior gap in the batch's lab day. Only indices where all three
// slots have candidates contribute.
func (s *LabScheduler) gapLiterals(candidates []LabCandidate) []Literal {
	teaching := s.tm.TeachingSlots()

	type classBatchDay struct {
		Class domain.Class
		Batch domain.Batch
		Day   domain.Day
	}
	bySlot := make(map[classBatchDay]map[domain.Slot][]Literal)
	for _, c := range candidates {
		key := classBatchDay{c.Class, c.Batch, c.Day}
		if bySlot[key] == nil {
			bySlot[key] = make(map[domain.Slot][]Literal)
		}
		next, _ := s.tm.Consecutive(c.Start)
		bySlot[key][c.Start] = append(bySlot[key][c.Start], s.start[c])
		bySlot[key][next] = append(bySlot[key][next], s.cont[c])
	}

	var gaps []Literal
	for key, slots := range bySlot {
		used := make(map[domain.Slot]Literal)
		for _, slot := range teaching {
			lits := slots[slot]
			if len(lits) == 0 {
				continue
			}
			used[slot] = s.model.ReifyOr(fmt.Sprintf("labused|%s|%s|%s|%s", key.Class, key.Batch, key.Day, slot), lits)
		}
		for i := 1; i < len(teaching)-1; i++ {
			prev, prevOK := used[teaching[i-1]]
			mid, midOK := used[teaching[i]]
			next, nextOK := used[teaching[i+1]]
			if !prevOK || !midOK || !nextOK {
				continue
			}
			gap := s.model.ReifyAnd(fmt.Sprintf("labgap|%s|%s|%s|%s", key.Class, key.Batch, key.Day, teaching[i]), []Literal{prev, next, mid.Not()})
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

// lateStartTerms weights every candidate's start literal by twice its start
// slot's position among the day's teaching slots, penalizing later starts
// more than earlier ones instead of only flagging the final block.
func (s *LabScheduler) lateStartTerms(candidates []LabCandidate) []WeightedLiteral {
	var terms []WeightedLiteral
	for _, c := range candidates {
		idx, ok := s.tm.Index(c.Start)
		if !ok {
			continue
		}
		terms = append(terms, WeightedLiteral{Lit: s.start[c], Weight: 2 * int64(idx)})
	}
	return terms
}

// roomDiversityLiterals reifies, per lab room, whether it is used at all
// during the week. A negative objective weight rewards spreading sessions
// across the available lab rooms instead of clustering in one.
func (s *LabScheduler) roomDiversityLiterals(candidates []LabCandidate) []Literal {
	byRoom := make(map[domain.Room][]Literal)
	for _, c := range candidates {
		byRoom[c.Room] = append(byRoom[c.Room], s.start[c])
	}
	var used []Literal
	for room, lits := range byRoom {
		used = append(used, s.model.ReifyOr("labroomused|"+string(room), lits))
	}
	return used
}

// roomConflictLiterals reifies every pair of same-day, same-room
// candidates teaching different subjects, penalizing rooms that turn over
// between subjects within a single day.
func (s *LabScheduler) roomConflictLiterals(candidates []LabCandidate) []Literal {
	type roomDay struct {
		Room domain.Room
		Day  domain.Day
	}
	byRoomDay := make(map[roomDay][]LabCandidate)
	for _, c := range candidates {
		k := roomDay{c.Room, c.Day}
		byRoomDay[k] = append(byRoomDay[k], c)
	}

	var conflicts []Literal
	for k, group := range byRoomDay {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].Subject == group[j].Subject {
					continue
				}
				name := fmt.Sprintf("labroomconflict|%s|%s|%d|%d", k.Room, k.Day, i, j)
				conflicts = append(conflicts, s.model.ReifyAnd(name, []Literal{s.start[group[i]], s.start[group[j]]}))
			}
		}
	}
	return conflicts
}

// Run builds, solves, and extracts the lab schedule in one call.
func (s *LabScheduler) Run(ctx context.Context) ([]domain.LabAssignment, Status, error) {
	if err := s.Build(); err != nil {
		return nil, StatusModelInvalid, err
	}
	status, sol := s.model.Solve(ctx, s.params)
	if !status.Solved() {
		return nil, status, nil
	}
	return s.extract(sol), status, nil
}

func (s *LabScheduler) extract(sol *Solution) []domain.LabAssignment {
	var out []domain.LabAssignment
	for c, lit := range s.start {
		if sol.Value(lit) {
			out = append(out, domain.LabAssignment{
				Class: c.Class, Subject: c.Subject, Batch: c.Batch,
				Day: c.Day, StartSlot: c.Start, Teacher: c.Teacher, LabRoom: c.Room,
			})
		}
	}
	return out
}
