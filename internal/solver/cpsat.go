// Package solver builds and solves the two 0/1 integer programs described
// in spec §4.2 (lab phase) and §4.3 (lecture phase) on top of the
// mixed-integer solver in github.com/draffensperger/golp (lp_solve).
// Nothing above this file touches *golp.LP directly: every hard constraint
// and every objective term the two scheduler phases post goes through the
// small builder surface below — fresh booleans, linear cardinality rows,
// implications, and reified conjunction/disjunction auxiliaries — the same
// vocabulary a CP-SAT formulation would use, translated here into rows of
// an integer program.
package solver

import (
	"context"
	"time"

	"github.com/draffensperger/golp"
)

// Literal is a 0/1 decision variable or its negation. Negation is carried
// as a flag rather than a distinct column: wherever a negated literal
// contributes to a row, its value is substituted as (1 - x) and the
// resulting constant folds into that row's bound.
type Literal struct {
	col int
	neg bool
}

// Not returns the logical negation of l.
func (l Literal) Not() Literal {
	return Literal{col: l.col, neg: !l.neg}
}

// term is l's contribution to a linear row: coefficient on the underlying
// column plus whatever constant the negation introduces.
func (l Literal) term() (coeff float64, constant float64) {
	if l.neg {
		return -1, 1
	}
	return 1, 0
}

func exprOf(lits []Literal) (map[int]float64, float64) {
	coeffs := make(map[int]float64, len(lits))
	var constant float64
	for _, l := range lits {
		c, k := l.term()
		coeffs[l.col] += c
		constant += k
	}
	return coeffs, constant
}

type row struct {
	coeffs map[int]float64
	ct     golp.ConstrType
	rhs    float64
}

// Model is the narrow model-building surface the scheduler phases depend
// on. It accumulates variables, rows, and a single objective in plain Go
// structures and only materializes the real lp_solve model at Solve time,
// once every column the two phases will ever declare is known.
type Model struct {
	names []string
	rows  []row
	obj   map[int]float64
}

// NewModel allocates an empty model.
func NewModel() *Model {
	return &Model{obj: make(map[int]float64)}
}

// NewBoolVar allocates a fresh 0/1 decision variable.
func (m *Model) NewBoolVar(name string) Literal {
	m.names = append(m.names, name)
	return Literal{col: len(m.names)}
}

// TrueLiteral allocates a variable fixed true by a unit equality
// constraint. Used to fold already-decided facts (a lab occupying a slot
// the lecture phase only observes, never assigns) into the same reified
// activity indicators lecture candidates contribute to.
func (m *Model) TrueLiteral(name string) Literal {
	lit := m.NewBoolVar(name)
	m.AddExactly([]Literal{lit}, 1)
	return lit
}

func (m *Model) addRow(coeffs map[int]float64, ct golp.ConstrType, rhs float64) {
	if len(coeffs) == 0 {
		return
	}
	m.rows = append(m.rows, row{coeffs: coeffs, ct: ct, rhs: rhs})
}

// AddExactly posts sum(lits) == n (spec I1, I5).
func (m *Model) AddExactly(lits []Literal, n int64) {
	if len(lits) == 0 {
		return
	}
	coeffs, constant := exprOf(lits)
	m.addRow(coeffs, golp.EQ, float64(n)-constant)
}

// AddAtMostOne posts sum(lits) <= 1 (room/teacher/batch/class exclusivity).
func (m *Model) AddAtMostOne(lits []Literal) {
	if len(lits) == 0 {
		return
	}
	coeffs, constant := exprOf(lits)
	m.addRow(coeffs, golp.LE, 1-constant)
}

// AddNone posts sum(lits) == 0, used to hard-block unavailable slots and
// lab/lecture disjointness (spec I4, I6).
func (m *Model) AddNone(lits []Literal) {
	if len(lits) == 0 {
		return
	}
	coeffs, constant := exprOf(lits)
	m.addRow(coeffs, golp.EQ, -constant)
}

// AddImplication posts a => b, the twinning constraint for 2-slot lab
// occupancy (spec §4.2 constraint 2, §9): value(a) - value(b) <= 0.
func (m *Model) AddImplication(a, b Literal) {
	ca, ka := exprOf([]Literal{a})
	cb, kb := exprOf([]Literal{b})
	coeffs := make(map[int]float64, len(ca)+len(cb))
	for col, v := range ca {
		coeffs[col] += v
	}
	for col, v := range cb {
		coeffs[col] -= v
	}
	m.addRow(coeffs, golp.LE, kb-ka)
}

// ReifyAnd returns an auxiliary literal z constrained so that z == 1 iff
// every literal in lits is true: z <= value(l_i) for each i, and
// sum(value(l_i)) - z <= len(lits)-1.
func (m *Model) ReifyAnd(name string, lits []Literal) Literal {
	z := m.NewBoolVar(name)
	for _, l := range lits {
		cl, kl := exprOf([]Literal{l})
		coeffs := map[int]float64{z.col: 1}
		for col, v := range cl {
			coeffs[col] -= v
		}
		m.addRow(coeffs, golp.LE, kl)
	}
	all, constant := exprOf(lits)
	coeffs := make(map[int]float64, len(all)+1)
	for col, v := range all {
		coeffs[col] += v
	}
	coeffs[z.col] -= 1
	m.addRow(coeffs, golp.LE, float64(len(lits)-1)-constant)
	return z
}

// ReifyOr returns an auxiliary literal z constrained so that z == 1 iff at
// least one literal in lits is true: z >= value(l_i) for each i, and
// z <= sum(value(l_i)).
func (m *Model) ReifyOr(name string, lits []Literal) Literal {
	z := m.NewBoolVar(name)
	for _, l := range lits {
		cl, kl := exprOf([]Literal{l})
		coeffs := map[int]float64{z.col: 1}
		for col, v := range cl {
			coeffs[col] -= v
		}
		m.addRow(coeffs, golp.GE, kl)
	}
	all, constant := exprOf(lits)
	coeffs := make(map[int]float64, len(all)+1)
	for col, v := range all {
		coeffs[col] -= v
	}
	coeffs[z.col] += 1
	m.addRow(coeffs, golp.LE, constant)
	return z
}

// Objective accumulates weighted terms for the single linear minimization
// objective each phase posts once, after all constraints.
type Objective struct {
	model *Model
}

// NewObjective starts an empty weighted-sum objective tied to m.
func (m *Model) NewObjective() *Objective {
	return &Objective{model: m}
}

// Add accumulates weight * value(lit) into the objective. A zero weight or
// nil-column literal is a no-op so callers can unconditionally call Add in
// a loop. The constant a negated literal contributes is dropped: it shifts
// the objective value but never the argmin.
func (o *Objective) Add(lit Literal, weight int64) {
	if weight == 0 || lit.col == 0 {
		return
	}
	sign := 1.0
	if lit.neg {
		sign = -1
	}
	o.model.obj[lit.col] += sign * float64(weight)
}

// AddAll accumulates weight * value(lit) for every literal in lits.
func (o *Objective) AddAll(lits []Literal, weight int64) {
	for _, l := range lits {
		o.Add(l, weight)
	}
}

// WeightedLiteral pairs a literal with its own per-term objective weight,
// for objective components the spec weights individually rather than
// flatly (e.g. 2*slot_index(...) earliness terms).
type WeightedLiteral struct {
	Lit    Literal
	Weight int64
}

// AddWeighted accumulates each pair's own weight, rather than one shared
// weight across the whole slice.
func (o *Objective) AddWeighted(terms []WeightedLiteral) {
	for _, t := range terms {
		o.Add(t.Lit, t.Weight)
	}
}

// Minimize records o as the model's minimization target.
func (m *Model) Minimize(o *Objective) {
	// Objective terms already accumulate directly into m.obj via Add/AddAll,
	// so Minimize is the explicit marker that posting is complete; nothing
	// further to copy.
}

// Status mirrors the solve outcome relevant to spec §7's failure taxonomy.
type Status int

const (
	StatusUnknown Status = iota
	StatusModelInvalid
	StatusInfeasible
	StatusFeasible
	StatusOptimal
)

// Solved reports whether a status counts as a usable solution (spec §4.2
// "Failure semantics": neither OPTIMAL nor FEASIBLE is a hard failure).
func (s Status) Solved() bool {
	return s == StatusOptimal || s == StatusFeasible
}

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// Params configures the branch-and-bound search per spec §5: a wall-clock
// timeout and a pinned seed for determinism (spec §9). lp_solve's
// branch-and-bound is single-threaded, so Workers has no effect here; it is
// kept on Params so callers and config (cfg.Solver.Workers) don't need to
// know which backend is in use.
type Params struct {
	Workers int
	Timeout time.Duration
	Seed    int64
}

// DefaultParams returns the spec's default search configuration (16
// workers, 120s timeout). Workers is retained for interface parity; only
// Timeout and Seed affect the lp_solve backend.
func DefaultParams() Params {
	return Params{Workers: 16, Timeout: 120 * time.Second, Seed: 1}
}

// Solve runs the branch-and-bound search to completion or until params.Timeout
// elapses. A SUBOPTIMAL outcome (a solution found, optimality not proven)
// is returned as StatusFeasible with that solution; every outcome other
// than OPTIMAL or SUBOPTIMAL returns no solution, so no partial assignment
// is surfaced (spec §5 "Cancellation"). ctx cancellation is
// honored on a best-effort basis: lp_solve itself has no external stop
// hook, so a cancelled ctx is only observed between Solve calls, never
// during one already in flight.
func (m *Model) Solve(ctx context.Context, params Params) (Status, *Solution) {
	if err := ctx.Err(); err != nil {
		return StatusUnknown, nil
	}

	lp := golp.NewLP(0, len(m.names))
	for col := 1; col <= len(m.names); col++ {
		lp.SetInt(col, true)
		lp.SetBounds(col, 0, 1)
		lp.SetColName(col, m.names[col-1])
	}
	for _, r := range m.rows {
		lp.AddConstraint(denseRow(r.coeffs, len(m.names)), r.ct, r.rhs)
	}
	lp.SetObjFn(denseRow(m.obj, len(m.names)))
	lp.SetMinimize()
	if params.Timeout > 0 {
		lp.SetTimeout(int(params.Timeout.Seconds()))
	}
	if params.Seed != 0 {
		lp.SetSeed(params.Seed)
	}

	outcome := lp.Solve()
	status := translateOutcome(outcome)
	if !status.Solved() {
		return status, nil
	}
	return status, &Solution{values: lp.Variables()}
}

func denseRow(coeffs map[int]float64, n int) []float64 {
	row := make([]float64, n+1)
	for col, v := range coeffs {
		row[col] = v
	}
	return row
}

func translateOutcome(outcome golp.SolutionType) Status {
	switch outcome {
	case golp.OPTIMAL:
		return StatusOptimal
	case golp.SUBOPTIMAL:
		return StatusFeasible
	case golp.INFEASIBLE:
		return StatusInfeasible
	default:
		return StatusUnknown
	}
}

// Solution reads back decision variable values after a completed solve.
type Solution struct {
	values []float64
}

// Value reports whether lit was chosen true in the solution.
func (s *Solution) Value(lit Literal) bool {
	if lit.col == 0 || lit.col > len(s.values) {
		return lit.neg
	}
	v := s.values[lit.col-1] > 0.5
	if lit.neg {
		return !v
	}
	return v
}
