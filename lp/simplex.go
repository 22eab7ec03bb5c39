package lp

import (
	"fmt"
	"math"
	"sort"
)

type colStatus int8

const (
	atLower colStatus = iota
	atUpper
	atFree
	basic
)

// column is one variable of the internal standard form. Structural
// columns come from the caller, slack columns absorb row bounds, and
// artificial columns seed the phase-1 basis. Rows always sum to zero:
// each constraint L <= a.x <= U is held as a.x - s = 0 with the slack s
// bounded by [L, U].
type column struct {
	name   string
	rows   []int
	vals   []float64
	lower  float64
	upper  float64
	cost   float64
	art    bool
	status colStatus
	value  float64
	row    int
}

type simplex struct {
	m        int
	cols     []*column
	basis    []int
	binv     [][]float64
	xb       []float64
	phase    int
	tol      float64
	iters    int
	maxIters int
	note     string
}

func newSimplex(p *Problem, tol float64, maxIters int) *simplex {
	m := len(p.Constraints)
	s := &simplex{m: m, tol: tol, maxIters: maxIters}

	// Maximization negates the costs so the core always minimizes.
	sign := 1.0
	if p.Direction == Maximize {
		sign = -1
	}
	for j, v := range p.Variables {
		name := v.Name
		if name == "" {
			name = fmt.Sprintf("x%d", j)
		}
		s.cols = append(s.cols, &column{
			name:  name,
			lower: v.Lower,
			upper: v.Upper,
			cost:  sign * p.Objective[j],
			row:   -1,
		})
	}
	for i, c := range p.Constraints {
		keys := make([]int, 0, len(c.Coeffs))
		for j := range c.Coeffs {
			keys = append(keys, j)
		}
		sort.Ints(keys)
		for _, j := range keys {
			if a := c.Coeffs[j]; a != 0 {
				s.cols[j].rows = append(s.cols[j].rows, i)
				s.cols[j].vals = append(s.cols[j].vals, a)
			}
		}
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("row%d", i)
		}
		s.cols = append(s.cols, &column{
			name:  "slack." + name,
			rows:  []int{i},
			vals:  []float64{-1},
			lower: c.Lower,
			upper: c.Upper,
			row:   -1,
		})
	}

	// Park every column at its bound nearest zero, free columns at zero.
	for _, col := range s.cols {
		col.status, col.value = restingPoint(col.lower, col.upper)
	}

	// Row residuals fix the artificial signs. With artificials basic the
	// starting basis matrix is their sign pattern, which is its own
	// inverse, and every artificial starts at a nonnegative value.
	r := make([]float64, m)
	for _, col := range s.cols {
		if col.value == 0 {
			continue
		}
		for k, row := range col.rows {
			r[row] -= col.vals[k] * col.value
		}
	}
	s.basis = make([]int, m)
	s.xb = make([]float64, m)
	s.binv = make([][]float64, m)
	for i := 0; i < m; i++ {
		d := 1.0
		if r[i] < 0 {
			d = -1
		}
		j := len(s.cols)
		s.cols = append(s.cols, &column{
			name:   fmt.Sprintf("art.%d", i),
			rows:   []int{i},
			vals:   []float64{d},
			upper:  math.Inf(1),
			art:    true,
			status: basic,
			row:    i,
		})
		s.basis[i] = j
		s.xb[i] = d * r[i]
		s.binv[i] = make([]float64, m)
		s.binv[i][i] = d
	}
	return s
}

func restingPoint(lower, upper float64) (colStatus, float64) {
	switch {
	case math.IsInf(lower, -1) && math.IsInf(upper, 1):
		return atFree, 0
	case math.IsInf(lower, -1):
		return atUpper, upper
	case math.IsInf(upper, 1):
		return atLower, lower
	case math.Abs(upper) < math.Abs(lower):
		return atUpper, upper
	default:
		return atLower, lower
	}
}

// costOf is the active cost of a column: artificial mass in phase 1,
// the caller's objective in phase 2.
func (s *simplex) costOf(col *column) float64 {
	if s.phase == 1 {
		if col.art {
			return 1
		}
		return 0
	}
	if col.art {
		return 0
	}
	return col.cost
}

func (s *simplex) optimize() Status {
	for {
		if s.iters >= s.maxIters {
			return StatusIterationLimit
		}
		if s.iters > 0 && s.iters%64 == 0 {
			s.refresh()
		}
		y := s.duals()
		j, dir := s.entering(y)
		if j < 0 {
			return StatusOptimal
		}
		w := s.ftran(j)
		leave, leaveAtUpper, flip, delta := s.ratio(j, dir, w)
		if math.IsInf(delta, 1) {
			s.note = s.cols[j].name
			return StatusUnbounded
		}
		s.iters++
		if flip {
			s.flipBound(j, dir, w, delta)
		} else {
			s.pivot(j, dir, w, delta, leave, leaveAtUpper)
		}
	}
}

func (s *simplex) duals() []float64 {
	y := make([]float64, s.m)
	for r, j := range s.basis {
		cb := s.costOf(s.cols[j])
		if cb == 0 {
			continue
		}
		row := s.binv[r]
		for i := range y {
			y[i] += cb * row[i]
		}
	}
	return y
}

func (s *simplex) reducedCost(col *column, y []float64) float64 {
	d := s.costOf(col)
	for k, row := range col.rows {
		d -= y[row] * col.vals[k]
	}
	return d
}

// entering picks the lowest-index improving column and the direction it
// should move. Fixed columns, including pinned artificials, never enter.
func (s *simplex) entering(y []float64) (int, float64) {
	for j, col := range s.cols {
		if col.status == basic || col.lower == col.upper {
			continue
		}
		d := s.reducedCost(col, y)
		switch col.status {
		case atLower:
			if d < -s.tol {
				return j, 1
			}
		case atUpper:
			if d > s.tol {
				return j, -1
			}
		case atFree:
			if d < -s.tol {
				return j, 1
			}
			if d > s.tol {
				return j, -1
			}
		}
	}
	return -1, 0
}

// ftran applies the basis inverse to the entering column.
func (s *simplex) ftran(j int) []float64 {
	w := make([]float64, s.m)
	col := s.cols[j]
	for k, row := range col.rows {
		v := col.vals[k]
		for i := 0; i < s.m; i++ {
			w[i] += s.binv[i][row] * v
		}
	}
	return w
}

// ratio finds how far the entering column can move before a basic
// variable hits a bound, or before the column reaches its own opposite
// bound (a flip, which keeps the basis unchanged). Among tied blocking
// rows the smallest basis column index leaves. An infinite step means
// this direction is unbounded.
func (s *simplex) ratio(j int, dir float64, w []float64) (leave int, leaveAtUpper, flip bool, delta float64) {
	col := s.cols[j]
	delta = math.Inf(1)
	flip = true
	leave = -1
	if !math.IsInf(col.lower, -1) && !math.IsInf(col.upper, 1) {
		delta = col.upper - col.lower
	}
	for i := 0; i < s.m; i++ {
		den := dir * w[i]
		if den > -s.tol && den < s.tol {
			continue
		}
		b := s.cols[s.basis[i]]
		var limit float64
		var hitsUpper bool
		if den > 0 {
			if math.IsInf(b.lower, -1) {
				continue
			}
			limit = (s.xb[i] - b.lower) / den
		} else {
			if math.IsInf(b.upper, 1) {
				continue
			}
			limit = (s.xb[i] - b.upper) / den
			hitsUpper = true
		}
		if limit < 0 {
			limit = 0
		}
		if limit < delta-s.tol {
			delta, leave, leaveAtUpper, flip = limit, i, hitsUpper, false
		} else if !flip && leave >= 0 && limit <= delta+s.tol && s.basis[i] < s.basis[leave] {
			leave, leaveAtUpper = i, hitsUpper
			if limit < delta {
				delta = limit
			}
		}
	}
	return leave, leaveAtUpper, flip, delta
}

// flipBound moves the entering column to its opposite bound without a
// basis change.
func (s *simplex) flipBound(j int, dir float64, w []float64, delta float64) {
	col := s.cols[j]
	for i := 0; i < s.m; i++ {
		if w[i] != 0 {
			s.xb[i] -= dir * w[i] * delta
		}
	}
	if col.status == atLower {
		col.status, col.value = atUpper, col.upper
	} else {
		col.status, col.value = atLower, col.lower
	}
}

// pivot swaps the entering column into the basis at the blocking row
// and updates the dense basis inverse with elementary row operations.
func (s *simplex) pivot(j int, dir float64, w []float64, delta float64, leave int, leaveAtUpper bool) {
	enter := s.cols[j]
	newVal := enter.value + dir*delta
	for i := 0; i < s.m; i++ {
		if i != leave {
			s.xb[i] -= dir * w[i] * delta
		}
	}
	out := s.cols[s.basis[leave]]
	if leaveAtUpper {
		out.status, out.value = atUpper, out.upper
	} else {
		out.status, out.value = atLower, out.lower
	}
	out.row = -1

	piv := w[leave]
	prow := s.binv[leave]
	inv := 1 / piv
	for k := range prow {
		prow[k] *= inv
	}
	for i := 0; i < s.m; i++ {
		if i == leave {
			continue
		}
		f := w[i]
		if f == 0 {
			continue
		}
		row := s.binv[i]
		for k := range row {
			row[k] -= f * prow[k]
		}
	}

	s.basis[leave] = j
	s.xb[leave] = newVal
	enter.status = basic
	enter.row = leave
}

// refresh recomputes the basic values from the nonbasic ones, shedding
// roundoff accumulated by incremental pivot updates.
func (s *simplex) refresh() {
	r := make([]float64, s.m)
	for _, col := range s.cols {
		if col.status == basic || col.value == 0 {
			continue
		}
		for k, row := range col.rows {
			r[row] -= col.vals[k] * col.value
		}
	}
	for i := 0; i < s.m; i++ {
		v := 0.0
		row := s.binv[i]
		for k := 0; k < s.m; k++ {
			v += row[k] * r[k]
		}
		s.xb[i] = v
	}
}

// artificialMass is the phase-1 objective: total artificial volume left
// in the basis. Zero within tolerance means the problem is feasible.
func (s *simplex) artificialMass() float64 {
	total := 0.0
	for r, j := range s.basis {
		if s.cols[j].art {
			total += math.Abs(s.xb[r])
		}
	}
	return total
}

// pinArtificials fixes every artificial to zero so none can re-enter
// during phase 2. Artificials still basic at zero are left in place;
// the first pivot that touches their row drives them out.
func (s *simplex) pinArtificials() {
	for _, col := range s.cols {
		if !col.art {
			continue
		}
		col.lower, col.upper = 0, 0
		if col.status != basic {
			col.status, col.value = atLower, 0
		}
	}
}

// solution reads the first n column values off the current basis, with
// tiny bound violations from roundoff clamped away.
func (s *simplex) solution(n int) []float64 {
	x := make([]float64, n)
	for j := 0; j < n; j++ {
		col := s.cols[j]
		if col.status == basic {
			x[j] = s.xb[col.row]
		} else {
			x[j] = col.value
		}
		if x[j] < col.lower {
			x[j] = col.lower
		}
		if x[j] > col.upper {
			x[j] = col.upper
		}
	}
	return x
}
