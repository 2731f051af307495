/*
NAME
  sparse.go

DESCRIPTION
  A sparse GF(2) parity-check matrix, ported from the teacher pack's
  mod2sparse.c (original_source/thirdparty/ldpc/mod2sparse.c) doubly-linked
  row/column representation. Per Design Note "Pointer graphs into arenas",
  raw pointer cells are replaced by an arena: entries live in a single
  growable slice addressed by integer handle, row/column headers are
  handle lists threaded through the same slice, and the free list is a
  stack of recycled handles rather than a pointer chain through freed
  memory.
*/

package ldpc

// entry is one non-zero cell of the matrix: its (row, col) position and
// the four handles linking it into its row's and column's circular list.
type entry struct {
	row, col          int
	left, right       int32 // column-neighbour handles (same row)
	up, down          int32 // row-neighbour handles (same column)
	pr, lr            float64
	live              bool
}

const noHandle int32 = -1

// Matrix is a sparse mod-2 matrix addressed by row/column handle lists
// into a single entry arena.
type Matrix struct {
	nRows, nCols int
	rowHead      []int32 // sentinel handle per row (circular list head)
	colHead      []int32 // sentinel handle per column
	arena        []entry
	free         []int32 // recycled handles
}

// NewMatrix allocates an nRows x nCols sparse matrix with no entries set.
func NewMatrix(nRows, nCols int) *Matrix {
	m := &Matrix{
		nRows:   nRows,
		nCols:   nCols,
		rowHead: make([]int32, nRows),
		colHead: make([]int32, nCols),
	}
	for i := range m.rowHead {
		h := m.newSentinel(i, -1)
		m.rowHead[i] = h
	}
	for j := range m.colHead {
		h := m.newSentinel(-1, j)
		m.colHead[j] = h
	}
	return m
}

// newSentinel allocates a self-linked header cell for a row or column.
func (m *Matrix) newSentinel(row, col int) int32 {
	h := m.alloc()
	e := &m.arena[h]
	e.row, e.col = row, col
	e.left, e.right, e.up, e.down = h, h, h, h
	e.live = true
	return h
}

// alloc returns a fresh or recycled entry handle.
func (m *Matrix) alloc() int32 {
	if n := len(m.free); n > 0 {
		h := m.free[n-1]
		m.free = m.free[:n-1]
		return h
	}
	m.arena = append(m.arena, entry{})
	return int32(len(m.arena) - 1)
}

// Insert adds a non-zero entry at (row, col), linking it into both its
// row's and column's circular lists immediately after the sentinel
// (insertion order does not matter for belief propagation).
func (m *Matrix) Insert(row, col int) {
	h := m.alloc()
	e := &m.arena[h]
	e.row, e.col = row, col
	e.live = true

	rh := m.rowHead[row]
	rightOfHead := m.arena[rh].right
	e.left, e.right = rh, rightOfHead
	m.arena[rh].right = h
	m.arena[rightOfHead].left = h

	ch := m.colHead[col]
	downOfHead := m.arena[ch].down
	e.up, e.down = ch, downOfHead
	m.arena[ch].down = h
	m.arena[downOfHead].up = h
}

// RowEntries calls f for every non-zero column in the given row.
func (m *Matrix) RowEntries(row int, f func(col int, h int32)) {
	head := m.rowHead[row]
	for h := m.arena[head].right; h != head; h = m.arena[h].right {
		f(m.arena[h].col, h)
	}
}

// ColEntries calls f for every non-zero row in the given column.
func (m *Matrix) ColEntries(col int, f func(row int, h int32)) {
	head := m.colHead[col]
	for h := m.arena[head].down; h != head; h = m.arena[h].down {
		f(m.arena[h].row, h)
	}
}

func (m *Matrix) pr(h int32) float64     { return m.arena[h].pr }
func (m *Matrix) setPr(h int32, v float64) { m.arena[h].pr = v }
func (m *Matrix) lr(h int32) float64     { return m.arena[h].lr }
func (m *Matrix) setLr(h int32, v float64) { m.arena[h].lr = v }

// NRows / NCols report the matrix dimensions (rows = parity checks,
// columns = code bits: message + parity).
func (m *Matrix) NRows() int { return m.nRows }
func (m *Matrix) NCols() int { return m.nCols }
