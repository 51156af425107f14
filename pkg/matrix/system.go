package matrix

import (
	"fmt"
	"sort"

	"github.com/edp1096/sparse"
)

type InsertMode int

const (
	NotSet InsertMode = iota
	Add               // Accumulate into existing entries
	Insert            // Replace existing entries
)

func (m InsertMode) String() string {
	switch m {
	case NotSet:
		return "NotSet"
	case Add:
		return "Add"
	case Insert:
		return "Insert"
	default:
		return fmt.Sprintf("InsertMode(%d)", int(m))
	}
}

type staged struct {
	row, col int
	value    float64
	clearRow bool
}

// System is a real sparse matrix of the doubled AC system. Indices are
// 0-based. Writes are staged and only reach the matrix on Flush, and all
// staged writes between two flushes must use the same InsertMode.
type System struct {
	Size        int
	matrix      *sparse.Matrix
	config      *sparse.Configuration
	rows        map[int]map[int]*sparse.Element
	pending     []staged
	pendingMode InsertMode
}

func NewSystem(size int) (*System, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	return &System{
		Size:   size,
		matrix: mat,
		config: config,
		rows:   make(map[int]map[int]*sparse.Element),
	}, nil
}

func (m *System) stage(mode InsertMode) {
	if mode == NotSet {
		panic("matrix: NotSet is not an insert mode")
	}
	if m.pendingMode != NotSet && m.pendingMode != mode {
		panic(fmt.Sprintf("matrix: %v values pending, flush before %v", m.pendingMode, mode))
	}
	m.pendingMode = mode
}

func (m *System) SetValue(i, j int, value float64, mode InsertMode) {
	m.stage(mode)
	m.pending = append(m.pending, staged{row: i, col: j, value: value})
}

// SetValues stages a dense block; values are row-major, len(rows)*len(cols).
func (m *System) SetValues(rows, cols []int, values []float64, mode InsertMode) {
	if len(values) != len(rows)*len(cols) {
		panic(fmt.Sprintf("matrix: %d values for a %dx%d block", len(values), len(rows), len(cols)))
	}
	m.stage(mode)
	for r, i := range rows {
		for c, j := range cols {
			m.pending = append(m.pending, staged{row: i, col: j, value: values[r*len(cols)+c]})
		}
	}
}

// ClearRow stages zeroing of every stored entry in row i. It is ordered with
// the other staged writes, so values staged after it survive the flush.
func (m *System) ClearRow(i int) {
	m.pending = append(m.pending, staged{row: i, clearRow: true})
}

// Pending reports the number of staged, not yet flushed writes.
func (m *System) Pending() int {
	return len(m.pending)
}

// Flush applies staged writes to the matrix.
func (m *System) Flush() {
	mode := m.pendingMode
	for _, s := range m.pending {
		if s.clearRow {
			for _, element := range m.rows[s.row] {
				element.Real = 0
			}
			continue
		}
		element := m.element(s.row, s.col)
		if element == nil {
			continue
		}
		if mode == Insert {
			element.Real = s.value
		} else {
			element.Real += s.value
		}
	}
	m.pending = m.pending[:0]
	m.pendingMode = NotSet
}

func (m *System) element(i, j int) *sparse.Element {
	if i < 0 || j < 0 || i >= m.Size || j >= m.Size {
		fmt.Printf("Warning: Matrix index out of bounds (i=%d, j=%d, size=%d)\n", i, j, m.Size)
		return nil
	}

	row, ok := m.rows[i]
	if !ok {
		row = make(map[int]*sparse.Element)
		m.rows[i] = row
	}
	element, ok := row[j]
	if !ok {
		element = m.matrix.GetElement(int64(i+1), int64(j+1))
		row[j] = element
	}
	return element
}

// At returns the flushed value at (i, j).
func (m *System) At(i, j int) float64 {
	if element, ok := m.rows[i][j]; ok {
		return element.Real
	}
	return 0
}

// Row returns the nonzero entries of row i ordered by column. Structural
// zeros are skipped.
func (m *System) Row(i int) ([]int, []float64) {
	row := m.rows[i]
	cols := make([]int, 0, len(row))
	for j, element := range row {
		if element.Real != 0 {
			cols = append(cols, j)
		}
	}
	sort.Ints(cols)

	vals := make([]float64, len(cols))
	for n, j := range cols {
		vals[n] = row[j].Real
	}
	return cols, vals
}

func (m *System) NonZeros() int {
	count := 0
	for _, row := range m.rows {
		for _, element := range row {
			if element.Real != 0 {
				count++
			}
		}
	}
	return count
}

// Solve factors the matrix in place and solves for rhs. After Solve the
// stored values are the LU factors, not the assembled entries.
func (m *System) Solve(rhs []float64) ([]float64, error) {
	if len(m.pending) > 0 {
		panic("matrix: solve with staged values, flush first")
	}
	if len(rhs) != m.Size {
		return nil, fmt.Errorf("rhs length %d does not match matrix size %d", len(rhs), m.Size)
	}

	err := m.matrix.Factor()
	if err != nil {
		return nil, fmt.Errorf("matrix factorization failed: %v", err)
	}

	b := make([]float64, m.Size+1) // 1-based
	copy(b[1:], rhs)
	x, err := m.matrix.Solve(b)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %v", err)
	}

	solution := make([]float64, m.Size)
	copy(solution, x[1:m.Size+1])
	return solution, nil
}

func (m *System) PrintSystem() {
	fmt.Printf("\nAC System (%dx%d):\n", m.Size, m.Size)

	for i := 0; i < m.Size; i++ {
		cols, vals := m.Row(i)
		if len(cols) == 0 {
			continue
		}
		fmt.Printf("Row %d:", i)
		for n, j := range cols {
			fmt.Printf("  %+g*x%d", vals[n], j)
		}
		fmt.Println()
	}

	m.matrix.Print(false, true, true)
}

func (m *System) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}
