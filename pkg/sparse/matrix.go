package sparse

import (
	"fmt"
	"sort"
)

// Matrix is a sparse float matrix stored by column. Zero entries are never stored.
type Matrix struct {
	rows     []string
	cols     []string
	rowIndex map[string]int
	colIndex map[string]int
	data     []map[int]float64 // per column, row index -> value
}

// Entry is one stored value, by position.
type Entry struct {
	Row   int
	Col   int
	Value float64
}

func NewMatrix(rows, cols []string) (*Matrix, error) {
	rowIndex, err := indexOf(rows)
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	colIndex, err := indexOf(cols)
	if err != nil {
		return nil, fmt.Errorf("cols: %w", err)
	}
	data := make([]map[int]float64, len(cols))
	for i := range data {
		data[i] = make(map[int]float64)
	}
	return &Matrix{
		rows:     append([]string(nil), rows...),
		cols:     append([]string(nil), cols...),
		rowIndex: rowIndex,
		colIndex: colIndex,
		data:     data,
	}, nil
}

// Add accumulates v into (r, c). An entry that sums to zero is removed.
func (m *Matrix) Add(r, c int, v float64) {
	sum := m.data[c][r] + v
	if sum == 0 {
		delete(m.data[c], r)
		return
	}
	m.data[c][r] = sum
}

func (m *Matrix) At(r, c int) float64 { return m.data[c][r] }

func (m *Matrix) Lookup(row, col string) float64 {
	r, ok := m.rowIndex[row]
	if !ok {
		return 0
	}
	c, ok := m.colIndex[col]
	if !ok {
		return 0
	}
	return m.data[c][r]
}

func (m *Matrix) Rows() []string { return append([]string(nil), m.rows...) }
func (m *Matrix) Cols() []string { return append([]string(nil), m.cols...) }
func (m *Matrix) RowCount() int  { return len(m.rows) }
func (m *Matrix) ColCount() int  { return len(m.cols) }

// Column returns the stored entries of column c ordered by row.
func (m *Matrix) Column(c int) []Entry {
	out := make([]Entry, 0, len(m.data[c]))
	for r, v := range m.data[c] {
		out = append(out, Entry{Row: r, Col: c, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// Entries lists every stored value in column-major order.
func (m *Matrix) Entries() []Entry {
	var out []Entry
	for c := range m.data {
		out = append(out, m.Column(c)...)
	}
	return out
}

func (m *Matrix) NNZ() int {
	n := 0
	for _, col := range m.data {
		n += len(col)
	}
	return n
}

// KeepCols returns a copy holding only the columns where keep is true. Rows are
// left untouched, even if they become empty.
func (m *Matrix) KeepCols(keep []bool) (*Matrix, error) {
	if len(keep) != len(m.cols) {
		return nil, fmt.Errorf("%w: keep mask has %d entries for %d columns", ErrShape, len(keep), len(m.cols))
	}
	var cols []string
	var data []map[int]float64
	for c, k := range keep {
		if !k {
			continue
		}
		cols = append(cols, m.cols[c])
		col := make(map[int]float64, len(m.data[c]))
		for r, v := range m.data[c] {
			col[r] = v
		}
		data = append(data, col)
	}
	out, err := NewMatrix(m.rows, cols)
	if err != nil {
		return nil, err
	}
	if data != nil {
		out.data = data
	}
	return out, nil
}
