// Package sparse holds the identifier-keyed sparse matrices used by the
// reconstruction: a boolean incidence matrix (reactions x genes) and a float
// matrix (metabolites x reactions).
//
// Rows and columns are addressed by stable ids. Index maps are rebuilt whenever
// the shape changes so a position can never outlive the id it belonged to.
package sparse

import (
	"errors"
	"fmt"
	"sort"
)

var ErrDuplicateID = errors.New("duplicate id")
var ErrUnknownID = errors.New("unknown id")
var ErrShape = errors.New("shape mismatch")

type Incidence struct {
	rows     []string
	cols     []string
	rowIndex map[string]int
	colIndex map[string]int
	cells    []map[int]struct{} // per row, set of column indices
}

// ColumnSelection picks source column From and names it As in the result.
type ColumnSelection struct {
	From string
	As   string
}

// Cell is one true entry, by position.
type Cell struct {
	Row int
	Col int
}

func indexOf(ids []string) (map[string]int, error) {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		index[id] = i
	}
	return index, nil
}

func NewIncidence(rows, cols []string) (*Incidence, error) {
	rowIndex, err := indexOf(rows)
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	colIndex, err := indexOf(cols)
	if err != nil {
		return nil, fmt.Errorf("cols: %w", err)
	}

	cells := make([]map[int]struct{}, len(rows))
	for i := range cells {
		cells[i] = make(map[int]struct{})
	}

	return &Incidence{
		rows:     append([]string(nil), rows...),
		cols:     append([]string(nil), cols...),
		rowIndex: rowIndex,
		colIndex: colIndex,
		cells:    cells,
	}, nil
}

// Set marks (row, col) true.
func (m *Incidence) Set(row, col string) error {
	r, ok := m.rowIndex[row]
	if !ok {
		return fmt.Errorf("%w: row %q", ErrUnknownID, row)
	}
	c, ok := m.colIndex[col]
	if !ok {
		return fmt.Errorf("%w: column %q", ErrUnknownID, col)
	}
	m.cells[r][c] = struct{}{}
	return nil
}

func (m *Incidence) Has(row, col string) bool {
	r, ok := m.rowIndex[row]
	if !ok {
		return false
	}
	c, ok := m.colIndex[col]
	if !ok {
		return false
	}
	_, set := m.cells[r][c]
	return set
}

func (m *Incidence) Rows() []string { return append([]string(nil), m.rows...) }
func (m *Incidence) Cols() []string { return append([]string(nil), m.cols...) }
func (m *Incidence) RowCount() int  { return len(m.rows) }
func (m *Incidence) ColCount() int  { return len(m.cols) }

func (m *Incidence) RowIndex(id string) (int, bool) {
	i, ok := m.rowIndex[id]
	return i, ok
}

func (m *Incidence) ColIndex(id string) (int, bool) {
	i, ok := m.colIndex[id]
	return i, ok
}

// RowCols returns the column indices set in row r, in column order.
func (m *Incidence) RowCols(r int) []int {
	out := make([]int, 0, len(m.cells[r]))
	for c := range m.cells[r] {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// RowColIDs is RowCols resolved to column ids.
func (m *Incidence) RowColIDs(r int) []string {
	idx := m.RowCols(r)
	out := make([]string, len(idx))
	for i, c := range idx {
		out[i] = m.cols[c]
	}
	return out
}

func (m *Incidence) NNZ() int {
	n := 0
	for _, row := range m.cells {
		n += len(row)
	}
	return n
}

// Cells lists every true entry in row-major order.
func (m *Incidence) Cells() []Cell {
	out := make([]Cell, 0, m.NNZ())
	for r := range m.cells {
		for _, c := range m.RowCols(r) {
			out = append(out, Cell{Row: r, Col: c})
		}
	}
	return out
}

// SelectCols builds a matrix over the same rows whose columns are copies of the
// selected source columns. A source column may be selected more than once under
// different names.
func (m *Incidence) SelectCols(sel []ColumnSelection) (*Incidence, error) {
	names := make([]string, len(sel))
	from := make([]int, len(sel))
	for i, s := range sel {
		c, ok := m.colIndex[s.From]
		if !ok {
			return nil, fmt.Errorf("%w: column %q", ErrUnknownID, s.From)
		}
		from[i] = c
		names[i] = s.As
	}

	out, err := NewIncidence(m.rows, names)
	if err != nil {
		return nil, err
	}

	// invert once so each row is a single pass
	targets := make(map[int][]int, len(sel))
	for i, c := range from {
		targets[c] = append(targets[c], i)
	}
	for r, row := range m.cells {
		for c := range row {
			for _, t := range targets[c] {
				out.cells[r][t] = struct{}{}
			}
		}
	}
	return out, nil
}

// KeepRows returns a copy holding only the rows where keep is true.
func (m *Incidence) KeepRows(keep []bool) (*Incidence, error) {
	if len(keep) != len(m.rows) {
		return nil, fmt.Errorf("%w: keep mask has %d entries for %d rows", ErrShape, len(keep), len(m.rows))
	}

	var rows []string
	var cells []map[int]struct{}
	for r, k := range keep {
		if !k {
			continue
		}
		rows = append(rows, m.rows[r])
		cells = append(cells, copyRow(m.cells[r]))
	}

	out, err := NewIncidence(rows, m.cols)
	if err != nil {
		return nil, err
	}
	out.cells = cells
	if out.cells == nil {
		out.cells = []map[int]struct{}{}
	}
	return out, nil
}

// KeepCols returns a copy holding only the columns where keep is true.
func (m *Incidence) KeepCols(keep []bool) (*Incidence, error) {
	if len(keep) != len(m.cols) {
		return nil, fmt.Errorf("%w: keep mask has %d entries for %d columns", ErrShape, len(keep), len(m.cols))
	}

	remap := make(map[int]int, len(m.cols))
	var cols []string
	for c, k := range keep {
		if k {
			remap[c] = len(cols)
			cols = append(cols, m.cols[c])
		}
	}

	out, err := NewIncidence(m.rows, cols)
	if err != nil {
		return nil, err
	}
	for r, row := range m.cells {
		for c := range row {
			if nc, ok := remap[c]; ok {
				out.cells[r][nc] = struct{}{}
			}
		}
	}
	return out, nil
}

// EmptyRows reports, per row, whether the row has no true entry.
func (m *Incidence) EmptyRows() []bool {
	out := make([]bool, len(m.rows))
	for r, row := range m.cells {
		out[r] = len(row) == 0
	}
	return out
}

// UsedCols reports, per column, whether any row sets it.
func (m *Incidence) UsedCols() []bool {
	out := make([]bool, len(m.cols))
	for _, row := range m.cells {
		for c := range row {
			out[c] = true
		}
	}
	return out
}

func (m *Incidence) Clone() *Incidence {
	out, _ := NewIncidence(m.rows, m.cols)
	for r, row := range m.cells {
		out.cells[r] = copyRow(row)
	}
	return out
}

func copyRow(row map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(row))
	for c := range row {
		out[c] = struct{}{}
	}
	return out
}
