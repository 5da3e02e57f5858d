package sparse

import (
	"errors"
	"reflect"
	"testing"
)

func mustIncidence(t *testing.T, rows, cols []string, cells [][2]string) *Incidence {
	t.Helper()
	m, err := NewIncidence(rows, cols)
	if err != nil {
		t.Fatalf("NewIncidence: %v", err)
	}
	for _, c := range cells {
		if err := m.Set(c[0], c[1]); err != nil {
			t.Fatalf("Set(%s,%s): %v", c[0], c[1], err)
		}
	}
	return m
}

func TestNewIncidenceRejectsDuplicates(t *testing.T) {
	if _, err := NewIncidence([]string{"R1", "R1"}, nil); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID for rows, got %v", err)
	}
	if _, err := NewIncidence(nil, []string{"g", "g"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID for cols, got %v", err)
	}
}

func TestSetUnknown(t *testing.T) {
	m := mustIncidence(t, []string{"R1"}, []string{"g1"}, nil)
	if err := m.Set("R2", "g1"); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
	if err := m.Set("R1", "g9"); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
}

func TestSelectColsDuplicatesSource(t *testing.T) {
	m := mustIncidence(t,
		[]string{"R1", "R2", "R3"},
		[]string{"g1", "g2", "g3"},
		[][2]string{{"R1", "g1"}, {"R1", "g2"}, {"R2", "g3"}},
	)

	got, err := m.SelectCols([]ColumnSelection{
		{From: "g1", As: "qA"},
		{From: "g1", As: "qB"},
		{From: "g3", As: "qC"},
	})
	if err != nil {
		t.Fatalf("SelectCols: %v", err)
	}

	if got.RowCount() != 3 || got.ColCount() != 3 {
		t.Fatalf("unexpected shape %dx%d", got.RowCount(), got.ColCount())
	}
	if !got.Has("R1", "qA") || !got.Has("R1", "qB") || got.Has("R1", "qC") {
		t.Errorf("R1 row wrong: %v", got.RowColIDs(0))
	}
	if !got.Has("R2", "qC") {
		t.Errorf("R2 should be supported by qC")
	}
	if want := []bool{false, false, true}; !reflect.DeepEqual(got.EmptyRows(), want) {
		t.Errorf("EmptyRows = %v, want %v", got.EmptyRows(), want)
	}

	if _, err := m.SelectCols([]ColumnSelection{{From: "nope", As: "x"}}); !errors.Is(err, ErrUnknownID) {
		t.Errorf("expected ErrUnknownID, got %v", err)
	}
}

func TestKeepRowsAndCols(t *testing.T) {
	m := mustIncidence(t,
		[]string{"R1", "R2", "R3"},
		[]string{"a", "b", "c"},
		[][2]string{{"R1", "a"}, {"R3", "b"}, {"R3", "c"}},
	)

	kept, err := m.KeepRows([]bool{true, false, false})
	if err != nil {
		t.Fatalf("KeepRows: %v", err)
	}
	if !reflect.DeepEqual(kept.Rows(), []string{"R1"}) {
		t.Fatalf("rows = %v", kept.Rows())
	}
	if want := []bool{true, false, false}; !reflect.DeepEqual(kept.UsedCols(), want) {
		t.Fatalf("UsedCols = %v, want %v", kept.UsedCols(), want)
	}

	trimmed, err := kept.KeepCols(kept.UsedCols())
	if err != nil {
		t.Fatalf("KeepCols: %v", err)
	}
	if !reflect.DeepEqual(trimmed.Cols(), []string{"a"}) || !trimmed.Has("R1", "a") {
		t.Fatalf("trimmed matrix wrong: cols=%v", trimmed.Cols())
	}

	// source stays untouched
	if m.RowCount() != 3 || !m.Has("R3", "c") {
		t.Fatalf("source mutated")
	}

	if _, err := m.KeepRows([]bool{true}); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
	if _, err := m.KeepCols([]bool{true}); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestKeepRowsNone(t *testing.T) {
	m := mustIncidence(t, []string{"R1"}, []string{"a"}, nil)
	kept, err := m.KeepRows([]bool{false})
	if err != nil {
		t.Fatalf("KeepRows: %v", err)
	}
	if kept.RowCount() != 0 || kept.ColCount() != 1 || kept.NNZ() != 0 {
		t.Fatalf("unexpected %dx%d nnz=%d", kept.RowCount(), kept.ColCount(), kept.NNZ())
	}
}

func TestRowColsOrdered(t *testing.T) {
	m := mustIncidence(t, []string{"R1"}, []string{"a", "b", "c", "d"},
		[][2]string{{"R1", "d"}, {"R1", "a"}, {"R1", "c"}})
	if got := m.RowColIDs(0); !reflect.DeepEqual(got, []string{"a", "c", "d"}) {
		t.Fatalf("RowColIDs = %v", got)
	}
	if got := m.Cells(); len(got) != 3 || got[0].Col != 0 || got[2].Col != 3 {
		t.Fatalf("Cells = %v", got)
	}
}
