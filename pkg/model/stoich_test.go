package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildStoichiometry(t *testing.T) {
	ids := []string{"R1", "R2", "R3", "R4", "R5", "R6"}
	eqs := []string{
		"2 A + B <=> C",
		"C => 0.5 D",
		"E <= C + A",
		"n A => F",
		"A + PROTON => B + PROTON",
		"G => ",
	}

	st, err := BuildStoichiometry(ids, eqs)
	if err != nil {
		t.Fatalf("BuildStoichiometry: %v", err)
	}

	if want := []string{"A", "B", "C", "D", "E", "PROTON", "G"}; !reflect.DeepEqual(st.Mets, want) {
		t.Fatalf("mets = %v, want %v", st.Mets, want)
	}
	if want := []int{3, 4}; !reflect.DeepEqual(st.BadEquations, want) {
		t.Fatalf("bad = %v, want %v", st.BadEquations, want)
	}

	checks := []struct {
		met, rxn string
		want     float64
	}{
		{"A", "R1", -2}, {"B", "R1", -1}, {"C", "R1", 1},
		{"C", "R2", -1}, {"D", "R2", 0.5},
		{"C", "R3", -1}, {"A", "R3", -1}, {"E", "R3", 1},
		{"A", "R4", 0}, {"F", "R4", 0},
		{"PROTON", "R5", 0}, {"A", "R5", -1}, {"B", "R5", 1},
		{"G", "R6", -1},
	}
	for _, c := range checks {
		if got := st.S.Lookup(c.met, c.rxn); got != c.want {
			t.Errorf("S[%s,%s] = %v, want %v", c.met, c.rxn, got, c.want)
		}
	}

	if len(st.S.Column(3)) != 0 {
		t.Errorf("undetermined equation should have an empty column")
	}
}

func TestBuildStoichiometryNoArrow(t *testing.T) {
	st, err := BuildStoichiometry([]string{"R1", "R2"}, []string{"POLY-A = POLY-B", "A => B"})
	if err != nil {
		t.Fatalf("BuildStoichiometry: %v", err)
	}
	if !reflect.DeepEqual(st.BadEquations, []int{0}) {
		t.Fatalf("bad = %v", st.BadEquations)
	}
	if len(st.S.Column(0)) != 0 {
		t.Errorf("arrowless equation should have an empty column")
	}
	if !reflect.DeepEqual(st.Mets, []string{"A", "B"}) || st.S.Lookup("B", "R2") != 1 {
		t.Errorf("mets = %v, S[B,R2] = %v", st.Mets, st.S.Lookup("B", "R2"))
	}
}

func TestCheckEquation(t *testing.T) {
	for _, eq := range []string{"A => B", "A <=> B", "B <= A", "n A => B"} {
		if err := CheckEquation(eq); err != nil {
			t.Errorf("%q: %v", eq, err)
		}
	}
	for _, eq := range []string{"A = B", "A -> B", "", "A=>B"} {
		if err := CheckEquation(eq); !errors.Is(err, ErrEquationSyntax) {
			t.Errorf("%q: expected ErrEquationSyntax, got %v", eq, err)
		}
	}
}

func TestBuildStoichiometryErrors(t *testing.T) {
	if _, err := BuildStoichiometry([]string{"R1"}, nil); !errors.Is(err, ErrStructural) {
		t.Fatalf("expected ErrStructural, got %v", err)
	}
}

func TestBuildStoichiometryRejectsBadCoefficients(t *testing.T) {
	for _, eq := range []string{"(n+1) A => B", "-1 A => B", "0 A => B", "2 3 A => B", "A => Inf B"} {
		st, err := BuildStoichiometry([]string{"R1"}, []string{eq})
		if err != nil {
			t.Fatalf("%q: %v", eq, err)
		}
		if !reflect.DeepEqual(st.BadEquations, []int{0}) {
			t.Errorf("%q: bad = %v", eq, st.BadEquations)
		}
	}
}
