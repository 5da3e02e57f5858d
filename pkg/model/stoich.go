package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yumyai/metadraft/pkg/sparse"
)

// Stoichiometry is the metabolite x reaction matrix built from equations.
type Stoichiometry struct {
	S    *sparse.Matrix
	Mets []string
	// indices into the input equations that were left out of S or netted
	BadEquations []int
}

type term struct {
	met  string
	coef float64
}

// direction arrows; with "<=" the products are written first
var arrows = []struct {
	token   string
	flipped bool
}{
	{" <=> ", false},
	{" => ", false},
	{" <= ", true},
}

func splitEquation(eq string) (lhs, rhs string, err error) {
	padded := " " + strings.TrimSpace(eq) + " "
	for _, a := range arrows {
		if i := strings.Index(padded, a.token); i >= 0 {
			lhs, rhs = padded[:i], padded[i+len(a.token):]
			if a.flipped {
				lhs, rhs = rhs, lhs
			}
			return lhs, rhs, nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrEquationSyntax, eq)
}

// CheckEquation reports ErrEquationSyntax when eq has no direction arrow.
func CheckEquation(eq string) error {
	_, _, err := splitEquation(eq)
	return err
}

// parseSide reads "2 A + B". ok is false when a coefficient is not a positive
// number, e.g. MetaCyc's "n" or "(n+1)".
func parseSide(side string, sign float64) (terms []term, ok bool) {
	side = strings.TrimSpace(side)
	if side == "" {
		return nil, true
	}
	for _, raw := range strings.Split(side, " + ") {
		fields := strings.Fields(raw)
		switch len(fields) {
		case 1:
			terms = append(terms, term{met: fields[0], coef: sign})
		case 2:
			c, err := strconv.ParseFloat(fields[0], 64)
			if err != nil || c <= 0 || math.IsInf(c, 0) || math.IsNaN(c) {
				return nil, false
			}
			terms = append(terms, term{met: fields[1], coef: sign * c})
		default:
			return nil, false
		}
	}
	return terms, true
}

// BuildStoichiometry parses one equation per reaction. Equations without a
// direction arrow or with an undetermined coefficient get an empty column;
// equations listing a metabolite on both sides are netted. All of them are
// reported in BadEquations.
func BuildStoichiometry(reactionIDs, equations []string) (*Stoichiometry, error) {
	if len(reactionIDs) != len(equations) {
		return nil, &StructuralError{
			Stage:  "stoichiometry",
			Detail: fmt.Sprintf("%d reaction ids for %d equations", len(reactionIDs), len(equations)),
		}
	}

	parsed := make([][]term, len(equations))
	bad := make([]int, 0)
	metIndex := make(map[string]int)
	mets := make([]string, 0)

	for i, eq := range equations {
		lhs, rhs, err := splitEquation(eq)
		if err != nil {
			bad = append(bad, i)
			continue
		}
		left, okL := parseSide(lhs, -1)
		right, okR := parseSide(rhs, 1)
		if !okL || !okR {
			bad = append(bad, i)
			continue
		}

		terms := append(left, right...)
		sides := make(map[string]float64, len(terms))
		netted := false
		for _, t := range terms {
			if prev, seen := sides[t.met]; seen && (prev < 0) != (t.coef < 0) {
				netted = true
			}
			sides[t.met] += t.coef
		}
		if netted {
			bad = append(bad, i)
		}

		for _, t := range terms {
			if _, seen := metIndex[t.met]; !seen {
				metIndex[t.met] = len(mets)
				mets = append(mets, t.met)
			}
		}
		parsed[i] = terms
	}

	S, err := sparse.NewMatrix(mets, reactionIDs)
	if err != nil {
		return nil, &StructuralError{Stage: "stoichiometry", Detail: err.Error()}
	}
	for c, terms := range parsed {
		for _, t := range terms {
			S.Add(metIndex[t.met], c, t.coef)
		}
	}

	return &Stoichiometry{S: S, Mets: mets, BadEquations: bad}, nil
}
