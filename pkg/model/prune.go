package model

import (
	"fmt"

	"github.com/yumyai/metadraft/pkg/sparse"
)

// PruneReactions keeps the reactions where keep is true. Every per-reaction
// container present on m (rules, incidence rows, S columns, bad equation ids) is
// cut with the same mask; m is left untouched if any of them fails.
func PruneReactions(m *OrganismModel, keep []bool) error {
	if len(keep) != len(m.Reactions) {
		return &StructuralError{
			Stage:  "prune",
			Detail: fmt.Sprintf("keep mask has %d entries for %d reactions", len(keep), len(m.Reactions)),
		}
	}

	var (
		reactions = make([]Reaction, 0, len(keep))
		rules     []string
		inc       *sparse.Incidence
		S         *sparse.Matrix
		err       error
	)

	kept := make(map[string]struct{}, len(keep))
	for i, k := range keep {
		if k {
			reactions = append(reactions, m.Reactions[i])
			kept[m.Reactions[i].ID] = struct{}{}
		}
	}

	if m.GrRules != nil {
		if len(m.GrRules) != len(keep) {
			return &StructuralError{Stage: "prune", Detail: fmt.Sprintf("%d rules for %d reactions", len(m.GrRules), len(keep))}
		}
		rules = make([]string, 0, len(reactions))
		for i, k := range keep {
			if k {
				rules = append(rules, m.GrRules[i])
			}
		}
	}

	if m.RxnGeneMat != nil {
		if inc, err = m.RxnGeneMat.KeepRows(keep); err != nil {
			return &StructuralError{Stage: "prune", Detail: err.Error()}
		}
	}

	if m.S != nil {
		if S, err = m.S.KeepCols(keep); err != nil {
			return &StructuralError{Stage: "prune", Detail: err.Error()}
		}
	}

	var bad []string
	for _, id := range m.BadEquations {
		if _, ok := kept[id]; ok {
			bad = append(bad, id)
		}
	}

	m.Reactions = reactions
	m.GrRules = rules
	m.RxnGeneMat = inc
	m.S = S
	m.BadEquations = bad
	return nil
}
