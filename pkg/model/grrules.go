package model

import (
	"fmt"
	"strings"

	"github.com/yumyai/metadraft/pkg/sparse"
)

// Only OR associations are inferred. Complexes (AND) are not modeled.
const ruleSeparator = " or "

// SynthesizeGeneRules writes one rule per incidence row: the row's genes in
// column order joined by " or ".
func SynthesizeGeneRules(inc *sparse.Incidence) ([]string, error) {
	rows := inc.Rows()
	rules := make([]string, len(rows))
	for r := range rows {
		genes := inc.RowColIDs(r)
		if len(genes) == 0 {
			return nil, &StructuralError{
				Stage:  "gene rules",
				Detail: fmt.Sprintf("reaction %s has no supporting gene", rows[r]),
			}
		}
		rules[r] = strings.Join(genes, ruleSeparator)
	}
	return rules, nil
}

// parseRule splits an OR-only rule on the literal separator. Gene ids are
// taken as written; SynthesizeGeneRuleMatrix checks them against m.Genes.
func parseRule(rule string) ([]string, error) {
	if strings.TrimSpace(rule) == "" {
		return nil, fmt.Errorf("empty rule")
	}
	return strings.Split(rule, ruleSeparator), nil
}

// SynthesizeGeneRuleMatrix canonicalises m's rules and rebuilds the incidence
// matrix from them: duplicate genes collapse, genes are ordered as in m.Genes.
// Rules naming a gene outside m.Genes, or an empty rule, are structural errors.
func SynthesizeGeneRuleMatrix(m *OrganismModel) ([]string, *sparse.Incidence, error) {
	if len(m.GrRules) != len(m.Reactions) {
		return nil, nil, &StructuralError{
			Stage:  "gene rule matrix",
			Detail: fmt.Sprintf("%d rules for %d reactions", len(m.GrRules), len(m.Reactions)),
		}
	}

	inc, err := sparse.NewIncidence(m.ReactionIDs(), m.Genes)
	if err != nil {
		return nil, nil, &StructuralError{Stage: "gene rule matrix", Detail: err.Error()}
	}

	for i, rule := range m.GrRules {
		rxn := m.Reactions[i].ID
		genes, err := parseRule(rule)
		if err != nil {
			return nil, nil, &StructuralError{Stage: "gene rule matrix", Detail: fmt.Sprintf("reaction %s: %v", rxn, err)}
		}
		for _, g := range genes {
			if err := inc.Set(rxn, g); err != nil {
				return nil, nil, &StructuralError{Stage: "gene rule matrix", Detail: fmt.Sprintf("reaction %s: %v", rxn, err)}
			}
		}
	}

	rules, err := SynthesizeGeneRules(inc)
	if err != nil {
		return nil, nil, err
	}
	return rules, inc, nil
}
