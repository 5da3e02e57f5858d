package model

import (
	"fmt"

	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/sparse"
	"go.uber.org/zap"
)

type PropagationStats struct {
	Matched         int    `json:"matched"`
	Unmatched       int    `json:"unmatched"`
	ReactionsKept   int    `json:"reactions_kept"`
	ReactionsPruned int    `json:"reactions_pruned"`
	GenesDropped    int    `json:"genes_dropped"`
	Keep            []bool `json:"-"` // per reference reaction
}

// geneColumns maps each retained query gene to the reference gene column it
// copies. Hits whose reference protein is not a modeled gene are skipped.
func geneColumns(best []BestHit, ref *ReferenceModel) ([]sparse.ColumnSelection, int) {
	sel := make([]sparse.ColumnSelection, 0, len(best))
	taken := make(map[string]struct{}, len(best))
	unmatched := 0

	for _, b := range best {
		if _, ok := ref.RxnGeneMat.ColIndex(b.ReferenceProtein); !ok {
			unmatched++
			logger.Debug("No reference gene for hit",
				zap.String("query_gene", b.QueryGene),
				zap.String("reference_protein", b.ReferenceProtein))
			continue
		}
		if _, dup := taken[b.QueryGene]; dup {
			continue
		}
		taken[b.QueryGene] = struct{}{}
		sel = append(sel, sparse.ColumnSelection{From: b.ReferenceProtein, As: b.QueryGene})
	}
	return sel, unmatched
}

// PropagateGenes seeds m with every reference reaction, gives it one incidence
// column per matched query gene, then prunes reactions without support and
// genes that only supported pruned reactions.
func PropagateGenes(m *OrganismModel, best []BestHit, ref *ReferenceModel) (PropagationStats, error) {
	var stats PropagationStats

	if err := ref.Validate(); err != nil {
		return stats, err
	}

	sel, unmatched := geneColumns(best, ref)
	stats.Matched = len(sel)
	stats.Unmatched = unmatched

	full, err := ref.RxnGeneMat.SelectCols(sel)
	if err != nil {
		return stats, &StructuralError{Stage: "propagate", Detail: err.Error()}
	}

	m.Reactions = append([]Reaction(nil), ref.Reactions...)
	m.Genes = full.Cols()
	m.RxnGeneMat = full
	m.GrRules = nil
	m.S = nil

	keep := full.EmptyRows()
	for i := range keep {
		keep[i] = !keep[i]
	}
	if err := PruneReactions(m, keep); err != nil {
		return stats, err
	}

	before := len(m.Genes)
	if err := DropUnusedGenes(m); err != nil {
		return stats, err
	}

	stats.Keep = keep
	stats.ReactionsKept = len(m.Reactions)
	stats.ReactionsPruned = len(ref.Reactions) - len(m.Reactions)
	stats.GenesDropped = before - len(m.Genes)

	if m.RxnGeneMat.RowCount() != len(m.Reactions) || m.RxnGeneMat.ColCount() != len(m.Genes) {
		return stats, &StructuralError{
			Stage:  "propagate",
			Detail: fmt.Sprintf("matrix %dx%d for %d reactions and %d genes", m.RxnGeneMat.RowCount(), m.RxnGeneMat.ColCount(), len(m.Reactions), len(m.Genes)),
		}
	}
	return stats, nil
}

// DropUnusedGenes removes gene columns no reaction references and rebuilds the
// gene list from the remaining columns.
func DropUnusedGenes(m *OrganismModel) error {
	trimmed, err := m.RxnGeneMat.KeepCols(m.RxnGeneMat.UsedCols())
	if err != nil {
		return &StructuralError{Stage: "genes", Detail: err.Error()}
	}
	m.RxnGeneMat = trimmed
	m.Genes = trimmed.Cols()
	return nil
}
