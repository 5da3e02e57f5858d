package model

import (
	"testing"

	"github.com/yumyai/metadraft/pkg/sparse"
)

type refRxn struct {
	id       string
	equation string
	genes    []string
}

// referenceModel builds a reference over genes (column order as given).
func referenceModel(t *testing.T, genes []string, rxns []refRxn) *ReferenceModel {
	t.Helper()

	ids := make([]string, len(rxns))
	reactions := make([]Reaction, len(rxns))
	for i, r := range rxns {
		ids[i] = r.id
		reactions[i] = Reaction{
			ID:         r.id,
			Name:       "name of " + r.id,
			Equation:   r.equation,
			ECCodes:    []string{"1.1.1.1"},
			LowerBound: -1000,
			UpperBound: 1000,
			Reversible: true,
		}
	}

	inc, err := sparse.NewIncidence(ids, genes)
	if err != nil {
		t.Fatalf("NewIncidence: %v", err)
	}
	for _, r := range rxns {
		for _, g := range r.genes {
			if err := inc.Set(r.id, g); err != nil {
				t.Fatalf("Set: %v", err)
			}
		}
	}
	return &ReferenceModel{Reactions: reactions, Genes: genes, RxnGeneMat: inc}
}

func hit(query, ref string, bits, ppos float64) AlignmentHit {
	return AlignmentHit{
		QueryGene:        query,
		ReferenceProtein: ref,
		Bitscore:         bits,
		PercentPositive:  ppos,
		AlignLength:      300,
		Identity:         ppos - 10,
		Evalue:           1e-30,
	}
}
