package render

import (
	"github.com/yumyai/metadraft/pkg/model"
)

// Association is one reaction-gene pair of rxnGeneMat.
type Association struct {
	Reaction string `json:"reaction" yaml:"reaction"`
	Gene     string `json:"gene" yaml:"gene"`
}

// Coefficient is one non-zero entry of S.
type Coefficient struct {
	Metabolite string  `json:"met" yaml:"met"`
	Reaction   string  `json:"rxn" yaml:"rxn"`
	Value      float64 `json:"value" yaml:"value"`
}

// Document is the flat, serialisable form of a model. Matrices are written as
// triplets in a fixed order: rxnGeneMat by reaction then gene, S by reaction
// then metabolite.
type Document struct {
	ID           string              `json:"id" yaml:"id"`
	Description  string              `json:"description" yaml:"description"`
	Version      string              `json:"version,omitempty" yaml:"version,omitempty"`
	Reactions    []model.Reaction    `json:"rxns" yaml:"rxns"`
	Genes        []string            `json:"genes" yaml:"genes"`
	GrRules      []string            `json:"grRules" yaml:"grRules"`
	RxnGeneMat   []Association       `json:"rxnGeneMat" yaml:"rxnGeneMat"`
	Mets         []model.Metabolite  `json:"mets" yaml:"mets"`
	S            []Coefficient       `json:"S" yaml:"S"`
	B            []float64           `json:"b" yaml:"b"`
	Comps        []model.Compartment `json:"comps" yaml:"comps"`
	BadEquations []string            `json:"badEquations" yaml:"badEquations"`
}

func NewDocument(m *model.OrganismModel) *Document {
	doc := &Document{
		ID:           m.ID,
		Description:  m.Description,
		Version:      m.Version,
		Reactions:    nonNil(m.Reactions),
		Genes:        nonNil(m.Genes),
		GrRules:      nonNil(m.GrRules),
		RxnGeneMat:   []Association{},
		Mets:         nonNil(m.Mets),
		S:            []Coefficient{},
		B:            nonNil(m.B),
		Comps:        nonNil(m.Comps),
		BadEquations: nonNil(m.BadEquations),
	}

	if inc := m.RxnGeneMat; inc != nil {
		rows, cols := inc.Rows(), inc.Cols()
		for _, c := range inc.Cells() {
			doc.RxnGeneMat = append(doc.RxnGeneMat, Association{Reaction: rows[c.Row], Gene: cols[c.Col]})
		}
	}

	if s := m.S; s != nil {
		rows, cols := s.Rows(), s.Cols()
		for _, e := range s.Entries() {
			doc.S = append(doc.S, Coefficient{Metabolite: rows[e.Row], Reaction: cols[e.Col], Value: e.Value})
		}
	}
	return doc
}

// nil slices would be written as null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
