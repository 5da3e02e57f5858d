package model

import (
	"fmt"

	"github.com/yumyai/metadraft/pkg/sparse"
)

// One row of aligner tabular output.
type AlignmentHit struct {
	QueryGene        string  `json:"query_gene"`
	ReferenceProtein string  `json:"reference_protein"`
	Bitscore         float64 `json:"bitscore"`
	PercentPositive  float64 `json:"percent_positive"`
	Evalue           float64 `json:"evalue"`
	AlignLength      int     `json:"align_length"`
	Identity         float64 `json:"identity"`
}

// BestHit is the single retained reference protein for one query gene.
// ReferenceProtein has its namespace prefix stripped.
type BestHit struct {
	QueryGene        string  `json:"query_gene"`
	ReferenceProtein string  `json:"reference_protein"`
	Bitscore         float64 `json:"bitscore"`
	PercentPositive  float64 `json:"percent_positive"`
	AlignLength      int     `json:"align_length"`
}

type Reaction struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Equation   string   `json:"equation" yaml:"equation"`
	ECCodes    []string `json:"ec_codes" yaml:"ec_codes"`
	Subsystems []string `json:"subsystems" yaml:"subsystems"`
	LowerBound float64  `json:"lb" yaml:"lb"`
	UpperBound float64  `json:"ub" yaml:"ub"`
	Reversible bool     `json:"reversible" yaml:"reversible"`
	Objective  float64  `json:"objective" yaml:"objective"`
	Confidence int      `json:"confidence" yaml:"confidence"`
}

// ReferenceModel is the reaction catalog homology is transferred from. It is
// not modified by the reconstruction.
type ReferenceModel struct {
	Reactions []Reaction
	Genes     []string
	// rows are reaction ids in Reactions order, cols are Genes
	RxnGeneMat *sparse.Incidence
}

// Validate checks that the incidence matrix is keyed exactly by the reaction
// and gene lists.
func (ref *ReferenceModel) Validate() error {
	if ref == nil || ref.RxnGeneMat == nil {
		return &StructuralError{Stage: "reference", Detail: "missing reaction-gene matrix"}
	}
	if err := sameIDs(reactionIDs(ref.Reactions), ref.RxnGeneMat.Rows()); err != nil {
		return &StructuralError{Stage: "reference", Detail: "reactions vs matrix rows: " + err.Error()}
	}
	if err := sameIDs(ref.Genes, ref.RxnGeneMat.Cols()); err != nil {
		return &StructuralError{Stage: "reference", Detail: "genes vs matrix columns: " + err.Error()}
	}
	return nil
}

type ReferenceMetabolite struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Formula string   `json:"formula" yaml:"formula"`
	Charge  int      `json:"charge" yaml:"charge"`
	InChI   string   `json:"inchi" yaml:"inchi"`
	Xrefs   []string `json:"xrefs" yaml:"xrefs"`
}

// ReferenceMetaboliteTable is keyed by metabolite id. A nil table has no entries.
type ReferenceMetaboliteTable struct {
	byID map[string]ReferenceMetabolite
}

// Later entries with the same id replace earlier ones.
func NewReferenceMetaboliteTable(mets []ReferenceMetabolite) *ReferenceMetaboliteTable {
	t := &ReferenceMetaboliteTable{byID: make(map[string]ReferenceMetabolite, len(mets))}
	for _, m := range mets {
		t.byID[m.ID] = m
	}
	return t
}

func (t *ReferenceMetaboliteTable) Lookup(id string) (ReferenceMetabolite, bool) {
	if t == nil {
		return ReferenceMetabolite{}, false
	}
	m, ok := t.byID[id]
	return m, ok
}

func (t *ReferenceMetaboliteTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}

type Metabolite struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Formula     string   `json:"formula" yaml:"formula"`
	Charge      int      `json:"charge" yaml:"charge"`
	InChI       string   `json:"inchi" yaml:"inchi"`
	Xrefs       []string `json:"xrefs" yaml:"xrefs"`
	Compartment string   `json:"compartment" yaml:"compartment"`
}

type Compartment struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// OrganismModel is the draft model produced for a query organism.
type OrganismModel struct {
	ID          string
	Description string
	Version     string

	Reactions  []Reaction
	Genes      []string
	GrRules    []string
	RxnGeneMat *sparse.Incidence // reactions x Genes

	Mets  []Metabolite
	S     *sparse.Matrix // Mets x reactions
	B     []float64
	Comps []Compartment

	// reactions whose equation could not be turned into an S column as written
	BadEquations []string
}

func (m *OrganismModel) ReactionIDs() []string { return reactionIDs(m.Reactions) }

func (m *OrganismModel) Equations() []string {
	out := make([]string, len(m.Reactions))
	for i, r := range m.Reactions {
		out[i] = r.Equation
	}
	return out
}

// Check verifies that every per-reaction and per-metabolite container agrees
// with the reaction, gene and metabolite lists.
func (m *OrganismModel) Check() error {
	n := len(m.Reactions)
	if m.RxnGeneMat == nil {
		return &StructuralError{Stage: "check", Detail: "missing reaction-gene matrix"}
	}
	if err := sameIDs(m.ReactionIDs(), m.RxnGeneMat.Rows()); err != nil {
		return &StructuralError{Stage: "check", Detail: "reactions vs matrix rows: " + err.Error()}
	}
	if err := sameIDs(m.Genes, m.RxnGeneMat.Cols()); err != nil {
		return &StructuralError{Stage: "check", Detail: "genes vs matrix columns: " + err.Error()}
	}
	if len(m.GrRules) != n {
		return &StructuralError{Stage: "check", Detail: fmt.Sprintf("%d rules for %d reactions", len(m.GrRules), n)}
	}
	for i, rule := range m.GrRules {
		if rule == "" {
			return &StructuralError{Stage: "check", Detail: fmt.Sprintf("reaction %s has an empty rule", m.Reactions[i].ID)}
		}
	}

	if m.S != nil {
		if err := sameIDs(m.ReactionIDs(), m.S.Cols()); err != nil {
			return &StructuralError{Stage: "check", Detail: "reactions vs S columns: " + err.Error()}
		}
		if err := sameIDs(metIDs(m.Mets), m.S.Rows()); err != nil {
			return &StructuralError{Stage: "check", Detail: "metabolites vs S rows: " + err.Error()}
		}
		if len(m.B) != len(m.Mets) {
			return &StructuralError{Stage: "check", Detail: fmt.Sprintf("b has %d entries for %d metabolites", len(m.B), len(m.Mets))}
		}
	}
	for _, met := range m.Mets {
		if met.Name == "" {
			return &StructuralError{Stage: "check", Detail: fmt.Sprintf("metabolite %s has no name", met.ID)}
		}
	}
	return nil
}

func reactionIDs(rxns []Reaction) []string {
	out := make([]string, len(rxns))
	for i, r := range rxns {
		out[i] = r.ID
	}
	return out
}

func metIDs(mets []Metabolite) []string {
	out := make([]string, len(mets))
	for i, m := range mets {
		out[i] = m.ID
	}
	return out
}

func sameIDs(want, got []string) error {
	if len(want) != len(got) {
		return fmt.Errorf("%d vs %d entries", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("position %d: %q vs %q", i, want[i], got[i])
		}
	}
	return nil
}
