package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/yumyai/metadraft/pkg/model"
	"github.com/yumyai/metadraft/pkg/sparse"
	"gopkg.in/yaml.v3"
)

func sampleModel(t *testing.T) *model.OrganismModel {
	t.Helper()
	rxns := []string{"RXN-1", "RXN-2"}
	genes := []string{"G1", "G2"}
	mets := []string{"GLC", "G6P"}

	inc, err := sparse.NewIncidence(rxns, genes)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range [][2]string{{"RXN-1", "G1"}, {"RXN-1", "G2"}, {"RXN-2", "G2"}} {
		if err := inc.Set(p[0], p[1]); err != nil {
			t.Fatal(err)
		}
	}
	s, err := sparse.NewMatrix(mets, rxns)
	if err != nil {
		t.Fatal(err)
	}
	s.Add(0, 0, -1)
	s.Add(1, 0, 1)

	return &model.OrganismModel{
		ID:          "eco",
		Description: model.DefaultDescription,
		Version:     "test",
		Reactions: []model.Reaction{
			{ID: "RXN-1", Equation: "GLC => G6P", UpperBound: 1000, Confidence: 2},
			{ID: "RXN-2", Equation: "n GLC => POLY", UpperBound: 1000, Confidence: 2},
		},
		Genes:      genes,
		GrRules:    []string{"G1 or G2", "G2"},
		RxnGeneMat: inc,
		Mets: []model.Metabolite{
			{ID: "GLC", Name: "D-glucose", Compartment: "s"},
			{ID: "G6P", Name: "G6P", Compartment: "s"},
		},
		S:            s,
		B:            []float64{0, 0},
		Comps:        []model.Compartment{model.SystemCompartment},
		BadEquations: []string{"RXN-2"},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleModel(t), FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.RxnGeneMat) != 3 || doc.RxnGeneMat[1] != (Association{"RXN-1", "G2"}) {
		t.Errorf("rxnGeneMat = %+v", doc.RxnGeneMat)
	}
	if len(doc.S) != 2 || doc.S[0] != (Coefficient{"GLC", "RXN-1", -1}) {
		t.Errorf("S = %+v", doc.S)
	}
	if doc.Comps[0].ID != "s" || doc.BadEquations[0] != "RXN-2" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleModel(t), FormatYAML); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.ID != "eco" || len(doc.Reactions) != 2 || doc.GrRules[0] != "G1 or G2" {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleModel(t), FormatSummary); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Model:        eco", "Reactions:    2", "S non-zeros:  2", "s (system)", "Bad equations (1):", "RXN-1", "G1 or G2"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	// RXN-1 has more alternatives and is listed first
	if strings.Index(out, "  RXN-1") > strings.Index(out, "  RXN-2 ") {
		t.Errorf("unexpected order:\n%s", out)
	}
}

func TestWriteDeterministic(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatSummary} {
		var a, b bytes.Buffer
		if err := Write(&a, sampleModel(t), f); err != nil {
			t.Fatal(err)
		}
		if err := Write(&b, sampleModel(t), f); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a.Bytes(), b.Bytes()) {
			t.Errorf("%s output differs between runs", f)
		}
	}
}

func TestWriteEmptyModel(t *testing.T) {
	inc, _ := sparse.NewIncidence(nil, nil)
	var buf bytes.Buffer
	if err := Write(&buf, &model.OrganismModel{ID: "empty", RxnGeneMat: inc}, FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), "null") {
		t.Errorf("empty lists written as null:\n%s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "summary": FormatSummary}
	for in, want := range tests {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("sbml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
