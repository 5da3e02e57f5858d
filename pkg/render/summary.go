package render

import (
	"sort"
	"strings"
	"text/template"
)

var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`Model:        {{.ID}}
Description:  {{.Description}}
{{- if .Version}}
Version:      {{.Version}}
{{- end}}
Reactions:    {{.Reactions}}
Genes:        {{.Genes}}
Metabolites:  {{.Mets}}
S non-zeros:  {{.NNZ}}
Compartments: {{join .Comps ", "}}
{{- if .Bad}}
Bad equations ({{len .Bad}}):
{{- range .Bad}}
  {{.}}
{{- end}}
{{- end}}
{{- if .Top}}
Reactions with most genes:
{{- range .Top}}
  {{printf "%-24s" .ID}} {{.Rule}}
{{- end}}
{{- end}}
`))

type summaryRow struct {
	ID   string
	Rule string
}

type summary struct {
	ID, Description, Version string
	Reactions, Genes, Mets   int
	NNZ                      int
	Comps                    []string
	Bad                      []string
	Top                      []summaryRow
}

const summaryTop = 10

func newSummary(doc *Document) summary {
	s := summary{
		ID:          doc.ID,
		Description: doc.Description,
		Version:     doc.Version,
		Reactions:   len(doc.Reactions),
		Genes:       len(doc.Genes),
		Mets:        len(doc.Mets),
		NNZ:         len(doc.S),
		Bad:         doc.BadEquations,
	}
	for _, c := range doc.Comps {
		s.Comps = append(s.Comps, c.ID+" ("+c.Name+")")
	}

	// rules with the most alternatives first; stable on reaction order
	counts := make([]int, len(doc.GrRules))
	for i, r := range doc.GrRules {
		counts[i] = strings.Count(r, ruleOr) + 1
	}
	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })
	for _, i := range order {
		if len(s.Top) == summaryTop {
			break
		}
		if i >= len(doc.Reactions) {
			continue
		}
		s.Top = append(s.Top, summaryRow{ID: doc.Reactions[i].ID, Rule: doc.GrRules[i]})
	}
	return s
}

const ruleOr = " or "
