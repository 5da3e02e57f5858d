package model

import (
	"errors"

	"github.com/yumyai/metadraft/logger"
	"go.uber.org/zap"
)

// Confidence given to every reaction inferred by homology.
const HomologyConfidence = 2

const DefaultDescription = "Generated by homology with MetaCyc database"

type ReconstructInput struct {
	OrganismID  string
	Description string
	// opaque stamp copied into the model, e.g. the tool version
	Version string

	Hits        []AlignmentHit
	Thresholds  Thresholds
	Reference   *ReferenceModel
	Metabolites *ReferenceMetaboliteTable
}

// Report counts what each stage kept and dropped.
type Report struct {
	Hits          int              `json:"hits"`
	BestHits      int              `json:"best_hits"`
	Propagation   PropagationStats `json:"propagation"`
	Mets          int              `json:"mets"`
	MetsAnnotated int              `json:"mets_annotated"`
	BadEquations  int              `json:"bad_equations"`
}

var ErrNoOrganism = errors.New("organism id is required")

// Reconstruct runs filter, propagation, rule synthesis, stoichiometry and
// metabolite annotation, in that order, over one set of alignment hits.
func Reconstruct(in ReconstructInput) (*OrganismModel, *Report, error) {
	if in.OrganismID == "" {
		return nil, nil, ErrNoOrganism
	}
	desc := in.Description
	if desc == "" {
		desc = DefaultDescription
	}

	log := logger.With(zap.String("organism", in.OrganismID))
	report := &Report{Hits: len(in.Hits)}

	best := FilterBestHits(in.Hits, in.Thresholds)
	report.BestHits = len(best)
	log.Info("Filtered alignment hits",
		zap.Int("hits", len(in.Hits)),
		zap.Int("best_hits", len(best)),
		zap.Float64("min_bitscore", in.Thresholds.MinBitscore),
		zap.Float64("min_positives", in.Thresholds.MinPositives),
		zap.Stringer("tie_break", in.Thresholds.TieBreak))

	m := &OrganismModel{
		ID:          in.OrganismID,
		Description: desc,
		Version:     in.Version,
	}

	stats, err := PropagateGenes(m, best, in.Reference)
	if err != nil {
		return nil, nil, err
	}
	report.Propagation = stats
	log.Info("Propagated genes to reactions",
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
		zap.Int("reactions", stats.ReactionsKept),
		zap.Int("pruned", stats.ReactionsPruned),
		zap.Int("genes", len(m.Genes)))
	if len(m.Reactions) == 0 {
		log.Warn("No reaction is supported by any hit")
	}

	if m.GrRules, err = SynthesizeGeneRules(m.RxnGeneMat); err != nil {
		return nil, nil, err
	}
	for i := range m.Reactions {
		m.Reactions[i].Confidence = HomologyConfidence
	}

	st, err := BuildStoichiometry(m.ReactionIDs(), m.Equations())
	if err != nil {
		return nil, nil, err
	}
	m.S = st.S
	m.BadEquations = make([]string, len(st.BadEquations))
	for i, idx := range st.BadEquations {
		m.BadEquations[i] = m.Reactions[idx].ID
	}
	report.BadEquations = len(st.BadEquations)
	if len(st.BadEquations) > 0 {
		log.Info("Equations kept with unusable or netted stoichiometry",
			zap.Strings("reactions", m.BadEquations))
	}

	ann := AnnotateMetabolites(st.Mets, in.Metabolites)
	m.Mets, m.B, m.Comps = ann.Mets, ann.B, ann.Comps
	report.Mets = len(ann.Mets)
	report.MetsAnnotated = ann.Matched
	log.Info("Annotated metabolites",
		zap.Int("mets", len(ann.Mets)),
		zap.Int("annotated", ann.Matched))

	rules, inc, err := SynthesizeGeneRuleMatrix(m)
	if err != nil {
		return nil, nil, err
	}
	m.GrRules, m.RxnGeneMat = rules, inc

	if err := m.Check(); err != nil {
		return nil, nil, err
	}
	return m, report, nil
}
