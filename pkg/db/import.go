package db

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/model"
	"go.uber.org/zap"
)

// Default flux bound magnitude for imported reactions without bounds.
const DefaultBound = 1000

// Dump is the YAML exchange form of a reference: the reactions with their
// genes and flags, plus the metabolite table.
type Dump struct {
	// release of the source database, stored as meta source_version
	SourceVersion string                      `yaml:"source_version"`
	Reactions     []ReactionRecord            `yaml:"reactions"`
	Metabolites   []model.ReferenceMetabolite `yaml:"metabolites"`
}

func ReadDump(r io.Reader) (*Dump, error) {
	var d Dump
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode reference dump: %w", err)
	}

	seen := make(map[string]struct{}, len(d.Reactions))
	for i := range d.Reactions {
		rx := &d.Reactions[i].Reaction
		if rx.ID == "" || rx.Equation == "" {
			return nil, fmt.Errorf("reaction %d: id and equation are required", i+1)
		}
		if err := model.CheckEquation(rx.Equation); err != nil {
			return nil, fmt.Errorf("reaction %s: %w", rx.ID, err)
		}
		if _, dup := seen[rx.ID]; dup {
			return nil, fmt.Errorf("duplicate reaction %s", rx.ID)
		}
		seen[rx.ID] = struct{}{}

		if rx.LowerBound == 0 && rx.UpperBound == 0 {
			rx.UpperBound = DefaultBound
			if rx.Reversible {
				rx.LowerBound = -DefaultBound
			}
		}
	}
	return &d, nil
}

// ImportFile creates the schema if needed and loads a YAML dump into it.
func (r *ReferenceDB) ImportFile(ctx context.Context, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	d, err := ReadDump(f)
	if err != nil {
		return Stats{}, err
	}
	if err := r.CreateSchema(ctx); err != nil {
		return Stats{}, err
	}
	if err := r.Seed(ctx, d.Reactions, d.Metabolites); err != nil {
		return Stats{}, err
	}
	if d.SourceVersion != "" {
		if err := r.SetMeta(ctx, "source_version", d.SourceVersion); err != nil {
			return Stats{}, err
		}
	}

	s, err := r.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	logger.Info("Imported reference",
		zap.String("file", path),
		zap.Int("reactions", s.Reactions),
		zap.Int("genes", s.Genes),
		zap.Int("metabolites", s.Metabolites))
	return s, nil
}
