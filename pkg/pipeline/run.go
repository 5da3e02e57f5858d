package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/yumyai/metadraft/internal/config"
	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/db"
	"github.com/yumyai/metadraft/pkg/render"
	"go.uber.org/zap"
)

// New opens the reference store named by cfg. The caller closes p.DB.
func New(ctx context.Context, cfg *config.Config, version string) (*Pipeline, error) {
	if err := cfg.ValidateReference(); err != nil {
		return nil, err
	}
	rdb, err := db.Open(cfg.ReferenceDB)
	if err != nil {
		return nil, err
	}
	if err := rdb.CheckSchema(ctx); err != nil {
		rdb.Close()
		return nil, err
	}
	return &Pipeline{
		DB:                rdb,
		Searcher:          cfg.Searcher(),
		ReferenceProteins: cfg.ReferenceProteins,
		LoadOptions:       cfg.LoadOptions(),
		Version:           version,
	}, nil
}

// JobFromConfig builds the job for a command line run.
func JobFromConfig(cfg *config.Config) (Job, error) {
	engine, err := cfg.SearchEngine()
	if err != nil {
		return Job{}, err
	}
	th, err := cfg.Thresholds()
	if err != nil {
		return Job{}, err
	}
	return Job{
		OrganismID:  cfg.OrganismID,
		Description: cfg.Description,
		QueryFasta:  cfg.QueryFasta,
		Engine:      engine,
		Thresholds:  th,
		Timeout:     cfg.Timeout,
	}, nil
}

// Run validates cfg, reconstructs the model and writes it to cfg.Output
// (stdout when empty).
func Run(ctx context.Context, cfg *config.Config, version string) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	job, err := JobFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		return nil, err
	}

	p, err := New(ctx, cfg, version)
	if err != nil {
		return nil, err
	}
	defer p.DB.Close()

	res, err := p.Run(ctx, job)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := render.Write(w, res.Model, format); err != nil {
		return nil, fmt.Errorf("write model: %w", err)
	}
	if f, ok := w.(*os.File); ok && cfg.Output != "" {
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("close output: %w", err)
		}
		logger.Info("Wrote model", zap.String("output", cfg.Output), zap.String("format", string(format)))
	}
	return res, nil
}
