package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/db"
	"github.com/yumyai/metadraft/pkg/model"
	"github.com/yumyai/metadraft/pkg/search"
	"go.uber.org/zap"
)

// Job is one reconstruction request.
type Job struct {
	OrganismID  string
	Description string
	QueryFasta  string
	Engine      search.Engine
	Thresholds  model.Thresholds
	// deadline around the homology search; 0 means none
	Timeout time.Duration
}

type Result struct {
	Model  *model.OrganismModel
	Report *model.Report
}

// Pipeline holds what is shared between jobs: the reference store, the
// aligner settings and, once loaded, the reference itself.
type Pipeline struct {
	DB                *db.ReferenceDB
	Searcher          *search.Searcher
	ReferenceProteins string
	LoadOptions       db.LoadOptions
	Version           string

	mu   sync.Mutex
	ref  *model.ReferenceModel
	mets *model.ReferenceMetaboliteTable
}

// Preload reads the reference once so later jobs skip the load.
func (p *Pipeline) Preload(ctx context.Context) error {
	ref, mets, err := p.loadReference(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.ref, p.mets = ref, mets
	p.mu.Unlock()
	return nil
}

func (p *Pipeline) cached() (*model.ReferenceModel, *model.ReferenceMetaboliteTable) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ref, p.mets
}

func (p *Pipeline) loadReference(ctx context.Context) (*model.ReferenceModel, *model.ReferenceMetaboliteTable, error) {
	ref, err := p.DB.LoadReferenceModel(ctx, p.LoadOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference model: %w", err)
	}
	mets, err := p.DB.LoadMetabolites(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference metabolites: %w", err)
	}
	return ref, mets, nil
}

// Run loads the reference (unless preloaded) while the homology search runs,
// then reconstructs the model from the hits.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	log := logger.With(zap.String("organism", job.OrganismID))
	start := time.Now()

	ref, mets := p.cached()
	var hits []model.AlignmentHit

	g, gctx := errgroup.WithContext(ctx)
	if ref == nil {
		g.Go(func() error {
			var err error
			ref, mets, err = p.loadReference(gctx)
			return err
		})
	}
	g.Go(func() error {
		prots, err := search.ReadProteins(job.QueryFasta)
		if err != nil {
			return fmt.Errorf("query FASTA: %w", err)
		}
		log.Info("Read query proteins", zap.Int("proteins", len(prots)))

		sctx := gctx
		if job.Timeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(gctx, job.Timeout)
			defer cancel()
		}
		hits, err = p.Searcher.Search(sctx, search.Request{
			OrganismID:        job.OrganismID,
			QueryFasta:        job.QueryFasta,
			ReferenceProteins: p.ReferenceProteins,
			Engine:            job.Engine,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m, report, err := model.Reconstruct(model.ReconstructInput{
		OrganismID:  job.OrganismID,
		Description: job.Description,
		Version:     p.Version,
		Hits:        hits,
		Thresholds:  job.Thresholds,
		Reference:   ref,
		Metabolites: mets,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Reconstruction finished",
		zap.Int("reactions", len(m.Reactions)),
		zap.Int("genes", len(m.Genes)),
		zap.Int("mets", len(m.Mets)),
		zap.Duration("took", time.Since(start)))
	return &Result{Model: m, Report: report}, nil
}
