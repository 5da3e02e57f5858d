package handler

// Shared state for all handlers.

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yumyai/metadraft/pkg/model"
	"github.com/yumyai/metadraft/pkg/pipeline"
	"github.com/yumyai/metadraft/pkg/search"
)

// Defaults applied to requests that leave a setting out.
type Defaults struct {
	Description string
	Engine      search.Engine
	Thresholds  model.Thresholds
	Timeout     time.Duration
}

type Service struct {
	Pipeline *pipeline.Pipeline
	Jobs     *JobManager
	Defaults Defaults
	// uploaded query FASTA files are written here
	UploadDir string
	Version   string

	// jobs run under this context, not the request's
	ctx context.Context
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewService returns a service running at most maxJobs reconstructions at
// once. Cancelling ctx aborts running jobs.
func NewService(ctx context.Context, p *pipeline.Pipeline, defaults Defaults, uploadDir, version string, maxJobs int) *Service {
	if maxJobs < 1 {
		maxJobs = 1
	}
	return &Service{
		Pipeline:  p,
		Jobs:      NewJobManager(),
		Defaults:  defaults,
		UploadDir: uploadDir,
		Version:   version,
		ctx:       ctx,
		sem:       semaphore.NewWeighted(int64(maxJobs)),
	}
}

// Wait blocks until every submitted job has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
