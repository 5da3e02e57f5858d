package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/yumyai/metadraft/internal/util"
	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/model"
	"go.uber.org/zap"
)

var ErrUnknownEngine = errors.New("unknown alignment engine")

type Engine int

const (
	EngineDiamond Engine = iota
	EngineBLASTP
)

func (e Engine) String() string {
	switch e {
	case EngineDiamond:
		return "diamond"
	case EngineBLASTP:
		return "blastp"
	}
	return "engine(" + strconv.Itoa(int(e)) + ")"
}

func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "diamond":
		return EngineDiamond, nil
	case "blastp", "blast":
		return EngineBLASTP, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEngine, s)
}

// DefaultEvalue is the BLASTP e-value cutoff. DIAMOND uses its own default.
const DefaultEvalue = 1e-5

// Searcher runs an all-against-reference protein search with an external
// aligner. Binaries are looked up on PATH unless given as paths.
type Searcher struct {
	BlastpBin      string
	MakeblastdbBin string
	DiamondBin     string
	Threads        int
	// scratch space for the aligner database and output; os.TempDir() if empty
	WorkDir     string
	KeepWorkDir bool
	Evalue      float64
}

func NewSearcher() *Searcher {
	return &Searcher{
		BlastpBin:      "blastp",
		MakeblastdbBin: "makeblastdb",
		DiamondBin:     "diamond",
		Threads:        runtime.NumCPU(),
		Evalue:         DefaultEvalue,
	}
}

type Request struct {
	OrganismID        string
	QueryFasta        string
	ReferenceProteins string
	Engine            Engine
}

// Search builds an aligner database from the reference proteins, aligns the
// query proteins against it and returns every reported hit.
func (s *Searcher) Search(ctx context.Context, req Request) ([]model.AlignmentHit, error) {
	if !util.FileExists(req.QueryFasta) {
		return nil, fmt.Errorf("query FASTA %q not found", req.QueryFasta)
	}
	if !util.FileExists(req.ReferenceProteins) {
		return nil, fmt.Errorf("reference proteins %q not found", req.ReferenceProteins)
	}

	dir, err := os.MkdirTemp(s.WorkDir, util.SafeName(req.OrganismID)+"-search-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	if s.KeepWorkDir {
		logger.Info("Keeping search work dir", zap.String("dir", dir))
	} else {
		defer os.RemoveAll(dir)
	}

	dbPrefix := filepath.Join(dir, "refdb")
	out := filepath.Join(dir, "hits.tsv")
	threads := strconv.Itoa(max(s.Threads, 1))

	start := time.Now()
	switch req.Engine {
	case EngineDiamond:
		err = s.diamond(ctx, req, dbPrefix, out, threads)
	case EngineBLASTP:
		err = s.blastp(ctx, req, dbPrefix, out, threads)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownEngine, req.Engine)
	}
	if err != nil {
		return nil, err
	}

	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open aligner output: %w", err)
	}
	defer f.Close()

	hits, err := ParseTabular(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s output: %w", req.Engine, err)
	}

	logger.Info("Homology search done",
		zap.String("organism", req.OrganismID),
		zap.Stringer("engine", req.Engine),
		zap.Int("hits", len(hits)),
		zap.Duration("took", time.Since(start)))
	return hits, nil
}

func (s *Searcher) diamond(ctx context.Context, req Request, dbPrefix, out, threads string) error {
	err := run(ctx, s.DiamondBin, "makedb",
		"--in", req.ReferenceProteins,
		"--db", dbPrefix,
		"--threads", threads)
	if err != nil {
		return err
	}

	args := []string{"blastp",
		"--query", req.QueryFasta,
		"--db", dbPrefix,
		"--out", out,
		"--more-sensitive",
		"--threads", threads,
		"--outfmt", "6",
	}
	args = append(args, OutputColumns...)
	return run(ctx, s.DiamondBin, args...)
}

func (s *Searcher) blastp(ctx context.Context, req Request, dbPrefix, out, threads string) error {
	err := run(ctx, s.MakeblastdbBin,
		"-in", req.ReferenceProteins,
		"-out", dbPrefix,
		"-dbtype", "prot")
	if err != nil {
		return err
	}

	evalue := s.Evalue
	if evalue <= 0 {
		evalue = DefaultEvalue
	}
	return run(ctx, s.BlastpBin,
		"-query", req.QueryFasta,
		"-db", dbPrefix,
		"-out", out,
		"-evalue", strconv.FormatFloat(evalue, 'g', -1, 64),
		"-outfmt", "6 "+strings.Join(OutputColumns, " "),
		"-num_threads", threads)
}

func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 2 * time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Running", zap.String("cmd", name), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		return fmt.Errorf("failed to execute %s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
