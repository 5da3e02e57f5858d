package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yumyai/metadraft/internal/config"
	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/db"
	"github.com/yumyai/metadraft/pkg/handler"
	"github.com/yumyai/metadraft/pkg/pipeline"
)

type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "metadraft",
		Short:         "Draft genome-scale metabolic models from MetaCyc by homology",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "YAML config file")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	root.PersistentFlags().String("log-format", "", "console or json")
	root.PersistentFlags().String("reference-db", "", "sqlite reference database")

	root.AddCommand(a.reconstructCmd(), a.serveCmd(), a.initDBCmd(), versionCmd())
	return root
}

// setup merges .env, the config file, environment and flags, then starts the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	config.LoadDotenv()

	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return logger.InitLogger(level, cfg.LogFormat == "json")
}

func (a *app) reconstructCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Build a draft model for one organism",
		Example: "  metadraft reconstruct --organism-id eco --query-fasta eco.faa \\\n" +
			"    --reference-db metacyc.db --reference-proteins protseq.fsa -o eco.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("Start:", zap.String("Version", VERSION))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := pipeline.Run(ctx, a.cfg, VERSION)
			if err != nil {
				return err
			}
			if n := len(res.Model.BadEquations); n > 0 {
				logger.Warn("Reactions with undetermined stoichiometry kept", zap.Int("count", n))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("organism-id", "", "identifier of the new model")
	f.String("description", "", "model description")
	f.StringP("query-fasta", "q", "", "protein FASTA of the organism")
	f.String("reference-proteins", "", "MetaCyc protein FASTA the search runs against")
	f.String("engine", "", "diamond or blastp")
	f.Float64("min-bitscore", 0, "minimum bitscore of a hit (default 100)")
	f.Float64("min-positives", 0, "minimum percent positive of a hit (default 45)")
	f.String("tie-break", "", "deterministic or first")
	f.Bool("keep-transport", false, "keep transport reactions")
	f.Bool("keep-unbalanced", false, "keep unbalanced reactions")
	f.Bool("keep-undetermined", false, "keep reactions with undetermined stoichiometry")
	f.Int("threads", 0, "aligner threads (default all CPUs)")
	f.String("work-dir", "", "scratch directory for the aligner")
	f.String("blastp-bin", "", "blastp executable")
	f.String("makeblastdb-bin", "", "makeblastdb executable")
	f.String("diamond-bin", "", "diamond executable")
	f.StringP("output", "o", "", "output file (default stdout)")
	f.StringP("format", "f", "", "json, yaml or summary")
	f.Duration("timeout", 0, "deadline for the homology search")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconstruction HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("Start:", zap.String("Version", VERSION))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := a.cfg
			p, err := pipeline.New(ctx, cfg, VERSION)
			if err != nil {
				return err
			}
			defer p.DB.Close()
			logger.Info("Open database on", zap.String("DB_LOC", cfg.ReferenceDB))

			if err := p.Preload(ctx); err != nil {
				return err
			}

			engine, err := cfg.SearchEngine()
			if err != nil {
				return err
			}
			th, err := cfg.Thresholds()
			if err != nil {
				return err
			}

			uploadDir := cfg.WorkDir
			if uploadDir == "" {
				uploadDir = os.TempDir()
			}
			svc := handler.NewService(ctx, p, handler.Defaults{
				Description: cfg.Description,
				Engine:      engine,
				Thresholds:  th,
				Timeout:     cfg.Timeout,
			}, uploadDir, VERSION, cfg.MaxJobs)

			srv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           handler.NewRouter(svc, logger.L()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Info("Server starting on", zap.String("listen", cfg.Listen))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error starting server: %w", err)
				}
			case <-ctx.Done():
				logger.Info("Shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Shutdown", zap.Error(err))
				}
			}
			svc.Wait()
			return nil
		},
	}

	f := cmd.Flags()
	f.String("listen", "", "address to listen on (default 0.0.0.0:8080)")
	f.String("reference-proteins", "", "MetaCyc protein FASTA the search runs against")
	f.String("engine", "", "default engine, diamond or blastp")
	f.String("work-dir", "", "scratch directory for uploads and the aligner")
	f.Int("threads", 0, "aligner threads per job")
	f.Int("max-jobs", 0, "reconstructions running at once (default 2)")
	f.Duration("timeout", 0, "deadline for each homology search")
	return cmd
}

func (a *app) initDBCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the reference database, optionally importing a YAML dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.ReferenceDB
			if path == "" {
				return fmt.Errorf("%w: reference_db is empty", config.ErrMissingInput)
			}
			rdb, err := db.Open(path)
			if err != nil {
				return err
			}
			defer rdb.Close()

			ctx := cmd.Context()
			if from == "" {
				if err := rdb.CreateSchema(ctx); err != nil {
					return err
				}
				logger.Info("Created empty reference database", zap.String("DB_LOC", path))
				return nil
			}

			_, err = rdb.ImportFile(ctx, from)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "YAML reference dump to import")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), VERSION)
		},
	}
}
