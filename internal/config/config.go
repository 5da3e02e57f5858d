package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yumyai/metadraft/internal/util"
	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/db"
	"github.com/yumyai/metadraft/pkg/model"
	"github.com/yumyai/metadraft/pkg/render"
	"github.com/yumyai/metadraft/pkg/search"
	"go.uber.org/zap"
)

// ErrMissingInput is returned when a required input path is empty or absent.
var ErrMissingInput = errors.New("missing required input")

const EnvPrefix = "METADRAFT"

type Config struct {
	OrganismID  string `mapstructure:"organism_id"`
	Description string `mapstructure:"description"`

	QueryFasta        string `mapstructure:"query_fasta"`
	ReferenceDB       string `mapstructure:"reference_db"`
	ReferenceProteins string `mapstructure:"reference_proteins"`

	Engine       string  `mapstructure:"engine"`
	MinBitscore  float64 `mapstructure:"min_bitscore"`
	MinPositives float64 `mapstructure:"min_positives"`
	TieBreak     string  `mapstructure:"tie_break"`

	KeepTransport    bool `mapstructure:"keep_transport"`
	KeepUnbalanced   bool `mapstructure:"keep_unbalanced"`
	KeepUndetermined bool `mapstructure:"keep_undetermined"`

	Threads        int    `mapstructure:"threads"`
	WorkDir        string `mapstructure:"work_dir"`
	BlastpBin      string `mapstructure:"blastp_bin"`
	MakeblastdbBin string `mapstructure:"makeblastdb_bin"`
	DiamondBin     string `mapstructure:"diamond_bin"`

	Output  string `mapstructure:"output"`
	Format  string `mapstructure:"format"`
	Listen  string `mapstructure:"listen"`
	MaxJobs int    `mapstructure:"max_jobs"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// deadline around the homology search; 0 means none
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewViper returns a viper instance carrying the defaults and reading
// METADRAFT_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("description", model.DefaultDescription)
	v.SetDefault("engine", search.EngineDiamond.String())
	v.SetDefault("min_bitscore", model.DefaultMinBitscore)
	v.SetDefault("min_positives", model.DefaultMinPositives)
	v.SetDefault("tie_break", model.TieBreakDeterministic.String())
	v.SetDefault("keep_transport", false)
	v.SetDefault("keep_unbalanced", false)
	v.SetDefault("keep_undetermined", false)
	v.SetDefault("threads", runtime.NumCPU())
	v.SetDefault("work_dir", "")
	v.SetDefault("blastp_bin", "blastp")
	v.SetDefault("makeblastdb_bin", "makeblastdb")
	v.SetDefault("diamond_bin", "diamond")
	v.SetDefault("format", string(render.FormatJSON))
	v.SetDefault("listen", "0.0.0.0:8080")
	v.SetDefault("max_jobs", 2)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("timeout", time.Duration(0))

	// keys without a default still need registering so AutomaticEnv and
	// Unmarshal see them
	for _, k := range []string{"organism_id", "query_fasta", "reference_db", "reference_proteins", "output"} {
		v.SetDefault(k, "")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every flag whose name matches a config key, with dashes in
// flag names standing for underscores. Only flags set on the command line
// override other sources.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	known := make(map[string]bool)
	for _, k := range v.AllKeys() {
		known[k] = true
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !known[key] {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

// LoadDotenv loads .env into the process environment if there is one.
func LoadDotenv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debug("No .env found, using local environment")
	}
}

// Load reads the optional YAML config file on top of the defaults and returns
// the merged configuration. Environment and bound flags take precedence.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		logger.Info("Loaded config", zap.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// ValidateReference checks the inputs needed by anything that uses the
// reference store.
func (c *Config) ValidateReference() error {
	if err := requireFile("reference_db", c.ReferenceDB); err != nil {
		return err
	}
	return requireFile("reference_proteins", c.ReferenceProteins)
}

// Validate checks everything a reconstruction run needs, before any stage
// starts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OrganismID) == "" {
		return fmt.Errorf("%w: organism_id is empty", ErrMissingInput)
	}
	if err := requireFile("query_fasta", c.QueryFasta); err != nil {
		return err
	}
	if err := c.ValidateReference(); err != nil {
		return err
	}

	if _, err := c.SearchEngine(); err != nil {
		return err
	}
	if _, err := c.Thresholds(); err != nil {
		return err
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if c.WorkDir != "" && !util.DirExists(c.WorkDir) {
		return fmt.Errorf("work_dir %q is not a directory", c.WorkDir)
	}
	return nil
}

func requireFile(key, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: %s is empty", ErrMissingInput, key)
	}
	if !util.FileExists(path) {
		return fmt.Errorf("%w: %s %q not found", ErrMissingInput, key, path)
	}
	return nil
}

func (c *Config) SearchEngine() (search.Engine, error) {
	return search.ParseEngine(c.Engine)
}

func (c *Config) OutputFormat() (render.Format, error) {
	return render.ParseFormat(c.Format)
}

func (c *Config) Thresholds() (model.Thresholds, error) {
	tb, err := model.ParseTieBreak(c.TieBreak)
	if err != nil {
		return model.Thresholds{}, err
	}
	return model.Thresholds{MinBitscore: c.MinBitscore, MinPositives: c.MinPositives, TieBreak: tb}, nil
}

func (c *Config) LoadOptions() db.LoadOptions {
	return db.LoadOptions{
		KeepTransport:    c.KeepTransport,
		KeepUnbalanced:   c.KeepUnbalanced,
		KeepUndetermined: c.KeepUndetermined,
	}
}

func (c *Config) Searcher() *search.Searcher {
	s := search.NewSearcher()
	s.BlastpBin = c.BlastpBin
	s.MakeblastdbBin = c.MakeblastdbBin
	s.DiamondBin = c.DiamondBin
	if c.Threads > 0 {
		s.Threads = c.Threads
	}
	s.WorkDir = c.WorkDir
	return s
}
