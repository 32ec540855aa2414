// Package config parses and validates the distcalc command line. Values
// come from flags first, then DISTCALC_* environment variables, then
// defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/agbru/distcalc/internal/alignment"
	"github.com/agbru/distcalc/internal/distance"
	apperrors "github.com/agbru/distcalc/internal/errors"
	"github.com/agbru/distcalc/internal/likelihood"
)

// EnvPrefix prefixes every environment variable read by ParseConfig.
const EnvPrefix = "DISTCALC_"

// Estimation methods.
const (
	MethodFast = "fast"
	MethodML   = "ml"
)

// Substitution models accepted by -model.
var Models = []string{"jc69", "f81", "hky85"}

// Partition schemes accepted by -partition.
var Partitions = []string{"modulo", "chunk"}

// Defaults.
const (
	DefaultCalculator = "tn93"
	DefaultMoltype    = "dna"
	DefaultModel      = "jc69"
	DefaultKappa      = 2.0
	DefaultTimeout    = 30 * time.Minute
)

// AppConfig holds the parsed command line.
type AppConfig struct {
	Input      string
	Moltype    string
	Calculator string
	Method     string
	Model      string
	Kappa      float64

	Workers   int
	Ranks     int
	Partition string

	MinInformative int
	MaxIterations  int
	Tolerance      float64
	Timeout        time.Duration

	OutputFile  string
	StdErrFile  string
	MetricsAddr string
	Progress    bool
	TUI         bool
	List        bool
	Verbose     bool
	Quiet       bool
	Completion  string
}

// ToDistanceOptions returns the options for closed-form calculators.
func (c AppConfig) ToDistanceOptions() distance.Options {
	return distance.Options{MinInformative: c.MinInformative}
}

// ToEstimator returns the likelihood estimator settings.
func (c AppConfig) ToEstimator() likelihood.Estimator {
	return likelihood.Estimator{
		MaxIterations:  c.MaxIterations,
		Tolerance:      c.Tolerance,
		MinInformative: c.MinInformative,
	}
}

// ParseConfig parses args (without the program name). A -h/--help request
// returns flag.ErrHelp after usage has been written to errWriter.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableCalculators []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	var cfg AppConfig
	fs.StringVar(&cfg.Input, "in", "", "Input alignment in FASTA format (\"-\" for stdin, .gz accepted).")
	fs.StringVar(&cfg.Moltype, "moltype", DefaultMoltype, "Molecule type: dna, rna, protein or text.")
	fs.StringVar(&cfg.Calculator, "calc", DefaultCalculator, fmt.Sprintf("Closed-form calculator (%s).", strings.Join(availableCalculators, ", ")))
	fs.StringVar(&cfg.Method, "method", MethodFast, "Estimation method: fast (closed form) or ml (maximum likelihood).")
	fs.StringVar(&cfg.Model, "model", DefaultModel, fmt.Sprintf("Substitution model for -method ml (%s).", strings.Join(Models, ", ")))
	fs.Float64Var(&cfg.Kappa, "kappa", DefaultKappa, "Transition/transversion ratio for hky85.")
	fs.IntVar(&cfg.Workers, "workers", 0, "Concurrent pair workers per rank (0 = one per CPU).")
	fs.IntVar(&cfg.Ranks, "ranks", 1, "Number of ranks the pair list is partitioned across.")
	fs.StringVar(&cfg.Partition, "partition", Partitions[0], "Pair partitioning across ranks: modulo or chunk.")
	fs.IntVar(&cfg.MinInformative, "min-informative", distance.DefaultMinInformative, "Minimum informative columns per pair.")
	fs.IntVar(&cfg.MaxIterations, "max-iter", likelihood.DefaultMaxIterations, "Maximum optimizer iterations per pair (ml).")
	fs.Float64Var(&cfg.Tolerance, "tol", likelihood.DefaultTolerance, "Relative likelihood tolerance for convergence (ml).")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum run time.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Write the distance table to this file instead of stdout.")
	fs.StringVar(&cfg.StdErrFile, "se-out", "", "Write the standard-error table to this file.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run.")
	fs.BoolVar(&cfg.Progress, "progress", false, "Show a progress spinner on stderr.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Show a live dashboard of per-rank progress and system load on stderr.")
	fs.BoolVar(&cfg.List, "list", false, "List available calculators and exit.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Quiet mode: only the tables are written.")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a shell completion script (bash, zsh, fish) and exit.")

	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [flags] [alignment.fasta]\n\nFlags:\n", programName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if cfg.Input == "" && fs.NArg() > 0 {
		cfg.Input = fs.Arg(0)
	}

	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(availableCalculators); err != nil {
		fmt.Fprintln(errWriter, err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks option values and combinations.
func (c *AppConfig) Validate(availableCalculators []string) error {
	if c.List || c.Completion != "" {
		return nil
	}
	if c.Input == "" {
		return apperrors.NewConfigError("an input alignment is required (-in or a positional argument)")
	}
	if _, err := alignment.ParseMoltype(c.Moltype); err != nil {
		return apperrors.NewConfigError("invalid -moltype: %v", err)
	}
	c.Method = strings.ToLower(c.Method)
	switch c.Method {
	case MethodFast:
		c.Calculator = strings.ToLower(strings.TrimSpace(c.Calculator))
		if !slices.Contains(availableCalculators, c.Calculator) {
			return apperrors.NewConfigError("unknown calculator %q (available: %s)", c.Calculator, strings.Join(availableCalculators, ", "))
		}
	case MethodML:
		c.Model = strings.ToLower(c.Model)
		if !slices.Contains(Models, c.Model) {
			return apperrors.NewConfigError("unknown model %q (available: %s)", c.Model, strings.Join(Models, ", "))
		}
	default:
		return apperrors.NewConfigError("-method must be %q or %q, got %q", MethodFast, MethodML, c.Method)
	}
	if !(c.Kappa > 0) {
		return apperrors.NewConfigError("-kappa must be positive, got %v", c.Kappa)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("-workers cannot be negative")
	}
	if c.Ranks < 1 {
		return apperrors.NewConfigError("-ranks must be at least 1")
	}
	c.Partition = strings.ToLower(c.Partition)
	if !slices.Contains(Partitions, c.Partition) {
		return apperrors.NewConfigError("-partition must be one of %s", strings.Join(Partitions, ", "))
	}
	if c.MinInformative < 1 {
		return apperrors.NewConfigError("-min-informative must be at least 1")
	}
	if c.MaxIterations < 1 {
		return apperrors.NewConfigError("-max-iter must be at least 1")
	}
	if !(c.Tolerance > 0) {
		return apperrors.NewConfigError("-tol must be positive")
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("-timeout must be positive")
	}
	if c.Verbose && c.Quiet {
		return apperrors.NewConfigError("-v and -q are mutually exclusive")
	}
	if c.TUI && (c.Quiet || c.Progress) {
		return apperrors.NewConfigError("-tui cannot be combined with -q or -progress")
	}
	return nil
}
