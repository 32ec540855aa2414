// This file maps DISTCALC_* environment variables onto AppConfig.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps an env key (without the prefix) to the flag(s) it
// shadows and a function that applies the value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

func intOverride(dst func(*AppConfig) *int) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst(c) = parsed
		}
	}
}

func floatOverride(dst func(*AppConfig) *float64) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst(c) = parsed
		}
	}
}

func stringOverride(dst func(*AppConfig) *string) func(*AppConfig, string) {
	return func(c *AppConfig, v string) { *dst(c) = v }
}

func boolOverride(dst func(*AppConfig) *bool) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		p := dst(c)
		*p = parseBoolEnv(v, *p)
	}
}

// envOverrides is the declarative table of all environment variable
// overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"KAPPA", []string{"kappa"}, floatOverride(func(c *AppConfig) *float64 { return &c.Kappa })},
	{"WORKERS", []string{"workers"}, intOverride(func(c *AppConfig) *int { return &c.Workers })},
	{"RANKS", []string{"ranks"}, intOverride(func(c *AppConfig) *int { return &c.Ranks })},
	{"MIN_INFORMATIVE", []string{"min-informative"}, intOverride(func(c *AppConfig) *int { return &c.MinInformative })},
	{"MAX_ITER", []string{"max-iter"}, intOverride(func(c *AppConfig) *int { return &c.MaxIterations })},
	{"TOL", []string{"tol"}, floatOverride(func(c *AppConfig) *float64 { return &c.Tolerance })},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String overrides
	{"IN", []string{"in"}, stringOverride(func(c *AppConfig) *string { return &c.Input })},
	{"MOLTYPE", []string{"moltype"}, stringOverride(func(c *AppConfig) *string { return &c.Moltype })},
	{"CALC", []string{"calc"}, stringOverride(func(c *AppConfig) *string { return &c.Calculator })},
	{"METHOD", []string{"method"}, stringOverride(func(c *AppConfig) *string { return &c.Method })},
	{"MODEL", []string{"model"}, stringOverride(func(c *AppConfig) *string { return &c.Model })},
	{"PARTITION", []string{"partition"}, stringOverride(func(c *AppConfig) *string { return &c.Partition })},
	{"OUTPUT", []string{"o"}, stringOverride(func(c *AppConfig) *string { return &c.OutputFile })},
	{"SE_OUTPUT", []string{"se-out"}, stringOverride(func(c *AppConfig) *string { return &c.StdErrFile })},
	{"METRICS_ADDR", []string{"metrics-addr"}, stringOverride(func(c *AppConfig) *string { return &c.MetricsAddr })},

	// Boolean overrides
	{"PROGRESS", []string{"progress"}, boolOverride(func(c *AppConfig) *bool { return &c.Progress })},
	{"TUI", []string{"tui"}, boolOverride(func(c *AppConfig) *bool { return &c.TUI })},
	{"VERBOSE", []string{"v"}, boolOverride(func(c *AppConfig) *bool { return &c.Verbose })},
	{"QUIET", []string{"q"}, boolOverride(func(c *AppConfig) *bool { return &c.Quiet })},
}

// parseBoolEnv accepts "true", "1", "yes" as true and "false", "0", "no"
// as false (case-insensitive). Anything else keeps defaultVal.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values for every flag
// that was not set on the command line: flags > environment > defaults.
// A positional input argument counts as setting -in.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if o.envKey == "IN" && config.Input != "" {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
