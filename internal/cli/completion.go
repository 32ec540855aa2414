package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/distcalc/internal/config"
)

// FlagCompletion describes one command-line flag for completion scripts.
// Every generator reads flagRegistry, so a new flag only needs an entry
// there.
type FlagCompletion struct {
	Name      string   // flag name without the leading dash
	Help      string   // description text
	Values    []string // suggested values (nil = boolean or free value)
	ValueName string   // label for the value in zsh; empty for booleans
	IsFile    bool     // value is a file path
	IsCalc    bool     // values come from the calculator registry
}

var flagRegistry = []FlagCompletion{
	{Name: "h", Help: "Show help message"},
	{Name: "version", Help: "Show version information"},
	{Name: "in", Help: "Input FASTA alignment", IsFile: true, ValueName: "file"},
	{Name: "moltype", Help: "Molecule type", Values: []string{"dna", "rna", "protein", "text"}, ValueName: "moltype"},
	{Name: "calc", Help: "Closed-form calculator", IsCalc: true, ValueName: "calculator"},
	{Name: "method", Help: "Estimation method", Values: []string{config.MethodFast, config.MethodML}, ValueName: "method"},
	{Name: "model", Help: "Substitution model for ml", Values: config.Models, ValueName: "model"},
	{Name: "kappa", Help: "HKY85 transition/transversion ratio", ValueName: "ratio"},
	{Name: "workers", Help: "Pair workers per rank", ValueName: "count"},
	{Name: "ranks", Help: "Number of ranks", ValueName: "count"},
	{Name: "partition", Help: "Pair partitioning", Values: config.Partitions, ValueName: "scheme"},
	{Name: "min-informative", Help: "Minimum informative columns", ValueName: "count"},
	{Name: "max-iter", Help: "Optimizer iteration limit", ValueName: "count"},
	{Name: "tol", Help: "Optimizer tolerance", ValueName: "tolerance"},
	{Name: "timeout", Help: "Maximum run time", Values: []string{"1m", "5m", "30m", "1h"}, ValueName: "duration"},
	{Name: "o", Help: "Distance table output file", IsFile: true, ValueName: "file"},
	{Name: "se-out", Help: "Standard-error table output file", IsFile: true, ValueName: "file"},
	{Name: "metrics-addr", Help: "Prometheus listen address", ValueName: "address"},
	{Name: "progress", Help: "Show progress"},
	{Name: "tui", Help: "Live progress dashboard"},
	{Name: "list", Help: "List calculators"},
	{Name: "v", Help: "Verbose logging"},
	{Name: "q", Help: "Quiet mode"},
	{Name: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// GenerateCompletion writes a completion script for shell ("bash", "zsh"
// or "fish") listing calculators as the -calc values.
func GenerateCompletion(out io.Writer, shell string, calculators []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(calculators)
	case "zsh":
		script = zshCompletion(calculators)
	case "fish":
		script = fishCompletion(calculators)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

func completionValues(f FlagCompletion, calculators []string) []string {
	if f.IsCalc {
		return calculators
	}
	return f.Values
}

func bashCompletion(calculators []string) string {
	var opts, cases []string
	var files []string
	for _, f := range flagRegistry {
		opts = append(opts, "-"+f.Name)
		switch vals := completionValues(f, calculators); {
		case f.IsFile:
			files = append(files, "-"+f.Name)
		case len(vals) > 0:
			cases = append(cases, fmt.Sprintf("        -%s)\n            COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n            return 0\n            ;;\n",
				f.Name, strings.Join(vals, " ")))
		}
	}
	if len(files) > 0 {
		cases = append(cases, fmt.Sprintf("        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(files, "|")))
	}

	return fmt.Sprintf(`# Bash completion script for distcalc
# Add this to your ~/.bashrc or ~/.bash_completion

_distcalc_completions() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "%s" -- "${cur}") )
        return 0
    fi
    COMPREPLY=( $(compgen -f -- "${cur}") )
}

complete -F _distcalc_completions distcalc
`, strings.Join(cases, ""), strings.Join(opts, " "))
}

func zshCompletion(calculators []string) string {
	args := make([]string, 0, len(flagRegistry)+1)
	for _, f := range flagRegistry {
		suffix := ""
		switch vals := completionValues(f, calculators); {
		case f.IsFile:
			suffix = fmt.Sprintf(":%s:_files", f.ValueName)
		case len(vals) > 0:
			suffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(vals, " "))
		case f.ValueName != "":
			suffix = fmt.Sprintf(":%s:", f.ValueName)
		}
		args = append(args, fmt.Sprintf("        '-%s[%s]%s'", f.Name, f.Help, suffix))
	}
	args = append(args, "        '*:alignment:_files'")

	return fmt.Sprintf(`#compdef distcalc

# Zsh completion script for distcalc
# Place this file in your $fpath as _distcalc

_distcalc() {
    _arguments \
%s
}

_distcalc "$@"
`, strings.Join(args, " \\\n"))
}

func fishCompletion(calculators []string) string {
	lines := []string{
		"# Fish completion script for distcalc",
		"# Add this to ~/.config/fish/completions/distcalc.fish",
		"",
	}
	for _, f := range flagRegistry {
		parts := []string{"complete -c distcalc", "-o " + f.Name, fmt.Sprintf("-d '%s'", f.Help)}
		switch vals := completionValues(f, calculators); {
		case f.IsFile:
			parts = append(parts, "-rF")
		case len(vals) > 0:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(vals, " ")))
		case f.ValueName != "":
			parts = append(parts, "-x")
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n") + "\n"
}
