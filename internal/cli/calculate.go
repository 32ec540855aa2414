package cli

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agbru/distcalc/internal/alignment"
	"github.com/agbru/distcalc/internal/config"
	"github.com/agbru/distcalc/internal/distance"
	"github.com/agbru/distcalc/internal/format"
	"github.com/agbru/distcalc/internal/ui"
)

// PrintExecutionConfig shows what is about to run.
func PrintExecutionConfig(cfg config.AppConfig, aln *alignment.Alignment, method string, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	n := aln.NumSeqs()
	fmt.Fprintf(out, "Alignment: %s%d%s %s sequences × %s%s%s columns, %s%s%s pairs.\n",
		ui.ColorMagenta(), n, ui.ColorReset(), aln.Moltype(),
		ui.ColorMagenta(), format.FormatNumberString(strconv.Itoa(aln.Len())), ui.ColorReset(),
		ui.ColorMagenta(), format.FormatNumberString(strconv.Itoa(n*(n-1)/2)), ui.ColorReset())
	fmt.Fprintf(out, "Method: %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorGreen(), method, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Execution: %s%d%s rank(s) (%s), %s%d%s worker(s) each; %d logical processors, Go %s.\n",
		ui.ColorCyan(), cfg.Ranks, ui.ColorReset(), cfg.Partition,
		ui.ColorCyan(), cfg.Workers, ui.ColorReset(),
		runtime.NumCPU(), runtime.Version())
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// FormatCalculatorTable renders the registry discovery table.
func FormatCalculatorTable(entries []distance.Entry) string {
	s := ui.CurrentStyles()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Label).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Title.Padding(0, 1)
			}
			return s.Value.Padding(0, 1)
		}).
		Headers("Abbreviation", "Moltypes", "Description")
	for _, e := range entries {
		moltypes := make([]string, len(e.Moltypes))
		for i, m := range e.Moltypes {
			moltypes[i] = string(m)
		}
		t.Row(e.Abbreviation, strings.Join(moltypes, ", "), e.Description)
	}
	return t.String()
}

// PrintCalculatorList writes the discovery table to out.
func PrintCalculatorList(entries []distance.Entry, out io.Writer) {
	fmt.Fprintln(out, FormatCalculatorTable(entries))
}
