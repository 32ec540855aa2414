package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	apperrors "github.com/agbru/distcalc/internal/errors"
	"github.com/agbru/distcalc/internal/format"
	"github.com/agbru/distcalc/internal/orchestration"
	"github.com/agbru/distcalc/internal/progress"
	"github.com/agbru/distcalc/internal/ui"
)

// maxListedFailures caps the failed pairs shown in the summary.
const maxListedFailures = 10

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to the package-level DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRanks int, out io.Writer) {
	DisplayProgress(wg, progressChan, numRanks, out)
}

// CLIResultPresenter writes matrices as TSV tables and summaries as a
// styled box.
type CLIResultPresenter struct {
	// Out receives the distance table when no output file is configured.
	Out io.Writer
	// Status receives file-save confirmations (default io.Discard).
	Status io.Writer
	Output OutputConfig
}

var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentMatrix writes the distance and standard-error tables.
func (p CLIResultPresenter) PresentMatrix(res *orchestration.Result) error {
	status := p.Status
	if status == nil {
		status = io.Discard
	}
	return DisplayMatrixWithConfig(p.Out, status, res.Matrix, p.Output)
}

// PresentSummary writes the run summary, listing the first failed pairs.
func (p CLIResultPresenter) PresentSummary(res *orchestration.Result, out io.Writer) {
	fmt.Fprintln(out, FormatSummary(res, ui.CurrentStyles()))
}

// HandleError prints err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleRunError(err, duration, out, CLIColorProvider{})
}

// FormatSummary renders the summary box for res.
func FormatSummary(res *orchestration.Result, s ui.Styles) string {
	row := func(label, value string) string {
		return s.Label.Render(fmt.Sprintf("%-9s", label)) + " " + s.Value.Render(value)
	}
	status := s.Success.Render("all pairs defined")
	if res.Failed > 0 {
		status = s.Warning.Render(fmt.Sprintf("%d undefined", res.Failed))
	}

	lines := []string{
		s.Title.Render("Distance matrix"),
		row("Method", res.Method),
		row("Pairs", fmt.Sprintf("%d (%s)", res.Pairs, status)),
		row("Ranks", fmt.Sprintf("%d × %d workers", res.Ranks, res.Workers)),
		row("Duration", format.FormatExecutionDuration(res.Duration)),
	}

	failed := res.Matrix.Failed()
	for i, e := range failed {
		if i == maxListedFailures {
			lines = append(lines, s.Label.Render(fmt.Sprintf("  … and %d more", len(failed)-maxListedFailures)))
			break
		}
		lines = append(lines, s.Error.Render(fmt.Sprintf("  %s / %s: %v", e.A, e.B, e.Err)))
	}
	return s.Border.Render(strings.Join(lines, "\n"))
}

// CLIColorProvider supplies the active theme's colors to the error
// handler.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
