// Package tui implements the -tui dashboard, a bubbletea program fed from
// the engine's progress channel.
package tui

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/distcalc/internal/orchestration"
	"github.com/agbru/distcalc/internal/progress"
)

// TUIProgressReporter implements orchestration.ProgressReporter by running
// a Dashboard for the lifetime of the progress channel.
type TUIProgressReporter struct {
	Title string
	Pairs int
	// Input feeds key presses. Nil disables keyboard handling.
	Input io.Reader
	// Cancel is invoked when the user aborts from the dashboard.
	Cancel func()
}

// Verify interface compliance.
var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

// DisplayProgress drains the progress channel into the dashboard and
// returns once the dashboard has drawn its final frame.
func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRanks int, out io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(numRanks)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	p := tea.NewProgram(NewDashboard(t.Title, t.Pairs, numRanks, t.Cancel),
		tea.WithOutput(out),
		tea.WithInput(t.Input),
		tea.WithoutSignalHandler(),
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_, _ = p.Run()
	}()

	// Send returns immediately once the program has exited, so an aborted
	// dashboard still lets the channel drain.
	for update := range progressChan {
		ap := agg.Update(update)
		p.Send(ProgressMsg{
			Rank:    ap.Rank,
			Value:   ap.Value,
			Average: ap.AverageProgress,
			ETA:     ap.ETA,
		})
	}
	p.Send(ProgressDoneMsg{})
	<-finished
}
