package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/distcalc/internal/matrix"
	"github.com/agbru/distcalc/internal/progress"
)

// Result is the outcome of one distance matrix run.
type Result struct {
	// Method is the estimator name, e.g. "tn93" or "ml-hky85".
	Method string
	Matrix *matrix.Matrix
	// Pairs is the number of pairs computed; Failed of them are NaN.
	Pairs    int
	Failed   int
	Ranks    int
	Workers  int
	Duration time.Duration
}

// ProgressReporter displays run progress. DisplayProgress runs in its own
// goroutine until progressChan is closed, then calls wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRanks int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRanks int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRanks int, out io.Writer) {
	f(wg, progressChan, numRanks, out)
}

// NullProgressReporter drains the channel without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
	}
}

// ResultPresenter writes a finished run.
type ResultPresenter interface {
	// PresentMatrix writes the distance and standard-error tables.
	PresentMatrix(res *Result) error
	// PresentSummary writes a human-readable run summary.
	PresentSummary(res *Result, out io.Writer)
}

// ErrorHandler turns a run error into an exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
