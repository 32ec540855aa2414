package orchestration

import (
	"time"

	"github.com/agbru/distcalc/internal/format"
	"github.com/agbru/distcalc/internal/progress"
)

// ProgressAggregator folds per-rank progress updates into an overall
// fraction and ETA for display.
type ProgressAggregator struct {
	state    *format.ProgressWithETA
	numRanks int
}

// NewProgressAggregator returns nil if numRanks <= 0.
func NewProgressAggregator(numRanks int) *ProgressAggregator {
	if numRanks <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:    format.NewProgressWithETA(numRanks),
		numRanks: numRanks,
	}
}

// AggregatedProgress is the view after one update.
type AggregatedProgress struct {
	Rank            int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// Update processes one update.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(update.Rank, update.Value)
	return AggregatedProgress{
		Rank:            update.Rank,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumRanks returns the number of ranks being tracked.
func (a *ProgressAggregator) NumRanks() int {
	return a.numRanks
}

// DrainChannel discards every update until the channel is closed.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
