package cli

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/golang/mock/gomock"

	"github.com/agbru/distcalc/internal/cli/mocks"
	"github.com/agbru/distcalc/internal/progress"
)

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("suffix = %q", s.Suffix)
	}
}

// newSpinner is swapped out below, so these tests do not run in parallel.

func TestDisplayProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockS := mocks.NewMockSpinner(ctrl)
	gomock.InOrder(
		mockS.EXPECT().UpdateSuffix(gomock.Any()),
		mockS.EXPECT().Start(),
		mockS.EXPECT().Stop(),
	)
	mockS.EXPECT().UpdateSuffix(gomock.Any()).AnyTimes()

	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()
	newSpinner = func(...spinner.Option) Spinner { return mockS }

	var (
		wg  sync.WaitGroup
		out bytes.Buffer
	)
	wg.Add(1)
	progressChan := make(chan progress.ProgressUpdate)
	go func() {
		progressChan <- progress.ProgressUpdate{Rank: 0, Value: 1}
		progressChan <- progress.ProgressUpdate{Rank: 1, Value: 1}
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, 2, &out)
	wg.Wait()

	if !strings.Contains(out.String(), "100.0%") {
		t.Errorf("final bar should show completion, got %q", out.String())
	}
}

func TestDisplayProgress_ZeroRanks(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()
	newSpinner = func(...spinner.Option) Spinner {
		t.Error("no spinner should be created without ranks")
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan progress.ProgressUpdate, 1)
	progressChan <- progress.ProgressUpdate{}
	close(progressChan)

	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
}
