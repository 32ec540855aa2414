package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/distcalc/internal/alignment"
	"github.com/agbru/distcalc/internal/distance"
	"github.com/agbru/distcalc/internal/distance/mocks"
	apperrors "github.com/agbru/distcalc/internal/errors"
	"github.com/agbru/distcalc/internal/likelihood"
	"github.com/agbru/distcalc/internal/matrix"
	"github.com/agbru/distcalc/internal/metrics"
	"github.com/agbru/distcalc/internal/progress"
)

// randomAlignment builds n related DNA sequences of length l by mutating a
// random ancestor, with a fixed seed.
func randomAlignment(t *testing.T, n, l int, seed uint64) *alignment.Alignment {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ancestor := make([]byte, l)
	for i := range ancestor {
		ancestor[i] = "ACGT"[rng.IntN(4)]
	}
	names := make([]string, n)
	seqs := make([][]byte, n)
	for i := range seqs {
		names[i] = fmt.Sprintf("seq%02d", n-i) // not in sorted order
		s := append([]byte(nil), ancestor...)
		for j := range s {
			switch r := rng.Float64(); {
			case r < 0.08:
				s[j] = "ACGT"[rng.IntN(4)]
			case r < 0.09:
				s[j] = '-'
			}
		}
		seqs[i] = s
	}
	aln, err := alignment.New(names, seqs, alignment.DNA)
	if err != nil {
		t.Fatal(err)
	}
	return aln
}

func sameMapping(t *testing.T, got, want *matrix.Matrix) {
	t.Helper()
	g, w := got.Mapping(), want.Mapping()
	if len(g) != len(w) {
		t.Fatalf("mapping has %d entries, want %d", len(g), len(w))
	}
	for i := range w {
		if g[i].Key != w[i].Key || !sameFloat(g[i].Distance, w[i].Distance) || !sameFloat(g[i].Variance, w[i].Variance) {
			t.Errorf("entry %d: got %+v, want %+v", i, g[i], w[i])
		}
	}
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func TestEngine_ExecutionModesAgree(t *testing.T) {
	t.Parallel()
	aln := randomAlignment(t, 12, 300, 1)
	reg := distance.NewDefaultRegistry()
	ctx := context.Background()

	reference, err := NewEngine(reg).FastDistances(ctx, aln, "tn93", distance.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if reference.Pairs != 66 {
		t.Fatalf("expected 66 pairs, got %d", reference.Pairs)
	}

	modes := []struct {
		name string
		opts []Option
	}{
		{"worker pool", []Option{WithWorkers(8)}},
		{"ranks modulo", []Option{WithRanks(3), WithWorkers(2)}},
		{"ranks chunk", []Option{WithRanks(5), WithPartition(PartitionChunk)}},
		{"more ranks than pairs", []Option{WithRanks(100), WithWorkers(4)}},
	}
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			t.Parallel()
			res, err := NewEngine(reg, mode.opts...).FastDistances(ctx, aln, "tn93", distance.Options{})
			if err != nil {
				t.Fatal(err)
			}
			sameMapping(t, res.Matrix, reference.Matrix)
		})
	}
}

func TestEngine_SetupErrors(t *testing.T) {
	t.Parallel()
	e := NewEngine(distance.NewDefaultRegistry())
	ctx := context.Background()

	single, _ := alignment.FromStrings(alignment.DNA, "only", "ACGT")
	_, err := e.FastDistances(ctx, single, "tn93", distance.Options{})
	var empty apperrors.EmptyAlignmentError
	if !errors.As(err, &empty) {
		t.Errorf("expected EmptyAlignmentError, got %v", err)
	}

	aln := randomAlignment(t, 3, 20, 2)
	_, err = e.FastDistances(ctx, aln, "nope", distance.Options{})
	var unknown apperrors.UnknownCalculatorError
	if !errors.As(err, &unknown) {
		t.Errorf("expected UnknownCalculatorError, got %v", err)
	}

	prot, _ := alignment.FromStrings(alignment.Protein, "a", "MKV", "b", "MRV")
	_, err = e.FastDistances(ctx, prot, "jc69", distance.Options{})
	var incompatible apperrors.IncompatibleMoltypeError
	if !errors.As(err, &incompatible) {
		t.Errorf("expected IncompatibleMoltypeError, got %v", err)
	}
	if !apperrors.IsSetupError(err) {
		t.Error("moltype mismatch should be a setup error")
	}
}

func TestEngine_AvailableDistances(t *testing.T) {
	t.Parallel()
	entries := NewEngine(distance.NewDefaultRegistry()).AvailableDistances()
	if len(entries) != 5 || entries[0].Abbreviation != "paralinear" {
		t.Errorf("unexpected discovery table: %+v", entries)
	}
}

func TestEngine_PartialFailureDoesNotAbort(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	est := mocks.NewMockPairEstimator(ctrl)
	est.EXPECT().Name().Return("mock").AnyTimes()
	est.EXPECT().Estimate(gomock.Any()).DoAndReturn(func(p alignment.Pair) distance.Estimate {
		if p.NameA == "a" && p.NameB == "c" {
			return distance.Failed(apperrors.SingularMatrixError{}, true)
		}
		return distance.Estimate{Distance: 0.1, Variance: 0.01, Converged: true}
	}).Times(6)

	aln, _ := alignment.FromStrings(alignment.DNA, "d", "A", "c", "A", "b", "A", "a", "A")
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollectorWith(reg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := NewEngine(distance.NewDefaultRegistry(), WithWorkers(3), WithMetrics(collector)).Compute(context.Background(), aln, est)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 || res.Pairs != 6 {
		t.Errorf("got %d failed of %d pairs, want 1 of 6", res.Failed, res.Pairs)
	}
	failed := res.Matrix.Failed()
	if len(failed) != 1 || failed[0].Key != matrix.NewKey("a", "c") {
		t.Errorf("Failed() = %+v", failed)
	}
	var sing apperrors.SingularMatrixError
	if !errors.As(failed[0].Err, &sing) {
		t.Errorf("failure cause lost: %v", failed[0].Err)
	}

	want := `
# HELP distcalc_pairs_total Pairs processed, by estimation method and outcome.
# TYPE distcalc_pairs_total counter
distcalc_pairs_total{method="mock",status="ok"} 5
distcalc_pairs_total{method="mock",status="undefined"} 1
# HELP distcalc_runs_in_flight Distance matrix runs currently executing.
# TYPE distcalc_runs_in_flight gauge
distcalc_runs_in_flight 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "distcalc_pairs_total", "distcalc_runs_in_flight"); err != nil {
		t.Error(err)
	}
}

func TestEngine_Cancellation(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	est := mocks.NewMockPairEstimator(ctrl)
	est.EXPECT().Name().Return("slow").AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	var once sync.Once
	est.EXPECT().Estimate(gomock.Any()).DoAndReturn(func(alignment.Pair) distance.Estimate {
		once.Do(cancel)
		time.Sleep(time.Millisecond)
		return distance.Zero
	}).AnyTimes()

	aln := randomAlignment(t, 20, 10, 3)
	done := make(chan error, 1)
	go func() {
		_, err := NewEngine(distance.NewDefaultRegistry(), WithWorkers(2), WithRanks(2)).Compute(ctx, aln, est)
		done <- err
	}()

	select {
	case err := <-done:
		if !apperrors.IsContextError(err) {
			t.Errorf("expected a context error, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("DEADLOCK: Compute did not return after cancellation")
	}
}

// recordingObserver keeps the updates seen per rank.
type recordingObserver struct {
	mu     sync.Mutex
	byRank map[int][]float64
}

func (o *recordingObserver) Update(rank int, p float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.byRank == nil {
		o.byRank = make(map[int][]float64)
	}
	o.byRank[rank] = append(o.byRank[rank], p)
}

func TestEngine_ProgressMonotonic(t *testing.T) {
	t.Parallel()
	aln := randomAlignment(t, 30, 50, 4)
	for _, ranks := range []int{1, 3} {
		t.Run(fmt.Sprintf("ranks=%d", ranks), func(t *testing.T) {
			t.Parallel()
			subject := progress.NewProgressSubject()
			obs := &recordingObserver{}
			subject.Register(obs)

			e := NewEngine(distance.NewDefaultRegistry(), WithWorkers(4), WithRanks(ranks), WithProgress(subject))
			if _, err := e.FastDistances(context.Background(), aln, "hamming", distance.Options{}); err != nil {
				t.Fatal(err)
			}
			if len(obs.byRank) != ranks {
				t.Fatalf("progress from %d ranks, want %d", len(obs.byRank), ranks)
			}
			for r, values := range obs.byRank {
				for i := 1; i < len(values); i++ {
					if values[i] < values[i-1] {
						t.Fatalf("rank %d: progress decreased %v -> %v", r, values[i-1], values[i])
					}
				}
				if last := values[len(values)-1]; last != 1 {
					t.Errorf("rank %d: final progress %v, want 1", r, last)
				}
			}
		})
	}
}

func TestEngine_ReporterDrained(t *testing.T) {
	t.Parallel()
	aln := randomAlignment(t, 40, 20, 5)
	var (
		mu      sync.Mutex
		updates int
		ranks   int
	)
	reporter := ProgressReporterFunc(func(wg *sync.WaitGroup, ch <-chan progress.ProgressUpdate, numRanks int, _ io.Writer) {
		defer wg.Done()
		for range ch {
			mu.Lock()
			updates++
			mu.Unlock()
		}
		mu.Lock()
		ranks = numRanks
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		e := NewEngine(distance.NewDefaultRegistry(), WithRanks(2), WithWorkers(4), WithReporter(reporter, io.Discard))
		if _, err := e.FastDistances(context.Background(), aln, "jc69", distance.Options{}); err != nil {
			t.Error(err)
		}
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("DEADLOCK: reporter channel was never closed")
	}
	mu.Lock()
	defer mu.Unlock()
	if updates == 0 || ranks != 2 {
		t.Errorf("reporter saw %d updates for %d ranks", updates, ranks)
	}
}

func TestEngine_ComputeRankCoversAllPairs(t *testing.T) {
	t.Parallel()
	aln := randomAlignment(t, 9, 40, 6)
	reg := distance.NewDefaultRegistry()
	calc, _ := reg.New("jc69", alignment.DNA, distance.Options{})
	e := NewEngine(reg, WithWorkers(2), WithPartition(PartitionChunk))

	full, err := e.Compute(context.Background(), aln, calc)
	if err != nil {
		t.Fatal(err)
	}

	const size = 4
	parts := make([][]matrix.Entry, 0, size)
	// Merge in reverse rank order to exercise commutativity.
	for r := size - 1; r >= 0; r-- {
		part, err := e.ComputeRank(context.Background(), aln, calc, r, size)
		if err != nil {
			t.Fatal(err)
		}
		parts = append(parts, part.Entries)
	}
	merged, err := matrix.Merge(aln.Names(), parts...)
	if err != nil {
		t.Fatal(err)
	}
	sameMapping(t, merged, full.Matrix)

	if _, err := e.ComputeRank(context.Background(), aln, calc, size, size); err == nil {
		t.Error("out-of-range rank should fail")
	}
}

func TestEngine_LikelihoodDistances(t *testing.T) {
	t.Parallel()
	aln := randomAlignment(t, 5, 400, 7)
	model, err := likelihood.NewJC69(alignment.AlphabetFor(alignment.DNA))
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(distance.NewDefaultRegistry(), WithWorkers(4))
	est := likelihood.DefaultEstimator()

	ml, err := e.LikelihoodDistances(context.Background(), aln, model, est)
	if err != nil {
		t.Fatal(err)
	}
	fast, err := e.FastDistances(context.Background(), aln, "jc69", distance.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if ml.Method != "ml-jc69" {
		t.Errorf("Method = %q", ml.Method)
	}
	mlMap, fastMap := ml.Matrix.Mapping(), fast.Matrix.Mapping()
	for i := range fastMap {
		if d := mlMap[i].Distance - fastMap[i].Distance; d > 1e-4 || d < -1e-4 {
			t.Errorf("%v: ml %v vs closed form %v", fastMap[i].Key, mlMap[i].Distance, fastMap[i].Distance)
		}
	}

	prot, _ := alignment.FromStrings(alignment.Protein, "a", "MKV", "b", "MRV")
	_, err = e.LikelihoodDistances(context.Background(), prot, model, est)
	var incompatible apperrors.IncompatibleMoltypeError
	if !errors.As(err, &incompatible) {
		t.Errorf("expected IncompatibleMoltypeError, got %v", err)
	}
}
