package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/distcalc/internal/alignment"
	"github.com/agbru/distcalc/internal/distance"
	apperrors "github.com/agbru/distcalc/internal/errors"
	"github.com/agbru/distcalc/internal/likelihood"
	"github.com/agbru/distcalc/internal/matrix"
	"github.com/agbru/distcalc/internal/metrics"
	"github.com/agbru/distcalc/internal/progress"
)

// ProgressBufferMultiplier sizes the reporter channel per rank so that a
// slow display rarely drops updates.
const ProgressBufferMultiplier = 5

const tracerName = "github.com/agbru/distcalc/internal/orchestration"

// Engine computes distance matrices. It is safe to run several
// computations on one Engine concurrently.
type Engine struct {
	registry  *distance.Registry
	workers   int
	ranks     int
	partition Partition
	logger    zerolog.Logger
	metrics   *metrics.Collector
	subject   *progress.ProgressSubject
	reporter  ProgressReporter
	out       io.Writer
	tracer    trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of concurrent pair computations per rank.
// Values below 1 mean sequential execution.
func WithWorkers(n int) Option { return func(e *Engine) { e.workers = max(1, n) } }

// WithRanks splits the pair list over n ranks (default 1).
func WithRanks(n int) Option { return func(e *Engine) { e.ranks = max(1, n) } }

// WithPartition selects how pairs are split over ranks.
func WithPartition(p Partition) Option { return func(e *Engine) { e.partition = p } }

// WithLogger sets the engine logger (default zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMetrics records per-pair Prometheus metrics on c.
func WithMetrics(c *metrics.Collector) Option { return func(e *Engine) { e.metrics = c } }

// WithProgress notifies the observers registered on s. Without a subject
// or reporter no progress is computed.
func WithProgress(s *progress.ProgressSubject) Option { return func(e *Engine) { e.subject = s } }

// WithReporter displays progress through r, writing to out.
func WithReporter(r ProgressReporter, out io.Writer) Option {
	return func(e *Engine) { e.reporter, e.out = r, out }
}

// WithTracer overrides the OpenTelemetry tracer (default: the global
// provider's tracer for this package).
func WithTracer(t trace.Tracer) Option { return func(e *Engine) { e.tracer = t } }

// NewEngine creates an engine over reg.
func NewEngine(reg *distance.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		workers:  1,
		ranks:    1,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	if e.out == nil {
		e.out = io.Discard
	}
	return e
}

// AvailableDistances lists the registered closed-form calculators.
func (e *Engine) AvailableDistances() []distance.Entry {
	return e.registry.Available()
}

// FastDistances computes the matrix with the named closed-form calculator.
func (e *Engine) FastDistances(ctx context.Context, aln *alignment.Alignment, name string, opts distance.Options) (*Result, error) {
	calc, err := e.registry.New(name, aln.Moltype(), opts)
	if err != nil {
		return nil, err
	}
	return e.Compute(ctx, aln, calc)
}

// LikelihoodDistances computes the matrix by maximum likelihood under
// model. The model alphabet must be the alignment's.
func (e *Engine) LikelihoodDistances(ctx context.Context, aln *alignment.Alignment, model likelihood.Model, est likelihood.Estimator) (*Result, error) {
	if model.Alphabet() != alignment.AlphabetFor(aln.Moltype()) {
		return nil, apperrors.IncompatibleMoltypeError{Calculator: "ml-" + model.Name(), Moltype: string(aln.Moltype())}
	}
	est = est.WithDefaults()
	e.logger.Debug().
		Str("model", model.Name()).
		Int("max_iterations", est.MaxIterations).
		Float64("tolerance", est.Tolerance).
		Msg("likelihood fit")
	return e.Compute(ctx, aln, est.Bind(model))
}

// Compute runs est over every pair of aln. Per-pair failures are recorded
// in the matrix; only setup errors and cancellation abort the run.
func (e *Engine) Compute(ctx context.Context, aln *alignment.Alignment, est distance.PairEstimator) (*Result, error) {
	enum, err := alignment.NewPairEnumerator(aln)
	if err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "distcalc.compute", trace.WithAttributes(
		attribute.String("method", est.Name()),
		attribute.Int("pairs", enum.Len()),
		attribute.Int("ranks", e.ranks),
		attribute.Int("workers", e.workers),
	))
	defer span.End()
	defer e.metrics.RunStarted()()

	start := time.Now()
	callbacks, finish := e.progressCallbacks()
	m, err := e.runRanks(ctx, enum, est, callbacks)
	finish()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error().Err(err).Str("method", est.Name()).Msg("run aborted")
		return nil, err
	}

	res := &Result{
		Method:   est.Name(),
		Matrix:   m,
		Pairs:    m.Len(),
		Failed:   len(m.Failed()),
		Ranks:    e.ranks,
		Workers:  e.workers,
		Duration: time.Since(start),
	}
	span.SetAttributes(attribute.Int("failed", res.Failed))
	e.logger.Info().
		Str("method", res.Method).
		Int("pairs", res.Pairs).
		Int("failed", res.Failed).
		Dur("elapsed", res.Duration).
		Msg("distance matrix complete")
	return res, nil
}

// ComputeRank computes only the pairs owned by rank out of size ranks, for
// callers that distribute ranks across processes and merge the partials
// with matrix.Merge.
func (e *Engine) ComputeRank(ctx context.Context, aln *alignment.Alignment, est distance.PairEstimator, rank, size int) (Partial, error) {
	if size < 1 || rank < 0 || rank >= size {
		return Partial{}, apperrors.ValidationError{Field: "rank", Message: fmt.Sprintf("rank %d out of range for %d ranks", rank, size)}
	}
	enum, err := alignment.NewPairEnumerator(aln)
	if err != nil {
		return Partial{}, err
	}
	return e.computeRank(ctx, enum, est, rank, size, nil)
}

func (e *Engine) runRanks(ctx context.Context, enum *alignment.PairEnumerator, est distance.PairEstimator, callbacks []progress.ProgressCallback) (*matrix.Matrix, error) {
	if e.ranks == 1 {
		part, err := e.computeRank(ctx, enum, est, 0, 1, callbacks[0])
		if err != nil {
			return nil, err
		}
		return matrix.Merge(enum.Names(), part.Entries)
	}

	partials := make(chan Partial, e.ranks)
	g, gctx := errgroup.WithContext(ctx)
	for r := 0; r < e.ranks; r++ {
		g.Go(func() error {
			part, err := e.computeRank(gctx, enum, est, r, e.ranks, callbacks[r])
			if err != nil {
				return err
			}
			partials <- part
			return nil
		})
	}
	err := g.Wait()
	close(partials)
	if err != nil {
		return nil, err
	}

	// Gather in arrival order; Merge does not depend on it.
	parts := make([][]matrix.Entry, 0, e.ranks)
	for part := range partials {
		e.logger.Debug().Int("rank", part.Rank).Int("pairs", len(part.Entries)).Dur("elapsed", part.Elapsed).Msg("rank finished")
		parts = append(parts, part.Entries)
	}
	return matrix.Merge(enum.Names(), parts...)
}

func (e *Engine) computeRank(ctx context.Context, enum *alignment.PairEnumerator, est distance.PairEstimator, rank, size int, cb progress.ProgressCallback) (Partial, error) {
	start := time.Now()
	indices := e.partition.Assign(enum.Len(), rank, size)
	entries := make([]matrix.Entry, len(indices))
	counter := progress.NewCounter(len(indices), cb)
	defer counter.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for slot, k := range indices {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := enum.At(k)
			t0 := time.Now()
			res := est.Estimate(p)
			e.metrics.ObservePair(est.Name(), pairStatus(res), time.Since(t0))
			if res.Err != nil {
				e.logger.Debug().Str("a", p.NameA).Str("b", p.NameB).Err(res.Err).Msg("pair undefined")
			}
			entries[slot] = matrix.Entry{Key: matrix.NewKey(p.NameA, p.NameB), Estimate: res}
			counter.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Partial{}, err
	}
	if err := ctx.Err(); err != nil {
		return Partial{}, err
	}
	return Partial{Rank: rank, Size: size, Entries: entries, Elapsed: time.Since(start)}, nil
}

// progressCallbacks returns one callback per rank (nil when progress is
// disabled) and a function that shuts the reporter down.
func (e *Engine) progressCallbacks() ([]progress.ProgressCallback, func()) {
	callbacks := make([]progress.ProgressCallback, e.ranks)
	if e.subject == nil && e.reporter == nil {
		return callbacks, func() {}
	}

	run := progress.NewProgressSubject()
	if e.subject != nil {
		run.Register(e.subject)
	}

	var (
		ch chan progress.ProgressUpdate
		wg sync.WaitGroup
	)
	if e.reporter != nil {
		ch = make(chan progress.ProgressUpdate, e.ranks*ProgressBufferMultiplier)
		run.Register(progress.NewChannelObserver(ch))
		wg.Add(1)
		go e.reporter.DisplayProgress(&wg, ch, e.ranks, e.out)
	}

	for r := range callbacks {
		callbacks[r] = run.Freeze(r)
	}
	return callbacks, func() {
		if ch != nil {
			close(ch)
			wg.Wait()
		}
	}
}

func pairStatus(est distance.Estimate) string {
	switch {
	case !est.Converged:
		return metrics.StatusNotConverged
	case !est.Defined():
		return metrics.StatusUndefined
	}
	return metrics.StatusOK
}
