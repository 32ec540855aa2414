package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/distcalc/internal/alignment"
	"github.com/agbru/distcalc/internal/cli"
	"github.com/agbru/distcalc/internal/config"
	apperrors "github.com/agbru/distcalc/internal/errors"
	"github.com/agbru/distcalc/internal/logging"
	"github.com/agbru/distcalc/internal/metrics"
	"github.com/agbru/distcalc/internal/orchestration"
	"github.com/agbru/distcalc/internal/progress"
	"github.com/agbru/distcalc/internal/server"
	"github.com/agbru/distcalc/internal/sysmon"
	"github.com/agbru/distcalc/internal/tui"
)

// runCalculate loads the alignment, computes the matrix and writes it.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	start := time.Now()
	presenter := cli.CLIResultPresenter{
		Out:    out,
		Status: a.ErrWriter,
		Output: cli.OutputConfig{
			OutputFile: a.Config.OutputFile,
			StdErrFile: a.Config.StdErrFile,
			Quiet:      a.Config.Quiet,
		},
	}
	fail := func(err error) int {
		return presenter.HandleError(err, time.Since(start), a.ErrWriter)
	}

	logger := a.newLogger()

	moltype, err := alignment.ParseMoltype(a.Config.Moltype)
	if err != nil {
		return fail(apperrors.NewConfigError("%v", err))
	}
	aln, err := alignment.OpenFASTA(a.Config.Input, moltype)
	if err != nil {
		return fail(err)
	}
	logger.Debug("alignment loaded",
		logging.String("path", a.Config.Input),
		logging.String("moltype", string(aln.Moltype())),
		logging.Int("sequences", aln.NumSeqs()),
		logging.Int("columns", aln.Len()))
	method, compute, err := a.selectRun(aln)
	if err != nil {
		return fail(err)
	}
	partition, err := orchestration.ParsePartition(a.Config.Partition)
	if err != nil {
		return fail(apperrors.NewConfigError("%v", err))
	}

	collector := metrics.NewCollector()
	if a.Config.MetricsAddr != "" {
		srv := server.New(a.Config.MetricsAddr, collector, logger)
		if err := srv.Start(); err != nil {
			return fail(apperrors.NewConfigError("-metrics-addr: %v", err))
		}
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	opts := []orchestration.Option{
		orchestration.WithWorkers(a.Config.Workers),
		orchestration.WithRanks(a.Config.Ranks),
		orchestration.WithPartition(partition),
		orchestration.WithLogger(logger.Zerolog()),
		orchestration.WithMetrics(collector),
	}
	if a.Config.Progress && !a.Config.Quiet {
		opts = append(opts, orchestration.WithReporter(cli.CLIProgressReporter{}, a.ErrWriter))
	}
	if a.Config.TUI {
		var cancelRun context.CancelFunc
		ctx, cancelRun = context.WithCancel(ctx)
		defer cancelRun()
		n := aln.NumSeqs()
		opts = append(opts, orchestration.WithReporter(&tui.TUIProgressReporter{
			Title:  method,
			Pairs:  n * (n - 1) / 2,
			Input:  a.keyboard(),
			Cancel: cancelRun,
		}, a.ErrWriter))
	}
	if a.Config.Verbose {
		subject := progress.NewProgressSubject()
		subject.Register(progress.NewLoggingObserver(logger.Zerolog(), 0.25))
		opts = append(opts, orchestration.WithProgress(subject))
	}
	engine := orchestration.NewEngine(a.Registry, opts...)

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, aln, method, a.ErrWriter)
	}

	mem := metrics.NewMemoryCollector()
	before := mem.Snapshot()
	var monitor *sysmon.Monitor
	if a.Config.Verbose {
		monitor = sysmon.Start(ctx, sysmon.DefaultInterval)
	}

	res, err := compute(ctx, engine)
	if monitor != nil {
		peak, samples := monitor.Stop()
		zl := logger.Zerolog()
		zl.Debug().Object("memory", mem.Snapshot().Since(before)).Object("system_peak", peak).Int("samples", samples).Msg("resource usage")
	}
	if err != nil {
		return fail(err)
	}

	if err := presenter.PresentMatrix(res); err != nil {
		return fail(err)
	}
	logger.Debug("tables written",
		logging.Int("pairs", res.Pairs),
		logging.Int("failed", res.Failed),
		logging.Float64("seconds", time.Since(start).Seconds()),
		logging.Uint64("heap_alloc", mem.Snapshot().HeapAlloc))
	if !a.Config.Quiet {
		presenter.PresentSummary(res, a.ErrWriter)
	}
	if res.Failed > 0 {
		return apperrors.ExitErrorPartial
	}
	return apperrors.ExitSuccess
}

type computeFunc func(context.Context, *orchestration.Engine) (*orchestration.Result, error)

// selectRun validates the configured method against aln and returns its
// name and the engine entry point that runs it.
func (a *Application) selectRun(aln *alignment.Alignment) (string, computeFunc, error) {
	if a.Config.Method == config.MethodML {
		model, err := orchestration.BuildModel(a.Config, aln)
		if err != nil {
			return "", nil, err
		}
		est := a.Config.ToEstimator()
		return est.Bind(model).Name(), func(ctx context.Context, e *orchestration.Engine) (*orchestration.Result, error) {
			return e.LikelihoodDistances(ctx, aln, model, est)
		}, nil
	}
	calc, err := orchestration.BuildEstimator(a.Config, a.Registry, aln)
	if err != nil {
		return "", nil, err
	}
	return calc.Name(), func(ctx context.Context, e *orchestration.Engine) (*orchestration.Result, error) {
		return e.Compute(ctx, aln, calc)
	}, nil
}

// keyboard returns Stdin when it is an interactive terminal that is not
// also carrying the alignment, nil otherwise.
func (a *Application) keyboard() io.Reader {
	f, ok := a.Stdin.(*os.File)
	if !ok || a.Config.Input == "-" {
		return nil
	}
	if fi, err := f.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return nil
	}
	return f
}
