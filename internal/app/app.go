package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/agbru/distcalc/internal/cli"
	"github.com/agbru/distcalc/internal/config"
	"github.com/agbru/distcalc/internal/distance"
	apperrors "github.com/agbru/distcalc/internal/errors"
	"github.com/agbru/distcalc/internal/logging"
	"github.com/agbru/distcalc/internal/ui"
)

// Application represents the distcalc application instance.
type Application struct {
	Config    config.AppConfig
	Registry  *distance.Registry
	ErrWriter io.Writer
	// Stdin feeds dashboard key presses when it is a terminal.
	Stdin io.Reader
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithRegistry sets a custom calculator registry.
func WithRegistry(r *distance.Registry) AppOption {
	return func(a *Application) { a.Registry = r }
}

// WithStdin sets the reader the -tui dashboard takes key presses from.
func WithStdin(r io.Reader) AppOption {
	return func(a *Application) { a.Stdin = r }
}

// New creates an Application by parsing command-line arguments. args[0]
// is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Registry == nil {
		app.Registry = distance.NewDefaultRegistry()
	}

	programName := "distcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Registry.List())
	if err != nil {
		return nil, err
	}
	app.Config = config.ApplyAdaptiveWorkers(cfg)
	return app, nil
}

// Run executes the configured mode and returns the process exit code.
// Tables are written to out; everything else goes to ErrWriter.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(false)

	if a.Config.List {
		cli.PrintCalculatorList(a.Registry.Available(), out)
		return apperrors.ExitSuccess
	}
	return a.runCalculate(ctx, out)
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Registry.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// newLogger returns the console logger on ErrWriter at the level selected
// by -v and -q.
func (a *Application) newLogger() *logging.ZerologAdapter {
	level := zerolog.InfoLevel
	switch {
	case a.Config.Verbose:
		level = zerolog.DebugLevel
	case a.Config.Quiet:
		level = zerolog.ErrorLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: a.ErrWriter, NoColor: ui.GetCurrentTheme().Name == "none"}).
		Level(level).
		With().Timestamp().Str("component", "distcalc").Logger()
	return logging.NewZerologAdapter(zl)
}

// IsHelpError reports whether err comes from a -h/--help request.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
