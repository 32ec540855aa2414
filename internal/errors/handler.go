package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// ColorProvider supplies the escape sequences used when printing errors.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type noColor struct{}

func (noColor) Red() string    { return "" }
func (noColor) Yellow() string { return "" }
func (noColor) Reset() string  { return "" }

// ExitCode maps an error returned by a run to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		cfgErr     ConfigError
		validation ValidationError
		unknown    UnknownCalculatorError
		moltype    IncompatibleMoltypeError
		empty      EmptyAlignmentError
		data       InsufficientDataError
		pathErr    *fs.PathError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr), errors.As(err, &unknown), errors.As(err, &moltype):
		return ExitErrorConfig
	case errors.As(err, &empty), errors.As(err, &data), errors.As(err, &validation), errors.As(err, &pathErr):
		return ExitErrorInput
	}
	return ExitErrorGeneric
}

// HandleRunError prints err to out and returns the matching exit code.
// A nil colors prints without escape sequences.
func HandleRunError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = noColor{}
	}
	code := ExitCode(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sRun timed out after %s.%s\n", colors.Yellow(), duration, colors.Reset())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sRun canceled after %s.%s\n", colors.Yellow(), duration, colors.Reset())
	default:
		fmt.Fprintf(out, "%sError: %v%s\n", colors.Red(), err, colors.Reset())
	}
	return code
}
