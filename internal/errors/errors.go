package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorPartial  = 3   // Indicates that some pairs have undefined distances.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorInput    = 5   // Indicates an unusable input alignment.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// EmptyAlignmentError is returned at setup when an alignment holds fewer
// than two sequences, so that no pair can be formed.
type EmptyAlignmentError struct {
	// Sequences is the number of sequences found.
	Sequences int
}

func (e EmptyAlignmentError) Error() string {
	return fmt.Sprintf("alignment has %d sequence(s), need at least 2", e.Sequences)
}

// UnknownCalculatorError is returned when a calculator abbreviation is not
// registered.
type UnknownCalculatorError struct {
	// Name is the requested abbreviation.
	Name string
	// Available lists the registered abbreviations.
	Available []string
}

func (e UnknownCalculatorError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown distance calculator %q", e.Name)
	}
	return fmt.Sprintf("unknown distance calculator %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// IncompatibleMoltypeError is returned when a calculator or model cannot be
// applied to the declared moltype of an alignment.
type IncompatibleMoltypeError struct {
	// Calculator is the calculator or model name.
	Calculator string
	// Moltype is the alignment's declared moltype.
	Moltype string
}

func (e IncompatibleMoltypeError) Error() string {
	return fmt.Sprintf("%s is not applicable to moltype %q", e.Calculator, e.Moltype)
}

// InsufficientDataError marks a pair with too few informative columns.
type InsufficientDataError struct {
	// Informative is the number of columns left after filtering.
	Informative int
	// Required is the configured minimum.
	Required int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d informative column(s), need %d", e.Informative, e.Required)
}

// SingularMatrixError marks a pair whose substitution frequency matrix has a
// non-positive determinant.
type SingularMatrixError struct {
	// Det is the signed determinant (0 when exactly singular).
	Det float64
}

func (e SingularMatrixError) Error() string {
	return fmt.Sprintf("singular substitution matrix (det=%g)", e.Det)
}

// UndefinedDistanceError marks a pair whose distance formula has no finite
// solution, typically because the sequences are saturated.
type UndefinedDistanceError struct {
	// Reason is a short description of the violated condition.
	Reason string
}

func (e UndefinedDistanceError) Error() string {
	return "distance undefined: " + e.Reason
}

// NonConvergenceError marks a pair for which the likelihood optimiser hit
// its iteration ceiling, or failed, before converging.
type NonConvergenceError struct {
	// Iterations is the number of major iterations performed.
	Iterations int
	// Cause is the optimiser error, if any.
	Cause error
}

func (e NonConvergenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("optimiser did not converge after %d iteration(s): %v", e.Iterations, e.Cause)
	}
	return fmt.Sprintf("optimiser did not converge after %d iteration(s)", e.Iterations)
}

// Unwrap returns the optimiser error.
func (e NonConvergenceError) Unwrap() error { return e.Cause }

// MissingPairError is returned by matrix queries for a pair that was never
// computed.
type MissingPairError struct {
	A, B string
}

func (e MissingPairError) Error() string {
	return fmt.Sprintf("no estimate for pair (%s, %s)", e.A, e.B)
}

// IsSetupError reports whether err aborts a run before pair computation.
func IsSetupError(err error) bool {
	var (
		empty   EmptyAlignmentError
		unknown UnknownCalculatorError
		moltype IncompatibleMoltypeError
	)
	return errors.As(err, &empty) || errors.As(err, &unknown) || errors.As(err, &moltype)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
