// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// setup, per-pair numerical failures, queries) and for carrying the
// underlying cause.
//
// Setup errors (EmptyAlignmentError, UnknownCalculatorError,
// IncompatibleMoltypeError) abort a run before any pair is processed.
// Per-pair errors (InsufficientDataError, SingularMatrixError,
// NonConvergenceError, UndefinedDistanceError) are recorded next to a NaN
// estimate and never abort a batch.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Error types carrying a cause implement Unwrap() to support errors.Is() and errors.As().
package apperrors
