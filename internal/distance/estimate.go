// Package distance implements the closed-form pairwise distance calculators
// (hamming, jc69, tn93, logdet, paralinear) and the registry that exposes
// them by abbreviation.
//
// Every calculator reduces a pair to its informative columns, computes a
// distance and a delta-method variance, and never iterates. Numerical
// failures are reported in Estimate.Err next to NaN values; they are never
// downgraded to zero.
package distance

//go:generate mockgen -source=estimate.go -destination=mocks/mock_estimate.go -package=mocks

import (
	"math"

	"github.com/agbru/distcalc/internal/alignment"
)

// Estimate is the result for one pair.
type Estimate struct {
	// Distance is non-negative, or NaN when undefined.
	Distance float64
	// Variance is non-negative, or NaN when unavailable.
	Variance float64
	// Converged is false only when an iterative estimator gave up.
	Converged bool
	// Err records why Distance or Variance is NaN.
	Err error
}

// StdErr returns the standard error, sqrt(Variance).
func (e Estimate) StdErr() float64 { return math.Sqrt(e.Variance) }

// Defined reports whether the distance is a number.
func (e Estimate) Defined() bool { return !math.IsNaN(e.Distance) }

// Zero is the estimate of a sequence against itself.
var Zero = Estimate{Distance: 0, Variance: 0, Converged: true}

// Failed builds a NaN estimate carrying err.
func Failed(err error, converged bool) Estimate {
	return Estimate{Distance: math.NaN(), Variance: math.NaN(), Converged: converged, Err: err}
}

// PairEstimator computes an Estimate for a single pair. Implementations
// must be safe for concurrent use.
type PairEstimator interface {
	Name() string
	Estimate(p alignment.Pair) Estimate
}

// Calculator is a closed-form estimator bound to an alphabet.
type Calculator interface {
	PairEstimator
	// Applicable reports whether the calculator supports moltype m.
	Applicable(m alignment.Moltype) bool
}

// DefaultMinInformative is the smallest number of informative columns a
// pair needs before a distance is attempted.
const DefaultMinInformative = 1

// Options configure a calculator.
type Options struct {
	// MinInformative is the minimum number of informative columns; values
	// below 1 select DefaultMinInformative.
	MinInformative int
}

func (o Options) minInformative() int {
	if o.MinInformative < 1 {
		return DefaultMinInformative
	}
	return o.MinInformative
}
