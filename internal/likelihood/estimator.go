package likelihood

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/agbru/distcalc/internal/alignment"
	"github.com/agbru/distcalc/internal/distance"
	apperrors "github.com/agbru/distcalc/internal/errors"
)

// Defaults applied to zero-valued Estimator fields.
const (
	DefaultMaxIterations   = 500
	DefaultTolerance       = 1e-10
	DefaultStallIterations = 20
	DefaultMinBranch       = 1e-8
	DefaultMaxBranch       = 10.0
)

// errStalled is the cause recorded when the optimizer stops on a limit.
var errStalled = errors.New("optimizer stopped before the likelihood converged")

// Estimator fits the total branch length of a pair by maximum likelihood.
// The zero value is usable; zero fields take the package defaults.
type Estimator struct {
	// MaxIterations bounds the Nelder-Mead iterations per pair.
	MaxIterations int
	// Tolerance is the relative improvement of -lnL below which an
	// iteration counts as stalled.
	Tolerance float64
	// StallIterations is the number of consecutive stalled iterations
	// that ends the search.
	StallIterations int
	// MinBranch and MaxBranch clamp the branch length. An optimum at
	// MaxBranch means the pair is saturated.
	MinBranch float64
	MaxBranch float64
	// MinInformative has the same meaning as distance.Options.
	MinInformative int
}

// DefaultEstimator returns an Estimator with every field set to its default.
func DefaultEstimator() Estimator {
	return Estimator{}.WithDefaults()
}

// WithDefaults returns e with every zero field replaced by its default.
func (e Estimator) WithDefaults() Estimator {
	if e.MaxIterations <= 0 {
		e.MaxIterations = DefaultMaxIterations
	}
	if !(e.Tolerance > 0) {
		e.Tolerance = DefaultTolerance
	}
	if e.StallIterations <= 0 {
		e.StallIterations = DefaultStallIterations
	}
	if !(e.MinBranch > 0) {
		e.MinBranch = DefaultMinBranch
	}
	if !(e.MaxBranch > e.MinBranch) {
		e.MaxBranch = max(DefaultMaxBranch, 10*e.MinBranch)
	}
	if e.MinInformative < 1 {
		e.MinInformative = distance.DefaultMinInformative
	}
	return e
}

// Bind returns a PairEstimator that fits every pair under m.
func (e Estimator) Bind(m Model) distance.PairEstimator {
	return &boundEstimator{est: e.WithDefaults(), model: m}
}

type boundEstimator struct {
	est   Estimator
	model Model
}

func (b *boundEstimator) Name() string { return "ml-" + b.model.Name() }

func (b *boundEstimator) Estimate(p alignment.Pair) distance.Estimate {
	return b.est.Fit(alignment.Count(p, b.model.Alphabet()), b.model)
}

// Fit estimates the distance for the counts of one pair.
func (e Estimator) Fit(pc alignment.PairCounts, m Model) distance.Estimate {
	e = e.WithDefaults()
	if pc.Informative < e.MinInformative {
		return distance.Failed(apperrors.InsufficientDataError{Informative: pc.Informative, Required: e.MinInformative}, true)
	}
	if pc.F == nil {
		return distance.Failed(apperrors.UndefinedDistanceError{Reason: "model needs a closed alphabet"}, true)
	}
	// P_ii(t) of a reversible model decreases in t, so identical
	// sequences are fitted exactly by t = 0.
	if pc.Diffs == 0 {
		return distance.Zero
	}

	clampT := func(t float64) float64 { return min(max(t, e.MinBranch), e.MaxBranch) }
	logL := func(t float64) float64 { return m.LogLikelihood(pc.F, t) }

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return -logL(clampT(math.Exp(x[0]))) },
	}
	settings := &optimize.Settings{
		MajorIterations: e.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Relative:   e.Tolerance,
			Iterations: e.StallIterations,
		},
	}
	x0 := math.Log(clampT(startingPoint(pc, m.Alphabet().Size())))

	res, err := optimize.Minimize(problem, []float64{x0}, settings, &optimize.NelderMead{})
	if res == nil || err != nil || !converged(res.Status) {
		iters := 0
		if res != nil {
			iters = res.MajorIterations
		}
		if err == nil {
			err = errStalled
		}
		return distance.Failed(apperrors.NonConvergenceError{Iterations: iters, Cause: err}, false)
	}

	t := clampT(math.Exp(res.X[0]))
	switch {
	case t >= e.MaxBranch:
		return distance.Failed(apperrors.UndefinedDistanceError{Reason: "likelihood maximised at the upper branch bound (saturated)"}, true)
	case t <= e.MinBranch:
		return distance.Estimate{
			Distance:  0,
			Variance:  math.NaN(),
			Converged: true,
			Err:       apperrors.UndefinedDistanceError{Reason: "optimum at the lower branch bound, curvature unavailable"},
		}
	}

	info := -fd.Derivative(logL, t, &fd.Settings{Formula: fd.Central2nd, Step: curvatureStep(t, e.MinBranch)})
	if !(info > 0) || math.IsInf(info, 0) {
		return distance.Estimate{
			Distance:  t,
			Variance:  math.NaN(),
			Converged: true,
			Err:       apperrors.UndefinedDistanceError{Reason: "non-positive curvature at the optimum"},
		}
	}
	return distance.Estimate{Distance: t, Variance: 1 / info, Converged: true}
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

// startingPoint is the Jukes-Cantor style distance for a k-state
// alphabet, or 1 when that formula is undefined.
func startingPoint(pc alignment.PairCounts, k int) float64 {
	b := float64(k-1) / float64(k)
	if w := 1 - pc.P()/b; w > 0 {
		return -b * math.Log(w)
	}
	return 1
}

// curvatureStep picks a finite-difference step proportional to t that
// keeps t-h inside the feasible range.
func curvatureStep(t, lower float64) float64 {
	h := max(1e-3*t, 1e-7)
	if t-h <= lower {
		h = (t - lower) / 2
	}
	return h
}
