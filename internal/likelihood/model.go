// Package likelihood estimates pairwise distances by maximum likelihood
// under a time-reversible substitution model.
//
// The two sequences sit at the tips of a two-taxon tree. By the pulley
// principle only the sum t of the two branch lengths is identifiable, so
// the fit is one-dimensional: t is found with gonum's Nelder-Mead on ln t
// and its standard error comes from the observed information, the negated
// second derivative of the log-likelihood at the optimum.
package likelihood

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/agbru/distcalc/internal/alignment"
	apperrors "github.com/agbru/distcalc/internal/errors"
)

// minProb keeps log-likelihood terms finite when a transition probability
// underflows.
const minProb = 1e-300

// Model is a substitution model that scores a pair count matrix for a
// given total branch length. Models are read-only after construction and
// safe to share between goroutines.
type Model interface {
	Name() string
	Alphabet() *alignment.Alphabet
	// LogLikelihood returns ln L(t) for the k×k count matrix of a pair,
	// rows indexed by the state of the first sequence.
	LogLikelihood(counts *mat.Dense, t float64) float64
}

// ReversibleModel is a time-reversible model defined by stationary
// frequencies π and symmetric exchangeabilities r, with rate matrix
// Q_ij = r_ij π_j scaled to one expected substitution per unit time.
type ReversibleModel struct {
	name  string
	alpha *alignment.Alphabet
	pi    []float64
	q     *mat.Dense
	kappa float64
}

// NewJC69 returns the Jukes-Cantor model on alpha: equal frequencies and
// equal exchangeabilities.
func NewJC69(alpha *alignment.Alphabet) (*ReversibleModel, error) {
	if err := checkClosed("jc69", alpha); err != nil {
		return nil, err
	}
	k := alpha.Size()
	pi := make([]float64, k)
	for i := range pi {
		pi[i] = 1 / float64(k)
	}
	return newReversible("jc69", alpha, pi, 1, equalRates)
}

// NewF81 returns Felsenstein's 1981 model: arbitrary frequencies, equal
// exchangeabilities.
func NewF81(alpha *alignment.Alphabet, freqs []float64) (*ReversibleModel, error) {
	if err := checkClosed("f81", alpha); err != nil {
		return nil, err
	}
	return newReversible("f81", alpha, freqs, 1, equalRates)
}

// NewHKY85 returns the Hasegawa-Kishino-Yano model: arbitrary nucleotide
// frequencies and a transition/transversion rate ratio kappa.
func NewHKY85(alpha *alignment.Alphabet, freqs []float64, kappa float64) (*ReversibleModel, error) {
	if err := checkClosed("hky85", alpha); err != nil {
		return nil, err
	}
	if alpha.Size() != 4 {
		return nil, apperrors.ValidationError{Field: "model", Message: "hky85 requires a nucleotide alphabet"}
	}
	if !(kappa > 0) || math.IsInf(kappa, 1) {
		return nil, apperrors.ValidationError{Field: "kappa", Message: fmt.Sprintf("must be positive and finite, got %v", kappa)}
	}
	return newReversible("hky85", alpha, freqs, kappa, func(i, j int) float64 {
		if isTransition(i, j) {
			return kappa
		}
		return 1
	})
}

func equalRates(int, int) float64 { return 1 }

// isTransition reports whether i↔j is a purine (A↔G) or pyrimidine
// (C↔T/U) substitution in ACGT/ACGU index order.
func isTransition(i, j int) bool {
	return (i == 0 && j == 2) || (i == 2 && j == 0) || (i == 1 && j == 3) || (i == 3 && j == 1)
}

func checkClosed(name string, alpha *alignment.Alphabet) error {
	if alpha == nil || alpha.Open() || alpha.Size() < 2 {
		return apperrors.ValidationError{Field: "model", Message: name + " requires a closed alphabet of at least two states"}
	}
	return nil
}

func newReversible(name string, alpha *alignment.Alphabet, freqs []float64, kappa float64, rate func(i, j int) float64) (*ReversibleModel, error) {
	k := alpha.Size()
	if len(freqs) != k {
		return nil, apperrors.ValidationError{Field: "frequencies", Message: fmt.Sprintf("expected %d values, got %d", k, len(freqs))}
	}
	positive := 0
	for _, f := range freqs {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, apperrors.ValidationError{Field: "frequencies", Message: fmt.Sprintf("invalid frequency %v", f)}
		}
		if f > 0 {
			positive++
		}
	}
	if positive < 2 {
		return nil, apperrors.ValidationError{Field: "frequencies", Message: "at least two states need a positive frequency"}
	}
	pi := make([]float64, k)
	copy(pi, freqs)
	floats.Scale(1/floats.Sum(pi), pi)

	q := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		var row float64
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			v := rate(i, j) * pi[j]
			q.Set(i, j, v)
			row += v
		}
		q.Set(i, i, -row)
	}

	var mu float64
	for i := 0; i < k; i++ {
		mu -= pi[i] * q.At(i, i)
	}
	q.Scale(1/mu, q)

	return &ReversibleModel{name: name, alpha: alpha, pi: pi, q: q, kappa: kappa}, nil
}

// Name implements Model.
func (m *ReversibleModel) Name() string { return m.name }

// Alphabet implements Model.
func (m *ReversibleModel) Alphabet() *alignment.Alphabet { return m.alpha }

// Frequencies returns a copy of the stationary frequencies.
func (m *ReversibleModel) Frequencies() []float64 {
	return append([]float64(nil), m.pi...)
}

// Kappa returns the transition/transversion ratio (1 for jc69 and f81).
func (m *ReversibleModel) Kappa() float64 { return m.kappa }

// RateMatrix returns a copy of the normalised rate matrix Q.
func (m *ReversibleModel) RateMatrix() *mat.Dense {
	return mat.DenseCopyOf(m.q)
}

// Transition returns P(t) = exp(Qt).
func (m *ReversibleModel) Transition(t float64) *mat.Dense {
	var qt, p mat.Dense
	qt.Scale(t, m.q)
	p.Exp(&qt)
	return &p
}

// LogLikelihood implements Model: Σ n_ij ln(π_i P_ij(t)).
func (m *ReversibleModel) LogLikelihood(counts *mat.Dense, t float64) float64 {
	p := m.Transition(t)
	k := len(m.pi)
	var ll float64
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			n := counts.At(i, j)
			if n == 0 {
				continue
			}
			ll += n * math.Log(math.Max(m.pi[i]*p.At(i, j), minProb))
		}
	}
	return ll
}

// EmpiricalFrequencies returns the state frequencies of aln under alpha,
// ignoring excluded characters. It fails when no character is counted.
func EmpiricalFrequencies(aln *alignment.Alignment, alpha *alignment.Alphabet) ([]float64, error) {
	if err := checkClosed("empirical frequencies", alpha); err != nil {
		return nil, err
	}
	counts := aln.StateCounts(alpha)
	total := floats.Sum(counts)
	if total == 0 {
		return nil, apperrors.InsufficientDataError{Informative: 0, Required: 1}
	}
	floats.Scale(1/total, counts)
	return counts, nil
}
