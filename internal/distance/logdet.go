package distance

import (
	"math"
	"math/big"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/agbru/distcalc/internal/alignment"
	apperrors "github.com/agbru/distcalc/internal/errors"
)

// LogDet is the log-determinant distance −(1/k)[ln det J − ln det Π̄],
// where J is the joint state-frequency matrix of the pair and Π̄ the
// diagonal matrix of the pooled composition of both sequences.
//
// The normaliser is deliberately the pooled mean composition rather than
// the geometric mean of the two per-sequence composition determinants.
// The geometric-mean form is exactly Paralinear, so using it here would
// make the two calculators identical. Values therefore differ from
// implementations that normalise LogDet by the geometric mean whenever
// the two compositions differ.
type LogDet struct{ base }

func (c *LogDet) Estimate(p alignment.Pair) Estimate {
	pc, err := c.count(p)
	if err != nil {
		return Failed(err, true)
	}
	return determinantDistance(pc, func(rowA, colB []float64, i, j int) (float64, float64) {
		// term, d term/d J_ij
		mi := (rowA[i] + colB[i]) / 2
		mj := (rowA[j] + colB[j]) / 2
		return math.Log(mi), 1/(2*mi) + 1/(2*mj)
	})
}

// Paralinear is Lake's (1994) paralinear distance
// −(1/k)[ln det J − ½ ln det ΠA − ½ ln det ΠB], normalising by each
// sequence's own composition so that compositional heterogeneity between
// the two sequences does not inflate the distance.
type Paralinear struct{ base }

func (c *Paralinear) Estimate(p alignment.Pair) Estimate {
	pc, err := c.count(p)
	if err != nil {
		return Failed(err, true)
	}
	return determinantDistance(pc, func(rowA, colB []float64, i, j int) (float64, float64) {
		return (math.Log(rowA[i]) + math.Log(colB[i])) / 2, 1/(2*rowA[i]) + 1/(2*colB[j])
	})
}

// compositionTerm returns, for state i, the contribution of the
// composition normaliser to the log term, and for cell (i, j) the
// derivative of the whole normaliser with respect to J_ij.
type compositionTerm func(rowA, colB []float64, i, j int) (logTerm, grad float64)

// maxCondition is the largest 2-norm condition number of J for which the
// log-determinant and its gradient are still trusted.
const maxCondition = 1e12

func determinantDistance(pc alignment.PairCounts, norm compositionTerm) Estimate {
	k, _ := pc.F.Dims()
	n := float64(pc.Informative)

	// Singularity is decided on the exact integer determinant and the
	// singular values of J. Both are invariant under transposition, so
	// swapping the two sequences cannot change the verdict.
	det := countDeterminant(pc.F)
	if det.Sign() <= 0 {
		d, _ := new(big.Float).SetInt(det).Float64()
		return Failed(apperrors.SingularMatrixError{Det: d / math.Pow(n, float64(k))}, true)
	}

	var j mat.Dense
	j.Scale(1/n, pc.F)
	if cond := mat.Cond(&j, 2); !(cond <= maxCondition) {
		return Failed(apperrors.SingularMatrixError{Det: mat.Det(&j)}, true)
	}
	logDet, _ := mat.LogDet(&j)

	var inv mat.Dense
	if err := inv.Inverse(&j); err != nil {
		return Failed(apperrors.SingularMatrixError{Det: mat.Det(&j)}, true)
	}

	rowA := make([]float64, k)
	colB := make([]float64, k)
	for i := 0; i < k; i++ {
		rowA[i] = floats.Sum(j.RawRowView(i))
		colB[i] = mat.Sum(j.ColView(i))
	}

	normLog := 0.0
	for i := 0; i < k; i++ {
		l, _ := norm(rowA, colB, i, i)
		normLog += l
	}
	scale := -1 / float64(k)
	d := scale * (logDet - normLog)

	// Delta method over the multinomial cell frequencies J_ij.
	var s1, s2 float64
	for r := 0; r < k; r++ {
		for c := 0; c < k; c++ {
			jrc := j.At(r, c)
			if jrc == 0 {
				continue
			}
			_, g := norm(rowA, colB, r, c)
			a := scale * (inv.At(c, r) - g)
			s1 += jrc * a * a
			s2 += jrc * a
		}
	}
	v := (s1 - s2*s2) / n

	return Estimate{Distance: math.Max(d, 0), Variance: math.Max(v, 0), Converged: true}
}

// countDeterminant returns det F exactly by fraction-free (Bareiss)
// elimination. F holds integer counts.
func countDeterminant(f *mat.Dense) *big.Int {
	k, _ := f.Dims()
	m := make([][]*big.Int, k)
	for r := range m {
		m[r] = make([]*big.Int, k)
		for c := range m[r] {
			m[r][c] = big.NewInt(int64(f.At(r, c)))
		}
	}

	sign := 1
	prev := big.NewInt(1)
	var t1, t2 big.Int
	for p := 0; p < k; p++ {
		if m[p][p].Sign() == 0 {
			swap := -1
			for r := p + 1; r < k; r++ {
				if m[r][p].Sign() != 0 {
					swap = r
					break
				}
			}
			if swap < 0 {
				return new(big.Int)
			}
			m[p], m[swap] = m[swap], m[p]
			sign = -sign
		}
		for r := p + 1; r < k; r++ {
			for c := p + 1; c < k; c++ {
				t1.Mul(m[r][c], m[p][p])
				t2.Mul(m[r][p], m[p][c])
				t1.Sub(&t1, &t2)
				m[r][c] = new(big.Int).Quo(&t1, prev)
			}
		}
		prev = m[p][p]
	}
	det := new(big.Int).Set(m[k-1][k-1])
	if sign < 0 {
		det.Neg(det)
	}
	return det
}
