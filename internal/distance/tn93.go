package distance

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/agbru/distcalc/internal/alignment"
	apperrors "github.com/agbru/distcalc/internal/errors"
)

// Nucleotide state indices shared by the DNA (ACGT) and RNA (ACGU) alphabets.
const (
	nucA = 0
	nucC = 1
	nucG = 2
	nucT = 3
)

// TN93 is the Tamura–Nei (1993) distance: separate purine and pyrimidine
// transition rates, a shared transversion rate and unequal base
// frequencies estimated from both sequences.
type TN93 struct{ base }

func (c *TN93) Estimate(p alignment.Pair) Estimate {
	pc, err := c.count(p)
	if err != nil {
		return Failed(err, true)
	}
	return tn93FromCounts(pc.F, float64(pc.Informative))
}

func tn93FromCounts(f *mat.Dense, n float64) Estimate {
	pi := pooledFrequencies(f, n)
	piA, piC, piG, piT := pi[nucA], pi[nucC], pi[nucG], pi[nucT]
	if piA == 0 || piC == 0 || piG == 0 || piT == 0 {
		return Failed(apperrors.UndefinedDistanceError{Reason: "zero base frequency"}, true)
	}
	piR := piA + piG
	piY := piC + piT

	p1 := (f.At(nucA, nucG) + f.At(nucG, nucA)) / n
	p2 := (f.At(nucC, nucT) + f.At(nucT, nucC)) / n
	q := (n-mat.Trace(f))/n - p1 - p2

	agR := piA * piG / piR
	ctY := piC * piT / piY

	a1 := 1 - p1/(2*agR) - q/(2*piR)
	a2 := 1 - p2/(2*ctY) - q/(2*piY)
	b := 1 - q/(2*piR*piY)
	if a1 <= 0 || a2 <= 0 || b <= 0 {
		return Failed(apperrors.UndefinedDistanceError{Reason: "non-positive log argument (saturated)"}, true)
	}

	w := piR*piY - agR*piY - ctY*piR
	d := -2*agR*math.Log(a1) - 2*ctY*math.Log(a2) - 2*w*math.Log(b)

	// Partial derivatives of d with respect to P1, P2 and Q.
	c1 := 1 / a1
	c2 := 1 / a2
	c3 := agR/(piR*a1) + ctY/(piY*a2) + w/(piR*piY*b)
	mean := c1*p1 + c2*p2 + c3*q
	v := (c1*c1*p1 + c2*c2*p2 + c3*c3*q - mean*mean) / n

	return Estimate{Distance: math.Max(d, 0), Variance: math.Max(v, 0), Converged: true}
}

// pooledFrequencies returns the state frequencies of both sequences
// combined: (row sums + column sums) / 2n.
func pooledFrequencies(f *mat.Dense, n float64) []float64 {
	k, _ := f.Dims()
	pi := make([]float64, k)
	for i := 0; i < k; i++ {
		pi[i] = floats.Sum(f.RawRowView(i))
		for j := 0; j < k; j++ {
			pi[i] += f.At(j, i)
		}
	}
	floats.Scale(1/(2*n), pi)
	return pi
}
