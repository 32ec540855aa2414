package distance

import (
	"math"
	"slices"

	"github.com/agbru/distcalc/internal/alignment"
	apperrors "github.com/agbru/distcalc/internal/errors"
)

// base carries what every calculator shares: its identity, the alphabet it
// counts with and the informative-column threshold.
type base struct {
	name     string
	moltypes []alignment.Moltype
	alpha    *alignment.Alphabet
	minInfo  int
}

func (b base) Name() string { return b.name }

func (b base) Applicable(m alignment.Moltype) bool { return slices.Contains(b.moltypes, m) }

// count filters the pair and enforces the minimum-informative threshold.
func (b base) count(p alignment.Pair) (alignment.PairCounts, error) {
	pc := alignment.Count(p, b.alpha)
	if pc.Informative < b.minInfo {
		return pc, apperrors.InsufficientDataError{Informative: pc.Informative, Required: b.minInfo}
	}
	return pc, nil
}

// Hamming is the proportion of differing informative columns (p-distance).
type Hamming struct{ base }

func (h *Hamming) Estimate(p alignment.Pair) Estimate {
	pc, err := h.count(p)
	if err != nil {
		return Failed(err, true)
	}
	n := float64(pc.Informative)
	d := pc.P()
	return Estimate{Distance: d, Variance: d * (1 - d) / n, Converged: true}
}

// JC69 is the Jukes–Cantor (1969) distance for nucleotides.
type JC69 struct{ base }

func (j *JC69) Estimate(p alignment.Pair) Estimate {
	pc, err := j.count(p)
	if err != nil {
		return Failed(err, true)
	}
	n := float64(pc.Informative)
	prop := pc.P()
	w := 1 - 4*prop/3
	if w <= 0 {
		return Failed(apperrors.UndefinedDistanceError{Reason: "1-4p/3 <= 0 (saturated)"}, true)
	}
	d := -0.75 * math.Log(w)
	v := prop * (1 - prop) / (n * w * w)
	return Estimate{Distance: math.Max(d, 0), Variance: v, Converged: true}
}
