package alignment

import "gonum.org/v1/gonum/mat"

// PairCounts summarises the informative columns of a pair.
type PairCounts struct {
	// F is the k×k substitution count matrix, rows indexed by the state in
	// SeqA and columns by the state in SeqB. Nil for open alphabets.
	F *mat.Dense
	// Informative is the number of columns where both characters are valid.
	Informative int
	// Diffs is the number of informative columns that differ.
	Diffs int
}

// P returns the proportion of differing informative columns.
func (c PairCounts) P() float64 {
	if c.Informative == 0 {
		return 0
	}
	return float64(c.Diffs) / float64(c.Informative)
}

// Count filters the columns of p through alpha, dropping any column in
// which either character is excluded.
func Count(p Pair, alpha *Alphabet) PairCounts {
	var pc PairCounts
	if alpha.Open() {
		for col := range p.SeqA {
			x, y := p.SeqA[col], p.SeqB[col]
			if !alpha.Valid(x) || !alpha.Valid(y) {
				continue
			}
			pc.Informative++
			if x != y {
				pc.Diffs++
			}
		}
		return pc
	}

	k := alpha.Size()
	data := make([]float64, k*k)
	for col := range p.SeqA {
		i, j := alpha.Index(p.SeqA[col]), alpha.Index(p.SeqB[col])
		if i < 0 || j < 0 {
			continue
		}
		data[i*k+j]++
		pc.Informative++
		if i != j {
			pc.Diffs++
		}
	}
	pc.F = mat.NewDense(k, k, data)
	return pc
}
