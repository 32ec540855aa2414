package alignment

import (
	"iter"
	"sort"

	apperrors "github.com/agbru/distcalc/internal/errors"
)

// Pair is a read-only view of two aligned sequences. NameA sorts before
// NameB; Index is the pair's position in enumeration order.
type Pair struct {
	Index        int
	NameA, NameB string
	SeqA, SeqB   []byte
}

// PairEnumerator produces every unordered pair of an alignment exactly once,
// in lexicographic order of names. It holds no iteration state and can be
// traversed any number of times.
type PairEnumerator struct {
	aln   *Alignment
	order []int // sequence indices sorted by name
	n     int
}

// NewPairEnumerator fails with EmptyAlignmentError when fewer than two
// sequences are present.
func NewPairEnumerator(aln *Alignment) (*PairEnumerator, error) {
	if aln == nil || aln.NumSeqs() < 2 {
		count := 0
		if aln != nil {
			count = aln.NumSeqs()
		}
		return nil, apperrors.EmptyAlignmentError{Sequences: count}
	}
	order := make([]int, aln.NumSeqs())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return aln.names[order[i]] < aln.names[order[j]] })
	return &PairEnumerator{aln: aln, order: order, n: len(order)}, nil
}

// Len returns N(N-1)/2.
func (e *PairEnumerator) Len() int { return e.n * (e.n - 1) / 2 }

// Names returns the sequence names in sorted order.
func (e *PairEnumerator) Names() []string {
	names := make([]string, e.n)
	for i, idx := range e.order {
		names[i] = e.aln.names[idx]
	}
	return names
}

// At returns the k-th pair, 0 <= k < Len().
func (e *PairEnumerator) At(k int) Pair {
	// Row i of the upper triangle holds n-1-i pairs.
	i := 0
	rem := k
	for rowLen := e.n - 1; rem >= rowLen; rowLen-- {
		rem -= rowLen
		i++
	}
	j := i + 1 + rem
	return e.pair(k, i, j)
}

// All yields (index, pair) in enumeration order.
func (e *PairEnumerator) All() iter.Seq2[int, Pair] {
	return func(yield func(int, Pair) bool) {
		k := 0
		for i := 0; i < e.n; i++ {
			for j := i + 1; j < e.n; j++ {
				if !yield(k, e.pair(k, i, j)) {
					return
				}
				k++
			}
		}
	}
}

func (e *PairEnumerator) pair(k, i, j int) Pair {
	a, b := e.order[i], e.order[j]
	return Pair{
		Index: k,
		NameA: e.aln.names[a],
		NameB: e.aln.names[b],
		SeqA:  e.aln.seqs[a],
		SeqB:  e.aln.seqs[b],
	}
}
