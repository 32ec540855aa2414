// Package matrix holds the symmetric pairwise distance matrix produced by
// a run, and the write-once builder and merge step used to assemble it
// from per-worker or per-rank partial results.
package matrix

import (
	"fmt"
	"math"
	"slices"

	"github.com/agbru/distcalc/internal/distance"
	apperrors "github.com/agbru/distcalc/internal/errors"
)

// Key is an unordered pair of sequence names stored in canonical order
// (A < B).
type Key struct {
	A, B string
}

// NewKey returns the canonical key for a and b.
func NewKey(a, b string) Key {
	if b < a {
		a, b = b, a
	}
	return Key{A: a, B: b}
}

// Entry is one off-diagonal cell of the matrix.
type Entry struct {
	Key
	distance.Estimate
}

// Matrix maps unordered name pairs to estimates. It is immutable and safe
// for concurrent reads.
type Matrix struct {
	names   []string
	index   map[string]int
	entries []Entry
	lookup  map[Key]int
}

// Names returns the sequence names in sorted order.
func (m *Matrix) Names() []string { return slices.Clone(m.names) }

// Len returns the number of off-diagonal entries.
func (m *Matrix) Len() int { return len(m.entries) }

// Get returns the estimate for a and b in either order. The diagonal is
// always zero; a pair that was never computed yields MissingPairError.
func (m *Matrix) Get(a, b string) (distance.Estimate, error) {
	if a == b {
		if _, ok := m.index[a]; ok {
			return distance.Zero, nil
		}
		return distance.Estimate{}, apperrors.MissingPairError{A: a, B: b}
	}
	i, ok := m.lookup[NewKey(a, b)]
	if !ok {
		return distance.Estimate{}, apperrors.MissingPairError{A: a, B: b}
	}
	return m.entries[i].Estimate, nil
}

// Mapping returns the off-diagonal entries in enumeration order.
func (m *Matrix) Mapping() []Entry { return slices.Clone(m.entries) }

// Failed returns the entries whose distance is undefined.
func (m *Matrix) Failed() []Entry {
	var out []Entry
	for _, e := range m.entries {
		if !e.Defined() {
			out = append(out, e)
		}
	}
	return out
}

// Distances returns the square distance table in Names order. Missing
// pairs are NaN.
func (m *Matrix) Distances() [][]float64 {
	return m.table(func(e distance.Estimate) float64 { return e.Distance })
}

// StdErrors returns the square standard-error table in Names order.
func (m *Matrix) StdErrors() [][]float64 {
	return m.table(distance.Estimate.StdErr)
}

func (m *Matrix) table(value func(distance.Estimate) float64) [][]float64 {
	n := len(m.names)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			if i != j {
				out[i][j] = math.NaN()
			}
		}
	}
	for _, e := range m.entries {
		i, j := m.index[e.A], m.index[e.B]
		v := value(e.Estimate)
		out[i][j], out[j][i] = v, v
	}
	return out
}

// Builder assembles a Matrix. Each pair may be set once. A Builder is not
// safe for concurrent use.
type Builder struct {
	names   []string
	index   map[string]int
	entries []Entry
	lookup  map[Key]int
	order   map[Key]int
}

// NewBuilder creates a builder for the given sequence names.
func NewBuilder(names []string) *Builder {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	b := &Builder{
		names:  sorted,
		index:  make(map[string]int, len(sorted)),
		lookup: make(map[Key]int),
		order:  make(map[Key]int),
	}
	for i, n := range sorted {
		b.index[n] = i
	}
	// Enumeration order: outer loop over sorted names, inner over later ones.
	k := 0
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			b.order[Key{sorted[i], sorted[j]}] = k
			k++
		}
	}
	return b
}

// Set records the estimate for a and b. It fails for unknown names, for
// the diagonal, and for a pair that was already set.
func (b *Builder) Set(a, c string, est distance.Estimate) error {
	if a == c {
		return fmt.Errorf("cannot set diagonal entry %q", a)
	}
	for _, n := range []string{a, c} {
		if _, ok := b.index[n]; !ok {
			return fmt.Errorf("unknown sequence %q", n)
		}
	}
	key := NewKey(a, c)
	if _, dup := b.lookup[key]; dup {
		return fmt.Errorf("pair (%s, %s) already set", key.A, key.B)
	}
	b.lookup[key] = len(b.entries)
	b.entries = append(b.entries, Entry{Key: key, Estimate: est})
	return nil
}

// Build returns the Matrix. The builder must not be used afterwards.
func (b *Builder) Build() *Matrix {
	entries := slices.Clone(b.entries)
	slices.SortFunc(entries, func(x, y Entry) int { return b.order[x.Key] - b.order[y.Key] })
	lookup := make(map[Key]int, len(entries))
	for i, e := range entries {
		lookup[e.Key] = i
	}
	return &Matrix{names: b.names, index: b.index, entries: entries, lookup: lookup}
}

// Merge combines partial results over the same names into one Matrix.
// The result does not depend on the order of parts; a pair present in two
// parts is an error.
func Merge(names []string, parts ...[]Entry) (*Matrix, error) {
	b := NewBuilder(names)
	for _, part := range parts {
		for _, e := range part {
			if err := b.Set(e.A, e.B, e.Estimate); err != nil {
				return nil, fmt.Errorf("merging partial results: %w", err)
			}
		}
	}
	return b.Build(), nil
}
