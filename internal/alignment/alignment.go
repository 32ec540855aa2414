// Package alignment holds the read-only view of aligned sequences that the
// distance engine consumes: names, aligned bytes, declared moltype, pair
// enumeration and per-pair substitution counts.
package alignment

import (
	"fmt"

	apperrors "github.com/agbru/distcalc/internal/errors"
)

// Alignment is an immutable set of named, equal-length sequences.
type Alignment struct {
	names   []string
	seqs    [][]byte
	moltype Moltype
	length  int
}

// New validates and builds an Alignment. Names must be unique and all
// sequences must have the same length. The byte slices are retained, not
// copied; callers must not modify them afterwards.
func New(names []string, seqs [][]byte, moltype Moltype) (*Alignment, error) {
	if len(names) != len(seqs) {
		return nil, apperrors.ValidationError{
			Field:   "names",
			Message: fmt.Sprintf("%d names for %d sequences", len(names), len(seqs)),
		}
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return nil, apperrors.ValidationError{Field: "names", Message: "empty sequence name"}
		}
		if _, dup := seen[n]; dup {
			return nil, apperrors.ValidationError{Field: "names", Message: fmt.Sprintf("duplicate sequence name %q", n)}
		}
		seen[n] = struct{}{}
	}
	length := 0
	if len(seqs) > 0 {
		length = len(seqs[0])
	}
	for i, s := range seqs {
		if len(s) != length {
			return nil, apperrors.ValidationError{
				Field:   "sequences",
				Message: fmt.Sprintf("%q has length %d, expected %d (sequences must be aligned)", names[i], len(s), length),
			}
		}
	}
	return &Alignment{
		names:   append([]string(nil), names...),
		seqs:    seqs,
		moltype: moltype,
		length:  length,
	}, nil
}

// FromStrings is a convenience constructor for literal alignments.
func FromStrings(moltype Moltype, namesAndSeqs ...string) (*Alignment, error) {
	if len(namesAndSeqs)%2 != 0 {
		return nil, apperrors.ValidationError{Field: "sequences", Message: "odd number of name/sequence arguments"}
	}
	names := make([]string, 0, len(namesAndSeqs)/2)
	seqs := make([][]byte, 0, len(namesAndSeqs)/2)
	for i := 0; i < len(namesAndSeqs); i += 2 {
		names = append(names, namesAndSeqs[i])
		seqs = append(seqs, []byte(namesAndSeqs[i+1]))
	}
	return New(names, seqs, moltype)
}

// Names returns the sequence names in input order.
func (a *Alignment) Names() []string { return append([]string(nil), a.names...) }

// NumSeqs returns the number of sequences.
func (a *Alignment) NumSeqs() int { return len(a.names) }

// Len returns the number of aligned columns.
func (a *Alignment) Len() int { return a.length }

// Moltype returns the declared moltype.
func (a *Alignment) Moltype() Moltype { return a.moltype }

// Seq returns the aligned bytes of sequence i.
func (a *Alignment) Seq(i int) []byte { return a.seqs[i] }

// StateCounts tallies alphabet states over all sequences, skipping
// excluded characters. The result has one entry per state of alpha.
func (a *Alignment) StateCounts(alpha *Alphabet) []float64 {
	counts := make([]float64, alpha.Size())
	for _, s := range a.seqs {
		for _, c := range s {
			if i := alpha.Index(c); i >= 0 && i < len(counts) {
				counts[i]++
			}
		}
	}
	return counts
}
