package alignment

import (
	"fmt"
	"strings"
)

// Moltype is the declared biological alphabet of an alignment.
type Moltype string

const (
	DNA     Moltype = "dna"
	RNA     Moltype = "rna"
	Protein Moltype = "protein"
	Text    Moltype = "text"
)

// Moltypes lists every supported moltype in display order.
var Moltypes = []Moltype{DNA, RNA, Protein, Text}

// ParseMoltype resolves a case-insensitive moltype name.
func ParseMoltype(s string) (Moltype, error) {
	m := Moltype(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case DNA, RNA, Protein, Text:
		return m, nil
	}
	return "", fmt.Errorf("unknown moltype %q", s)
}

const (
	dnaStates     = "ACGT"
	rnaStates     = "ACGU"
	proteinStates = "ACDEFGHIKLMNPQRSTVWY"
)

// Alphabet maps characters to state indices. A closed alphabet has a fixed,
// ordered set of canonical states; characters outside it (gaps, missing
// data, ambiguity codes) are excluded from counting. An open alphabet
// accepts every character except gap and missing markers.
type Alphabet struct {
	states string
	index  [256]int16
	open   bool
}

func newAlphabet(states string) *Alphabet {
	a := &Alphabet{states: states}
	for i := range a.index {
		a.index[i] = -1
	}
	for i := 0; i < len(states); i++ {
		c := states[i]
		a.index[c] = int16(i)
		if lc := c | 0x20; lc >= 'a' && lc <= 'z' {
			a.index[lc] = int16(i)
		}
	}
	return a
}

func newOpenAlphabet() *Alphabet {
	a := &Alphabet{open: true}
	for i := range a.index {
		a.index[i] = int16(i)
	}
	for _, c := range []byte{'-', '.', '?', ' '} {
		a.index[c] = -1
	}
	return a
}

var (
	dnaAlphabet     = newAlphabet(dnaStates)
	rnaAlphabet     = newAlphabet(rnaStates)
	proteinAlphabet = newAlphabet(proteinStates)
	textAlphabet    = newOpenAlphabet()
)

// AlphabetFor returns the canonical alphabet of a moltype. Alphabets are
// immutable and safe to share.
func AlphabetFor(m Moltype) *Alphabet {
	switch m {
	case DNA:
		return dnaAlphabet
	case RNA:
		return rnaAlphabet
	case Protein:
		return proteinAlphabet
	default:
		return textAlphabet
	}
}

// Index returns the state index of c, or -1 when c is excluded.
func (a *Alphabet) Index(c byte) int { return int(a.index[c]) }

// Valid reports whether c is counted under this alphabet.
func (a *Alphabet) Valid(c byte) bool { return a.index[c] >= 0 }

// Size returns the number of canonical states (0 for an open alphabet).
func (a *Alphabet) Size() int { return len(a.states) }

// States returns the canonical states in index order.
func (a *Alphabet) States() string { return a.states }

// Open reports whether the alphabet accepts arbitrary characters.
func (a *Alphabet) Open() bool { return a.open }
