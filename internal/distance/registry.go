package distance

import (
	"slices"
	"strings"

	"github.com/agbru/distcalc/internal/alignment"
	apperrors "github.com/agbru/distcalc/internal/errors"
)

// Entry describes a registered calculator.
type Entry struct {
	Abbreviation string
	Moltypes     []alignment.Moltype
	Description  string
}

type constructor func(b base) Calculator

type registration struct {
	entry Entry
	build constructor
}

// Registry maps calculator abbreviations to constructors. It is immutable
// once built and safe for concurrent use.
type Registry struct {
	regs []registration
}

// NewDefaultRegistry returns the registry of the five built-in calculators.
func NewDefaultRegistry() *Registry {
	nuc := []alignment.Moltype{alignment.DNA, alignment.RNA}
	seq := []alignment.Moltype{alignment.DNA, alignment.RNA, alignment.Protein}
	return &Registry{regs: []registration{
		{Entry{"paralinear", seq, "Lake (1994) paralinear distance"},
			func(b base) Calculator { return &Paralinear{b} }},
		{Entry{"logdet", seq, "log-determinant distance, pooled composition"},
			func(b base) Calculator { return &LogDet{b} }},
		{Entry{"jc69", nuc, "Jukes-Cantor (1969)"},
			func(b base) Calculator { return &JC69{b} }},
		{Entry{"tn93", nuc, "Tamura-Nei (1993)"},
			func(b base) Calculator { return &TN93{b} }},
		{Entry{"hamming", alignment.Moltypes, "proportion of differing sites"},
			func(b base) Calculator { return &Hamming{b} }},
	}}
}

// Available returns the registered entries in registration order.
func (r *Registry) Available() []Entry {
	out := make([]Entry, len(r.regs))
	for i, reg := range r.regs {
		e := reg.entry
		e.Moltypes = slices.Clone(e.Moltypes)
		out[i] = e
	}
	return out
}

// List returns the registered abbreviations in registration order.
func (r *Registry) List() []string {
	names := make([]string, len(r.regs))
	for i, reg := range r.regs {
		names[i] = reg.entry.Abbreviation
	}
	return names
}

// Lookup finds an entry by case-insensitive abbreviation.
func (r *Registry) Lookup(name string) (Entry, error) {
	reg, err := r.find(name)
	if err != nil {
		return Entry{}, err
	}
	return reg.entry, nil
}

// New builds the named calculator for moltype m. It fails with
// UnknownCalculatorError or IncompatibleMoltypeError.
func (r *Registry) New(name string, m alignment.Moltype, opts Options) (Calculator, error) {
	reg, err := r.find(name)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(reg.entry.Moltypes, m) {
		return nil, apperrors.IncompatibleMoltypeError{Calculator: reg.entry.Abbreviation, Moltype: string(m)}
	}
	return reg.build(base{
		name:     reg.entry.Abbreviation,
		moltypes: reg.entry.Moltypes,
		alpha:    alignment.AlphabetFor(m),
		minInfo:  opts.minInformative(),
	}), nil
}

func (r *Registry) find(name string) (registration, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, reg := range r.regs {
		if reg.entry.Abbreviation == key {
			return reg, nil
		}
	}
	return registration{}, apperrors.UnknownCalculatorError{Name: name, Available: r.List()}
}
