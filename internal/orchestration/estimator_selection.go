package orchestration

import (
	"github.com/agbru/distcalc/internal/alignment"
	"github.com/agbru/distcalc/internal/config"
	"github.com/agbru/distcalc/internal/distance"
	apperrors "github.com/agbru/distcalc/internal/errors"
	"github.com/agbru/distcalc/internal/likelihood"
)

// BuildModel constructs the substitution model named by cfg.Model for the
// alphabet of aln. f81 and hky85 use the alignment's empirical
// frequencies.
func BuildModel(cfg config.AppConfig, aln *alignment.Alignment) (likelihood.Model, error) {
	alpha := alignment.AlphabetFor(aln.Moltype())
	if cfg.Model == "jc69" || cfg.Model == "" {
		return likelihood.NewJC69(alpha)
	}
	freqs, err := likelihood.EmpiricalFrequencies(aln, alpha)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "hky85" {
		if alpha.Size() != 4 {
			return nil, apperrors.IncompatibleMoltypeError{Calculator: "ml-hky85", Moltype: string(aln.Moltype())}
		}
		return likelihood.NewHKY85(alpha, freqs, cfg.Kappa)
	}
	return likelihood.NewF81(alpha, freqs)
}

// BuildEstimator returns the pair estimator selected by cfg: a registry
// calculator for the fast method, or a likelihood estimator bound to the
// configured model.
func BuildEstimator(cfg config.AppConfig, reg *distance.Registry, aln *alignment.Alignment) (distance.PairEstimator, error) {
	if cfg.Method == config.MethodML {
		model, err := BuildModel(cfg, aln)
		if err != nil {
			return nil, err
		}
		return cfg.ToEstimator().Bind(model), nil
	}
	return reg.New(cfg.Calculator, aln.Moltype(), cfg.ToDistanceOptions())
}
