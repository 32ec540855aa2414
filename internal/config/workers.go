package config

import "runtime"

// ApplyAdaptiveWorkers fills in a zero worker count from the hardware,
// spreading the CPUs evenly over the ranks.
func ApplyAdaptiveWorkers(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateOptimalWorkers(cfg.Ranks)
	}
	return cfg
}

// EstimateOptimalWorkers returns the per-rank worker count that keeps
// every CPU busy without oversubscribing.
func EstimateOptimalWorkers(ranks int) int {
	return max(1, runtime.NumCPU()/max(1, ranks))
}
