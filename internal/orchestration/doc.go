// Package orchestration runs pairwise distance estimation over an
// alignment: it enumerates the pairs, spreads them over ranks and a
// bounded worker pool, reports progress, and merges the per-rank partial
// results into a single matrix. It decouples business logic from
// presentation via the ProgressReporter and ResultPresenter interfaces.
package orchestration
