// Package progress implements the observer side of run progress reporting.
//
// A ProgressSubject holds registered observers. The orchestration layer
// calls Freeze once per rank to obtain a lock-free ProgressCallback and then
// feeds it completion fractions in [0, 1]. A Counter turns "one more pair
// finished" events into such fractions and guarantees that the sequence a
// callback sees is monotonically non-decreasing.
package progress
