// Package metrics exposes run metrics: Prometheus counters for pair
// outcomes and timings, and runtime memory snapshots logged in verbose
// mode.
package metrics

import (
	"runtime"

	"github.com/rs/zerolog"
)

// MemorySnapshot is a point-in-time reading of the Go heap.
type MemorySnapshot struct {
	HeapAlloc    uint64
	HeapSys      uint64
	Sys          uint64
	NumGC        uint32
	PauseTotalNs uint64
	HeapObjects  uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot calls runtime.ReadMemStats, which briefly stops the world; do
// not call it per pair.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
	}
}

// Since returns the growth from before to s. Counters that shrank (heap
// after a GC) report zero.
func (s MemorySnapshot) Since(before MemorySnapshot) MemorySnapshot {
	sub := func(a, b uint64) uint64 {
		if a < b {
			return 0
		}
		return a - b
	}
	return MemorySnapshot{
		HeapAlloc:    sub(s.HeapAlloc, before.HeapAlloc),
		HeapSys:      sub(s.HeapSys, before.HeapSys),
		Sys:          sub(s.Sys, before.Sys),
		NumGC:        uint32(sub(uint64(s.NumGC), uint64(before.NumGC))),
		PauseTotalNs: sub(s.PauseTotalNs, before.PauseTotalNs),
		HeapObjects:  sub(s.HeapObjects, before.HeapObjects),
	}
}

// MarshalZerologObject lets a snapshot be logged with Event.Object.
func (s MemorySnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("heap_alloc", s.HeapAlloc).
		Uint64("heap_sys", s.HeapSys).
		Uint64("sys", s.Sys).
		Uint32("num_gc", s.NumGC).
		Uint64("pause_total_ns", s.PauseTotalNs).
		Uint64("heap_objects", s.HeapObjects)
}
