// Package sysmon samples system-wide CPU and memory usage while a distance
// matrix is being computed.
package sysmon

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// DefaultInterval is the sampling period used by Start when interval <= 0.
const DefaultInterval = 500 * time.Millisecond

// Stats holds one snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("cpu_percent", s.CPUPercent).Float64("mem_percent", s.MemPercent)
}

// Sample collects a single snapshot. CPU is the usage since the previous
// call. Unavailable values are zero.
func Sample() Stats {
	var s Stats
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// Monitor samples in the background and keeps the peak of each value.
type Monitor struct {
	mu      sync.Mutex
	peak    Stats
	samples int

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start samples every interval until ctx is done or Stop is called.
func Start(ctx context.Context, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	m := &Monitor{cancel: cancel, done: make(chan struct{})}

	Sample() // prime the CPU delta
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.record(Sample())
			}
		}
	}()
	return m
}

func (m *Monitor) record(s Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peak.CPUPercent = max(m.peak.CPUPercent, s.CPUPercent)
	m.peak.MemPercent = max(m.peak.MemPercent, s.MemPercent)
	m.samples++
}

// Stop ends sampling, takes a final sample and returns the peaks with the
// number of samples taken. It is safe to call more than once.
func (m *Monitor) Stop() (Stats, int) {
	m.once.Do(func() {
		m.cancel()
		<-m.done
		m.record(Sample())
	})
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak, m.samples
}
