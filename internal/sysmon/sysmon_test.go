package sysmon

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestMonitor_StopReturnsPeak(t *testing.T) {
	m := Start(context.Background(), 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	peak, n := m.Stop()
	if n < 1 {
		t.Fatalf("expected at least the final sample, got %d", n)
	}
	if peak.MemPercent < 0 || peak.MemPercent > 100 {
		t.Errorf("peak MemPercent out of range: %f", peak.MemPercent)
	}

	again, n2 := m.Stop()
	if again != peak || n2 != n {
		t.Error("second Stop should return the same result")
	}
}

func TestMonitor_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := Start(ctx, 0)
	cancel()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked after context cancellation")
	}
}

func TestStats_Zerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("system", Stats{CPUPercent: 12.5, MemPercent: 40}).Msg("peak")
	if !strings.Contains(buf.String(), `"system":{"cpu_percent":12.5,"mem_percent":40}`) {
		t.Errorf("unexpected log line %s", buf.String())
	}
}
