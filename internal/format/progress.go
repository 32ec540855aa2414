package format

import (
	"fmt"
	"strings"
	"time"
)

// maxETA caps the remaining-time estimate shown to users.
const maxETA = 24 * time.Hour

// etaSmoothing is the weight of the newest rate sample in the moving
// average used for ETA estimation.
const etaSmoothing = 0.3

// ProgressState holds the completion fraction of each rank of a run.
// It is not safe for concurrent use.
type ProgressState struct {
	progresses []float64
	numRanks   int
}

// NewProgressState creates a state tracking numRanks ranks.
func NewProgressState(numRanks int) *ProgressState {
	if numRanks < 0 {
		numRanks = 0
	}
	return &ProgressState{progresses: make([]float64, numRanks), numRanks: numRanks}
}

// Update records the fraction of rank idx. Out-of-range ranks are ignored
// and values are clamped to [0, 1].
func (s *ProgressState) Update(idx int, value float64) {
	if idx < 0 || idx >= s.numRanks {
		return
	}
	s.progresses[idx] = min(max(value, 0), 1)
}

// CalculateAverage returns the mean fraction over all ranks.
func (s *ProgressState) CalculateAverage() float64 {
	if s.numRanks == 0 {
		return 0
	}
	var sum float64
	for _, p := range s.progresses {
		sum += p
	}
	return sum / float64(s.numRanks)
}

// ProgressWithETA extends ProgressState with a smoothed completion rate
// from which a remaining-time estimate is derived.
type ProgressWithETA struct {
	*ProgressState
	numRanks     int
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // fraction per second
}

// NewProgressWithETA creates an ETA-aware state for numRanks ranks.
func NewProgressWithETA(numRanks int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numRanks),
		numRanks:      numRanks,
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records a rank update and returns the average progress
// and the current ETA.
func (p *ProgressWithETA) UpdateWithETA(idx int, value float64) (float64, time.Duration) {
	p.Update(idx, value)
	avg := p.CalculateAverage()

	now := time.Now()
	if elapsed := now.Sub(p.lastUpdate).Seconds(); elapsed > 0 && avg > p.lastProgress {
		rate := (avg - p.lastProgress) / elapsed
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = etaSmoothing*rate + (1-etaSmoothing)*p.progressRate
		}
		p.lastProgress = avg
		p.lastUpdate = now
	}
	return avg, p.GetETA()
}

// GetETA returns the estimated remaining time, or 0 while no rate is known.
func (p *ProgressWithETA) GetETA() time.Duration {
	if p.progressRate <= 0 {
		return 0
	}
	remaining := 1 - p.CalculateAverage()
	if remaining <= 0 {
		return 0
	}
	secs := remaining / p.progressRate
	if secs >= maxETA.Seconds() {
		return maxETA
	}
	return time.Duration(secs * float64(time.Second))
}

// Elapsed returns the time since the state was created.
func (p *ProgressWithETA) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// FormatETA renders an ETA compactly, e.g. "45s", "2m30s", "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta / time.Minute)
		if s := int((eta % time.Minute) / time.Second); s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(eta / time.Hour)
	if m := int((eta % time.Hour) / time.Minute); m > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

// ProgressBar renders a bar of length cells for a fraction in [0, 1].
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar]  42.0% ETA: 1m5s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), min(max(progress, 0), 1)*100, FormatETA(eta))
}

// FormatNumberString inserts thousands separators into a decimal integer
// string.
func FormatNumberString(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
