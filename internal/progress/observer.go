package progress

import (
	"sync"

	"github.com/rs/zerolog"
)

// ProgressUpdate is a progress event sent over a channel.
type ProgressUpdate struct {
	// Rank identifies the partition that made progress.
	Rank int
	// Value is the completion fraction of that rank, in [0, 1].
	Value float64
}

// ProgressCallback receives the completion fraction of one rank.
type ProgressCallback func(progress float64)

// ProgressObserver is notified of progress for a given rank.
// Implementations must be safe for concurrent use.
type ProgressObserver interface {
	Update(rank int, progress float64)
}

// ProgressSubject dispatches progress to registered observers.
type ProgressSubject struct {
	mu        sync.RWMutex
	observers []ProgressObserver
}

// NewProgressSubject creates a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds an observer. Nil observers are ignored.
func (s *ProgressSubject) Register(o ProgressObserver) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Unregister removes the first registration of o.
func (s *ProgressSubject) Unregister(o ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.observers {
		if cur == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Notify forwards one update to every registered observer.
func (s *ProgressSubject) Notify(rank int, progress float64) {
	s.mu.RLock()
	snapshot := s.observers
	s.mu.RUnlock()
	for _, o := range snapshot {
		o.Update(rank, progress)
	}
}

// Update makes a subject usable as an observer of another subject.
func (s *ProgressSubject) Update(rank int, progress float64) {
	s.Notify(rank, progress)
}

// Freeze returns a callback bound to rank that notifies the observers
// registered at the time of the call. Observers registered later are not
// reached, and invoking the callback takes no lock.
func (s *ProgressSubject) Freeze(rank int) ProgressCallback {
	s.mu.RLock()
	snapshot := make([]ProgressObserver, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.RUnlock()

	if len(snapshot) == 0 {
		return func(float64) {}
	}
	return func(progress float64) {
		for _, o := range snapshot {
			o.Update(rank, progress)
		}
	}
}

// ChannelObserver forwards updates to a channel. Intermediate updates are
// dropped when the channel is full, since a later one supersedes them. The
// completion update (1.0) of a rank is always delivered, so the channel
// must have a reader until it is closed.
type ChannelObserver struct {
	ch chan<- ProgressUpdate
}

// NewChannelObserver creates an observer writing to ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update implements ProgressObserver.
func (o *ChannelObserver) Update(rank int, progress float64) {
	if o.ch == nil {
		return
	}
	u := ProgressUpdate{Rank: rank, Value: clamp(progress)}
	if u.Value >= 1 {
		o.ch <- u
		return
	}
	select {
	case o.ch <- u:
	default:
	}
}

// LoggingObserver logs progress milestones through zerolog.
type LoggingObserver struct {
	logger zerolog.Logger
	step   float64

	mu   sync.Mutex
	last map[int]int
}

// NewLoggingObserver logs whenever a rank crosses a multiple of step.
// A step outside (0, 1] defaults to 0.25.
func NewLoggingObserver(logger zerolog.Logger, step float64) *LoggingObserver {
	if step <= 0 || step > 1 {
		step = 0.25
	}
	return &LoggingObserver{logger: logger, step: step, last: make(map[int]int)}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(rank int, progress float64) {
	progress = clamp(progress)
	milestone := int(progress / o.step)

	o.mu.Lock()
	crossed := milestone > o.last[rank]
	if crossed {
		o.last[rank] = milestone
	}
	o.mu.Unlock()

	if crossed {
		o.logger.Info().Int("rank", rank).Float64("progress", progress).Msg("pairwise distances")
	}
}

// NoOpObserver discards all updates.
type NoOpObserver struct{}

// NewNoOpObserver returns a NoOpObserver.
func NewNoOpObserver() *NoOpObserver { return &NoOpObserver{} }

// Update implements ProgressObserver.
func (NoOpObserver) Update(int, float64) {}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
