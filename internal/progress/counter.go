package progress

import "sync"

// DefaultReportStep is the smallest fraction increment a Counter reports.
const DefaultReportStep = 0.01

// Counter turns completed-pair events into completion fractions. The
// callback runs under the counter's lock, so concurrent Add calls deliver
// a non-decreasing sequence ending at exactly 1.
type Counter struct {
	mu    sync.Mutex
	total int
	done  int
	last  float64
	step  float64
	cb    ProgressCallback
}

// NewCounter tracks total units of work. A nil cb makes the counter
// count silently.
func NewCounter(total int, cb ProgressCallback) *Counter {
	return &Counter{total: total, step: DefaultReportStep, cb: cb}
}

// Add records n more completed units.
func (c *Counter) Add(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = min(c.done+n, c.total)
	c.report(false)
}

// Finish reports completion even if fewer than total units were added,
// which happens when a run is cancelled.
func (c *Counter) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report(true)
}

// Done returns the number of completed units.
func (c *Counter) Done() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Fraction returns the last fraction delivered to the callback.
func (c *Counter) Fraction() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Counter) report(final bool) {
	f := 1.0
	if c.total > 0 && !final {
		f = float64(c.done) / float64(c.total)
	}
	if f <= c.last {
		return
	}
	if f < 1 && f-c.last < c.step {
		return
	}
	c.last = f
	if c.cb != nil {
		c.cb(f)
	}
}
