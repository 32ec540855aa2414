package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pair outcome labels.
const (
	StatusOK           = "ok"
	StatusUndefined    = "undefined"
	StatusNotConverged = "not_converged"
)

// Collector records run and per-pair Prometheus metrics. All methods are
// safe for concurrent use; a nil *Collector records nothing.
type Collector struct {
	registry     *prometheus.Registry
	pairs        *prometheus.CounterVec
	pairDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge
}

// NewCollector creates a collector on its own registry, which also carries
// the Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c, _ := newCollector(reg)
	c.registry = reg
	return c
}

// NewCollectorWith registers the distcalc metrics on reg.
func NewCollectorWith(reg prometheus.Registerer) (*Collector, error) {
	return newCollector(reg)
}

func newCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		pairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "distcalc",
			Name:      "pairs_total",
			Help:      "Pairs processed, by estimation method and outcome.",
		}, []string{"method", "status"}),
		pairDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "distcalc",
			Name:      "pair_duration_seconds",
			Help:      "Time spent estimating one pair.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "distcalc",
			Name:      "runs_in_flight",
			Help:      "Distance matrix runs currently executing.",
		}),
	}
	for _, m := range []prometheus.Collector{c.pairs, c.pairDuration, c.inFlight} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObservePair records the outcome and duration of one pair.
func (c *Collector) ObservePair(method, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.pairs.WithLabelValues(method, status).Inc()
	c.pairDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RunStarted increments the in-flight gauge; call the returned func when
// the run ends.
func (c *Collector) RunStarted() func() {
	if c == nil {
		return func() {}
	}
	c.inFlight.Inc()
	return c.inFlight.Dec
}

// Handler serves the collector's registry in the Prometheus exposition
// format. Collectors built with NewCollectorWith serve the default
// gatherer.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
