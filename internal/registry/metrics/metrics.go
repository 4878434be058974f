package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry engine: how often each
// mutating operation commits or is denied, and how long operations take.
type Metrics struct {
	Operations      *prometheus.CounterVec
	OperationDenied *prometheus.CounterVec
	ClaimDuration   prometheus.Histogram
	LookupDuration  prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
}

var buckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// New creates a Metrics instance with all registry metrics registered on the
// default registerer.
func New() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "namereg_operations_total",
			Help: "Committed registry operations by kind",
		}, []string{"operation"}),
		OperationDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "namereg_operations_denied_total",
			Help: "Registry operations denied by validation or authorization, by error tag",
		}, []string{"operation", "reason"}),
		ClaimDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "namereg_claim_duration_seconds",
			Help:    "Duration of claim operations (the registry's critical write path)",
			Buckets: buckets,
		}),
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "namereg_lookup_duration_seconds",
			Help:    "Duration of owner lookups",
			Buckets: buckets,
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namereg_lookup_cache_hits_total",
			Help: "Owner lookups served from the cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "namereg_lookup_cache_misses_total",
			Help: "Owner lookups that fell through to the store",
		}),
	}
}

// IncOperation records a committed operation.
func (m *Metrics) IncOperation(operation string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation).Inc()
}

// IncDenied records a denied operation with the error tag that denied it.
func (m *Metrics) IncDenied(operation, reason string) {
	if m == nil {
		return
	}
	m.OperationDenied.WithLabelValues(operation, reason).Inc()
}

// ObserveClaim records the duration of a claim. Call with time.Now() taken
// at the start of the operation.
func (m *Metrics) ObserveClaim(start time.Time) {
	if m == nil {
		return
	}
	m.ClaimDuration.Observe(time.Since(start).Seconds())
}

// ObserveLookup records the duration of a lookup.
func (m *Metrics) ObserveLookup(start time.Time) {
	if m == nil {
		return
	}
	m.LookupDuration.Observe(time.Since(start).Seconds())
}

// IncCacheHit and IncCacheMiss track lookup cache effectiveness.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}
