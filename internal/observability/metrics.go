// Package observability registers the service's Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityWriteGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "reactivities",
		Subsystem: "persistence",
		Name:      "last_activity_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent committed activity write.",
	})

	dispatchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reactivities",
		Subsystem: "mediator",
		Name:      "requests_total",
		Help:      "Dispatched requests, labeled by kind and outcome.",
	}, []string{"kind", "outcome"})

	dispatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reactivities",
		Subsystem: "mediator",
		Name:      "request_duration_seconds",
		Help:      "Time spent in the handler chain per request kind.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"kind"})

	cacheCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reactivities",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Activity cache lookups, labeled by result (hit, miss, stale or error).",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(activityWriteGauge, dispatchCounter, dispatchDuration, cacheCounter)
}

// RecordActivityWrite updates the write watermark gauge.
func RecordActivityWrite(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityWriteGauge.Set(float64(ts.Unix()))
}

// RecordDispatch counts one dispatched request and observes its duration.
func RecordDispatch(kind, outcome string, elapsed time.Duration) {
	dispatchCounter.WithLabelValues(kind, outcome).Inc()
	dispatchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordCacheLookup counts one cache lookup.
func RecordCacheLookup(result string) {
	cacheCounter.WithLabelValues(result).Inc()
}

// DispatchCount exposes the counter for a kind/outcome pair, mainly for tests.
func DispatchCount(kind, outcome string) prometheus.Counter {
	return dispatchCounter.WithLabelValues(kind, outcome)
}

// CacheLookups exposes the cache counter for a result label.
func CacheLookups(result string) prometheus.Counter {
	return cacheCounter.WithLabelValues(result)
}
