// Package metrics holds the Prometheus collectors for scans, syncs, the
// search provider and the HTTP API. Everything registers with the default
// registry on import.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

var (
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hiringintel",
			Name:      "scans_total",
			Help:      "Fetch-and-reconcile cycles by result",
		},
		[]string{"result"},
	)

	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hiringintel",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a fetch-and-reconcile cycle",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	PostingsAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hiringintel",
			Name:      "postings_added_total",
			Help:      "Postings that survived reconciliation as new",
		},
	)

	RetainedPostings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hiringintel",
			Name:      "retained_postings",
			Help:      "Postings currently retained",
		},
	)

	SyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hiringintel",
			Name:      "syncs_total",
			Help:      "Sheet sync attempts by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hiringintel",
			Name:      "provider_requests_total",
			Help:      "Search provider calls by step and status",
		},
		[]string{"step", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestDuration, httpRequestsTotal,
		ScansTotal, ScanDuration, PostingsAddedTotal, RetainedPostings,
		SyncsTotal, ProviderRequestsTotal,
	)
}
