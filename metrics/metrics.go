// Package metrics owns the process's prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitledger"

var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	LedgerComputations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_computations_total",
		Help:      "Balance computations by kind and outcome.",
	}, []string{"kind", "outcome"})

	LedgerDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_computation_seconds",
		Help:      "Time spent loading records and folding them into balances.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_cache_lookups_total",
		Help:      "Dashboard cache lookups by result.",
	}, []string{"result"})

	RemindersPublished = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_published_total",
		Help:      "Debt reminders handed to the notifier by outcome.",
	}, []string{"outcome"})

	HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

const (
	KindPairwise  = "pairwise"
	KindDashboard = "dashboard"
	KindGroup     = "group"
	KindReminders = "reminders"
)

// ObserveLedger records one computation of kind that started at start.
func ObserveLedger(kind string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LedgerComputations.WithLabelValues(kind, outcome).Inc()
	LedgerDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
