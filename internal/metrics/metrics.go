// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fxledger"

var (
	QuoteCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_lookups_total",
			Help:      "Quote cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)

	ProviderFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetches_total",
			Help:      "Upstream rate fetches by outcome (ok, error).",
		},
		[]string{"outcome"},
	)

	ProviderFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_fetch_duration_seconds",
			Help:      "Latency of upstream rate fetches.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	LedgerTopUps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_top_ups_total",
			Help:      "Top-ups by outcome (committed, rejected, storage_error).",
		},
		[]string{"outcome"},
	)

	BalanceEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_events_dropped_total",
			Help:      "Balance events dropped because the publish queue was full.",
		},
	)

	BalanceEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_events_published_total",
			Help:      "Balance events handed to the publisher by outcome (ok, error).",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)
)
