// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, route pattern, and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairshare_http_requests_total",
			Help: "Total HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes request latency by route pattern.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fairshare_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LedgerTransfersTotal counts applied ledger transfers by outcome.
	LedgerTransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairshare_ledger_transfers_total",
			Help: "Total ledger transfers applied.",
		},
		[]string{"outcome"},
	)

	// SettlementsTotal counts settlement attempts by outcome.
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairshare_settlements_total",
			Help: "Total settlement attempts.",
		},
		[]string{"outcome"},
	)
)
