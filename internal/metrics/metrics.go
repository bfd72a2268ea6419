// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package metrics defines the Prometheus instrumentation for the
// scoring core. All collectors register on the default registry via
// promauto and are exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by route and method.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tunescale",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestsInFlight gauges concurrent requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tunescale",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		},
	)

	// DBQueryDuration tracks query latency by operation and table.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tunescale",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"operation", "table"},
	)

	// DBQueryErrors counts failed queries by operation and table.
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunescale",
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Database query errors.",
		},
		[]string{"operation", "table"},
	)

	// ClassificationRunsTotal counts finished classification runs by
	// terminal status.
	ClassificationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunescale",
			Subsystem: "classify",
			Name:      "runs_total",
			Help:      "Completed classification runs by status.",
		},
		[]string{"status"},
	)

	// CampaignsClassifiedTotal counts genre assignments by source.
	CampaignsClassifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunescale",
			Subsystem: "classify",
			Name:      "campaigns_classified_total",
			Help:      "Campaigns assigned a genre, by source.",
		},
		[]string{"source"},
	)

	// SearchResolverCalls counts external resolver calls by outcome.
	SearchResolverCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunescale",
			Subsystem: "search",
			Name:      "resolver_calls_total",
			Help:      "External search resolver calls by outcome.",
		},
		[]string{"outcome"},
	)

	// RecommendationRunsTotal counts recommendation engine executions.
	RecommendationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunescale",
			Subsystem: "recommend",
			Name:      "runs_total",
			Help:      "Recommendation runs generated, by risk mode.",
		},
		[]string{"risk_mode"},
	)

	// SwipesTotal counts recorded swipe decisions by action.
	SwipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunescale",
			Subsystem: "swipes",
			Name:      "recorded_total",
			Help:      "Swipe decisions recorded, by action.",
		},
		[]string{"action"},
	)

	// CacheOperations counts cache lookups by result.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunescale",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups by result (hit, miss, stale).",
		},
		[]string{"result"},
	)

	// EventsPublished counts domain events published by topic.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunescale",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events published, by topic.",
		},
		[]string{"topic"},
	)
)
