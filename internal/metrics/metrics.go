// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus collectors the server exports at
// /metrics. Collectors are registered on the default registry at init.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "consultblog"

var (
	// HTTPRequests counts served requests by route pattern, method and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration observes request latency by route pattern and method.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route and method.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// RepositoryOps counts post repository operations by outcome.
	RepositoryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_operations_total",
			Help:      "Post repository operations, by operation and result.",
		},
		[]string{"op", "result"},
	)

	// CacheLookups counts in-process and page cache lookups.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups, by cache and result (hit or miss).",
		},
		[]string{"cache", "result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, RepositoryOps, CacheLookups)
}

// Result labels.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

// ObserveOp records one repository operation.
func ObserveOp(op, result string) {
	RepositoryOps.WithLabelValues(op, result).Inc()
}

// ObserveCache records one cache lookup.
func ObserveCache(cache string, hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
