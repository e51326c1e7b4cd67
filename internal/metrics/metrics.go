// Package metrics exposes the Prometheus instrumentation for the
// dashboard API and its background services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdash_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opsdash_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// BackupsTotal counts backup attempts by environment and outcome.
	BackupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdash_backups_total",
		Help: "Backup attempts by environment, kind and outcome.",
	}, []string{"environment", "kind", "outcome"})

	// BackupDuration observes how long backups take.
	BackupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opsdash_backup_duration_seconds",
		Help:    "Backup duration by environment.",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 1800},
	}, []string{"environment"})

	// CopiesTotal counts cross-environment copies by outcome.
	CopiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdash_copies_total",
		Help: "Environment copies by source, target and outcome.",
	}, []string{"source", "target", "outcome"})

	// ScheduleFiresTotal counts scheduler-triggered backup runs.
	ScheduleFiresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdash_schedule_fires_total",
		Help: "Scheduled backup fires by environment and outcome.",
	}, []string{"environment", "outcome"})

	// RetentionRemovedTotal counts backups pruned by retention sweeps.
	RetentionRemovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdash_retention_removed_total",
		Help: "Backups removed by retention sweeps, by environment.",
	}, []string{"environment"})

	// UploadsTotal counts artifact uploads by backend and outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdash_uploads_total",
		Help: "Backup uploads by storage backend and outcome.",
	}, []string{"backend", "outcome"})
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
