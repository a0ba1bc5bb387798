// Package metrics holds the prometheus collectors shared by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfs_notifications_total",
		Help: "Dispatched notifications by type and final status.",
	}, []string{"type", "status"})

	TaskRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfs_task_runs_total",
		Help: "Scheduled task runs by task and result.",
	}, []string{"task", "result"})

	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cfs_task_duration_seconds",
		Help:    "Scheduled task run duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfs_cache_hits_total",
		Help: "Reference cache hits.",
	}, []string{"cache"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfs_cache_misses_total",
		Help: "Reference cache misses.",
	}, []string{"cache"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfs_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cfs_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
