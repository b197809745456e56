package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EstimatesTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farefinder", Name: "estimates_total", Help: "Total fare estimate requests issued"})
	EstimateFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farefinder", Name: "estimate_failures_total", Help: "Fare estimate requests that failed"})

	GeocodeCacheHits   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farefinder", Name: "geocode_cache_hits_total", Help: "Reverse geocode lookups served from cache"})
	GeocodeCacheMisses = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farefinder", Name: "geocode_cache_misses_total", Help: "Reverse geocode lookups that went to the backend"})

	AutocompleteDropped = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farefinder", Name: "autocomplete_dropped_total", Help: "Autocomplete responses discarded for arriving after a newer request"})

	BookingHandoffs       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farefinder", Name: "booking_handoffs_total", Help: "Deep-link booking handoffs opened"})
	HistoryAppendFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farefinder", Name: "history_append_failures_total", Help: "History records that failed to persist after a handoff"})

	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "farefinder", Name: "backend_requests_total", Help: "Total backend API requests issued"},
		[]string{"operation", "status"},
	)
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "farefinder",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend API request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
)
