package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TokenReissuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_reissues_total",
			Help: "Access token reissue attempts by outcome.",
		},
		[]string{"outcome"},
	)

	RefreshTokenRotationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_token_rotations_total",
			Help: "Refresh token upserts performed.",
		},
	)
)
