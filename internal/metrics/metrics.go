package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humigrid_source_requests_total",
			Help: "Frame source requests by operation and status",
		},
		[]string{"op", "status"},
	)

	FetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "humigrid_fetch_latency_seconds",
			Help:    "Frame payload fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FramesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humigrid_frames_processed_total",
			Help: "Frames processed by result (ok, skipped, failed)",
		},
		[]string{"result"},
	)

	InterpolationMethods = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humigrid_interpolation_methods_total",
			Help: "Scatter method that produced each frame",
		},
		[]string{"method"},
	)

	PayloadCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humigrid_payload_cache_total",
			Help: "Payload cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)
)
