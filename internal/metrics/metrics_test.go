package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Metric names are part of the operational surface (dashboards, alerts), so
// they are pinned here.
func TestMetricNames(t *testing.T) {
	SourceRequests.WithLabelValues("get", "ok").Inc()
	FramesProcessed.WithLabelValues("ok").Inc()
	InterpolationMethods.WithLabelValues("cubic").Inc()
	PayloadCache.WithLabelValues("hit").Inc()
	FetchLatency.Observe(0.1)

	tests := []struct {
		collector prometheus.Collector
		name      string
	}{
		{SourceRequests, "humigrid_source_requests_total"},
		{FetchLatency, "humigrid_fetch_latency_seconds"},
		{FramesProcessed, "humigrid_frames_processed_total"},
		{InterpolationMethods, "humigrid_interpolation_methods_total"},
		{PayloadCache, "humigrid_payload_cache_total"},
	}
	for _, tt := range tests {
		if n := testutil.CollectAndCount(tt.collector, tt.name); n == 0 {
			t.Errorf("no metric collected under %q", tt.name)
		}
	}
}
