package source

import (
	"context"
	"errors"
	"testing"
)

func TestFTPCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The host is never dialed; cancellation must short-circuit first.
	src := NewFTP("203.0.113.1:21")

	if _, err := src.ListDates(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ListDates: got %v, want context.Canceled", err)
	}
	if _, err := src.ListFrames(ctx, "2025-01-10"); !errors.Is(err, context.Canceled) {
		t.Errorf("ListFrames: got %v, want context.Canceled", err)
	}
	if _, err := src.Fetch(ctx, FrameRef{Key: "weather/2025/01/10/weather_0830.json"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch: got %v, want context.Canceled", err)
	}
}
