package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/taiwx/humigrid/internal/metrics"
	"github.com/taiwx/humigrid/internal/models"
	"github.com/taiwx/humigrid/internal/store"
)

// Cached wraps a Source with a local payload cache so repeated runs do not
// re-download frame objects. Listing always goes to the remote; only Fetch
// is cached, keyed by object key (frame objects are immutable once written).
type Cached struct {
	src Source
	st  *store.Store
	log *slog.Logger
}

func NewCached(src Source, st *store.Store, log *slog.Logger) *Cached {
	return &Cached{src: src, st: st, log: log}
}

func (c *Cached) ListDates(ctx context.Context) ([]string, error) {
	return c.src.ListDates(ctx)
}

func (c *Cached) ListFrames(ctx context.Context, date string) ([]FrameRef, error) {
	return c.src.ListFrames(ctx, date)
}

func (c *Cached) Fetch(ctx context.Context, ref FrameRef) ([]models.StationReading, error) {
	if b, ok, err := c.st.GetPayload(ref.Key); err != nil {
		c.log.Warn("payload cache read failed", "key", ref.Key, "error", err)
	} else if ok {
		var stations []models.StationReading
		if err := json.Unmarshal(b, &stations); err != nil {
			return nil, fmt.Errorf("cached payload %s: %w", ref.Key, err)
		}
		metrics.PayloadCache.WithLabelValues("hit").Inc()
		return stations, nil
	}
	metrics.PayloadCache.WithLabelValues("miss").Inc()

	stations, err := c.src.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Cache writes are best effort; a failed write never fails the frame.
	b, err := json.Marshal(stations)
	if err == nil {
		err = c.st.PutPayload(ref.Key, ref.Time, b)
	}
	if err != nil {
		c.log.Warn("payload cache write failed", "key", ref.Key, "error", err)
	}
	return stations, nil
}
