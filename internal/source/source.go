package source

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/taiwx/humigrid/internal/models"
)

// Objects live under weather/YYYY/MM/DD/weather_HHMM.json.
const (
	rootPrefix = "weather/"
	dateLayout = "2006-01-02"
)

// FrameRef identifies one station snapshot object and its frame timestamp.
// Times carry the +08:00 offset of the station network, so they sort
// lexicographically in frame order.
type FrameRef struct {
	Key  string
	Time string
	Size int64
}

// Source lists and fetches per-timestamp station snapshots from a remote
// store. Implementations share the weather/YYYY/MM/DD object layout.
type Source interface {
	// ListDates returns every date with data, as sorted YYYY-MM-DD strings.
	ListDates(ctx context.Context) ([]string, error)
	// ListFrames returns the frame objects for one date, ordered by time.
	ListFrames(ctx context.Context, date string) ([]FrameRef, error)
	// Fetch downloads and decodes one frame's station readings.
	Fetch(ctx context.Context, ref FrameRef) ([]models.StationReading, error)
}

// frameRefFromKey derives the frame timestamp from an object key like
// weather/2025/01/12/weather_0830.json. Keys outside the layout, including
// "latest" pointers, are skipped.
func frameRefFromKey(key string, size int64) (FrameRef, bool) {
	if !strings.HasSuffix(key, ".json") || strings.Contains(key, "latest") {
		return FrameRef{}, false
	}
	name := path.Base(key)
	if !strings.HasPrefix(name, "weather_") {
		return FrameRef{}, false
	}
	hhmm := strings.TrimSuffix(strings.TrimPrefix(name, "weather_"), ".json")
	if len(hhmm) != 4 {
		return FrameRef{}, false
	}

	parts := strings.Split(key, "/")
	if len(parts) < 5 {
		return FrameRef{}, false
	}
	date := fmt.Sprintf("%s-%s-%s", parts[1], parts[2], parts[3])
	if _, err := time.Parse(dateLayout+" 1504", date+" "+hhmm); err != nil {
		return FrameRef{}, false
	}

	return FrameRef{
		Key:  key,
		Time: fmt.Sprintf("%sT%s:%s:00+08:00", date, hhmm[:2], hhmm[2:]),
		Size: size,
	}, true
}

// dateFromPrefix extracts YYYY-MM-DD from a day-level prefix such as
// weather/2025/01/12/.
func dateFromPrefix(prefix string) (string, bool) {
	parts := strings.Split(strings.TrimSuffix(prefix, "/"), "/")
	if len(parts) < 4 {
		return "", false
	}
	date := fmt.Sprintf("%s-%s-%s", parts[1], parts[2], parts[3])
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

func decodeSnapshot(b []byte) ([]models.StationReading, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.Data, nil
}
