package timelapse

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/taiwx/humigrid/internal/grid"
	"github.com/taiwx/humigrid/internal/models"
)

// The run-level method description stays "delaunay cubic" even when
// individual frames fell back; per-frame methods are logged and counted in
// metrics instead of changing the output format.
const methodDescription = "delaunay cubic"

// NewDocument assembles the run-level timelapse document from processed
// frames. The frames slice must be non-empty and time-ordered.
func NewDocument(frames []models.Frame, spec grid.Spec, now time.Time) (models.Document, error) {
	if len(frames) == 0 {
		return models.Document{}, errors.New("no frames to assemble")
	}
	return models.Document{
		Metadata: models.Metadata{
			GeneratedAt: now.Format(time.RFC3339),
			StartTime:   frames[0].Time,
			EndTime:     frames[len(frames)-1].Time,
			TotalFrames: len(frames),
			GeoInfo: models.GeoInfo{
				BottomLeftLon: spec.MinLon,
				BottomLeftLat: spec.MinLat,
				TopRightLon:   spec.MaxLon,
				TopRightLat:   spec.MaxLat,
				ResolutionDeg: spec.ResolutionDeg,
				ResolutionKm:  spec.ResolutionKm,
				GridRows:      spec.Rows,
				GridCols:      spec.Cols,
			},
			Source:              "Central Weather Administration Weather Stations",
			Description:         "Taiwan Humidity Grid Timelapse (Interpolated)",
			InterpolationMethod: methodDescription,
		},
		Frames: frames,
	}, nil
}

// WriteDocument writes the document atomically: marshal to a temp file in
// the target directory, then rename over the destination.
func WriteDocument(path string, doc models.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal timelapse: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write timelapse: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
