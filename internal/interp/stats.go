package interp

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/taiwx/humigrid/internal/grid"
	"github.com/taiwx/humigrid/internal/models"
)

// Cells within 0.1 of the clamp bounds are clipping artifacts from cubic
// overshoot. They stay in avg and valid_points but are excluded from the
// reported extremes.
const (
	innerLo = ClampMin + 0.1
	innerHi = ClampMax - 0.1
)

// computeStats summarizes a masked frame. All reported numbers are rounded
// to one decimal; min/max/avg are nil when their cell set is empty.
func computeStats(g *grid.Grid, stationCount int) models.FrameStats {
	var valid, inner []float64
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			valid = append(valid, v)
			if v > innerLo && v < innerHi {
				inner = append(inner, v)
			}
		}
	}

	stats := models.FrameStats{
		ValidPoints:  len(valid),
		StationCount: stationCount,
	}
	if len(valid) > 0 {
		stats.Avg = round1(floats.Sum(valid) / float64(len(valid)))
	}
	if len(inner) > 0 {
		stats.Min = round1(floats.Min(inner))
		stats.Max = round1(floats.Max(inner))
	}
	return stats
}

func round1(v float64) *float64 {
	r := math.Round(v*10) / 10
	return &r
}
