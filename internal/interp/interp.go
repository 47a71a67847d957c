package interp

import (
	"errors"
	"fmt"

	"github.com/fogleman/delaunay"

	"github.com/taiwx/humigrid/internal/grid"
	"github.com/taiwx/humigrid/internal/models"
)

// ErrInsufficientStations marks a frame with fewer than minStations usable
// readings. Callers skip the frame and keep processing the run.
var ErrInsufficientStations = errors.New("not enough valid stations")

const (
	minStations = 4

	// Physically valid humidity range. Cubic interpolation overshoots the
	// convex range near boundaries, so raw output is clamped here.
	ClampMin = 0.0
	ClampMax = 100.0
)

// Method names, in fallback order.
const (
	MethodCubic  = "cubic"
	MethodLinear = "linear"
	MethodIDW    = "inverse-distance"
)

// Result carries one interpolated frame: the masked grid, its statistics,
// and the scatter method that actually produced it.
type Result struct {
	Grid   *grid.Grid
	Stats  models.FrameStats
	Method string
}

// Interpolator converts scattered station readings into dense grids on a
// fixed geometry. It is pure and safe for concurrent use across frames: the
// spec, samples and mask are fixed at construction and never mutated.
type Interpolator struct {
	spec grid.Spec
	mask *grid.Mask
	lons []float64
	lats []float64
}

// New builds an interpolator for a fixed grid. A nil mask selects unmasked
// degraded mode; a mask whose shape disagrees with the grid is a
// configuration fault.
func New(spec grid.Spec, mask *grid.Mask) (*Interpolator, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if mask != nil {
		if err := mask.CheckShape(spec); err != nil {
			return nil, err
		}
	}
	return &Interpolator{spec: spec, mask: mask, lons: spec.Lons(), lats: spec.Lats()}, nil
}

// Frame interpolates one timestamp's station readings onto the grid, clamps
// to the valid humidity range, applies the land mask and computes stats.
func (it *Interpolator) Frame(stations []models.StationReading) (*Result, error) {
	pts, vals := filterStations(stations)
	if len(pts) < minStations {
		return nil, fmt.Errorf("%w: %d of %d usable", ErrInsufficientStations, len(pts), len(stations))
	}

	g, method := it.scatter(pts, vals)
	g.Clamp(ClampMin, ClampMax)
	if it.mask != nil {
		it.mask.Apply(g)
	}

	return &Result{Grid: g, Stats: computeStats(g, len(pts)), Method: method}, nil
}

// scatter runs the method chain: smooth cubic patches over a Delaunay
// triangulation, then piecewise-linear over the same triangulation if the
// cubic setup degenerates, then inverse-distance weighting when the points
// cannot be triangulated at all (e.g. fully collinear input). The last step
// always succeeds, so a frame that passes the station filter always yields a
// grid.
func (it *Interpolator) scatter(pts []delaunay.Point, vals []float64) (*grid.Grid, string) {
	tri, err := delaunay.Triangulate(pts)
	if err == nil && len(tri.Triangles) > 0 {
		if g, err := it.cubic(tri, vals); err == nil {
			return g, MethodCubic
		}
		return it.linear(tri, vals), MethodLinear
	}
	return it.idw(pts, vals), MethodIDW
}

// filterStations keeps readings with longitude, latitude and humidity all
// present. The returned station count feeds FrameStats.StationCount.
func filterStations(stations []models.StationReading) ([]delaunay.Point, []float64) {
	var pts []delaunay.Point
	var vals []float64
	for _, s := range stations {
		if s.Humidity == nil || s.Latitude == nil || s.Longitude == nil {
			continue
		}
		pts = append(pts, delaunay.Point{X: *s.Longitude, Y: *s.Latitude})
		vals = append(vals, *s.Humidity)
	}
	return pts, vals
}
