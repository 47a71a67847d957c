package interp

import (
	"math"

	"github.com/fogleman/delaunay"

	"github.com/taiwx/humigrid/internal/grid"
)

// idw fills every cell with an inverse-distance weighted average of all
// stations. It is the last resort for geometries the triangulation methods
// cannot handle and works for any non-empty point set, collinear included.
// Unlike those methods it has no convex hull, so it covers the whole grid.
func (it *Interpolator) idw(pts []delaunay.Point, vals []float64) *grid.Grid {
	const snapDist2 = 1e-12 // treat a cell this close to a station as an exact hit

	g := grid.New(it.spec.Rows, it.spec.Cols)
	for r, lat := range it.lats {
		for c, lon := range it.lons {
			var num, den float64
			cell := math.NaN()
			for i, p := range pts {
				d2 := (p.X-lon)*(p.X-lon) + (p.Y-lat)*(p.Y-lat)
				if d2 < snapDist2 {
					cell = vals[i]
					break
				}
				w := 1 / d2 // squared-distance weighting
				num += w * vals[i]
				den += w
			}
			if math.IsNaN(cell) {
				cell = num / den
			}
			g.Set(r, c, cell)
		}
	}
	return g
}
