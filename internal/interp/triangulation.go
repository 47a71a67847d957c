package interp

import (
	"errors"
	"math"
	"slices"

	"github.com/fogleman/delaunay"

	"github.com/taiwx/humigrid/internal/grid"
)

var errDegenerate = errors.New("degenerate geometry")

const baryEps = 1e-9

// triLocator finds the triangle containing a query point and its barycentric
// coordinates. Bounding boxes are precomputed so most triangles are rejected
// with two comparisons.
type triLocator struct {
	tri   *delaunay.Triangulation
	boxes []float64 // minx, miny, maxx, maxy per triangle
}

func newTriLocator(tri *delaunay.Triangulation) *triLocator {
	n := len(tri.Triangles) / 3
	boxes := make([]float64, 4*n)
	for t := 0; t < n; t++ {
		a := tri.Points[tri.Triangles[3*t]]
		b := tri.Points[tri.Triangles[3*t+1]]
		c := tri.Points[tri.Triangles[3*t+2]]
		boxes[4*t] = math.Min(a.X, math.Min(b.X, c.X))
		boxes[4*t+1] = math.Min(a.Y, math.Min(b.Y, c.Y))
		boxes[4*t+2] = math.Max(a.X, math.Max(b.X, c.X))
		boxes[4*t+3] = math.Max(a.Y, math.Max(b.Y, c.Y))
	}
	return &triLocator{tri: tri, boxes: boxes}
}

// locate returns the vertex indices and barycentric weights of the triangle
// containing (x, y), or ok=false when the point is outside the convex hull.
func (l *triLocator) locate(x, y float64) (ia, ib, ic int, u, v, w float64, ok bool) {
	for t := 0; t < len(l.tri.Triangles)/3; t++ {
		if x < l.boxes[4*t]-baryEps || y < l.boxes[4*t+1]-baryEps ||
			x > l.boxes[4*t+2]+baryEps || y > l.boxes[4*t+3]+baryEps {
			continue
		}
		ia = l.tri.Triangles[3*t]
		ib = l.tri.Triangles[3*t+1]
		ic = l.tri.Triangles[3*t+2]
		a, b, c := l.tri.Points[ia], l.tri.Points[ib], l.tri.Points[ic]

		det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if det == 0 {
			continue
		}
		u = ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
		v = ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
		w = 1 - u - v
		if u >= -baryEps && v >= -baryEps && w >= -baryEps {
			return ia, ib, ic, u, v, w, true
		}
	}
	return 0, 0, 0, 0, 0, 0, false
}

// linear fills the grid by barycentric interpolation inside each triangle.
// Cells outside the convex hull stay no-data.
func (it *Interpolator) linear(tri *delaunay.Triangulation, vals []float64) *grid.Grid {
	g := grid.New(it.spec.Rows, it.spec.Cols)
	loc := newTriLocator(tri)
	for r, lat := range it.lats {
		for c, lon := range it.lons {
			ia, ib, ic, u, v, w, ok := loc.locate(lon, lat)
			if !ok {
				continue
			}
			g.Set(r, c, vals[ia]*u+vals[ib]*v+vals[ic]*w)
		}
	}
	return g
}

// cubic fills the grid with C0 cubic Bezier patches over the triangulation,
// using least-squares vertex gradients for the edge control ordinates. This
// is the smooth counterpart to linear: continuous value surface with the
// overshoot behavior typical of cubic scattered interpolation. It fails only
// when a vertex neighborhood is too degenerate to fit a gradient.
func (it *Interpolator) cubic(tri *delaunay.Triangulation, vals []float64) (*grid.Grid, error) {
	gx, gy, err := estimateGradients(tri, vals)
	if err != nil {
		return nil, err
	}

	g := grid.New(it.spec.Rows, it.spec.Cols)
	loc := newTriLocator(tri)
	for r, lat := range it.lats {
		for c, lon := range it.lons {
			ia, ib, ic, u, v, w, ok := loc.locate(lon, lat)
			if !ok {
				continue
			}
			pa, pb, pc := tri.Points[ia], tri.Points[ib], tri.Points[ic]
			za, zb, zc := vals[ia], vals[ib], vals[ic]

			// Edge control ordinates from the vertex gradients: one third of
			// the directional derivative along each edge.
			b210 := za + (gx[ia]*(pb.X-pa.X)+gy[ia]*(pb.Y-pa.Y))/3
			b201 := za + (gx[ia]*(pc.X-pa.X)+gy[ia]*(pc.Y-pa.Y))/3
			b120 := zb + (gx[ib]*(pa.X-pb.X)+gy[ib]*(pa.Y-pb.Y))/3
			b021 := zb + (gx[ib]*(pc.X-pb.X)+gy[ib]*(pc.Y-pb.Y))/3
			b102 := zc + (gx[ic]*(pa.X-pc.X)+gy[ic]*(pa.Y-pc.Y))/3
			b012 := zc + (gx[ic]*(pb.X-pc.X)+gy[ic]*(pb.Y-pc.Y))/3

			// Center ordinate chosen for quadratic precision.
			e := (b210 + b201 + b120 + b021 + b102 + b012) / 6
			vv := (za + zb + zc) / 3
			b111 := e + (e-vv)/2

			f := za*u*u*u + zb*v*v*v + zc*w*w*w +
				3*(b210*u*u*v+b201*u*u*w+b120*u*v*v+b021*v*v*w+b102*u*w*w+b012*v*w*w) +
				6*b111*u*v*w
			g.Set(r, c, f)
		}
	}
	return g, nil
}

// estimateGradients fits a least-squares plane through each vertex's
// Delaunay neighbors. A singular normal system (collinear neighborhood)
// reports degeneracy so the caller can fall back to the linear method.
func estimateGradients(tri *delaunay.Triangulation, vals []float64) (gx, gy []float64, err error) {
	n := len(tri.Points)
	neighbors := make([][]int, n)
	for t := 0; t < len(tri.Triangles); t += 3 {
		a, b, c := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		neighbors[a] = append(neighbors[a], b, c)
		neighbors[b] = append(neighbors[b], a, c)
		neighbors[c] = append(neighbors[c], a, b)
	}

	gx = make([]float64, n)
	gy = make([]float64, n)
	for i := 0; i < n; i++ {
		// Float addition is order-sensitive, so the sums below must
		// accumulate in a fixed neighbor order.
		slices.Sort(neighbors[i])
		nb := slices.Compact(neighbors[i])
		if len(nb) < 2 {
			// Vertex not referenced by any triangle (duplicate point); it
			// never gets looked up, so a zero gradient is fine.
			continue
		}
		var sxx, sxy, syy, sxz, syz float64
		for _, j := range nb {
			dx := tri.Points[j].X - tri.Points[i].X
			dy := tri.Points[j].Y - tri.Points[i].Y
			dz := vals[j] - vals[i]
			sxx += dx * dx
			sxy += dx * dy
			syy += dy * dy
			sxz += dx * dz
			syz += dy * dz
		}
		det := sxx*syy - sxy*sxy
		if math.Abs(det) <= 1e-12*(sxx+syy)*(sxx+syy) {
			return nil, nil, errDegenerate
		}
		gx[i] = (syy*sxz - sxy*syz) / det
		gy[i] = (sxx*syz - sxy*sxz) / det
	}
	return gx, gy, nil
}
