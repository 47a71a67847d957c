package grid

import "fmt"

// Spec describes the fixed target grid geometry. The land mask and every
// frame must overlay pixel-for-pixel, so all callers derive their sample
// coordinates from the same Spec.
type Spec struct {
	MinLon float64
	MaxLon float64
	MinLat float64
	MaxLat float64
	Rows   int
	Cols   int

	// Metadata only, reported in the output document.
	ResolutionDeg float64
	ResolutionKm  float64
}

func (s Spec) Validate() error {
	if s.Rows < 2 || s.Cols < 2 {
		return fmt.Errorf("grid spec: rows and cols must be at least 2, got %dx%d", s.Rows, s.Cols)
	}
	if s.MaxLon <= s.MinLon || s.MaxLat <= s.MinLat {
		return fmt.Errorf("grid spec: empty bounding box (%v,%v)-(%v,%v)", s.MinLon, s.MinLat, s.MaxLon, s.MaxLat)
	}
	return nil
}

// Lons returns Cols evenly spaced longitude samples, inclusive of both bounds.
func (s Spec) Lons() []float64 { return linspace(s.MinLon, s.MaxLon, s.Cols) }

// Lats returns Rows evenly spaced latitude samples, inclusive of both bounds.
// Row 0 is the southern edge.
func (s Spec) Lats() []float64 { return linspace(s.MinLat, s.MaxLat, s.Rows) }

// linspace produces n samples with n-1 equal intervals. Both endpoints are
// exact so repeated runs and the mask land on the identical physical grid.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
