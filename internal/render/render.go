package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"

	"github.com/taiwx/humigrid/internal/grid"
)

// PNG renders a humidity grid as an image: no-data cells are transparent,
// data cells run through a dry-to-humid color ramp over [lo, hi]. Row 0 of
// the grid is the southern edge, so rows are flipped to put north on top.
// scale multiplies pixel size with nearest-neighbour so cells stay sharp.
func PNG(w io.Writer, g *grid.Grid, lo, hi float64, scale int) error {
	if scale < 1 {
		return fmt.Errorf("render: scale must be positive, got %d", scale)
	}

	img := image.NewNRGBA(image.Rect(0, 0, g.Cols, g.Rows))
	for r := 0; r < g.Rows; r++ {
		y := g.Rows - 1 - r
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			img.SetNRGBA(c, y, ramp((v-lo)/(hi-lo)))
		}
	}

	if scale > 1 {
		dst := image.NewNRGBA(image.Rect(0, 0, g.Cols*scale, g.Rows*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	return png.Encode(w, img)
}

// ramp maps t in [0,1] from a dry sand tone to a saturated humid blue.
func ramp(t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	dry := [3]float64{237, 201, 175}
	wet := [3]float64{8, 48, 107}
	return color.NRGBA{
		R: uint8(dry[0] + t*(wet[0]-dry[0])),
		G: uint8(dry[1] + t*(wet[1]-dry[1])),
		B: uint8(dry[2] + t*(wet[2]-dry[2])),
		A: 255,
	}
}
