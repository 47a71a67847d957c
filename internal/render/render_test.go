package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/taiwx/humigrid/internal/grid"
)

func TestPNG(t *testing.T) {
	g := grid.New(2, 3)
	g.Set(0, 0, 0)
	g.Set(0, 1, 50)
	g.Set(1, 2, 100)
	// (1,0), (1,1), (0,2) stay no-data

	var buf bytes.Buffer
	if err := PNG(&buf, g, 0, 100, 4); err != nil {
		t.Fatalf("render: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 12 || bounds.Dy() != 8 {
		t.Errorf("got %dx%d, want 12x8", bounds.Dx(), bounds.Dy())
	}

	// Row 1 of the grid is the northern row and renders at the top;
	// cell (1,2) carries data, cell (1,0) does not.
	if _, _, _, a := img.At(11, 0).RGBA(); a == 0 {
		t.Error("data cell rendered transparent")
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Error("no-data cell rendered opaque")
	}
}

func TestPNGBadScale(t *testing.T) {
	if err := PNG(&bytes.Buffer{}, grid.New(2, 2), 0, 100, 0); err == nil {
		t.Error("expected error for zero scale")
	}
}
