package grid

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestMaskFromFrame(t *testing.T) {
	frame := New(2, 2)
	frame.Set(0, 0, 24.5)   // real measurement
	frame.Set(0, 1, -999)   // sentinel: no data in reference
	frame.Set(1, 1, -900.1) // just below the floor
	// (1,0) stays NaN

	m := MaskFromFrame(frame)

	if !m.Usable(0, 0) {
		t.Error("cell with real value should be usable")
	}
	if m.Usable(0, 1) {
		t.Error("sentinel cell should be unusable")
	}
	if m.Usable(1, 0) {
		t.Error("null cell should be unusable")
	}
	if m.Usable(1, 1) {
		t.Error("below-floor cell should be unusable")
	}
}

func TestMaskApply(t *testing.T) {
	g := New(2, 2)
	g.Set(0, 0, 80)
	g.Set(0, 1, 70)
	g.Set(1, 0, 60)
	g.Set(1, 1, 50)

	m := NewMask(2, 2)
	m.SetUsable(1, 0, false)
	m.Apply(g)

	if !math.IsNaN(g.At(1, 0)) {
		t.Errorf("masked cell should be no-data, got %v", g.At(1, 0))
	}
	if g.At(0, 0) != 80 || g.At(0, 1) != 70 || g.At(1, 1) != 50 {
		t.Error("unmasked cells changed")
	}
}

func TestMaskCheckShape(t *testing.T) {
	spec := Spec{MinLon: 0, MaxLon: 1, MinLat: 0, MaxLat: 1, Rows: 3, Cols: 4}

	if err := NewMask(3, 4).CheckShape(spec); err != nil {
		t.Errorf("matching shape rejected: %v", err)
	}
	if err := NewMask(4, 3).CheckShape(spec); err == nil {
		t.Error("mismatched shape accepted")
	}
}

func TestLoadLandMask(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "temperature_timelapse_data.json")
	doc := `{"metadata":{},"frames":[{"time":"2025-01-10T08:00:00+08:00","data":[[21.5,null],[-999,18.2]]}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadLandMask(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Rows != 2 || m.Cols != 2 {
		t.Fatalf("got shape %dx%d, want 2x2", m.Rows, m.Cols)
	}
	if !m.Usable(0, 0) || m.Usable(0, 1) || m.Usable(1, 0) || !m.Usable(1, 1) {
		t.Error("unexpected mask cells")
	}
}

func TestLoadLandMaskUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no file written
	}{
		{name: "missing file"},
		{name: "malformed json", content: `{"frames":`},
		{name: "no frames", content: `{"frames":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ref.json")
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			m, err := LoadLandMask(path)
			if err == nil {
				t.Error("expected error")
			}
			if m != nil {
				t.Error("expected nil mask")
			}
		})
	}
}
