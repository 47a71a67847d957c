package grid

import (
	"encoding/json"
	"math"
	"testing"
)

func TestGridMarshalJSON(t *testing.T) {
	g := New(2, 3)
	g.Set(0, 0, 85.26)
	g.Set(0, 2, 100)
	g.Set(1, 1, 0.04)

	b, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[[85.3,null,100],[null,0,null]]`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestGridUnmarshalJSON(t *testing.T) {
	var g Grid
	if err := json.Unmarshal([]byte(`[[1.5,null],[-999,22.1]]`), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g.Rows != 2 || g.Cols != 2 {
		t.Fatalf("got shape %dx%d, want 2x2", g.Rows, g.Cols)
	}
	if g.At(0, 0) != 1.5 || !math.IsNaN(g.At(0, 1)) || g.At(1, 0) != -999 || g.At(1, 1) != 22.1 {
		t.Errorf("unexpected cell values")
	}
}

func TestGridUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", `[]`},
		{"empty row", `[[]]`},
		{"ragged rows", `[[1,2],[3]]`},
		{"not an array", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Grid
			if err := json.Unmarshal([]byte(tt.data), &g); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGridClamp(t *testing.T) {
	g := New(1, 4)
	g.Set(0, 0, -12.5)
	g.Set(0, 1, 104.1)
	g.Set(0, 2, 55)

	g.Clamp(0, 100)

	if g.At(0, 0) != 0 {
		t.Errorf("low value not clamped: %v", g.At(0, 0))
	}
	if g.At(0, 1) != 100 {
		t.Errorf("high value not clamped: %v", g.At(0, 1))
	}
	if g.At(0, 2) != 55 {
		t.Errorf("in-range value changed: %v", g.At(0, 2))
	}
	if !math.IsNaN(g.At(0, 3)) {
		t.Errorf("no-data cell changed: %v", g.At(0, 3))
	}
}
