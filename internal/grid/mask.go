package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Values below this in the reference dataset are "no data" markers, not real
// measurements.
const sentinelFloor = -900

// Mask is a boolean grid marking which cells are usable (land) versus
// excluded (ocean or no reference data). It is derived once from a reference
// dataset and never mutated afterwards.
type Mask struct {
	Rows  int
	Cols  int
	cells []bool
}

// NewMask returns a mask with every cell usable.
func NewMask(rows, cols int) *Mask {
	m := &Mask{Rows: rows, Cols: cols, cells: make([]bool, rows*cols)}
	for i := range m.cells {
		m.cells[i] = true
	}
	return m
}

func (m *Mask) Usable(r, c int) bool {
	return m.cells[r*m.Cols+c]
}

func (m *Mask) SetUsable(r, c int, usable bool) {
	m.cells[r*m.Cols+c] = usable
}

// CheckShape verifies the mask matches the target grid geometry. A mismatch
// means the reference dataset and the target grid disagree and is a fatal
// configuration fault, never a silent skip.
func (m *Mask) CheckShape(spec Spec) error {
	if m.Rows != spec.Rows || m.Cols != spec.Cols {
		return fmt.Errorf("land mask shape %dx%d does not match grid %dx%d", m.Rows, m.Cols, spec.Rows, spec.Cols)
	}
	return nil
}

// Apply forces every unusable cell of g to no-data.
func (m *Mask) Apply(g *Grid) {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if !m.Usable(r, c) {
				g.Set(r, c, math.NaN())
			}
		}
	}
}

// MaskFromFrame derives a mask from a reference frame: a cell is usable iff
// its reference value is present and above the sentinel floor.
func MaskFromFrame(frame *Grid) *Mask {
	m := &Mask{Rows: frame.Rows, Cols: frame.Cols, cells: make([]bool, frame.Rows*frame.Cols)}
	for r := 0; r < frame.Rows; r++ {
		for c := 0; c < frame.Cols; c++ {
			v := frame.At(r, c)
			m.cells[r*m.Cols+c] = !math.IsNaN(v) && v > sentinelFloor
		}
	}
	return m
}

type referenceDocument struct {
	Frames []struct {
		Data *Grid `json:"data"`
	} `json:"frames"`
}

// LoadLandMask builds the mask from the first frame of a timelapse file,
// typically the temperature dataset that shares this grid. Errors leave the
// pipeline in unmasked degraded mode; the caller decides how loudly to warn.
func LoadLandMask(path string) (*Mask, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("land mask reference: %w", err)
	}
	var doc referenceDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("land mask reference %s: %w", path, err)
	}
	if len(doc.Frames) == 0 || doc.Frames[0].Data == nil {
		return nil, errors.New("land mask reference has no frames")
	}
	return MaskFromFrame(doc.Frames[0].Data), nil
}
