package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Grid is a Rows x Cols matrix of values. Cells with no data hold NaN
// internally and serialize as JSON null, never as a numeric sentinel.
type Grid struct {
	Rows int
	Cols int
	vals []float64
}

// New returns a grid with every cell set to no-data.
func New(rows, cols int) *Grid {
	g := &Grid{Rows: rows, Cols: cols, vals: make([]float64, rows*cols)}
	for i := range g.vals {
		g.vals[i] = math.NaN()
	}
	return g
}

func (g *Grid) At(r, c int) float64 {
	return g.vals[r*g.Cols+c]
}

func (g *Grid) Set(r, c int, v float64) {
	g.vals[r*g.Cols+c] = v
}

// Clamp forces every data cell into [lo, hi]. No-data cells are untouched.
func (g *Grid) Clamp(lo, hi float64) {
	for i, v := range g.vals {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			g.vals[i] = lo
		} else if v > hi {
			g.vals[i] = hi
		}
	}
}

// MarshalJSON writes the grid as nested row arrays, rounding data cells to
// one decimal and emitting null for no-data cells.
func (g *Grid) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, g.Rows*(g.Cols*6+2)+2)
	buf = append(buf, '[')
	for r := 0; r < g.Rows; r++ {
		if r > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '[')
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				buf = append(buf, ',')
			}
			v := g.At(r, c)
			if math.IsNaN(v) {
				buf = append(buf, "null"...)
			} else {
				buf = strconv.AppendFloat(buf, math.Round(v*10)/10, 'f', -1, 64)
			}
		}
		buf = append(buf, ']')
	}
	return append(buf, ']'), nil
}

// UnmarshalJSON reads nested row arrays where null means no data. Used for
// the temperature reference frames the land mask is derived from.
func (g *Grid) UnmarshalJSON(b []byte) error {
	var rows [][]*float64
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return errors.New("grid: empty data")
	}
	cols := len(rows[0])
	vals := make([]float64, 0, len(rows)*cols)
	for r, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("grid: row %d has %d cells, want %d", r, len(row), cols)
		}
		for _, p := range row {
			if p == nil {
				vals = append(vals, math.NaN())
			} else {
				vals = append(vals, *p)
			}
		}
	}
	g.Rows = len(rows)
	g.Cols = cols
	g.vals = vals
	return nil
}
