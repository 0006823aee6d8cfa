package raster

import (
	"fmt"
	"math"
)

// DefaultNoData matches the sentinel the model's grid products use.
const DefaultNoData = -9999

// Grid is a single-band raster in ESRI ASCII layout: row-major cells with
// row 0 at the top, georeferenced by the lower-left corner and a square
// cell size.
type Grid struct {
	Cols     int
	Rows     int
	XLL      float64
	YLL      float64
	CellSize float64
	NoData   float64
	Cells    []float64
}

// New allocates a grid with every cell set to the nodata sentinel.
func New(cols, rows int, xll, yll, cellSize float64) *Grid {
	g := &Grid{
		Cols:     cols,
		Rows:     rows,
		XLL:      xll,
		YLL:      yll,
		CellSize: cellSize,
		NoData:   DefaultNoData,
		Cells:    make([]float64, cols*rows),
	}
	for i := range g.Cells {
		g.Cells[i] = g.NoData
	}
	return g
}

func (g *Grid) index(row, col int) int { return row*g.Cols + col }

// Value returns the cell at (row, col). Callers are expected to stay in
// bounds; In reports whether an index is.
func (g *Grid) Value(row, col int) float64 {
	return g.Cells[g.index(row, col)]
}

func (g *Grid) Set(row, col int, v float64) {
	g.Cells[g.index(row, col)] = v
}

// In reports whether (row, col) lies inside the grid.
func (g *Grid) In(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// IsNoData reports whether the cell holds the nodata sentinel.
func (g *Grid) IsNoData(row, col int) bool {
	return g.Value(row, col) == g.NoData
}

// CellCenter returns the map coordinates of a cell's center.
func (g *Grid) CellCenter(row, col int) (x, y float64) {
	x = g.XLL + (float64(col)+0.5)*g.CellSize
	y = g.YLL + (float64(g.Rows-row)-0.5)*g.CellSize
	return x, y
}

// CellAt returns the cell containing the map coordinate, and whether the
// coordinate falls inside the grid.
func (g *Grid) CellAt(x, y float64) (row, col int, ok bool) {
	col = int(math.Floor((x - g.XLL) / g.CellSize))
	row = g.Rows - 1 - int(math.Floor((y-g.YLL)/g.CellSize))
	return row, col, g.In(row, col)
}

// Bounds returns (minX, minY, maxX, maxY).
func (g *Grid) Bounds() (float64, float64, float64, float64) {
	return g.XLL, g.YLL,
		g.XLL + float64(g.Cols)*g.CellSize,
		g.YLL + float64(g.Rows)*g.CellSize
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	dup := *g
	dup.Cells = make([]float64, len(g.Cells))
	copy(dup.Cells, g.Cells)
	return &dup
}

// Fill sets every cell to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Cells {
		g.Cells[i] = v
	}
}

// ClipExtent returns the sub-grid covering the requested extent, snapped
// outward to cell boundaries and clamped to the grid.
func (g *Grid) ClipExtent(minX, minY, maxX, maxY float64) (*Grid, error) {
	if minX >= maxX || minY >= maxY {
		return nil, fmt.Errorf("clip extent is empty")
	}

	colMin := clamp(int(math.Floor((minX-g.XLL)/g.CellSize)), 0, g.Cols-1)
	colMax := clamp(int(math.Ceil((maxX-g.XLL)/g.CellSize))-1, 0, g.Cols-1)
	rowMin := clamp(g.Rows-int(math.Ceil((maxY-g.YLL)/g.CellSize)), 0, g.Rows-1)
	rowMax := clamp(g.Rows-1-int(math.Floor((minY-g.YLL)/g.CellSize)), 0, g.Rows-1)

	if colMin > colMax || rowMin > rowMax {
		return nil, fmt.Errorf("clip extent does not intersect the grid")
	}

	out := New(colMax-colMin+1, rowMax-rowMin+1,
		g.XLL+float64(colMin)*g.CellSize,
		g.YLL+float64(g.Rows-1-rowMax)*g.CellSize,
		g.CellSize)
	out.NoData = g.NoData

	for r := rowMin; r <= rowMax; r++ {
		for c := colMin; c <= colMax; c++ {
			out.Set(r-rowMin, c-colMin, g.Value(r, c))
		}
	}
	return out, nil
}

// Sample bilinearly interpolates the grid at a map coordinate. Outside
// the data extent the nearest cell value is used, mirroring a
// grid-interpolator with edge extrapolation.
func (g *Grid) Sample(x, y float64) float64 {
	// continuous cell-space position of the query relative to centers
	fc := (x-g.XLL)/g.CellSize - 0.5
	fr := float64(g.Rows) - 0.5 - (y-g.YLL)/g.CellSize

	c0 := clamp(int(math.Floor(fc)), 0, g.Cols-1)
	r0 := clamp(int(math.Floor(fr)), 0, g.Rows-1)
	c1 := clamp(c0+1, 0, g.Cols-1)
	r1 := clamp(r0+1, 0, g.Rows-1)

	tc := clampF(fc-float64(c0), 0, 1)
	tr := clampF(fr-float64(r0), 0, 1)

	v00 := g.Value(r0, c0)
	v01 := g.Value(r0, c1)
	v10 := g.Value(r1, c0)
	v11 := g.Value(r1, c1)

	top := v00*(1-tc) + v01*tc
	bottom := v10*(1-tc) + v11*tc
	return top*(1-tr) + bottom*tr
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
