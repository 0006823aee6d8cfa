package terrain

import (
	"math"

	"github.com/tribshms/gotribs/internal/raster"
)

// ESRI D8 pointer codes, clockwise from east.
var (
	d8Codes = [8]float64{1, 2, 4, 8, 16, 32, 64, 128}
	d8DRow  = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	d8DCol  = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	d8Dist  = [8]float64{1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2}
)

// FlowDirections computes the D8 pointer grid of a depression-filled DEM:
// each cell holds the ESRI code of its steepest downslope neighbour, 0
// where no neighbour is lower (should only remain on the outflow edge),
// and nodata where the DEM has none.
func FlowDirections(dem *raster.Grid) *raster.Grid {
	out := raster.New(dem.Cols, dem.Rows, dem.XLL, dem.YLL, dem.CellSize)
	out.NoData = dem.NoData

	for r := 0; r < dem.Rows; r++ {
		for c := 0; c < dem.Cols; c++ {
			if dem.IsNoData(r, c) {
				continue
			}

			z := dem.Value(r, c)
			best := -1
			bestSlope := 0.0
			for i := 0; i < 8; i++ {
				nr, nc := r+d8DRow[i], c+d8DCol[i]
				if !dem.In(nr, nc) || dem.IsNoData(nr, nc) {
					continue
				}
				slope := (z - dem.Value(nr, nc)) / d8Dist[i]
				if slope > bestSlope {
					bestSlope = slope
					best = i
				}
			}

			if best < 0 {
				out.Set(r, c, 0)
			} else {
				out.Set(r, c, d8Codes[best])
			}
		}
	}
	return out
}

// downstream returns the receiving cell of (row, col) under the pointer
// grid, and whether one exists.
func downstream(d8 *raster.Grid, row, col int) (int, int, bool) {
	code := d8.Value(row, col)
	for i := 0; i < 8; i++ {
		if d8Codes[i] == code {
			nr, nc := row+d8DRow[i], col+d8DCol[i]
			if d8.In(nr, nc) && !d8.IsNoData(nr, nc) {
				return nr, nc, true
			}
			return 0, 0, false
		}
	}
	return 0, 0, false
}
