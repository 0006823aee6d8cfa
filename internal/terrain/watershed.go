package terrain

import (
	"fmt"

	"github.com/tribshms/gotribs/internal/raster"
)

// SnapPourPoint moves an outlet coordinate onto the cell with the highest
// flow accumulation within snapDist map units, so the watershed walk
// starts on the channel.
func SnapPourPoint(acc *raster.Grid, x, y, snapDist float64) (float64, float64, error) {
	row, col, ok := acc.CellAt(x, y)
	if !ok {
		return 0, 0, fmt.Errorf("pour point (%g, %g) is outside the grid", x, y)
	}

	radius := int(snapDist / acc.CellSize)
	bestRow, bestCol := row, col
	best := -1.0

	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			nr, nc := row+dr, col+dc
			if !acc.In(nr, nc) || acc.IsNoData(nr, nc) {
				continue
			}
			if v := acc.Value(nr, nc); v > best {
				best = v
				bestRow, bestCol = nr, nc
			}
		}
	}
	if best < 0 {
		return 0, 0, fmt.Errorf("no data cells within snap distance of (%g, %g)", x, y)
	}

	sx, sy := acc.CellCenter(bestRow, bestCol)
	return sx, sy, nil
}

// Watershed masks every cell draining to the outlet coordinate: 1 inside
// the watershed, nodata outside.
func Watershed(d8 *raster.Grid, outletX, outletY float64) (*raster.Grid, error) {
	row, col, ok := d8.CellAt(outletX, outletY)
	if !ok {
		return nil, fmt.Errorf("outlet (%g, %g) is outside the grid", outletX, outletY)
	}
	if d8.IsNoData(row, col) {
		return nil, fmt.Errorf("outlet (%g, %g) is on a nodata cell", outletX, outletY)
	}

	mask := raster.New(d8.Cols, d8.Rows, d8.XLL, d8.YLL, d8.CellSize)
	mask.NoData = d8.NoData

	// walk upstream: a neighbour is inside if its pointer leads here
	queue := [][2]int{{row, col}}
	mask.Set(row, col, 1)

	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		r, c := cell[0], cell[1]

		for i := 0; i < 8; i++ {
			nr, nc := r+d8DRow[i], c+d8DCol[i]
			if !d8.In(nr, nc) || d8.IsNoData(nr, nc) || mask.Value(nr, nc) == 1 {
				continue
			}
			dr, dc, ok := downstream(d8, nr, nc)
			if ok && dr == r && dc == c {
				mask.Set(nr, nc, 1)
				queue = append(queue, [2]int{nr, nc})
			}
		}
	}

	return mask, nil
}

// BoundaryRing traces the ordered outline of a watershed mask using
// Moore neighbour tracing over the masked cells, returning cell-center
// vertices of the closed ring.
func BoundaryRing(mask *raster.Grid) ([][2]float64, error) {
	inside := func(r, c int) bool {
		return mask.In(r, c) && !mask.IsNoData(r, c) && mask.Value(r, c) == 1
	}

	// topmost-leftmost masked cell starts the trace
	startR, startC := -1, -1
	for r := 0; r < mask.Rows && startR < 0; r++ {
		for c := 0; c < mask.Cols; c++ {
			if inside(r, c) {
				startR, startC = r, c
				break
			}
		}
	}
	if startR < 0 {
		return nil, fmt.Errorf("watershed mask is empty")
	}

	// Moore tracing, neighbours clockwise starting from west
	moore := [8][2]int{{0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}}

	var ring [][2]float64
	r, c := startR, startC
	dir := 0

	for {
		x, y := mask.CellCenter(r, c)
		ring = append(ring, [2]float64{x, y})

		found := false
		// resume the scan from behind the direction we arrived on
		for i := 0; i < 8; i++ {
			d := (dir + i) % 8
			nr, nc := r+moore[d][0], c+moore[d][1]
			if inside(nr, nc) {
				r, c = nr, nc
				dir = (d + 6) % 8
				found = true
				break
			}
		}
		if !found {
			break // single isolated cell
		}
		if r == startR && c == startC {
			break
		}
		if len(ring) > 4*len(mask.Cells) {
			return nil, fmt.Errorf("boundary trace did not close")
		}
	}

	return ring, nil
}
