package terrain

import (
	"github.com/tribshms/gotribs/internal/raster"
)

// FlowAccumulation counts, for every cell, the number of cells draining
// through it (itself included) under the D8 pointer grid.
func FlowAccumulation(d8 *raster.Grid) *raster.Grid {
	out := raster.New(d8.Cols, d8.Rows, d8.XLL, d8.YLL, d8.CellSize)
	out.NoData = d8.NoData

	// in-degree of every cell under the pointer grid
	indegree := make([]int, len(d8.Cells))
	for r := 0; r < d8.Rows; r++ {
		for c := 0; c < d8.Cols; c++ {
			if d8.IsNoData(r, c) {
				continue
			}
			out.Set(r, c, 1)
			if nr, nc, ok := downstream(d8, r, c); ok {
				indegree[nr*d8.Cols+nc]++
			}
		}
	}

	// peel sources in topological order, pushing counts downstream
	queue := make([][2]int, 0, d8.Cols*d8.Rows)
	for r := 0; r < d8.Rows; r++ {
		for c := 0; c < d8.Cols; c++ {
			if !d8.IsNoData(r, c) && indegree[r*d8.Cols+c] == 0 {
				queue = append(queue, [2]int{r, c})
			}
		}
	}

	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		r, c := cell[0], cell[1]

		nr, nc, ok := downstream(d8, r, c)
		if !ok {
			continue
		}
		out.Set(nr, nc, out.Value(nr, nc)+out.Value(r, c))
		indegree[nr*d8.Cols+nc]--
		if indegree[nr*d8.Cols+nc] == 0 {
			queue = append(queue, [2]int{nr, nc})
		}
	}

	return out
}

// ExtractStreams masks cells whose accumulation meets the threshold:
// 1 on the stream network, 0 elsewhere, nodata carried through.
func ExtractStreams(acc *raster.Grid, threshold float64) *raster.Grid {
	out := raster.New(acc.Cols, acc.Rows, acc.XLL, acc.YLL, acc.CellSize)
	out.NoData = acc.NoData

	for r := 0; r < acc.Rows; r++ {
		for c := 0; c < acc.Cols; c++ {
			if acc.IsNoData(r, c) {
				continue
			}
			if acc.Value(r, c) >= threshold {
				out.Set(r, c, 1)
			} else {
				out.Set(r, c, 0)
			}
		}
	}
	return out
}

// StreamPolylines converts a stream mask into vertex chains by walking
// the pointer grid from channel heads to confluences or the grid edge.
// The result feeds the mesh generator's stream densification.
func StreamPolylines(streams, d8 *raster.Grid) [][][2]float64 {
	onStream := func(r, c int) bool {
		return streams.In(r, c) && !streams.IsNoData(r, c) && streams.Value(r, c) == 1
	}

	// stream in-degree: how many stream cells drain into each stream cell
	indegree := make([]int, len(streams.Cells))
	for r := 0; r < streams.Rows; r++ {
		for c := 0; c < streams.Cols; c++ {
			if !onStream(r, c) {
				continue
			}
			if nr, nc, ok := downstream(d8, r, c); ok && onStream(nr, nc) {
				indegree[nr*streams.Cols+nc]++
			}
		}
	}

	var lines [][][2]float64
	for r := 0; r < streams.Rows; r++ {
		for c := 0; c < streams.Cols; c++ {
			// chains start at heads (no stream inflow) and below confluences
			if !onStream(r, c) || indegree[r*streams.Cols+c] == 1 {
				continue
			}
			cr, cc := r, c
			line := [][2]float64{}
			for {
				x, y := streams.CellCenter(cr, cc)
				line = append(line, [2]float64{x, y})

				nr, nc, ok := downstream(d8, cr, cc)
				if !ok || !onStream(nr, nc) {
					break
				}
				cr, cc = nr, nc
				if indegree[cr*streams.Cols+cc] > 1 {
					// stop at the confluence, which starts its own chain
					x, y = streams.CellCenter(cr, cc)
					line = append(line, [2]float64{x, y})
					break
				}
			}
			if len(line) >= 2 {
				lines = append(lines, line)
			}
		}
	}
	return lines
}
