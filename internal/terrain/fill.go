package terrain

import (
	"container/heap"

	"github.com/tribshms/gotribs/internal/raster"
)

type floodCell struct {
	elev  float64
	order int64
	row   int
	col   int
}

type floodHeap []floodCell

func (h floodHeap) Len() int { return len(h) }
func (h floodHeap) Less(i, j int) bool {
	if h[i].elev != h[j].elev {
		return h[i].elev < h[j].elev
	}
	return h[i].order < h[j].order // FIFO among equal elevations
}
func (h floodHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *floodHeap) Push(x interface{}) { *h = append(*h, x.(floodCell)) }
func (h *floodHeap) Pop() interface{} {
	old := *h
	n := len(old)
	cell := old[n-1]
	*h = old[:n-1]
	return cell
}

// FillDepressions removes pits from a DEM with the priority-flood method:
// the grid is flooded inward from its edges, raising every cell to at
// least the level of its lowest exit path. With fixFlats a tiny epsilon
// gradient is imposed so filled areas still drain.
func FillDepressions(dem *raster.Grid, fixFlats bool) *raster.Grid {
	out := dem.Clone()

	epsilon := 0.0
	if fixFlats {
		epsilon = 1e-5
	}

	visited := make([]bool, len(out.Cells))
	h := &floodHeap{}
	heap.Init(h)

	var order int64
	push := func(r, c int) {
		visited[r*out.Cols+c] = true
		heap.Push(h, floodCell{elev: out.Value(r, c), order: order, row: r, col: c})
		order++
	}

	// seed with all edge cells and cells adjacent to nodata
	for r := 0; r < out.Rows; r++ {
		for c := 0; c < out.Cols; c++ {
			if out.IsNoData(r, c) {
				visited[r*out.Cols+c] = true
				continue
			}
			if r == 0 || r == out.Rows-1 || c == 0 || c == out.Cols-1 {
				push(r, c)
				continue
			}
			for i := 0; i < 8; i++ {
				if out.IsNoData(r+d8DRow[i], c+d8DCol[i]) {
					push(r, c)
					break
				}
			}
		}
	}

	for h.Len() > 0 {
		cell := heap.Pop(h).(floodCell)
		for i := 0; i < 8; i++ {
			nr, nc := cell.row+d8DRow[i], cell.col+d8DCol[i]
			if !out.In(nr, nc) || visited[nr*out.Cols+nc] {
				continue
			}
			visited[nr*out.Cols+nc] = true

			raised := out.Value(nr, nc)
			if raised <= cell.elev {
				raised = cell.elev + epsilon
				out.Set(nr, nc, raised)
			}
			heap.Push(h, floodCell{elev: raised, order: order, row: nr, col: nc})
			order++
		}
	}

	return out
}
