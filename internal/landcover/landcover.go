package landcover

import (
	"fmt"
	"math"

	"github.com/tribshms/gotribs/internal/raster"
)

// paramNames are the land-use table attributes each class carries into
// the model's .ldt tables. They start unset and are filled by
// calibration.
var paramNames = []string{
	"a", "b1", "P", "S", "K", "b2", "Al", "h", "Kt", "Rs", "V", "LAI",
	"theta*_s", "theta*_t",
}

// Class is one land-cover class and its parameter table.
type Class struct {
	ID     int
	Params map[string]float64
}

// ParamNames returns the attribute order of the land-use table.
func ParamNames() []string {
	out := make([]string, len(paramNames))
	copy(out, paramNames)
	return out
}

// classTable builds one empty-parameter class per distinct value in the
// classified grid, NaN marking attributes still to be assigned.
func classTable(classified *raster.Grid) []Class {
	seen := make(map[int]bool)
	var ids []int
	for r := 0; r < classified.Rows; r++ {
		for c := 0; c < classified.Cols; c++ {
			if classified.IsNoData(r, c) {
				continue
			}
			id := int(classified.Value(r, c))
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	classes := make([]Class, 0, len(ids))
	for _, id := range ids {
		params := make(map[string]float64, len(paramNames))
		for _, name := range paramNames {
			params[name] = math.NaN()
		}
		classes = append(classes, Class{ID: id, Params: params})
	}
	return classes
}

// HeightClass maps a vegetation height range to a class value. Heights
// in (Min, Max] take the class; a zero-width first range matches the
// exact value.
type HeightClass struct {
	Min, Max float64
	Class    int
}

// ClassifyHeights bins a canopy height grid into classes. Ranges must
// ascend, and Min may equal Max only on the first range.
func ClassifyHeights(heights *raster.Grid, thresholds []HeightClass) (*raster.Grid, []Class, error) {
	if len(thresholds) == 0 {
		return nil, nil, fmt.Errorf("no height thresholds given")
	}

	prevMax := math.Inf(-1)
	for i, t := range thresholds {
		if t.Min == t.Max {
			if i != 0 {
				return nil, nil, fmt.Errorf("range %d: min may equal max only on the first range", i)
			}
		} else if t.Min > t.Max {
			return nil, nil, fmt.Errorf("range %d: min %g exceeds max %g", i, t.Min, t.Max)
		}
		if i > 0 && t.Min < prevMax {
			return nil, nil, fmt.Errorf("range %d: min %g overlaps previous max %g", i, t.Min, prevMax)
		}
		prevMax = t.Max
	}

	out := raster.New(heights.Cols, heights.Rows, heights.XLL, heights.YLL, heights.CellSize)
	out.NoData = heights.NoData
	out.Fill(0)

	for r := 0; r < heights.Rows; r++ {
		for c := 0; c < heights.Cols; c++ {
			if heights.IsNoData(r, c) {
				out.Set(r, c, out.NoData)
				continue
			}
			h := heights.Value(r, c)
			for i, t := range thresholds {
				if t.Min == t.Max {
					if i == 0 && h == t.Max {
						out.Set(r, c, float64(t.Class))
					}
					continue
				}
				if h > t.Min && h <= t.Max {
					out.Set(r, c, float64(t.Class))
					break
				}
			}
		}
	}

	return out, classTable(out), nil
}

// NDVI computes (nir - red) / (nir + red), masking cells where both
// bands are zero to the nodata sentinel.
func NDVI(red, nir *raster.Grid) (*raster.Grid, error) {
	if red.Rows != nir.Rows || red.Cols != nir.Cols {
		return nil, fmt.Errorf("band shapes differ: %dx%d vs %dx%d",
			red.Rows, red.Cols, nir.Rows, nir.Cols)
	}

	out := raster.New(red.Cols, red.Rows, red.XLL, red.YLL, red.CellSize)
	for r := 0; r < red.Rows; r++ {
		for c := 0; c < red.Cols; c++ {
			rv, nv := red.Value(r, c), nir.Value(r, c)
			if rv == 0 && nv == 0 {
				continue // stays nodata
			}
			sum := nv + rv
			if sum == 0 {
				continue
			}
			out.Set(r, c, (nv-rv)/sum)
		}
	}
	return out, nil
}

// ClassifyNDVI clusters the NDVI surface of a red/near-infrared image
// pair into nClusters land-cover classes with k-means.
func ClassifyNDVI(red, nir *raster.Grid, nClusters int) (*raster.Grid, []Class, error) {
	ndvi, err := NDVI(red, nir)
	if err != nil {
		return nil, nil, err
	}

	var values []float64
	var cells [][2]int
	for r := 0; r < ndvi.Rows; r++ {
		for c := 0; c < ndvi.Cols; c++ {
			if ndvi.IsNoData(r, c) {
				continue
			}
			values = append(values, ndvi.Value(r, c))
			cells = append(cells, [2]int{r, c})
		}
	}
	if len(values) < nClusters {
		return nil, nil, fmt.Errorf("%d valid cells cannot form %d clusters", len(values), nClusters)
	}

	labels, err := kmeans1D(values, nClusters, 100)
	if err != nil {
		return nil, nil, err
	}

	out := raster.New(ndvi.Cols, ndvi.Rows, ndvi.XLL, ndvi.YLL, ndvi.CellSize)
	for i, cell := range cells {
		out.Set(cell[0], cell[1], float64(labels[i]))
	}
	return out, classTable(out), nil
}
