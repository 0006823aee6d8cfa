package landcover

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// kmeans1D clusters scalar values with Lloyd's algorithm. Centers are
// seeded at evenly spaced quantiles so runs are deterministic, and the
// returned labels are ordered by ascending center value.
func kmeans1D(values []float64, k, maxIter int) ([]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", k)
	}
	if len(values) < k {
		return nil, fmt.Errorf("%d values cannot form %d clusters", len(values), k)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	centers := make([]float64, k)
	for i := range centers {
		q := (float64(i) + 0.5) / float64(k)
		centers[i] = stat.Quantile(q, stat.Empirical, sorted, nil)
	}

	labels := make([]int, len(values))
	sums := make([]float64, k)
	counts := make([]int, k)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range values {
			best := 0
			bestDist := math.Abs(v - centers[0])
			for j := 1; j < k; j++ {
				if d := math.Abs(v - centers[j]); d < bestDist {
					bestDist = d
					best = j
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		for j := range sums {
			sums[j] = 0
			counts[j] = 0
		}
		for i, v := range values {
			sums[labels[i]] += v
			counts[labels[i]]++
		}
		for j := range centers {
			if counts[j] > 0 {
				centers[j] = sums[j] / float64(counts[j])
			}
		}
	}

	// relabel so class 0 is the lowest center
	order := make([]int, k)
	floats.Argsort(append([]float64(nil), centers...), order)
	rank := make([]int, k)
	for newLabel, oldLabel := range order {
		rank[oldLabel] = newLabel
	}
	for i := range labels {
		labels[i] = rank[labels[i]]
	}
	return labels, nil
}
