package mesh

import (
	"math"
)

// matrix is a dense row-major grid of wavelet coefficients.
type matrix struct {
	rows, cols int
	data       []float64
}

func newMatrix(rows, cols int) *matrix {
	return &matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (m *matrix) at(r, c int) float64     { return m.data[r*m.cols+c] }
func (m *matrix) set(r, c int, v float64) { m.data[r*m.cols+c] = v }

// sym reads with symmetric edge extension so odd dimensions decompose
// cleanly.
func (m *matrix) symRow(r, c int) float64 {
	if c >= m.cols {
		c = 2*m.cols - 1 - c
	}
	return m.at(r, c)
}

func (m *matrix) symCol(r, c int) float64 {
	if r >= m.rows {
		r = 2*m.rows - 1 - r
	}
	return m.at(r, c)
}

const invSqrt2 = math.Sqrt2 / 2

// haarRows applies one Haar analysis step along every row, returning the
// approximation and detail halves at ceil(cols/2) width.
func haarRows(m *matrix) (approx, detail *matrix) {
	half := (m.cols + 1) / 2
	approx = newMatrix(m.rows, half)
	detail = newMatrix(m.rows, half)
	for r := 0; r < m.rows; r++ {
		for j := 0; j < half; j++ {
			a := m.symRow(r, 2*j)
			b := m.symRow(r, 2*j+1)
			approx.set(r, j, (a+b)*invSqrt2)
			detail.set(r, j, (b-a)*invSqrt2)
		}
	}
	return approx, detail
}

// haarCols applies one Haar analysis step along every column.
func haarCols(m *matrix) (approx, detail *matrix) {
	half := (m.rows + 1) / 2
	approx = newMatrix(half, m.cols)
	detail = newMatrix(half, m.cols)
	for i := 0; i < half; i++ {
		for c := 0; c < m.cols; c++ {
			a := m.symCol(2*i, c)
			b := m.symCol(2*i+1, c)
			approx.set(i, c, (a+b)*invSqrt2)
			detail.set(i, c, (b-a)*invSqrt2)
		}
	}
	return approx, detail
}

// bands holds the four children of one 2-D Haar step.
type bands struct {
	a, h, v, d *matrix
}

// haarStep performs a single separable 2-D Haar decomposition: rows
// first, then columns, yielding approximation (a), horizontal (h),
// vertical (v) and diagonal (d) detail bands.
func haarStep(m *matrix) bands {
	lo, hi := haarRows(m)
	a, h := haarCols(lo)
	v, d := haarCols(hi)
	return bands{a: a, h: h, v: v, d: d}
}

// Packet is a two-dimensional Haar wavelet packet restricted to the
// repeated-letter detail chains: level k holds the h, v and d bands of
// the (k-1)-th h, v and d bands respectively.
type Packet struct {
	MaxLevel int
	levels   []bands // levels[k-1] holds the level-k chains
}

// MaxDecompositionLevel is the deepest level a grid of the given shape
// supports with a two-tap filter.
func MaxDecompositionLevel(rows, cols int) int {
	n := rows
	if cols < n {
		n = cols
	}
	if n < 2 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(n))))
}

// Decompose builds the packet from row-major data. A maxLevel of zero
// selects the deepest level the shape supports.
func Decompose(data []float64, rows, cols, maxLevel int) *Packet {
	limit := MaxDecompositionLevel(rows, cols)
	if maxLevel <= 0 || maxLevel > limit {
		maxLevel = limit
	}

	m := &matrix{rows: rows, cols: cols, data: data}

	p := &Packet{MaxLevel: maxLevel}
	if maxLevel == 0 {
		return p
	}

	p.levels = make([]bands, maxLevel)
	p.levels[0] = haarStep(m)
	for k := 1; k < maxLevel; k++ {
		prev := p.levels[k-1]
		// each chain decomposes its own band again: h of h, v of v, d of d
		p.levels[k] = bands{
			h: haarStep(prev.h).h,
			v: haarStep(prev.v).v,
			d: haarStep(prev.d).d,
		}
	}
	return p
}

// Details returns the h, v and d bands at a level in [1, MaxLevel].
func (p *Packet) Details(level int) (h, v, d *matrix) {
	b := p.levels[level-1]
	return b.h, b.v, b.d
}

// NormalizingCoeff is the largest detail magnitude across all levels,
// used to scale significance thresholds.
func (p *Packet) NormalizingCoeff() float64 {
	best := 0.0
	for level := 1; level <= p.MaxLevel; level++ {
		h, v, d := p.Details(level)
		for _, m := range []*matrix{h, v, d} {
			for _, x := range m.data {
				if a := math.Abs(x); a > best {
					best = a
				}
			}
		}
	}
	return best
}
