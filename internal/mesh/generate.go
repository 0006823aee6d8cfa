package mesh

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/tribshms/gotribs/internal/raster"
)

// Node boundary codes in the point file.
const (
	CodeInterior = 0
	CodeBoundary = 1
	CodeOutlet   = 2
	CodeStream   = 3
)

// Point is one mesh node: map coordinates, sampled elevation and a
// boundary code.
type Point struct {
	X, Y, Z float64
	BC      int
}

// Generator turns a clipped DEM plus the delineation vectors into a
// multiresolution node set for triangulation. Node density follows the
// significant detail coefficients of a Haar wavelet packet, so rough
// terrain gets more nodes than smooth terrain.
type Generator struct {
	DEM      *raster.Grid
	Boundary [][2]float64
	Streams  [][][2]float64
	Outlet   [2]float64

	// MaxLevel caps the decomposition depth; zero means as deep as the
	// grid shape allows.
	MaxLevel int

	log *slog.Logger
}

func NewGenerator(dem *raster.Grid, boundary [][2]float64, streams [][][2]float64,
	outlet [2]float64, maxLevel int, log *slog.Logger) *Generator {
	return &Generator{
		DEM:      dem,
		Boundary: boundary,
		Streams:  streams,
		Outlet:   outlet,
		MaxLevel: maxLevel,
		log:      log,
	}
}

// Points selects mesh nodes at the given significance threshold. Lower
// thresholds keep more detail coefficients and yield denser meshes.
func (g *Generator) Points(threshold float64) ([]Point, error) {
	if len(g.Boundary) < 3 {
		return nil, fmt.Errorf("watershed boundary needs at least 3 vertices")
	}

	packet := Decompose(g.DEM.Cells, g.DEM.Rows, g.DEM.Cols, g.MaxLevel)
	if packet.MaxLevel == 0 {
		return nil, fmt.Errorf("grid %dx%d is too small to decompose", g.DEM.Rows, g.DEM.Cols)
	}
	norm := packet.NormalizingCoeff()
	if norm == 0 {
		return nil, fmt.Errorf("surface has no detail coefficients")
	}

	centers := g.significantCenters(packet, norm, threshold)
	if len(centers) < 2 {
		return nil, fmt.Errorf("threshold %g selected %d points, need at least 2", threshold, len(centers))
	}
	g.log.Debug("wavelet point selection",
		slog.Int("levels", packet.MaxLevel),
		slog.Int("centers", len(centers)))

	spacing := medianNeighborDistance(centers, 6)

	streamPts := g.streamPoints()
	centers = dropNear(centers, streamPts, g.DEM.CellSize)

	var nodes []Point
	for _, p := range centers {
		if pointInRing(g.Boundary, p[0], p[1]) {
			nodes = append(nodes, Point{X: p[0], Y: p[1], BC: CodeInterior})
		}
	}
	nodes = append(nodes, g.boundaryNodes(spacing)...)
	// the outlet goes ahead of the stream chain so it keeps its code when
	// a stream endpoint lands on the same cell
	nodes = append(nodes, Point{X: g.Outlet[0], Y: g.Outlet[1], BC: CodeOutlet})
	for _, p := range streamPts {
		nodes = append(nodes, Point{X: p[0], Y: p[1], BC: CodeStream})
	}

	nodes = dedupe(nodes)
	for i := range nodes {
		nodes[i].Z = g.DEM.Sample(nodes[i].X, nodes[i].Y)
	}

	g.log.Info("mesh nodes generated",
		slog.Int("nodes", len(nodes)),
		slog.Float64("spacing", spacing))
	return nodes, nil
}

// significantCenters collects the cell centers whose detail magnitude
// clears the level-scaled threshold, over every level of the packet.
func (g *Generator) significantCenters(p *Packet, norm, threshold float64) [][2]float64 {
	minX, _, _, maxY := g.DEM.Bounds()
	width := float64(g.DEM.Cols) * g.DEM.CellSize
	height := float64(g.DEM.Rows) * g.DEM.CellSize

	seen := make(map[[2]float64]struct{})
	var centers [][2]float64

	for level := 1; level <= p.MaxLevel; level++ {
		h, v, d := p.Details(level)
		dx := width / float64(v.cols)
		dy := height / float64(v.rows)
		cut := math.Pow(2, float64(1-level)) * threshold

		for r := 0; r < v.rows; r++ {
			for c := 0; c < v.cols; c++ {
				m := math.Max(math.Abs(v.at(r, c)),
					math.Max(math.Abs(h.at(r, c)), math.Abs(d.at(r, c))))
				if m/norm <= cut {
					continue
				}
				pt := [2]float64{minX + float64(c)*dx, maxY - float64(r)*dy}
				if _, ok := seen[pt]; ok {
					continue
				}
				seen[pt] = struct{}{}
				centers = append(centers, pt)
			}
		}
	}
	return centers
}

// streamPoints samples every stream polyline at the DEM resolution.
func (g *Generator) streamPoints() [][2]float64 {
	var pts [][2]float64
	for _, line := range g.Streams {
		pts = append(pts, samplePolyline(line, g.DEM.CellSize)...)
	}
	return pts
}

// boundaryNodes samples an outward-buffered watershed outline so the
// triangulation closes outside the basin proper. Offset points that
// fold back inside the original boundary are discarded.
func (g *Generator) boundaryNodes(spacing float64) []Point {
	const scale = 0.75
	buffered := offsetRing(g.Boundary, spacing*scale)
	samples := resampleRing(buffered, spacing*scale)

	var nodes []Point
	for _, p := range samples {
		if pointInRing(g.Boundary, p[0], p[1]) {
			continue
		}
		nodes = append(nodes, Point{X: p[0], Y: p[1], BC: CodeBoundary})
	}
	return nodes
}

// medianNeighborDistance is the median, over all points, of the distance
// to each point's n-th nearest neighbor.
func medianNeighborDistance(points [][2]float64, n int) float64 {
	tree := newTree(points)

	dists := make([]float64, 0, len(points))
	for _, p := range points {
		keep := kdtree.NewNKeeper(n + 1) // the query point finds itself
		tree.NearestSet(keep, kdtree.Point{p[0], p[1]})

		worst := 0.0
		for _, cd := range keep.Heap {
			q, ok := cd.Comparable.(kdtree.Point)
			if !ok {
				continue
			}
			// recompute from coordinates, Dist is the squared metric
			d := math.Hypot(q[0]-p[0], q[1]-p[1])
			if d > worst {
				worst = d
			}
		}
		dists = append(dists, worst)
	}

	sort.Float64s(dists)
	return dists[len(dists)/2]
}

// dropNear removes candidates lying within reach of any anchor point.
func dropNear(candidates, anchors [][2]float64, reach float64) [][2]float64 {
	if len(anchors) == 0 {
		return candidates
	}
	tree := newTree(anchors)

	kept := candidates[:0]
	for _, p := range candidates {
		q, _ := tree.Nearest(kdtree.Point{p[0], p[1]})
		qp := q.(kdtree.Point)
		if math.Hypot(qp[0]-p[0], qp[1]-p[1]) > reach {
			kept = append(kept, p)
		}
	}
	return kept
}

func newTree(points [][2]float64) *kdtree.Tree {
	data := make(kdtree.Points, len(points))
	for i, p := range points {
		data[i] = kdtree.Point{p[0], p[1]}
	}
	return kdtree.New(data, false)
}

// dedupe drops points sharing coordinates, keeping the first occurrence.
func dedupe(nodes []Point) []Point {
	seen := make(map[[2]float64]struct{}, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		key := [2]float64{n.X, n.Y}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
