package terrain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tribshms/gotribs/internal/basin"
	"github.com/tribshms/gotribs/internal/raster"
	"github.com/tribshms/gotribs/internal/runstats"
)

// Pipeline drives the watershed delineation sequence: fill, flow
// directions, accumulation, stream extraction, pour-point snapping,
// watershed masking and boundary extraction, writing each intermediate
// raster under OutputDir.
type Pipeline struct {
	Name          string
	OutputDir     string
	Outlet        [2]float64
	SnapDistance  float64
	ThresholdArea float64
	EPSG          int

	// Clean routes intermediates through a temp dir that is removed
	// once the final artifacts are written.
	Clean bool

	log   *slog.Logger
	stats *runstats.Collector
}

// Artifacts lists what a delineation run produced.
type Artifacts struct {
	FilledDEM     string
	FlowDirs      string
	Accumulation  string
	Streams       string
	WatershedMask string
	ClippedDEM    string
	BoundaryFile  string
	StreamsFile   string

	Outlet      [2]float64
	Boundary    [][2]float64
	StreamLines [][][2]float64
}

func NewPipeline(name, outputDir string, outlet [2]float64, snapDist, threshold float64,
	epsg int, log *slog.Logger, stats *runstats.Collector) *Pipeline {
	if name == "" {
		name = "Basin"
	}
	return &Pipeline{
		Name:          name,
		OutputDir:     outputDir,
		Outlet:        outlet,
		SnapDistance:  snapDist,
		ThresholdArea: threshold,
		EPSG:          epsg,
		log:           log,
		stats:         stats,
	}
}

// Delineate runs the whole sequence on a DEM and returns the artifact
// paths together with the boundary ring and stream polylines the mesh
// generator consumes.
func (p *Pipeline) Delineate(ctx context.Context, dem *raster.Grid) (*Artifacts, error) {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	workDir := p.OutputDir
	if p.Clean {
		tmp, err := os.MkdirTemp(p.OutputDir, "delineate-*")
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		workDir = tmp
		defer os.RemoveAll(tmp)
	}

	art := &Artifacts{}

	var filled, d8, acc, streams, mask *raster.Grid

	steps := []struct {
		stage string
		fn    func() error
	}{
		{"fill_depressions", func() error {
			filled = FillDepressions(dem, true)
			art.FilledDEM = p.rasterPath(workDir, "filled")
			return raster.WriteASCII(filled, art.FilledDEM)
		}},
		{"flow_directions", func() error {
			d8 = FlowDirections(filled)
			art.FlowDirs = p.rasterPath(workDir, "d8")
			return raster.WriteASCII(d8, art.FlowDirs)
		}},
		{"flow_accumulation", func() error {
			acc = FlowAccumulation(d8)
			art.Accumulation = p.rasterPath(workDir, "flow_acc")
			return raster.WriteASCII(acc, art.Accumulation)
		}},
		{"extract_streams", func() error {
			streams = ExtractStreams(acc, p.ThresholdArea)
			art.Streams = p.rasterPath(workDir, "stream")
			return raster.WriteASCII(streams, art.Streams)
		}},
		{"snap_pour_point", func() error {
			x, y, err := SnapPourPoint(acc, p.Outlet[0], p.Outlet[1], p.SnapDistance)
			if err != nil {
				return err
			}
			art.Outlet = [2]float64{x, y}
			return nil
		}},
		{"watershed_mask", func() error {
			var err error
			mask, err = Watershed(d8, art.Outlet[0], art.Outlet[1])
			if err != nil {
				return err
			}
			art.WatershedMask = p.rasterPath(workDir, "watershed_msk")
			return raster.WriteASCII(mask, art.WatershedMask)
		}},
		{"watershed_boundary", func() error {
			ring, err := BoundaryRing(mask)
			if err != nil {
				return err
			}
			art.Boundary = ring
			return nil
		}},
		{"stream_polylines", func() error {
			art.StreamLines = StreamPolylines(streams, d8)
			return nil
		}},
		{"clip_dem", func() error {
			minX, minY, maxX, maxY := ringBounds(art.Boundary, dem.CellSize)
			clipped, err := filled.ClipExtent(minX, minY, maxX, maxY)
			if err != nil {
				return err
			}
			art.ClippedDEM = p.rasterPath(p.OutputDir, "clipped_ext")
			return raster.WriteASCII(clipped, art.ClippedDEM)
		}},
		{"write_vectors", func() error {
			return p.writeVectors(art)
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.log.Info("delineation stage", slog.String("stage", step.stage))
		if err := p.stats.Observe(step.stage, step.fn); err != nil {
			return nil, fmt.Errorf("%s: %w", step.stage, err)
		}
	}

	return art, nil
}

// writeVectors persists the boundary polygon and the stream network as
// GeoJSON in the final output directory.
func (p *Pipeline) writeVectors(art *Artifacts) error {
	boundary := []basin.Cell{{ID: 0, Node: art.Outlet, Ring: art.Boundary}}
	data, err := basin.MarshalVoronoiGeoJSON(boundary, nil, p.EPSG)
	if err != nil {
		return err
	}
	art.BoundaryFile = filepath.Join(p.OutputDir, p.Name+"_watershed_bound.geojson")
	if err := basin.WriteGeoJSON(data, art.BoundaryFile); err != nil {
		return err
	}

	reaches := make([]basin.Reach, 0, len(art.StreamLines))
	for i, line := range art.StreamLines {
		reaches = append(reaches, basin.Reach{ID: i + 1, Vertices: line})
	}
	data, err = basin.MarshalReachGeoJSON(reaches, p.EPSG)
	if err != nil {
		return err
	}
	art.StreamsFile = filepath.Join(p.OutputDir, p.Name+"_streams.geojson")
	return basin.WriteGeoJSON(data, art.StreamsFile)
}

func (p *Pipeline) rasterPath(dir, suffix string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.asc", p.Name, suffix))
}

func ringBounds(ring [][2]float64, pad float64) (minX, minY, maxX, maxY float64) {
	if len(ring) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = ring[0][0], ring[0][0]
	minY, maxY = ring[0][1], ring[0][1]
	for _, v := range ring[1:] {
		if v[0] < minX {
			minX = v[0]
		}
		if v[0] > maxX {
			maxX = v[0]
		}
		if v[1] < minY {
			minY = v[1]
		}
		if v[1] > maxY {
			maxY = v[1]
		}
	}
	return minX - pad, minY - pad, maxX + pad, maxY + pad
}
