package terrain_test

import (
	"context"
	"log/slog"
	"math"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tribshms/gotribs/internal/raster"
	"github.com/tribshms/gotribs/internal/runstats"
	"github.com/tribshms/gotribs/internal/terrain"
)

func TestTerrain(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Terrain Suite")
}

// valleyDEM slopes toward the bottom-center cell: a symmetric V in the
// column direction plus a southward gradient, so every cell drains to
// the bottom of the center column.
func valleyDEM(rows, cols int) *raster.Grid {
	g := raster.New(cols, rows, 0, 0, 10)
	mid := cols / 2
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.Set(r, c, math.Abs(float64(c-mid))+0.5*float64(rows-1-r))
		}
	}
	return g
}

var _ = Describe("FillDepressions", func() {
	It("should raise a pit to its lowest exit level", func() {
		g := raster.New(5, 5, 0, 0, 10)
		g.Fill(10)
		g.Set(2, 2, 5)

		filled := terrain.FillDepressions(g, true)
		Expect(filled.Value(2, 2)).To(BeNumerically(">=", 10))
	})

	It("should leave a draining surface untouched except for flats", func() {
		g := valleyDEM(5, 5)
		filled := terrain.FillDepressions(g, false)
		for r := 0; r < 5; r++ {
			for c := 0; c < 5; c++ {
				Expect(filled.Value(r, c)).To(Equal(g.Value(r, c)))
			}
		}
	})

	It("should not modify the input grid", func() {
		g := raster.New(3, 3, 0, 0, 10)
		g.Fill(10)
		g.Set(1, 1, 2)
		_ = terrain.FillDepressions(g, true)
		Expect(g.Value(1, 1)).To(Equal(2.0))
	})
})

var _ = Describe("FlowDirections", func() {
	It("should point every cell east on an eastward slope", func() {
		g := raster.New(4, 3, 0, 0, 10)
		for r := 0; r < 3; r++ {
			for c := 0; c < 4; c++ {
				g.Set(r, c, float64(-c))
			}
		}

		d8 := terrain.FlowDirections(g)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				Expect(d8.Value(r, c)).To(Equal(1.0), "cell (%d,%d)", r, c)
			}
			// last column has no lower neighbour
			Expect(d8.Value(r, 3)).To(Equal(0.0))
		}
	})

	It("should carry nodata through", func() {
		g := raster.New(3, 3, 0, 0, 10)
		g.Fill(5)
		g.Set(1, 1, g.NoData)

		d8 := terrain.FlowDirections(g)
		Expect(d8.IsNoData(1, 1)).To(BeTrue())
	})
})

var _ = Describe("FlowAccumulation", func() {
	It("should count every upstream cell plus the cell itself", func() {
		dem := valleyDEM(5, 5)
		d8 := terrain.FlowDirections(dem)
		acc := terrain.FlowAccumulation(d8)

		// the bottom-center cell receives the whole grid
		Expect(acc.Value(4, 2)).To(Equal(25.0))
		// channel heads count only themselves
		Expect(acc.Value(0, 0)).To(Equal(1.0))
	})
})

var _ = Describe("ExtractStreams", func() {
	It("should mask cells meeting the accumulation threshold", func() {
		dem := valleyDEM(5, 5)
		acc := terrain.FlowAccumulation(terrain.FlowDirections(dem))
		streams := terrain.ExtractStreams(acc, 5)

		Expect(streams.Value(4, 2)).To(Equal(1.0))
		Expect(streams.Value(0, 0)).To(Equal(0.0))
	})
})

var _ = Describe("SnapPourPoint", func() {
	It("should move the outlet to the highest accumulation nearby", func() {
		dem := valleyDEM(5, 5)
		acc := terrain.FlowAccumulation(terrain.FlowDirections(dem))

		// bottom-left corner, one cell off the channel column
		x, y, err := terrain.SnapPourPoint(acc, 15, 5, 30)
		Expect(err).NotTo(HaveOccurred())

		wantX, wantY := acc.CellCenter(4, 2)
		Expect(x).To(Equal(wantX))
		Expect(y).To(Equal(wantY))
	})

	It("should reject a point outside the grid", func() {
		dem := valleyDEM(5, 5)
		acc := terrain.FlowAccumulation(terrain.FlowDirections(dem))
		_, _, err := terrain.SnapPourPoint(acc, -100, -100, 10)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Watershed", func() {
	It("should include every cell draining to the outlet", func() {
		dem := valleyDEM(5, 5)
		d8 := terrain.FlowDirections(dem)

		outX, outY := d8.CellCenter(4, 2)
		mask, err := terrain.Watershed(d8, outX, outY)
		Expect(err).NotTo(HaveOccurred())

		for r := 0; r < 5; r++ {
			for c := 0; c < 5; c++ {
				Expect(mask.Value(r, c)).To(Equal(1.0), "cell (%d,%d)", r, c)
			}
		}
	})

	It("should exclude cells draining elsewhere", func() {
		// two opposing slopes split by a ridge at column 2
		g := raster.New(5, 3, 0, 0, 10)
		for r := 0; r < 3; r++ {
			for c := 0; c < 5; c++ {
				g.Set(r, c, 10-math.Abs(float64(c-2))*2)
			}
		}
		d8 := terrain.FlowDirections(g)

		outX, outY := d8.CellCenter(1, 0)
		mask, err := terrain.Watershed(d8, outX, outY)
		Expect(err).NotTo(HaveOccurred())
		Expect(mask.Value(1, 0)).To(Equal(1.0))
		Expect(mask.IsNoData(1, 4)).To(BeTrue())
	})
})

var _ = Describe("BoundaryRing", func() {
	It("should trace the perimeter of a full mask", func() {
		mask := raster.New(5, 5, 0, 0, 10)
		mask.Fill(1)

		ring, err := terrain.BoundaryRing(mask)
		Expect(err).NotTo(HaveOccurred())
		// 16 perimeter cells on a 5x5 grid
		Expect(ring).To(HaveLen(16))
	})

	It("should fail on an empty mask", func() {
		mask := raster.New(3, 3, 0, 0, 10)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				mask.Set(r, c, mask.NoData)
			}
		}
		_, err := terrain.BoundaryRing(mask)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Pipeline", func() {
	var (
		dir       string
		collector *runstats.Collector
		cancel    context.CancelFunc
		ctx       context.Context
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		collector = runstats.NewCollector(64, slog.Default())
		ctx, cancel = context.WithCancel(context.Background())
		collector.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("should produce the full artifact set", func() {
		dem := valleyDEM(9, 9)
		outX, outY := dem.CellCenter(8, 4)

		p := terrain.NewPipeline("Test", dir, [2]float64{outX, outY}, 30, 10, 32613,
			slog.Default(), collector)
		art, err := p.Delineate(ctx, dem)
		Expect(err).NotTo(HaveOccurred())

		for _, path := range []string{
			art.FilledDEM, art.FlowDirs, art.Accumulation, art.Streams,
			art.WatershedMask, art.ClippedDEM, art.BoundaryFile, art.StreamsFile,
		} {
			_, statErr := os.Stat(path)
			Expect(statErr).NotTo(HaveOccurred(), path)
		}

		Expect(art.Boundary).NotTo(BeEmpty())
		Expect(art.Outlet).To(Equal([2]float64{outX, outY}))
	})

	It("should remove intermediates in clean mode", func() {
		dem := valleyDEM(9, 9)
		outX, outY := dem.CellCenter(8, 4)

		p := terrain.NewPipeline("Test", dir, [2]float64{outX, outY}, 30, 10, 32613,
			slog.Default(), collector)
		p.Clean = true

		art, err := p.Delineate(ctx, dem)
		Expect(err).NotTo(HaveOccurred())

		// intermediates lived in the temp dir and are gone
		_, statErr := os.Stat(art.FilledDEM)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
		// final artifacts survive in the output dir
		_, statErr = os.Stat(art.BoundaryFile)
		Expect(statErr).NotTo(HaveOccurred())
		_, statErr = os.Stat(art.ClippedDEM)
		Expect(statErr).NotTo(HaveOccurred())
	})

	It("should stop on a cancelled context", func() {
		dem := valleyDEM(5, 5)
		cancelled, cancelNow := context.WithCancel(context.Background())
		cancelNow()

		p := terrain.NewPipeline("Test", dir, [2]float64{25, 25}, 30, 5, 32613,
			slog.Default(), collector)
		_, err := p.Delineate(cancelled, dem)
		Expect(err).To(MatchError(context.Canceled))
	})
})
