package landcover_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tribshms/gotribs/internal/landcover"
	"github.com/tribshms/gotribs/internal/raster"
)

func TestLandCover(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LandCover Suite")
}

var _ = Describe("ClassifyHeights", func() {
	heightGrid := func(values ...float64) *raster.Grid {
		g := raster.New(len(values), 1, 0, 0, 10)
		for c, v := range values {
			g.Set(0, c, v)
		}
		return g
	}

	It("should bin heights into (min, max] ranges", func() {
		g := heightGrid(2, 5, 7, 12, 20)
		thresholds := []landcover.HeightClass{
			{Min: 0, Max: 5, Class: 1},
			{Min: 5, Max: 10, Class: 2},
			{Min: 10, Max: 15, Class: 3},
		}

		classified, classes, err := landcover.ClassifyHeights(g, thresholds)
		Expect(err).NotTo(HaveOccurred())

		Expect(classified.Value(0, 0)).To(Equal(1.0))
		Expect(classified.Value(0, 1)).To(Equal(1.0)) // boundary belongs to the lower class
		Expect(classified.Value(0, 2)).To(Equal(2.0))
		Expect(classified.Value(0, 3)).To(Equal(3.0))
		Expect(classified.Value(0, 4)).To(Equal(0.0)) // beyond every range

		Expect(classes).NotTo(BeEmpty())
	})

	It("should allow a zero-width range only first", func() {
		g := heightGrid(0, 3)
		_, _, err := landcover.ClassifyHeights(g, []landcover.HeightClass{
			{Min: 0, Max: 0, Class: 1},
			{Min: 0, Max: 5, Class: 2},
		})
		Expect(err).NotTo(HaveOccurred())

		_, _, err = landcover.ClassifyHeights(g, []landcover.HeightClass{
			{Min: 0, Max: 5, Class: 1},
			{Min: 5, Max: 5, Class: 2},
		})
		Expect(err).To(HaveOccurred())
	})

	It("should reject overlapping ranges", func() {
		g := heightGrid(1)
		_, _, err := landcover.ClassifyHeights(g, []landcover.HeightClass{
			{Min: 0, Max: 10, Class: 1},
			{Min: 5, Max: 15, Class: 2},
		})
		Expect(err).To(MatchError(ContainSubstring("overlaps")))
	})

	It("should carry nodata through", func() {
		g := heightGrid(1, 2)
		g.Set(0, 1, g.NoData)
		classified, _, err := landcover.ClassifyHeights(g, []landcover.HeightClass{
			{Min: 0, Max: 5, Class: 1},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(classified.IsNoData(0, 1)).To(BeTrue())
	})

	It("should build a class table with unset parameters", func() {
		g := heightGrid(2, 8)
		_, classes, err := landcover.ClassifyHeights(g, []landcover.HeightClass{
			{Min: 0, Max: 5, Class: 1},
			{Min: 5, Max: 10, Class: 2},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(classes).To(HaveLen(2))

		for _, cl := range classes {
			Expect(cl.Params).To(HaveLen(len(landcover.ParamNames())))
			for name, v := range cl.Params {
				Expect(math.IsNaN(v)).To(BeTrue(), "param %s preset", name)
			}
		}
	})
})

var _ = Describe("NDVI", func() {
	band := func(values ...float64) *raster.Grid {
		g := raster.New(len(values), 1, 0, 0, 1)
		for c, v := range values {
			g.Set(0, c, v)
		}
		return g
	}

	It("should compute the normalized difference", func() {
		red := band(50, 100)
		nir := band(150, 100)

		ndvi, err := landcover.NDVI(red, nir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ndvi.Value(0, 0)).To(BeNumerically("~", 0.5, 1e-12))
		Expect(ndvi.Value(0, 1)).To(BeZero())
	})

	It("should mask cells where both bands are zero", func() {
		red := band(0, 50)
		nir := band(0, 150)

		ndvi, err := landcover.NDVI(red, nir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ndvi.IsNoData(0, 0)).To(BeTrue())
	})

	It("should reject mismatched band shapes", func() {
		_, err := landcover.NDVI(band(1, 2), band(1, 2, 3))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ClassifyNDVI", func() {
	It("should split clearly separated surfaces into distinct classes", func() {
		// left half bare ground (low NDVI), right half dense vegetation
		n := 8
		red := raster.New(n, n, 0, 0, 1)
		nir := raster.New(n, n, 0, 0, 1)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				if c < n/2 {
					red.Set(r, c, 100)
					nir.Set(r, c, 110)
				} else {
					red.Set(r, c, 30)
					nir.Set(r, c, 200)
				}
			}
		}

		classified, classes, err := landcover.ClassifyNDVI(red, nir, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(classes).To(HaveLen(2))

		// class 0 holds the lower NDVI half
		Expect(classified.Value(0, 0)).To(Equal(0.0))
		Expect(classified.Value(0, n-1)).To(Equal(1.0))

		// labels are uniform within each half
		for r := 0; r < n; r++ {
			Expect(classified.Value(r, 1)).To(Equal(0.0))
			Expect(classified.Value(r, n-2)).To(Equal(1.0))
		}
	})

	It("should refuse more clusters than valid cells", func() {
		red := raster.New(2, 1, 0, 0, 1)
		nir := raster.New(2, 1, 0, 0, 1)
		red.Set(0, 0, 10)
		nir.Set(0, 0, 20)
		red.Set(0, 1, 0)
		nir.Set(0, 1, 0)

		_, _, err := landcover.ClassifyNDVI(red, nir, 2)
		Expect(err).To(HaveOccurred())
	})
})
