package diagnose_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tribshms/gotribs/internal/control"
	"github.com/tribshms/gotribs/internal/diagnose"
	"github.com/tribshms/gotribs/internal/forcing"
)

func TestDiagnose(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Diagnose Suite")
}

var _ = Describe("CheckPaths", func() {
	var (
		dir string
		reg *control.Registry
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		reg = control.New()
	})

	touch := func(name string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())
		return name
	}

	It("should pass when every referenced file exists", func() {
		Expect(reg.Set("demfile", touch("basin.asc"))).To(Succeed())
		Expect(reg.Set("soiltablename", touch("soils.sdt"))).To(Succeed())
		Expect(diagnose.CheckPaths(reg, dir)).To(Succeed())
	})

	It("should report every missing file at once", func() {
		Expect(reg.Set("demfile", "missing.asc")).To(Succeed())
		Expect(reg.Set("soiltablename", "missing.sdt")).To(Succeed())

		err := diagnose.CheckPaths(reg, dir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("demfile"))
		Expect(err.Error()).To(ContainSubstring("soiltablename"))
	})

	It("should skip unset options", func() {
		Expect(diagnose.CheckPaths(reg, dir)).To(Succeed())
	})
})

var _ = Describe("CheckForcing", func() {
	var (
		dir string
		reg *control.Registry
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		reg = control.New()
	})

	It("should verify the station files a gauge descriptor names", func() {
		stationFile := filepath.Join(dir, "gauge1.pdf")
		Expect(os.WriteFile(stationFile, []byte("data"), 0o644)).To(Succeed())

		sdf := filepath.Join(dir, "gauges.sdf")
		stations := []forcing.PrecipStation{
			{ID: 1, Path: stationFile, RefLat: 34.2, RefLong: -106.9, Records: 100, Elev: 1500},
		}
		Expect(forcing.WritePrecipSDF(stations, sdf)).To(Succeed())

		Expect(reg.Set("gaugestations", sdf)).To(Succeed())
		Expect(diagnose.CheckForcing(reg, dir)).To(Succeed())
	})

	It("should flag a station pointing at missing data", func() {
		sdf := filepath.Join(dir, "gauges.sdf")
		stations := []forcing.PrecipStation{
			{ID: 7, Path: filepath.Join(dir, "nope.pdf"), RefLat: 34.2, RefLong: -106.9},
		}
		Expect(forcing.WritePrecipSDF(stations, sdf)).To(Succeed())
		Expect(reg.Set("gaugestations", sdf)).To(Succeed())

		err := diagnose.CheckForcing(reg, dir)
		Expect(err).To(MatchError(ContainSubstring("station 7")))
	})

	It("should flag an unparseable descriptor", func() {
		sdf := filepath.Join(dir, "broken.sdf")
		Expect(os.WriteFile(sdf, []byte("not a descriptor"), 0o644)).To(Succeed())
		Expect(reg.Set("hydrometstations", sdf)).To(Succeed())

		err := diagnose.CheckForcing(reg, dir)
		Expect(err).To(MatchError(ContainSubstring("hydrometstations")))
	})

	It("should verify grid locations from a gdf", func() {
		gridDir := filepath.Join(dir, "nldas")
		Expect(os.MkdirAll(gridDir, 0o755)).To(Succeed())

		gdf := filepath.Join(dir, "met.gdf")
		gd := &forcing.GridData{
			Latitude:  34.2,
			Longitude: -106.9,
			GMT:       -7,
			Params: []forcing.GridParam{
				{Name: "PA", Location: gridDir, Extension: "asc"},
				{Name: "XC", Location: "NO_DATA", Extension: "NO_DATA"},
			},
		}
		Expect(forcing.WriteGDF(gd, gdf)).To(Succeed())
		Expect(reg.Set("hydrometgrid", gdf)).To(Succeed())

		Expect(diagnose.CheckForcing(reg, dir)).To(Succeed())
	})

	It("should flag a missing grid location", func() {
		gdf := filepath.Join(dir, "met.gdf")
		gd := &forcing.GridData{
			Latitude: 34.2, Longitude: -106.9, GMT: -7,
			Params: []forcing.GridParam{
				{Name: "TA", Location: filepath.Join(dir, "gone"), Extension: "asc"},
			},
		}
		Expect(forcing.WriteGDF(gd, gdf)).To(Succeed())
		Expect(reg.Set("hydrometgrid", gdf)).To(Succeed())

		err := diagnose.CheckForcing(reg, dir)
		Expect(err).To(MatchError(ContainSubstring("TA")))
	})
})

var _ = Describe("Check", func() {
	It("should combine path and forcing findings", func() {
		dir := GinkgoT().TempDir()
		reg := control.New()
		Expect(reg.Set("demfile", "missing.asc")).To(Succeed())

		err := diagnose.Check(reg, dir, slog.Default())
		Expect(err).To(MatchError(ContainSubstring("demfile")))
	})
})
