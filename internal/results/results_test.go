package results_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tribshms/gotribs/internal/results"
)

func TestResults(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Results Suite")
}

var elementColumns = []string{
	"Time_hr", "Mu_mm", "Nwt_mm", "IntSWEq_cm", "SnWE_cm", "CanStorage_mm",
	"Rain_mm/h", "EvpTtrs_mm/h", "SnSub_cm", "SnEvap_cm", "IntSub_cm",
	"Srf_Hour_mm", "QpIn_mm/h", "QpOut_mm/h", "GWflx_m3/h",
}

// writeElementFixture emits rows hours apart with simple linear series
// so balance terms are predictable by hand.
func writeElementFixture(dir string, hours []float64) string {
	var b strings.Builder
	b.WriteString(strings.Join(elementColumns, " "))
	b.WriteByte('\n')
	for _, h := range hours {
		// Mu rises 1 mm per step, Nwt falls 2 mm per step
		fmt.Fprintf(&b, "%.1f %.1f %.1f 0.5 1.0 2.0 3.0 1.5 0.0 0.0 0.0 0.25 2.0 0.5 10.0\n",
			h, 100+h, 500-2*h)
	}
	path := filepath.Join(dir, "basin.pixel")
	Expect(os.WriteFile(path, []byte(b.String()), 0o644)).To(Succeed())
	return path
}

var _ = Describe("ReadElement", func() {
	start := time.Date(2002, 10, 1, 0, 0, 0, 0, time.UTC)

	It("should resolve simulation hours to absolute times", func() {
		path := writeElementFixture(GinkgoT().TempDir(), []float64{0, 1, 2})
		frame, err := results.ReadElement(path, start)
		Expect(err).NotTo(HaveOccurred())

		Expect(frame.Len()).To(Equal(3))
		Expect(frame.Times[0]).To(Equal(start))
		Expect(frame.Times[2]).To(Equal(start.Add(2 * time.Hour)))

		mu, err := frame.Column("Mu_mm")
		Expect(err).NotTo(HaveOccurred())
		Expect(mu).To(Equal([]float64{100, 101, 102}))
	})

	It("should reject a file without the time column", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "bad.pixel")
		Expect(os.WriteFile(path, []byte("A B\n1 2\n"), 0o644)).To(Succeed())
		_, err := results.ReadElement(path, start)
		Expect(err).To(MatchError(ContainSubstring("Time_hr")))
	})

	It("should reject ragged rows", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "ragged.pixel")
		Expect(os.WriteFile(path, []byte("Time_hr A\n1 2\n3\n"), 0o644)).To(Succeed())
		_, err := results.ReadElement(path, start)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("BalanceWindows", func() {
	hourly := func(from time.Time, months int) []time.Time {
		var ts []time.Time
		for i := 0; i <= months; i++ {
			ts = append(ts, from.AddDate(0, i, 0))
		}
		return ts
	}

	It("should keep only complete water years", func() {
		// Oct 2002 through Nov 2004 holds exactly two complete water years
		times := hourly(time.Date(2002, 10, 1, 0, 0, 0, 0, time.UTC), 26)
		windows, err := results.BalanceWindows(times, results.MethodWaterYear)
		Expect(err).NotTo(HaveOccurred())

		Expect(windows).To(HaveLen(2))
		Expect(windows[0].Begin).To(Equal(time.Date(2002, 10, 1, 0, 0, 0, 0, time.UTC)))
		Expect(windows[0].End).To(Equal(time.Date(2003, 9, 30, 23, 0, 0, 0, time.UTC)))
		Expect(windows[1].Begin.Year()).To(Equal(2003))
	})

	It("should fail when no water year fits", func() {
		times := hourly(time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC), 3)
		_, err := results.BalanceWindows(times, results.MethodWaterYear)
		Expect(err).To(HaveOccurred())
	})

	It("should clamp calendar years to the data range", func() {
		times := hourly(time.Date(2002, 6, 1, 0, 0, 0, 0, time.UTC), 12)
		windows, err := results.BalanceWindows(times, results.MethodYear)
		Expect(err).NotTo(HaveOccurred())

		Expect(windows).To(HaveLen(2))
		Expect(windows[0].Begin).To(Equal(times[0]))
		Expect(windows[1].End).To(Equal(times[len(times)-1]))
	})

	It("should alternate warm and cold seasons", func() {
		times := hourly(time.Date(2002, 5, 1, 0, 0, 0, 0, time.UTC), 24)
		windows, err := results.BalanceWindows(times, results.MethodColdWarm)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(windows)).To(BeNumerically(">=", 2))

		Expect(windows[0].Begin.Month()).To(Equal(time.May))
		Expect(windows[0].End.Month()).To(Equal(time.September))
		Expect(windows[1].Begin.Month()).To(Equal(time.October))
		Expect(windows[1].End.Month()).To(Equal(time.April))
	})

	It("should reject an unknown method", func() {
		_, err := results.BalanceWindows([]time.Time{time.Now()}, "decade")
		Expect(err).To(MatchError(ContainSubstring("decade")))
	})

	It("should report the middle of a window", func() {
		w := results.Window{
			Begin: time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2003, 1, 3, 0, 0, 0, 0, time.UTC),
		}
		Expect(w.Mid()).To(Equal(time.Date(2003, 1, 2, 0, 0, 0, 0, time.UTC)))
	})
})

var _ = Describe("ElementBalance", func() {
	start := time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC)

	It("should compute storage deltas and net fluxes", func() {
		path := writeElementFixture(GinkgoT().TempDir(), []float64{0, 1, 2, 3, 4})
		frame, err := results.ReadElement(path, start)
		Expect(err).NotTo(HaveOccurred())

		w := results.Window{Begin: start, End: start.Add(4 * time.Hour)}
		terms, err := results.ElementBalance(frame, w, 0.4, 1000)
		Expect(err).NotTo(HaveOccurred())

		// Mu rises from 100 to 104, Nwt falls from 500 to 492
		Expect(terms.DUnsat).To(BeNumerically("~", 4, 1e-9))
		Expect(terms.DSat).To(BeNumerically("~", 8*0.4, 1e-9))
		// constant storages change nothing
		Expect(terms.DSWE).To(BeZero())
		Expect(terms.DCanopy).To(BeZero())
		// 5 samples of the constant fluxes
		Expect(terms.NP).To(BeNumerically("~", 15, 1e-9))
		Expect(terms.NET).To(BeNumerically("~", 7.5, 1e-9))
		Expect(terms.NQsurf).To(BeNumerically("~", 1.25, 1e-9))
		Expect(terms.NQunsat).To(BeNumerically("~", 7.5, 1e-9))
		// 50 m3/h over 1000 m2 in mm
		Expect(terms.NQsat).To(BeNumerically("~", 50.0/1000*1000, 1e-9))
	})

	It("should fail on a window outside the samples", func() {
		path := writeElementFixture(GinkgoT().TempDir(), []float64{0, 1})
		frame, err := results.ReadElement(path, start)
		Expect(err).NotTo(HaveOccurred())

		w := results.Window{Begin: start.AddDate(1, 0, 0), End: start.AddDate(2, 0, 0)}
		_, err = results.ElementBalance(frame, w, 0.4, 1000)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a non-positive element area", func() {
		path := writeElementFixture(GinkgoT().TempDir(), []float64{0, 1})
		frame, err := results.ReadElement(path, start)
		Expect(err).NotTo(HaveOccurred())

		_, err = results.ElementBalance(frame, results.Window{Begin: start, End: start}, 0.4, 0)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SpatialMerge", func() {
	var (
		dir string
		out string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		out = filepath.Join(dir, "basin")
	})

	writeShard := func(otime string, proc int, content string) {
		path := fmt.Sprintf("%s.%s_00d.%d", out, otime, proc)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	}

	It("should concatenate shards and sort by element ID", func() {
		writeShard("0000", 0, "ID,Nwt\n3,10\n1,20\n")
		writeShard("0000", 1, "ID,Nwt\n2,30\n")

		m := results.NewSpatialMerge(out, 10, 5, slog.Default())
		m.Single = true

		tables, err := m.Merge(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveKey("0000"))

		rows := tables["0000"].Rows
		Expect(rows).To(HaveLen(3))
		Expect(rows[0][0]).To(Equal("1"))
		Expect(rows[1][0]).To(Equal("2"))
		Expect(rows[2][0]).To(Equal("3"))

		// merged file written next to the shards
		_, statErr := os.Stat(out + ".0000_00d")
		Expect(statErr).NotTo(HaveOccurred())
	})

	It("should stop at the first existing timestep in single mode", func() {
		// nothing at 0000: the first spatial output lands at the first
		// output interval
		writeShard("0720", 0, "ID,Nwt\n1,5\n2,6\n")

		m := results.NewSpatialMerge(out, 720, 720, slog.Default())
		m.Single = true

		tables, err := m.Merge(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveLen(1))
		Expect(tables).To(HaveKey("0720"))

		merged := fmt.Sprintf("%s.0720_00d", out)
		Expect(merged).To(BeAnExistingFile())
	})

	It("should not merge past the first existing timestep in single mode", func() {
		writeShard("0005", 0, "ID,Nwt\n1,5\n")
		writeShard("0010", 0, "ID,Nwt\n1,6\n")

		m := results.NewSpatialMerge(out, 10, 5, slog.Default())
		m.Single = true
		m.Write = false

		tables, err := m.Merge(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveLen(1))
		Expect(tables).To(HaveKey("0005"))
	})

	It("should merge every interval step plus the final time", func() {
		for _, otime := range []string{"0000", "0005", "0010", "0012"} {
			writeShard(otime, 0, "ID,Nwt\n1,5\n")
		}

		m := results.NewSpatialMerge(out, 12, 5, slog.Default())
		m.Write = false

		tables, err := m.Merge(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveLen(4))
		Expect(tables).To(HaveKey("0012"))
	})

	It("should skip timesteps without a rank 0 shard", func() {
		writeShard("0005", 0, "ID,Nwt\n1,5\n")

		m := results.NewSpatialMerge(out, 10, 5, slog.Default())
		m.Write = false

		tables, err := m.Merge(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveLen(1))
		Expect(tables).To(HaveKey("0005"))
	})

	It("should reject mismatched shard headers", func() {
		writeShard("0000", 0, "ID,Nwt\n1,5\n")
		writeShard("0000", 1, "ID,Nwt,Extra\n2,5,5\n")

		m := results.NewSpatialMerge(out, 0, 5, slog.Default())
		m.Single = true
		_, err := m.Merge(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("should reject a non-positive interval", func() {
		m := results.NewSpatialMerge(out, 10, 0, slog.Default())
		_, err := m.Merge(context.Background())
		Expect(err).To(HaveOccurred())
	})
})
