package runstats_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tribshms/gotribs/internal/runstats"
)

func TestRunStats(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RunStats Suite")
}

var _ = Describe("Collector", func() {
	var (
		collector *runstats.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		collector = runstats.NewCollector(64, slog.Default())
		ctx, cancel = context.WithCancel(context.Background())
		collector.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	Describe("Observe", func() {
		It("should record completed stages", func() {
			err := collector.Observe("fill", func() error { return nil })
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() int64 {
				return collector.Snapshot().TotalRuns
			}).Should(Equal(int64(1)))

			snap := collector.Snapshot()
			Expect(snap.Stages).To(HaveKey("fill"))
			Expect(snap.Stages["fill"].Failures).To(Equal(int64(0)))
		})

		It("should record failures and pass the error through", func() {
			boom := errors.New("boom")
			err := collector.Observe("d8", func() error { return boom })
			Expect(err).To(MatchError(boom))

			Eventually(func() int64 {
				snap := collector.Snapshot()
				return snap.Stages["d8"].Failures
			}).Should(Equal(int64(1)))
		})

		It("should accumulate durations per stage", func() {
			for i := 0; i < 5; i++ {
				_ = collector.Observe("acc", func() error {
					time.Sleep(time.Millisecond)
					return nil
				})
			}

			Eventually(func() int64 {
				return collector.Snapshot().Stages["acc"].Runs
			}).Should(Equal(int64(5)))

			snap := collector.Snapshot()
			Expect(snap.Stages["acc"].Avg).To(BeNumerically(">", 0))
			Expect(snap.Stages["acc"].P95).To(BeNumerically(">=", snap.Stages["acc"].P50))
		})
	})

	Describe("Flush", func() {
		It("should make queued events visible to an immediate snapshot", func() {
			_ = collector.Observe("fill", func() error { return nil })
			_ = collector.Observe("d8", func() error { return nil })

			collector.Flush()

			snap := collector.Snapshot()
			Expect(snap.Stages).To(HaveKey("fill"))
			Expect(snap.Stages).To(HaveKey("d8"))
			Expect(snap.TotalRuns).To(Equal(int64(2)))
		})

		It("should drain in place after the collector stopped", func() {
			cancel()

			_ = collector.Observe("streams", func() error { return nil })
			collector.Flush()

			Expect(collector.Snapshot().Stages).To(HaveKey("streams"))
		})

		It("should render the last stage in a summary taken right away", func() {
			_ = collector.Observe("clip_dem", func() error { return nil })
			collector.Flush()

			var buf bytes.Buffer
			collector.Summary(&buf)
			Expect(buf.String()).To(ContainSubstring("clip_dem"))
		})
	})

	Describe("Summary", func() {
		It("should render a table with the stage names", func() {
			_ = collector.Observe("streams", func() error { return nil })
			Eventually(func() int64 {
				return collector.Snapshot().TotalRuns
			}).Should(Equal(int64(1)))

			var buf bytes.Buffer
			collector.Summary(&buf)
			Expect(buf.String()).To(ContainSubstring("streams"))
		})
	})
})
