// Package runstats collects timing for pipeline stages.
//
// It uses a channel-based event pipeline to asynchronously record stage
// completions and failures with duration quantiles (P50, P95). The
// collector runs in a dedicated goroutine and processes events without
// blocking the pipelines that emit them; events are sent with
// non-blocking semantics and drained on shutdown.
//
// Example usage:
//
//	collector := runstats.NewCollector(256, logger)
//	collector.Start(ctx)
//
//	err := collector.Observe("fill_depressions", func() error {
//		return runFill()
//	})
//
//	collector.Summary(os.Stdout)
package runstats
