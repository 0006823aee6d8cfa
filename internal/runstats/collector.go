package runstats

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

type EventType string

const (
	EventStageCompleted EventType = "stage_completed"
	EventStageFailed    EventType = "stage_failed"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Stage     string
	Duration  time.Duration
}

// Collector receives stage events over a buffered channel and folds them
// into Stats without blocking the pipeline. Events still in flight when
// the context is cancelled are drained before shutdown.
type Collector struct {
	eventCh chan Event
	flushCh chan chan struct{}
	done    chan struct{}
	stats   *Stats
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		flushCh: make(chan chan struct{}),
		done:    make(chan struct{}),
		stats:   NewStats(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- Event {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Debug("run stats collector started")
	defer c.logger.Debug("run stats collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case ack := <-c.flushCh:
			c.drain()
			close(ack)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

// Flush folds every queued event into the stats before returning, so a
// snapshot taken right after the last Observe sees every stage. Once the
// collector has shut down the queue is drained on the calling goroutine.
func (c *Collector) Flush() {
	ack := make(chan struct{})
	select {
	case c.flushCh <- ack:
		<-ack
	case <-c.done:
		c.drain()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventStageCompleted:
		c.stats.RecordCompletion(event.Stage, event.Duration)
	case EventStageFailed:
		c.stats.RecordFailure(event.Stage, event.Duration)
	}
}

// Observe runs fn as a named stage, timing it and emitting the matching
// event. The event send is non-blocking; a full buffer loses the sample
// rather than stalling the pipeline.
func (c *Collector) Observe(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	event := Event{
		Type:      EventStageCompleted,
		Timestamp: start,
		Stage:     stage,
		Duration:  elapsed,
	}
	if err != nil {
		event.Type = EventStageFailed
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("run stats buffer full, dropping event",
			slog.String("stage", stage))
	}

	return err
}

// Snapshot returns the current per-stage summary.
func (c *Collector) Snapshot() Snapshot {
	return c.stats.Snapshot()
}

// Summary renders the snapshot as a table, stages sorted by name.
func (c *Collector) Summary(w io.Writer) {
	snap := c.Snapshot()

	stages := make([]string, 0, len(snap.Stages))
	for stage := range snap.Stages {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Stage", "Runs", "Failures", "Total", "Avg", "P95"})
	for _, stage := range stages {
		st := snap.Stages[stage]
		table.Append([]string{
			stage,
			strconv.FormatInt(st.Runs, 10),
			strconv.FormatInt(st.Failures, 10),
			st.Total.Round(time.Millisecond).String(),
			st.Avg.Round(time.Millisecond).String(),
			st.P95.Round(time.Millisecond).String(),
		})
	}
	table.Render()
}
