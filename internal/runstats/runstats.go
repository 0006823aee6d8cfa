package runstats

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats stores per-stage observations behind a lock; the Collector's
// goroutine is the only writer, snapshots may be taken from anywhere.
type Stats struct {
	mutex     sync.RWMutex
	runs      map[string]int64
	failures  map[string]int64
	durations map[string][]time.Duration
	startTime time.Time
}

type Snapshot struct {
	TotalRuns int64                 `json:"total_runs"`
	Uptime    time.Duration         `json:"uptime"`
	Stages    map[string]StageStats `json:"stages"`
}

type StageStats struct {
	Runs     int64         `json:"runs"`
	Failures int64         `json:"failures"`
	Total    time.Duration `json:"total"`
	Avg      time.Duration `json:"avg"`
	P50      time.Duration `json:"p50"`
	P95      time.Duration `json:"p95"`
}

func NewStats() *Stats {
	return &Stats{
		runs:      make(map[string]int64),
		failures:  make(map[string]int64),
		durations: make(map[string][]time.Duration),
		startTime: time.Now(),
	}
}

func (s *Stats) RecordCompletion(stage string, d time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.runs[stage]++
	s.durations[stage] = append(s.durations[stage], d)

	if len(s.durations[stage]) > 1000 {
		s.durations[stage] = s.durations[stage][1:]
	}
}

func (s *Stats) RecordFailure(stage string, d time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.runs[stage]++
	s.failures[stage]++
	s.durations[stage] = append(s.durations[stage], d)
}

// Snapshot summarizes everything recorded so far.
func (s *Stats) Snapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snap := Snapshot{
		Uptime: time.Since(s.startTime),
		Stages: make(map[string]StageStats, len(s.runs)),
	}

	for stage, runs := range s.runs {
		snap.TotalRuns += runs

		ds := s.durations[stage]
		var total time.Duration
		secs := make([]float64, len(ds))
		for i, d := range ds {
			total += d
			secs[i] = d.Seconds()
		}
		sort.Float64s(secs)

		st := StageStats{
			Runs:     runs,
			Failures: s.failures[stage],
			Total:    total,
		}
		if len(ds) > 0 {
			st.Avg = total / time.Duration(len(ds))
			st.P50 = time.Duration(stat.Quantile(0.50, stat.Empirical, secs, nil) * float64(time.Second))
			st.P95 = time.Duration(stat.Quantile(0.95, stat.Empirical, secs, nil) * float64(time.Second))
		}
		snap.Stages[stage] = st
	}

	return snap
}
