package results

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"
)

// Spatial output suffixes.
const (
	SuffixDynamic    = "_00d"
	SuffixIntegrated = "_00i"
)

// SpatialTable is one merged spatial output: the shared header and the
// per-element rows of every processor shard, sorted by element ID.
type SpatialTable struct {
	Header []string
	Rows   [][]string
}

// SpatialMerge recombines the per-processor spatial outputs a parallel
// run writes at every SPOPINTRVL step. Shards are named
// `{out}.{TTTT}{suffix}.{P}` with a zero-padded timestep and the
// processor rank appended.
type SpatialMerge struct {
	OutFileName string
	Suffix      string
	Runtime     int
	Interval    int
	StartTime   int

	// Single stops after the first timestep that has shards on disk;
	// Write persists each merged table next to its shards.
	Single bool
	Write  bool

	log *slog.Logger
}

func NewSpatialMerge(outFileName string, runtime, interval int, log *slog.Logger) *SpatialMerge {
	return &SpatialMerge{
		OutFileName: outFileName,
		Suffix:      SuffixDynamic,
		Runtime:     runtime,
		Interval:    interval,
		Write:       true,
		log:         log,
	}
}

// Merge combines the shards of every requested timestep, keyed by the
// zero-padded timestep string.
func (m *SpatialMerge) Merge(ctx context.Context) (map[string]*SpatialTable, error) {
	if m.Interval <= 0 {
		return nil, fmt.Errorf("spatial output interval must be positive, got %d", m.Interval)
	}

	var times []int
	for t := m.StartTime; t <= m.Runtime; t += m.Interval {
		times = append(times, t)
	}
	if len(times) == 0 || times[len(times)-1] != m.Runtime {
		times = append(times, m.Runtime)
	}
	tables := make(map[string]*SpatialTable)

	if m.Single {
		// runs often write their first spatial output at the first
		// SPOPINTRVL rather than at StartTime, so walk forward to the
		// first timestep whose shards exist
		for _, t := range times {
			otime := fmt.Sprintf("%04d", t)
			table, err := m.mergeStep(otime)
			if err != nil {
				return nil, err
			}
			if table == nil {
				m.log.Warn("no spatial shards for timestep", slog.String("time", otime))
				continue
			}
			if m.Write {
				if err := writeTable(table, m.stepPath(otime)); err != nil {
					return nil, err
				}
			}
			tables[otime] = table
			break
		}
		return tables, nil
	}

	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, t := range times {
		otime := fmt.Sprintf("%04d", t)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			table, err := m.mergeStep(otime)
			if err != nil {
				return err
			}
			if table == nil {
				m.log.Debug("no spatial shards for timestep", slog.String("time", otime))
				return nil
			}
			if m.Write {
				if err := writeTable(table, m.stepPath(otime)); err != nil {
					return err
				}
			}
			mu.Lock()
			tables[otime] = table
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func (m *SpatialMerge) stepPath(otime string) string {
	return fmt.Sprintf("%s.%s%s", m.OutFileName, otime, m.Suffix)
}

// mergeStep concatenates the processor shards of one timestep, or
// returns nil when the rank-0 shard does not exist.
func (m *SpatialMerge) mergeStep(otime string) (*SpatialTable, error) {
	var table *SpatialTable

	for proc := 0; ; proc++ {
		shard := fmt.Sprintf("%s.%d", m.stepPath(otime), proc)
		f, err := os.Open(shard)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("open shard: %w", err)
		}

		records, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", shard, err)
		}
		if len(records) == 0 {
			m.log.Warn("spatial shard is empty", slog.String("shard", shard))
			continue
		}

		if table == nil {
			table = &SpatialTable{Header: records[0], Rows: records[1:]}
			continue
		}
		if len(records[0]) != len(table.Header) {
			return nil, fmt.Errorf("%s: shard header width %d differs from rank 0 width %d",
				shard, len(records[0]), len(table.Header))
		}
		table.Rows = append(table.Rows, records[1:]...)
	}

	if table != nil {
		sortByID(table)
	}
	return table, nil
}

// sortByID orders rows numerically on the ID column when present.
func sortByID(table *SpatialTable) {
	idCol := -1
	for i, name := range table.Header {
		if name == "ID" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return
	}
	sort.SliceStable(table.Rows, func(i, j int) bool {
		a, errA := strconv.ParseFloat(table.Rows[i][idCol], 64)
		b, errB := strconv.ParseFloat(table.Rows[j][idCol], 64)
		if errA != nil || errB != nil {
			return table.Rows[i][idCol] < table.Rows[j][idCol]
		}
		return a < b
	})
}

func writeTable(table *SpatialTable, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Header); err != nil {
		return err
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write merged table: %w", err)
	}
	return nil
}
