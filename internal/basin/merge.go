package basin

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Table is an attribute table keyed by element ID, used to join model
// output onto the merged voronoi polygons.
type Table struct {
	Columns []string
	Rows    map[int][]float64
}

// ReadTableFile parses a CSV attribute table whose first column is the
// element ID, such as a merged spatial output.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attribute table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: attribute table has no data rows", path)
	}

	table := &Table{
		Columns: records[0][1:],
		Rows:    make(map[int][]float64, len(records)-1),
	}
	for i, rec := range records[1:] {
		id, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad ID %q", path, i+1, rec[0])
		}
		row := make([]float64, len(rec)-1)
		for j, field := range rec[1:] {
			if row[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("%s: row %d column %s: %w", path, i+1, table.Columns[j], err)
			}
		}
		table.Rows[int(id)] = row
	}
	return table, nil
}

// MergeVoronoi collects the per-processor `*_voi.N` files written next to
// outfilename by a parallel run, parses them concurrently, and returns
// the cells of the whole domain sorted by ID. Cells carried by empty
// partitions are skipped with a warning.
func MergeVoronoi(ctx context.Context, outfilename string, log *slog.Logger) ([]Cell, error) {
	dir := filepath.Dir(outfilename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list voronoi partitions: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.Contains(entry.Name(), "voi.") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no voronoi partition files under %s", dir)
	}
	sort.Strings(paths)

	var mu sync.Mutex
	var cells []Cell

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			partition, err := ReadVoronoiFile(path)
			if err != nil {
				return err
			}
			if partition == nil {
				log.Warn("voronoi partition is empty", slog.String("file", path))
				return nil
			}
			mu.Lock()
			cells = append(cells, partition...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(cells, func(i, j int) bool { return cells[i].ID < cells[j].ID })
	return cells, nil
}

// JoinAttributes inner-joins an attribute table onto cells by ID. IDs in
// the table with no matching cell are logged, mirroring the unmatched-ID
// warning of the original merge.
func JoinAttributes(cells []Cell, attrs *Table, log *slog.Logger) []Cell {
	if attrs == nil {
		return cells
	}

	matched := make(map[int]bool, len(cells))
	joined := make([]Cell, 0, len(cells))
	for _, cell := range cells {
		if _, ok := attrs.Rows[cell.ID]; ok {
			matched[cell.ID] = true
			joined = append(joined, cell)
		}
	}

	unmatched := 0
	for id := range attrs.Rows {
		if !matched[id] {
			unmatched++
		}
	}
	if unmatched > 0 {
		log.Warn("attribute rows with no matching voronoi cell",
			slog.Int("count", unmatched))
	}

	return joined
}
