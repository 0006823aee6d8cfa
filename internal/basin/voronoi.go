package basin

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Cell is one Voronoi polygon of the model domain: the generating node
// and the polygon ring around it.
type Cell struct {
	ID   int
	Node [2]float64
	Ring [][2]float64
}

// ReadVoronoiFile parses a _voi file. An empty file yields (nil, nil),
// matching the tolerant handling of unused parallel partitions.
func ReadVoronoiFile(path string) ([]Cell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open voronoi file: %w", err)
	}
	defer f.Close()

	cells, err := ReadVoronoi(f)
	if err != nil {
		return nil, fmt.Errorf("voronoi file %s: %w", path, err)
	}
	return cells, nil
}

// ReadVoronoi parses voronoi blocks: an "id,x,y" node line, then "x,y"
// ring vertices, each block closed by END; a trailing bare END marks the
// end of the file.
func ReadVoronoi(r io.Reader) ([]Cell, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var cells []Cell
	var current *Cell
	lineCount := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineCount++

		if line == "END" {
			if current == nil {
				break // two ENDs in a row: end of file
			}
			if len(current.Ring) == 0 {
				return nil, fmt.Errorf("cell %d has no ring vertices", current.ID)
			}
			cells = append(cells, *current)
			current = nil
			continue
		}

		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		switch len(parts) {
		case 3:
			id, err := parseID(parts[0])
			if err != nil {
				return nil, err
			}
			x, y, err := parseXY(parts[1], parts[2])
			if err != nil {
				return nil, err
			}
			current = &Cell{ID: id, Node: [2]float64{x, y}}
		case 2:
			if current == nil {
				return nil, fmt.Errorf("ring vertex %q before any node line", line)
			}
			x, y, err := parseXY(parts[0], parts[1])
			if err != nil {
				return nil, err
			}
			current.Ring = append(current.Ring, [2]float64{x, y})
		default:
			return nil, fmt.Errorf("unexpected line %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if lineCount <= 1 {
		return nil, nil
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("no valid voronoi data found")
	}
	return cells, nil
}

func parseID(s string) (int, error) {
	// ids are written as floats by the parallel writers
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("cell id %q: %w", s, err)
	}
	return int(v), nil
}

func parseXY(sx, sy string) (float64, float64, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(sx), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("coordinate %q: %w", sx, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(sy), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("coordinate %q: %w", sy, err)
	}
	return x, y, nil
}
