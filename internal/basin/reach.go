package basin

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Reach is one stream segment of the model domain.
type Reach struct {
	ID       int
	Vertices [][2]float64
}

// ReadReachFile parses a _reach file.
func ReadReachFile(path string) ([]Reach, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reach file: %w", err)
	}
	defer f.Close()

	reaches, err := ReadReaches(f)
	if err != nil {
		return nil, fmt.Errorf("reach file %s: %w", path, err)
	}
	return reaches, nil
}

// ReadReaches parses reach blocks: an id line, then "x,y" vertex lines,
// each block closed by END.
func ReadReaches(r io.Reader) ([]Reach, error) {
	scanner := bufio.NewScanner(r)

	var reaches []Reach
	var current *Reach

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line == "END" {
			if current != nil {
				if len(current.Vertices) < 2 {
					return nil, fmt.Errorf("reach %d has fewer than two vertices", current.ID)
				}
				reaches = append(reaches, *current)
				current = nil
			}
			continue
		}

		if current == nil {
			id, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("reach id %q: %w", line, err)
			}
			current = &Reach{ID: id}
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("reach vertex %q: want x,y", line)
		}
		x, y, err := parseXY(parts[0], parts[1])
		if err != nil {
			return nil, err
		}
		current.Vertices = append(current.Vertices, [2]float64{x, y})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return reaches, nil
}
