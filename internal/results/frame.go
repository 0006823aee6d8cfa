package results

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// timeColumn is the simulation-hour column every element output carries.
const timeColumn = "Time_hr"

// Frame holds one element output table (.pixel or .mrf): named float
// columns plus the absolute timestamps derived from the simulation
// start.
type Frame struct {
	Columns []string
	Times   []time.Time
	Data    map[string][]float64
}

// Len is the number of rows.
func (f *Frame) Len() int { return len(f.Times) }

// Column returns a named series.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.Data[name]
	if !ok {
		return nil, fmt.Errorf("column %q not in frame", name)
	}
	return col, nil
}

// ReadElement parses a whitespace-separated element output file and
// resolves its simulation hours against the run's start date.
func ReadElement(path string, start time.Time) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open element file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	columns := strings.Fields(scanner.Text())
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s: empty header row", path)
	}

	frame := &Frame{
		Columns: columns,
		Data:    make(map[string][]float64, len(columns)),
	}
	for _, c := range columns {
		frame.Data[c] = nil
	}

	timeIdx := -1
	for i, c := range columns {
		if c == timeColumn {
			timeIdx = i
			break
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("%s: no %s column", path, timeColumn)
	}

	row := 0
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row++
		if len(fields) != len(columns) {
			return nil, fmt.Errorf("%s: row %d has %d fields, header has %d",
				path, row, len(fields), len(columns))
		}
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d column %s: %w", path, row, columns[i], err)
			}
			frame.Data[columns[i]] = append(frame.Data[columns[i]], v)
			if i == timeIdx {
				frame.Times = append(frame.Times,
					start.Add(time.Duration(v*float64(time.Hour))))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read element file: %w", err)
	}
	if frame.Len() == 0 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	return frame, nil
}
