package forcing

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

// Series holds the time-stamped records of one station file. The first
// four columns (Y M D H) become Times; the remaining header columns keep
// their names.
type Series struct {
	Columns []string
	Times   []time.Time
	Values  map[string][]float64
}

// Len returns the number of records.
func (s *Series) Len() int { return len(s.Times) }

// Column returns the values of a named column.
func (s *Series) Column(name string) ([]float64, error) {
	v, ok := s.Values[name]
	if !ok {
		return nil, fmt.Errorf("station series has no column %q", name)
	}
	return v, nil
}

// ReadStation parses a station flat file: a header line starting with
// Y M D H, then whitespace-separated records. Precipitation files carry a
// single R column; meteorological files carry several.
func ReadStation(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	var header []string
	series := &Series{Values: map[string][]float64{}}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if header == nil {
			if len(fields) < 5 || !strings.EqualFold(fields[0], "Y") {
				return nil, fmt.Errorf("station file %s: header %q must start with Y M D H", path, scanner.Text())
			}
			header = fields
			series.Columns = fields[4:]
			for _, col := range series.Columns {
				series.Values[col] = nil
			}
			continue
		}

		if len(fields) != len(header) {
			return nil, fmt.Errorf("station file %s: record %q has %d fields, want %d",
				path, scanner.Text(), len(fields), len(header))
		}

		nums := make([]float64, len(fields))
		for i, field := range fields {
			if nums[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("station file %s: value %q: %w", path, field, err)
			}
		}

		series.Times = append(series.Times, time.Date(
			normalizeYear(int(nums[0])), time.Month(nums[1]), int(nums[2]),
			int(nums[3]), 0, 0, 0, time.UTC))
		for i, col := range series.Columns {
			series.Values[col] = append(series.Values[col], nums[4+i])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read station file: %w", err)
	}

	if header == nil {
		return nil, fmt.Errorf("station file %s is empty", path)
	}
	return series, nil
}

// WriteStation writes a series back to flat-file form, atomically.
func WriteStation(s *Series, path string) error {
	var buf bytes.Buffer

	buf.WriteString("Y M D H")
	for _, col := range s.Columns {
		buf.WriteByte(' ')
		buf.WriteString(col)
	}
	buf.WriteByte('\n')

	for i, t := range s.Times {
		fmt.Fprintf(&buf, "%d %d %d %d", t.Year(), int(t.Month()), t.Day(), t.Hour())
		for _, col := range s.Columns {
			fmt.Fprintf(&buf, " %g", s.Values[col][i])
		}
		buf.WriteByte('\n')
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write station file: %w", err)
	}
	return nil
}

// normalizeYear expands two-digit years the way the model's historic
// gauge files use them: 00-69 are 2000s, 70-99 are 1900s.
func normalizeYear(y int) int {
	switch {
	case y >= 100:
		return y
	case y < 70:
		return 2000 + y
	default:
		return 1900 + y
	}
}
