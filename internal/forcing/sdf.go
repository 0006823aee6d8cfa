package forcing

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// PrecipStation is one entry of a rain-gauge station descriptor file.
type PrecipStation struct {
	ID      int
	Path    string
	RefLat  float64
	RefLong float64
	Records int
	Elev    float64
}

// MetStation is one entry of a meteorological station descriptor file.
type MetStation struct {
	ID      int
	Path    string
	AbsLat  float64
	RefLat  float64
	AbsLong float64
	RefLong float64
	GMT     int
	Records int
	Params  int
	Other   string
}

// ReadPrecipSDF parses a rain-gauge station descriptor file: a count
// header line, then one whitespace-separated record per station.
func ReadPrecipSDF(path string) ([]PrecipStation, error) {
	rows, err := descriptorRows(path, 6)
	if err != nil {
		return nil, err
	}

	stations := make([]PrecipStation, 0, len(rows))
	for _, f := range rows {
		s := PrecipStation{Path: f[1]}
		if s.ID, err = strconv.Atoi(f[0]); err != nil {
			return nil, fmt.Errorf("station descriptor %s: id %q: %w", path, f[0], err)
		}
		if s.RefLat, err = strconv.ParseFloat(f[2], 64); err != nil {
			return nil, fmt.Errorf("station descriptor %s: lat %q: %w", path, f[2], err)
		}
		if s.RefLong, err = strconv.ParseFloat(f[3], 64); err != nil {
			return nil, fmt.Errorf("station descriptor %s: long %q: %w", path, f[3], err)
		}
		if s.Records, err = strconv.Atoi(f[4]); err != nil {
			return nil, fmt.Errorf("station descriptor %s: records %q: %w", path, f[4], err)
		}
		if s.Elev, err = strconv.ParseFloat(f[5], 64); err != nil {
			return nil, fmt.Errorf("station descriptor %s: elevation %q: %w", path, f[5], err)
		}
		stations = append(stations, s)
	}
	return stations, nil
}

// WritePrecipSDF writes a rain-gauge station descriptor file, atomically.
func WritePrecipSDF(stations []PrecipStation, path string) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", len(stations))
	for _, s := range stations {
		fmt.Fprintf(&buf, "%d %s %g %g %d %g\n",
			s.ID, s.Path, s.RefLat, s.RefLong, s.Records, s.Elev)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write station descriptor: %w", err)
	}
	return nil
}

// ReadMetSDF parses a meteorological station descriptor file.
func ReadMetSDF(path string) ([]MetStation, error) {
	rows, err := descriptorRows(path, 9)
	if err != nil {
		return nil, err
	}

	stations := make([]MetStation, 0, len(rows))
	for _, f := range rows {
		s := MetStation{Path: f[1]}
		ints := map[int]*int{0: &s.ID, 6: &s.GMT, 7: &s.Records, 8: &s.Params}
		floats := map[int]*float64{2: &s.AbsLat, 3: &s.RefLat, 4: &s.AbsLong, 5: &s.RefLong}

		for i, dst := range ints {
			if *dst, err = strconv.Atoi(f[i]); err != nil {
				return nil, fmt.Errorf("station descriptor %s: field %d %q: %w", path, i, f[i], err)
			}
		}
		for i, dst := range floats {
			if *dst, err = strconv.ParseFloat(f[i], 64); err != nil {
				return nil, fmt.Errorf("station descriptor %s: field %d %q: %w", path, i, f[i], err)
			}
		}
		if len(f) > 9 {
			s.Other = strings.Join(f[9:], " ")
		}
		stations = append(stations, s)
	}
	return stations, nil
}

// WriteMetSDF writes a meteorological station descriptor file, atomically.
func WriteMetSDF(stations []MetStation, path string) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", len(stations))
	for _, s := range stations {
		fmt.Fprintf(&buf, "%d %s %g %g %g %g %d %d %d",
			s.ID, s.Path, s.AbsLat, s.RefLat, s.AbsLong, s.RefLong,
			s.GMT, s.Records, s.Params)
		if s.Other != "" {
			fmt.Fprintf(&buf, " %s", s.Other)
		}
		buf.WriteByte('\n')
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write station descriptor: %w", err)
	}
	return nil
}

// descriptorRows reads the count header and returns the per-station
// fields, enforcing the declared count and a minimum field arity.
func descriptorRows(path string, minFields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station descriptor: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	var rows [][]string
	count := -1
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if count < 0 {
			if count, err = strconv.Atoi(fields[0]); err != nil {
				return nil, fmt.Errorf("station descriptor %s: count %q: %w", path, fields[0], err)
			}
			continue
		}
		if len(fields) < minFields {
			return nil, fmt.Errorf("station descriptor %s: record %q has %d fields, want at least %d",
				path, scanner.Text(), len(fields), minFields)
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read station descriptor: %w", err)
	}

	if count >= 0 && len(rows) != count {
		return nil, fmt.Errorf("station descriptor %s: header declares %d stations, found %d",
			path, count, len(rows))
	}
	return rows, nil
}
