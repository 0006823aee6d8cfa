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

// GridParam is one variable of a grid data file: the variable name, the
// path prefix its rasters live under, and their extension.
type GridParam struct {
	Name      string
	Location  string
	Extension string
}

// GridData mirrors a .gdf file: a parameter count, the grid's geographic
// anchor, the GMT time zone, and the parameter table.
type GridData struct {
	Latitude  float64
	Longitude float64
	GMT       int
	Params    []GridParam
}

// ReadGDF parses a grid data file: parameter count line, a lat/long/GMT
// line, then one "NAME location extension" row per parameter.
func ReadGDF(path string) (*GridData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid data file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	var lines [][]string
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 {
			lines = append(lines, fields)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grid data file: %w", err)
	}

	if len(lines) < 2 {
		return nil, fmt.Errorf("grid data file %s: missing header", path)
	}

	count, err := strconv.Atoi(lines[0][0])
	if err != nil {
		return nil, fmt.Errorf("grid data file %s: parameter count %q: %w", path, lines[0][0], err)
	}

	anchor := lines[1]
	if len(anchor) < 3 {
		return nil, fmt.Errorf("grid data file %s: anchor line needs lat long gmt", path)
	}

	gd := &GridData{}
	if gd.Latitude, err = strconv.ParseFloat(anchor[0], 64); err != nil {
		return nil, fmt.Errorf("grid data file %s: latitude %q: %w", path, anchor[0], err)
	}
	if gd.Longitude, err = strconv.ParseFloat(anchor[1], 64); err != nil {
		return nil, fmt.Errorf("grid data file %s: longitude %q: %w", path, anchor[1], err)
	}
	if gd.GMT, err = strconv.Atoi(anchor[2]); err != nil {
		return nil, fmt.Errorf("grid data file %s: GMT zone %q: %w", path, anchor[2], err)
	}

	for _, fields := range lines[2:] {
		if len(fields) < 3 {
			return nil, fmt.Errorf("grid data file %s: parameter row %v needs name location extension",
				path, fields)
		}
		gd.Params = append(gd.Params, GridParam{
			Name:      fields[0],
			Location:  fields[1],
			Extension: fields[2],
		})
	}

	if len(gd.Params) != count {
		return nil, fmt.Errorf("grid data file %s: header declares %d parameters, found %d",
			path, count, len(gd.Params))
	}
	return gd, nil
}

// WriteGDF writes a grid data file, atomically.
func WriteGDF(gd *GridData, path string) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", len(gd.Params))
	fmt.Fprintf(&buf, "%g %g %d\n", gd.Latitude, gd.Longitude, gd.GMT)
	for _, p := range gd.Params {
		fmt.Fprintf(&buf, "%s %s %s\n", p.Name, p.Location, p.Extension)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write grid data file: %w", err)
	}
	return nil
}
