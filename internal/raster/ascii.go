package raster

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// ReadASCII parses an ESRI ASCII grid. Header keys are case-insensitive;
// NODATA_value defaults to -9999 when absent.
func ReadASCII(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raster: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	header := map[string]float64{"nodata_value": DefaultNoData}
	var values []float64

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if len(fields) == 2 && isHeaderKey(fields[0]) {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("raster header %s: %w", fields[0], err)
			}
			header[strings.ToLower(fields[0])] = v
			continue
		}

		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("raster cell %q: %w", field, err)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read raster: %w", err)
	}

	for _, key := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[key]; !ok {
			return nil, fmt.Errorf("raster header missing %s", key)
		}
	}

	cols, rows := int(header["ncols"]), int(header["nrows"])
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("raster dimensions %dx%d invalid", cols, rows)
	}
	if len(values) != cols*rows {
		return nil, fmt.Errorf("raster has %d cells, expected %d", len(values), cols*rows)
	}

	xll, yll := header["xllcorner"], header["yllcorner"]
	if cx, ok := header["xllcenter"]; ok {
		xll = cx - header["cellsize"]/2
	}
	if cy, ok := header["yllcenter"]; ok {
		yll = cy - header["cellsize"]/2
	}

	g := &Grid{
		Cols:     cols,
		Rows:     rows,
		XLL:      xll,
		YLL:      yll,
		CellSize: header["cellsize"],
		NoData:   header["nodata_value"],
		Cells:    values,
	}
	return g, nil
}

// WriteASCII writes the grid as an ESRI ASCII file, atomically.
func WriteASCII(g *Grid, path string) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "ncols %d\n", g.Cols)
	fmt.Fprintf(&buf, "nrows %d\n", g.Rows)
	fmt.Fprintf(&buf, "xllcorner %s\n", formatFloat(g.XLL))
	fmt.Fprintf(&buf, "yllcorner %s\n", formatFloat(g.YLL))
	fmt.Fprintf(&buf, "cellsize %s\n", formatFloat(g.CellSize))
	fmt.Fprintf(&buf, "NODATA_value %s\n", formatFloat(g.NoData))

	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(formatFloat(g.Value(r, c)))
		}
		buf.WriteByte('\n')
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write raster: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isHeaderKey(s string) bool {
	switch strings.ToLower(s) {
	case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter",
		"cellsize", "nodata_value":
		return true
	}
	return false
}
