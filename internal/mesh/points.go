package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// WritePoints writes the node set in the triangulator's point format:
// a count line followed by one `x y z bc` row per node.
func WritePoints(nodes []Point, path string) error {
	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(len(nodes)))
	buf.WriteByte('\n')

	for _, n := range nodes {
		fmt.Fprintf(&buf, "%.6f %.6f %.6f %d\n", n.X, n.Y, n.Z, n.BC)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write points: %w", err)
	}
	return nil
}

// ReadPoints parses a point file written by WritePoints.
func ReadPoints(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open points: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%s: missing count line", path)
	}
	count, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("%s: bad count line: %w", path, err)
	}

	nodes := make([]Point, 0, count)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s: point row needs 4 fields, got %d", path, len(fields))
		}
		var n Point
		if n.X, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return nil, fmt.Errorf("%s: bad x %q", path, fields[0])
		}
		if n.Y, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("%s: bad y %q", path, fields[1])
		}
		if n.Z, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("%s: bad z %q", path, fields[2])
		}
		if n.BC, err = strconv.Atoi(fields[3]); err != nil {
			return nil, fmt.Errorf("%s: bad boundary code %q", path, fields[3])
		}
		nodes = append(nodes, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read points: %w", err)
	}
	if len(nodes) != count {
		return nil, fmt.Errorf("%s: count line says %d points, found %d", path, count, len(nodes))
	}
	return nodes, nil
}

// MeshBuild input defaults the triangulator expects for hydrological
// routing.
const (
	defaultVelocityRatio = 1.2
	defaultBaseflow      = 0.2
	defaultVelocityCoef  = 60
	defaultFlowExp       = 0.3
)

// WriteMeshBuildInput writes the keyword file the MeshBuilder container
// consumes, pairing the routing defaults with the output base name and
// the point file.
func WriteMeshBuildInput(path, baseName, pointFile string) error {
	var buf bytes.Buffer
	write := func(keyword, value string) {
		buf.WriteString(keyword)
		buf.WriteString(":\n")
		buf.WriteString(value)
		buf.WriteByte('\n')
	}

	write("VELOCITYRATIO", strconv.FormatFloat(defaultVelocityRatio, 'f', -1, 64))
	write("BASEFLOW", strconv.FormatFloat(defaultBaseflow, 'f', -1, 64))
	write("VELOCITYCOEF", strconv.Itoa(defaultVelocityCoef))
	write("FLOWEXP", strconv.FormatFloat(defaultFlowExp, 'f', -1, 64))
	write("OUTFILENAME", baseName)
	write("POINTFILENAME", pointFile)

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write meshbuild input: %w", err)
	}
	return nil
}
