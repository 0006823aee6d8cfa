// Genfixtures writes a small synthetic basin into a directory: a valley
// DEM, a control file pointing at it, a rain gauge with a year of hourly
// records, and its station descriptor. Useful for exercising the
// delineate/mesh/check commands without real data.
//
// Usage:
//
//	go run genfixtures.go -dir demo -size 64 -start 10/01/2002/00/00
//
// The DEM is a tilted valley draining to the south edge midpoint, so the
// whole grid belongs to one watershed and the outlet is easy to find.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tribshms/gotribs/internal/control"
	"github.com/tribshms/gotribs/internal/forcing"
	"github.com/tribshms/gotribs/internal/raster"
)

func main() {
	dir := flag.String("dir", "demo", "output directory")
	size := flag.Int("size", 64, "DEM rows and columns")
	cell := flag.Float64("cell", 30, "DEM cell size (map units)")
	start := flag.String("start", "10/01/2002/00/00", "simulation start date")
	hours := flag.Int("hours", 24*365, "gauge record length in hours")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal(err)
	}

	begin, err := control.ParseDate(*start)
	if err != nil {
		log.Fatal(err)
	}

	demPath := filepath.Join(*dir, "demo_dem.asc")
	if err := raster.WriteASCII(valleyDEM(*size, *cell), demPath); err != nil {
		log.Fatal(err)
	}

	gaugePath := filepath.Join(*dir, "gauge001.mdf")
	if err := writeGauge(gaugePath, begin, *hours); err != nil {
		log.Fatal(err)
	}

	sdfPath := filepath.Join(*dir, "demo_gauges.sdf")
	stations := []forcing.PrecipStation{{
		ID:      1,
		Path:    filepath.Base(gaugePath),
		RefLat:  34.2,
		RefLong: -106.9,
		Records: *hours,
		Elev:    1520,
	}}
	if err := forcing.WritePrecipSDF(stations, sdfPath); err != nil {
		log.Fatal(err)
	}

	ctrlPath := filepath.Join(*dir, "demo.in")
	if err := writeControl(ctrlPath, demPath, sdfPath, *start); err != nil {
		log.Fatal(err)
	}

	fmt.Println(demPath)
	fmt.Println(gaugePath)
	fmt.Println(sdfPath)
	fmt.Println(ctrlPath)
}

// valleyDEM slopes toward a center channel and tilts toward the south
// edge, so every cell drains to the bottom-center outlet.
func valleyDEM(size int, cell float64) *raster.Grid {
	g := raster.New(size, size, 0, 0, cell)
	mid := float64(size-1) / 2
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			z := 100 + math.Abs(float64(c)-mid) + 0.5*float64(size-1-r)
			g.Set(r, c, z)
		}
	}
	return g
}

func writeGauge(path string, begin time.Time, hours int) error {
	s := &forcing.Series{
		Columns: []string{"R"},
		Values:  map[string][]float64{"R": make([]float64, hours)},
	}
	for h := 0; h < hours; h++ {
		s.Times = append(s.Times, begin.Add(time.Duration(h)*time.Hour))
		// a storm every ten days
		if h%240 < 6 {
			s.Values["R"][h] = 2.5
		}
	}
	return forcing.WriteStation(s, path)
}

func writeControl(path, demPath, sdfPath, start string) error {
	reg := control.New()
	values := map[string]string{
		"startdate":     start,
		"runtime":       "8760",
		"spopintrvl":    "720",
		"outfilename":   "demo/results/demo",
		"demfile":       filepath.Base(demPath),
		"gaugestations": filepath.Base(sdfPath),
	}
	for kw, v := range values {
		if err := reg.Set(kw, v); err != nil {
			return err
		}
	}
	return reg.WriteFile(path)
}
