// Package basin parses the geometry products a model run writes for its
// domain: voronoi polygon (_voi) and stream reach (_reach) files, merges
// the per-processor partitions of parallel runs, and encodes the results
// as GeoJSON with an optional attribute join.
package basin
