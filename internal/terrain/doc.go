// Package terrain implements raster watershed delineation: priority-flood
// depression filling, D8 flow directions and accumulation, stream network
// extraction, pour-point snapping, watershed masking and boundary tracing.
//
// Pipeline chains the stages over a DEM and writes each intermediate grid
// as an ESRI ASCII raster, with the boundary polygon and stream network
// persisted as GeoJSON for the mesh generator.
package terrain
