// Package raster models single-band grids in ESRI ASCII layout and the
// cell/coordinate arithmetic the terrain and mesh pipelines need:
// reading and writing .asc files, extent clipping, and bilinear sampling.
package raster
