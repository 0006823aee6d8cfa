// Package forcing reads and writes the model's meteorological forcing
// inputs: station descriptor files (SDF) for rain gauges and weather
// stations, the flat Y M D H record files they point at, and grid data
// files (.gdf) describing gridded forcing variables.
package forcing
