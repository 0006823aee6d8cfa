// Package results post-processes simulation output: element time series
// (.pixel, .mrf) with simulation hours resolved to absolute dates,
// per-window water balance accounting, and recombination of the
// per-processor spatial outputs parallel runs shard.
package results
