// Package sim launches and builds the simulator: serial or MPI runs
// with output teed to a log file, control-file archival for
// reproducibility, and cmake-driven builds from source.
package sim
