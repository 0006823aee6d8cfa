// Package control reads and writes the model's .in control file: a flat
// sequence of keyword lines, each followed by its value on the next line.
// Keywords are grouped by tags (io, time, physical, opts, restart,
// parallel, mesh) for diagnostics and display.
package control
