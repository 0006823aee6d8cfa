// Package diagnose sanity-checks a simulation setup before it runs:
// every file the control file references must exist, and the station
// and grid descriptors it names must parse and point at real data.
package diagnose
