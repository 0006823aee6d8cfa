// Package mesh selects triangulation nodes for a basin with a Haar
// wavelet packet over the clipped DEM: cells whose detail coefficients
// are significant at any decomposition level become interior nodes, the
// watershed outline is buffered and resampled into closing boundary
// nodes, and the stream network and outlet are pinned with their own
// boundary codes. The node set is written in the MeshBuilder point
// format together with its keyword input file.
package mesh
