// Package meshbuild runs the MeshBuilder triangulator and the metis
// partitioner inside their published Docker container, driving the
// docker CLI directly: the work directory with the .in and .points
// files is mounted as the container's data volume, the workflow is
// executed in a long-lived container, and the .reach partition file is
// left behind for parallel simulations.
package meshbuild
