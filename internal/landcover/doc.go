// Package landcover derives land-use classes for the model's .ldt
// tables: vegetation height binning against user thresholds, and
// unsupervised NDVI classification of red/near-infrared imagery with
// deterministic k-means.
package landcover
