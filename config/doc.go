// Package config loads and validates the toolkit configuration from a
// gotribs.yaml file, environment variables (GOTRIBS_*), or built-in
// defaults, in that order of precedence.
package config
