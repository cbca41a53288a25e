// Package config loads nbtedit configuration.
//
// Configuration comes from a single YAML file named by the --config flag
// or, failing that, the NBTEDIT_CONFIG environment variable. Without
// either the built-in defaults apply. Values in the file override the
// defaults field by field; unknown fields are rejected.
//
// Example file:
//
//	log_level: info
//	log_format: console
//	duplicates: overwrite
//	compression: auto
//	backup: true
//	color: auto
//	max_depth: 512
package config
