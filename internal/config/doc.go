// Package config loads run settings from YAML or CUE files.
//
// Both formats are checked against the embedded schema.cue, which also
// supplies defaults. The CLI starts from Default, overlays a file if one is
// given, then overlays flags the user set explicitly and calls Validate.
package config
