// Package config loads server settings from defaults, an optional YAML file
// and TASKBOARD_* environment variables, then validates them before any
// component is constructed.
package config
