// Package config loads, normalizes, and validates patientlink configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PATIENTLINK_LOG_LEVEL and PATIENTLINK_ARCHIVE_DIR. The [grouping] section
// holds the default grouping options the CLI starts from before per-run files
// and flags are layered on top.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
