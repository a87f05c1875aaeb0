// Package logging assembles structured slog loggers and formatting helpers used
// across patientlink.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the field keys grouping, correction, and archive code
// attach to their log lines (component, run_id, candidate_id, raw_item_id).
// The package also provides a no-op logger for tests and library callers that
// do not care about output.
package logging
