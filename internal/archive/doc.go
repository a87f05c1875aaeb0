// Package archive persists grouping runs and reviewer corrections so a review
// can continue across invocations.
//
// The archive is a SQLite database (archive.db) in the configured archive
// directory. Each run stores its summary columns plus the full grouping result
// as zstd-compressed JSON. Corrections are appended in order and replace the
// run's candidate list, bumping its revision. Writers take an advisory file
// lock (archive.lock) so concurrent CLI processes serialize; SQLITE_BUSY is
// retried with exponential backoff.
//
// The grouping engine never reads the archive.
package archive
