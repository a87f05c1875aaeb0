// Package ingest converts an upload body into raw items and produces the
// heuristic structure analysis shown alongside grouping proposals.
//
// The body carries spreadsheets as ordered rows and loose files as paths.
// Row column order is preserved end to end because identifier extraction
// breaks ties by column position.
package ingest
