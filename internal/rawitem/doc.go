// Package rawitem defines the ingested units the grouping engine consumes.
//
// An Item is one spreadsheet row or one loose file together with the
// provenance metadata the ingestion step attached to it. Items are created
// once and then only referenced: candidates hold copies of the Item value but
// never edit them. Spreadsheet rows keep their column order (Row) because the
// identifier extractor's tie-breaking depends on it.
package rawitem
