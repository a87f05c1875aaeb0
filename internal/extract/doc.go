// Package extract pulls identifier evidence out of unlabeled rows and
// filenames.
//
// Column selection is a scored rule table: each ColumnRule is a predicate over
// the normalized column name with a weight, and deny-listed names veto a
// column outright. The best-scoring non-empty column at or above the
// acceptance threshold becomes the patient id; when nothing clears the
// threshold no id is reported. Name and date-of-birth columns are picked by
// first non-empty substring match in column order.
//
// PatternSet compiles filename id patterns once and is immutable afterwards.
// The grouping engine builds one per run; invalid patterns are kept aside for
// reporting and never fail a run.
package extract
