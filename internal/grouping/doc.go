// Package grouping turns raw items into patient candidates.
//
// Engine.Group runs exactly one strategy chosen by Config.UnitStrategy:
//
//   - excel_row groups spreadsheet rows by (source file, patient key) and then
//     attaches loose files to the best-scoring row group by filename evidence.
//   - subfolder groups files by their containing folder; a folder leaf that
//     yields an id through the configured patterns raises confidence.
//   - id_in_filename groups files sharing an id extracted from the filename.
//   - fallback makes one quarantined candidate per item.
//
// Every candidate then passes through the quarantine decision exactly once.
// That step may lower confidence and flip status to quarantine; it never
// raises confidence or removes issues. Confidence constants live in Policy.
//
// The engine is synchronous and keeps no state between calls. Pattern
// compilation happens once per call in an extract.PatternSet that is dropped
// when Group returns.
package grouping
