// Package correction applies reviewer operations to an existing candidate
// list.
//
// Operations run in order against an id index built once per batch. Merge
// moves items into a target and marks the source with MergedInto, reassign
// moves a single item id to another candidate, and change_strategy only
// annotates candidates; regrouping is left to the caller. Operations that
// reference unknown candidates are no-ops and are logged at debug level.
package correction
