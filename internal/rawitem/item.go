package rawitem

import (
	"errors"
	"fmt"
	"strings"
)

// SourceType identifies where a raw item came from.
type SourceType string

const (
	// SourceExcelRow marks one row of a spreadsheet-like source.
	SourceExcelRow SourceType = "excel_row"
	// SourceFile marks a loose file.
	SourceFile SourceType = "file"
	// SourceUnknown marks placeholder items whose origin is not known.
	SourceUnknown SourceType = "unknown"
)

// ReassignedRef is the provenance marker used for placeholder items created
// by a reassignment that had no access to the original item.
const ReassignedRef = "reassigned"

var (
	// ErrMissingID indicates a raw item without an id.
	ErrMissingID = errors.New("missing id")
	// ErrDuplicateID indicates two raw items sharing one id.
	ErrDuplicateID = errors.New("duplicate id")
)

// Item is one ingested unit.
type Item struct {
	ID         string     `json:"id"`
	SourceType SourceType `json:"source_type"`
	SourceRef  string     `json:"source_ref"`
	Metadata   Metadata   `json:"metadata"`
}

// Metadata is the source-specific bag attached to an item. Spreadsheet rows
// populate File, RowIndex and Columns; files populate Filename, FolderPath and
// Extension.
type Metadata struct {
	File       string `json:"file,omitempty"`
	RowIndex   *int   `json:"row_index,omitempty"`
	Columns    Row    `json:"columns,omitempty"`
	Filename   string `json:"filename,omitempty"`
	FolderPath string `json:"folder_path,omitempty"`
	Extension  string `json:"extension,omitempty"`
}

// Placeholder returns the stand-in item used when only an id is known.
func Placeholder(id string) Item {
	return Item{
		ID:         id,
		SourceType: SourceUnknown,
		SourceRef:  ReassignedRef,
	}
}

// Row returns the row index, or 0 when the item carries none.
func (m Metadata) Row() int {
	if m.RowIndex == nil {
		return 0
	}
	return *m.RowIndex
}

// IntPtr is a small helper for building row metadata.
func IntPtr(v int) *int {
	return &v
}

// Validate checks the boundary invariants every item list must satisfy before
// it reaches the engine: each item has a non-empty id and ids are unique.
func Validate(items []Item) error {
	seen := make(map[string]int, len(items))
	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("raw item %d: %w", i, ErrMissingID)
		}
		if prev, ok := seen[item.ID]; ok {
			return fmt.Errorf("raw item %d (%s): %w with item %d", i, item.ID, ErrDuplicateID, prev)
		}
		seen[item.ID] = i
	}
	return nil
}

// Index maps item ids to items. Later duplicates overwrite earlier ones; call
// Validate first when uniqueness matters.
func Index(items []Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}
