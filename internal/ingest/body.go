package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"patientlink/internal/rawitem"
)

// Body is an upload payload.
type Body struct {
	ExcelFiles []ExcelFile `json:"excelFiles"`
	Files      []FileRef   `json:"files"`
}

// ExcelFile is one spreadsheet with its rows in order.
type ExcelFile struct {
	Name string        `json:"name,omitempty"`
	Rows []rawitem.Row `json:"rows"`
}

// FileRef describes one uploaded file. Path wins over FullPath.
type FileRef struct {
	Path     string `json:"path,omitempty"`
	FullPath string `json:"fullPath,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Location returns the best available path for the file.
func (f FileRef) Location() string {
	switch {
	case f.Path != "":
		return f.Path
	case f.FullPath != "":
		return f.FullPath
	default:
		return f.Filename
	}
}

// DecodeBody reads a JSON body.
func DecodeBody(r io.Reader) (Body, error) {
	var body Body
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		if err == io.EOF {
			return Body{}, nil
		}
		return Body{}, fmt.Errorf("decode body: %w", err)
	}
	return body, nil
}

// LoadBody reads a JSON body from path.
func LoadBody(path string) (Body, error) {
	f, err := os.Open(path)
	if err != nil {
		return Body{}, fmt.Errorf("open body: %w", err)
	}
	defer f.Close()
	return DecodeBody(f)
}

// LoadItems reads a JSON array of raw items from path and validates it.
func LoadItems(path string) ([]rawitem.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read raw items: %w", err)
	}
	var items []rawitem.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode raw items: %w", err)
	}
	if err := rawitem.Validate(items); err != nil {
		return nil, err
	}
	return items, nil
}

// BuildRawItems flattens body into raw items: every spreadsheet row first,
// in file then row order, followed by every file.
func BuildRawItems(body Body) []rawitem.Item {
	items := make([]rawitem.Item, 0, len(body.Files))

	seen := make(map[string]bool, len(body.ExcelFiles))
	for i, ef := range body.ExcelFiles {
		name := uniqueName(workbookName(ef, i), seen)
		for rowIndex, row := range ef.Rows {
			items = append(items, rawitem.Item{
				ID:         fmt.Sprintf("%s_row_%d", name, rowIndex),
				SourceType: rawitem.SourceExcelRow,
				SourceRef:  fmt.Sprintf("%s#row_%d", name, rowIndex),
				Metadata: rawitem.Metadata{
					File:     name,
					RowIndex: rawitem.IntPtr(rowIndex),
					Columns:  row,
				},
			})
		}
	}

	for i, f := range body.Files {
		location := f.Location()
		filename := f.Filename
		if filename == "" {
			if location != "" {
				filename = location[strings.LastIndex(location, "/")+1:]
			} else {
				filename = fmt.Sprintf("file_%d", i)
			}
		}
		ref := location
		if ref == "" {
			ref = filename
		}
		items = append(items, rawitem.Item{
			ID:         fmt.Sprintf("file_%d", i),
			SourceType: rawitem.SourceFile,
			SourceRef:  ref,
			Metadata: rawitem.Metadata{
				Filename:   filename,
				FolderPath: parentFolder(location),
				Extension:  extension(filename),
			},
		})
	}

	return items
}

func workbookName(ef ExcelFile, index int) string {
	if ef.Name != "" {
		return ef.Name
	}
	return fmt.Sprintf("excel_%d", index)
}

// uniqueName suffixes a repeated workbook name with #N so rows from
// same-named spreadsheets keep distinct ids and never share a file key.
func uniqueName(name string, seen map[string]bool) string {
	unique := name
	for n := 1; seen[unique]; n++ {
		unique = fmt.Sprintf("%s#%d", name, n)
	}
	seen[unique] = true
	return unique
}

func parentFolder(location string) string {
	i := strings.LastIndex(location, "/")
	if i < 0 {
		return ""
	}
	return location[:i]
}

func extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}
