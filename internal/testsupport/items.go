package testsupport

import (
	"fmt"
	"path"
	"strings"

	"patientlink/internal/rawitem"
)

// ExcelRow builds a spreadsheet row item the way ingestion names them. pairs
// alternate column name and value.
func ExcelRow(file string, index int, pairs ...string) rawitem.Item {
	return rawitem.Item{
		ID:         fmt.Sprintf("%s_row_%d", file, index),
		SourceType: rawitem.SourceExcelRow,
		SourceRef:  fmt.Sprintf("%s#row_%d", file, index),
		Metadata: rawitem.Metadata{
			File:     file,
			RowIndex: rawitem.IntPtr(index),
			Columns:  rawitem.NewRow(pairs...),
		},
	}
}

// File builds a loose file item from a slash-separated path.
func File(id, filePath string) rawitem.Item {
	name := path.Base(filePath)
	folder := ""
	if i := strings.LastIndex(filePath, "/"); i > 0 {
		folder = filePath[:i]
	}
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = strings.ToLower(name[i+1:])
	}
	return rawitem.Item{
		ID:         id,
		SourceType: rawitem.SourceFile,
		SourceRef:  filePath,
		Metadata: rawitem.Metadata{
			Filename:   name,
			FolderPath: folder,
			Extension:  ext,
		},
	}
}
