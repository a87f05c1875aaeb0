package ingest

import (
	"strings"
	"testing"

	"patientlink/internal/grouping"
	"patientlink/internal/rawitem"
)

const sampleBody = `{
  "excelFiles": [
    {"name": "patients.xlsx", "rows": [
      {"NHC": "1001", "tumor_id": "T1", "Nombre": "Ana"},
      {"NHC": "1001", "tumor_id": "T2", "Nombre": "Ana"},
      {"NHC": "1002", "tumor_id": "T3", "Nombre": null}
    ]},
    {"rows": [{"id": 7}]}
  ],
  "files": [
    {"path": "scans/1001/ct.DCM"},
    {"fullPath": "scans/1002/lab.pdf", "filename": "lab_1002.pdf"},
    {"filename": "notes"},
    {}
  ]
}`

func decodeSample(t *testing.T) Body {
	t.Helper()
	body, err := DecodeBody(strings.NewReader(sampleBody))
	if err != nil {
		t.Fatalf("DecodeBody: %v", err)
	}
	return body
}

func TestBuildRawItems(t *testing.T) {
	items := BuildRawItems(decodeSample(t))
	if len(items) != 8 {
		t.Fatalf("items = %d, want 8", len(items))
	}
	if err := rawitem.Validate(items); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	row := items[1]
	if row.ID != "patients.xlsx_row_1" || row.SourceRef != "patients.xlsx#row_1" || row.SourceType != rawitem.SourceExcelRow {
		t.Fatalf("row = %+v", row)
	}
	if row.Metadata.Row() != 1 || row.Metadata.File != "patients.xlsx" {
		t.Fatalf("row metadata = %+v", row.Metadata)
	}
	if got := strings.Join(row.Metadata.Columns.Names(), ","); got != "NHC,tumor_id,Nombre" {
		t.Fatalf("columns = %s", got)
	}
	if items[3].ID != "excel_1_row_0" {
		t.Fatalf("unnamed workbook id = %q", items[3].ID)
	}

	tests := []struct {
		idx      int
		id       string
		ref      string
		filename string
		folder   string
		ext      string
	}{
		{4, "file_0", "scans/1001/ct.DCM", "ct.DCM", "scans/1001", "dcm"},
		{5, "file_1", "scans/1002/lab.pdf", "lab_1002.pdf", "scans/1002", "pdf"},
		{6, "file_2", "notes", "notes", "", ""},
		{7, "file_3", "file_3", "file_3", "", ""},
	}
	for _, tt := range tests {
		got := items[tt.idx]
		if got.ID != tt.id || got.SourceRef != tt.ref || got.SourceType != rawitem.SourceFile {
			t.Errorf("item %d = %+v", tt.idx, got)
		}
		m := got.Metadata
		if m.Filename != tt.filename || m.FolderPath != tt.folder || m.Extension != tt.ext {
			t.Errorf("item %d metadata = %+v", tt.idx, m)
		}
	}
}

func TestBuildRawItemsDuplicateWorkbookNames(t *testing.T) {
	row := rawitem.Row{}
	body := Body{ExcelFiles: []ExcelFile{
		{Name: "patients.xlsx", Rows: []rawitem.Row{row}},
		{Name: "patients.xlsx", Rows: []rawitem.Row{row}},
		{Name: "patients.xlsx#1", Rows: []rawitem.Row{row}},
		{Name: "excel_4", Rows: []rawitem.Row{row}},
		{Rows: []rawitem.Row{row}},
	}}
	items := BuildRawItems(body)
	if err := rawitem.Validate(items); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		id   string
		ref  string
		file string
	}{
		{"patients.xlsx_row_0", "patients.xlsx#row_0", "patients.xlsx"},
		{"patients.xlsx#1_row_0", "patients.xlsx#1#row_0", "patients.xlsx#1"},
		{"patients.xlsx#1#1_row_0", "patients.xlsx#1#1#row_0", "patients.xlsx#1#1"},
		{"excel_4_row_0", "excel_4#row_0", "excel_4"},
		{"excel_4#1_row_0", "excel_4#1#row_0", "excel_4#1"},
	}
	if len(items) != len(tests) {
		t.Fatalf("items = %d, want %d", len(items), len(tests))
	}
	for i, tt := range tests {
		got := items[i]
		if got.ID != tt.id || got.SourceRef != tt.ref || got.Metadata.File != tt.file {
			t.Errorf("item %d = id %q ref %q file %q, want %q %q %q", i, got.ID, got.SourceRef, got.Metadata.File, tt.id, tt.ref, tt.file)
		}
	}
}

func TestDuplicateWorkbookNamesStayIsolated(t *testing.T) {
	body, err := DecodeBody(strings.NewReader(`{"excelFiles": [
    {"name": "patients.xlsx", "rows": [{"patient_id": "A100"}]},
    {"name": "patients.xlsx", "rows": [{"patient_id": "A100"}]}
  ]}`))
	if err != nil {
		t.Fatalf("DecodeBody: %v", err)
	}
	res, err := grouping.NewEngine().Group(BuildRawItems(body), grouping.Config{})
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(res.Candidates))
	}
	if res.Candidates[0].ID == res.Candidates[1].ID {
		t.Fatalf("candidates share id %q", res.Candidates[0].ID)
	}
}

func TestRankColumns(t *testing.T) {
	body := decodeSample(t)
	ranked := RankColumns(body.ExcelFiles[0])
	if len(ranked) != 3 {
		t.Fatalf("ranked = %d", len(ranked))
	}
	best := ranked[0]
	if best.Name != "NHC" || best.IDLikeness != 16 {
		t.Fatalf("best = %+v", best)
	}
	if best.Uniqueness < 0.66 || best.Uniqueness > 0.67 {
		t.Fatalf("uniqueness = %v", best.Uniqueness)
	}
	last := ranked[len(ranked)-1]
	if last.Name != "tumor_id" {
		t.Fatalf("deny-listed column should rank last, got %s", last.Name)
	}
	for _, s := range ranked {
		if s.Name == "Nombre" && (s.NullRatio < 0.33 || s.NullRatio > 0.34) {
			t.Fatalf("Nombre null ratio = %v", s.NullRatio)
		}
	}
}

func TestAnalyze(t *testing.T) {
	text := Analyze(decodeSample(t))
	for _, want := range []string{
		"Excel file 'patients.xlsx' with 3 rows.",
		`Columns: ["NHC","tumor_id","Nombre"]`,
		"Best ID-like column candidate: 'NHC' (id_likeness=16, uniqueness=0.67, null_ratio=0.00).",
		"Excel file 'excel_1' with 1 rows.",
		"Folder structure:",
		" - Folder 'scans/1001' has 1 files.",
		" - Folder 'scans/1002' has 1 files.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("analysis missing %q\n%s", want, text)
		}
	}

	if got := Analyze(Body{}); got != "No strong structure detected." {
		t.Fatalf("empty analysis = %q", got)
	}
}

func TestAnalyzeLimitsFolders(t *testing.T) {
	var body Body
	for i := 0; i < 25; i++ {
		body.Files = append(body.Files, FileRef{Path: "dir" + strings.Repeat("x", i) + "/f.pdf"})
	}
	text := Analyze(body)
	if got := strings.Count(text, " - Folder "); got != 20 {
		t.Fatalf("folder lines = %d, want 20", got)
	}
}
