package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"patientlink/internal/correction"
	"patientlink/internal/grouping"
	"patientlink/internal/rawitem"
	"patientlink/internal/testsupport"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleResult(t *testing.T) *grouping.Result {
	t.Helper()
	items := []rawitem.Item{
		testsupport.ExcelRow("a.xlsx", 0, "NHC", "1001", "Nombre", "Ana"),
		testsupport.ExcelRow("a.xlsx", 1, "NHC", "1002"),
		testsupport.File("file_0", "scans/1001_ct.pdf"),
		testsupport.File("file_1", "scans/misc.pdf"),
	}
	res, err := grouping.NewEngine().Group(items, grouping.Config{})
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	res.AnalysisText = "Excel file 'a.xlsx' with 2 rows."
	return res
}

func TestSaveAndGetRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	res := sampleResult(t)

	summary, err := store.SaveRun(ctx, res)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if summary.ID == "" || summary.Revision != 1 || summary.Strategy != "excel_row" {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.CandidateCount != 3 || summary.QuarantinedCount != 1 || summary.RawItemCount != 4 {
		t.Fatalf("counts = %+v", summary)
	}

	run, err := store.GetRun(ctx, summary.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(run.Result.Candidates) != len(res.Candidates) || run.Result.AnalysisText != res.AnalysisText {
		t.Fatalf("result = %+v", run.Result)
	}
	first := run.Result.Candidates[0]
	if first.PatientKey != res.Candidates[0].PatientKey || len(first.RawItems) != 2 {
		t.Fatalf("first candidate = %+v", first)
	}
	row := run.Result.RawItems[0].Metadata.Columns
	if names := row.Names(); len(names) != 2 || names[0] != "NHC" || names[1] != "Nombre" {
		t.Fatalf("column order lost: %v", names)
	}

	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store := openStore(t, WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		summary, err := store.SaveRun(ctx, sampleResult(t))
		if err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		ids = append(ids, summary.ID)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("runs = %+v", runs)
	}
	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all runs = %d", len(all))
	}
}

func TestSaveCorrection(t *testing.T) {
	store := openStore(t, WithCompressionLevel(zstd.SpeedBestCompression))
	ctx := context.Background()
	summary, err := store.SaveRun(ctx, sampleResult(t))
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	run, err := store.GetRun(ctx, summary.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}

	cands := run.Result.Candidates
	corrected := correction.Apply(cands, []correction.Operation{correction.Merge(cands[0].ID, cands[1].ID)}, "same patient")
	saved, err := store.SaveCorrection(ctx, summary.ID, corrected)
	if err != nil {
		t.Fatalf("SaveCorrection: %v", err)
	}
	if saved.Revision != 2 || saved.ID == 0 {
		t.Fatalf("saved = %+v", saved)
	}

	reloaded, err := store.GetRun(ctx, summary.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if reloaded.Revision != 2 || reloaded.CandidateCount != 2 {
		t.Fatalf("reloaded summary = %+v", reloaded.RunSummary)
	}
	if got := reloaded.Result.Candidates[1].MergedInto; got != cands[0].ID {
		t.Fatalf("merged_into = %q", got)
	}
	if len(reloaded.Result.RawItems) != 4 {
		t.Fatal("raw items must survive a correction")
	}

	history, err := store.Corrections(ctx, summary.ID)
	if err != nil {
		t.Fatalf("Corrections: %v", err)
	}
	if len(history) != 1 || history[0].UserInstruction != "same patient" || history[0].Operations[0].Op != correction.OpMerge {
		t.Fatalf("history = %+v", history)
	}

	if _, err := store.SaveCorrection(ctx, "missing", corrected); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(dir); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
	if filepath.Base(store.Path()) != "archive.db" {
		t.Fatalf("path = %s", store.Path())
	}
}

func TestParseCompressionLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zstd.EncoderLevel
		wantErr bool
	}{
		{"", zstd.SpeedDefault, false},
		{"fastest", zstd.SpeedFastest, false},
		{" Better ", zstd.SpeedBetterCompression, false},
		{"best", zstd.SpeedBestCompression, false},
		{"ultra", zstd.SpeedDefault, true},
	}
	for _, tt := range tests {
		got, err := ParseCompressionLevel(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCompressionLevel(%q) = %v, %v", tt.name, got, err)
		}
	}
}
