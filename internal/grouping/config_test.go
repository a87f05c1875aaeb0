package grouping

import (
	"errors"
	"path/filepath"
	"testing"

	"patientlink/internal/extract"
	"patientlink/internal/testsupport"
)

func TestConfigStrategy(t *testing.T) {
	tests := []struct {
		value string
		want  Strategy
	}{
		{"", StrategyExcelRow},
		{"excel_row", StrategyExcelRow},
		{" subfolder ", StrategySubfolder},
		{"id_in_filename", StrategyIDInFilename},
		{"fallback", StrategyFallback},
		{"patient_per_sheet", StrategyFallback},
	}
	for _, tt := range tests {
		if got := (Config{UnitStrategy: tt.value}).Strategy(); got != tt.want {
			t.Errorf("Strategy(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "grouping.json")
	testsupport.WriteFile(t, jsonPath, []byte(`{
		"unit_strategy": "id_in_filename",
		"excel": {"id_column": "NHC"},
		"folder": {"id_patterns": ["P\\d+", {"pattern": "NHC_(\\d+)", "group": 1}]},
		"quarantine": {"quarantine_threshold": 0.6}
	}`))
	cfg, err := LoadConfigFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadConfigFile json: %v", err)
	}
	if cfg.Strategy() != StrategyIDInFilename || cfg.Excel.IDColumn != "NHC" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.Folder.IDPatterns) != 2 || cfg.Folder.IDPatterns[1].Group != 1 {
		t.Fatalf("patterns = %+v", cfg.Folder.IDPatterns)
	}
	if cfg.Quarantine.Threshold == nil || *cfg.Quarantine.Threshold != 0.6 {
		t.Fatalf("threshold = %v", cfg.Quarantine.Threshold)
	}

	yamlPath := filepath.Join(dir, "grouping.yaml")
	testsupport.WriteFile(t, yamlPath, []byte("unit_strategy: subfolder\nfolder:\n  id_patterns:\n    - 'P\\d+'\n    - pattern: 'NHC_(\\d+)'\n      group: 1\nquarantine:\n  quarantine_threshold: 0\n"))
	cfg, err = LoadConfigFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfigFile yaml: %v", err)
	}
	if cfg.Strategy() != StrategySubfolder || len(cfg.Folder.IDPatterns) != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Quarantine.Threshold == nil || *cfg.Quarantine.Threshold != 0 {
		t.Fatal("explicit zero threshold must be kept")
	}

	badPath := filepath.Join(dir, "bad.json")
	testsupport.WriteFile(t, badPath, []byte(`{"quarantine": {"quarantine_threshold": 2}}`))
	if _, err := LoadConfigFile(badPath); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}

	negativePath := filepath.Join(dir, "negative.yaml")
	testsupport.WriteFile(t, negativePath, []byte("folder:\n  id_patterns:\n    - pattern: 'NHC_(\\d+)'\n      group: -1\n"))
	if _, err := LoadConfigFile(negativePath); !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, extract.ErrNegativeGroup) {
		t.Fatalf("err = %v, want ErrInvalidConfig wrapping ErrNegativeGroup", err)
	}
}
