package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"patientlink/internal/config"
	"patientlink/internal/testsupport"
)

const sampleBody = `{
  "excelFiles": [
    {"name": "patients.xlsx", "rows": [
      {"NHC": "123456", "Nombre": "Ana Puig"},
      {"NHC": "123456", "Nombre": "Ana Puig"},
      {"NHC": "654321", "Nombre": "Joan Vidal"}
    ]}
  ],
  "files": [
    {"path": "scans/report_123456.pdf"},
    {"path": "misc/readme.txt"}
  ]
}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	bodyPath   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("PATIENTLINK_ARCHIVE_DIR", "")
	t.Setenv("PATIENTLINK_LOG_LEVEL", "")
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "patientlink.toml")
	writeTestConfig(t, configPath, cfg)

	bodyPath := filepath.Join(base, "body.json")
	testsupport.WriteFile(t, bodyPath, []byte(sampleBody))

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		bodyPath:   bodyPath,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\narchive_dir = %q\n\n[logging]\nlevel = %q\n\n[archive]\nenabled = %t\n\n[grouping]\nunit_strategy = %q\n",
		cfg.Paths.ArchiveDir,
		cfg.Logging.Level,
		cfg.Archive.Enabled,
		cfg.Grouping.UnitStrategy,
	)
	for _, p := range cfg.Grouping.IDPatterns {
		content += fmt.Sprintf("\n[[grouping.id_patterns]]\npattern = %q\ngroup = %d\n", p.Pattern, p.Group)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func decodeOutput(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
