package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"patientlink/internal/config"
	"patientlink/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "warn"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hidden message")
	logger.Warn("visible message")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden message") {
		t.Fatalf("expected info line to be filtered, got %q", content)
	}
	if !strings.Contains(string(content), "visible message") {
		t.Fatalf("expected warn line, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndRun(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.WithRun(logging.NewComponentLogger(logger, "grouping"), "0123456789abcdef")
	logger.Info("grouping complete", logging.String(logging.FieldStrategy, "excel_row"), logging.Int("candidates", 3))

	line := buf.String()
	for _, want := range []string{" INFO ", "[01234567] ", "grouping: grouping complete", "strategy=excel_row", "candidates=3"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be lifted out of key/value pairs: %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestConsoleLoggerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("msg", logging.String("label", "Excel patient group"), logging.Error(errors.New("bad input")))

	line := buf.String()
	if !strings.Contains(line, `label="Excel patient group"`) {
		t.Fatalf("expected quoted label, got %q", line)
	}
	if !strings.Contains(line, `error="bad input"`) {
		t.Fatalf("expected quoted error, got %q", line)
	}
}

func TestJSONLoggerShape(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "archive").Debug("run saved", logging.String(logging.FieldRunID, "r1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if entry["level"] != "debug" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry[logging.FieldComponent] != "archive" || entry[logging.FieldRunID] != "r1" {
		t.Fatalf("unexpected fields: %v", entry)
	}
	if src, _ := entry["source"].(string); !strings.Contains(src, "logger_test.go:") {
		t.Fatalf("expected compact source at debug level, got %v", entry["source"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "pattern skipped", "id_pattern_invalid",
		logging.String(logging.FieldImpact, "pattern ignored"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry[logging.FieldEventType] != "id_pattern_invalid" {
		t.Fatalf("unexpected event type: %v", entry[logging.FieldEventType])
	}
	if entry[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default hint, got %v", entry[logging.FieldErrorHint])
	}
	if entry[logging.FieldImpact] != "pattern ignored" {
		t.Fatalf("caller impact should win, got %v", entry[logging.FieldImpact])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), 100) {
		t.Fatal("nop logger should never be enabled")
	}
	logging.NewComponentLogger(nil, "x").Error("ignored")
	logging.WarnWithContext(nil, "ignored", "noop")
}
