package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeGrouping()
	c.normalizeArchive()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("PATIENTLINK_ARCHIVE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ArchiveDir = value
	}
	if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
		c.Paths.ArchiveDir = defaultArchiveDir
	}
	var err error
	if c.Paths.ArchiveDir, err = expandPath(strings.TrimSpace(c.Paths.ArchiveDir)); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("PATIENTLINK_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeGrouping() {
	c.Grouping.UnitStrategy = strings.TrimSpace(c.Grouping.UnitStrategy)
	if c.Grouping.UnitStrategy == "" {
		c.Grouping.UnitStrategy = defaultUnitStrategy
	}
	c.Grouping.ExcelIDColumn = strings.TrimSpace(c.Grouping.ExcelIDColumn)
	patterns := c.Grouping.IDPatterns[:0]
	for _, p := range c.Grouping.IDPatterns {
		p.Pattern = strings.TrimSpace(p.Pattern)
		patterns = append(patterns, p)
	}
	c.Grouping.IDPatterns = patterns
}

func (c *Config) normalizeArchive() {
	c.Archive.CompressionLevel = strings.ToLower(strings.TrimSpace(c.Archive.CompressionLevel))
	if c.Archive.CompressionLevel == "" {
		c.Archive.CompressionLevel = defaultCompressionLevel
	}
}
