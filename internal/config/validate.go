package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateGrouping(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateGrouping() error {
	if c.Grouping.QuarantineThreshold < 0 || c.Grouping.QuarantineThreshold > 1 {
		return errors.New("grouping.quarantine_threshold must be between 0 and 1")
	}
	for i, p := range c.Grouping.IDPatterns {
		if p.Pattern == "" {
			return fmt.Errorf("grouping.id_patterns[%d].pattern must be set", i)
		}
		if p.Group < 0 {
			return fmt.Errorf("grouping.id_patterns[%d].group must not be negative", i)
		}
	}
	return nil
}

func (c *Config) validateArchive() error {
	switch c.Archive.CompressionLevel {
	case "fastest", "default", "better", "best":
	default:
		return fmt.Errorf("archive.compression_level: unsupported value %q (use fastest, default, better or best)", c.Archive.CompressionLevel)
	}
	if c.Archive.Enabled && c.Paths.ArchiveDir == "" {
		return errors.New("paths.archive_dir must be set when the archive is enabled")
	}
	return nil
}
