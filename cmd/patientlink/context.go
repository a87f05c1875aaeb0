package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"patientlink/internal/archive"
	"patientlink/internal/config"
	"patientlink/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	outputFlag   *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, outputFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		outputFlag:   outputFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// openArchive opens the review archive configured under paths.archive_dir.
func (c *commandContext) openArchive() (*archive.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	level, err := archive.ParseCompressionLevel(cfg.Archive.CompressionLevel)
	if err != nil {
		return nil, err
	}
	store, err := archive.Open(cfg.Paths.ArchiveDir,
		archive.WithCompressionLevel(level),
		archive.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return store, nil
}

func (c *commandContext) withArchive(fn func(*archive.Store) error) error {
	store, err := c.openArchive()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) outputMode(cmd *cobra.Command) outputMode {
	var raw string
	if c.outputFlag != nil {
		raw = *c.outputFlag
	}
	mode, err := parseOutputMode(raw)
	if err != nil {
		mode = outputAuto
	}
	return resolveOutputMode(mode, cmd.OutOrStdout())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
