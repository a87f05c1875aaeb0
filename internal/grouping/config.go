package grouping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"patientlink/internal/extract"
)

// ErrInvalidConfig reports a grouping configuration that cannot be used.
var ErrInvalidConfig = errors.New("invalid grouping config")

// Strategy names a grouping algorithm.
type Strategy string

const (
	StrategyExcelRow     Strategy = "excel_row"
	StrategySubfolder    Strategy = "subfolder"
	StrategyIDInFilename Strategy = "id_in_filename"
	StrategyFallback     Strategy = "fallback"
)

// IDPattern is a filename or folder-leaf id pattern.
type IDPattern = extract.Pattern

// Config is the per-call grouping configuration supplied by the caller.
type Config struct {
	UnitStrategy string           `json:"unit_strategy,omitempty" yaml:"unit_strategy,omitempty"`
	Excel        ExcelConfig      `json:"excel" yaml:"excel"`
	Folder       FolderConfig     `json:"folder" yaml:"folder"`
	Quarantine   QuarantineConfig `json:"quarantine" yaml:"quarantine"`
}

// ExcelConfig tunes the excel_row strategy.
type ExcelConfig struct {
	// IDColumn is used as patient id only when the scored extractor finds none.
	IDColumn string `json:"id_column,omitempty" yaml:"id_column,omitempty"`
}

// FolderConfig carries id patterns for the subfolder and id_in_filename
// strategies.
type FolderConfig struct {
	IDPatterns []IDPattern `json:"id_patterns,omitempty" yaml:"id_patterns,omitempty"`
}

// QuarantineConfig overrides the quarantine threshold. A nil threshold keeps
// the policy default.
type QuarantineConfig struct {
	Threshold *float64 `json:"quarantine_threshold,omitempty" yaml:"quarantine_threshold,omitempty"`
}

// Strategy resolves the configured strategy. An empty value selects
// excel_row; anything unrecognized selects fallback.
func (c Config) Strategy() Strategy {
	switch s := Strategy(strings.TrimSpace(c.UnitStrategy)); s {
	case "":
		return StrategyExcelRow
	case StrategyExcelRow, StrategySubfolder, StrategyIDInFilename:
		return s
	default:
		return StrategyFallback
	}
}

// Validate checks values the engine cannot degrade around.
func (c Config) Validate() error {
	if t := c.Quarantine.Threshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("%w: quarantine_threshold %.2f outside [0,1]", ErrInvalidConfig, *t)
	}
	// Decoding already rejects negative groups; this covers configs built in code.
	for i, p := range c.Folder.IDPatterns {
		if p.Group < 0 {
			return fmt.Errorf("%w: id_patterns[%d] group %d is negative", ErrInvalidConfig, i, p.Group)
		}
	}
	return nil
}

// Float returns a pointer to v, for building threshold overrides.
func Float(v float64) *float64 {
	return &v
}

// LoadConfigFile reads a grouping configuration from JSON or YAML, picking the
// decoder by file extension. Unknown extensions are tried as JSON first.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read grouping config: %w", err)
	}
	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("grouping config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes data as JSON or YAML according to ext. A negative
// capture group is reported as ErrInvalidConfig.
func ParseConfig(data []byte, ext string) (Config, error) {
	cfg, err := parseConfig(data, ext)
	if errors.Is(err, extract.ErrNegativeGroup) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, err
}

func parseConfig(data []byte, ext string) (Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode yaml: %w", err)
		}
	case ".json":
		if err := decodeJSON(data, &cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := decodeJSON(data, &cfg); err != nil {
			var fallback Config
			if yerr := yaml.Unmarshal(data, &fallback); yerr != nil {
				return Config{}, err
			}
			cfg = fallback
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeJSON(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
