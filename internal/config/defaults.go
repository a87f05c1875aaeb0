package config

const (
	defaultArchiveDir          = "~/.local/share/patientlink"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultUnitStrategy        = "excel_row"
	defaultQuarantineThreshold = 0.55
	defaultCompressionLevel    = "default"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveDir: defaultArchiveDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Grouping: Grouping{
			UnitStrategy:        defaultUnitStrategy,
			QuarantineThreshold: defaultQuarantineThreshold,
		},
		Archive: Archive{
			Enabled:          false,
			CompressionLevel: defaultCompressionLevel,
		},
	}
}
