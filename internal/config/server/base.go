package server

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	Metadata MetadataServerConfig `mapstructure:"metadata" yaml:"metadata"`
	Scan     ScanServerConfig     `mapstructure:"scan"     yaml:"scan"`
	Tiers    TiersServerConfig    `mapstructure:"tiers"    yaml:"tiers"`
	Metrics  MetricsServerConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the agent cannot act on.
func (cfg *BaseServerConfig) Validate() error {
	switch cfg.Metadata.Type {
	case "sqlite":
		if cfg.Metadata.SQLite.Path == "" {
			return fmt.Errorf("metadata.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported metadata type '%s'", cfg.Metadata.Type)
	}

	switch cfg.Scan.Source {
	case "mountinfo":
	case "file":
		if cfg.Scan.File == "" {
			return fmt.Errorf("scan.file is required when scan.source is 'file'")
		}
	default:
		return fmt.Errorf("unsupported scan source '%s'", cfg.Scan.Source)
	}

	seen := map[int]bool{1: true, 2: true}
	for _, extra := range cfg.Tiers.Extra {
		if extra.Level < 1 {
			return fmt.Errorf("tier level must be positive, got %d", extra.Level)
		}
		if seen[extra.Level] {
			return fmt.Errorf("tier level %d is declared more than once", extra.Level)
		}
		seen[extra.Level] = true
	}

	return nil
}
