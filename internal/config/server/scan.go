package server

// ScanServerConfig selects the volume source and the exclusion rules that are
// applied before any volume reaches the classifier.
type ScanServerConfig struct {
	// Source is either "mountinfo" (enumerate mounted filesystems of this host)
	// or "file" (read raw descriptors from File).
	Source      string `mapstructure:"source"        yaml:"source"`
	File        string `mapstructure:"file"          yaml:"file"`
	ScanOnStart bool   `mapstructure:"scan_on_start" yaml:"scan_on_start"`

	VolumeRoots      []string `mapstructure:"volume_roots"      yaml:"volume_roots"`
	ExcludedPrefixes []string `mapstructure:"excluded_prefixes" yaml:"excluded_prefixes"`
	ImageExtensions  []string `mapstructure:"image_extensions"  yaml:"image_extensions"`
}

// TiersServerConfig names the canonical tiers and declares additional ones.
type TiersServerConfig struct {
	PrimaryName   string            `mapstructure:"primary_name"   yaml:"primary_name"`
	SecondaryName string            `mapstructure:"secondary_name" yaml:"secondary_name"`
	Extra         []TierEntryConfig `mapstructure:"extra"          yaml:"extra"`
}

type TierEntryConfig struct {
	Level int    `mapstructure:"level" yaml:"level"`
	Name  string `mapstructure:"name"  yaml:"name"`
}

// MetricsServerConfig controls the prometheus endpoint served by the agent.
type MetricsServerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
	Path    string `mapstructure:"path"    yaml:"path"`
}
