package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Name:       "tierd",
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},
		Metadata: MetadataServerConfig{
			Type: "sqlite",
			SQLite: MetadataSQLiteConfig{
				Path:     "./tierd.db",
				LogLevel: "silent",
			},
		},
		Scan: ScanServerConfig{
			Source:      "mountinfo",
			File:        "",
			ScanOnStart: true,
			VolumeRoots: []string{
				"/Volumes",
				"/media",
				"/run/media",
				"/mnt",
			},
			ExcludedPrefixes: []string{
				"/System/Volumes/Data",
				"/System/Volumes/Preboot",
				"/System/Volumes/VM",
				"/System/Volumes/Update",
				"/System/Volumes/xarts",
				"/System/Volumes/iSCPreboot",
				"/System/Volumes/Hardware",
				"/private/var/vm",
				"/proc",
				"/sys",
				"/dev",
			},
			ImageExtensions: []string{
				".dmg",
				".iso",
				".img",
				".sparseimage",
				".sparsebundle",
			},
		},
		Tiers: TiersServerConfig{
			PrimaryName:   "Local",
			SecondaryName: "Attached",
		},
		Metrics: MetricsServerConfig{
			Enabled: false,
			Address: "127.0.0.1:9470",
			Path:    "/metrics",
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.name", defaults.Log.Name)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)
	viper.SetDefault("metadata.sqlite.log_level", defaults.Metadata.SQLite.LogLevel)

	viper.SetDefault("scan.source", defaults.Scan.Source)
	viper.SetDefault("scan.file", defaults.Scan.File)
	viper.SetDefault("scan.scan_on_start", defaults.Scan.ScanOnStart)
	viper.SetDefault("scan.volume_roots", defaults.Scan.VolumeRoots)
	viper.SetDefault("scan.excluded_prefixes", defaults.Scan.ExcludedPrefixes)
	viper.SetDefault("scan.image_extensions", defaults.Scan.ImageExtensions)

	viper.SetDefault("tiers.primary_name", defaults.Tiers.PrimaryName)
	viper.SetDefault("tiers.secondary_name", defaults.Tiers.SecondaryName)
	viper.SetDefault("tiers.extra", defaults.Tiers.Extra)

	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	viper.SetDefault("metrics.address", defaults.Metrics.Address)
	viper.SetDefault("metrics.path", defaults.Metrics.Path)
}
