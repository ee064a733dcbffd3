package server

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig() returned error: %v", err)
	}

	if cfg.Metadata.Type != "sqlite" {
		t.Errorf("Metadata.Type = %q, expected sqlite", cfg.Metadata.Type)
	}
	if cfg.Scan.Source != "mountinfo" {
		t.Errorf("Scan.Source = %q, expected mountinfo", cfg.Scan.Source)
	}
	if len(cfg.Scan.VolumeRoots) == 0 {
		t.Error("Scan.VolumeRoots should not be empty")
	}
	if cfg.Tiers.PrimaryName != "Local" {
		t.Errorf("Tiers.PrimaryName = %q, expected Local", cfg.Tiers.PrimaryName)
	}
	if cfg.Log.Rotation.MaxSize != 128 {
		t.Errorf("Log.Rotation.MaxSize = %d, expected 128", cfg.Log.Rotation.MaxSize)
	}
}

func TestLoadServerConfigOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("scan.source", "file")
	viper.Set("scan.file", "/tmp/volumes.yaml")
	viper.Set("metadata.sqlite.path", "/var/lib/tierd/tierd.db")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig() returned error: %v", err)
	}

	if cfg.Scan.File != "/tmp/volumes.yaml" {
		t.Errorf("Scan.File = %q", cfg.Scan.File)
	}
	if cfg.Metadata.SQLite.Path != "/var/lib/tierd/tierd.db" {
		t.Errorf("Metadata.SQLite.Path = %q", cfg.Metadata.SQLite.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *BaseServerConfig)
		wantErr bool
	}{
		{"defaults", func(cfg *BaseServerConfig) {}, false},
		{"unknown metadata type", func(cfg *BaseServerConfig) { cfg.Metadata.Type = "postgres" }, true},
		{"empty sqlite path", func(cfg *BaseServerConfig) { cfg.Metadata.SQLite.Path = "" }, true},
		{"file source without file", func(cfg *BaseServerConfig) { cfg.Scan.Source = "file" }, true},
		{"unknown source", func(cfg *BaseServerConfig) { cfg.Scan.Source = "diskutil" }, true},
		{"extra tier collides with canonical", func(cfg *BaseServerConfig) {
			cfg.Tiers.Extra = []TierEntryConfig{{Level: 2, Name: "Other"}}
		}, true},
		{"extra tier duplicated", func(cfg *BaseServerConfig) {
			cfg.Tiers.Extra = []TierEntryConfig{{Level: 3}, {Level: 3}}
		}, true},
		{"extra tier non-positive", func(cfg *BaseServerConfig) {
			cfg.Tiers.Extra = []TierEntryConfig{{Level: 0}}
		}, true},
		{"extra tier", func(cfg *BaseServerConfig) {
			cfg.Tiers.Extra = []TierEntryConfig{{Level: 3, Name: "Cloud"}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetServerDefault()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
