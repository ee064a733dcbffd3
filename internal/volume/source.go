package volume

import (
	"fmt"

	config "github.com/mwantia/tierd/internal/config/server"
)

// NewSource creates the source selected by scan.source.
func NewSource(cfg config.ScanServerConfig) (Source, error) {
	switch cfg.Source {
	case "mountinfo":
		return NewMountInfoSource(), nil
	case "file":
		if cfg.File == "" {
			return nil, fmt.Errorf("scan.file is required for the file source")
		}
		return NewFileSource(cfg.File), nil
	}
	return nil, fmt.Errorf("unsupported scan source '%s'", cfg.Source)
}
