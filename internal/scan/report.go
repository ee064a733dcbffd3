package scan

import (
	"time"

	"github.com/mwantia/tierd/internal/volume"
	"github.com/mwantia/tierd/pkg/db/models"
)

// Report summarizes one scan.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Enumerated int
	Excluded   []ExcludedVolume
	Skipped    []string
	Added      []AddedDisk
	Failures   []error
}

type ExcludedVolume struct {
	Path   string
	Reason volume.Exclusion
}

type AddedDisk struct {
	ID        string
	URL       string
	Name      string
	Type      models.StorageType
	Level     int
	Defaulted []Field
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
