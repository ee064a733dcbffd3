// Package volume enumerates mounted volumes and drops the ones tierd never
// classifies.
package volume

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by sources that cannot run on this platform.
var ErrUnsupported = errors.New("volume enumeration is not supported on this platform")

// Descriptor is the raw, possibly incomplete metadata of one mounted
// filesystem. Every field may be absent.
type Descriptor struct {
	Name              *string `yaml:"name"`
	Path              *string `yaml:"path"`
	AvailableCapacity *int64  `yaml:"available_capacity"`
	TotalCapacity     *int64  `yaml:"total_capacity"`
	TypeName          *string `yaml:"type_name"`
	Subtype           *string `yaml:"subtype"`
	IsEjectable       *bool   `yaml:"ejectable"`
	IsLocal           *bool   `yaml:"local"`
	IsRemovable       *bool   `yaml:"removable"`
	IsRootFileSystem  *bool   `yaml:"root_filesystem"`
}

// Entry is one enumerated mount point. Err is set when the metadata of this
// single volume could not be read; the remaining entries are still usable.
type Entry struct {
	MountPoint string
	Descriptor *Descriptor
	Err        error
}

// Source enumerates mounted volumes. An error means the listing itself
// failed and no entry can be trusted.
type Source interface {
	Enumerate(ctx context.Context) ([]Entry, error)
}

// PathOrEmpty returns the descriptor path or "".
func (d *Descriptor) PathOrEmpty() string {
	return stringOrEmpty(d.Path)
}

// NameOrEmpty returns the descriptor name or "".
func (d *Descriptor) NameOrEmpty() string {
	return stringOrEmpty(d.Name)
}

// RootFileSystem reports whether the descriptor is flagged as root
// filesystem. An absent flag counts as false.
func (d *Descriptor) RootFileSystem() bool {
	return d.IsRootFileSystem != nil && *d.IsRootFileSystem
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func String(s string) *string {
	return &s
}

func Int64(i int64) *int64 {
	return &i
}

func Bool(b bool) *bool {
	return &b
}
