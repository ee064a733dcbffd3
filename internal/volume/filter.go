package volume

import (
	"path/filepath"
	"strings"

	config "github.com/mwantia/tierd/internal/config/server"
)

// Exclusion names the rule that dropped a volume.
type Exclusion string

const (
	NotExcluded         Exclusion = ""
	ExcludedNoCapacity  Exclusion = "no capacity"
	ExcludedSystem      Exclusion = "system volume"
	ExcludedDiskImage   Exclusion = "disk image"
	ExcludedOutsideRoot Exclusion = "outside volume roots"
)

// Filter decides which volumes never reach classification.
type Filter struct {
	volumeRoots      []string
	excludedPrefixes []string
	imageExtensions  []string
}

func NewFilter(cfg config.ScanServerConfig) *Filter {
	f := &Filter{}
	for _, root := range cfg.VolumeRoots {
		f.volumeRoots = append(f.volumeRoots, cleanPath(root))
	}
	for _, prefix := range cfg.ExcludedPrefixes {
		f.excludedPrefixes = append(f.excludedPrefixes, cleanPath(prefix))
	}
	for _, ext := range cfg.ImageExtensions {
		f.imageExtensions = append(f.imageExtensions, strings.ToLower(ext))
	}
	return f
}

// Check returns the first exclusion rule matching the descriptor, in this
// order: missing capacity, system prefix, disk image name, outside roots.
func (f *Filter) Check(d *Descriptor) Exclusion {
	if d.AvailableCapacity == nil && d.TotalCapacity == nil {
		return ExcludedNoCapacity
	}

	path := cleanPath(d.PathOrEmpty())
	for _, prefix := range f.excludedPrefixes {
		if hasPathPrefix(path, prefix) {
			return ExcludedSystem
		}
	}

	name := strings.ToLower(d.NameOrEmpty())
	for _, ext := range f.imageExtensions {
		if strings.Contains(name, ext) {
			return ExcludedDiskImage
		}
	}

	if d.RootFileSystem() || path == "/" {
		return NotExcluded
	}
	for _, root := range f.volumeRoots {
		if path != root && hasPathPrefix(path, root) {
			return NotExcluded
		}
	}
	return ExcludedOutsideRoot
}

// cleanPath normalizes filesystem paths and leaves urls such as smb://host
// untouched.
func cleanPath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return path
	}
	return filepath.Clean(path)
}

func hasPathPrefix(path, prefix string) bool {
	if prefix == "" || path == "" {
		return false
	}
	if prefix == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
