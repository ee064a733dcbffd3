package volume

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource reads raw descriptors from a YAML document:
//
//	volumes:
//	  - name: Backup
//	    path: /Volumes/Backup
//	    available_capacity: 50000000000
//	    total_capacity: 250000000000
//	    type_name: USB External
//	    local: true
//	    removable: true
//
// An entry with an "error" key is reported as an unreadable volume.
type FileSource struct {
	path string
}

type fileDocument struct {
	Volumes []fileVolume `yaml:"volumes"`
}

type fileVolume struct {
	Descriptor `yaml:",inline"`
	Error      string `yaml:"error"`
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (fs *FileSource) Enumerate(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read volume file '%s': %w", fs.path, err)
	}

	return ParseDescriptors(data)
}

// ParseDescriptors decodes the YAML volume document used by FileSource.
func ParseDescriptors(data []byte) ([]Entry, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode volume document: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Volumes))
	for i := range doc.Volumes {
		volume := doc.Volumes[i]
		descriptor := volume.Descriptor

		entry := Entry{
			MountPoint: descriptor.PathOrEmpty(),
			Descriptor: &descriptor,
		}
		if volume.Error != "" {
			entry.Descriptor = nil
			entry.Err = errors.New(volume.Error)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
