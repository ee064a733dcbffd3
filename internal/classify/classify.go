// Package classify maps a raw volume descriptor to a storage type.
//
// The policy is a best-effort heuristic and expected to change; it lives here
// on its own so it can be refined without touching tier assignment.
package classify

import (
	"strings"

	"github.com/mwantia/tierd/internal/volume"
	"github.com/mwantia/tierd/pkg/db/models"
)

// Classify is total and deterministic. The first matching rule wins:
//
//  1. local flag absent: unknown
//  2. not local: smb:// or afp:// path or "network" type is remote(sftp),
//     "icloud" or "cloud" type is cloud(dropbox), anything else remote(sftp)
//  3. local and removable or ejectable: "usb" type is external(usb),
//     "ssd" or "thunderbolt" is external(ssd), anything else external(hdd)
//  4. local: local
func Classify(d *volume.Descriptor) models.StorageType {
	if d == nil || d.IsLocal == nil {
		return models.Unknown()
	}

	typeName := strings.ToLower(value(d.TypeName))

	if !*d.IsLocal {
		path := strings.ToLower(value(d.Path))
		switch {
		case strings.Contains(path, "smb://"),
			strings.Contains(path, "afp://"),
			strings.Contains(typeName, "network"):
			return models.Remote(models.RemoteSFTP)
		case strings.Contains(typeName, "icloud"),
			strings.Contains(typeName, "cloud"):
			return models.Cloud(models.CloudDropbox)
		}
		return models.Remote(models.RemoteSFTP)
	}

	if flag(d.IsRemovable) || flag(d.IsEjectable) {
		switch {
		case strings.Contains(typeName, "usb"):
			return models.External(models.ExternalUSB)
		case strings.Contains(typeName, "ssd"),
			strings.Contains(typeName, "thunderbolt"):
			return models.External(models.ExternalSSD)
		}
		return models.External(models.ExternalHDD)
	}

	return models.Local()
}

// Fallback reports whether the classification came from a default branch
// rather than a positive signal. It is informational only.
func Fallback(d *volume.Descriptor, st models.StorageType) bool {
	switch {
	case st.Kind == models.KindUnknown:
		return true
	case st == models.External(models.ExternalHDD):
		return true
	case st == models.Remote(models.RemoteSFTP):
		path := strings.ToLower(value(d.Path))
		typeName := strings.ToLower(value(d.TypeName))
		return !strings.Contains(path, "smb://") &&
			!strings.Contains(path, "afp://") &&
			!strings.Contains(typeName, "network")
	}
	return false
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func flag(b *bool) bool {
	return b != nil && *b
}
