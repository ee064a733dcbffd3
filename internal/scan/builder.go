package scan

import (
	"github.com/mwantia/tierd/internal/volume"
	"github.com/mwantia/tierd/pkg/capacity"
	"github.com/mwantia/tierd/pkg/db/models"
)

// Field names a descriptor field that was absent and replaced by its default.
type Field string

const (
	FieldName              Field = "name"
	FieldURL               Field = "url"
	FieldAvailableCapacity Field = "availableCapacity"
	FieldTotalCapacity     Field = "totalCapacity"
	FieldIsEjectable       Field = "isEjectable"
	FieldIsLocal           Field = "isLocal"
	FieldIsRemovable       Field = "isRemovable"
	FieldRootFileSystem    Field = "rootFileSystem"
)

// UnknownURL is stored for volumes that reported no path.
const UnknownURL = "Unknown"

// Record is a fully populated disk plus what the builder had to assume.
type Record struct {
	Disk           models.Disk
	RootFileSystem bool
	Usage          capacity.Usage
	Defaulted      []Field
}

// Build converts a raw descriptor into a disk value. It has no side effects
// and only fails when the descriptor itself is absent.
func Build(d *volume.Descriptor, st models.StorageType, usage capacity.Usage) (Record, error) {
	if d == nil {
		return Record{}, ErrNoDescriptor
	}

	record := Record{Usage: usage}

	name := stringOr(d.Name, models.UnknownName, FieldName, &record.Defaulted)
	url := stringOr(d.Path, UnknownURL, FieldURL, &record.Defaulted)

	if d.AvailableCapacity == nil {
		record.Defaulted = append(record.Defaulted, FieldAvailableCapacity)
	}
	if d.TotalCapacity == nil {
		record.Defaulted = append(record.Defaulted, FieldTotalCapacity)
	}

	if !st.Valid() {
		st = models.Unknown()
	}

	record.Disk = models.Disk{
		Name:              name,
		URL:               url,
		AvailableCapacity: usage.Available,
		TotalCapacity:     usage.Total,
		UsedCapacity:      usage.Used,
		IsEjectable:       boolOr(d.IsEjectable, FieldIsEjectable, &record.Defaulted),
		IsLocal:           boolOr(d.IsLocal, FieldIsLocal, &record.Defaulted),
		IsRemovable:       boolOr(d.IsRemovable, FieldIsRemovable, &record.Defaulted),
		Type:              st,
	}
	record.RootFileSystem = boolOr(d.IsRootFileSystem, FieldRootFileSystem, &record.Defaulted)

	return record, nil
}

func stringOr(value *string, fallback string, field Field, defaulted *[]Field) string {
	if value == nil {
		*defaulted = append(*defaulted, field)
		return fallback
	}
	return *value
}

func boolOr(value *bool, field Field, defaulted *[]Field) bool {
	if value == nil {
		*defaulted = append(*defaulted, field)
		return false
	}
	return *value
}
