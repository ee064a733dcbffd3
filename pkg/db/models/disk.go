package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/tierd/pkg/capacity"
	"gorm.io/gorm"
)

// UnknownName is used for disks whose volume reported no name.
const UnknownName = "Unknown"

// Disk is one mounted storage volume as classified and tracked by tierd.
// URL is the natural key used for deduplication across scans.
type Disk struct {
	ID   string `gorm:"primaryKey;type:text"`
	URL  string `gorm:"type:text;not null;uniqueIndex"`
	Name string `gorm:"type:text;not null"`

	AvailableCapacity int64 `gorm:"not null;default:0"`
	TotalCapacity     int64 `gorm:"not null;default:0"`
	UsedCapacity      int64 `gorm:"not null;default:0"`

	IsEjectable bool `gorm:"not null;default:false"`
	IsLocal     bool `gorm:"not null;default:false"`
	IsRemovable bool `gorm:"not null;default:false"`

	Type        StorageType  `gorm:"embedded;embeddedPrefix:type_"`
	Credentials *Credentials `gorm:"type:text;serializer:json"`

	// TierID is nil while the disk belongs to no tier.
	TierID *string `gorm:"type:text;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Disk) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d *Disk) FormattedAvailableCapacity() string {
	return capacity.FormatBytes(d.AvailableCapacity)
}

func (d *Disk) FormattedTotalCapacity() string {
	return capacity.FormatBytes(d.TotalCapacity)
}

func (d *Disk) FormattedUsedCapacity() string {
	return capacity.FormatBytes(d.UsedCapacity)
}

// PercentageUsed is derived from the stored integers; ok is false when the
// total capacity is unknown.
func (d *Disk) PercentageUsed() (percent float64, ok bool) {
	return capacity.Percentage(d.UsedCapacity, d.TotalCapacity)
}

func (d *Disk) FormattedPercentageUsed() string {
	return capacity.FormatPercentage(d.UsedCapacity, d.TotalCapacity)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
