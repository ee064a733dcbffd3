package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Canonical tier levels. Root filesystems land in TierPrimary, every other
// accepted volume in TierSecondary.
const (
	TierPrimary   = 1
	TierSecondary = 2
)

// Tier is an ordered priority class of storage; a lower level is preferred.
type Tier struct {
	ID    string  `gorm:"primaryKey;type:text"`
	Level int     `gorm:"uniqueIndex;not null"`
	Name  *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Disks []Disk `gorm:"foreignKey:TierID;constraint:OnDelete:CASCADE"`
}

func (t *Tier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// DisplayName falls back to "Tier <level>" for unnamed tiers.
func (t *Tier) DisplayName() string {
	if t.Name != nil && *t.Name != "" {
		return *t.Name
	}
	return "Tier " + itoa(t.Level)
}

// HasDisk reports whether a disk with the same url is already a member.
func (t *Tier) HasDisk(disk *Disk) bool {
	for i := range t.Disks {
		if t.Disks[i].URL == disk.URL {
			return true
		}
	}
	return false
}

// AddUniqueDisk appends disk unless a member with the same url exists and
// reports whether it was added.
func (t *Tier) AddUniqueDisk(disk *Disk) bool {
	if t.HasDisk(disk) {
		return false
	}
	t.Disks = append(t.Disks, *disk)
	return true
}

// RemoveDisk drops the member with the given id.
func (t *Tier) RemoveDisk(id string) {
	kept := t.Disks[:0]
	for _, disk := range t.Disks {
		if disk.ID != id {
			kept = append(kept, disk)
		}
	}
	t.Disks = kept
}
