package store

import (
	"context"
	"errors"

	"github.com/mwantia/tierd/pkg/db/migrations"
	"github.com/mwantia/tierd/pkg/db/models"
)

// ErrNotFound is returned (wrapped) by lookups and deletes that match nothing.
var ErrNotFound = errors.New("record not found")

// MetadataStore is the tier repository. Implementations enforce unique tier
// levels and disk urls, cascade tier deletion to member disks, and leave the
// tier untouched when a single disk is removed.
type MetadataStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Migrations() *migrations.Migrator
	Health(ctx context.Context) error

	// Transaction runs fn against a store bound to a single transaction.
	// Calling Transaction again on that store opens a savepoint, so a failed
	// inner call only rolls back its own writes.
	Transaction(ctx context.Context, fn func(tx MetadataStore) error) error

	// Tier operations
	CreateTier(ctx context.Context, tier *models.Tier) error
	EnsureTier(ctx context.Context, level int, name string) (*models.Tier, error)
	GetTier(ctx context.Context, id string) (*models.Tier, error)
	GetTierByLevel(ctx context.Context, level int) (*models.Tier, error)
	ListTiers(ctx context.Context) ([]models.Tier, error)
	DeleteTier(ctx context.Context, id string) error

	// Disk operations
	CreateDisk(ctx context.Context, disk *models.Disk) error
	GetDisk(ctx context.Context, id string) (*models.Disk, error)
	GetDiskByURL(ctx context.Context, url string) (*models.Disk, error)
	ListDisks(ctx context.Context) ([]models.Disk, error)
	ListDiskURLs(ctx context.Context) ([]string, error)
	MoveDisk(ctx context.Context, id string, tierID *string) error
	UpdateDiskCredentials(ctx context.Context, id string, credentials *models.Credentials) error
	DeleteDisk(ctx context.Context, id string) error
}
