package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	config "github.com/mwantia/tierd/internal/config/server"
	"github.com/mwantia/tierd/pkg/db/migrations"
	"github.com/mwantia/tierd/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// NewMetadataStore creates the store selected by the metadata configuration.
func NewMetadataStore(cfg config.MetadataServerConfig) (MetadataStore, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLiteStore(SQLiteConfig{
			Path:     cfg.SQLite.Path,
			LogLevel: parseLogLevel(cfg.SQLite.LogLevel),
		})
	}
	return nil, fmt.Errorf("unsupported metadata type '%s'", cfg.Type)
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(dsn(cfg.Path)), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// dsn enables foreign keys so tier deletion cascades at the database level.
func dsn(path string) string {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + "_pragma=foreign_keys(1)"
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logger.Error
	case "warn", "warning":
		return logger.Warn
	case "info", "debug":
		return logger.Info
	}
	return logger.Silent
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate applies all pending versioned migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return s.Migrations().Migrate(ctx)
}

func (s *SQLiteStore) Migrations() *migrations.Migrator {
	return migrations.NewMigrator(s.db)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Transaction(ctx context.Context, fn func(tx MetadataStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SQLiteStore{db: tx, path: s.path})
	})
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return err
}

// Tier operations

func (s *SQLiteStore) CreateTier(ctx context.Context, tier *models.Tier) error {
	return s.db.WithContext(ctx).Omit("Disks").Create(tier).Error
}

// EnsureTier returns the tier with the given level and creates it if absent.
// A non-empty name replaces the stored one.
func (s *SQLiteStore) EnsureTier(ctx context.Context, level int, name string) (*models.Tier, error) {
	var tier models.Tier
	err := s.db.WithContext(ctx).Where("level = ?", level).First(&tier).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		tier = models.Tier{Level: level}
		if name != "" {
			tier.Name = &name
		}
		if err := s.CreateTier(ctx, &tier); err != nil {
			return nil, fmt.Errorf("failed to create tier %d: %w", level, err)
		}
		return &tier, nil
	case err != nil:
		return nil, err
	}

	if name != "" && (tier.Name == nil || *tier.Name != name) {
		if err := s.db.WithContext(ctx).Model(&tier).Update("name", name).Error; err != nil {
			return nil, fmt.Errorf("failed to rename tier %d: %w", level, err)
		}
		tier.Name = &name
	}
	return &tier, nil
}

func (s *SQLiteStore) GetTier(ctx context.Context, id string) (*models.Tier, error) {
	var tier models.Tier
	err := s.db.WithContext(ctx).Preload("Disks").Where("id = ?", id).First(&tier).Error
	if err != nil {
		return nil, notFound(err, "tier '%s'", id)
	}
	return &tier, nil
}

func (s *SQLiteStore) GetTierByLevel(ctx context.Context, level int) (*models.Tier, error) {
	var tier models.Tier
	err := s.db.WithContext(ctx).Preload("Disks").Where("level = ?", level).First(&tier).Error
	if err != nil {
		return nil, notFound(err, "tier level %d", level)
	}
	return &tier, nil
}

// ListTiers returns all tiers sorted by level with their disks preloaded.
func (s *SQLiteStore) ListTiers(ctx context.Context) ([]models.Tier, error) {
	var tiers []models.Tier
	err := s.db.WithContext(ctx).
		Preload("Disks", func(db *gorm.DB) *gorm.DB {
			return db.Order("url ASC")
		}).
		Order("level ASC").
		Find(&tiers).Error
	return tiers, err
}

// DeleteTier removes the tier and every disk it owns.
func (s *SQLiteStore) DeleteTier(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tier_id = ?", id).Delete(&models.Disk{}).Error; err != nil {
			return fmt.Errorf("failed to delete disks of tier '%s': %w", id, err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Tier{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("tier '%s': %w", id, ErrNotFound)
		}
		return nil
	})
}

// Disk operations

func (s *SQLiteStore) CreateDisk(ctx context.Context, disk *models.Disk) error {
	return s.db.WithContext(ctx).Create(disk).Error
}

func (s *SQLiteStore) GetDisk(ctx context.Context, id string) (*models.Disk, error) {
	var disk models.Disk
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&disk).Error
	if err != nil {
		return nil, notFound(err, "disk '%s'", id)
	}
	return &disk, nil
}

func (s *SQLiteStore) GetDiskByURL(ctx context.Context, url string) (*models.Disk, error) {
	var disk models.Disk
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&disk).Error
	if err != nil {
		return nil, notFound(err, "disk '%s'", url)
	}
	return &disk, nil
}

func (s *SQLiteStore) ListDisks(ctx context.Context) ([]models.Disk, error) {
	var disks []models.Disk
	err := s.db.WithContext(ctx).Order("url ASC").Find(&disks).Error
	return disks, err
}

func (s *SQLiteStore) ListDiskURLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := s.db.WithContext(ctx).Model(&models.Disk{}).Pluck("url", &urls).Error
	return urls, err
}

// MoveDisk assigns the disk to another tier; a nil tierID detaches it.
func (s *SQLiteStore) MoveDisk(ctx context.Context, id string, tierID *string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tierID != nil {
			var count int64
			if err := tx.Model(&models.Tier{}).Where("id = ?", *tierID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("tier '%s': %w", *tierID, ErrNotFound)
			}
		}

		result := tx.Model(&models.Disk{}).Where("id = ?", id).Update("tier_id", tierID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("disk '%s': %w", id, ErrNotFound)
		}
		return nil
	})
}

// UpdateDiskCredentials replaces the stored credentials; nil clears them.
func (s *SQLiteStore) UpdateDiskCredentials(ctx context.Context, id string, credentials *models.Credentials) error {
	result := s.db.WithContext(ctx).
		Model(&models.Disk{ID: id}).
		Select("Credentials").
		Updates(&models.Disk{Credentials: credentials})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("disk '%s': %w", id, ErrNotFound)
	}
	return nil
}

// DeleteDisk removes a single disk; its tier is left in place.
func (s *SQLiteStore) DeleteDisk(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Disk{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("disk '%s': %w", id, ErrNotFound)
	}
	return nil
}
