package client

import (
	"context"
	"errors"
	"fmt"

	config "github.com/mwantia/tierd/internal/config/server"
	"github.com/mwantia/tierd/pkg/db/models"
	"github.com/mwantia/tierd/pkg/db/store"
)

// openStore loads the configuration and returns a migrated metadata store.
func openStore(ctx context.Context) (*config.BaseServerConfig, store.MetadataStore, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load server configuration: %w", err)
	}

	st, err := store.NewMetadataStore(cfg.Metadata)
	if err != nil {
		return nil, nil, err
	}

	if err := st.Connect(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to connect metadata store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to migrate metadata store: %w", err)
	}

	return cfg, st, nil
}

// findDisk resolves a disk by id first and by url second.
func findDisk(ctx context.Context, st store.MetadataStore, ref string) (*models.Disk, error) {
	disk, err := st.GetDisk(ctx, ref)
	if err == nil {
		return disk, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	disk, err = st.GetDiskByURL(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no disk with id or url '%s'", ref)
	}
	return disk, err
}

func contextOf(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
