package server

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	config "github.com/mwantia/tierd/internal/config/server"
	"github.com/mwantia/tierd/pkg/db/store"
)

func NewDatabaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the metadata database",
		Long:  "Apply, inspect or roll back the versioned schema migrations of the metadata database.",
	}

	cmd.AddCommand(newDatabaseMigrateCommand())
	cmd.AddCommand(newDatabaseStatusCommand())
	cmd.AddCommand(newDatabaseRollbackCommand())

	return cmd
}

func newDatabaseMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.MetadataStore) error {
				if err := st.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}
}

func newDatabaseStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.MetadataStore) error {
				statuses, err := st.Migrations().Status(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tDESCRIPTION\tSTATE")
				for _, status := range statuses {
					state := "pending"
					if status.Applied {
						state = "applied"
					}
					fmt.Fprintf(w, "%d\t%s\t%s\n", status.Version, status.Description, state)
				}
				return w.Flush()
			})
		},
	}
}

func newDatabaseRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.MetadataStore) error {
				if err := st.Migrations().Rollback(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rolled back last migration")
				return nil
			})
		},
	}
}

// withStore connects to the configured store without running migrations.
func withStore(ctx context.Context, fn func(ctx context.Context, st store.MetadataStore) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	st, err := store.NewMetadataStore(cfg.Metadata)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect metadata store: %w", err)
	}
	return fn(ctx, st)
}
