package client

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwantia/tierd/pkg/db/models"
)

func NewDisksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disks",
		Short: "Manage known disks",
		Long:  "List, remove or move known disks and attach connection credentials to them.",
	}

	cmd.AddCommand(NewDisksListCommand())
	cmd.AddCommand(NewDisksRemoveCommand())
	cmd.AddCommand(NewDisksMoveCommand())
	cmd.AddCommand(NewDisksCredentialsCommand())

	return cmd
}

func NewDisksListCommand() *cobra.Command {
	var humanReadable bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List known disks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd.Context())

			_, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			tiers, err := st.ListTiers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list tiers: %w", err)
			}
			levels := make(map[string]int, len(tiers))
			for _, tier := range tiers {
				levels[tier.ID] = tier.Level
			}

			disks, err := st.ListDisks(ctx)
			if err != nil {
				return fmt.Errorf("failed to list disks: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tURL\tNAME\tTYPE\tTIER\tTOTAL\tAVAILABLE\tUSE%\tCREDS")
			for _, disk := range disks {
				tier := "-"
				if disk.TierID != nil {
					tier = strconv.Itoa(levels[*disk.TierID])
				}
				creds := "-"
				if disk.Credentials != nil {
					creds = string(disk.Credentials.Kind)
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					disk.ID, disk.URL, disk.Name, disk.Type, tier,
					formatSize(disk.TotalCapacity, humanReadable),
					formatSize(disk.AvailableCapacity, humanReadable),
					disk.FormattedPercentageUsed(), creds)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&humanReadable, "human", "H", false, "Enable human-readable format")

	return cmd
}

func NewDisksRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id|url>",
		Short: "Remove a known disk",
		Long:  "Removes a single disk. Its tier is kept; the disk is added again by the next scan if it is still mounted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd.Context())

			_, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			disk, err := findDisk(ctx, st, args[0])
			if err != nil {
				return err
			}
			if err := st.DeleteDisk(ctx, disk.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed disk %s\n", disk.URL)
			return nil
		},
	}

	return cmd
}

func NewDisksMoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <id|url> <level>",
		Short: "Move a disk to another tier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid tier level '%s'", args[1])
			}

			ctx := contextOf(cmd.Context())

			_, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			disk, err := findDisk(ctx, st, args[0])
			if err != nil {
				return err
			}
			tier, err := st.GetTierByLevel(ctx, level)
			if err != nil {
				return err
			}
			if err := st.MoveDisk(ctx, disk.ID, &tier.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved disk %s to tier %d (%s)\n", disk.URL, tier.Level, tier.DisplayName())
			return nil
		},
	}

	return cmd
}

func NewDisksCredentialsCommand() *cobra.Command {
	var file string
	var clearCreds bool

	cmd := &cobra.Command{
		Use:   "creds <id|url>",
		Short: "Set or clear disk credentials",
		Long: `Attaches connection credentials to a disk or removes them.

The file holds a JSON document of the form {"type": "s3", "config": {...}}
with the S3 or SFTP configuration. Credentials are stored as inert data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == !clearCreds {
				return fmt.Errorf("exactly one of --file or --clear is required")
			}

			var credentials *models.Credentials
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read credentials file: %w", err)
				}
				credentials = &models.Credentials{}
				if err := json.Unmarshal(data, credentials); err != nil {
					return fmt.Errorf("failed to decode credentials: %w", err)
				}
			}

			ctx := contextOf(cmd.Context())

			_, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			disk, err := findDisk(ctx, st, args[0])
			if err != nil {
				return err
			}
			if err := st.UpdateDiskCredentials(ctx, disk.ID, credentials); err != nil {
				return err
			}

			if credentials == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared credentials of disk %s\n", disk.URL)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s credentials for disk %s\n", credentials.Kind, disk.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON credentials file")
	cmd.Flags().BoolVar(&clearCreds, "clear", false, "remove stored credentials")

	return cmd
}
