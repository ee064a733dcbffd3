package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwantia/tierd/pkg/capacity"
	"github.com/mwantia/tierd/pkg/db/models"
)

func NewTiersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Manage storage tiers",
		Long:  "List storage tiers with their disks and capacity, or remove a tier together with its disks.",
	}

	cmd.AddCommand(NewTiersListCommand())
	cmd.AddCommand(NewTiersRemoveCommand())

	return cmd
}

func NewTiersListCommand() *cobra.Command {
	var humanReadable bool
	var longFormat bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List storage tiers",
		Long:  "List all tiers ordered by level. The long format also lists the member disks of every tier.",
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

			if asJSON {
				return writeTiersJSON(cmd.OutOrStdout(), tiers)
			}
			return writeTiers(cmd.OutOrStdout(), tiers, humanReadable, longFormat)
		},
	}

	cmd.Flags().BoolVarP(&humanReadable, "human", "H", false, "Enable human-readable format")
	cmd.Flags().BoolVarP(&longFormat, "long", "l", false, "Display long format")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tiers as JSON")

	return cmd
}

func NewTiersRemoveCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "rm <level>",
		Short: "Remove a storage tier",
		Long:  "Removes the tier with the given level and every disk assigned to it (needs confirmation).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid tier level '%s'", args[0])
			}
			if !confirm {
				return fmt.Errorf("removing tier %d deletes all of its disks, use --confirm to proceed", level)
			}

			ctx := contextOf(cmd.Context())

			_, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			tier, err := st.GetTierByLevel(ctx, level)
			if err != nil {
				return err
			}
			if err := st.DeleteTier(ctx, tier.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed tier %d (%s) and %d disks\n", level, tier.DisplayName(), len(tier.Disks))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirm, "confirm", "c", false, "Confirms the deletion of a tier")

	return cmd
}

func writeTiers(out io.Writer, tiers []models.Tier, humanReadable, longFormat bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tNAME\tDISKS\tTOTAL\tUSED\tUSE%")

	for _, tier := range tiers {
		var total, used int64
		for _, disk := range tier.Disks {
			total += disk.TotalCapacity
			used += disk.UsedCapacity
		}

		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			tier.Level, tier.DisplayName(), len(tier.Disks),
			formatSize(total, humanReadable), formatSize(used, humanReadable),
			capacity.FormatPercentage(used, total))

		if longFormat {
			for _, disk := range tier.Disks {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
					disk.URL, disk.Name, disk.Type,
					formatSize(disk.TotalCapacity, humanReadable), formatSize(disk.UsedCapacity, humanReadable),
					disk.FormattedPercentageUsed())
			}
		}
	}

	return w.Flush()
}

func formatSize(bytes int64, humanReadable bool) string {
	if humanReadable {
		return capacity.FormatBytes(bytes)
	}
	return strconv.FormatInt(bytes, 10)
}

type tierView struct {
	ID    string     `json:"id"`
	Level int        `json:"level"`
	Name  string     `json:"name"`
	Disks []diskView `json:"disks"`
}

type diskView struct {
	ID                string              `json:"id"`
	URL               string              `json:"url"`
	Name              string              `json:"name"`
	Type              models.StorageType  `json:"type"`
	AvailableCapacity int64               `json:"availableCapacity"`
	TotalCapacity     int64               `json:"totalCapacity"`
	UsedCapacity      int64               `json:"usedCapacity"`
	PercentageUsed    string              `json:"percentageUsed"`
	IsEjectable       bool                `json:"isEjectable"`
	IsLocal           bool                `json:"isLocal"`
	IsRemovable       bool                `json:"isRemovable"`
	Credentials       *models.Credentials `json:"credentials,omitempty"`
}

func newDiskView(disk models.Disk) diskView {
	return diskView{
		ID:                disk.ID,
		URL:               disk.URL,
		Name:              disk.Name,
		Type:              disk.Type,
		AvailableCapacity: disk.AvailableCapacity,
		TotalCapacity:     disk.TotalCapacity,
		UsedCapacity:      disk.UsedCapacity,
		PercentageUsed:    disk.FormattedPercentageUsed(),
		IsEjectable:       disk.IsEjectable,
		IsLocal:           disk.IsLocal,
		IsRemovable:       disk.IsRemovable,
		Credentials:       disk.Credentials,
	}
}

func writeTiersJSON(out io.Writer, tiers []models.Tier) error {
	views := make([]tierView, 0, len(tiers))
	for _, tier := range tiers {
		view := tierView{
			ID:    tier.ID,
			Level: tier.Level,
			Name:  tier.DisplayName(),
			Disks: make([]diskView, 0, len(tier.Disks)),
		}
		for _, disk := range tier.Disks {
			view.Disks = append(view.Disks, newDiskView(disk))
		}
		views = append(views, view)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(views)
}
