package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwantia/tierd/internal/scan"
	"github.com/mwantia/tierd/internal/volume"
	"github.com/mwantia/tierd/pkg/log"
)

func NewScanCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan mounted volumes once",
		Long: `Enumerate mounted volumes, classify them and add every new disk to its tier.

Disks already known by url are skipped. With --from the volumes are read from
a YAML descriptor file instead of the operating system.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd.Context())

			cfg, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if from != "" {
				cfg.Scan.Source = "file"
				cfg.Scan.File = from
			}

			source, err := volume.NewSource(cfg.Scan)
			if err != nil {
				return err
			}

			logger := log.NewLoggerService(cfg.Log.Name, cfg.Log).Named("scanner")
			scanner := scan.NewScanner(source, st, volume.NewFilter(cfg.Scan), cfg.Tiers, logger)

			report, err := scanner.Scan(ctx)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "read volume descriptors from a YAML file")

	return cmd
}

func printReport(w io.Writer, report *scan.Report) {
	fmt.Fprintf(w, "Scanned %d volumes in %s\n", report.Enumerated, report.Duration())

	for _, added := range report.Added {
		fmt.Fprintf(w, "  + %s (%s) -> tier %d [%s]\n", added.URL, added.Type, added.Level, added.Name)
		if len(added.Defaulted) > 0 {
			fields := make([]string, 0, len(added.Defaulted))
			for _, field := range added.Defaulted {
				fields = append(fields, string(field))
			}
			fmt.Fprintf(w, "      defaulted: %s\n", strings.Join(fields, ", "))
		}
	}
	for _, url := range report.Skipped {
		fmt.Fprintf(w, "  = %s (already known)\n", url)
	}
	for _, excluded := range report.Excluded {
		fmt.Fprintf(w, "  - %s (%s)\n", excluded.Path, excluded.Reason)
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(w, "  ! %v\n", failure)
	}

	fmt.Fprintf(w, "%d added, %d skipped, %d excluded, %d failed\n",
		len(report.Added), len(report.Skipped), len(report.Excluded), len(report.Failures))
}
