package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

func statsCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print streaks and activity totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, backend, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer backend.Close()

			dashboard, err := session.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(dashboard.Stats)
			}

			stats := dashboard.Stats
			fmt.Fprintf(out, "As of %s\n", model.FormatDay(dashboard.Today))
			fmt.Fprintln(out, strings.Repeat("=", 30))
			fmt.Fprintf(out, "Current streak:   %d\n", stats.CurrentStreak)
			fmt.Fprintf(out, "Max streak:       %d\n", stats.MaxStreak)
			fmt.Fprintf(out, "Active days:      %s\n", humanize.Comma(int64(stats.ActiveDays)))
			fmt.Fprintf(out, "Completed:        %s\n", humanize.Comma(int64(stats.TotalCompleted)))
			fmt.Fprintf(out, "Last 7 days:      %d\n", stats.CompletedLastWeek)
			if len(dashboard.Badges) > 0 {
				labels := make([]string, 0, len(dashboard.Badges))
				for _, badge := range dashboard.Badges {
					labels = append(labels, fmt.Sprintf("%d", badge))
				}
				fmt.Fprintf(out, "Badges:           %s\n", strings.Join(labels, ", "))
			}
			if dashboard.HasNextBadge {
				fmt.Fprintf(out, "Next badge:       %d days\n", dashboard.NextBadge)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}
