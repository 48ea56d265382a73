package cli

import (
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Show the current overlay snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Snapshot
			if err := client.Get("/api/snapshot", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRosterCmd() *cobra.Command {
	rosterCmd := &cobra.Command{
		Use:   "roster",
		Short: "Manual roster controls",
	}

	rosterCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the tracked roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/roster/reset", nil, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage("Roster cleared")
			return nil
		},
	})

	rosterCmd.AddCommand(&cobra.Command{
		Use:   "out-of-sync",
		Short: "Flag the tracked roster as possibly stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/roster/out-of-sync", nil, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage("Roster flagged out of sync")
			return nil
		},
	})

	return rosterCmd
}
