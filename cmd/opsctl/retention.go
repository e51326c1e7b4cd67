package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edvin/opsdash/internal/core"
)

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Retention maintenance",
}

var retentionEnforceCmd = &cobra.Command{
	Use:   "enforce",
	Short: "Prune backups older than the configured retention age",
	RunE: func(cmd *cobra.Command, args []string) error {
		var summary core.RetentionSummary
		if err := newClient().post("/retention/enforce", nil, &summary); err != nil {
			return err
		}
		fmt.Printf("Examined %d backups, removed %d\n", summary.Examined, len(summary.Removed))
		for _, id := range summary.Removed {
			fmt.Printf("  removed %s\n", id)
		}
		for _, id := range summary.Failed {
			fmt.Printf("  failed  %s\n", id)
		}
		return nil
	},
}

func init() {
	retentionCmd.AddCommand(retentionEnforceCmd)
}
