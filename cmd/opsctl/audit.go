package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/edvin/opsdash/internal/model"
)

var (
	flagAuditEnv      string
	flagAuditCategory string
	flagAuditLimit    int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the operational audit log, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if flagAuditEnv != "" {
			q.Set("environment", flagAuditEnv)
		}
		if flagAuditCategory != "" {
			q.Set("category", flagAuditCategory)
		}
		q.Set("limit", fmt.Sprintf("%d", flagAuditLimit))

		var entries []model.AuditEntry
		if err := newClient().get("/audit?"+q.Encode(), &entries); err != nil {
			return err
		}
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"TIME", "ENV", "CATEGORY", "TRIGGER", "STATUS", "DETAIL"})
		for _, e := range entries {
			tw.Append([]string{
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Environment, e.Category, e.Trigger, e.Status, e.Detail,
			})
		}
		tw.Render()
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&flagAuditEnv, "env", "", "Filter by environment")
	auditCmd.Flags().StringVar(&flagAuditCategory, "category", "", "Filter by category")
	auditCmd.Flags().IntVar(&flagAuditLimit, "limit", 100, "Maximum entries to show")
}
