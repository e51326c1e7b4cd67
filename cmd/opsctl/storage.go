package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edvin/opsdash/internal/model"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and verify the backup storage configuration",
}

var storageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the backup storage settings (secrets redacted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var settings model.BackupSettings
		if err := newClient().get("/settings/backup", &settings); err != nil {
			return err
		}
		fmt.Printf("Backend:          %s\n", settings.StorageBackend)
		switch settings.StorageBackend {
		case model.StorageBackendS3:
			fmt.Printf("S3 endpoint:      %s\n", settings.S3.Endpoint)
			fmt.Printf("S3 bucket:        %s\n", settings.S3.Bucket)
			fmt.Printf("S3 region:        %s\n", settings.S3.Region)
		case model.StorageBackendRsync:
			fmt.Printf("Rsync host:       %s\n", settings.Rsync.Host)
			fmt.Printf("Rsync user:       %s\n", settings.Rsync.Username)
			fmt.Printf("Rsync path:       %s\n", settings.Rsync.RemotePath)
		}
		fmt.Printf("Local retention:  %d days\n", settings.Retention.LocalDays)
		fmt.Printf("Remote retention: %d days\n", settings.Retention.RemoteDays)
		return nil
	},
}

var storageTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the configured storage backend connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out struct {
			Backend string `json:"backend"`
			Status  string `json:"status"`
		}
		if err := newClient().post("/settings/backup/test", nil, &out); err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", out.Backend, out.Status)
		return nil
	},
}

func init() {
	storageCmd.AddCommand(storageShowCmd)
	storageCmd.AddCommand(storageTestCmd)
}
