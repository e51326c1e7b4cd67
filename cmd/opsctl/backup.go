package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/edvin/opsdash/internal/model"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list, upload and delete backups",
}

var flagBackupEnv string

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/backups"
		if flagBackupEnv != "" {
			path += "?environment=" + flagBackupEnv
		}
		var backups []model.BackupRecord
		if err := newClient().get(path, &backups); err != nil {
			return err
		}
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ID", "ENV", "KIND", "CREATED", "SIZE", "FILES", "UPLOADED"})
		for _, b := range backups {
			files := "ok"
			if !b.FilesExist {
				files = "missing"
			}
			uploaded := "-"
			if b.Uploaded {
				uploaded = b.UploadedTo
			}
			tw.Append([]string{
				b.ID, b.Environment, b.Kind,
				b.CreatedAt.Format("2006-01-02 15:04"),
				formatSize(b.SizeBytes), files, uploaded,
			})
		}
		tw.Render()
		return nil
	},
}

var (
	flagBackupKind        string
	flagBackupDescription string
	flagBackupUpload      bool
)

var backupCreateCmd = &cobra.Command{
	Use:   "create <env>",
	Short: "Create a backup of an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"kind":                flagBackupKind,
			"description":         flagBackupDescription,
			"upload_after_create": flagBackupUpload,
		}
		var record model.BackupRecord
		if err := newClient().post("/environments/"+args[0]+"/backups", body, &record); err != nil {
			return err
		}
		fmt.Printf("Created %s (%s)\n", record.ID, formatSize(record.SizeBytes))
		return nil
	},
}

var backupUploadCmd = &cobra.Command{
	Use:   "upload <backup-id>",
	Short: "Upload a backup to the configured remote storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().post("/backups/"+args[0]+"/upload", nil, nil); err != nil {
			return err
		}
		fmt.Printf("Uploaded %s\n", args[0])
		return nil
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete <backup-id>",
	Short: "Delete a backup and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().delete("/backups/" + args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func init() {
	backupListCmd.Flags().StringVar(&flagBackupEnv, "env", "", "Filter by environment")
	backupCreateCmd.Flags().StringVar(&flagBackupKind, "kind", "full", "Backup kind (full, database, filestore)")
	backupCreateCmd.Flags().StringVar(&flagBackupDescription, "description", "", "Backup description")
	backupCreateCmd.Flags().BoolVar(&flagBackupUpload, "upload", false, "Upload to remote storage after creation")
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupUploadCmd)
	backupCmd.AddCommand(backupDeleteCmd)
}
