package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edvin/opsdash/internal/model"
)

var (
	flagCopyFilestore bool
	flagCopyAddons    bool
	flagCopyTargetDB  string
)

var copyCmd = &cobra.Command{
	Use:   "copy <source-env> <target-env>",
	Short: "Copy one environment's data into another",
	Long: `Copy replaces the target environment's database with a live dump of the
source. The target's existing database is dropped. Filestore and addon
syncs are optional and do not fail the copy.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := model.CopyRequest{
			SourceEnv:          args[0],
			TargetEnv:          args[1],
			IncludeFilestore:   flagCopyFilestore,
			IncludeAddons:      flagCopyAddons,
			TargetDatabaseName: flagCopyTargetDB,
		}
		var result model.CopyResult
		if err := newClient().post("/copy", req, &result); err != nil {
			return err
		}

		if result.Success {
			fmt.Printf("Copied %s -> %s (database %s)\n",
				result.SourceEnv, result.TargetEnv, result.TargetDatabaseName)
		} else {
			fmt.Printf("Copy %s -> %s FAILED\n", result.SourceEnv, result.TargetEnv)
		}
		fmt.Printf("  database:  %v\n", result.DatabaseCopied)
		if flagCopyFilestore {
			fmt.Printf("  filestore: %v\n", result.FilestoreCopied)
		}
		if flagCopyAddons {
			fmt.Printf("  addons:    %v\n", result.AddonsCopied)
		}
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		if !result.Success {
			return fmt.Errorf("copy did not complete")
		}
		return nil
	},
}

func init() {
	copyCmd.Flags().BoolVar(&flagCopyFilestore, "filestore", false, "Also sync the filestore")
	copyCmd.Flags().BoolVar(&flagCopyAddons, "addons", false, "Also sync the addons directory")
	copyCmd.Flags().StringVar(&flagCopyTargetDB, "target-db", "", "Target database name (defaults to the target's configured database)")
}
