// opsctl is the operator command line for the dashboard API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "opsctl",
	Short: "Operate Odoo environment backups, copies and schedules",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("server", cmd.Flags().Lookup("server"))
	},
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:9998", "Dashboard API address")
	viper.SetEnvPrefix("OPSDASH")
	viper.AutomaticEnv()
	viper.SetDefault("server", "http://localhost:9998")

	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(retentionCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(storageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
