package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/edvin/opsdash/internal/model"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect and control environments",
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		var envs []model.Environment
		if err := newClient().get("/environments", &envs); err != nil {
			return err
		}
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"NAME", "SERVICE", "CONTAINER", "FILESTORE"})
		for _, env := range envs {
			tw.Append([]string{env.Name, env.ServiceName, env.ContainerName, env.FilestoreDir})
		}
		tw.Render()
		return nil
	},
}

var envStatusCmd = &cobra.Command{
	Use:   "status <env>",
	Short: "Show an environment's container status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var status model.ContainerStatus
		if err := newClient().get("/environments/"+args[0]+"/status", &status); err != nil {
			return err
		}
		fmt.Printf("Environment: %s\n", status.Environment)
		fmt.Printf("State:       %s\n", status.State)
		if status.Health != "" {
			fmt.Printf("Health:      %s\n", status.Health)
		}
		if status.StartedAt != "" {
			fmt.Printf("Started:     %s\n", status.StartedAt)
		}
		return nil
	},
}

var envLogsLines int

var envLogsCmd = &cobra.Command{
	Use:   "logs <env>",
	Short: "Tail an environment's container logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out struct {
			Logs string `json:"logs"`
		}
		path := fmt.Sprintf("/environments/%s/logs?lines=%d", args[0], envLogsLines)
		if err := newClient().get(path, &out); err != nil {
			return err
		}
		fmt.Print(out.Logs)
		return nil
	},
}

func containerActionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <env>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().post("/environments/"+args[0]+"/"+action, nil, nil); err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", args[0], action)
			return nil
		},
	}
}

func init() {
	envLogsCmd.Flags().IntVar(&envLogsLines, "lines", 100, "Number of log lines")
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envStatusCmd)
	envCmd.AddCommand(envLogsCmd)
	envCmd.AddCommand(containerActionCmd("start", "Start an environment's container", "start"))
	envCmd.AddCommand(containerActionCmd("stop", "Stop an environment's container", "stop"))
	envCmd.AddCommand(containerActionCmd("restart", "Restart an environment's container", "restart"))
}
