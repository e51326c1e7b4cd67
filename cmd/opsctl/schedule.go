package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/edvin/opsdash/internal/model"
	"github.com/edvin/opsdash/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage per-environment backup schedules",
}

var scheduleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schedule state for all environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		var statuses []scheduler.EnvStatus
		if err := newClient().get("/schedules", &statuses); err != nil {
			return err
		}
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ENV", "STATE", "NEXT FIRE"})
		for _, st := range statuses {
			next := "-"
			if st.NextFire != nil {
				next = st.NextFire.Format("2006-01-02 15:04")
			}
			tw.Append([]string{st.Environment, st.State, next})
		}
		tw.Render()
		return nil
	},
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show <env>",
	Short: "Show an environment's schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg model.ScheduleConfig
		if err := newClient().get("/environments/"+args[0]+"/schedule", &cfg); err != nil {
			return err
		}
		fmt.Printf("Environment:  %s\n", cfg.Environment)
		fmt.Printf("Enabled:      %v\n", cfg.Enabled)
		fmt.Printf("Frequency:    %s\n", cfg.Frequency)
		fmt.Printf("Time of day:  %s\n", cfg.TimeOfDay)
		switch cfg.Frequency {
		case model.FrequencyWeekly:
			fmt.Printf("Day of week:  %s\n", cfg.DayOfWeek)
		case model.FrequencyMonthly:
			fmt.Printf("Day of month: %d\n", cfg.DayOfMonth)
		}
		fmt.Printf("Backup kind:  %s\n", cfg.BackupKind)
		fmt.Printf("Upload after: %v\n", cfg.UploadAfterCreate)
		return nil
	},
}

var (
	flagSchedEnabled    bool
	flagSchedFrequency  string
	flagSchedTimeOfDay  string
	flagSchedDayOfWeek  string
	flagSchedDayOfMonth int
	flagSchedKind       string
	flagSchedUpload     bool
)

var scheduleSetCmd = &cobra.Command{
	Use:   "set <env>",
	Short: "Update an environment's schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"enabled":             flagSchedEnabled,
			"frequency":           flagSchedFrequency,
			"time_of_day":         flagSchedTimeOfDay,
			"backup_kind":         flagSchedKind,
			"upload_after_create": flagSchedUpload,
		}
		switch flagSchedFrequency {
		case model.FrequencyWeekly:
			body["day_of_week"] = flagSchedDayOfWeek
		case model.FrequencyMonthly:
			body["day_of_month"] = flagSchedDayOfMonth
		}
		var cfg model.ScheduleConfig
		if err := newClient().put("/environments/"+args[0]+"/schedule", body, &cfg); err != nil {
			return err
		}
		state := "disabled"
		if cfg.Enabled {
			state = "enabled"
		}
		fmt.Printf("Schedule for %s %s (%s at %s)\n", cfg.Environment, state, cfg.Frequency, cfg.TimeOfDay)
		return nil
	},
}

var scheduleTriggerCmd = &cobra.Command{
	Use:   "trigger <env>",
	Short: "Run an environment's scheduled backup now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().post("/environments/"+args[0]+"/schedule/trigger", nil, nil); err != nil {
			return err
		}
		fmt.Printf("Triggered scheduled backup for %s\n", args[0])
		return nil
	},
}

func init() {
	scheduleSetCmd.Flags().BoolVar(&flagSchedEnabled, "enabled", true, "Enable the schedule")
	scheduleSetCmd.Flags().StringVar(&flagSchedFrequency, "frequency", "daily", "Frequency (daily, weekly, monthly)")
	scheduleSetCmd.Flags().StringVar(&flagSchedTimeOfDay, "time", "02:00", "Time of day (HH:MM, 24h)")
	scheduleSetCmd.Flags().StringVar(&flagSchedDayOfWeek, "day-of-week", "sunday", "Day of week for weekly schedules")
	scheduleSetCmd.Flags().IntVar(&flagSchedDayOfMonth, "day-of-month", 1, "Day of month for monthly schedules")
	scheduleSetCmd.Flags().StringVar(&flagSchedKind, "kind", "full", "Backup kind (full, database, filestore)")
	scheduleSetCmd.Flags().BoolVar(&flagSchedUpload, "upload", false, "Upload the backup after it is created")
	scheduleCmd.AddCommand(scheduleStatusCmd)
	scheduleCmd.AddCommand(scheduleShowCmd)
	scheduleCmd.AddCommand(scheduleSetCmd)
	scheduleCmd.AddCommand(scheduleTriggerCmd)
}
