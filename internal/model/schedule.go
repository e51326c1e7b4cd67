package model

// Schedule frequencies.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// ScheduleConfig is the per-environment backup schedule. There is at most
// one schedule per environment. Disabling a schedule keeps the stored
// settings so re-enabling restores them.
type ScheduleConfig struct {
	Environment       string `json:"environment" gorm:"primaryKey"`
	Enabled           bool   `json:"enabled"`
	Frequency         string `json:"frequency"`
	TimeOfDay         string `json:"time_of_day"`
	DayOfWeek         string `json:"day_of_week,omitempty"`
	DayOfMonth        int    `json:"day_of_month,omitempty"`
	BackupKind        string `json:"backup_kind"`
	UploadAfterCreate bool   `json:"upload_after_create"`
}

// DefaultSchedule returns the disabled default schedule for an environment.
func DefaultSchedule(env string) ScheduleConfig {
	return ScheduleConfig{
		Environment: env,
		Enabled:     false,
		Frequency:   FrequencyDaily,
		TimeOfDay:   "02:00",
		DayOfWeek:   "sunday",
		DayOfMonth:  1,
		BackupKind:  BackupKindFull,
	}
}

// ValidFrequency reports whether freq is a supported schedule frequency.
func ValidFrequency(freq string) bool {
	switch freq {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}
