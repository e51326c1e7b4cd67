package request

// UpdateSchedule is the body of PUT /environments/{env}/schedule.
type UpdateSchedule struct {
	Enabled           bool   `json:"enabled"`
	Frequency         string `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	TimeOfDay         string `json:"time_of_day" validate:"required,timeofday"`
	DayOfWeek         string `json:"day_of_week" validate:"omitempty,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	DayOfMonth        int    `json:"day_of_month" validate:"omitempty,min=1,max=31"`
	BackupKind        string `json:"backup_kind" validate:"required,oneof=full database filestore"`
	UploadAfterCreate bool   `json:"upload_after_create"`
}
