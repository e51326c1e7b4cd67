package scheduler

import (
	"strings"
	"time"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NextFire computes the first time strictly after `after` at which the
// schedule should run. Monthly schedules clamp the configured day to
// the last day of short months, so day 31 fires on April 30th.
func NextFire(cfg model.ScheduleConfig, after time.Time) (time.Time, error) {
	hour, minute, err := parseTimeOfDay(cfg.TimeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	switch cfg.Frequency {
	case model.FrequencyDaily:
		next := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())
		if !next.After(after) {
			next = next.AddDate(0, 0, 1)
		}
		return next, nil

	case model.FrequencyWeekly:
		day, ok := weekdays[strings.ToLower(cfg.DayOfWeek)]
		if !ok {
			return time.Time{}, errdefs.Validationf("invalid day of week %q", cfg.DayOfWeek)
		}
		next := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())
		for next.Weekday() != day || !next.After(after) {
			next = next.AddDate(0, 0, 1)
		}
		return next, nil

	case model.FrequencyMonthly:
		if cfg.DayOfMonth < 1 || cfg.DayOfMonth > 31 {
			return time.Time{}, errdefs.Validationf("invalid day of month %d", cfg.DayOfMonth)
		}
		next := monthlyFire(after.Year(), after.Month(), cfg.DayOfMonth, hour, minute, after.Location())
		if !next.After(after) {
			year, month := after.Year(), after.Month()+1
			next = monthlyFire(year, month, cfg.DayOfMonth, hour, minute, after.Location())
		}
		return next, nil
	}
	return time.Time{}, errdefs.Validationf("invalid frequency %q", cfg.Frequency)
}

func monthlyFire(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	// Normalize month overflow first, then clamp the day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, hour, minute, 0, 0, loc)
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	t, perr := time.Parse("15:04", s)
	if perr != nil {
		return 0, 0, errdefs.Validationf("invalid time of day %q (want HH:MM)", s)
	}
	return t.Hour(), t.Minute(), nil
}

// ValidWeekday reports whether name is a recognized day of week.
func ValidWeekday(name string) bool {
	_, ok := weekdays[strings.ToLower(name)]
	return ok
}
