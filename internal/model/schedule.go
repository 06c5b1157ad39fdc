package model

import (
	"strconv"
	"strings"
	"time"
)

// Default notification offsets, in minutes, applied when a task carries no
// schedule of its own.
const (
	DefaultPreNotificationMinutes = 5
	DefaultWarningMinutes         = 5
	DefaultSnoozeMinutes          = 5
)

// ScheduleConfig is a task's fully resolved notification timing.
type ScheduleConfig struct {
	PreNotificationMinutes int
	WarningMinutes         int
	SnoozeMinutes          int
}

// ScheduleConfig resolves the task's schedule, defaulting each field
// independently when it is absent.
func (t Task) ScheduleConfig() ScheduleConfig {
	cfg := ScheduleConfig{
		PreNotificationMinutes: DefaultPreNotificationMinutes,
		WarningMinutes:         DefaultWarningMinutes,
		SnoozeMinutes:          DefaultSnoozeMinutes,
	}
	if t.Schedule == nil {
		return cfg
	}
	if t.Schedule.PreNotificationMinutes != nil {
		cfg.PreNotificationMinutes = *t.Schedule.PreNotificationMinutes
	}
	if t.Schedule.WarningMinutes != nil {
		cfg.WarningMinutes = *t.Schedule.WarningMinutes
	}
	if t.Schedule.SnoozeMinutes != nil {
		cfg.SnoozeMinutes = *t.Schedule.SnoozeMinutes
	}
	return cfg
}

// BaseTime computes the task's target instant for the day of now: now with
// the task's hour and minute, seconds and below zeroed. The second return
// is false when the time field is missing, non-numeric, or out of range.
func (t Task) BaseTime(now time.Time) (time.Time, bool) {
	hour, minute, err := parseClock(t.Time)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, now.Location()), true
}

// NotificationPlan holds the three instants a single occurrence fires at.
// A zero-minute offset collapsing Pre or Warning onto Main is valid.
type NotificationPlan struct {
	Pre     time.Time
	Main    time.Time
	Warning time.Time
}

// NotificationTimes computes the pre/main/warning instants for the day of
// now. It is a pure function of the task and now; the second return is
// false when the task's time cannot be parsed.
func (t Task) NotificationTimes(now time.Time) (NotificationPlan, bool) {
	base, ok := t.BaseTime(now)
	if !ok {
		return NotificationPlan{}, false
	}
	return t.NotificationTimesAt(base), true
}

// NotificationTimesAt computes the plan from an already resolved base
// instant.
func (t Task) NotificationTimesAt(base time.Time) NotificationPlan {
	cfg := t.ScheduleConfig()
	return NotificationPlan{
		Pre:     base.Add(-time.Duration(cfg.PreNotificationMinutes) * time.Minute),
		Main:    base,
		Warning: base.Add(time.Duration(cfg.WarningMinutes) * time.Minute),
	}
}

// ValidClock reports whether s is a parseable "HH:MM" wall-clock time.
func ValidClock(s string) bool {
	_, _, err := parseClock(s)
	return err == nil
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidTaskTime
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrInvalidTaskTime
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrInvalidTaskTime
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTaskTime
	}
	return hour, minute, nil
}
