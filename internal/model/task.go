package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTaskTime = errors.New("model: invalid task time")
	ErrNoSubItems      = errors.New("model: task has no sub-items")
)

// DateLayout and ClockLayout are the wire formats used across the data
// files: calendar dates as "2006-01-02", wall-clock times as "15:04".
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Schedule carries the per-task notification offsets, in minutes. A nil
// field means "use the default", so each offset falls back independently.
type Schedule struct {
	PreNotificationMinutes *int `json:"pre_notification_minutes,omitempty"`
	WarningMinutes         *int `json:"warning_minutes,omitempty"`
	SnoozeMinutes          *int `json:"snooze_minutes,omitempty"`
}

// Task is one recurring daily reminder. TaskNames is the ordered list of
// sub-items that must all be logged complete for a day's occurrence to
// count as done.
type Task struct {
	ID          string    `json:"id"`
	Time        string    `json:"time"`
	TaskNames   []string  `json:"task_names"`
	Enabled     bool      `json:"enabled"`
	CreatedDate string    `json:"created_date,omitempty"`
	Schedule    *Schedule `json:"schedule,omitempty"`
}

// UnmarshalJSON treats a record without an "enabled" key as enabled. The
// data files are hand-editable and older records omit the flag; only an
// explicit false disables a task.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		Enabled *bool `json:"enabled"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if _, _, err := parseClock(t.Time); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTaskTime, t.Time)
	}
	if len(t.TaskNames) == 0 {
		return ErrNoSubItems
	}
	return nil
}

// LogEntry records a single sub-item completion or incompletion. Entries
// are append-only; TaskID is a plain lookup key and may outlive the task
// it refers to, TaskName is captured at record time and survives renames.
type LogEntry struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	TaskID    string `json:"task_id"`
	TaskName  string `json:"task_name"`
	Completed bool   `json:"completed"`
}

// MonthOverrides maps "YYYY-MM-DD" date strings to an explicit
// include/exclude decision for that day.
type MonthOverrides map[string]bool

// CalendarOverrides maps "YYYY-MM" month keys to the sparse per-day
// override sets for that month.
type CalendarOverrides map[string]MonthOverrides

// MonthKey formats a calendar month as the "YYYY-MM" key used by the
// overrides file.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// DateKey formats a calendar day as a "YYYY-MM-DD" date string.
func DateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
