package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/takenet193/task-reminder-tool/internal/model"
)

const (
	tasksFileName     = "tasks.json"
	logsFileName      = "logs.json"
	settingsFileName  = "settings.json"
	overridesFileName = "calendar_overrides.json"
)

type tasksDocument struct {
	Tasks []model.Task `json:"tasks"`
}

type logsDocument struct {
	Logs []model.LogEntry `json:"logs"`
}

// Store owns the four JSON data files. Loads are tolerant: a missing or
// corrupt file yields the empty/default value. Saves go through the atomic
// writer and report failures to the caller. Each save rewrites a whole
// collection; concurrent writers from separate processes can lose updates,
// which is accepted at single-user scale.
type Store struct {
	tasksFile     string
	logsFile      string
	settingsFile  string
	overridesFile string
	logger        *slog.Logger
	now           func() time.Time
}

// NewStore creates the data directory and initializes any missing data
// files with empty content.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	s := &Store{
		tasksFile:     filepath.Join(dataDir, tasksFileName),
		logsFile:      filepath.Join(dataDir, logsFileName),
		settingsFile:  filepath.Join(dataDir, settingsFileName),
		overridesFile: filepath.Join(dataDir, overridesFileName),
		logger:        slog.Default(),
		now:           time.Now,
	}
	if err := s.initFiles(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initFiles() error {
	init := []struct {
		path  string
		value any
	}{
		{s.tasksFile, tasksDocument{Tasks: []model.Task{}}},
		{s.logsFile, logsDocument{Logs: []model.LogEntry{}}},
		{s.settingsFile, model.DefaultSettings()},
		{s.overridesFile, model.CalendarOverrides{}},
	}
	for _, f := range init {
		if _, err := os.Stat(f.path); err == nil {
			continue
		}
		if err := WriteJSONAtomic(f.path, f.value); err != nil {
			return err
		}
	}
	return nil
}

// LoadTasks returns all persisted tasks. A missing or malformed file yields
// an empty slice, never an error.
func (s *Store) LoadTasks() []model.Task {
	var doc tasksDocument
	if !s.loadFile(s.tasksFile, &doc) {
		return []model.Task{}
	}
	if doc.Tasks == nil {
		return []model.Task{}
	}
	return doc.Tasks
}

func (s *Store) SaveTasks(tasks []model.Task) error {
	return WriteJSONAtomic(s.tasksFile, tasksDocument{Tasks: tasks})
}

// LoadLogs returns all persisted log entries, tolerating missing or
// malformed data the same way LoadTasks does.
func (s *Store) LoadLogs() []model.LogEntry {
	var doc logsDocument
	if !s.loadFile(s.logsFile, &doc) {
		return []model.LogEntry{}
	}
	if doc.Logs == nil {
		return []model.LogEntry{}
	}
	return doc.Logs
}

func (s *Store) SaveLogs(logs []model.LogEntry) error {
	return WriteJSONAtomic(s.logsFile, logsDocument{Logs: logs})
}

func (s *Store) LoadSettings() model.Settings {
	settings := model.DefaultSettings()
	if !s.loadFile(s.settingsFile, &settings) {
		return model.DefaultSettings()
	}
	return settings
}

func (s *Store) SaveSettings(settings model.Settings) error {
	return WriteJSONAtomic(s.settingsFile, settings)
}

func (s *Store) LoadCalendarOverrides() model.CalendarOverrides {
	overrides := model.CalendarOverrides{}
	if !s.loadFile(s.overridesFile, &overrides) {
		return model.CalendarOverrides{}
	}
	return overrides
}

func (s *Store) SaveCalendarOverrides(overrides model.CalendarOverrides) error {
	return WriteJSONAtomic(s.overridesFile, overrides)
}

// AddTask appends a new task and returns its assigned id. Ids are derived
// from the current collection length, so deleting and re-adding tasks can
// reuse an id; logs keyed by that id then refer to both tasks.
func (s *Store) AddTask(timeStr string, taskNames []string, enabled bool) (string, error) {
	tasks := s.LoadTasks()
	id := fmt.Sprintf("task_%03d", len(tasks)+1)
	tasks = append(tasks, model.Task{
		ID:          id,
		Time:        timeStr,
		TaskNames:   taskNames,
		Enabled:     enabled,
		CreatedDate: s.now().Format(model.DateLayout),
	})
	if err := s.SaveTasks(tasks); err != nil {
		return "", err
	}
	return id, nil
}

// TaskUpdate names the fields UpdateTask should change; nil fields are
// left untouched.
type TaskUpdate struct {
	Time      *string
	TaskNames []string
	Enabled   *bool
}

// UpdateTask applies a partial update to the first task matching id. An
// unknown id is a no-op; the collection is re-saved either way.
func (s *Store) UpdateTask(id string, update TaskUpdate) error {
	tasks := s.LoadTasks()
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		if update.Time != nil {
			tasks[i].Time = *update.Time
		}
		if update.TaskNames != nil {
			tasks[i].TaskNames = update.TaskNames
		}
		if update.Enabled != nil {
			tasks[i].Enabled = *update.Enabled
		}
		break
	}
	return s.SaveTasks(tasks)
}

// DeleteTask removes the task with the given id. Log entries referencing
// the id are kept.
func (s *Store) DeleteTask(id string) error {
	tasks := s.LoadTasks()
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return s.SaveTasks(kept)
}

// AddLog appends a completion record stamped with the current date and
// time. Entries are never de-duplicated.
func (s *Store) AddLog(taskID, taskName string, completed bool) error {
	logs := s.LoadLogs()
	now := s.now()
	logs = append(logs, model.LogEntry{
		Date:      now.Format(model.DateLayout),
		Time:      now.Format(model.ClockLayout),
		TaskID:    taskID,
		TaskName:  taskName,
		Completed: completed,
	})
	return s.SaveLogs(logs)
}

// LogsByDate returns the entries recorded on an exact "YYYY-MM-DD" date.
func (s *Store) LogsByDate(date string) []model.LogEntry {
	out := make([]model.LogEntry, 0)
	for _, entry := range s.LoadLogs() {
		if entry.Date == date {
			out = append(out, entry)
		}
	}
	return out
}

// LogsByMonth returns the entries recorded in the given calendar month.
func (s *Store) LogsByMonth(year, month int) []model.LogEntry {
	prefix := model.MonthKey(year, month)
	out := make([]model.LogEntry, 0)
	for _, entry := range s.LoadLogs() {
		if len(entry.Date) >= len(prefix) && entry.Date[:len(prefix)] == prefix {
			out = append(out, entry)
		}
	}
	return out
}

// TaskCreatedDate resolves when a task was registered. Tasks persisted by
// older builds have no created date; for those the earliest log entry for
// the task is used, and failing that, today. The derived value is never
// written back.
func (s *Store) TaskCreatedDate(task model.Task) string {
	if task.CreatedDate != "" {
		return task.CreatedDate
	}
	dates := make([]string, 0)
	for _, entry := range s.LoadLogs() {
		if entry.TaskID == task.ID {
			dates = append(dates, entry.Date)
		}
	}
	if len(dates) > 0 {
		sort.Strings(dates)
		return dates[0]
	}
	return s.now().Format(model.DateLayout)
}

func (s *Store) ExcludeWeekends() bool {
	return s.LoadSettings().ExcludeWeekends
}

func (s *Store) SetExcludeWeekends(exclude bool) error {
	settings := s.LoadSettings()
	settings.ExcludeWeekends = exclude
	return s.SaveSettings(settings)
}

// MonthOverrides returns the per-day overrides recorded for a month, empty
// when none exist.
func (s *Store) MonthOverrides(year, month int) model.MonthOverrides {
	overrides := s.LoadCalendarOverrides()
	if m, ok := overrides[model.MonthKey(year, month)]; ok {
		return m
	}
	return model.MonthOverrides{}
}

func (s *Store) SetDayOverride(year, month, day int, included bool) error {
	overrides := s.LoadCalendarOverrides()
	monthKey := model.MonthKey(year, month)
	if overrides[monthKey] == nil {
		overrides[monthKey] = model.MonthOverrides{}
	}
	overrides[monthKey][model.DateKey(year, month, day)] = included
	return s.SaveCalendarOverrides(overrides)
}

// ClearMonthOverrides removes every override for the month. Clearing a
// month that has none is a no-op.
func (s *Store) ClearMonthOverrides(year, month int) error {
	overrides := s.LoadCalendarOverrides()
	monthKey := model.MonthKey(year, month)
	if _, ok := overrides[monthKey]; !ok {
		return nil
	}
	delete(overrides, monthKey)
	return s.SaveCalendarOverrides(overrides)
}

// IsDateIncluded reports whether a date counts toward completion-rate
// statistics. An explicit per-day override wins; otherwise the weekend
// exclusion setting applies; otherwise every day is included.
func (s *Store) IsDateIncluded(date time.Time) bool {
	monthOverrides := s.MonthOverrides(date.Year(), int(date.Month()))
	if included, ok := monthOverrides[date.Format(model.DateLayout)]; ok {
		return included
	}
	if s.ExcludeWeekends() {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return true
}

func (s *Store) loadFile(path string, v any) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("data file unreadable", "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("data file malformed", "path", path, "error", err)
		return false
	}
	return true
}
