package update

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/takenet193/task-reminder-tool/internal/importer"
	"github.com/takenet193/task-reminder-tool/internal/model"
	"github.com/takenet193/task-reminder-tool/internal/report"
	"github.com/takenet193/task-reminder-tool/internal/scheduler"
	"github.com/takenet193/task-reminder-tool/internal/storage"
	"github.com/takenet193/task-reminder-tool/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Events != nil {
		return waitForReminderCmd(m.Events)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case reminderMsg:
		next, cmd := m.handleReminder(typed.Event)
		if next.Events != nil {
			return next, tea.Batch(cmd, waitForReminderCmd(next.Events))
		}
		return next, cmd

	case autoCloseMsg:
		if m.Popup != nil && m.Popup.Surface == typed.Surface && m.Popup.Kind == scheduler.KindPre {
			m = m.closePopup()
			m.Status = StatusBar{Text: "pre-notification closed"}
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputActive {
		return m.handleQuickAddKey(msg)
	}
	if m.Popup != nil {
		next, cmd := m.handlePopupKey(msg)
		return next, cmd
	}

	switch msg.String() {
	case m.Keys.Today:
		m.CurrentView = ViewToday
		return m, nil
	case m.Keys.Logs:
		m.CurrentView = ViewLogs
		m.refreshLogsTable()
		return m, nil
	case m.Keys.Calendar:
		m.CurrentView = ViewCalendar
		return m, nil
	case m.Keys.Settings:
		m.CurrentView = ViewSettings
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewToday:
		return m.handleTodayKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	case ViewCalendar:
		return m.handleCalendarKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

func (m Model) handleTodayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.Store.LoadTasks()
	switch msg.String() {
	case "up", "k":
		if m.TodayCursor > 0 {
			m.TodayCursor--
		}
	case "down", "j":
		if m.TodayCursor < len(tasks)-1 {
			m.TodayCursor++
		}
	case "a":
		m.inputActive = true
		m.quickAddInput.Focus()
		m.quickAddInput.SetValue("")
	case "e":
		if m.TodayCursor < len(tasks) {
			task := tasks[m.TodayCursor]
			enabled := !task.Enabled
			if err := m.Store.UpdateTask(task.ID, storage.TaskUpdate{Enabled: &enabled}); err != nil {
				m.Status = StatusBar{Text: fmt.Sprintf("error updating task: %v", err), IsError: true}
			} else {
				m.Status = StatusBar{Text: fmt.Sprintf("%s enabled=%v", task.ID, enabled)}
			}
		}
	case "d":
		if m.TodayCursor < len(tasks) {
			task := tasks[m.TodayCursor]
			if err := m.Store.DeleteTask(task.ID); err != nil {
				m.Status = StatusBar{Text: fmt.Sprintf("error deleting task: %v", err), IsError: true}
			} else {
				m.Status = StatusBar{Text: "deleted " + task.ID}
				if m.TodayCursor > 0 {
					m.TodayCursor--
				}
			}
		}
	case "enter":
		if m.TodayCursor < len(tasks) {
			m = m.openPopup(tasks[m.TodayCursor], scheduler.KindMain)
		}
	case "i":
		return m.importTasks()
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputActive = false
		m.quickAddInput.Blur()
		return m, nil
	case "enter":
		m.inputActive = false
		m.quickAddInput.Blur()
		return m.addTaskFromInput(m.quickAddInput.Value()), nil
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(msg)
	return m, cmd
}

// addTaskFromInput parses "HH:MM item1,item2" and persists a new task.
func (m Model) addTaskFromInput(raw string) Model {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) < 2 {
		m.Status = StatusBar{Text: "error: expected HH:MM item1,item2", IsError: true}
		return m
	}
	timeStr := fields[0]
	if !model.ValidClock(timeStr) {
		m.Status = StatusBar{Text: fmt.Sprintf("error: invalid time %q", timeStr), IsError: true}
		return m
	}
	names := make([]string, 0)
	for _, name := range strings.Split(strings.Join(fields[1:], " "), ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		m.Status = StatusBar{Text: "error: at least one sub-item is required", IsError: true}
		return m
	}

	id, err := m.Store.AddTask(timeStr, names, true)
	if err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("error adding task: %v", err), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("added %s at %s", id, timeStr)}
	return m
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h":
		m.FocusYear, m.FocusMonth = previousMonth(m.FocusYear, m.FocusMonth)
		m.refreshLogsTable()
		return m, nil
	case "l":
		m.FocusYear, m.FocusMonth = nextMonth(m.FocusYear, m.FocusMonth)
		m.refreshLogsTable()
		return m, nil
	}
	var cmd tea.Cmd
	m.logsTable, cmd = m.logsTable.Update(msg)
	return m, cmd
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h":
		m.FocusYear, m.FocusMonth = previousMonth(m.FocusYear, m.FocusMonth)
		m.CalendarDay = 1
	case "l":
		m.FocusYear, m.FocusMonth = nextMonth(m.FocusYear, m.FocusMonth)
		m.CalendarDay = 1
	case "up", "k":
		if m.CalendarDay > 1 {
			m.CalendarDay--
		}
	case "down", "j":
		if m.CalendarDay < daysInMonth(m.FocusYear, m.FocusMonth) {
			m.CalendarDay++
		}
	case "t":
		date := time.Date(m.FocusYear, time.Month(m.FocusMonth), m.CalendarDay, 0, 0, 0, 0, time.Local)
		included := m.Store.IsDateIncluded(date)
		if err := m.Store.SetDayOverride(m.FocusYear, m.FocusMonth, m.CalendarDay, !included); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("error saving override: %v", err), IsError: true}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("%s included=%v", date.Format(model.DateLayout), !included)}
		}
	case "c":
		if err := m.Store.ClearMonthOverrides(m.FocusYear, m.FocusMonth); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("error clearing overrides: %v", err), IsError: true}
		} else {
			m.Status = StatusBar{Text: "cleared overrides for " + model.MonthKey(m.FocusYear, m.FocusMonth)}
		}
	case "y":
		summary := report.Monthly(m.Store, m.FocusYear, m.FocusMonth, m.now()).Summary()
		if err := clipboard.WriteAll(summary); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("error copying to clipboard: %v", err), IsError: true}
		} else {
			m.Status = StatusBar{Text: "copied: " + summary}
		}
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "w" {
		exclude := !m.Store.ExcludeWeekends()
		if err := m.Store.SetExcludeWeekends(exclude); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("error saving settings: %v", err), IsError: true}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("exclude weekends: %v", exclude)}
		}
	}
	return m, nil
}

func (m Model) importTasks() (tea.Model, tea.Cmd) {
	if m.ImportFile == "" {
		m.Status = StatusBar{Text: "error: TASKREMINDER_IMPORT_FILE is not set", IsError: true}
		return m, nil
	}
	raw, err := os.ReadFile(m.ImportFile)
	if err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("error reading import file: %v", err), IsError: true}
		return m, nil
	}
	count, err := importer.Import(m.Store, string(raw))
	if err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("import error after %d task(s): %v", count, err), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: fmt.Sprintf("imported %d task(s)", count)}
	return m, nil
}

func (m *Model) refreshLogsTable() {
	logs := m.Store.LogsByMonth(m.FocusYear, m.FocusMonth)
	rows := make([]table.Row, 0, len(logs))
	for _, entry := range logs {
		done := "✗"
		if entry.Completed {
			done = "✓"
		}
		rows = append(rows, table.Row{entry.Date, entry.Time, entry.TaskID, entry.TaskName, done})
	}
	m.logsTable.SetRows(rows)
}

func (m Model) View() string {
	if m.Quitting {
		return "bye\n"
	}

	var body string
	switch m.CurrentView {
	case ViewToday:
		body = m.todayView()
	case ViewLogs:
		body = views.RenderLogsPanel(views.LogsPanelData{
			MonthTitle: model.MonthKey(m.FocusYear, m.FocusMonth),
			TableView:  m.logsTable.View(),
			Count:      len(m.logsTable.Rows()),
		})
	case ViewCalendar:
		body = m.calendarView()
	case ViewSettings:
		body = views.RenderSettingsPanel(views.SettingsPanelData{
			ExcludeWeekends: m.Store.ExcludeWeekends(),
			DataDir:         m.DataDir,
		})
	}

	data := views.AppData{
		Header:     fmt.Sprintf("task reminder | %s", m.CurrentView),
		Body:       body,
		StatusLine: m.statusLine(),
		Footer:     "1 today · 2 logs · 3 calendar · 4 settings · ? help · q quit",
	}
	if m.Popup != nil {
		data.Popup = m.popupView()
	}
	if m.HelpVisible {
		data.Footer = views.RenderHelpPanel(views.HelpPanelData{
			CurrentView: string(m.CurrentView),
			HelpView:    m.helpModel.ShortHelpView(helpBindings()),
		})
	}
	return views.RenderApp(data)
}

func (m Model) todayView() string {
	today := m.now().Format(model.DateLayout)
	tasks := m.Store.LoadTasks()
	rows := make([]views.TodayRowData, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, views.TodayRowData{
			ID:        task.ID,
			Time:      task.Time,
			SubItems:  task.TaskNames,
			Enabled:   task.Enabled,
			Completed: m.Monitor != nil && m.Monitor.IsTaskCompleted(task.ID, today),
		})
	}
	return views.RenderTodayPanel(views.TodayPanelData{
		Rows:         rows,
		Cursor:       m.TodayCursor,
		QuickAddView: m.quickAddInput.View(),
		InputActive:  m.inputActive,
	})
}

func (m Model) calendarView() string {
	r := report.Monthly(m.Store, m.FocusYear, m.FocusMonth, m.now())
	overrides := m.Store.MonthOverrides(m.FocusYear, m.FocusMonth)
	lines := make([]string, 0, len(r.Days))
	for _, day := range r.Days {
		cursor := "  "
		if day.Day == m.CalendarDay {
			cursor = "> "
		}
		override := " "
		if _, ok := overrides[model.DateKey(m.FocusYear, m.FocusMonth, day.Day)]; ok {
			override = "*"
		}
		lines = append(lines, fmt.Sprintf("%s%2d: %s%s (%d/%d)",
			cursor, day.Day, day.Status(), override, day.Completed, day.Total))
	}
	return views.RenderCalendarPanel(views.CalendarPanelData{
		MonthTitle: model.MonthKey(m.FocusYear, m.FocusMonth),
		Summary:    r.Summary(),
		DayLines:   lines,
	})
}

func (m Model) popupView() string {
	p := m.Popup
	items := make([]views.ReminderItemData, 0, len(p.Task.TaskNames))
	for i, name := range p.Task.TaskNames {
		items = append(items, views.ReminderItemData{Name: name, Done: p.Checked[i]})
	}
	return views.RenderReminderPopup(views.ReminderPopupData{
		Title:    reminderTitle(p.Kind, p.Task),
		Warning:  p.Kind == scheduler.KindWarning,
		Items:    items,
		Cursor:   p.Cursor,
		ShowHint: "space toggle · enter record · s snooze · esc later",
	})
}

func (m Model) statusLine() string {
	if m.Status.Text == "" {
		return "ready"
	}
	if m.Status.IsError && !strings.Contains(strings.ToLower(m.Status.Text), "error") {
		return "error: " + m.Status.Text
	}
	return m.Status.Text
}

func previousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
}
