package views

import (
	"fmt"
	"strings"
)

type TodayRowData struct {
	ID        string
	Time      string
	SubItems  []string
	Enabled   bool
	Completed bool
}

type TodayPanelData struct {
	Rows         []TodayRowData
	Cursor       int
	QuickAddView string
	InputActive  bool
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	b.WriteString("Today's tasks\n\n")
	if len(data.Rows) == 0 {
		b.WriteString(dimStyle.Render("no tasks yet (press a to add one)"))
		b.WriteString("\n")
	}
	for i, row := range data.Rows {
		cursor := "  "
		if i == data.Cursor {
			cursor = "> "
		}
		mark := "[ ]"
		if row.Completed {
			mark = doneStyle.Render("[✓]")
		}
		line := fmt.Sprintf("%s%s %s %s  %s", cursor, mark, row.Time, row.ID, strings.Join(row.SubItems, ", "))
		if !row.Enabled {
			line = dimStyle.Render(line + "  (disabled)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if data.InputActive {
		b.WriteString("\nadd task (HH:MM item1,item2): ")
		b.WriteString(data.QuickAddView)
		b.WriteString("\n")
	}
	return b.String()
}

type LogsPanelData struct {
	MonthTitle string
	TableView  string
	Count      int
}

func RenderLogsPanel(data LogsPanelData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Completion log: %s (%d entries)\n\n", data.MonthTitle, data.Count)
	if data.Count == 0 {
		b.WriteString(dimStyle.Render("no entries this month"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(data.TableView)
	b.WriteString("\n")
	return b.String()
}

type CalendarPanelData struct {
	MonthTitle string
	Summary    string
	DayLines   []string
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString("Achievement: ")
	b.WriteString(data.MonthTitle)
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render(data.Summary))
	b.WriteString("\n\n")
	for _, line := range data.DayLines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

type SettingsPanelData struct {
	ExcludeWeekends bool
	DataDir         string
}

func RenderSettingsPanel(data SettingsPanelData) string {
	weekends := "include weekends"
	if data.ExcludeWeekends {
		weekends = "exclude weekends"
	}
	var b strings.Builder
	b.WriteString("Settings\n\n")
	fmt.Fprintf(&b, "  [w] completion statistics: %s\n", weekends)
	fmt.Fprintf(&b, "  data directory: %s\n", data.DataDir)
	return b.String()
}

type ReminderItemData struct {
	Name string
	Done bool
}

type ReminderPopupData struct {
	Title    string
	Warning  bool
	Items    []ReminderItemData
	Cursor   int
	ShowHint string
}

func RenderReminderPopup(data ReminderPopupData) string {
	var b strings.Builder
	title := data.Title
	if data.Warning {
		title = warningStyle.Render("⚠ " + title)
	}
	b.WriteString(title)
	b.WriteString("\n\n")
	for i, item := range data.Items {
		cursor := "  "
		if i == data.Cursor {
			cursor = "> "
		}
		mark := "[ ]"
		if item.Done {
			mark = "[✓]"
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, mark, item.Name)
	}
	if data.ShowHint != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(data.ShowHint))
	}
	return b.String()
}

type HelpPanelData struct {
	CurrentView string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	md := "# Help: " + data.CurrentView + "\n\n" + helpMarkdown
	var b strings.Builder
	b.WriteString(RenderMarkdown(md))
	b.WriteString("\n")
	b.WriteString(data.HelpView)
	return panelStyle.Render(b.String())
}

const helpMarkdown = `
| key | action |
|-----|--------|
| 1-4 | switch view (today / logs / calendar / settings) |
| a   | add a task (` + "`HH:MM item1,item2`" + `) |
| e   | toggle the selected task on or off |
| d   | delete the selected task |
| enter | open the completion popup for the selected task |
| h/l | previous / next month (logs, calendar) |
| t   | toggle day inclusion override (calendar) |
| c   | clear this month's overrides (calendar) |
| y   | copy the monthly summary to the clipboard |
| i   | import tasks from the configured YAML file |
| w   | toggle weekend exclusion (settings) |
| s   | snooze the open reminder |
| ?   | toggle help |
| q   | quit |
`
