package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/takenet193/task-reminder-tool/internal/model"
	"github.com/takenet193/task-reminder-tool/internal/scheduler"
)

const preNotificationAutoClose = 60 * time.Second

// handleReminder turns a fired notification into a popup. Main popups are
// registered with the monitor so the warning for the same task can upgrade
// them in place instead of stacking a second surface.
func (m Model) handleReminder(ev ReminderEvent) (Model, tea.Cmd) {
	if m.DesktopEnabled {
		if err := m.notifier.Send(Notification{
			Title: reminderTitle(ev.Kind, ev.Task),
			Body:  strings.Join(ev.Task.TaskNames, ", "),
		}); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("desktop notification error: %v", err), IsError: true}
		}
	}

	switch ev.Kind {
	case scheduler.KindPre:
		m = m.openPopup(ev.Task, scheduler.KindPre)
		surface := m.Popup.Surface
		return m, tea.Tick(preNotificationAutoClose, func(time.Time) tea.Msg {
			return autoCloseMsg{Surface: surface}
		})
	case scheduler.KindMain:
		m = m.openPopup(ev.Task, scheduler.KindMain)
		if m.Monitor != nil {
			m.Monitor.RegisterWindow(ev.Task.ID, m.Popup.Surface)
		}
		return m, nil
	case scheduler.KindWarning:
		if m.Monitor != nil && m.Monitor.Window(ev.Task.ID) != nil &&
			m.Popup != nil && m.Popup.Task.ID == ev.Task.ID {
			// The main popup is still open: upgrade it rather than
			// opening a second surface.
			m.Popup.Kind = scheduler.KindWarning
			m.Status = StatusBar{Text: "reminder escalated to warning: " + ev.Task.ID, IsError: true}
			return m, nil
		}
		m = m.openPopup(ev.Task, scheduler.KindWarning)
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) openPopup(task model.Task, kind scheduler.Kind) Model {
	if m.Popup != nil {
		m.Popup.Surface.close()
	}
	m.Popup = &PopupState{
		Task:    task,
		Kind:    kind,
		Checked: make([]bool, len(task.TaskNames)),
		Surface: newPopupSurface(),
	}
	m.Status = StatusBar{Text: reminderTitle(kind, task)}
	return m
}

func (m Model) closePopup() Model {
	if m.Popup != nil {
		m.Popup.Surface.close()
		m.Popup = nil
	}
	return m
}

func (m Model) handlePopupKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	p := m.Popup
	switch msg.String() {
	case "up", "k":
		if p.Cursor > 0 {
			p.Cursor--
		}
	case "down", "j":
		if p.Cursor < len(p.Checked)-1 {
			p.Cursor++
		}
	case " ":
		if len(p.Checked) > 0 {
			p.Checked[p.Cursor] = !p.Checked[p.Cursor]
		}
	case "enter":
		return m.commitPopup()
	case "s":
		return m.snoozePopup()
	case "esc":
		m = m.closePopup()
		m.Status = StatusBar{Text: "reminder dismissed"}
	}
	return m, nil
}

// commitPopup records the checked sub-items. A main popup asks for every
// sub-item before completing; a warning accepts a partial set.
func (m Model) commitPopup() (Model, tea.Cmd) {
	p := m.Popup
	checked := 0
	for _, done := range p.Checked {
		if done {
			checked++
		}
	}
	if p.Kind == scheduler.KindWarning {
		if checked == 0 {
			m.Status = StatusBar{Text: "check at least one sub-item", IsError: true}
			return m, nil
		}
	} else if checked < len(p.Checked) {
		m.Status = StatusBar{Text: "check every sub-item to complete", IsError: true}
		return m, nil
	}

	for i, done := range p.Checked {
		if !done {
			continue
		}
		if err := m.Monitor.MarkTaskCompleted(p.Task.ID, p.Task.TaskNames[i]); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("error recording completion: %v", err), IsError: true}
			return m, nil
		}
	}
	m = m.closePopup()
	m.Status = StatusBar{Text: fmt.Sprintf("recorded %d completion(s)", checked)}
	return m, nil
}

// snoozePopup closes the popup and re-raises the same reminder after the
// task's snooze interval.
func (m Model) snoozePopup() (Model, tea.Cmd) {
	p := m.Popup
	ev := ReminderEvent{Kind: p.Kind, Task: p.Task}
	wait := time.Duration(p.Task.ScheduleConfig().SnoozeMinutes) * time.Minute
	m = m.closePopup()
	m.Status = StatusBar{Text: fmt.Sprintf("snoozed %s for %s", ev.Task.ID, wait)}
	return m, tea.Tick(wait, func(time.Time) tea.Msg {
		return reminderMsg{Event: ev}
	})
}

func reminderTitle(kind scheduler.Kind, task model.Task) string {
	switch kind {
	case scheduler.KindPre:
		return fmt.Sprintf("task %s starts at %s", task.ID, task.Time)
	case scheduler.KindWarning:
		return fmt.Sprintf("task %s is overdue", task.ID)
	default:
		return fmt.Sprintf("task %s is due now", task.ID)
	}
}
