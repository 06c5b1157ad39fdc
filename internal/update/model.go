package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/takenet193/task-reminder-tool/internal/model"
	"github.com/takenet193/task-reminder-tool/internal/scheduler"
	"github.com/takenet193/task-reminder-tool/internal/storage"
)

type View string

const (
	ViewToday    View = "Today"
	ViewLogs     View = "Logs"
	ViewCalendar View = "Calendar"
	ViewSettings View = "Settings"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today    string
	Logs     string
	Calendar string
	Settings string
	Help     string
	Quit     string
}

// ReminderEvent crosses from the monitor's poll goroutine into the
// program's update loop.
type ReminderEvent struct {
	Kind scheduler.Kind
	Task model.Task
}

// PopupSurface is the open-window handle registered with the monitor. It
// outlives Model copies, so a warning firing can find the popup that a
// main firing opened.
type PopupSurface struct {
	mu   sync.Mutex
	open bool
}

func newPopupSurface() *PopupSurface {
	return &PopupSurface{open: true}
}

func (s *PopupSurface) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *PopupSurface) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// PopupState is the reminder popup currently on screen, if any.
type PopupState struct {
	Task    model.Task
	Kind    scheduler.Kind
	Checked []bool
	Cursor  int
	Surface *PopupSurface
}

type Model struct {
	CurrentView View
	Store       *storage.Store
	Monitor     *scheduler.Monitor
	Events      <-chan ReminderEvent

	Status      StatusBar
	Keys        GlobalKeyMap
	HelpVisible bool
	Quitting    bool

	Popup       *PopupState
	TodayCursor int

	// Month in focus for the logs and calendar views.
	FocusYear  int
	FocusMonth int
	// Day cursor within the calendar view.
	CalendarDay int

	DesktopEnabled bool
	notifier       DesktopNotifier
	ImportFile     string
	DataDir        string

	inputActive   bool
	quickAddInput textinput.Model
	logsTable     table.Model
	helpModel     help.Model

	now func() time.Time
}

type reminderMsg struct {
	Event ReminderEvent
}

type autoCloseMsg struct {
	Surface *PopupSurface
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type Notification struct {
	Title string
	Body  string
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`,
			escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func NewModel(store *storage.Store, monitor *scheduler.Monitor, events <-chan ReminderEvent, cfg RuntimeConfig) Model {
	now := time.Now()
	input := textinput.New()
	input.Placeholder = "14:30 日報,勤怠報告"
	input.CharLimit = 120

	logsTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 10},
			{Title: "Time", Width: 5},
			{Title: "Task", Width: 10},
			{Title: "Sub-item", Width: 24},
			{Title: "Done", Width: 4},
		}),
		table.WithHeight(12),
	)

	m := Model{
		CurrentView: ViewToday,
		Store:       store,
		Monitor:     monitor,
		Events:      events,
		Keys: GlobalKeyMap{
			Today:    "1",
			Logs:     "2",
			Calendar: "3",
			Settings: "4",
			Help:     "?",
			Quit:     "q",
		},
		FocusYear:      now.Year(),
		FocusMonth:     int(now.Month()),
		CalendarDay:    now.Day(),
		DesktopEnabled: cfg.DesktopNotifications,
		notifier:       NoopDesktopNotifier{},
		ImportFile:     cfg.ImportFile,
		DataDir:        cfg.DataDir,
		quickAddInput:  input,
		logsTable:      logsTable,
		helpModel:      help.New(),
		now:            time.Now,
	}
	if cfg.DesktopNotifications {
		m.notifier = ExecDesktopNotifier{}
	}
	m.refreshLogsTable()
	return m
}

func helpBindings() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "view")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "toggle")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("h", "l"), key.WithHelp("h/l", "month")),
		key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func waitForReminderCmd(ch <-chan ReminderEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return reminderMsg{Event: ev}
	}
}
