package scheduler

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/takenet193/task-reminder-tool/internal/model"
	"github.com/takenet193/task-reminder-tool/internal/storage"
)

// Kind identifies one of the three notification levels an occurrence
// fires at.
type Kind string

const (
	KindPre     Kind = "pre"
	KindMain    Kind = "main"
	KindWarning Kind = "warning"
)

// DefaultPollInterval is how often the monitor re-evaluates every enabled
// task. The firing window is ±triggerWindow around each target instant, so
// each occurrence is observed several times while in-window; the fired-set
// guarantees a single dispatch per key.
const DefaultPollInterval = 10 * time.Second

const triggerWindow = 60 * time.Second

const firedKeyLayout = "2006-01-02_15:04"

// Callback receives the task a notification fired for. Callbacks run
// synchronously on the poll goroutine.
type Callback func(model.Task)

// WindowHandle is an open notification surface owned by the UI layer. The
// monitor only stores handles and drops ones whose Exists reports false.
type WindowHandle interface {
	Exists() bool
}

// Monitor polls the clock and decides, once per occurrence and kind,
// whether to invoke the registered notification callbacks. The fired-set
// and window registry are shared with the foreground caller and guarded by
// a single mutex.
type Monitor struct {
	store        *storage.Store
	logger       *slog.Logger
	pollInterval time.Duration
	now          func() time.Time

	mu        sync.Mutex
	callbacks map[Kind]Callback
	fired     map[string]bool
	windows   map[string]WindowHandle
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewMonitor(store *storage.Store) *Monitor {
	return &Monitor{
		store:        store,
		logger:       slog.Default(),
		pollInterval: DefaultPollInterval,
		now:          time.Now,
		callbacks:    make(map[Kind]Callback),
		fired:        make(map[string]bool),
		windows:      make(map[string]WindowHandle),
	}
}

// SetPollInterval overrides the poll cadence. It has no effect on a loop
// that is already running.
func (m *Monitor) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.pollInterval = d
}

// SetNotificationCallback registers the handler invoked when the given
// kind fires. Unknown kinds are ignored.
func (m *Monitor) SetNotificationCallback(kind Kind, fn Callback) {
	switch kind {
	case KindPre, KindMain, KindWarning:
	default:
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks[kind] = fn
}

// StartMonitoring launches the background poll goroutine. Calling it while
// already running is a no-op.
func (m *Monitor) StartMonitoring() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	go m.loop(m.stopCh, m.doneCh)
	m.logger.Info("task monitoring started")
}

// StopMonitoring signals the poll goroutine to exit after its current
// cycle and blocks until it has. Calling it while stopped is a no-op.
func (m *Monitor) StopMonitoring() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()
	<-done
	m.logger.Info("task monitoring stopped")
}

func (m *Monitor) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		m.runCycle()
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}
	}
}

// runCycle evaluates every enabled task once. Any panic is logged and the
// poll loop carries on at the next tick; a per-task failure must never
// stop monitoring.
func (m *Monitor) runCycle() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("poll cycle failed", "panic", fmt.Sprint(r))
		}
	}()

	now := m.now()
	today := now.Format(model.DateLayout)
	for _, task := range m.store.LoadTasks() {
		if !task.Enabled {
			continue
		}
		plan, ok := task.NotificationTimes(now)
		if !ok {
			// Unparseable time field: the task cannot be scheduled.
			continue
		}
		if m.shouldTrigger(now, plan.Pre, task.ID, KindPre) {
			m.dispatch(KindPre, task)
		}
		if m.shouldTrigger(now, plan.Main, task.ID, KindMain) {
			m.dispatch(KindMain, task)
		}
		if !m.IsTaskCompleted(task.ID, today) && m.shouldTrigger(now, plan.Warning, task.ID, KindWarning) {
			m.dispatch(KindWarning, task)
		}
	}
}

// shouldTrigger reports whether the notification identified by task,
// target instant, and kind should fire now, and records the transition so
// the same occurrence never fires twice.
func (m *Monitor) shouldTrigger(now, target time.Time, taskID string, kind Kind) bool {
	key := firedKey(taskID, target, kind)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fired[key] {
		return false
	}
	diff := now.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	if diff > triggerWindow {
		return false
	}
	m.fired[key] = true
	return true
}

func (m *Monitor) dispatch(kind Kind, task model.Task) {
	m.mu.Lock()
	fn := m.callbacks[kind]
	m.mu.Unlock()
	if fn == nil {
		return
	}
	m.logger.Debug("notification fired", "kind", string(kind), "task_id", task.ID)
	fn(task)
}

func firedKey(taskID string, target time.Time, kind Kind) string {
	return fmt.Sprintf("%s_%s_%s", taskID, target.Format(firedKeyLayout), kind)
}

// RegisterWindow records the open notification surface for a task so a
// later warning can upgrade it instead of opening a second one.
func (m *Monitor) RegisterWindow(taskID string, w WindowHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[taskID] = w
}

// Window returns the task's registered surface, or nil if none is open.
// Dead handles are removed on lookup.
func (m *Monitor) Window(taskID string) WindowHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[taskID]
	if !ok {
		return nil
	}
	if w == nil || !w.Exists() {
		delete(m.windows, taskID)
		return nil
	}
	return w
}

// MarkTaskCompleted appends a completed log entry for one sub-item.
func (m *Monitor) MarkTaskCompleted(taskID, taskName string) error {
	if err := m.store.AddLog(taskID, taskName, true); err != nil {
		return err
	}
	m.logger.Info("sub-item completed", "task_id", taskID, "task_name", taskName)
	return nil
}

// MarkTaskIncomplete appends a not-completed log entry for one sub-item.
func (m *Monitor) MarkTaskIncomplete(taskID, taskName string) error {
	if err := m.store.AddLog(taskID, taskName, false); err != nil {
		return err
	}
	m.logger.Info("sub-item marked incomplete", "task_id", taskID, "task_name", taskName)
	return nil
}

// TodayTasks returns the enabled tasks, the set the monitor watches.
func (m *Monitor) TodayTasks() []model.Task {
	out := make([]model.Task, 0)
	for _, task := range m.store.LoadTasks() {
		if task.Enabled {
			out = append(out, task)
		}
	}
	return out
}

// IsTaskCompleted reports whether every sub-item of the task was logged
// complete on the given "YYYY-MM-DD" date. The completed count is compared
// against the task's current sub-item list, so editing the list rewrites
// history for past days; a task with no sub-items is never complete.
func (m *Monitor) IsTaskCompleted(taskID, date string) bool {
	completed := 0
	for _, entry := range m.store.LogsByDate(date) {
		if entry.TaskID == taskID && entry.Completed {
			completed++
		}
	}

	var task *model.Task
	for _, t := range m.store.LoadTasks() {
		if t.ID == taskID {
			task = &t
			break
		}
	}
	if task == nil {
		return false
	}
	expected := len(task.TaskNames)
	return expected > 0 && completed >= expected
}

// ClearNotificationHistory drops fired-set keys whose embedded date is not
// today, keeping the set bounded across days.
func (m *Monitor) ClearNotificationHistory() {
	today := m.now().Format(model.DateLayout)
	pattern := regexp.MustCompile("_" + regexp.QuoteMeta(today) + `_\d{2}:\d{2}_`)

	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.fired {
		if !pattern.MatchString(key) {
			delete(m.fired, key)
		}
	}
}
