package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/takenet193/task-reminder-tool/internal/model"
	"github.com/takenet193/task-reminder-tool/internal/storage"
)

func newTestMonitor(t *testing.T) (*Monitor, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewMonitor(store), store
}

func TestShouldTriggerFiresOncePerKey(t *testing.T) {
	m, _ := newTestMonitor(t)
	now := time.Date(2026, 3, 4, 14, 30, 0, 0, time.Local)

	if !m.shouldTrigger(now, now, "task_001", KindMain) {
		t.Fatalf("first check should fire")
	}
	if m.shouldTrigger(now, now, "task_001", KindMain) {
		t.Fatalf("second check for the same key should not fire")
	}
	// A different kind for the same instant is an independent key.
	if !m.shouldTrigger(now, now, "task_001", KindPre) {
		t.Fatalf("other kind should fire independently")
	}
}

func TestShouldTriggerWindowBoundary(t *testing.T) {
	m, _ := newTestMonitor(t)
	now := time.Date(2026, 3, 4, 14, 30, 0, 0, time.Local)

	cases := []struct {
		name   string
		target time.Time
		want   bool
	}{
		{"exactly 60s ahead", now.Add(60 * time.Second), true},
		{"exactly 60s behind", now.Add(-60 * time.Second), true},
		{"120s ahead", now.Add(120 * time.Second), false},
		{"61s behind", now.Add(-61 * time.Second), false},
	}
	for _, tc := range cases {
		if got := m.shouldTrigger(now, tc.target, "task_"+tc.name, KindMain); got != tc.want {
			t.Fatalf("%s: trigger = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsTaskCompleted(t *testing.T) {
	m, store := newTestMonitor(t)
	store.SaveTasks([]model.Task{{
		ID: "task_001", Time: "14:30", TaskNames: []string{"A", "B"}, Enabled: true,
	}})

	if m.IsTaskCompleted("task_001", "2026-03-04") {
		t.Fatalf("no logs yet, should be incomplete")
	}

	store.SaveLogs([]model.LogEntry{
		{Date: "2026-03-04", Time: "14:31", TaskID: "task_001", TaskName: "A", Completed: true},
	})
	if m.IsTaskCompleted("task_001", "2026-03-04") {
		t.Fatalf("one of two sub-items done, should be incomplete")
	}

	store.SaveLogs([]model.LogEntry{
		{Date: "2026-03-04", Time: "14:31", TaskID: "task_001", TaskName: "A", Completed: true},
		{Date: "2026-03-04", Time: "14:32", TaskID: "task_001", TaskName: "B", Completed: true},
	})
	if !m.IsTaskCompleted("task_001", "2026-03-04") {
		t.Fatalf("both sub-items done, should be complete")
	}
	if m.IsTaskCompleted("task_001", "2026-03-05") {
		t.Fatalf("other date should be incomplete")
	}
}

func TestIsTaskCompletedZeroSubItems(t *testing.T) {
	m, store := newTestMonitor(t)
	store.SaveTasks([]model.Task{{ID: "task_001", Time: "14:30", Enabled: true}})
	store.SaveLogs([]model.LogEntry{
		{Date: "2026-03-04", TaskID: "task_001", TaskName: "x", Completed: true},
	})
	if m.IsTaskCompleted("task_001", "2026-03-04") {
		t.Fatalf("a task with no sub-items is never complete")
	}
}

func TestIsTaskCompletedUnknownTask(t *testing.T) {
	m, _ := newTestMonitor(t)
	if m.IsTaskCompleted("task_404", "2026-03-04") {
		t.Fatalf("unknown task should be incomplete")
	}
}

func TestRunCycleFiresCallbacks(t *testing.T) {
	m, store := newTestMonitor(t)
	store.SaveTasks([]model.Task{{
		ID: "task_001", Time: "14:30", TaskNames: []string{"A"}, Enabled: true,
	}})
	m.now = func() time.Time {
		return time.Date(2026, 3, 4, 14, 30, 5, 0, time.Local)
	}

	fired := make(map[Kind]int)
	for _, kind := range []Kind{KindPre, KindMain, KindWarning} {
		kind := kind
		m.SetNotificationCallback(kind, func(model.Task) { fired[kind]++ })
	}

	m.runCycle()
	m.runCycle()

	if fired[KindMain] != 1 {
		t.Fatalf("main fired %d times, want 1", fired[KindMain])
	}
	// Pre (14:25) and warning (14:35) are out of the ±60s window.
	if fired[KindPre] != 0 || fired[KindWarning] != 0 {
		t.Fatalf("unexpected pre/warning firings: %v", fired)
	}
}

func TestRunCycleSkipsDisabledAndInvalidTasks(t *testing.T) {
	m, store := newTestMonitor(t)
	store.SaveTasks([]model.Task{
		{ID: "task_001", Time: "14:30", TaskNames: []string{"A"}, Enabled: false},
		{ID: "task_002", Time: "25:00", TaskNames: []string{"B"}, Enabled: true},
	})
	m.now = func() time.Time {
		return time.Date(2026, 3, 4, 14, 30, 0, 0, time.Local)
	}

	count := 0
	m.SetNotificationCallback(KindMain, func(model.Task) { count++ })
	m.runCycle()
	if count != 0 {
		t.Fatalf("disabled or unschedulable tasks fired %d times", count)
	}
}

func TestRunCycleSuppressesWarningWhenCompleted(t *testing.T) {
	m, store := newTestMonitor(t)
	store.SaveTasks([]model.Task{{
		ID: "task_001", Time: "14:30", TaskNames: []string{"A"}, Enabled: true,
	}})
	store.SaveLogs([]model.LogEntry{
		{Date: "2026-03-04", Time: "14:31", TaskID: "task_001", TaskName: "A", Completed: true},
	})
	// 14:35 is the warning instant for a 14:30 task with default offsets.
	m.now = func() time.Time {
		return time.Date(2026, 3, 4, 14, 35, 0, 0, time.Local)
	}

	warnings := 0
	m.SetNotificationCallback(KindWarning, func(model.Task) { warnings++ })
	m.runCycle()
	if warnings != 0 {
		t.Fatalf("warning fired for a completed task")
	}
}

func TestRunCycleFiresWarningWhenIncomplete(t *testing.T) {
	m, store := newTestMonitor(t)
	store.SaveTasks([]model.Task{{
		ID: "task_001", Time: "14:30", TaskNames: []string{"A", "B"}, Enabled: true,
	}})
	store.SaveLogs([]model.LogEntry{
		{Date: "2026-03-04", Time: "14:31", TaskID: "task_001", TaskName: "A", Completed: true},
	})
	m.now = func() time.Time {
		return time.Date(2026, 3, 4, 14, 35, 0, 0, time.Local)
	}

	warnings := 0
	m.SetNotificationCallback(KindWarning, func(model.Task) { warnings++ })
	m.runCycle()
	if warnings != 1 {
		t.Fatalf("warning fired %d times, want 1", warnings)
	}
}

func TestRunCycleSurvivesCallbackPanic(t *testing.T) {
	m, store := newTestMonitor(t)
	store.SaveTasks([]model.Task{{
		ID: "task_001", Time: "14:30", TaskNames: []string{"A"}, Enabled: true,
	}})
	m.now = func() time.Time {
		return time.Date(2026, 3, 4, 14, 30, 0, 0, time.Local)
	}
	m.SetNotificationCallback(KindMain, func(model.Task) { panic("boom") })

	// Must not propagate.
	m.runCycle()
	m.runCycle()
}

func TestClearNotificationHistoryKeepsToday(t *testing.T) {
	m, _ := newTestMonitor(t)
	m.now = func() time.Time {
		return time.Date(2026, 3, 4, 9, 0, 0, 0, time.Local)
	}

	today := time.Date(2026, 3, 4, 14, 30, 0, 0, time.Local)
	yesterday := today.AddDate(0, 0, -1)
	m.shouldTrigger(today, today, "task_001", KindMain)
	m.shouldTrigger(yesterday, yesterday, "task_001", KindMain)

	m.ClearNotificationHistory()

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.fired) != 1 {
		t.Fatalf("expected 1 surviving key, got %d", len(m.fired))
	}
	if !m.fired[firedKey("task_001", today, KindMain)] {
		t.Fatalf("today's key was dropped")
	}
}

func TestStartStopIdempotentAndJoins(t *testing.T) {
	m, _ := newTestMonitor(t)
	m.pollInterval = 10 * time.Millisecond

	m.StartMonitoring()
	m.StartMonitoring()
	time.Sleep(25 * time.Millisecond)
	m.StopMonitoring()
	m.StopMonitoring()

	// A stopped monitor can be started again.
	m.StartMonitoring()
	m.StopMonitoring()
}

type fakeWindow struct {
	alive bool
}

func (w *fakeWindow) Exists() bool { return w.alive }

func TestWindowRegistryCollectsDeadHandles(t *testing.T) {
	m, _ := newTestMonitor(t)

	w := &fakeWindow{alive: true}
	m.RegisterWindow("task_001", w)
	if got := m.Window("task_001"); got != w {
		t.Fatalf("live window not returned")
	}

	w.alive = false
	if got := m.Window("task_001"); got != nil {
		t.Fatalf("dead window returned")
	}
	// The dead handle is removed on lookup.
	if got := m.Window("task_001"); got != nil {
		t.Fatalf("dead window still registered")
	}
	if got := m.Window("task_404"); got != nil {
		t.Fatalf("unknown task returned a window")
	}
}

func TestMarkCompletionWritesLogs(t *testing.T) {
	m, store := newTestMonitor(t)
	if err := m.MarkTaskCompleted("task_001", "日報"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if err := m.MarkTaskIncomplete("task_001", "勤怠報告"); err != nil {
		t.Fatalf("mark incomplete: %v", err)
	}

	logs := store.LoadLogs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if !logs[0].Completed || logs[1].Completed {
		t.Fatalf("unexpected completion flags: %+v", logs)
	}
}

func TestTodayTasksFiltersDisabled(t *testing.T) {
	m, store := newTestMonitor(t)
	store.SaveTasks([]model.Task{
		{ID: "task_001", Time: "09:00", TaskNames: []string{"a"}, Enabled: true},
		{ID: "task_002", Time: "10:00", TaskNames: []string{"b"}, Enabled: false},
	})
	today := m.TodayTasks()
	if len(today) != 1 || today[0].ID != "task_001" {
		t.Fatalf("unexpected today tasks: %+v", today)
	}
}
