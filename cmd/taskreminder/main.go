package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/takenet193/task-reminder-tool/internal/model"
	"github.com/takenet193/task-reminder-tool/internal/scheduler"
	"github.com/takenet193/task-reminder-tool/internal/storage"
	"github.com/takenet193/task-reminder-tool/internal/update"
)

func main() {
	cfg := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())

	// The terminal belongs to the TUI; diagnostics go to a file next to
	// the data.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "taskreminder: create data dir: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "taskreminder.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		defer logFile.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))
	}

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskreminder: open store: %v\n", err)
		os.Exit(1)
	}

	monitor := scheduler.NewMonitor(store)
	monitor.SetPollInterval(time.Duration(cfg.PollSeconds) * time.Second)

	events := make(chan update.ReminderEvent, 16)
	forward := func(kind scheduler.Kind) scheduler.Callback {
		return func(task model.Task) {
			select {
			case events <- update.ReminderEvent{Kind: kind, Task: task}:
			default:
				slog.Warn("reminder event dropped", "kind", string(kind), "task_id", task.ID)
			}
		}
	}
	monitor.SetNotificationCallback(scheduler.KindPre, forward(scheduler.KindPre))
	monitor.SetNotificationCallback(scheduler.KindMain, forward(scheduler.KindMain))
	monitor.SetNotificationCallback(scheduler.KindWarning, forward(scheduler.KindWarning))

	monitor.ClearNotificationHistory()
	monitor.StartMonitoring()
	defer monitor.StopMonitoring()

	program := tea.NewProgram(update.NewModel(store, monitor, events, cfg))
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskreminder failed: %v\n", err)
		os.Exit(1)
	}
}
