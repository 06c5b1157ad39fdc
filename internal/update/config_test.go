package update

import "testing"

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.DataDir != "data" {
		t.Fatalf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.PollSeconds != 10 {
		t.Fatalf("PollSeconds = %d, want 10", cfg.PollSeconds)
	}
	if cfg.DesktopNotifications {
		t.Fatalf("DesktopNotifications should default to false")
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("TASKREMINDER_DATA_DIR", "/tmp/reminders")
	t.Setenv("TASKREMINDER_POLL_SECONDS", "30")
	t.Setenv("TASKREMINDER_DESKTOP_NOTIFICATIONS", "true")
	t.Setenv("TASKREMINDER_IMPORT_FILE", "tasks.yaml")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.DataDir != "/tmp/reminders" {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
	if cfg.PollSeconds != 30 {
		t.Fatalf("PollSeconds = %d", cfg.PollSeconds)
	}
	if !cfg.DesktopNotifications {
		t.Fatalf("DesktopNotifications should be true")
	}
	if cfg.ImportFile != "tasks.yaml" {
		t.Fatalf("ImportFile = %q", cfg.ImportFile)
	}
}

func TestRuntimeConfigFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("TASKREMINDER_POLL_SECONDS", "not-a-number")
	t.Setenv("TASKREMINDER_DESKTOP_NOTIFICATIONS", "maybe")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.PollSeconds != 10 {
		t.Fatalf("invalid poll seconds should keep the default, got %d", cfg.PollSeconds)
	}
	if cfg.DesktopNotifications {
		t.Fatalf("invalid bool should keep the default")
	}
}
