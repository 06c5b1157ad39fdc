package update

import (
	"os"
	"strconv"
	"strings"
)

type RuntimeConfig struct {
	DataDir              string
	PollSeconds          int
	DesktopNotifications bool
	ImportFile           string
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DataDir:              "data",
		PollSeconds:          10,
		DesktopNotifications: false,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TASKREMINDER_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v, ok := getEnvInt("TASKREMINDER_POLL_SECONDS"); ok && v > 0 {
		cfg.PollSeconds = v
	}
	if v, ok := getEnvBool("TASKREMINDER_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKREMINDER_IMPORT_FILE")); v != "" {
		cfg.ImportFile = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
