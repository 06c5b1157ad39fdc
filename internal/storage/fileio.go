package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// WriteJSONAtomic writes v as indented JSON to path so that a reader never
// observes a partial document. The previous version is copied to path+".bak"
// before the write and restored if anything between serialization and the
// final rename fails; the temp file lives at path+".tmp" until it is renamed
// over the target in a single step.
func WriteJSONAtomic(path string, v any) error {
	backupPath := path + ".bak"
	tempPath := path + ".tmp"

	hasBackup := false
	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, backupPath); err != nil {
			// A missing backup only means there is no prior version to
			// restore; the write itself still proceeds.
			slog.Warn("backup before write failed", "path", path, "error", err)
		} else {
			hasBackup = true
		}
	}

	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		rollback(path, tempPath, backupPath, hasBackup)
		return fmt.Errorf("storage: encode %s: %w", path, err)
	}
	payload = append(payload, '\n')

	if err := os.WriteFile(tempPath, payload, 0o644); err != nil {
		rollback(path, tempPath, backupPath, hasBackup)
		return fmt.Errorf("storage: write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		rollback(path, tempPath, backupPath, hasBackup)
		return fmt.Errorf("storage: replace %s: %w", path, err)
	}

	if hasBackup {
		if err := os.Remove(backupPath); err != nil {
			slog.Warn("backup cleanup failed", "path", backupPath, "error", err)
		}
	}
	return nil
}

func rollback(path, tempPath, backupPath string, hasBackup bool) {
	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("temp file cleanup failed", "path", tempPath, "error", err)
	}
	if !hasBackup {
		return
	}
	if err := copyFile(backupPath, path); err != nil {
		slog.Error("restore from backup failed", "path", path, "error", err)
		return
	}
	slog.Warn("restored previous version from backup", "path", path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
