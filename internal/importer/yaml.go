// Package importer creates tasks in bulk from a YAML document.
package importer

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/takenet193/task-reminder-tool/internal/model"
	"github.com/takenet193/task-reminder-tool/internal/storage"
)

// YAMLTask is a single task definition in the YAML input. Enabled defaults
// to true when omitted.
type YAMLTask struct {
	Time      string   `yaml:"time"`
	TaskNames []string `yaml:"task_names"`
	Enabled   *bool    `yaml:"enabled,omitempty"`
}

// YAMLInput is the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// Import parses a YAML document and creates its tasks through the store.
// It returns the number of tasks created; the first invalid task or failed
// save aborts the import with the count so far.
func Import(s *storage.Store, yamlStr string) (int, error) {
	var input YAMLInput
	if err := yaml.Unmarshal([]byte(yamlStr), &input); err != nil {
		return 0, fmt.Errorf("importer: parse yaml: %w", err)
	}
	if len(input.Tasks) == 0 {
		return 0, fmt.Errorf("importer: no tasks found in yaml")
	}

	count := 0
	for _, yt := range input.Tasks {
		if !model.ValidClock(yt.Time) {
			return count, fmt.Errorf("importer: task %d: invalid time %q", count+1, yt.Time)
		}
		if len(yt.TaskNames) == 0 {
			return count, fmt.Errorf("importer: task %d: task_names is required", count+1)
		}
		enabled := true
		if yt.Enabled != nil {
			enabled = *yt.Enabled
		}
		if _, err := s.AddTask(yt.Time, yt.TaskNames, enabled); err != nil {
			return count, fmt.Errorf("importer: add task %d: %w", count+1, err)
		}
		count++
	}
	return count, nil
}
