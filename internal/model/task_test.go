package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestTaskValidate(t *testing.T) {
	valid := Task{ID: "task_001", Time: "14:30", TaskNames: []string{"日報"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	cases := []struct {
		name string
		task Task
		want error
	}{
		{"missing id", Task{Time: "14:30", TaskNames: []string{"a"}}, nil},
		{"bad time", Task{ID: "task_001", Time: "24:00", TaskNames: []string{"a"}}, ErrInvalidTaskTime},
		{"no sub-items", Task{ID: "task_001", Time: "14:30"}, ErrNoSubItems},
	}
	for _, tc := range cases {
		err := tc.task.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestTaskUnmarshalEnabledDefault(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"missing key", `{"id":"task_001","time":"14:30","task_names":["a"]}`, true},
		{"explicit true", `{"id":"task_001","time":"14:30","task_names":["a"],"enabled":true}`, true},
		{"explicit false", `{"id":"task_001","time":"14:30","task_names":["a"],"enabled":false}`, false},
	}
	for _, tc := range cases {
		var task Task
		if err := json.Unmarshal([]byte(tc.raw), &task); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if task.Enabled != tc.want {
			t.Fatalf("%s: Enabled = %v, want %v", tc.name, task.Enabled, tc.want)
		}
	}
}

func TestSettingsRoundTripPreservesExtraKeys(t *testing.T) {
	raw := []byte(`{"exclude_weekends": true, "theme": "dark", "volume": 3}`)
	var settings Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !settings.ExcludeWeekends {
		t.Fatalf("exclude_weekends not decoded")
	}

	out, err := json.Marshal(settings)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if decoded["theme"] != "dark" {
		t.Fatalf("extra key dropped: %v", decoded)
	}
	if decoded["volume"] != float64(3) {
		t.Fatalf("extra key dropped: %v", decoded)
	}
	if decoded["exclude_weekends"] != true {
		t.Fatalf("exclude_weekends lost: %v", decoded)
	}
}

func TestMonthAndDateKeys(t *testing.T) {
	if got := MonthKey(2026, 3); got != "2026-03" {
		t.Fatalf("month key = %s", got)
	}
	if got := DateKey(2026, 3, 4); got != "2026-03-04" {
		t.Fatalf("date key = %s", got)
	}
}
