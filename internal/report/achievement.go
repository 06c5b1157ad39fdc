// Package report computes completion-rate statistics over the persisted
// tasks and logs.
package report

import (
	"fmt"
	"time"

	"github.com/takenet193/task-reminder-tool/internal/model"
	"github.com/takenet193/task-reminder-tool/internal/storage"
)

// DayStat is one calendar day's completion summary. Total is the number of
// sub-items expected that day across enabled tasks; days excluded from
// statistics carry zero totals.
type DayStat struct {
	Day       int
	Included  bool
	Total     int
	Completed int
	Rate      float64
}

// Status renders the day as a single glyph: done, partial, missed, or
// nothing expected.
func (d DayStat) Status() string {
	if d.Total == 0 {
		return "-"
	}
	switch {
	case d.Rate >= 100:
		return "✓"
	case d.Rate >= 50:
		return "△"
	default:
		return "✗"
	}
}

// MonthlyReport aggregates one month's daily stats.
type MonthlyReport struct {
	Year      int
	Month     int
	Days      []DayStat
	Total     int
	Completed int
	Rate      float64
}

// Summary renders the month's headline rate.
func (r MonthlyReport) Summary() string {
	return fmt.Sprintf("%s achievement: %.1f%% (%d/%d)",
		model.MonthKey(r.Year, r.Month), r.Rate, r.Completed, r.Total)
}

// Monthly computes the completion report for a calendar month. A task
// contributes its sub-item count to every included day between its created
// date and today; completions come from that day's completed log entries.
func Monthly(store *storage.Store, year, month int, today time.Time) MonthlyReport {
	logs := store.LogsByMonth(year, month)

	enabled := make([]model.Task, 0)
	for _, task := range store.LoadTasks() {
		if task.Enabled {
			enabled = append(enabled, task)
		}
	}

	createdDates := make(map[string]string, len(enabled))
	for _, task := range enabled {
		createdDates[task.ID] = store.TaskCreatedDate(task)
	}

	todayKey := today.Format(model.DateLayout)
	report := MonthlyReport{Year: year, Month: month}
	lastDay := daysIn(year, month)
	for day := 1; day <= lastDay; day++ {
		dateKey := model.DateKey(year, month, day)
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())

		stat := DayStat{Day: day}
		if !store.IsDateIncluded(date) {
			report.Days = append(report.Days, stat)
			continue
		}
		stat.Included = true

		if dateKey <= todayKey {
			for _, task := range enabled {
				if createdDates[task.ID] <= dateKey {
					stat.Total += len(task.TaskNames)
				}
			}
		}
		for _, entry := range logs {
			if entry.Date == dateKey && entry.Completed {
				stat.Completed++
			}
		}
		if stat.Total > 0 {
			stat.Rate = float64(stat.Completed) / float64(stat.Total) * 100
		}
		report.Days = append(report.Days, stat)
	}

	for _, stat := range report.Days {
		report.Total += stat.Total
		report.Completed += stat.Completed
	}
	if report.Total > 0 {
		report.Rate = float64(report.Completed) / float64(report.Total) * 100
	}
	return report
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
}
