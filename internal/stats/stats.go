// Package stats derives completion statistics from a snapshot of tasks.
// Every function is pure; callers pass the reference date explicitly.
package stats

import (
	"time"

	"github.com/benvon/day-planner/internal/models"
)

// HistoryWeeks is how many whole weeks before the current one the
// dashboard window covers
const HistoryWeeks = 3

// DayOverview summarizes one calendar day
type DayOverview struct {
	Date       string  `json:"date"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Remaining  int     `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// Percent returns completed/total*100, or 0 when total is 0
func Percent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// CompletionRate is the share of completed tasks as a percentage
func CompletionRate(tasks []models.Task) float64 {
	return Percent(countCompleted(tasks), len(tasks))
}

// Overview counts the tasks dated dateKey
func Overview(tasks []models.Task, dateKey string) DayOverview {
	total, completed := 0, 0
	for _, t := range tasks {
		if t.Date != dateKey {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
	}
	return DayOverview{
		Date:       dateKey,
		Total:      total,
		Completed:  completed,
		Remaining:  total - completed,
		Percentage: Percent(completed, total),
	}
}

// StartOfWeek returns midnight of the Sunday on or before t, in t's location
func StartOfWeek(t time.Time) time.Time {
	day := midnight(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// StartOfISOWeek returns midnight of the Monday on or before t
func StartOfISOWeek(t time.Time) time.Time {
	day := midnight(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func countCompleted(tasks []models.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// dayCounts tallies total and completed tasks per date key
func dayCounts(tasks []models.Task) map[string][2]int {
	counts := make(map[string][2]int)
	for _, t := range tasks {
		c := counts[t.Date]
		c[0]++
		if t.Completed {
			c[1]++
		}
		counts[t.Date] = c
	}
	return counts
}
