package stats

import (
	"sort"
	"time"

	"github.com/benvon/day-planner/internal/models"
)

// LongestStreak scans tasks in the order given and counts how many times
// in a row a task is dated exactly one day away (in either direction)
// from the task before it. An unparseable date breaks the run. The
// result depends on collection order; see LongestStreakByDate.
func LongestStreak(tasks []models.Task) int {
	current, longest := 0, 0
	var prev time.Time
	prevValid := false

	for i, t := range tasks {
		day, err := models.ParseDateKey(t.Date, time.UTC)
		valid := err == nil
		if i > 0 {
			if valid && prevValid && absDays(day.Sub(prev)) == 1 {
				current++
				if current > longest {
					longest = current
				}
			} else {
				current = 0
			}
		}
		prev, prevValid = day, valid
	}
	return longest
}

// LongestStreakByDate returns the longest run of consecutive calendar
// days that have at least one task, independent of collection order.
// Three consecutive days count as 3.
func LongestStreakByDate(tasks []models.Task) int {
	seen := make(map[string]bool)
	var days []time.Time
	for _, t := range tasks {
		if seen[t.Date] {
			continue
		}
		seen[t.Date] = true
		day, err := models.ParseDateKey(t.Date, time.UTC)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	current, longest := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func absDays(d time.Duration) float64 {
	days := d.Hours() / 24
	if days < 0 {
		return -days
	}
	return days
}
