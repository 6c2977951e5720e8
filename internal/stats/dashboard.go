package stats

import (
	"time"

	"github.com/benvon/day-planner/internal/models"
)

// Insight messages keyed by completion rate
const (
	InsightStrong  = "Great work! You're maintaining a strong completion rate."
	InsightSteady  = "You're making steady progress. Keep pushing forward!"
	InsightStarter = "Start small and build consistent habits. You've got this!"
)

// Dashboard is the full statistics view for a reference date
type Dashboard struct {
	Date                string       `json:"date"`
	CompletionRate      float64      `json:"completionRate"`
	LongestStreak       int          `json:"longestStreak"`
	LongestStreakByDate int          `json:"longestStreakByDate"`
	CompletedTasks      int          `json:"completedTasks"`
	TotalTasks          int          `json:"totalTasks"`
	Daily               []DayBucket  `json:"daily"`
	Weekly              []WeekBucket `json:"weekly"`
	Insight             string       `json:"insight"`
}

// Insight picks the encouragement text for a completion rate
func Insight(rate float64) string {
	switch {
	case rate > 70:
		return InsightStrong
	case rate > 40:
		return InsightSteady
	default:
		return InsightStarter
	}
}

// Summarize computes the dashboard for ref
func Summarize(tasks []models.Task, ref time.Time) Dashboard {
	rate := CompletionRate(tasks)
	return Dashboard{
		Date:                models.DateKey(ref),
		CompletionRate:      rate,
		LongestStreak:       LongestStreak(tasks),
		LongestStreakByDate: LongestStreakByDate(tasks),
		CompletedTasks:      countCompleted(tasks),
		TotalTasks:          len(tasks),
		Daily:               DailyBuckets(tasks, ref),
		Weekly:              WeeklyBuckets(tasks, ref),
		Insight:             Insight(rate),
	}
}
