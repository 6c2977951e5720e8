package stats

import (
	"strconv"
	"time"

	"github.com/benvon/day-planner/internal/models"
)

// DayBucket is one point of the daily completion chart
type DayBucket struct {
	Date       string  `json:"date"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// WeekBucket rolls a Sunday-start week of the window into one value.
// End is clipped to the reference date for the current week.
type WeekBucket struct {
	Label      string  `json:"label"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// WindowStart is the first day of the dashboard window for ref
func WindowStart(ref time.Time) time.Time {
	return StartOfWeek(ref).AddDate(0, 0, -7*HistoryWeeks)
}

// DailyBuckets returns one bucket per day from WindowStart(ref) through
// ref inclusive. Days without tasks have percentage 0.
func DailyBuckets(tasks []models.Task, ref time.Time) []DayBucket {
	counts := dayCounts(tasks)
	end := midnight(ref)

	var buckets []DayBucket
	for day := WindowStart(ref); !day.After(end); day = day.AddDate(0, 0, 1) {
		key := models.DateKey(day)
		c := counts[key]
		buckets = append(buckets, DayBucket{
			Date:       key,
			Total:      c[0],
			Completed:  c[1],
			Percentage: Percent(c[1], c[0]),
		})
	}
	return buckets
}

// WeeklyBuckets rolls the daily window into HistoryWeeks+1 calendar weeks
// using completed/total across each week
func WeeklyBuckets(tasks []models.Task, ref time.Time) []WeekBucket {
	counts := dayCounts(tasks)
	end := midnight(ref)
	start := WindowStart(ref)

	buckets := make([]WeekBucket, 0, HistoryWeeks+1)
	for w := 0; w <= HistoryWeeks; w++ {
		weekStart := start.AddDate(0, 0, 7*w)
		weekEnd := weekStart.AddDate(0, 0, 6)
		if weekEnd.After(end) {
			weekEnd = end
		}

		b := WeekBucket{
			Label: weekLabel(w),
			Start: models.DateKey(weekStart),
			End:   models.DateKey(weekEnd),
		}
		for day := weekStart; !day.After(weekEnd); day = day.AddDate(0, 0, 1) {
			c := counts[models.DateKey(day)]
			b.Total += c[0]
			b.Completed += c[1]
		}
		b.Percentage = Percent(b.Completed, b.Total)
		buckets = append(buckets, b)
	}
	return buckets
}

func weekLabel(i int) string {
	return "Week " + strconv.Itoa(i+1)
}
