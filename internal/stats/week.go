package stats

import (
	"time"

	"github.com/benvon/day-planner/internal/models"
)

// CalendarDay is one cell of the week strip
type CalendarDay struct {
	Date       string  `json:"date"`
	Weekday    string  `json:"weekday"`
	DayOfMonth int     `json:"dayOfMonth"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
	Selected   bool    `json:"selected"`
	Today      bool    `json:"today"`
}

// Week is a Monday-start calendar week
type Week struct {
	Year   int           `json:"year"`
	Number int           `json:"number"`
	Days   []CalendarDay `json:"days"`
}

// WeekDays builds the Monday-start week containing selected. today marks
// the current day when it falls inside the week.
func WeekDays(tasks []models.Task, selected, today time.Time) Week {
	counts := dayCounts(tasks)
	selectedKey := models.DateKey(selected)
	todayKey := models.DateKey(today.In(selected.Location()))

	year, number := selected.ISOWeek()
	week := Week{Year: year, Number: number, Days: make([]CalendarDay, 0, 7)}

	start := StartOfISOWeek(selected)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		key := models.DateKey(day)
		c := counts[key]
		week.Days = append(week.Days, CalendarDay{
			Date:       key,
			Weekday:    day.Format("Mon"),
			DayOfMonth: day.Day(),
			Total:      c[0],
			Completed:  c[1],
			Percentage: Percent(c[1], c[0]),
			Selected:   key == selectedKey,
			Today:      key == todayKey,
		})
	}
	return week
}
