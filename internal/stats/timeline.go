package stats

import "github.com/benvon/day-planner/internal/models"

// TimelineTask is a task decorated with its resolved category
type TimelineTask struct {
	models.Task
	CategoryName  string `json:"categoryName"`
	CategoryColor string `json:"categoryColor,omitempty"`
}

// TimelineSlot is one hourly row of the day view
type TimelineSlot struct {
	Time  string         `json:"time"`
	Label string         `json:"label"`
	Tasks []TimelineTask `json:"tasks"`
}

// Timeline places the tasks of dateKey into the hourly slots of settings.
// A task appears only in the slot equal to its start time, so tasks
// starting off the hour or outside the visible range are not shown.
// resolve may be nil.
func Timeline(tasks []models.Task, dateKey string, settings models.TimeSettings, resolve func(string) models.Category) []TimelineSlot {
	slots := settings.Slots()
	out := make([]TimelineSlot, 0, len(slots))
	index := make(map[string]int, len(slots))
	for i, s := range slots {
		index[s] = i
		out = append(out, TimelineSlot{
			Time:  s,
			Label: settings.Display(s),
			Tasks: []TimelineTask{},
		})
	}

	for _, t := range tasks {
		if t.Date != dateKey {
			continue
		}
		i, ok := index[t.StartTime]
		if !ok {
			continue
		}
		entry := TimelineTask{Task: t}
		if resolve != nil {
			c := resolve(t.Category)
			entry.CategoryName = c.Name
			entry.CategoryColor = c.Color
		}
		out[i].Tasks = append(out[i].Tasks, entry)
	}
	return out
}
