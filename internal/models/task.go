package models

// Task represents a time-boxed activity scheduled on a calendar date
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	Duration    int    `json:"duration"`
	Color       string `json:"color"`
	Emoji       string `json:"emoji"`
	Completed   bool   `json:"completed"`
	Date        string `json:"date"`
	Category    string `json:"category,omitempty"`
}

// TaskInput holds every task field except the generated ID
type TaskInput struct {
	Description string
	StartTime   string
	Duration    int
	Color       string
	Emoji       string
	Completed   bool
	Date        string
	Category    string
}

// NewTask builds a task from input with the given ID
func NewTask(id string, in TaskInput) Task {
	return Task{
		ID:          id,
		Description: in.Description,
		StartTime:   in.StartTime,
		Duration:    in.Duration,
		Color:       in.Color,
		Emoji:       in.Emoji,
		Completed:   in.Completed,
		Date:        in.Date,
		Category:    in.Category,
	}
}

// TaskPatch is a partial task update. Nil fields are left untouched.
// Setting Category to an empty string clears the category.
type TaskPatch struct {
	Description *string
	StartTime   *string
	Duration    *int
	Color       *string
	Emoji       *string
	Completed   *bool
	Date        *string
	Category    *string
}

// Apply merges the patch into t. The ID is never changed.
func (p TaskPatch) Apply(t *Task) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Emoji != nil {
		t.Emoji = *p.Emoji
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
}

// IsEmpty reports whether the patch sets no fields
func (p TaskPatch) IsEmpty() bool {
	return p.Description == nil && p.StartTime == nil && p.Duration == nil &&
		p.Color == nil && p.Emoji == nil && p.Completed == nil &&
		p.Date == nil && p.Category == nil
}

// HasCategory reports whether the task references a category
func (t Task) HasCategory() bool {
	return t.Category != ""
}
