package models

// Category is a user-defined label and color grouping for tasks
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CategoryInput holds the fields of a new category
type CategoryInput struct {
	Name  string
	Color string
}

// CategoryPatch is a partial category update
type CategoryPatch struct {
	Name  *string
	Color *string
}

// Apply merges the patch into c. The ID is never changed.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
}

// Uncategorized is what a dangling or empty category reference resolves to
var Uncategorized = Category{Name: "Uncategorized"}

// DefaultCategories returns the categories a fresh install starts with.
// A new slice is returned on every call.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Work", Color: "#FF9AA2"},
		{ID: "2", Name: "Personal", Color: "#FFB7B2"},
		{ID: "3", Name: "Health", Color: "#FFDAC1"},
		{ID: "4", Name: "Education", Color: "#E2F0CB"},
		{ID: "5", Name: "Errands", Color: "#B5EAD7"},
	}
}
