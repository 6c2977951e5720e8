package stats

import (
	"math"
	"testing"
	"time"

	"github.com/benvon/day-planner/internal/models"
)

func task(date string, completed bool) models.Task {
	return models.Task{ID: date, Date: date, StartTime: "09:00", Duration: 30, Completed: completed}
}

func TestCompletionRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tasks []models.Task
		want  float64
	}{
		{name: "no tasks", tasks: nil, want: 0},
		{
			name: "three of four",
			tasks: []models.Task{
				task("2024-01-01", true),
				task("2024-01-01", true),
				task("2024-01-02", true),
				task("2024-01-03", false),
			},
			want: 75.0,
		},
		{name: "none completed", tasks: []models.Task{task("2024-01-01", false)}, want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CompletionRate(tt.tasks); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOverview(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{
		task("2024-01-01", true),
		task("2024-01-01", false),
		task("2024-01-01", false),
		task("2024-01-02", true),
	}
	got := Overview(tasks, "2024-01-01")
	if got.Total != 3 || got.Completed != 1 || got.Remaining != 2 {
		t.Errorf("Unexpected overview %+v", got)
	}
	if math.Abs(got.Percentage-100.0/3) > 1e-9 {
		t.Errorf("Expected 33.3%%, got %v", got.Percentage)
	}
	if empty := Overview(tasks, "2024-02-01"); empty.Percentage != 0 || empty.Total != 0 {
		t.Errorf("Expected empty overview, got %+v", empty)
	}
}

func TestStartOfWeek(t *testing.T) {
	t.Parallel()

	wed := time.Date(2024, 1, 17, 15, 30, 0, 0, time.UTC)
	if got := models.DateKey(StartOfWeek(wed)); got != "2024-01-14" {
		t.Errorf("Expected Sunday 2024-01-14, got %s", got)
	}
	if got := models.DateKey(StartOfISOWeek(wed)); got != "2024-01-15" {
		t.Errorf("Expected Monday 2024-01-15, got %s", got)
	}
	sun := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	if got := models.DateKey(StartOfISOWeek(sun)); got != "2024-01-08" {
		t.Errorf("Expected Monday 2024-01-08 for a Sunday, got %s", got)
	}
}

func TestDailyBuckets(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		task("2023-12-24", true),
		task("2023-12-24", false),
		task("2024-01-17", true),
		task("2023-12-23", true),
		task("2024-01-18", true),
	}

	buckets := DailyBuckets(tasks, ref)
	if len(buckets) != 25 {
		t.Fatalf("Expected 25 days from 2023-12-24 through 2024-01-17, got %d", len(buckets))
	}
	if buckets[0].Date != "2023-12-24" || buckets[0].Percentage != 50 {
		t.Errorf("Unexpected first bucket %+v", buckets[0])
	}
	last := buckets[len(buckets)-1]
	if last.Date != "2024-01-17" || last.Percentage != 100 {
		t.Errorf("Unexpected last bucket %+v", last)
	}
	if buckets[1].Percentage != 0 || buckets[1].Total != 0 {
		t.Errorf("Expected empty day to be 0, got %+v", buckets[1])
	}
}

func TestDailyBuckets_AcrossDST(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ref := time.Date(2024, 3, 20, 9, 0, 0, 0, loc)
	buckets := DailyBuckets(nil, ref)
	seen := make(map[string]bool)
	for _, b := range buckets {
		if seen[b.Date] {
			t.Errorf("Duplicate day %s", b.Date)
		}
		seen[b.Date] = true
	}
	if buckets[0].Date != "2024-02-25" || buckets[len(buckets)-1].Date != "2024-03-20" {
		t.Errorf("Unexpected window %s..%s", buckets[0].Date, buckets[len(buckets)-1].Date)
	}
}

func TestWeeklyBuckets(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{
		task("2023-12-24", true),
		task("2023-12-30", false),
		task("2024-01-10", true),
		task("2024-01-15", true),
		task("2024-01-16", false),
	}

	refs := []time.Time{
		time.Date(2024, 1, 14, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 17, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC),
	}
	for _, ref := range refs {
		if got := WeeklyBuckets(tasks, ref); len(got) != HistoryWeeks+1 {
			t.Errorf("Expected %d weekly buckets for %s, got %d", HistoryWeeks+1, ref, len(got))
		}
	}

	weeks := WeeklyBuckets(tasks, refs[1])
	want := []struct {
		start, end string
		pct        float64
	}{
		{"2023-12-24", "2023-12-30", 50},
		{"2023-12-31", "2024-01-06", 0},
		{"2024-01-07", "2024-01-13", 100},
		{"2024-01-14", "2024-01-17", 50},
	}
	for i, w := range want {
		got := weeks[i]
		if got.Start != w.start || got.End != w.end || got.Percentage != w.pct {
			t.Errorf("Week %d: expected %s..%s %v%%, got %+v", i, w.start, w.end, w.pct, got)
		}
	}
	if weeks[0].Label != "Week 1" || weeks[3].Label != "Week 4" {
		t.Errorf("Unexpected labels %s, %s", weeks[0].Label, weeks[3].Label)
	}
}

func TestLongestStreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		dates  []string
		want   int
		byDate int
	}{
		{name: "empty", dates: nil, want: 0, byDate: 0},
		{name: "single", dates: []string{"2024-01-01"}, want: 0, byDate: 1},
		{
			name:   "consecutive then gap",
			dates:  []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-10"},
			want:   2,
			byDate: 3,
		},
		{
			name:   "store order matters",
			dates:  []string{"2024-01-03", "2024-01-01", "2024-01-02"},
			want:   1,
			byDate: 3,
		},
		{
			name:   "backwards steps count",
			dates:  []string{"2024-01-05", "2024-01-04", "2024-01-03"},
			want:   2,
			byDate: 3,
		},
		{
			name:   "same day resets",
			dates:  []string{"2024-01-01", "2024-01-02", "2024-01-02", "2024-01-03"},
			want:   1,
			byDate: 3,
		},
		{
			name:   "invalid date breaks run",
			dates:  []string{"2024-01-01", "garbage", "2024-01-02", "2024-01-03"},
			want:   1,
			byDate: 3,
		},
		{
			name:   "month boundary",
			dates:  []string{"2024-02-28", "2024-02-29", "2024-03-01"},
			want:   2,
			byDate: 3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var tasks []models.Task
			for _, d := range tt.dates {
				tasks = append(tasks, task(d, false))
			}
			if got := LongestStreak(tasks); got != tt.want {
				t.Errorf("LongestStreak: expected %d, got %d", tt.want, got)
			}
			if got := LongestStreakByDate(tasks); got != tt.byDate {
				t.Errorf("LongestStreakByDate: expected %d, got %d", tt.byDate, got)
			}
		})
	}
}

func TestInsight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate float64
		want string
	}{
		{100, InsightStrong},
		{70.1, InsightStrong},
		{70, InsightSteady},
		{40.5, InsightSteady},
		{40, InsightStarter},
		{0, InsightStarter},
	}
	for _, tt := range tests {
		if got := Insight(tt.rate); got != tt.want {
			t.Errorf("Insight(%v): expected %q, got %q", tt.rate, tt.want, got)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		task("2024-01-15", true),
		task("2024-01-16", true),
		task("2024-01-17", true),
		task("2024-01-17", false),
	}

	d := Summarize(tasks, ref)
	if d.Date != "2024-01-17" || d.TotalTasks != 4 || d.CompletedTasks != 3 {
		t.Errorf("Unexpected totals %+v", d)
	}
	if d.CompletionRate != 75 || d.Insight != InsightStrong {
		t.Errorf("Expected 75%% with strong insight, got %v %q", d.CompletionRate, d.Insight)
	}
	if d.LongestStreak != 2 || d.LongestStreakByDate != 3 {
		t.Errorf("Unexpected streaks %d/%d", d.LongestStreak, d.LongestStreakByDate)
	}
	if len(d.Daily) != 25 || len(d.Weekly) != 4 {
		t.Errorf("Unexpected bucket counts %d/%d", len(d.Daily), len(d.Weekly))
	}
}

func TestWeekDays(t *testing.T) {
	t.Parallel()

	selected := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 1, 19, 22, 0, 0, 0, time.UTC)
	tasks := []models.Task{task("2024-01-15", true), task("2024-01-15", false)}

	week := WeekDays(tasks, selected, today)
	if week.Year != 2024 || week.Number != 3 {
		t.Errorf("Expected ISO week 2024-W03, got %d-W%02d", week.Year, week.Number)
	}
	if len(week.Days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(week.Days))
	}
	first := week.Days[0]
	if first.Date != "2024-01-15" || first.Weekday != "Mon" || first.Total != 2 || first.Percentage != 50 {
		t.Errorf("Unexpected Monday %+v", first)
	}
	if !week.Days[2].Selected || week.Days[1].Selected {
		t.Error("Expected only Wednesday to be selected")
	}
	if !week.Days[4].Today {
		t.Error("Expected Friday to be today")
	}
	if week.Days[6].Date != "2024-01-21" || week.Days[6].Weekday != "Sun" {
		t.Errorf("Unexpected Sunday %+v", week.Days[6])
	}
}

func TestTimeline(t *testing.T) {
	t.Parallel()

	settings := models.TimeSettings{StartTime: "08:00", EndTime: "10:00"}
	tasks := []models.Task{
		{ID: "a", Date: "2024-01-01", StartTime: "08:00", Category: "1"},
		{ID: "b", Date: "2024-01-01", StartTime: "08:30"},
		{ID: "c", Date: "2024-01-01", StartTime: "10:00", Category: "gone"},
		{ID: "d", Date: "2024-01-02", StartTime: "08:00"},
		{ID: "e", Date: "2024-01-01", StartTime: "07:00"},
	}
	resolve := func(id string) models.Category {
		if id == "1" {
			return models.Category{ID: "1", Name: "Work", Color: "#FF9AA2"}
		}
		return models.Uncategorized
	}

	slots := Timeline(tasks, "2024-01-01", settings, resolve)
	if len(slots) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(slots))
	}
	if slots[0].Label != "8:00 AM" || slots[2].Time != "10:00" {
		t.Errorf("Unexpected slot labels %+v", slots)
	}
	if len(slots[0].Tasks) != 1 || slots[0].Tasks[0].ID != "a" || slots[0].Tasks[0].CategoryName != "Work" {
		t.Errorf("Unexpected 08:00 slot %+v", slots[0].Tasks)
	}
	if len(slots[1].Tasks) != 0 {
		t.Errorf("Expected empty 09:00 slot, got %+v", slots[1].Tasks)
	}
	if len(slots[2].Tasks) != 1 || slots[2].Tasks[0].CategoryName != "Uncategorized" {
		t.Errorf("Unexpected 10:00 slot %+v", slots[2].Tasks)
	}
}
