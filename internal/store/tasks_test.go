package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/persistence"
)

func newTestPersister(t *testing.T) (*Persister, *persistence.MemoryAdapter) {
	t.Helper()
	adapter := persistence.NewMemoryAdapter()
	p := NewPersister(adapter, nil, time.Second)
	t.Cleanup(func() {
		_ = p.Close(context.Background()) // Ignore error in test
	})
	return p, adapter
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func sampleInput(date, start string) models.TaskInput {
	return models.TaskInput{
		Description: "Task on " + date,
		StartTime:   start,
		Duration:    30,
		Color:       "#FF9AA2",
		Emoji:       "📝",
		Date:        date,
	}
}

func TestTaskStore_AddTaskUniqueIDs(t *testing.T) {
	t.Parallel()

	s := NewTaskStore(nil)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		task := s.AddTask(sampleInput("2024-01-01", "09:00"))
		if seen[task.ID] {
			t.Fatalf("Duplicate id %s", task.ID)
		}
		seen[task.ID] = true
		if task.Completed {
			t.Error("Expected new task to be incomplete")
		}
	}

	tasks := s.Tasks()
	for i := 0; i < 50; i++ {
		s.DeleteTask(tasks[i].ID)
	}
	if s.Len() != 150 {
		t.Errorf("Expected 150 tasks after 200 adds and 50 deletes, got %d", s.Len())
	}
}

func TestTaskStore_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	p, _ := newTestPersister(t)
	s := NewTaskStore(p)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				s.AddTask(sampleInput("2024-01-01", "09:00"))
			}
		}()
	}
	wg.Wait()

	if s.Len() != 200 {
		t.Errorf("Expected 200 tasks, got %d", s.Len())
	}
}

func TestTaskStore_ToggleIsInvolution(t *testing.T) {
	t.Parallel()

	s := NewTaskStore(nil)
	task := s.AddTask(sampleInput("2024-01-01", "09:00"))

	s.ToggleTask(task.ID)
	if got, _ := s.GetTask(task.ID); !got.Completed {
		t.Error("Expected task to be completed after one toggle")
	}
	s.ToggleTask(task.ID)
	if got, _ := s.GetTask(task.ID); got.Completed {
		t.Error("Expected task to be incomplete after two toggles")
	}
}

func TestTaskStore_UnknownIDsAreNoOps(t *testing.T) {
	t.Parallel()

	s := NewTaskStore(nil)
	task := s.AddTask(sampleInput("2024-01-01", "09:00"))
	desc := "changed"

	s.ToggleTask("missing")
	s.UpdateTask("missing", models.TaskPatch{Description: &desc})
	s.DeleteTask("missing")

	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0] != task {
		t.Errorf("Expected collection unchanged, got %+v", tasks)
	}
}

func TestTaskStore_UpdateTask(t *testing.T) {
	t.Parallel()

	s := NewTaskStore(nil)
	task := s.AddTask(sampleInput("2024-01-01", "09:00"))
	desc := "Standup"
	duration := 15

	s.UpdateTask(task.ID, models.TaskPatch{Description: &desc, Duration: &duration})

	got, ok := s.GetTask(task.ID)
	if !ok {
		t.Fatal("Expected task to exist")
	}
	if got.ID != task.ID || got.Description != "Standup" || got.Duration != 15 {
		t.Errorf("Unexpected task after update: %+v", got)
	}
	if got.StartTime != "09:00" {
		t.Errorf("Expected untouched start time, got %s", got.StartTime)
	}
}

func TestTaskStore_GetTasksForDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+10", 10*60*60)
	s := NewTaskStore(nil, WithLocation(loc))
	s.AddTask(sampleInput("2024-03-01", "09:00"))
	s.AddTask(sampleInput("2024-03-02", "09:00"))
	s.AddTask(sampleInput("2024-03-02", "18:00"))
	s.AddTask(sampleInput("2024-03-02", "07:00"))

	// 2024-03-01T20:00Z is already March 2nd at UTC+10
	got := s.GetTasksForDate(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC))
	if len(got) != 3 {
		t.Fatalf("Expected 3 tasks on 2024-03-02, got %d", len(got))
	}
	wantOrder := []string{"09:00", "18:00", "07:00"}
	for i, task := range got {
		if task.Date != "2024-03-02" {
			t.Errorf("Unexpected date %s", task.Date)
		}
		if task.StartTime != wantOrder[i] {
			t.Errorf("Expected insertion order %v, got %s at %d", wantOrder, task.StartTime, i)
		}
	}

	got[0].Description = "mutated"
	if again := s.GetTasksForDay("2024-03-02"); again[0].Description == "mutated" {
		t.Error("Expected a fresh slice on every call")
	}

	if empty := s.GetTasksForDay("2024-04-01"); empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", empty)
	}
}

func TestTaskStore_GetTasksForSlot(t *testing.T) {
	t.Parallel()

	s := NewTaskStore(nil)
	s.AddTask(sampleInput("2024-03-02", "09:00"))
	s.AddTask(sampleInput("2024-03-02", "09:00"))
	s.AddTask(sampleInput("2024-03-02", "10:00"))
	s.AddTask(sampleInput("2024-03-03", "09:00"))

	if got := s.GetTasksForSlot("2024-03-02", "09:00"); len(got) != 2 {
		t.Errorf("Expected 2 tasks in slot, got %d", len(got))
	}
}

func TestTaskStore_GetTasksByCategory(t *testing.T) {
	t.Parallel()

	s := NewTaskStore(nil)
	work := sampleInput("2024-01-01", "09:00")
	work.Category = "1"
	s.AddTask(work)
	s.AddTask(sampleInput("2024-01-01", "10:00"))

	if got := s.GetTasksByCategory(nil); len(got) != 2 {
		t.Errorf("Expected all tasks for nil category, got %d", len(got))
	}
	id := "1"
	if got := s.GetTasksByCategory(&id); len(got) != 1 || got[0].Category != "1" {
		t.Errorf("Expected one Work task, got %+v", got)
	}
	none := "9"
	if got := s.GetTasksByCategory(&none); len(got) != 0 {
		t.Errorf("Expected no tasks, got %d", len(got))
	}
}

func TestTaskStore_ExportClearImportRoundTrip(t *testing.T) {
	t.Parallel()

	p, _ := newTestPersister(t)
	s := NewTaskStore(p)
	for i := 0; i < 5; i++ {
		s.AddTask(sampleInput(fmt.Sprintf("2024-01-0%d", i+1), "09:00"))
	}
	s.ToggleTask(s.Tasks()[2].ID)
	original := s.Tasks()

	exported, err := s.ExportTasks()
	if err != nil {
		t.Fatalf("ExportTasks failed: %v", err)
	}
	s.ClearAllTasks()
	if s.Len() != 0 {
		t.Fatalf("Expected empty store after clear, got %d", s.Len())
	}
	if err := s.ImportTasks(context.Background(), exported); err != nil {
		t.Fatalf("ImportTasks failed: %v", err)
	}

	restored := s.Tasks()
	byID := func(tasks []models.Task) []models.Task {
		sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
		return tasks
	}
	a, b := byID(original), byID(restored)
	if len(a) != len(b) {
		t.Fatalf("Expected %d tasks after import, got %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Task mismatch: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestTaskStore_ExportEmpty(t *testing.T) {
	t.Parallel()

	data, err := NewTaskStore(nil).ExportTasks()
	if err != nil {
		t.Fatalf("ExportTasks failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Expected [], got %s", data)
	}
}

func TestTaskStore_ImportRejectsNonArrays(t *testing.T) {
	t.Parallel()

	inputs := []string{`{}`, ``, `null`, `"tasks"`, `[1, 2]`, `[{"id":`}
	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			s := NewTaskStore(nil)
			task := s.AddTask(sampleInput("2024-01-01", "09:00"))

			err := s.ImportTasks(context.Background(), []byte(input))
			if !errors.Is(err, models.ErrImportFormat) {
				t.Errorf("Expected ErrImportFormat, got %v", err)
			}
			tasks := s.Tasks()
			if len(tasks) != 1 || tasks[0] != task {
				t.Errorf("Expected prior collection retained, got %+v", tasks)
			}
		})
	}
}

func TestTaskStore_ImportToleratesMissingFields(t *testing.T) {
	t.Parallel()

	s := NewTaskStore(nil)
	if err := s.ImportTasks(context.Background(), []byte(` [{"id":"a"},{"description":"no id"}] `)); err != nil {
		t.Fatalf("ImportTasks failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 tasks, got %d", s.Len())
	}
}

func TestTaskStore_ImportFlushesSnapshot(t *testing.T) {
	t.Parallel()

	p, adapter := newTestPersister(t)
	s := NewTaskStore(p)

	if err := s.ImportTasks(context.Background(), []byte(`[{"id":"a","date":"2024-01-01"}]`)); err != nil {
		t.Fatalf("ImportTasks failed: %v", err)
	}
	value, found, err := adapter.Load(context.Background(), TaskStoreKey)
	if err != nil || !found {
		t.Fatalf("Expected snapshot persisted before return, found=%v err=%v", found, err)
	}
	if !strings.HasPrefix(string(value), `{"tasks":[{"id":"a"`) {
		t.Errorf("Unexpected snapshot %s", value)
	}
}

func TestTaskStore_RestartRestoresCollection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := persistence.NewMemoryAdapter()

	p1 := NewPersister(adapter, nil, time.Second)
	first := NewTaskStore(p1, WithIDGenerator(sequentialIDs()))
	first.AddTask(sampleInput("2024-01-01", "09:00"))
	first.AddTask(sampleInput("2024-01-02", "10:00"))
	first.ToggleTask("id-1")
	before := first.Tasks()
	if err := p1.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	p2 := NewPersister(adapter, nil, time.Second)
	defer func() {
		_ = p2.Close(ctx) // Ignore error in test
	}()
	second := NewTaskStore(p2)
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	after := second.Tasks()
	if len(after) != len(before) {
		t.Fatalf("Expected %d tasks after restart, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Task %d differs: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestTaskStore_LoadMalformedKeepsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := persistence.NewMemoryAdapter()
	_ = adapter.Save(ctx, TaskStoreKey, []byte(`not json`))
	p := NewPersister(adapter, nil, time.Second)
	defer func() {
		_ = p.Close(ctx) // Ignore error in test
	}()

	s := NewTaskStore(p)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Expected malformed snapshot to be tolerated, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d", s.Len())
	}
}

func TestTaskStore_ImportTasksReportsFailedWrite(t *testing.T) {
	t.Parallel()

	p := NewPersister(failingAdapter{persistence.NewMemoryAdapter()}, nil, time.Second)
	defer func() {
		_ = p.Close(context.Background()) // Ignore error in test
	}()
	s := NewTaskStore(p)

	for i := 0; i < 50; i++ {
		if err := s.ImportTasks(context.Background(), []byte(`[{"id":"a"}]`)); err == nil {
			t.Fatalf("Expected import %d to report the failed write", i)
		}
	}
}
