package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/benvon/day-planner/internal/models"
	"go.uber.org/zap"
)

type taskSnapshot struct {
	Tasks []models.Task `json:"tasks"`
}

// TaskStore is the authoritative in-memory task collection. Every call is
// atomic against memory; durability goes through the persister.
type TaskStore struct {
	mu        sync.RWMutex
	tasks     []models.Task
	persister *Persister
	loc       *time.Location
	newID     func() string
	log       *zap.Logger
}

// NewTaskStore creates an empty task store. persister may be nil for a
// store that is never written anywhere.
func NewTaskStore(persister *Persister, opts ...Option) *TaskStore {
	o := buildOptions(opts)
	return &TaskStore{
		tasks:     []models.Task{},
		persister: persister,
		loc:       o.loc,
		newID:     o.newID,
		log:       o.log,
	}
}

// Load replaces the collection with the persisted snapshot, if any. A
// malformed snapshot is logged and the collection is left as it was.
func (s *TaskStore) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	var snap taskSnapshot
	found, err := s.persister.Load(ctx, TaskStoreKey, &snap)
	if models.IsCode(err, models.ErrCodeInvalidFormat) {
		s.log.Warn("task_snapshot_malformed", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if snap.Tasks == nil {
		snap.Tasks = []models.Task{}
	}

	s.mu.Lock()
	s.tasks = snap.Tasks
	s.mu.Unlock()

	s.log.Info("tasks_loaded", zap.Int("count", len(snap.Tasks)))
	return nil
}

// Location is the zone GetTasksForDate projects instants into
func (s *TaskStore) Location() *time.Location {
	return s.loc
}

// AddTask appends a task with a fresh id
func (s *TaskStore) AddTask(in models.TaskInput) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.NewTask(s.newID(), in)
	s.tasks = append(s.tasks, task)
	s.persistLocked()
	return task
}

// ToggleTask flips completed on the matching task
func (s *TaskStore) ToggleTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.persistLocked()
}

// UpdateTask merges patch into the matching task
func (s *TaskStore) UpdateTask(id string, patch models.TaskPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	patch.Apply(&s.tasks[i])
	s.persistLocked()
}

// DeleteTask removes the matching task
func (s *TaskStore) DeleteTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	next := make([]models.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.tasks = next
	s.persistLocked()
}

// GetTask returns the task with the given id
func (s *TaskStore) GetTask(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i], true
}

// Tasks returns a copy of the whole collection in insertion order
func (s *TaskStore) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// GetTasksForDate returns tasks dated on the calendar day of t in the
// store's location
func (s *TaskStore) GetTasksForDate(t time.Time) []models.Task {
	return s.GetTasksForDay(models.DateKey(t.In(s.loc)))
}

// GetTasksForDay returns tasks whose date equals dateKey
func (s *TaskStore) GetTasksForDay(dateKey string) []models.Task {
	return s.filter(func(t models.Task) bool {
		return t.Date == dateKey
	})
}

// GetTasksForSlot returns tasks on dateKey starting exactly at startTime
func (s *TaskStore) GetTasksForSlot(dateKey, startTime string) []models.Task {
	return s.filter(func(t models.Task) bool {
		return t.Date == dateKey && t.StartTime == startTime
	})
}

// GetTasksByCategory returns every task when categoryID is nil, otherwise
// the tasks referencing that category
func (s *TaskStore) GetTasksByCategory(categoryID *string) []models.Task {
	if categoryID == nil {
		return s.Tasks()
	}
	id := *categoryID
	return s.filter(func(t models.Task) bool {
		return t.Category == id
	})
}

// ExportTasks serializes the whole collection as a JSON array
func (s *TaskStore) ExportTasks() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.Marshal(s.tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return data, nil
}

// ImportTasks replaces the collection with the tasks in data, which must
// be a JSON array. On a format error the collection is unchanged. The
// resulting snapshot is flushed before returning.
func (s *TaskStore) ImportTasks(ctx context.Context, data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return models.ErrImportFormat
	}
	var tasks []models.Task
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return models.WrapError(models.ErrCodeInvalidFormat, models.ErrImportFormat.Message, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	s.mu.Lock()
	s.tasks = tasks
	s.persistLocked()
	s.mu.Unlock()

	s.log.Info("tasks_imported", zap.Int("count", len(tasks)))

	if s.persister == nil {
		return nil
	}
	if err := s.persister.Flush(ctx); err != nil {
		return fmt.Errorf("failed to persist imported tasks: %w", err)
	}
	return nil
}

// ClearAllTasks empties the collection
func (s *TaskStore) ClearAllTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = []models.Task{}
	s.persistLocked()
}

func (s *TaskStore) filter(keep func(models.Task) bool) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Task{}
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *TaskStore) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked enqueues the current collection. Callers hold mu so
// snapshots reach the persister in mutation order.
func (s *TaskStore) persistLocked() {
	if s.persister == nil {
		return
	}
	data, err := json.Marshal(taskSnapshot{Tasks: s.tasks})
	if err != nil {
		s.log.Error("task_snapshot_encode_failed", zap.Error(err))
		return
	}
	s.persister.Enqueue(TaskStoreKey, data)
}
