package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

// MemoryStore keeps tasks and active days for the lifetime of one session.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]model.Task
	days  map[time.Time]struct{}
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]model.Task),
		days:  make(map[time.Time]struct{}),
		now:   time.Now,
	}
}

func (m *MemoryStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	_ = ctx

	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := make([]model.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, task)
	}
	sortTasks(tasks)
	return tasks, nil
}

func (m *MemoryStore) AddTask(ctx context.Context, input TaskInput) (model.Task, error) {
	_ = ctx

	input, err := normalizeInput(input)
	if err != nil {
		return model.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	task := model.Task{
		ID:          newTaskID(),
		Date:        input.Date,
		Description: input.Description,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.tasks[task.ID] = task
	return task, nil
}

func (m *MemoryStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
	_ = ctx

	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return notFound(id)
	}
	task.Status = status
	task.UpdatedAt = m.now().UTC()
	m.tasks[id] = task
	return nil
}

func (m *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return notFound(id)
	}
	delete(m.tasks, id)
	return nil
}

func (m *MemoryStore) ActiveDays(ctx context.Context) ([]time.Time, error) {
	_ = ctx

	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedDays(m.days), nil
}

func (m *MemoryStore) MarkActive(ctx context.Context, day time.Time) error {
	_ = ctx

	if day.IsZero() {
		return fmt.Errorf("date is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.days[model.Day(day)] = struct{}{}
	return nil
}
