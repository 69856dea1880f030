package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

type jsonTask struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Task      string    `json:"task"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// JSONStore persists tasks as a JSON array in a single local file.
type JSONStore struct {
	mu    sync.RWMutex
	path  string
	tasks []model.Task
	now   func() time.Time
}

func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, fmt.Errorf("json path is required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	s := &JSONStore{path: path, now: time.Now}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.tasks = nil
			return nil
		}
		return err
	}

	var rows []jsonTask
	if len(b) > 0 {
		if err := json.Unmarshal(b, &rows); err != nil {
			return fmt.Errorf("parse %s: %w", s.path, err)
		}
	}

	tasks := make([]model.Task, 0, len(rows))
	for i, row := range rows {
		date, err := model.ParseDay(row.Date)
		if err != nil {
			return fmt.Errorf("%s entry %d: %w", s.path, i, err)
		}
		status, err := model.ParseStatus(row.Status)
		if err != nil {
			return fmt.Errorf("%s entry %d: %w", s.path, i, err)
		}
		id := row.ID
		if id == "" {
			id = newTaskID()
		}
		tasks = append(tasks, model.Task{
			ID:          id,
			Date:        date,
			Description: row.Task,
			Status:      status,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	s.tasks = tasks
	return nil
}

func (s *JSONStore) saveLocked() error {
	rows := make([]jsonTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		rows = append(rows, jsonTask{
			ID:        task.ID,
			Date:      model.FormatDay(task.Date),
			Task:      task.Description,
			Status:    string(task.Status),
			CreatedAt: task.CreatedAt,
			UpdatedAt: task.UpdatedAt,
		})
	}

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *JSONStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := append([]model.Task(nil), s.tasks...)
	sortTasks(tasks)
	return tasks, nil
}

func (s *JSONStore) AddTask(ctx context.Context, input TaskInput) (model.Task, error) {
	_ = ctx

	input, err := normalizeInput(input)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	task := model.Task{
		ID:          newTaskID(),
		Date:        input.Date,
		Description: input.Description,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks = append(s.tasks, task)
	if err := s.saveLocked(); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		return model.Task{}, err
	}
	return task, nil
}

func (s *JSONStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
	_ = ctx

	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		previous := s.tasks[i]
		s.tasks[i].Status = status
		s.tasks[i].UpdatedAt = s.now().UTC()
		if err := s.saveLocked(); err != nil {
			s.tasks[i] = previous
			return err
		}
		return nil
	}
	return notFound(id)
}

func (s *JSONStore) DeleteTask(ctx context.Context, id string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		previous := s.tasks
		remaining := make([]model.Task, 0, len(s.tasks)-1)
		remaining = append(remaining, s.tasks[:i]...)
		s.tasks = append(remaining, s.tasks[i+1:]...)
		if err := s.saveLocked(); err != nil {
			s.tasks = previous
			return err
		}
		return nil
	}
	return notFound(id)
}

// JSONActivityLog stores active days as a sorted JSON array of "YYYY-MM-DD" strings.
type JSONActivityLog struct {
	mu   sync.Mutex
	path string
	days map[time.Time]struct{}
}

func NewJSONActivityLog(path string) (*JSONActivityLog, error) {
	if path == "" {
		return nil, fmt.Errorf("activity path is required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	l := &JSONActivityLog{path: path, days: make(map[time.Time]struct{})}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, err
	}
	if len(b) == 0 {
		return l, nil
	}

	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, value := range values {
		day, err := model.ParseDay(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		l.days[day] = struct{}{}
	}
	return l, nil
}

func (l *JSONActivityLog) ActiveDays(ctx context.Context) ([]time.Time, error) {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	return sortedDays(l.days), nil
}

func (l *JSONActivityLog) MarkActive(ctx context.Context, day time.Time) error {
	_ = ctx

	if day.IsZero() {
		return fmt.Errorf("date is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	day = model.Day(day)
	if _, ok := l.days[day]; ok {
		return nil
	}
	l.days[day] = struct{}{}

	values := make([]string, 0, len(l.days))
	for _, d := range sortedDays(l.days) {
		values = append(values, model.FormatDay(d))
	}
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(l.path, b, 0o644); err != nil {
		delete(l.days, day)
		return err
	}
	return nil
}
