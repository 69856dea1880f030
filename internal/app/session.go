// Package app ties a storage backend to the activity aggregator. A Session is
// the only state a front end holds; the TUI creates one per process and the
// web server shares one across requests.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/activity"
	"github.com/Joseda-hg/lazystreak/internal/db"
	"github.com/Joseda-hg/lazystreak/internal/model"
)

var (
	ErrEmptyDescription   = errors.New("task description is required")
	ErrHistoryUnsupported = errors.New("backend does not keep task history")
)

// Source selects where active days come from.
type Source string

const (
	// SourceTasks derives active days from task records under the qualifying filter.
	SourceTasks Source = "tasks"
	// SourceLog reads active days from the append-only activity log.
	SourceLog Source = "log"
)

func ParseSource(value string) (Source, error) {
	switch Source(strings.TrimSpace(strings.ToLower(value))) {
	case SourceTasks, "":
		return SourceTasks, nil
	case SourceLog:
		return SourceLog, nil
	default:
		return "", fmt.Errorf("unknown activity source %q", value)
	}
}

type Session struct {
	store   db.TaskStore
	log     db.ActivityLog
	history db.HistoryStore
	agg     activity.Aggregator
	source  Source
}

func NewSession(backend *db.Backend, agg activity.Aggregator, source Source) (*Session, error) {
	if backend == nil || backend.Tasks == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if source == SourceLog && backend.Activity == nil {
		return nil, fmt.Errorf("backend %q has no activity log", backend.Name)
	}
	if source == "" {
		source = SourceTasks
	}
	return &Session{
		store:   backend.Tasks,
		log:     backend.Activity,
		history: backend.History,
		agg:     agg,
		source:  source,
	}, nil
}

func (s *Session) Aggregator() activity.Aggregator {
	return s.agg
}

func (s *Session) Source() Source {
	return s.source
}

func (s *Session) Today() time.Time {
	return s.agg.Today()
}

// AddTask stores a pending task. A zero date means today.
func (s *Session) AddTask(ctx context.Context, description string, date time.Time) (model.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Task{}, ErrEmptyDescription
	}
	if date.IsZero() {
		date = s.Today()
	}

	task, err := s.store.AddTask(ctx, db.TaskInput{Description: description, Date: date})
	if err != nil {
		return model.Task{}, err
	}
	if err := s.markIfQualifies(ctx, task); err != nil {
		return task, err
	}
	return task, nil
}

func (s *Session) SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	task, err := s.Task(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	return s.applyStatus(ctx, task, status)
}

func (s *Session) ToggleStatus(ctx context.Context, task model.Task) (model.Task, error) {
	return s.applyStatus(ctx, task, task.Status.Toggle())
}

func (s *Session) applyStatus(ctx context.Context, task model.Task, status model.Status) (model.Task, error) {
	if !status.Valid() {
		return model.Task{}, fmt.Errorf("unknown status %q", status)
	}
	if err := s.store.UpdateTaskStatus(ctx, task.ID, status); err != nil {
		return model.Task{}, err
	}
	task.Status = status
	if err := s.markIfQualifies(ctx, task); err != nil {
		return task, err
	}
	return task, nil
}

func (s *Session) DeleteTask(ctx context.Context, id string) error {
	return s.store.DeleteTask(ctx, id)
}

func (s *Session) Task(ctx context.Context, id string) (model.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	for _, task := range tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return model.Task{}, fmt.Errorf("task %s: %w", id, db.ErrNotFound)
}

// Tasks lists tasks matching filter, newest date first.
func (s *Session) Tasks(ctx context.Context, filter model.StatusFilter) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if filter.Matches(task) {
			filtered = append(filtered, task)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})
	return filtered, nil
}

func (s *Session) History(ctx context.Context, id string) ([]model.HistoryEntry, error) {
	if s.history == nil {
		return nil, ErrHistoryUnsupported
	}
	return s.history.ListHistory(ctx, id)
}

func (s *Session) markIfQualifies(ctx context.Context, task model.Task) error {
	if s.log == nil || !s.agg.Filter.Qualifies(task) {
		return nil
	}
	if err := s.log.MarkActive(ctx, task.Date); err != nil {
		return fmt.Errorf("mark active day: %w", err)
	}
	return nil
}
