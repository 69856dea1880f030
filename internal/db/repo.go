package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

var ErrNotFound = errors.New("task not found")

// TaskStore is the capability every backend offers.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	AddTask(ctx context.Context, input TaskInput) (model.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status model.Status) error
	DeleteTask(ctx context.Context, id string) error
}

// ActivityLog is an append-only set of active days. Marking a day twice is a no-op.
type ActivityLog interface {
	ActiveDays(ctx context.Context) ([]time.Time, error)
	MarkActive(ctx context.Context, day time.Time) error
}

type HistoryStore interface {
	ListHistory(ctx context.Context, taskID string) ([]model.HistoryEntry, error)
}

type TaskInput struct {
	Description string
	Date        time.Time
	Status      model.Status
}

func normalizeInput(input TaskInput) (TaskInput, error) {
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		return TaskInput{}, fmt.Errorf("description is required")
	}
	if input.Date.IsZero() {
		return TaskInput{}, fmt.Errorf("date is required")
	}
	input.Date = model.Day(input.Date)
	if input.Status == "" {
		input.Status = model.StatusPending
	}
	if !input.Status.Valid() {
		return TaskInput{}, fmt.Errorf("unknown status %q", input.Status)
	}
	return input, nil
}

func newTaskID() string {
	return uuid.NewString()
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// sortTasks orders newest day first, then newest creation first.
func sortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].Date.Equal(tasks[j].Date) {
			return tasks[i].Date.After(tasks[j].Date)
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

func sortedDays(set map[time.Time]struct{}) []time.Time {
	days := make([]time.Time, 0, len(set))
	for day := range set {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
