package model

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func ParseStatus(value string) (Status, error) {
	switch Status(strings.TrimSpace(strings.ToLower(value))) {
	case StatusPending, "":
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

func (s Status) Toggle() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

type Task struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"task"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusFilter selects which tasks a list shows.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterCompleted StatusFilter = "completed"
)

func ParseStatusFilter(value string) (StatusFilter, error) {
	switch StatusFilter(strings.TrimSpace(strings.ToLower(value))) {
	case FilterAll, "":
		return FilterAll, nil
	case FilterPending:
		return FilterPending, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", value)
	}
}

func (f StatusFilter) Matches(task Task) bool {
	switch f {
	case FilterPending:
		return task.Status == StatusPending
	case FilterCompleted:
		return task.Status == StatusCompleted
	default:
		return true
	}
}

// Next cycles all -> pending -> completed -> all.
func (f StatusFilter) Next() StatusFilter {
	switch f {
	case FilterAll, "":
		return FilterPending
	case FilterPending:
		return FilterCompleted
	default:
		return FilterAll
	}
}
