// Package activity turns dated task records into streak statistics and a
// weekday-by-week intensity grid for the heatmap.
//
// Everything here is pure: callers pass a snapshot of records and the
// current day, and get fresh values back.
package activity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

// Filter decides which records make a day count as active.
type Filter string

const (
	FilterAny       Filter = "any"
	FilterCompleted Filter = "completed"
)

func ParseFilter(value string) (Filter, error) {
	switch Filter(strings.TrimSpace(strings.ToLower(value))) {
	case FilterAny, "":
		return FilterAny, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("unknown qualifying filter %q", value)
	}
}

func (f Filter) Qualifies(task model.Task) bool {
	if f == FilterCompleted {
		return task.Status == model.StatusCompleted
	}
	return true
}

var ErrInvalidRecord = errors.New("invalid record")

type InvalidRecordError struct {
	Index  int
	ID     string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid record %d (id %s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("invalid record %d: %s", e.Index, e.Reason)
}

func (e *InvalidRecordError) Unwrap() error {
	return ErrInvalidRecord
}

func validate(tasks []model.Task) error {
	for i, task := range tasks {
		if task.Date.IsZero() {
			return &InvalidRecordError{Index: i, ID: task.ID, Reason: "missing date"}
		}
		if !task.Status.Valid() {
			return &InvalidRecordError{Index: i, ID: task.ID, Reason: fmt.Sprintf("unknown status %q", task.Status)}
		}
	}
	return nil
}

// ActiveDays returns the sorted distinct days of the qualifying records.
func ActiveDays(tasks []model.Task, filter Filter) ([]time.Time, error) {
	if err := validate(tasks); err != nil {
		return nil, err
	}
	days := make([]time.Time, 0, len(tasks))
	for _, task := range tasks {
		if filter.Qualifies(task) {
			days = append(days, task.Date)
		}
	}
	return CompileDays(days), nil
}

// CompileDays normalizes, deduplicates and sorts a raw list of dates.
// Zero dates are dropped.
func CompileDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	result := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		if date.IsZero() {
			continue
		}
		day := model.Day(date)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		result = append(result, day)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Before(result[j])
	})
	return result
}

func nextDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1)
}
