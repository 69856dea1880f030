package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

const timestampLayout = time.RFC3339Nano

// SQLiteStore keeps tasks, their history and the activity log in one database.
type SQLiteStore struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db, now: time.Now}
}

func (s *SQLiteStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, day, description, status, created_at, updated_at
		FROM tasks ORDER BY day DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, day, description, status, created_at, updated_at
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, notFound(id)
	}
	return task, err
}

func (s *SQLiteStore) AddTask(ctx context.Context, input TaskInput) (model.Task, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return model.Task{}, err
	}

	now := s.now().UTC()
	task := model.Task{
		ID:          newTaskID(),
		Date:        input.Date,
		Description: input.Description,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.DB.ExecContext(ctx, `INSERT INTO tasks (id, day, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID, model.FormatDay(task.Date), task.Description, string(task.Status),
		now.Format(timestampLayout), now.Format(timestampLayout)); err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}

	if err := s.addHistory(ctx, task.ID, "created", formatCreatedDetails(task)); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	before, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if before.Status == status {
		return nil
	}

	now := s.now().UTC()
	if _, err := s.DB.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now.Format(timestampLayout), id); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	return s.addHistory(ctx, id, "status", formatChange("status", string(before.Status), string(status)))
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	before, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if err := s.addHistory(ctx, id, "deleted", formatDeletedDetails(before)); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListHistory(ctx context.Context, taskID string) ([]model.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, task_id, event_type, details, created_at
		FROM task_history WHERE task_id = ? ORDER BY id DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []model.HistoryEntry{}
	for rows.Next() {
		var entry model.HistoryEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.EventType, &entry.Details, &createdAt); err != nil {
			return nil, err
		}
		if entry.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse history timestamp: %w", err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (s *SQLiteStore) ActiveDays(ctx context.Context) ([]time.Time, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT day FROM activity_days ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []time.Time{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		day, err := model.ParseDay(value)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (s *SQLiteStore) MarkActive(ctx context.Context, day time.Time) error {
	if day.IsZero() {
		return fmt.Errorf("date is required")
	}
	_, err := s.DB.ExecContext(ctx, `INSERT OR IGNORE INTO activity_days (day, marked_at) VALUES (?, ?)`,
		model.FormatDay(day), s.now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("mark active day: %w", err)
	}
	return nil
}

func (s *SQLiteStore) addHistory(ctx context.Context, taskID, eventType, details string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO task_history (task_id, event_type, details, created_at)
		VALUES (?, ?, ?, ?)`, taskID, eventType, details, s.now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("add history: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	var day, status, createdAt, updatedAt string
	if err := row.Scan(&task.ID, &day, &task.Description, &status, &createdAt, &updatedAt); err != nil {
		return model.Task{}, err
	}

	var err error
	if task.Date, err = model.ParseDay(day); err != nil {
		return model.Task{}, err
	}
	if task.Status, err = model.ParseStatus(status); err != nil {
		return model.Task{}, err
	}
	if task.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return model.Task{}, fmt.Errorf("parse created_at: %w", err)
	}
	if task.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return model.Task{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return task, nil
}

func formatCreatedDetails(task model.Task) string {
	return fmt.Sprintf("created: task='%s' date=%s status=%s", task.Description, model.FormatDay(task.Date), task.Status)
}

func formatDeletedDetails(task model.Task) string {
	return fmt.Sprintf("deleted: task='%s' date=%s status=%s", task.Description, model.FormatDay(task.Date), task.Status)
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}
