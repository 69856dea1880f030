package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

var csvHeader = []string{"date", "task", "status"}

// csvNamespace seeds the derived task ids of CSV rows.
var csvNamespace = uuid.MustParse("6f1c7f53-4c2e-4d8b-9a57-2f3f0c1be8d1")

// CSVStore persists tasks in a flat "date,task,status" file. The file has no id
// column, so ids are derived from the date, the text and the occurrence of that
// pair; they stay the same across restarts as long as the row is not edited.
type CSVStore struct {
	mu    sync.RWMutex
	path  string
	tasks []model.Task
}

func NewCSVStore(path string) (*CSVStore, error) {
	if path == "" {
		return nil, fmt.Errorf("csv path is required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	s := &CSVStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.tasks = nil
			return nil
		}
		return err
	}
	defer f.Close()

	tasks, err := readCSVTasks(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	s.tasks = tasks
	return nil
}

func readCSVTasks(r io.Reader) ([]model.Task, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true

	tasks := []model.Task{}
	occurrences := make(map[string]int)
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && isCSVHeader(record) {
			continue
		}

		date, err := model.ParseDay(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		status, err := model.ParseStatus(record[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		description := strings.TrimSpace(record[1])

		key := csvKey(date, description)
		tasks = append(tasks, model.Task{
			ID:          csvTaskID(key, occurrences[key]),
			Date:        date,
			Description: description,
			Status:      status,
		})
		occurrences[key]++
	}
	return tasks, nil
}

func isCSVHeader(record []string) bool {
	for i, name := range csvHeader {
		if strings.ToLower(strings.TrimSpace(record[i])) != name {
			return false
		}
	}
	return true
}

func csvKey(date time.Time, description string) string {
	return date.Format(model.DateLayout) + "\x00" + description
}

func csvTaskID(key string, occurrence int) string {
	return uuid.NewSHA1(csvNamespace, []byte(key+"\x00"+strconv.Itoa(occurrence))).String()
}

func (s *CSVStore) saveLocked() error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		_ = f.Close()
		return err
	}
	for _, task := range s.tasks {
		if err := writer.Write([]string{model.FormatDay(task.Date), task.Description, string(task.Status)}); err != nil {
			_ = f.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *CSVStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := append([]model.Task(nil), s.tasks...)
	sortTasks(tasks)
	return tasks, nil
}

func (s *CSVStore) AddTask(ctx context.Context, input TaskInput) (model.Task, error) {
	_ = ctx

	input, err := normalizeInput(input)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := csvKey(input.Date, input.Description)
	used := make(map[string]struct{}, len(s.tasks))
	occurrence := 0
	for _, task := range s.tasks {
		used[task.ID] = struct{}{}
		if csvKey(task.Date, task.Description) == key {
			occurrence++
		}
	}
	id := csvTaskID(key, occurrence)
	for _, taken := used[id]; taken; _, taken = used[id] {
		occurrence++
		id = csvTaskID(key, occurrence)
	}

	task := model.Task{
		ID:          id,
		Date:        input.Date,
		Description: input.Description,
		Status:      input.Status,
	}
	s.tasks = append(s.tasks, task)
	if err := s.saveLocked(); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		return model.Task{}, err
	}
	return task, nil
}

func (s *CSVStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
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
		if err := s.saveLocked(); err != nil {
			s.tasks[i] = previous
			return err
		}
		return nil
	}
	return notFound(id)
}

func (s *CSVStore) DeleteTask(ctx context.Context, id string) error {
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
