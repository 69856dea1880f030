package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

type countingStore struct {
	TaskStore
	lists int
}

func (c *countingStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	c.lists++
	return c.TaskStore.ListTasks(ctx)
}

func TestCachedStoreServesRepeatedReads(t *testing.T) {
	inner := &countingStore{TaskStore: NewMemoryStore()}
	cached := NewCachedStore(inner, time.Minute)
	ctx := context.Background()

	if _, err := cached.AddTask(ctx, TaskInput{Description: "Walk", Date: time.Now()}); err != nil {
		t.Fatalf("add task: %v", err)
	}

	for i := 0; i < 3; i++ {
		tasks, err := cached.ListTasks(ctx)
		if err != nil {
			t.Fatalf("list tasks: %v", err)
		}
		if len(tasks) != 1 {
			t.Fatalf("expected 1 task, got %d", len(tasks))
		}
	}
	if inner.lists != 1 {
		t.Fatalf("expected 1 underlying list, got %d", inner.lists)
	}

	tasks, _ := cached.ListTasks(ctx)
	tasks[0].Description = "mutated"
	again, _ := cached.ListTasks(ctx)
	if again[0].Description != "Walk" {
		t.Fatalf("expected cached snapshot to be isolated from callers")
	}
}

func TestCachedStoreInvalidatesOnWrite(t *testing.T) {
	inner := &countingStore{TaskStore: NewMemoryStore()}
	cached := NewCachedStore(inner, time.Minute)
	ctx := context.Background()

	if _, err := cached.ListTasks(ctx); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	created, err := cached.AddTask(ctx, TaskInput{Description: "Walk", Date: time.Now()})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	tasks, err := cached.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected new task to be visible, got %d", len(tasks))
	}

	if err := cached.UpdateTaskStatus(ctx, created.ID, model.StatusCompleted); err != nil {
		t.Fatalf("update status: %v", err)
	}
	tasks, _ = cached.ListTasks(ctx)
	if tasks[0].Status != model.StatusCompleted {
		t.Fatalf("expected status update to be visible")
	}

	if err := cached.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	tasks, _ = cached.ListTasks(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected delete to be visible, got %d", len(tasks))
	}
	if inner.lists != 4 {
		t.Fatalf("expected 4 underlying lists, got %d", inner.lists)
	}
}

func TestCachedStoreExpires(t *testing.T) {
	inner := &countingStore{TaskStore: NewMemoryStore()}
	cached := NewCachedStore(inner, 20*time.Millisecond)
	ctx := context.Background()

	if _, err := cached.ListTasks(ctx); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if _, err := cached.ListTasks(ctx); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if inner.lists != 2 {
		t.Fatalf("expected expired entry to be reloaded, got %d lists", inner.lists)
	}
}

// pausingStore blocks its first ListTasks after the snapshot is taken until release is closed.
type pausingStore struct {
	TaskStore
	once     sync.Once
	snapshot chan struct{}
	release  chan struct{}
}

func (p *pausingStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := p.TaskStore.ListTasks(ctx)
	p.once.Do(func() {
		close(p.snapshot)
		<-p.release
	})
	return tasks, err
}

func TestCachedStoreDropsReadOverlappingWrite(t *testing.T) {
	inner := &pausingStore{
		TaskStore: NewMemoryStore(),
		snapshot:  make(chan struct{}),
		release:   make(chan struct{}),
	}
	cached := NewCachedStore(inner, time.Minute)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := cached.ListTasks(ctx)
		done <- err
	}()

	<-inner.snapshot
	if _, err := cached.AddTask(ctx, TaskInput{Description: "Walk", Date: time.Now()}); err != nil {
		t.Fatalf("add task: %v", err)
	}
	close(inner.release)
	if err := <-done; err != nil {
		t.Fatalf("list tasks: %v", err)
	}

	tasks, err := cached.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected added task to be visible after overlapping read, got %d tasks", len(tasks))
	}
}
