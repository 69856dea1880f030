package db

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

const (
	DefaultCacheTTL = 5 * time.Minute
	tasksCacheKey   = "tasks"
)

// CachedStore serves ListTasks from a TTL cache and drops the cache on every write.
// A read that overlaps a write is returned to its caller but not cached.
type CachedStore struct {
	next  TaskStore
	cache *expirable.LRU[string, []model.Task]

	mu         sync.Mutex
	generation uint64
}

func NewCachedStore(next TaskStore, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		next:  next,
		cache: expirable.NewLRU[string, []model.Task](1, nil, ttl),
	}
}

func (c *CachedStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	if tasks, ok := c.cache.Get(tasksCacheKey); ok {
		return append([]model.Task(nil), tasks...), nil
	}

	c.mu.Lock()
	started := c.generation
	c.mu.Unlock()

	tasks, err := c.next.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation == started {
		c.cache.Add(tasksCacheKey, append([]model.Task(nil), tasks...))
	}
	c.mu.Unlock()
	return tasks, nil
}

func (c *CachedStore) AddTask(ctx context.Context, input TaskInput) (model.Task, error) {
	defer c.Invalidate()
	return c.next.AddTask(ctx, input)
}

func (c *CachedStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
	defer c.Invalidate()
	return c.next.UpdateTaskStatus(ctx, id, status)
}

func (c *CachedStore) DeleteTask(ctx context.Context, id string) error {
	defer c.Invalidate()
	return c.next.DeleteTask(ctx, id)
}

func (c *CachedStore) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.cache.Purge()
}
