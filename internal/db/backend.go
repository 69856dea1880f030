package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendCSV    = "csv"
	BackendJSON   = "json"
	BackendMongo  = "mongo"
)

var Backends = []string{BackendSQLite, BackendMemory, BackendCSV, BackendJSON, BackendMongo}

type Options struct {
	Backend       string
	DBPath        string
	CSVPath       string
	JSONPath      string
	ActivityPath  string
	MongoURI      string
	MongoDatabase string
	CacheTTL      time.Duration
}

// Backend bundles the stores selected at startup. Activity and History are nil
// when the chosen backend has no such capability.
type Backend struct {
	Name     string
	Tasks    TaskStore
	Activity ActivityLog
	History  HistoryStore
	closers  []func() error
}

func OpenBackend(ctx context.Context, opts Options) (*Backend, error) {
	name := strings.TrimSpace(strings.ToLower(opts.Backend))
	if name == "" {
		name = BackendSQLite
	}

	backend := &Backend{Name: name}
	var tasks TaskStore

	switch name {
	case BackendSQLite:
		if opts.DBPath != ":memory:" {
			if err := ensureDir(opts.DBPath); err != nil {
				return nil, err
			}
		}
		sqlDB, err := OpenSQLite(opts.DBPath)
		if err != nil {
			return nil, err
		}
		store := NewSQLiteStore(sqlDB)
		tasks = store
		backend.Activity = store
		backend.History = store
		backend.closers = append(backend.closers, sqlDB.Close)

	case BackendMemory:
		store := NewMemoryStore()
		tasks = store
		backend.Activity = store

	case BackendCSV:
		store, err := NewCSVStore(opts.CSVPath)
		if err != nil {
			return nil, err
		}
		log, err := NewJSONActivityLog(opts.ActivityPath)
		if err != nil {
			return nil, err
		}
		tasks = store
		backend.Activity = log

	case BackendJSON:
		store, err := NewJSONStore(opts.JSONPath)
		if err != nil {
			return nil, err
		}
		log, err := NewJSONActivityLog(opts.ActivityPath)
		if err != nil {
			return nil, err
		}
		tasks = store
		backend.Activity = log

	case BackendMongo:
		store, err := OpenMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		tasks = store
		backend.Activity = store
		backend.closers = append(backend.closers, func() error {
			return store.Close(context.Background())
		})

	default:
		return nil, fmt.Errorf("unknown backend %q (want one of %s)", opts.Backend, strings.Join(Backends, ", "))
	}

	if opts.CacheTTL > 0 {
		tasks = NewCachedStore(tasks, opts.CacheTTL)
	}
	backend.Tasks = tasks
	return backend, nil
}

func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
