// ABOUTME: BadgerDB-backed persistence for task histories
// ABOUTME: One JSON document per task, written atomically per transaction

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/nainya/revlog/pkg/history"
)

// ErrNotFound is returned when no document exists for a task.
var ErrNotFound = errors.New("history document not found")

const keyPrefix = "task/"

// Config holds store configuration.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites forces fsync on every commit. On by default in production;
	// a version is only reported as created once it is durable.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. Nil disables it.
	Logger *zerolog.Logger
}

// DefaultConfig returns production defaults for the given data directory.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for ephemeral test stores.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store persists one history document per task in BadgerDB.
type Store struct {
	db *badger.DB
}

// Open creates or opens the store.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{l: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveHistory writes the full document for a task in a single transaction.
// The write is durable once this returns nil.
func (s *Store) SaveHistory(ctx context.Context, doc history.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode history %s: %w", doc.TaskID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(taskKey(doc.TaskID), data)
	})
	if err != nil {
		return fmt.Errorf("save history %s: %w", doc.TaskID, err)
	}
	return nil
}

// LoadHistory reads the document for one task.
func (s *Store) LoadHistory(ctx context.Context, taskID string) (history.Document, error) {
	if err := ctx.Err(); err != nil {
		return history.Document{}, err
	}
	var doc history.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(taskID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, taskID)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return history.Document{}, err
		}
		return history.Document{}, fmt.Errorf("load history %s: %w", taskID, err)
	}
	return doc, nil
}

// LoadAll reads every task document, used for registry warm starts and
// cross-task aggregation.
func (s *Store) LoadAll(ctx context.Context) ([]history.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []history.Document
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var doc history.Document
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load all histories: %w", err)
	}
	return docs, nil
}

func taskKey(taskID string) []byte {
	return []byte(keyPrefix + taskID)
}

// badgerLogger adapts zerolog to BadgerDB's Logger interface.
type badgerLogger struct {
	l *zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error().Msgf(format, args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn().Msgf(format, args...)
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug().Msgf(format, args...)
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug().Msgf(format, args...)
}
