// Package storage is the ordered primary store: pebble underneath, nested
// key spaces on top, each with an optional value codec and a pre-commit hook
// pipeline.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

// DB owns the pebble database and the root key space
type DB struct {
	pdb  *pebble.DB
	root *KeySpace

	// Configuration
	path           string
	inMemory       bool
	sync           bool
	blockCacheSize int64
	codec          domain.Codec
	logger         *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) a store at path
func Open(path string, options ...StorageOption) (*DB, error) {
	db := &DB{
		path:           path,
		sync:           true,
		blockCacheSize: 64 * 1024 * 1024, // 64MB
	}

	// Apply options
	for _, option := range options {
		option(db)
	}

	if db.logger == nil {
		db.logger = slog.Default()
	}
	db.logger = db.logger.With("component", "storage")

	cache := pebble.NewCache(db.blockCacheSize)
	defer cache.Unref()

	opts := &pebble.Options{
		Cache:  cache,
		Logger: pebbleLogger{logger: db.logger},
		Levels: []pebble.LevelOptions{
			{FilterPolicy: bloom.FilterPolicy(10)},
		},
	}

	if db.inMemory {
		opts.FS = vfs.NewMem()
	} else {
		if path == "" {
			return nil, fmt.Errorf("store path is required")
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	pdb, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}
	db.pdb = pdb
	db.root = newKeySpace(db, nil, "", db.codec)

	db.logger.Info("store opened", "path", path, "in_memory", db.inMemory, "codec", codecName(db.codec))
	return db, nil
}

// Root returns the top-level key space
func (db *DB) Root() *KeySpace {
	return db.root
}

// Close closes the database. Further operations fail with domain.ErrClosed.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true

	if err := db.pdb.Close(); err != nil {
		return fmt.Errorf("failed to close pebble database: %w", err)
	}
	return nil
}

func (db *DB) writeOptions() *pebble.WriteOptions {
	if db.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

// acquire holds the read side of the close lock for the duration of one
// store operation.
func (db *DB) acquire() (release func(), err error) {
	db.mu.RLock()
	if db.closed {
		db.mu.RUnlock()
		return nil, domain.ErrClosed
	}
	return db.mu.RUnlock, nil
}

func codecName(c domain.Codec) string {
	if c == nil {
		return "none"
	}
	return c.Name()
}

// pebbleLogger routes pebble's own log output through slog.
type pebbleLogger struct {
	logger *slog.Logger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "source", "pebble")
}

func (l pebbleLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "source", "pebble")
}

func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Error(msg, "source", "pebble")
	panic(msg)
}
