package storage

import (
	"log/slog"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

type StorageOption func(*DB)

// WithInMemory keeps the whole store in memory (useful for tests)
func WithInMemory() StorageOption {
	return func(db *DB) {
		db.inMemory = true
	}
}

// WithCodec sets the value codec of the root key space
func WithCodec(c domain.Codec) StorageOption {
	return func(db *DB) {
		db.codec = c
	}
}

// WithSync makes every commit wait for fsync (default: true)
func WithSync(enabled bool) StorageOption {
	return func(db *DB) {
		db.sync = enabled
	}
}

// WithBlockCacheSize sets the pebble block cache size in bytes
func WithBlockCacheSize(size int64) StorageOption {
	return func(db *DB) {
		db.blockCacheSize = size
	}
}

// WithLogger sets the logger used by the store and by pebble itself
func WithLogger(logger *slog.Logger) StorageOption {
	return func(db *DB) {
		db.logger = logger
	}
}
