// Package indexdb ties the store, the index table and the query engine
// together behind one handle.
package indexdb

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adfharrison1/go-indexdb/pkg/codec"
	"github.com/adfharrison1/go-indexdb/pkg/config"
	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/adfharrison1/go-indexdb/pkg/indexing"
	"github.com/adfharrison1/go-indexdb/pkg/query"
	"github.com/adfharrison1/go-indexdb/pkg/storage"
)

// DB is a record key space with its secondary indexes
type DB struct {
	store   *storage.DB
	records domain.KeySpace
	indexer *indexing.Indexer
	engine  *query.Engine

	// Configuration
	logger         *slog.Logger
	createOnDemand bool
	registerer     prometheus.Registerer
}

type Option func(*DB)

func WithLogger(logger *slog.Logger) Option {
	return func(db *DB) {
		db.logger = logger
	}
}

// WithCreateOnDemand lets queries declare unknown indexes (default: true)
func WithCreateOnDemand(enabled bool) Option {
	return func(db *DB) {
		db.createOnDemand = enabled
	}
}

// WithRegisterer registers the index and query metrics with reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(db *DB) {
		db.registerer = reg
	}
}

// New indexes an existing key space
func New(records domain.KeySpace, options ...Option) (*DB, error) {
	db, err := newDB(options)
	if err != nil {
		return nil, err
	}
	db.attach(records)
	return db, nil
}

// Open opens the store described by cfg and declares the configured
// indexes. Options given here override the configuration.
func Open(cfg *config.Config, options ...Option) (*DB, error) {
	valueCodec, err := codec.ByName(cfg.Storage.Codec)
	if err != nil {
		return nil, err
	}

	db, err := newDB(append([]Option{WithCreateOnDemand(cfg.Index.CreateOnDemand)}, options...))
	if err != nil {
		return nil, err
	}

	storageOptions := []storage.StorageOption{
		storage.WithCodec(valueCodec),
		storage.WithSync(cfg.Storage.Sync),
		storage.WithBlockCacheSize(cfg.Storage.BlockCacheMB * 1024 * 1024),
		storage.WithLogger(db.logger),
	}
	if cfg.Storage.InMemory {
		storageOptions = append(storageOptions, storage.WithInMemory())
	}

	store, err := storage.Open(cfg.Storage.Path, storageOptions...)
	if err != nil {
		return nil, err
	}
	db.store = store
	db.attach(store.Root().Sub(cfg.Storage.Namespace))

	for _, specs := range cfg.Index.Declare {
		if _, err := db.EnsureIndex(specs...); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to declare index %v: %w", specs, err)
		}
	}
	return db, nil
}

func newDB(options []Option) (*DB, error) {
	db := &DB{createOnDemand: true}

	// Apply options
	for _, option := range options {
		option(db)
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}

	if db.registerer != nil {
		if err := indexing.RegisterMetrics(db.registerer); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	db.engine = query.NewEngine(query.WithLogger(db.logger))
	return db, nil
}

func (db *DB) attach(records domain.KeySpace) {
	db.records = records
	db.indexer = indexing.NewIndexer(records,
		indexing.WithCreateOnDemand(db.createOnDemand),
		indexing.WithLogger(db.logger),
	)
}

// Records returns the indexed key space
func (db *DB) Records() domain.KeySpace {
	return db.records
}

// EnsureIndex declares the index described by specs (see
// indexing.ParseFields)
func (db *DB) EnsureIndex(specs ...string) (indexing.Definition, error) {
	def, err := indexing.ParseFields(specs...)
	if err != nil {
		return indexing.Definition{}, err
	}
	if _, err := db.indexer.EnsureIndex(def); err != nil {
		return indexing.Definition{}, err
	}
	return def, nil
}

// Indexes lists the declared indexes
func (db *DB) Indexes() []indexing.Definition {
	return db.indexer.Indexes()
}

// FindBy runs q against the index described by specs
func (db *DB) FindBy(ctx context.Context, specs []string, q query.Query) ([]query.Item, error) {
	mgr, err := db.manager(specs)
	if err != nil {
		return nil, err
	}
	return db.engine.Find(ctx, mgr, q)
}

// StreamBy is FindBy without collecting the results
func (db *DB) StreamBy(ctx context.Context, specs []string, q query.Query) (iter.Seq2[query.Item, error], error) {
	mgr, err := db.manager(specs)
	if err != nil {
		return nil, err
	}
	return db.engine.Stream(ctx, mgr, q)
}

func (db *DB) manager(specs []string) (*indexing.Manager, error) {
	def, err := indexing.ParseFields(specs...)
	if err != nil {
		return nil, err
	}
	return db.indexer.Manager(def)
}

// Put stores value under pk and indexes it in the same commit
func (db *DB) Put(ctx context.Context, pk string, value interface{}) error {
	return db.records.Put(ctx, []byte(pk), value)
}

// Insert stores value under a generated key and returns the key
func (db *DB) Insert(ctx context.Context, value interface{}) (string, error) {
	pk := uuid.NewString()
	if err := db.Put(ctx, pk, value); err != nil {
		return "", err
	}
	return pk, nil
}

func (db *DB) Get(ctx context.Context, pk string) (interface{}, error) {
	return db.records.Get(ctx, []byte(pk))
}

// Del removes the record. Its index entries are cleaned up by later queries.
func (db *DB) Del(ctx context.Context, pk string) error {
	return db.records.Del(ctx, []byte(pk))
}

// Close detaches the indexes and closes the store when Open created it
func (db *DB) Close() error {
	db.indexer.Close()
	if db.store != nil {
		return db.store.Close()
	}
	return nil
}
