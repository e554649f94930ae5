// Package indexing maintains ordered secondary indexes over a primary key
// space.
package indexing

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

// Indexer is the table of index managers for one primary key space, keyed by
// canonical index name.
type Indexer struct {
	primary domain.KeySpace

	mu       sync.RWMutex
	managers map[string]*Manager

	// Configuration
	createOnDemand bool
	logger         *slog.Logger
}

type IndexerOption func(*Indexer)

// WithCreateOnDemand controls whether Manager declares unknown indexes
// (default: true). When disabled, using an undeclared index fails with
// domain.ErrIndexNotDefined.
func WithCreateOnDemand(enabled bool) IndexerOption {
	return func(ix *Indexer) {
		ix.createOnDemand = enabled
	}
}

func WithLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		ix.logger = logger
	}
}

// NewIndexer creates the index table for primary
func NewIndexer(primary domain.KeySpace, options ...IndexerOption) *Indexer {
	ix := &Indexer{
		primary:        primary,
		managers:       make(map[string]*Manager),
		createOnDemand: true,
	}

	// Apply options
	for _, option := range options {
		option(ix)
	}
	if ix.logger == nil {
		ix.logger = slog.Default()
	}
	ix.logger = ix.logger.With("component", "indexer")

	return ix
}

// Primary returns the indexed key space
func (ix *Indexer) Primary() domain.KeySpace {
	return ix.primary
}

// EnsureIndex declares def. It is idempotent: an equal definition returns
// the manager created the first time.
func (ix *Indexer) EnsureIndex(def Definition) (*Manager, error) {
	if def.Arity() == 0 {
		return nil, domain.ErrInvalidIndexSpec
	}

	ix.mu.RLock()
	m, ok := ix.managers[def.Name()]
	ix.mu.RUnlock()
	if ok {
		return m, nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	// Double-check in case another goroutine created it
	if m, ok := ix.managers[def.Name()]; ok {
		return m, nil
	}

	m = newManager(ix.primary, def, ix.logger)
	ix.managers[def.Name()] = m
	ix.logger.Info("index declared", "index", def.Name())
	return m, nil
}

// Manager returns the manager for def, declaring it first when on-demand
// creation is enabled.
func (ix *Indexer) Manager(def Definition) (*Manager, error) {
	ix.mu.RLock()
	m, ok := ix.managers[def.Name()]
	ix.mu.RUnlock()
	if ok {
		return m, nil
	}

	if !ix.createOnDemand {
		return nil, &domain.IndexNotDefinedError{Index: def.Name()}
	}
	return ix.EnsureIndex(def)
}

// Indexes lists the declared definitions ordered by name
func (ix *Indexer) Indexes() []Definition {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	defs := make([]Definition, 0, len(ix.managers))
	for _, m := range ix.managers {
		defs = append(defs, m.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name() < defs[j].Name() })
	return defs
}

// Close detaches every write hook and forgets the declared indexes. Index
// entries stay in the store.
func (ix *Indexer) Close() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, m := range ix.managers {
		m.removeHook()
	}
	ix.managers = make(map[string]*Manager)
}
