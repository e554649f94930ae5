package api

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/adfharrison1/go-indexdb/pkg/indexing"
	"github.com/adfharrison1/go-indexdb/pkg/query"
)

// MockStore provides a mock implementation of Store for testing
type MockStore struct {
	mu      sync.Mutex
	records map[string]interface{}
	defs    []indexing.Definition

	putErr    error
	queryErr  error
	items     []query.Item
	streamErr error

	putCalls   int
	queryCalls int
	lastQuery  query.Query
	lastFields []string
}

func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]interface{})}
}

func (m *MockStore) Put(ctx context.Context, pk string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	m.records[pk] = value
	return nil
}

func (m *MockStore) Insert(ctx context.Context, value interface{}) (string, error) {
	m.mu.Lock()
	pk := fmt.Sprintf("generated-%d", m.putCalls+1)
	m.mu.Unlock()
	return pk, m.Put(ctx, pk, value)
}

func (m *MockStore) Get(ctx context.Context, pk string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.records[pk]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *MockStore) Del(ctx context.Context, pk string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, pk)
	return nil
}

func (m *MockStore) EnsureIndex(specs ...string) (indexing.Definition, error) {
	def, err := indexing.ParseFields(specs...)
	if err != nil {
		return indexing.Definition{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = append(m.defs, def)
	return def, nil
}

func (m *MockStore) Indexes() []indexing.Definition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]indexing.Definition(nil), m.defs...)
}

func (m *MockStore) FindBy(ctx context.Context, specs []string, q query.Query) ([]query.Item, error) {
	seq, err := m.StreamBy(ctx, specs, q)
	if err != nil {
		return nil, err
	}
	items := []query.Item{}
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *MockStore) StreamBy(ctx context.Context, specs []string, q query.Query) (iter.Seq2[query.Item, error], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++
	m.lastQuery = q
	m.lastFields = specs
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	items, streamErr := m.items, m.streamErr
	var seq iter.Seq2[query.Item, error] = func(yield func(query.Item, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		if streamErr != nil {
			yield(query.Item{}, streamErr)
		}
	}
	for _, stage := range q.Stages {
		seq = stage(seq)
	}
	return seq, nil
}
