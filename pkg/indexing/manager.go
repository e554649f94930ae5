package indexing

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/adfharrison1/go-indexdb/pkg/keyenc"
)

// Manager owns the key space of one index and keeps it in step with writes
// to the primary key space.
//
// Entries are only ever added on put. Deletes and overwrites leave the old
// entry behind; queries detect such stale entries and remove them.
type Manager struct {
	def       Definition
	accessors []accessor

	primary    domain.KeySpace
	index      domain.KeySpace
	normalizer *Normalizer
	logger     *slog.Logger

	removeHook func()
}

func newManager(primary domain.KeySpace, def Definition, logger *slog.Logger) *Manager {
	fields := def.Fields()
	accessors := make([]accessor, len(fields))
	for i, f := range fields {
		accessors[i] = compilePath(f.Path)
	}

	index := primary.Sub(def.Name())
	m := &Manager{
		def:        def,
		accessors:  accessors,
		primary:    primary,
		index:      index,
		normalizer: NewNormalizer(index),
		logger:     logger.With("index", def.Name()),
	}
	m.removeHook = primary.AddPreCommitHook(m)
	return m
}

func (m *Manager) Definition() Definition { return m.def }

func (m *Manager) Name() string { return m.def.Name() }

func (m *Manager) Fields() []Field { return m.def.Fields() }

func (m *Manager) Arity() int { return m.def.Arity() }

// Primary is the key space holding the indexed records
func (m *Manager) Primary() domain.KeySpace { return m.primary }

// KeySpace is the key space holding the index entries
func (m *Manager) KeySpace() domain.KeySpace { return m.index }

// Values extracts the indexed properties from a record value, in
// definition order. Paths only descend decoded shapes (maps with string keys
// and []interface{}); run other values through the Normalizer first.
func (m *Manager) Values(value interface{}) []interface{} {
	out := make([]interface{}, len(m.accessors))
	for i, a := range m.accessors {
		out[i] = a.lookup(value)
	}
	return out
}

// EncodeEntry returns the canonical index key of the record (pk, value)
func (m *Manager) EncodeEntry(pk string, value interface{}) ([]byte, error) {
	return m.encode(m.Values(value), pk)
}

// EncodeBounds encodes a caller-supplied bound tuple followed by trailing
// (normally keyenc.Min or keyenc.Max). keyenc sentinels inside values are
// passed through untouched; everything else is normalized first.
func (m *Manager) EncodeBounds(values []interface{}, trailing keyenc.Sentinel) ([]byte, error) {
	if len(values) != m.Arity() {
		return nil, &domain.ArityMismatchError{Index: m.Name(), Want: m.Arity(), Start: len(values), End: len(values)}
	}
	return m.encode(values, trailing)
}

// CheckArity fails unless both bound tuples have one element per indexed
// property
func (m *Manager) CheckArity(start, end int) error {
	if start != m.Arity() || end != m.Arity() {
		return &domain.ArityMismatchError{Index: m.Name(), Want: m.Arity(), Start: start, End: end}
	}
	return nil
}

// Validate reports whether indexKey is still the entry the record (pk,
// value) would produce today.
func (m *Manager) Validate(indexKey []byte, pk string, value interface{}) (bool, error) {
	current, err := m.EncodeEntry(pk, value)
	if err != nil {
		return false, err
	}
	return bytes.Equal(current, indexKey), nil
}

func (m *Manager) encode(values []interface{}, trailing interface{}) ([]byte, error) {
	fields := m.def.fields
	key := make([]byte, 0, 64)
	for i, v := range values {
		if _, ok := v.(keyenc.Sentinel); !ok {
			var err error
			if v, err = m.normalizer.Normalize(v); err != nil {
				return nil, err
			}
		}
		var err error
		if key, err = keyenc.AppendField(key, v, fields[i].Direction); err != nil {
			return nil, fmt.Errorf("property %q: %w", fields[i].Path, err)
		}
	}
	return keyenc.AppendField(key, trailing, keyenc.Asc)
}

// PreCommit implements domain.PreCommitHook: every put on the primary key
// space adds indexKey -> pk to the same commit. The record is indexed in the
// shape it will be read back in, and pk is stored as raw bytes.
func (m *Manager) PreCommit(ctx context.Context, mut domain.Mutation, b domain.Batch) error {
	if mut.Type != domain.MutationPut {
		return nil
	}
	pk := string(mut.Key)
	value, err := m.normalizer.Normalize(mut.Value)
	if err != nil {
		m.logger.Warn("record not indexable", "key", pk, "error", err)
		return fmt.Errorf("index %s: %w", m.Name(), err)
	}
	key, err := m.EncodeEntry(pk, value)
	if err != nil {
		m.logger.Warn("record not indexable", "key", pk, "error", err)
		return fmt.Errorf("index %s: %w", m.Name(), err)
	}
	if err := b.PutRaw(m.index, key, mut.Key); err != nil {
		return fmt.Errorf("index %s: %w", m.Name(), err)
	}
	EntriesWritten.WithLabelValues(m.Name()).Inc()
	return nil
}
