package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/adfharrison1/go-indexdb/pkg/keyenc"
)

// Key layout inside pebble:
//
//	record:    [namespace prefix]['d'][user key]
//	namespace: [parent prefix]['s'][name_len:2B][name]
//
// The root prefix is empty. Data and child namespaces never share a prefix,
// so every key space can be range-scanned in isolation.
const (
	markData byte = 'd'
	markSub  byte = 's'
)

// KeySpace is one namespace of the store. It implements domain.KeySpace.
type KeySpace struct {
	db     *DB
	parent *KeySpace
	name   string
	prefix []byte
	data   []byte
	codec  domain.Codec

	mu       sync.RWMutex
	children map[string]*KeySpace
	hooks    []*hookEntry
}

type hookEntry struct {
	hook domain.PreCommitHook
}

func newKeySpace(db *DB, parent *KeySpace, name string, codec domain.Codec) *KeySpace {
	var prefix []byte
	if parent != nil {
		prefix = append(prefix, parent.prefix...)
		prefix = append(prefix, markSub)
		prefix = binary.BigEndian.AppendUint16(prefix, uint16(len(name)))
		prefix = append(prefix, name...)
	}
	data := append(append([]byte{}, prefix...), markData)

	return &KeySpace{
		db:       db,
		parent:   parent,
		name:     name,
		prefix:   prefix,
		data:     data,
		codec:    codec,
		children: make(map[string]*KeySpace),
	}
}

// Name returns the namespace name ("" for the root)
func (ks *KeySpace) Name() string {
	return ks.name
}

// Path returns the slash-separated names from the root down to ks
func (ks *KeySpace) Path() string {
	var parts []string
	for cur := ks; cur != nil && cur.parent != nil; cur = cur.parent {
		parts = append([]string{cur.name}, parts...)
	}
	return "/" + strings.Join(parts, "/")
}

// Parent implements domain.KeySpace
func (ks *KeySpace) Parent() domain.KeySpace {
	if ks.parent == nil {
		return nil
	}
	return ks.parent
}

// Sub implements domain.KeySpace. The child inherits its codec from ks.
func (ks *KeySpace) Sub(name string) domain.KeySpace {
	return ks.SubWithCodec(name, nil)
}

// SubWithCodec returns the child namespace, configuring its own value codec
// when it is created.
func (ks *KeySpace) SubWithCodec(name string, codec domain.Codec) *KeySpace {
	if len(name) > 0xFFFF {
		panic(fmt.Sprintf("storage: namespace name too long (%d bytes)", len(name)))
	}

	ks.mu.RLock()
	child, ok := ks.children[name]
	ks.mu.RUnlock()
	if ok {
		return child
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	// Double-check in case another goroutine created it
	if child, ok := ks.children[name]; ok {
		return child
	}
	child = newKeySpace(ks.db, ks, name, codec)
	ks.children[name] = child
	return child
}

// ValueCodec implements domain.KeySpace by walking up the parent chain
func (ks *KeySpace) ValueCodec() (domain.Codec, error) {
	for cur := ks; cur != nil; cur = cur.parent {
		if cur.codec != nil {
			return cur.codec, nil
		}
	}
	return nil, &domain.CodecNotFoundError{Namespace: ks.Path()}
}

// AddPreCommitHook registers h to run synchronously inside every put and
// delete on this key space. The returned func unregisters it.
func (ks *KeySpace) AddPreCommitHook(h domain.PreCommitHook) (remove func()) {
	entry := &hookEntry{hook: h}

	ks.mu.Lock()
	ks.hooks = append(ks.hooks, entry)
	ks.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ks.mu.Lock()
			defer ks.mu.Unlock()
			for i, e := range ks.hooks {
				if e == entry {
					ks.hooks = append(ks.hooks[:i:i], ks.hooks[i+1:]...)
					break
				}
			}
		})
	}
}

func (ks *KeySpace) preCommitHooks() []*hookEntry {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.hooks
}

// Put implements domain.KeySpace
func (ks *KeySpace) Put(ctx context.Context, key []byte, value interface{}) error {
	return ks.Batch(ctx, []domain.Op{{Type: domain.MutationPut, Key: key, Value: value}})
}

// Del implements domain.KeySpace
func (ks *KeySpace) Del(ctx context.Context, key []byte) error {
	return ks.Batch(ctx, []domain.Op{{Type: domain.MutationDel, Key: key}})
}

// Batch implements domain.KeySpace. All ops, and every write appended by the
// pre-commit hooks, are committed in a single pebble batch.
func (ks *KeySpace) Batch(ctx context.Context, ops []domain.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	release, err := ks.db.acquire()
	if err != nil {
		return err
	}
	defer release()

	b := &writeBatch{batch: ks.db.pdb.NewBatch()}
	defer b.batch.Close()

	hooks := ks.preCommitHooks()
	for _, op := range ops {
		switch op.Type {
		case domain.MutationPut:
			if err := b.Put(ks, op.Key, op.Value); err != nil {
				return err
			}
		case domain.MutationDel:
			if err := b.Del(ks, op.Key); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown mutation type %d", op.Type)
		}

		m := domain.Mutation{Type: op.Type, Key: op.Key, Value: op.Value}
		for _, h := range hooks {
			if err := h.hook.PreCommit(ctx, m, b); err != nil {
				return fmt.Errorf("pre-commit hook failed for %s %q: %w", op.Type, op.Key, err)
			}
		}
	}

	if err := b.batch.Commit(ks.db.writeOptions()); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Get implements domain.KeySpace. Missing keys yield domain.ErrNotFound.
func (ks *KeySpace) Get(ctx context.Context, key []byte) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	release, err := ks.db.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	raw, closer, err := ks.db.pdb.Get(ks.dataKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	defer closer.Close()

	// Make a copy since the returned slice is only valid until closer.Close()
	data := make([]byte, len(raw))
	copy(data, raw)
	return ks.decode(data)
}

// Iterate implements domain.KeySpace
func (ks *KeySpace) Iterate(ctx context.Context, r domain.Range) (domain.Iterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	release, err := ks.db.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	lower := ks.dataKey(r.Start)
	var upper []byte
	if r.End != nil {
		upper = ks.dataKey(keyenc.Successor(r.End))
	} else {
		upper = append(append([]byte{}, ks.prefix...), markData+1)
	}

	if bytes.Compare(lower, upper) >= 0 {
		return &iterator{ctx: ctx, ks: ks}, nil
	}

	it, err := ks.db.pdb.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	return &iterator{ctx: ctx, ks: ks, it: it, reverse: r.Reverse}, nil
}

// Count implements domain.KeySpace
func (ks *KeySpace) Count(ctx context.Context) (int, error) {
	it, err := ks.Iterate(ctx, domain.Range{})
	if err != nil {
		return 0, err
	}
	defer it.Close()

	n := 0
	for it.Next() {
		n++
	}
	return n, it.Err()
}

func (ks *KeySpace) dataKey(key []byte) []byte {
	out := make([]byte, 0, len(ks.data)+len(key))
	out = append(out, ks.data...)
	return append(out, key...)
}

func (ks *KeySpace) encode(value interface{}) ([]byte, error) {
	c, err := ks.ValueCodec()
	if err != nil {
		return nil, err
	}
	return c.Marshal(value)
}

func (ks *KeySpace) decode(data []byte) (interface{}, error) {
	c, err := ks.ValueCodec()
	if err != nil {
		return nil, err
	}
	return c.Unmarshal(data)
}
