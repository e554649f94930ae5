package domain

import "context"

// Codec serializes record values for a key space.
type Codec interface {
	Name() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte) (interface{}, error)
}

// MutationType identifies the kind of write flowing through the commit pipeline
type MutationType uint8

const (
	MutationPut MutationType = iota + 1
	MutationDel
)

func (t MutationType) String() string {
	switch t {
	case MutationPut:
		return "put"
	case MutationDel:
		return "del"
	}
	return "unknown"
}

// Mutation is a single pending write observed by pre-commit hooks
type Mutation struct {
	Type  MutationType
	Key   []byte
	Value interface{}
}

// Batch lets a hook append writes to the commit that is being assembled.
// Everything appended commits atomically with the triggering mutation.
type Batch interface {
	Put(ks KeySpace, key []byte, value interface{}) error
	// PutRaw stores value as is, without the key space codec
	PutRaw(ks KeySpace, key, value []byte) error
	Del(ks KeySpace, key []byte) error
}

// PreCommitHook observes writes to a key space before they commit
type PreCommitHook interface {
	PreCommit(ctx context.Context, m Mutation, b Batch) error
}

// PreCommitFunc adapts a function to PreCommitHook
type PreCommitFunc func(ctx context.Context, m Mutation, b Batch) error

// PreCommit implements PreCommitHook
func (f PreCommitFunc) PreCommit(ctx context.Context, m Mutation, b Batch) error {
	return f(ctx, m, b)
}

// Range bounds an ordered scan. Start and End are both inclusive; a nil
// bound leaves that side open. Reverse walks the same keys from End down to
// Start.
type Range struct {
	Start   []byte
	End     []byte
	Reverse bool
}

// Iterator walks a key space in byte order.
type Iterator interface {
	Next() bool
	Key() []byte
	// Value decodes the current value with the key space codec
	Value() (interface{}, error)
	// RawValue returns a copy of the stored bytes
	RawValue() []byte
	Err() error
	Close() error
}

// Op is one write submitted through KeySpace.Batch
type Op struct {
	Type  MutationType
	Key   []byte
	Value interface{}
}

// KeySpace is the ordered key-value store the indexing core is built on:
// keyed put/get/del, ordered range iteration, nested namespaces, a value
// codec discoverable through the parent chain and a pre-commit hook
// pipeline.
type KeySpace interface {
	Name() string
	Parent() KeySpace

	Put(ctx context.Context, key []byte, value interface{}) error
	Get(ctx context.Context, key []byte) (interface{}, error)
	Del(ctx context.Context, key []byte) error
	Batch(ctx context.Context, ops []Op) error

	Iterate(ctx context.Context, r Range) (Iterator, error)
	Count(ctx context.Context) (int, error)

	// Sub returns the child namespace with the given name, creating its
	// handle on first use.
	Sub(name string) KeySpace

	// ValueCodec returns the nearest codec configured on this key space or
	// one of its ancestors.
	ValueCodec() (Codec, error)

	AddPreCommitHook(h PreCommitHook) (remove func())
}
