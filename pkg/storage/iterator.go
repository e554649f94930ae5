package storage

import (
	"context"

	"github.com/cockroachdb/pebble"
)

// iterator adapts a bounded pebble iterator to domain.Iterator. A nil it is
// an empty range.
type iterator struct {
	ctx     context.Context
	ks      *KeySpace
	it      *pebble.Iterator
	reverse bool
	started bool
	err     error
}

func (i *iterator) Next() bool {
	if i.err != nil || i.it == nil {
		return false
	}
	if err := i.ctx.Err(); err != nil {
		i.err = err
		return false
	}
	if !i.started {
		i.started = true
		if i.reverse {
			return i.it.Last()
		}
		return i.it.First()
	}
	if i.reverse {
		return i.it.Prev()
	}
	return i.it.Next()
}

// Key returns a copy of the current key with the namespace prefix removed
func (i *iterator) Key() []byte {
	raw := i.it.Key()
	key := make([]byte, len(raw)-len(i.ks.data))
	copy(key, raw[len(i.ks.data):])
	return key
}

func (i *iterator) Value() (interface{}, error) {
	return i.ks.decode(i.RawValue())
}

func (i *iterator) RawValue() []byte {
	raw := i.it.Value()
	data := make([]byte, len(raw))
	copy(data, raw)
	return data
}

func (i *iterator) Err() error {
	if i.err != nil || i.it == nil {
		return i.err
	}
	return i.it.Error()
}

func (i *iterator) Close() error {
	if i.it == nil {
		return nil
	}
	return i.it.Close()
}
