package storage

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

// writeBatch is the domain.Batch handed to pre-commit hooks. Writes appended
// through it do not trigger further hooks.
type writeBatch struct {
	batch *pebble.Batch
}

func (b *writeBatch) Put(target domain.KeySpace, key []byte, value interface{}) error {
	ks, err := ownKeySpace(target)
	if err != nil {
		return err
	}
	data, err := ks.encode(value)
	if err != nil {
		return err
	}
	return b.batch.Set(ks.dataKey(key), data, nil)
}

func (b *writeBatch) PutRaw(target domain.KeySpace, key, value []byte) error {
	ks, err := ownKeySpace(target)
	if err != nil {
		return err
	}
	return b.batch.Set(ks.dataKey(key), value, nil)
}

func (b *writeBatch) Del(target domain.KeySpace, key []byte) error {
	ks, err := ownKeySpace(target)
	if err != nil {
		return err
	}
	return b.batch.Delete(ks.dataKey(key), nil)
}

func ownKeySpace(target domain.KeySpace) (*KeySpace, error) {
	ks, ok := target.(*KeySpace)
	if !ok {
		return nil, fmt.Errorf("batch target %T does not belong to this store", target)
	}
	return ks, nil
}
