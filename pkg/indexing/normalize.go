package indexing

import (
	"fmt"
	"sync"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

// Normalizer round-trips values through the store's value codec, so that a
// value taken from an in-memory record compares equal to the same value read
// back from the store (a JSON codec turns a time.Time into a string, for
// instance).
type Normalizer struct {
	ks domain.KeySpace

	mu    sync.Mutex
	codec domain.Codec
}

// NewNormalizer discovers its codec through ks and its parents
func NewNormalizer(ks domain.KeySpace) *Normalizer {
	return &Normalizer{ks: ks}
}

// Codec returns the resolved codec; a successful lookup is cached.
func (n *Normalizer) Codec() (domain.Codec, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codec != nil {
		return n.codec, nil
	}
	c, err := n.ks.ValueCodec()
	if err != nil {
		return nil, err
	}
	n.codec = c
	return c, nil
}

// Normalize returns v as it would look after a store round trip
func (n *Normalizer) Normalize(v interface{}) (interface{}, error) {
	c, err := n.Codec()
	if err != nil {
		return nil, err
	}
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %T: %w", v, err)
	}
	out, err := c.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %T: %w", v, err)
	}
	return out, nil
}
