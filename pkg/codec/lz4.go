package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/pierrec/lz4/v4"
)

const (
	blockRaw        byte = 0
	blockCompressed byte = 1
)

// LZ4 compresses the output of another codec.
//
// Layout: [flag:1B][raw_len:uvarint][payload]. Payloads that lz4 cannot
// shrink are stored raw.
type LZ4 struct {
	inner domain.Codec
}

// NewLZ4 wraps inner with lz4 block compression
func NewLZ4(inner domain.Codec) *LZ4 {
	return &LZ4{inner: inner}
}

func (c *LZ4) Name() string { return c.inner.Name() + "+lz4" }

func (c *LZ4) Marshal(v interface{}) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 1+binary.MaxVarintLen64+lz4.CompressBlockBound(len(raw)))
	hdr := 1 + binary.PutUvarint(out[1:], uint64(len(raw)))

	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(raw, out[hdr:], hashTable[:])
	if err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}
	if n == 0 || n >= len(raw) {
		out[0] = blockRaw
		return append(out[:hdr], raw...), nil
	}
	out[0] = blockCompressed
	return out[:hdr+n], nil
}

func (c *LZ4) Unmarshal(data []byte) (interface{}, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("failed to decompress data: short block (%d bytes)", len(data))
	}
	size, n := binary.Uvarint(data[1:])
	if n <= 0 {
		return nil, fmt.Errorf("failed to decompress data: bad length header")
	}
	payload := data[1+n:]

	switch data[0] {
	case blockRaw:
		return c.inner.Unmarshal(payload)
	case blockCompressed:
		raw := make([]byte, size)
		m, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress data: %w", err)
		}
		return c.inner.Unmarshal(raw[:m])
	}
	return nil, fmt.Errorf("failed to decompress data: unknown block flag %#x", data[0])
}
