// Package codec provides value codecs for the primary store.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

// ByName returns a codec for the names accepted in configuration files:
// "json", "msgpack" and "msgpack+lz4" (or "json+lz4").
func ByName(name string) (domain.Codec, error) {
	base, compressed := strings.CutSuffix(strings.ToLower(strings.TrimSpace(name)), "+lz4")

	var c domain.Codec
	switch base {
	case "json":
		c = JSON{}
	case "msgpack":
		c = MsgPack{}
	default:
		return nil, fmt.Errorf("unknown value codec %q", name)
	}
	if compressed {
		c = NewLZ4(c)
	}
	return c, nil
}

// JSON stores values as JSON. It is lossy: timestamps come back as RFC3339
// strings and every number as float64.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

func (JSON) Unmarshal(data []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return v, nil
}
