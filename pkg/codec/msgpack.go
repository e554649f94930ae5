package codec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack stores values as MessagePack. Timestamps survive the round trip.
type MsgPack struct{}

func (MsgPack) Name() string { return "msgpack" }

func (MsgPack) Marshal(v interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	return data, nil
}

func (MsgPack) Unmarshal(data []byte) (interface{}, error) {
	var v interface{}
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return v, nil
}
