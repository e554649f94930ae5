package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  bool
	}{
		{name: "json", wantName: "json"},
		{name: "msgpack", wantName: "msgpack"},
		{name: "MsgPack+LZ4", wantName: "msgpack+lz4"},
		{name: " json+lz4 ", wantName: "json+lz4"},
		{name: "gob", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ByName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name())
		})
	}
}

func TestJSON_IsLossyForTimestamps(t *testing.T) {
	ts := time.Date(2010, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := JSON{}.Marshal(map[string]interface{}{"date": ts, "count": 5})
	require.NoError(t, err)

	v, err := JSON{}.Unmarshal(data)
	require.NoError(t, err)

	m := v.(map[string]interface{})
	assert.Equal(t, "2010-05-01T12:00:00Z", m["date"])
	assert.Equal(t, float64(5), m["count"])
}

func TestMsgPack_PreservesTimestamps(t *testing.T) {
	ts := time.Date(2010, 5, 1, 12, 0, 0, 42, time.UTC)
	data, err := MsgPack{}.Marshal(map[string]interface{}{"date": ts, "title": "Hello"})
	require.NoError(t, err)

	v, err := MsgPack{}.Unmarshal(data)
	require.NoError(t, err)

	m := v.(map[string]interface{})
	got, ok := m["date"].(time.Time)
	require.True(t, ok, "expected time.Time, got %T", m["date"])
	assert.True(t, ts.Equal(got))
	assert.Equal(t, "Hello", m["title"])
}

func TestLZ4_RoundTrip(t *testing.T) {
	c := NewLZ4(MsgPack{})

	t.Run("compressible payload shrinks", func(t *testing.T) {
		doc := map[string]interface{}{"content": strings.Repeat("World ", 500)}
		data, err := c.Marshal(doc)
		require.NoError(t, err)
		assert.Equal(t, blockCompressed, data[0])

		plain, err := MsgPack{}.Marshal(doc)
		require.NoError(t, err)
		assert.Less(t, len(data), len(plain))

		v, err := c.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, doc["content"], v.(map[string]interface{})["content"])
	})

	t.Run("small payload stored raw", func(t *testing.T) {
		data, err := c.Marshal("hi")
		require.NoError(t, err)
		assert.Equal(t, blockRaw, data[0])

		v, err := c.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, "hi", v)
	})

	t.Run("corrupt input", func(t *testing.T) {
		_, err := c.Unmarshal([]byte{0x07})
		assert.Error(t, err)
		_, err = c.Unmarshal([]byte{0x09, 0x01, 0x00})
		assert.Error(t, err)
	})
}
