// Package keyenc builds order-preserving composite keys.
//
// A key is the concatenation of its encoded fields:
//
//	[field1...][field2...][...][primary key...]
//
// Each field is
//
//	[type_tag:1B][value bytes...]
//
// Type tags (ascending): Min < nil < bool < number < time < string < bytes < list < map < Max
//
// Every field encoding is prefix-free, so byte order of the concatenation
// equals tuple order. Strings and byte slices escape 0x00 as 0x00 0xFF and
// end with 0x00 0x00. Lists and maps encode their elements one after another
// and end with 0x00, which sorts below every element tag.
//
// For descending fields ALL bytes of the field are inverted, including the
// tag. The Min and Max sentinels are single bytes (0x00, 0xFF) and are never
// inverted.
package keyenc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

// Type tags for field encoding.
const (
	TagMin    byte = 0x00
	TagNil    byte = 0x10
	TagBool   byte = 0x20
	TagNumber byte = 0x30
	TagTime   byte = 0x40
	TagString byte = 0x50
	TagBytes  byte = 0x60
	TagList   byte = 0x70
	TagMap    byte = 0x80
	TagMax    byte = 0xFF
)

const (
	escape     byte = 0x00
	escapedNul byte = 0xFF
	terminator byte = 0x00
)

// Direction specifies sort order of a field.
type Direction uint8

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "asc", "ASC", "":
		*d = Asc
	case "desc", "DESC":
		*d = Desc
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}

// Sentinel is a range boundary that sorts before (Min) or after (Max) every
// real value at its tuple position.
type Sentinel struct {
	tag byte
}

var (
	Min = Sentinel{tag: TagMin}
	Max = Sentinel{tag: TagMax}
)

func (s Sentinel) String() string {
	if s.tag == TagMax {
		return "<max>"
	}
	return "<min>"
}

// Field is a value to be encoded with its sort direction.
type Field struct {
	Value     interface{}
	Direction Direction
}

// Encode creates a composite key from fields.
func Encode(fields ...Field) ([]byte, error) {
	buf := make([]byte, 0, 64)
	for _, f := range fields {
		var err error
		buf, err = AppendField(buf, f.Value, f.Direction)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// AppendField appends the encoding of one field to dst.
func AppendField(dst []byte, value interface{}, dir Direction) ([]byte, error) {
	if s, ok := value.(Sentinel); ok {
		return append(dst, s.tag), nil
	}
	start := len(dst)
	dst, err := appendValue(dst, value)
	if err != nil {
		return nil, err
	}
	if dir == Desc {
		invertBytes(dst[start:])
	}
	return dst, nil
}

func appendValue(buf []byte, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return append(buf, TagNil), nil
	case bool:
		if v {
			return append(buf, TagBool, 0x01), nil
		}
		return append(buf, TagBool, 0x00), nil
	case string:
		buf = append(buf, TagString)
		return appendEscaped(buf, []byte(v)), nil
	case []byte:
		buf = append(buf, TagBytes)
		return appendEscaped(buf, v), nil
	case time.Time:
		return appendTime(buf, v), nil
	case *time.Time:
		if v == nil {
			return append(buf, TagNil), nil
		}
		return appendTime(buf, *v), nil
	case []interface{}:
		buf = append(buf, TagList)
		for _, e := range v {
			var err error
			if buf, err = appendValue(buf, e); err != nil {
				return nil, err
			}
		}
		return append(buf, terminator), nil
	case map[string]interface{}:
		return appendMap(buf, v)
	case domain.Document:
		return appendMap(buf, map[string]interface{}(v))
	case Sentinel:
		return nil, &domain.UnsupportedTypeError{Value: value, Reason: "sentinel nested in a composite"}
	}

	if f, ok := toFloat64(value); ok {
		if math.IsNaN(f) {
			return nil, &domain.UnsupportedTypeError{Value: value, Reason: "NaN has no ordering"}
		}
		return appendNumber(buf, f), nil
	}
	return appendReflect(buf, value)
}

// appendReflect covers typed slices and string-keyed maps.
func appendReflect(buf []byte, value interface{}) ([]byte, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		buf = append(buf, TagList)
		for i := 0; i < rv.Len(); i++ {
			var err error
			if buf, err = appendValue(buf, rv.Index(i).Interface()); err != nil {
				return nil, err
			}
		}
		return append(buf, terminator), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &domain.UnsupportedTypeError{Value: value, Reason: "map keys must be strings"}
		}
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return appendMap(buf, m)
	case reflect.Ptr:
		if rv.IsNil() {
			return append(buf, TagNil), nil
		}
		return appendValue(buf, rv.Elem().Interface())
	}
	return nil, &domain.UnsupportedTypeError{Value: value}
}

func appendMap(buf []byte, m map[string]interface{}) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf = append(buf, TagMap)
	for _, k := range keys {
		buf = append(buf, TagString)
		buf = appendEscaped(buf, []byte(k))
		var err error
		if buf, err = appendValue(buf, m[k]); err != nil {
			return nil, err
		}
	}
	return append(buf, terminator), nil
}

// appendEscaped writes b with 0x00 escaped as 0x00 0xFF and a 0x00 0x00
// terminator, so "ab" < "b" and "a" < "a\x00".
func appendEscaped(buf, b []byte) []byte {
	for _, c := range b {
		if c == escape {
			buf = append(buf, escape, escapedNul)
		} else {
			buf = append(buf, c)
		}
	}
	return append(buf, terminator, terminator)
}

// appendNumber encodes a float64 in a sortable format.
// Positive numbers: flip sign bit. Negative numbers: flip all bits.
// This ensures: -Inf < negative < 0 < positive < +Inf.
func appendNumber(buf []byte, v float64) []byte {
	if v == 0 {
		// fold -0 into +0
		v = 0
	}
	bits := math.Float64bits(v)
	if v >= 0 {
		bits ^= 1 << 63
	} else {
		bits = ^bits
	}
	buf = append(buf, TagNumber)
	return binary.BigEndian.AppendUint64(buf, bits)
}

func appendTime(buf []byte, t time.Time) []byte {
	buf = append(buf, TagTime)
	buf = binary.BigEndian.AppendUint64(buf, uint64(t.Unix())^(1<<63))
	return binary.BigEndian.AppendUint32(buf, uint32(t.Nanosecond()))
}

func toFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// invertBytes inverts all bytes in place (for descending order).
func invertBytes(buf []byte) {
	for i := range buf {
		buf[i] = ^buf[i]
	}
}

// Compare compares two keys lexicographically.
func Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// Successor returns the smallest key strictly greater than key, which turns
// an inclusive upper bound into an exclusive one.
func Successor(key []byte) []byte {
	out := make([]byte, len(key)+1)
	copy(out, key)
	return out
}
