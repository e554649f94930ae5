// Package query runs ordered range scans over an index, resolves every hit
// back to its record and lazily repairs stale index entries on the way.
package query

import (
	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/adfharrison1/go-indexdb/pkg/keyenc"
)

type openBound struct{}

func (openBound) String() string { return "<open>" }

// Open leaves a bound unbounded at its tuple position
var Open interface{} = openBound{}

// Projection selects what each result carries
type Projection int

const (
	KeysAndValues Projection = iota
	KeysOnly
	ValuesOnly
)

func (p Projection) String() string {
	switch p {
	case KeysOnly:
		return "keys"
	case ValuesOnly:
		return "values"
	}
	return "keys+values"
}

// ProjectionFor maps the keys/values flags of the public API to a projection.
// Asking for neither is treated like asking for both.
func ProjectionFor(keys, values bool) Projection {
	switch {
	case keys && !values:
		return KeysOnly
	case values && !keys:
		return ValuesOnly
	}
	return KeysAndValues
}

// Item is one query result. KeysOnly leaves Value nil, ValuesOnly leaves Key
// empty.
type Item struct {
	Key   string
	Value interface{}
}

// Render returns the shape a caller sees for the projection: the key, the
// value or a domain.Record.
func (p Projection) Render(it Item) interface{} {
	switch p {
	case KeysOnly:
		return it.Key
	case ValuesOnly:
		return it.Value
	}
	return domain.Record{Key: it.Key, Value: it.Value}
}

// Query describes a range scan over one index. Start and End hold one
// element per indexed property; nil means fully open.
type Query struct {
	Start      []interface{}
	End        []interface{}
	Projection Projection
	Stages     []Stage

	// Reverse returns the same range from End back to Start
	Reverse bool

	// OnSkip, when set, is told about every hit left out of the results
	OnSkip func(Skip)
}

// SkipReason explains why a hit was left out
type SkipReason string

const (
	// SkipStale: the record is gone or no longer matches the entry; the
	// entry was deleted
	SkipStale SkipReason = "stale"
	// SkipUnavailable: the record could not be read; the entry was kept
	SkipUnavailable SkipReason = "unavailable"
)

type Skip struct {
	Index      string
	PrimaryKey string
	IndexKey   []byte
	Reason     SkipReason
	Err        error
}

func bound(values []interface{}, arity int, open keyenc.Sentinel) []interface{} {
	if values == nil {
		values = make([]interface{}, arity)
		for i := range values {
			values[i] = Open
		}
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		if _, ok := v.(openBound); ok {
			out[i] = open
		} else {
			out[i] = v
		}
	}
	return out
}
