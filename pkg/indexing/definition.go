package indexing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/adfharrison1/go-indexdb/pkg/keyenc"
)

// Direction is the sort order of one indexed property
type Direction = keyenc.Direction

const (
	Asc  = keyenc.Asc
	Desc = keyenc.Desc
)

// Field is one (property path, direction) pair of an index definition
type Field struct {
	Path      string    `json:"path"`
	Direction Direction `json:"direction"`
}

// Definition is an ordered, non-empty list of indexed properties. Two
// definitions are equal iff their field sequences are equal.
type Definition struct {
	fields []Field
	name   string
}

// NewDefinition validates fields and derives the index name
func NewDefinition(fields ...Field) (Definition, error) {
	if len(fields) == 0 {
		return Definition{}, fmt.Errorf("%w: at least one property is required", domain.ErrInvalidIndexSpec)
	}
	for i, f := range fields {
		if f.Path == "" {
			return Definition{}, fmt.Errorf("%w: property %d has an empty path", domain.ErrInvalidIndexSpec, i)
		}
		if f.Direction != Asc && f.Direction != Desc {
			return Definition{}, fmt.Errorf("%w: property %q has unknown direction %d", domain.ErrInvalidIndexSpec, f.Path, f.Direction)
		}
	}

	own := make([]Field, len(fields))
	copy(own, fields)
	return Definition{fields: own, name: indexName(own)}, nil
}

// ParseFields builds a definition from specs such as "title", "date desc"
// or "count:asc". The direction suffix is case-insensitive; without one the
// property is ascending.
func ParseFields(specs ...string) (Definition, error) {
	fields := make([]Field, 0, len(specs))
	for _, spec := range specs {
		f, err := ParseField(spec)
		if err != nil {
			return Definition{}, err
		}
		fields = append(fields, f)
	}
	return NewDefinition(fields...)
}

// ParseField parses a single "path [asc|desc]" spec
func ParseField(spec string) (Field, error) {
	spec = strings.TrimSpace(spec)
	if i := strings.LastIndexAny(spec, " \t:"); i >= 0 {
		if dir, ok := ParseDirection(spec[i+1:]); ok {
			return Field{Path: strings.TrimSpace(spec[:i]), Direction: dir}, nil
		}
	}
	if spec == "" {
		return Field{}, fmt.Errorf("%w: empty property", domain.ErrInvalidIndexSpec)
	}
	return Field{Path: spec, Direction: Asc}, nil
}

// ParseDirection accepts "asc" and "desc" in any case
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc, true
	case "desc":
		return Desc, true
	}
	return Asc, false
}

// Name is the canonical index name. Identical definitions always share a
// name; paths are quoted so distinct definitions never do.
func (d Definition) Name() string { return d.name }

func (d Definition) String() string { return d.name }

// Fields returns a copy of the indexed properties in order
func (d Definition) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Arity is the number of indexed properties
func (d Definition) Arity() int { return len(d.fields) }

func (d Definition) Equal(other Definition) bool {
	return d.name == other.name
}

func indexName(fields []Field) string {
	var b strings.Builder
	b.WriteString("idx(")
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(f.Path))
		if f.Direction == Desc {
			b.WriteByte('-')
		} else {
			b.WriteByte('+')
		}
	}
	b.WriteByte(')')
	return b.String()
}
