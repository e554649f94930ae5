package indexing

import (
	"strconv"
	"strings"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

// accessor is a property path compiled into lookup steps, e.g. "tags.0.name"
// becomes key "tags", index 0, key "name".
type accessor struct {
	path  string
	steps []step
}

type step struct {
	key     string
	index   int
	isIndex bool
}

func compilePath(path string) accessor {
	parts := strings.Split(path, ".")
	steps := make([]step, len(parts))
	for i, p := range parts {
		steps[i] = step{key: p}
		if n, err := strconv.Atoi(p); err == nil && n >= 0 {
			steps[i].index = n
			steps[i].isIndex = true
		}
	}
	return accessor{path: path, steps: steps}
}

// lookup resolves the path against a record value. Missing properties
// resolve to nil.
func (a accessor) lookup(v interface{}) interface{} {
	cur := v
	for _, s := range a.steps {
		switch c := cur.(type) {
		case map[string]interface{}:
			cur = c[s.key]
		case domain.Document:
			cur = c[s.key]
		case []interface{}:
			if !s.isIndex || s.index >= len(c) {
				return nil
			}
			cur = c[s.index]
		default:
			return nil
		}
	}
	return cur
}
