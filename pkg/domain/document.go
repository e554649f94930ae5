package domain

// Document represents a record value held in the primary store
type Document map[string]interface{}

// Record pairs a primary key with its value as read back from the store
type Record struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// AsMap returns v as a plain map when it is a document-shaped value
func AsMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case Document:
		return map[string]interface{}(m), true
	case map[string]interface{}:
		return m, true
	}
	return nil, false
}
