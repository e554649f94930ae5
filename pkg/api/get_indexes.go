package api

import (
	"encoding/json"
	"net/http"

	"github.com/adfharrison1/go-indexdb/pkg/indexing"
)

// HandleGetIndexes handles GET requests listing the declared indexes
func (h *Handler) HandleGetIndexes(w http.ResponseWriter, r *http.Request) {
	defs := h.store.Indexes()

	indexes := make([]IndexResponse, 0, len(defs))
	for _, def := range defs {
		indexes = append(indexes, newIndexResponse(def.Name(), def.Fields()))
	}

	response := map[string]interface{}{
		"indexes":     indexes,
		"index_count": len(indexes),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func newIndexResponse(name string, fields []indexing.Field) IndexResponse {
	specs := make([]string, len(fields))
	for i, f := range fields {
		specs[i] = f.Path + " " + f.Direction.String()
	}
	return IndexResponse{Name: name, Fields: specs}
}
