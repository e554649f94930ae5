package api

import (
	"encoding/json"
	"net/http"
)

// IndexRequest declares an index, e.g. {"fields": ["date desc", "count"]}
type IndexRequest struct {
	Fields []string `json:"fields"`
}

// IndexResponse describes a declared index
type IndexResponse struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// HandleCreateIndex declares an index over the record key space
func (h *Handler) HandleCreateIndex(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	def, err := h.store.EnsureIndex(req.Fields...)
	if err != nil {
		h.logger.Warn("index declaration failed", "fields", req.Fields, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newIndexResponse(def.Name(), def.Fields()))
}
