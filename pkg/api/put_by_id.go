package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
)

// HandlePutById handles PUT requests that store a record under the given ID,
// replacing any previous value
func (h *Handler) HandlePutById(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	if err := h.store.Put(r.Context(), id, doc); err != nil {
		h.logger.Error("put failed", "id", id, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(domain.Record{Key: id, Value: doc})
}

// HandleInsert handles POST requests that store a record under a generated ID
func (h *Handler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	id, err := h.store.Insert(r.Context(), doc)
	if err != nil {
		h.logger.Error("insert failed", "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(domain.Record{Key: id, Value: doc})
}

func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request) (domain.Document, bool) {
	var body interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("invalid record body", "error", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	doc, ok := domain.AsMap(body)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Record must be a JSON object")
		return nil, false
	}
	return domain.Document(doc), true
}
