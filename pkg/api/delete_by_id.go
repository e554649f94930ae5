package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDeleteById handles DELETE requests to remove a specific record by ID.
// Deleting a missing record succeeds.
func (h *Handler) HandleDeleteById(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Del(r.Context(), id); err != nil {
		h.logger.Error("delete failed", "id", id, "error", err)
		writeError(w, err)
		return
	}

	h.logger.Debug("record deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
