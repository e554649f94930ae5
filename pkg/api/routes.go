package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Record operations
	router.HandleFunc("/records", h.HandleInsert).Methods("POST")
	router.HandleFunc("/records/{id}", h.HandleGetById).Methods("GET")
	router.HandleFunc("/records/{id}", h.HandlePutById).Methods("PUT")
	router.HandleFunc("/records/{id}", h.HandleDeleteById).Methods("DELETE")

	// Index operations
	router.HandleFunc("/indexes", h.HandleCreateIndex).Methods("POST")
	router.HandleFunc("/indexes", h.HandleGetIndexes).Methods("GET")

	// Range queries
	router.HandleFunc("/query", h.HandleQuery).Methods("POST")
	router.HandleFunc("/query/stream", h.HandleQueryStream).Methods("POST")

	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
}
