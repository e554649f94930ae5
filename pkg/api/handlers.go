package api

import (
	"context"
	"iter"
	"log/slog"

	"github.com/adfharrison1/go-indexdb/pkg/indexing"
	"github.com/adfharrison1/go-indexdb/pkg/query"
)

// Store is the part of indexdb.DB the handlers use
type Store interface {
	Put(ctx context.Context, pk string, value interface{}) error
	Insert(ctx context.Context, value interface{}) (string, error)
	Get(ctx context.Context, pk string) (interface{}, error)
	Del(ctx context.Context, pk string) error
	EnsureIndex(specs ...string) (indexing.Definition, error)
	Indexes() []indexing.Definition
	FindBy(ctx context.Context, specs []string, q query.Query) ([]query.Item, error)
	StreamBy(ctx context.Context, specs []string, q query.Query) (iter.Seq2[query.Item, error], error)
}

// Handler provides HTTP handlers for the database API
type Handler struct {
	store  Store
	logger *slog.Logger
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(store Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  store,
		logger: logger.With("component", "api"),
	}
}
