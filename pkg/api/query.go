package api

import (
	"encoding/json"
	"net/http"

	"github.com/adfharrison1/go-indexdb/pkg/query"
)

// QueryRequest is the body of the query endpoints. Start and End carry one
// element per indexed property; a missing bound or a null element is open.
type QueryRequest struct {
	Fields  []string      `json:"fields"`
	Start   []interface{} `json:"start"`
	End     []interface{} `json:"end"`
	Keys    bool          `json:"keys"`
	Values  bool          `json:"values"`
	Limit   int           `json:"limit"`
	Reverse bool          `json:"reverse"`
}

// Query converts the request into an engine query
func (req QueryRequest) Query() query.Query {
	q := query.Query{
		Start:      openNulls(req.Start),
		End:        openNulls(req.End),
		Projection: query.ProjectionFor(req.Keys, req.Values),
		Reverse:    req.Reverse,
	}
	if req.Limit > 0 {
		q.Stages = append(q.Stages, query.Limit(req.Limit))
	}
	return q
}

func openNulls(values []interface{}) []interface{} {
	if values == nil {
		return nil
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = query.Open
		} else {
			out[i] = v
		}
	}
	return out
}

func (h *Handler) decodeQuery(w http.ResponseWriter, r *http.Request) (QueryRequest, bool) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return req, false
	}
	if len(req.Fields) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "fields is required")
		return req, false
	}
	return req, true
}

// HandleQuery runs a range query and returns the whole result as a JSON array
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}

	q := req.Query()
	items, err := h.store.FindBy(r.Context(), req.Fields, q)
	if err != nil {
		h.logger.Warn("query failed", "fields", req.Fields, "error", err)
		writeError(w, err)
		return
	}

	results := make([]interface{}, len(items))
	for i, item := range items {
		results[i] = q.Projection.Render(item)
	}

	h.logger.Debug("query served", "fields", req.Fields, "results", len(results))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
