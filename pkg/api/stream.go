package api

import (
	"encoding/json"
	"net/http"
)

// StreamErrorTrailer carries the error that cut a streamed result short
const StreamErrorTrailer = "X-Stream-Error"

// HandleQueryStream runs a range query and streams the results as a JSON
// array, one element per chunk. Errors found before the first byte is sent
// get a regular error response; later ones end the array and are reported in
// the X-Stream-Error trailer.
func (h *Handler) HandleQueryStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}

	q := req.Query()
	seq, err := h.store.StreamBy(r.Context(), req.Fields, q)
	if err != nil {
		h.logger.Warn("query failed", "fields", req.Fields, "error", err)
		writeError(w, err)
		return
	}

	// Set headers for streaming
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Trailer", StreamErrorTrailer)

	// Start JSON array
	w.Write([]byte("[\n"))

	first := true
	count := 0

	// Stream results one by one
	for item, err := range seq {
		if err != nil {
			h.logger.Error("query stream aborted", "fields", req.Fields, "sent", count, "error", err)
			w.Header().Set(StreamErrorTrailer, err.Error())
			break
		}

		data, err := json.Marshal(q.Projection.Render(item))
		if err != nil {
			h.logger.Error("failed to marshal result", "key", item.Key, "error", err)
			continue
		}

		if !first {
			w.Write([]byte(",\n"))
		}
		first = false

		if _, err := w.Write(data); err != nil {
			h.logger.Warn("failed to write to response", "error", err)
			return
		}

		// Flush the response to ensure streaming
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		count++
	}

	// End JSON array
	w.Write([]byte("\n]"))

	h.logger.Debug("query streamed", "fields", req.Fields, "results", count)
}
