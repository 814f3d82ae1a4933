package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// handleShortlist streams the agentic pipeline's event sequence as
// Server-Sent Events. Each pipeline event becomes one SSE message
// whose event name is the pipeline event type and whose data is the
// event's JSON encoding. The stream ends after the terminal done or
// error event.
func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	var req shortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, sifterr.InvalidQuery("request body must be valid JSON"))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, sifterr.InvalidQuery("query text is required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, sifterr.New(sifterr.ErrCodeInternal, "streaming unsupported by connection", nil))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range s.pipeline.Run(r.Context(), req.Query) {
		data, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("sse_marshal_failed", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
			// Client went away; the request context cancellation will
			// stop the pipeline.
			return
		}
		flusher.Flush()
	}
}
