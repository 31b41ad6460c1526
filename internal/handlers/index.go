package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"recall-ai/internal/contextutil"
	"recall-ai/internal/trigger"
)

// IndexHandler accepts document create/update notifications and triggers
// background embedding. The response never waits for embedding to finish.
type IndexHandler struct {
	trigger *trigger.Service
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(trigger *trigger.Service) *IndexHandler {
	return &IndexHandler{trigger: trigger}
}

// IndexRequest is the HTTP request payload for embedding triggers.
type IndexRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ServeHTTP handles POST /api/index.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	h.trigger.TriggerEmbedding(req.ID, req.Content)
	logger.DebugContext(ctx, "embedding triggered", "note_id", req.ID)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// CatchUpHandler starts a background catch-up scan over a project.
type CatchUpHandler struct {
	trigger *trigger.Service
}

// NewCatchUpHandler creates a new CatchUpHandler.
func NewCatchUpHandler(trigger *trigger.Service) *CatchUpHandler {
	return &CatchUpHandler{trigger: trigger}
}

// CatchUpRequest is the HTTP request payload for catch-up scans.
type CatchUpRequest struct {
	Project string `json:"project,omitempty"`
}

// ServeHTTP handles POST /api/catchup.
func (h *CatchUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CatchUpRequest
	// An empty body means all projects; malformed bodies are still rejected.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.trigger.CatchUp(req.Project)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
