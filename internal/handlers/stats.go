package handlers

import (
	"context"
	"net/http"

	"recall-ai/internal/contextutil"
	"recall-ai/internal/storage"
)

// IndexCounter exposes row counts from the embedded store.
type IndexCounter interface {
	Counts(ctx context.Context) (entities, chunks int, err error)
}

// StatsHandler reports index coverage: how many entities and chunks are
// embedded, and how deep the offline retry queue is.
type StatsHandler struct {
	counter IndexCounter
	queue   storage.QueueStore
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(counter IndexCounter, queue storage.QueueStore) *StatsHandler {
	return &StatsHandler{counter: counter, queue: queue}
}

// StatsResponse is the HTTP response payload for index statistics.
type StatsResponse struct {
	Entities    int `json:"entities"`
	Chunks      int `json:"chunks"`
	QueueLength int `json:"queue_length"`
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	entities, chunks, err := h.counter.Counts(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count embeddings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read index stats")
		return
	}

	queueLen, err := h.queue.Len(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count queue", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read index stats")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Entities:    entities,
		Chunks:      chunks,
		QueueLength: queueLen,
	})
}
