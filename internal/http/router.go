package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"recall-ai/internal/handlers"
	"recall-ai/internal/search"
	"recall-ai/internal/storage"
	"recall-ai/internal/trigger"
	"recall-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	SearchEngine search.Engine
	Trigger      *trigger.Service
	VectorStore  vectorstore.VectorStore
	IndexCounter handlers.IndexCounter
	Queue        storage.QueueStore
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	searchHandler := handlers.NewSearchHandler(deps.SearchEngine)
	indexHandler := handlers.NewIndexHandler(deps.Trigger)
	catchUpHandler := handlers.NewCatchUpHandler(deps.Trigger)
	statsHandler := handlers.NewStatsHandler(deps.IndexCounter, deps.Queue)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodPost, "/index", indexHandler)
		r.Method(http.MethodPost, "/catchup", catchUpHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
	})

	r.Method(http.MethodGet, "/health", healthHandler)

	return r
}
