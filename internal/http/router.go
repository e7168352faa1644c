package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"openio-assistant/internal/handlers"
	"openio-assistant/internal/index"
	"openio-assistant/internal/rag"
	"openio-assistant/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine       rag.Engine
	IndexManager *index.Manager
	Embedder     index.Embedder
	BuildStore   storage.BuildStore
	ChatProbe    handlers.Probe
	StorageProbe handlers.Probe
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(CORS)
	r.Use(LoggerMiddleware)

	queryHandler := handlers.NewQueryHandler(deps.Engine)
	indexHandler := handlers.NewIndexHandler(deps.IndexManager)
	statusHandler := handlers.NewStatusHandler(deps.IndexManager)
	uploadHandler := handlers.NewUploadHandler(deps.IndexManager)
	buildsHandler := handlers.NewBuildsHandler(deps.BuildStore)
	healthHandler := handlers.NewHealthHandler(deps.IndexManager, deps.Embedder, deps.ChatProbe, deps.StorageProbe)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/query", queryHandler)
		r.Method(http.MethodPost, "/index", indexHandler)
		r.Method(http.MethodGet, "/index/status", statusHandler)
		r.Method(http.MethodGet, "/index/builds", buildsHandler)
		r.Method(http.MethodPost, "/upload", uploadHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
