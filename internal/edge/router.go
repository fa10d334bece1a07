// Package edge implements the Request Edge: the chi-routed HTTP surface
// over the Catalog Store, Ingestion Engine, Key Pool, Key Validator,
// LLM Orchestrator, and Workflow Engine, per spec.md §6.1's stable
// contract.
package edge

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/ingestion"
	"github.com/archivecast/podcaster/internal/keypool"
	"github.com/archivecast/podcaster/internal/keyvalidator"
	"github.com/archivecast/podcaster/internal/llm"
	"github.com/archivecast/podcaster/internal/sources"
	"github.com/archivecast/podcaster/internal/workflow"
)

// bodyLimitBytes bounds request bodies accepted by any handler.
const bodyLimitBytes = 10 << 20

// Deps are the components the Request Edge wires handlers against; the
// router itself holds no state beyond these references.
type Deps struct {
	Store        *catalog.Store
	Registry     *sources.Registry
	Ingestion    *ingestion.Engine
	Pool         *keypool.Pool
	Validator    *keyvalidator.Validator
	Orchestrator *llm.Orchestrator
	Workflow     *workflow.Engine

	JWTSecret      string // empty disables the bearer-token gate
	NodeEnv        string // "production" suppresses error detail
	OpenRouterEnv  string // OPENROUTER_API_KEY, the provider-call env fallback
	OpenRouterTest string // OPENROUTER_TEST_KEY; carried here, read by no handler
	Logger         *slog.Logger
	StartedAt      time.Time
}

// NewRouter assembles the full route tree and middleware stack.
func NewRouter(deps *Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestSize(bodyLimitBytes))
	r.Use(h.logEventMiddleware)

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/search", h.searchSpeeches)
		r.Get("/verify-sources", h.verifySources)
		r.With(h.requireAdmin).Post("/refresh-archive", h.refreshArchive)
		r.Get("/models", h.listModels)
		r.With(h.requireAdmin).Post("/refresh-models", h.refreshModels)

		r.Post("/workflow", h.createWorkflow)
		r.Get("/workflow/{id}", h.getWorkflow)
		r.Post("/upload-script", h.uploadScript)
		r.Post("/generate-script", h.generateScript)
		r.Post("/generate-audio", h.generateAudio)
		r.Post("/finalize", h.finalize)

		r.With(httprate.LimitByIP(20, time.Minute)).Post("/validate-openrouter-key", h.validateOpenRouterKey)
		r.With(httprate.LimitByIP(20, time.Minute)).Post("/validate-keys", h.validateKeys)
		r.Get("/key-pool-status", h.keyPoolStatus)
		r.With(httprate.LimitByIP(30, time.Minute)).Post("/openrouter", h.openrouterProxy)
	})

	return r
}
