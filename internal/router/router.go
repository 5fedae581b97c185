package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"decoded-backend/internal/handlers"
	"decoded-backend/internal/middleware"
)

func New(
	logger *slog.Logger,
	generateHandler *handlers.GenerateHandler,
	noteHandler *handlers.NoteHandler,
	extractHandler *handlers.ExtractHandler,
	limiter middleware.Limiter,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Credential)

		// ──── Generation Routes (call the LLM service) ────
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(middleware.RateLimit(limiter, logger))
			}
			r.Post("/generate", generateHandler.Generate)
			r.Get("/backends", generateHandler.Backends)
			r.Delete("/backends", generateHandler.ForgetBackends)
		})

		// ──── Extraction ────
		r.Post("/extract", extractHandler.Extract)

		// ──── Notes ────
		r.Route("/notes", func(r chi.Router) {
			r.Get("/", noteHandler.List)
			r.Put("/", noteHandler.Save)
			r.Get("/recent", noteHandler.Recent)
			r.Get("/{title}", noteHandler.Get)
			r.Delete("/{title}", noteHandler.Delete)
		})

		// ──── Quiz ────
		r.Post("/quiz/grade", handlers.GradeQuiz)
	})

	return r
}
