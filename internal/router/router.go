package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/tabmind/tabmind-server/internal/api"
	"github.com/tabmind/tabmind-server/internal/api/assistant"
	"github.com/tabmind/tabmind-server/internal/api/auth"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler            *auth.AuthHandlerImpl
	AssistantHandler       *assistant.AssistantHandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	RequireAdminMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/signup", cfg.AuthHandler.Signup)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		// Protected routes: bearer token required.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Post("/assistant/summarize", cfg.AssistantHandler.Summarize)
			r.Post("/assistant/chat", cfg.AssistantHandler.Chat)
			r.Post("/assistant/flashcards", cfg.AssistantHandler.Flashcards)
			r.Post("/assistant/translate", cfg.AssistantHandler.Translate)
			r.Post("/assistant/rephrase", cfg.AssistantHandler.Rephrase)

			// Admin routes: role predicate on top of authentication.
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireAdminMiddleware)
				r.Get("/auth/admin-only", cfg.AuthHandler.AdminOnly)
			})
		})
	})

	return r
}
