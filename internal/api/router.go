package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/phrazzld/flashdeck/internal/api/middleware"
)

// RouterDeps are the handlers and middleware the router mounts.
type RouterDeps struct {
	Auth            *AuthHandler
	Study           *StudyHandler
	Recommendations *RecommendationHandler
	Decks           *DeckHandler
	Admin           *AdminHandler
	Health          *HealthHandler

	AuthMiddleware *apiMiddleware.AuthMiddleware
	// AuthRateLimiter throttles the public /auth routes. Nil disables it.
	AuthRateLimiter *apiMiddleware.RateLimiter
	Logger          *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(deps.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", deps.Health.Health)

	r.Route("/auth", func(r chi.Router) {
		if deps.AuthRateLimiter != nil {
			r.Use(deps.AuthRateLimiter.Middleware)
		}
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.Post("/refresh", deps.Auth.RefreshToken)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.Authenticate)

		r.Post("/study/review", deps.Study.SubmitReview)
		r.Get("/study/{deckId}/due", deps.Study.DueCards)

		r.Get("/recommendations", deps.Recommendations.List)

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deps.Decks.ListDecks)
			r.Post("/", deps.Decks.CreateDeck)
			r.Route("/{deckId}", func(r chi.Router) {
				r.Get("/", deps.Decks.GetDeck)
				r.Put("/", deps.Decks.UpdateDeck)
				r.Delete("/", deps.Decks.DeleteDeck)
				r.Get("/cards", deps.Decks.ListCards)
				r.Post("/cards", deps.Decks.AddCards)
				r.Post("/import", deps.Decks.ImportCSV)
				r.Get("/export", deps.Decks.ExportCSV)
				r.Post("/share", deps.Decks.ShareDeck)
				r.Post("/generate", deps.Decks.GenerateCards)
			})
		})

		r.Put("/cards/{cardId}", deps.Decks.UpdateCard)
		r.Delete("/cards/{cardId}", deps.Decks.DeleteCard)

		r.Post("/shares/{token}/import", deps.Decks.ImportShared)

		r.Route("/admin", func(r chi.Router) {
			r.Use(apiMiddleware.RequireAdmin)
			r.Get("/users", deps.Admin.ListUsers)
			r.Get("/decks", deps.Admin.ListDecks)
			r.Post("/assignments", deps.Admin.CreateAssignment)
			r.Get("/assignments", deps.Admin.ListAssignments)
			r.Delete("/assignments/{assignmentId}", deps.Admin.DeleteAssignment)
		})
	})

	return r
}
