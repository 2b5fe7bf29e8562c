package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/domain"
)

// Recommender ranks decks for a user.
type Recommender interface {
	Recommend(ctx context.Context, userID int64, mineOnly bool) ([]domain.RecommendationEntry, error)
}

// RecommendationHandler serves GET /recommendations.
type RecommendationHandler struct {
	recommender Recommender
	logger      *slog.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommender Recommender, logger *slog.Logger) *RecommendationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationHandler{
		recommender: recommender,
		logger:      logger.With(slog.String("component", "recommendation_handler")),
	}
}

// List handles GET /recommendations?my=0|1. my=1 restricts the list to decks
// the caller owns or was assigned.
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	mineOnly := false
	switch r.URL.Query().Get("my") {
	case "", "0", "false":
	case "1", "true":
		mineOnly = true
	default:
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid my parameter")
		return
	}

	entries, err := h.recommender.Recommend(r.Context(), p.UserID, mineOnly)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to compute recommendations", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toRecommendationsResponse(entries))
}
