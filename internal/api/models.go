package api

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/service"
)

// ReviewTimeLayout formats nextReview in review responses.
const ReviewTimeLayout = "2006-01-02 15:04:05"

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	UserID       int64  `json:"user_id"`
	IsAdmin      bool   `json:"is_admin"`
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func toAuthResponse(pair *service.TokenPair) AuthResponse {
	return AuthResponse{
		UserID:       pair.User.ID,
		IsAdmin:      pair.User.IsAdmin,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

// ReviewRequest is the body of POST /study/review. Both fields accept a JSON
// number or a numeric string.
type ReviewRequest struct {
	CardID     json.Number `json:"cardId"`
	Difficulty json.Number `json:"difficulty"`
}

// ReviewResponse is the result of a graded review.
type ReviewResponse struct {
	Success    bool   `json:"success"`
	NextReview string `json:"nextReview"`
	Interval   int    `json:"interval"`
	Message    string `json:"message"`
}

// DueCardResponse is one card of the due list with the caller's review fields.
type DueCardResponse struct {
	ID           int64      `json:"id"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	NextReview   *time.Time `json:"next_review"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	Repetitions  int        `json:"repetitions"`
}

// DueCardsResponse is returned by GET /study/{deckId}/due.
type DueCardsResponse struct {
	DeckID int64             `json:"deckId"`
	Cards  []DueCardResponse `json:"cards"`
}

func toDueCardsResponse(deckID int64, cards []*domain.DueCard) DueCardsResponse {
	out := DueCardsResponse{DeckID: deckID, Cards: make([]DueCardResponse, 0, len(cards))}
	for _, c := range cards {
		out.Cards = append(out.Cards, DueCardResponse{
			ID:           c.ID,
			Front:        c.Front,
			Back:         c.Back,
			NextReview:   c.NextReviewAt,
			EaseFactor:   c.EaseFactor,
			IntervalDays: c.IntervalDays,
			Repetitions:  c.Repetitions,
		})
	}
	return out
}

// RecommendationResponse is one ranked deck.
type RecommendationResponse struct {
	ID    int64                     `json:"id"`
	Name  string                    `json:"name"`
	Score float64                   `json:"score"`
	Meta  domain.RecommendationMeta `json:"meta"`
}

// RecommendationsResponse is returned by GET /recommendations.
type RecommendationsResponse struct {
	Recommendations []RecommendationResponse `json:"recommendations"`
}

func toRecommendationsResponse(entries []domain.RecommendationEntry) RecommendationsResponse {
	out := RecommendationsResponse{Recommendations: make([]RecommendationResponse, 0, len(entries))}
	for _, e := range entries {
		out.Recommendations = append(out.Recommendations, RecommendationResponse{
			ID:    e.DeckID,
			Name:  e.Name,
			Score: e.Score,
			Meta:  e.Meta,
		})
	}
	return out
}

// CardsRequest adds one or more cards to a deck.
type CardsRequest struct {
	Cards []service.CardInput `json:"cards" validate:"required,min=1,max=500,dive"`
}

// GenerateRequest asks the LLM for cards about Text.
type GenerateRequest struct {
	Text string `json:"text" validate:"required,max=20000"`
}

// ShareResponse is returned by POST /decks/{deckId}/share.
type ShareResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ImportResponse reports how many cards an import added.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// AssignmentRequest assigns a deck to a user.
type AssignmentRequest struct {
	DeckID int64 `json:"deckId" validate:"required,gt=0"`
	UserID int64 `json:"userId" validate:"required,gt=0"`
}
