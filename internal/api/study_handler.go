package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/service/study"
)

// Review response messages.
const (
	relearnMessage = "다시 학습합니다"
	reviewInFormat = "%d일 후 복습"
)

// StudyHandler serves review submission and due-card selection.
type StudyHandler struct {
	study  study.Service
	logger *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(svc study.Service, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}
	return &StudyHandler{
		study:  svc,
		logger: logger.With(slog.String("component", "study_handler")),
	}
}

// SubmitReview handles POST /study/review.
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	difficulty, err := req.Difficulty.Int64()
	if err != nil || difficulty < 0 || difficulty > int64(domain.GradeEasy) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid difficulty")
		return
	}
	grade := domain.Grade(difficulty)

	cardID, ok := parseID(req.CardID.String())
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	state, err := h.study.SubmitReview(r.Context(), p.UserID, cardID, grade)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review recorded",
		slog.Int64("card_id", cardID),
		slog.String("grade", grade.String()),
		slog.Int("interval_days", state.IntervalDays))

	shared.RespondWithJSON(w, r, http.StatusOK, newReviewResponse(state))
}

func newReviewResponse(state *domain.ReviewState) ReviewResponse {
	resp := ReviewResponse{
		Success:  true,
		Interval: state.IntervalDays,
		Message:  relearnMessage,
	}
	if state.NextReviewAt != nil {
		resp.NextReview = state.NextReviewAt.UTC().Format(ReviewTimeLayout)
	}
	if state.IntervalDays > 0 {
		resp.Message = fmt.Sprintf(reviewInFormat, state.IntervalDays)
	}
	return resp
}

// DueCards handles GET /study/{deckId}/due.
func (h *StudyHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	cards, err := h.study.DueCards(r.Context(), p.UserID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load due cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toDueCardsResponse(deckID, cards))
}
