package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/service"
)

// MaxCSVBytes bounds CSV import bodies.
const MaxCSVBytes = 5 << 20

// DeckHandler serves deck, card, import/export, sharing and generation routes.
type DeckHandler struct {
	decks  service.DeckService
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks service.DeckService, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}
	return &DeckHandler{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	decks, err := h.decks.ListDecks(r.Context(), p.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{"decks": decks})
}

// CreateDeck handles POST /decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	var req service.DeckInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), p.UserID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// GetDeck handles GET /decks/{deckId}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	deck, err := h.decks.GetDeck(r.Context(), p.UserID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// UpdateDeck handles PUT /decks/{deckId}.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	var req service.DeckInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.decks.UpdateDeck(r.Context(), p.UserID, deckID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// DeleteDeck handles DELETE /decks/{deckId}.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	if err := h.decks.DeleteDeck(r.Context(), p.UserID, deckID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCards handles GET /decks/{deckId}/cards.
func (h *DeckHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	cards, err := h.decks.ListCards(r.Context(), p.UserID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{"cards": cards})
}

// AddCards handles POST /decks/{deckId}/cards.
func (h *DeckHandler) AddCards(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	var req CardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cards, err := h.decks.AddCards(r.Context(), p.UserID, deckID, req.Cards)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, map[string]any{"cards": cards})
}

// UpdateCard handles PUT /cards/{cardId}.
func (h *DeckHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	p, cardID, ok := handlePrincipalAndPathID(w, r, "cardId", "Invalid card ID")
	if !ok {
		return
	}

	var req service.CardInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.decks.UpdateCard(r.Context(), p.UserID, cardID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /cards/{cardId}.
func (h *DeckHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	p, cardID, ok := handlePrincipalAndPathID(w, r, "cardId", "Invalid card ID")
	if !ok {
		return
	}

	if err := h.decks.DeleteCard(r.Context(), p.UserID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportCSV handles POST /decks/{deckId}/import with a text/csv body.
func (h *DeckHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	body := http.MaxBytesReader(w, r.Body, MaxCSVBytes)
	n, err := h.decks.ImportCSV(r.Context(), p.UserID, deckID, body)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import cards")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("csv imported",
		slog.Int64("deck_id", deckID),
		slog.Int("cards", n))
	shared.RespondWithJSON(w, r, http.StatusCreated, ImportResponse{Imported: n})
}

// ExportCSV handles GET /decks/{deckId}/export.
func (h *DeckHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	// Buffer so that a failure can still produce a JSON error response.
	var buf bytes.Buffer
	if err := h.decks.ExportCSV(r.Context(), p.UserID, deckID, &buf); err != nil {
		HandleAPIError(w, r, err, "Failed to export cards")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"deck-%d.csv\"", deckID))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("failed to write csv export",
			slog.String("error", err.Error()))
	}
}

// ShareDeck handles POST /decks/{deckId}/share.
func (h *DeckHandler) ShareDeck(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	share, err := h.decks.ShareDeck(r.Context(), p.UserID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to share deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, ShareResponse{Token: share.Token, ExpiresAt: share.ExpiresAt})
}

// ImportShared handles POST /shares/{token}/import.
func (h *DeckHandler) ImportShared(w http.ResponseWriter, r *http.Request) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid share token")
		return
	}

	deck, err := h.decks.ImportShared(r.Context(), p.UserID, token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import shared deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// GenerateCards handles POST /decks/{deckId}/generate.
func (h *DeckHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	p, deckID, ok := handlePrincipalAndPathID(w, r, "deckId", "Invalid deck ID")
	if !ok {
		return
	}

	var req GenerateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cards, err := h.decks.GenerateCards(r.Context(), p.UserID, deckID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, map[string]any{"cards": cards})
}
