package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// DefaultShareTTL is how long a share token stays redeemable when not configured.
const DefaultShareTTL = 7 * 24 * time.Hour

// DeckInput is the editable part of a deck.
type DeckInput struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	IsPublic    bool   `json:"isPublic"`
}

// DeckService manages decks, their cards, sharing and imports.
//
// Reads require the deck to be visible to the caller (owned, public or
// assigned); writes require ownership. Invisible resources are reported as
// store.ErrDeckNotFound / store.ErrCardNotFound, visible but foreign ones as
// ErrNotOwned.
type DeckService interface {
	CreateDeck(ctx context.Context, userID int64, in DeckInput) (*domain.Deck, error)
	ListDecks(ctx context.Context, userID int64) ([]*domain.Deck, error)
	GetDeck(ctx context.Context, userID, deckID int64) (*domain.Deck, error)
	UpdateDeck(ctx context.Context, userID, deckID int64, in DeckInput) (*domain.Deck, error)
	DeleteDeck(ctx context.Context, userID, deckID int64) error

	ListCards(ctx context.Context, userID, deckID int64) ([]*domain.Card, error)
	AddCards(ctx context.Context, userID, deckID int64, in []CardInput) ([]*domain.Card, error)
	UpdateCard(ctx context.Context, userID, cardID int64, in CardInput) (*domain.Card, error)
	DeleteCard(ctx context.Context, userID, cardID int64) error

	// ImportCSV appends the cards in r to the deck and returns how many were added.
	ImportCSV(ctx context.Context, userID, deckID int64, r io.Reader) (int, error)
	// ExportCSV writes the deck's cards to w.
	ExportCSV(ctx context.Context, userID, deckID int64, w io.Writer) error

	// ShareDeck issues a token that lets any user copy the deck until it expires.
	ShareDeck(ctx context.Context, userID, deckID int64) (*domain.DeckShare, error)
	// ImportShared copies the shared deck and its cards into a new private deck
	// owned by userID.
	ImportShared(ctx context.Context, userID int64, token string) (*domain.Deck, error)

	// GenerateCards asks the configured LLM for cards about text and appends them.
	GenerateCards(ctx context.Context, userID, deckID int64, text string) ([]*domain.Card, error)
}

type deckServiceImpl struct {
	db        *sql.DB
	decks     store.DeckStore
	cards     store.CardStore
	shares    store.ShareStore
	generator generation.Generator
	shareTTL  time.Duration
	newToken  func() string
	now       func() time.Time
	logger    *slog.Logger
}

var _ DeckService = (*deckServiceImpl)(nil)

// DeckServiceDeps are the collaborators of the deck service.
type DeckServiceDeps struct {
	DB         *sql.DB
	DeckStore  store.DeckStore
	CardStore  store.CardStore
	ShareStore store.ShareStore
	// Generator may be nil, which disables GenerateCards.
	Generator generation.Generator
	ShareTTL  time.Duration
}

// NewDeckService creates a new DeckService.
func NewDeckService(deps DeckServiceDeps, logger *slog.Logger) (DeckService, error) {
	if deps.DB == nil {
		return nil, domain.NewValidationError("db", "cannot be nil")
	}
	if deps.DeckStore == nil || deps.CardStore == nil || deps.ShareStore == nil {
		return nil, domain.NewValidationError("stores", "cannot be nil")
	}
	if deps.Generator == nil {
		deps.Generator = generation.Disabled{}
	}
	if deps.ShareTTL <= 0 {
		deps.ShareTTL = DefaultShareTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		db:        deps.DB,
		decks:     deps.DeckStore,
		cards:     deps.CardStore,
		shares:    deps.ShareStore,
		generator: deps.Generator,
		shareTTL:  deps.ShareTTL,
		newToken:  shortuuid.New,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "deck_service")),
	}, nil
}

// ownedDeck loads a deck the caller may modify.
func (s *deckServiceImpl) ownedDeck(ctx context.Context, decks store.DeckStore, userID, deckID int64) (*domain.Deck, error) {
	deck, err := decks.GetAccessible(ctx, deckID, userID)
	if err != nil {
		return nil, err
	}
	if !deck.IsOwnedBy(userID) {
		return nil, ErrNotOwned
	}
	return deck, nil
}

// ownedCard loads a card whose deck the caller owns.
func (s *deckServiceImpl) ownedCard(ctx context.Context, userID, cardID int64) (*domain.Card, error) {
	card, err := s.cards.GetAccessible(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedDeck(ctx, s.decks, userID, card.DeckID); err != nil {
		return nil, err
	}
	return card, nil
}

// CreateDeck implements DeckService.CreateDeck
func (s *deckServiceImpl) CreateDeck(ctx context.Context, userID int64, in DeckInput) (*domain.Deck, error) {
	deck, err := domain.NewDeck(userID, in.Name, in.Description, in.IsPublic)
	if err != nil {
		return nil, err
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, NewServiceError("create_deck", "failed to save deck", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("deck created",
		slog.Int64("deck_id", deck.ID),
		slog.Int64("owner_id", userID))
	return deck, nil
}

// ListDecks implements DeckService.ListDecks
func (s *deckServiceImpl) ListDecks(ctx context.Context, userID int64) ([]*domain.Deck, error) {
	decks, err := s.decks.ListForUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_decks", "failed to list decks", err)
	}
	return decks, nil
}

// GetDeck implements DeckService.GetDeck
func (s *deckServiceImpl) GetDeck(ctx context.Context, userID, deckID int64) (*domain.Deck, error) {
	return s.decks.GetAccessible(ctx, deckID, userID)
}

// UpdateDeck implements DeckService.UpdateDeck
func (s *deckServiceImpl) UpdateDeck(ctx context.Context, userID, deckID int64, in DeckInput) (*domain.Deck, error) {
	var deck *domain.Deck
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		decks := s.decks.WithTx(tx)

		var err error
		deck, err = s.ownedDeck(ctx, decks, userID, deckID)
		if err != nil {
			return err
		}
		if err := deck.Update(in.Name, in.Description, in.IsPublic); err != nil {
			return err
		}
		return decks.Update(ctx, deck)
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// DeleteDeck implements DeckService.DeleteDeck
func (s *deckServiceImpl) DeleteDeck(ctx context.Context, userID, deckID int64) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		decks := s.decks.WithTx(tx)
		if _, err := s.ownedDeck(ctx, decks, userID, deckID); err != nil {
			return err
		}
		return decks.Delete(ctx, deckID)
	})
}

// ListCards implements DeckService.ListCards
func (s *deckServiceImpl) ListCards(ctx context.Context, userID, deckID int64) ([]*domain.Card, error) {
	if _, err := s.decks.GetAccessible(ctx, deckID, userID); err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, NewServiceError("list_cards", "failed to list cards", err)
	}
	return cards, nil
}

// AddCards implements DeckService.AddCards
func (s *deckServiceImpl) AddCards(ctx context.Context, userID, deckID int64, in []CardInput) ([]*domain.Card, error) {
	if len(in) == 0 {
		return nil, ErrEmptyImport
	}
	if len(in) > MaxImportCards {
		return nil, ErrImportTooLarge
	}

	cards := make([]*domain.Card, 0, len(in))
	for i, c := range in {
		card, err := domain.NewCard(deckID, c.Front, c.Back)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		cards = append(cards, card)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.ownedDeck(ctx, s.decks.WithTx(tx), userID, deckID); err != nil {
			return err
		}
		return s.cards.WithTx(tx).CreateMultiple(ctx, cards)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("cards added",
		slog.Int64("deck_id", deckID),
		slog.Int("count", len(cards)))
	return cards, nil
}

// UpdateCard implements DeckService.UpdateCard
func (s *deckServiceImpl) UpdateCard(ctx context.Context, userID, cardID int64, in CardInput) (*domain.Card, error) {
	card, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if err := card.UpdateContent(in.Front, in.Back); err != nil {
		return nil, err
	}
	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard implements DeckService.DeleteCard
func (s *deckServiceImpl) DeleteCard(ctx context.Context, userID, cardID int64) error {
	if _, err := s.ownedCard(ctx, userID, cardID); err != nil {
		return err
	}
	return s.cards.Delete(ctx, cardID)
}

// ImportCSV implements DeckService.ImportCSV
func (s *deckServiceImpl) ImportCSV(ctx context.Context, userID, deckID int64, r io.Reader) (int, error) {
	rows, err := ParseCardsCSV(r)
	if err != nil {
		return 0, err
	}
	cards, err := s.AddCards(ctx, userID, deckID, rows)
	if err != nil {
		return 0, err
	}
	return len(cards), nil
}

// ExportCSV implements DeckService.ExportCSV
func (s *deckServiceImpl) ExportCSV(ctx context.Context, userID, deckID int64, w io.Writer) error {
	cards, err := s.ListCards(ctx, userID, deckID)
	if err != nil {
		return err
	}
	return WriteCardsCSV(w, cards)
}

// ShareDeck implements DeckService.ShareDeck
func (s *deckServiceImpl) ShareDeck(ctx context.Context, userID, deckID int64) (*domain.DeckShare, error) {
	if _, err := s.ownedDeck(ctx, s.decks, userID, deckID); err != nil {
		return nil, err
	}

	share, err := domain.NewDeckShare(s.newToken(), deckID, userID, s.shareTTL, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.shares.Create(ctx, share); err != nil {
		return nil, NewServiceError("share_deck", "failed to save share", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("deck shared",
		slog.Int64("deck_id", deckID),
		slog.Time("expires_at", share.ExpiresAt))
	return share, nil
}

// ImportShared implements DeckService.ImportShared
func (s *deckServiceImpl) ImportShared(ctx context.Context, userID int64, token string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var copied *domain.Deck
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		decks := s.decks.WithTx(tx)
		cards := s.cards.WithTx(tx)

		share, err := s.shares.WithTx(tx).GetByToken(ctx, token)
		if err != nil {
			return err
		}
		if share.IsExpired(s.now()) {
			return domain.ErrShareExpired
		}

		source, err := decks.GetByID(ctx, share.DeckID)
		if err != nil {
			return err
		}
		sourceCards, err := cards.ListByDeck(ctx, source.ID)
		if err != nil {
			return err
		}

		copied, err = domain.NewDeck(userID, source.Name, source.Description, false)
		if err != nil {
			return err
		}
		if err := decks.Create(ctx, copied); err != nil {
			return err
		}
		if len(sourceCards) == 0 {
			return nil
		}

		clones := make([]*domain.Card, 0, len(sourceCards))
		for _, c := range sourceCards {
			clone, err := domain.NewCard(copied.ID, c.Front, c.Back)
			if err != nil {
				return err
			}
			clones = append(clones, clone)
		}
		if err := cards.CreateMultiple(ctx, clones); err != nil {
			return err
		}
		copied.CardCount = len(clones)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, domain.ErrShareExpired) {
			return nil, err
		}
		log.Error("failed to import shared deck", slog.String("error", err.Error()))
		return nil, NewServiceError("import_shared", "failed to copy deck", err)
	}

	log.Info("shared deck imported",
		slog.Int64("deck_id", copied.ID),
		slog.Int("cards", copied.CardCount))
	return copied, nil
}

// GenerateCards implements DeckService.GenerateCards
func (s *deckServiceImpl) GenerateCards(ctx context.Context, userID, deckID int64, text string) ([]*domain.Card, error) {
	if _, err := s.ownedDeck(ctx, s.decks, userID, deckID); err != nil {
		return nil, err
	}

	generated, err := s.generator.GenerateCards(ctx, text, deckID)
	if err != nil {
		return nil, err
	}

	in := make([]CardInput, 0, len(generated))
	for _, c := range generated {
		in = append(in, CardInput{Front: c.Front, Back: c.Back})
	}
	return s.AddCards(ctx, userID, deckID, in)
}
