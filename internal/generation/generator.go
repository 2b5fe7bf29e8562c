package generation

import (
	"context"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// MaxSourceLength bounds the free text accepted for a single generation request.
const MaxSourceLength = 20000

// Generator turns free text into flashcards for a deck.
type Generator interface {
	// GenerateCards returns unsaved cards whose DeckID is deckID. Errors wrap the
	// sentinels in this package.
	GenerateCards(ctx context.Context, text string, deckID int64) ([]*domain.Card, error)
}

// Disabled is the Generator used when no LLM is configured.
type Disabled struct{}

// GenerateCards always fails with ErrDisabled.
func (Disabled) GenerateCards(context.Context, string, int64) ([]*domain.Card, error) {
	return nil, ErrDisabled
}

var _ Generator = Disabled{}
