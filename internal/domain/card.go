package domain

import (
	"errors"
	"strings"
	"time"
)

// Card-specific validation errors
var (
	// ErrCardDeckIDEmpty is returned when a card has no deck.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front side is blank.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back side is blank.
	ErrCardBackEmpty = errors.New("card back cannot be empty")
)

// Card is a single front/back flashcard belonging to a deck.
type Card struct {
	ID        int64     `json:"id"`
	DeckID    int64     `json:"deck_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates a new Card in deckID. The ID is assigned by the store.
// Returns an error if validation fails.
func NewCard(deckID int64, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		DeckID:    deckID,
		Front:     strings.TrimSpace(front),
		Back:      strings.TrimSpace(back),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.DeckID <= 0 {
		return ErrCardDeckIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	return nil
}

// UpdateContent updates the card's sides and the UpdatedAt timestamp.
// The card is left untouched if the new content is invalid.
func (c *Card) UpdateContent(front, back string) error {
	updated := *c
	updated.Front = strings.TrimSpace(front)
	updated.Back = strings.TrimSpace(back)

	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now().UTC()
	*c = updated
	return nil
}
