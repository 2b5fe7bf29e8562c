package domain

import (
	"errors"
	"strings"
	"time"
)

// Deck validation errors
var (
	ErrDeckNameEmpty   = errors.New("deck name cannot be empty")
	ErrDeckNameTooLong = errors.New("deck name must be at most 200 characters long")
	ErrDeckOwnerEmpty  = errors.New("deck owner cannot be empty")
)

const maxDeckNameLength = 200

// Deck is a named collection of cards owned by a single user. Public decks are
// visible to every user and feed the popular recommendations.
type Deck struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeck creates a deck owned by ownerID.
func NewDeck(ownerID int64, name, description string, isPublic bool) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.OwnerID <= 0 {
		return ErrDeckOwnerEmpty
	}
	if d.Name == "" {
		return ErrDeckNameEmpty
	}
	if len([]rune(d.Name)) > maxDeckNameLength {
		return ErrDeckNameTooLong
	}
	return nil
}

// Update replaces the editable fields, validating before it commits them.
func (d *Deck) Update(name, description string, isPublic bool) error {
	updated := *d
	updated.Name = strings.TrimSpace(name)
	updated.Description = strings.TrimSpace(description)
	updated.IsPublic = isPublic
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now().UTC()
	*d = updated
	return nil
}

// IsOwnedBy reports whether userID owns the deck.
func (d *Deck) IsOwnedBy(userID int64) bool {
	return d.OwnerID == userID
}
