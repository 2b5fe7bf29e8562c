package domain

import (
	"errors"
	"time"
)

// ErrInvalidAssignment is returned when an assignment lacks its deck or user.
var ErrInvalidAssignment = errors.New("assignment requires a deck and a user")

// Assignment records that an admin assigned a deck to a user for study.
// Assigned decks count as personal decks for recommendations and unlock
// due-card access even when the deck is private.
type Assignment struct {
	ID         int64     `json:"id"`
	DeckID     int64     `json:"deck_id"`
	UserID     int64     `json:"user_id"`
	AssignedBy int64     `json:"assigned_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAssignment creates an assignment of deckID to userID made by adminID.
func NewAssignment(deckID, userID, adminID int64) (*Assignment, error) {
	if deckID <= 0 || userID <= 0 || adminID <= 0 {
		return nil, ErrInvalidAssignment
	}
	return &Assignment{
		DeckID:     deckID,
		UserID:     userID,
		AssignedBy: adminID,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
