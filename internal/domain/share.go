package domain

import (
	"errors"
	"time"
)

// Share errors
var (
	ErrShareExpired = errors.New("share token has expired")
	ErrShareInvalid = errors.New("share requires a token, a deck and a creator")
)

// DeckShare is a time-limited token that lets any user copy a deck.
type DeckShare struct {
	Token     string    `json:"token"`
	DeckID    int64     `json:"deck_id"`
	CreatedBy int64     `json:"created_by"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDeckShare creates a share for deckID valid for ttl from now.
func NewDeckShare(token string, deckID, createdBy int64, ttl time.Duration, now time.Time) (*DeckShare, error) {
	if token == "" || deckID <= 0 || createdBy <= 0 || ttl <= 0 {
		return nil, ErrShareInvalid
	}
	now = now.UTC().Truncate(time.Second)
	return &DeckShare{
		Token:     token,
		DeckID:    deckID,
		CreatedBy: createdBy,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// IsExpired reports whether the share can no longer be redeemed at now.
func (s *DeckShare) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
