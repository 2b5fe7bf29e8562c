package domain

import (
	"testing"
	"time"
)

func TestNewCard(t *testing.T) {
	card, err := NewCard(7, " question ", " answer ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if card.DeckID != 7 || card.Front != "question" || card.Back != "answer" {
		t.Errorf("Unexpected card %+v", card)
	}

	if _, err := NewCard(0, "q", "a"); err != ErrCardDeckIDEmpty {
		t.Errorf("Expected %v, got %v", ErrCardDeckIDEmpty, err)
	}
	if _, err := NewCard(1, "  ", "a"); err != ErrCardFrontEmpty {
		t.Errorf("Expected %v, got %v", ErrCardFrontEmpty, err)
	}
	if _, err := NewCard(1, "q", ""); err != ErrCardBackEmpty {
		t.Errorf("Expected %v, got %v", ErrCardBackEmpty, err)
	}
}

func TestCardUpdateContent(t *testing.T) {
	card, err := NewCard(1, "q", "a")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	card.UpdatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := card.UpdateContent("", "new back"); err != ErrCardFrontEmpty {
		t.Fatalf("Expected %v, got %v", ErrCardFrontEmpty, err)
	}
	if card.Front != "q" || card.Back != "a" {
		t.Errorf("Invalid update must leave the card untouched, got %+v", card)
	}

	if err := card.UpdateContent("new front", "new back"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if card.Front != "new front" || card.Back != "new back" {
		t.Errorf("Content not updated: %+v", card)
	}
	if !card.UpdatedAt.After(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected UpdatedAt to advance")
	}
}
