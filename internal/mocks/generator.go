package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	GenerateCardsFn func(ctx context.Context, text string, deckID int64) ([]*domain.Card, error)

	// Default response values
	Cards []*domain.Card
	Err   error

	// Call tracking for verification
	GenerateCardsCalls struct {
		mu      sync.Mutex
		Count   int
		Texts   []string
		DeckIDs []int64
	}
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateCards implements the generation.Generator interface
func (m *MockGenerator) GenerateCards(ctx context.Context, text string, deckID int64) ([]*domain.Card, error) {
	m.GenerateCardsCalls.mu.Lock()
	m.GenerateCardsCalls.Count++
	m.GenerateCardsCalls.Texts = append(m.GenerateCardsCalls.Texts, text)
	m.GenerateCardsCalls.DeckIDs = append(m.GenerateCardsCalls.DeckIDs, deckID)
	m.GenerateCardsCalls.mu.Unlock()

	if m.GenerateCardsFn != nil {
		return m.GenerateCardsFn(ctx, text, deckID)
	}
	return m.Cards, m.Err
}

// CallCount returns how many times GenerateCards was called.
func (m *MockGenerator) CallCount() int {
	m.GenerateCardsCalls.mu.Lock()
	defer m.GenerateCardsCalls.mu.Unlock()
	return m.GenerateCardsCalls.Count
}
