package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/store"
)

// Store mocks return the function field's result when set. Unset getters report
// the entity as missing; unset writers succeed. WithTx returns the mock itself so
// expectations carry into transactions.

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	ListFn       func(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

var _ store.UserStore = (*MockUserStore)(nil)

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

func (m *MockUserStore) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit, offset)
	}
	return []*domain.User{}, nil
}

func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore { return m }

// MockDeckStore implements store.DeckStore for testing
type MockDeckStore struct {
	CreateFn        func(ctx context.Context, deck *domain.Deck) error
	GetByIDFn       func(ctx context.Context, id int64) (*domain.Deck, error)
	GetAccessibleFn func(ctx context.Context, id, userID int64) (*domain.Deck, error)
	ListForUserFn   func(ctx context.Context, userID int64) ([]*domain.Deck, error)
	ListAllFn       func(ctx context.Context, limit, offset int) ([]*domain.Deck, error)
	UpdateFn        func(ctx context.Context, deck *domain.Deck) error
	DeleteFn        func(ctx context.Context, id int64) error
}

var _ store.DeckStore = (*MockDeckStore)(nil)

func (m *MockDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, deck)
	}
	return nil
}

func (m *MockDeckStore) GetByID(ctx context.Context, id int64) (*domain.Deck, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrDeckNotFound
}

func (m *MockDeckStore) GetAccessible(ctx context.Context, id, userID int64) (*domain.Deck, error) {
	if m.GetAccessibleFn != nil {
		return m.GetAccessibleFn(ctx, id, userID)
	}
	return nil, store.ErrDeckNotFound
}

func (m *MockDeckStore) ListForUser(ctx context.Context, userID int64) ([]*domain.Deck, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID)
	}
	return []*domain.Deck{}, nil
}

func (m *MockDeckStore) ListAll(ctx context.Context, limit, offset int) ([]*domain.Deck, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx, limit, offset)
	}
	return []*domain.Deck{}, nil
}

func (m *MockDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, deck)
	}
	return nil
}

func (m *MockDeckStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *MockDeckStore) WithTx(*sql.Tx) store.DeckStore { return m }

// MockCardStore implements store.CardStore for testing
type MockCardStore struct {
	CreateMultipleFn func(ctx context.Context, cards []*domain.Card) error
	GetByIDFn        func(ctx context.Context, id int64) (*domain.Card, error)
	GetAccessibleFn  func(ctx context.Context, id, userID int64) (*domain.Card, error)
	ListByDeckFn     func(ctx context.Context, deckID int64) ([]*domain.Card, error)
	UpdateFn         func(ctx context.Context, card *domain.Card) error
	DeleteFn         func(ctx context.Context, id int64) error
}

var _ store.CardStore = (*MockCardStore)(nil)

func (m *MockCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	if m.CreateMultipleFn != nil {
		return m.CreateMultipleFn(ctx, cards)
	}
	return nil
}

func (m *MockCardStore) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrCardNotFound
}

func (m *MockCardStore) GetAccessible(ctx context.Context, id, userID int64) (*domain.Card, error) {
	if m.GetAccessibleFn != nil {
		return m.GetAccessibleFn(ctx, id, userID)
	}
	return nil, store.ErrCardNotFound
}

func (m *MockCardStore) ListByDeck(ctx context.Context, deckID int64) ([]*domain.Card, error) {
	if m.ListByDeckFn != nil {
		return m.ListByDeckFn(ctx, deckID)
	}
	return []*domain.Card{}, nil
}

func (m *MockCardStore) Update(ctx context.Context, card *domain.Card) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, card)
	}
	return nil
}

func (m *MockCardStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *MockCardStore) WithTx(*sql.Tx) store.CardStore { return m }

// MockReviewStore implements store.ReviewStore for testing
type MockReviewStore struct {
	GetFn       func(ctx context.Context, cardID, userID int64) (*domain.ReviewState, error)
	UpsertFn    func(ctx context.Context, state *domain.ReviewState) error
	AppendLogFn func(ctx context.Context, entry domain.ReviewLogEntry) error
	DueCardsFn  func(ctx context.Context, userID, deckID int64, now time.Time, limit int) ([]*domain.DueCard, error)

	// Upserted and Logged record successful writes in call order.
	Upserted []*domain.ReviewState
	Logged   []domain.ReviewLogEntry
}

var _ store.ReviewStore = (*MockReviewStore)(nil)

func (m *MockReviewStore) Get(ctx context.Context, cardID, userID int64) (*domain.ReviewState, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, cardID, userID)
	}
	return nil, store.ErrReviewNotFound
}

func (m *MockReviewStore) Upsert(ctx context.Context, state *domain.ReviewState) error {
	if m.UpsertFn != nil {
		if err := m.UpsertFn(ctx, state); err != nil {
			return err
		}
	}
	m.Upserted = append(m.Upserted, state)
	return nil
}

func (m *MockReviewStore) AppendLog(ctx context.Context, entry domain.ReviewLogEntry) error {
	if m.AppendLogFn != nil {
		if err := m.AppendLogFn(ctx, entry); err != nil {
			return err
		}
	}
	m.Logged = append(m.Logged, entry)
	return nil
}

func (m *MockReviewStore) DueCards(
	ctx context.Context,
	userID, deckID int64,
	now time.Time,
	limit int,
) ([]*domain.DueCard, error) {
	if m.DueCardsFn != nil {
		return m.DueCardsFn(ctx, userID, deckID, now, limit)
	}
	return []*domain.DueCard{}, nil
}

func (m *MockReviewStore) WithTx(*sql.Tx) store.ReviewStore { return m }

// MockSignalStore implements store.SignalStore for testing
type MockSignalStore struct {
	DeckSignalsFn func(ctx context.Context, userID int64, mineOnly bool, now, recentSince time.Time) ([]domain.DeckSignal, error)

	mu    sync.Mutex
	calls int
}

var _ store.SignalStore = (*MockSignalStore)(nil)

func (m *MockSignalStore) DeckSignals(
	ctx context.Context,
	userID int64,
	mineOnly bool,
	now, recentSince time.Time,
) ([]domain.DeckSignal, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.DeckSignalsFn != nil {
		return m.DeckSignalsFn(ctx, userID, mineOnly, now, recentSince)
	}
	return []domain.DeckSignal{}, nil
}

// Calls returns how many times DeckSignals was called.
func (m *MockSignalStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockAssignmentStore implements store.AssignmentStore for testing
type MockAssignmentStore struct {
	CreateFn     func(ctx context.Context, a *domain.Assignment) error
	ListByUserFn func(ctx context.Context, userID int64) ([]*domain.Assignment, error)
	ListAllFn    func(ctx context.Context, limit, offset int) ([]*domain.Assignment, error)
	DeleteFn     func(ctx context.Context, id int64) error
}

var _ store.AssignmentStore = (*MockAssignmentStore)(nil)

func (m *MockAssignmentStore) Create(ctx context.Context, a *domain.Assignment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *MockAssignmentStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Assignment, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return []*domain.Assignment{}, nil
}

func (m *MockAssignmentStore) ListAll(ctx context.Context, limit, offset int) ([]*domain.Assignment, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx, limit, offset)
	}
	return []*domain.Assignment{}, nil
}

func (m *MockAssignmentStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *MockAssignmentStore) WithTx(*sql.Tx) store.AssignmentStore { return m }

// MockShareStore implements store.ShareStore for testing
type MockShareStore struct {
	CreateFn        func(ctx context.Context, share *domain.DeckShare) error
	GetByTokenFn    func(ctx context.Context, token string) (*domain.DeckShare, error)
	DeleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

var _ store.ShareStore = (*MockShareStore)(nil)

func (m *MockShareStore) Create(ctx context.Context, share *domain.DeckShare) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, share)
	}
	return nil
}

func (m *MockShareStore) GetByToken(ctx context.Context, token string) (*domain.DeckShare, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}
	return nil, store.ErrShareNotFound
}

func (m *MockShareStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx, now)
	}
	return 0, nil
}

func (m *MockShareStore) WithTx(*sql.Tx) store.ShareStore { return m }
