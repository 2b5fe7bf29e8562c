package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apiMiddleware "github.com/phrazzld/flashdeck/internal/api/middleware"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/mocks"
	"github.com/phrazzld/flashdeck/internal/service"
	"github.com/phrazzld/flashdeck/internal/service/auth"
	"github.com/phrazzld/flashdeck/internal/service/study"
	"github.com/stretchr/testify/require"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
	testUserID = int64(1)
	adminID    = int64(9)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStudy struct {
	submitFn func(ctx context.Context, userID, cardID int64, grade domain.Grade) (*domain.ReviewState, error)
	dueFn    func(ctx context.Context, userID, deckID int64) ([]*domain.DueCard, error)
}

var _ study.Service = (*fakeStudy)(nil)

func (f *fakeStudy) SubmitReview(ctx context.Context, userID, cardID int64, grade domain.Grade) (*domain.ReviewState, error) {
	return f.submitFn(ctx, userID, cardID, grade)
}

func (f *fakeStudy) DueCards(ctx context.Context, userID, deckID int64) ([]*domain.DueCard, error) {
	return f.dueFn(ctx, userID, deckID)
}

type fakeRecommender struct {
	fn func(ctx context.Context, userID int64, mineOnly bool) ([]domain.RecommendationEntry, error)
}

func (f *fakeRecommender) Recommend(ctx context.Context, userID int64, mineOnly bool) ([]domain.RecommendationEntry, error) {
	return f.fn(ctx, userID, mineOnly)
}

// fakeUsers, fakeDecks and fakeAdmin embed their interface so that tests only
// stub the methods they exercise; any other call panics.
type fakeUsers struct {
	service.UserService
	registerFn func(ctx context.Context, email, password string) (*service.TokenPair, error)
	loginFn    func(ctx context.Context, email, password string) (*service.TokenPair, error)
	refreshFn  func(ctx context.Context, token string) (*service.TokenPair, error)
}

func (f *fakeUsers) Register(ctx context.Context, email, password string) (*service.TokenPair, error) {
	return f.registerFn(ctx, email, password)
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*service.TokenPair, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeUsers) Refresh(ctx context.Context, token string) (*service.TokenPair, error) {
	return f.refreshFn(ctx, token)
}

type fakeDecks struct {
	service.DeckService
	createFn   func(ctx context.Context, userID int64, in service.DeckInput) (*domain.Deck, error)
	getFn      func(ctx context.Context, userID, deckID int64) (*domain.Deck, error)
	deleteFn   func(ctx context.Context, userID, deckID int64) error
	addCardsFn func(ctx context.Context, userID, deckID int64, in []service.CardInput) ([]*domain.Card, error)
	importFn   func(ctx context.Context, userID, deckID int64, r io.Reader) (int, error)
	exportFn   func(ctx context.Context, userID, deckID int64, w io.Writer) error
	shareFn    func(ctx context.Context, userID, deckID int64) (*domain.DeckShare, error)
	sharedFn   func(ctx context.Context, userID int64, token string) (*domain.Deck, error)
	generateFn func(ctx context.Context, userID, deckID int64, text string) ([]*domain.Card, error)
}

func (f *fakeDecks) CreateDeck(ctx context.Context, userID int64, in service.DeckInput) (*domain.Deck, error) {
	return f.createFn(ctx, userID, in)
}

func (f *fakeDecks) GetDeck(ctx context.Context, userID, deckID int64) (*domain.Deck, error) {
	return f.getFn(ctx, userID, deckID)
}

func (f *fakeDecks) DeleteDeck(ctx context.Context, userID, deckID int64) error {
	return f.deleteFn(ctx, userID, deckID)
}

func (f *fakeDecks) AddCards(ctx context.Context, userID, deckID int64, in []service.CardInput) ([]*domain.Card, error) {
	return f.addCardsFn(ctx, userID, deckID, in)
}

func (f *fakeDecks) ImportCSV(ctx context.Context, userID, deckID int64, r io.Reader) (int, error) {
	return f.importFn(ctx, userID, deckID, r)
}

func (f *fakeDecks) ExportCSV(ctx context.Context, userID, deckID int64, w io.Writer) error {
	return f.exportFn(ctx, userID, deckID, w)
}

func (f *fakeDecks) ShareDeck(ctx context.Context, userID, deckID int64) (*domain.DeckShare, error) {
	return f.shareFn(ctx, userID, deckID)
}

func (f *fakeDecks) ImportShared(ctx context.Context, userID int64, token string) (*domain.Deck, error) {
	return f.sharedFn(ctx, userID, token)
}

func (f *fakeDecks) GenerateCards(ctx context.Context, userID, deckID int64, text string) ([]*domain.Card, error) {
	return f.generateFn(ctx, userID, deckID, text)
}

type fakeAdmin struct {
	service.AdminService
	listUsersFn func(ctx context.Context, limit, offset int) ([]*domain.User, error)
	assignFn    func(ctx context.Context, adminID, deckID, userID int64) (*domain.Assignment, error)
	unassignFn  func(ctx context.Context, id int64) error
}

func (f *fakeAdmin) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return f.listUsersFn(ctx, limit, offset)
}

func (f *fakeAdmin) Assign(ctx context.Context, adminID, deckID, userID int64) (*domain.Assignment, error) {
	return f.assignFn(ctx, adminID, deckID, userID)
}

func (f *fakeAdmin) Unassign(ctx context.Context, id int64) error {
	return f.unassignFn(ctx, id)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	study   *fakeStudy
	recs    *fakeRecommender
	users   *fakeUsers
	decks   *fakeDecks
	admin   *fakeAdmin
	pinger  *fakePinger
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jwt := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			switch token {
			case userToken:
				return &auth.Claims{UserID: testUserID}, nil
			case adminToken:
				return &auth.Claims{UserID: adminID, IsAdmin: true}, nil
			default:
				return nil, auth.ErrInvalidToken
			}
		},
	}

	ts := &testServer{
		study:  &fakeStudy{},
		recs:   &fakeRecommender{},
		users:  &fakeUsers{},
		decks:  &fakeDecks{},
		admin:  &fakeAdmin{},
		pinger: &fakePinger{},
	}
	log := discardLogger()
	ts.handler = NewRouter(RouterDeps{
		Auth:            NewAuthHandler(ts.users, log),
		Study:           NewStudyHandler(ts.study, log),
		Recommendations: NewRecommendationHandler(ts.recs, log),
		Decks:           NewDeckHandler(ts.decks, log),
		Admin:           NewAdminHandler(ts.admin, log),
		Health:          NewHealthHandler(ts.pinger),
		AuthMiddleware:  apiMiddleware.NewAuthMiddleware(jwt),
		Logger:          log,
	})
	return ts
}

// do sends a request through the full router. An empty token sends no
// Authorization header.
func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
