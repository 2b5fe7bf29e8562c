// Package recommendation ranks the decks a user should study next and caches the
// ranking for a short time.
package recommendation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/domain/recommend"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/redact"
	"github.com/phrazzld/flashdeck/internal/store"
)

// RecentWindow bounds the review history counted as recent activity.
const RecentWindow = 7 * 24 * time.Hour

// ErrAggregateFailed is returned when deck signals could not be loaded.
var ErrAggregateFailed = errors.New("failed to aggregate deck signals")

// ComputeTimeout bounds a shared ranking computation, which outlives the
// request of the caller that started it.
const ComputeTimeout = 10 * time.Second

// Cache stores encoded rankings. Read errors are treated as misses and write
// errors are ignored. Invalidate accepts an exact key or a prefix ending in *.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) int
}

// Config holds the operator-tunable parts of the service.
type Config struct {
	Weights domain.Weights
	// CacheTTL of zero disables caching.
	CacheTTL time.Duration
}

// Service produces deck recommendations.
type Service struct {
	signals   store.SignalStore
	cache     Cache
	weights   domain.Weights
	ttl       time.Duration
	namespace string
	group     singleflight.Group
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a recommendation service. cache may be nil.
func NewService(signals store.SignalStore, cache Cache, cfg Config, logger *slog.Logger) *Service {
	if signals == nil {
		panic("signal store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		signals:   signals,
		cache:     cache,
		weights:   cfg.Weights,
		ttl:       cfg.CacheTTL,
		namespace: Namespace(cfg.Weights),
		now:       time.Now,
		logger:    logger.With(slog.String("component", "recommendation_service")),
	}
}

// Namespace identifies a weight configuration inside cache keys, so a restart
// with new weights never serves rankings computed under the old ones.
func Namespace(w domain.Weights) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%g|%g|%g|%g", w.Due, w.Assigned, w.Recent, w.Wrong)))
	return "v1-" + hex.EncodeToString(sum[:4])
}

// CacheKey returns the cache key of one user's ranking.
func (s *Service) CacheKey(userID int64, mineOnly bool) string {
	mine := "0"
	if mineOnly {
		mine = "1"
	}
	return "rec:" + s.namespace + ":u" + strconv.FormatInt(userID, 10) + ":m" + mine
}

// Recommend returns up to recommend.MaxEntries decks for userID in descending
// score order. mineOnly drops decks the user neither owns nor was assigned.
// The result is never nil.
func (s *Service) Recommend(ctx context.Context, userID int64, mineOnly bool) ([]domain.RecommendationEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	key := s.CacheKey(userID, mineOnly)

	if entries, ok := s.lookup(ctx, log, key); ok {
		return entries, nil
	}

	// The computation is detached from any one caller, so a cancelled request
	// does not fail the others waiting on the same key.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ComputeTimeout)
		defer cancel()

		entries, err := s.compute(computeCtx, userID, mineOnly)
		if err != nil {
			return nil, err
		}
		s.store(computeCtx, log, key, entries)
		return entries, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			log.Error("failed to compute recommendations",
				slog.String("error", redact.Error(res.Err)),
				slog.Int64("user_id", userID))
			return nil, res.Err
		}
		return res.Val.([]domain.RecommendationEntry), nil
	}
}

// InvalidateUser drops every cached ranking of userID.
func (s *Service) InvalidateUser(ctx context.Context, userID int64) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	prefix := "rec:" + s.namespace + ":u" + strconv.FormatInt(userID, 10) + ":"
	if n := s.cache.Invalidate(ctx, prefix+"*"); n > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Debug("invalidated cached recommendations",
			slog.Int64("user_id", userID),
			slog.Int("entries", n))
	}
}

func (s *Service) compute(ctx context.Context, userID int64, mineOnly bool) ([]domain.RecommendationEntry, error) {
	now := s.now().UTC()
	signals, err := s.signals.DeckSignals(ctx, userID, mineOnly, now, now.Add(-RecentWindow))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAggregateFailed, err)
	}
	return recommend.Score(signals, s.weights, mineOnly, recommend.MaxEntries), nil
}

func (s *Service) lookup(ctx context.Context, log *slog.Logger, key string) ([]domain.RecommendationEntry, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("recommendation cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	entries := []domain.RecommendationEntry{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Warn("discarding undecodable cached recommendations",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	return entries, true
}

func (s *Service) store(ctx context.Context, log *slog.Logger, key string, entries []domain.RecommendationEntry) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}

	raw, err := json.Marshal(entries)
	if err == nil {
		err = s.cache.Set(ctx, key, raw, s.ttl)
	}
	if err != nil {
		log.Warn("recommendation cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}
