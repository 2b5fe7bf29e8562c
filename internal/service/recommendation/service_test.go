package recommendation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/mocks"
	"github.com/phrazzld/flashdeck/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 4, 8, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signalsFixture() []domain.DeckSignal {
	return []domain.DeckSignal{
		{DeckID: 1, Name: "mine", OwnerID: 4, IsOwnedByRequester: true, DueCount: 10},
		{DeckID: 2, Name: "popular", OwnerID: 9, RecentReviewCount: 40},
	}
}

func newTestService(signals *mocks.MockSignalStore, c Cache, ttl time.Duration) *Service {
	svc := NewService(signals, c, Config{Weights: domain.DefaultWeights(), CacheTTL: ttl}, quietLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

type failingCache struct {
	getErr, setErr error
	sets           int
}

func (f *failingCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.getErr }

func (f *failingCache) Set(context.Context, string, []byte, time.Duration) error {
	f.sets++
	return f.setErr
}

func (f *failingCache) Invalidate(context.Context, string) int { return 0 }

func TestNamespace(t *testing.T) {
	t.Parallel()

	a := Namespace(domain.DefaultWeights())
	assert.Equal(t, a, Namespace(domain.DefaultWeights()))
	assert.Regexp(t, `^v1-[0-9a-f]{8}$`, a)

	w := domain.DefaultWeights()
	w.Wrong = 9
	assert.NotEqual(t, a, Namespace(w))
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mocks.MockSignalStore{}, nil, 0)
	ns := Namespace(domain.DefaultWeights())
	assert.Equal(t, "rec:"+ns+":u42:m0", svc.CacheKey(42, false))
	assert.Equal(t, "rec:"+ns+":u42:m1", svc.CacheKey(42, true))
}

func TestRecommend_ScoresSignals(t *testing.T) {
	t.Parallel()

	var gotSince time.Time
	signals := &mocks.MockSignalStore{
		DeckSignalsFn: func(_ context.Context, userID int64, mineOnly bool, now, since time.Time) ([]domain.DeckSignal, error) {
			assert.Equal(t, int64(4), userID)
			assert.False(t, mineOnly)
			assert.Equal(t, testNow, now)
			gotSince = since
			return signalsFixture(), nil
		},
	}
	svc := newTestService(signals, nil, 0)

	entries, err := svc.Recommend(context.Background(), 4, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].DeckID)
	assert.InDelta(t, 50.0, entries[0].Score, 1e-9)
	assert.InDelta(t, 20.0, entries[1].Score, 1e-9)
	assert.Equal(t, testNow.Add(-RecentWindow), gotSince)
}

func TestRecommend_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mocks.MockSignalStore{}, nil, 0)
	entries, err := svc.Recommend(context.Background(), 4, true)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRecommend_CacheHitSkipsStore(t *testing.T) {
	t.Parallel()

	signals := &mocks.MockSignalStore{
		DeckSignalsFn: func(context.Context, int64, bool, time.Time, time.Time) ([]domain.DeckSignal, error) {
			return signalsFixture(), nil
		},
	}
	svc := newTestService(signals, cache.NewLRU(10, time.Minute), 30*time.Second)

	first, err := svc.Recommend(context.Background(), 4, false)
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), 4, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, signals.Calls())

	_, err = svc.Recommend(context.Background(), 4, true)
	require.NoError(t, err)
	assert.Equal(t, 2, signals.Calls(), "mine-only rankings are cached separately")
}

func TestRecommend_CacheFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	signals := &mocks.MockSignalStore{
		DeckSignalsFn: func(context.Context, int64, bool, time.Time, time.Time) ([]domain.DeckSignal, error) {
			return signalsFixture(), nil
		},
	}
	broken := &failingCache{getErr: errors.New("read failed"), setErr: errors.New("write failed")}
	svc := newTestService(signals, broken, 30*time.Second)

	entries, err := svc.Recommend(context.Background(), 4, false)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, broken.sets)
}

func TestRecommend_DisabledCacheIsNotWritten(t *testing.T) {
	t.Parallel()

	c := &failingCache{}
	svc := newTestService(&mocks.MockSignalStore{}, c, 0)

	_, err := svc.Recommend(context.Background(), 4, false)
	require.NoError(t, err)
	assert.Equal(t, 0, c.sets)
}

func TestRecommend_AggregateFailure(t *testing.T) {
	t.Parallel()

	signals := &mocks.MockSignalStore{
		DeckSignalsFn: func(context.Context, int64, bool, time.Time, time.Time) ([]domain.DeckSignal, error) {
			return nil, errors.New("statement timeout")
		},
	}
	c := cache.NewLRU(10, time.Minute)
	svc := newTestService(signals, c, 30*time.Second)

	entries, err := svc.Recommend(context.Background(), 4, false)
	assert.ErrorIs(t, err, ErrAggregateFailed)
	assert.Nil(t, entries)
	assert.Equal(t, 0, c.Len(), "failures are not cached")
}

func TestRecommend_ConcurrentCallersShareResult(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	signals := &mocks.MockSignalStore{
		DeckSignalsFn: func(context.Context, int64, bool, time.Time, time.Time) ([]domain.DeckSignal, error) {
			<-release
			return signalsFixture(), nil
		},
	}
	svc := newTestService(signals, cache.NewLRU(10, time.Minute), 30*time.Second)

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]domain.RecommendationEntry, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries, err := svc.Recommend(context.Background(), 4, false)
			assert.NoError(t, err)
			results[i] = entries
		}(i)
	}

	// let the callers pile up on the in-flight query
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, signals.Calls(), callers)
	for _, r := range results {
		assert.Len(t, r, 2)
	}
}

func TestRecommend_ConcurrentMissesPopulateCache(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	signals := &mocks.MockSignalStore{
		DeckSignalsFn: func(context.Context, int64, bool, time.Time, time.Time) ([]domain.DeckSignal, error) {
			<-release
			return signalsFixture(), nil
		},
	}
	c := cache.NewLRU(10, time.Minute)
	svc := newTestService(signals, c, 30*time.Second)

	const callers = 5
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Recommend(context.Background(), 7, false)
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, c.Len())

	calls := signals.Calls()
	_, err := svc.Recommend(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Equal(t, calls, signals.Calls(), "the next call is served from the cache")
}

func TestRecommend_CancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	signals := &mocks.MockSignalStore{
		DeckSignalsFn: func(ctx context.Context, _ int64, _ bool, _, _ time.Time) ([]domain.DeckSignal, error) {
			select {
			case entered <- struct{}{}:
			default:
			}
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return signalsFixture(), nil
		},
	}
	c := cache.NewLRU(10, time.Minute)
	svc := newTestService(signals, c, 30*time.Second)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Recommend(firstCtx, 7, false)
		firstErr <- err
	}()
	<-entered

	secondDone := make(chan []domain.RecommendationEntry, 1)
	go func() {
		entries, err := svc.Recommend(context.Background(), 7, false)
		assert.NoError(t, err)
		secondDone <- entries
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.Len(t, <-secondDone, 2)
	assert.Equal(t, 1, c.Len())
}

func TestInvalidateUser(t *testing.T) {
	t.Parallel()

	signals := &mocks.MockSignalStore{
		DeckSignalsFn: func(context.Context, int64, bool, time.Time, time.Time) ([]domain.DeckSignal, error) {
			return signalsFixture(), nil
		},
	}
	c := cache.NewLRU(10, time.Minute)
	svc := newTestService(signals, c, 30*time.Second)
	ctx := context.Background()

	for _, call := range []struct {
		user int64
		mine bool
	}{{7, false}, {7, true}, {70, false}} {
		_, err := svc.Recommend(ctx, call.user, call.mine)
		require.NoError(t, err)
	}
	require.Equal(t, 3, c.Len())

	svc.InvalidateUser(ctx, 7)
	assert.Equal(t, 1, c.Len(), "only user 7's rankings are dropped")

	_, err := svc.Recommend(ctx, 7, false)
	require.NoError(t, err)
	assert.Equal(t, 4, signals.Calls())
}
