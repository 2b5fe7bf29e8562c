package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// Job is a unit of recurring background work.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Run executes one pass of the job.
	Run(ctx context.Context) error
}

// PurgeSharesJob deletes share tokens whose expiry has passed.
type PurgeSharesJob struct {
	shares store.ShareStore
	now    func() time.Time
	logger *slog.Logger
}

var _ Job = (*PurgeSharesJob)(nil)

// NewPurgeSharesJob creates a PurgeSharesJob.
func NewPurgeSharesJob(shares store.ShareStore, log *slog.Logger) *PurgeSharesJob {
	if log == nil {
		log = slog.Default()
	}
	return &PurgeSharesJob{shares: shares, now: time.Now, logger: log}
}

func (j *PurgeSharesJob) Name() string { return "purge_expired_shares" }

func (j *PurgeSharesJob) Run(ctx context.Context) error {
	n, err := j.shares.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.FromContextOrDefault(ctx, j.logger).Info("purged expired shares",
			slog.Int64("count", n))
	}
	return nil
}

// Pruner drops expired entries from a cache and reports how many it removed.
type Pruner interface {
	Prune() int
}

// PruneCacheJob evicts expired cache entries so that they do not hold
// capacity until the next lookup.
type PruneCacheJob struct {
	cache  Pruner
	logger *slog.Logger
}

var _ Job = (*PruneCacheJob)(nil)

// NewPruneCacheJob creates a PruneCacheJob.
func NewPruneCacheJob(cache Pruner, log *slog.Logger) *PruneCacheJob {
	if log == nil {
		log = slog.Default()
	}
	return &PruneCacheJob{cache: cache, logger: log}
}

func (j *PruneCacheJob) Name() string { return "prune_cache" }

func (j *PruneCacheJob) Run(ctx context.Context) error {
	if n := j.cache.Prune(); n > 0 {
		logger.FromContextOrDefault(ctx, j.logger).Debug("pruned cache entries",
			slog.Int("count", n))
	}
	return nil
}
