package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/redact"
)

// DefaultJobTimeout bounds a single run of a scheduled job.
const DefaultJobTimeout = time.Minute

// Scheduler runs Jobs on cron schedules. Overlapping runs of the same job are
// skipped and panics inside a job are recovered and logged.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancelFunc context.CancelFunc
	jobTimeout time.Duration
	logger     *slog.Logger
	errHandler func(job Job, err error)

	mu      sync.Mutex
	started bool
}

// NewScheduler creates a Scheduler. Call Add for each job, then Start.
func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "scheduler"))

	cronLog := cronLogger{logger: log}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		ctx:        ctx,
		cancelFunc: cancel,
		jobTimeout: DefaultJobTimeout,
		logger:     log,
	}
	s.errHandler = func(job Job, err error) {
		s.logger.Error("scheduled job failed",
			slog.String("job", job.Name()),
			slog.String("error", redact.Error(err)))
	}
	return s
}

// SetErrorHandler replaces the handler called when a job returns an error.
func (s *Scheduler) SetErrorHandler(handler func(job Job, err error)) {
	s.errHandler = handler
}

// Add registers job to run on spec, which accepts standard five-field cron
// expressions and descriptors such as "@hourly" or "@every 10m".
func (s *Scheduler) Add(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunNow(job) }); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, job.Name(), err)
	}
	s.logger.Info("scheduled job registered",
		slog.String("job", job.Name()),
		slog.String("schedule", spec))
	return nil
}

// RunNow executes job once in the calling goroutine.
func (s *Scheduler) RunNow(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.jobTimeout)
	defer cancel()

	log := s.logger.With(
		slog.String("job", job.Name()),
		slog.String("run_id", uuid.NewString()),
	)
	ctx = logger.WithLogger(ctx, log)

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.errHandler(job, err)
		return
	}
	log.Debug("scheduled job finished", slog.Duration("duration", time.Since(start)))
}

// Start begins running the registered jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancelFunc()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]any{slog.String("error", redact.Error(err))}, keysAndValues...)
	l.logger.Error(msg, args...)
}
