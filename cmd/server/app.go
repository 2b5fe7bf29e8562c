package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/flashdeck/internal/api"
	apiMiddleware "github.com/phrazzld/flashdeck/internal/api/middleware"
	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/domain/srs"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/platform/cache"
	"github.com/phrazzld/flashdeck/internal/platform/gemini"
	"github.com/phrazzld/flashdeck/internal/platform/postgres"
	"github.com/phrazzld/flashdeck/internal/service"
	"github.com/phrazzld/flashdeck/internal/service/auth"
	"github.com/phrazzld/flashdeck/internal/service/recommendation"
	"github.com/phrazzld/flashdeck/internal/service/study"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/phrazzld/flashdeck/internal/task"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore       store.UserStore
	deckStore       store.DeckStore
	cardStore       store.CardStore
	shareStore      store.ShareStore
	assignmentStore store.AssignmentStore
	reviewStore     store.ReviewStore
	signalStore     store.SignalStore

	jwtService     auth.JWTService
	generator      generation.Generator
	recCache       *cache.LRU
	userService    service.UserService
	deckService    service.DeckService
	adminService   service.AdminService
	studyService   study.Service
	recommendation *recommendation.Service

	scheduler *task.Scheduler
}

// newApplication wires stores, services and background jobs around an open
// database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.deckStore = postgres.NewPostgresDeckStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.shareStore = postgres.NewPostgresShareStore(db, logger)
	app.assignmentStore = postgres.NewPostgresAssignmentStore(db, logger)
	app.reviewStore = postgres.NewPostgresReviewStore(db, logger)
	app.signalStore = postgres.NewPostgresSignalStore(db, logger)

	app.generator, err = setupGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	app.recCache = cache.NewLRU(cfg.Recommendation.CacheCapacity,
		time.Duration(cfg.Recommendation.CacheSeconds)*time.Second)
	var recCache recommendation.Cache
	if cfg.Recommendation.CacheSeconds > 0 {
		recCache = app.recCache
	}
	app.recommendation = recommendation.NewService(app.signalStore, recCache, recommendation.Config{
		Weights: domain.Weights{
			Due:      cfg.Recommendation.Weights.Due,
			Assigned: cfg.Recommendation.Weights.Assigned,
			Recent:   cfg.Recommendation.Weights.Recent,
			Wrong:    cfg.Recommendation.Weights.Wrong,
		},
		CacheTTL: time.Duration(cfg.Recommendation.CacheSeconds) * time.Second,
	}, logger)

	app.studyService = study.NewService(study.Deps{
		DB:          db,
		CardStore:   app.cardStore,
		DeckStore:   app.deckStore,
		ReviewStore: app.reviewStore,
		SRS:         srs.NewDefaultService(),
		Rankings:    app.recommendation,
	}, cfg.Study.DueLimit, logger)

	app.userService = service.NewUserService(db, app.userStore, app.jwtService, auth.NewBcryptVerifier(), logger)
	app.adminService = service.NewAdminService(app.userStore, app.deckStore, app.assignmentStore, logger)
	app.deckService, err = service.NewDeckService(service.DeckServiceDeps{
		DB:         db,
		DeckStore:  app.deckStore,
		CardStore:  app.cardStore,
		ShareStore: app.shareStore,
		Generator:  app.generator,
		ShareTTL:   time.Duration(cfg.Maintenance.ShareTTLHours) * time.Hour,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	app.scheduler, err = setupScheduler(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup scheduler: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupGenerator returns the Gemini card generator, or nil when no API key is
// configured so that card generation reports itself as disabled.
func setupGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Info("card generation disabled: no Gemini API key configured")
		return nil, nil
	}

	gen, err := gemini.NewGeminiGenerator(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", slog.String("model", cfg.ModelName))
	return gen, nil
}

// setupScheduler registers the maintenance jobs. The scheduler is started by Run.
func setupScheduler(app *application) (*task.Scheduler, error) {
	scheduler := task.NewScheduler(app.logger)
	schedule := app.config.Maintenance.PurgeSchedule

	if err := scheduler.Add(schedule, task.NewPurgeSharesJob(app.shareStore, app.logger)); err != nil {
		return nil, err
	}
	if app.config.Recommendation.CacheSeconds > 0 {
		if err := scheduler.Add(schedule, task.NewPruneCacheJob(app.recCache, app.logger)); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

// setupRouter builds the HTTP handler tree.
func (app *application) setupRouter() http.Handler {
	rl := app.config.RateLimit
	return api.NewRouter(api.RouterDeps{
		Auth:            api.NewAuthHandler(app.userService, app.logger),
		Study:           api.NewStudyHandler(app.studyService, app.logger),
		Recommendations: api.NewRecommendationHandler(app.recommendation, app.logger),
		Decks:           api.NewDeckHandler(app.deckService, app.logger),
		Admin:           api.NewAdminHandler(app.adminService, app.logger),
		Health:          api.NewHealthHandler(app.db),
		AuthMiddleware:  apiMiddleware.NewAuthMiddleware(app.jwtService),
		AuthRateLimiter: apiMiddleware.NewRateLimiter(rl.AuthRequestsPerSecond, rl.AuthBurst),
		Logger:          app.logger,
	})
}

// Run starts background jobs and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	app.scheduler.Start()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background jobs and closes the database.
func (app *application) cleanup(ctx context.Context) {
	if app.scheduler != nil {
		if err := app.scheduler.Stop(ctx); err != nil {
			app.logger.Warn("scheduler did not stop cleanly", slog.String("error", err.Error()))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
