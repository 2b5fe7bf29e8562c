// Package main implements the entry point for the flashdeck API server, which
// serves spaced-repetition study, deck management and deck recommendations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/platform/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("flashdeck exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashdeck",
		Short:         "Spaced-repetition flashcard API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := newServeCommand()
	root.AddCommand(serve, newMigrateCommand())
	// Running the binary without a subcommand starts the server.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func newServeCommand() *cobra.Command {
	var port int
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := initializeApp()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}

			if migrateFirst {
				if err := postgres.Migrate(cmd.Context(), db, postgres.MigrateUp, log); err != nil {
					_ = db.Close()
					return err
				}
			}

			app, err := newApplication(cmd.Context(), cfg, log, db)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override the configured server port")
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(postgres.MigrationCommands, "|") + "]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeApp()
			if err != nil {
				return err
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("error closing database connection", slog.String("error", err.Error()))
				}
			}()

			return postgres.Migrate(cmd.Context(), db, args[0], log)
		},
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))
	log.Debug("optional features",
		slog.Bool("card_generation", cfg.LLM.GeminiAPIKey != ""),
		slog.Int("recommendation_cache_seconds", cfg.Recommendation.CacheSeconds))

	return cfg, log, nil
}
