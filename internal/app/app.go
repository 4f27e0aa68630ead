package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/db/migrate"
	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	"github.com/gokatarajesh/trivia-api/internal/db/sqlite"
	"github.com/gokatarajesh/trivia-api/internal/feed"
	"github.com/gokatarajesh/trivia-api/internal/logging"
	"github.com/gokatarajesh/trivia-api/internal/question"
	"github.com/gokatarajesh/trivia-api/internal/server"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// Application aggregates shared infrastructure (store, feed, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool   *pgxpool.Pool
	sqlite *sqlite.Store
	redis  *redis.Client
	http   *http.Server

	broadcaster *feed.Broadcaster
	bgCancels   []context.CancelFunc
}

// New bootstraps the logger, the configured store, the optional Redis feed
// and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Str("store", cfg.Store.Driver).Msg("starting application bootstrap")

	a := &Application{
		cfg:       cfg,
		logger:    logger,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}

	pingers := map[string]server.PingFunc{}

	var (
		questions  question.QuestionStore
		categories question.CategoryStore
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.sqlite = store
		questions, categories = store, store
		pingers["sqlite"] = store.Ping
	default:
		pool, err := pgxpool.New(ctx, cfg.Postgres.PoolConnString())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		if cfg.Store.AutoMigrate {
			if err := migratePool(ctx, pool); err != nil {
				a.closeStores()
				return nil, err
			}
			logger.Info().Msg("database migrations applied")
		}
		questions = repository.NewQuestionRepository(pool)
		categories = repository.NewCategoryRepository(pool)
		pingers["postgres"] = pool.Ping
	}

	var publisher question.Publisher
	var feedHandler http.HandlerFunc
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		pingers["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }

		hub := ws.NewHub(logger)
		publisher = feed.NewPublisher(a.redis, cfg.Redis.EventsChannel)
		a.broadcaster = feed.NewBroadcaster(a.redis, hub, cfg.Redis.EventsChannel, logger)
		feedHandler = feed.NewHandler(hub, server.NewWSUpgrader(cfg.CORS), logger).HandleWebSocket
	} else {
		logger.Warn().Msg("REDIS_ADDR not configured; question feed disabled")
	}

	questionSvc := question.NewService(questions, categories, question.ServiceOptions{
		Publisher: publisher,
		Metrics:   question.NewMetrics(prometheus.DefaultRegisterer),
	}, logger)

	a.http = server.NewHTTPServer(cfg, logger, server.Routes{
		Questions: question.NewHTTPHandlers(questionSvc, logger),
		Feed:      feedHandler,
		Pingers:   pingers,
	})

	return a, nil
}

func migratePool(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := migrate.Run(ctx, db, migrate.CommandUp); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.closeStores()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) closeStores() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.sqlite != nil {
		if err := a.sqlite.Close(); err != nil {
			a.logger.Error().Err(err).Msg("sqlite close error")
		}
	}
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.broadcaster.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("question broadcaster stopped")
			}
		}()
	}
}
