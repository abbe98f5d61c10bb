package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-session/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-session/internal/config"
	"github.com/gokatarajesh/quiz-session/internal/db/queries"
	"github.com/gokatarajesh/quiz-session/internal/db/repository"
	"github.com/gokatarajesh/quiz-session/internal/generation"
	"github.com/gokatarajesh/quiz-session/internal/generation/httpsource"
	"github.com/gokatarajesh/quiz-session/internal/generation/openai"
	"github.com/gokatarajesh/quiz-session/internal/logging"
	"github.com/gokatarajesh/quiz-session/internal/metrics"
	"github.com/gokatarajesh/quiz-session/internal/play"
	"github.com/gokatarajesh/quiz-session/internal/server"
	"github.com/gokatarajesh/quiz-session/internal/session"
	"github.com/gokatarajesh/quiz-session/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool    *pgxpool.Pool
	redis   *redis.Client
	http    *http.Server
	service *play.Service
}

// New bootstraps the logger, optional Postgres and Redis, the generation
// source and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Str("source", cfg.Generator.Source).Msg("starting application bootstrap")

	m := metrics.New(prometheus.DefaultRegisterer)

	var (
		redisClient *redis.Client
		store       session.Store
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		store = session.NewRedisStore(redisClient, cfg.Redis.SnapshotTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("session snapshots stored in redis")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; session snapshots kept in memory")
	}

	var (
		pool    *pgxpool.Pool
		archive play.ResultArchive
	)
	if cfg.Postgres.Enabled() {
		var err error
		pool, err = pgxpool.New(ctx, cfg.Postgres.DSN()+" pool_max_conns=10")
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		archive = repository.NewResultRepository(queries.New(pool))
		logger.Info().Str("host", cfg.Postgres.Host).Msg("results archive enabled")
	} else {
		logger.Warn().Msg("PG_HOST not set; results archive disabled")
	}

	source, err := newSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	client := generation.NewClient(source, generation.Options{
		MaxAttempts: cfg.Generator.MaxAttempts,
		BaseDelay:   cfg.Generator.BaseDelay,
		Metrics:     m,
	}, logger)

	tokens := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(cfg.Security.SessionSecret),
		TTL:    cfg.Security.TokenTTL,
		Issuer: cfg.Name,
	})

	hub := ws.NewHub(logger)
	service := play.NewService(
		session.NewManager(store, logger),
		client,
		play.ServiceOptions{
			Archive:      archive,
			Publisher:    play.NewHubPublisher(hub, logger),
			Metrics:      m,
			CallDeadline: cfg.Generator.CallDeadline,
		},
		logger,
	)
	handlers := play.NewHandlers(service, tokens, hub, logger)

	apiServer := server.NewHTTPServer(cfg, logger, server.Dependencies{Pool: pool, Redis: redisClient}, nil, handlers.Routes)

	return &Application{
		cfg:     cfg,
		logger:  logger,
		pool:    pool,
		redis:   redisClient,
		http:    apiServer,
		service: service,
	}, nil
}

func newSource(cfg *config.App, logger zerolog.Logger) (generation.Source, error) {
	switch cfg.Generator.Source {
	case config.SourceMock:
		return &generation.MockSource{Delay: cfg.Generator.MockDelay}, nil
	case config.SourceHTTP:
		return httpsource.New(httpsource.Config{
			BaseURL: cfg.Generator.URL,
			APIKey:  cfg.Generator.APIKey,
			Timeout: cfg.Generator.HTTPTimeout,
		}, logger), nil
	case config.SourceOpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown generator source %q", cfg.Generator.Source)
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	// let in-flight generation and feedback calls land before closing stores
	done := make(chan struct{})
	go func() {
		a.service.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.logger.Warn().Msg("background generation still running at shutdown")
	}

	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
