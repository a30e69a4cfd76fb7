package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookreviews/internal/auth"
	"bookreviews/internal/book"
	"bookreviews/internal/config"
	"bookreviews/internal/httpx"
	"bookreviews/internal/logging"
	"bookreviews/internal/metadata"
	"bookreviews/internal/platform/gemini"
	"bookreviews/internal/platform/googlebooks"
	"bookreviews/internal/popular"
	"bookreviews/internal/review"
	"bookreviews/internal/session"
	"bookreviews/internal/user"
)

const (
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg.Database.DSN)
	defer dbPool.Close()

	timeout := cfg.Database.QueryTimeout

	booksClient := googlebooks.NewClient(googlebooks.Options{
		BaseURL:    cfg.Metadata.BaseURL,
		APIKey:     cfg.Metadata.APIKey,
		Timeout:    cfg.Metadata.Timeout,
		RPS:        cfg.Metadata.RPS,
		MaxRetries: cfg.Metadata.MaxRetries,
	})
	summaryClient := gemini.NewClient(gemini.Options{
		BaseURL: cfg.Summary.BaseURL,
		APIKey:  cfg.Summary.APIKey,
		Model:   cfg.Summary.Model,
		Timeout: cfg.Summary.Timeout,
	})
	if !summaryClient.Enabled() {
		logging.Warn().Msg("GEMINI_API_KEY not set; book summaries are disabled")
	}
	metadataService := metadata.NewService(booksClient, summaryClient, metadata.DefaultBreakerSettings)

	userService := user.NewService(user.NewPostgresRepo(dbPool, timeout))
	sessionService := session.NewService(
		session.NewPostgresRepo(dbPool, timeout),
		session.NewBlacklistPostgresRepo(dbPool, timeout),
	)
	authService := auth.NewService(cfg.Auth.JWTSecret, userService, sessionService)
	bookService := book.NewService(book.NewPostgresRepo(dbPool, timeout), metadataService)
	reviewService := review.NewService(review.NewPostgresRepo(dbPool, timeout), bookService)
	pipeline := popular.NewPipeline(metadataService, popular.WithWorkers(cfg.Popular.Workers))
	popularService := popular.NewService(bookService, pipeline, cfg.Popular.DefaultLimit)

	h := handlers{
		users:    user.NewHTTPHandler(userService),
		auth:     auth.NewHTTPHandler(authService),
		sessions: session.NewHTTPHandler(sessionService),
		books:    book.NewHTTPHandler(bookService),
		reviews:  review.NewHTTPHandler(reviewService),
		popular:  popular.NewHTTPHandler(popularService),
	}

	proxies, err := httpx.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}
	limiter := httpx.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	go limiter.Run(ctx)
	go sessionService.RunCleanup(ctx, sessionCleanupInterval)

	router := newRouter(h, httpx.AuthMiddleware(cfg.Auth.JWTSecret, sessionService), dbPool.Ping)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newHandler(cfg.Server, router, limiter, proxies),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func mustOpenDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot create db pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logging.Fatal().Err(err).Str("dsn", config.RedactDSN(dsn)).Msg("cannot ping database")
	}
	logging.Info().Msg("database connection OK")
	return pool
}
