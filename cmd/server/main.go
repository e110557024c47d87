package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garrettladley/ebaynotify/internal/client/ebay"
	"github.com/garrettladley/ebaynotify/internal/config"
	"github.com/garrettladley/ebaynotify/internal/metrics"
	"github.com/garrettladley/ebaynotify/internal/oauth"
	xredis "github.com/garrettladley/ebaynotify/internal/redis"
	"github.com/garrettladley/ebaynotify/internal/server"
	"github.com/garrettladley/ebaynotify/internal/service/keystore"
	"github.com/garrettladley/ebaynotify/internal/service/processor"
	"github.com/garrettladley/ebaynotify/internal/service/webhook"
	"github.com/garrettladley/ebaynotify/internal/storage"
	"github.com/garrettladley/ebaynotify/internal/xslog"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	keyPort        = "port"
	keyCacheSize   = "cache_size"
	keyCacheTTL    = "cache_ttl"
	keyTopics      = "topics"
	keyRateLimit   = "rate_limit"
	keyRateBurst   = "rate_burst"
	keyEnvironment = "environment"

	shutdownTimeout = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	warnIncompleteConfig(ctx, cfg.EBay, logger)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(promRegistry)
	if err != nil {
		return err
	}

	cache, closeCache, err := initKeyCache(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize key cache: %w", err)
	}
	defer closeCache()

	limiter := initRateLimiter(ctx, cfg, logger)
	defer func() { _ = limiter.Close() }()

	// Services
	store := keystore.NewStore(
		oauth.NewAppTokenProvider(),
		ebay.New(),
		cache,
		keystore.WithMetrics(m),
	)
	registry := processor.NewDefaultRegistry()
	topics := registry.Topics()
	logger.InfoContext(ctx, "registered notification processors", slog.Any(keyTopics, topics), xslog.Count(len(topics)))

	webhookService := webhook.NewProcessor(
		webhook.NewSignatureVerifier(store),
		registry,
		webhook.WithMetrics(m),
	)

	httpServer := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewHandler(server.Deps{
			Logger:         logger,
			Webhook:        webhookService,
			Config:         cfg.EBay,
			Limiter:        limiter,
			TrustedProxies: cfg.TrustedProxies,
			Metrics:        promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{Registry: promRegistry}),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(ctx, "starting server",
			xslog.Version(),
			slog.String(keyPort, cfg.Port),
			slog.String(keyEnvironment, cfg.EBay.Environment.String()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}

func warnIncompleteConfig(ctx context.Context, cfg config.EBay, logger *slog.Logger) {
	creds := cfg.CredentialsFor(cfg.Environment)
	if creds.ClientID == "" || creds.ClientSecret == "" {
		logger.WarnContext(ctx, "no client credentials for the active environment; notifications will be rejected",
			slog.String(keyEnvironment, cfg.Environment.String()))
	}
	if cfg.Endpoint == "" || cfg.VerificationToken == "" {
		logger.WarnContext(ctx, "EBAY_ENDPOINT or EBAY_VERIFICATION_TOKEN unset; endpoint challenges will fail")
	}
}

func initKeyCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.KeyCache, func(), error) {
	memory, err := storage.NewMemoryKeyCache(cfg.KeyCache.Size)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Redis.URL == "" {
		logger.InfoContext(ctx, "initializing in-memory key cache", slog.Int(keyCacheSize, cfg.KeyCache.Size))
		return memory, func() {}, nil
	}

	redisClient, err := xredis.New(ctx, xredis.Config{URL: cfg.Redis.URL})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis client: %w", err)
	}

	logger.InfoContext(ctx, "initializing tiered key cache (memory + Redis)",
		slog.Int(keyCacheSize, cfg.KeyCache.Size),
		slog.Duration(keyCacheTTL, cfg.KeyCache.TTL))

	shared := storage.NewRedisKeyCache(storage.RedisConfig{Client: redisClient, TTL: cfg.KeyCache.TTL})
	return storage.NewTieredKeyCache(memory, shared), closeRedis(ctx, redisClient, logger), nil
}

func closeRedis(ctx context.Context, client *redis.Client, logger *slog.Logger) func() {
	return func() {
		if err := client.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close redis client", xslog.Error(err))
		}
	}
}

func initRateLimiter(ctx context.Context, cfg config.Config, logger *slog.Logger) *storage.MemoryRateLimiter {
	logger.InfoContext(ctx, "initializing per-IP rate limiter",
		slog.Float64(keyRateLimit, cfg.RateLimit.Limit),
		slog.Int(keyRateBurst, cfg.RateLimit.Burst))
	return storage.NewMemoryRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Burst)
}
