package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"statusmirror/internal/config"
	"statusmirror/internal/httpserver"
	"statusmirror/internal/httpserver/deps"
	"statusmirror/internal/logger"
	"statusmirror/internal/mirror"
	"statusmirror/internal/redis"
	"statusmirror/internal/scheduler"
	"statusmirror/internal/sources/kuma"
	"statusmirror/internal/sources/pagesfile"
	redisstore "statusmirror/internal/store/redis"
	"statusmirror/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	prewarmer   *scheduler.Prewarmer
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// The pages file is the process's source of truth; refusing to start
	// without a valid one beats serving a broken mirror.
	base, err := pagesfile.NewLoader(cfg.PagesFile).Load()
	if err != nil {
		loggerClient.Errorf("Failed to load pages file %s: %v", cfg.PagesFile, err)
		os.Exit(1)
	}
	loggerClient.Info("pages configuration loaded",
		logger.String("file", cfg.PagesFile),
		logger.String("base_url", base.BaseURL),
		logger.Int("pages", len(base.Pages)),
		logger.String("default_page", base.DefaultPageID))

	// Snapshot cache is optional; without it every request scrapes upstream.
	var redisClient *goredis.Client
	var cache *redisstore.Store
	if cfg.CacheEnabled() {
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to redis: %v", err)
			os.Exit(1)
		}
		cache = redisstore.NewStore(redisClient)
		loggerClient.Info("snapshot cache enabled",
			logger.String("addr", cfg.RedisAddr),
			logger.Duration("ttl", cfg.SnapshotTTL))
	} else {
		loggerClient.Info("snapshot cache disabled, scraping upstream per request")
	}

	fetcher := kuma.NewFetcher(kuma.FetcherOptions{
		BaseURL:      base.BaseURL,
		Timeout:      cfg.UpstreamTimeout,
		UserAgent:    cfg.UpstreamUserAgent,
		MaxRedirects: cfg.UpstreamMaxRedirects,
	})

	mirrorService := mirror.New(mirror.Options{
		Base:        base,
		Fetcher:     fetcher,
		Logger:      loggerClient,
		Cache:       cache,
		SnapshotTTL: cfg.SnapshotTTL,
	})

	var prewarmer *scheduler.Prewarmer
	if cfg.PrewarmInterval > 0 {
		prewarmer = scheduler.NewPrewarmer(mirrorService, loggerClient, cfg.PrewarmInterval)
	}

	d := deps.Deps{
		Logger:       loggerClient,
		Mirror:       mirrorService,
		Cache:        cache,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		APIMaxAge:    cfg.APIMaxAge,
		RateBurst:    cfg.RateBurst,
		RateRefill:   cfg.RateRefillPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		prewarmer:   prewarmer,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting statusmirror v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("statusmirror %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.prewarmer != nil {
		a.prewarmer.Start(ctx)
		a.logger.Info("snapshot prewarmer started",
			logger.Duration("interval", a.cfg.PrewarmInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.prewarmer != nil {
		a.prewarmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ statusmirror stopped cleanly")
	return nil
}
