package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mkodama/tubemark/internal/config"
	"github.com/mkodama/tubemark/internal/display"
	"github.com/mkodama/tubemark/internal/httpserver"
	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/metrics"
	"github.com/mkodama/tubemark/internal/notify"
	"github.com/mkodama/tubemark/internal/redis"
	"github.com/mkodama/tubemark/internal/scheduler"
	"github.com/mkodama/tubemark/internal/store"
	"github.com/mkodama/tubemark/internal/store/redisslot"
	"github.com/mkodama/tubemark/internal/version"
	"github.com/mkodama/tubemark/internal/youtube"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	redisClient  *goredis.Client
	store        *store.CollectionStore
	sweeper      *scheduler.NoticeSweeper
	seedReloader *scheduler.SeedReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	formatter := display.NewFormatter(cfg.DisplayLocale)
	loggerClient.Info("display formatter initialized",
		logger.String("locale", formatter.Locale()))

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Load the persisted collection into memory
	collectionStore := store.NewCollectionStore(redisslot.New(redisClient), formatter, loggerClient)
	collectionStore.Load(context.Background())
	collector.SetCollectionSize(collectionStore.Len())

	// Metadata gateway - the credential never leaves this process
	if cfg.YouTubeAPIKey == "" {
		loggerClient.Warn("YOUTUBE_API_KEY not set, metadata fetches will fail until configured")
	}
	gateway := youtube.NewClient(
		&http.Client{Timeout: cfg.FetchTimeout},
		cfg.YouTubeAPIKey,
		"",
		loggerClient,
		collector,
	)
	videoMapper := youtube.NewMapper(formatter)

	notices := notify.NewCenter(cfg.NoticeTTL)
	sweeper := scheduler.NewNoticeSweeper(notices, loggerClient, cfg.NoticeSweepInterval)

	// One provider fetch in flight, shared between the add endpoint and
	// the seed reloader.
	fetchGate := make(chan struct{}, 1)

	// Initialize seed reloader (if seed file is configured)
	var seedReloader *scheduler.SeedReloader
	var seedReloadTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed reloader",
			logger.String("file", cfg.SeedFile))
		seedReloadTrigger = make(chan struct{}, 1)
		seedReloader = scheduler.NewSeedReloader(
			cfg.SeedFile,
			collectionStore,
			gateway,
			videoMapper,
			fetchGate,
			loggerClient,
			cfg.SeedReloadInterval,
			seedReloadTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, seeding disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		RedisClient:       redisClient,
		Store:             collectionStore,
		Gateway:           gateway,
		VideoMapper:       videoMapper,
		Notices:           notices,
		Metrics:           collector,
		Gatherer:          registry,
		FetchGate:         fetchGate,
		SeedReloadTrigger: seedReloadTrigger,
		RateBurst:         cfg.RateBurst,
		RateRefillPerMin:  cfg.RateRefillPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		redisClient:  redisClient,
		store:        collectionStore,
		sweeper:      sweeper,
		seedReloader: seedReloader,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Tubemark v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Tubemark %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start notice sweeper
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start notice sweeper: %w", err)
	}
	a.logger.Info("notice sweeper started",
		logger.Duration("interval", a.cfg.NoticeSweepInterval))

	// Start seed reloader (if enabled)
	if a.seedReloader != nil {
		if err := a.seedReloader.Start(ctx); err != nil {
			// Seeding is a convenience; a broken seed file should not
			// take the service down.
			a.logger.Error("failed to start seed reloader", logger.Error(err))
		} else {
			a.logger.Info("seed reloader started",
				logger.Duration("interval", a.cfg.SeedReloadInterval))
		}
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

	a.sweeper.Stop()
	if a.seedReloader != nil {
		a.seedReloader.Stop()
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

	a.logger.Info("✅ Tubemark stopped cleanly")
	return nil
}
