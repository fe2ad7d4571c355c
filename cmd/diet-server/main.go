package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"diet-planner/internal/app"
	"diet-planner/internal/cache"
	"diet-planner/internal/catalog"
	"diet-planner/internal/config"
	"diet-planner/internal/database"
	"diet-planner/internal/logger"
	"diet-planner/internal/lp"
	"diet-planner/internal/metrics"
	"diet-planner/internal/planner"
	"diet-planner/internal/server"
	"diet-planner/internal/telegram"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.LogEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database and food catalog
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	tables, err := config.LoadTables(cfg.TablesPath)
	if err != nil {
		logger.L().Fatal("Failed to load planner tables", zap.Error(err))
	}

	seed, err := catalog.Default()
	if err != nil {
		logger.L().Fatal("Failed to load built-in catalog", zap.Error(err))
	}
	cat, seeded, err := catalog.NewRepository(db.SQL).LoadOrSeed(ctx, seed)
	if err != nil {
		logger.L().Fatal("Failed to load food catalog", zap.Error(err))
	}
	logger.Info("Food catalog loaded", zap.Int("foods", cat.Len()), zap.Bool("seeded", seeded))

	// 3. Plan cache: Redis when configured, in-process otherwise
	var planCache cache.Cache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			logger.L().Fatal("Failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rc.Close()
		planCache = rc
	} else {
		planCache = cache.NewMemoryCache(cfg.CacheTTL)
	}

	// 4. Services
	metricsStore := metrics.NewStore(db.SQL)
	mealPlanner := planner.NewPlanner(cat, lp.NewSimplex(), planner.RulesFromTables(tables))
	application := app.NewApp(mealPlanner, planCache, metricsStore, tables, cfg.SolveTimeout)

	opts := server.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DatabasePath:       cfg.DatabasePath,
		TrustProxy:         cfg.TrustProxy,
	}

	// 5. Telegram Bot (optional)
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, application, cat.Names(), metricsStore)
		if err != nil {
			logger.L().Fatal("Failed to initialize Telegram Bot", zap.Error(err))
		}
		opts.Webhook = bot
	}

	handler := server.New(application, opts)
	defer handler.Close()

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Diet planner server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
