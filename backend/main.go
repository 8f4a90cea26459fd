package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"elcportal/backend/cache"
	"elcportal/backend/config"
	"elcportal/backend/middleware"
	"elcportal/backend/progress"
	"elcportal/backend/routes"
	"elcportal/backend/storage"
	"elcportal/backend/utils"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", "error", err)
	}
	if err := utils.Migrate(db); err != nil {
		logger.Fatal("database migration failed", "error", err)
	}

	// Object storage for lesson images
	var store storage.ObjectStore = storage.Unconfigured{}
	if cfg.StorageURL != "" {
		store = storage.NewSupabaseStore(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)
	} else {
		logger.Warn("STORAGE_URL not set, image uploads are disabled")
	}

	// Progress tracker, optionally backed by redis
	trackerOpts := []progress.Option{progress.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, progress cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rc.Close()
			trackerOpts = append(trackerOpts, progress.WithCache(rc, cfg.CacheTTL))
		}
	}
	tracker := progress.NewTracker(progress.NewGormStore(db), trackerOpts...)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "elc-portal",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    cfg.UploadMaxBytes + 1024*1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(compress.New())
	app.Use(etag.New())
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(middleware.Timeout(cfg.RequestTimeout))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		DB:      db,
		Cfg:     cfg,
		Log:     logger,
		Tracker: tracker,
		Store:   store,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
