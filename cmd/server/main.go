package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mgesteban/boardbreeze-splitter/internal/cleanup"
	"github.com/mgesteban/boardbreeze-splitter/internal/config"
	"github.com/mgesteban/boardbreeze-splitter/internal/dispatch"
	"github.com/mgesteban/boardbreeze-splitter/internal/handlers"
	"github.com/mgesteban/boardbreeze-splitter/internal/metrics"
	"github.com/mgesteban/boardbreeze-splitter/internal/pipeline"
	"github.com/mgesteban/boardbreeze-splitter/internal/probe"
	"github.com/mgesteban/boardbreeze-splitter/internal/publish"
	"github.com/mgesteban/boardbreeze-splitter/internal/storage"
	"github.com/mgesteban/boardbreeze-splitter/internal/transcode"
)

func main() {
	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cleanup.EnsureTempDirExists(cfg.Storage.TempDir); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}

	log.Println("Initializing components...")
	ctx := context.Background()

	// Object store
	var store storage.ObjectStore
	switch cfg.Storage.Backend {
	case config.BackendS3:
		store, err = storage.NewS3Store(ctx, cfg.Storage.Region)
		if err != nil {
			log.Fatalf("Failed to initialize S3 store: %v", err)
		}
		log.Printf("Using S3 object store in %s", cfg.Storage.Region)
	case config.BackendFilesystem:
		store, err = storage.NewFileStore(cfg.Storage.LocalRoot)
		if err != nil {
			log.Fatalf("Failed to initialize filesystem store: %v", err)
		}
		log.Printf("Using filesystem object store at %s", cfg.Storage.LocalRoot)
	}

	// Media tools
	prober := probe.NewFFProbe("")
	transcoder, err := transcode.NewFFmpeg("", cfg.Pipeline.TargetCodec)
	if err != nil {
		log.Fatalf("Failed to initialize transcoder: %v", err)
	}

	// Segments land in the configured output bucket, or back in each
	// source's own bucket when none is configured.
	publisher := publish.NewPublisher(store, cfg.Storage.OutputBucket, transcoder.Extension())

	// Transcription dispatcher (optional)
	var dispatcher pipeline.Dispatcher
	if cfg.Pipeline.DispatchEnabled {
		svc, err := dispatch.NewTranscribeService(ctx, cfg.Storage.Region)
		if err != nil {
			log.Fatalf("Failed to initialize transcription service: %v", err)
		}
		dispatcher = dispatch.NewDispatcher(svc, cfg.Storage.OutputBucket,
			cfg.Pipeline.LanguageCode, cfg.Pipeline.TargetCodec, nil)
		log.Println("Automatic transcription dispatch enabled")
	} else {
		log.Println("Automatic transcription dispatch disabled")
	}

	m := metrics.NewMetrics()

	pipe := pipeline.New(store, prober, transcoder, publisher, dispatcher, m, pipeline.Config{
		MaxFileDurationSeconds: cfg.Pipeline.MaxFileDurationSeconds,
		SegmentDurationSeconds: cfg.Pipeline.SegmentDurationSeconds,
		WorkerCount:            cfg.Pipeline.WorkerCount,
		TempDir:                cfg.Storage.TempDir,
	})

	// Cleanup scheduler
	cleanupScheduler := cleanup.NewScheduler(
		cfg.Storage.TempDir,
		cfg.Cleanup.IntervalMinutes,
		cfg.Cleanup.MaxAgeHours,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	processHandler := handlers.NewProcessHandler(pipe, cfg.Pipeline.GetTimeoutDuration())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})
	app.Post("/process", processHandler.Handle)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /process - Split a recording and dispatch transcription")
	log.Println("   GET  /health  - Health check")
	log.Println("   GET  /metrics - Prometheus metrics")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
