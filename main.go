package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"teamspace/config"
	"teamspace/middleware"
	"teamspace/realtime"
	"teamspace/routes"
	"teamspace/storage"
	"teamspace/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize attachment storage
	store, err := buildStorage()
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS and panic recovery middleware
	app.Use(middleware.CORS())
	app.Use(middleware.Recover())

	// Start the push hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub(logrus.NewEntry(logrus.StandardLogger()))
	go hub.Run(ctx)

	// Start the attachment cleanup worker
	cleanupWorker := worker.NewCleanupWorker(config.DB, store, log.New(os.Stdout, "CLEANUP: ", log.LstdFlags))
	go cleanupWorker.Start(ctx)

	// Serve uploaded files directly when using disk storage
	if config.AppConfig.StorageDriver == "disk" {
		app.Static("/files", config.AppConfig.UploadDir)
	}

	// Setup routes
	routes.SetupRoutes(app, config.DB, hub, store)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

func buildStorage() (storage.Store, error) {
	if config.AppConfig.StorageDriver == "s3" {
		return storage.NewS3Store(
			context.Background(),
			config.AppConfig.S3Region,
			config.AppConfig.S3Bucket,
			config.AppConfig.S3BaseURL,
		)
	}
	return storage.NewDiskStore(config.AppConfig.UploadDir, config.AppConfig.PublicBaseURL), nil
}
