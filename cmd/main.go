package main

import (
	"context"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/productbird/connector/config"
	"github.com/productbird/connector/internal/api/client"
	"github.com/productbird/connector/internal/api/middleware"
	"github.com/productbird/connector/internal/api/v1/handlers"
	"github.com/productbird/connector/internal/api/v1/routes"
	"github.com/productbird/connector/internal/catalog"
	"github.com/productbird/connector/internal/db"
	"github.com/productbird/connector/internal/db/repos"
	"github.com/productbird/connector/internal/logger"
	"github.com/productbird/connector/internal/reconcile"
	"github.com/productbird/connector/internal/sweep"
	"github.com/productbird/connector/internal/webhook"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}
	logger.InitializeAndConfigure()

	gormDB, err := db.NewFromEnv()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	apiClient, err := client.NewClient(&client.Options{
		BaseURL: config.GetEnv(config.EnvAPIBaseURL, client.ProdBaseURL),
		APIKey:  config.GetEnv(config.EnvAPIKey, ""),
	})
	if err != nil {
		logger.Fatalf("Failed to create API client: %v", err)
	}

	records := repos.NewRecordRepository(gormDB)
	engine := reconcile.NewEngine(records, catalog.NewGormStore(gormDB), apiClient, reconcile.Options{
		Tone:            config.GetEnv(config.EnvTone, ""),
		Formality:       config.GetEnv(config.EnvFormality, ""),
		CallbackBaseURL: config.GetEnv(config.EnvCallbackBaseURL, ""),
	})

	verifier := webhook.NewVerifier(config.GetEnv(config.EnvWebhookSecret, ""), webhook.DefaultMaxSkew)
	descriptionHandler := handlers.NewDescriptionHandler(engine, verifier)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})
	app.Use(middleware.Logger())

	routes.RegisterRoutes(app, descriptionHandler, config.GetEnv(config.EnvManagementToken, ""))

	interval := sweep.DefaultInterval
	if raw := config.GetEnv(config.EnvSweepInterval, ""); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logger.Fatalf("Invalid %s: %v", config.EnvSweepInterval, err)
		}
		interval = parsed
	}
	runner := sweep.NewRunner(engine, records, interval)
	go runner.Start(context.Background())

	port := config.GetEnv(config.EnvServerPort, routes.DefaultPort)
	logger.Infof("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
