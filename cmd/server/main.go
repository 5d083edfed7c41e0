// Command main is the entry point for the MarketLink API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdanbarkaath/marketlink/internal/bootstrap"
	"github.com/abdanbarkaath/marketlink/internal/config"
	"github.com/abdanbarkaath/marketlink/internal/observability"
	"github.com/abdanbarkaath/marketlink/internal/server"

	"github.com/gofiber/fiber/v2"
)

// @title MarketLink API
// @version 1.0
// @description Local service provider directory with moderated listings and inquiries

// @contact.name API Support
// @contact.email support@marketlink.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8460
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a session token.

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.TracingEnabled {
		exporter := "stdout"
		if cfg.OTLPEndpoint != "" {
			exporter = "otlp"
		}
		shutdownTracing, tracingErr := observability.InitTracing(observability.TracingConfig{
			ServiceName:  "marketlink-api",
			Environment:  cfg.Env,
			Enabled:      true,
			Exporter:     exporter,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: 1.0,
		})
		if tracingErr != nil {
			log.Printf("Tracing init failed, continuing without tracing: %v", tracingErr)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracing(ctx)
			}()
		}
	}

	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	srv.StartSessionSweeper(server.SessionSweepInterval)

	app := fiber.New(fiber.Config{
		AppName:   "MarketLink API",
		BodyLimit: 5 * 1024 * 1024, // 5MB limit
	})

	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
