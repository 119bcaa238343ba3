// Command main is the entry point for the GiftShare backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftshare/internal/config"
	"giftshare/internal/observability"
	"giftshare/internal/server"
)

// @title GiftShare API
// @version 1.0
// @description Gift wishlists with share links and one-shot reservations.

// @contact.name API Support
// @contact.email support@giftshare.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "giftshare-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Create server with dependency injection
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracer shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
