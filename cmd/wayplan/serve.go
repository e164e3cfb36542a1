package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/config"
	"github.com/harborline/wayplan/internal/httpapi"
	"github.com/harborline/wayplan/internal/planner"
	"github.com/harborline/wayplan/internal/planstore"
)

// shutdownTimeout bounds the drain of in-flight requests on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

// runServe starts the REST API server and blocks until a signal arrives.
func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	sink, closeSink := buildSink(cfg)
	defer closeSink()

	pipe := planner.NewPipeline(
		buildModel(cfg),
		buildWeather(cfg),
		buildPlaces(cfg),
		planner.WithConfig(plannerConfig(cfg)),
		planner.WithAuditSink(sink),
	)

	srv := httpapi.NewServer(pipe, store,
		httpapi.WithVersion(version),
		httpapi.WithComponent("database", store.Ping),
		httpapi.WithComponent("ai_service", keyCheck(cfg.GeminiAPIKey)),
		httpapi.WithComponent("weather_service", keyCheck(cfg.WeatherAPIKey)),
		httpapi.WithComponent("search_service", keyCheck(cfg.SearchAPIKey)),
	)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("wayplan listening on %s", cfg.Addr)
		errCh <- srv.Serve(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// openStore connects to MongoDB when configured, falling back to the
// in-memory store so the server still comes up.
func openStore(ctx context.Context, cfg *config.Config) (planstore.Store, func()) {
	if cfg.MongoURI == "" {
		log.Printf("WARNING: no MONGODB_URI configured, plans will not survive restarts")
		return planstore.NewMemory(), func() {}
	}

	mongo, err := planstore.NewMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Printf("WARNING: mongodb unavailable (%v), falling back to in-memory store", err)
		return planstore.NewMemory(), func() {}
	}

	return mongo, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongo.Close(closeCtx); err != nil {
			log.Printf("WARNING: mongodb close: %v", err)
		}
	}
}

// buildSink writes per-trip audit files, mirrored to a Redis stream when one
// is configured.
func buildSink(cfg *config.Config) (audit.Sink, func()) {
	fileSink := audit.NewFileSink(cfg.TripLogDir)
	closeFiles := func() {
		if err := fileSink.Close(); err != nil {
			log.Printf("WARNING: audit: close trip logs: %v", err)
		}
	}

	if cfg.RedisAddr == "" {
		return fileSink, closeFiles
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	sink := audit.NewMultiSink(fileSink, audit.NewStreamSink(client))
	return sink, func() {
		closeFiles()
		if err := client.Close(); err != nil {
			log.Printf("WARNING: audit: close redis: %v", err)
		}
	}
}

// keyCheck reports a component as available when its API key is configured.
func keyCheck(key string) func(context.Context) error {
	return func(context.Context) error {
		if key == "" {
			return errors.New("no api key configured")
		}
		return nil
	}
}
