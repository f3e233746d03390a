package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questhub/questhub/internal/api"
	"github.com/questhub/questhub/internal/content"
	"github.com/questhub/questhub/internal/curriculum"
	"github.com/questhub/questhub/internal/hub"
	"github.com/questhub/questhub/internal/persist"
	"github.com/questhub/questhub/internal/platform/cache"
	"github.com/questhub/questhub/internal/platform/config"
	"github.com/questhub/questhub/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	blobStore, events, cleanup, err := buildStorage(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to set up storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	adapter := persist.NewAdapter(blobStore)
	data, err := restoreOrSeed(ctx, adapter, cfg.Storage.ResetState)
	if err != nil {
		slog.Error("failed to build initial state", "error", err)
		os.Exit(1)
	}

	store := hub.NewStore(data,
		hub.WithSaver(adapter),
		hub.WithEventLogger(events),
		hub.WithEmailDomain(cfg.Roster.EmailDomain),
	)

	generator := buildGenerator(cfg.AI)
	server := api.NewServer(store, generator, adapter)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls are slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "backend", cfg.Storage.Backend, "ai", cfg.HasAI())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// buildStorage constructs the blob store and event sink for the
// configured backend. The returned cleanup closes any connections.
func buildStorage(ctx context.Context, cfg config.StorageConfig) (persist.BlobStore, hub.EventLogger, func(), error) {
	nop := func() {}

	switch cfg.Backend {
	case config.BackendMemory:
		return persist.NewMemoryStore(), hub.NopEventLogger{}, nop, nil

	case config.BackendFile:
		store, err := persist.NewFileStore(cfg.FileDir)
		if err != nil {
			return nil, nil, nop, err
		}
		return store, hub.NopEventLogger{}, nop, nil

	case config.BackendRedis:
		c, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nop, err
		}
		return persist.NewRedisStore(c), hub.NopEventLogger{}, func() { c.Close() }, nil

	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, nop, err
		}
		store, err := persist.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, nop, err
		}
		events, err := hub.NewPostgresEventLogger(ctx, db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, nop, err
		}
		return store, events, db.Close, nil
	}

	return nil, nil, nop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// restoreOrSeed loads the stored state graph, falling back to the
// embedded seed curriculum when none exists, the blob is corrupt, or a
// reset was requested.
func restoreOrSeed(ctx context.Context, adapter *persist.Adapter, reset bool) (hub.AppData, error) {
	if !reset {
		data, err := adapter.Load(ctx)
		switch {
		case err == nil:
			slog.Info("state restored",
				"quests", len(data.Quests),
				"years", len(data.Years),
				"students", len(data.Students))
			return *data, nil
		case errors.Is(err, persist.ErrNotFound):
			slog.Info("no stored state, seeding")
		case errors.Is(err, persist.ErrInvalidState):
			slog.Warn("stored state rejected, reseeding", "error", err)
		default:
			return hub.AppData{}, err
		}
	} else {
		slog.Info("state reset requested, reseeding")
	}

	loader, err := curriculum.Load()
	if err != nil {
		return hub.AppData{}, err
	}
	data := loader.Build()
	if err := adapter.Save(ctx, data); err != nil {
		slog.Error("seed save failed, continuing on memory", "error", err)
	}
	return data, nil
}

// buildGenerator returns the live generator with demo fallback when a
// key is configured, demo-only otherwise.
func buildGenerator(cfg config.AIConfig) content.Generator {
	demo := content.NewDemoGenerator()
	if cfg.GoogleAPIKey == "" {
		slog.Info("no AI key configured, serving demo content")
		return demo
	}
	gemini := content.NewGeminiGenerator(cfg.GoogleAPIKey, content.WithGeminiModel(cfg.Model))
	return content.NewFallbackGenerator(gemini, demo)
}
