package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/gemrelay/gemrelay/internal/app"
	"github.com/gemrelay/gemrelay/internal/config"
	"github.com/gemrelay/gemrelay/internal/metrics"
	"github.com/gemrelay/gemrelay/internal/pool"
	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/tokenizer"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler"
	"github.com/gemrelay/gemrelay/internal/types"
	"github.com/gemrelay/gemrelay/internal/upstream"
)

func main() {
	logger := setupLogger()

	if err := config.EnsureDataDir(); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	if err := config.EnsureConfigFile(); err != nil {
		logger.Warn("failed to write default config file", "error", err)
	}
	cfg := config.Load()

	store, err := storage.NewSQLiteStorage(config.DBPath())
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := ensureAdminPassword(store, logger); err != nil {
		logger.Error("failed to configure admin password", "error", err)
		os.Exit(1)
	}

	// First run: import API keys from the token file into the store.
	if imported, err := storage.SeedFromTokenFile(store, cfg.TokenFile); err != nil {
		logger.Warn("token file import failed", "path", cfg.TokenFile, "error", err)
	} else if imported > 0 {
		logger.Info("imported credentials from token file", "count", imported, "path", cfg.TokenFile)
	}

	creds, err := store.ListCredentials()
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}
	entries := make([]pool.Entry, 0, len(creds))
	for _, c := range creds {
		entries = append(entries, pool.Entry{ID: c.ID, Key: c.APIKey, Priority: c.Priority})
	}
	if len(entries) == 0 {
		logger.Warn("no credentials configured; requests will be rejected",
			"token_file", cfg.TokenFile)
	}

	credPool := pool.New(entries, cfg.CredentialCooldown)

	var cache *ristretto.Cache[string, *types.ChatCompletionResponse]
	if cfg.CacheEnabled {
		cache, err = ristretto.NewCache(&ristretto.Config[string, *types.ChatCompletionResponse]{
			NumCounters: 1e6,
			MaxCost:     1 << 26,
			BufferItems: 64,
		})
		if err != nil {
			logger.Error("failed to create response cache", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
	}

	repo := handler.NewRepo(handler.Deps{
		Pool:         credPool,
		Upstream:     upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout),
		Metrics:      metrics.New(),
		Storage:      store,
		Tokenizer:    tokenizer.New(),
		Cache:        cache,
		CacheTTL:     cfg.CacheTTL,
		DefaultModel: cfg.DefaultModel,
	})

	router := app.NewRouter(repo, &app.RouterOptions{
		Logger:            logger,
		Storage:           store,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})

	printStartupBanner(cfg, len(entries))

	srv := app.NewServer(cfg, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
