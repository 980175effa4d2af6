// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the consultblog server.
// It loads configuration, connects to the post store and optional services,
// sets up routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultblog/internal/auth"
	"consultblog/internal/cache"
	"consultblog/internal/config"
	"consultblog/internal/database"
	"consultblog/internal/handlers"
	"consultblog/internal/middleware"
	"consultblog/internal/posts"
	"consultblog/internal/render"
	"consultblog/internal/router"
	"consultblog/internal/storage"
	"consultblog/internal/store"
)

func main() {
	// Load configuration from environment variables (and .env).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
		"markdown", cfg.MarkdownEngine,
	)

	ctx := context.Background()

	opener, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open post store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	opener = store.TimeoutOpener(opener, cfg.StoreTimeout)

	resolver := tokenResolver(cfg)

	// Valkey page cache (optional; pages render on every request without it).
	var pageCache *cache.PageCache
	if cfg.PageCacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		pageCache = cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)
		slog.Info("page cache enabled", "host", cfg.ValkeyHost, "ttl", cfg.PageCacheTTL)
	} else {
		slog.Warn("valkey not configured, page cache disabled")
	}

	// S3-compatible image storage (optional; uploads answer 503 without it).
	images, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	repoCfg := posts.Config{DefaultAuthor: cfg.DefaultAuthor}
	if images != nil {
		repoCfg.Images = images
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", images.Bucket())
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}
	if pageCache != nil {
		repoCfg.Invalidator = pageCache
	}

	repo := posts.New(opener.Service(), posts.NewCache(), repoCfg)

	site := render.Site{Name: cfg.SiteName, BaseURL: cfg.SiteURL}
	renderer, err := render.New(site)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.WriteRateLimit, cfg.WriteRateWindow, cfg.TrustProxy)
	defer limiter.Stop()

	r := router.New(router.Handlers{
		Blog:   handlers.NewBlog(opener, resolver, repo),
		Public: handlers.NewPublic(repo, renderer, pageCache, cfg.MarkdownEngine),
		Admin:  handlers.NewAdmin(repo, cfg.MarkdownEngine),
		SEO:    handlers.NewSEO(repo, site, pageCache),
	}, router.Options{
		BlogOrigin:   cfg.BlogAllowedOrigin,
		AdminOrigins: cfg.AdminAllowedOrigins,
		Resolver:     resolver,
		Limiter:      limiter,
		HSTS:         !cfg.IsDev(),
	})

	// WriteTimeout leaves room for a store call at its full timeout plus
	// an image upload.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.StoreTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// openStore builds the opener for the configured driver. The returned func
// releases whatever the driver holds open.
func openStore(ctx context.Context, cfg *config.Config) (store.Opener, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if cfg.Seed {
			if err := database.Seed(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		slog.Info("postgres store ready")
		return store.Shared(store.NewPostgres(pool)), pool.Close, nil

	case config.DriverMemory:
		slog.Warn("using in-memory post store, data is lost on restart")
		return store.Shared(store.NewMemory()), func() {}, nil

	default:
		slog.Info("rest store configured", "url", cfg.StoreURL)
		return store.NewREST(store.RESTConfig{
			BaseURL:    cfg.StoreURL,
			AnonKey:    cfg.StoreAnonKey,
			ServiceKey: cfg.StoreServiceKey,
			Timeout:    cfg.StoreTimeout,
		}), func() {}, nil
	}
}

// tokenResolver verifies bearer tokens locally when a signing secret is
// configured and asks the hosted auth service otherwise.
func tokenResolver(cfg *config.Config) auth.Resolver {
	if cfg.StoreJWTSecret != "" {
		slog.Info("bearer tokens verified locally")
		return auth.NewJWTResolver(cfg.StoreJWTSecret)
	}
	slog.Info("bearer tokens verified remotely", "url", cfg.StoreURL)
	return auth.NewRemoteResolver(cfg.StoreURL, cfg.StoreAnonKey, cfg.StoreTimeout)
}
