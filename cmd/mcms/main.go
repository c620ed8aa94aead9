// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/catalog"
	"github.com/olegiv/mcms-go/internal/config"
	"github.com/olegiv/mcms-go/internal/content"
	"github.com/olegiv/mcms-go/internal/geoip"
	"github.com/olegiv/mcms-go/internal/handler/api"
	"github.com/olegiv/mcms-go/internal/imaging"
	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/listing"
	"github.com/olegiv/mcms-go/internal/locale"
	"github.com/olegiv/mcms-go/internal/logging"
	"github.com/olegiv/mcms-go/internal/scheduler"
	"github.com/olegiv/mcms-go/internal/seo"
	"github.com/olegiv/mcms-go/internal/service"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/theme"
	"github.com/olegiv/mcms-go/internal/version"
	"github.com/olegiv/mcms-go/internal/webhook"
	"github.com/olegiv/mcms-go/internal/widget"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "mCMS - multi-site content management backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MCMS_DB_PATH           SQLite database path (default: ./data/mcms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MCMS_ENV               Environment: development|production|test (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MCMS_PUBLIC_DIR        Public files root (default: ./public)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MCMS_CACHE_DIR         Domain and manifest cache directory (default: ./var/cache)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MCMS_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MCMS_GEOIP_DB_PATH     GeoLite2 country database (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MCMS_DO_SEED           Create a default website and admin key on first start\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Println(buildInfo())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := buildInfo()

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.CacheDir, cfg.UploadsPath(), cfg.ThumbsPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	if cfg.UseRedisCache() {
		slog.Info("redis cache configured", "prefix", cfg.CachePrefix)
	}
	backend, kind := cache.NewCache(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cacheTTL,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	cm := cache.NewManager(backend, kind, cacheTTL)
	defer func() {
		if err := cm.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	var geo *geoip.Lookup
	if cfg.GeoIPEnabled() {
		geo, err = geoip.Open(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("geoip disabled", "path", cfg.GeoIPDBPath, "error", err)
			geo = nil
		} else {
			defer func() { _ = geo.Close() }()
			slog.Info("geoip database loaded", "path", cfg.GeoIPDBPath)
		}
	}

	resolver := locale.NewResolver(db, filepath.Join(cfg.CacheDir, "domains.cache.json"), cm, logger)
	if err := resolver.Load(ctx); err != nil {
		return fmt.Errorf("loading domains: %w", err)
	}

	themes := theme.NewManager(cfg.ThemesDir, logger)
	if err := themes.LoadThemes(); err != nil {
		return fmt.Errorf("loading themes: %w", err)
	}

	thumbs := imaging.NewService(db, imaging.Config{
		PublicDir:   cfg.PublicDir,
		ThumbsDir:   cfg.ThumbsDir,
		ManifestDir: filepath.Join(cfg.CacheDir, "thumbnails"),
		Placeholder: cfg.Placeholder,
		Quality:     cfg.ThumbQuality,
	}, logger)

	seoOpts := seo.Options{
		DefaultOGImage: cfg.DefaultOGImage,
		TwitterHandle:  cfg.TwitterHandle,
		DisallowAll:    cfg.RobotsDisallow,
	}
	sitemaps := seo.NewSitemapService(db, cm, cacheTTL, seoOpts, logger)
	events := service.NewEventService(db)

	hookCfg := webhook.DefaultConfig()
	hookCfg.UserAgent = versionInfo.UserAgent()
	dispatcher := webhook.NewDispatcher(db, logger, hookCfg)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	debouncer := webhook.NewDebouncer(dispatcher, webhook.DefaultDebounceConfig())
	defer debouncer.Stop()

	schedOpts := scheduler.Options{
		Cache:     cm,
		Sitemaps:  sitemaps,
		Thumbs:    thumbs,
		Events:    events,
		Notifier:  dispatcher,
		Webhooks:  dispatcher,
		Overrides: cfg.JobSchedules,
	}
	if geo != nil {
		schedOpts.GeoIP = geo
	}
	sched := scheduler.New(db, schedOpts, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	h := api.NewHandler(api.Deps{
		DB: db,
		Content: lifecycle.NewService(db, lifecycle.Options{
			Logger:         logger,
			Cache:          cm,
			Renderer:       content.NewRenderer(),
			DomainsChanged: resolver.Rebuild,
			Changed:        debouncer.ContentChanged,
		}),
		Widgets: widget.NewDefaultRegistry(widget.Deps{
			DB:       db,
			IconsDir: cfg.IconsDir,
			FontsDir: cfg.FontsDir,
			Themes:   themes,
		}),
		Thumbs:    thumbs,
		Catalog:   catalog.NewService(db, cm, cacheTTL, logger),
		Seo:       seo.NewService(db, cm, cacheTTL, seoOpts, logger),
		Sitemaps:  sitemaps,
		Listings:  listing.NewService(db, cm, cacheTTL, logger),
		Locales:   locale.NewService(db, geo, logger),
		Menus:     service.NewMenuService(db, cm, cacheTTL, logger),
		Medias:    service.NewMediaService(db, cfg.PublicDir, cfg.UploadsDir, thumbs, cm, logger),
		Events:    events,
		Scheduler: sched,
		Webhooks:  dispatcher,
		Cache:     cm,
		Logger:    logger,
		PublicDir: cfg.PublicDir,
		Version:   versionInfo,
	})

	r := api.NewRouter(h, api.RouterConfig{
		Hosts:         resolver,
		Locales:       h.Locales,
		IsDevelopment: cfg.IsDevelopment(),
		RateLimit:     cfg.APIRateLimit,
		RateBurst:     cfg.APIRateBurst,
		UploadsPath:   cfg.UploadsPath(),
		ThumbsPath:    cfg.ThumbsPath(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Release())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
