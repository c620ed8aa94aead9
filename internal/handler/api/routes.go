// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/mcms-go/internal/middleware"
	"github.com/olegiv/mcms-go/internal/model"
)

// RouterConfig configures the HTTP surface.
type RouterConfig struct {
	Hosts   middleware.HostResolver
	Locales middleware.LocaleResolver

	IsDevelopment bool
	Timeout       time.Duration
	RateLimit     float64
	RateBurst     int

	// UploadsPath and ThumbsPath are served under /uploads/ and
	// /thumbnails/ when set.
	UploadsPath string
	ThumbsPath  string
}

// NewRouter builds the router: health probes, static files, the public
// API and the admin API behind API key authentication.
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit, cfg.RateBurst = 10, 20
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.IsDevelopment {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))

	r.Get("/health", h.Health)
	r.Get("/health/live", h.Liveness)
	r.Get("/health/ready", h.Readiness)

	// Generated files carry their options in the name and never change.
	if cfg.ThumbsPath != "" {
		thumbs := middleware.StaticCache(31536000, true)(http.StripPrefix("/thumbnails/", http.FileServer(http.Dir(cfg.ThumbsPath))))
		r.Handle("/thumbnails/*", thumbs)
	}
	if cfg.UploadsPath != "" {
		uploads := middleware.StaticCache(604800, false)(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsPath))))
		r.Handle("/uploads/*", uploads)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	resolve := middleware.ResolveSite(cfg.Hosts, cfg.Locales, h.Logger)

	r.Group(func(r chi.Router) {
		r.Use(resolve)
		r.Get("/sitemap.xml", h.SitemapIndex)
		r.Get("/{file:sitemap-[A-Za-z_-]+\\.xml}", h.Sitemap)
		r.Get("/robots.txt", h.Robots)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(resolve)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware())
			r.Get("/locales", h.ListLocales)
			r.Get("/menus/{slug}", h.GetMenu)
			r.Get("/seo", h.GetSeo)
			r.Get("/listing/{slug}", h.GetListing)
			r.Get("/catalog/search", h.SearchCatalog)
			r.Get("/thumbnail", h.GetThumbnail)
			r.Post("/newsletter/{slug}/subscribe", h.SubscribeNewsletter)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(h.DB))
			r.Use(limiter.Middleware())

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionAdmin))
				h.mountSites(r)
				h.mountSystem(r)
				h.mountWebhooks(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionContent))
				h.mountPages(r)
				h.mountCatalog(r)
				h.mountContent(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionMedia))
				h.mountMedia(r)
			})
		})
	})

	return r
}
