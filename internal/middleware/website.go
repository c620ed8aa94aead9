// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/mcms-go/internal/locale"
)

// ContextKeySite is the context key of the resolved Site.
const ContextKeySite ContextKey = "site"

// Site is the website and locale a request is served in.
type Site struct {
	WebsiteID int64
	Host      string
	Locale    string
	// LocaleSource tells how Locale was chosen.
	LocaleSource string
}

// HostResolver maps a request host to a website.
type HostResolver interface {
	Resolve(ctx context.Context, host string) (locale.Target, error)
}

// LocaleResolver picks the locale of a request.
type LocaleResolver interface {
	Resolve(ctx context.Context, req locale.Request) (locale.Resolution, error)
}

// ResolveSite creates middleware that resolves the website from the Host
// header and the locale from the "locale" query parameter, the locale
// prefix of the "path" query parameter, Accept-Language, the client
// country and the domain, in that order.
func ResolveSite(hosts HostResolver, locales LocaleResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target, err := hosts.Resolve(r.Context(), r.Host)
			if err != nil {
				if errors.Is(err, locale.ErrUnknownHost) {
					WriteAPIError(w, http.StatusNotFound, "unknown_host", "No website is served on this host", nil)
					return
				}
				logger.Error("failed to resolve host", "host", r.Host, "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve website", nil)
				return
			}

			query := r.URL.Query()
			res, err := locales.Resolve(r.Context(), locale.Request{
				WebsiteID:      target.WebsiteID,
				Query:          query.Get("locale"),
				Path:           query.Get("path"),
				AcceptLanguage: r.Header.Get("Accept-Language"),
				IP:             ClientIP(r),
				DomainLocale:   target.Locale,
			})
			if err != nil {
				logger.Error("failed to resolve locale", "website_id", target.WebsiteID, "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve locale", nil)
				return
			}

			site := Site{
				WebsiteID:    target.WebsiteID,
				Host:         target.Host,
				Locale:       res.Locale,
				LocaleSource: res.Source,
			}
			w.Header().Set("Content-Language", site.Locale)
			next.ServeHTTP(w, r.WithContext(WithSite(r.Context(), site)))
		})
	}
}

// WithSite stores site in ctx.
func WithSite(ctx context.Context, site Site) context.Context {
	return context.WithValue(ctx, ContextKeySite, site)
}

// GetSite returns the site resolved for the request.
func GetSite(r *http.Request) (Site, bool) {
	return SiteFrom(r.Context())
}

// SiteFrom returns the site stored in ctx.
func SiteFrom(ctx context.Context) (Site, bool) {
	site, ok := ctx.Value(ContextKeySite).(Site)
	return site, ok
}
