// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for API key authentication,
// rate limiting, and website and locale resolution.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ContextKey is the type of the context keys set by this package.
type ContextKey string

// ClientIP returns the address of the client. chi's RealIP middleware
// has already moved proxy headers into RemoteAddr when it runs first.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
