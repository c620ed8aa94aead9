// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticCache(t *testing.T) {
	tests := []struct {
		name      string
		maxAge    int
		immutable bool
		want      string
	}{
		{"one hour", 3600, false, "public, max-age=3600"},
		{"one year immutable", 31536000, true, "public, max-age=31536000, immutable"},
		{"zero", 0, false, "public, max-age=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := StaticCache(tt.maxAge, tt.immutable)(simpleOKHandler)

			rr := executeRequest(wrapped, http.MethodGet, "/thumbnails/1/card.jpg")

			if got := rr.Header().Get("Cache-Control"); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaticCachePreservesResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("jpeg"))
	})

	rr := httptest.NewRecorder()
	StaticCache(3600, false)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/thumbnails/x.jpg", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want %q", ct, "image/jpeg")
	}
	if body := rr.Body.String(); body != "jpeg" {
		t.Errorf("Body = %q, want %q", body, "jpeg")
	}
}
