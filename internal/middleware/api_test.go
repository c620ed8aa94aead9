// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/testutil"
)

// simpleOKHandler returns an http.Handler that writes 200 OK.
var simpleOKHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// executeRequest creates a test request and executes it against the handler.
func executeRequest(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// executeAuthRequest executes a request carrying an Authorization header.
func executeAuthRequest(handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/pages", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// createKey stores an API key and returns its raw value.
func createKey(t *testing.T, db *sql.DB, perms []string, expiresAt sql.NullTime) (string, store.ApiKey) {
	t.Helper()
	raw, prefix, err := model.GenerateAPIKey()
	require.NoError(t, err)
	key, err := store.New(db).CreateApiKey(context.Background(), store.CreateApiKeyParams{
		Name:        "test",
		KeyHash:     model.HashAPIKey(raw),
		KeyPrefix:   prefix,
		Permissions: model.PermissionsToJSON(perms),
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return raw, key
}

func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	return apiErr
}

func TestAPIKeyAuth(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	valid, _ := createKey(t, db, []string{model.PermissionAdmin}, sql.NullTime{})
	expired, _ := createKey(t, db, nil, sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true})
	inactive, inactiveKey := createKey(t, db, nil, sql.NullTime{})
	require.NoError(t, store.New(db).DeactivateApiKey(context.Background(), inactiveKey.ID))

	var seen *store.ApiKey
	handler := APIKeyAuth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAPIKey(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"missing header", "", http.StatusUnauthorized, "Missing Authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid Authorization header format. Use: Bearer <api_key>"},
		{"empty key", "Bearer ", http.StatusUnauthorized, "API key is empty"},
		{"unknown key", "Bearer nope", http.StatusUnauthorized, "Invalid API key"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "API key has expired"},
		{"inactive", "Bearer " + inactive, http.StatusUnauthorized, "API key is inactive"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			rr := executeAuthRequest(handler, tt.header)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeAPIError(t, rr).Error.Message)
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, "test", seen.Name)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		perms      []string
		wantStatus int
	}{
		{"exact permission", []string{model.PermissionMedia}, http.StatusOK},
		{"admin grants all", []string{model.PermissionAdmin}, http.StatusOK},
		{"other permission", []string{model.PermissionContent}, http.StatusForbidden},
		{"no permission", nil, http.StatusForbidden},
	}
	handler := RequirePermission(model.PermissionMedia)(simpleOKHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := store.ApiKey{ID: 1, Permissions: model.PermissionsToJSON(tt.perms), IsActive: true}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/medias", nil)
			req = req.WithContext(context.WithValue(req.Context(), ContextKeyAPIKey, key))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}

	t.Run("no key in context", func(t *testing.T) {
		rr := executeRequest(handler, http.MethodPost, "/api/v1/admin/medias")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRateLimiterPerClient(t *testing.T) {
	handler := NewRateLimiter(1, 2).Middleware()(simpleOKHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/search", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"), "other clients keep their own budget")
}

func TestRateLimiterPerKey(t *testing.T) {
	handler := NewRateLimiter(1, 1).Middleware()(simpleOKHandler)

	send := func(id int64) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/pages", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(context.WithValue(req.Context(), ContextKeyAPIKey, store.ApiKey{ID: id}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send(1))
	assert.Equal(t, http.StatusTooManyRequests, send(1))
	assert.Equal(t, http.StatusOK, send(2))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:1", "198.51.100.7"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "10.0.0.1:1", "203.0.113.9"},
		{"no port", nil, "192.0.2.5", "192.0.2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
