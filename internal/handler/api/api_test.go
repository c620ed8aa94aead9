// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/catalog"
	"github.com/olegiv/mcms-go/internal/imaging"
	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/listing"
	"github.com/olegiv/mcms-go/internal/locale"
	"github.com/olegiv/mcms-go/internal/middleware"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/scheduler"
	"github.com/olegiv/mcms-go/internal/seo"
	"github.com/olegiv/mcms-go/internal/service"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/testutil"
	"github.com/olegiv/mcms-go/internal/version"
	"github.com/olegiv/mcms-go/internal/webhook"
	"github.com/olegiv/mcms-go/internal/widget"
)

const testHost = "example.test"

type testEnv struct {
	db     *sql.DB
	site   testutil.Site
	h      *Handler
	router chi.Router
	// keys maps a permission to a raw API key holding only it.
	keys map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	site := testutil.SeedSite(t, db)

	logger := testutil.TestLoggerSilent()
	dir := t.TempDir()
	cm := cache.NewMemoryManager(time.Minute)

	resolver := locale.NewResolver(db, filepath.Join(dir, "domains.json"), cm, logger)
	require.NoError(t, resolver.Load(context.Background()))

	thumbs := imaging.NewService(db, imaging.Config{
		PublicDir:   dir,
		ThumbsDir:   "thumbnails",
		ManifestDir: filepath.Join(dir, "manifests"),
		Quality:     85,
	}, logger)
	sitemaps := seo.NewSitemapService(db, cm, time.Minute, seo.Options{}, logger)
	events := service.NewEventService(db)

	sched := scheduler.New(db, scheduler.Options{Cache: cm, Sitemaps: sitemaps, Thumbs: thumbs, Events: events}, logger)
	require.NoError(t, sched.Start())
	t.Cleanup(sched.Stop)

	h := NewHandler(Deps{
		DB: db,
		Content: lifecycle.NewService(db, lifecycle.Options{
			Logger:         logger,
			Cache:          cm,
			DomainsChanged: resolver.Rebuild,
		}),
		Widgets:   widget.NewDefaultRegistry(widget.Deps{DB: db, IconsDir: dir, FontsDir: dir}),
		Thumbs:    thumbs,
		Catalog:   catalog.NewService(db, cm, time.Minute, logger),
		Seo:       seo.NewService(db, cm, time.Minute, seo.Options{}, logger),
		Sitemaps:  sitemaps,
		Listings:  listing.NewService(db, cm, time.Minute, logger),
		Locales:   locale.NewService(db, nil, logger),
		Menus:     service.NewMenuService(db, cm, time.Minute, logger),
		Medias:    service.NewMediaService(db, dir, "uploads", thumbs, cm, logger),
		Events:    events,
		Scheduler: sched,
		Webhooks:  webhook.NewDispatcher(db, logger, webhook.Config{Workers: 1}),
		Cache:     cm,
		Logger:    logger,
		PublicDir: dir,
		Version:   version.Info{Version: "1.2.3", GitCommit: "abc123"},
	})

	env := &testEnv{
		db:   db,
		site: site,
		h:    h,
		router: NewRouter(h, RouterConfig{
			Hosts:       resolver,
			Locales:     h.Locales,
			RateLimit:   1000,
			RateBurst:   1000,
			UploadsPath: filepath.Join(dir, "uploads"),
			ThumbsPath:  filepath.Join(dir, "thumbnails"),
		}),
		keys: map[string]string{},
	}
	for _, perm := range model.AllPermissions() {
		env.keys[perm] = createKey(t, db, perm)
	}
	return env
}

func createKey(t *testing.T, db *sql.DB, perm string) string {
	t.Helper()
	raw, prefix, err := model.GenerateAPIKey()
	require.NoError(t, err)
	_, err = store.New(db).CreateApiKey(context.Background(), store.CreateApiKeyParams{
		Name:        perm,
		KeyHash:     model.HashAPIKey(raw),
		KeyPrefix:   prefix,
		Permissions: model.PermissionsToJSON([]string{perm}),
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return raw
}

// do sends a request to the router. A non-empty perm authenticates with
// the key holding that permission.
func (e *testEnv) do(method, path, perm string, body any) *httptest.ResponseRecorder {
	return e.doHost(testHost, method, path, perm, body)
}

func (e *testEnv) doHost(host, method, path, perm string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Host = host
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if perm != "" {
		req.Header.Set("Authorization", "Bearer "+e.keys[perm])
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) admin(method, path string, body any) *httptest.ResponseRecorder {
	return e.do(method, "/api/v1/admin"+path, model.PermissionAdmin, body)
}

// decodeData unmarshals the data member of a Response into dst.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) *Meta {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
		Meta *Meta           `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, dst), rr.Body.String())
	return resp.Meta
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) middleware.APIError {
	t.Helper()
	var apiErr middleware.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr), rr.Body.String())
	return apiErr
}

func TestWriteServiceError(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", lifecycle.Invalid("name", "is required"), http.StatusUnprocessableEntity},
		{"no rows", sql.ErrNoRows, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("loading"), scheduler.ErrJobNotFound), http.StatusNotFound},
		{"bad options", imaging.ErrInvalidOptions, http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.h.writeServiceError(rr, req, "thing", tt.err)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestWriteServiceErrorFields(t *testing.T) {
	env := newTestEnv(t)
	rr := httptest.NewRecorder()
	env.h.writeServiceError(rr, httptest.NewRequest(http.MethodGet, "/", nil), "page", lifecycle.Invalid("admin_name", "is required"))

	apiErr := decodeError(t, rr)
	assert.Equal(t, "validation_error", apiErr.Error.Code)
	assert.Equal(t, "is required", apiErr.Error.Details["admin_name"])
}

func TestUnknownHost(t *testing.T) {
	env := newTestEnv(t)

	// The default website serves hosts it has no domain for.
	rr := env.doHost("unknown.test", http.MethodGet, "/api/v1/locales", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp LocalesResponse
	decodeData(t, rr, &resp)
	assert.Equal(t, "en", resp.Current)

	rr = env.admin(http.MethodPatch, "/websites/"+itoa(env.site.Website.ID), map[string]any{"is_default": false})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.doHost("unknown.test", http.MethodGet, "/api/v1/locales", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "unknown_host", decodeError(t, rr).Error.Code)

	rr = env.doHost("example.test", http.MethodGet, "/api/v1/locales", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAdminRequiresKey(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/api/v1/admin/websites", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/admin/websites", model.PermissionMedia, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/admin/websites", model.PermissionAdmin, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestContentKeyScope(t *testing.T) {
	env := newTestEnv(t)
	path := "/api/v1/admin/websites/" + itoa(env.site.Website.ID) + "/menus"

	rr := env.do(http.MethodGet, path, model.PermissionContent, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/admin/api-keys", model.PermissionContent, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestInvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/websites", bytes.NewBufferString("{not json"))
	req.Host = testHost
	req.Header.Set("Authorization", "Bearer "+env.keys[model.PermissionAdmin])
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
