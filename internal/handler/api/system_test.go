// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/imaging"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/scheduler"
	"github.com/olegiv/mcms-go/internal/store"
)

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path   string
		status string
	}{
		{"/health", StatusHealthy},
		{"/health/live", "alive"},
		{"/health/ready", "ready"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := env.do(http.MethodGet, tt.path, "", nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body["status"])
		})
	}
}

func TestHealthDetails(t *testing.T) {
	env := newTestEnv(t)

	rr := env.admin(http.MethodGet, "/health?verbose=true", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var report HealthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, "1.2.3", report.Version)
	assert.Equal(t, "abc123", report.Commit)
	assert.Equal(t, StatusHealthy, report.Checks["database"].Status)
	assert.Contains(t, report.Checks, "disk")
	require.NotNil(t, report.Cache)
	assert.Equal(t, "memory", report.Cache.Backend)
	require.NotNil(t, report.System)
	assert.Positive(t, report.System.NumCPU)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t)

	rr := env.admin(http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var jobs []scheduler.JobInfo
	decodeData(t, rr, &jobs)
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	assert.ElementsMatch(t, []string{"publication", "sitemaps", "thumbnails", "events"}, names)

	rr = env.admin(http.MethodPost, "/jobs/core/sitemaps/run", nil)
	assert.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	rr = env.admin(http.MethodPost, "/jobs/core/missing/run", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.admin(http.MethodPut, "/jobs/core/sitemaps/schedule", ScheduleRequest{Schedule: "not a schedule"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = env.admin(http.MethodPut, "/jobs/core/sitemaps/schedule", ScheduleRequest{Schedule: "*/5 * * * *"})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = env.admin(http.MethodGet, "/jobs", nil)
	decodeData(t, rr, &jobs)
	for _, j := range jobs {
		if j.Name == "sitemaps" {
			assert.Equal(t, "*/5 * * * *", j.Schedule)
			assert.True(t, j.IsOverridden)
		}
	}

	rr = env.admin(http.MethodDelete, "/jobs/core/sitemaps/schedule", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.admin(http.MethodPost, "/publication/run", nil)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestEventsAndCache(t *testing.T) {
	env := newTestEnv(t)

	rr := env.admin(http.MethodGet, "/events?per_page=500", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var events []store.Event
	meta := decodeData(t, rr, &events)
	assert.Equal(t, 200, meta.PerPage)

	rr = env.admin(http.MethodGet, "/cache", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var info CacheInfo
	decodeData(t, rr, &info)
	assert.Equal(t, "memory", info.Backend)
	assert.NotEmpty(t, info.Namespaces)

	rr = env.admin(http.MethodDelete, "/cache", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.admin(http.MethodDelete, "/cache?namespace="+info.Namespaces[0], nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.admin(http.MethodDelete, "/cache?namespace=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.admin(http.MethodDelete, "/cache/websites/"+itoa(env.site.Website.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestWidgetTypes(t *testing.T) {
	env := newTestEnv(t)

	rr := env.admin(http.MethodGet, "/widgets", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var names []string
	decodeData(t, rr, &names)
	assert.Contains(t, names, "choice")
	assert.Contains(t, names, "page")

	rr = env.admin(http.MethodGet, "/widgets/choice?name=size&choice=s:Small&choice=m:Medium&required=true", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var field struct {
		Name     string `json:"name"`
		Required bool   `json:"required"`
		Choices  []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"choices"`
	}
	decodeData(t, rr, &field)
	assert.Equal(t, "size", field.Name)
	assert.True(t, field.Required)
	require.Len(t, field.Choices, 2)
	assert.Equal(t, "m", field.Choices[1].Value)
	assert.Equal(t, "Medium", field.Choices[1].Label)

	rr = env.admin(http.MethodGet, "/widgets/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSitemapsAndRobots(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/sitemap.xml", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, rr.Body.String(), "sitemapindex")

	rr = env.do(http.MethodGet, "/sitemap-fr.xml", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "urlset")

	rr = env.do(http.MethodGet, "/sitemap-de.xml", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodGet, "/robots.txt", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sitemap: https://example.test/sitemap.xml")
}

func TestPublicErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/listing/missing", http.StatusNotFound},
		{"/api/v1/menus/missing", http.StatusNotFound},
		{"/api/v1/thumbnail?media=abc", http.StatusBadRequest},
		{"/api/v1/thumbnail?media=999&width=10", http.StatusNotFound},
		{"/api/v1/locales?entity_type=menu&entity_id=1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := env.do(http.MethodGet, tt.path, "", nil)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func uploadRequest(t *testing.T, env *testEnv, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("intls", `[{"locale":"en","alt":"Pixel","title":"Pixel"}]`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/websites/"+itoa(env.site.Website.ID)+"/medias", &body)
	req.Host = testHost
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.keys[model.PermissionMedia])
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func TestUploadAndThumbnail(t *testing.T) {
	env := newTestEnv(t)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 30))))

	rr := uploadRequest(t, env, "pixel.png", img.Bytes())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var media MediaResponse
	decodeData(t, rr, &media)
	assert.Equal(t, imaging.MimeTypePNG, media.MimeType)
	require.Len(t, media.Intls, 1)
	assert.Equal(t, "Pixel", media.Intls[0].Alt)

	rr = env.do(http.MethodGet, media.URL, "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/thumbnail?lazy=0&width=10&media="+itoa(media.ID), "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var thumb imaging.Thumbnail
	decodeData(t, rr, &thumb)
	assert.Equal(t, 10, thumb.Width)
	assert.True(t, strings.HasPrefix(thumb.Src, "/thumbnails/"), thumb.Src)
	assert.Equal(t, "Pixel", thumb.Alt)

	rr = env.do(http.MethodGet, thumb.Src, "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "immutable")

	rr = env.do(http.MethodGet, "/api/v1/admin/websites/"+itoa(env.site.Website.ID)+"/medias", model.PermissionMedia, nil)
	var medias []MediaResponse
	decodeData(t, rr, &medias)
	assert.Len(t, medias, 1)

	rr = env.do(http.MethodDelete, "/api/v1/admin/medias/"+itoa(media.ID), model.PermissionMedia, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
}

func TestUploadRejectsType(t *testing.T) {
	env := newTestEnv(t)
	rr := uploadRequest(t, env, "page.html", []byte("<html><body>x</body></html>"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeError(t, rr).Error.Details, "file")
}
