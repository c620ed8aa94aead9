// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/webhook"
)

type hookReceiver struct {
	mu     sync.Mutex
	status int
	sigs   []string
	bodies []string
}

func (rc *hookReceiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rc.mu.Lock()
	rc.sigs = append(rc.sigs, r.Header.Get("X-Webhook-Signature"))
	rc.bodies = append(rc.bodies, string(body))
	status := rc.status
	rc.mu.Unlock()
	w.WriteHeader(status)
}

func (rc *hookReceiver) setStatus(status int) {
	rc.mu.Lock()
	rc.status = status
	rc.mu.Unlock()
}

func TestWebhookCRUD(t *testing.T) {
	env := newTestEnv(t)
	wid := itoa(env.site.Website.ID)

	rr := env.admin(http.MethodPost, "/websites/"+wid+"/webhooks", map[string]any{
		"name":    "Search indexer",
		"url":     "https://hooks.example.test/mcms",
		"events":  []string{webhook.EventContentChanged},
		"headers": map[string]string{"X-Token": "abc"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created WebhookCreatedResponse
	decodeData(t, rr, &created)
	assert.Len(t, created.Secret, 64)
	assert.True(t, created.IsActive)
	assert.Equal(t, []string{webhook.EventContentChanged}, created.Events)
	assert.Equal(t, "abc", created.Headers["X-Token"])
	id := itoa(created.ID)

	rr = env.admin(http.MethodGet, "/webhooks/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), created.Secret)

	rr = env.admin(http.MethodPut, "/webhooks/"+id, map[string]any{
		"name":      "Indexer",
		"url":       "http://hooks.example.test/v2",
		"events":    []string{webhook.EventContentChanged, webhook.EventContentPublished},
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated WebhookResponse
	decodeData(t, rr, &updated)
	assert.Equal(t, "Indexer", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Len(t, updated.Events, 2)
	assert.Empty(t, updated.Headers)

	stored, err := env.h.queries.GetWebhook(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Secret, stored.Secret, "a blank secret keeps the old one")

	rr = env.admin(http.MethodGet, "/websites/"+wid+"/webhooks", nil)
	var list []WebhookResponse
	meta := decodeData(t, rr, &list)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 1, meta.Total)

	rr = env.admin(http.MethodDelete, "/webhooks/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.admin(http.MethodGet, "/webhooks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWebhookValidation(t *testing.T) {
	env := newTestEnv(t)
	wid := itoa(env.site.Website.ID)

	rr := env.admin(http.MethodPost, "/websites/"+wid+"/webhooks", map[string]any{
		"name":   "",
		"url":    "ftp://example.test",
		"events": []string{"page.created"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	apiErr := decodeError(t, rr)
	assert.Contains(t, apiErr.Error.Details, "name")
	assert.Contains(t, apiErr.Error.Details, "url")
	assert.Contains(t, apiErr.Error.Details, "events")

	rr = env.admin(http.MethodPost, "/websites/9999/webhooks", map[string]any{
		"name": "x", "url": "https://example.test", "events": []string{webhook.EventContentChanged},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/admin/websites/"+wid+"/webhooks", model.PermissionContent, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestWebhookTestAndRetry(t *testing.T) {
	env := newTestEnv(t)
	rc := &hookReceiver{status: http.StatusGone}
	srv := httptest.NewServer(rc)
	t.Cleanup(srv.Close)

	rr := env.admin(http.MethodPost, "/websites/"+itoa(env.site.Website.ID)+"/webhooks", map[string]any{
		"name":   "Receiver",
		"url":    srv.URL,
		"secret": "s3cret",
		"events": []string{webhook.EventContentPublished},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created WebhookCreatedResponse
	decodeData(t, rr, &created)

	rr = env.admin(http.MethodPost, "/webhooks/"+itoa(created.ID)+"/test", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var delivery DeliveryResponse
	decodeData(t, rr, &delivery)
	assert.Equal(t, webhook.EventTest, delivery.Event)
	assert.Equal(t, webhook.StatusDead, delivery.Status)
	require.NotNil(t, delivery.ResponseCode)
	assert.EqualValues(t, http.StatusGone, *delivery.ResponseCode)

	rc.setStatus(http.StatusOK)
	rr = env.admin(http.MethodPost, "/deliveries/"+itoa(delivery.ID)+"/retry", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, rr, &delivery)
	assert.Equal(t, webhook.StatusDelivered, delivery.Status)

	rr = env.admin(http.MethodGet, "/webhooks/"+itoa(created.ID)+"/deliveries?per_page=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var deliveries []DeliveryResponse
	meta := decodeData(t, rr, &deliveries)
	require.Len(t, deliveries, 1)
	assert.EqualValues(t, 1, meta.Total)
	assert.Equal(t, 1, meta.Pages)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	require.Len(t, rc.bodies, 2)
	assert.True(t, webhook.VerifySignature([]byte(rc.bodies[1]), rc.sigs[1], "s3cret"))

	rr = env.admin(http.MethodPost, "/deliveries/9999/retry", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
