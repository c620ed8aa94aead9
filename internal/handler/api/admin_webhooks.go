// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/middleware"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/webhook"
)

// WebhookRequest creates or updates a webhook. A blank secret is
// generated on create and kept on update.
type WebhookRequest struct {
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Secret   string            `json:"secret"`
	Events   []string          `json:"events"`
	Headers  map[string]string `json:"headers"`
	IsActive *bool             `json:"is_active"`
}

// WebhookResponse is a webhook without its secret.
type WebhookResponse struct {
	ID        int64             `json:"id"`
	WebsiteID int64             `json:"website_id"`
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	Events    []string          `json:"events"`
	Headers   map[string]string `json:"headers"`
	IsActive  bool              `json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// WebhookCreatedResponse reveals the secret once, on create.
type WebhookCreatedResponse struct {
	WebhookResponse
	Secret string `json:"secret"`
}

// DeliveryResponse is one recorded delivery attempt chain.
type DeliveryResponse struct {
	ID           int64      `json:"id"`
	WebhookID    int64      `json:"webhook_id"`
	Event        string     `json:"event"`
	Payload      string     `json:"payload"`
	Status       string     `json:"status"`
	Attempts     int64      `json:"attempts"`
	ResponseCode *int64     `json:"response_code,omitempty"`
	ResponseBody string     `json:"response_body,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func deliveryResponse(d store.WebhookDelivery) DeliveryResponse {
	return DeliveryResponse{
		ID:           d.ID,
		WebhookID:    d.WebhookID,
		Event:        d.Event,
		Payload:      d.Payload,
		Status:       d.Status,
		Attempts:     d.Attempts,
		ResponseCode: ptrInt(d.ResponseCode),
		ResponseBody: d.ResponseBody.String,
		ErrorMessage: d.ErrorMessage.String,
		NextRetryAt:  ptrTime(d.NextRetryAt),
		DeliveredAt:  ptrTime(d.DeliveredAt),
		CreatedAt:    d.CreatedAt,
	}
}

func webhookResponse(wh store.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:        wh.ID,
		WebsiteID: wh.WebsiteID,
		Name:      wh.Name,
		URL:       wh.Url,
		Events:    webhook.ParseEvents(wh.Events),
		Headers:   webhook.ParseHeaders(wh.Headers),
		IsActive:  wh.IsActive,
		CreatedAt: wh.CreatedAt,
		UpdatedAt: wh.UpdatedAt,
	}
}

func (h *Handler) mountWebhooks(r chi.Router) {
	r.Get("/websites/{id}/webhooks", h.ListWebhooks)
	r.Post("/websites/{id}/webhooks", h.CreateWebhook)
	r.Get("/webhooks/{id}", h.GetWebhook)
	r.Put("/webhooks/{id}", h.UpdateWebhook)
	r.Delete("/webhooks/{id}", h.DeleteWebhook)
	r.Get("/webhooks/{id}/deliveries", h.ListDeliveries)
	r.Post("/webhooks/{id}/test", h.TestWebhook)
	r.Post("/deliveries/{id}/retry", h.RetryDelivery)
}

func (req *WebhookRequest) validate() error {
	var verr lifecycle.ValidationError
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)

	switch {
	case req.Name == "":
		verr.Add("name", "Name is required")
	case len(req.Name) > 100:
		verr.Add("name", "Name must be less than 100 characters")
	}

	if req.URL == "" {
		verr.Add("url", "URL is required")
	} else if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		verr.Add("url", "URL must be an http or https address")
	}

	if len(req.Events) == 0 {
		verr.Add("events", "At least one event is required")
	}
	for _, e := range req.Events {
		if !webhook.IsEvent(e) {
			verr.Add("events", "Unknown event: "+e)
		}
	}
	return verr.Err()
}

func encodeWebhookFields(req WebhookRequest) (events, headers string) {
	e, _ := json.Marshal(req.Events)
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	hd, _ := json.Marshal(req.Headers)
	return string(e), string(hd)
}

// ListWebhooks handles GET /api/v1/admin/websites/{id}/webhooks.
func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	wid, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	webhooks, err := h.queries.ListWebhooks(r.Context(), wid)
	if err != nil {
		h.writeServiceError(w, r, "webhooks", err)
		return
	}
	out := make([]WebhookResponse, 0, len(webhooks))
	for _, wh := range webhooks {
		out = append(out, webhookResponse(wh))
	}
	WriteSuccess(w, out, &Meta{Total: int64(len(out))})
}

// CreateWebhook handles POST /api/v1/admin/websites/{id}/webhooks.
func (h *Handler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	wid, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.queries.GetWebsite(r.Context(), wid); err != nil {
		h.writeServiceError(w, r, "website", err)
		return
	}
	var req WebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.writeServiceError(w, r, "webhook", err)
		return
	}
	if req.Secret == "" {
		secret, err := webhook.GenerateSecret()
		if err != nil {
			h.writeServiceError(w, r, "webhook", err)
			return
		}
		req.Secret = secret
	}
	events, headers := encodeWebhookFields(req)
	now := time.Now().UTC()
	wh, err := h.queries.CreateWebhook(r.Context(), store.CreateWebhookParams{
		WebsiteID: wid,
		Name:      req.Name,
		Url:       req.URL,
		Secret:    req.Secret,
		Events:    events,
		Headers:   headers,
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		h.writeServiceError(w, r, "webhook", err)
		return
	}
	h.Logger.Info("webhook created", "webhook_id", wh.ID, "website_id", wid, "name", wh.Name)
	WriteCreated(w, WebhookCreatedResponse{WebhookResponse: webhookResponse(wh), Secret: wh.Secret})
}

// GetWebhook handles GET /api/v1/admin/webhooks/{id}.
func (h *Handler) GetWebhook(w http.ResponseWriter, r *http.Request) {
	wh, ok := requireEntityByID(h, w, r, "webhook", func(id int64) (store.Webhook, error) {
		return h.queries.GetWebhook(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, webhookResponse(wh), nil)
}

// UpdateWebhook handles PUT /api/v1/admin/webhooks/{id}.
func (h *Handler) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(h, w, r, "webhook", func(id int64) (store.Webhook, error) {
		return h.queries.GetWebhook(r.Context(), id)
	})
	if !ok {
		return
	}
	var req WebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.writeServiceError(w, r, "webhook", err)
		return
	}
	if req.Secret == "" {
		req.Secret = existing.Secret
	}
	active := existing.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	events, headers := encodeWebhookFields(req)
	wh, err := h.queries.UpdateWebhook(r.Context(), store.UpdateWebhookParams{
		Name:      req.Name,
		Url:       req.URL,
		Secret:    req.Secret,
		Events:    events,
		Headers:   headers,
		IsActive:  active,
		UpdatedAt: time.Now().UTC(),
		ID:        existing.ID,
	})
	if err != nil {
		h.writeServiceError(w, r, "webhook", err)
		return
	}
	WriteSuccess(w, webhookResponse(wh), nil)
}

// DeleteWebhook handles DELETE /api/v1/admin/webhooks/{id}.
func (h *Handler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	wh, ok := requireEntityByID(h, w, r, "webhook", func(id int64) (store.Webhook, error) {
		return h.queries.GetWebhook(r.Context(), id)
	})
	if !ok {
		return
	}
	if err := h.queries.DeleteWebhook(r.Context(), wh.ID); err != nil {
		h.writeServiceError(w, r, "webhook", err)
		return
	}
	h.Logger.Info("webhook deleted", "webhook_id", wh.ID, "name", wh.Name)
	w.WriteHeader(http.StatusNoContent)
}

// ListDeliveries handles GET /api/v1/admin/webhooks/{id}/deliveries.
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	wh, ok := requireEntityByID(h, w, r, "webhook", func(id int64) (store.Webhook, error) {
		return h.queries.GetWebhook(r.Context(), id)
	})
	if !ok {
		return
	}
	page := max(queryInt(r, "page", 1), 1)
	perPage := min(max(queryInt(r, "per_page", 20), 1), 100)

	total, err := h.queries.CountWebhookDeliveries(r.Context(), wh.ID)
	if err != nil {
		h.writeServiceError(w, r, "deliveries", err)
		return
	}
	deliveries, err := h.queries.ListWebhookDeliveries(r.Context(), wh.ID, int64(perPage), int64((page-1)*perPage))
	if err != nil {
		h.writeServiceError(w, r, "deliveries", err)
		return
	}
	out := make([]DeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, deliveryResponse(d))
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	WriteSuccess(w, out, &Meta{Total: total, Page: page, PerPage: perPage, Pages: pages})
}

// TestWebhook handles POST /api/v1/admin/webhooks/{id}/test. The test
// event is sent synchronously and the delivery returned.
func (h *Handler) TestWebhook(w http.ResponseWriter, r *http.Request) {
	if !h.webhooksEnabled(w) {
		return
	}
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	delivery, err := h.Webhooks.Test(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "webhook", err)
		return
	}
	WriteSuccess(w, deliveryResponse(delivery), nil)
}

// RetryDelivery handles POST /api/v1/admin/deliveries/{id}/retry.
func (h *Handler) RetryDelivery(w http.ResponseWriter, r *http.Request) {
	if !h.webhooksEnabled(w) {
		return
	}
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	delivery, err := h.Webhooks.Redeliver(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "delivery", err)
		return
	}
	WriteSuccess(w, deliveryResponse(delivery), nil)
}

func (h *Handler) webhooksEnabled(w http.ResponseWriter) bool {
	if h.Webhooks == nil {
		middleware.WriteAPIError(w, http.StatusServiceUnavailable, "unavailable", "Webhook delivery is not running", nil)
		return false
	}
	return true
}
