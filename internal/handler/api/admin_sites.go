// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

// WebsiteView is a website with the locale of its first language.
type WebsiteView struct {
	store.Website
	DefaultLocale string `json:"default_locale,omitempty"`
}

func (h *Handler) mountSites(r chi.Router) {
	content := h.Content

	websites := resource[WebsiteView]{
		name: "website",
		get: func(ctx context.Context, id int64) (WebsiteView, error) {
			w, err := h.queries.GetWebsite(ctx, id)
			return WebsiteView{Website: w}, err
		},
		update: func(ctx context.Context, id int64, v WebsiteView) (WebsiteView, error) {
			v.ID = id
			w, err := content.Websites.Update(ctx, v.Website)
			return WebsiteView{Website: w}, err
		},
		remove: content.Websites.Delete,
	}
	websites.mount(h, r, "websites")
	r.Get("/websites", h.ListWebsites)
	r.Post("/websites", h.CreateWebsite)

	resource[store.Domain]{
		name: "domain",
		get:  h.queries.GetDomain,
		list: h.queries.ListDomainsByWebsite,
		create: func(ctx context.Context, wid int64, d store.Domain) (store.Domain, error) {
			d.WebsiteID = wid
			return content.Domains.Create(ctx, d)
		},
		update: func(ctx context.Context, id int64, d store.Domain) (store.Domain, error) {
			d.ID = id
			return content.Domains.Update(ctx, d)
		},
		remove: content.Domains.Delete,
	}.register(h, r, "websites", "domains")

	resource[store.Language]{
		name: "language",
		get:  h.queries.GetLanguage,
		list: h.queries.ListLanguagesByWebsite,
		create: func(ctx context.Context, wid int64, l store.Language) (store.Language, error) {
			l.WebsiteID = wid
			return content.Languages.Create(ctx, l)
		},
		update: func(ctx context.Context, id int64, l store.Language) (store.Language, error) {
			l.ID = id
			return content.Languages.Update(ctx, l)
		},
		remove: content.Languages.Delete,
		move:   content.Languages.Move,
	}.register(h, r, "websites", "languages")

	resource[store.Color]{
		name: "color",
		get:  h.queries.GetColor,
		list: h.queries.ListColors,
		create: func(ctx context.Context, wid int64, c store.Color) (store.Color, error) {
			c.WebsiteID = wid
			return content.Colors.Create(ctx, c)
		},
		update: func(ctx context.Context, id int64, c store.Color) (store.Color, error) {
			c.ID = id
			return content.Colors.Update(ctx, c)
		},
		remove: content.Colors.Delete,
		move:   content.Colors.Move,
	}.register(h, r, "websites", "colors")

	r.Put("/urls/{id}/seo", h.SaveSeo)
	r.Get("/api-keys", h.ListAPIKeys)
	r.Post("/api-keys", h.CreateAPIKey)
	r.Delete("/api-keys/{id}", h.DeactivateAPIKey)
}

// register mounts both the item and the collection routes.
func (res resource[V]) register(h *Handler, r chi.Router, parent, plural string) {
	res.mount(h, r, plural)
	res.mountUnder(h, r, parent, plural)
}

// ListWebsites handles GET /api/v1/admin/websites.
func (h *Handler) ListWebsites(w http.ResponseWriter, r *http.Request) {
	websites, err := h.queries.ListWebsites(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "websites", err)
		return
	}
	WriteSuccess(w, websites, &Meta{Total: int64(len(websites))})
}

// CreateWebsite handles POST /api/v1/admin/websites.
func (h *Handler) CreateWebsite(w http.ResponseWriter, r *http.Request) {
	var req WebsiteView
	if !decodeJSON(w, r, &req) {
		return
	}
	website, err := h.Content.Websites.Create(r.Context(), lifecycle.WebsiteRecord{
		Website:       req.Website,
		DefaultLocale: req.DefaultLocale,
	})
	if err != nil {
		h.writeServiceError(w, r, "website", err)
		return
	}
	WriteCreated(w, WebsiteView{Website: website, DefaultLocale: req.DefaultLocale})
}

// SeoRequest overrides the meta tags of one url.
type SeoRequest struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	CanonicalURL    string `json:"canonical_url"`
	NoIndex         bool   `json:"no_index"`
	NoFollow        bool   `json:"no_follow"`
	OgTitle         string `json:"og_title"`
	OgDescription   string `json:"og_description"`
	OgMediaID       *int64 `json:"og_media_id"`
}

// SaveSeo handles PUT /api/v1/admin/urls/{id}/seo.
func (h *Handler) SaveSeo(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	var req SeoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	saved, err := h.Content.SaveSeo(r.Context(), store.UpsertSeoParams{
		UrlID:           id,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		CanonicalUrl:    req.CanonicalURL,
		NoIndex:         req.NoIndex,
		NoFollow:        req.NoFollow,
		OgTitle:         req.OgTitle,
		OgDescription:   req.OgDescription,
		OgMediaID:       nullInt(req.OgMediaID),
	})
	if err != nil {
		h.writeServiceError(w, r, "url", err)
		return
	}
	WriteSuccess(w, saved, nil)
}

// APIKeyResponse describes an API key without its secret.
type APIKeyResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	KeyPrefix   string     `json:"key_prefix"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	// Key is the raw secret, returned once on creation.
	Key string `json:"key,omitempty"`
}

func apiKeyResponse(k store.ApiKey) APIKeyResponse {
	return APIKeyResponse{
		ID:          k.ID,
		Name:        k.Name,
		KeyPrefix:   k.KeyPrefix,
		Permissions: model.ParsePermissions(k.Permissions),
		IsActive:    k.IsActive,
		ExpiresAt:   ptrTime(k.ExpiresAt),
		LastUsedAt:  ptrTime(k.LastUsedAt),
		CreatedAt:   k.CreatedAt,
	}
}

// ListAPIKeys handles GET /api/v1/admin/api-keys.
func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.queries.ListApiKeys(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "api keys", err)
		return
	}
	out := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		out[i] = apiKeyResponse(k)
	}
	WriteSuccess(w, out, &Meta{Total: int64(len(out))})
}

// CreateAPIKeyRequest is the body of POST /api/v1/admin/api-keys.
type CreateAPIKeyRequest struct {
	Name        string     `json:"name"`
	Permissions []string   `json:"permissions"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// CreateAPIKey handles POST /api/v1/admin/api-keys.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ve := &lifecycle.ValidationError{}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		ve.Add("name", "Name is required")
	}
	if len(req.Permissions) == 0 {
		ve.Add("permissions", "At least one permission is required")
	}
	for _, p := range req.Permissions {
		if !slices.Contains(model.AllPermissions(), p) {
			ve.Add("permissions", "Unknown permission: "+p)
		}
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		ve.Add("expires_at", "Expiry must be in the future")
	}
	if err := ve.Err(); err != nil {
		h.writeServiceError(w, r, "api key", err)
		return
	}

	raw, prefix, err := model.GenerateAPIKey()
	if err != nil {
		h.writeServiceError(w, r, "api key", err)
		return
	}
	key, err := h.queries.CreateApiKey(r.Context(), store.CreateApiKeyParams{
		Name:        req.Name,
		KeyHash:     model.HashAPIKey(raw),
		KeyPrefix:   prefix,
		Permissions: model.PermissionsToJSON(req.Permissions),
		ExpiresAt:   nullTime(req.ExpiresAt),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		h.writeServiceError(w, r, "api key", err)
		return
	}

	h.Logger.Info("api key created", "id", key.ID, "prefix", prefix)
	resp := apiKeyResponse(key)
	resp.Key = raw
	WriteCreated(w, resp)
}

// DeactivateAPIKey handles DELETE /api/v1/admin/api-keys/{id}.
func (h *Handler) DeactivateAPIKey(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	if err := h.queries.DeactivateApiKey(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "api key", err)
		return
	}
	h.Logger.Info("api key deactivated", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
