// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/middleware"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/service"
	"github.com/olegiv/mcms-go/internal/store"
)

// multipartMemory is the part of an upload kept in memory while parsing.
const multipartMemory = 10 << 20

// MediaResponse is a media with its public URL and intls.
type MediaResponse struct {
	store.Media
	URL   string              `json:"url"`
	Intls []service.MediaIntl `json:"intls"`
}

func (h *Handler) mediaResponse(ctx context.Context, m store.Media) (MediaResponse, error) {
	resp := MediaResponse{Media: m, URL: h.Medias.URL(m), Intls: []service.MediaIntl{}}
	intls, err := h.queries.ListMediaIntls(ctx, m.ID)
	if err != nil {
		return resp, err
	}
	for _, in := range intls {
		resp.Intls = append(resp.Intls, service.MediaIntl{Locale: in.Locale, Alt: in.Alt, Title: in.Title})
	}
	return resp, nil
}

func (h *Handler) mountMedia(r chi.Router) {
	content := h.Content

	r.Get("/websites/{id}/medias", h.ListMedias)
	r.Post("/websites/{id}/medias", h.UploadMedia)
	r.Get("/medias/{id}", h.GetMedia)
	r.Put("/medias/{id}/intls", h.SetMediaIntls)
	r.Delete("/medias/{id}", h.DeleteMedia)
	r.Put("/medias/{id}/crops/{config}", h.SaveCrop)

	r.Get("/relations", h.ListMediaRelations)
	r.Post("/relations", h.AttachMedia)
	resource[store.MediaRelation]{
		name:   "media relation",
		get:    h.queries.GetMediaRelation,
		remove: content.MediaRelations.Detach,
		move:   content.MediaRelations.Move,
	}.mount(h, r, "relations")
	r.Post("/relations/{id}/main", h.SetMainMedia)

	resource[store.ThumbConfiguration]{
		name: "thumbnail configuration",
		get:  h.queries.GetThumbConfiguration,
		list: h.queries.ListThumbConfigurations,
		create: func(ctx context.Context, wid int64, c store.ThumbConfiguration) (store.ThumbConfiguration, error) {
			c.WebsiteID = wid
			return content.Thumbs.Create(ctx, c)
		},
		update: func(ctx context.Context, id int64, c store.ThumbConfiguration) (store.ThumbConfiguration, error) {
			c.ID = id
			saved, err := content.Thumbs.Update(ctx, c)
			if err == nil && h.Thumbs != nil {
				h.purgeConfiguration(ctx, saved.WebsiteID)
			}
			return saved, err
		},
		remove: content.Thumbs.Delete,
	}.register(h, r, "websites", "thumb-configurations")
}

// purgeConfiguration drops the generated thumbnails of every media of a
// website after one of its sizes changed.
func (h *Handler) purgeConfiguration(ctx context.Context, websiteID int64) {
	const page = 200
	for offset := int64(0); ; offset += page {
		medias, err := h.queries.ListMedias(ctx, websiteID, page, offset)
		if err != nil {
			h.Logger.Warn("listing medias for thumbnail purge failed", "website_id", websiteID, "error", err)
			return
		}
		for _, m := range medias {
			if err := h.Thumbs.Purge(m.ID); err != nil {
				h.Logger.Warn("thumbnail purge failed", "media_id", m.ID, "error", err)
			}
		}
		if len(medias) < page {
			return
		}
	}
}

// ListMedias handles GET /api/v1/admin/websites/{id}/medias.
func (h *Handler) ListMedias(w http.ResponseWriter, r *http.Request) {
	wid, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	page := max(queryInt(r, "page", 1), 1)
	perPage := min(max(queryInt(r, "per_page", 20), 1), 100)

	medias, err := h.queries.ListMedias(r.Context(), wid, int64(perPage), int64((page-1)*perPage))
	if err != nil {
		h.writeServiceError(w, r, "medias", err)
		return
	}
	out := make([]MediaResponse, 0, len(medias))
	for _, m := range medias {
		resp, err := h.mediaResponse(r.Context(), m)
		if err != nil {
			h.writeServiceError(w, r, "medias", err)
			return
		}
		out = append(out, resp)
	}
	WriteSuccess(w, out, &Meta{Page: page, PerPage: perPage})
}

// UploadMedia handles POST /api/v1/admin/websites/{id}/medias. The file
// comes in the "file" form part; "intls" optionally holds a JSON array of
// {locale, alt, title}.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	wid, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing file", nil)
		return
	}
	defer func() { _ = file.Close() }()

	var intls []service.MediaIntl
	if raw := r.FormValue("intls"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &intls); err != nil {
			WriteValidationError(w, map[string]string{"intls": "must be a JSON array"})
			return
		}
	}

	media, err := h.Medias.Upload(r.Context(), service.Upload{
		WebsiteID: wid,
		Filename:  header.Filename,
		Body:      file,
		Intls:     intls,
	})
	switch {
	case errors.Is(err, service.ErrTooLarge):
		middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
		return
	case errors.Is(err, service.ErrFileType), errors.Is(err, service.ErrEmptyUpload), errors.Is(err, service.ErrNoWebsite):
		WriteValidationError(w, map[string]string{"file": err.Error()})
		return
	case err != nil:
		h.writeServiceError(w, r, "media", err)
		return
	}

	resp, err := h.mediaResponse(r.Context(), media)
	if err != nil {
		h.writeServiceError(w, r, "media", err)
		return
	}
	WriteCreated(w, resp)
}

// GetMedia handles GET /api/v1/admin/medias/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	resp, ok := requireEntityByID(h, w, r, "media", func(id int64) (MediaResponse, error) {
		m, err := h.queries.GetMedia(r.Context(), id)
		if err != nil {
			return MediaResponse{}, err
		}
		return h.mediaResponse(r.Context(), m)
	})
	if ok {
		WriteSuccess(w, resp, nil)
	}
}

// SetMediaIntls handles PUT /api/v1/admin/medias/{id}/intls.
func (h *Handler) SetMediaIntls(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	var intls []service.MediaIntl
	if !decodeJSON(w, r, &intls) {
		return
	}
	for _, in := range intls {
		if in.Locale == "" {
			WriteValidationError(w, map[string]string{"locale": "Locale is required"})
			return
		}
	}
	if err := h.Medias.SetIntls(r.Context(), id, intls); err != nil {
		h.writeServiceError(w, r, "media", err)
		return
	}
	h.GetMedia(w, r)
}

// DeleteMedia handles DELETE /api/v1/admin/medias/{id}.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.queries.GetMedia(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "media", err)
		return
	}
	if err := h.Medias.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "media", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CropRequest is the crop box of a media for one configuration.
type CropRequest struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// SaveCrop handles PUT /api/v1/admin/medias/{id}/crops/{config}.
func (h *Handler) SaveCrop(w http.ResponseWriter, r *http.Request) {
	mediaID, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	configID, ok := paramID(w, r, "config")
	if !ok {
		return
	}
	var req CropRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	thumb, err := h.Content.Thumbs.SaveCrop(r.Context(), store.Thumb{
		MediaID:         mediaID,
		ConfigurationID: configID,
		CropX:           req.X,
		CropY:           req.Y,
		CropWidth:       req.Width,
		CropHeight:      req.Height,
	})
	if err != nil {
		h.writeServiceError(w, r, "crop", err)
		return
	}
	if h.Thumbs != nil {
		if err := h.Thumbs.Purge(mediaID); err != nil {
			h.Logger.Warn("thumbnail purge failed", "media_id", mediaID, "error", err)
		}
	}
	WriteSuccess(w, thumb, nil)
}

// ListMediaRelations handles GET /api/v1/admin/relations?entity_type=page&entity_id=1.
func (h *Handler) ListMediaRelations(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entity_type")
	entityID, err := strconv.ParseInt(r.URL.Query().Get("entity_id"), 10, 64)
	if entityType == "" || err != nil || entityID <= 0 {
		WriteBadRequest(w, "entity_type and entity_id are required", nil)
		return
	}
	rels, err := h.queries.ListMediaRelations(r.Context(), entityType, entityID)
	if err != nil {
		h.writeServiceError(w, r, "media relations", err)
		return
	}
	if loc := r.URL.Query().Get("locale"); loc != "" {
		filtered := rels[:0]
		for _, rel := range rels {
			if rel.Locale == loc {
				filtered = append(filtered, rel)
			}
		}
		rels = filtered
	}
	if rels == nil {
		rels = []store.MediaRelation{}
	}
	WriteSuccess(w, rels, &Meta{Total: int64(len(rels))})
}

// AttachRequest links a media to a page, product, newscast or block.
type AttachRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Locale     string `json:"locale"`
	MediaID    int64  `json:"media_id"`
	IsMain     bool   `json:"is_main"`
	Target     int64  `json:"target"`
}

// AttachMedia handles POST /api/v1/admin/relations.
func (h *Handler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	var req AttachRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !model.IsRoutable(req.EntityType) && req.EntityType != model.EntityBlock {
		WriteValidationError(w, map[string]string{"entity_type": "Media cannot be attached to " + req.EntityType})
		return
	}
	rel, err := h.Content.MediaRelations.Attach(r.Context(), lifecycle.MediaRelationRecord{
		MediaRelation: store.MediaRelation{
			EntityType: req.EntityType,
			EntityID:   req.EntityID,
			Locale:     req.Locale,
			MediaID:    req.MediaID,
			IsMain:     req.IsMain,
		},
		Target: req.Target,
	})
	if err != nil {
		h.writeServiceError(w, r, "media relation", err)
		return
	}
	WriteCreated(w, rel)
}

// SetMainMedia handles POST /api/v1/admin/relations/{id}/main.
func (h *Handler) SetMainMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Content.MediaRelations.SetMain(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "media relation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
