// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/catalog"
	"github.com/olegiv/mcms-go/internal/imaging"
	"github.com/olegiv/mcms-go/internal/listing"
	"github.com/olegiv/mcms-go/internal/locale"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/seo"
)

// LocalesResponse lists the locales of the requested website.
type LocalesResponse struct {
	Current    string             `json:"current"`
	Source     string             `json:"source"`
	Locales    []locale.Locale    `json:"locales"`
	Alternates []locale.Alternate `json:"alternates,omitempty"`
}

// ListLocales handles GET /api/v1/locales. With entity_type and entity_id it
// also returns the alternate urls of the entity for a locale switcher.
func (h *Handler) ListLocales(w http.ResponseWriter, r *http.Request) {
	s := site(r)
	locales, err := h.Locales.Locales(r.Context(), s.WebsiteID)
	if err != nil {
		h.writeServiceError(w, r, "locales", err)
		return
	}
	resp := LocalesResponse{Current: s.Locale, Source: s.LocaleSource, Locales: locales}

	q := r.URL.Query()
	if entityType := q.Get("entity_type"); entityType != "" {
		entityID, err := strconv.ParseInt(q.Get("entity_id"), 10, 64)
		if err != nil || !model.IsRoutable(entityType) {
			WriteBadRequest(w, "Invalid entity_type or entity_id", nil)
			return
		}
		resp.Alternates, err = h.Locales.Alternates(r.Context(), s.WebsiteID, entityType, entityID, s.Locale)
		if err != nil {
			h.writeServiceError(w, r, "alternates", err)
			return
		}
	}
	WriteSuccess(w, resp, nil)
}

// GetMenu handles GET /api/v1/menus/{slug}.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	s := site(r)
	menu, err := h.Menus.Menu(r.Context(), s.WebsiteID, chi.URLParam(r, "slug"), s.Locale)
	if err != nil {
		h.writeServiceError(w, r, "menu", err)
		return
	}
	WriteSuccess(w, menu, nil)
}

// GetSeo handles GET /api/v1/seo. The url is given either as a public path
// (path=/fr/a-propos) or as an entity (entity_type, entity_id).
func (h *Handler) GetSeo(w http.ResponseWriter, r *http.Request) {
	s := site(r)
	q := r.URL.Query()

	var (
		meta seo.Meta
		err  error
	)
	if entityType := q.Get("entity_type"); entityType != "" {
		entityID, perr := strconv.ParseInt(q.Get("entity_id"), 10, 64)
		if perr != nil {
			WriteBadRequest(w, "Invalid entity_id", nil)
			return
		}
		meta, err = h.Seo.ForEntity(r.Context(), s.WebsiteID, entityType, entityID, s.Locale)
	} else {
		codes, lerr := h.localeCodes(r, s.WebsiteID)
		if lerr != nil {
			h.writeServiceError(w, r, "locales", lerr)
			return
		}
		_, code := locale.SplitPath(q.Get("path"), codes)
		if code == "" {
			meta, err = h.indexMeta(r, s.WebsiteID, s.Locale)
		} else {
			meta, err = h.Seo.ByCode(r.Context(), s.WebsiteID, s.Locale, code)
		}
	}
	if err != nil {
		h.writeServiceError(w, r, "url", err)
		return
	}
	WriteSuccess(w, meta, nil)
}

func (h *Handler) indexMeta(r *http.Request, websiteID int64, loc string) (seo.Meta, error) {
	page, err := h.queries.GetIndexPage(r.Context(), websiteID)
	if err != nil {
		return seo.Meta{}, err
	}
	return h.Seo.ForEntity(r.Context(), websiteID, model.EntityPage, page.ID, loc)
}

func (h *Handler) localeCodes(r *http.Request, websiteID int64) ([]string, error) {
	locales, err := h.Locales.Locales(r.Context(), websiteID)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(locales))
	for i, l := range locales {
		codes[i] = l.Code
	}
	return codes, nil
}

// GetListing handles GET /api/v1/listing/{slug}?page=N.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	s := site(r)
	res, err := h.Listings.Execute(r.Context(), listing.Query{
		WebsiteID: s.WebsiteID,
		Slug:      chi.URLParam(r, "slug"),
		Locale:    s.Locale,
		Page:      listing.PageParam(r.URL.Query().Get("page")),
	})
	if err != nil {
		h.writeServiceError(w, r, "listing", err)
		return
	}
	WriteSuccess(w, res, &Meta{Total: int64(res.Total), Page: res.Page, PerPage: res.PerPage, Pages: res.Pages})
}

// facetPrefix marks the query parameters selecting facet values:
// f.color=red,blue selects red or blue products.
const facetPrefix = "f."

// SearchCatalog handles GET /api/v1/catalog/search.
func (h *Handler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	s := site(r)
	q := r.URL.Query()

	query := catalog.Query{
		WebsiteID: s.WebsiteID,
		Catalog:   q.Get("catalog"),
		Category:  q.Get("category"),
		Text:      q.Get("q"),
		Locale:    s.Locale,
		Page:      queryInt(r, "page", 1),
		PerPage:   queryInt(r, "per_page", 0),
		Facets:    map[string][]string{},
	}
	if query.Catalog == "" {
		WriteBadRequest(w, "catalog is required", nil)
		return
	}
	for key, values := range q {
		feature, ok := strings.CutPrefix(key, facetPrefix)
		if !ok || feature == "" {
			continue
		}
		for _, v := range values {
			for _, slug := range strings.Split(v, ",") {
				if slug = strings.TrimSpace(slug); slug != "" {
					query.Facets[feature] = append(query.Facets[feature], slug)
				}
			}
		}
	}

	res, err := h.Catalog.Execute(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, r, "catalog", err)
		return
	}
	WriteSuccess(w, res, &Meta{Total: int64(res.Total), Page: res.Page, PerPage: res.PerPage, Pages: res.Pages})
}

// GetThumbnail handles GET /api/v1/thumbnail. The source is a media id or a
// path below the public directory; the size comes from a configuration
// slug or from width, height and crop.
func (h *Handler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	s := site(r)
	q := r.URL.Query()

	req := imaging.Request{
		WebsiteID:     s.WebsiteID,
		Path:          q.Get("path"),
		Configuration: q.Get("config"),
		Screen:        q.Get("screen"),
		UserAgent:     r.UserAgent(),
		Locale:        s.Locale,
		Lazy:          q.Get("lazy") != "0" && q.Get("lazy") != "false",
		Options: imaging.Options{
			Width:   queryInt(r, "width", 0),
			Height:  queryInt(r, "height", 0),
			Crop:    q.Get("crop") == "1" || q.Get("crop") == "true",
			Quality: queryInt(r, "quality", 0),
		},
	}
	if raw := q.Get("media"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			WriteBadRequest(w, "Invalid media", nil)
			return
		}
		req.MediaID = id
	}

	thumb, err := h.Thumbs.Execute(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "thumbnail", err)
		return
	}
	WriteSuccess(w, thumb, nil)
}

// SubscribeRequest is the body of a newsletter subscription.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// SubscribeResponse tells whether the address was new.
type SubscribeResponse struct {
	Subscribed bool `json:"subscribed"`
	Created    bool `json:"created"`
}

// SubscribeNewsletter handles POST /api/v1/newsletter/{slug}/subscribe.
func (h *Handler) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	s := site(r)
	var req SubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.queries.GetNewsletterBySlug(r.Context(), s.WebsiteID, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, "newsletter", err)
		return
	}
	created, err := h.Content.Newsletters.Subscribe(r.Context(), n.ID, req.Email, s.Locale)
	if err != nil {
		h.writeServiceError(w, r, "subscription", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, Response{Data: SubscribeResponse{Subscribed: true, Created: created}})
}

// SitemapIndex handles GET /sitemap.xml.
func (h *Handler) SitemapIndex(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Sitemaps.Index(r.Context(), site(r).WebsiteID)
	h.writeXML(w, r, doc, err)
}

// Sitemap handles GET /sitemap-{locale}.xml.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	loc, ok := strings.CutPrefix(strings.TrimSuffix(file, ".xml"), "sitemap-")
	if !ok || loc == "" || !strings.HasSuffix(file, ".xml") {
		WriteNotFound(w, "Sitemap not found")
		return
	}
	doc, err := h.Sitemaps.Sitemap(r.Context(), site(r).WebsiteID, loc)
	h.writeXML(w, r, doc, err)
}

func (h *Handler) writeXML(w http.ResponseWriter, r *http.Request, doc []byte, err error) {
	if err != nil {
		if errors.Is(err, seo.ErrUnknownLocale) {
			WriteNotFound(w, "Sitemap not found")
			return
		}
		h.writeServiceError(w, r, "sitemap", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(doc)
}

// Robots handles GET /robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	body, err := h.Sitemaps.Robots(r.Context(), site(r).WebsiteID)
	if err != nil {
		h.writeServiceError(w, r, "robots", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
