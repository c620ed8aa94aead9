// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON HTTP API: admin writes through the
// lifecycle managers and public reads of the content services.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/catalog"
	"github.com/olegiv/mcms-go/internal/imaging"
	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/listing"
	"github.com/olegiv/mcms-go/internal/locale"
	"github.com/olegiv/mcms-go/internal/middleware"
	"github.com/olegiv/mcms-go/internal/scheduler"
	"github.com/olegiv/mcms-go/internal/seo"
	"github.com/olegiv/mcms-go/internal/service"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/util"
	"github.com/olegiv/mcms-go/internal/version"
	"github.com/olegiv/mcms-go/internal/webhook"
	"github.com/olegiv/mcms-go/internal/widget"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// Deps are the services the handlers call.
type Deps struct {
	DB        *sql.DB
	Content   *lifecycle.Service
	Widgets   *widget.Registry
	Thumbs    *imaging.Service
	Catalog   *catalog.Service
	Seo       *seo.Service
	Sitemaps  *seo.SitemapService
	Listings  *listing.Service
	Locales   *locale.Service
	Menus     *service.MenuService
	Medias    *service.MediaService
	Events    *service.EventService
	Scheduler *scheduler.Scheduler
	// Webhooks is nil when outbound delivery is not running.
	Webhooks *webhook.Dispatcher
	Cache     *cache.Manager
	Logger    *slog.Logger
	// PublicDir holds uploads and generated thumbnails.
	PublicDir string
	Version   version.Info
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	Deps
	queries   *store.Queries
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{Deps: d, queries: store.New(d.DB), startTime: time.Now()}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	middleware.WriteAPIError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// notFoundErrors are the lookups that answer 404.
var notFoundErrors = []error{
	sql.ErrNoRows,
	catalog.ErrNoCatalog,
	catalog.ErrUnknownCategory,
	listing.ErrNoListing,
	scheduler.ErrJobNotFound,
	widget.ErrUnknownType,
	seo.ErrWrongWebsite,
	seo.ErrUnknownLocale,
	imaging.ErrNoConfiguration,
	imaging.ErrNoSource,
}

// badRequestErrors are caller mistakes that answer 400.
var badRequestErrors = []error{
	imaging.ErrInvalidOptions,
	util.ErrPathTraversal,
}

// writeServiceError maps a service error to a response: field errors to
// 422, missing records to 404, the rest to a logged 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, what string, err error) {
	if fields, ok := lifecycle.AsValidation(err); ok {
		WriteValidationError(w, fields)
		return
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			WriteBadRequest(w, err.Error(), nil)
			return
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			WriteNotFound(w, capitalizeFirst(what)+" not found")
			return
		}
	}
	h.Logger.Error("api request failed", "what", what, "method", r.Method, "path", r.URL.Path, "error", err)
	WriteInternalError(w, "Failed to process "+what)
}

// decodeJSON reads the request body into dst. It writes a 400 and
// returns false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		WriteBadRequest(w, "Invalid JSON body: "+err.Error(), nil)
		return false
	}
	return true
}

// paramID parses a numeric URL parameter. It writes a 400 and returns
// false when the value is not a positive integer.
func paramID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return n
}

// requireEntityByID parses the id parameter and fetches the entity.
// Returns false when a response was already written.
func requireEntityByID[T any](h *Handler, w http.ResponseWriter, r *http.Request, entityName string, fetch func(id int64) (T, error)) (T, bool) {
	var zero T
	id, ok := paramID(w, r, "id")
	if !ok {
		return zero, false
	}
	entity, err := fetch(id)
	if err != nil {
		h.writeServiceError(w, r, entityName, err)
		return zero, false
	}
	return entity, true
}

// site returns the website and locale resolved by the site middleware.
func site(r *http.Request) middleware.Site {
	s, _ := middleware.GetSite(r)
	return s
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Nullable column helpers for the request and response views.

func ptrInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil || *p == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func ptrTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil || p.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: p.UTC(), Valid: true}
}
