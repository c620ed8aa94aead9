// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/scheduler"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/widget"
)

// Health check states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatusPublic is the minimal health response.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed health report served to admin keys.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Commit    string           `json:"commit,omitempty"`
	Checks    map[string]Check `json:"checks"`
	Cache     *CacheInfo       `json:"cache,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// CacheInfo describes the cache backend.
type CacheInfo struct {
	Backend    string      `json:"backend"`
	Namespaces []string    `json:"namespaces"`
	Stats      cache.Stats `json:"stats"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

func (h *Handler) checks() (string, map[string]Check) {
	checks := map[string]Check{
		"database": h.checkDatabase(),
		"disk":     h.checkDiskSpace(),
	}
	status := StatusHealthy
	for _, c := range checks {
		if c.Status != StatusHealthy {
			status = StatusDegraded
		}
	}
	return status, checks
}

func statusCode(status string) int {
	if status == StatusHealthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// Health handles GET /health with the overall status only.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	status, _ := h.checks()
	WriteJSON(w, statusCode(status), HealthStatusPublic{Status: status})
}

// Liveness handles GET /health/live.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready.
func (h *Handler) Readiness(w http.ResponseWriter, _ *http.Request) {
	if c := h.checkDatabase(); c.Status != StatusHealthy {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// HealthDetails handles GET /api/v1/admin/health. verbose=true adds
// runtime figures.
func (h *Handler) HealthDetails(w http.ResponseWriter, r *http.Request) {
	status, checks := h.checks()
	report := HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.Version.Release(),
		Commit:    h.Version.GitCommit,
		Checks:    checks,
	}
	if h.Cache != nil {
		report.Cache = &CacheInfo{Backend: h.Cache.Kind(), Namespaces: h.Cache.Namespaces(), Stats: h.Cache.Stats()}
	}
	if r.URL.Query().Get("verbose") == "true" {
		report.System = systemInfo()
	}
	WriteJSON(w, statusCode(status), report)
}

func (h *Handler) checkDatabase() Check {
	start := time.Now()
	err := h.DB.Ping()
	latency := time.Since(start)
	if err != nil {
		return Check{Status: StatusUnhealthy, Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: StatusHealthy, Message: "Connected", Latency: latency.String()}
}

// checkDiskSpace reports the space left below the public directory.
func (h *Handler) checkDiskSpace() Check {
	if h.PublicDir == "" {
		return Check{Status: StatusHealthy, Message: "No public directory configured"}
	}
	if _, err := os.Stat(h.PublicDir); os.IsNotExist(err) {
		return Check{Status: StatusHealthy, Message: "Public directory does not exist yet"}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.PublicDir, &stat); err != nil {
		return Check{Status: StatusUnhealthy, Message: "Failed to check disk space: " + err.Error()}
	}
	availableBytes := stat.Bavail * uint64(stat.Bsize)
	available := formatBytes(availableBytes)

	const minSpace = 100 * 1024 * 1024 // 100MB
	if availableBytes < minSpace {
		return Check{Status: StatusDegraded, Message: "Low disk space: " + available + " available"}
	}
	return Check{Status: StatusHealthy, Message: available + " available"}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func (h *Handler) mountSystem(r chi.Router) {
	r.Get("/health", h.HealthDetails)

	r.Get("/widgets", h.ListWidgetTypes)
	r.Get("/widgets/{type}", h.BuildWidget)

	r.Get("/jobs", h.ListJobs)
	r.Post("/jobs/{source}/{name}/run", h.TriggerJob)
	r.Put("/jobs/{source}/{name}/schedule", h.UpdateJobSchedule)
	r.Delete("/jobs/{source}/{name}/schedule", h.ResetJobSchedule)
	r.Post("/publication/run", h.RunPublication)

	r.Get("/events", h.ListEvents)

	r.Get("/cache", h.CacheStats)
	r.Delete("/cache", h.ClearCache)
	r.Delete("/cache/websites/{id}", h.InvalidateWebsiteCache)
}

// ListWidgetTypes handles GET /api/v1/admin/widgets.
func (h *Handler) ListWidgetTypes(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.Widgets.Names(), nil)
}

// BuildWidget handles GET /api/v1/admin/widgets/{type}. Options come from
// the query: name, label, required, multiple, category, library,
// child_kind, exclude_id and repeated choice=value:label. Website and
// locale are those of the request.
func (h *Handler) BuildWidget(w http.ResponseWriter, r *http.Request) {
	s := site(r)
	q := r.URL.Query()

	opts := widget.Options{
		Name:      q.Get("name"),
		Label:     q.Get("label"),
		Required:  q.Get("required") == "true",
		Multiple:  q.Get("multiple") == "true",
		WebsiteID: s.WebsiteID,
		Locale:    s.Locale,
		Category:  q.Get("category"),
		Library:   q.Get("library"),
		ChildKind: q.Get("child_kind"),
	}
	if opts.Name == "" {
		opts.Name = chi.URLParam(r, "type")
	}
	if raw := q.Get("exclude_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteBadRequest(w, "Invalid exclude_id", nil)
			return
		}
		opts.ExcludeID = id
	}
	for _, c := range q["choice"] {
		value, label, ok := strings.Cut(c, ":")
		if !ok {
			label = value
		}
		opts.Choices = append(opts.Choices, widget.Choice{Value: value, Label: label})
	}

	field, err := h.Widgets.Build(r.Context(), chi.URLParam(r, "type"), opts)
	if err != nil {
		h.writeServiceError(w, r, "widget type", err)
		return
	}
	WriteSuccess(w, field, nil)
}

// ListJobs handles GET /api/v1/admin/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	jobs := h.Scheduler.Registry().List()
	WriteSuccess(w, jobs, &Meta{Total: int64(len(jobs))})
}

// TriggerJob handles POST /api/v1/admin/jobs/{source}/{name}/run.
func (h *Handler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	if err := h.Scheduler.Registry().TriggerNow(source, name); err != nil {
		h.writeServiceError(w, r, "job", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ScheduleRequest replaces the cron expression of a job.
type ScheduleRequest struct {
	Schedule string `json:"schedule"`
}

// UpdateJobSchedule handles PUT /api/v1/admin/jobs/{source}/{name}/schedule.
func (h *Handler) UpdateJobSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	err := h.Scheduler.Registry().UpdateSchedule(source, name, strings.TrimSpace(req.Schedule))
	if errors.Is(err, scheduler.ErrJobNotFound) {
		h.writeServiceError(w, r, "job", err)
		return
	}
	if err != nil {
		WriteValidationError(w, map[string]string{"schedule": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetJobSchedule handles DELETE /api/v1/admin/jobs/{source}/{name}/schedule.
func (h *Handler) ResetJobSchedule(w http.ResponseWriter, r *http.Request) {
	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	if err := h.Scheduler.Registry().ResetSchedule(source, name); err != nil {
		h.writeServiceError(w, r, "job", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunPublication handles POST /api/v1/admin/publication/run and returns
// the entities it switched.
func (h *Handler) RunPublication(w http.ResponseWriter, r *http.Request) {
	res, err := h.Scheduler.ProcessPublication(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "publication", err)
		return
	}
	WriteSuccess(w, res, nil)
}

// ListEvents handles GET /api/v1/admin/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page := max(queryInt(r, "page", 1), 1)
	perPage := min(max(queryInt(r, "per_page", 50), 1), 200)

	events, err := h.Events.List(r.Context(), int64(perPage), int64((page-1)*perPage))
	if err != nil {
		h.writeServiceError(w, r, "events", err)
		return
	}
	if events == nil {
		events = []store.Event{}
	}
	WriteSuccess(w, events, &Meta{Page: page, PerPage: perPage})
}

// CacheStats handles GET /api/v1/admin/cache.
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	if h.Cache == nil {
		WriteNotFound(w, "Cache is disabled")
		return
	}
	WriteSuccess(w, CacheInfo{Backend: h.Cache.Kind(), Namespaces: h.Cache.Namespaces(), Stats: h.Cache.Stats()}, nil)
}

// ClearCache handles DELETE /api/v1/admin/cache. With ?namespace= only
// that namespace is dropped.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if h.Cache == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if ns := r.URL.Query().Get("namespace"); ns != "" {
		if !slices.Contains(h.Cache.Namespaces(), ns) {
			WriteBadRequest(w, "Unknown cache namespace", map[string]string{"namespace": ns})
			return
		}
		if err := h.Cache.InvalidateNamespace(r.Context(), ns); err != nil {
			h.writeServiceError(w, r, "cache", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.Cache.ClearAll(r.Context()); err != nil {
		h.writeServiceError(w, r, "cache", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InvalidateWebsiteCache handles DELETE /api/v1/admin/cache/websites/{id}.
func (h *Handler) InvalidateWebsiteCache(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	if h.Cache != nil {
		if err := h.Cache.InvalidateWebsite(r.Context(), id); err != nil {
			h.writeServiceError(w, r, "cache", err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
