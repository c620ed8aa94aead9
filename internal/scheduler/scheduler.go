// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/webhook"
)

// Source of the built-in jobs in the registry.
const coreSource = "core"

// Default schedules.
const (
	PublishSchedule = "* * * * *"
	SitemapSchedule = "@hourly"
	PruneSchedule   = "@daily"
	GeoIPSchedule   = "@weekly"
	EventsSchedule  = "30 3 * * *"
	WebhookSchedule = "*/5 * * * *"
)

// Retention of the event log and of finished webhook deliveries.
const (
	EventRetention    = 90 * 24 * time.Hour
	DeliveryRetention = 30 * 24 * time.Hour
)

// SitemapWarmer prebuilds sitemap documents.
type SitemapWarmer interface {
	Warm(ctx context.Context) (int, error)
}

// ManifestPruner removes thumbnails of deleted medias.
type ManifestPruner interface {
	PruneManifests(ctx context.Context) (int, error)
}

// EventPruner deletes old audit events.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Notifier receives the publication changes of a website.
type Notifier interface {
	DispatchEvent(ctx context.Context, websiteID int64, eventType string, data any) error
}

// DeliveryQueue retries and prunes outgoing webhook deliveries.
type DeliveryQueue interface {
	RetryDue(ctx context.Context) (int, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Reloader reopens a file-backed resource when it changed on disk.
type Reloader interface {
	Reload() error
}

// Options wires the jobs. Nil members disable their job.
type Options struct {
	Cache    *cache.Manager
	Sitemaps SitemapWarmer
	Thumbs   ManifestPruner
	GeoIP    Reloader
	Events   EventPruner
	Notifier Notifier
	Webhooks DeliveryQueue
	Now      func() time.Time
	// Overrides replaces default schedules, keyed by job name.
	Overrides map[string]string
}

// Scheduler runs periodic content jobs.
type Scheduler struct {
	db       *sql.DB
	cron     *cron.Cron
	registry *Registry
	opts     Options
	logger   *slog.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// New creates a new scheduler instance.
func New(db *sql.DB, opts Options, logger *slog.Logger) *Scheduler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		db:       db,
		cron:     cron.New(),
		registry: NewRegistry(opts.Overrides, logger),
		opts:     opts,
		logger:   logger,
	}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	s.lastRun = s.opts.Now().UTC().Add(-time.Minute)
	s.mu.Unlock()

	jobs := []struct {
		name, description, schedule string
		run                         func(context.Context) error
		enabled                     bool
	}{
		{"publication", "Switch products and newscasts whose publication window opened or closed", PublishSchedule, s.runPublication, true},
		{"sitemaps", "Warm sitemap documents of every website", SitemapSchedule, s.runSitemaps, s.opts.Sitemaps != nil},
		{"thumbnails", "Prune thumbnail manifests of deleted medias", PruneSchedule, s.runPrune, s.opts.Thumbs != nil},
		{"geoip", "Reload the GeoIP database when it changed", GeoIPSchedule, s.runGeoIP, s.opts.GeoIP != nil},
		{"events", "Delete audit events past retention", EventsSchedule, s.runEvents, s.opts.Events != nil},
		{"webhooks", "Retry due webhook deliveries and prune old ones", WebhookSchedule, s.runWebhooks, s.opts.Webhooks != nil},
	}
	for _, j := range jobs {
		if !j.enabled {
			continue
		}
		name, run := j.name, j.run
		jobFunc := func() {
			if err := run(context.Background()); err != nil {
				s.logger.Error("scheduled job failed", "job", name, "error", err)
			}
		}
		schedule := s.registry.EffectiveSchedule(name, j.schedule)
		entryID, err := s.cron.AddFunc(schedule, jobFunc)
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", name, err)
		}
		s.registry.Register(coreSource, name, j.description, j.schedule, s.cron, entryID, jobFunc, func() error {
			return run(context.Background())
		})
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Publication is the outcome of one publication pass.
type Publication struct {
	Published   map[string][]int64 `json:"published"`
	Unpublished map[string][]int64 `json:"unpublished"`
	Websites    []int64            `json:"websites"`
}

// ProcessPublication switches online the products and newscasts whose
// publication date fell since the previous pass, and offline those whose
// publication ended. Their urls follow and the caches of the touched
// websites are dropped.
func (s *Scheduler) ProcessPublication(ctx context.Context) (Publication, error) {
	now := s.opts.Now().UTC()
	s.mu.Lock()
	since := s.lastRun
	s.mu.Unlock()

	res := Publication{Published: map[string][]int64{}, Unpublished: map[string][]int64{}}
	websites := map[int64]*Publication{}

	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		steps := []struct {
			entity string
			online bool
			run    func() ([]int64, error)
		}{
			{model.EntityProduct, true, func() ([]int64, error) { return q.PublishDueProducts(ctx, since, now) }},
			{model.EntityProduct, false, func() ([]int64, error) { return q.UnpublishExpiredProducts(ctx, now) }},
			{model.EntityNewscast, true, func() ([]int64, error) { return q.PublishDueNewscasts(ctx, since, now) }},
			{model.EntityNewscast, false, func() ([]int64, error) { return q.UnpublishExpiredNewscasts(ctx, now) }},
		}
		for _, st := range steps {
			ids, err := st.run()
			if err != nil {
				return fmt.Errorf("switching %s publication: %w", st.entity, err)
			}
			for _, id := range ids {
				if err := q.SetEntityUrlsOnline(ctx, st.online, now, st.entity, id); err != nil {
					return fmt.Errorf("switching %s %d urls: %w", st.entity, id, err)
				}
				wid, err := websiteOf(ctx, q, st.entity, id)
				if err != nil {
					return err
				}
				per, ok := websites[wid]
				if !ok {
					per = &Publication{Published: map[string][]int64{}, Unpublished: map[string][]int64{}}
					websites[wid] = per
				}
				if st.online {
					per.Published[st.entity] = append(per.Published[st.entity], id)
				} else {
					per.Unpublished[st.entity] = append(per.Unpublished[st.entity], id)
				}
			}
			if len(ids) == 0 {
				continue
			}
			if st.online {
				res.Published[st.entity] = append(res.Published[st.entity], ids...)
			} else {
				res.Unpublished[st.entity] = append(res.Unpublished[st.entity], ids...)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()

	for wid, per := range websites {
		res.Websites = append(res.Websites, wid)
		if s.opts.Cache != nil {
			if err := s.opts.Cache.InvalidateWebsite(ctx, wid); err != nil {
				s.logger.Warn("cache invalidation failed", "website_id", wid, "error", err)
			}
		}
		s.notify(ctx, wid, per)
	}
	slices.Sort(res.Websites)
	if len(res.Websites) > 0 {
		s.logEvent(ctx, res, now)
	}
	return res, nil
}

func websiteOf(ctx context.Context, q *store.Queries, entity string, id int64) (int64, error) {
	if entity == model.EntityNewscast {
		n, err := q.GetNewscast(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("loading newscast %d: %w", id, err)
		}
		return n.WebsiteID, nil
	}
	p, err := q.GetProduct(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("loading product %d: %w", id, err)
	}
	c, err := q.GetCatalog(ctx, p.CatalogID)
	if err != nil {
		return 0, fmt.Errorf("loading catalog %d: %w", p.CatalogID, err)
	}
	return c.WebsiteID, nil
}

func (s *Scheduler) logEvent(ctx context.Context, res Publication, now time.Time) {
	metadataJSON, _ := json.Marshal(res)
	_, err := store.New(s.db).CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryScheduler,
		Message:   "Publication windows applied by scheduler",
		Metadata:  string(metadataJSON),
		CreatedAt: now,
	})
	if err != nil {
		s.logger.Warn("failed to log publication event", "error", err)
	}
	s.logger.Info("publication windows applied",
		"published", res.Published, "unpublished", res.Unpublished)
}

func (s *Scheduler) notify(ctx context.Context, websiteID int64, per *Publication) {
	if s.opts.Notifier == nil {
		return
	}
	data := webhook.PublicationEventData{Published: per.Published, Unpublished: per.Unpublished}
	if err := s.opts.Notifier.DispatchEvent(ctx, websiteID, webhook.EventContentPublished, data); err != nil {
		s.logger.Warn("publication notification failed", "website_id", websiteID, "error", err)
	}
}

func (s *Scheduler) runPublication(ctx context.Context) error {
	_, err := s.ProcessPublication(ctx)
	return err
}

func (s *Scheduler) runSitemaps(ctx context.Context) error {
	n, err := s.opts.Sitemaps.Warm(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("sitemaps warmed", "documents", n)
	return nil
}

func (s *Scheduler) runPrune(ctx context.Context) error {
	n, err := s.opts.Thumbs.PruneManifests(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("thumbnail manifests pruned", "count", n)
	}
	return nil
}

func (s *Scheduler) runGeoIP(context.Context) error {
	return s.opts.GeoIP.Reload()
}

func (s *Scheduler) runEvents(ctx context.Context) error {
	n, err := s.opts.Events.DeleteOldEvents(ctx, EventRetention)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("old events deleted", "count", n)
	}
	return nil
}

func (s *Scheduler) runWebhooks(ctx context.Context) error {
	n, err := s.opts.Webhooks.RetryDue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("webhook deliveries retried", "count", n)
	}
	pruned, err := s.opts.Webhooks.Prune(ctx, DeliveryRetention)
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.logger.Info("old webhook deliveries deleted", "count", pruned)
	}
	return nil
}
