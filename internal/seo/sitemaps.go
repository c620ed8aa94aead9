// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/service"
	"github.com/olegiv/mcms-go/internal/store"
)

// ErrUnknownLocale is returned for a sitemap of a locale the website does
// not serve.
var ErrUnknownLocale = errors.New("locale not served by the website")

// SitemapPath returns the path of the sitemap of a locale.
func SitemapPath(locale string) string {
	return "/sitemap-" + locale + ".xml"
}

// SitemapService builds the XML sitemaps of each website and locale.
type SitemapService struct {
	q      *store.Queries
	docs   *cache.TypedCache[[]byte]
	opts   Options
	logger *slog.Logger
}

// NewSitemapService creates a sitemap service. A nil cache manager
// disables caching.
func NewSitemapService(db *sql.DB, cm *cache.Manager, ttl time.Duration, opts Options, logger *slog.Logger) *SitemapService {
	s := &SitemapService{q: store.New(db), opts: opts, logger: logger}
	if cm != nil {
		s.docs = cache.Register[[]byte](cm, cache.NamespaceSitemap, ttl)
	}
	return s
}

func (s *SitemapService) cached(ctx context.Context, websiteID int64, name string, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if s.docs == nil {
		return load(ctx)
	}
	return s.docs.GetOrLoad(ctx, cache.WebsiteKey(websiteID, name), load)
}

// Sitemap returns the urlset of one locale.
func (s *SitemapService) Sitemap(ctx context.Context, websiteID int64, locale string) ([]byte, error) {
	return s.cached(ctx, websiteID, "urlset:"+locale, func(ctx context.Context) ([]byte, error) {
		site, _, err := loadSite(ctx, s.q, websiteID, s.opts)
		if err != nil {
			return nil, err
		}
		entries, err := s.Entries(ctx, websiteID, locale)
		if err != nil {
			return nil, err
		}
		b := NewSitemapBuilder(site.SiteURL)
		for _, e := range entries {
			b.Add(e)
		}
		return b.Build()
	})
}

// Index returns the sitemap index listing one sitemap per active locale.
func (s *SitemapService) Index(ctx context.Context, websiteID int64) ([]byte, error) {
	return s.cached(ctx, websiteID, "index", func(ctx context.Context) ([]byte, error) {
		site, _, err := loadSite(ctx, s.q, websiteID, s.opts)
		if err != nil {
			return nil, err
		}
		langs, err := s.q.ListActiveLanguages(ctx, websiteID)
		if err != nil {
			return nil, fmt.Errorf("listing languages: %w", err)
		}
		var sitemaps []IndexSitemap
		for _, l := range langs {
			entries, err := s.Entries(ctx, websiteID, l.Code)
			if err != nil {
				return nil, err
			}
			item := IndexSitemap{Loc: makeAbsoluteURL(SitemapPath(l.Code), site.SiteURL)}
			var last time.Time
			for _, e := range entries {
				if e.UpdatedAt.After(last) {
					last = e.UpdatedAt
				}
			}
			if !last.IsZero() {
				item.LastMod = last.UTC().Format(sitemapDateFormat)
			}
			sitemaps = append(sitemaps, item)
		}
		return BuildIndex(sitemaps)
	})
}

// Robots returns the robots.txt of a website.
func (s *SitemapService) Robots(ctx context.Context, websiteID int64) (string, error) {
	site, _, err := loadSite(ctx, s.q, websiteID, s.opts)
	if err != nil {
		return "", err
	}
	return NewRobotsBuilder(RobotsConfig{SiteURL: site.SiteURL, DisallowAll: s.opts.DisallowAll}).Build(), nil
}

// Warm builds the index and every locale sitemap of every website so the
// first crawler hit is served from cache. It returns the documents built.
func (s *SitemapService) Warm(ctx context.Context) (int, error) {
	websites, err := s.q.ListWebsites(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing websites: %w", err)
	}
	built := 0
	for _, w := range websites {
		if _, err := s.Index(ctx, w.ID); err != nil {
			return built, fmt.Errorf("sitemap index of %s: %w", w.Slug, err)
		}
		built++
		langs, err := s.q.ListActiveLanguages(ctx, w.ID)
		if err != nil {
			return built, err
		}
		for _, l := range langs {
			if _, err := s.Sitemap(ctx, w.ID, l.Code); err != nil {
				return built, fmt.Errorf("sitemap of %s/%s: %w", w.Slug, l.Code, err)
			}
			built++
		}
	}
	return built, nil
}

// urlSet groups the urls of one entity type by entity and locale.
type urlSet map[int64]map[string]store.Url

func (s *SitemapService) urls(ctx context.Context, websiteID int64, entityType string) (urlSet, error) {
	rows, err := s.q.ListUrlsByType(ctx, websiteID, entityType)
	if err != nil {
		return nil, fmt.Errorf("listing %s urls: %w", entityType, err)
	}
	set := make(urlSet)
	for _, u := range rows {
		if set[u.EntityID] == nil {
			set[u.EntityID] = make(map[string]store.Url)
		}
		set[u.EntityID][u.Locale] = u
	}
	return set, nil
}

// Entries lists the urls of one locale in sitemap order: the page tree
// depth first, then products, then newscasts. Offline pages hide their
// subtree; pages opting out of indexing only hide themselves.
func (s *SitemapService) Entries(ctx context.Context, websiteID int64, locale string) ([]Entry, error) {
	langs, err := s.q.ListActiveLanguages(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	served := false
	for _, l := range langs {
		served = served || l.Code == locale
	}
	if !served {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, locale)
	}
	def := defaultLocale(langs)

	ids, err := s.q.ListNoIndexUrlIDs(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("listing noindex urls: %w", err)
	}
	noIndex := make(map[int64]bool, len(ids))
	for _, id := range ids {
		noIndex[id] = true
	}
	listed := func(u store.Url) bool {
		return u.IsOnline && u.IsIndexable && !noIndex[u.ID]
	}
	entry := func(urls map[string]store.Url, updated time.Time) Entry {
		u := urls[locale]
		e := Entry{
			Path:          model.LocalePath(locale, def, u.Code),
			UpdatedAt:     latest(updated, u.UpdatedAt),
			ChangeFreq:    ChangeFreqWeekly,
			Alternates:    make(map[string]string),
			DefaultLocale: def,
		}
		for loc, alt := range urls {
			if listed(alt) {
				e.Alternates[loc] = model.LocalePath(loc, def, alt.Code)
			}
		}
		if len(e.Alternates) < 2 {
			e.Alternates = nil
		}
		return e
	}

	var entries []Entry

	pageURLs, err := s.urls(ctx, websiteID, model.EntityPage)
	if err != nil {
		return nil, err
	}
	pages, err := s.q.ListPagesByWebsite(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	var online []store.Page
	for _, p := range pages {
		if u, ok := pageURLs[p.ID][locale]; ok && p.IsOnline && u.IsOnline {
			online = append(online, p)
		}
	}
	tree := service.BuildTree(online, service.TreeOf[store.Page]{
		ID:       func(p store.Page) int64 { return p.ID },
		Parent:   func(p store.Page) sql.NullInt64 { return p.ParentID },
		Position: func(p store.Page) int64 { return p.Position },
	})
	service.Walk(tree, func(n *service.Node[store.Page]) {
		if !listed(pageURLs[n.Item.ID][locale]) {
			return
		}
		e := entry(pageURLs[n.Item.ID], n.Item.UpdatedAt)
		switch {
		case n.Item.IsIndex:
			e.Priority, e.ChangeFreq = "1.0", ChangeFreqDaily
		case n.Depth == 0:
			e.Priority = "0.8"
		default:
			e.Priority = "0.6"
		}
		entries = append(entries, e)
	})

	for _, kind := range []struct {
		entityType string
		priority   string
	}{
		{model.EntityProduct, "0.5"},
		{model.EntityNewscast, "0.6"},
	} {
		set, err := s.urls(ctx, websiteID, kind.entityType)
		if err != nil {
			return nil, err
		}
		for _, id := range sortedKeys(set) {
			u, ok := set[id][locale]
			if !ok || !listed(u) {
				continue
			}
			e := entry(set[id], time.Time{})
			e.Priority = kind.priority
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func sortedKeys(set urlSet) []int64 {
	keys := make([]int64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
