// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

// ErrWrongWebsite is returned when a url belongs to another website.
var ErrWrongWebsite = errors.New("url belongs to another website")

// Options holds the site-wide defaults of the SEO services.
type Options struct {
	DefaultOGImage string
	TwitterHandle  string
	// DisallowAll makes robots.txt block every crawler (staging sites).
	DisallowAll bool
}

// Service resolves the metadata of public urls.
type Service struct {
	q      *store.Queries
	meta   *cache.TypedCache[Meta]
	opts   Options
	logger *slog.Logger
}

// NewService creates the SEO metadata service. A nil cache manager
// disables caching.
func NewService(db *sql.DB, cm *cache.Manager, ttl time.Duration, opts Options, logger *slog.Logger) *Service {
	s := &Service{q: store.New(db), opts: opts, logger: logger}
	if cm != nil {
		s.meta = cache.Register[Meta](cm, cache.NamespaceSeo, ttl)
	}
	return s
}

// ByCode resolves the url code of a locale, as requested by the router.
func (s *Service) ByCode(ctx context.Context, websiteID int64, locale, code string) (Meta, error) {
	u, err := s.q.GetUrlByCode(ctx, websiteID, locale, code)
	if err != nil {
		return Meta{}, fmt.Errorf("resolving url %s/%s: %w", locale, code, err)
	}
	return s.forURL(ctx, u)
}

// ForEntity resolves the url of an entity in a locale.
func (s *Service) ForEntity(ctx context.Context, websiteID int64, entityType string, entityID int64, locale string) (Meta, error) {
	u, err := s.q.GetEntityUrl(ctx, entityType, entityID, locale)
	if err != nil {
		return Meta{}, fmt.Errorf("resolving %s %d url: %w", entityType, entityID, err)
	}
	if u.WebsiteID != websiteID {
		return Meta{}, ErrWrongWebsite
	}
	return s.forURL(ctx, u)
}

func (s *Service) forURL(ctx context.Context, u store.Url) (Meta, error) {
	load := func(ctx context.Context) (Meta, error) {
		return s.build(ctx, u)
	}
	if s.meta == nil {
		return load(ctx)
	}
	key := cache.WebsiteKey(u.WebsiteID, u.EntityType, fmt.Sprint(u.EntityID), u.Locale)
	return s.meta.GetOrLoad(ctx, key, load)
}

func (s *Service) build(ctx context.Context, u store.Url) (Meta, error) {
	site, def, err := loadSite(ctx, s.q, u.WebsiteID, s.opts)
	if err != nil {
		return Meta{}, err
	}

	row, err := s.q.GetSeoByUrl(ctx, u.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Meta{}, fmt.Errorf("loading seo: %w", err)
	}

	page, err := s.entityData(ctx, u, def)
	if err != nil {
		return Meta{}, err
	}
	page.Path = model.LocalePath(u.Locale, def, u.Code)
	page.MetaTitle = row.MetaTitle
	page.MetaDescription = row.MetaDescription
	page.OGTitle = row.OgTitle
	page.OGDescription = row.OgDescription
	page.CanonicalURL = row.CanonicalUrl
	page.NoIndex = row.NoIndex || !u.IsIndexable
	page.NoFollow = row.NoFollow
	page.Offline = page.Offline || !u.IsOnline
	if row.OgMediaID.Valid {
		media, err := s.q.GetMedia(ctx, row.OgMediaID.Int64)
		switch {
		case err == nil:
			page.OGImageURL = "/" + media.Path
		case !errors.Is(err, sql.ErrNoRows):
			return Meta{}, fmt.Errorf("loading og media: %w", err)
		}
	}

	meta := BuildMeta(&page, &site)
	meta.Locale = u.Locale

	urls, err := s.q.ListEntityUrls(ctx, u.EntityType, u.EntityID)
	if err != nil {
		return Meta{}, fmt.Errorf("listing alternates: %w", err)
	}
	meta.Alternates = alternates(urls, def, site.SiteURL)
	meta.JSONLD = BuildArticleSchema(&page, meta, &site)
	return *meta, nil
}

// alternates lists the online urls of an entity as hreflang links, plus
// x-default on the default locale when there is more than one.
func alternates(urls []store.Url, def, siteURL string) []Alternate {
	out := []Alternate{}
	var fallback string
	for _, u := range urls {
		if !u.IsOnline {
			continue
		}
		href := makeAbsoluteURL(model.LocalePath(u.Locale, def, u.Code), siteURL)
		out = append(out, Alternate{Hreflang: u.Locale, Href: href})
		if u.Locale == def {
			fallback = href
		}
	}
	if fallback != "" && len(out) > 1 {
		out = append(out, Alternate{Hreflang: XDefaultHreflang, Href: fallback})
	}
	return out
}

type intlText struct {
	Locale, Title, Introduction, Body string
}

func pickText(items []intlText, locale, def string) intlText {
	in, _ := model.PickIntl(items, func(t intlText) string { return t.Locale }, locale, def)
	return in
}

// entityData reads the title and texts of the entity behind a url.
func (s *Service) entityData(ctx context.Context, u store.Url, def string) (PageData, error) {
	var (
		page  PageData
		texts []intlText
	)
	switch u.EntityType {
	case model.EntityPage:
		p, err := s.q.GetPage(ctx, u.EntityID)
		if err != nil {
			return page, fmt.Errorf("loading page: %w", err)
		}
		intls, err := s.q.ListPageIntls(ctx, p.ID)
		if err != nil {
			return page, fmt.Errorf("loading page intls: %w", err)
		}
		for _, in := range intls {
			texts = append(texts, intlText{in.Locale, in.Title, in.Introduction, in.BodyHtml})
		}
		page.Offline = !p.IsOnline
		page.ModifiedAt = p.UpdatedAt
		if p.PublicationStart.Valid {
			page.PublishedAt = &p.PublicationStart.Time
		}

	case model.EntityProduct:
		p, err := s.q.GetProduct(ctx, u.EntityID)
		if err != nil {
			return page, fmt.Errorf("loading product: %w", err)
		}
		intls, err := s.q.ListProductIntls(ctx, p.ID)
		if err != nil {
			return page, fmt.Errorf("loading product intls: %w", err)
		}
		for _, in := range intls {
			texts = append(texts, intlText{in.Locale, in.Title, in.Introduction, in.BodyHtml})
		}
		page.Offline = !p.IsOnline
		page.ModifiedAt = p.UpdatedAt

	case model.EntityNewscast:
		n, err := s.q.GetNewscast(ctx, u.EntityID)
		if err != nil {
			return page, fmt.Errorf("loading newscast: %w", err)
		}
		intls, err := s.q.ListNewscastIntls(ctx, n.ID)
		if err != nil {
			return page, fmt.Errorf("loading newscast intls: %w", err)
		}
		for _, in := range intls {
			texts = append(texts, intlText{in.Locale, in.Title, in.Introduction, in.BodyHtml})
		}
		page.Offline = !n.IsOnline
		page.Article = true
		page.ModifiedAt = n.UpdatedAt
		if n.PublicationDate.Valid {
			page.PublishedAt = &n.PublicationDate.Time
		}

	default:
		s.logger.Debug("no seo source for entity type", "entity", u.EntityType)
	}

	t := pickText(texts, u.Locale, def)
	page.Title = t.Title
	page.Introduction = t.Introduction
	page.Body = t.Body
	return page, nil
}

// loadSite reads the website settings and its default locale.
func loadSite(ctx context.Context, q *store.Queries, websiteID int64, opts Options) (SiteConfig, string, error) {
	w, err := q.GetWebsite(ctx, websiteID)
	if err != nil {
		return SiteConfig{}, "", fmt.Errorf("loading website: %w", err)
	}
	langs, err := q.ListActiveLanguages(ctx, websiteID)
	if err != nil {
		return SiteConfig{}, "", fmt.Errorf("listing languages: %w", err)
	}
	site := SiteConfig{
		SiteName:       w.Name,
		SiteURL:        w.SiteUrl,
		DefaultOGImage: opts.DefaultOGImage,
		TwitterHandle:  opts.TwitterHandle,
	}
	return site, defaultLocale(langs), nil
}

func defaultLocale(langs []store.Language) string {
	for _, l := range langs {
		if l.IsDefault {
			return l.Code
		}
	}
	if len(langs) > 0 {
		return langs[0].Code
	}
	return ""
}
