// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/content"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

// Manager owns the hooks of one entity type.
type Manager interface {
	EntityType() string
	Register(r *Registry)
}

// Options configures a Service. Zero values are usable.
type Options struct {
	Logger   *slog.Logger
	Cache    *cache.Manager
	Renderer *content.Renderer
	Now      func() time.Time

	// DomainsChanged runs after a domain or website write commits, so the
	// host lookup can be rebuilt.
	DomainsChanged func(ctx context.Context) error

	// Changed runs after any write commits, with the entity type and the
	// website it belongs to.
	Changed func(ctx context.Context, entity string, websiteID int64)
}

// Service runs entity writes through the registry. Each write is one
// transaction: pre hooks, the row write, post hooks.
type Service struct {
	db       *sql.DB
	registry *Registry
	logger   *slog.Logger
	cache    *cache.Manager
	renderer *content.Renderer
	now      func() time.Time

	domainsChanged func(ctx context.Context) error
	changed        func(ctx context.Context, entity string, websiteID int64)

	Websites             *WebsiteManager
	Domains              *DomainManager
	Languages            *LanguageManager
	Colors               *ColorManager
	Pages                *PageManager
	Layouts              *LayoutManager
	Menus                *MenuManager
	Links                *LinkManager
	Forms                *FormManager
	FormFields           *FormFieldManager
	Newsletters          *NewsletterManager
	Catalogs             *CatalogManager
	Categories           *CategoryManager
	Products             *ProductManager
	Features             *FeatureManager
	FeatureValues        *FeatureValueManager
	FeatureValueProducts *FeatureValueProductManager
	Newscasts            *NewscastManager
	NewscastCategories   *NewscastCategoryManager
	Tables               *TableManager
	Listings             *ListingManager
	MediaRelations       *MediaRelationManager
	Thumbs               *ThumbManager
}

// NewService builds every manager and registers its hooks.
func NewService(db *sql.DB, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = content.NewRenderer()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		db:             db,
		registry:       NewRegistry(opts.Logger),
		logger:         opts.Logger,
		cache:          opts.Cache,
		renderer:       opts.Renderer,
		now:            opts.Now,
		domainsChanged: opts.DomainsChanged,
		changed:        opts.Changed,
	}

	s.Websites = &WebsiteManager{s}
	s.Domains = &DomainManager{s}
	s.Languages = &LanguageManager{s}
	s.Colors = &ColorManager{s}
	s.Pages = &PageManager{s}
	s.Layouts = &LayoutManager{s}
	s.Menus = &MenuManager{s}
	s.Links = &LinkManager{s}
	s.Forms = &FormManager{s}
	s.FormFields = &FormFieldManager{s}
	s.Newsletters = &NewsletterManager{s}
	s.Catalogs = &CatalogManager{s}
	s.Categories = &CategoryManager{s}
	s.Products = &ProductManager{s}
	s.Features = &FeatureManager{s}
	s.FeatureValues = &FeatureValueManager{s}
	s.FeatureValueProducts = &FeatureValueProductManager{s}
	s.Newscasts = &NewscastManager{s}
	s.NewscastCategories = &NewscastCategoryManager{s}
	s.Tables = &TableManager{s}
	s.Listings = &ListingManager{s}
	s.MediaRelations = &MediaRelationManager{s}
	s.Thumbs = &ThumbManager{s}

	for _, m := range s.Managers() {
		m.Register(s.registry)
	}
	return s
}

// Managers returns every manager in registration order.
func (s *Service) Managers() []Manager {
	return []Manager{
		s.Websites, s.Domains, s.Languages, s.Colors,
		s.Pages, s.Layouts, s.Menus, s.Links,
		s.Forms, s.FormFields, s.Newsletters,
		s.Catalogs, s.Categories, s.Products,
		s.Features, s.FeatureValues, s.FeatureValueProducts,
		s.Newscasts, s.NewscastCategories,
		s.Tables, s.Listings, s.MediaRelations, s.Thumbs,
	}
}

// Registry exposes the hook registry so callers can add their own hooks.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Renderer returns the body renderer used by the managers.
func (s *Service) Renderer() *content.Renderer {
	return s.renderer
}

// DB returns the underlying database handle.
func (s *Service) DB() *sql.DB {
	return s.db
}

func (s *Service) nowUTC() time.Time {
	return s.now().UTC()
}

// write runs fn in a transaction and drops the cached entries of the
// website fn reports once the transaction committed.
func (s *Service) write(ctx context.Context, entity string, fn func(q *store.Queries) (int64, error)) error {
	var websiteID int64
	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		id, err := fn(q)
		websiteID = id
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Debug("content written", "entity", entity, "website_id", websiteID)
	s.invalidate(ctx, websiteID)
	if entity == model.EntityDomain || entity == model.EntityWebsite || entity == model.EntityLanguage {
		s.notifyDomains(ctx)
	}
	if s.changed != nil && websiteID != 0 {
		s.changed(ctx, entity, websiteID)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, websiteID int64) {
	if s.cache == nil || websiteID == 0 {
		return
	}
	if err := s.cache.InvalidateWebsite(ctx, websiteID); err != nil {
		s.logger.Warn("cache invalidation failed", "category", model.EventCategoryCache, "website_id", websiteID, "error", err)
	}
}

func (s *Service) notifyDomains(ctx context.Context) {
	if s.domainsChanged == nil {
		return
	}
	if err := s.domainsChanged(ctx); err != nil {
		s.logger.Warn("domain index rebuild failed", "category", model.EventCategorySystem, "error", err)
	}
}

// persist dispatches prePersist, runs insert, then postPersist.
func (s *Service) persist(ctx context.Context, q *store.Queries, entity string, subject any, insert func() error) error {
	if err := s.registry.Dispatch(ctx, q, entity, PrePersist, subject); err != nil {
		return err
	}
	if err := insert(); err != nil {
		return err
	}
	return s.registry.Dispatch(ctx, q, entity, PostPersist, subject)
}

// update dispatches preUpdate, runs save, then postUpdate.
func (s *Service) update(ctx context.Context, q *store.Queries, entity string, subject any, save func() error) error {
	if err := s.registry.Dispatch(ctx, q, entity, PreUpdate, subject); err != nil {
		return err
	}
	if err := save(); err != nil {
		return err
	}
	return s.registry.Dispatch(ctx, q, entity, PostUpdate, subject)
}

// remove dispatches preRemove, runs del, then postRemove.
func (s *Service) remove(ctx context.Context, q *store.Queries, entity string, subject any, del func() error) error {
	if err := s.registry.Dispatch(ctx, q, entity, PreRemove, subject); err != nil {
		return err
	}
	if err := del(); err != nil {
		return err
	}
	return s.registry.Dispatch(ctx, q, entity, PostRemove, subject)
}

// Intl is the localized text of a page, product or newscast.
type Intl struct {
	Locale       string `json:"locale"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	Body         string `json:"body"`
	// Code is the url code of the locale. Blank derives it from the title.
	Code string `json:"code"`
}

func findIntl(intls []Intl, locale string) (Intl, bool) {
	for _, in := range intls {
		if in.Locale == locale {
			return in, true
		}
	}
	return Intl{}, false
}

// locales returns the active locale codes of a website, default first
// when one is flagged.
func locales(ctx context.Context, q *store.Queries, websiteID int64) ([]string, string, error) {
	langs, err := q.ListActiveLanguages(ctx, websiteID)
	if err != nil {
		return nil, "", err
	}
	codes := make([]string, 0, len(langs))
	def := ""
	for _, l := range langs {
		codes = append(codes, l.Code)
		if l.IsDefault && def == "" {
			def = l.Code
		}
	}
	if def == "" && len(codes) > 0 {
		def = codes[0]
	}
	return codes, def, nil
}

// completeIntls returns one intl per active locale. Missing locales copy
// the default locale's text, or get fallback as title.
func completeIntls(intls []Intl, codes []string, def, fallback string) []Intl {
	base, ok := findIntl(intls, def)
	if !ok && len(intls) > 0 {
		base = intls[0]
	}
	if base.Title == "" {
		base.Title = fallback
	}

	out := make([]Intl, 0, len(codes))
	for _, code := range codes {
		in, ok := findIntl(intls, code)
		if !ok {
			in = base
			in.Locale = code
			in.Code = ""
		}
		if in.Title == "" {
			in.Title = base.Title
		}
		out = append(out, in)
	}
	return out
}
