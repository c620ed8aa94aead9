// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/util"
)

// Paging limits.
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
	excerptLength  = 160
)

var (
	// ErrNoCatalog is returned when the catalog does not exist on the website.
	ErrNoCatalog = errors.New("catalog not found")
	// ErrUnknownCategory is returned for a category slug the catalog lacks.
	ErrUnknownCategory = errors.New("category not found")
)

// Item is one product of a search result.
type Item struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	Reference string `json:"reference"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Result is one page of matching products with the facet counts.
type Result struct {
	Catalog string  `json:"catalog"`
	Locale  string  `json:"locale"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	Pages   int     `json:"pages"`
	Items   []Item  `json:"items"`
	Facets  []Facet `json:"facets"`
}

// Service answers catalog searches from a cached index per catalog.
type Service struct {
	q      *store.Queries
	index  *cache.TypedCache[Index]
	logger *slog.Logger
}

// NewService creates a catalog search service. A nil cache manager
// rebuilds the index on every call.
func NewService(db *sql.DB, cm *cache.Manager, ttl time.Duration, logger *slog.Logger) *Service {
	s := &Service{q: store.New(db), logger: logger}
	if cm != nil {
		s.index = cache.Register[Index](cm, cache.NamespaceCatalog, ttl)
	}
	return s
}

// Execute runs a search.
func (s *Service) Execute(ctx context.Context, q Query) (Result, error) {
	cat, err := s.catalog(ctx, q)
	if err != nil {
		return Result{}, err
	}
	idx, err := s.Index(ctx, cat)
	if err != nil {
		return Result{}, err
	}
	if q.Category != "" {
		if _, ok := idx.CategoryID(q.Category); !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownCategory, q.Category)
		}
	}
	if q.Locale == "" {
		q.Locale = idx.DefaultLocale
	}

	ids := Filter(&idx, q)
	page, perPage := normalizePaging(q.Page, q.PerPage)
	res := Result{
		Catalog: idx.Catalog,
		Locale:  q.Locale,
		Total:   len(ids),
		Page:    page,
		PerPage: perPage,
		Pages:   (len(ids) + perPage - 1) / perPage,
		Items:   []Item{},
		Facets:  Facets(&idx, q),
	}

	byID := make(map[int64]*Product, len(idx.Products))
	for i := range idx.Products {
		byID[idx.Products[i].ID] = &idx.Products[i]
	}
	start := min((page-1)*perPage, len(ids))
	end := min(start+perPage, len(ids))
	for _, id := range ids[start:end] {
		res.Items = append(res.Items, item(byID[id], q, idx.DefaultLocale))
	}
	return res, nil
}

func item(p *Product, q Query, defaultLocale string) Item {
	it := Item{ID: p.ID, Slug: p.Slug, Reference: p.Reference}
	it.Title = localized(p.Titles, q.Locale, defaultLocale)
	if intro := localized(p.Intros, q.Locale, defaultLocale); intro != "" {
		if q.Text != "" {
			it.Excerpt = util.Excerpt(intro, q.Text, excerptLength)
		} else {
			it.Excerpt = util.Truncate(intro, excerptLength)
		}
	}
	if code, ok := p.Codes[q.Locale]; ok {
		it.URL = model.LocalePath(q.Locale, defaultLocale, code)
	}
	return it
}

func localized(m map[string]string, locale, fallback string) string {
	if v := m[locale]; v != "" {
		return v
	}
	return m[fallback]
}

func normalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case perPage < 1:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	return page, perPage
}

func (s *Service) catalog(ctx context.Context, q Query) (store.Catalog, error) {
	var (
		cat store.Catalog
		err error
	)
	switch {
	case q.CatalogID != 0:
		cat, err = s.q.GetCatalog(ctx, q.CatalogID)
	case q.Catalog != "":
		cat, err = s.q.GetCatalogBySlug(ctx, q.WebsiteID, q.Catalog)
	default:
		return cat, ErrNoCatalog
	}
	if errors.Is(err, sql.ErrNoRows) || (err == nil && cat.WebsiteID != q.WebsiteID) {
		return store.Catalog{}, ErrNoCatalog
	}
	if err != nil {
		return store.Catalog{}, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

// Index returns the cached index of a catalog, building it on a miss.
func (s *Service) Index(ctx context.Context, cat store.Catalog) (Index, error) {
	load := func(ctx context.Context) (Index, error) {
		return s.build(ctx, cat)
	}
	if s.index == nil {
		return load(ctx)
	}
	key := cache.WebsiteKey(cat.WebsiteID, strconv.FormatInt(cat.ID, 10))
	return s.index.GetOrLoad(ctx, key, load)
}

// Invalidate drops the cached index of a catalog.
func (s *Service) Invalidate(ctx context.Context, websiteID, catalogID int64) error {
	if s.index == nil {
		return nil
	}
	return s.index.Delete(ctx, cache.WebsiteKey(websiteID, strconv.FormatInt(catalogID, 10)))
}

func (s *Service) build(ctx context.Context, cat store.Catalog) (Index, error) {
	idx := Index{WebsiteID: cat.WebsiteID, CatalogID: cat.ID, Catalog: cat.Slug}

	langs, err := s.q.ListActiveLanguages(ctx, cat.WebsiteID)
	if err != nil {
		return idx, fmt.Errorf("listing languages: %w", err)
	}
	for _, l := range langs {
		if l.IsDefault {
			idx.DefaultLocale = l.Code
		}
	}
	if idx.DefaultLocale == "" && len(langs) > 0 {
		idx.DefaultLocale = langs[0].Code
	}

	products, err := s.q.ListProductsByCatalog(ctx, cat.ID)
	if err != nil {
		return idx, fmt.Errorf("listing products: %w", err)
	}
	byID := make(map[int64]int, len(products))
	for _, p := range products {
		if !p.IsOnline {
			continue
		}
		byID[p.ID] = len(idx.Products)
		idx.Products = append(idx.Products, Product{
			ID:        p.ID,
			Position:  p.Position,
			Slug:      p.Slug,
			Reference: p.Reference,
			Values:    make(map[string][]string),
			Titles:    make(map[string]string),
			Intros:    make(map[string]string),
			Codes:     make(map[string]string),
		})
	}
	product := func(id int64) *Product {
		if i, ok := byID[id]; ok {
			return &idx.Products[i]
		}
		return nil
	}

	intls, err := s.q.ListProductIntlsByCatalog(ctx, cat.ID)
	if err != nil {
		return idx, fmt.Errorf("listing product intls: %w", err)
	}
	for _, in := range intls {
		if p := product(in.ProductID); p != nil {
			p.Titles[in.Locale] = in.Title
			intro := in.Introduction
			if intro == "" {
				intro = util.StripHTML(in.BodyHtml)
			}
			p.Intros[in.Locale] = intro
		}
	}

	links, err := s.q.ListProductCategoriesByCatalog(ctx, cat.ID)
	if err != nil {
		return idx, fmt.Errorf("listing product categories: %w", err)
	}
	for _, l := range links {
		if p := product(l.ProductID); p != nil {
			p.Categories = append(p.Categories, l.CategoryID)
		}
	}

	categories, err := s.q.ListCategories(ctx, cat.ID)
	if err != nil {
		return idx, fmt.Errorf("listing categories: %w", err)
	}
	for _, c := range categories {
		idx.Categories = append(idx.Categories, Category{ID: c.ID, Slug: c.Slug, Name: c.Name})
	}

	if err := s.indexFeatures(ctx, &idx, product); err != nil {
		return idx, err
	}

	urls, err := s.q.ListUrlsByType(ctx, cat.WebsiteID, model.EntityProduct)
	if err != nil {
		return idx, fmt.Errorf("listing product urls: %w", err)
	}
	for _, u := range urls {
		if p := product(u.EntityID); p != nil && u.IsOnline {
			p.Codes[u.Locale] = u.Code
		}
	}

	s.logger.Debug("catalog index built", "catalog", cat.Slug, "website_id", cat.WebsiteID, "products", len(idx.Products))
	return idx, nil
}

func (s *Service) indexFeatures(ctx context.Context, idx *Index, product func(int64) *Product) error {
	features, err := s.q.ListFeatures(ctx, idx.WebsiteID)
	if err != nil {
		return fmt.Errorf("listing features: %w", err)
	}
	values, err := s.q.ListFeatureValuesByWebsite(ctx, idx.WebsiteID)
	if err != nil {
		return fmt.Errorf("listing feature values: %w", err)
	}
	valueIntls, err := s.q.ListFeatureValueIntlsByWebsite(ctx, idx.WebsiteID)
	if err != nil {
		return fmt.Errorf("listing feature value intls: %w", err)
	}
	rows, err := s.q.ListFeatureValueProductsByCatalog(ctx, idx.CatalogID)
	if err != nil {
		return fmt.Errorf("listing product values: %w", err)
	}

	labels := make(map[int64]map[string]string)
	for _, in := range valueIntls {
		if labels[in.ValueID] == nil {
			labels[in.ValueID] = make(map[string]string)
		}
		labels[in.ValueID][in.Locale] = in.Label
	}

	featureSlug := make(map[int64]string, len(features))
	filterAt := make(map[int64]int)
	for _, f := range features {
		featureSlug[f.ID] = f.Slug
		if f.AsFilter {
			filterAt[f.ID] = len(idx.Features)
			idx.Features = append(idx.Features, Feature{Slug: f.Slug, Name: f.Name})
		}
	}

	valueSlug := make(map[int64]string, len(values))
	for _, v := range values {
		valueSlug[v.ID] = v.Slug
		if i, ok := filterAt[v.FeatureID]; ok {
			idx.Features[i].Values = append(idx.Features[i].Values, Value{
				Slug: v.Slug, Label: v.Label, Labels: labels[v.ID],
			})
		}
	}

	for _, r := range rows {
		p := product(r.ProductID)
		if p == nil || !r.ValueID.Valid {
			continue
		}
		feature, value := featureSlug[r.FeatureID], valueSlug[r.ValueID.Int64]
		if feature == "" || value == "" || slices.Contains(p.Values[feature], value) {
			continue
		}
		p.Values[feature] = append(p.Values[feature], value)
	}
	return nil
}
