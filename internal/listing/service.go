// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/util"
)

// ErrNoListing is returned when the slug names no listing of the website.
var ErrNoListing = errors.New("listing not found")

// Query asks for one page of a listing.
type Query struct {
	WebsiteID int64
	Slug      string
	Locale    string
	// Page is 1-based and ignored by teasers.
	Page int
}

// Item is one entry of a result, localized.
type Item struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Introduction string     `json:"introduction,omitempty"`
	URL          string     `json:"url,omitempty"`
	Published    *time.Time `json:"published,omitempty"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
}

// Result is one page of a listing, or the items of a teaser.
type Result struct {
	Listing    string `json:"listing"`
	Kind       string `json:"kind"`
	EntityType string `json:"entity_type"`
	OrderBy    string `json:"order_by"`
	Locale     string `json:"locale"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Pages      int    `json:"pages"`
	Items      []Item `json:"items"`
}

// Pool is the cached input of a listing: its settings and every
// candidate, visible or not. Time filters run on each call.
type Pool struct {
	Listing       store.Listing `json:"listing"`
	Categories    []int64       `json:"categories"`
	DefaultLocale string        `json:"default_locale"`
	Entries       []Entry       `json:"entries"`
}

// Service executes listings.
type Service struct {
	q      *store.Queries
	pools  *cache.TypedCache[Pool]
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a listing service. A nil cache manager reloads the
// pool on every call.
func NewService(db *sql.DB, cm *cache.Manager, ttl time.Duration, logger *slog.Logger) *Service {
	s := &Service{q: store.New(db), now: time.Now, logger: logger}
	if cm != nil {
		s.pools = cache.Register[Pool](cm, cache.NamespaceListing, ttl)
	}
	return s
}

// SetClock replaces the clock used for publication windows.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Execute runs a listing.
func (s *Service) Execute(ctx context.Context, q Query) (Result, error) {
	pool, err := s.Pool(ctx, q.WebsiteID, q.Slug)
	if err != nil {
		return Result{}, err
	}
	l := pool.Listing
	locale := q.Locale
	if locale == "" {
		locale = pool.DefaultLocale
	}

	selected := Select(pool.Entries, Selection{
		Categories: pool.Categories,
		OrderBy:    l.OrderBy,
		AsEvents:   l.AsEvents,
		Locale:     locale,
		Default:    pool.DefaultLocale,
		Now:        s.now().UTC(),
	})

	res := Result{
		Listing:    l.Slug,
		Kind:       l.Kind,
		EntityType: l.EntityType,
		OrderBy:    l.OrderBy,
		Locale:     locale,
		Total:      len(selected),
		Page:       1,
		Items:      []Item{},
	}

	var window []Entry
	if l.Kind == model.ListingKindTeaser {
		n := min(int(l.NbItems), len(selected))
		window = selected[:n]
		res.PerPage = int(l.NbItems)
		res.Pages = 1
	} else {
		perPage := max(int(l.ItemsPerPage), 1)
		res.PerPage = perPage
		res.Pages = max((len(selected)+perPage-1)/perPage, 1)
		res.Page = min(max(q.Page, 1), res.Pages)
		start := min((res.Page-1)*perPage, len(selected))
		window = selected[start:min(start+perPage, len(selected))]
	}

	for _, e := range window {
		it := Item{
			ID:           e.ID,
			Title:        e.Title(locale, pool.DefaultLocale),
			Introduction: pick(e.Intros, locale, pool.DefaultLocale),
			Published:    e.Published,
			Start:        e.Start,
			End:          e.End,
		}
		if code, ok := e.Codes[locale]; ok {
			it.URL = model.LocalePath(locale, pool.DefaultLocale, code)
		}
		res.Items = append(res.Items, it)
	}
	return res, nil
}

// Pool returns the cached pool of a listing.
func (s *Service) Pool(ctx context.Context, websiteID int64, slug string) (Pool, error) {
	if s.pools == nil {
		return s.load(ctx, websiteID, slug)
	}
	return s.pools.GetOrLoad(ctx, cache.WebsiteKey(websiteID, slug), func(ctx context.Context) (Pool, error) {
		return s.load(ctx, websiteID, slug)
	})
}

func (s *Service) load(ctx context.Context, websiteID int64, slug string) (Pool, error) {
	l, err := s.q.GetListingBySlug(ctx, websiteID, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return Pool{}, fmt.Errorf("%w: %s", ErrNoListing, slug)
	}
	if err != nil {
		return Pool{}, fmt.Errorf("loading listing: %w", err)
	}
	pool := Pool{Listing: l}
	if pool.Categories, err = s.q.ListListingCategoryIDs(ctx, l.ID); err != nil {
		return Pool{}, fmt.Errorf("loading listing categories: %w", err)
	}
	langs, err := s.q.ListActiveLanguages(ctx, websiteID)
	if err != nil {
		return Pool{}, fmt.Errorf("listing languages: %w", err)
	}
	for _, lang := range langs {
		if lang.IsDefault || pool.DefaultLocale == "" {
			pool.DefaultLocale = lang.Code
		}
		if lang.IsDefault {
			break
		}
	}

	switch l.EntityType {
	case model.EntityProduct:
		pool.Entries, err = s.products(ctx, websiteID)
	case model.EntityNewscast:
		pool.Entries, err = s.newscasts(ctx, websiteID)
	default:
		err = fmt.Errorf("listing %s has unsupported entity type %q", l.Slug, l.EntityType)
	}
	if err != nil {
		return Pool{}, err
	}
	if err := s.attachCodes(ctx, websiteID, l.EntityType, pool.Entries); err != nil {
		return Pool{}, err
	}
	s.logger.Debug("listing pool built", "website_id", websiteID, "listing", l.Slug, "entries", len(pool.Entries))
	return pool, nil
}

func (s *Service) products(ctx context.Context, websiteID int64) ([]Entry, error) {
	products, err := s.q.ListProductsByWebsite(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	entries := make([]Entry, 0, len(products))
	index := make(map[int64]int, len(products))
	catalogs := map[int64]bool{}
	for i, p := range products {
		index[p.ID] = len(entries)
		catalogs[p.CatalogID] = true
		entries = append(entries, Entry{
			ID:          p.ID,
			Position:    int64(i + 1),
			Online:      p.IsOnline,
			Titles:      map[string]string{},
			Intros:      map[string]string{},
			Published:   nullTime(p.PublicationStart),
			Unpublished: nullTime(p.PublicationEnd),
		})
	}

	for catalogID := range catalogs {
		intls, err := s.q.ListProductIntlsByCatalog(ctx, catalogID)
		if err != nil {
			return nil, fmt.Errorf("loading product intls: %w", err)
		}
		for _, in := range intls {
			e := &entries[index[in.ProductID]]
			e.Titles[in.Locale] = in.Title
			e.Intros[in.Locale] = intro(in.Introduction, in.BodyHtml)
		}
		rows, err := s.q.ListProductCategoriesByCatalog(ctx, catalogID)
		if err != nil {
			return nil, fmt.Errorf("loading product categories: %w", err)
		}
		for _, r := range rows {
			e := &entries[index[r.ProductID]]
			e.Categories = append(e.Categories, r.CategoryID)
		}
	}
	return entries, nil
}

func (s *Service) newscasts(ctx context.Context, websiteID int64) ([]Entry, error) {
	newscasts, err := s.q.ListNewscasts(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("listing newscasts: %w", err)
	}
	entries := make([]Entry, 0, len(newscasts))
	index := make(map[int64]int, len(newscasts))
	for i, n := range newscasts {
		index[n.ID] = len(entries)
		e := Entry{
			ID:          n.ID,
			Position:    int64(i + 1),
			Online:      n.IsOnline,
			Titles:      map[string]string{},
			Intros:      map[string]string{},
			Published:   nullTime(n.PublicationDate),
			Unpublished: nullTime(n.PublicationEnd),
			Start:       nullTime(n.StartDate),
			End:         nullTime(n.EndDate),
		}
		if n.CategoryID.Valid {
			e.Categories = []int64{n.CategoryID.Int64}
		}
		entries = append(entries, e)
	}

	intls, err := s.q.ListNewscastIntlsByWebsite(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("loading newscast intls: %w", err)
	}
	for _, in := range intls {
		i, ok := index[in.NewscastID]
		if !ok {
			continue
		}
		entries[i].Titles[in.Locale] = in.Title
		entries[i].Intros[in.Locale] = intro(in.Introduction, in.BodyHtml)
	}
	return entries, nil
}

// attachCodes adds the online url code of each entry per locale.
func (s *Service) attachCodes(ctx context.Context, websiteID int64, entityType string, entries []Entry) error {
	urls, err := s.q.ListUrlsByType(ctx, websiteID, entityType)
	if err != nil {
		return fmt.Errorf("loading %s urls: %w", entityType, err)
	}
	index := make(map[int64]int, len(entries))
	for i, e := range entries {
		index[e.ID] = i
	}
	for _, u := range urls {
		i, ok := index[u.EntityID]
		if !ok || !u.IsOnline {
			continue
		}
		if entries[i].Codes == nil {
			entries[i].Codes = map[string]string{}
		}
		entries[i].Codes[u.Locale] = u.Code
	}
	return nil
}

// Invalidate drops the cached pool of a listing.
func (s *Service) Invalidate(ctx context.Context, websiteID int64, slug string) error {
	if s.pools == nil {
		return nil
	}
	return s.pools.Delete(ctx, cache.WebsiteKey(websiteID, slug))
}

func intro(introduction, bodyHTML string) string {
	if introduction != "" {
		return introduction
	}
	return util.Truncate(util.StripHTML(bodyHTML), 200)
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

// PageParam parses a page query parameter, defaulting to 1.
func PageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
