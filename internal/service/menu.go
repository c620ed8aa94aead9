// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the read-side services of menus and medias and
// the event log.
package service

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

// MenuItem represents a menu link for frontend rendering.
type MenuItem struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Style    string     `json:"style,omitempty"`
	PageID   *int64     `json:"page_id,omitempty"`
	External bool       `json:"external"`
	Children []MenuItem `json:"children"`
}

// Menu is a menu with its link tree in one locale.
type Menu struct {
	ID     int64      `json:"id"`
	Slug   string     `json:"slug"`
	Name   string     `json:"name"`
	Locale string     `json:"locale"`
	Items  []MenuItem `json:"items"`
}

// MenuService loads menu trees through the menus cache namespace.
type MenuService struct {
	queries *store.Queries
	menus   *cache.TypedCache[Menu]
	logger  *slog.Logger
}

// NewMenuService creates a new MenuService. A nil cache manager disables
// caching.
func NewMenuService(db *sql.DB, cm *cache.Manager, ttl time.Duration, logger *slog.Logger) *MenuService {
	s := &MenuService{queries: store.New(db), logger: logger}
	if cm != nil {
		s.menus = cache.Register[Menu](cm, cache.NamespaceMenus, ttl)
	}
	return s
}

// Menu returns the link tree of a menu in locale. A menu without links in
// locale falls back to the default locale. Offline links and links to
// offline pages are hidden with their children.
func (s *MenuService) Menu(ctx context.Context, websiteID int64, slug, locale string) (Menu, error) {
	if s.menus == nil {
		return s.load(ctx, websiteID, slug, locale)
	}
	return s.menus.GetOrLoad(ctx, cache.WebsiteKey(websiteID, slug, locale), func(ctx context.Context) (Menu, error) {
		return s.load(ctx, websiteID, slug, locale)
	})
}

func (s *MenuService) load(ctx context.Context, websiteID int64, slug, locale string) (Menu, error) {
	menu, err := s.queries.GetMenuBySlug(ctx, websiteID, slug)
	if err != nil {
		return Menu{}, err
	}
	def, err := s.defaultLocale(ctx, websiteID)
	if err != nil {
		return Menu{}, err
	}
	if locale == "" {
		locale = def
	}

	links, err := s.queries.ListLinksByMenu(ctx, menu.ID, locale)
	if err != nil {
		return Menu{}, fmt.Errorf("listing links: %w", err)
	}
	if len(links) == 0 && locale != def {
		s.logger.Debug("menu has no links in locale, using default", "menu", slug, "locale", locale)
		locale = def
		if links, err = s.queries.ListLinksByMenu(ctx, menu.ID, locale); err != nil {
			return Menu{}, fmt.Errorf("listing links: %w", err)
		}
	}

	items, err := s.buildMenuTree(ctx, links, locale, def)
	if err != nil {
		return Menu{}, err
	}
	return Menu{ID: menu.ID, Slug: menu.Slug, Name: menu.Name, Locale: locale, Items: items}, nil
}

func (s *MenuService) defaultLocale(ctx context.Context, websiteID int64) (string, error) {
	langs, err := s.queries.ListActiveLanguages(ctx, websiteID)
	if err != nil {
		return "", fmt.Errorf("listing languages: %w", err)
	}
	for _, l := range langs {
		if l.IsDefault {
			return l.Code, nil
		}
	}
	if len(langs) == 0 {
		return "", errors.New("website has no active language")
	}
	return langs[0].Code, nil
}

// Invalidate drops the cached trees of one menu.
func (s *MenuService) Invalidate(ctx context.Context, websiteID int64, slug string) error {
	if s.menus == nil {
		return nil
	}
	return s.menus.DeletePrefix(ctx, cache.WebsiteKey(websiteID, slug)+":")
}

// buildMenuTree nests the visible links and resolves their urls.
func (s *MenuService) buildMenuTree(ctx context.Context, links []store.Link, locale, def string) ([]MenuItem, error) {
	visible := make([]store.Link, 0, len(links))
	urls := make(map[int64]string, len(links))
	for _, l := range links {
		if !l.IsOnline {
			continue
		}
		if l.TargetPageID.Valid {
			u, err := s.queries.GetEntityUrl(ctx, model.EntityPage, l.TargetPageID.Int64, locale)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && !u.IsOnline) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("loading page url: %w", err)
			}
			urls[l.ID] = model.LocalePath(locale, def, u.Code)
		}
		visible = append(visible, l)
	}

	roots := BuildTree(visible, TreeOf[store.Link]{
		ID:       func(l store.Link) int64 { return l.ID },
		Parent:   func(l store.Link) sql.NullInt64 { return l.ParentID },
		Position: func(l store.Link) int64 { return l.Position },
	})

	var convert func(nodes []*Node[store.Link]) []MenuItem
	convert = func(nodes []*Node[store.Link]) []MenuItem {
		items := make([]MenuItem, 0, len(nodes))
		for _, n := range nodes {
			l := n.Item
			mi := MenuItem{ID: l.ID, Title: l.Title, Style: l.TargetStyle, Children: convert(n.Children)}
			if l.TargetPageID.Valid {
				id := l.TargetPageID.Int64
				mi.PageID = &id
				mi.URL = urls[l.ID]
			} else {
				mi.URL = l.TargetUrl
				mi.External = true
			}
			items = append(items, mi)
		}
		return items
	}
	return convert(roots), nil
}
