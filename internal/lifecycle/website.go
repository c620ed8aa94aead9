// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/util"
)

// WebsiteRecord is the subject of website hooks.
type WebsiteRecord struct {
	store.Website
	// DefaultLocale, when set on create, adds the first language.
	DefaultLocale string
}

// WebsiteManager handles tenants.
type WebsiteManager struct{ s *Service }

func (m *WebsiteManager) EntityType() string { return model.EntityWebsite }

func (m *WebsiteManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityWebsite, ev, "website.validate", 10, m.validate)
	}
	On(r, model.EntityWebsite, PostPersist, "website.single_default", 10, m.singleDefault)
	On(r, model.EntityWebsite, PostUpdate, "website.single_default", 10, m.singleDefault)
	On(r, model.EntityWebsite, PostPersist, "website.default_language", 20, m.defaultLanguage)
}

func (m *WebsiteManager) validate(ctx context.Context, q *store.Queries, w *WebsiteRecord) error {
	verr := &ValidationError{}
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		verr.Add("name", "is required")
	}

	w.SiteUrl = strings.TrimRight(strings.TrimSpace(w.SiteUrl), "/")
	if w.SiteUrl != "" {
		u, err := url.Parse(w.SiteUrl)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			verr.Add("site_url", "must be an absolute http(s) url")
		}
	}
	if err := verr.Err(); err != nil {
		return err
	}

	base := util.Slugify(w.Slug)
	if base == "" {
		base = util.Slugify(w.Name)
	}
	if base == "" {
		return Invalid("slug", "cannot be derived, set a slug or a name")
	}
	slug, err := util.UniqueSlug(base, func(candidate string) (bool, error) {
		n, err := q.CountWebsiteSlug(ctx, candidate, w.ID)
		return n > 0, err
	})
	if err != nil {
		return err
	}
	w.Slug = slug
	return nil
}

func (m *WebsiteManager) singleDefault(ctx context.Context, q *store.Queries, w *WebsiteRecord) error {
	if !w.IsDefault {
		return nil
	}
	return q.ClearDefaultWebsite(ctx, w.ID)
}

func (m *WebsiteManager) defaultLanguage(ctx context.Context, q *store.Queries, w *WebsiteRecord) error {
	if w.DefaultLocale == "" {
		return nil
	}
	lang := &store.Language{WebsiteID: w.ID, Code: w.DefaultLocale, IsDefault: true, IsActive: true}
	return m.s.Languages.insert(ctx, q, lang)
}

// Create inserts a website.
func (m *WebsiteManager) Create(ctx context.Context, rec WebsiteRecord) (store.Website, error) {
	err := m.s.write(ctx, model.EntityWebsite, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityWebsite, &rec, func() error {
			now := m.s.nowUTC()
			w, err := q.CreateWebsite(ctx, store.CreateWebsiteParams{
				Name: rec.Name, Slug: rec.Slug, SiteUrl: rec.SiteUrl, IsDefault: rec.IsDefault,
				CreatedAt: now, UpdatedAt: now,
			})
			rec.Website = w
			return err
		})
		return rec.ID, err
	})
	return rec.Website, err
}

// Update saves a website.
func (m *WebsiteManager) Update(ctx context.Context, w store.Website) (store.Website, error) {
	rec := WebsiteRecord{Website: w}
	err := m.s.write(ctx, model.EntityWebsite, func(q *store.Queries) (int64, error) {
		err := m.s.update(ctx, q, model.EntityWebsite, &rec, func() error {
			saved, err := q.UpdateWebsite(ctx, store.UpdateWebsiteParams{
				Name: rec.Name, Slug: rec.Slug, SiteUrl: rec.SiteUrl, IsDefault: rec.IsDefault,
				UpdatedAt: m.s.nowUTC(), ID: rec.ID,
			})
			rec.Website = saved
			return err
		})
		return rec.ID, err
	})
	return rec.Website, err
}

// Delete removes a website and, through foreign keys, all its content.
func (m *WebsiteManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityWebsite, func(q *store.Queries) (int64, error) {
		w, err := q.GetWebsite(ctx, id)
		if err != nil {
			return 0, err
		}
		rec := WebsiteRecord{Website: w}
		return id, m.s.remove(ctx, q, model.EntityWebsite, &rec, func() error {
			return q.DeleteWebsite(ctx, id)
		})
	})
}

// DomainManager handles host names of websites.
type DomainManager struct{ s *Service }

func (m *DomainManager) EntityType() string { return model.EntityDomain }

func (m *DomainManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityDomain, ev, "domain.host", 10, m.normalize)
	}
	On(r, model.EntityDomain, PostPersist, "domain.single_default", 10, m.singleDefault)
	On(r, model.EntityDomain, PostUpdate, "domain.single_default", 10, m.singleDefault)
}

func (m *DomainManager) normalize(ctx context.Context, q *store.Queries, d *store.Domain) error {
	d.Host = util.NormalizeHost(d.Host)
	if d.Host == "" {
		return Invalid("host", "is required")
	}
	if d.Locale == "" {
		return nil
	}
	codes, _, err := locales(ctx, q, d.WebsiteID)
	if err != nil {
		return err
	}
	if !slices.Contains(codes, d.Locale) {
		return Invalid("locale", "is not an active language of the website")
	}
	return nil
}

func (m *DomainManager) singleDefault(ctx context.Context, q *store.Queries, d *store.Domain) error {
	if !d.IsDefault {
		return nil
	}
	return q.ClearDefaultDomain(ctx, d.WebsiteID, d.ID)
}

// Create inserts a domain.
func (m *DomainManager) Create(ctx context.Context, d store.Domain) (store.Domain, error) {
	err := m.s.write(ctx, model.EntityDomain, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityDomain, &d, func() error {
			saved, err := q.CreateDomain(ctx, store.CreateDomainParams{
				WebsiteID: d.WebsiteID, Host: d.Host, Locale: d.Locale, IsDefault: d.IsDefault,
				CreatedAt: m.s.nowUTC(),
			})
			d = saved
			return err
		})
		return d.WebsiteID, err
	})
	return d, err
}

// Update saves a domain.
func (m *DomainManager) Update(ctx context.Context, d store.Domain) (store.Domain, error) {
	err := m.s.write(ctx, model.EntityDomain, func(q *store.Queries) (int64, error) {
		err := m.s.update(ctx, q, model.EntityDomain, &d, func() error {
			saved, err := q.UpdateDomain(ctx, store.UpdateDomainParams{
				Host: d.Host, Locale: d.Locale, IsDefault: d.IsDefault, ID: d.ID,
			})
			d = saved
			return err
		})
		return d.WebsiteID, err
	})
	return d, err
}

// Delete removes a domain.
func (m *DomainManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityDomain, func(q *store.Queries) (int64, error) {
		d, err := q.GetDomain(ctx, id)
		if err != nil {
			return 0, err
		}
		return d.WebsiteID, m.s.remove(ctx, q, model.EntityDomain, &d, func() error {
			return q.DeleteDomain(ctx, id)
		})
	})
}

// LanguageManager handles the locales of a website.
type LanguageManager struct{ s *Service }

func (m *LanguageManager) EntityType() string { return model.EntityLanguage }

func (m *LanguageManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityLanguage, ev, "language.code", 10, m.validate)
	}
	On(r, model.EntityLanguage, PrePersist, "language.position", 20, func(ctx context.Context, q *store.Queries, l *store.Language) error {
		pos, err := position.Next(ctx, q, store.LanguageFamily, l.WebsiteID)
		l.Position = pos
		return err
	})
	On(r, model.EntityLanguage, PostPersist, "language.single_default", 10, m.singleDefault)
	On(r, model.EntityLanguage, PostUpdate, "language.single_default", 10, m.singleDefault)
	for _, ev := range []Event{PostPersist, PostUpdate} {
		On(r, model.EntityLanguage, ev, "language.table_cells", 20, m.fillTables)
	}
	On(r, model.EntityLanguage, PostRemove, "language.rescan", 10, func(ctx context.Context, q *store.Queries, l *store.Language) error {
		_, err := position.Rescan(ctx, q, store.LanguageFamily, l.WebsiteID)
		return err
	})
}

func (m *LanguageManager) validate(ctx context.Context, q *store.Queries, l *store.Language) error {
	tag, err := language.Parse(strings.TrimSpace(l.Code))
	if err != nil || tag == language.Und {
		return Invalid("code", "is not a valid language tag")
	}
	l.Code = tag.String()
	if strings.TrimSpace(l.Name) == "" {
		l.Name = display.Self.Name(tag)
	}
	if l.IsDefault && !l.IsActive {
		return Invalid("is_active", "the default language must be active")
	}

	langs, err := q.ListLanguagesByWebsite(ctx, l.WebsiteID)
	if err != nil {
		return err
	}
	for _, other := range langs {
		if other.ID != l.ID && other.Code == l.Code {
			return Invalid("code", "already exists on this website")
		}
	}
	return nil
}

func (m *LanguageManager) singleDefault(ctx context.Context, q *store.Queries, l *store.Language) error {
	if !l.IsDefault {
		return nil
	}
	return q.ClearDefaultLanguage(ctx, l.WebsiteID, l.ID)
}

// fillTables completes the table grids of the website for an active locale.
func (m *LanguageManager) fillTables(ctx context.Context, q *store.Queries, l *store.Language) error {
	if !l.IsActive {
		return nil
	}
	n, err := q.FillTableCells(ctx, l.WebsiteID, l.Code)
	if err != nil {
		return fmt.Errorf("filling table cells for %s: %w", l.Code, err)
	}
	if n > 0 {
		m.s.logger.Debug("table cells added", "locale", l.Code, "website_id", l.WebsiteID, "cells", n)
	}
	return nil
}

func (m *LanguageManager) insert(ctx context.Context, q *store.Queries, l *store.Language) error {
	return m.s.persist(ctx, q, model.EntityLanguage, l, func() error {
		saved, err := q.CreateLanguage(ctx, store.CreateLanguageParams{
			WebsiteID: l.WebsiteID, Code: l.Code, Name: l.Name, IsDefault: l.IsDefault,
			IsActive: l.IsActive, Position: l.Position, CreatedAt: m.s.nowUTC(),
		})
		*l = saved
		return err
	})
}

// Create inserts a language at the end of the website's list.
func (m *LanguageManager) Create(ctx context.Context, l store.Language) (store.Language, error) {
	err := m.s.write(ctx, model.EntityLanguage, func(q *store.Queries) (int64, error) {
		return l.WebsiteID, m.insert(ctx, q, &l)
	})
	return l, err
}

// Update saves a language. Its position is kept.
func (m *LanguageManager) Update(ctx context.Context, l store.Language) (store.Language, error) {
	err := m.s.write(ctx, model.EntityLanguage, func(q *store.Queries) (int64, error) {
		current, err := q.GetLanguage(ctx, l.ID)
		if err != nil {
			return 0, err
		}
		l.WebsiteID = current.WebsiteID
		l.Position = current.Position
		err = m.s.update(ctx, q, model.EntityLanguage, &l, func() error {
			saved, err := q.UpdateLanguage(ctx, store.UpdateLanguageParams{
				Code: l.Code, Name: l.Name, IsDefault: l.IsDefault, IsActive: l.IsActive,
				Position: l.Position, ID: l.ID,
			})
			l = saved
			return err
		})
		return l.WebsiteID, err
	})
	return l, err
}

// Move places a language at target.
func (m *LanguageManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityLanguage, func(q *store.Queries) (int64, error) {
		l, err := q.GetLanguage(ctx, id)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.LanguageFamily, id, target, l.WebsiteID)
		return l.WebsiteID, err
	})
}

// Delete removes a language. The default language cannot be removed.
func (m *LanguageManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityLanguage, func(q *store.Queries) (int64, error) {
		l, err := q.GetLanguage(ctx, id)
		if err != nil {
			return 0, err
		}
		if l.IsDefault {
			return 0, Invalid("is_default", "the default language cannot be removed")
		}
		return l.WebsiteID, m.s.remove(ctx, q, model.EntityLanguage, &l, func() error {
			return q.DeleteLanguage(ctx, id)
		})
	})
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-f]{3}|[0-9a-f]{6})$`)

// ColorManager handles the palette used by the color widget.
type ColorManager struct{ s *Service }

func (m *ColorManager) EntityType() string { return model.EntityColor }

func (m *ColorManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityColor, ev, "color.validate", 10, m.validate)
	}
	On(r, model.EntityColor, PrePersist, "color.position", 20, func(ctx context.Context, q *store.Queries, c *store.Color) error {
		pos, err := position.Next(ctx, q, store.ColorFamily, c.WebsiteID)
		c.Position = pos
		return err
	})
	On(r, model.EntityColor, PostRemove, "color.rescan", 10, func(ctx context.Context, q *store.Queries, c *store.Color) error {
		_, err := position.Rescan(ctx, q, store.ColorFamily, c.WebsiteID)
		return err
	})
}

func (m *ColorManager) validate(ctx context.Context, q *store.Queries, c *store.Color) error {
	c.Hex = strings.ToLower(strings.TrimSpace(c.Hex))
	if c.Hex != "" && !strings.HasPrefix(c.Hex, "#") {
		c.Hex = "#" + c.Hex
	}
	if !hexColor.MatchString(c.Hex) {
		return Invalid("hex", "must be a #rgb or #rrggbb color")
	}
	switch c.Category {
	case "":
		c.Category = model.ColorBackground
	case model.ColorBackground, model.ColorText, model.ColorButton:
	default:
		return Invalid("category", "is not a palette category")
	}
	slug, err := uniqueSlug(ctx, q, store.ColorSlugs, c.WebsiteID, c.Slug, c.Name, c.ID)
	if err != nil {
		return err
	}
	c.Slug = slug
	if strings.TrimSpace(c.Name) == "" {
		c.Name = c.Hex
	}
	return nil
}

// Create appends a color to the palette.
func (m *ColorManager) Create(ctx context.Context, c store.Color) (store.Color, error) {
	err := m.s.write(ctx, model.EntityColor, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityColor, &c, func() error {
			saved, err := q.CreateColor(ctx, store.CreateColorParams{
				WebsiteID: c.WebsiteID, Name: c.Name, Slug: c.Slug, Hex: c.Hex,
				Category: c.Category, IsActive: c.IsActive, Position: c.Position,
			})
			c = saved
			return err
		})
		return c.WebsiteID, err
	})
	return c, err
}

// Update saves a color.
func (m *ColorManager) Update(ctx context.Context, c store.Color) (store.Color, error) {
	err := m.s.write(ctx, model.EntityColor, func(q *store.Queries) (int64, error) {
		current, err := q.GetColor(ctx, c.ID)
		if err != nil {
			return 0, err
		}
		c.WebsiteID = current.WebsiteID
		err = m.s.update(ctx, q, model.EntityColor, &c, func() error {
			saved, err := q.UpdateColor(ctx, store.UpdateColorParams{
				Name: c.Name, Slug: c.Slug, Hex: c.Hex, Category: c.Category,
				IsActive: c.IsActive, ID: c.ID,
			})
			c = saved
			return err
		})
		return c.WebsiteID, err
	})
	return c, err
}

// Move places a color at target.
func (m *ColorManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityColor, func(q *store.Queries) (int64, error) {
		c, err := q.GetColor(ctx, id)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.ColorFamily, id, target, c.WebsiteID)
		return c.WebsiteID, err
	})
}

// Delete removes a color.
func (m *ColorManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityColor, func(q *store.Queries) (int64, error) {
		c, err := q.GetColor(ctx, id)
		if err != nil {
			return 0, err
		}
		return c.WebsiteID, m.s.remove(ctx, q, model.EntityColor, &c, func() error {
			return q.DeleteColor(ctx, id)
		})
	})
}
