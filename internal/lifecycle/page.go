// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
)

// DefaultTemplate is the template of pages created without one.
const DefaultTemplate = "default"

// PageRecord is the subject of page hooks.
type PageRecord struct {
	store.Page
	Intls []Intl
	// Target is the 1-based position among siblings. Zero appends.
	Target int64

	previous *store.Page
}

// PageManager handles the page tree, its intls, urls and layouts.
type PageManager struct{ s *Service }

func (m *PageManager) EntityType() string { return model.EntityPage }

func (m *PageManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityPage, ev, "page.validate", 10, m.validate)
		On(r, model.EntityPage, ev, "page.tree", 20, m.tree)
		On(r, model.EntityPage, ev, "page.slug", 30, m.slug)
		On(r, model.EntityPage, ev, "page.intls", 40, m.completeIntls)
	}
	On(r, model.EntityPage, PrePersist, "page.position", 50, func(ctx context.Context, q *store.Queries, p *PageRecord) error {
		pos, err := position.Next(ctx, q, store.PageFamily, p.WebsiteID, p.ParentID)
		p.Position = pos
		return err
	})

	for _, ev := range []Event{PostPersist, PostUpdate} {
		On(r, model.EntityPage, ev, "page.intls.save", 10, m.saveIntls)
		On(r, model.EntityPage, ev, "page.urls", 20, m.urls)
		On(r, model.EntityPage, ev, "page.single_index", 30, func(ctx context.Context, q *store.Queries, p *PageRecord) error {
			if !p.IsIndex {
				return nil
			}
			return q.ClearIndexPage(ctx, p.WebsiteID, p.ID)
		})
	}
	On(r, model.EntityPage, PostPersist, "page.layout", 40, m.defaultLayout)
	On(r, model.EntityPage, PostPersist, "page.insert_at", 50, func(ctx context.Context, q *store.Queries, p *PageRecord) error {
		_, err := position.Insert(ctx, q, store.PageFamily, p.ID, p.Target, p.WebsiteID, p.ParentID)
		return err
	})
	On(r, model.EntityPage, PostUpdate, "page.reparent", 40, m.reparent)

	On(r, model.EntityPage, PreRemove, "page.children", 10, m.liftChildren)
	On(r, model.EntityPage, PreRemove, "page.urls.delete", 20, func(ctx context.Context, q *store.Queries, p *PageRecord) error {
		if err := q.DeleteEntityUrls(ctx, model.EntityPage, p.ID); err != nil {
			return err
		}
		return q.DeleteEntityMediaRelations(ctx, model.EntityPage, p.ID)
	})
	On(r, model.EntityPage, PostRemove, "page.rescan", 10, func(ctx context.Context, q *store.Queries, p *PageRecord) error {
		_, err := position.Rescan(ctx, q, store.PageFamily, p.WebsiteID, p.ParentID)
		return err
	})
}

func (m *PageManager) validate(ctx context.Context, q *store.Queries, p *PageRecord) error {
	p.AdminName = strings.TrimSpace(p.AdminName)
	if p.AdminName == "" && len(p.Intls) > 0 {
		p.AdminName = strings.TrimSpace(p.Intls[0].Title)
	}
	verr := &ValidationError{}
	if p.AdminName == "" {
		verr.Add("admin_name", "is required")
	}
	if p.Template == "" {
		p.Template = DefaultTemplate
	}
	if p.PublicationStart.Valid && p.PublicationEnd.Valid && p.PublicationEnd.Time.Before(p.PublicationStart.Time) {
		verr.Add("publication_end", "must not be before the publication start")
	}
	return verr.Err()
}

// tree checks the parent and derives the level.
func (m *PageManager) tree(ctx context.Context, q *store.Queries, p *PageRecord) error {
	if !p.ParentID.Valid {
		p.Level = 1
		return nil
	}
	parent, err := q.GetPage(ctx, p.ParentID.Int64)
	if err != nil {
		return Invalid("parent_id", "does not exist")
	}
	if parent.WebsiteID != p.WebsiteID {
		return Invalid("parent_id", "belongs to another website")
	}
	if p.ID != 0 {
		// Walk up from the parent; meeting the page itself means a cycle.
		for cur := parent; ; {
			if cur.ID == p.ID {
				return Invalid("parent_id", "cannot be the page itself or one of its descendants")
			}
			if !cur.ParentID.Valid {
				break
			}
			if cur, err = q.GetPage(ctx, cur.ParentID.Int64); err != nil {
				return err
			}
		}
	}
	p.Level = parent.Level + 1
	return nil
}

func (m *PageManager) slug(ctx context.Context, q *store.Queries, p *PageRecord) error {
	slug, err := uniqueSlug(ctx, q, store.PageSlugs, p.WebsiteID, p.Slug, p.AdminName, p.ID)
	p.Slug = slug
	return err
}

func (m *PageManager) completeIntls(ctx context.Context, q *store.Queries, p *PageRecord) error {
	codes, def, err := locales(ctx, q, p.WebsiteID)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return Invalid("intls", "the website has no active language")
	}
	p.Intls = completeIntls(p.Intls, codes, def, p.AdminName)
	return nil
}

func (m *PageManager) saveIntls(ctx context.Context, q *store.Queries, p *PageRecord) error {
	now := m.s.nowUTC()
	for _, in := range p.Intls {
		_, err := q.UpsertPageIntl(ctx, store.UpsertPageIntlParams{
			PageID:       p.ID,
			Locale:       in.Locale,
			Title:        in.Title,
			Introduction: in.Introduction,
			Body:         in.Body,
			BodyHtml:     m.s.renderer.Sanitize(in.Body),
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("saving page intl %s: %w", in.Locale, err)
		}
	}
	return nil
}

func (m *PageManager) urls(ctx context.Context, q *store.Queries, p *PageRecord) error {
	return syncUrls(ctx, q, entityUrls{
		WebsiteID:  p.WebsiteID,
		EntityType: model.EntityPage,
		EntityID:   p.ID,
		Online:     p.IsOnline,
		Root:       p.IsIndex,
	}, p.Intls, m.s.nowUTC())
}

// defaultLayout gives a new page one zone holding one full width col.
func (m *PageManager) defaultLayout(ctx context.Context, q *store.Queries, p *PageRecord) error {
	layout, err := q.CreateLayout(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("creating layout: %w", err)
	}
	zone, err := q.CreateZone(ctx, store.CreateZoneParams{LayoutID: layout.ID, Position: 1})
	if err != nil {
		return fmt.Errorf("creating zone: %w", err)
	}
	_, err = q.CreateCol(ctx, store.CreateColParams{ZoneID: zone.ID, Position: 1, Size: MaxColSize})
	return err
}

// reparent moves the page to the end of its new sibling set when the
// parent changed, closes the gap it left and fixes descendant levels.
func (m *PageManager) reparent(ctx context.Context, q *store.Queries, p *PageRecord) error {
	prev := p.previous
	if prev == nil || prev.ParentID == p.ParentID {
		return nil
	}
	next, err := position.Next(ctx, q, store.PageFamily, p.WebsiteID, p.ParentID)
	if err != nil {
		return err
	}
	if err := q.SetPageParent(ctx, p.ID, p.ParentID, p.Level, next); err != nil {
		return err
	}
	if _, err := position.Insert(ctx, q, store.PageFamily, p.ID, p.Target, p.WebsiteID, p.ParentID); err != nil {
		return err
	}
	if _, err := position.Rescan(ctx, q, store.PageFamily, prev.WebsiteID, prev.ParentID); err != nil {
		return err
	}
	return relevelPages(ctx, q, p.ID, p.Level+1)
}

// liftChildren hands the children of a removed page to its parent.
func (m *PageManager) liftChildren(ctx context.Context, q *store.Queries, p *PageRecord) error {
	children, err := q.ListPageChildren(ctx, p.ID)
	if err != nil {
		return err
	}
	next, err := position.Next(ctx, q, store.PageFamily, p.WebsiteID, p.ParentID)
	if err != nil {
		return err
	}
	for i, child := range children {
		if err := q.SetPageParent(ctx, child.ID, p.ParentID, p.Level, next+int64(i)); err != nil {
			return err
		}
		if err := relevelPages(ctx, q, child.ID, p.Level+1); err != nil {
			return err
		}
	}
	return nil
}

// relevelPages sets level on every child of parentID, recursively.
func relevelPages(ctx context.Context, q *store.Queries, parentID, level int64) error {
	children, err := q.ListPageChildren(ctx, parentID)
	if err != nil {
		return err
	}
	for _, c := range children {
		if c.Level != level {
			if err := q.SetPageParent(ctx, c.ID, c.ParentID, level, c.Position); err != nil {
				return err
			}
		}
		if err := relevelPages(ctx, q, c.ID, level+1); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a page with its intls, urls and default layout.
func (m *PageManager) Create(ctx context.Context, rec PageRecord) (PageRecord, error) {
	err := m.s.write(ctx, model.EntityPage, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityPage, &rec, func() error {
			now := m.s.nowUTC()
			page, err := q.CreatePage(ctx, store.CreatePageParams{
				WebsiteID: rec.WebsiteID, ParentID: rec.ParentID, AdminName: rec.AdminName,
				Slug: rec.Slug, Template: rec.Template, Position: rec.Position, Level: rec.Level,
				IsIndex: rec.IsIndex, IsOnline: rec.IsOnline,
				PublicationStart: rec.PublicationStart, PublicationEnd: rec.PublicationEnd,
				CreatedAt: now, UpdatedAt: now,
			})
			rec.Page = page
			return err
		})
		return rec.WebsiteID, err
	})
	return rec, err
}

// Update saves a page. Intls left out of rec.Intls keep their text.
func (m *PageManager) Update(ctx context.Context, rec PageRecord) (PageRecord, error) {
	err := m.s.write(ctx, model.EntityPage, func(q *store.Queries) (int64, error) {
		current, err := q.GetPage(ctx, rec.ID)
		if err != nil {
			return 0, err
		}
		rec.previous = &current
		rec.WebsiteID = current.WebsiteID
		rec.Position = current.Position
		if rec.Intls, err = mergePageIntls(ctx, q, rec.ID, rec.Intls); err != nil {
			return 0, err
		}

		err = m.s.update(ctx, q, model.EntityPage, &rec, func() error {
			page, err := q.UpdatePage(ctx, store.UpdatePageParams{
				ParentID: rec.ParentID, AdminName: rec.AdminName, Slug: rec.Slug,
				Template: rec.Template, Level: rec.Level, IsIndex: rec.IsIndex, IsOnline: rec.IsOnline,
				PublicationStart: rec.PublicationStart, PublicationEnd: rec.PublicationEnd,
				UpdatedAt: m.s.nowUTC(), ID: rec.ID,
			})
			rec.Page = page
			return err
		})
		return rec.WebsiteID, err
	})
	return rec, err
}

func mergePageIntls(ctx context.Context, q *store.Queries, pageID int64, given []Intl) ([]Intl, error) {
	stored, err := q.ListPageIntls(ctx, pageID)
	if err != nil {
		return nil, err
	}
	out := append([]Intl(nil), given...)
	for _, s := range stored {
		if _, ok := findIntl(given, s.Locale); !ok {
			out = append(out, Intl{Locale: s.Locale, Title: s.Title, Introduction: s.Introduction, Body: s.Body})
		}
	}
	return out, nil
}

// Move places a page at target among its siblings.
func (m *PageManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityPage, func(q *store.Queries) (int64, error) {
		p, err := q.GetPage(ctx, id)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.PageFamily, id, target, p.WebsiteID, p.ParentID)
		return p.WebsiteID, err
	})
}

// Delete removes a page. Its children move up to its parent.
func (m *PageManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityPage, func(q *store.Queries) (int64, error) {
		p, err := q.GetPage(ctx, id)
		if err != nil {
			return 0, err
		}
		rec := PageRecord{Page: p}
		return p.WebsiteID, m.s.remove(ctx, q, model.EntityPage, &rec, func() error {
			return q.DeletePage(ctx, id)
		})
	})
}
