// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
)

// NewscastRecord is the subject of newscast hooks.
type NewscastRecord struct {
	store.Newscast
	Intls []Intl
}

// NewscastManager handles news items and events.
type NewscastManager struct{ s *Service }

func (m *NewscastManager) EntityType() string { return model.EntityNewscast }

func (m *NewscastManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityNewscast, ev, "newscast.dates", 10, m.dates)
		On(r, model.EntityNewscast, ev, "newscast.category", 20, func(ctx context.Context, q *store.Queries, n *NewscastRecord) error {
			if !n.CategoryID.Valid {
				return nil
			}
			c, err := q.GetNewscastCategory(ctx, n.CategoryID.Int64)
			if err != nil || c.WebsiteID != n.WebsiteID {
				return Invalid("category_id", "is not a category of this website")
			}
			return nil
		})
		On(r, model.EntityNewscast, ev, "newscast.intls", 30, func(ctx context.Context, q *store.Queries, n *NewscastRecord) error {
			codes, def, err := locales(ctx, q, n.WebsiteID)
			if err != nil {
				return err
			}
			fallback := ""
			if len(n.Intls) > 0 {
				fallback = n.Intls[0].Title
			}
			if strings.TrimSpace(fallback) == "" && n.Slug == "" {
				return Invalid("intls", "a title is required")
			}
			n.Intls = completeIntls(n.Intls, codes, def, fallback)
			return nil
		})
		On(r, model.EntityNewscast, ev, "newscast.slug", 40, func(ctx context.Context, q *store.Queries, n *NewscastRecord) error {
			fallback := ""
			if len(n.Intls) > 0 {
				fallback = n.Intls[0].Title
			}
			slug, err := uniqueSlug(ctx, q, store.NewscastSlugs, n.WebsiteID, n.Slug, fallback, n.ID)
			n.Slug = slug
			return err
		})
	}
	for _, ev := range []Event{PostPersist, PostUpdate} {
		On(r, model.EntityNewscast, ev, "newscast.intls.save", 10, m.saveIntls)
		On(r, model.EntityNewscast, ev, "newscast.urls", 20, func(ctx context.Context, q *store.Queries, n *NewscastRecord) error {
			return syncUrls(ctx, q, entityUrls{
				WebsiteID: n.WebsiteID, EntityType: model.EntityNewscast, EntityID: n.ID, Online: n.IsOnline,
			}, n.Intls, m.s.nowUTC())
		})
	}
	On(r, model.EntityNewscast, PreRemove, "newscast.urls.delete", 10, func(ctx context.Context, q *store.Queries, n *NewscastRecord) error {
		if err := q.DeleteEntityUrls(ctx, model.EntityNewscast, n.ID); err != nil {
			return err
		}
		return q.DeleteEntityMediaRelations(ctx, model.EntityNewscast, n.ID)
	})
}

// dates defaults the publication date to now and checks date ordering.
// A publication date in the future keeps the item offline until the
// scheduler publishes it.
func (m *NewscastManager) dates(ctx context.Context, q *store.Queries, n *NewscastRecord) error {
	now := m.s.nowUTC()
	if !n.PublicationDate.Valid {
		n.PublicationDate = sql.NullTime{Time: now, Valid: true}
	}
	verr := &ValidationError{}
	if n.PublicationEnd.Valid && !n.PublicationEnd.Time.After(n.PublicationDate.Time) {
		verr.Add("publication_end", "must be after the publication date")
	}
	if n.StartDate.Valid && n.EndDate.Valid && n.EndDate.Time.Before(n.StartDate.Time) {
		verr.Add("end_date", "must not be before the start date")
	}
	if n.EndDate.Valid && !n.StartDate.Valid {
		verr.Add("start_date", "is required when an end date is set")
	}
	if err := verr.Err(); err != nil {
		return err
	}
	if n.ID == 0 && n.PublicationDate.Time.After(now) {
		n.IsOnline = false
	}
	return nil
}

func (m *NewscastManager) saveIntls(ctx context.Context, q *store.Queries, n *NewscastRecord) error {
	for _, in := range n.Intls {
		bodyHTML, err := m.s.renderer.Markdown(in.Body)
		if err != nil {
			return err
		}
		_, err = q.UpsertNewscastIntl(ctx, store.UpsertNewscastIntlParams{
			NewscastID: n.ID, Locale: in.Locale, Title: in.Title,
			Introduction: in.Introduction, Body: in.Body, BodyHtml: bodyHTML,
		})
		if err != nil {
			return fmt.Errorf("saving newscast intl %s: %w", in.Locale, err)
		}
	}
	return nil
}

// Create inserts a newscast.
func (m *NewscastManager) Create(ctx context.Context, rec NewscastRecord) (NewscastRecord, error) {
	err := m.s.write(ctx, model.EntityNewscast, func(q *store.Queries) (int64, error) {
		return rec.WebsiteID, m.s.persist(ctx, q, model.EntityNewscast, &rec, func() error {
			now := m.s.nowUTC()
			n, err := q.CreateNewscast(ctx, store.CreateNewscastParams{
				WebsiteID: rec.WebsiteID, CategoryID: rec.CategoryID, Slug: rec.Slug, IsOnline: rec.IsOnline,
				PublicationDate: rec.PublicationDate, PublicationEnd: rec.PublicationEnd,
				StartDate: rec.StartDate, EndDate: rec.EndDate, CreatedAt: now, UpdatedAt: now,
			})
			rec.Newscast = n
			return err
		})
	})
	return rec, err
}

// Update saves a newscast.
func (m *NewscastManager) Update(ctx context.Context, rec NewscastRecord) (NewscastRecord, error) {
	err := m.s.write(ctx, model.EntityNewscast, func(q *store.Queries) (int64, error) {
		current, err := q.GetNewscast(ctx, rec.ID)
		if err != nil {
			return 0, err
		}
		rec.WebsiteID = current.WebsiteID
		stored, err := q.ListNewscastIntls(ctx, rec.ID)
		if err != nil {
			return 0, err
		}
		for _, s := range stored {
			if _, ok := findIntl(rec.Intls, s.Locale); !ok {
				rec.Intls = append(rec.Intls, Intl{Locale: s.Locale, Title: s.Title, Introduction: s.Introduction, Body: s.Body})
			}
		}
		return rec.WebsiteID, m.s.update(ctx, q, model.EntityNewscast, &rec, func() error {
			n, err := q.UpdateNewscast(ctx, store.UpdateNewscastParams{
				CategoryID: rec.CategoryID, Slug: rec.Slug, IsOnline: rec.IsOnline,
				PublicationDate: rec.PublicationDate, PublicationEnd: rec.PublicationEnd,
				StartDate: rec.StartDate, EndDate: rec.EndDate, UpdatedAt: m.s.nowUTC(), ID: rec.ID,
			})
			rec.Newscast = n
			return err
		})
	})
	return rec, err
}

// Delete removes a newscast.
func (m *NewscastManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityNewscast, func(q *store.Queries) (int64, error) {
		n, err := q.GetNewscast(ctx, id)
		if err != nil {
			return 0, err
		}
		rec := NewscastRecord{Newscast: n}
		return n.WebsiteID, m.s.remove(ctx, q, model.EntityNewscast, &rec, func() error {
			return q.DeleteNewscast(ctx, id)
		})
	})
}

// NewscastCategoryManager handles newscast categories.
type NewscastCategoryManager struct{ s *Service }

func (m *NewscastCategoryManager) EntityType() string { return model.EntityNewscastCategory }

func (m *NewscastCategoryManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityNewscastCategory, ev, "newscast_category.slug", 10, func(ctx context.Context, q *store.Queries, c *store.NewscastCategory) error {
			c.Name = strings.TrimSpace(c.Name)
			if c.Name == "" {
				return Invalid("name", "is required")
			}
			slug, err := uniqueSlug(ctx, q, store.NewscastCategorySlugs, c.WebsiteID, c.Slug, c.Name, c.ID)
			c.Slug = slug
			return err
		})
	}
	On(r, model.EntityNewscastCategory, PrePersist, "newscast_category.position", 20, func(ctx context.Context, q *store.Queries, c *store.NewscastCategory) error {
		pos, err := position.Next(ctx, q, store.NewscastCategoryFamily, c.WebsiteID)
		c.Position = pos
		return err
	})
	On(r, model.EntityNewscastCategory, PostRemove, "newscast_category.rescan", 10, func(ctx context.Context, q *store.Queries, c *store.NewscastCategory) error {
		_, err := position.Rescan(ctx, q, store.NewscastCategoryFamily, c.WebsiteID)
		return err
	})
}

// Create appends a category.
func (m *NewscastCategoryManager) Create(ctx context.Context, c store.NewscastCategory) (store.NewscastCategory, error) {
	err := m.s.write(ctx, model.EntityNewscastCategory, func(q *store.Queries) (int64, error) {
		return c.WebsiteID, m.s.persist(ctx, q, model.EntityNewscastCategory, &c, func() error {
			saved, err := q.CreateNewscastCategory(ctx, store.CreateNewscastCategoryParams{
				WebsiteID: c.WebsiteID, Slug: c.Slug, Name: c.Name, Position: c.Position,
			})
			c = saved
			return err
		})
	})
	return c, err
}

// Update saves a category.
func (m *NewscastCategoryManager) Update(ctx context.Context, c store.NewscastCategory) (store.NewscastCategory, error) {
	err := m.s.write(ctx, model.EntityNewscastCategory, func(q *store.Queries) (int64, error) {
		current, err := q.GetNewscastCategory(ctx, c.ID)
		if err != nil {
			return 0, err
		}
		c.WebsiteID = current.WebsiteID
		return c.WebsiteID, m.s.update(ctx, q, model.EntityNewscastCategory, &c, func() error {
			saved, err := q.UpdateNewscastCategory(ctx, c.ID, c.Slug, c.Name)
			c = saved
			return err
		})
	})
	return c, err
}

// Move places a category at target.
func (m *NewscastCategoryManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityNewscastCategory, func(q *store.Queries) (int64, error) {
		c, err := q.GetNewscastCategory(ctx, id)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.NewscastCategoryFamily, id, target, c.WebsiteID)
		return c.WebsiteID, err
	})
}

// Delete removes a category. Its newscasts become uncategorized.
func (m *NewscastCategoryManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityNewscastCategory, func(q *store.Queries) (int64, error) {
		c, err := q.GetNewscastCategory(ctx, id)
		if err != nil {
			return 0, err
		}
		return c.WebsiteID, m.s.remove(ctx, q, model.EntityNewscastCategory, &c, func() error {
			return q.DeleteNewscastCategory(ctx, id)
		})
	})
}
