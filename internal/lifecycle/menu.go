// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
)

// MenuManager handles menus.
type MenuManager struct{ s *Service }

func (m *MenuManager) EntityType() string { return model.EntityMenu }

func (m *MenuManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityMenu, ev, "menu.validate", 10, m.validate)
	}
	On(r, model.EntityMenu, PreUpdate, "menu.depth", 20, func(ctx context.Context, q *store.Queries, menu *store.Menu) error {
		deepest, err := q.MaxLinkLevel(ctx, menu.ID)
		if err != nil {
			return err
		}
		if deepest > menu.MaxLevel {
			return Invalid("max_level", fmt.Sprintf("links already go %d levels deep", deepest))
		}
		return nil
	})
}

func (m *MenuManager) validate(ctx context.Context, q *store.Queries, menu *store.Menu) error {
	menu.Name = strings.TrimSpace(menu.Name)
	if menu.Name == "" {
		return Invalid("name", "is required")
	}
	if menu.MaxLevel == 0 {
		menu.MaxLevel = 1
	}
	if menu.MaxLevel < 1 {
		return Invalid("max_level", "must be at least 1")
	}
	slug, err := uniqueSlug(ctx, q, store.MenuSlugs, menu.WebsiteID, menu.Slug, menu.Name, menu.ID)
	menu.Slug = slug
	return err
}

// Create inserts a menu.
func (m *MenuManager) Create(ctx context.Context, menu store.Menu) (store.Menu, error) {
	err := m.s.write(ctx, model.EntityMenu, func(q *store.Queries) (int64, error) {
		return menu.WebsiteID, m.s.persist(ctx, q, model.EntityMenu, &menu, func() error {
			now := m.s.nowUTC()
			saved, err := q.CreateMenu(ctx, store.CreateMenuParams{
				WebsiteID: menu.WebsiteID, Slug: menu.Slug, Name: menu.Name, MaxLevel: menu.MaxLevel,
				CreatedAt: now, UpdatedAt: now,
			})
			menu = saved
			return err
		})
	})
	return menu, err
}

// Update saves a menu. Lowering max level below existing links fails.
func (m *MenuManager) Update(ctx context.Context, menu store.Menu) (store.Menu, error) {
	err := m.s.write(ctx, model.EntityMenu, func(q *store.Queries) (int64, error) {
		current, err := q.GetMenu(ctx, menu.ID)
		if err != nil {
			return 0, err
		}
		menu.WebsiteID = current.WebsiteID
		return menu.WebsiteID, m.s.update(ctx, q, model.EntityMenu, &menu, func() error {
			saved, err := q.UpdateMenu(ctx, store.UpdateMenuParams{
				Slug: menu.Slug, Name: menu.Name, MaxLevel: menu.MaxLevel, UpdatedAt: m.s.nowUTC(), ID: menu.ID,
			})
			menu = saved
			return err
		})
	})
	return menu, err
}

// Delete removes a menu and its links.
func (m *MenuManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityMenu, func(q *store.Queries) (int64, error) {
		menu, err := q.GetMenu(ctx, id)
		if err != nil {
			return 0, err
		}
		return menu.WebsiteID, m.s.remove(ctx, q, model.EntityMenu, &menu, func() error {
			return q.DeleteMenu(ctx, id)
		})
	})
}

// LinkRecord is the subject of link hooks.
type LinkRecord struct {
	store.Link
	// Target is the 1-based position among siblings. Zero appends.
	Target int64

	menu     store.Menu
	previous *store.Link
}

// LinkManager handles the link tree of a menu.
type LinkManager struct{ s *Service }

func (m *LinkManager) EntityType() string { return model.EntityLink }

func (m *LinkManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityLink, ev, "link.tree", 10, m.tree)
		On(r, model.EntityLink, ev, "link.target", 20, m.target)
	}
	On(r, model.EntityLink, PrePersist, "link.position", 30, func(ctx context.Context, q *store.Queries, l *LinkRecord) error {
		pos, err := position.Next(ctx, q, store.LinkFamily, l.MenuID, l.ParentID, l.Locale)
		l.Position = pos
		return err
	})
	On(r, model.EntityLink, PostPersist, "link.insert_at", 10, func(ctx context.Context, q *store.Queries, l *LinkRecord) error {
		_, err := position.Insert(ctx, q, store.LinkFamily, l.ID, l.Target, l.MenuID, l.ParentID, l.Locale)
		return err
	})
	On(r, model.EntityLink, PostUpdate, "link.reparent", 10, m.reparent)
	On(r, model.EntityLink, PreRemove, "link.children", 10, m.liftChildren)
	On(r, model.EntityLink, PostRemove, "link.rescan", 10, func(ctx context.Context, q *store.Queries, l *LinkRecord) error {
		_, err := position.Rescan(ctx, q, store.LinkFamily, l.MenuID, l.ParentID, l.Locale)
		return err
	})
}

// tree derives level and locale from the parent and enforces the menu depth.
func (m *LinkManager) tree(ctx context.Context, q *store.Queries, l *LinkRecord) error {
	menu, err := q.GetMenu(ctx, l.MenuID)
	if err != nil {
		return Invalid("menu_id", "does not exist")
	}
	l.menu = menu

	codes, def, err := locales(ctx, q, menu.WebsiteID)
	if err != nil {
		return err
	}

	if l.ParentID.Valid {
		parent, err := q.GetLink(ctx, l.ParentID.Int64)
		if err != nil || parent.MenuID != l.MenuID {
			return Invalid("parent_id", "is not a link of this menu")
		}
		if l.ID != 0 {
			for cur := parent; ; {
				if cur.ID == l.ID {
					return Invalid("parent_id", "cannot be the link itself or one of its descendants")
				}
				if !cur.ParentID.Valid {
					break
				}
				if cur, err = q.GetLink(ctx, cur.ParentID.Int64); err != nil {
					return err
				}
			}
		}
		l.Locale = parent.Locale
		l.Level = parent.Level + 1
	} else {
		l.Level = 1
		if l.Locale == "" {
			l.Locale = def
		}
	}
	if !slices.Contains(codes, l.Locale) {
		return Invalid("locale", "is not an active language of the website")
	}

	depth := int64(1)
	if l.ID != 0 {
		if depth, err = subtreeDepth(ctx, q, l.ID); err != nil {
			return err
		}
	}
	if l.Level+depth-1 > menu.MaxLevel {
		return Invalid("parent_id", fmt.Sprintf("menu %s allows at most %d levels", menu.Slug, menu.MaxLevel))
	}
	return nil
}

// subtreeDepth counts the levels of a link and its descendants.
func subtreeDepth(ctx context.Context, q *store.Queries, id int64) (int64, error) {
	children, err := q.ListLinkChildren(ctx, id)
	if err != nil {
		return 0, err
	}
	var deepest int64
	for _, c := range children {
		d, err := subtreeDepth(ctx, q, c.ID)
		if err != nil {
			return 0, err
		}
		deepest = max(deepest, d)
	}
	return deepest + 1, nil
}

// target validates where the link points and fills a blank title from
// the target page.
func (m *LinkManager) target(ctx context.Context, q *store.Queries, l *LinkRecord) error {
	switch l.TargetStyle {
	case "":
		l.TargetStyle = model.TargetSelf
	case model.TargetSelf, model.TargetBlank:
	default:
		return Invalid("target_style", "must be _self or _blank")
	}
	l.TargetUrl = strings.TrimSpace(l.TargetUrl)
	l.Title = strings.TrimSpace(l.Title)

	if l.TargetPageID.Valid {
		page, err := q.GetPage(ctx, l.TargetPageID.Int64)
		if err != nil || page.WebsiteID != l.menu.WebsiteID {
			return Invalid("target_page_id", "is not a page of this website")
		}
		if l.Title == "" {
			intls, err := q.ListPageIntls(ctx, page.ID)
			if err != nil {
				return err
			}
			_, def, err := locales(ctx, q, page.WebsiteID)
			if err != nil {
				return err
			}
			if in, ok := model.PickIntl(intls, func(i store.PageIntl) string { return i.Locale }, l.Locale, def); ok {
				l.Title = in.Title
			}
			if l.Title == "" {
				l.Title = page.AdminName
			}
		}
	} else if l.TargetUrl == "" {
		return Invalid("target_url", "a link needs a target page or url")
	}

	if l.Title == "" {
		return Invalid("title", "is required")
	}
	return nil
}

// reparent moves an updated link into its new sibling set, closes the gap
// in the old one and carries level and locale down to its descendants.
func (m *LinkManager) reparent(ctx context.Context, q *store.Queries, l *LinkRecord) error {
	prev := l.previous
	if prev == nil {
		return nil
	}
	moved := prev.ParentID != l.ParentID || prev.Locale != l.Locale
	if moved {
		next, err := position.Next(ctx, q, store.LinkFamily, l.MenuID, l.ParentID, l.Locale)
		if err != nil {
			return err
		}
		if err := q.SetLinkParent(ctx, l.ID, l.ParentID, l.Level, next); err != nil {
			return err
		}
		if _, err := position.Insert(ctx, q, store.LinkFamily, l.ID, l.Target, l.MenuID, l.ParentID, l.Locale); err != nil {
			return err
		}
		if _, err := position.Rescan(ctx, q, store.LinkFamily, prev.MenuID, prev.ParentID, prev.Locale); err != nil {
			return err
		}
	}
	if moved || prev.Level != l.Level {
		return m.relevel(ctx, q, l.ID, l.Level+1, l.Locale)
	}
	return nil
}

// liftChildren hands the children of a removed link to its parent, after
// the existing siblings there.
func (m *LinkManager) liftChildren(ctx context.Context, q *store.Queries, l *LinkRecord) error {
	children, err := q.ListLinkChildren(ctx, l.ID)
	if err != nil {
		return err
	}
	next, err := position.Next(ctx, q, store.LinkFamily, l.MenuID, l.ParentID, l.Locale)
	if err != nil {
		return err
	}
	for i, child := range children {
		if err := q.SetLinkParent(ctx, child.ID, l.ParentID, l.Level, next+int64(i)); err != nil {
			return err
		}
		if err := m.relevel(ctx, q, child.ID, l.Level+1, l.Locale); err != nil {
			return err
		}
	}
	return nil
}

// relevel sets level and locale on every descendant of parentID.
func (m *LinkManager) relevel(ctx context.Context, q *store.Queries, parentID, level int64, locale string) error {
	children, err := q.ListLinkChildren(ctx, parentID)
	if err != nil {
		return err
	}
	for _, c := range children {
		if c.Level != level || c.Locale != locale {
			_, err := q.UpdateLink(ctx, store.UpdateLinkParams{
				ParentID: c.ParentID, Locale: locale, Title: c.Title, TargetPageID: c.TargetPageID,
				TargetUrl: c.TargetUrl, TargetStyle: c.TargetStyle, Level: level, IsOnline: c.IsOnline,
				UpdatedAt: m.s.nowUTC(), ID: c.ID,
			})
			if err != nil {
				return err
			}
		}
		if err := m.relevel(ctx, q, c.ID, level+1, locale); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a link.
func (m *LinkManager) Create(ctx context.Context, rec LinkRecord) (store.Link, error) {
	err := m.s.write(ctx, model.EntityLink, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityLink, &rec, func() error {
			now := m.s.nowUTC()
			link, err := q.CreateLink(ctx, store.CreateLinkParams{
				MenuID: rec.MenuID, ParentID: rec.ParentID, Locale: rec.Locale, Title: rec.Title,
				TargetPageID: rec.TargetPageID, TargetUrl: rec.TargetUrl, TargetStyle: rec.TargetStyle,
				Position: rec.Position, Level: rec.Level, IsOnline: rec.IsOnline,
				CreatedAt: now, UpdatedAt: now,
			})
			rec.Link = link
			return err
		})
		return rec.menu.WebsiteID, err
	})
	return rec.Link, err
}

// Update saves a link, moving it when its parent or locale changed.
func (m *LinkManager) Update(ctx context.Context, rec LinkRecord) (store.Link, error) {
	err := m.s.write(ctx, model.EntityLink, func(q *store.Queries) (int64, error) {
		current, err := q.GetLink(ctx, rec.ID)
		if err != nil {
			return 0, err
		}
		rec.previous = &current
		rec.MenuID = current.MenuID
		err = m.s.update(ctx, q, model.EntityLink, &rec, func() error {
			link, err := q.UpdateLink(ctx, store.UpdateLinkParams{
				ParentID: rec.ParentID, Locale: rec.Locale, Title: rec.Title, TargetPageID: rec.TargetPageID,
				TargetUrl: rec.TargetUrl, TargetStyle: rec.TargetStyle, Level: rec.Level,
				IsOnline: rec.IsOnline, UpdatedAt: m.s.nowUTC(), ID: rec.ID,
			})
			rec.Link = link
			return err
		})
		return rec.menu.WebsiteID, err
	})
	return rec.Link, err
}

// Move places a link at target among its siblings.
func (m *LinkManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityLink, func(q *store.Queries) (int64, error) {
		l, err := q.GetLink(ctx, id)
		if err != nil {
			return 0, err
		}
		menu, err := q.GetMenu(ctx, l.MenuID)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.LinkFamily, id, target, l.MenuID, l.ParentID, l.Locale)
		return menu.WebsiteID, err
	})
}

// Delete removes a link. Its children move up one level.
func (m *LinkManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityLink, func(q *store.Queries) (int64, error) {
		l, err := q.GetLink(ctx, id)
		if err != nil {
			return 0, err
		}
		menu, err := q.GetMenu(ctx, l.MenuID)
		if err != nil {
			return 0, err
		}
		rec := LinkRecord{Link: l, menu: menu}
		return menu.WebsiteID, m.s.remove(ctx, q, model.EntityLink, &rec, func() error {
			return q.DeleteLink(ctx, id)
		})
	})
}
