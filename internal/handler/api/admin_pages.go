// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/middleware"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

// PageView is a page with its intls. Nullable columns are plain JSON
// values: null or absent clears them.
type PageView struct {
	store.Page
	ParentID         *int64           `json:"parent_id"`
	PublicationStart *time.Time       `json:"publication_start"`
	PublicationEnd   *time.Time       `json:"publication_end"`
	Intls            []lifecycle.Intl `json:"intls"`
	Target           int64            `json:"target,omitempty"`
}

func (v PageView) record() lifecycle.PageRecord {
	p := v.Page
	p.ParentID = nullInt(v.ParentID)
	p.PublicationStart = nullTime(v.PublicationStart)
	p.PublicationEnd = nullTime(v.PublicationEnd)
	return lifecycle.PageRecord{Page: p, Intls: v.Intls, Target: v.Target}
}

func (h *Handler) pageView(ctx context.Context, p store.Page) (PageView, error) {
	v := PageView{
		Page:             p,
		ParentID:         ptrInt(p.ParentID),
		PublicationStart: ptrTime(p.PublicationStart),
		PublicationEnd:   ptrTime(p.PublicationEnd),
	}
	intls, err := h.queries.ListPageIntls(ctx, p.ID)
	if err != nil {
		return v, err
	}
	codes, err := h.urlCodes(ctx, model.EntityPage, p.ID)
	if err != nil {
		return v, err
	}
	for _, in := range intls {
		v.Intls = append(v.Intls, lifecycle.Intl{
			Locale: in.Locale, Title: in.Title, Introduction: in.Introduction, Body: in.Body, Code: codes[in.Locale],
		})
	}
	return v, nil
}

// urlCodes maps locale to url code for one entity.
func (h *Handler) urlCodes(ctx context.Context, entityType string, id int64) (map[string]string, error) {
	urls, err := h.queries.ListEntityUrls(ctx, entityType, id)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, len(urls))
	for _, u := range urls {
		codes[u.Locale] = u.Code
	}
	return codes, nil
}

// LinkView is a menu link with plain nullable columns.
type LinkView struct {
	store.Link
	ParentID     *int64 `json:"parent_id"`
	TargetPageID *int64 `json:"target_page_id"`
	Target       int64  `json:"target,omitempty"`
}

func linkView(l store.Link) LinkView {
	return LinkView{Link: l, ParentID: ptrInt(l.ParentID), TargetPageID: ptrInt(l.TargetPageID)}
}

func (v LinkView) record() lifecycle.LinkRecord {
	l := v.Link
	l.ParentID = nullInt(v.ParentID)
	l.TargetPageID = nullInt(v.TargetPageID)
	return lifecycle.LinkRecord{Link: l, Target: v.Target}
}

// LayoutView is the zone, col and block tree of a page.
type LayoutView struct {
	ID     int64      `json:"id"`
	PageID int64      `json:"page_id"`
	Zones  []ZoneView `json:"zones"`
}

// ZoneView is a zone with its cols.
type ZoneView struct {
	store.Zone
	Cols []ColView `json:"cols"`
}

// ColView is a col with its blocks.
type ColView struct {
	store.Col
	Blocks []store.Block `json:"blocks"`
}

func (h *Handler) mountPages(r chi.Router) {
	content := h.Content

	resource[PageView]{
		name: "page",
		get: func(ctx context.Context, id int64) (PageView, error) {
			p, err := h.queries.GetPage(ctx, id)
			if err != nil {
				return PageView{}, err
			}
			return h.pageView(ctx, p)
		},
		list: func(ctx context.Context, wid int64) ([]PageView, error) {
			pages, err := h.queries.ListPagesByWebsite(ctx, wid)
			if err != nil {
				return nil, err
			}
			out := make([]PageView, 0, len(pages))
			for _, p := range pages {
				v, err := h.pageView(ctx, p)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
		create: func(ctx context.Context, wid int64, v PageView) (PageView, error) {
			rec := v.record()
			rec.WebsiteID = wid
			saved, err := content.Pages.Create(ctx, rec)
			if err != nil {
				return PageView{}, err
			}
			return h.pageView(ctx, saved.Page)
		},
		update: func(ctx context.Context, id int64, v PageView) (PageView, error) {
			rec := v.record()
			rec.ID = id
			saved, err := content.Pages.Update(ctx, rec)
			if err != nil {
				return PageView{}, err
			}
			return h.pageView(ctx, saved.Page)
		},
		remove: content.Pages.Delete,
		move:   content.Pages.Move,
	}.register(h, r, "websites", "pages")

	r.Get("/pages/{id}/layout", h.GetLayout)
	r.Post("/pages/{id}/zones", h.AddZone)

	resource[store.Zone]{
		name: "zone",
		get:  h.queries.GetZone,
		update: func(ctx context.Context, id int64, z store.Zone) (store.Zone, error) {
			z.ID = id
			return content.Layouts.UpdateZone(ctx, z)
		},
		remove: content.Layouts.DeleteZone,
		move:   content.Layouts.MoveZone,
	}.mount(h, r, "zones")

	resource[store.Col]{
		name: "col",
		get:  h.queries.GetCol,
		create: func(ctx context.Context, zoneID int64, c store.Col) (store.Col, error) {
			c.ZoneID = zoneID
			return content.Layouts.AddCol(ctx, lifecycle.ColRecord{Col: c})
		},
		update: func(ctx context.Context, id int64, c store.Col) (store.Col, error) {
			return content.Layouts.ResizeCol(ctx, id, c.Size)
		},
		remove: content.Layouts.DeleteCol,
		move:   content.Layouts.MoveCol,
	}.register(h, r, "zones", "cols")

	resource[store.Block]{
		name: "block",
		get:  h.queries.GetBlock,
		list: h.queries.ListBlocks,
		create: func(ctx context.Context, colID int64, b store.Block) (store.Block, error) {
			b.ColID = colID
			return content.Layouts.AddBlock(ctx, lifecycle.BlockRecord{Block: b})
		},
		update: func(ctx context.Context, id int64, b store.Block) (store.Block, error) {
			b.ID = id
			return content.Layouts.UpdateBlock(ctx, b)
		},
		remove: content.Layouts.DeleteBlock,
		move:   content.Layouts.MoveBlock,
	}.register(h, r, "cols", "blocks")

	resource[store.Menu]{
		name: "menu",
		get:  h.queries.GetMenu,
		list: h.queries.ListMenus,
		create: func(ctx context.Context, wid int64, m store.Menu) (store.Menu, error) {
			m.WebsiteID = wid
			return content.Menus.Create(ctx, m)
		},
		update: func(ctx context.Context, id int64, m store.Menu) (store.Menu, error) {
			m.ID = id
			return content.Menus.Update(ctx, m)
		},
		remove: content.Menus.Delete,
	}.register(h, r, "websites", "menus")

	resource[LinkView]{
		name: "link",
		get: func(ctx context.Context, id int64) (LinkView, error) {
			l, err := h.queries.GetLink(ctx, id)
			return linkView(l), err
		},
		// Links are listed in the locale resolved for the request.
		list: func(ctx context.Context, menuID int64) ([]LinkView, error) {
			s, _ := middleware.SiteFrom(ctx)
			links, err := h.queries.ListLinksByMenu(ctx, menuID, s.Locale)
			if err != nil {
				return nil, err
			}
			out := make([]LinkView, len(links))
			for i, l := range links {
				out[i] = linkView(l)
			}
			return out, nil
		},
		create: func(ctx context.Context, menuID int64, v LinkView) (LinkView, error) {
			rec := v.record()
			rec.MenuID = menuID
			l, err := content.Links.Create(ctx, rec)
			return linkView(l), err
		},
		update: func(ctx context.Context, id int64, v LinkView) (LinkView, error) {
			rec := v.record()
			rec.ID = id
			l, err := content.Links.Update(ctx, rec)
			return linkView(l), err
		},
		remove: content.Links.Delete,
		move:   content.Links.Move,
	}.register(h, r, "menus", "links")
}

// GetLayout handles GET /api/v1/admin/pages/{id}/layout.
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	layout, ok := requireEntityByID(h, w, r, "layout", func(id int64) (LayoutView, error) {
		return h.layoutView(r.Context(), id)
	})
	if ok {
		WriteSuccess(w, layout, nil)
	}
}

func (h *Handler) layoutView(ctx context.Context, pageID int64) (LayoutView, error) {
	layout, err := h.queries.GetLayoutByPage(ctx, pageID)
	if err != nil {
		return LayoutView{}, err
	}
	v := LayoutView{ID: layout.ID, PageID: layout.PageID, Zones: []ZoneView{}}
	zones, err := h.queries.ListZones(ctx, layout.ID)
	if err != nil {
		return v, err
	}
	for _, z := range zones {
		zv := ZoneView{Zone: z, Cols: []ColView{}}
		cols, err := h.queries.ListCols(ctx, z.ID)
		if err != nil {
			return v, err
		}
		for _, c := range cols {
			blocks, err := h.queries.ListBlocks(ctx, c.ID)
			if err != nil {
				return v, err
			}
			if blocks == nil {
				blocks = []store.Block{}
			}
			zv.Cols = append(zv.Cols, ColView{Col: c, Blocks: blocks})
		}
		v.Zones = append(v.Zones, zv)
	}
	return v, nil
}

// AddZoneRequest adds a zone to a page layout.
type AddZoneRequest struct {
	Fullsize bool   `json:"fullsize"`
	CssClass string `json:"css_class"`
	Target   int64  `json:"target"`
}

// AddZone handles POST /api/v1/admin/pages/{id}/zones.
func (h *Handler) AddZone(w http.ResponseWriter, r *http.Request) {
	layout, ok := requireEntityByID(h, w, r, "page", func(id int64) (store.Layout, error) {
		return h.queries.GetLayoutByPage(r.Context(), id)
	})
	if !ok {
		return
	}
	var req AddZoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	zone, err := h.Content.Layouts.AddZone(r.Context(), lifecycle.ZoneRecord{
		Zone:   store.Zone{LayoutID: layout.ID, Fullsize: req.Fullsize, CssClass: req.CssClass},
		Target: req.Target,
	})
	if err != nil {
		h.writeServiceError(w, r, "zone", err)
		return
	}
	WriteCreated(w, zone)
}
