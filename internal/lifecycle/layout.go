// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
)

// Col sizes follow a 12 column grid.
const (
	MinColSize = 1
	MaxColSize = 12
)

// ClampColSize brings size into 1..12.
func ClampColSize(size int64) int64 {
	return min(max(size, MinColSize), MaxColSize)
}

// ZoneRecord, ColRecord and BlockRecord are the subjects of layout hooks.
type (
	ZoneRecord struct {
		store.Zone
		Target int64
	}
	ColRecord struct {
		store.Col
		Target int64
	}
	BlockRecord struct {
		store.Block
		Target int64
	}
)

// LayoutManager handles the zones, cols and blocks of page layouts.
type LayoutManager struct{ s *Service }

func (m *LayoutManager) EntityType() string { return model.EntityLayout }

func (m *LayoutManager) Register(r *Registry) {
	On(r, model.EntityZone, PrePersist, "zone.position", 10, func(ctx context.Context, q *store.Queries, z *ZoneRecord) error {
		pos, err := position.Next(ctx, q, store.ZoneFamily, z.LayoutID)
		z.Position = pos
		return err
	})
	On(r, model.EntityZone, PostPersist, "zone.col", 10, func(ctx context.Context, q *store.Queries, z *ZoneRecord) error {
		_, err := q.CreateCol(ctx, store.CreateColParams{ZoneID: z.ID, Position: 1, Size: MaxColSize})
		return err
	})
	On(r, model.EntityZone, PostPersist, "zone.insert_at", 20, func(ctx context.Context, q *store.Queries, z *ZoneRecord) error {
		_, err := position.Insert(ctx, q, store.ZoneFamily, z.ID, z.Target, z.LayoutID)
		return err
	})
	On(r, model.EntityZone, PostRemove, "zone.rescan", 10, func(ctx context.Context, q *store.Queries, z *ZoneRecord) error {
		_, err := position.Rescan(ctx, q, store.ZoneFamily, z.LayoutID)
		return err
	})

	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityCol, ev, "col.size", 10, func(ctx context.Context, q *store.Queries, c *ColRecord) error {
			c.Size = ClampColSize(c.Size)
			return nil
		})
	}
	On(r, model.EntityCol, PrePersist, "col.position", 20, func(ctx context.Context, q *store.Queries, c *ColRecord) error {
		pos, err := position.Next(ctx, q, store.ColFamily, c.ZoneID)
		c.Position = pos
		return err
	})
	On(r, model.EntityCol, PostPersist, "col.insert_at", 10, func(ctx context.Context, q *store.Queries, c *ColRecord) error {
		_, err := position.Insert(ctx, q, store.ColFamily, c.ID, c.Target, c.ZoneID)
		return err
	})
	On(r, model.EntityCol, PostRemove, "col.rescan", 10, func(ctx context.Context, q *store.Queries, c *ColRecord) error {
		_, err := position.Rescan(ctx, q, store.ColFamily, c.ZoneID)
		return err
	})

	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityBlock, ev, "block.validate", 10, m.validateBlock)
	}
	On(r, model.EntityBlock, PrePersist, "block.position", 20, func(ctx context.Context, q *store.Queries, b *BlockRecord) error {
		pos, err := position.Next(ctx, q, store.BlockFamily, b.ColID)
		b.Position = pos
		return err
	})
	On(r, model.EntityBlock, PostPersist, "block.insert_at", 10, func(ctx context.Context, q *store.Queries, b *BlockRecord) error {
		_, err := position.Insert(ctx, q, store.BlockFamily, b.ID, b.Target, b.ColID)
		return err
	})
	On(r, model.EntityBlock, PostRemove, "block.rescan", 10, func(ctx context.Context, q *store.Queries, b *BlockRecord) error {
		_, err := position.Rescan(ctx, q, store.BlockFamily, b.ColID)
		return err
	})
}

// validateBlock checks the type and settings and sanitizes rich content.
// Block content is a JSON object of locale to text.
func (m *LayoutManager) validateBlock(ctx context.Context, q *store.Queries, b *BlockRecord) error {
	if !slices.Contains(model.BlockTypes(), b.BlockType) {
		return Invalid("block_type", "is not a known block type")
	}
	if b.Settings == "" {
		b.Settings = "{}"
	}
	var settings map[string]any
	if err := json.Unmarshal([]byte(b.Settings), &settings); err != nil {
		return Invalid("settings", "must be a JSON object")
	}
	if b.Content == "" {
		b.Content = "{}"
	}
	var texts map[string]string
	if err := json.Unmarshal([]byte(b.Content), &texts); err != nil {
		return Invalid("content", "must be a JSON object of locale to text")
	}
	if b.BlockType == model.BlockText || b.BlockType == model.BlockHTML {
		for locale, text := range texts {
			texts[locale] = m.s.renderer.Sanitize(text)
		}
		out, err := json.Marshal(texts)
		if err != nil {
			return err
		}
		b.Content = string(out)
	}
	return nil
}

// websiteOfLayout resolves the website owning a layout.
func websiteOfLayout(ctx context.Context, q *store.Queries, layoutID int64) (int64, error) {
	l, err := q.GetLayout(ctx, layoutID)
	if err != nil {
		return 0, err
	}
	p, err := q.GetPage(ctx, l.PageID)
	if err != nil {
		return 0, err
	}
	return p.WebsiteID, nil
}

func websiteOfZone(ctx context.Context, q *store.Queries, zoneID int64) (int64, error) {
	z, err := q.GetZone(ctx, zoneID)
	if err != nil {
		return 0, err
	}
	return websiteOfLayout(ctx, q, z.LayoutID)
}

func websiteOfCol(ctx context.Context, q *store.Queries, colID int64) (int64, error) {
	c, err := q.GetCol(ctx, colID)
	if err != nil {
		return 0, err
	}
	return websiteOfZone(ctx, q, c.ZoneID)
}

// AddZone appends a zone, with one full width col, to a layout.
func (m *LayoutManager) AddZone(ctx context.Context, rec ZoneRecord) (store.Zone, error) {
	err := m.s.write(ctx, model.EntityZone, func(q *store.Queries) (int64, error) {
		websiteID, err := websiteOfLayout(ctx, q, rec.LayoutID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.persist(ctx, q, model.EntityZone, &rec, func() error {
			z, err := q.CreateZone(ctx, store.CreateZoneParams{
				LayoutID: rec.LayoutID, Position: rec.Position, Fullsize: rec.Fullsize, CssClass: rec.CssClass,
			})
			rec.Zone = z
			return err
		})
	})
	return rec.Zone, err
}

// UpdateZone saves the display flags of a zone.
func (m *LayoutManager) UpdateZone(ctx context.Context, z store.Zone) (store.Zone, error) {
	rec := ZoneRecord{Zone: z}
	err := m.s.write(ctx, model.EntityZone, func(q *store.Queries) (int64, error) {
		websiteID, err := websiteOfZone(ctx, q, z.ID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.update(ctx, q, model.EntityZone, &rec, func() error {
			saved, err := q.UpdateZone(ctx, store.UpdateZoneParams{Fullsize: rec.Fullsize, CssClass: rec.CssClass, ID: rec.ID})
			rec.Zone = saved
			return err
		})
	})
	return rec.Zone, err
}

// MoveZone places a zone at target in its layout.
func (m *LayoutManager) MoveZone(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityZone, func(q *store.Queries) (int64, error) {
		z, err := q.GetZone(ctx, id)
		if err != nil {
			return 0, err
		}
		if _, err := position.Move(ctx, q, store.ZoneFamily, id, target, z.LayoutID); err != nil {
			return 0, err
		}
		return websiteOfLayout(ctx, q, z.LayoutID)
	})
}

// DeleteZone removes a zone with its cols and blocks.
func (m *LayoutManager) DeleteZone(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityZone, func(q *store.Queries) (int64, error) {
		z, err := q.GetZone(ctx, id)
		if err != nil {
			return 0, err
		}
		websiteID, err := websiteOfLayout(ctx, q, z.LayoutID)
		if err != nil {
			return 0, err
		}
		rec := ZoneRecord{Zone: z}
		return websiteID, m.s.remove(ctx, q, model.EntityZone, &rec, func() error {
			return q.DeleteZone(ctx, id)
		})
	})
}

// AddCol appends a col to a zone.
func (m *LayoutManager) AddCol(ctx context.Context, rec ColRecord) (store.Col, error) {
	err := m.s.write(ctx, model.EntityCol, func(q *store.Queries) (int64, error) {
		websiteID, err := websiteOfZone(ctx, q, rec.ZoneID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.persist(ctx, q, model.EntityCol, &rec, func() error {
			c, err := q.CreateCol(ctx, store.CreateColParams{ZoneID: rec.ZoneID, Position: rec.Position, Size: rec.Size})
			rec.Col = c
			return err
		})
	})
	return rec.Col, err
}

// ResizeCol changes the width of a col, clamped to the grid.
func (m *LayoutManager) ResizeCol(ctx context.Context, id, size int64) (store.Col, error) {
	var rec ColRecord
	err := m.s.write(ctx, model.EntityCol, func(q *store.Queries) (int64, error) {
		c, err := q.GetCol(ctx, id)
		if err != nil {
			return 0, err
		}
		rec = ColRecord{Col: c}
		rec.Size = size
		websiteID, err := websiteOfZone(ctx, q, c.ZoneID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.update(ctx, q, model.EntityCol, &rec, func() error {
			saved, err := q.UpdateCol(ctx, rec.ID, rec.Size)
			rec.Col = saved
			return err
		})
	})
	return rec.Col, err
}

// MoveCol places a col at target in its zone.
func (m *LayoutManager) MoveCol(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityCol, func(q *store.Queries) (int64, error) {
		c, err := q.GetCol(ctx, id)
		if err != nil {
			return 0, err
		}
		if _, err := position.Move(ctx, q, store.ColFamily, id, target, c.ZoneID); err != nil {
			return 0, err
		}
		return websiteOfZone(ctx, q, c.ZoneID)
	})
}

// DeleteCol removes a col with its blocks.
func (m *LayoutManager) DeleteCol(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityCol, func(q *store.Queries) (int64, error) {
		c, err := q.GetCol(ctx, id)
		if err != nil {
			return 0, err
		}
		websiteID, err := websiteOfZone(ctx, q, c.ZoneID)
		if err != nil {
			return 0, err
		}
		rec := ColRecord{Col: c}
		return websiteID, m.s.remove(ctx, q, model.EntityCol, &rec, func() error {
			return q.DeleteCol(ctx, id)
		})
	})
}

// AddBlock appends a block to a col.
func (m *LayoutManager) AddBlock(ctx context.Context, rec BlockRecord) (store.Block, error) {
	err := m.s.write(ctx, model.EntityBlock, func(q *store.Queries) (int64, error) {
		websiteID, err := websiteOfCol(ctx, q, rec.ColID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.persist(ctx, q, model.EntityBlock, &rec, func() error {
			b, err := q.CreateBlock(ctx, store.CreateBlockParams{
				ColID: rec.ColID, Position: rec.Position, BlockType: rec.BlockType,
				Content: rec.Content, Settings: rec.Settings,
			})
			rec.Block = b
			return err
		})
	})
	return rec.Block, err
}

// UpdateBlock saves a block.
func (m *LayoutManager) UpdateBlock(ctx context.Context, b store.Block) (store.Block, error) {
	rec := BlockRecord{Block: b}
	err := m.s.write(ctx, model.EntityBlock, func(q *store.Queries) (int64, error) {
		current, err := q.GetBlock(ctx, b.ID)
		if err != nil {
			return 0, err
		}
		rec.ColID = current.ColID
		websiteID, err := websiteOfCol(ctx, q, current.ColID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.update(ctx, q, model.EntityBlock, &rec, func() error {
			saved, err := q.UpdateBlock(ctx, store.UpdateBlockParams{
				BlockType: rec.BlockType, Content: rec.Content, Settings: rec.Settings, ID: rec.ID,
			})
			rec.Block = saved
			return err
		})
	})
	return rec.Block, err
}

// MoveBlock places a block at target in its col.
func (m *LayoutManager) MoveBlock(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityBlock, func(q *store.Queries) (int64, error) {
		b, err := q.GetBlock(ctx, id)
		if err != nil {
			return 0, err
		}
		if _, err := position.Move(ctx, q, store.BlockFamily, id, target, b.ColID); err != nil {
			return 0, err
		}
		return websiteOfCol(ctx, q, b.ColID)
	})
}

// DeleteBlock removes a block.
func (m *LayoutManager) DeleteBlock(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityBlock, func(q *store.Queries) (int64, error) {
		b, err := q.GetBlock(ctx, id)
		if err != nil {
			return 0, err
		}
		websiteID, err := websiteOfCol(ctx, q, b.ColID)
		if err != nil {
			return 0, err
		}
		rec := BlockRecord{Block: b}
		return websiteID, m.s.remove(ctx, q, model.EntityBlock, &rec, func() error {
			return q.DeleteBlock(ctx, id)
		})
	})
}
