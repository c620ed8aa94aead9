// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"regexp"
	"strings"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/util"
)

// MediaRelationRecord is the subject of media relation hooks.
type MediaRelationRecord struct {
	store.MediaRelation
	Target    int64
	websiteID int64
}

// MediaRelationManager attaches medias to pages, products, newscasts and
// blocks. Each (entity, locale) keeps its own ordered gallery with at most
// one main media.
type MediaRelationManager struct{ s *Service }

func (m *MediaRelationManager) EntityType() string { return model.EntityMediaRelation }

func (m *MediaRelationManager) Register(r *Registry) {
	On(r, model.EntityMediaRelation, PrePersist, "media_relation.validate", 10, func(ctx context.Context, q *store.Queries, rel *MediaRelationRecord) error {
		websiteID, err := entityWebsite(ctx, q, rel.EntityType, rel.EntityID)
		if err != nil {
			return err
		}
		media, err := q.GetMedia(ctx, rel.MediaID)
		if err != nil || media.WebsiteID != websiteID {
			return Invalid("media_id", "is not a media of this website")
		}
		rel.websiteID = websiteID
		return nil
	})
	On(r, model.EntityMediaRelation, PrePersist, "media_relation.position", 20, func(ctx context.Context, q *store.Queries, rel *MediaRelationRecord) error {
		pos, err := position.Next(ctx, q, store.MediaRelationFamily, rel.EntityType, rel.EntityID, rel.Locale)
		if err != nil {
			return err
		}
		rel.Position = pos
		if !rel.IsMain {
			mains, err := q.CountMainMediaRelations(ctx, rel.EntityType, rel.EntityID, rel.Locale)
			if err != nil {
				return err
			}
			rel.IsMain = mains == 0
		}
		return nil
	})
	for _, ev := range []Event{PostPersist, PostUpdate} {
		On(r, model.EntityMediaRelation, ev, "media_relation.single_main", 10, func(ctx context.Context, q *store.Queries, rel *MediaRelationRecord) error {
			if !rel.IsMain {
				return nil
			}
			return q.ClearMainMediaRelation(ctx, rel.EntityType, rel.EntityID, rel.Locale, rel.ID)
		})
	}
	On(r, model.EntityMediaRelation, PostPersist, "media_relation.insert_at", 20, func(ctx context.Context, q *store.Queries, rel *MediaRelationRecord) error {
		_, err := position.Insert(ctx, q, store.MediaRelationFamily, rel.ID, rel.Target, rel.EntityType, rel.EntityID, rel.Locale)
		return err
	})
	On(r, model.EntityMediaRelation, PostRemove, "media_relation.rescan", 10, func(ctx context.Context, q *store.Queries, rel *MediaRelationRecord) error {
		ids, err := position.Rescan(ctx, q, store.MediaRelationFamily, rel.EntityType, rel.EntityID, rel.Locale)
		if err != nil || !rel.IsMain || len(ids) == 0 {
			return err
		}
		return q.SetMediaRelationMain(ctx, ids[0], true)
	})
}

// entityWebsite returns the website of an entity medias can be attached to.
func entityWebsite(ctx context.Context, q *store.Queries, entityType string, id int64) (int64, error) {
	var (
		websiteID int64
		err       error
	)
	switch entityType {
	case model.EntityPage:
		var p store.Page
		p, err = q.GetPage(ctx, id)
		websiteID = p.WebsiteID
	case model.EntityNewscast:
		var n store.Newscast
		n, err = q.GetNewscast(ctx, id)
		websiteID = n.WebsiteID
	case model.EntityProduct:
		var p store.Product
		if p, err = q.GetProduct(ctx, id); err == nil {
			websiteID, err = catalogWebsite(ctx, q, p.CatalogID)
		}
	case model.EntityBlock:
		var b store.Block
		if b, err = q.GetBlock(ctx, id); err == nil {
			websiteID, err = websiteOfCol(ctx, q, b.ColID)
		}
	default:
		return 0, Invalid("entity_type", "medias cannot be attached to "+entityType)
	}
	if err != nil {
		return 0, Invalid("entity_id", "does not exist")
	}
	return websiteID, nil
}

// Attach links a media to an entity at target (zero appends).
func (m *MediaRelationManager) Attach(ctx context.Context, rec MediaRelationRecord) (store.MediaRelation, error) {
	err := m.s.write(ctx, model.EntityMediaRelation, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityMediaRelation, &rec, func() error {
			rel, err := q.CreateMediaRelation(ctx, store.CreateMediaRelationParams{
				EntityType: rec.EntityType, EntityID: rec.EntityID, Locale: rec.Locale,
				MediaID: rec.MediaID, Position: rec.Position, IsMain: rec.IsMain,
			})
			rec.MediaRelation = rel
			return err
		})
		return rec.websiteID, err
	})
	return rec.MediaRelation, err
}

// SetMain makes a relation the main media of its entity and locale.
func (m *MediaRelationManager) SetMain(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityMediaRelation, func(q *store.Queries) (int64, error) {
		rel, err := q.GetMediaRelation(ctx, id)
		if err != nil {
			return 0, err
		}
		websiteID, err := entityWebsite(ctx, q, rel.EntityType, rel.EntityID)
		if err != nil {
			return 0, err
		}
		rec := MediaRelationRecord{MediaRelation: rel, websiteID: websiteID}
		rec.IsMain = true
		return websiteID, m.s.update(ctx, q, model.EntityMediaRelation, &rec, func() error {
			return q.SetMediaRelationMain(ctx, id, true)
		})
	})
}

// Move places a relation at target inside its gallery.
func (m *MediaRelationManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityMediaRelation, func(q *store.Queries) (int64, error) {
		rel, err := q.GetMediaRelation(ctx, id)
		if err != nil {
			return 0, err
		}
		websiteID, err := entityWebsite(ctx, q, rel.EntityType, rel.EntityID)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.MediaRelationFamily, id, target, rel.EntityType, rel.EntityID, rel.Locale)
		return websiteID, err
	})
}

// Detach removes a relation. When it was the main media, the first
// remaining one takes over.
func (m *MediaRelationManager) Detach(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityMediaRelation, func(q *store.Queries) (int64, error) {
		rel, err := q.GetMediaRelation(ctx, id)
		if err != nil {
			return 0, err
		}
		media, err := q.GetMedia(ctx, rel.MediaID)
		if err != nil {
			return 0, err
		}
		rec := MediaRelationRecord{MediaRelation: rel, websiteID: media.WebsiteID}
		return media.WebsiteID, m.s.remove(ctx, q, model.EntityMediaRelation, &rec, func() error {
			return q.DeleteMediaRelation(ctx, id)
		})
	})
}

// Thumb configuration bounds.
const (
	MaxThumbSize    = 4096
	MaxThumbQuality = 100
)

var thumbSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ThumbManager handles thumbnail configurations and their stored crop
// boxes. A configuration is identified by (slug, screen) in a website.
type ThumbManager struct{ s *Service }

func (m *ThumbManager) EntityType() string { return model.EntityThumbConfiguration }

func (m *ThumbManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityThumbConfiguration, ev, "thumb_configuration.validate", 10, func(ctx context.Context, q *store.Queries, c *store.ThumbConfiguration) error {
			return validateThumbConfiguration(c).Err()
		})
		On(r, model.EntityThumbConfiguration, ev, "thumb_configuration.unique", 20, func(ctx context.Context, q *store.Queries, c *store.ThumbConfiguration) error {
			existing, err := q.ListThumbConfigurationsBySlug(ctx, c.WebsiteID, c.Slug)
			if err != nil {
				return err
			}
			for _, e := range existing {
				if e.Screen == c.Screen && e.ID != c.ID {
					return Invalid("screen", "a "+c.Screen+" configuration already exists for "+c.Slug)
				}
			}
			return nil
		})
	}
}

func validateThumbConfiguration(c *store.ThumbConfiguration) *ValidationError {
	verr := &ValidationError{}
	c.Slug = util.Slugify(strings.TrimSpace(c.Slug))
	if !thumbSlugPattern.MatchString(c.Slug) {
		verr.Add("slug", "is required")
	}
	if c.Screen == "" {
		c.Screen = model.ScreenDesktop
	}
	if !model.IsScreen(c.Screen) {
		verr.Add("screen", "must be mobile, tablet or desktop")
	}
	if c.Width < 0 || c.Width > MaxThumbSize {
		verr.Add("width", "is out of range")
	}
	if c.Height < 0 || c.Height > MaxThumbSize {
		verr.Add("height", "is out of range")
	}
	if c.Width == 0 && c.Height == 0 {
		verr.Add("width", "width or height is required")
	}
	if c.Crop && (c.Width == 0 || c.Height == 0) {
		verr.Add("crop", "cropping needs both width and height")
	}
	if c.Quality < 0 || c.Quality > MaxThumbQuality {
		verr.Add("quality", "must be between 0 and 100")
	}
	return verr
}

// Create inserts a configuration.
func (m *ThumbManager) Create(ctx context.Context, c store.ThumbConfiguration) (store.ThumbConfiguration, error) {
	err := m.s.write(ctx, model.EntityThumbConfiguration, func(q *store.Queries) (int64, error) {
		return c.WebsiteID, m.s.persist(ctx, q, model.EntityThumbConfiguration, &c, func() error {
			saved, err := q.CreateThumbConfiguration(ctx, store.CreateThumbConfigurationParams{
				WebsiteID: c.WebsiteID, Slug: c.Slug, Screen: c.Screen, Width: c.Width,
				Height: c.Height, Crop: c.Crop, Quality: c.Quality,
			})
			c = saved
			return err
		})
	})
	return c, err
}

// Update saves a configuration.
func (m *ThumbManager) Update(ctx context.Context, c store.ThumbConfiguration) (store.ThumbConfiguration, error) {
	err := m.s.write(ctx, model.EntityThumbConfiguration, func(q *store.Queries) (int64, error) {
		current, err := q.GetThumbConfiguration(ctx, c.ID)
		if err != nil {
			return 0, err
		}
		c.WebsiteID = current.WebsiteID
		return c.WebsiteID, m.s.update(ctx, q, model.EntityThumbConfiguration, &c, func() error {
			saved, err := q.UpdateThumbConfiguration(ctx, store.UpdateThumbConfigurationParams{
				Slug: c.Slug, Screen: c.Screen, Width: c.Width, Height: c.Height,
				Crop: c.Crop, Quality: c.Quality, ID: c.ID,
			})
			c = saved
			return err
		})
	})
	return c, err
}

// Delete removes a configuration with its crop boxes.
func (m *ThumbManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityThumbConfiguration, func(q *store.Queries) (int64, error) {
		c, err := q.GetThumbConfiguration(ctx, id)
		if err != nil {
			return 0, err
		}
		return c.WebsiteID, m.s.remove(ctx, q, model.EntityThumbConfiguration, &c, func() error {
			return q.DeleteThumbConfiguration(ctx, id)
		})
	})
}

// SaveCrop stores the crop box of a media for a configuration. The box
// must lie inside the original image.
func (m *ThumbManager) SaveCrop(ctx context.Context, t store.Thumb) (store.Thumb, error) {
	err := m.s.write(ctx, model.EntityThumbConfiguration, func(q *store.Queries) (int64, error) {
		conf, err := q.GetThumbConfiguration(ctx, t.ConfigurationID)
		if err != nil {
			return 0, err
		}
		media, err := q.GetMedia(ctx, t.MediaID)
		if err != nil || media.WebsiteID != conf.WebsiteID {
			return 0, Invalid("media_id", "is not a media of this website")
		}
		if err := validateCrop(t, media).Err(); err != nil {
			return 0, err
		}
		t, err = q.UpsertThumb(ctx, store.UpsertThumbParams{
			MediaID: t.MediaID, ConfigurationID: t.ConfigurationID,
			CropX: t.CropX, CropY: t.CropY, CropWidth: t.CropWidth, CropHeight: t.CropHeight,
			UpdatedAt: m.s.nowUTC(),
		})
		return conf.WebsiteID, err
	})
	return t, err
}

func validateCrop(t store.Thumb, media store.Media) *ValidationError {
	verr := &ValidationError{}
	if t.CropX < 0 || t.CropY < 0 {
		verr.Add("crop_x", "must not be negative")
	}
	if t.CropWidth <= 0 || t.CropHeight <= 0 {
		verr.Add("crop_width", "crop box must have a size")
	}
	if media.Width > 0 && t.CropX+t.CropWidth > media.Width {
		verr.Add("crop_width", "exceeds the image width")
	}
	if media.Height > 0 && t.CropY+t.CropHeight > media.Height {
		verr.Add("crop_height", "exceeds the image height")
	}
	return verr
}
