// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"fmt"
	"slices"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

// DefaultItemsPerPage is the page size of a listing saved without one.
const DefaultItemsPerPage = 12

// ListingRecord is the subject of listing hooks. CategoryIDs are catalog
// categories for product listings and newscast categories otherwise; nil
// keeps the stored set on update.
type ListingRecord struct {
	store.Listing
	CategoryIDs []int64
}

// ListingManager handles listings and teasers.
type ListingManager struct{ s *Service }

func (m *ListingManager) EntityType() string { return model.EntityListing }

func (m *ListingManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityListing, ev, "listing.validate", 10, func(ctx context.Context, q *store.Queries, l *ListingRecord) error {
			normalizeListing(&l.Listing)
			return validateListing(l.Listing).Err()
		})
		On(r, model.EntityListing, ev, "listing.categories", 20, func(ctx context.Context, q *store.Queries, l *ListingRecord) error {
			for _, id := range l.CategoryIDs {
				if !m.categoryInWebsite(ctx, q, l.EntityType, l.WebsiteID, id) {
					return Invalid("category_ids", fmt.Sprintf("category %d is not a %s category of this website", id, l.EntityType))
				}
			}
			return nil
		})
		On(r, model.EntityListing, ev, "listing.slug", 30, func(ctx context.Context, q *store.Queries, l *ListingRecord) error {
			slug, err := uniqueSlug(ctx, q, store.ListingSlugs, l.WebsiteID, l.Slug, l.EntityType+"-"+l.Kind, l.ID)
			l.Slug = slug
			return err
		})
	}
	for _, ev := range []Event{PostPersist, PostUpdate} {
		On(r, model.EntityListing, ev, "listing.categories.save", 10, func(ctx context.Context, q *store.Queries, l *ListingRecord) error {
			if l.CategoryIDs == nil {
				return nil
			}
			if err := q.ClearListingCategories(ctx, l.ID); err != nil {
				return err
			}
			for _, id := range l.CategoryIDs {
				if err := q.AddListingCategory(ctx, l.ID, id); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

// normalizeListing applies the listing defaults. Events are always shown
// in chronological order.
func normalizeListing(l *store.Listing) {
	if l.Kind == "" {
		l.Kind = model.ListingKindListing
	}
	if l.OrderBy == "" {
		l.OrderBy = model.OrderPositionAsc
	}
	if l.ItemsPerPage == 0 {
		l.ItemsPerPage = DefaultItemsPerPage
	}
	if l.AsEvents {
		l.OrderBy = model.OrderStartDateAsc
	}
}

func validateListing(l store.Listing) *ValidationError {
	verr := &ValidationError{}
	if l.Kind != model.ListingKindListing && l.Kind != model.ListingKindTeaser {
		verr.Add("kind", "must be listing or teaser")
	}
	if l.EntityType != model.EntityNewscast && l.EntityType != model.EntityProduct {
		verr.Add("entity_type", "must be newscast or product")
	}
	if l.AsEvents && l.EntityType != model.EntityNewscast {
		verr.Add("as_events", "only newscast listings can show events")
	}
	if !slices.Contains(model.ListingOrders(), l.OrderBy) {
		verr.Add("order_by", "unknown order "+l.OrderBy)
	}
	if l.ItemsPerPage < 1 {
		verr.Add("items_per_page", "must be at least 1")
	}
	if l.Kind == model.ListingKindTeaser && l.NbItems < 1 {
		verr.Add("nb_items", "a teaser shows at least one item")
	}
	return verr
}

func (m *ListingManager) categoryInWebsite(ctx context.Context, q *store.Queries, entityType string, websiteID, id int64) bool {
	if entityType == model.EntityNewscast {
		c, err := q.GetNewscastCategory(ctx, id)
		return err == nil && c.WebsiteID == websiteID
	}
	c, err := q.GetCategory(ctx, id)
	if err != nil {
		return false
	}
	cat, err := q.GetCatalog(ctx, c.CatalogID)
	return err == nil && cat.WebsiteID == websiteID
}

// Create inserts a listing.
func (m *ListingManager) Create(ctx context.Context, rec ListingRecord) (ListingRecord, error) {
	err := m.s.write(ctx, model.EntityListing, func(q *store.Queries) (int64, error) {
		return rec.WebsiteID, m.s.persist(ctx, q, model.EntityListing, &rec, func() error {
			now := m.s.nowUTC()
			l, err := q.CreateListing(ctx, store.CreateListingParams{
				WebsiteID: rec.WebsiteID, Slug: rec.Slug, Kind: rec.Kind, EntityType: rec.EntityType,
				OrderBy: rec.OrderBy, ItemsPerPage: rec.ItemsPerPage, NbItems: rec.NbItems,
				AsEvents: rec.AsEvents, CreatedAt: now, UpdatedAt: now,
			})
			rec.Listing = l
			return err
		})
	})
	return rec, err
}

// Update saves a listing.
func (m *ListingManager) Update(ctx context.Context, rec ListingRecord) (ListingRecord, error) {
	err := m.s.write(ctx, model.EntityListing, func(q *store.Queries) (int64, error) {
		current, err := q.GetListing(ctx, rec.ID)
		if err != nil {
			return 0, err
		}
		rec.WebsiteID = current.WebsiteID
		return rec.WebsiteID, m.s.update(ctx, q, model.EntityListing, &rec, func() error {
			l, err := q.UpdateListing(ctx, store.UpdateListingParams{
				Slug: rec.Slug, Kind: rec.Kind, EntityType: rec.EntityType, OrderBy: rec.OrderBy,
				ItemsPerPage: rec.ItemsPerPage, NbItems: rec.NbItems, AsEvents: rec.AsEvents,
				UpdatedAt: m.s.nowUTC(), ID: rec.ID,
			})
			rec.Listing = l
			return err
		})
	})
	return rec, err
}

// Delete removes a listing.
func (m *ListingManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityListing, func(q *store.Queries) (int64, error) {
		l, err := q.GetListing(ctx, id)
		if err != nil {
			return 0, err
		}
		rec := ListingRecord{Listing: l}
		return l.WebsiteID, m.s.remove(ctx, q, model.EntityListing, &rec, func() error {
			return q.DeleteListing(ctx, id)
		})
	})
}
