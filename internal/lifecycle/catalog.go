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

// CatalogManager handles catalogs.
type CatalogManager struct{ s *Service }

func (m *CatalogManager) EntityType() string { return model.EntityCatalog }

func (m *CatalogManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityCatalog, ev, "catalog.slug", 10, func(ctx context.Context, q *store.Queries, c *store.Catalog) error {
			c.Name = strings.TrimSpace(c.Name)
			if c.Name == "" {
				return Invalid("name", "is required")
			}
			slug, err := uniqueSlug(ctx, q, store.CatalogSlugs, c.WebsiteID, c.Slug, c.Name, c.ID)
			c.Slug = slug
			return err
		})
	}
	On(r, model.EntityCatalog, PrePersist, "catalog.position", 20, func(ctx context.Context, q *store.Queries, c *store.Catalog) error {
		pos, err := position.Next(ctx, q, store.CatalogFamily, c.WebsiteID)
		c.Position = pos
		return err
	})
	On(r, model.EntityCatalog, PreRemove, "catalog.product_urls", 10, func(ctx context.Context, q *store.Queries, c *store.Catalog) error {
		products, err := q.ListProductsByCatalog(ctx, c.ID)
		if err != nil {
			return err
		}
		for _, p := range products {
			if err := q.DeleteEntityUrls(ctx, model.EntityProduct, p.ID); err != nil {
				return err
			}
			if err := q.DeleteEntityMediaRelations(ctx, model.EntityProduct, p.ID); err != nil {
				return err
			}
		}
		return nil
	})
	On(r, model.EntityCatalog, PostRemove, "catalog.rescan", 10, func(ctx context.Context, q *store.Queries, c *store.Catalog) error {
		_, err := position.Rescan(ctx, q, store.CatalogFamily, c.WebsiteID)
		return err
	})
}

// Create appends a catalog.
func (m *CatalogManager) Create(ctx context.Context, c store.Catalog) (store.Catalog, error) {
	err := m.s.write(ctx, model.EntityCatalog, func(q *store.Queries) (int64, error) {
		return c.WebsiteID, m.s.persist(ctx, q, model.EntityCatalog, &c, func() error {
			now := m.s.nowUTC()
			saved, err := q.CreateCatalog(ctx, store.CreateCatalogParams{
				WebsiteID: c.WebsiteID, Slug: c.Slug, Name: c.Name, Position: c.Position,
				CreatedAt: now, UpdatedAt: now,
			})
			c = saved
			return err
		})
	})
	return c, err
}

// Update saves a catalog.
func (m *CatalogManager) Update(ctx context.Context, c store.Catalog) (store.Catalog, error) {
	err := m.s.write(ctx, model.EntityCatalog, func(q *store.Queries) (int64, error) {
		current, err := q.GetCatalog(ctx, c.ID)
		if err != nil {
			return 0, err
		}
		c.WebsiteID = current.WebsiteID
		return c.WebsiteID, m.s.update(ctx, q, model.EntityCatalog, &c, func() error {
			saved, err := q.UpdateCatalog(ctx, store.UpdateCatalogParams{
				Slug: c.Slug, Name: c.Name, UpdatedAt: m.s.nowUTC(), ID: c.ID,
			})
			c = saved
			return err
		})
	})
	return c, err
}

// Move places a catalog at target.
func (m *CatalogManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityCatalog, func(q *store.Queries) (int64, error) {
		c, err := q.GetCatalog(ctx, id)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.CatalogFamily, id, target, c.WebsiteID)
		return c.WebsiteID, err
	})
}

// Delete removes a catalog with its categories and products.
func (m *CatalogManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityCatalog, func(q *store.Queries) (int64, error) {
		c, err := q.GetCatalog(ctx, id)
		if err != nil {
			return 0, err
		}
		return c.WebsiteID, m.s.remove(ctx, q, model.EntityCatalog, &c, func() error {
			return q.DeleteCatalog(ctx, id)
		})
	})
}

// CategoryManager handles catalog categories.
type CategoryManager struct{ s *Service }

func (m *CategoryManager) EntityType() string { return model.EntityCategory }

func (m *CategoryManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityCategory, ev, "category.slug", 10, func(ctx context.Context, q *store.Queries, c *store.CatalogCategory) error {
			c.Name = strings.TrimSpace(c.Name)
			if c.Name == "" {
				return Invalid("name", "is required")
			}
			slug, err := uniqueSlug(ctx, q, store.CategorySlugs, c.CatalogID, c.Slug, c.Name, c.ID)
			c.Slug = slug
			return err
		})
	}
	On(r, model.EntityCategory, PrePersist, "category.position", 20, func(ctx context.Context, q *store.Queries, c *store.CatalogCategory) error {
		pos, err := position.Next(ctx, q, store.CategoryFamily, c.CatalogID)
		c.Position = pos
		return err
	})
	On(r, model.EntityCategory, PostRemove, "category.rescan", 10, func(ctx context.Context, q *store.Queries, c *store.CatalogCategory) error {
		_, err := position.Rescan(ctx, q, store.CategoryFamily, c.CatalogID)
		return err
	})
}

func catalogWebsite(ctx context.Context, q *store.Queries, catalogID int64) (int64, error) {
	c, err := q.GetCatalog(ctx, catalogID)
	if err != nil {
		return 0, err
	}
	return c.WebsiteID, nil
}

// Create appends a category to a catalog.
func (m *CategoryManager) Create(ctx context.Context, c store.CatalogCategory) (store.CatalogCategory, error) {
	err := m.s.write(ctx, model.EntityCategory, func(q *store.Queries) (int64, error) {
		websiteID, err := catalogWebsite(ctx, q, c.CatalogID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.persist(ctx, q, model.EntityCategory, &c, func() error {
			saved, err := q.CreateCategory(ctx, store.CreateCategoryParams{
				CatalogID: c.CatalogID, Slug: c.Slug, Name: c.Name, Position: c.Position,
			})
			c = saved
			return err
		})
	})
	return c, err
}

// Update saves a category.
func (m *CategoryManager) Update(ctx context.Context, c store.CatalogCategory) (store.CatalogCategory, error) {
	err := m.s.write(ctx, model.EntityCategory, func(q *store.Queries) (int64, error) {
		current, err := q.GetCategory(ctx, c.ID)
		if err != nil {
			return 0, err
		}
		c.CatalogID = current.CatalogID
		websiteID, err := catalogWebsite(ctx, q, c.CatalogID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.update(ctx, q, model.EntityCategory, &c, func() error {
			saved, err := q.UpdateCategory(ctx, c.ID, c.Slug, c.Name)
			c = saved
			return err
		})
	})
	return c, err
}

// Move places a category at target.
func (m *CategoryManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityCategory, func(q *store.Queries) (int64, error) {
		c, err := q.GetCategory(ctx, id)
		if err != nil {
			return 0, err
		}
		if _, err := position.Move(ctx, q, store.CategoryFamily, id, target, c.CatalogID); err != nil {
			return 0, err
		}
		return catalogWebsite(ctx, q, c.CatalogID)
	})
}

// Delete removes a category. Products lose the membership only.
func (m *CategoryManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityCategory, func(q *store.Queries) (int64, error) {
		c, err := q.GetCategory(ctx, id)
		if err != nil {
			return 0, err
		}
		websiteID, err := catalogWebsite(ctx, q, c.CatalogID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.remove(ctx, q, model.EntityCategory, &c, func() error {
			return q.DeleteCategory(ctx, id)
		})
	})
}

// ProductRecord is the subject of product hooks.
type ProductRecord struct {
	store.Product
	Intls []Intl
	// CategoryIDs replaces the product categories. Nil keeps them on update.
	CategoryIDs []int64
	Target      int64

	websiteID int64
}

// ProductManager handles products, their intls, urls and categories.
type ProductManager struct{ s *Service }

func (m *ProductManager) EntityType() string { return model.EntityProduct }

func (m *ProductManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityProduct, ev, "product.validate", 10, m.validate)
		On(r, model.EntityProduct, ev, "product.slug", 20, m.slug)
		On(r, model.EntityProduct, ev, "product.intls", 30, func(ctx context.Context, q *store.Queries, p *ProductRecord) error {
			codes, def, err := locales(ctx, q, p.websiteID)
			if err != nil {
				return err
			}
			p.Intls = completeIntls(p.Intls, codes, def, p.Reference)
			return nil
		})
		On(r, model.EntityProduct, ev, "product.categories", 40, m.checkCategories)
	}
	On(r, model.EntityProduct, PrePersist, "product.position", 50, func(ctx context.Context, q *store.Queries, p *ProductRecord) error {
		pos, err := position.Next(ctx, q, store.ProductFamily, p.CatalogID)
		p.Position = pos
		return err
	})

	for _, ev := range []Event{PostPersist, PostUpdate} {
		On(r, model.EntityProduct, ev, "product.intls.save", 10, m.saveIntls)
		On(r, model.EntityProduct, ev, "product.categories.save", 20, m.saveCategories)
		On(r, model.EntityProduct, ev, "product.urls", 30, func(ctx context.Context, q *store.Queries, p *ProductRecord) error {
			return syncUrls(ctx, q, entityUrls{
				WebsiteID: p.websiteID, EntityType: model.EntityProduct, EntityID: p.ID, Online: p.IsOnline,
			}, p.Intls, m.s.nowUTC())
		})
		On(r, model.EntityProduct, ev, "product.feature_values", 40, func(ctx context.Context, q *store.Queries, p *ProductRecord) error {
			return recomputeProductValues(ctx, q, p.ID)
		})
	}
	On(r, model.EntityProduct, PostPersist, "product.insert_at", 50, func(ctx context.Context, q *store.Queries, p *ProductRecord) error {
		_, err := position.Insert(ctx, q, store.ProductFamily, p.ID, p.Target, p.CatalogID)
		return err
	})

	On(r, model.EntityProduct, PreRemove, "product.urls.delete", 10, func(ctx context.Context, q *store.Queries, p *ProductRecord) error {
		if err := q.DeleteEntityUrls(ctx, model.EntityProduct, p.ID); err != nil {
			return err
		}
		return q.DeleteEntityMediaRelations(ctx, model.EntityProduct, p.ID)
	})
	On(r, model.EntityProduct, PostRemove, "product.rescan", 10, func(ctx context.Context, q *store.Queries, p *ProductRecord) error {
		_, err := position.Rescan(ctx, q, store.ProductFamily, p.CatalogID)
		return err
	})
}

func (m *ProductManager) validate(ctx context.Context, q *store.Queries, p *ProductRecord) error {
	websiteID, err := catalogWebsite(ctx, q, p.CatalogID)
	if err != nil {
		return Invalid("catalog_id", "does not exist")
	}
	p.websiteID = websiteID

	verr := &ValidationError{}
	p.Reference = strings.ToUpper(strings.TrimSpace(p.Reference))
	if p.Reference == "" {
		verr.Add("reference", "is required")
	}
	if p.PublicationStart.Valid && p.PublicationEnd.Valid && p.PublicationEnd.Time.Before(p.PublicationStart.Time) {
		verr.Add("publication_end", "must not be before the publication start")
	}
	return verr.Err()
}

func (m *ProductManager) slug(ctx context.Context, q *store.Queries, p *ProductRecord) error {
	fallback := p.Reference
	if len(p.Intls) > 0 && p.Intls[0].Title != "" {
		fallback = p.Intls[0].Title
	}
	slug, err := uniqueSlug(ctx, q, store.ProductSlugs, p.CatalogID, p.Slug, fallback, p.ID)
	p.Slug = slug
	return err
}

func (m *ProductManager) checkCategories(ctx context.Context, q *store.Queries, p *ProductRecord) error {
	for _, id := range p.CategoryIDs {
		c, err := q.GetCategory(ctx, id)
		if err != nil || c.CatalogID != p.CatalogID {
			return Invalid("category_ids", fmt.Sprintf("category %d is not part of the catalog", id))
		}
	}
	return nil
}

func (m *ProductManager) saveIntls(ctx context.Context, q *store.Queries, p *ProductRecord) error {
	for _, in := range p.Intls {
		bodyHTML, err := m.s.renderer.Markdown(in.Body)
		if err != nil {
			return err
		}
		_, err = q.UpsertProductIntl(ctx, store.UpsertProductIntlParams{
			ProductID: p.ID, Locale: in.Locale, Title: in.Title,
			Introduction: in.Introduction, Body: in.Body, BodyHtml: bodyHTML,
		})
		if err != nil {
			return fmt.Errorf("saving product intl %s: %w", in.Locale, err)
		}
	}
	return nil
}

func (m *ProductManager) saveCategories(ctx context.Context, q *store.Queries, p *ProductRecord) error {
	if p.CategoryIDs == nil {
		return nil
	}
	if err := q.ClearProductCategories(ctx, p.ID); err != nil {
		return err
	}
	for _, id := range p.CategoryIDs {
		if err := q.AddProductCategory(ctx, p.ID, id); err != nil {
			return err
		}
	}
	return nil
}

// Create appends a product to its catalog.
func (m *ProductManager) Create(ctx context.Context, rec ProductRecord) (ProductRecord, error) {
	err := m.s.write(ctx, model.EntityProduct, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityProduct, &rec, func() error {
			now := m.s.nowUTC()
			p, err := q.CreateProduct(ctx, store.CreateProductParams{
				CatalogID: rec.CatalogID, Slug: rec.Slug, Reference: rec.Reference, Position: rec.Position,
				IsOnline: rec.IsOnline, PublicationStart: rec.PublicationStart, PublicationEnd: rec.PublicationEnd,
				CreatedAt: now, UpdatedAt: now,
			})
			rec.Product = p
			return err
		})
		return rec.websiteID, err
	})
	return rec, err
}

// Update saves a product and regenerates its feature value cache.
func (m *ProductManager) Update(ctx context.Context, rec ProductRecord) (ProductRecord, error) {
	err := m.s.write(ctx, model.EntityProduct, func(q *store.Queries) (int64, error) {
		current, err := q.GetProduct(ctx, rec.ID)
		if err != nil {
			return 0, err
		}
		rec.CatalogID = current.CatalogID
		rec.Position = current.Position

		stored, err := q.ListProductIntls(ctx, rec.ID)
		if err != nil {
			return 0, err
		}
		for _, s := range stored {
			if _, ok := findIntl(rec.Intls, s.Locale); !ok {
				rec.Intls = append(rec.Intls, Intl{Locale: s.Locale, Title: s.Title, Introduction: s.Introduction, Body: s.Body})
			}
		}

		err = m.s.update(ctx, q, model.EntityProduct, &rec, func() error {
			p, err := q.UpdateProduct(ctx, store.UpdateProductParams{
				Slug: rec.Slug, Reference: rec.Reference, IsOnline: rec.IsOnline,
				PublicationStart: rec.PublicationStart, PublicationEnd: rec.PublicationEnd,
				UpdatedAt: m.s.nowUTC(), ID: rec.ID,
			})
			rec.Product = p
			return err
		})
		return rec.websiteID, err
	})
	return rec, err
}

// Move places a product at target in its catalog.
func (m *ProductManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityProduct, func(q *store.Queries) (int64, error) {
		p, err := q.GetProduct(ctx, id)
		if err != nil {
			return 0, err
		}
		if _, err := position.Move(ctx, q, store.ProductFamily, id, target, p.CatalogID); err != nil {
			return 0, err
		}
		return catalogWebsite(ctx, q, p.CatalogID)
	})
}

// Delete removes a product.
func (m *ProductManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityProduct, func(q *store.Queries) (int64, error) {
		p, err := q.GetProduct(ctx, id)
		if err != nil {
			return 0, err
		}
		websiteID, err := catalogWebsite(ctx, q, p.CatalogID)
		if err != nil {
			return 0, err
		}
		rec := ProductRecord{Product: p, websiteID: websiteID}
		return websiteID, m.s.remove(ctx, q, model.EntityProduct, &rec, func() error {
			return q.DeleteProduct(ctx, id)
		})
	})
}
