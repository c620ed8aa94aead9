// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

// ProductView is a product with its intls and categories.
type ProductView struct {
	store.Product
	PublicationStart *time.Time       `json:"publication_start"`
	PublicationEnd   *time.Time       `json:"publication_end"`
	Intls            []lifecycle.Intl `json:"intls"`
	CategoryIDs      []int64          `json:"category_ids"`
	Target           int64            `json:"target,omitempty"`
}

func (v ProductView) record() lifecycle.ProductRecord {
	p := v.Product
	p.PublicationStart = nullTime(v.PublicationStart)
	p.PublicationEnd = nullTime(v.PublicationEnd)
	return lifecycle.ProductRecord{Product: p, Intls: v.Intls, CategoryIDs: v.CategoryIDs, Target: v.Target}
}

func (h *Handler) productView(ctx context.Context, p store.Product) (ProductView, error) {
	v := ProductView{
		Product:          p,
		PublicationStart: ptrTime(p.PublicationStart),
		PublicationEnd:   ptrTime(p.PublicationEnd),
	}
	intls, err := h.queries.ListProductIntls(ctx, p.ID)
	if err != nil {
		return v, err
	}
	codes, err := h.urlCodes(ctx, model.EntityProduct, p.ID)
	if err != nil {
		return v, err
	}
	for _, in := range intls {
		v.Intls = append(v.Intls, lifecycle.Intl{
			Locale: in.Locale, Title: in.Title, Introduction: in.Introduction, Body: in.Body, Code: codes[in.Locale],
		})
	}
	if v.CategoryIDs, err = h.queries.ListProductCategoryIDs(ctx, p.ID); err != nil {
		return v, err
	}
	if v.CategoryIDs == nil {
		v.CategoryIDs = []int64{}
	}
	return v, nil
}

// FeatureView is a feature with its insert position.
type FeatureView struct {
	store.Feature
	Target int64 `json:"target,omitempty"`
}

// FeatureValueView is a feature value with its translated labels.
type FeatureValueView struct {
	store.FeatureValue
	Labels map[string]string `json:"labels"`
	Target int64             `json:"target,omitempty"`
}

func (h *Handler) featureValueView(ctx context.Context, fv store.FeatureValue) (FeatureValueView, error) {
	v := FeatureValueView{FeatureValue: fv, Labels: map[string]string{}}
	intls, err := h.queries.ListFeatureValueIntls(ctx, fv.ID)
	if err != nil {
		return v, err
	}
	for _, in := range intls {
		v.Labels[in.Locale] = in.Label
	}
	return v, nil
}

// ProductValueView is a feature value attached to a product.
type ProductValueView struct {
	store.FeatureValueProduct
	ValueID *int64 `json:"value_id"`
	Target  int64  `json:"target,omitempty"`
}

func productValueView(row store.FeatureValueProduct) ProductValueView {
	return ProductValueView{FeatureValueProduct: row, ValueID: ptrInt(row.ValueID)}
}

func (v ProductValueView) row() store.FeatureValueProduct {
	row := v.FeatureValueProduct
	row.ValueID = nullInt(v.ValueID)
	return row
}

func (h *Handler) mountCatalog(r chi.Router) {
	content := h.Content

	resource[store.Catalog]{
		name: "catalog",
		get:  h.queries.GetCatalog,
		list: h.queries.ListCatalogs,
		create: func(ctx context.Context, wid int64, c store.Catalog) (store.Catalog, error) {
			c.WebsiteID = wid
			return content.Catalogs.Create(ctx, c)
		},
		update: func(ctx context.Context, id int64, c store.Catalog) (store.Catalog, error) {
			c.ID = id
			return content.Catalogs.Update(ctx, c)
		},
		remove: content.Catalogs.Delete,
		move:   content.Catalogs.Move,
	}.register(h, r, "websites", "catalogs")

	resource[store.CatalogCategory]{
		name: "category",
		get:  h.queries.GetCategory,
		list: h.queries.ListCategories,
		create: func(ctx context.Context, catalogID int64, c store.CatalogCategory) (store.CatalogCategory, error) {
			c.CatalogID = catalogID
			return content.Categories.Create(ctx, c)
		},
		update: func(ctx context.Context, id int64, c store.CatalogCategory) (store.CatalogCategory, error) {
			c.ID = id
			return content.Categories.Update(ctx, c)
		},
		remove: content.Categories.Delete,
		move:   content.Categories.Move,
	}.register(h, r, "catalogs", "categories")

	resource[ProductView]{
		name: "product",
		get: func(ctx context.Context, id int64) (ProductView, error) {
			p, err := h.queries.GetProduct(ctx, id)
			if err != nil {
				return ProductView{}, err
			}
			return h.productView(ctx, p)
		},
		list: func(ctx context.Context, catalogID int64) ([]ProductView, error) {
			products, err := h.queries.ListProductsByCatalog(ctx, catalogID)
			if err != nil {
				return nil, err
			}
			out := make([]ProductView, 0, len(products))
			for _, p := range products {
				v, err := h.productView(ctx, p)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
		create: func(ctx context.Context, catalogID int64, v ProductView) (ProductView, error) {
			rec := v.record()
			rec.CatalogID = catalogID
			saved, err := content.Products.Create(ctx, rec)
			if err != nil {
				return ProductView{}, err
			}
			return h.productView(ctx, saved.Product)
		},
		update: func(ctx context.Context, id int64, v ProductView) (ProductView, error) {
			rec := v.record()
			rec.ID = id
			saved, err := content.Products.Update(ctx, rec)
			if err != nil {
				return ProductView{}, err
			}
			return h.productView(ctx, saved.Product)
		},
		remove: content.Products.Delete,
		move:   content.Products.Move,
	}.register(h, r, "catalogs", "products")

	resource[FeatureView]{
		name: "feature",
		get: func(ctx context.Context, id int64) (FeatureView, error) {
			f, err := h.queries.GetFeature(ctx, id)
			return FeatureView{Feature: f}, err
		},
		list: func(ctx context.Context, wid int64) ([]FeatureView, error) {
			features, err := h.queries.ListFeatures(ctx, wid)
			out := make([]FeatureView, len(features))
			for i, f := range features {
				out[i] = FeatureView{Feature: f}
			}
			return out, err
		},
		create: func(ctx context.Context, wid int64, v FeatureView) (FeatureView, error) {
			v.WebsiteID = wid
			f, err := content.Features.Create(ctx, lifecycle.FeatureRecord{Feature: v.Feature, Target: v.Target})
			return FeatureView{Feature: f}, err
		},
		update: func(ctx context.Context, id int64, v FeatureView) (FeatureView, error) {
			v.ID = id
			f, err := content.Features.Update(ctx, v.Feature)
			return FeatureView{Feature: f}, err
		},
		remove: content.Features.Delete,
		move:   content.Features.Move,
	}.register(h, r, "websites", "features")

	resource[FeatureValueView]{
		name: "feature value",
		get: func(ctx context.Context, id int64) (FeatureValueView, error) {
			fv, err := h.queries.GetFeatureValue(ctx, id)
			if err != nil {
				return FeatureValueView{}, err
			}
			return h.featureValueView(ctx, fv)
		},
		list: func(ctx context.Context, featureID int64) ([]FeatureValueView, error) {
			values, err := h.queries.ListFeatureValues(ctx, featureID)
			if err != nil {
				return nil, err
			}
			out := make([]FeatureValueView, 0, len(values))
			for _, fv := range values {
				v, err := h.featureValueView(ctx, fv)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
		create: func(ctx context.Context, featureID int64, v FeatureValueView) (FeatureValueView, error) {
			v.FeatureID = featureID
			fv, err := content.FeatureValues.Create(ctx, lifecycle.FeatureValueRecord{
				FeatureValue: v.FeatureValue, Labels: v.Labels, Target: v.Target,
			})
			if err != nil {
				return FeatureValueView{}, err
			}
			return h.featureValueView(ctx, fv)
		},
		update: func(ctx context.Context, id int64, v FeatureValueView) (FeatureValueView, error) {
			v.ID = id
			fv, err := content.FeatureValues.Update(ctx, lifecycle.FeatureValueRecord{
				FeatureValue: v.FeatureValue, Labels: v.Labels,
			})
			if err != nil {
				return FeatureValueView{}, err
			}
			return h.featureValueView(ctx, fv)
		},
		remove: content.FeatureValues.Delete,
		move:   content.FeatureValues.Move,
	}.register(h, r, "features", "feature-values")

	resource[ProductValueView]{
		name: "product value",
		get: func(ctx context.Context, id int64) (ProductValueView, error) {
			row, err := h.queries.GetFeatureValueProduct(ctx, id)
			return productValueView(row), err
		},
		list: func(ctx context.Context, productID int64) ([]ProductValueView, error) {
			rows, err := h.queries.ListFeatureValueProducts(ctx, productID)
			out := make([]ProductValueView, len(rows))
			for i, row := range rows {
				out[i] = productValueView(row)
			}
			return out, err
		},
		create: func(ctx context.Context, productID int64, v ProductValueView) (ProductValueView, error) {
			row := v.row()
			row.ProductID = productID
			saved, err := content.FeatureValueProducts.Create(ctx, lifecycle.FeatureValueProductRecord{
				FeatureValueProduct: row, Target: v.Target,
			})
			return productValueView(saved), err
		},
		update: func(ctx context.Context, id int64, v ProductValueView) (ProductValueView, error) {
			row := v.row()
			row.ID = id
			saved, err := content.FeatureValueProducts.Update(ctx, row)
			return productValueView(saved), err
		},
		remove: content.FeatureValueProducts.Delete,
		move:   content.FeatureValueProducts.Move,
	}.register(h, r, "products", "product-values")
}
