// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
)

// ProductValue is the cached, resolved form of one feature value of a
// product, stored in feature_value_products.json_values.
type ProductValue struct {
	Feature string `json:"feature"`
	Value   string `json:"value,omitempty"`
	Custom  bool   `json:"custom,omitempty"`
	// Labels maps locale to the label shown for that locale.
	Labels map[string]string `json:"labels"`
}

// BuildProductValue resolves the labels of one product value. The value's
// translation wins over its default label, and a custom value overrides
// both. A row bound to one locale only yields that locale.
func BuildProductValue(feature store.Feature, value *store.FeatureValue, intls []store.FeatureValueIntl, row store.FeatureValueProduct, locales []string) ProductValue {
	pv := ProductValue{Feature: feature.Slug, Labels: make(map[string]string)}
	if value != nil {
		pv.Value = value.Slug
	}
	custom := strings.TrimSpace(row.CustomValue)
	pv.Custom = custom != ""

	for _, locale := range locales {
		if row.Locale != "" && row.Locale != locale {
			continue
		}
		label := ""
		if value != nil {
			label = value.Label
			for _, in := range intls {
				if in.Locale == locale && in.Label != "" {
					label = in.Label
					break
				}
			}
		}
		if custom != "" {
			label = custom
		}
		if label != "" {
			pv.Labels[locale] = label
		}
	}
	return pv
}

// recomputeProductValues regenerates json_values for every feature value
// row of a product.
func recomputeProductValues(ctx context.Context, q *store.Queries, productID int64) error {
	product, err := q.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	websiteID, err := catalogWebsite(ctx, q, product.CatalogID)
	if err != nil {
		return err
	}
	codes, _, err := locales(ctx, q, websiteID)
	if err != nil {
		return err
	}
	rows, err := q.ListFeatureValueProducts(ctx, productID)
	if err != nil {
		return err
	}

	features := make(map[int64]store.Feature)
	for _, row := range rows {
		feature, ok := features[row.FeatureID]
		if !ok {
			if feature, err = q.GetFeature(ctx, row.FeatureID); err != nil {
				return fmt.Errorf("loading feature %d: %w", row.FeatureID, err)
			}
			features[row.FeatureID] = feature
		}

		var value *store.FeatureValue
		var intls []store.FeatureValueIntl
		if row.ValueID.Valid {
			v, err := q.GetFeatureValue(ctx, row.ValueID.Int64)
			switch {
			case err == nil:
				value = &v
				if intls, err = q.ListFeatureValueIntls(ctx, v.ID); err != nil {
					return err
				}
			case !errors.Is(err, sql.ErrNoRows):
				return err
			}
		}

		encoded, err := json.Marshal(BuildProductValue(feature, value, intls, row, codes))
		if err != nil {
			return err
		}
		if err := q.SetFeatureValueProductJSON(ctx, row.ID, string(encoded)); err != nil {
			return fmt.Errorf("caching product value %d: %w", row.ID, err)
		}
	}
	return nil
}

func recomputeProducts(ctx context.Context, q *store.Queries, productIDs []int64) error {
	for _, id := range productIDs {
		if err := recomputeProductValues(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

// FeatureRecord is the subject of feature hooks.
type FeatureRecord struct {
	store.Feature
	Target int64

	products []int64
}

// FeatureManager handles product features.
type FeatureManager struct{ s *Service }

func (m *FeatureManager) EntityType() string { return model.EntityFeature }

func (m *FeatureManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityFeature, ev, "feature.slug", 10, func(ctx context.Context, q *store.Queries, f *FeatureRecord) error {
			f.Name = strings.TrimSpace(f.Name)
			if f.Name == "" {
				return Invalid("name", "is required")
			}
			slug, err := uniqueSlug(ctx, q, store.FeatureSlugs, f.WebsiteID, f.Slug, f.Name, f.ID)
			f.Slug = slug
			return err
		})
	}
	On(r, model.EntityFeature, PrePersist, "feature.position", 20, func(ctx context.Context, q *store.Queries, f *FeatureRecord) error {
		pos, err := position.Next(ctx, q, store.FeatureFamily, f.WebsiteID)
		f.Position = pos
		return err
	})
	On(r, model.EntityFeature, PostPersist, "feature.insert_at", 10, func(ctx context.Context, q *store.Queries, f *FeatureRecord) error {
		_, err := position.Insert(ctx, q, store.FeatureFamily, f.ID, f.Target, f.WebsiteID)
		return err
	})
	// The feature slug is part of every cached product value.
	On(r, model.EntityFeature, PostUpdate, "feature.propagate", 10, func(ctx context.Context, q *store.Queries, f *FeatureRecord) error {
		ids, err := q.ListProductIDsByFeature(ctx, f.ID)
		if err != nil {
			return err
		}
		return recomputeProducts(ctx, q, ids)
	})
	On(r, model.EntityFeature, PreRemove, "feature.products", 10, func(ctx context.Context, q *store.Queries, f *FeatureRecord) error {
		ids, err := q.ListProductIDsByFeature(ctx, f.ID)
		f.products = ids
		return err
	})
	On(r, model.EntityFeature, PostRemove, "feature.rescan", 10, func(ctx context.Context, q *store.Queries, f *FeatureRecord) error {
		if _, err := position.Rescan(ctx, q, store.FeatureFamily, f.WebsiteID); err != nil {
			return err
		}
		for _, id := range f.products {
			if _, err := position.Rescan(ctx, q, store.FeatureValueProductFamily, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Create appends a feature.
func (m *FeatureManager) Create(ctx context.Context, rec FeatureRecord) (store.Feature, error) {
	err := m.s.write(ctx, model.EntityFeature, func(q *store.Queries) (int64, error) {
		return rec.WebsiteID, m.s.persist(ctx, q, model.EntityFeature, &rec, func() error {
			f, err := q.CreateFeature(ctx, store.CreateFeatureParams{
				WebsiteID: rec.WebsiteID, Slug: rec.Slug, Name: rec.Name, AsFilter: rec.AsFilter,
				Position: rec.Position, CreatedAt: m.s.nowUTC(),
			})
			rec.Feature = f
			return err
		})
	})
	return rec.Feature, err
}

// Update saves a feature.
func (m *FeatureManager) Update(ctx context.Context, f store.Feature) (store.Feature, error) {
	rec := FeatureRecord{Feature: f}
	err := m.s.write(ctx, model.EntityFeature, func(q *store.Queries) (int64, error) {
		current, err := q.GetFeature(ctx, f.ID)
		if err != nil {
			return 0, err
		}
		rec.WebsiteID = current.WebsiteID
		return rec.WebsiteID, m.s.update(ctx, q, model.EntityFeature, &rec, func() error {
			saved, err := q.UpdateFeature(ctx, store.UpdateFeatureParams{
				Slug: rec.Slug, Name: rec.Name, AsFilter: rec.AsFilter, ID: rec.ID,
			})
			rec.Feature = saved
			return err
		})
	})
	return rec.Feature, err
}

// Move places a feature at target.
func (m *FeatureManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityFeature, func(q *store.Queries) (int64, error) {
		f, err := q.GetFeature(ctx, id)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.FeatureFamily, id, target, f.WebsiteID)
		return f.WebsiteID, err
	})
}

// Delete removes a feature with its values and product rows.
func (m *FeatureManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityFeature, func(q *store.Queries) (int64, error) {
		f, err := q.GetFeature(ctx, id)
		if err != nil {
			return 0, err
		}
		rec := FeatureRecord{Feature: f}
		return f.WebsiteID, m.s.remove(ctx, q, model.EntityFeature, &rec, func() error {
			return q.DeleteFeature(ctx, id)
		})
	})
}

// FeatureValueRecord is the subject of feature value hooks.
type FeatureValueRecord struct {
	store.FeatureValue
	// Labels maps locale to a translated label. Missing locales use Label.
	Labels map[string]string
	Target int64

	websiteID int64
	products  []int64
}

// FeatureValueManager handles the values of a feature.
type FeatureValueManager struct{ s *Service }

func (m *FeatureValueManager) EntityType() string { return model.EntityFeatureValue }

func (m *FeatureValueManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityFeatureValue, ev, "feature_value.validate", 10, m.validate)
	}
	On(r, model.EntityFeatureValue, PrePersist, "feature_value.position", 20, func(ctx context.Context, q *store.Queries, v *FeatureValueRecord) error {
		pos, err := position.Next(ctx, q, store.FeatureValueFamily, v.FeatureID)
		v.Position = pos
		return err
	})
	for _, ev := range []Event{PostPersist, PostUpdate} {
		On(r, model.EntityFeatureValue, ev, "feature_value.labels", 10, func(ctx context.Context, q *store.Queries, v *FeatureValueRecord) error {
			for locale, label := range v.Labels {
				if _, err := q.UpsertFeatureValueIntl(ctx, v.ID, locale, strings.TrimSpace(label)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	On(r, model.EntityFeatureValue, PostPersist, "feature_value.insert_at", 20, func(ctx context.Context, q *store.Queries, v *FeatureValueRecord) error {
		_, err := position.Insert(ctx, q, store.FeatureValueFamily, v.ID, v.Target, v.FeatureID)
		return err
	})
	On(r, model.EntityFeatureValue, PostUpdate, "feature_value.propagate", 20, func(ctx context.Context, q *store.Queries, v *FeatureValueRecord) error {
		ids, err := q.ListProductIDsByValue(ctx, v.ID)
		if err != nil {
			return err
		}
		return recomputeProducts(ctx, q, ids)
	})
	// Rows left without a value and without custom text would be invalid.
	On(r, model.EntityFeatureValue, PreRemove, "feature_value.products", 10, func(ctx context.Context, q *store.Queries, v *FeatureValueRecord) error {
		ids, err := q.ListProductIDsByValue(ctx, v.ID)
		if err != nil {
			return err
		}
		v.products = ids
		_, err = q.DeleteValueProductsWithoutCustom(ctx, v.ID)
		return err
	})
	On(r, model.EntityFeatureValue, PostRemove, "feature_value.rescan", 10, func(ctx context.Context, q *store.Queries, v *FeatureValueRecord) error {
		if _, err := position.Rescan(ctx, q, store.FeatureValueFamily, v.FeatureID); err != nil {
			return err
		}
		for _, id := range v.products {
			if _, err := position.Rescan(ctx, q, store.FeatureValueProductFamily, id); err != nil {
				return err
			}
		}
		return recomputeProducts(ctx, q, v.products)
	})
}

func (m *FeatureValueManager) validate(ctx context.Context, q *store.Queries, v *FeatureValueRecord) error {
	feature, err := q.GetFeature(ctx, v.FeatureID)
	if err != nil {
		return Invalid("feature_id", "does not exist")
	}
	v.websiteID = feature.WebsiteID

	v.Label = strings.TrimSpace(v.Label)
	if v.Label == "" {
		codes, def, err := locales(ctx, q, feature.WebsiteID)
		if err != nil {
			return err
		}
		if len(codes) > 0 {
			v.Label = strings.TrimSpace(v.Labels[def])
		}
	}
	if v.Label == "" {
		return Invalid("label", "is required")
	}
	slug, err := uniqueSlug(ctx, q, store.FeatureValueSlugs, v.FeatureID, v.Slug, v.Label, v.ID)
	v.Slug = slug
	return err
}

// Create appends a value to a feature.
func (m *FeatureValueManager) Create(ctx context.Context, rec FeatureValueRecord) (store.FeatureValue, error) {
	err := m.s.write(ctx, model.EntityFeatureValue, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityFeatureValue, &rec, func() error {
			v, err := q.CreateFeatureValue(ctx, store.CreateFeatureValueParams{
				FeatureID: rec.FeatureID, Slug: rec.Slug, Label: rec.Label, Position: rec.Position,
			})
			rec.FeatureValue = v
			return err
		})
		return rec.websiteID, err
	})
	return rec.FeatureValue, err
}

// Update saves a value and relabels every product using it.
func (m *FeatureValueManager) Update(ctx context.Context, rec FeatureValueRecord) (store.FeatureValue, error) {
	err := m.s.write(ctx, model.EntityFeatureValue, func(q *store.Queries) (int64, error) {
		current, err := q.GetFeatureValue(ctx, rec.ID)
		if err != nil {
			return 0, err
		}
		rec.FeatureID = current.FeatureID
		err = m.s.update(ctx, q, model.EntityFeatureValue, &rec, func() error {
			v, err := q.UpdateFeatureValue(ctx, rec.ID, rec.Slug, rec.Label)
			rec.FeatureValue = v
			return err
		})
		return rec.websiteID, err
	})
	return rec.FeatureValue, err
}

// Move places a value at target.
func (m *FeatureValueManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityFeatureValue, func(q *store.Queries) (int64, error) {
		v, err := q.GetFeatureValue(ctx, id)
		if err != nil {
			return 0, err
		}
		f, err := q.GetFeature(ctx, v.FeatureID)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.FeatureValueFamily, id, target, v.FeatureID)
		return f.WebsiteID, err
	})
}

// Delete removes a value. Product rows with custom text keep it, the
// others are removed.
func (m *FeatureValueManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityFeatureValue, func(q *store.Queries) (int64, error) {
		v, err := q.GetFeatureValue(ctx, id)
		if err != nil {
			return 0, err
		}
		f, err := q.GetFeature(ctx, v.FeatureID)
		if err != nil {
			return 0, err
		}
		rec := FeatureValueRecord{FeatureValue: v, websiteID: f.WebsiteID}
		return f.WebsiteID, m.s.remove(ctx, q, model.EntityFeatureValue, &rec, func() error {
			return q.DeleteFeatureValue(ctx, id)
		})
	})
}

// FeatureValueProductRecord is the subject of product value hooks.
type FeatureValueProductRecord struct {
	store.FeatureValueProduct
	Target int64

	websiteID int64
}

// FeatureValueProductManager attaches feature values to products.
type FeatureValueProductManager struct{ s *Service }

func (m *FeatureValueProductManager) EntityType() string { return model.EntityFeatureValueProduct }

func (m *FeatureValueProductManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityFeatureValueProduct, ev, "feature_value_product.validate", 10, m.validate)
	}
	On(r, model.EntityFeatureValueProduct, PrePersist, "feature_value_product.position", 20, func(ctx context.Context, q *store.Queries, row *FeatureValueProductRecord) error {
		pos, err := position.Next(ctx, q, store.FeatureValueProductFamily, row.ProductID)
		row.Position = pos
		return err
	})
	On(r, model.EntityFeatureValueProduct, PostPersist, "feature_value_product.insert_at", 10, func(ctx context.Context, q *store.Queries, row *FeatureValueProductRecord) error {
		_, err := position.Insert(ctx, q, store.FeatureValueProductFamily, row.ID, row.Target, row.ProductID)
		return err
	})
	for _, ev := range []Event{PostPersist, PostUpdate} {
		On(r, model.EntityFeatureValueProduct, ev, "feature_value_product.json", 20, func(ctx context.Context, q *store.Queries, row *FeatureValueProductRecord) error {
			return recomputeProductValues(ctx, q, row.ProductID)
		})
	}
	On(r, model.EntityFeatureValueProduct, PostRemove, "feature_value_product.rescan", 10, func(ctx context.Context, q *store.Queries, row *FeatureValueProductRecord) error {
		_, err := position.Rescan(ctx, q, store.FeatureValueProductFamily, row.ProductID)
		return err
	})
}

func (m *FeatureValueProductManager) validate(ctx context.Context, q *store.Queries, row *FeatureValueProductRecord) error {
	product, err := q.GetProduct(ctx, row.ProductID)
	if err != nil {
		return Invalid("product_id", "does not exist")
	}
	websiteID, err := catalogWebsite(ctx, q, product.CatalogID)
	if err != nil {
		return err
	}
	row.websiteID = websiteID

	feature, err := q.GetFeature(ctx, row.FeatureID)
	if err != nil || feature.WebsiteID != websiteID {
		return Invalid("feature_id", "is not a feature of this website")
	}
	if row.ValueID.Valid {
		v, err := q.GetFeatureValue(ctx, row.ValueID.Int64)
		if err != nil || v.FeatureID != feature.ID {
			return Invalid("value_id", "is not a value of the feature")
		}
	}
	row.CustomValue = strings.TrimSpace(row.CustomValue)
	if !row.ValueID.Valid && row.CustomValue == "" {
		return Invalid("value_id", "set a value or a custom value")
	}
	if row.JsonValues == "" {
		row.JsonValues = "{}"
	}
	return nil
}

// Create attaches a value to a product.
func (m *FeatureValueProductManager) Create(ctx context.Context, rec FeatureValueProductRecord) (store.FeatureValueProduct, error) {
	err := m.s.write(ctx, model.EntityFeatureValueProduct, func(q *store.Queries) (int64, error) {
		err := m.s.persist(ctx, q, model.EntityFeatureValueProduct, &rec, func() error {
			row, err := q.CreateFeatureValueProduct(ctx, store.CreateFeatureValueProductParams{
				ProductID: rec.ProductID, FeatureID: rec.FeatureID, ValueID: rec.ValueID,
				CustomValue: rec.CustomValue, Locale: rec.Locale, Position: rec.Position, JsonValues: rec.JsonValues,
			})
			rec.FeatureValueProduct = row
			return err
		})
		return rec.websiteID, err
	})
	if err != nil {
		return store.FeatureValueProduct{}, err
	}
	return m.get(ctx, rec.ID)
}

// Update saves a product value.
func (m *FeatureValueProductManager) Update(ctx context.Context, row store.FeatureValueProduct) (store.FeatureValueProduct, error) {
	rec := FeatureValueProductRecord{FeatureValueProduct: row}
	err := m.s.write(ctx, model.EntityFeatureValueProduct, func(q *store.Queries) (int64, error) {
		current, err := q.GetFeatureValueProduct(ctx, row.ID)
		if err != nil {
			return 0, err
		}
		rec.ProductID = current.ProductID
		err = m.s.update(ctx, q, model.EntityFeatureValueProduct, &rec, func() error {
			saved, err := q.UpdateFeatureValueProduct(ctx, store.UpdateFeatureValueProductParams{
				FeatureID: rec.FeatureID, ValueID: rec.ValueID, CustomValue: rec.CustomValue,
				Locale: rec.Locale, ID: rec.ID,
			})
			rec.FeatureValueProduct = saved
			return err
		})
		return rec.websiteID, err
	})
	if err != nil {
		return store.FeatureValueProduct{}, err
	}
	return m.get(ctx, rec.ID)
}

func (m *FeatureValueProductManager) get(ctx context.Context, id int64) (store.FeatureValueProduct, error) {
	return store.New(m.s.db).GetFeatureValueProduct(ctx, id)
}

// Move places a product value at target.
func (m *FeatureValueProductManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityFeatureValueProduct, func(q *store.Queries) (int64, error) {
		row, err := q.GetFeatureValueProduct(ctx, id)
		if err != nil {
			return 0, err
		}
		p, err := q.GetProduct(ctx, row.ProductID)
		if err != nil {
			return 0, err
		}
		if _, err := position.Move(ctx, q, store.FeatureValueProductFamily, id, target, row.ProductID); err != nil {
			return 0, err
		}
		return catalogWebsite(ctx, q, p.CatalogID)
	})
}

// Delete detaches a product value.
func (m *FeatureValueProductManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityFeatureValueProduct, func(q *store.Queries) (int64, error) {
		row, err := q.GetFeatureValueProduct(ctx, id)
		if err != nil {
			return 0, err
		}
		p, err := q.GetProduct(ctx, row.ProductID)
		if err != nil {
			return 0, err
		}
		websiteID, err := catalogWebsite(ctx, q, p.CatalogID)
		if err != nil {
			return 0, err
		}
		rec := FeatureValueProductRecord{FeatureValueProduct: row, websiteID: websiteID}
		return websiteID, m.s.remove(ctx, q, model.EntityFeatureValueProduct, &rec, func() error {
			return q.DeleteFeatureValueProduct(ctx, id)
		})
	})
}
