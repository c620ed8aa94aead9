// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const featureColumns = `id, website_id, slug, name, as_filter, position, created_at`

func scanFeature(r rowScanner) (Feature, error) {
	var i Feature
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Name, &i.AsFilter, &i.Position, &i.CreatedAt)
	return i, err
}

const createFeature = `-- name: CreateFeature :one
INSERT INTO features (website_id, slug, name, as_filter, position, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + featureColumns

type CreateFeatureParams struct {
	WebsiteID int64     `json:"website_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	AsFilter  bool      `json:"as_filter"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateFeature(ctx context.Context, arg CreateFeatureParams) (Feature, error) {
	row := q.db.QueryRowContext(ctx, createFeature, arg.WebsiteID, arg.Slug, arg.Name, arg.AsFilter, arg.Position, arg.CreatedAt)
	return scanFeature(row)
}

const getFeature = `-- name: GetFeature :one
SELECT ` + featureColumns + ` FROM features WHERE id = ?`

func (q *Queries) GetFeature(ctx context.Context, id int64) (Feature, error) {
	return scanFeature(q.db.QueryRowContext(ctx, getFeature, id))
}

const listFeatures = `-- name: ListFeatures :many
SELECT ` + featureColumns + ` FROM features WHERE website_id = ? ORDER BY position, id`

func (q *Queries) ListFeatures(ctx context.Context, websiteID int64) ([]Feature, error) {
	rows, err := q.db.QueryContext(ctx, listFeatures, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFeature)
}

const updateFeature = `-- name: UpdateFeature :one
UPDATE features SET slug = ?, name = ?, as_filter = ? WHERE id = ?
RETURNING ` + featureColumns

type UpdateFeatureParams struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	AsFilter bool   `json:"as_filter"`
	ID       int64  `json:"id"`
}

func (q *Queries) UpdateFeature(ctx context.Context, arg UpdateFeatureParams) (Feature, error) {
	return scanFeature(q.db.QueryRowContext(ctx, updateFeature, arg.Slug, arg.Name, arg.AsFilter, arg.ID))
}

const deleteFeature = `-- name: DeleteFeature :exec
DELETE FROM features WHERE id = ?`

func (q *Queries) DeleteFeature(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteFeature, id)
	return err
}

// Feature values

const featureValueColumns = `id, feature_id, slug, label, position`

func scanFeatureValue(r rowScanner) (FeatureValue, error) {
	var i FeatureValue
	err := r.Scan(&i.ID, &i.FeatureID, &i.Slug, &i.Label, &i.Position)
	return i, err
}

const createFeatureValue = `-- name: CreateFeatureValue :one
INSERT INTO feature_values (feature_id, slug, label, position) VALUES (?, ?, ?, ?)
RETURNING ` + featureValueColumns

type CreateFeatureValueParams struct {
	FeatureID int64  `json:"feature_id"`
	Slug      string `json:"slug"`
	Label     string `json:"label"`
	Position  int64  `json:"position"`
}

func (q *Queries) CreateFeatureValue(ctx context.Context, arg CreateFeatureValueParams) (FeatureValue, error) {
	return scanFeatureValue(q.db.QueryRowContext(ctx, createFeatureValue, arg.FeatureID, arg.Slug, arg.Label, arg.Position))
}

const getFeatureValue = `-- name: GetFeatureValue :one
SELECT ` + featureValueColumns + ` FROM feature_values WHERE id = ?`

func (q *Queries) GetFeatureValue(ctx context.Context, id int64) (FeatureValue, error) {
	return scanFeatureValue(q.db.QueryRowContext(ctx, getFeatureValue, id))
}

const listFeatureValues = `-- name: ListFeatureValues :many
SELECT ` + featureValueColumns + ` FROM feature_values WHERE feature_id = ? ORDER BY position, id`

func (q *Queries) ListFeatureValues(ctx context.Context, featureID int64) ([]FeatureValue, error) {
	rows, err := q.db.QueryContext(ctx, listFeatureValues, featureID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFeatureValue)
}

const listFeatureValuesByWebsite = `-- name: ListFeatureValuesByWebsite :many
SELECT v.id, v.feature_id, v.slug, v.label, v.position
FROM feature_values v
JOIN features f ON f.id = v.feature_id
WHERE f.website_id = ?
ORDER BY f.position, v.position, v.id`

func (q *Queries) ListFeatureValuesByWebsite(ctx context.Context, websiteID int64) ([]FeatureValue, error) {
	rows, err := q.db.QueryContext(ctx, listFeatureValuesByWebsite, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFeatureValue)
}

const updateFeatureValue = `-- name: UpdateFeatureValue :one
UPDATE feature_values SET slug = ?, label = ? WHERE id = ?
RETURNING ` + featureValueColumns

func (q *Queries) UpdateFeatureValue(ctx context.Context, id int64, slug, label string) (FeatureValue, error) {
	return scanFeatureValue(q.db.QueryRowContext(ctx, updateFeatureValue, slug, label, id))
}

const deleteFeatureValue = `-- name: DeleteFeatureValue :exec
DELETE FROM feature_values WHERE id = ?`

func (q *Queries) DeleteFeatureValue(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteFeatureValue, id)
	return err
}

// Feature value intls

const upsertFeatureValueIntl = `-- name: UpsertFeatureValueIntl :one
INSERT INTO feature_value_intls (value_id, locale, label) VALUES (?, ?, ?)
ON CONFLICT (value_id, locale) DO UPDATE SET label = excluded.label
RETURNING id, value_id, locale, label`

func (q *Queries) UpsertFeatureValueIntl(ctx context.Context, valueID int64, locale, label string) (FeatureValueIntl, error) {
	var i FeatureValueIntl
	err := q.db.QueryRowContext(ctx, upsertFeatureValueIntl, valueID, locale, label).Scan(&i.ID, &i.ValueID, &i.Locale, &i.Label)
	return i, err
}

const listFeatureValueIntls = `-- name: ListFeatureValueIntls :many
SELECT id, value_id, locale, label FROM feature_value_intls WHERE value_id = ? ORDER BY id`

func (q *Queries) ListFeatureValueIntls(ctx context.Context, valueID int64) ([]FeatureValueIntl, error) {
	rows, err := q.db.QueryContext(ctx, listFeatureValueIntls, valueID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFeatureValueIntl)
}

const listFeatureValueIntlsByWebsite = `-- name: ListFeatureValueIntlsByWebsite :many
SELECT i.id, i.value_id, i.locale, i.label
FROM feature_value_intls i
JOIN feature_values v ON v.id = i.value_id
JOIN features f ON f.id = v.feature_id
WHERE f.website_id = ?
ORDER BY i.value_id, i.id`

func (q *Queries) ListFeatureValueIntlsByWebsite(ctx context.Context, websiteID int64) ([]FeatureValueIntl, error) {
	rows, err := q.db.QueryContext(ctx, listFeatureValueIntlsByWebsite, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFeatureValueIntl)
}

func scanFeatureValueIntl(r rowScanner) (FeatureValueIntl, error) {
	var i FeatureValueIntl
	err := r.Scan(&i.ID, &i.ValueID, &i.Locale, &i.Label)
	return i, err
}

// Feature value products

const fvpColumns = `id, product_id, feature_id, value_id, custom_value, locale, position, json_values`

func scanFeatureValueProduct(r rowScanner) (FeatureValueProduct, error) {
	var i FeatureValueProduct
	err := r.Scan(&i.ID, &i.ProductID, &i.FeatureID, &i.ValueID, &i.CustomValue, &i.Locale, &i.Position, &i.JsonValues)
	return i, err
}

const createFeatureValueProduct = `-- name: CreateFeatureValueProduct :one
INSERT INTO feature_value_products (product_id, feature_id, value_id, custom_value, locale, position, json_values)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + fvpColumns

type CreateFeatureValueProductParams struct {
	ProductID   int64         `json:"product_id"`
	FeatureID   int64         `json:"feature_id"`
	ValueID     sql.NullInt64 `json:"value_id"`
	CustomValue string        `json:"custom_value"`
	Locale      string        `json:"locale"`
	Position    int64         `json:"position"`
	JsonValues  string        `json:"json_values"`
}

func (q *Queries) CreateFeatureValueProduct(ctx context.Context, arg CreateFeatureValueProductParams) (FeatureValueProduct, error) {
	row := q.db.QueryRowContext(ctx, createFeatureValueProduct, arg.ProductID, arg.FeatureID, arg.ValueID, arg.CustomValue,
		arg.Locale, arg.Position, arg.JsonValues)
	return scanFeatureValueProduct(row)
}

const getFeatureValueProduct = `-- name: GetFeatureValueProduct :one
SELECT ` + fvpColumns + ` FROM feature_value_products WHERE id = ?`

func (q *Queries) GetFeatureValueProduct(ctx context.Context, id int64) (FeatureValueProduct, error) {
	return scanFeatureValueProduct(q.db.QueryRowContext(ctx, getFeatureValueProduct, id))
}

const listFeatureValueProducts = `-- name: ListFeatureValueProducts :many
SELECT ` + fvpColumns + ` FROM feature_value_products WHERE product_id = ? ORDER BY position, id`

func (q *Queries) ListFeatureValueProducts(ctx context.Context, productID int64) ([]FeatureValueProduct, error) {
	rows, err := q.db.QueryContext(ctx, listFeatureValueProducts, productID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFeatureValueProduct)
}

const listProductIDsByValue = `-- name: ListProductIDsByValue :many
SELECT DISTINCT product_id FROM feature_value_products WHERE value_id = ? ORDER BY product_id`

func (q *Queries) ListProductIDsByValue(ctx context.Context, valueID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listProductIDsByValue, valueID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

const deleteValueProductsWithoutCustom = `-- name: DeleteValueProductsWithoutCustom :execrows
DELETE FROM feature_value_products WHERE value_id = ? AND trim(custom_value) = ''`

// DeleteValueProductsWithoutCustom removes the product rows of a value that
// carry no custom text.
func (q *Queries) DeleteValueProductsWithoutCustom(ctx context.Context, valueID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteValueProductsWithoutCustom, valueID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listProductIDsByFeature = `-- name: ListProductIDsByFeature :many
SELECT DISTINCT product_id FROM feature_value_products WHERE feature_id = ? ORDER BY product_id`

func (q *Queries) ListProductIDsByFeature(ctx context.Context, featureID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listProductIDsByFeature, featureID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

const listFeatureValueProductsByCatalog = `-- name: ListFeatureValueProductsByCatalog :many
SELECT fvp.id, fvp.product_id, fvp.feature_id, fvp.value_id, fvp.custom_value, fvp.locale, fvp.position, fvp.json_values
FROM feature_value_products fvp
JOIN products p ON p.id = fvp.product_id
WHERE p.catalog_id = ?
ORDER BY fvp.product_id, fvp.position, fvp.id`

func (q *Queries) ListFeatureValueProductsByCatalog(ctx context.Context, catalogID int64) ([]FeatureValueProduct, error) {
	rows, err := q.db.QueryContext(ctx, listFeatureValueProductsByCatalog, catalogID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFeatureValueProduct)
}

const updateFeatureValueProduct = `-- name: UpdateFeatureValueProduct :one
UPDATE feature_value_products SET feature_id = ?, value_id = ?, custom_value = ?, locale = ? WHERE id = ?
RETURNING ` + fvpColumns

type UpdateFeatureValueProductParams struct {
	FeatureID   int64         `json:"feature_id"`
	ValueID     sql.NullInt64 `json:"value_id"`
	CustomValue string        `json:"custom_value"`
	Locale      string        `json:"locale"`
	ID          int64         `json:"id"`
}

func (q *Queries) UpdateFeatureValueProduct(ctx context.Context, arg UpdateFeatureValueProductParams) (FeatureValueProduct, error) {
	row := q.db.QueryRowContext(ctx, updateFeatureValueProduct, arg.FeatureID, arg.ValueID, arg.CustomValue, arg.Locale, arg.ID)
	return scanFeatureValueProduct(row)
}

const setFeatureValueProductJSON = `-- name: SetFeatureValueProductJSON :exec
UPDATE feature_value_products SET json_values = ? WHERE id = ?`

func (q *Queries) SetFeatureValueProductJSON(ctx context.Context, id int64, jsonValues string) error {
	_, err := q.db.ExecContext(ctx, setFeatureValueProductJSON, jsonValues, id)
	return err
}

const deleteFeatureValueProduct = `-- name: DeleteFeatureValueProduct :exec
DELETE FROM feature_value_products WHERE id = ?`

func (q *Queries) DeleteFeatureValueProduct(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteFeatureValueProduct, id)
	return err
}
