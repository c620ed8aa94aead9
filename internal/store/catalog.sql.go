// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const catalogColumns = `id, website_id, slug, name, position, created_at, updated_at`

func scanCatalog(r rowScanner) (Catalog, error) {
	var i Catalog
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Name, &i.Position, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createCatalog = `-- name: CreateCatalog :one
INSERT INTO catalogs (website_id, slug, name, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + catalogColumns

type CreateCatalogParams struct {
	WebsiteID int64     `json:"website_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateCatalog(ctx context.Context, arg CreateCatalogParams) (Catalog, error) {
	row := q.db.QueryRowContext(ctx, createCatalog, arg.WebsiteID, arg.Slug, arg.Name, arg.Position, arg.CreatedAt, arg.UpdatedAt)
	return scanCatalog(row)
}

const getCatalog = `-- name: GetCatalog :one
SELECT ` + catalogColumns + ` FROM catalogs WHERE id = ?`

func (q *Queries) GetCatalog(ctx context.Context, id int64) (Catalog, error) {
	return scanCatalog(q.db.QueryRowContext(ctx, getCatalog, id))
}

const getCatalogBySlug = `-- name: GetCatalogBySlug :one
SELECT ` + catalogColumns + ` FROM catalogs WHERE website_id = ? AND slug = ?`

func (q *Queries) GetCatalogBySlug(ctx context.Context, websiteID int64, slug string) (Catalog, error) {
	return scanCatalog(q.db.QueryRowContext(ctx, getCatalogBySlug, websiteID, slug))
}

const listCatalogs = `-- name: ListCatalogs :many
SELECT ` + catalogColumns + ` FROM catalogs WHERE website_id = ? ORDER BY position, id`

func (q *Queries) ListCatalogs(ctx context.Context, websiteID int64) ([]Catalog, error) {
	rows, err := q.db.QueryContext(ctx, listCatalogs, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCatalog)
}

const updateCatalog = `-- name: UpdateCatalog :one
UPDATE catalogs SET slug = ?, name = ?, updated_at = ? WHERE id = ?
RETURNING ` + catalogColumns

type UpdateCatalogParams struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateCatalog(ctx context.Context, arg UpdateCatalogParams) (Catalog, error) {
	return scanCatalog(q.db.QueryRowContext(ctx, updateCatalog, arg.Slug, arg.Name, arg.UpdatedAt, arg.ID))
}

const deleteCatalog = `-- name: DeleteCatalog :exec
DELETE FROM catalogs WHERE id = ?`

func (q *Queries) DeleteCatalog(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCatalog, id)
	return err
}

// Categories

const categoryColumns = `id, catalog_id, slug, name, position`

func scanCategory(r rowScanner) (CatalogCategory, error) {
	var i CatalogCategory
	err := r.Scan(&i.ID, &i.CatalogID, &i.Slug, &i.Name, &i.Position)
	return i, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO catalog_categories (catalog_id, slug, name, position) VALUES (?, ?, ?, ?)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	CatalogID int64  `json:"catalog_id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Position  int64  `json:"position"`
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (CatalogCategory, error) {
	return scanCategory(q.db.QueryRowContext(ctx, createCategory, arg.CatalogID, arg.Slug, arg.Name, arg.Position))
}

const getCategory = `-- name: GetCategory :one
SELECT ` + categoryColumns + ` FROM catalog_categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (CatalogCategory, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
}

const getCategoryBySlug = `-- name: GetCategoryBySlug :one
SELECT ` + categoryColumns + ` FROM catalog_categories WHERE catalog_id = ? AND slug = ?`

func (q *Queries) GetCategoryBySlug(ctx context.Context, catalogID int64, slug string) (CatalogCategory, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategoryBySlug, catalogID, slug))
}

const listCategories = `-- name: ListCategories :many
SELECT ` + categoryColumns + ` FROM catalog_categories WHERE catalog_id = ? ORDER BY position, id`

func (q *Queries) ListCategories(ctx context.Context, catalogID int64) ([]CatalogCategory, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, catalogID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCategory)
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE catalog_categories SET slug = ?, name = ? WHERE id = ?
RETURNING ` + categoryColumns

func (q *Queries) UpdateCategory(ctx context.Context, id int64, slug, name string) (CatalogCategory, error) {
	return scanCategory(q.db.QueryRowContext(ctx, updateCategory, slug, name, id))
}

const deleteCategory = `-- name: DeleteCategory :exec
DELETE FROM catalog_categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCategory, id)
	return err
}

// Products

const productColumns = `id, catalog_id, slug, reference, position, is_online, publication_start, publication_end, created_at, updated_at`

func scanProduct(r rowScanner) (Product, error) {
	var i Product
	err := r.Scan(&i.ID, &i.CatalogID, &i.Slug, &i.Reference, &i.Position, &i.IsOnline, &i.PublicationStart,
		&i.PublicationEnd, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (catalog_id, slug, reference, position, is_online, publication_start, publication_end, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + productColumns

type CreateProductParams struct {
	CatalogID        int64        `json:"catalog_id"`
	Slug             string       `json:"slug"`
	Reference        string       `json:"reference"`
	Position         int64        `json:"position"`
	IsOnline         bool         `json:"is_online"`
	PublicationStart sql.NullTime `json:"publication_start"`
	PublicationEnd   sql.NullTime `json:"publication_end"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRowContext(ctx, createProduct, arg.CatalogID, arg.Slug, arg.Reference, arg.Position, arg.IsOnline,
		arg.PublicationStart, arg.PublicationEnd, arg.CreatedAt, arg.UpdatedAt)
	return scanProduct(row)
}

const getProduct = `-- name: GetProduct :one
SELECT ` + productColumns + ` FROM products WHERE id = ?`

func (q *Queries) GetProduct(ctx context.Context, id int64) (Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, getProduct, id))
}

const listProductsByCatalog = `-- name: ListProductsByCatalog :many
SELECT ` + productColumns + ` FROM products WHERE catalog_id = ? ORDER BY position, id`

func (q *Queries) ListProductsByCatalog(ctx context.Context, catalogID int64) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProductsByCatalog, catalogID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProduct)
}

const listProductsByWebsite = `-- name: ListProductsByWebsite :many
SELECT p.id, p.catalog_id, p.slug, p.reference, p.position, p.is_online, p.publication_start, p.publication_end, p.created_at, p.updated_at
FROM products p
JOIN catalogs c ON c.id = p.catalog_id
WHERE c.website_id = ?
ORDER BY c.position, p.position, p.id`

func (q *Queries) ListProductsByWebsite(ctx context.Context, websiteID int64) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProductsByWebsite, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProduct)
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products SET slug = ?, reference = ?, is_online = ?, publication_start = ?, publication_end = ?, updated_at = ?
WHERE id = ?
RETURNING ` + productColumns

type UpdateProductParams struct {
	Slug             string       `json:"slug"`
	Reference        string       `json:"reference"`
	IsOnline         bool         `json:"is_online"`
	PublicationStart sql.NullTime `json:"publication_start"`
	PublicationEnd   sql.NullTime `json:"publication_end"`
	UpdatedAt        time.Time    `json:"updated_at"`
	ID               int64        `json:"id"`
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRowContext(ctx, updateProduct, arg.Slug, arg.Reference, arg.IsOnline, arg.PublicationStart,
		arg.PublicationEnd, arg.UpdatedAt, arg.ID)
	return scanProduct(row)
}

const deleteProduct = `-- name: DeleteProduct :exec
DELETE FROM products WHERE id = ?`

func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteProduct, id)
	return err
}

const publishDueProducts = `-- name: PublishDueProducts :many
UPDATE products SET is_online = 1, updated_at = ?
WHERE is_online = 0 AND publication_start IS NOT NULL AND publication_start > ? AND publication_start <= ?
  AND (publication_end IS NULL OR publication_end > ?)
RETURNING id`

// PublishDueProducts switches online the products whose publication
// window opened in (since, now].
func (q *Queries) PublishDueProducts(ctx context.Context, since, now time.Time) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, publishDueProducts, now, since, now, now)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

const unpublishExpiredProducts = `-- name: UnpublishExpiredProducts :many
UPDATE products SET is_online = 0, updated_at = ?
WHERE is_online = 1 AND publication_end IS NOT NULL AND publication_end <= ?
RETURNING id`

func (q *Queries) UnpublishExpiredProducts(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, unpublishExpiredProducts, now, now)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

func scanID(r rowScanner) (int64, error) {
	var id int64
	err := r.Scan(&id)
	return id, err
}

// Product intls

const productIntlColumns = `id, product_id, locale, title, introduction, body, body_html`

func scanProductIntl(r rowScanner) (ProductIntl, error) {
	var i ProductIntl
	err := r.Scan(&i.ID, &i.ProductID, &i.Locale, &i.Title, &i.Introduction, &i.Body, &i.BodyHtml)
	return i, err
}

const upsertProductIntl = `-- name: UpsertProductIntl :one
INSERT INTO product_intls (product_id, locale, title, introduction, body, body_html)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (product_id, locale) DO UPDATE SET
    title = excluded.title,
    introduction = excluded.introduction,
    body = excluded.body,
    body_html = excluded.body_html
RETURNING ` + productIntlColumns

type UpsertProductIntlParams struct {
	ProductID    int64  `json:"product_id"`
	Locale       string `json:"locale"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	Body         string `json:"body"`
	BodyHtml     string `json:"body_html"`
}

func (q *Queries) UpsertProductIntl(ctx context.Context, arg UpsertProductIntlParams) (ProductIntl, error) {
	row := q.db.QueryRowContext(ctx, upsertProductIntl, arg.ProductID, arg.Locale, arg.Title, arg.Introduction, arg.Body, arg.BodyHtml)
	return scanProductIntl(row)
}

const listProductIntls = `-- name: ListProductIntls :many
SELECT ` + productIntlColumns + ` FROM product_intls WHERE product_id = ? ORDER BY id`

func (q *Queries) ListProductIntls(ctx context.Context, productID int64) ([]ProductIntl, error) {
	rows, err := q.db.QueryContext(ctx, listProductIntls, productID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProductIntl)
}

const listProductIntlsByCatalog = `-- name: ListProductIntlsByCatalog :many
SELECT i.id, i.product_id, i.locale, i.title, i.introduction, i.body, i.body_html
FROM product_intls i
JOIN products p ON p.id = i.product_id
WHERE p.catalog_id = ?
ORDER BY i.product_id, i.id`

func (q *Queries) ListProductIntlsByCatalog(ctx context.Context, catalogID int64) ([]ProductIntl, error) {
	rows, err := q.db.QueryContext(ctx, listProductIntlsByCatalog, catalogID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProductIntl)
}

// Product categories

const addProductCategory = `-- name: AddProductCategory :exec
INSERT INTO product_categories (product_id, category_id) VALUES (?, ?) ON CONFLICT DO NOTHING`

func (q *Queries) AddProductCategory(ctx context.Context, productID, categoryID int64) error {
	_, err := q.db.ExecContext(ctx, addProductCategory, productID, categoryID)
	return err
}

const clearProductCategories = `-- name: ClearProductCategories :exec
DELETE FROM product_categories WHERE product_id = ?`

func (q *Queries) ClearProductCategories(ctx context.Context, productID int64) error {
	_, err := q.db.ExecContext(ctx, clearProductCategories, productID)
	return err
}

// ProductCategoryRow links one product to one category.
type ProductCategoryRow struct {
	ProductID  int64 `json:"product_id"`
	CategoryID int64 `json:"category_id"`
}

const listProductCategoriesByCatalog = `-- name: ListProductCategoriesByCatalog :many
SELECT pc.product_id, pc.category_id
FROM product_categories pc
JOIN products p ON p.id = pc.product_id
WHERE p.catalog_id = ?
ORDER BY pc.product_id, pc.category_id`

func (q *Queries) ListProductCategoriesByCatalog(ctx context.Context, catalogID int64) ([]ProductCategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listProductCategoriesByCatalog, catalogID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r rowScanner) (ProductCategoryRow, error) {
		var i ProductCategoryRow
		err := r.Scan(&i.ProductID, &i.CategoryID)
		return i, err
	})
}

const listProductCategoryIDs = `-- name: ListProductCategoryIDs :many
SELECT category_id FROM product_categories WHERE product_id = ? ORDER BY category_id`

func (q *Queries) ListProductCategoryIDs(ctx context.Context, productID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listProductCategoryIDs, productID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}
