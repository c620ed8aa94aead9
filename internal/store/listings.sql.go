// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const listingColumns = `id, website_id, slug, kind, entity_type, order_by, items_per_page, nb_items, as_events, created_at, updated_at`

func scanListing(r rowScanner) (Listing, error) {
	var i Listing
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Kind, &i.EntityType, &i.OrderBy, &i.ItemsPerPage, &i.NbItems,
		&i.AsEvents, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createListing = `-- name: CreateListing :one
INSERT INTO listings (website_id, slug, kind, entity_type, order_by, items_per_page, nb_items, as_events, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + listingColumns

type CreateListingParams struct {
	WebsiteID    int64     `json:"website_id"`
	Slug         string    `json:"slug"`
	Kind         string    `json:"kind"`
	EntityType   string    `json:"entity_type"`
	OrderBy      string    `json:"order_by"`
	ItemsPerPage int64     `json:"items_per_page"`
	NbItems      int64     `json:"nb_items"`
	AsEvents     bool      `json:"as_events"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) CreateListing(ctx context.Context, arg CreateListingParams) (Listing, error) {
	row := q.db.QueryRowContext(ctx, createListing, arg.WebsiteID, arg.Slug, arg.Kind, arg.EntityType, arg.OrderBy,
		arg.ItemsPerPage, arg.NbItems, arg.AsEvents, arg.CreatedAt, arg.UpdatedAt)
	return scanListing(row)
}

const getListing = `-- name: GetListing :one
SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

func (q *Queries) GetListing(ctx context.Context, id int64) (Listing, error) {
	return scanListing(q.db.QueryRowContext(ctx, getListing, id))
}

const getListingBySlug = `-- name: GetListingBySlug :one
SELECT ` + listingColumns + ` FROM listings WHERE website_id = ? AND slug = ?`

func (q *Queries) GetListingBySlug(ctx context.Context, websiteID int64, slug string) (Listing, error) {
	return scanListing(q.db.QueryRowContext(ctx, getListingBySlug, websiteID, slug))
}

const listListings = `-- name: ListListings :many
SELECT ` + listingColumns + ` FROM listings WHERE website_id = ? ORDER BY slug`

func (q *Queries) ListListings(ctx context.Context, websiteID int64) ([]Listing, error) {
	rows, err := q.db.QueryContext(ctx, listListings, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanListing)
}

const updateListing = `-- name: UpdateListing :one
UPDATE listings SET slug = ?, kind = ?, entity_type = ?, order_by = ?, items_per_page = ?, nb_items = ?,
    as_events = ?, updated_at = ?
WHERE id = ?
RETURNING ` + listingColumns

type UpdateListingParams struct {
	Slug         string    `json:"slug"`
	Kind         string    `json:"kind"`
	EntityType   string    `json:"entity_type"`
	OrderBy      string    `json:"order_by"`
	ItemsPerPage int64     `json:"items_per_page"`
	NbItems      int64     `json:"nb_items"`
	AsEvents     bool      `json:"as_events"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           int64     `json:"id"`
}

func (q *Queries) UpdateListing(ctx context.Context, arg UpdateListingParams) (Listing, error) {
	row := q.db.QueryRowContext(ctx, updateListing, arg.Slug, arg.Kind, arg.EntityType, arg.OrderBy, arg.ItemsPerPage,
		arg.NbItems, arg.AsEvents, arg.UpdatedAt, arg.ID)
	return scanListing(row)
}

const deleteListing = `-- name: DeleteListing :exec
DELETE FROM listings WHERE id = ?`

func (q *Queries) DeleteListing(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteListing, id)
	return err
}

const addListingCategory = `-- name: AddListingCategory :exec
INSERT INTO listing_categories (listing_id, category_id) VALUES (?, ?) ON CONFLICT DO NOTHING`

func (q *Queries) AddListingCategory(ctx context.Context, listingID, categoryID int64) error {
	_, err := q.db.ExecContext(ctx, addListingCategory, listingID, categoryID)
	return err
}

const clearListingCategories = `-- name: ClearListingCategories :exec
DELETE FROM listing_categories WHERE listing_id = ?`

func (q *Queries) ClearListingCategories(ctx context.Context, listingID int64) error {
	_, err := q.db.ExecContext(ctx, clearListingCategories, listingID)
	return err
}

const listListingCategoryIDs = `-- name: ListListingCategoryIDs :many
SELECT category_id FROM listing_categories WHERE listing_id = ? ORDER BY category_id`

func (q *Queries) ListListingCategoryIDs(ctx context.Context, listingID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listListingCategoryIDs, listingID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

// Events

const createEvent = `-- name: CreateEvent :one
INSERT INTO events (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)
RETURNING id, level, category, message, metadata, created_at`

type CreateEventParams struct {
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent, arg.Level, arg.Category, arg.Message, arg.Metadata, arg.CreatedAt)
	return scanEvent(row)
}

const listEvents = `-- name: ListEvents :many
SELECT id, level, category, message, metadata, created_at FROM events
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListEvents(ctx context.Context, limit, offset int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}

const deleteEventsBefore = `-- name: DeleteEventsBefore :execrows
DELETE FROM events WHERE created_at < ?`

func (q *Queries) DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEventsBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanEvent(r rowScanner) (Event, error) {
	var i Event
	err := r.Scan(&i.ID, &i.Level, &i.Category, &i.Message, &i.Metadata, &i.CreatedAt)
	return i, err
}

// API keys

const apiKeyColumns = `id, name, key_hash, key_prefix, permissions, is_active, expires_at, last_used_at, created_at`

func scanApiKey(r rowScanner) (ApiKey, error) {
	var i ApiKey
	err := r.Scan(&i.ID, &i.Name, &i.KeyHash, &i.KeyPrefix, &i.Permissions, &i.IsActive, &i.ExpiresAt, &i.LastUsedAt, &i.CreatedAt)
	return i, err
}

const createApiKey = `-- name: CreateApiKey :one
INSERT INTO api_keys (name, key_hash, key_prefix, permissions, is_active, expires_at, created_at)
VALUES (?, ?, ?, ?, 1, ?, ?)
RETURNING ` + apiKeyColumns

type CreateApiKeyParams struct {
	Name        string       `json:"name"`
	KeyHash     string       `json:"key_hash"`
	KeyPrefix   string       `json:"key_prefix"`
	Permissions string       `json:"permissions"`
	ExpiresAt   sql.NullTime `json:"expires_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (q *Queries) CreateApiKey(ctx context.Context, arg CreateApiKeyParams) (ApiKey, error) {
	row := q.db.QueryRowContext(ctx, createApiKey, arg.Name, arg.KeyHash, arg.KeyPrefix, arg.Permissions, arg.ExpiresAt, arg.CreatedAt)
	return scanApiKey(row)
}

const getApiKeyByHash = `-- name: GetApiKeyByHash :one
SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = ?`

func (q *Queries) GetApiKeyByHash(ctx context.Context, keyHash string) (ApiKey, error) {
	return scanApiKey(q.db.QueryRowContext(ctx, getApiKeyByHash, keyHash))
}

const listApiKeys = `-- name: ListApiKeys :many
SELECT ` + apiKeyColumns + ` FROM api_keys ORDER BY id`

func (q *Queries) ListApiKeys(ctx context.Context) ([]ApiKey, error) {
	rows, err := q.db.QueryContext(ctx, listApiKeys)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanApiKey)
}

const touchApiKey = `-- name: TouchApiKey :exec
UPDATE api_keys SET last_used_at = ? WHERE id = ?`

func (q *Queries) TouchApiKey(ctx context.Context, id int64, usedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, touchApiKey, usedAt, id)
	return err
}

const deactivateApiKey = `-- name: DeactivateApiKey :exec
UPDATE api_keys SET is_active = 0 WHERE id = ?`

func (q *Queries) DeactivateApiKey(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deactivateApiKey, id)
	return err
}
