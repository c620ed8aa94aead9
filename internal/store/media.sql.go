// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const mediaColumns = `id, website_id, uuid, filename, path, mime_type, width, height, size, created_at, updated_at`

func scanMedia(r rowScanner) (Media, error) {
	var i Media
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Uuid, &i.Filename, &i.Path, &i.MimeType, &i.Width, &i.Height, &i.Size,
		&i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createMedia = `-- name: CreateMedia :one
INSERT INTO medias (website_id, uuid, filename, path, mime_type, width, height, size, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + mediaColumns

type CreateMediaParams struct {
	WebsiteID int64     `json:"website_id"`
	Uuid      string    `json:"uuid"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	MimeType  string    `json:"mime_type"`
	Width     int64     `json:"width"`
	Height    int64     `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Media, error) {
	row := q.db.QueryRowContext(ctx, createMedia, arg.WebsiteID, arg.Uuid, arg.Filename, arg.Path, arg.MimeType,
		arg.Width, arg.Height, arg.Size, arg.CreatedAt, arg.UpdatedAt)
	return scanMedia(row)
}

const getMedia = `-- name: GetMedia :one
SELECT ` + mediaColumns + ` FROM medias WHERE id = ?`

func (q *Queries) GetMedia(ctx context.Context, id int64) (Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx, getMedia, id))
}

const getMediaByUuid = `-- name: GetMediaByUuid :one
SELECT ` + mediaColumns + ` FROM medias WHERE uuid = ?`

func (q *Queries) GetMediaByUuid(ctx context.Context, uuid string) (Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx, getMediaByUuid, uuid))
}

const listMedias = `-- name: ListMedias :many
SELECT ` + mediaColumns + ` FROM medias WHERE website_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListMedias(ctx context.Context, websiteID, limit, offset int64) ([]Media, error) {
	rows, err := q.db.QueryContext(ctx, listMedias, websiteID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMedia)
}

const listMediaIDs = `-- name: ListMediaIDs :many
SELECT id FROM medias ORDER BY id`

func (q *Queries) ListMediaIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listMediaIDs)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

const updateMedia = `-- name: UpdateMedia :one
UPDATE medias SET filename = ?, updated_at = ? WHERE id = ?
RETURNING ` + mediaColumns

func (q *Queries) UpdateMedia(ctx context.Context, id int64, filename string, updatedAt time.Time) (Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx, updateMedia, filename, updatedAt, id))
}

const deleteMedia = `-- name: DeleteMedia :exec
DELETE FROM medias WHERE id = ?`

func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteMedia, id)
	return err
}

// Media intls

const upsertMediaIntl = `-- name: UpsertMediaIntl :one
INSERT INTO media_intls (media_id, locale, alt, title) VALUES (?, ?, ?, ?)
ON CONFLICT (media_id, locale) DO UPDATE SET alt = excluded.alt, title = excluded.title
RETURNING id, media_id, locale, alt, title`

func (q *Queries) UpsertMediaIntl(ctx context.Context, mediaID int64, locale, alt, title string) (MediaIntl, error) {
	return scanMediaIntl(q.db.QueryRowContext(ctx, upsertMediaIntl, mediaID, locale, alt, title))
}

const listMediaIntls = `-- name: ListMediaIntls :many
SELECT id, media_id, locale, alt, title FROM media_intls WHERE media_id = ? ORDER BY id`

func (q *Queries) ListMediaIntls(ctx context.Context, mediaID int64) ([]MediaIntl, error) {
	rows, err := q.db.QueryContext(ctx, listMediaIntls, mediaID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMediaIntl)
}

func scanMediaIntl(r rowScanner) (MediaIntl, error) {
	var i MediaIntl
	err := r.Scan(&i.ID, &i.MediaID, &i.Locale, &i.Alt, &i.Title)
	return i, err
}

// Media relations

const mediaRelationColumns = `id, entity_type, entity_id, locale, media_id, position, is_main`

func scanMediaRelation(r rowScanner) (MediaRelation, error) {
	var i MediaRelation
	err := r.Scan(&i.ID, &i.EntityType, &i.EntityID, &i.Locale, &i.MediaID, &i.Position, &i.IsMain)
	return i, err
}

const createMediaRelation = `-- name: CreateMediaRelation :one
INSERT INTO media_relations (entity_type, entity_id, locale, media_id, position, is_main)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + mediaRelationColumns

type CreateMediaRelationParams struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Locale     string `json:"locale"`
	MediaID    int64  `json:"media_id"`
	Position   int64  `json:"position"`
	IsMain     bool   `json:"is_main"`
}

func (q *Queries) CreateMediaRelation(ctx context.Context, arg CreateMediaRelationParams) (MediaRelation, error) {
	row := q.db.QueryRowContext(ctx, createMediaRelation, arg.EntityType, arg.EntityID, arg.Locale, arg.MediaID, arg.Position, arg.IsMain)
	return scanMediaRelation(row)
}

const getMediaRelation = `-- name: GetMediaRelation :one
SELECT ` + mediaRelationColumns + ` FROM media_relations WHERE id = ?`

func (q *Queries) GetMediaRelation(ctx context.Context, id int64) (MediaRelation, error) {
	return scanMediaRelation(q.db.QueryRowContext(ctx, getMediaRelation, id))
}

const listMediaRelations = `-- name: ListMediaRelations :many
SELECT ` + mediaRelationColumns + ` FROM media_relations
WHERE entity_type = ? AND entity_id = ?
ORDER BY locale, position, id`

func (q *Queries) ListMediaRelations(ctx context.Context, entityType string, entityID int64) ([]MediaRelation, error) {
	rows, err := q.db.QueryContext(ctx, listMediaRelations, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMediaRelation)
}

const clearMainMediaRelation = `-- name: ClearMainMediaRelation :exec
UPDATE media_relations SET is_main = 0 WHERE entity_type = ? AND entity_id = ? AND locale = ? AND id != ?`

func (q *Queries) ClearMainMediaRelation(ctx context.Context, entityType string, entityID int64, locale string, exceptID int64) error {
	_, err := q.db.ExecContext(ctx, clearMainMediaRelation, entityType, entityID, locale, exceptID)
	return err
}

const setMediaRelationMain = `-- name: SetMediaRelationMain :exec
UPDATE media_relations SET is_main = ? WHERE id = ?`

func (q *Queries) SetMediaRelationMain(ctx context.Context, id int64, isMain bool) error {
	_, err := q.db.ExecContext(ctx, setMediaRelationMain, isMain, id)
	return err
}

const countMainMediaRelations = `-- name: CountMainMediaRelations :one
SELECT COUNT(*) FROM media_relations WHERE entity_type = ? AND entity_id = ? AND locale = ? AND is_main = 1`

func (q *Queries) CountMainMediaRelations(ctx context.Context, entityType string, entityID int64, locale string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMainMediaRelations, entityType, entityID, locale).Scan(&n)
	return n, err
}

const deleteMediaRelation = `-- name: DeleteMediaRelation :exec
DELETE FROM media_relations WHERE id = ?`

func (q *Queries) DeleteMediaRelation(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteMediaRelation, id)
	return err
}

const deleteEntityMediaRelations = `-- name: DeleteEntityMediaRelations :exec
DELETE FROM media_relations WHERE entity_type = ? AND entity_id = ?`

func (q *Queries) DeleteEntityMediaRelations(ctx context.Context, entityType string, entityID int64) error {
	_, err := q.db.ExecContext(ctx, deleteEntityMediaRelations, entityType, entityID)
	return err
}

// Thumb configurations

const thumbConfigurationColumns = `id, website_id, slug, screen, width, height, crop, quality`

func scanThumbConfiguration(r rowScanner) (ThumbConfiguration, error) {
	var i ThumbConfiguration
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Screen, &i.Width, &i.Height, &i.Crop, &i.Quality)
	return i, err
}

const createThumbConfiguration = `-- name: CreateThumbConfiguration :one
INSERT INTO thumb_configurations (website_id, slug, screen, width, height, crop, quality)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + thumbConfigurationColumns

type CreateThumbConfigurationParams struct {
	WebsiteID int64  `json:"website_id"`
	Slug      string `json:"slug"`
	Screen    string `json:"screen"`
	Width     int64  `json:"width"`
	Height    int64  `json:"height"`
	Crop      bool   `json:"crop"`
	Quality   int64  `json:"quality"`
}

func (q *Queries) CreateThumbConfiguration(ctx context.Context, arg CreateThumbConfigurationParams) (ThumbConfiguration, error) {
	row := q.db.QueryRowContext(ctx, createThumbConfiguration, arg.WebsiteID, arg.Slug, arg.Screen, arg.Width, arg.Height, arg.Crop, arg.Quality)
	return scanThumbConfiguration(row)
}

const getThumbConfiguration = `-- name: GetThumbConfiguration :one
SELECT ` + thumbConfigurationColumns + ` FROM thumb_configurations WHERE id = ?`

func (q *Queries) GetThumbConfiguration(ctx context.Context, id int64) (ThumbConfiguration, error) {
	return scanThumbConfiguration(q.db.QueryRowContext(ctx, getThumbConfiguration, id))
}

const listThumbConfigurations = `-- name: ListThumbConfigurations :many
SELECT ` + thumbConfigurationColumns + ` FROM thumb_configurations WHERE website_id = ? ORDER BY slug, screen`

func (q *Queries) ListThumbConfigurations(ctx context.Context, websiteID int64) ([]ThumbConfiguration, error) {
	rows, err := q.db.QueryContext(ctx, listThumbConfigurations, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanThumbConfiguration)
}

const listThumbConfigurationsBySlug = `-- name: ListThumbConfigurationsBySlug :many
SELECT ` + thumbConfigurationColumns + ` FROM thumb_configurations WHERE website_id = ? AND slug = ? ORDER BY screen`

func (q *Queries) ListThumbConfigurationsBySlug(ctx context.Context, websiteID int64, slug string) ([]ThumbConfiguration, error) {
	rows, err := q.db.QueryContext(ctx, listThumbConfigurationsBySlug, websiteID, slug)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanThumbConfiguration)
}

const updateThumbConfiguration = `-- name: UpdateThumbConfiguration :one
UPDATE thumb_configurations SET slug = ?, screen = ?, width = ?, height = ?, crop = ?, quality = ? WHERE id = ?
RETURNING ` + thumbConfigurationColumns

type UpdateThumbConfigurationParams struct {
	Slug    string `json:"slug"`
	Screen  string `json:"screen"`
	Width   int64  `json:"width"`
	Height  int64  `json:"height"`
	Crop    bool   `json:"crop"`
	Quality int64  `json:"quality"`
	ID      int64  `json:"id"`
}

func (q *Queries) UpdateThumbConfiguration(ctx context.Context, arg UpdateThumbConfigurationParams) (ThumbConfiguration, error) {
	row := q.db.QueryRowContext(ctx, updateThumbConfiguration, arg.Slug, arg.Screen, arg.Width, arg.Height, arg.Crop, arg.Quality, arg.ID)
	return scanThumbConfiguration(row)
}

const deleteThumbConfiguration = `-- name: DeleteThumbConfiguration :exec
DELETE FROM thumb_configurations WHERE id = ?`

func (q *Queries) DeleteThumbConfiguration(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteThumbConfiguration, id)
	return err
}

// Thumbs (stored crop boxes)

const thumbColumns = `id, media_id, configuration_id, crop_x, crop_y, crop_width, crop_height, updated_at`

func scanThumb(r rowScanner) (Thumb, error) {
	var i Thumb
	err := r.Scan(&i.ID, &i.MediaID, &i.ConfigurationID, &i.CropX, &i.CropY, &i.CropWidth, &i.CropHeight, &i.UpdatedAt)
	return i, err
}

const upsertThumb = `-- name: UpsertThumb :one
INSERT INTO thumbs (media_id, configuration_id, crop_x, crop_y, crop_width, crop_height, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (media_id, configuration_id) DO UPDATE SET
    crop_x = excluded.crop_x,
    crop_y = excluded.crop_y,
    crop_width = excluded.crop_width,
    crop_height = excluded.crop_height,
    updated_at = excluded.updated_at
RETURNING ` + thumbColumns

type UpsertThumbParams struct {
	MediaID         int64     `json:"media_id"`
	ConfigurationID int64     `json:"configuration_id"`
	CropX           int64     `json:"crop_x"`
	CropY           int64     `json:"crop_y"`
	CropWidth       int64     `json:"crop_width"`
	CropHeight      int64     `json:"crop_height"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (q *Queries) UpsertThumb(ctx context.Context, arg UpsertThumbParams) (Thumb, error) {
	row := q.db.QueryRowContext(ctx, upsertThumb, arg.MediaID, arg.ConfigurationID, arg.CropX, arg.CropY,
		arg.CropWidth, arg.CropHeight, arg.UpdatedAt)
	return scanThumb(row)
}

const getThumb = `-- name: GetThumb :one
SELECT ` + thumbColumns + ` FROM thumbs WHERE media_id = ? AND configuration_id = ?`

func (q *Queries) GetThumb(ctx context.Context, mediaID, configurationID int64) (Thumb, error) {
	return scanThumb(q.db.QueryRowContext(ctx, getThumb, mediaID, configurationID))
}

const deleteThumb = `-- name: DeleteThumb :exec
DELETE FROM thumbs WHERE id = ?`

func (q *Queries) DeleteThumb(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteThumb, id)
	return err
}
