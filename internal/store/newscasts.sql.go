// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const newscastCategoryColumns = `id, website_id, slug, name, position`

func scanNewscastCategory(r rowScanner) (NewscastCategory, error) {
	var i NewscastCategory
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Name, &i.Position)
	return i, err
}

const createNewscastCategory = `-- name: CreateNewscastCategory :one
INSERT INTO newscast_categories (website_id, slug, name, position) VALUES (?, ?, ?, ?)
RETURNING ` + newscastCategoryColumns

type CreateNewscastCategoryParams struct {
	WebsiteID int64  `json:"website_id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Position  int64  `json:"position"`
}

func (q *Queries) CreateNewscastCategory(ctx context.Context, arg CreateNewscastCategoryParams) (NewscastCategory, error) {
	row := q.db.QueryRowContext(ctx, createNewscastCategory, arg.WebsiteID, arg.Slug, arg.Name, arg.Position)
	return scanNewscastCategory(row)
}

const getNewscastCategory = `-- name: GetNewscastCategory :one
SELECT ` + newscastCategoryColumns + ` FROM newscast_categories WHERE id = ?`

func (q *Queries) GetNewscastCategory(ctx context.Context, id int64) (NewscastCategory, error) {
	return scanNewscastCategory(q.db.QueryRowContext(ctx, getNewscastCategory, id))
}

const listNewscastCategories = `-- name: ListNewscastCategories :many
SELECT ` + newscastCategoryColumns + ` FROM newscast_categories WHERE website_id = ? ORDER BY position, id`

func (q *Queries) ListNewscastCategories(ctx context.Context, websiteID int64) ([]NewscastCategory, error) {
	rows, err := q.db.QueryContext(ctx, listNewscastCategories, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNewscastCategory)
}

const updateNewscastCategory = `-- name: UpdateNewscastCategory :one
UPDATE newscast_categories SET slug = ?, name = ? WHERE id = ?
RETURNING ` + newscastCategoryColumns

func (q *Queries) UpdateNewscastCategory(ctx context.Context, id int64, slug, name string) (NewscastCategory, error) {
	return scanNewscastCategory(q.db.QueryRowContext(ctx, updateNewscastCategory, slug, name, id))
}

const deleteNewscastCategory = `-- name: DeleteNewscastCategory :exec
DELETE FROM newscast_categories WHERE id = ?`

func (q *Queries) DeleteNewscastCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteNewscastCategory, id)
	return err
}

// Newscasts

const newscastColumns = `id, website_id, category_id, slug, is_online, publication_date, publication_end, start_date, end_date, created_at, updated_at`

func scanNewscast(r rowScanner) (Newscast, error) {
	var i Newscast
	err := r.Scan(&i.ID, &i.WebsiteID, &i.CategoryID, &i.Slug, &i.IsOnline, &i.PublicationDate, &i.PublicationEnd,
		&i.StartDate, &i.EndDate, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createNewscast = `-- name: CreateNewscast :one
INSERT INTO newscasts (website_id, category_id, slug, is_online, publication_date, publication_end, start_date, end_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + newscastColumns

type CreateNewscastParams struct {
	WebsiteID       int64         `json:"website_id"`
	CategoryID      sql.NullInt64 `json:"category_id"`
	Slug            string        `json:"slug"`
	IsOnline        bool          `json:"is_online"`
	PublicationDate sql.NullTime  `json:"publication_date"`
	PublicationEnd  sql.NullTime  `json:"publication_end"`
	StartDate       sql.NullTime  `json:"start_date"`
	EndDate         sql.NullTime  `json:"end_date"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (q *Queries) CreateNewscast(ctx context.Context, arg CreateNewscastParams) (Newscast, error) {
	row := q.db.QueryRowContext(ctx, createNewscast, arg.WebsiteID, arg.CategoryID, arg.Slug, arg.IsOnline,
		arg.PublicationDate, arg.PublicationEnd, arg.StartDate, arg.EndDate, arg.CreatedAt, arg.UpdatedAt)
	return scanNewscast(row)
}

const getNewscast = `-- name: GetNewscast :one
SELECT ` + newscastColumns + ` FROM newscasts WHERE id = ?`

func (q *Queries) GetNewscast(ctx context.Context, id int64) (Newscast, error) {
	return scanNewscast(q.db.QueryRowContext(ctx, getNewscast, id))
}

const listNewscasts = `-- name: ListNewscasts :many
SELECT ` + newscastColumns + ` FROM newscasts WHERE website_id = ? ORDER BY publication_date DESC, id DESC`

func (q *Queries) ListNewscasts(ctx context.Context, websiteID int64) ([]Newscast, error) {
	rows, err := q.db.QueryContext(ctx, listNewscasts, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNewscast)
}

const updateNewscast = `-- name: UpdateNewscast :one
UPDATE newscasts SET category_id = ?, slug = ?, is_online = ?, publication_date = ?, publication_end = ?,
    start_date = ?, end_date = ?, updated_at = ?
WHERE id = ?
RETURNING ` + newscastColumns

type UpdateNewscastParams struct {
	CategoryID      sql.NullInt64 `json:"category_id"`
	Slug            string        `json:"slug"`
	IsOnline        bool          `json:"is_online"`
	PublicationDate sql.NullTime  `json:"publication_date"`
	PublicationEnd  sql.NullTime  `json:"publication_end"`
	StartDate       sql.NullTime  `json:"start_date"`
	EndDate         sql.NullTime  `json:"end_date"`
	UpdatedAt       time.Time     `json:"updated_at"`
	ID              int64         `json:"id"`
}

func (q *Queries) UpdateNewscast(ctx context.Context, arg UpdateNewscastParams) (Newscast, error) {
	row := q.db.QueryRowContext(ctx, updateNewscast, arg.CategoryID, arg.Slug, arg.IsOnline, arg.PublicationDate,
		arg.PublicationEnd, arg.StartDate, arg.EndDate, arg.UpdatedAt, arg.ID)
	return scanNewscast(row)
}

const deleteNewscast = `-- name: DeleteNewscast :exec
DELETE FROM newscasts WHERE id = ?`

func (q *Queries) DeleteNewscast(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteNewscast, id)
	return err
}

const publishDueNewscasts = `-- name: PublishDueNewscasts :many
UPDATE newscasts SET is_online = 1, updated_at = ?
WHERE is_online = 0 AND publication_date IS NOT NULL AND publication_date > ? AND publication_date <= ?
  AND (publication_end IS NULL OR publication_end > ?)
RETURNING id`

// PublishDueNewscasts switches online the newscasts whose publication
// date fell in (since, now].
func (q *Queries) PublishDueNewscasts(ctx context.Context, since, now time.Time) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, publishDueNewscasts, now, since, now, now)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

const unpublishExpiredNewscasts = `-- name: UnpublishExpiredNewscasts :many
UPDATE newscasts SET is_online = 0, updated_at = ?
WHERE is_online = 1 AND publication_end IS NOT NULL AND publication_end <= ?
RETURNING id`

func (q *Queries) UnpublishExpiredNewscasts(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, unpublishExpiredNewscasts, now, now)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

// Newscast intls

const newscastIntlColumns = `id, newscast_id, locale, title, introduction, body, body_html`

func scanNewscastIntl(r rowScanner) (NewscastIntl, error) {
	var i NewscastIntl
	err := r.Scan(&i.ID, &i.NewscastID, &i.Locale, &i.Title, &i.Introduction, &i.Body, &i.BodyHtml)
	return i, err
}

const upsertNewscastIntl = `-- name: UpsertNewscastIntl :one
INSERT INTO newscast_intls (newscast_id, locale, title, introduction, body, body_html)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (newscast_id, locale) DO UPDATE SET
    title = excluded.title,
    introduction = excluded.introduction,
    body = excluded.body,
    body_html = excluded.body_html
RETURNING ` + newscastIntlColumns

type UpsertNewscastIntlParams struct {
	NewscastID   int64  `json:"newscast_id"`
	Locale       string `json:"locale"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	Body         string `json:"body"`
	BodyHtml     string `json:"body_html"`
}

func (q *Queries) UpsertNewscastIntl(ctx context.Context, arg UpsertNewscastIntlParams) (NewscastIntl, error) {
	row := q.db.QueryRowContext(ctx, upsertNewscastIntl, arg.NewscastID, arg.Locale, arg.Title, arg.Introduction, arg.Body, arg.BodyHtml)
	return scanNewscastIntl(row)
}

const listNewscastIntls = `-- name: ListNewscastIntls :many
SELECT ` + newscastIntlColumns + ` FROM newscast_intls WHERE newscast_id = ? ORDER BY id`

func (q *Queries) ListNewscastIntls(ctx context.Context, newscastID int64) ([]NewscastIntl, error) {
	rows, err := q.db.QueryContext(ctx, listNewscastIntls, newscastID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNewscastIntl)
}

const listNewscastIntlsByWebsite = `-- name: ListNewscastIntlsByWebsite :many
SELECT i.id, i.newscast_id, i.locale, i.title, i.introduction, i.body, i.body_html
FROM newscast_intls i
JOIN newscasts n ON n.id = i.newscast_id
WHERE n.website_id = ?
ORDER BY i.newscast_id, i.id`

func (q *Queries) ListNewscastIntlsByWebsite(ctx context.Context, websiteID int64) ([]NewscastIntl, error) {
	rows, err := q.db.QueryContext(ctx, listNewscastIntlsByWebsite, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNewscastIntl)
}
