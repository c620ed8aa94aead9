// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const pageColumns = `id, website_id, parent_id, admin_name, slug, template, position, level, is_index, is_online, publication_start, publication_end, created_at, updated_at`

func scanPage(r rowScanner) (Page, error) {
	var i Page
	err := r.Scan(&i.ID, &i.WebsiteID, &i.ParentID, &i.AdminName, &i.Slug, &i.Template, &i.Position, &i.Level,
		&i.IsIndex, &i.IsOnline, &i.PublicationStart, &i.PublicationEnd, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createPage = `-- name: CreatePage :one
INSERT INTO pages (website_id, parent_id, admin_name, slug, template, position, level, is_index, is_online, publication_start, publication_end, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + pageColumns

type CreatePageParams struct {
	WebsiteID        int64         `json:"website_id"`
	ParentID         sql.NullInt64 `json:"parent_id"`
	AdminName        string        `json:"admin_name"`
	Slug             string        `json:"slug"`
	Template         string        `json:"template"`
	Position         int64         `json:"position"`
	Level            int64         `json:"level"`
	IsIndex          bool          `json:"is_index"`
	IsOnline         bool          `json:"is_online"`
	PublicationStart sql.NullTime  `json:"publication_start"`
	PublicationEnd   sql.NullTime  `json:"publication_end"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, createPage, arg.WebsiteID, arg.ParentID, arg.AdminName, arg.Slug, arg.Template,
		arg.Position, arg.Level, arg.IsIndex, arg.IsOnline, arg.PublicationStart, arg.PublicationEnd, arg.CreatedAt, arg.UpdatedAt)
	return scanPage(row)
}

const getPage = `-- name: GetPage :one
SELECT ` + pageColumns + ` FROM pages WHERE id = ?`

func (q *Queries) GetPage(ctx context.Context, id int64) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPage, id))
}

const getIndexPage = `-- name: GetIndexPage :one
SELECT ` + pageColumns + ` FROM pages WHERE website_id = ? AND is_index = 1 LIMIT 1`

func (q *Queries) GetIndexPage(ctx context.Context, websiteID int64) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getIndexPage, websiteID))
}

const listPagesByWebsite = `-- name: ListPagesByWebsite :many
SELECT ` + pageColumns + ` FROM pages WHERE website_id = ? ORDER BY level, position, id`

func (q *Queries) ListPagesByWebsite(ctx context.Context, websiteID int64) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, listPagesByWebsite, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPage)
}

const listPageChildren = `-- name: ListPageChildren :many
SELECT ` + pageColumns + ` FROM pages WHERE parent_id = ? ORDER BY position, id`

func (q *Queries) ListPageChildren(ctx context.Context, parentID int64) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, listPageChildren, parentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPage)
}

const updatePage = `-- name: UpdatePage :one
UPDATE pages SET parent_id = ?, admin_name = ?, slug = ?, template = ?, level = ?, is_index = ?, is_online = ?,
    publication_start = ?, publication_end = ?, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

type UpdatePageParams struct {
	ParentID         sql.NullInt64 `json:"parent_id"`
	AdminName        string        `json:"admin_name"`
	Slug             string        `json:"slug"`
	Template         string        `json:"template"`
	Level            int64         `json:"level"`
	IsIndex          bool          `json:"is_index"`
	IsOnline         bool          `json:"is_online"`
	PublicationStart sql.NullTime  `json:"publication_start"`
	PublicationEnd   sql.NullTime  `json:"publication_end"`
	UpdatedAt        time.Time     `json:"updated_at"`
	ID               int64         `json:"id"`
}

func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, updatePage, arg.ParentID, arg.AdminName, arg.Slug, arg.Template, arg.Level,
		arg.IsIndex, arg.IsOnline, arg.PublicationStart, arg.PublicationEnd, arg.UpdatedAt, arg.ID)
	return scanPage(row)
}

const clearIndexPage = `-- name: ClearIndexPage :exec
UPDATE pages SET is_index = 0 WHERE website_id = ? AND id != ?`

func (q *Queries) ClearIndexPage(ctx context.Context, websiteID, exceptID int64) error {
	_, err := q.db.ExecContext(ctx, clearIndexPage, websiteID, exceptID)
	return err
}

const setPageParent = `-- name: SetPageParent :exec
UPDATE pages SET parent_id = ?, level = ?, position = ? WHERE id = ?`

func (q *Queries) SetPageParent(ctx context.Context, id int64, parentID sql.NullInt64, level, position int64) error {
	_, err := q.db.ExecContext(ctx, setPageParent, parentID, level, position, id)
	return err
}

const deletePage = `-- name: DeletePage :exec
DELETE FROM pages WHERE id = ?`

func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deletePage, id)
	return err
}

// Page intls

const pageIntlColumns = `id, page_id, locale, title, introduction, body, body_html, updated_at`

func scanPageIntl(r rowScanner) (PageIntl, error) {
	var i PageIntl
	err := r.Scan(&i.ID, &i.PageID, &i.Locale, &i.Title, &i.Introduction, &i.Body, &i.BodyHtml, &i.UpdatedAt)
	return i, err
}

const upsertPageIntl = `-- name: UpsertPageIntl :one
INSERT INTO page_intls (page_id, locale, title, introduction, body, body_html, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (page_id, locale) DO UPDATE SET
    title = excluded.title,
    introduction = excluded.introduction,
    body = excluded.body,
    body_html = excluded.body_html,
    updated_at = excluded.updated_at
RETURNING ` + pageIntlColumns

type UpsertPageIntlParams struct {
	PageID       int64     `json:"page_id"`
	Locale       string    `json:"locale"`
	Title        string    `json:"title"`
	Introduction string    `json:"introduction"`
	Body         string    `json:"body"`
	BodyHtml     string    `json:"body_html"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) UpsertPageIntl(ctx context.Context, arg UpsertPageIntlParams) (PageIntl, error) {
	row := q.db.QueryRowContext(ctx, upsertPageIntl, arg.PageID, arg.Locale, arg.Title, arg.Introduction, arg.Body, arg.BodyHtml, arg.UpdatedAt)
	return scanPageIntl(row)
}

const listPageIntls = `-- name: ListPageIntls :many
SELECT ` + pageIntlColumns + ` FROM page_intls WHERE page_id = ? ORDER BY id`

func (q *Queries) ListPageIntls(ctx context.Context, pageID int64) ([]PageIntl, error) {
	rows, err := q.db.QueryContext(ctx, listPageIntls, pageID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPageIntl)
}

const listPageIntlsByWebsite = `-- name: ListPageIntlsByWebsite :many
SELECT i.id, i.page_id, i.locale, i.title, i.introduction, i.body, i.body_html, i.updated_at
FROM page_intls i
JOIN pages p ON p.id = i.page_id
WHERE p.website_id = ?
ORDER BY i.page_id, i.id`

func (q *Queries) ListPageIntlsByWebsite(ctx context.Context, websiteID int64) ([]PageIntl, error) {
	rows, err := q.db.QueryContext(ctx, listPageIntlsByWebsite, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPageIntl)
}

// Urls

const urlColumns = `id, website_id, entity_type, entity_id, locale, code, is_online, is_indexable, updated_at`

func scanUrl(r rowScanner) (Url, error) {
	var i Url
	err := r.Scan(&i.ID, &i.WebsiteID, &i.EntityType, &i.EntityID, &i.Locale, &i.Code, &i.IsOnline, &i.IsIndexable, &i.UpdatedAt)
	return i, err
}

const upsertUrl = `-- name: UpsertUrl :one
INSERT INTO urls (website_id, entity_type, entity_id, locale, code, is_online, is_indexable, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (entity_type, entity_id, locale) DO UPDATE SET
    code = excluded.code,
    is_online = excluded.is_online,
    is_indexable = excluded.is_indexable,
    updated_at = excluded.updated_at
RETURNING ` + urlColumns

type UpsertUrlParams struct {
	WebsiteID   int64     `json:"website_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	Locale      string    `json:"locale"`
	Code        string    `json:"code"`
	IsOnline    bool      `json:"is_online"`
	IsIndexable bool      `json:"is_indexable"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (q *Queries) UpsertUrl(ctx context.Context, arg UpsertUrlParams) (Url, error) {
	row := q.db.QueryRowContext(ctx, upsertUrl, arg.WebsiteID, arg.EntityType, arg.EntityID, arg.Locale, arg.Code,
		arg.IsOnline, arg.IsIndexable, arg.UpdatedAt)
	return scanUrl(row)
}

const getUrl = `-- name: GetUrl :one
SELECT ` + urlColumns + ` FROM urls WHERE id = ?`

func (q *Queries) GetUrl(ctx context.Context, id int64) (Url, error) {
	return scanUrl(q.db.QueryRowContext(ctx, getUrl, id))
}

const getUrlByCode = `-- name: GetUrlByCode :one
SELECT ` + urlColumns + ` FROM urls WHERE website_id = ? AND locale = ? AND code = ? LIMIT 1`

func (q *Queries) GetUrlByCode(ctx context.Context, websiteID int64, locale, code string) (Url, error) {
	return scanUrl(q.db.QueryRowContext(ctx, getUrlByCode, websiteID, locale, code))
}

const getEntityUrl = `-- name: GetEntityUrl :one
SELECT ` + urlColumns + ` FROM urls WHERE entity_type = ? AND entity_id = ? AND locale = ?`

func (q *Queries) GetEntityUrl(ctx context.Context, entityType string, entityID int64, locale string) (Url, error) {
	return scanUrl(q.db.QueryRowContext(ctx, getEntityUrl, entityType, entityID, locale))
}

const listEntityUrls = `-- name: ListEntityUrls :many
SELECT ` + urlColumns + ` FROM urls WHERE entity_type = ? AND entity_id = ? ORDER BY id`

func (q *Queries) ListEntityUrls(ctx context.Context, entityType string, entityID int64) ([]Url, error) {
	rows, err := q.db.QueryContext(ctx, listEntityUrls, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUrl)
}

const listUrlsByType = `-- name: ListUrlsByType :many
SELECT ` + urlColumns + ` FROM urls
WHERE website_id = ? AND entity_type = ?
ORDER BY entity_id, locale`

func (q *Queries) ListUrlsByType(ctx context.Context, websiteID int64, entityType string) ([]Url, error) {
	rows, err := q.db.QueryContext(ctx, listUrlsByType, websiteID, entityType)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUrl)
}

const listOnlineUrls = `-- name: ListOnlineUrls :many
SELECT ` + urlColumns + ` FROM urls
WHERE website_id = ? AND is_online = 1 AND is_indexable = 1
ORDER BY entity_type, entity_id, locale`

func (q *Queries) ListOnlineUrls(ctx context.Context, websiteID int64) ([]Url, error) {
	rows, err := q.db.QueryContext(ctx, listOnlineUrls, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUrl)
}

const countUrlCode = `-- name: CountUrlCode :one
SELECT COUNT(*) FROM urls
WHERE website_id = ? AND locale = ? AND code = ? AND NOT (entity_type = ? AND entity_id = ?)`

// CountUrlCode counts urls of other entities using code in one locale.
func (q *Queries) CountUrlCode(ctx context.Context, websiteID int64, locale, code, entityType string, entityID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUrlCode, websiteID, locale, code, entityType, entityID).Scan(&n)
	return n, err
}

const setEntityUrlsOnline = `-- name: SetEntityUrlsOnline :exec
UPDATE urls SET is_online = ?, updated_at = ? WHERE entity_type = ? AND entity_id = ?`

func (q *Queries) SetEntityUrlsOnline(ctx context.Context, online bool, updatedAt time.Time, entityType string, entityID int64) error {
	_, err := q.db.ExecContext(ctx, setEntityUrlsOnline, online, updatedAt, entityType, entityID)
	return err
}

const deleteEntityUrls = `-- name: DeleteEntityUrls :exec
DELETE FROM urls WHERE entity_type = ? AND entity_id = ?`

func (q *Queries) DeleteEntityUrls(ctx context.Context, entityType string, entityID int64) error {
	_, err := q.db.ExecContext(ctx, deleteEntityUrls, entityType, entityID)
	return err
}

// Seo

const seoColumns = `id, url_id, meta_title, meta_description, canonical_url, no_index, no_follow, og_title, og_description, og_media_id, updated_at`

func scanSeo(r rowScanner) (Seo, error) {
	var i Seo
	err := r.Scan(&i.ID, &i.UrlID, &i.MetaTitle, &i.MetaDescription, &i.CanonicalUrl, &i.NoIndex, &i.NoFollow,
		&i.OgTitle, &i.OgDescription, &i.OgMediaID, &i.UpdatedAt)
	return i, err
}

const listNoIndexUrlIDs = `-- name: ListNoIndexUrlIDs :many
SELECT s.url_id FROM seos s
JOIN urls u ON u.id = s.url_id
WHERE u.website_id = ? AND s.no_index = 1
ORDER BY s.url_id`

// ListNoIndexUrlIDs returns the urls of a website whose seo row opts out
// of indexing.
func (q *Queries) ListNoIndexUrlIDs(ctx context.Context, websiteID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listNoIndexUrlIDs, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

const getSeoByUrl = `-- name: GetSeoByUrl :one
SELECT ` + seoColumns + ` FROM seos WHERE url_id = ?`

func (q *Queries) GetSeoByUrl(ctx context.Context, urlID int64) (Seo, error) {
	return scanSeo(q.db.QueryRowContext(ctx, getSeoByUrl, urlID))
}

const ensureSeo = `-- name: EnsureSeo :exec
INSERT INTO seos (url_id, updated_at) VALUES (?, ?) ON CONFLICT (url_id) DO NOTHING`

// EnsureSeo creates an empty seo row for a url unless one exists.
func (q *Queries) EnsureSeo(ctx context.Context, urlID int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, ensureSeo, urlID, updatedAt)
	return err
}

const upsertSeo = `-- name: UpsertSeo :one
INSERT INTO seos (url_id, meta_title, meta_description, canonical_url, no_index, no_follow, og_title, og_description, og_media_id, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url_id) DO UPDATE SET
    meta_title = excluded.meta_title,
    meta_description = excluded.meta_description,
    canonical_url = excluded.canonical_url,
    no_index = excluded.no_index,
    no_follow = excluded.no_follow,
    og_title = excluded.og_title,
    og_description = excluded.og_description,
    og_media_id = excluded.og_media_id,
    updated_at = excluded.updated_at
RETURNING ` + seoColumns

type UpsertSeoParams struct {
	UrlID           int64         `json:"url_id"`
	MetaTitle       string        `json:"meta_title"`
	MetaDescription string        `json:"meta_description"`
	CanonicalUrl    string        `json:"canonical_url"`
	NoIndex         bool          `json:"no_index"`
	NoFollow        bool          `json:"no_follow"`
	OgTitle         string        `json:"og_title"`
	OgDescription   string        `json:"og_description"`
	OgMediaID       sql.NullInt64 `json:"og_media_id"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (q *Queries) UpsertSeo(ctx context.Context, arg UpsertSeoParams) (Seo, error) {
	row := q.db.QueryRowContext(ctx, upsertSeo, arg.UrlID, arg.MetaTitle, arg.MetaDescription, arg.CanonicalUrl,
		arg.NoIndex, arg.NoFollow, arg.OgTitle, arg.OgDescription, arg.OgMediaID, arg.UpdatedAt)
	return scanSeo(row)
}
