// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const websiteColumns = `id, name, slug, site_url, is_default, created_at, updated_at`

func scanWebsite(r rowScanner) (Website, error) {
	var i Website
	err := r.Scan(&i.ID, &i.Name, &i.Slug, &i.SiteUrl, &i.IsDefault, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createWebsite = `-- name: CreateWebsite :one
INSERT INTO websites (name, slug, site_url, is_default, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + websiteColumns

type CreateWebsiteParams struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SiteUrl   string    `json:"site_url"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateWebsite(ctx context.Context, arg CreateWebsiteParams) (Website, error) {
	row := q.db.QueryRowContext(ctx, createWebsite, arg.Name, arg.Slug, arg.SiteUrl, arg.IsDefault, arg.CreatedAt, arg.UpdatedAt)
	return scanWebsite(row)
}

const getWebsite = `-- name: GetWebsite :one
SELECT ` + websiteColumns + ` FROM websites WHERE id = ?`

func (q *Queries) GetWebsite(ctx context.Context, id int64) (Website, error) {
	return scanWebsite(q.db.QueryRowContext(ctx, getWebsite, id))
}

const getWebsiteBySlug = `-- name: GetWebsiteBySlug :one
SELECT ` + websiteColumns + ` FROM websites WHERE slug = ?`

func (q *Queries) GetWebsiteBySlug(ctx context.Context, slug string) (Website, error) {
	return scanWebsite(q.db.QueryRowContext(ctx, getWebsiteBySlug, slug))
}

const getDefaultWebsite = `-- name: GetDefaultWebsite :one
SELECT ` + websiteColumns + ` FROM websites ORDER BY is_default DESC, id LIMIT 1`

// GetDefaultWebsite returns the flagged default website, or the oldest one.
func (q *Queries) GetDefaultWebsite(ctx context.Context) (Website, error) {
	return scanWebsite(q.db.QueryRowContext(ctx, getDefaultWebsite))
}

const listWebsites = `-- name: ListWebsites :many
SELECT ` + websiteColumns + ` FROM websites ORDER BY id`

func (q *Queries) ListWebsites(ctx context.Context) ([]Website, error) {
	rows, err := q.db.QueryContext(ctx, listWebsites)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWebsite)
}

const updateWebsite = `-- name: UpdateWebsite :one
UPDATE websites SET name = ?, slug = ?, site_url = ?, is_default = ?, updated_at = ?
WHERE id = ?
RETURNING ` + websiteColumns

type UpdateWebsiteParams struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SiteUrl   string    `json:"site_url"`
	IsDefault bool      `json:"is_default"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateWebsite(ctx context.Context, arg UpdateWebsiteParams) (Website, error) {
	row := q.db.QueryRowContext(ctx, updateWebsite, arg.Name, arg.Slug, arg.SiteUrl, arg.IsDefault, arg.UpdatedAt, arg.ID)
	return scanWebsite(row)
}

const clearDefaultWebsite = `-- name: ClearDefaultWebsite :exec
UPDATE websites SET is_default = 0 WHERE id != ?`

func (q *Queries) ClearDefaultWebsite(ctx context.Context, exceptID int64) error {
	_, err := q.db.ExecContext(ctx, clearDefaultWebsite, exceptID)
	return err
}

const deleteWebsite = `-- name: DeleteWebsite :exec
DELETE FROM websites WHERE id = ?`

func (q *Queries) DeleteWebsite(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteWebsite, id)
	return err
}

const countWebsiteSlug = `-- name: CountWebsiteSlug :one
SELECT COUNT(*) FROM websites WHERE slug = ? AND id != ?`

func (q *Queries) CountWebsiteSlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countWebsiteSlug, slug, excludeID).Scan(&n)
	return n, err
}

// Domains

const domainColumns = `id, website_id, host, locale, is_default, created_at`

func scanDomain(r rowScanner) (Domain, error) {
	var i Domain
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Host, &i.Locale, &i.IsDefault, &i.CreatedAt)
	return i, err
}

const createDomain = `-- name: CreateDomain :one
INSERT INTO domains (website_id, host, locale, is_default, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + domainColumns

type CreateDomainParams struct {
	WebsiteID int64     `json:"website_id"`
	Host      string    `json:"host"`
	Locale    string    `json:"locale"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateDomain(ctx context.Context, arg CreateDomainParams) (Domain, error) {
	row := q.db.QueryRowContext(ctx, createDomain, arg.WebsiteID, arg.Host, arg.Locale, arg.IsDefault, arg.CreatedAt)
	return scanDomain(row)
}

const getDomain = `-- name: GetDomain :one
SELECT ` + domainColumns + ` FROM domains WHERE id = ?`

func (q *Queries) GetDomain(ctx context.Context, id int64) (Domain, error) {
	return scanDomain(q.db.QueryRowContext(ctx, getDomain, id))
}

const getDomainByHost = `-- name: GetDomainByHost :one
SELECT ` + domainColumns + ` FROM domains WHERE host = ?`

func (q *Queries) GetDomainByHost(ctx context.Context, host string) (Domain, error) {
	return scanDomain(q.db.QueryRowContext(ctx, getDomainByHost, host))
}

const listDomains = `-- name: ListDomains :many
SELECT ` + domainColumns + ` FROM domains ORDER BY website_id, is_default DESC, id`

func (q *Queries) ListDomains(ctx context.Context) ([]Domain, error) {
	rows, err := q.db.QueryContext(ctx, listDomains)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDomain)
}

const listDomainsByWebsite = `-- name: ListDomainsByWebsite :many
SELECT ` + domainColumns + ` FROM domains WHERE website_id = ? ORDER BY is_default DESC, id`

func (q *Queries) ListDomainsByWebsite(ctx context.Context, websiteID int64) ([]Domain, error) {
	rows, err := q.db.QueryContext(ctx, listDomainsByWebsite, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDomain)
}

const updateDomain = `-- name: UpdateDomain :one
UPDATE domains SET host = ?, locale = ?, is_default = ? WHERE id = ?
RETURNING ` + domainColumns

type UpdateDomainParams struct {
	Host      string `json:"host"`
	Locale    string `json:"locale"`
	IsDefault bool   `json:"is_default"`
	ID        int64  `json:"id"`
}

func (q *Queries) UpdateDomain(ctx context.Context, arg UpdateDomainParams) (Domain, error) {
	return scanDomain(q.db.QueryRowContext(ctx, updateDomain, arg.Host, arg.Locale, arg.IsDefault, arg.ID))
}

const clearDefaultDomain = `-- name: ClearDefaultDomain :exec
UPDATE domains SET is_default = 0 WHERE website_id = ? AND id != ?`

func (q *Queries) ClearDefaultDomain(ctx context.Context, websiteID, exceptID int64) error {
	_, err := q.db.ExecContext(ctx, clearDefaultDomain, websiteID, exceptID)
	return err
}

const deleteDomain = `-- name: DeleteDomain :exec
DELETE FROM domains WHERE id = ?`

func (q *Queries) DeleteDomain(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteDomain, id)
	return err
}

// Languages

const languageColumns = `id, website_id, code, name, is_default, is_active, position, created_at`

func scanLanguage(r rowScanner) (Language, error) {
	var i Language
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Code, &i.Name, &i.IsDefault, &i.IsActive, &i.Position, &i.CreatedAt)
	return i, err
}

const createLanguage = `-- name: CreateLanguage :one
INSERT INTO languages (website_id, code, name, is_default, is_active, position, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + languageColumns

type CreateLanguageParams struct {
	WebsiteID int64     `json:"website_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	IsActive  bool      `json:"is_active"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (Language, error) {
	row := q.db.QueryRowContext(ctx, createLanguage, arg.WebsiteID, arg.Code, arg.Name, arg.IsDefault, arg.IsActive, arg.Position, arg.CreatedAt)
	return scanLanguage(row)
}

const getLanguage = `-- name: GetLanguage :one
SELECT ` + languageColumns + ` FROM languages WHERE id = ?`

func (q *Queries) GetLanguage(ctx context.Context, id int64) (Language, error) {
	return scanLanguage(q.db.QueryRowContext(ctx, getLanguage, id))
}

const listLanguagesByWebsite = `-- name: ListLanguagesByWebsite :many
SELECT ` + languageColumns + ` FROM languages WHERE website_id = ? ORDER BY position, id`

func (q *Queries) ListLanguagesByWebsite(ctx context.Context, websiteID int64) ([]Language, error) {
	rows, err := q.db.QueryContext(ctx, listLanguagesByWebsite, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLanguage)
}

const listActiveLanguages = `-- name: ListActiveLanguages :many
SELECT ` + languageColumns + ` FROM languages WHERE website_id = ? AND is_active = 1 ORDER BY position, id`

func (q *Queries) ListActiveLanguages(ctx context.Context, websiteID int64) ([]Language, error) {
	rows, err := q.db.QueryContext(ctx, listActiveLanguages, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLanguage)
}

const updateLanguage = `-- name: UpdateLanguage :one
UPDATE languages SET code = ?, name = ?, is_default = ?, is_active = ?, position = ? WHERE id = ?
RETURNING ` + languageColumns

type UpdateLanguageParams struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	IsActive  bool   `json:"is_active"`
	Position  int64  `json:"position"`
	ID        int64  `json:"id"`
}

func (q *Queries) UpdateLanguage(ctx context.Context, arg UpdateLanguageParams) (Language, error) {
	row := q.db.QueryRowContext(ctx, updateLanguage, arg.Code, arg.Name, arg.IsDefault, arg.IsActive, arg.Position, arg.ID)
	return scanLanguage(row)
}

const clearDefaultLanguage = `-- name: ClearDefaultLanguage :exec
UPDATE languages SET is_default = 0 WHERE website_id = ? AND id != ?`

func (q *Queries) ClearDefaultLanguage(ctx context.Context, websiteID, exceptID int64) error {
	_, err := q.db.ExecContext(ctx, clearDefaultLanguage, websiteID, exceptID)
	return err
}

const deleteLanguage = `-- name: DeleteLanguage :exec
DELETE FROM languages WHERE id = ?`

func (q *Queries) DeleteLanguage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteLanguage, id)
	return err
}

// Colors

const colorColumns = `id, website_id, name, slug, hex, category, is_active, position`

func scanColor(r rowScanner) (Color, error) {
	var i Color
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Name, &i.Slug, &i.Hex, &i.Category, &i.IsActive, &i.Position)
	return i, err
}

const createColor = `-- name: CreateColor :one
INSERT INTO colors (website_id, name, slug, hex, category, is_active, position)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + colorColumns

type CreateColorParams struct {
	WebsiteID int64  `json:"website_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Hex       string `json:"hex"`
	Category  string `json:"category"`
	IsActive  bool   `json:"is_active"`
	Position  int64  `json:"position"`
}

func (q *Queries) CreateColor(ctx context.Context, arg CreateColorParams) (Color, error) {
	row := q.db.QueryRowContext(ctx, createColor, arg.WebsiteID, arg.Name, arg.Slug, arg.Hex, arg.Category, arg.IsActive, arg.Position)
	return scanColor(row)
}

const getColor = `-- name: GetColor :one
SELECT ` + colorColumns + ` FROM colors WHERE id = ?`

func (q *Queries) GetColor(ctx context.Context, id int64) (Color, error) {
	return scanColor(q.db.QueryRowContext(ctx, getColor, id))
}

const listColors = `-- name: ListColors :many
SELECT ` + colorColumns + ` FROM colors WHERE website_id = ? ORDER BY position, id`

func (q *Queries) ListColors(ctx context.Context, websiteID int64) ([]Color, error) {
	rows, err := q.db.QueryContext(ctx, listColors, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanColor)
}

const listActiveColorsByCategory = `-- name: ListActiveColorsByCategory :many
SELECT ` + colorColumns + ` FROM colors
WHERE website_id = ? AND is_active = 1 AND category = ?
ORDER BY position, id`

func (q *Queries) ListActiveColorsByCategory(ctx context.Context, websiteID int64, category string) ([]Color, error) {
	rows, err := q.db.QueryContext(ctx, listActiveColorsByCategory, websiteID, category)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanColor)
}

const updateColor = `-- name: UpdateColor :one
UPDATE colors SET name = ?, slug = ?, hex = ?, category = ?, is_active = ? WHERE id = ?
RETURNING ` + colorColumns

type UpdateColorParams struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Hex      string `json:"hex"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
	ID       int64  `json:"id"`
}

func (q *Queries) UpdateColor(ctx context.Context, arg UpdateColorParams) (Color, error) {
	row := q.db.QueryRowContext(ctx, updateColor, arg.Name, arg.Slug, arg.Hex, arg.Category, arg.IsActive, arg.ID)
	return scanColor(row)
}

const deleteColor = `-- name: DeleteColor :exec
DELETE FROM colors WHERE id = ?`

func (q *Queries) DeleteColor(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteColor, id)
	return err
}
