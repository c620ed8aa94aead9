// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const menuColumns = `id, website_id, slug, name, max_level, created_at, updated_at`

func scanMenu(r rowScanner) (Menu, error) {
	var i Menu
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Name, &i.MaxLevel, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createMenu = `-- name: CreateMenu :one
INSERT INTO menus (website_id, slug, name, max_level, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + menuColumns

type CreateMenuParams struct {
	WebsiteID int64     `json:"website_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	MaxLevel  int64     `json:"max_level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx, createMenu, arg.WebsiteID, arg.Slug, arg.Name, arg.MaxLevel, arg.CreatedAt, arg.UpdatedAt)
	return scanMenu(row)
}

const getMenu = `-- name: GetMenu :one
SELECT ` + menuColumns + ` FROM menus WHERE id = ?`

func (q *Queries) GetMenu(ctx context.Context, id int64) (Menu, error) {
	return scanMenu(q.db.QueryRowContext(ctx, getMenu, id))
}

const getMenuBySlug = `-- name: GetMenuBySlug :one
SELECT ` + menuColumns + ` FROM menus WHERE website_id = ? AND slug = ?`

func (q *Queries) GetMenuBySlug(ctx context.Context, websiteID int64, slug string) (Menu, error) {
	return scanMenu(q.db.QueryRowContext(ctx, getMenuBySlug, websiteID, slug))
}

const listMenus = `-- name: ListMenus :many
SELECT ` + menuColumns + ` FROM menus WHERE website_id = ? ORDER BY name, id`

func (q *Queries) ListMenus(ctx context.Context, websiteID int64) ([]Menu, error) {
	rows, err := q.db.QueryContext(ctx, listMenus, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMenu)
}

const updateMenu = `-- name: UpdateMenu :one
UPDATE menus SET slug = ?, name = ?, max_level = ?, updated_at = ? WHERE id = ?
RETURNING ` + menuColumns

type UpdateMenuParams struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	MaxLevel  int64     `json:"max_level"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) (Menu, error) {
	return scanMenu(q.db.QueryRowContext(ctx, updateMenu, arg.Slug, arg.Name, arg.MaxLevel, arg.UpdatedAt, arg.ID))
}

const deleteMenu = `-- name: DeleteMenu :exec
DELETE FROM menus WHERE id = ?`

func (q *Queries) DeleteMenu(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteMenu, id)
	return err
}

// Links

const linkColumns = `id, menu_id, parent_id, locale, title, target_page_id, target_url, target_style, position, level, is_online, created_at, updated_at`

func scanLink(r rowScanner) (Link, error) {
	var i Link
	err := r.Scan(&i.ID, &i.MenuID, &i.ParentID, &i.Locale, &i.Title, &i.TargetPageID, &i.TargetUrl, &i.TargetStyle,
		&i.Position, &i.Level, &i.IsOnline, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createLink = `-- name: CreateLink :one
INSERT INTO links (menu_id, parent_id, locale, title, target_page_id, target_url, target_style, position, level, is_online, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + linkColumns

type CreateLinkParams struct {
	MenuID       int64         `json:"menu_id"`
	ParentID     sql.NullInt64 `json:"parent_id"`
	Locale       string        `json:"locale"`
	Title        string        `json:"title"`
	TargetPageID sql.NullInt64 `json:"target_page_id"`
	TargetUrl    string        `json:"target_url"`
	TargetStyle  string        `json:"target_style"`
	Position     int64         `json:"position"`
	Level        int64         `json:"level"`
	IsOnline     bool          `json:"is_online"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (q *Queries) CreateLink(ctx context.Context, arg CreateLinkParams) (Link, error) {
	row := q.db.QueryRowContext(ctx, createLink, arg.MenuID, arg.ParentID, arg.Locale, arg.Title, arg.TargetPageID,
		arg.TargetUrl, arg.TargetStyle, arg.Position, arg.Level, arg.IsOnline, arg.CreatedAt, arg.UpdatedAt)
	return scanLink(row)
}

const getLink = `-- name: GetLink :one
SELECT ` + linkColumns + ` FROM links WHERE id = ?`

func (q *Queries) GetLink(ctx context.Context, id int64) (Link, error) {
	return scanLink(q.db.QueryRowContext(ctx, getLink, id))
}

const listLinksByMenu = `-- name: ListLinksByMenu :many
SELECT ` + linkColumns + ` FROM links WHERE menu_id = ? AND locale = ? ORDER BY level, position, id`

func (q *Queries) ListLinksByMenu(ctx context.Context, menuID int64, locale string) ([]Link, error) {
	rows, err := q.db.QueryContext(ctx, listLinksByMenu, menuID, locale)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLink)
}

const listLinkChildren = `-- name: ListLinkChildren :many
SELECT ` + linkColumns + ` FROM links WHERE parent_id = ? ORDER BY position, id`

func (q *Queries) ListLinkChildren(ctx context.Context, parentID int64) ([]Link, error) {
	rows, err := q.db.QueryContext(ctx, listLinkChildren, parentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLink)
}

const updateLink = `-- name: UpdateLink :one
UPDATE links SET parent_id = ?, locale = ?, title = ?, target_page_id = ?, target_url = ?, target_style = ?,
    level = ?, is_online = ?, updated_at = ?
WHERE id = ?
RETURNING ` + linkColumns

type UpdateLinkParams struct {
	ParentID     sql.NullInt64 `json:"parent_id"`
	Locale       string        `json:"locale"`
	Title        string        `json:"title"`
	TargetPageID sql.NullInt64 `json:"target_page_id"`
	TargetUrl    string        `json:"target_url"`
	TargetStyle  string        `json:"target_style"`
	Level        int64         `json:"level"`
	IsOnline     bool          `json:"is_online"`
	UpdatedAt    time.Time     `json:"updated_at"`
	ID           int64         `json:"id"`
}

func (q *Queries) UpdateLink(ctx context.Context, arg UpdateLinkParams) (Link, error) {
	row := q.db.QueryRowContext(ctx, updateLink, arg.ParentID, arg.Locale, arg.Title, arg.TargetPageID, arg.TargetUrl,
		arg.TargetStyle, arg.Level, arg.IsOnline, arg.UpdatedAt, arg.ID)
	return scanLink(row)
}

const setLinkParent = `-- name: SetLinkParent :exec
UPDATE links SET parent_id = ?, level = ?, position = ? WHERE id = ?`

func (q *Queries) SetLinkParent(ctx context.Context, id int64, parentID sql.NullInt64, level, position int64) error {
	_, err := q.db.ExecContext(ctx, setLinkParent, parentID, level, position, id)
	return err
}

const maxLinkLevel = `-- name: MaxLinkLevel :one
SELECT COALESCE(MAX(level), 0) FROM links WHERE menu_id = ?`

// MaxLinkLevel returns the deepest link level of a menu, 0 when empty.
func (q *Queries) MaxLinkLevel(ctx context.Context, menuID int64) (int64, error) {
	var level int64
	err := q.db.QueryRowContext(ctx, maxLinkLevel, menuID).Scan(&level)
	return level, err
}

const deleteLink = `-- name: DeleteLink :exec
DELETE FROM links WHERE id = ?`

func (q *Queries) DeleteLink(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteLink, id)
	return err
}
