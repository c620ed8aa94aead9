// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
)

const createLayout = `-- name: CreateLayout :one
INSERT INTO layouts (page_id) VALUES (?) RETURNING id, page_id`

func (q *Queries) CreateLayout(ctx context.Context, pageID int64) (Layout, error) {
	var i Layout
	err := q.db.QueryRowContext(ctx, createLayout, pageID).Scan(&i.ID, &i.PageID)
	return i, err
}

const getLayout = `-- name: GetLayout :one
SELECT id, page_id FROM layouts WHERE id = ?`

func (q *Queries) GetLayout(ctx context.Context, id int64) (Layout, error) {
	var i Layout
	err := q.db.QueryRowContext(ctx, getLayout, id).Scan(&i.ID, &i.PageID)
	return i, err
}

const getLayoutByPage = `-- name: GetLayoutByPage :one
SELECT id, page_id FROM layouts WHERE page_id = ?`

func (q *Queries) GetLayoutByPage(ctx context.Context, pageID int64) (Layout, error) {
	var i Layout
	err := q.db.QueryRowContext(ctx, getLayoutByPage, pageID).Scan(&i.ID, &i.PageID)
	return i, err
}

// Zones

const zoneColumns = `id, layout_id, position, fullsize, css_class`

func scanZone(r rowScanner) (Zone, error) {
	var i Zone
	err := r.Scan(&i.ID, &i.LayoutID, &i.Position, &i.Fullsize, &i.CssClass)
	return i, err
}

const createZone = `-- name: CreateZone :one
INSERT INTO zones (layout_id, position, fullsize, css_class) VALUES (?, ?, ?, ?)
RETURNING ` + zoneColumns

type CreateZoneParams struct {
	LayoutID int64  `json:"layout_id"`
	Position int64  `json:"position"`
	Fullsize bool   `json:"fullsize"`
	CssClass string `json:"css_class"`
}

func (q *Queries) CreateZone(ctx context.Context, arg CreateZoneParams) (Zone, error) {
	return scanZone(q.db.QueryRowContext(ctx, createZone, arg.LayoutID, arg.Position, arg.Fullsize, arg.CssClass))
}

const getZone = `-- name: GetZone :one
SELECT ` + zoneColumns + ` FROM zones WHERE id = ?`

func (q *Queries) GetZone(ctx context.Context, id int64) (Zone, error) {
	return scanZone(q.db.QueryRowContext(ctx, getZone, id))
}

const listZones = `-- name: ListZones :many
SELECT ` + zoneColumns + ` FROM zones WHERE layout_id = ? ORDER BY position, id`

func (q *Queries) ListZones(ctx context.Context, layoutID int64) ([]Zone, error) {
	rows, err := q.db.QueryContext(ctx, listZones, layoutID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanZone)
}

const updateZone = `-- name: UpdateZone :one
UPDATE zones SET fullsize = ?, css_class = ? WHERE id = ?
RETURNING ` + zoneColumns

type UpdateZoneParams struct {
	Fullsize bool   `json:"fullsize"`
	CssClass string `json:"css_class"`
	ID       int64  `json:"id"`
}

func (q *Queries) UpdateZone(ctx context.Context, arg UpdateZoneParams) (Zone, error) {
	return scanZone(q.db.QueryRowContext(ctx, updateZone, arg.Fullsize, arg.CssClass, arg.ID))
}

const deleteZone = `-- name: DeleteZone :exec
DELETE FROM zones WHERE id = ?`

func (q *Queries) DeleteZone(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteZone, id)
	return err
}

// Cols

const colColumns = `id, zone_id, position, size`

func scanCol(r rowScanner) (Col, error) {
	var i Col
	err := r.Scan(&i.ID, &i.ZoneID, &i.Position, &i.Size)
	return i, err
}

const createCol = `-- name: CreateCol :one
INSERT INTO cols (zone_id, position, size) VALUES (?, ?, ?)
RETURNING ` + colColumns

type CreateColParams struct {
	ZoneID   int64 `json:"zone_id"`
	Position int64 `json:"position"`
	Size     int64 `json:"size"`
}

func (q *Queries) CreateCol(ctx context.Context, arg CreateColParams) (Col, error) {
	return scanCol(q.db.QueryRowContext(ctx, createCol, arg.ZoneID, arg.Position, arg.Size))
}

const getCol = `-- name: GetCol :one
SELECT ` + colColumns + ` FROM cols WHERE id = ?`

func (q *Queries) GetCol(ctx context.Context, id int64) (Col, error) {
	return scanCol(q.db.QueryRowContext(ctx, getCol, id))
}

const listCols = `-- name: ListCols :many
SELECT ` + colColumns + ` FROM cols WHERE zone_id = ? ORDER BY position, id`

func (q *Queries) ListCols(ctx context.Context, zoneID int64) ([]Col, error) {
	rows, err := q.db.QueryContext(ctx, listCols, zoneID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCol)
}

const updateCol = `-- name: UpdateCol :one
UPDATE cols SET size = ? WHERE id = ?
RETURNING ` + colColumns

func (q *Queries) UpdateCol(ctx context.Context, id, size int64) (Col, error) {
	return scanCol(q.db.QueryRowContext(ctx, updateCol, size, id))
}

const deleteCol = `-- name: DeleteCol :exec
DELETE FROM cols WHERE id = ?`

func (q *Queries) DeleteCol(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCol, id)
	return err
}

// Blocks

const blockColumns = `id, col_id, position, block_type, content, settings`

func scanBlock(r rowScanner) (Block, error) {
	var i Block
	err := r.Scan(&i.ID, &i.ColID, &i.Position, &i.BlockType, &i.Content, &i.Settings)
	return i, err
}

const createBlock = `-- name: CreateBlock :one
INSERT INTO blocks (col_id, position, block_type, content, settings) VALUES (?, ?, ?, ?, ?)
RETURNING ` + blockColumns

type CreateBlockParams struct {
	ColID     int64  `json:"col_id"`
	Position  int64  `json:"position"`
	BlockType string `json:"block_type"`
	Content   string `json:"content"`
	Settings  string `json:"settings"`
}

func (q *Queries) CreateBlock(ctx context.Context, arg CreateBlockParams) (Block, error) {
	row := q.db.QueryRowContext(ctx, createBlock, arg.ColID, arg.Position, arg.BlockType, arg.Content, arg.Settings)
	return scanBlock(row)
}

const getBlock = `-- name: GetBlock :one
SELECT ` + blockColumns + ` FROM blocks WHERE id = ?`

func (q *Queries) GetBlock(ctx context.Context, id int64) (Block, error) {
	return scanBlock(q.db.QueryRowContext(ctx, getBlock, id))
}

const listBlocks = `-- name: ListBlocks :many
SELECT ` + blockColumns + ` FROM blocks WHERE col_id = ? ORDER BY position, id`

func (q *Queries) ListBlocks(ctx context.Context, colID int64) ([]Block, error) {
	rows, err := q.db.QueryContext(ctx, listBlocks, colID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBlock)
}

const updateBlock = `-- name: UpdateBlock :one
UPDATE blocks SET block_type = ?, content = ?, settings = ? WHERE id = ?
RETURNING ` + blockColumns

type UpdateBlockParams struct {
	BlockType string `json:"block_type"`
	Content   string `json:"content"`
	Settings  string `json:"settings"`
	ID        int64  `json:"id"`
}

func (q *Queries) UpdateBlock(ctx context.Context, arg UpdateBlockParams) (Block, error) {
	return scanBlock(q.db.QueryRowContext(ctx, updateBlock, arg.BlockType, arg.Content, arg.Settings, arg.ID))
}

const deleteBlock = `-- name: DeleteBlock :exec
DELETE FROM blocks WHERE id = ?`

func (q *Queries) DeleteBlock(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteBlock, id)
	return err
}
