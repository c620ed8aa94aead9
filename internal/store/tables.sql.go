// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const contentTableColumns = `id, website_id, slug, name, head_row, created_at`

func scanContentTable(r rowScanner) (ContentTable, error) {
	var i ContentTable
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Name, &i.HeadRow, &i.CreatedAt)
	return i, err
}

const createContentTable = `-- name: CreateContentTable :one
INSERT INTO content_tables (website_id, slug, name, head_row, created_at) VALUES (?, ?, ?, ?, ?)
RETURNING ` + contentTableColumns

type CreateContentTableParams struct {
	WebsiteID int64     `json:"website_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	HeadRow   bool      `json:"head_row"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateContentTable(ctx context.Context, arg CreateContentTableParams) (ContentTable, error) {
	row := q.db.QueryRowContext(ctx, createContentTable, arg.WebsiteID, arg.Slug, arg.Name, arg.HeadRow, arg.CreatedAt)
	return scanContentTable(row)
}

const getContentTable = `-- name: GetContentTable :one
SELECT ` + contentTableColumns + ` FROM content_tables WHERE id = ?`

func (q *Queries) GetContentTable(ctx context.Context, id int64) (ContentTable, error) {
	return scanContentTable(q.db.QueryRowContext(ctx, getContentTable, id))
}

const listContentTables = `-- name: ListContentTables :many
SELECT ` + contentTableColumns + ` FROM content_tables WHERE website_id = ? ORDER BY name, id`

func (q *Queries) ListContentTables(ctx context.Context, websiteID int64) ([]ContentTable, error) {
	rows, err := q.db.QueryContext(ctx, listContentTables, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanContentTable)
}

const updateContentTable = `-- name: UpdateContentTable :one
UPDATE content_tables SET slug = ?, name = ?, head_row = ? WHERE id = ?
RETURNING ` + contentTableColumns

func (q *Queries) UpdateContentTable(ctx context.Context, id int64, slug, name string, headRow bool) (ContentTable, error) {
	return scanContentTable(q.db.QueryRowContext(ctx, updateContentTable, slug, name, headRow, id))
}

const deleteContentTable = `-- name: DeleteContentTable :exec
DELETE FROM content_tables WHERE id = ?`

func (q *Queries) DeleteContentTable(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteContentTable, id)
	return err
}

// Table cols

const createTableCol = `-- name: CreateTableCol :one
INSERT INTO table_cols (table_id, position) VALUES (?, ?) RETURNING id, table_id, position`

func (q *Queries) CreateTableCol(ctx context.Context, tableID, position int64) (TableCol, error) {
	var i TableCol
	err := q.db.QueryRowContext(ctx, createTableCol, tableID, position).Scan(&i.ID, &i.TableID, &i.Position)
	return i, err
}

const getTableCol = `-- name: GetTableCol :one
SELECT id, table_id, position FROM table_cols WHERE id = ?`

func (q *Queries) GetTableCol(ctx context.Context, id int64) (TableCol, error) {
	var i TableCol
	err := q.db.QueryRowContext(ctx, getTableCol, id).Scan(&i.ID, &i.TableID, &i.Position)
	return i, err
}

const listTableCols = `-- name: ListTableCols :many
SELECT id, table_id, position FROM table_cols WHERE table_id = ? ORDER BY position, id`

func (q *Queries) ListTableCols(ctx context.Context, tableID int64) ([]TableCol, error) {
	rows, err := q.db.QueryContext(ctx, listTableCols, tableID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r rowScanner) (TableCol, error) {
		var i TableCol
		err := r.Scan(&i.ID, &i.TableID, &i.Position)
		return i, err
	})
}

const deleteTableCol = `-- name: DeleteTableCol :exec
DELETE FROM table_cols WHERE id = ?`

func (q *Queries) DeleteTableCol(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteTableCol, id)
	return err
}

// Table cells

const tableCellColumns = `id, col_id, row_position, locale, content`

func scanTableCell(r rowScanner) (TableCell, error) {
	var i TableCell
	err := r.Scan(&i.ID, &i.ColID, &i.RowPosition, &i.Locale, &i.Content)
	return i, err
}

const createTableCell = `-- name: CreateTableCell :one
INSERT INTO table_cells (col_id, row_position, locale, content) VALUES (?, ?, ?, ?)
RETURNING ` + tableCellColumns

type CreateTableCellParams struct {
	ColID       int64  `json:"col_id"`
	RowPosition int64  `json:"row_position"`
	Locale      string `json:"locale"`
	Content     string `json:"content"`
}

func (q *Queries) CreateTableCell(ctx context.Context, arg CreateTableCellParams) (TableCell, error) {
	return scanTableCell(q.db.QueryRowContext(ctx, createTableCell, arg.ColID, arg.RowPosition, arg.Locale, arg.Content))
}

const getTableCell = `-- name: GetTableCell :one
SELECT ` + tableCellColumns + ` FROM table_cells WHERE id = ?`

func (q *Queries) GetTableCell(ctx context.Context, id int64) (TableCell, error) {
	return scanTableCell(q.db.QueryRowContext(ctx, getTableCell, id))
}

const listTableCells = `-- name: ListTableCells :many
SELECT c.id, c.col_id, c.row_position, c.locale, c.content
FROM table_cells c
JOIN table_cols col ON col.id = c.col_id
WHERE col.table_id = ?
ORDER BY c.row_position, col.position, c.locale, c.id`

func (q *Queries) ListTableCells(ctx context.Context, tableID int64) ([]TableCell, error) {
	rows, err := q.db.QueryContext(ctx, listTableCells, tableID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTableCell)
}

const listTableRows = `-- name: ListTableRows :many
SELECT DISTINCT c.row_position
FROM table_cells c
JOIN table_cols col ON col.id = c.col_id
WHERE col.table_id = ?
ORDER BY c.row_position`

// ListTableRows returns the distinct row positions present in a table.
func (q *Queries) ListTableRows(ctx context.Context, tableID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listTableRows, tableID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

const fillTableCells = `-- name: FillTableCells :execrows
INSERT INTO table_cells (col_id, row_position, locale, content)
SELECT col.id, r.row_position, ?, ''
FROM table_cols col
JOIN content_tables t ON t.id = col.table_id
JOIN (
    SELECT DISTINCT tc.table_id, c.row_position
    FROM table_cells c
    JOIN table_cols tc ON tc.id = c.col_id
) r ON r.table_id = col.table_id
WHERE t.website_id = ?
  AND NOT EXISTS (
    SELECT 1 FROM table_cells x
    WHERE x.col_id = col.id AND x.row_position = r.row_position AND x.locale = ?
  )`

// FillTableCells adds the missing empty cells of locale to every table of a
// website and returns how many were created.
func (q *Queries) FillTableCells(ctx context.Context, websiteID int64, locale string) (int64, error) {
	result, err := q.db.ExecContext(ctx, fillTableCells, locale, websiteID, locale)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateTableCell = `-- name: UpdateTableCell :one
UPDATE table_cells SET content = ? WHERE id = ?
RETURNING ` + tableCellColumns

func (q *Queries) UpdateTableCell(ctx context.Context, id int64, content string) (TableCell, error) {
	return scanTableCell(q.db.QueryRowContext(ctx, updateTableCell, content, id))
}

const deleteTableRow = `-- name: DeleteTableRow :exec
DELETE FROM table_cells
WHERE row_position = ? AND col_id IN (SELECT id FROM table_cols WHERE table_id = ?)`

func (q *Queries) DeleteTableRow(ctx context.Context, tableID, rowPosition int64) error {
	_, err := q.db.ExecContext(ctx, deleteTableRow, rowPosition, tableID)
	return err
}

const setTableRowPosition = `-- name: SetTableRowPosition :exec
UPDATE table_cells SET row_position = ?
WHERE row_position = ? AND col_id IN (SELECT id FROM table_cols WHERE table_id = ?)`

func (q *Queries) SetTableRowPosition(ctx context.Context, tableID, from, to int64) error {
	_, err := q.db.ExecContext(ctx, setTableRowPosition, to, from, tableID)
	return err
}
