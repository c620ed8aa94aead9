// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"slices"
	"strings"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
)

// TableRecord is the subject of table hooks. Cols and Rows size the grid
// built on create.
type TableRecord struct {
	store.ContentTable
	Cols int
	Rows int
}

// TableManager handles content tables. A table is a grid of cells, one
// per (col, row, locale); rows exist through their cells.
type TableManager struct{ s *Service }

func (m *TableManager) EntityType() string { return model.EntityTable }

func (m *TableManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityTable, ev, "table.validate", 10, func(ctx context.Context, q *store.Queries, t *TableRecord) error {
			t.Name = strings.TrimSpace(t.Name)
			if t.Name == "" {
				return Invalid("name", "is required")
			}
			if t.Cols < 0 || t.Rows < 0 || (t.Rows > 0 && t.Cols == 0) {
				return Invalid("cols", "a table with rows needs at least one column")
			}
			slug, err := uniqueSlug(ctx, q, store.TableSlugs, t.WebsiteID, t.Slug, t.Name, t.ID)
			t.Slug = slug
			return err
		})
	}
	On(r, model.EntityTable, PostPersist, "table.grid", 10, func(ctx context.Context, q *store.Queries, t *TableRecord) error {
		for range t.Cols {
			if _, err := m.addCol(ctx, q, t.ContentTable, 0); err != nil {
				return err
			}
		}
		for range t.Rows {
			if _, err := m.addRow(ctx, q, t.ContentTable, 0); err != nil {
				return err
			}
		}
		return nil
	})
}

// Create inserts a table with an empty Cols x Rows grid.
func (m *TableManager) Create(ctx context.Context, rec TableRecord) (store.ContentTable, error) {
	err := m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		return rec.WebsiteID, m.s.persist(ctx, q, model.EntityTable, &rec, func() error {
			t, err := q.CreateContentTable(ctx, store.CreateContentTableParams{
				WebsiteID: rec.WebsiteID, Slug: rec.Slug, Name: rec.Name, HeadRow: rec.HeadRow,
				CreatedAt: m.s.nowUTC(),
			})
			rec.ContentTable = t
			return err
		})
	})
	return rec.ContentTable, err
}

// Update saves the table header settings.
func (m *TableManager) Update(ctx context.Context, t store.ContentTable) (store.ContentTable, error) {
	rec := TableRecord{ContentTable: t}
	err := m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		current, err := q.GetContentTable(ctx, t.ID)
		if err != nil {
			return 0, err
		}
		rec.WebsiteID = current.WebsiteID
		return rec.WebsiteID, m.s.update(ctx, q, model.EntityTable, &rec, func() error {
			saved, err := q.UpdateContentTable(ctx, rec.ID, rec.Slug, rec.Name, rec.HeadRow)
			rec.ContentTable = saved
			return err
		})
	})
	return rec.ContentTable, err
}

// Delete removes a table with its grid.
func (m *TableManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		t, err := q.GetContentTable(ctx, id)
		if err != nil {
			return 0, err
		}
		rec := TableRecord{ContentTable: t}
		return t.WebsiteID, m.s.remove(ctx, q, model.EntityTable, &rec, func() error {
			return q.DeleteContentTable(ctx, id)
		})
	})
}

// AddCol adds a column at target (zero appends) with one empty cell per
// existing row and locale.
func (m *TableManager) AddCol(ctx context.Context, tableID, target int64) (store.TableCol, error) {
	var col store.TableCol
	err := m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		t, err := q.GetContentTable(ctx, tableID)
		if err != nil {
			return 0, err
		}
		col, err = m.addCol(ctx, q, t, target)
		return t.WebsiteID, err
	})
	return col, err
}

func (m *TableManager) addCol(ctx context.Context, q *store.Queries, t store.ContentTable, target int64) (store.TableCol, error) {
	pos, err := position.Next(ctx, q, store.TableColFamily, t.ID)
	if err != nil {
		return store.TableCol{}, err
	}
	col, err := q.CreateTableCol(ctx, t.ID, pos)
	if err != nil {
		return col, err
	}
	rows, err := q.ListTableRows(ctx, t.ID)
	if err != nil {
		return col, err
	}
	codes, _, err := locales(ctx, q, t.WebsiteID)
	if err != nil {
		return col, err
	}
	for _, row := range rows {
		for _, locale := range codes {
			if _, err := q.CreateTableCell(ctx, store.CreateTableCellParams{ColID: col.ID, RowPosition: row, Locale: locale}); err != nil {
				return col, err
			}
		}
	}
	ids, err := position.Insert(ctx, q, store.TableColFamily, col.ID, target, t.ID)
	if err != nil {
		return col, err
	}
	col.Position = int64(slices.Index(ids, col.ID) + 1)
	return col, nil
}

// RemoveCol deletes a column with its cells.
func (m *TableManager) RemoveCol(ctx context.Context, colID int64) error {
	return m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		col, err := q.GetTableCol(ctx, colID)
		if err != nil {
			return 0, err
		}
		t, err := q.GetContentTable(ctx, col.TableID)
		if err != nil {
			return 0, err
		}
		if err := q.DeleteTableCol(ctx, colID); err != nil {
			return 0, err
		}
		_, err = position.Rescan(ctx, q, store.TableColFamily, col.TableID)
		return t.WebsiteID, err
	})
}

// MoveCol places a column at target.
func (m *TableManager) MoveCol(ctx context.Context, colID, target int64) error {
	return m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		col, err := q.GetTableCol(ctx, colID)
		if err != nil {
			return 0, err
		}
		t, err := q.GetContentTable(ctx, col.TableID)
		if err != nil {
			return 0, err
		}
		_, err = position.Move(ctx, q, store.TableColFamily, colID, target, col.TableID)
		return t.WebsiteID, err
	})
}

// AddRow adds a row at target (zero appends) with one empty cell per
// column and locale. It returns the row position.
func (m *TableManager) AddRow(ctx context.Context, tableID, target int64) (int64, error) {
	var row int64
	err := m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		t, err := q.GetContentTable(ctx, tableID)
		if err != nil {
			return 0, err
		}
		row, err = m.addRow(ctx, q, t, target)
		return t.WebsiteID, err
	})
	return row, err
}

func (m *TableManager) addRow(ctx context.Context, q *store.Queries, t store.ContentTable, target int64) (int64, error) {
	cols, err := q.ListTableCols(ctx, t.ID)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, Invalid("cols", "add a column before adding rows")
	}
	rows, err := q.ListTableRows(ctx, t.ID)
	if err != nil {
		return 0, err
	}
	codes, _, err := locales(ctx, q, t.WebsiteID)
	if err != nil {
		return 0, err
	}

	row := int64(len(rows) + 1)
	for _, col := range cols {
		for _, locale := range codes {
			if _, err := q.CreateTableCell(ctx, store.CreateTableCellParams{ColID: col.ID, RowPosition: row, Locale: locale}); err != nil {
				return 0, err
			}
		}
	}
	if target <= 0 || target >= row {
		return row, nil
	}
	order := position.Reorder(append(rows, row), row, target)
	return target, renumberRows(ctx, q, t.ID, order)
}

// RemoveRow deletes a row and closes the gap.
func (m *TableManager) RemoveRow(ctx context.Context, tableID, row int64) error {
	return m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		t, err := q.GetContentTable(ctx, tableID)
		if err != nil {
			return 0, err
		}
		if err := q.DeleteTableRow(ctx, tableID, row); err != nil {
			return 0, err
		}
		rows, err := q.ListTableRows(ctx, tableID)
		if err != nil {
			return 0, err
		}
		return t.WebsiteID, renumberRows(ctx, q, tableID, rows)
	})
}

// MoveRow places row from at position to.
func (m *TableManager) MoveRow(ctx context.Context, tableID, from, to int64) error {
	return m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		t, err := q.GetContentTable(ctx, tableID)
		if err != nil {
			return 0, err
		}
		rows, err := q.ListTableRows(ctx, tableID)
		if err != nil {
			return 0, err
		}
		if !slices.Contains(rows, from) {
			return 0, Invalid("row", "does not exist")
		}
		return t.WebsiteID, renumberRows(ctx, q, tableID, position.Reorder(rows, from, to))
	})
}

// renumberRows gives the rows of order the positions 1..n. Rows first move
// to negative positions so no two rows share a number midway.
func renumberRows(ctx context.Context, q *store.Queries, tableID int64, order []int64) error {
	for i, row := range order {
		if err := q.SetTableRowPosition(ctx, tableID, row, -int64(i+1)); err != nil {
			return err
		}
	}
	for i := range order {
		if err := q.SetTableRowPosition(ctx, tableID, -int64(i+1), int64(i+1)); err != nil {
			return err
		}
	}
	return nil
}

// SetCell writes the sanitized content of a cell.
func (m *TableManager) SetCell(ctx context.Context, cellID int64, content string) (store.TableCell, error) {
	var cell store.TableCell
	err := m.s.write(ctx, model.EntityTable, func(q *store.Queries) (int64, error) {
		c, err := q.GetTableCell(ctx, cellID)
		if err != nil {
			return 0, err
		}
		col, err := q.GetTableCol(ctx, c.ColID)
		if err != nil {
			return 0, err
		}
		t, err := q.GetContentTable(ctx, col.TableID)
		if err != nil {
			return 0, err
		}
		cell, err = q.UpdateTableCell(ctx, cellID, m.s.renderer.Sanitize(content))
		return t.WebsiteID, err
	})
	return cell, err
}

// Grid returns the cell contents of one locale, row by row in column
// order. Cells missing for the locale read as empty.
func Grid(ctx context.Context, q *store.Queries, tableID int64, locale string) ([][]string, error) {
	cols, err := q.ListTableCols(ctx, tableID)
	if err != nil {
		return nil, err
	}
	rows, err := q.ListTableRows(ctx, tableID)
	if err != nil {
		return nil, err
	}
	cells, err := q.ListTableCells(ctx, tableID)
	if err != nil {
		return nil, err
	}

	colIndex := make(map[int64]int, len(cols))
	for i, c := range cols {
		colIndex[c.ID] = i
	}
	rowIndex := make(map[int64]int, len(rows))
	grid := make([][]string, len(rows))
	for i, r := range rows {
		rowIndex[r] = i
		grid[i] = make([]string, len(cols))
	}
	for _, c := range cells {
		if c.Locale != locale {
			continue
		}
		ri, ok := rowIndex[c.RowPosition]
		ci, ok2 := colIndex[c.ColID]
		if ok && ok2 {
			grid[ri][ci] = c.Content
		}
	}
	return grid, nil
}
