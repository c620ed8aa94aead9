// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

// FormFieldView is a form field with its insert position.
type FormFieldView struct {
	store.FormField
	Target int64 `json:"target,omitempty"`
}

// NewscastView is a newscast with its intls and plain nullable columns.
type NewscastView struct {
	store.Newscast
	CategoryID      *int64           `json:"category_id"`
	PublicationDate *time.Time       `json:"publication_date"`
	PublicationEnd  *time.Time       `json:"publication_end"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
	Intls           []lifecycle.Intl `json:"intls"`
}

func (v NewscastView) record() lifecycle.NewscastRecord {
	n := v.Newscast
	n.CategoryID = nullInt(v.CategoryID)
	n.PublicationDate = nullTime(v.PublicationDate)
	n.PublicationEnd = nullTime(v.PublicationEnd)
	n.StartDate = nullTime(v.StartDate)
	n.EndDate = nullTime(v.EndDate)
	return lifecycle.NewscastRecord{Newscast: n, Intls: v.Intls}
}

func (h *Handler) newscastView(ctx context.Context, n store.Newscast) (NewscastView, error) {
	v := NewscastView{
		Newscast:        n,
		CategoryID:      ptrInt(n.CategoryID),
		PublicationDate: ptrTime(n.PublicationDate),
		PublicationEnd:  ptrTime(n.PublicationEnd),
		StartDate:       ptrTime(n.StartDate),
		EndDate:         ptrTime(n.EndDate),
	}
	intls, err := h.queries.ListNewscastIntls(ctx, n.ID)
	if err != nil {
		return v, err
	}
	codes, err := h.urlCodes(ctx, model.EntityNewscast, n.ID)
	if err != nil {
		return v, err
	}
	for _, in := range intls {
		v.Intls = append(v.Intls, lifecycle.Intl{
			Locale: in.Locale, Title: in.Title, Introduction: in.Introduction, Body: in.Body, Code: codes[in.Locale],
		})
	}
	return v, nil
}

// TableView is a content table. Cols and Rows size the grid on create.
type TableView struct {
	store.ContentTable
	Cols int `json:"cols,omitempty"`
	Rows int `json:"rows,omitempty"`
}

// ListingView is a listing with its category filter.
type ListingView struct {
	store.Listing
	CategoryIDs []int64 `json:"category_ids"`
}

func (h *Handler) listingView(ctx context.Context, l store.Listing) (ListingView, error) {
	ids, err := h.queries.ListListingCategoryIDs(ctx, l.ID)
	if ids == nil {
		ids = []int64{}
	}
	return ListingView{Listing: l, CategoryIDs: ids}, err
}

func (h *Handler) mountContent(r chi.Router) {
	content := h.Content

	resource[store.Form]{
		name: "form",
		get:  h.queries.GetForm,
		list: h.queries.ListForms,
		create: func(ctx context.Context, wid int64, f store.Form) (store.Form, error) {
			f.WebsiteID = wid
			return content.Forms.Create(ctx, f)
		},
		update: func(ctx context.Context, id int64, f store.Form) (store.Form, error) {
			f.ID = id
			return content.Forms.Update(ctx, f)
		},
		remove: content.Forms.Delete,
	}.register(h, r, "websites", "forms")

	resource[FormFieldView]{
		name: "form field",
		get: func(ctx context.Context, id int64) (FormFieldView, error) {
			f, err := h.queries.GetFormField(ctx, id)
			return FormFieldView{FormField: f}, err
		},
		list: func(ctx context.Context, formID int64) ([]FormFieldView, error) {
			fields, err := h.queries.ListFormFields(ctx, formID)
			out := make([]FormFieldView, len(fields))
			for i, f := range fields {
				out[i] = FormFieldView{FormField: f}
			}
			return out, err
		},
		create: func(ctx context.Context, formID int64, v FormFieldView) (FormFieldView, error) {
			v.FormID = formID
			f, err := content.FormFields.Create(ctx, lifecycle.FormFieldRecord{FormField: v.FormField, Target: v.Target})
			return FormFieldView{FormField: f}, err
		},
		update: func(ctx context.Context, id int64, v FormFieldView) (FormFieldView, error) {
			v.ID = id
			f, err := content.FormFields.Update(ctx, v.FormField)
			return FormFieldView{FormField: f}, err
		},
		remove: content.FormFields.Delete,
		move:   content.FormFields.Move,
	}.register(h, r, "forms", "fields")

	resource[store.Newsletter]{
		name: "newsletter",
		get:  h.queries.GetNewsletter,
		list: h.queries.ListNewsletters,
		create: func(ctx context.Context, wid int64, n store.Newsletter) (store.Newsletter, error) {
			n.WebsiteID = wid
			return content.Newsletters.Create(ctx, n)
		},
		update: func(ctx context.Context, id int64, n store.Newsletter) (store.Newsletter, error) {
			n.ID = id
			return content.Newsletters.Update(ctx, n)
		},
		remove: content.Newsletters.Delete,
	}.register(h, r, "websites", "newsletters")
	r.Get("/newsletters/{id}/emails", h.ListNewsletterEmails)

	resource[store.NewscastCategory]{
		name: "newscast category",
		get:  h.queries.GetNewscastCategory,
		list: h.queries.ListNewscastCategories,
		create: func(ctx context.Context, wid int64, c store.NewscastCategory) (store.NewscastCategory, error) {
			c.WebsiteID = wid
			return content.NewscastCategories.Create(ctx, c)
		},
		update: func(ctx context.Context, id int64, c store.NewscastCategory) (store.NewscastCategory, error) {
			c.ID = id
			return content.NewscastCategories.Update(ctx, c)
		},
		remove: content.NewscastCategories.Delete,
		move:   content.NewscastCategories.Move,
	}.register(h, r, "websites", "newscast-categories")

	resource[NewscastView]{
		name: "newscast",
		get: func(ctx context.Context, id int64) (NewscastView, error) {
			n, err := h.queries.GetNewscast(ctx, id)
			if err != nil {
				return NewscastView{}, err
			}
			return h.newscastView(ctx, n)
		},
		list: func(ctx context.Context, wid int64) ([]NewscastView, error) {
			newscasts, err := h.queries.ListNewscasts(ctx, wid)
			if err != nil {
				return nil, err
			}
			out := make([]NewscastView, 0, len(newscasts))
			for _, n := range newscasts {
				v, err := h.newscastView(ctx, n)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
		create: func(ctx context.Context, wid int64, v NewscastView) (NewscastView, error) {
			rec := v.record()
			rec.WebsiteID = wid
			saved, err := content.Newscasts.Create(ctx, rec)
			if err != nil {
				return NewscastView{}, err
			}
			return h.newscastView(ctx, saved.Newscast)
		},
		update: func(ctx context.Context, id int64, v NewscastView) (NewscastView, error) {
			rec := v.record()
			rec.ID = id
			saved, err := content.Newscasts.Update(ctx, rec)
			if err != nil {
				return NewscastView{}, err
			}
			return h.newscastView(ctx, saved.Newscast)
		},
		remove: content.Newscasts.Delete,
	}.register(h, r, "websites", "newscasts")

	resource[TableView]{
		name: "table",
		get: func(ctx context.Context, id int64) (TableView, error) {
			t, err := h.queries.GetContentTable(ctx, id)
			return TableView{ContentTable: t}, err
		},
		list: func(ctx context.Context, wid int64) ([]TableView, error) {
			tables, err := h.queries.ListContentTables(ctx, wid)
			out := make([]TableView, len(tables))
			for i, t := range tables {
				out[i] = TableView{ContentTable: t}
			}
			return out, err
		},
		create: func(ctx context.Context, wid int64, v TableView) (TableView, error) {
			v.WebsiteID = wid
			t, err := content.Tables.Create(ctx, lifecycle.TableRecord{ContentTable: v.ContentTable, Cols: v.Cols, Rows: v.Rows})
			return TableView{ContentTable: t}, err
		},
		update: func(ctx context.Context, id int64, v TableView) (TableView, error) {
			v.ID = id
			t, err := content.Tables.Update(ctx, v.ContentTable)
			return TableView{ContentTable: t}, err
		},
		remove: content.Tables.Delete,
	}.register(h, r, "websites", "tables")
	r.Get("/tables/{id}/grid", h.GetTableGrid)
	r.Post("/tables/{id}/cols", h.AddTableCol)
	r.Post("/tables/{id}/rows", h.AddTableRow)
	r.Post("/tables/{id}/rows/move", h.MoveTableRow)
	r.Delete("/tables/{id}/rows/{row}", h.RemoveTableRow)
	r.Post("/table-cols/{id}/move", h.MoveTableCol)
	r.Delete("/table-cols/{id}", h.RemoveTableCol)
	r.Put("/table-cells/{id}", h.SetTableCell)

	resource[ListingView]{
		name: "listing",
		get: func(ctx context.Context, id int64) (ListingView, error) {
			l, err := h.queries.GetListing(ctx, id)
			if err != nil {
				return ListingView{}, err
			}
			return h.listingView(ctx, l)
		},
		list: func(ctx context.Context, wid int64) ([]ListingView, error) {
			listings, err := h.queries.ListListings(ctx, wid)
			if err != nil {
				return nil, err
			}
			out := make([]ListingView, 0, len(listings))
			for _, l := range listings {
				v, err := h.listingView(ctx, l)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
		create: func(ctx context.Context, wid int64, v ListingView) (ListingView, error) {
			v.WebsiteID = wid
			rec, err := content.Listings.Create(ctx, lifecycle.ListingRecord{Listing: v.Listing, CategoryIDs: v.CategoryIDs})
			if err != nil {
				return ListingView{}, err
			}
			return h.listingView(ctx, rec.Listing)
		},
		update: func(ctx context.Context, id int64, v ListingView) (ListingView, error) {
			v.ID = id
			rec, err := content.Listings.Update(ctx, lifecycle.ListingRecord{Listing: v.Listing, CategoryIDs: v.CategoryIDs})
			if err != nil {
				return ListingView{}, err
			}
			return h.listingView(ctx, rec.Listing)
		},
		remove: content.Listings.Delete,
	}.register(h, r, "websites", "listings")
}

// ListNewsletterEmails handles GET /api/v1/admin/newsletters/{id}/emails.
func (h *Handler) ListNewsletterEmails(w http.ResponseWriter, r *http.Request) {
	emails, ok := requireEntityByID(h, w, r, "newsletter", func(id int64) ([]store.NewsletterEmail, error) {
		if _, err := h.queries.GetNewsletter(r.Context(), id); err != nil {
			return nil, err
		}
		return h.queries.ListNewsletterEmails(r.Context(), id)
	})
	if !ok {
		return
	}
	if emails == nil {
		emails = []store.NewsletterEmail{}
	}
	WriteSuccess(w, emails, &Meta{Total: int64(len(emails))})
}

// TableGrid is the cell content of a table in one locale, row by row.
type TableGrid struct {
	TableID int64      `json:"table_id"`
	Locale  string     `json:"locale"`
	Cols    []int64    `json:"cols"`
	Rows    []int64    `json:"rows"`
	Cells   [][]string `json:"cells"`
}

// GetTableGrid handles GET /api/v1/admin/tables/{id}/grid?locale=fr.
func (h *Handler) GetTableGrid(w http.ResponseWriter, r *http.Request) {
	table, ok := requireEntityByID(h, w, r, "table", func(id int64) (store.ContentTable, error) {
		return h.queries.GetContentTable(r.Context(), id)
	})
	if !ok {
		return
	}
	ctx := r.Context()
	loc := site(r).Locale

	grid := TableGrid{TableID: table.ID, Locale: loc, Cols: []int64{}}
	cols, err := h.queries.ListTableCols(ctx, table.ID)
	if err != nil {
		h.writeServiceError(w, r, "table", err)
		return
	}
	for _, c := range cols {
		grid.Cols = append(grid.Cols, c.ID)
	}
	if grid.Rows, err = h.queries.ListTableRows(ctx, table.ID); err != nil {
		h.writeServiceError(w, r, "table", err)
		return
	}
	if grid.Cells, err = lifecycle.Grid(ctx, h.queries, table.ID, loc); err != nil {
		h.writeServiceError(w, r, "table", err)
		return
	}
	WriteSuccess(w, grid, nil)
}

// AddTableCol handles POST /api/v1/admin/tables/{id}/cols.
func (h *Handler) AddTableCol(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	col, err := h.Content.Tables.AddCol(r.Context(), id, req.Target)
	if err != nil {
		h.writeServiceError(w, r, "table", err)
		return
	}
	WriteCreated(w, col)
}

// MoveTableCol handles POST /api/v1/admin/table-cols/{id}/move.
func (h *Handler) MoveTableCol(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Content.Tables.MoveCol(r.Context(), id, req.Target); err != nil {
		h.writeServiceError(w, r, "table col", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveTableCol handles DELETE /api/v1/admin/table-cols/{id}.
func (h *Handler) RemoveTableCol(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Content.Tables.RemoveCol(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "table col", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RowResponse names a table row by its position.
type RowResponse struct {
	Row int64 `json:"row"`
}

// AddTableRow handles POST /api/v1/admin/tables/{id}/rows.
func (h *Handler) AddTableRow(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	row, err := h.Content.Tables.AddRow(r.Context(), id, req.Target)
	if err != nil {
		h.writeServiceError(w, r, "table", err)
		return
	}
	WriteCreated(w, RowResponse{Row: row})
}

// MoveRowRequest moves the row at From to position To.
type MoveRowRequest struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// MoveTableRow handles POST /api/v1/admin/tables/{id}/rows/move.
func (h *Handler) MoveTableRow(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	var req MoveRowRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Content.Tables.MoveRow(r.Context(), id, req.From, req.To); err != nil {
		h.writeServiceError(w, r, "table row", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveTableRow handles DELETE /api/v1/admin/tables/{id}/rows/{row}.
func (h *Handler) RemoveTableRow(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	row, ok := paramID(w, r, "row")
	if !ok {
		return
	}
	if err := h.Content.Tables.RemoveRow(r.Context(), id, row); err != nil {
		h.writeServiceError(w, r, "table row", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CellRequest sets the content of one cell.
type CellRequest struct {
	Content string `json:"content"`
}

// SetTableCell handles PUT /api/v1/admin/table-cells/{id}.
func (h *Handler) SetTableCell(w http.ResponseWriter, r *http.Request) {
	id, ok := paramID(w, r, "id")
	if !ok {
		return
	}
	var req CellRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cell, err := h.Content.Tables.SetCell(r.Context(), id, req.Content)
	if err != nil {
		h.writeServiceError(w, r, "table cell", err)
		return
	}
	WriteSuccess(w, cell, nil)
}
