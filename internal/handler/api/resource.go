// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// resource binds the admin routes of one entity to its lifecycle manager.
// V is the JSON view decoded from and encoded to request bodies.
//
// Collections live under their parent (/websites/{id}/menus), items under
// their own path (/menus/{id}). Updates decode the body over the
// current view, so omitted fields keep their value.
type resource[V any] struct {
	name   string
	get    func(ctx context.Context, id int64) (V, error)
	list   func(ctx context.Context, parentID int64) ([]V, error)
	create func(ctx context.Context, parentID int64, v V) (V, error)
	update func(ctx context.Context, id int64, v V) (V, error)
	remove func(ctx context.Context, id int64) error
	move   func(ctx context.Context, id, target int64) error
}

// mount registers the item routes. Nil operations are not routed.
func (res resource[V]) mount(h *Handler, r chi.Router, plural string) {
	path := "/" + plural + "/{id}"
	if res.get != nil {
		r.Get(path, res.handleGet(h))
	}
	if res.update != nil {
		r.Put(path, res.handleUpdate(h))
		r.Patch(path, res.handleUpdate(h))
	}
	if res.remove != nil {
		r.Delete(path, res.handleDelete(h))
	}
	if res.move != nil {
		r.Post(path+"/move", res.handleMove(h))
	}
}

// mountUnder registers the collection routes below a parent item path.
func (res resource[V]) mountUnder(h *Handler, r chi.Router, parent, plural string) {
	path := "/" + parent + "/{id}/" + plural
	if res.list != nil {
		r.Get(path, res.handleList(h))
	}
	if res.create != nil {
		r.Post(path, res.handleCreate(h))
	}
}

func (res resource[V]) handleList(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, ok := paramID(w, r, "id")
		if !ok {
			return
		}
		items, err := res.list(r.Context(), parentID)
		if err != nil {
			h.writeServiceError(w, r, res.name, err)
			return
		}
		if items == nil {
			items = []V{}
		}
		WriteSuccess(w, items, &Meta{Total: int64(len(items))})
	}
}

func (res resource[V]) handleGet(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := requireEntityByID(h, w, r, res.name, func(id int64) (V, error) {
			return res.get(r.Context(), id)
		})
		if ok {
			WriteSuccess(w, v, nil)
		}
	}
}

func (res resource[V]) handleCreate(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, ok := paramID(w, r, "id")
		if !ok {
			return
		}
		var v V
		if !decodeJSON(w, r, &v) {
			return
		}
		created, err := res.create(r.Context(), parentID, v)
		if err != nil {
			h.writeServiceError(w, r, res.name, err)
			return
		}
		WriteCreated(w, created)
	}
}

func (res resource[V]) handleUpdate(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := paramID(w, r, "id")
		if !ok {
			return
		}
		current, err := res.get(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, r, res.name, err)
			return
		}
		if !decodeJSON(w, r, &current) {
			return
		}
		updated, err := res.update(r.Context(), id, current)
		if err != nil {
			h.writeServiceError(w, r, res.name, err)
			return
		}
		WriteSuccess(w, updated, nil)
	}
}

func (res resource[V]) handleDelete(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := paramID(w, r, "id")
		if !ok {
			return
		}
		if err := res.remove(r.Context(), id); err != nil {
			h.writeServiceError(w, r, res.name, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MoveRequest places an item at a 1-based position among its siblings.
type MoveRequest struct {
	Target int64 `json:"target"`
}

func (res resource[V]) handleMove(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := paramID(w, r, "id")
		if !ok {
			return
		}
		var req MoveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Target < 1 {
			WriteValidationError(w, map[string]string{"target": "must be at least 1"})
			return
		}
		if err := res.move(r.Context(), id, req.Target); err != nil {
			h.writeServiceError(w, r, res.name, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
