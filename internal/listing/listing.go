// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package listing runs the listings and teasers configured in the admin:
// newscasts or products filtered by category, ordered and paginated.
package listing

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/olegiv/mcms-go/internal/model"
)

// Entry is one candidate of a listing, as read from the store.
type Entry struct {
	ID         int64             `json:"id"`
	Position   int64             `json:"position"`
	Online     bool              `json:"online"`
	Categories []int64           `json:"categories,omitempty"`
	Titles     map[string]string `json:"titles"`
	Intros     map[string]string `json:"intros,omitempty"`
	Codes      map[string]string `json:"codes,omitempty"`
	// Published and Unpublished bound the publication window.
	Published   *time.Time `json:"published,omitempty"`
	Unpublished *time.Time `json:"unpublished,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
}

// Title returns the title in locale, or in def when missing.
func (e Entry) Title(locale, def string) string {
	return pick(e.Titles, locale, def)
}

func pick(m map[string]string, locale, def string) string {
	if v, ok := m[locale]; ok && v != "" {
		return v
	}
	return m[def]
}

// Visible reports whether the entry is online and inside its
// publication window at now.
func (e Entry) Visible(now time.Time) bool {
	if !e.Online {
		return false
	}
	if e.Published != nil && e.Published.After(now) {
		return false
	}
	if e.Unpublished != nil && !e.Unpublished.After(now) {
		return false
	}
	return true
}

// Upcoming reports whether an event is still to come or running at now.
// Entries without a start date are not events.
func (e Entry) Upcoming(now time.Time) bool {
	if e.Start == nil {
		return false
	}
	end := e.End
	if end == nil {
		end = e.Start
	}
	return !end.Before(now)
}

// Selection is how a listing narrows and orders its entries.
type Selection struct {
	Categories []int64
	OrderBy    string
	AsEvents   bool
	Locale     string
	Default    string
	Now        time.Time
	// Rand shuffles the random order; nil uses the global source.
	Rand *rand.Rand
}

// Select returns the entries to show, in order. An empty category set
// keeps every category.
func Select(entries []Entry, sel Selection) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Visible(sel.Now) {
			continue
		}
		if sel.AsEvents && !e.Upcoming(sel.Now) {
			continue
		}
		if len(sel.Categories) > 0 && !overlaps(e.Categories, sel.Categories) {
			continue
		}
		out = append(out, e)
	}
	order(out, sel)
	return out
}

func overlaps(a, b []int64) bool {
	for _, id := range a {
		if slices.Contains(b, id) {
			return true
		}
	}
	return false
}

// order sorts in place. Ties and missing dates fall back to position
// then id so results are stable between calls.
func order(entries []Entry, sel Selection) {
	byPosition := func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	}
	byDate := func(get func(Entry) *time.Time, desc bool) func(a, b Entry) int {
		return func(a, b Entry) int {
			da, db := get(a), get(b)
			switch {
			case da == nil && db == nil:
				return byPosition(a, b)
			case da == nil:
				return 1
			case db == nil:
				return -1
			}
			c := da.Compare(*db)
			if desc {
				c = -c
			}
			return cmp.Or(c, byPosition(a, b))
		}
	}
	published := func(e Entry) *time.Time { return e.Published }
	start := func(e Entry) *time.Time { return e.Start }

	switch sel.OrderBy {
	case model.OrderPublicationDesc:
		slices.SortStableFunc(entries, byDate(published, true))
	case model.OrderPublicationAsc:
		slices.SortStableFunc(entries, byDate(published, false))
	case model.OrderStartDateAsc:
		slices.SortStableFunc(entries, byDate(start, false))
	case model.OrderStartDateDesc:
		slices.SortStableFunc(entries, byDate(start, true))
	case model.OrderTitleAsc, model.OrderTitleDesc:
		tag, err := language.Parse(sel.Locale)
		if err != nil {
			tag = language.Und
		}
		col := collate.New(tag, collate.Loose)
		desc := sel.OrderBy == model.OrderTitleDesc
		slices.SortStableFunc(entries, func(a, b Entry) int {
			c := col.CompareString(a.Title(sel.Locale, sel.Default), b.Title(sel.Locale, sel.Default))
			if desc {
				c = -c
			}
			return cmp.Or(c, byPosition(a, b))
		})
	case model.OrderRandom:
		slices.SortStableFunc(entries, byPosition)
		shuffle := rand.Shuffle
		if sel.Rand != nil {
			shuffle = sel.Rand.Shuffle
		}
		shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	default:
		slices.SortStableFunc(entries, byPosition)
	}
}
