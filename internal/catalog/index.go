// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog filters the products of a catalog by category, feature
// facets and text.
package catalog

import (
	"slices"
	"strings"

	"github.com/olegiv/mcms-go/internal/util"
)

// Index is the in-memory snapshot of one catalog that queries run against.
type Index struct {
	WebsiteID     int64      `json:"website_id"`
	CatalogID     int64      `json:"catalog_id"`
	Catalog       string     `json:"catalog"`
	DefaultLocale string     `json:"default_locale"`
	Products      []Product  `json:"products"`
	Categories    []Category `json:"categories"`
	Features      []Feature  `json:"features"`
}

// Product is one online product of the catalog.
type Product struct {
	ID         int64   `json:"id"`
	Position   int64   `json:"position"`
	Slug       string  `json:"slug"`
	Reference  string  `json:"reference"`
	Categories []int64 `json:"categories"`
	// Values maps a feature slug to the value slugs the product has.
	Values map[string][]string `json:"values"`
	// Titles, Intros and Codes are keyed by locale.
	Titles map[string]string `json:"titles"`
	Intros map[string]string `json:"intros"`
	Codes  map[string]string `json:"codes"`
}

// Category is a catalog category.
type Category struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Feature is a feature flagged as a filter, with its values in order.
type Feature struct {
	Slug   string  `json:"slug"`
	Name   string  `json:"name"`
	Values []Value `json:"values"`
}

// Value is one value of a filter feature.
type Value struct {
	Slug   string            `json:"slug"`
	Label  string            `json:"label"`
	Labels map[string]string `json:"labels"`
}

// LabelFor returns the label of the value in locale, else its default.
func (v Value) LabelFor(locale string) string {
	if l := v.Labels[locale]; l != "" {
		return l
	}
	return v.Label
}

// Query selects products of a catalog. Facets maps a feature slug to the
// accepted value slugs.
type Query struct {
	WebsiteID int64               `json:"website_id"`
	CatalogID int64               `json:"catalog_id"`
	Catalog   string              `json:"catalog"`
	Category  string              `json:"category"`
	Facets    map[string][]string `json:"facets"`
	Text      string              `json:"text"`
	Locale    string              `json:"locale"`
	Page      int                 `json:"page"`
	PerPage   int                 `json:"per_page"`
}

// Facet reports, for one filter feature, how many products each value
// would match given the other facets.
type Facet struct {
	Feature string       `json:"feature"`
	Name    string       `json:"name"`
	Values  []FacetValue `json:"values"`
}

// FacetValue is one countable value of a facet.
type FacetValue struct {
	Slug     string `json:"slug"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// CategoryID returns the id of a category slug.
func (idx *Index) CategoryID(slug string) (int64, bool) {
	for _, c := range idx.Categories {
		if c.Slug == slug {
			return c.ID, true
		}
	}
	return 0, false
}

// Filter returns the ids of the products matching q, in position order.
// Values of one feature are alternatives; distinct features must all
// match. Facets on features that are not filters are ignored.
func Filter(idx *Index, q Query) []int64 {
	facets := idx.facets(q)
	var ids []int64
	for _, p := range idx.base(q) {
		if matchFacets(p, facets, "") {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Facets counts the products per value of every filter feature. The
// count of a value ignores the selection on its own feature, so that it
// shows what the result would be if the value were picked.
func Facets(idx *Index, q Query) []Facet {
	base := idx.base(q)
	facets := idx.facets(q)
	locale := q.Locale
	if locale == "" {
		locale = idx.DefaultLocale
	}

	out := make([]Facet, 0, len(idx.Features))
	for _, f := range idx.Features {
		counts := make(map[string]int, len(f.Values))
		for _, p := range base {
			if !matchFacets(p, facets, f.Slug) {
				continue
			}
			for _, v := range p.Values[f.Slug] {
				counts[v]++
			}
		}
		facet := Facet{Feature: f.Slug, Name: f.Name, Values: make([]FacetValue, 0, len(f.Values))}
		for _, v := range f.Values {
			facet.Values = append(facet.Values, FacetValue{
				Slug:     v.Slug,
				Label:    v.LabelFor(locale),
				Count:    counts[v.Slug],
				Selected: slices.Contains(facets[f.Slug], v.Slug),
			})
		}
		out = append(out, facet)
	}
	return out
}

// base applies the category and text criteria.
func (idx *Index) base(q Query) []*Product {
	var categoryID int64
	if q.Category != "" {
		id, ok := idx.CategoryID(q.Category)
		if !ok {
			return nil
		}
		categoryID = id
	}

	words := strings.Fields(util.Fold(q.Text))
	locale := q.Locale
	if locale == "" {
		locale = idx.DefaultLocale
	}

	var out []*Product
	for i := range idx.Products {
		p := &idx.Products[i]
		if categoryID != 0 && !slices.Contains(p.Categories, categoryID) {
			continue
		}
		if len(words) > 0 && !matchText(p, words, locale, idx.DefaultLocale) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// facets keeps the non-empty selections on filter features.
func (idx *Index) facets(q Query) map[string][]string {
	out := make(map[string][]string, len(q.Facets))
	for _, f := range idx.Features {
		if vals := q.Facets[f.Slug]; len(vals) > 0 {
			out[f.Slug] = vals
		}
	}
	return out
}

func matchFacets(p *Product, facets map[string][]string, skip string) bool {
	for feature, wanted := range facets {
		if feature == skip {
			continue
		}
		has := p.Values[feature]
		if !slices.ContainsFunc(wanted, func(v string) bool { return slices.Contains(has, v) }) {
			return false
		}
	}
	return true
}

func matchText(p *Product, words []string, locale, fallback string) bool {
	title := p.Titles[locale]
	if title == "" {
		title = p.Titles[fallback]
	}
	hay := util.Fold(title + " " + p.Reference)
	for _, w := range words {
		if !strings.Contains(hay, w) {
			return false
		}
	}
	return true
}
