// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testIndex() *Index {
	product := func(id int64, title, ref string, cat int64, values map[string][]string) Product {
		return Product{
			ID: id, Position: id, Slug: ref, Reference: ref,
			Categories: []int64{cat},
			Values:     values,
			Titles:     map[string]string{"en": title},
		}
	}
	return &Index{
		CatalogID:     1,
		Catalog:       "shop",
		DefaultLocale: "en",
		Categories: []Category{
			{ID: 10, Slug: "shirts", Name: "Shirts"},
			{ID: 11, Slug: "accessories", Name: "Accessories"},
		},
		Features: []Feature{
			{Slug: "color", Name: "Color", Values: []Value{
				{Slug: "red", Label: "Red", Labels: map[string]string{"fr": "Rouge"}},
				{Slug: "blue", Label: "Blue"},
				{Slug: "green", Label: "Green"},
			}},
			{Slug: "size", Name: "Size", Values: []Value{
				{Slug: "s", Label: "S"}, {Slug: "m", Label: "M"}, {Slug: "l", Label: "L"},
			}},
		},
		Products: []Product{
			product(1, "Red Cotton Shirt", "SH-1", 10, map[string][]string{"color": {"red"}, "size": {"s", "m"}}),
			product(2, "Blue Shirt", "SH-2", 10, map[string][]string{"color": {"blue"}, "size": {"m"}}),
			product(3, "Red Crème Hat", "HT-1", 11, map[string][]string{"color": {"red"}, "size": {"l"}}),
			product(4, "Green Scarf", "SC-1", 11, map[string][]string{"color": {"green"}}),
		},
	}
}

func TestFilter(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		name  string
		query Query
		want  []int64
	}{
		{"everything", Query{}, []int64{1, 2, 3, 4}},
		{"union within a feature", Query{Facets: map[string][]string{"color": {"red", "blue"}}}, []int64{1, 2, 3}},
		{"intersection across features", Query{Facets: map[string][]string{"color": {"red"}, "size": {"m"}}}, []int64{1}},
		{"no product has both", Query{Facets: map[string][]string{"color": {"green"}, "size": {"s"}}}, nil},
		{"category", Query{Category: "shirts"}, []int64{1, 2}},
		{"category and facet", Query{Category: "accessories", Facets: map[string][]string{"color": {"red"}}}, []int64{3}},
		{"unknown category", Query{Category: "shoes"}, nil},
		{"empty selection ignored", Query{Facets: map[string][]string{"size": {}}}, []int64{1, 2, 3, 4}},
		{"unknown feature ignored", Query{Facets: map[string][]string{"material": {"wool"}}}, []int64{1, 2, 3, 4}},
		{"text is accent insensitive", Query{Text: "CREME"}, []int64{3}},
		{"all words must match", Query{Text: "red shirt"}, []int64{1}},
		{"text matches reference", Query{Text: "sh-2"}, []int64{2}},
		{"title falls back to default locale", Query{Text: "scarf", Locale: "fr"}, []int64{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filter(idx, tt.query))
		})
	}
}

func TestFilterKeepsPositionOrder(t *testing.T) {
	idx := testIndex()
	idx.Products[0].Position, idx.Products[2].Position = 3, 1
	idx.Products[0], idx.Products[2] = idx.Products[2], idx.Products[0]

	got := Filter(idx, Query{Facets: map[string][]string{"color": {"red"}}})
	assert.Equal(t, []int64{3, 1}, got)
}

func TestFacets(t *testing.T) {
	idx := testIndex()
	facets := Facets(idx, Query{Facets: map[string][]string{"color": {"red"}}, Locale: "fr"})
	if !assert.Len(t, facets, 2) {
		return
	}

	color := facets[0]
	assert.Equal(t, "color", color.Feature)
	assert.Equal(t, []FacetValue{
		{Slug: "red", Label: "Rouge", Count: 2, Selected: true},
		{Slug: "blue", Label: "Blue", Count: 1},
		{Slug: "green", Label: "Green", Count: 1},
	}, color.Values)

	size := facets[1]
	assert.Equal(t, []FacetValue{
		{Slug: "s", Label: "S", Count: 1},
		{Slug: "m", Label: "M", Count: 1},
		{Slug: "l", Label: "L", Count: 1},
	}, size.Values)
}

func TestFacetsFollowCategory(t *testing.T) {
	facets := Facets(testIndex(), Query{Category: "shirts"})
	counts := map[string]int{}
	for _, v := range facets[0].Values {
		counts[v.Slug] = v.Count
	}
	assert.Equal(t, map[string]int{"red": 1, "blue": 1, "green": 0}, counts)
}
