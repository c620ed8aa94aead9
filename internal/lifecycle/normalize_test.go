// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"database/sql"
	"testing"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

func TestClampColSize(t *testing.T) {
	tests := []struct {
		in, want int64
	}{
		{-3, 1}, {0, 1}, {1, 1}, {6, 6}, {12, 12}, {13, 12},
	}
	for _, tt := range tests {
		if got := ClampColSize(tt.in); got != tt.want {
			t.Errorf("ClampColSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeReceivers(t *testing.T) {
	got, err := NormalizeReceivers("Sales@Example.com; ops@example.com,\nsales@example.com  Jane <jane@example.com>")
	if err == nil {
		// "Jane <jane@example.com>" is split on whitespace, so it is rejected.
		t.Fatalf("NormalizeReceivers() = %q, want error for a display name", got)
	}

	got, err = NormalizeReceivers("Sales@Example.com; ops@example.com,\nsales@example.com")
	if err != nil {
		t.Fatalf("NormalizeReceivers() error = %v", err)
	}
	if want := "sales@example.com,ops@example.com"; got != want {
		t.Errorf("NormalizeReceivers() = %q, want %q", got, want)
	}

	if got, err := NormalizeReceivers("   "); err != nil || got != "" {
		t.Errorf("NormalizeReceivers(blank) = %q, %v", got, err)
	}
	if _, err := NormalizeReceivers("not-an-address"); err == nil {
		t.Error("NormalizeReceivers(invalid) returned nil error")
	}
}

func TestNormalizeChoices(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["Small", " Large ", "Small", ""]`, []string{"Small", "Large"}},
		{"lines", "Red\n\n Green \nRed", []string{"Red", "Green"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeChoices(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizeChoices() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("NormalizeChoices()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildProductValue(t *testing.T) {
	feature := store.Feature{ID: 1, Slug: "color"}
	value := &store.FeatureValue{ID: 7, FeatureID: 1, Slug: "red", Label: "Red"}
	intls := []store.FeatureValueIntl{{ValueID: 7, Locale: "fr", Label: "Rouge"}}
	locales := []string{"en", "fr", "de"}

	t.Run("translation beats default label", func(t *testing.T) {
		pv := BuildProductValue(feature, value, intls, store.FeatureValueProduct{ValueID: sql.NullInt64{Int64: 7, Valid: true}}, locales)
		if pv.Feature != "color" || pv.Value != "red" || pv.Custom {
			t.Fatalf("unexpected value %+v", pv)
		}
		want := map[string]string{"en": "Red", "fr": "Rouge", "de": "Red"}
		for k, v := range want {
			if pv.Labels[k] != v {
				t.Errorf("Labels[%s] = %q, want %q", k, pv.Labels[k], v)
			}
		}
	})

	t.Run("custom value wins", func(t *testing.T) {
		pv := BuildProductValue(feature, value, intls, store.FeatureValueProduct{CustomValue: " Crimson "}, locales)
		if !pv.Custom {
			t.Error("Custom = false")
		}
		if pv.Labels["fr"] != "Crimson" {
			t.Errorf("Labels[fr] = %q, want Crimson", pv.Labels["fr"])
		}
	})

	t.Run("locale bound row", func(t *testing.T) {
		pv := BuildProductValue(feature, value, intls, store.FeatureValueProduct{Locale: "fr"}, locales)
		if len(pv.Labels) != 1 || pv.Labels["fr"] != "Rouge" {
			t.Errorf("Labels = %v, want only fr", pv.Labels)
		}
	})

	t.Run("missing value omits labels", func(t *testing.T) {
		pv := BuildProductValue(feature, nil, nil, store.FeatureValueProduct{}, locales)
		if len(pv.Labels) != 0 {
			t.Errorf("Labels = %v, want none", pv.Labels)
		}
	})
}

func TestNormalizeListing(t *testing.T) {
	l := store.Listing{EntityType: model.EntityNewscast, OrderBy: model.OrderTitleAsc, AsEvents: true}
	normalizeListing(&l)

	if l.OrderBy != model.OrderStartDateAsc {
		t.Errorf("OrderBy = %q, want %q", l.OrderBy, model.OrderStartDateAsc)
	}
	if l.ItemsPerPage != DefaultItemsPerPage {
		t.Errorf("ItemsPerPage = %d, want %d", l.ItemsPerPage, DefaultItemsPerPage)
	}
	if l.Kind != model.ListingKindListing {
		t.Errorf("Kind = %q, want listing", l.Kind)
	}
	if err := validateListing(l).Err(); err != nil {
		t.Errorf("validateListing() = %v", err)
	}
}

func TestValidateListing(t *testing.T) {
	tests := []struct {
		name  string
		in    store.Listing
		field string
	}{
		{"teaser without items", store.Listing{Kind: model.ListingKindTeaser, EntityType: model.EntityProduct, OrderBy: model.OrderPositionAsc, ItemsPerPage: 4}, "nb_items"},
		{"negative page size", store.Listing{Kind: model.ListingKindListing, EntityType: model.EntityProduct, OrderBy: model.OrderPositionAsc, ItemsPerPage: -1}, "items_per_page"},
		{"unknown entity", store.Listing{Kind: model.ListingKindListing, EntityType: "page", OrderBy: model.OrderPositionAsc, ItemsPerPage: 4}, "entity_type"},
		{"unknown order", store.Listing{Kind: model.ListingKindListing, EntityType: model.EntityProduct, OrderBy: "price-asc", ItemsPerPage: 4}, "order_by"},
		{"product events", store.Listing{Kind: model.ListingKindListing, EntityType: model.EntityProduct, OrderBy: model.OrderStartDateAsc, ItemsPerPage: 4, AsEvents: true}, "as_events"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := validateListing(tt.in)
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("validateListing() fields = %v, want %s", verr.Fields, tt.field)
			}
		})
	}
}

func TestValidateThumbConfiguration(t *testing.T) {
	c := store.ThumbConfiguration{Slug: "Card Image", Width: 320}
	if err := validateThumbConfiguration(&c).Err(); err != nil {
		t.Fatalf("validateThumbConfiguration() = %v", err)
	}
	if c.Slug != "card-image" || c.Screen != model.ScreenDesktop {
		t.Errorf("normalized = %+v", c)
	}

	bad := []store.ThumbConfiguration{
		{Slug: "a", Screen: "watch", Width: 10},
		{Slug: "a"},
		{Slug: "a", Width: 10, Crop: true},
		{Slug: "a", Width: 10, Quality: 101},
		{Slug: "a", Width: MaxThumbSize + 1},
	}
	for i, c := range bad {
		if err := validateThumbConfiguration(&c).Err(); err == nil {
			t.Errorf("case %d: validateThumbConfiguration(%+v) = nil, want error", i, c)
		}
	}
}

func TestValidateCrop(t *testing.T) {
	media := store.Media{Width: 800, Height: 600}
	if err := validateCrop(store.Thumb{CropX: 100, CropY: 100, CropWidth: 700, CropHeight: 500}, media).Err(); err != nil {
		t.Errorf("validateCrop(inside) = %v", err)
	}
	if err := validateCrop(store.Thumb{CropX: 200, CropWidth: 700, CropHeight: 100}, media).Err(); err == nil {
		t.Error("validateCrop(too wide) = nil")
	}
	if err := validateCrop(store.Thumb{CropWidth: 0, CropHeight: 10}, media).Err(); err == nil {
		t.Error("validateCrop(empty) = nil")
	}
}
