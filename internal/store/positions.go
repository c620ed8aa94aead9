// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
)

// Family describes a set of sibling rows sharing a contiguous position
// sequence. Table and Scope are compile-time constants, never user input.
type Family struct {
	Name  string
	Table string
	Scope []string
}

// Ordered families of the schema.
var (
	LanguageFamily            = Family{Name: "language", Table: "languages", Scope: []string{"website_id"}}
	ColorFamily               = Family{Name: "color", Table: "colors", Scope: []string{"website_id"}}
	PageFamily                = Family{Name: "page", Table: "pages", Scope: []string{"website_id", "parent_id"}}
	ZoneFamily                = Family{Name: "zone", Table: "zones", Scope: []string{"layout_id"}}
	ColFamily                 = Family{Name: "col", Table: "cols", Scope: []string{"zone_id"}}
	BlockFamily               = Family{Name: "block", Table: "blocks", Scope: []string{"col_id"}}
	LinkFamily                = Family{Name: "link", Table: "links", Scope: []string{"menu_id", "parent_id", "locale"}}
	FormFieldFamily           = Family{Name: "form_field", Table: "form_fields", Scope: []string{"form_id"}}
	CatalogFamily             = Family{Name: "catalog", Table: "catalogs", Scope: []string{"website_id"}}
	CategoryFamily            = Family{Name: "category", Table: "catalog_categories", Scope: []string{"catalog_id"}}
	ProductFamily             = Family{Name: "product", Table: "products", Scope: []string{"catalog_id"}}
	FeatureFamily             = Family{Name: "feature", Table: "features", Scope: []string{"website_id"}}
	FeatureValueFamily        = Family{Name: "feature_value", Table: "feature_values", Scope: []string{"feature_id"}}
	FeatureValueProductFamily = Family{Name: "feature_value_product", Table: "feature_value_products", Scope: []string{"product_id"}}
	NewscastCategoryFamily    = Family{Name: "newscast_category", Table: "newscast_categories", Scope: []string{"website_id"}}
	TableColFamily            = Family{Name: "table_col", Table: "table_cols", Scope: []string{"table_id"}}
	MediaRelationFamily       = Family{Name: "media_relation", Table: "media_relations", Scope: []string{"entity_type", "entity_id", "locale"}}
)

func (f Family) where() string {
	parts := make([]string, len(f.Scope))
	for i, col := range f.Scope {
		// IS compares NULL parents as equal.
		parts[i] = col + " IS ?"
	}
	return strings.Join(parts, " AND ")
}

func (f Family) check(scope []any) error {
	if len(scope) != len(f.Scope) {
		return fmt.Errorf("family %s: expected %d scope values, got %d", f.Name, len(f.Scope), len(scope))
	}
	return nil
}

// ListFamilyIDs returns the ids of one sibling set in display order.
// Ties on position keep insertion order.
func (q *Queries) ListFamilyIDs(ctx context.Context, f Family, scope ...any) ([]int64, error) {
	if err := f.check(scope); err != nil {
		return nil, err
	}
	query := "SELECT id FROM " + f.Table + " WHERE " + f.where() + " ORDER BY position, id"
	rows, err := q.db.QueryContext(ctx, query, scope...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

// SetFamilyPosition writes the position of one row.
func (q *Queries) SetFamilyPosition(ctx context.Context, f Family, id, position int64) error {
	_, err := q.db.ExecContext(ctx, "UPDATE "+f.Table+" SET position = ? WHERE id = ?", position, id)
	return err
}

// CountFamily returns the number of siblings in a set.
func (q *Queries) CountFamily(ctx context.Context, f Family, scope ...any) (int64, error) {
	if err := f.check(scope); err != nil {
		return 0, err
	}
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+f.Table+" WHERE "+f.where(), scope...).Scan(&n)
	return n, err
}

// SlugScope describes where a slug has to be unique.
type SlugScope struct {
	Table string
	Scope string
}

// Slug scopes of the schema.
var (
	PageSlugs             = SlugScope{Table: "pages", Scope: "website_id"}
	MenuSlugs             = SlugScope{Table: "menus", Scope: "website_id"}
	FormSlugs             = SlugScope{Table: "forms", Scope: "website_id"}
	FormFieldSlugs        = SlugScope{Table: "form_fields", Scope: "form_id"}
	NewsletterSlugs       = SlugScope{Table: "newsletters", Scope: "website_id"}
	CatalogSlugs          = SlugScope{Table: "catalogs", Scope: "website_id"}
	CategorySlugs         = SlugScope{Table: "catalog_categories", Scope: "catalog_id"}
	ProductSlugs          = SlugScope{Table: "products", Scope: "catalog_id"}
	FeatureSlugs          = SlugScope{Table: "features", Scope: "website_id"}
	FeatureValueSlugs     = SlugScope{Table: "feature_values", Scope: "feature_id"}
	NewscastSlugs         = SlugScope{Table: "newscasts", Scope: "website_id"}
	NewscastCategorySlugs = SlugScope{Table: "newscast_categories", Scope: "website_id"}
	TableSlugs            = SlugScope{Table: "content_tables", Scope: "website_id"}
	ListingSlugs          = SlugScope{Table: "listings", Scope: "website_id"}
	ColorSlugs            = SlugScope{Table: "colors", Scope: "website_id"}
)

// CountSlug counts rows other than excludeID using slug inside the scope.
func (q *Queries) CountSlug(ctx context.Context, s SlugScope, scopeID int64, slug string, excludeID int64) (int64, error) {
	query := "SELECT COUNT(*) FROM " + s.Table + " WHERE " + s.Scope + " = ? AND slug = ? AND id != ?"
	var n int64
	err := q.db.QueryRowContext(ctx, query, scopeID, slug, excludeID).Scan(&n)
	return n, err
}
