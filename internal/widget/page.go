// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package widget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/service"
	"github.com/olegiv/mcms-go/internal/store"
)

// PageIndent prefixes a page title once per tree level.
const PageIndent = "-- "

// PageType offers the pages of a website as a flattened tree.
type PageType struct {
	DB *sql.DB
}

func (PageType) Name() string { return "page" }

func (t PageType) Build(ctx context.Context, opts Options) (Field, error) {
	if opts.WebsiteID == 0 {
		return Field{}, errors.New("website is required")
	}
	q := store.New(t.DB)

	pages, err := q.ListPagesByWebsite(ctx, opts.WebsiteID)
	if err != nil {
		return Field{}, fmt.Errorf("listing pages: %w", err)
	}
	intls, err := q.ListPageIntlsByWebsite(ctx, opts.WebsiteID)
	if err != nil {
		return Field{}, fmt.Errorf("listing page intls: %w", err)
	}
	fallback, _, err := websiteLocales(ctx, q, opts.WebsiteID)
	if err != nil {
		return Field{}, err
	}
	locale := opts.Locale
	if locale == "" {
		locale = fallback
	}

	byPage := make(map[int64][]store.PageIntl)
	for _, in := range intls {
		byPage[in.PageID] = append(byPage[in.PageID], in)
	}

	tree := service.BuildTree(pages, service.TreeOf[store.Page]{
		ID:       func(p store.Page) int64 { return p.ID },
		Parent:   func(p store.Page) sql.NullInt64 { return p.ParentID },
		Position: func(p store.Page) int64 { return p.Position },
	})

	f := newField(t.Name(), KindChoice, opts)
	var walk func(nodes []*service.Node[store.Page])
	walk = func(nodes []*service.Node[store.Page]) {
		for _, n := range nodes {
			if opts.ExcludeID != 0 && n.Item.ID == opts.ExcludeID {
				continue
			}
			f.Choices = append(f.Choices, Choice{
				Value: strconv.FormatInt(n.Item.ID, 10),
				Label: strings.Repeat(PageIndent, n.Depth) + pageTitle(n.Item, byPage[n.Item.ID], locale, fallback),
				Attributes: map[string]string{
					"data-depth":  strconv.Itoa(n.Depth),
					"data-online": strconv.FormatBool(n.Item.IsOnline),
				},
			})
			walk(n.Children)
		}
	}
	walk(tree)
	return f, nil
}

func pageTitle(p store.Page, intls []store.PageIntl, locale, fallback string) string {
	in, ok := model.PickIntl(intls, func(i store.PageIntl) string { return i.Locale }, locale, fallback)
	if ok && in.Title != "" {
		return in.Title
	}
	return p.AdminName
}

// websiteLocales returns the default locale and the active locales in order.
func websiteLocales(ctx context.Context, q *store.Queries, websiteID int64) (string, []store.Language, error) {
	langs, err := q.ListActiveLanguages(ctx, websiteID)
	if err != nil {
		return "", nil, fmt.Errorf("listing languages: %w", err)
	}
	def := ""
	for _, l := range langs {
		if l.IsDefault {
			def = l.Code
			break
		}
	}
	if def == "" && len(langs) > 0 {
		def = langs[0].Code
	}
	return def, langs, nil
}
