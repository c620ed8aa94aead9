// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/testutil"
)

func newTestService(t *testing.T) (*Service, testutil.Site) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	site := testutil.SeedSite(t, db)
	svc := NewService(db, Options{Logger: newTestLogger()})
	return svc, site
}

func nullParent(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

func TestPositionsStayContiguous(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"Press", "Events", "Jobs"} {
		c, err := svc.NewscastCategories.Create(ctx, store.NewscastCategory{WebsiteID: site.Website.ID, Name: name})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	require.NoError(t, svc.NewscastCategories.Delete(ctx, ids[1]))

	q := store.New(svc.DB())
	got, err := q.ListFamilyIDs(ctx, store.NewscastCategoryFamily, site.Website.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2]}, got)

	last, err := q.GetNewscastCategory(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, int64(2), last.Position)

	require.NoError(t, svc.NewscastCategories.Move(ctx, ids[2], 1))
	got, err = q.ListFamilyIDs(ctx, store.NewscastCategoryFamily, site.Website.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[2], ids[0]}, got)
}

func TestLinkLevels(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	menu, err := svc.Menus.Create(ctx, store.Menu{WebsiteID: site.Website.ID, Name: "Main", MaxLevel: 2})
	require.NoError(t, err)
	assert.Equal(t, "main", menu.Slug)

	home, err := svc.Links.Create(ctx, LinkRecord{Link: store.Link{MenuID: menu.ID, Title: "Home", TargetUrl: "/"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), home.Level)
	assert.Equal(t, "en", home.Locale)

	about, err := svc.Links.Create(ctx, LinkRecord{Link: store.Link{
		MenuID: menu.ID, ParentID: nullParent(home.ID), Title: "About", TargetUrl: "/about",
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), about.Level)
	assert.Equal(t, int64(1), about.Position)

	_, err = svc.Links.Create(ctx, LinkRecord{Link: store.Link{
		MenuID: menu.ID, ParentID: nullParent(about.ID), Title: "Team", TargetUrl: "/team",
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid), "want validation error, got %v", err)

	// A menu cannot shrink below its deepest link.
	menu.MaxLevel = 1
	_, err = svc.Menus.Update(ctx, menu)
	assert.True(t, errors.Is(err, ErrInvalid), "want validation error, got %v", err)

	// Moving About to the root puts it after Home.
	about.ParentID = sql.NullInt64{}
	moved, err := svc.Links.Update(ctx, LinkRecord{Link: about})
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved.Level)

	got, err := q.GetLink(ctx, about.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Position)
	assert.Equal(t, int64(1), got.Level)

	// A link cannot become its own descendant.
	child, err := svc.Links.Create(ctx, LinkRecord{Link: store.Link{
		MenuID: menu.ID, ParentID: nullParent(home.ID), Title: "Child", TargetUrl: "/child",
	}})
	require.NoError(t, err)
	home.ParentID = nullParent(child.ID)
	_, err = svc.Links.Update(ctx, LinkRecord{Link: home})
	assert.True(t, errors.Is(err, ErrInvalid), "want validation error, got %v", err)
}

func TestLinkDeleteLiftsChildren(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	menu, err := svc.Menus.Create(ctx, store.Menu{WebsiteID: site.Website.ID, Name: "Footer", MaxLevel: 3})
	require.NoError(t, err)
	parent, err := svc.Links.Create(ctx, LinkRecord{Link: store.Link{MenuID: menu.ID, Title: "Company", TargetUrl: "/company"}})
	require.NoError(t, err)
	child, err := svc.Links.Create(ctx, LinkRecord{Link: store.Link{MenuID: menu.ID, ParentID: nullParent(parent.ID), Title: "Jobs", TargetUrl: "/jobs"}})
	require.NoError(t, err)

	require.NoError(t, svc.Links.Delete(ctx, parent.ID))

	got, err := q.GetLink(ctx, child.ID)
	require.NoError(t, err)
	assert.False(t, got.ParentID.Valid)
	assert.Equal(t, int64(1), got.Level)
	assert.Equal(t, int64(1), got.Position)
}

func TestTableGrid(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	table, err := svc.Tables.Create(ctx, TableRecord{
		ContentTable: store.ContentTable{WebsiteID: site.Website.ID, Name: "Opening hours"},
		Cols:         2,
		Rows:         2,
	})
	require.NoError(t, err)
	assert.Equal(t, "opening-hours", table.Slug)

	cells, err := q.ListTableCells(ctx, table.ID)
	require.NoError(t, err)
	assert.Len(t, cells, 2*2*2, "one cell per col, row and locale")

	grid, err := Grid(ctx, q, table.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"", ""}, {"", ""}}, grid)

	// cells are ordered by row, col, locale: the first one is row 1, col 1, en.
	_, err = svc.Tables.SetCell(ctx, cells[0].ID, "Monday")
	require.NoError(t, err)

	row, err := svc.Tables.AddRow(ctx, table.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), row)
	grid, err = Grid(ctx, q, table.ID, "en")
	require.NoError(t, err)
	require.Len(t, grid, 3)
	assert.Equal(t, "Monday", grid[1][0])

	require.NoError(t, svc.Tables.MoveRow(ctx, table.ID, 2, 3))
	grid, err = Grid(ctx, q, table.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "Monday", grid[2][0])

	require.NoError(t, svc.Tables.RemoveRow(ctx, table.ID, 1))
	rows, err := q.ListTableRows(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, rows)

	col, err := svc.Tables.AddCol(ctx, table.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), col.Position)
	grid, err = Grid(ctx, q, table.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "Monday", grid[1][1])

	require.NoError(t, svc.Tables.RemoveCol(ctx, col.ID))
	cols, err := q.ListTableCols(ctx, table.ID)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, int64(1), cols[0].Position)
	assert.Equal(t, int64(2), cols[1].Position)

	fr, err := Grid(ctx, q, table.ID, "fr")
	require.NoError(t, err)
	assert.Equal(t, "", fr[1][0], "locales keep their own cells")
}

func TestTableGridFollowsLanguages(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	table, err := svc.Tables.Create(ctx, TableRecord{
		ContentTable: store.ContentTable{WebsiteID: site.Website.ID, Name: "Prices"},
		Cols:         2,
		Rows:         2,
	})
	require.NoError(t, err)

	countCells := func(locale string) (total, inLocale int) {
		cells, err := q.ListTableCells(ctx, table.ID)
		require.NoError(t, err)
		for _, c := range cells {
			if c.Locale == locale {
				inLocale++
			}
		}
		return len(cells), inLocale
	}

	_, err = svc.Languages.Create(ctx, store.Language{WebsiteID: site.Website.ID, Code: "de", IsActive: true})
	require.NoError(t, err)
	total, de := countCells("de")
	assert.Equal(t, 2*2*3, total)
	assert.Equal(t, 4, de)

	_, err = svc.Tables.AddCol(ctx, table.ID, 0)
	require.NoError(t, err)
	total, de = countCells("de")
	assert.Equal(t, 3*2*3, total)
	assert.Equal(t, 6, de)

	// An inactive language gets its cells once activated.
	it, err := svc.Languages.Create(ctx, store.Language{WebsiteID: site.Website.ID, Code: "it"})
	require.NoError(t, err)
	_, inactive := countCells("it")
	assert.Zero(t, inactive)

	it.IsActive = true
	_, err = svc.Languages.Update(ctx, it)
	require.NoError(t, err)
	total, active := countCells("it")
	assert.Equal(t, 6, active)
	assert.Equal(t, 3*2*4, total)

	// Updating an active language adds nothing twice.
	_, err = svc.Languages.Update(ctx, it)
	require.NoError(t, err)
	total, _ = countCells("it")
	assert.Equal(t, 3*2*4, total)

	grid, err := Grid(ctx, q, table.ID, "de")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"", "", ""}, {"", "", ""}}, grid)
}

func TestTableRowsNeedColumns(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()

	_, err := svc.Tables.Create(ctx, TableRecord{
		ContentTable: store.ContentTable{WebsiteID: site.Website.ID, Name: "Empty"},
		Rows:         1,
	})
	assert.True(t, errors.Is(err, ErrInvalid), "want validation error, got %v", err)
}

func TestFeatureValueLabelsPropagate(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	catalog, err := svc.Catalogs.Create(ctx, store.Catalog{WebsiteID: site.Website.ID, Name: "Furniture"})
	require.NoError(t, err)
	product, err := svc.Products.Create(ctx, ProductRecord{
		Product: store.Product{CatalogID: catalog.ID, Reference: "ch-01", IsOnline: true},
		Intls:   []Intl{{Locale: "en", Title: "Chair"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "CH-01", product.Reference)

	feature, err := svc.Features.Create(ctx, FeatureRecord{Feature: store.Feature{WebsiteID: site.Website.ID, Name: "Color", AsFilter: true}})
	require.NoError(t, err)
	red, err := svc.FeatureValues.Create(ctx, FeatureValueRecord{
		FeatureValue: store.FeatureValue{FeatureID: feature.ID, Label: "Red"},
		Labels:       map[string]string{"fr": "Rouge"},
	})
	require.NoError(t, err)

	row, err := svc.FeatureValueProducts.Create(ctx, FeatureValueProductRecord{FeatureValueProduct: store.FeatureValueProduct{
		ProductID: product.ID, FeatureID: feature.ID, ValueID: sql.NullInt64{Int64: red.ID, Valid: true},
	}})
	require.NoError(t, err)

	var pv ProductValue
	require.NoError(t, json.Unmarshal([]byte(row.JsonValues), &pv))
	assert.Equal(t, "color", pv.Feature)
	assert.Equal(t, "red", pv.Value)
	assert.Equal(t, map[string]string{"en": "Red", "fr": "Rouge"}, pv.Labels)

	_, err = svc.FeatureValues.Update(ctx, FeatureValueRecord{
		FeatureValue: store.FeatureValue{ID: red.ID, FeatureID: feature.ID, Slug: red.Slug, Label: "Scarlet"},
		Labels:       map[string]string{"fr": "Écarlate"},
	})
	require.NoError(t, err)

	stored, err := q.GetFeatureValueProduct(ctx, row.ID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stored.JsonValues), &pv))
	assert.Equal(t, map[string]string{"en": "Scarlet", "fr": "Écarlate"}, pv.Labels)

	// A value of another feature is rejected.
	size, err := svc.Features.Create(ctx, FeatureRecord{Feature: store.Feature{WebsiteID: site.Website.ID, Name: "Size"}})
	require.NoError(t, err)
	_, err = svc.FeatureValueProducts.Create(ctx, FeatureValueProductRecord{FeatureValueProduct: store.FeatureValueProduct{
		ProductID: product.ID, FeatureID: size.ID, ValueID: sql.NullInt64{Int64: red.ID, Valid: true},
	}})
	assert.True(t, errors.Is(err, ErrInvalid), "want validation error, got %v", err)
}

func TestFeatureValueDeleteKeepsCustomRows(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	catalog, err := svc.Catalogs.Create(ctx, store.Catalog{WebsiteID: site.Website.ID, Name: "Furniture"})
	require.NoError(t, err)
	product, err := svc.Products.Create(ctx, ProductRecord{
		Product: store.Product{CatalogID: catalog.ID, Reference: "tb-01", IsOnline: true},
		Intls:   []Intl{{Locale: "en", Title: "Table"}},
	})
	require.NoError(t, err)
	feature, err := svc.Features.Create(ctx, FeatureRecord{Feature: store.Feature{WebsiteID: site.Website.ID, Name: "Color"}})
	require.NoError(t, err)

	value := func(label string) store.FeatureValue {
		v, err := svc.FeatureValues.Create(ctx, FeatureValueRecord{FeatureValue: store.FeatureValue{FeatureID: feature.ID, Label: label}})
		require.NoError(t, err)
		return v
	}
	red, blue := value("Red"), value("Blue")

	attach := func(valueID int64, custom string) store.FeatureValueProduct {
		row, err := svc.FeatureValueProducts.Create(ctx, FeatureValueProductRecord{FeatureValueProduct: store.FeatureValueProduct{
			ProductID: product.ID, FeatureID: feature.ID, ValueID: sql.NullInt64{Int64: valueID, Valid: true}, CustomValue: custom,
		}})
		require.NoError(t, err)
		return row
	}
	bare := attach(red.ID, "")
	other := attach(blue.ID, "")
	custom := attach(red.ID, "Crimson")

	require.NoError(t, svc.FeatureValues.Delete(ctx, red.ID))

	_, err = q.GetFeatureValueProduct(ctx, bare.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	rows, err := q.ListFeatureValueProducts(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, other.ID, rows[0].ID)
	assert.EqualValues(t, 1, rows[0].Position)
	assert.Equal(t, custom.ID, rows[1].ID)
	assert.EqualValues(t, 2, rows[1].Position)

	kept := rows[1]
	assert.False(t, kept.ValueID.Valid)
	var pv ProductValue
	require.NoError(t, json.Unmarshal([]byte(kept.JsonValues), &pv))
	assert.True(t, pv.Custom)
	assert.Equal(t, map[string]string{"en": "Crimson", "fr": "Crimson"}, pv.Labels)

	// The surviving row is still valid for the manager.
	kept.CustomValue = "Burgundy"
	_, err = svc.FeatureValueProducts.Update(ctx, kept)
	require.NoError(t, err)
}

func TestProductIntlsCompleted(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	catalog, err := svc.Catalogs.Create(ctx, store.Catalog{WebsiteID: site.Website.ID, Name: "Shop"})
	require.NoError(t, err)
	product, err := svc.Products.Create(ctx, ProductRecord{
		Product: store.Product{CatalogID: catalog.ID, Reference: "T-1", IsOnline: true},
		Intls:   []Intl{{Locale: "en", Title: "Table", Body: "A *solid* table."}},
	})
	require.NoError(t, err)

	intls, err := q.ListProductIntls(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, intls, 2, "one intl per active locale")
	for _, in := range intls {
		assert.Equal(t, "Table", in.Title)
		assert.Contains(t, in.BodyHtml, "<em>solid</em>")
	}

	url, err := q.GetEntityUrl(ctx, model.EntityProduct, product.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "table", url.Code)
}

func TestListingAsEventsForcesOrder(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()

	cat, err := svc.NewscastCategories.Create(ctx, store.NewscastCategory{WebsiteID: site.Website.ID, Name: "Concerts"})
	require.NoError(t, err)

	l, err := svc.Listings.Create(ctx, ListingRecord{
		Listing: store.Listing{
			WebsiteID: site.Website.ID, EntityType: model.EntityNewscast,
			OrderBy: model.OrderTitleAsc, AsEvents: true,
		},
		CategoryIDs: []int64{cat.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStartDateAsc, l.OrderBy)
	assert.Equal(t, int64(DefaultItemsPerPage), l.ItemsPerPage)

	ids, err := store.New(svc.DB()).ListListingCategoryIDs(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{cat.ID}, ids)

	_, err = svc.Listings.Create(ctx, ListingRecord{
		Listing:     store.Listing{WebsiteID: site.Website.ID, EntityType: model.EntityProduct},
		CategoryIDs: []int64{cat.ID},
	})
	assert.True(t, errors.Is(err, ErrInvalid), "a newscast category cannot filter products, got %v", err)
}

func TestNewscastFuturePublicationStaysOffline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	site := testutil.SeedSite(t, db)
	svc := NewService(db, Options{Logger: newTestLogger(), Now: func() time.Time { return now }})
	ctx := context.Background()

	n, err := svc.Newscasts.Create(ctx, NewscastRecord{
		Newscast: store.Newscast{
			WebsiteID: site.Website.ID, IsOnline: true,
			PublicationDate: sql.NullTime{Time: now.Add(48 * time.Hour), Valid: true},
		},
		Intls: []Intl{{Locale: "en", Title: "Spring sale"}},
	})
	require.NoError(t, err)
	assert.False(t, n.IsOnline)

	_, err = svc.Newscasts.Create(ctx, NewscastRecord{
		Newscast: store.Newscast{
			WebsiteID: site.Website.ID,
			EndDate:   sql.NullTime{Time: now, Valid: true},
		},
		Intls: []Intl{{Locale: "en", Title: "No start"}},
	})
	assert.True(t, errors.Is(err, ErrInvalid), "want validation error, got %v", err)
}

func TestMediaRelationsKeepOneMain(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	page, err := svc.Pages.Create(ctx, PageRecord{
		Page:  store.Page{WebsiteID: site.Website.ID, AdminName: "Gallery"},
		Intls: []Intl{{Locale: "en", Title: "Gallery"}},
	})
	require.NoError(t, err)

	var medias []store.Media
	for _, name := range []string{"a.jpg", "b.jpg"} {
		m, err := q.CreateMedia(ctx, store.CreateMediaParams{
			WebsiteID: site.Website.ID, Uuid: name, Filename: name, Path: "media/" + name,
			MimeType: "image/jpeg", Width: 10, Height: 10, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		medias = append(medias, m)
	}

	first, err := svc.MediaRelations.Attach(ctx, MediaRelationRecord{MediaRelation: store.MediaRelation{
		EntityType: model.EntityPage, EntityID: page.ID, Locale: "en", MediaID: medias[0].ID,
	}})
	require.NoError(t, err)
	assert.True(t, first.IsMain, "the first media becomes main")

	second, err := svc.MediaRelations.Attach(ctx, MediaRelationRecord{MediaRelation: store.MediaRelation{
		EntityType: model.EntityPage, EntityID: page.ID, Locale: "en", MediaID: medias[1].ID, IsMain: true,
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Position)

	rels, err := q.ListMediaRelations(ctx, model.EntityPage, page.ID)
	require.NoError(t, err)
	mains := 0
	for _, r := range rels {
		if r.IsMain {
			mains++
			assert.Equal(t, second.ID, r.ID)
		}
	}
	assert.Equal(t, 1, mains)

	require.NoError(t, svc.MediaRelations.Detach(ctx, second.ID))
	rel, err := q.GetMediaRelation(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, rel.IsMain, "the remaining media takes over")
	assert.Equal(t, int64(1), rel.Position)
}

func TestSaveSeo(t *testing.T) {
	svc, site := newTestService(t)
	ctx := context.Background()
	q := store.New(svc.DB())

	page, err := svc.Pages.Create(ctx, PageRecord{
		Page:  store.Page{WebsiteID: site.Website.ID, IsOnline: true},
		Intls: []Intl{{Locale: "en", Title: "Contact"}},
	})
	require.NoError(t, err)
	u, err := q.GetEntityUrl(ctx, model.EntityPage, page.ID, "en")
	require.NoError(t, err)

	saved, err := svc.SaveSeo(ctx, store.UpsertSeoParams{UrlID: u.ID, MetaTitle: "  Reach us  ", NoIndex: true})
	require.NoError(t, err)
	assert.Equal(t, "Reach us", saved.MetaTitle)
	assert.True(t, saved.NoIndex)

	_, err = svc.SaveSeo(ctx, store.UpsertSeoParams{UrlID: u.ID, OgMediaID: sql.NullInt64{Int64: 999, Valid: true}})
	fields, ok := AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, fields, "og_media_id")

	_, err = svc.SaveSeo(ctx, store.UpsertSeoParams{UrlID: 12345})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestChangedRunsAfterCommit(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	site := testutil.SeedSite(t, db)

	type change struct {
		entity    string
		websiteID int64
	}
	var changes []change
	svc := NewService(db, Options{
		Logger: newTestLogger(),
		Changed: func(_ context.Context, entity string, websiteID int64) {
			changes = append(changes, change{entity, websiteID})
		},
	})
	ctx := context.Background()

	menu, err := svc.Menus.Create(ctx, store.Menu{WebsiteID: site.Website.ID, Name: "Footer"})
	require.NoError(t, err)
	require.NoError(t, svc.Menus.Delete(ctx, menu.ID))
	assert.Equal(t, []change{
		{model.EntityMenu, site.Website.ID},
		{model.EntityMenu, site.Website.ID},
	}, changes)

	// A rejected write reports nothing.
	_, err = svc.Menus.Create(ctx, store.Menu{WebsiteID: site.Website.ID})
	require.Error(t, err)
	assert.Len(t, changes, 2)
}
