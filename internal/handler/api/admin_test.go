// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/widget"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestWebsiteCRUD(t *testing.T) {
	env := newTestEnv(t)

	rr := env.admin(http.MethodPost, "/websites", map[string]any{
		"name": "Shop", "site_url": "https://shop.test", "default_locale": "de",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created WebsiteView
	decodeData(t, rr, &created)
	assert.Equal(t, "shop", created.Slug)
	assert.Equal(t, "de", created.DefaultLocale)

	rr = env.admin(http.MethodGet, "/websites", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var websites []store.Website
	meta := decodeData(t, rr, &websites)
	assert.Len(t, websites, 2)
	assert.Equal(t, int64(2), meta.Total)

	rr = env.admin(http.MethodPatch, "/websites/"+itoa(created.ID), map[string]any{"name": "Shop 2"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated WebsiteView
	decodeData(t, rr, &updated)
	assert.Equal(t, "Shop 2", updated.Name)
	assert.Equal(t, "https://shop.test", updated.SiteUrl)

	rr = env.admin(http.MethodDelete, "/websites/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.admin(http.MethodGet, "/websites/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDomainServedAfterCreate(t *testing.T) {
	env := newTestEnv(t)
	wid := itoa(env.site.Website.ID)

	rr := env.admin(http.MethodPost, "/websites/"+wid+"/domains", map[string]any{"host": "fr.example.test", "locale": "fr"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.doHost("fr.example.test", http.MethodGet, "/api/v1/locales", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp LocalesResponse
	decodeData(t, rr, &resp)
	assert.Equal(t, "fr", resp.Current)
	assert.Len(t, resp.Locales, 2)

	rr = env.doHost("other.test", http.MethodGet, "/api/v1/locales", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, rr, &resp)
	assert.Equal(t, "en", resp.Current, "unknown hosts get the default domain's locale")
}

func TestColorsMoveAndWidget(t *testing.T) {
	env := newTestEnv(t)
	wid := itoa(env.site.Website.ID)

	var ids []int64
	for _, c := range []struct{ name, hex string }{{"Red", "f00"}, {"Blue", "#0000ff"}} {
		rr := env.admin(http.MethodPost, "/websites/"+wid+"/colors", map[string]any{
			"name": c.name, "hex": c.hex, "is_active": true,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var color store.Color
		decodeData(t, rr, &color)
		ids = append(ids, color.ID)
	}

	rr := env.admin(http.MethodPost, "/colors/"+itoa(ids[1])+"/move", MoveRequest{Target: 1})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = env.admin(http.MethodGet, "/websites/"+wid+"/colors", nil)
	var colors []store.Color
	decodeData(t, rr, &colors)
	require.Len(t, colors, 2)
	assert.Equal(t, "Blue", colors[0].Name)
	assert.Equal(t, "#f00", colors[1].Hex)

	rr = env.admin(http.MethodPost, "/colors/"+itoa(ids[1])+"/move", MoveRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = env.admin(http.MethodGet, "/widgets/color?name=background", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var field widget.Field
	decodeData(t, rr, &field)
	assert.Equal(t, "background", field.Name)
	require.Len(t, field.Choices, 2)
	assert.Equal(t, "blue", field.Choices[0].Value)
}

func TestColorValidation(t *testing.T) {
	env := newTestEnv(t)
	rr := env.admin(http.MethodPost, "/websites/"+itoa(env.site.Website.ID)+"/colors", map[string]any{
		"name": "Bad", "hex": "nope",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeError(t, rr).Error.Details, "hex")
}

func TestPageWithIntlsAndSeo(t *testing.T) {
	env := newTestEnv(t)
	wid := itoa(env.site.Website.ID)

	rr := env.do(http.MethodPost, "/api/v1/admin/websites/"+wid+"/pages", model.PermissionContent, map[string]any{
		"is_online": true,
		"intls": []lifecycle.Intl{
			{Locale: "en", Title: "About us", Code: "about"},
			{Locale: "fr", Title: "A propos", Code: "a-propos"},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var page PageView
	decodeData(t, rr, &page)
	assert.Equal(t, "About us", page.AdminName)
	assert.Nil(t, page.ParentID)
	require.Len(t, page.Intls, 2)

	u, err := store.New(env.db).GetEntityUrl(context.Background(), model.EntityPage, page.ID, "fr")
	require.NoError(t, err)
	rr = env.admin(http.MethodPut, "/urls/"+itoa(u.ID)+"/seo", SeoRequest{MetaTitle: "  Qui sommes-nous  "})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(http.MethodGet, "/api/v1/seo?path=/fr/a-propos", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var meta struct {
		Locale string `json:"locale"`
		Title  string `json:"title"`
	}
	decodeData(t, rr, &meta)
	assert.Equal(t, "fr", meta.Locale)
	assert.Equal(t, "Qui sommes-nous", meta.Title)

	rr = env.do(http.MethodGet, "/api/v1/seo?path=/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/admin/pages/"+itoa(page.ID)+"/layout", model.PermissionContent, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var layout LayoutView
	decodeData(t, rr, &layout)
	assert.Equal(t, page.ID, layout.PageID)
}

func TestPageValidation(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodPost, "/api/v1/admin/websites/"+itoa(env.site.Website.ID)+"/pages", model.PermissionContent, map[string]any{})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "is required", decodeError(t, rr).Error.Details["admin_name"])
}

func TestMenuLinksAndPublicMenu(t *testing.T) {
	env := newTestEnv(t)

	rr := env.admin(http.MethodPost, "/websites/"+itoa(env.site.Website.ID)+"/menus", map[string]any{"name": "Main", "max_level": 2})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var menu store.Menu
	decodeData(t, rr, &menu)
	assert.Equal(t, "main", menu.Slug)

	rr = env.admin(http.MethodPost, "/menus/"+itoa(menu.ID)+"/links", map[string]any{
		"title": "Home", "target_url": "/", "is_online": true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var home LinkView
	decodeData(t, rr, &home)

	rr = env.admin(http.MethodPost, "/menus/"+itoa(menu.ID)+"/links", map[string]any{
		"title": "Team", "target_url": "/team", "is_online": true, "parent_id": home.ID,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var team LinkView
	decodeData(t, rr, &team)
	require.NotNil(t, team.ParentID)
	assert.Equal(t, home.ID, *team.ParentID)
	assert.Equal(t, int64(2), team.Level)

	rr = env.admin(http.MethodGet, "/menus/"+itoa(menu.ID)+"/links", nil)
	var links []LinkView
	decodeData(t, rr, &links)
	assert.Len(t, links, 2)

	rr = env.do(http.MethodGet, "/api/v1/menus/main", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var public struct {
		Items []struct {
			Title    string `json:"title"`
			Children []struct {
				Title string `json:"title"`
			} `json:"children"`
		} `json:"items"`
	}
	decodeData(t, rr, &public)
	require.Len(t, public.Items, 1)
	assert.Equal(t, "Home", public.Items[0].Title)
	require.Len(t, public.Items[0].Children, 1)
	assert.Equal(t, "Team", public.Items[0].Children[0].Title)
}

func TestNewsletterSubscription(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/v1/admin/websites/"+itoa(env.site.Website.ID)+"/newsletters", model.PermissionContent,
		map[string]any{"name": "Weekly"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var n store.Newsletter
	decodeData(t, rr, &n)

	rr = env.do(http.MethodPost, "/api/v1/newsletter/weekly/subscribe?locale=fr", "", SubscribeRequest{Email: "Jane@Example.com"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(http.MethodPost, "/api/v1/newsletter/weekly/subscribe", "", SubscribeRequest{Email: "jane@example.com"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp SubscribeResponse
	decodeData(t, rr, &resp)
	assert.True(t, resp.Subscribed)
	assert.False(t, resp.Created)

	rr = env.do(http.MethodPost, "/api/v1/newsletter/weekly/subscribe", "", SubscribeRequest{Email: "not an email"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = env.do(http.MethodPost, "/api/v1/newsletter/monthly/subscribe", "", SubscribeRequest{Email: "jane@example.com"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/admin/newsletters/"+itoa(n.ID)+"/emails", model.PermissionContent, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var emails []store.NewsletterEmail
	decodeData(t, rr, &emails)
	require.Len(t, emails, 1)
	assert.Equal(t, "jane@example.com", emails[0].Email)
	assert.Equal(t, "fr", emails[0].Locale)
}

func TestTableGrid(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/v1/admin/websites/"+itoa(env.site.Website.ID)+"/tables", model.PermissionContent,
		map[string]any{"name": "Prices", "cols": 2, "rows": 2})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var table TableView
	decodeData(t, rr, &table)

	grid := func() TableGrid {
		rr := env.do(http.MethodGet, "/api/v1/admin/tables/"+itoa(table.ID)+"/grid", model.PermissionContent, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var g TableGrid
		decodeData(t, rr, &g)
		return g
	}

	g := grid()
	assert.Len(t, g.Cols, 2)
	assert.Len(t, g.Rows, 2)

	rr = env.do(http.MethodPost, "/api/v1/admin/tables/"+itoa(table.ID)+"/rows", model.PermissionContent, map[string]any{"target": 1})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	g = grid()
	assert.Len(t, g.Rows, 3)
	assert.Len(t, g.Cells, 3)

	rr = env.do(http.MethodDelete, "/api/v1/admin/tables/"+itoa(table.ID)+"/rows/1", model.PermissionContent, nil)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
	assert.Len(t, grid().Rows, 2)
}

func TestCatalogSearch(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/v1/admin/websites/"+itoa(env.site.Website.ID)+"/catalogs", model.PermissionContent,
		map[string]any{"name": "Shoes"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var cat store.Catalog
	decodeData(t, rr, &cat)

	for _, p := range []struct{ ref, title string }{{"r1", "Runner"}, {"w1", "Walker"}} {
		rr = env.do(http.MethodPost, "/api/v1/admin/catalogs/"+itoa(cat.ID)+"/products", model.PermissionContent, map[string]any{
			"reference": p.ref,
			"is_online": true,
			"intls":     []lifecycle.Intl{{Locale: "en", Title: p.title}},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr = env.do(http.MethodGet, "/api/v1/catalog/search?catalog=shoes", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res struct {
		Total int `json:"total"`
	}
	meta := decodeData(t, rr, &res)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, int64(2), meta.Total)

	rr = env.do(http.MethodGet, "/api/v1/catalog/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(http.MethodGet, "/api/v1/catalog/search?catalog=hats", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPIKeys(t *testing.T) {
	env := newTestEnv(t)

	rr := env.admin(http.MethodPost, "/api-keys", map[string]any{
		"name": "importer", "permissions": []string{model.PermissionMedia},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var key APIKeyResponse
	decodeData(t, rr, &key)
	require.NotEmpty(t, key.Key)
	assert.Equal(t, []string{model.PermissionMedia}, key.Permissions)

	env.keys["importer"] = key.Key
	rr = env.do(http.MethodGet, "/api/v1/admin/relations?entity_type=page&entity_id=1", "importer", nil)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.admin(http.MethodGet, "/api-keys", nil)
	var keys []APIKeyResponse
	decodeData(t, rr, &keys)
	for _, k := range keys {
		assert.Empty(t, k.Key)
	}

	rr = env.admin(http.MethodDelete, "/api-keys/"+itoa(key.ID), nil)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = env.do(http.MethodGet, "/api/v1/admin/relations?entity_type=page&entity_id=1", "importer", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.admin(http.MethodPost, "/api-keys", map[string]any{"name": "x", "permissions": []string{"root"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
