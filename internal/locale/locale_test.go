// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package locale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/testutil"
)

func TestSplitPath(t *testing.T) {
	codes := []string{"en", "fr", "pt-BR"}
	tests := []struct {
		path, prefix, code string
	}{
		{"/", "", ""},
		{"", "", ""},
		{"/about-us", "", "about-us"},
		{"/fr", "fr", ""},
		{"/fr/", "fr", ""},
		{"/fr/a-propos", "fr", "a-propos"},
		{"/FR/a-propos/", "fr", "a-propos"},
		{"/pt-br/sobre", "pt-BR", "sobre"},
		{"/french/page", "", "french/page"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			prefix, code := SplitPath(tt.path, codes)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	codes := []string{"en", "fr"}
	tests := []struct {
		header, want string
	}{
		{"", ""},
		{"fr-CA,fr;q=0.9,en;q=0.8", "fr"},
		{"en-GB", "en"},
		{"de-DE,fr;q=0.5", "fr"},
		{"de-DE", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchAcceptLanguage(tt.header, codes))
		})
	}
}

func TestMatchCountry(t *testing.T) {
	codes := []string{"en", "fr", "de"}
	tests := []struct {
		country, want string
	}{
		{"FR", "fr"},
		{"US", "en"},
		{"AT", "de"},
		{"JP", ""},
		{"??", ""},
	}
	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchCountry(tt.country, codes))
		})
	}
}

func TestResolve(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	site := testutil.SeedSite(t, db)
	svc := NewService(db, nil, testutil.TestLoggerSilent())
	websiteID := site.Website.ID

	tests := []struct {
		name       string
		req        Request
		wantLocale string
		wantSource string
		wantCode   string
	}{
		{"query wins", Request{Query: "fr", Path: "/about-us"}, "fr", SourceQuery, "about-us"},
		{"unknown query ignored", Request{Query: "de", Path: "/fr/x"}, "fr", SourcePrefix, "x"},
		{"prefix", Request{Path: "/fr/a-propos", AcceptLanguage: "en"}, "fr", SourcePrefix, "a-propos"},
		{"unprefixed page is default", Request{Path: "/about-us", AcceptLanguage: "fr"}, "en", SourceDefault, "about-us"},
		{"root uses header", Request{Path: "/", AcceptLanguage: "fr-BE,fr;q=0.8"}, "fr", SourceHeader, ""},
		{"root private ip skips geoip", Request{Path: "/", IP: "10.0.0.1", DomainLocale: "fr"}, "fr", SourceDomain, ""},
		{"root default", Request{Path: "/"}, "en", SourceDefault, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.WebsiteID = websiteID
			got, err := svc.Resolve(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLocale, got.Locale)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestResolveWithoutLocales(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewService(db, nil, testutil.TestLoggerSilent())

	_, err := svc.Resolve(context.Background(), Request{WebsiteID: 42, Path: "/"})
	assert.ErrorIs(t, err, ErrNoLocale)
}

func TestLocalesAndDefault(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	site := testutil.SeedSite(t, db, "fr", "en")
	svc := NewService(db, nil, testutil.TestLoggerSilent())

	locales, err := svc.Locales(context.Background(), site.Website.ID)
	require.NoError(t, err)
	assert.Equal(t, []Locale{
		{Code: "fr", Name: "fr", IsDefault: true},
		{Code: "en", Name: "en"},
	}, locales)

	def, err := svc.Default(context.Background(), site.Website.ID)
	require.NoError(t, err)
	assert.Equal(t, "fr", def)
}

func TestAlternates(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	site := testutil.SeedSite(t, db)
	ctx := context.Background()
	content := lifecycle.NewService(db, lifecycle.Options{Logger: testutil.TestLoggerSilent()})

	page, err := content.Pages.Create(ctx, lifecycle.PageRecord{
		Page: store.Page{WebsiteID: site.Website.ID, IsOnline: true},
		Intls: []lifecycle.Intl{
			{Locale: "en", Title: "Contact"},
			{Locale: "fr", Title: "Nous contacter"},
		},
	})
	require.NoError(t, err)

	svc := NewService(db, nil, testutil.TestLoggerSilent())
	alts, err := svc.Alternates(ctx, site.Website.ID, model.EntityPage, page.ID, "fr")
	require.NoError(t, err)
	assert.Equal(t, []Alternate{
		{Locale: "en", Name: "en", URL: "/contact"},
		{Locale: "fr", Name: "fr", URL: "/fr/nous-contacter", Current: true},
	}, alts)

	draft, err := content.Pages.Create(ctx, lifecycle.PageRecord{
		Page:  store.Page{WebsiteID: site.Website.ID, IsOnline: false},
		Intls: []lifecycle.Intl{{Locale: "en", Title: "Draft"}},
	})
	require.NoError(t, err)
	alts, err = svc.Alternates(ctx, site.Website.ID, model.EntityPage, draft.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "/", alts[0].URL)
	assert.True(t, alts[0].Fallback)
	assert.Equal(t, "/fr/", alts[1].URL)
}
