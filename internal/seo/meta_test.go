// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func testSite() *SiteConfig {
	return &SiteConfig{
		SiteName:       "My Site",
		SiteURL:        "https://example.com",
		DefaultOGImage: "/images/og-default.jpg",
		TwitterHandle:  "@mysite",
	}
}

func TestBuildMetaHomepage(t *testing.T) {
	meta := BuildMeta(nil, testSite())

	if meta.Title != "My Site" {
		t.Errorf("Title = %q, want %q", meta.Title, "My Site")
	}
	if meta.OGType != "website" {
		t.Errorf("OGType = %q, want %q", meta.OGType, "website")
	}
	if meta.Canonical != "https://example.com/" {
		t.Errorf("Canonical = %q, want %q", meta.Canonical, "https://example.com/")
	}
	if meta.TwitterSite != "@mysite" {
		t.Errorf("TwitterSite = %q, want %q", meta.TwitterSite, "@mysite")
	}
	if meta.Robots != "index,follow" {
		t.Errorf("Robots = %q, want %q", meta.Robots, "index,follow")
	}
	if meta.OGImage != "https://example.com/images/og-default.jpg" {
		t.Errorf("OGImage = %q, want %q", meta.OGImage, "https://example.com/images/og-default.jpg")
	}
}

func TestBuildMetaPage(t *testing.T) {
	page := &PageData{
		Title:           "About Us",
		Path:            "/about",
		MetaTitle:       "About Our Company",
		MetaDescription: "Learn about our company",
		OGImageURL:      "/images/about-og.jpg",
	}

	meta := BuildMeta(page, testSite())

	if meta.Title != "About Our Company" {
		t.Errorf("Title = %q, want %q", meta.Title, "About Our Company")
	}
	if meta.OGTitle != "About Our Company" {
		t.Errorf("OGTitle = %q, want %q", meta.OGTitle, "About Our Company")
	}
	if meta.Description != "Learn about our company" {
		t.Errorf("Description = %q, want %q", meta.Description, "Learn about our company")
	}
	if meta.Canonical != "https://example.com/about" {
		t.Errorf("Canonical = %q, want %q", meta.Canonical, "https://example.com/about")
	}
	if meta.OGURL != meta.Canonical {
		t.Errorf("OGURL = %q, want the canonical url", meta.OGURL)
	}
	if meta.OGImage != "https://example.com/images/about-og.jpg" {
		t.Errorf("OGImage = %q, want %q", meta.OGImage, "https://example.com/images/about-og.jpg")
	}
}

func TestBuildMetaTitleFallback(t *testing.T) {
	tests := []struct {
		name string
		page PageData
		want string
	}{
		{"meta title", PageData{MetaTitle: "Meta", Title: "Title"}, "Meta"},
		{"page title", PageData{Title: "Title"}, "Title"},
		{"site name", PageData{}, "My Site"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildMeta(&tt.page, testSite()).Title; got != tt.want {
				t.Errorf("Title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildMetaDescriptionFallback(t *testing.T) {
	long := strings.Repeat("word ", 60)
	tests := []struct {
		name string
		page PageData
		want string
	}{
		{"meta description", PageData{MetaDescription: "Meta", Introduction: "Intro"}, "Meta"},
		{"introduction", PageData{Introduction: "<p>Short <b>intro</b></p>", Body: "Body"}, "Short intro"},
		{"blank introduction", PageData{Introduction: "<p> </p>", Body: "<p>The body</p>"}, "The body"},
		{"nothing", PageData{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildMeta(&tt.page, testSite()).Description; got != tt.want {
				t.Errorf("Description = %q, want %q", got, tt.want)
			}
		})
	}

	meta := BuildMeta(&PageData{Body: long}, testSite())
	if n := len([]rune(meta.Description)); n > DescriptionLength+1 {
		t.Errorf("Description has %d runes, want at most %d", n, DescriptionLength+1)
	}
	if !strings.HasSuffix(meta.Description, "…") {
		t.Errorf("Description = %q, want an ellipsis", meta.Description)
	}
}

func TestBuildMetaOGOverrides(t *testing.T) {
	meta := BuildMeta(&PageData{
		Title:         "Title",
		OGTitle:       "Share me",
		OGDescription: "Shared text",
		Introduction:  "Intro",
	}, testSite())

	if meta.OGTitle != "Share me" {
		t.Errorf("OGTitle = %q, want %q", meta.OGTitle, "Share me")
	}
	if meta.OGDescription != "Shared text" {
		t.Errorf("OGDescription = %q, want %q", meta.OGDescription, "Shared text")
	}
	if meta.Description != "Intro" {
		t.Errorf("Description = %q, want %q", meta.Description, "Intro")
	}
}

func TestBuildMetaPageFallbackToDefaultOGImage(t *testing.T) {
	meta := BuildMeta(&PageData{Title: "Test"}, testSite())
	if meta.OGImage != "https://example.com/images/og-default.jpg" {
		t.Errorf("OGImage = %q, want the site default", meta.OGImage)
	}

	site := testSite()
	site.DefaultOGImage = ""
	if got := BuildMeta(&PageData{Title: "Test"}, site).OGImage; got != "" {
		t.Errorf("OGImage = %q, want empty", got)
	}
}

func TestBuildMetaPageWithCanonicalURL(t *testing.T) {
	page := &PageData{
		Title:        "Test",
		Path:         "/test",
		CanonicalURL: "https://other.com/canonical",
	}

	meta := BuildMeta(page, testSite())

	if meta.Canonical != "https://other.com/canonical" {
		t.Errorf("Canonical = %q, want %q", meta.Canonical, "https://other.com/canonical")
	}
}

func TestBuildMetaPageRobotsDirective(t *testing.T) {
	tests := []struct {
		name     string
		noIndex  bool
		noFollow bool
		offline  bool
		want     string
	}{
		{"index,follow", false, false, false, "index,follow"},
		{"noindex,follow", true, false, false, "noindex,follow"},
		{"index,nofollow", false, true, false, "index,nofollow"},
		{"noindex,nofollow", true, true, false, "noindex,nofollow"},
		{"offline", false, false, true, "noindex,follow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &PageData{
				Title:    "Test",
				NoIndex:  tt.noIndex,
				NoFollow: tt.noFollow,
				Offline:  tt.offline,
			}

			meta := BuildMeta(page, testSite())

			if meta.Robots != tt.want {
				t.Errorf("Robots = %q, want %q", meta.Robots, tt.want)
			}
		})
	}
}

func TestBuildMetaAbsoluteURLHandling(t *testing.T) {
	page := &PageData{
		Title:      "Test",
		OGImageURL: "https://cdn.example.com/image.jpg",
	}

	meta := BuildMeta(page, testSite())

	if meta.OGImage != "https://cdn.example.com/image.jpg" {
		t.Errorf("OGImage = %q, want %q", meta.OGImage, "https://cdn.example.com/image.jpg")
	}
}

func TestBuildArticleSchema(t *testing.T) {
	published := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	modified := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	page := &PageData{
		Title:       "Spring sale",
		Path:        "/fr/soldes",
		Article:     true,
		PublishedAt: &published,
		ModifiedAt:  modified,
	}
	site := testSite()
	meta := BuildMeta(page, site)
	meta.Locale = "fr"

	raw := BuildArticleSchema(page, meta, site)
	if raw == nil {
		t.Fatal("BuildArticleSchema() returned nil")
	}

	var schema ArticleSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		t.Fatalf("BuildArticleSchema() produced invalid JSON: %v", err)
	}
	if schema.Context != "https://schema.org" {
		t.Errorf("@context = %q", schema.Context)
	}
	if schema.Type != "Article" {
		t.Errorf("@type = %q, want Article", schema.Type)
	}
	if schema.Headline != "Spring sale" {
		t.Errorf("headline = %q, want %q", schema.Headline, "Spring sale")
	}
	if schema.InLanguage != "fr" {
		t.Errorf("inLanguage = %q, want fr", schema.InLanguage)
	}
	if schema.DatePublished != "2025-03-01T08:00:00Z" {
		t.Errorf("datePublished = %q", schema.DatePublished)
	}
	if schema.DateModified != "2025-03-02T09:30:00Z" {
		t.Errorf("dateModified = %q", schema.DateModified)
	}
	if schema.MainEntityOfPage != "https://example.com/fr/soldes" {
		t.Errorf("mainEntityOfPage = %q", schema.MainEntityOfPage)
	}
	if schema.Publisher == nil || schema.Publisher.Name != "My Site" {
		t.Fatalf("publisher = %+v, want My Site", schema.Publisher)
	}
	if schema.Publisher.Logo == nil || schema.Publisher.Logo.URL != "https://example.com/images/og-default.jpg" {
		t.Errorf("publisher logo = %+v", schema.Publisher.Logo)
	}
}

func TestBuildArticleSchemaWebPage(t *testing.T) {
	page := &PageData{Title: "About"}
	site := &SiteConfig{SiteName: "My Site", SiteURL: "https://example.com"}

	var schema ArticleSchema
	if err := json.Unmarshal(BuildArticleSchema(page, BuildMeta(page, site), site), &schema); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if schema.Type != "WebPage" {
		t.Errorf("@type = %q, want WebPage", schema.Type)
	}
	if schema.DatePublished != "" {
		t.Errorf("datePublished = %q, want empty", schema.DatePublished)
	}
	if schema.Publisher.Logo != nil {
		t.Error("publisher logo should be omitted without a default image")
	}
}

func TestBuildArticleSchemaNilPage(t *testing.T) {
	if got := BuildArticleSchema(nil, &Meta{}, testSite()); got != nil {
		t.Errorf("BuildArticleSchema(nil) = %s, want nil", got)
	}
}

func TestMakeAbsoluteURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		siteURL string
		want    string
	}{
		{"relative with slash", "/images/test.jpg", "https://example.com", "https://example.com/images/test.jpg"},
		{"relative without slash", "images/test.jpg", "https://example.com", "https://example.com/images/test.jpg"},
		{"already absolute http", "http://other.com/image.jpg", "https://example.com", "http://other.com/image.jpg"},
		{"already absolute https", "https://cdn.com/image.jpg", "https://example.com", "https://cdn.com/image.jpg"},
		{"empty url", "", "https://example.com", ""},
		{"site url with trailing slash", "/image.jpg", "https://example.com/", "https://example.com/image.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := makeAbsoluteURL(tt.url, tt.siteURL)
			if got != tt.want {
				t.Errorf("makeAbsoluteURL(%q, %q) = %q, want %q", tt.url, tt.siteURL, got, tt.want)
			}
		})
	}
}
