// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func TestNewSitemapBuilder(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	if builder == nil {
		t.Fatal("NewSitemapBuilder() returned nil")
	}
	if builder.Len() != 0 {
		t.Errorf("Len() = %d, want 0", builder.Len())
	}
}

func TestSitemapBuilderAdd(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com/")
	updatedAt := time.Date(2025, 1, 15, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	builder.Add(Entry{
		Path:       "/about-us",
		UpdatedAt:  updatedAt,
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.8",
	})

	if builder.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", builder.Len())
	}
	url := builder.urls[0]
	if url.Loc != "https://example.com/about-us" {
		t.Errorf("Loc = %q, want %q", url.Loc, "https://example.com/about-us")
	}
	if url.LastMod != "2025-01-15T09:00:00Z" {
		t.Errorf("LastMod = %q, want UTC time", url.LastMod)
	}
	if url.Priority != "0.8" {
		t.Errorf("Priority = %q, want %q", url.Priority, "0.8")
	}
	if len(url.Alternates) != 0 {
		t.Errorf("Alternates = %v, want none", url.Alternates)
	}
}

func TestSitemapBuilderAlternates(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	builder.Add(Entry{
		Path:          "/fr/a-propos",
		Alternates:    map[string]string{"fr": "/fr/a-propos", "en": "/about", "de": "/de/uber-uns"},
		DefaultLocale: "en",
	})

	got := builder.urls[0].Alternates
	want := []XHTMLLink{
		{Rel: "alternate", Hreflang: "de", Href: "https://example.com/de/uber-uns"},
		{Rel: "alternate", Hreflang: "en", Href: "https://example.com/about"},
		{Rel: "alternate", Hreflang: "fr", Href: "https://example.com/fr/a-propos"},
		{Rel: "alternate", Hreflang: XDefaultHreflang, Href: "https://example.com/about"},
	}
	if len(got) != len(want) {
		t.Fatalf("Alternates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Alternates[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSitemapBuilderNoDefaultWithoutDefaultLocale(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	builder.Add(Entry{
		Path:          "/about",
		Alternates:    map[string]string{"fr": "/fr/a-propos", "en": "/about"},
		DefaultLocale: "de",
	})
	for _, link := range builder.urls[0].Alternates {
		if link.Hreflang == XDefaultHreflang {
			t.Error("x-default should only be added when the default locale has an alternate")
		}
	}
}

func TestSitemapBuilderBuild(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	builder.Add(Entry{Path: "/", Priority: "1.0", ChangeFreq: ChangeFreqDaily})
	builder.Add(Entry{
		Path:          "/about",
		Alternates:    map[string]string{"en": "/about", "fr": "/fr/a-propos"},
		DefaultLocale: "en",
	})

	data, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	xmlStr := string(data)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`,
		`xmlns:xhtml="http://www.w3.org/1999/xhtml"`,
		`<loc>https://example.com/</loc>`,
		`<xhtml:link rel="alternate" hreflang="fr" href="https://example.com/fr/a-propos"></xhtml:link>`,
		`hreflang="x-default"`,
	} {
		if !strings.Contains(xmlStr, want) {
			t.Errorf("Build() should contain %q, got:\n%s", want, xmlStr)
		}
	}

	var parsed Sitemap
	if err := xml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Build() produced invalid XML: %v", err)
	}
	if len(parsed.URLs) != 2 {
		t.Errorf("parsed %d urls, want 2", len(parsed.URLs))
	}
}

func TestSitemapBuilderBuildWithoutAlternates(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	builder.Add(Entry{Path: "/"})

	data, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if strings.Contains(string(data), "xmlns:xhtml") {
		t.Error("Build() should omit the xhtml namespace when no url has alternates")
	}
}

func TestBuildIndex(t *testing.T) {
	data, err := BuildIndex([]IndexSitemap{
		{Loc: "https://example.com/sitemap-en.xml", LastMod: "2025-01-15T10:00:00Z"},
		{Loc: "https://example.com/sitemap-fr.xml"},
	})
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	xmlStr := string(data)
	for _, want := range []string{
		"<sitemapindex",
		"<loc>https://example.com/sitemap-en.xml</loc>",
		"<lastmod>2025-01-15T10:00:00Z</lastmod>",
		"<loc>https://example.com/sitemap-fr.xml</loc>",
	} {
		if !strings.Contains(xmlStr, want) {
			t.Errorf("BuildIndex() should contain %q", want)
		}
	}
	if strings.Count(xmlStr, "<lastmod>") != 1 {
		t.Error("BuildIndex() should omit empty lastmod")
	}
}

func TestSitemapPath(t *testing.T) {
	if got := SitemapPath("fr"); got != "/sitemap-fr.xml" {
		t.Errorf("SitemapPath(fr) = %q", got)
	}
}
