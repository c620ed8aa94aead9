// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"sort"
	"time"
)

// XML namespaces of sitemap documents.
const (
	XMLNamespace      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	XHTMLNamespace    = "http://www.w3.org/1999/xhtml"
	XDefaultHreflang  = "x-default"
	sitemapDateFormat = time.RFC3339
)

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Valid change frequency values.
const (
	ChangeFreqAlways  ChangeFreq = "always"
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
	ChangeFreqNever   ChangeFreq = "never"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq  `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Alternates []XHTMLLink `xml:"xhtml:link"`
}

// XHTMLLink is an hreflang alternate of a sitemap url.
type XHTMLLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr,omitempty"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapIndex lists the sitemaps of a website.
type SitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	XMLNS    string         `xml:"xmlns,attr"`
	Sitemaps []IndexSitemap `xml:"sitemap"`
}

// IndexSitemap is one entry of a sitemap index.
type IndexSitemap struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Entry is one url to list, with its alternates keyed by locale. Paths
// are relative to the site url.
type Entry struct {
	Path       string
	UpdatedAt  time.Time
	ChangeFreq ChangeFreq
	Priority   string
	Alternates map[string]string
	// DefaultLocale, when set and present in Alternates, adds an
	// x-default alternate.
	DefaultLocale string
}

// SitemapBuilder builds sitemap XML from various content types.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
	xhtml   bool
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: siteURL,
		urls:    make([]SitemapURL, 0),
	}
}

// Add adds an entry to the sitemap.
func (b *SitemapBuilder) Add(e Entry) {
	url := SitemapURL{
		Loc:        makeAbsoluteURL(e.Path, b.siteURL),
		ChangeFreq: e.ChangeFreq,
		Priority:   e.Priority,
	}
	if !e.UpdatedAt.IsZero() {
		url.LastMod = e.UpdatedAt.UTC().Format(sitemapDateFormat)
	}

	locales := make([]string, 0, len(e.Alternates))
	for locale := range e.Alternates {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		url.Alternates = append(url.Alternates, XHTMLLink{
			Rel: "alternate", Hreflang: locale, Href: makeAbsoluteURL(e.Alternates[locale], b.siteURL),
		})
	}
	if p, ok := e.Alternates[e.DefaultLocale]; ok && len(e.Alternates) > 1 {
		url.Alternates = append(url.Alternates, XHTMLLink{
			Rel: "alternate", Hreflang: XDefaultHreflang, Href: makeAbsoluteURL(p, b.siteURL),
		})
	}
	if len(url.Alternates) > 0 {
		b.xhtml = true
	}
	b.urls = append(b.urls, url)
}

// Len returns the number of urls added.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}
	if b.xhtml {
		sitemap.XHTML = XHTMLNamespace
	}
	return marshalXML(sitemap)
}

// BuildIndex generates a sitemap index document.
func BuildIndex(entries []IndexSitemap) ([]byte, error) {
	return marshalXML(SitemapIndex{XMLNS: XMLNamespace, Sitemaps: entries})
}

func marshalXML(v any) ([]byte, error) {
	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, xmlBytes...), nil
}
