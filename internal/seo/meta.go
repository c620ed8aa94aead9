// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds page metadata, structured data, sitemaps and
// robots.txt for the public site.
package seo

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/olegiv/mcms-go/internal/util"
)

// DescriptionLength is the length descriptions are cut to.
const DescriptionLength = 160

// Meta holds the SEO metadata of one url.
type Meta struct {
	Locale        string          `json:"locale"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Canonical     string          `json:"canonical"`
	OGTitle       string          `json:"og_title"`
	OGDescription string          `json:"og_description"`
	OGImage       string          `json:"og_image,omitempty"`
	OGType        string          `json:"og_type"`
	OGSiteName    string          `json:"og_site_name"`
	OGURL         string          `json:"og_url"`
	Robots        string          `json:"robots"`
	TwitterCard   string          `json:"twitter_card"`
	TwitterSite   string          `json:"twitter_site,omitempty"`
	Alternates    []Alternate     `json:"alternates"`
	JSONLD        json.RawMessage `json:"json_ld,omitempty"`
}

// Alternate is one hreflang link.
type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// PageData is what an entity contributes to its metadata.
type PageData struct {
	Title           string
	Introduction    string
	Body            string
	Path            string
	MetaTitle       string
	MetaDescription string
	OGTitle         string
	OGDescription   string
	OGImageURL      string
	CanonicalURL    string
	NoIndex         bool
	NoFollow        bool
	Offline         bool
	Article         bool
	PublishedAt     *time.Time
	ModifiedAt      time.Time
}

// SiteConfig contains the website-wide settings.
type SiteConfig struct {
	SiteName       string
	SiteURL        string
	DefaultOGImage string
	TwitterHandle  string
}

// BuildMeta resolves the metadata of a page. Titles fall back from the
// meta title to the page title to the site name; descriptions from the
// meta description to the introduction to the truncated body.
func BuildMeta(page *PageData, site *SiteConfig) *Meta {
	meta := &Meta{
		OGType:      "website",
		TwitterCard: "summary_large_image",
		OGSiteName:  site.SiteName,
		TwitterSite: site.TwitterHandle,
		Alternates:  []Alternate{},
	}

	if page == nil {
		meta.Title = site.SiteName
		meta.OGTitle = site.SiteName
		meta.Canonical = strings.TrimSuffix(site.SiteURL, "/") + "/"
		meta.OGURL = meta.Canonical
		meta.Robots = buildRobotsDirective(false, false)
		meta.OGImage = makeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
		return meta
	}

	if page.Article {
		meta.OGType = "article"
	}

	switch {
	case page.MetaTitle != "":
		meta.Title = page.MetaTitle
	case page.Title != "":
		meta.Title = page.Title
	default:
		meta.Title = site.SiteName
	}
	meta.OGTitle = firstNonEmpty(page.OGTitle, meta.Title)

	switch {
	case page.MetaDescription != "":
		meta.Description = page.MetaDescription
	case strings.TrimSpace(util.StripHTML(page.Introduction)) != "":
		meta.Description = util.Truncate(util.StripHTML(page.Introduction), DescriptionLength)
	case page.Body != "":
		meta.Description = util.Truncate(util.StripHTML(page.Body), DescriptionLength)
	}
	meta.OGDescription = firstNonEmpty(page.OGDescription, meta.Description)

	meta.OGImage = makeAbsoluteURL(firstNonEmpty(page.OGImageURL, site.DefaultOGImage), site.SiteURL)

	if page.CanonicalURL != "" {
		meta.Canonical = makeAbsoluteURL(page.CanonicalURL, site.SiteURL)
	} else {
		meta.Canonical = makeAbsoluteURL(firstNonEmpty(page.Path, "/"), site.SiteURL)
	}
	meta.OGURL = meta.Canonical

	meta.Robots = buildRobotsDirective(page.NoIndex || page.Offline, page.NoFollow)
	return meta
}

// buildRobotsDirective creates the robots meta content from noindex/nofollow flags.
func buildRobotsDirective(noIndex, noFollow bool) string {
	var parts []string

	if noIndex {
		parts = append(parts, "noindex")
	} else {
		parts = append(parts, "index")
	}

	if noFollow {
		parts = append(parts, "nofollow")
	} else {
		parts = append(parts, "follow")
	}

	return strings.Join(parts, ",")
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string     `json:"@context"`
	Type             string     `json:"@type"`
	Headline         string     `json:"headline"`
	Description      string     `json:"description,omitempty"`
	Image            string     `json:"image,omitempty"`
	InLanguage       string     `json:"inLanguage,omitempty"`
	DatePublished    string     `json:"datePublished,omitempty"`
	DateModified     string     `json:"dateModified,omitempty"`
	Publisher        *OrgSchema `json:"publisher,omitempty"`
	MainEntityOfPage string     `json:"mainEntityOfPage,omitempty"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	Logo *ImageSchema `json:"logo,omitempty"`
}

// ImageSchema represents JSON-LD ImageObject structured data.
type ImageSchema struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

// BuildArticleSchema creates JSON-LD structured data for a page from its
// resolved metadata: an Article for dated content, a WebPage otherwise.
func BuildArticleSchema(page *PageData, meta *Meta, site *SiteConfig) json.RawMessage {
	if page == nil {
		return nil
	}

	article := ArticleSchema{
		Context:          "https://schema.org",
		Type:             "WebPage",
		Headline:         meta.Title,
		Description:      meta.Description,
		Image:            meta.OGImage,
		InLanguage:       meta.Locale,
		MainEntityOfPage: meta.Canonical,
	}

	if page.Article {
		article.Type = "Article"
	}
	if page.PublishedAt != nil {
		article.DatePublished = page.PublishedAt.Format(time.RFC3339)
	}
	if !page.ModifiedAt.IsZero() {
		article.DateModified = page.ModifiedAt.Format(time.RFC3339)
	}

	article.Publisher = &OrgSchema{
		Type: "Organization",
		Name: site.SiteName,
	}
	if site.DefaultOGImage != "" {
		article.Publisher.Logo = &ImageSchema{
			Type: "ImageObject",
			URL:  makeAbsoluteURL(site.DefaultOGImage, site.SiteURL),
		}
	}

	data, err := json.Marshal(article)
	if err != nil {
		return nil
	}
	return data
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// makeAbsoluteURL ensures a URL is absolute by prepending site URL if needed.
func makeAbsoluteURL(url, siteURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	siteURL = strings.TrimSuffix(siteURL, "/")
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return siteURL + url
}
