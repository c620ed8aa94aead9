// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
	"testing"
)

func TestRobotsBuilderBuildDefault(t *testing.T) {
	content := NewRobotsBuilder(RobotsConfig{SiteURL: "https://example.com/"}).Build()

	if !strings.HasPrefix(content, "User-agent: *\n") {
		t.Error("Build() should start with 'User-agent: *'")
	}
	for _, path := range DefaultDisallow {
		if !strings.Contains(content, "Disallow: "+path+"\n") {
			t.Errorf("Build() should disallow %q", path)
		}
	}
	if !strings.Contains(content, "Allow: /\n") {
		t.Error("Build() should contain 'Allow: /'")
	}
	if !strings.Contains(content, "Sitemap: https://example.com/sitemap.xml\n") {
		t.Errorf("Build() should reference the sitemap, got:\n%s", content)
	}
}

func TestRobotsBuilderBuildDisallowAll(t *testing.T) {
	content := NewRobotsBuilder(RobotsConfig{
		SiteURL:     "https://staging.example.com",
		DisallowAll: true,
	}).Build()

	if !strings.Contains(content, "Disallow: /\n") {
		t.Error("Build() with DisallowAll should contain 'Disallow: /'")
	}
	if strings.Contains(content, "Sitemap:") {
		t.Error("Build() with DisallowAll should not contain sitemap reference")
	}
	if strings.Contains(content, "Allow: /") {
		t.Error("Build() with DisallowAll should not contain 'Allow: /'")
	}
}

func TestRobotsBuilderExtraRules(t *testing.T) {
	tests := []struct {
		name  string
		rules string
	}{
		{"without newline", "Crawl-delay: 10"},
		{"with newline", "Crawl-delay: 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := NewRobotsBuilder(RobotsConfig{SiteURL: "https://example.com", ExtraRules: tt.rules}).Build()
			if !strings.Contains(content, "Crawl-delay: 10\n") {
				t.Error("Build() should contain extra rules ending with a newline")
			}
			if strings.Contains(content, "Crawl-delay: 10\n\n\n") {
				t.Error("Build() should not add extra newlines")
			}
		})
	}
}

func TestRobotsBuilderCustomPathsAndSitemaps(t *testing.T) {
	content := NewRobotsBuilder(RobotsConfig{
		SiteURL:       "https://example.com",
		DisallowPaths: []string{"/private"},
		Sitemaps:      []string{"/sitemap-en.xml", "/sitemap-fr.xml"},
	}).Build()

	if !strings.Contains(content, "Disallow: /private\n") {
		t.Error("Build() should include custom disallow paths")
	}
	for _, want := range []string{"Sitemap: https://example.com/sitemap-en.xml", "Sitemap: https://example.com/sitemap-fr.xml"} {
		if !strings.Contains(content, want) {
			t.Errorf("Build() should contain %q", want)
		}
	}
	if strings.Contains(content, "/sitemap.xml") {
		t.Error("Build() should not add the default sitemap when sitemaps are given")
	}
}

func TestRobotsBuilderWithoutSiteURL(t *testing.T) {
	content := NewRobotsBuilder(RobotsConfig{}).Build()
	if strings.Contains(content, "Sitemap:") {
		t.Error("Build() without a site url should not reference a sitemap")
	}
}
