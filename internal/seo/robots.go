// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
)

// DefaultDisallow lists the paths crawlers never need.
var DefaultDisallow = []string{
	"/api/v1/admin",
	"/api/v1/newsletter",
}

// RobotsConfig holds configuration for robots.txt generation.
type RobotsConfig struct {
	SiteURL       string   // Base URL for sitemap reference
	DisallowAll   bool     // Block all crawlers (for staging sites)
	ExtraRules    string   // Additional custom rules
	DisallowPaths []string // Paths to disallow on top of DefaultDisallow
	Sitemaps      []string // Sitemap paths; defaults to /sitemap.xml
}

// RobotsBuilder builds robots.txt content.
type RobotsBuilder struct {
	config RobotsConfig
}

// NewRobotsBuilder creates a new robots.txt builder.
func NewRobotsBuilder(config RobotsConfig) *RobotsBuilder {
	return &RobotsBuilder{config: config}
}

// Build generates the robots.txt content.
func (b *RobotsBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("User-agent: *\n")

	if b.config.DisallowAll {
		sb.WriteString("Disallow: /\n")
	} else {
		paths := append([]string{}, DefaultDisallow...)
		paths = append(paths, b.config.DisallowPaths...)
		for _, path := range paths {
			sb.WriteString("Disallow: ")
			sb.WriteString(path)
			sb.WriteString("\n")
		}
		sb.WriteString("Allow: /\n")
	}

	if b.config.ExtraRules != "" {
		sb.WriteString("\n")
		sb.WriteString(b.config.ExtraRules)
		if !strings.HasSuffix(b.config.ExtraRules, "\n") {
			sb.WriteString("\n")
		}
	}

	if b.config.SiteURL != "" && !b.config.DisallowAll {
		sitemaps := b.config.Sitemaps
		if len(sitemaps) == 0 {
			sitemaps = []string{"/sitemap.xml"}
		}
		sb.WriteString("\n")
		for _, s := range sitemaps {
			sb.WriteString("Sitemap: ")
			sb.WriteString(makeAbsoluteURL(s, b.config.SiteURL))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
