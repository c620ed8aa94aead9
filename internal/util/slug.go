// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation and validation with Unicode normalization support.
package util

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// maxUniqueAttempts bounds the suffix search of UniqueSlug.
const maxUniqueAttempts = 1000

// Slugify converts a string to a URL-friendly slug.
// Accents are stripped first, remaining non-Latin scripts are transliterated
// to ASCII, then everything except lowercase letters, digits and hyphens
// is dropped.
func Slugify(s string) string {
	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	// Transliterate what is left (Cyrillic, Greek, CJK, ligatures)
	result = unidecode.Unidecode(result)

	result = strings.ToLower(result)

	// Spaces, underscores and slashes act as word separators
	result = strings.NewReplacer(" ", "-", "_", "-", "/", "-").Replace(result)

	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}

// UniqueSlug returns base, or base suffixed with -2, -3, ... until taken
// reports the candidate as free.
func UniqueSlug(base string, taken func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; i <= maxUniqueAttempts; i++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxUniqueAttempts)
}
