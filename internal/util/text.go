// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes tags, decodes entities and collapses whitespace.
func StripHTML(s string) string {
	s = htmlTagRegex.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// Fold lowercases s and strips accents, for accent-insensitive matching.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Truncate shortens plain text to at most maxLen runes, cutting at a word
// boundary when one is close and appending an ellipsis.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	cut := string(r[:maxLen])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// Excerpt returns about maxLen runes of the plain text of body, centered
// near the first word of query it contains.
func Excerpt(body, query string, maxLen int) string {
	text := []rune(StripHTML(body))
	if len(text) == 0 {
		return ""
	}

	folded := []rune(Fold(string(text)))
	first := -1
	if len(folded) == len(text) {
		hay := string(folded)
		for _, word := range strings.Fields(Fold(query)) {
			if idx := strings.Index(hay, word); idx != -1 {
				pos := len([]rune(hay[:idx]))
				if first == -1 || pos < first {
					first = pos
				}
			}
		}
	}

	if first == -1 {
		return Truncate(string(text), maxLen)
	}

	start := max(0, first-maxLen/3)
	end := min(len(text), start+maxLen)
	excerpt := string(text[start:end])
	if start > 0 {
		excerpt = "…" + excerpt
	}
	if end < len(text) {
		excerpt += "…"
	}
	return excerpt
}
