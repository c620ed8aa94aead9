// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content turns editor input into publishable HTML and plain text.
package content

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts markdown bodies and sanitizes rich text. It is safe for
// concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewRenderer returns a renderer with GitHub flavoured markdown and the
// user generated content policy.
func NewRenderer() *Renderer {
	ugc := bluemonday.UGCPolicy()
	ugc.AllowAttrs("class").Globally()
	ugc.RequireNoFollowOnLinks(false)

	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		ugc:    ugc,
		strict: bluemonday.StrictPolicy(),
	}
}

// Markdown renders src to sanitized HTML.
func (r *Renderer) Markdown(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return r.ugc.Sanitize(buf.String()), nil
}

// Sanitize strips unsafe markup from editor HTML.
func (r *Renderer) Sanitize(s string) string {
	return r.ugc.Sanitize(s)
}

// PlainText removes every tag and collapses whitespace.
func (r *Renderer) PlainText(s string) string {
	text := html.UnescapeString(r.strict.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns the plain text of s cut to at most max runes on a word
// boundary, with an ellipsis when something was cut.
func (r *Renderer) Excerpt(s string, max int) string {
	return Truncate(r.PlainText(s), max)
}

// Truncate cuts text to at most max runes, preferring the last space.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
