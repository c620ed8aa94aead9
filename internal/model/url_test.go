// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestLocalePath(t *testing.T) {
	tests := []struct {
		locale string
		code   string
		want   string
	}{
		{"en", "about", "/about"},
		{"fr", "a-propos", "/fr/a-propos"},
		{"en", "", "/"},
		{"fr", "", "/fr/"},
		{"", "/news/", "/news"},
	}
	for _, tt := range tests {
		if got := LocalePath(tt.locale, "en", tt.code); got != tt.want {
			t.Errorf("LocalePath(%q, en, %q) = %q, want %q", tt.locale, tt.code, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	if got := AbsoluteURL("https://example.test/", "/fr/a"); got != "https://example.test/fr/a" {
		t.Errorf("AbsoluteURL() = %q", got)
	}
}
