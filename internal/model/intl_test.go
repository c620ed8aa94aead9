// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

type fakeIntl struct {
	locale string
	title  string
}

func TestPickIntl(t *testing.T) {
	items := []fakeIntl{{"de", "Hallo"}, {"en", "Hello"}, {"fr", "Bonjour"}}
	localeOf := func(i fakeIntl) string { return i.locale }

	tests := []struct {
		name     string
		locale   string
		fallback string
		want     string
	}{
		{"exact", "fr", "en", "Bonjour"},
		{"fallback", "es", "en", "Hello"},
		{"first when nothing matches", "es", "it", "Hallo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickIntl(items, localeOf, tt.locale, tt.fallback)
			if !ok {
				t.Fatal("PickIntl() ok = false")
			}
			if got.title != tt.want {
				t.Errorf("PickIntl() = %q, want %q", got.title, tt.want)
			}
		})
	}

	if _, ok := PickIntl(nil, localeOf, "en", "en"); ok {
		t.Error("PickIntl(nil) ok = true, want false")
	}
}
