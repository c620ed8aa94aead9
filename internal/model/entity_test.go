// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestScreenFallbacks(t *testing.T) {
	tests := []struct {
		screen string
		want   []string
	}{
		{ScreenMobile, []string{"mobile", "tablet", "desktop"}},
		{ScreenTablet, []string{"tablet", "desktop"}},
		{ScreenDesktop, []string{"desktop"}},
	}

	for _, tt := range tests {
		got := ScreenFallbacks[tt.screen]
		if len(got) != len(tt.want) {
			t.Fatalf("ScreenFallbacks[%q] = %v, want %v", tt.screen, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ScreenFallbacks[%q][%d] = %q, want %q", tt.screen, i, got[i], tt.want[i])
			}
		}
	}

	if IsScreen("watch") {
		t.Error("IsScreen(watch) = true, want false")
	}
}

func TestIsRoutable(t *testing.T) {
	for _, e := range []string{EntityPage, EntityProduct, EntityNewscast} {
		if !IsRoutable(e) {
			t.Errorf("IsRoutable(%q) = false, want true", e)
		}
	}
	for _, e := range []string{EntityMenu, EntityMedia, ""} {
		if IsRoutable(e) {
			t.Errorf("IsRoutable(%q) = true, want false", e)
		}
	}
}
