// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Example.COM", "example.com"},
		{"https://www.example.com/fr/", "www.example.com"},
		{"example.com:8080", "example.com"},
		{"  shop.example.com.  ", "shop.example.com"},
		{"http://localhost:3000?x=1", "localhost"},
		{"[::1]:80", "::1"},
	}
	for _, tt := range tests {
		if got := NormalizeHost(tt.in); got != tt.want {
			t.Errorf("NormalizeHost(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
