// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"with special characters", "Hello, World!", "hello-world"},
		{"with numbers", "Page 123", "page-123"},
		{"with accents", "Café résumé", "cafe-resume"},
		{"with multiple spaces", "Hello   World", "hello-world"},
		{"with hyphens", "Hello - World", "hello-world"},
		{"with underscores", "about_us", "about-us"},
		{"with leading/trailing spaces", "  Hello World  ", "hello-world"},
		{"all special characters", "!@#$%^&*()", ""},
		{"german umlauts", "Über München", "uber-munchen"},
		{"cyrillic", "Привет мир", "privet-mir"},
		{"sharp s", "Straße", "strasse"},
		{"empty string", "", ""},
		{"mixed case", "HeLLo WoRLd", "hello-world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid simple slug", "hello-world", true},
		{"valid slug with numbers", "page-123", true},
		{"valid numbers only", "123", true},
		{"invalid - empty", "", false},
		{"invalid - uppercase", "Hello-World", false},
		{"invalid - spaces", "hello world", false},
		{"invalid - starts with hyphen", "-hello", false},
		{"invalid - ends with hyphen", "hello-", false},
		{"invalid - consecutive hyphens", "hello--world", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSlug(tt.input)
			if result != tt.expected {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	used := map[string]bool{"news": true, "news-2": true}
	taken := func(s string) (bool, error) { return used[s], nil }

	got, err := UniqueSlug("news", taken)
	if err != nil {
		t.Fatalf("UniqueSlug() error = %v", err)
	}
	if got != "news-3" {
		t.Errorf("UniqueSlug() = %q, want %q", got, "news-3")
	}

	got, err = UniqueSlug("about", taken)
	if err != nil {
		t.Fatalf("UniqueSlug() error = %v", err)
	}
	if got != "about" {
		t.Errorf("UniqueSlug() = %q, want %q", got, "about")
	}

	boom := errors.New("boom")
	if _, err := UniqueSlug("x", func(string) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Errorf("UniqueSlug() error = %v, want %v", err, boom)
	}
}
