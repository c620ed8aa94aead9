// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestRelease(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"", "dev"},
		{"unknown", "dev"},
	}
	for _, tt := range tests {
		if got := (Info{Version: tt.version}).Release(); got != tt.want {
			t.Errorf("Release(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if got := (Info{Version: "v2.0.1"}).UserAgent(); got != "mCMS/2.0.1" {
		t.Errorf("UserAgent() = %q", got)
	}
	// Zero value before ldflags injection.
	if got := (Info{}).UserAgent(); got != "mCMS/dev" {
		t.Errorf("zero value UserAgent() = %q", got)
	}
}

func TestString(t *testing.T) {
	info := Info{Version: "v1.0.0", GitCommit: "abc1234", BuildTime: "2025-01-30T12:00:00Z"}
	want := "mcms 1.0.0 (commit: abc1234, built: 2025-01-30T12:00:00Z)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := (Info{}).String(); got != "mcms dev (commit: unknown, built: unknown)" {
		t.Errorf("zero value String() = %q", got)
	}
}
