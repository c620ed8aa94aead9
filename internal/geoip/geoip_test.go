// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"net"
	"path/filepath"
	"testing"
)

func TestOpenWithoutPath(t *testing.T) {
	g, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\") error = %v", err)
	}
	if g.Enabled() {
		t.Error("Enabled() = true without a database")
	}
	if got := g.Country("8.8.8.8"); got != "" {
		t.Errorf("Country() = %q, want empty", got)
	}
	if err := g.Reload(); err != nil {
		t.Errorf("Reload() error = %v", err)
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	g, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("Open() should fail for a missing file")
	}
	if g == nil || g.Enabled() {
		t.Error("Open() should return a disabled lookup on error")
	}
}

func TestNilLookup(t *testing.T) {
	var g *Lookup
	if g.Country("1.2.3.4") != "" || g.Enabled() || g.Close() != nil {
		t.Error("nil Lookup should be inert")
	}
}

func TestIsPrivate(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"172.20.0.1", true},
		{"192.168.1.1", true},
		{"100.64.0.1", true},
		{"fd00::1", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		if got := IsPrivate(net.ParseIP(tt.ip)); got != tt.want {
			t.Errorf("IsPrivate(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}
