// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAPIKey(t *testing.T) {
	rawKey, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}

	if len(rawKey) < 32 {
		t.Errorf("GenerateAPIKey() rawKey length = %d, want >= 32", len(rawKey))
	}

	if len(prefix) != APIKeyPrefixLength {
		t.Errorf("GenerateAPIKey() prefix length = %d, want %d", len(prefix), APIKeyPrefixLength)
	}

	if !strings.HasPrefix(rawKey, prefix) {
		t.Errorf("GenerateAPIKey() prefix %q is not prefix of rawKey %q", prefix, rawKey)
	}

	rawKey2, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() second call error = %v", err)
	}
	if rawKey == rawKey2 {
		t.Error("GenerateAPIKey() generated identical keys")
	}
}

func TestHashAPIKey(t *testing.T) {
	key := "test-api-key-12345"
	hash := HashAPIKey(key)

	if len(hash) != 64 {
		t.Errorf("HashAPIKey() length = %d, want 64", len(hash))
	}
	if hash != HashAPIKey(key) {
		t.Error("HashAPIKey() is not deterministic")
	}
	if hash == HashAPIKey("different-key") {
		t.Error("HashAPIKey() produced same hash for different keys")
	}
}

func TestPermissionsRoundTrip(t *testing.T) {
	if got := PermissionsToJSON(nil); got != "[]" {
		t.Errorf("PermissionsToJSON(nil) = %q, want []", got)
	}

	perms := ParsePermissions(PermissionsToJSON([]string{PermissionContent, PermissionMedia}))
	if len(perms) != 2 || perms[0] != PermissionContent || perms[1] != PermissionMedia {
		t.Errorf("ParsePermissions() = %v", perms)
	}

	if got := ParsePermissions("not json"); len(got) != 0 {
		t.Errorf("ParsePermissions(invalid) = %v, want empty", got)
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name  string
		perms []string
		perm  string
		want  bool
	}{
		{"exact", []string{PermissionContent}, PermissionContent, true},
		{"missing", []string{PermissionMedia}, PermissionContent, false},
		{"admin grants all", []string{PermissionAdmin}, PermissionMedia, true},
		{"empty", nil, PermissionAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.perms, tt.perm); got != tt.want {
				t.Errorf("HasPermission(%v, %q) = %v, want %v", tt.perms, tt.perm, got, tt.want)
			}
		})
	}
}

func TestAPIKeyUsable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if !APIKeyUsable(true, time.Time{}, now) {
		t.Error("active key without expiry should be usable")
	}
	if APIKeyUsable(false, time.Time{}, now) {
		t.Error("inactive key should not be usable")
	}
	if APIKeyUsable(true, now.Add(-time.Minute), now) {
		t.Error("expired key should not be usable")
	}
	if !APIKeyUsable(true, now.Add(time.Hour), now) {
		t.Error("key expiring later should be usable")
	}
}
