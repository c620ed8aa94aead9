// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and small value helpers used
// throughout the application.
package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"slices"
	"time"
)

// API permissions
const (
	PermissionAdmin   = "admin"
	PermissionContent = "content:write"
	PermissionMedia   = "media:write"
)

// APIKeyPrefixLength is the number of leading characters kept in clear.
const APIKeyPrefixLength = 8

// AllPermissions returns all available API permissions.
func AllPermissions() []string {
	return []string{
		PermissionAdmin,
		PermissionContent,
		PermissionMedia,
	}
}

// GenerateAPIKey generates a new random API key.
// Returns the raw key (to show user once) and the key prefix.
func GenerateAPIKey() (rawKey string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	rawKey = base64.URLEncoding.EncodeToString(bytes)
	prefix = rawKey[:APIKeyPrefixLength]

	return rawKey, prefix, nil
}

// HashAPIKey creates a SHA-256 hash of the API key for storage.
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// ParsePermissions decodes the JSON permissions column.
func ParsePermissions(raw string) []string {
	var perms []string
	if raw == "" || raw == "[]" {
		return perms
	}
	_ = json.Unmarshal([]byte(raw), &perms)
	return perms
}

// PermissionsToJSON converts a slice of permissions to a JSON string.
func PermissionsToJSON(perms []string) string {
	if len(perms) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(perms)
	return string(data)
}

// HasPermission reports whether the permission list grants perm.
// The admin permission grants everything.
func HasPermission(perms []string, perm string) bool {
	return slices.Contains(perms, PermissionAdmin) || slices.Contains(perms, perm)
}

// APIKeyUsable reports whether a key is active and not expired at now.
func APIKeyUsable(active bool, expiresAt time.Time, now time.Time) bool {
	if !active {
		return false
	}
	return expiresAt.IsZero() || now.Before(expiresAt)
}
