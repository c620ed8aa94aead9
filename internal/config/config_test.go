// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/mcms.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/mcms.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.ThumbQuality != 85 {
		t.Errorf("ThumbQuality = %d, want 85", cfg.ThumbQuality)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without MCMS_REDIS_URL")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "MCMS_DB_PATH", "/custom/path.db")
	setEnv(t, "MCMS_SERVER_HOST", "0.0.0.0")
	setEnv(t, "MCMS_SERVER_PORT", "3000")
	setEnv(t, "MCMS_ENV", "production")
	setEnv(t, "MCMS_PUBLIC_DIR", "/srv/public")
	setEnv(t, "MCMS_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "MCMS_JOB_SCHEDULES", "sitemaps=0 */6 * * *;events=0,30 4 * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true in production")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with MCMS_REDIS_URL set")
	}
	if got, want := cfg.UploadsPath(), filepath.Join("/srv/public", "uploads"); got != want {
		t.Errorf("UploadsPath() = %q, want %q", got, want)
	}
	if got, want := cfg.ThumbsPath(), filepath.Join("/srv/public", "thumbnails"); got != want {
		t.Errorf("ThumbsPath() = %q, want %q", got, want)
	}
	if got := cfg.JobSchedules["sitemaps"]; got != "0 */6 * * *" {
		t.Errorf("JobSchedules[sitemaps] = %q, want %q", got, "0 */6 * * *")
	}
	if got := cfg.JobSchedules["events"]; got != "0,30 4 * * *" {
		t.Errorf("JobSchedules[events] = %q, want %q", got, "0,30 4 * * *")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port too high", "MCMS_SERVER_PORT", "70000"},
		{"quality zero", "MCMS_THUMB_QUALITY", "0"},
		{"quality too high", "MCMS_THUMB_QUALITY", "101"},
		{"negative rate", "MCMS_API_RATE_LIMIT", "-1"},
		{"zero burst", "MCMS_API_RATE_BURST", "0"},
		{"unknown env", "MCMS_ENV", "staging"},
		{"not a number", "MCMS_SERVER_PORT", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s: expected error", tt.key, tt.value)
			}
		})
	}
}
