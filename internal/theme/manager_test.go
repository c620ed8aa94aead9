// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// testLogger returns a logger configured for tests (errors only).
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// writeTheme creates a theme directory with the given config.
func writeTheme(t *testing.T, dir, name string, cfg Config) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create theme dir: %v", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, ConfigFile), data, 0o644); err != nil {
		t.Fatalf("failed to write theme.json: %v", err)
	}
}

func TestLoadThemes(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "light", Config{Name: "Light", Version: "1.0.0"})
	writeTheme(t, dir, "dark", Config{Version: "2.0.0"})

	// Not a theme: no theme.json.
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Plain files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, testLogger())
	if err := m.LoadThemes(); err != nil {
		t.Fatalf("LoadThemes: %v", err)
	}

	if m.ThemeCount() != 2 {
		t.Fatalf("ThemeCount() = %d, want 2", m.ThemeCount())
	}
	list := m.ListThemes()
	if list[0].Name != "dark" || list[1].Name != "light" {
		t.Errorf("ListThemes() order = %s, %s", list[0].Name, list[1].Name)
	}
	if list[0].Label() != "dark" {
		t.Errorf("Label() fallback = %q, want dark", list[0].Label())
	}
	if list[1].Label() != "Light" {
		t.Errorf("Label() = %q, want Light", list[1].Label())
	}
}

func TestLoadThemesMissingDirectory(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"), testLogger())
	if err := m.LoadThemes(); err != nil {
		t.Fatalf("LoadThemes: %v", err)
	}
	if m.ThemeCount() != 0 {
		t.Errorf("ThemeCount() = %d, want 0", m.ThemeCount())
	}
}

func TestInvalidThemeJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, ConfigFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, testLogger())
	if err := m.LoadThemes(); err != nil {
		t.Fatalf("LoadThemes: %v", err)
	}
	if m.HasTheme("broken") {
		t.Error("theme with invalid theme.json was loaded")
	}
}

func TestGetTheme(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "light", Config{Name: "Light"})

	m := NewManager(dir, testLogger())
	if err := m.LoadThemes(); err != nil {
		t.Fatal(err)
	}

	th, err := m.GetTheme("light")
	if err != nil {
		t.Fatalf("GetTheme: %v", err)
	}
	if th.Path != filepath.Join(dir, "light") {
		t.Errorf("Path = %q", th.Path)
	}

	if _, err := m.GetTheme("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTheme(missing) error = %v, want ErrNotFound", err)
	}
}

func TestReloadTheme(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "light", Config{Version: "1.0.0"})

	m := NewManager(dir, testLogger())
	if err := m.LoadThemes(); err != nil {
		t.Fatal(err)
	}

	writeTheme(t, dir, "light", Config{Version: "1.1.0"})
	if err := m.ReloadTheme("light"); err != nil {
		t.Fatalf("ReloadTheme: %v", err)
	}
	th, _ := m.GetTheme("light")
	if th.Config.Version != "1.1.0" {
		t.Errorf("Version = %q, want 1.1.0", th.Config.Version)
	}

	if err := m.ReloadTheme("missing"); err == nil {
		t.Error("ReloadTheme(missing) returned nil error")
	}
}

func TestThemeSettings(t *testing.T) {
	th := &Theme{Config: Config{Settings: []Setting{
		{Key: "primary", Type: "color", Default: "#336699"},
	}}}

	if !th.HasSetting("primary") {
		t.Error("HasSetting(primary) = false")
	}
	if th.HasSetting("secondary") {
		t.Error("HasSetting(secondary) = true")
	}
	if got := th.GetSettingDefault("primary"); got != "#336699" {
		t.Errorf("GetSettingDefault() = %q", got)
	}
	if got := th.GetSettingDefault("secondary"); got != "" {
		t.Errorf("GetSettingDefault(missing) = %q", got)
	}
}
