// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package theme catalogs the front themes available on disk. A theme is a
// directory under the themes root holding a theme.json descriptor.
package theme

// ConfigFile is the descriptor every theme directory must contain.
const ConfigFile = "theme.json"

// Config represents the configuration loaded from theme.json.
type Config struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Screenshot  string    `json:"screenshot"`
	Settings    []Setting `json:"settings"`
}

// Setting represents a configurable option for a theme.
type Setting struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Type    string   `json:"type"` // text, color, image, select
	Default string   `json:"default"`
	Options []string `json:"options,omitempty"`
}

// Theme is a theme found on disk.
type Theme struct {
	Name   string // directory name, used as identifier
	Path   string
	Config Config
}

// Label returns the display name, falling back to the directory name.
func (t *Theme) Label() string {
	if t.Config.Name != "" {
		return t.Config.Name
	}
	return t.Name
}

func (t *Theme) findSetting(key string) *Setting {
	for i := range t.Config.Settings {
		if t.Config.Settings[i].Key == key {
			return &t.Config.Settings[i]
		}
	}
	return nil
}

// HasSetting returns true if the theme has a setting with the given key.
func (t *Theme) HasSetting(key string) bool {
	return t.findSetting(key) != nil
}

// GetSettingDefault returns the default value for a setting.
func (t *Theme) GetSettingDefault(key string) string {
	if s := t.findSetting(key); s != nil {
		return s.Default
	}
	return ""
}
