// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrNotFound is returned when a theme is not in the catalog.
var ErrNotFound = errors.New("theme not found")

// Manager keeps the catalog of themes found under one directory.
type Manager struct {
	themesDir string
	themes    map[string]*Theme
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewManager creates a new theme manager.
func NewManager(themesDir string, logger *slog.Logger) *Manager {
	return &Manager{
		themesDir: themesDir,
		themes:    make(map[string]*Theme),
		logger:    logger,
	}
}

// LoadThemes scans the themes directory and replaces the catalog.
// Directories without a readable theme.json are skipped with a warning.
func (m *Manager) LoadThemes() error {
	found := make(map[string]*Theme)

	entries, err := os.ReadDir(m.themesDir)
	if errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("themes directory does not exist", "path", m.themesDir)
		m.swap(found)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading themes directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		t, err := loadTheme(name, filepath.Join(m.themesDir, name))
		if err != nil {
			m.logger.Warn("failed to load theme", "theme", name, "error", err)
			continue
		}
		found[name] = t
		m.logger.Debug("loaded theme", "theme", name, "version", t.Config.Version)
	}

	m.swap(found)
	m.logger.Info("themes loaded", "count", len(found))
	return nil
}

func (m *Manager) swap(themes map[string]*Theme) {
	m.mu.Lock()
	m.themes = themes
	m.mu.Unlock()
}

func loadTheme(name, path string) (*Theme, error) {
	data, err := os.ReadFile(filepath.Join(path, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ConfigFile, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFile, err)
	}

	return &Theme{Name: name, Path: path, Config: cfg}, nil
}

// GetTheme returns a theme by name.
func (m *Manager) GetTheme(name string) (*Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.themes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}

// ListThemes returns the catalog sorted by directory name.
func (m *Manager) ListThemes() []*Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Theme, 0, len(m.themes))
	for _, t := range m.themes {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// ReloadTheme reloads a specific theme from disk.
func (m *Manager) ReloadTheme(name string) error {
	t, err := loadTheme(name, filepath.Join(m.themesDir, name))
	if err != nil {
		return fmt.Errorf("reloading theme: %w", err)
	}

	m.mu.Lock()
	m.themes[name] = t
	m.mu.Unlock()

	m.logger.Info("theme reloaded", "theme", name)
	return nil
}

// ThemesDir returns the themes directory path.
func (m *Manager) ThemesDir() string {
	return m.themesDir
}

// HasTheme checks if a theme exists.
func (m *Manager) HasTheme(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.themes[name]
	return ok
}

// ThemeCount returns the number of loaded themes.
func (m *Manager) ThemeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.themes)
}
