// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Namespaces of the typed caches built on the shared backend.
const (
	NamespaceDomains = "domains"
	NamespaceSitemap = "sitemap"
	NamespaceSeo     = "seo"
	NamespaceCatalog = "catalog"
	NamespaceListing = "listing"
	NamespaceMenus   = "menus"
)

// Manager owns the shared backend and knows every namespace registered on
// it, so content writes can drop all entries of one website at once.
type Manager struct {
	backend    Cacher
	kind       string
	defaultTTL time.Duration

	mu         sync.Mutex
	namespaces []string
}

// NewManager wraps a backend. kind is "memory" or "redis" and only reported.
func NewManager(backend Cacher, kind string, defaultTTL time.Duration) *Manager {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Manager{backend: backend, kind: kind, defaultTTL: defaultTTL}
}

// NewMemoryManager is a manager over a fresh memory backend.
func NewMemoryManager(defaultTTL time.Duration) *Manager {
	return NewManager(NewSimpleMemoryCache(defaultTTL), "memory", defaultTTL)
}

// Register creates a typed cache in namespace. A zero ttl uses the manager default.
func Register[T any](m *Manager, namespace string, ttl time.Duration) *TypedCache[T] {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	if !slices.Contains(m.namespaces, namespace) {
		m.namespaces = append(m.namespaces, namespace)
	}
	m.mu.Unlock()
	return NewTypedCache[T](m.backend, namespace, ttl)
}

// WebsiteKey builds the key of an entry belonging to one website.
// Entries keyed this way are dropped by InvalidateWebsite.
func WebsiteKey(websiteID int64, parts ...string) string {
	key := strconv.FormatInt(websiteID, 10) + ":"
	return key + strings.Join(parts, ":")
}

// Backend returns the shared backend.
func (m *Manager) Backend() Cacher {
	return m.backend
}

// Kind returns the backend name.
func (m *Manager) Kind() string {
	return m.kind
}

// Namespaces returns the registered namespaces.
func (m *Manager) Namespaces() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.namespaces)
}

// InvalidateWebsite drops the entries of one website in every namespace.
func (m *Manager) InvalidateWebsite(ctx context.Context, websiteID int64) error {
	var errs []error
	for _, ns := range m.Namespaces() {
		if err := m.backend.DeleteByPrefix(ctx, ns+":"+WebsiteKey(websiteID)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	slog.Debug("cache invalidated", "website_id", websiteID)
	return nil
}

// InvalidateNamespace drops a whole namespace.
func (m *Manager) InvalidateNamespace(ctx context.Context, namespace string) error {
	return m.backend.DeleteByPrefix(ctx, namespace+":")
}

// ClearAll empties the backend and resets its counters.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.backend.Clear(ctx); err != nil {
		return err
	}
	if sp, ok := m.backend.(StatsProvider); ok {
		sp.ResetStats()
	}
	slog.Info("cache cleared", "backend", m.kind)
	return nil
}

// Stats returns backend statistics, zero when the backend keeps none.
func (m *Manager) Stats() Stats {
	if sp, ok := m.backend.(StatsProvider); ok {
		return sp.Stats()
	}
	return Stats{}
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
