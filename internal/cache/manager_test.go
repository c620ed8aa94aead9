// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_InvalidateWebsite(t *testing.T) {
	m := NewMemoryManager(time.Hour)
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	seo := Register[string](m, NamespaceSeo, 0)
	sitemap := Register[string](m, NamespaceSitemap, time.Minute)

	require.NoError(t, seo.Set(ctx, WebsiteKey(1, "en", "home"), "site1"))
	require.NoError(t, seo.Set(ctx, WebsiteKey(12, "en", "home"), "site12"))
	require.NoError(t, sitemap.Set(ctx, WebsiteKey(1, "en"), "<urlset/>"))

	require.NoError(t, m.InvalidateWebsite(ctx, 1))

	_, ok := seo.Get(ctx, WebsiteKey(1, "en", "home"))
	assert.False(t, ok)
	_, ok = sitemap.Get(ctx, WebsiteKey(1, "en"))
	assert.False(t, ok)

	v, ok := seo.Get(ctx, WebsiteKey(12, "en", "home"))
	assert.True(t, ok)
	assert.Equal(t, "site12", v)
}

func TestManager_RegisterDeduplicatesNamespaces(t *testing.T) {
	m := NewMemoryManager(time.Hour)
	defer func() { _ = m.Close() }()

	Register[int](m, NamespaceCatalog, 0)
	Register[int](m, NamespaceCatalog, 0)
	Register[int](m, NamespaceListing, 0)

	assert.Equal(t, []string{NamespaceCatalog, NamespaceListing}, m.Namespaces())
}

func TestManager_ClearAllResetsStats(t *testing.T) {
	m := NewMemoryManager(time.Hour)
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	c := Register[string](m, NamespaceMenus, 0)
	require.NoError(t, c.Set(ctx, "1:main", "x"))
	_, _ = c.Get(ctx, "1:main")

	require.NoError(t, m.ClearAll(ctx))

	stats := m.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Items)
	assert.Equal(t, "memory", m.Kind())
}

func TestWebsiteKey(t *testing.T) {
	assert.Equal(t, "3:", WebsiteKey(3))
	assert.Equal(t, "3:fr:products", WebsiteKey(3, "fr", "products"))
}
