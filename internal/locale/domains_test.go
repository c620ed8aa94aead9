// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package locale

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/lifecycle"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/testutil"
)

func TestResolverRebuildWritesFile(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	site := testutil.SeedSite(t, db)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", DomainsFile)

	r := NewResolver(db, path, nil, testutil.TestLoggerSilent())
	require.NoError(t, r.Rebuild(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var idx DomainIndex
	require.NoError(t, json.Unmarshal(data, &idx))
	assert.Equal(t, Target{WebsiteID: site.Website.ID, Locale: "en", Host: "example.test"}, idx.Hosts["example.test"])
	assert.Equal(t, site.Website.ID, idx.Fallback.WebsiteID)

	got, err := r.Resolve(ctx, "EXAMPLE.test:443")
	require.NoError(t, err)
	assert.Equal(t, site.Website.ID, got.WebsiteID)

	www, err := r.Resolve(ctx, "www.example.test")
	require.NoError(t, err)
	assert.Equal(t, "example.test", www.Host)

	host, ok := r.PrimaryHost(ctx, site.Website.ID)
	assert.True(t, ok)
	assert.Equal(t, "example.test", host)
}

func TestResolverLoadsFileFirst(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	path := filepath.Join(t.TempDir(), DomainsFile)

	idx := DomainIndex{
		Hosts:   map[string]Target{"cached.test": {WebsiteID: 7, Locale: "fr", Host: "cached.test"}},
		Primary: map[int64]Target{7: {WebsiteID: 7, Locale: "fr", Host: "cached.test"}},
	}
	data, err := json.Marshal(idx)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r := NewResolver(db, path, nil, testutil.TestLoggerSilent())
	got, err := r.Resolve(context.Background(), "cached.test")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.WebsiteID)
	assert.Equal(t, "fr", got.Locale)

	_, err = r.Resolve(context.Background(), "other.test")
	assert.ErrorIs(t, err, ErrUnknownHost)
}

func TestResolverFollowsDomainWrites(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	site := testutil.SeedSite(t, db)
	ctx := context.Background()
	cm := cache.NewMemoryManager(time.Minute)
	path := filepath.Join(t.TempDir(), DomainsFile)

	r := NewResolver(db, path, cm, testutil.TestLoggerSilent())
	require.NoError(t, r.Load(ctx))
	content := lifecycle.NewService(db, lifecycle.Options{
		Logger:         testutil.TestLoggerSilent(),
		Cache:          cm,
		DomainsChanged: r.Rebuild,
	})

	_, err := content.Domains.Create(ctx, store.Domain{WebsiteID: site.Website.ID, Host: "Exemple.TEST", Locale: "fr"})
	require.NoError(t, err)

	got, err := r.Resolve(ctx, "exemple.test")
	require.NoError(t, err)
	assert.Equal(t, "fr", got.Locale)

	// a second process picks the index up from the shared cache
	other := NewResolver(db, "", cm, testutil.TestLoggerSilent())
	got, err = other.Resolve(ctx, "exemple.test")
	require.NoError(t, err)
	assert.Equal(t, site.Website.ID, got.WebsiteID)
}
