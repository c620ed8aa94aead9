// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type testMeta struct {
	Title    string   `json:"title"`
	Locales  []string `json:"locales"`
	NoIndex  bool     `json:"no_index"`
	Priority float64  `json:"priority"`
}

func TestTypedCache_SetGet(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()
	cache := NewTypedCache[testMeta](backend, "seo", time.Hour)
	ctx := context.Background()

	want := testMeta{Title: "Home", Locales: []string{"en", "fr"}, Priority: 0.8}
	if err := cache.Set(ctx, "1:en:home", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := cache.Get(ctx, "1:en:home")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Title != want.Title || len(got.Locales) != 2 || got.Priority != want.Priority {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if has, _ := backend.Has(ctx, "seo:1:en:home"); !has {
		t.Error("expected key to be stored under the namespace")
	}
}

func TestTypedCache_UndecodableIsMiss(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()
	cache := NewTypedCache[testMeta](backend, "seo", time.Hour)
	ctx := context.Background()

	_ = backend.Set(ctx, "seo:broken", []byte("{not json"), 0)
	if _, ok := cache.Get(ctx, "broken"); ok {
		t.Error("expected undecodable entry to be a miss")
	}
}

func TestTypedCache_ClearOnlyOwnNamespace(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()
	seo := NewTypedCache[string](backend, "seo", time.Hour)
	sitemap := NewTypedCache[string](backend, "sitemap", time.Hour)
	ctx := context.Background()

	_ = seo.Set(ctx, "1", "a")
	_ = sitemap.Set(ctx, "1", "b")

	if err := seo.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := seo.Get(ctx, "1"); ok {
		t.Error("expected seo entry to be cleared")
	}
	if v, ok := sitemap.Get(ctx, "1"); !ok || v != "b" {
		t.Errorf("sitemap entry = %q, %v; want b, true", v, ok)
	}
}

func TestTypedCache_GetOrLoad(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()
	cache := NewTypedCache[[]int64](backend, "catalog", time.Hour)
	ctx := context.Background()

	var calls atomic.Int32
	load := func(context.Context) ([]int64, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []int64{3, 1, 2}, nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cache.GetOrLoad(ctx, "1:shoes", load)
			if err != nil || len(got) != 3 {
				t.Errorf("GetOrLoad = %v, %v", got, err)
			}
		}()
	}
	wg.Wait()

	if _, err := cache.GetOrLoad(ctx, "1:shoes", load); err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("loader ran %d times, want 1", n)
	}
}

func TestTypedCache_GetOrLoadError(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()
	cache := NewTypedCache[string](backend, "listing", time.Hour)
	ctx := context.Background()

	boom := errors.New("boom")
	if _, err := cache.GetOrLoad(ctx, "k", func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("failed load must not be cached")
	}
}
