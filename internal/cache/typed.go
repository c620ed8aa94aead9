// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"
)

// TypedCache stores values of one type as JSON under a key namespace.
// Concurrent loads of the same missing key run the loader once.
type TypedCache[T any] struct {
	backend    Cacher
	namespace  string
	defaultTTL time.Duration
	group      singleflight.Group
}

// NewTypedCache wraps backend. Keys are stored as namespace + ":" + key.
func NewTypedCache[T any](backend Cacher, namespace string, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		backend:    backend,
		namespace:  namespace,
		defaultTTL: defaultTTL,
	}
}

func (c *TypedCache[T]) key(key string) string {
	return c.namespace + ":" + key
}

// Get returns the value stored under key. Undecodable entries count as misses.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	data, err := c.backend.Get(ctx, c.key(key))
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

// Set stores value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores value with a custom TTL.
func (c *TypedCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, c.key(key), data, ttl)
}

// Delete removes one key.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, c.key(key))
}

// DeletePrefix removes every key of the namespace starting with prefix.
func (c *TypedCache[T]) DeletePrefix(ctx context.Context, prefix string) error {
	return c.backend.DeleteByPrefix(ctx, c.key(prefix))
}

// Clear removes the whole namespace.
func (c *TypedCache[T]) Clear(ctx context.Context) error {
	return c.backend.DeleteByPrefix(ctx, c.namespace+":")
}

// GetOrLoad returns the cached value or computes, stores and returns it.
// A failing store is ignored since the loaded value is still valid.
func (c *TypedCache[T]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if value, ok := c.Get(ctx, key); ok {
			return value, nil
		}
		value, err := load(ctx)
		if err != nil {
			return value, err
		}
		_ = c.Set(ctx, key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
