// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package lifecycle runs the create, update and remove hooks of every
// content entity inside one transaction per write.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/olegiv/mcms-go/internal/store"
)

// Event is a point in the write lifecycle of an entity.
type Event string

// Lifecycle events, in the order a write goes through them.
const (
	PrePersist  Event = "prePersist"
	PostPersist Event = "postPersist"
	PreUpdate   Event = "preUpdate"
	PostUpdate  Event = "postUpdate"
	PreRemove   Event = "preRemove"
	PostRemove  Event = "postRemove"
)

// HookFunc handles one event. The subject is the entity record being
// written; pre hooks may modify it. Returning an error aborts the write and
// rolls back the transaction.
type HookFunc func(ctx context.Context, q *store.Queries, subject any) error

// Hook wraps a HookFunc with metadata.
type Hook struct {
	Name     string
	Priority int // lower runs first
	Fn       HookFunc
}

// Registry maps (entity, event) pairs to ordered hooks.
type Registry struct {
	hooks  map[string][]Hook
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		hooks:  make(map[string][]Hook),
		logger: logger,
	}
}

func hookKey(entity string, event Event) string {
	return entity + "." + string(event)
}

// Register adds a hook. Hooks of equal priority keep registration order.
func (r *Registry) Register(entity string, event Event, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := hookKey(entity, event)
	hooks := append(r.hooks[key], hook)
	sort.SliceStable(hooks, func(i, j int) bool { return hooks[i].Priority < hooks[j].Priority })
	r.hooks[key] = hooks

	r.logger.Debug("hook registered", "entity", entity, "event", event, "hook", hook.Name, "priority", hook.Priority)
}

// On registers a hook whose subject has type *T.
func On[T any](r *Registry, entity string, event Event, name string, priority int, fn func(ctx context.Context, q *store.Queries, subject *T) error) {
	r.Register(entity, event, Hook{
		Name:     name,
		Priority: priority,
		Fn: func(ctx context.Context, q *store.Queries, subject any) error {
			typed, ok := subject.(*T)
			if !ok {
				return fmt.Errorf("hook %s: unexpected subject %T", name, subject)
			}
			return fn(ctx, q, typed)
		},
	})
}

// Dispatch runs the hooks of (entity, event) in priority order and stops at
// the first error.
func (r *Registry) Dispatch(ctx context.Context, q *store.Queries, entity string, event Event, subject any) error {
	r.mu.RLock()
	hooks := r.hooks[hookKey(entity, event)]
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook.Fn(ctx, q, subject); err != nil {
			r.logger.Debug("hook failed", "entity", entity, "event", event, "hook", hook.Name, "error", err)
			return fmt.Errorf("%s %s hook %s: %w", entity, event, hook.Name, err)
		}
	}
	return nil
}

// HandlerCount returns the number of hooks registered for (entity, event).
func (r *Registry) HandlerCount(entity string, event Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[hookKey(entity, event)])
}

// HookNames returns the hook names of (entity, event) in run order.
func (r *Registry) HookNames(entity string, event Event) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hooks := r.hooks[hookKey(entity, event)]
	names := make([]string, len(hooks))
	for i, h := range hooks {
		names[i] = h.Name
	}
	return names
}

// Keys returns every registered "entity.event" key, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.hooks))
	for k := range r.hooks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
