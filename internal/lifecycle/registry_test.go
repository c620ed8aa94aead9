// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/olegiv/mcms-go/internal/store"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type subject struct {
	calls []string
}

func TestRegistryPriorityOrder(t *testing.T) {
	r := NewRegistry(newTestLogger())

	record := func(name string) func(context.Context, *store.Queries, *subject) error {
		return func(_ context.Context, _ *store.Queries, s *subject) error {
			s.calls = append(s.calls, name)
			return nil
		}
	}
	On(r, "thing", PrePersist, "last", 100, record("last"))
	On(r, "thing", PrePersist, "first", 1, record("first"))
	On(r, "thing", PrePersist, "middle-a", 50, record("middle-a"))
	On(r, "thing", PrePersist, "middle-b", 50, record("middle-b"))

	s := &subject{}
	if err := r.Dispatch(context.Background(), nil, "thing", PrePersist, s); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	want := []string{"first", "middle-a", "middle-b", "last"}
	if len(s.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", s.calls, want)
	}
	for i := range want {
		if s.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, s.calls[i], want[i])
		}
	}
	if got := r.HandlerCount("thing", PrePersist); got != 4 {
		t.Errorf("HandlerCount() = %d, want 4", got)
	}
	if got := r.HandlerCount("thing", PostPersist); got != 0 {
		t.Errorf("HandlerCount(postPersist) = %d, want 0", got)
	}
}

func TestRegistryStopsAtFirstError(t *testing.T) {
	r := NewRegistry(newTestLogger())
	boom := errors.New("boom")

	On(r, "thing", PreUpdate, "fails", 1, func(context.Context, *store.Queries, *subject) error {
		return boom
	})
	On(r, "thing", PreUpdate, "never", 2, func(_ context.Context, _ *store.Queries, s *subject) error {
		s.calls = append(s.calls, "never")
		return nil
	})

	s := &subject{}
	err := r.Dispatch(context.Background(), nil, "thing", PreUpdate, s)
	if !errors.Is(err, boom) {
		t.Fatalf("Dispatch() error = %v, want wrapped boom", err)
	}
	if len(s.calls) != 0 {
		t.Errorf("hooks after the failing one ran: %v", s.calls)
	}
}

func TestRegistryRejectsWrongSubject(t *testing.T) {
	r := NewRegistry(newTestLogger())
	On(r, "thing", PreRemove, "typed", 1, func(context.Context, *store.Queries, *subject) error { return nil })

	if err := r.Dispatch(context.Background(), nil, "thing", PreRemove, &struct{}{}); err == nil {
		t.Fatal("Dispatch() with the wrong subject type returned nil error")
	}
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	if verr.Err() != nil {
		t.Fatal("empty ValidationError.Err() != nil")
	}
	verr.Add("name", "is required")
	verr.Add("name", "second message")
	verr.Add("slug", "is taken")

	err := verr.Err()
	if !errors.Is(err, ErrInvalid) {
		t.Fatal("errors.Is(err, ErrInvalid) = false")
	}
	fields, ok := AsValidation(err)
	if !ok {
		t.Fatal("AsValidation() ok = false")
	}
	if fields["name"] != "is required" {
		t.Errorf("fields[name] = %q, want first message", fields["name"])
	}
	if got, want := err.Error(), "validation failed: name: is required; slug: is taken"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestServiceRegistersEveryManager(t *testing.T) {
	s := NewService(nil, Options{Logger: newTestLogger()})

	seen := make(map[string]bool)
	for _, m := range s.Managers() {
		if seen[m.EntityType()] {
			t.Errorf("entity %q managed twice", m.EntityType())
		}
		seen[m.EntityType()] = true
	}

	// Spot check a few hooks the content model depends on.
	checks := []struct {
		entity string
		event  Event
		hook   string
	}{
		{"page", PrePersist, "page.tree"},
		{"link", PostUpdate, "link.reparent"},
		{"feature_value", PostUpdate, "feature_value.propagate"},
		{"listing", PrePersist, "listing.validate"},
		{"table", PostPersist, "table.grid"},
	}
	for _, c := range checks {
		found := false
		for _, name := range s.Registry().HookNames(c.entity, c.event) {
			if name == c.hook {
				found = true
			}
		}
		if !found {
			t.Errorf("hook %s not registered on %s.%s", c.hook, c.entity, c.event)
		}
	}
}
