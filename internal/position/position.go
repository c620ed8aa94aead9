// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package position keeps the 1-based, gapless position sequence of sibling
// rows (links of a menu level, products of a catalog, table cols, ...).
package position

import (
	"context"
	"fmt"
	"slices"

	"github.com/olegiv/mcms-go/internal/store"
)

// Reorder returns a copy of ids with moved placed at the 1-based target
// position. Targets outside the list are clamped to its ends. Unknown ids
// leave the order unchanged.
func Reorder(ids []int64, moved int64, target int64) []int64 {
	out := slices.Clone(ids)
	from := slices.Index(out, moved)
	if from < 0 {
		return out
	}
	out = slices.Delete(out, from, from+1)

	to := int(target) - 1
	if to < 0 {
		to = 0
	}
	if to > len(out) {
		to = len(out)
	}
	return slices.Insert(out, to, moved)
}

// Rescan rewrites positions 1..n of a sibling set in its current display
// order and returns the ordered ids.
func Rescan(ctx context.Context, q *store.Queries, f store.Family, scope ...any) ([]int64, error) {
	ids, err := q.ListFamilyIDs(ctx, f, scope...)
	if err != nil {
		return nil, fmt.Errorf("listing %s siblings: %w", f.Name, err)
	}
	if err := write(ctx, q, f, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Move places id at target inside its sibling set, then renumbers the set.
func Move(ctx context.Context, q *store.Queries, f store.Family, id, target int64, scope ...any) ([]int64, error) {
	ids, err := q.ListFamilyIDs(ctx, f, scope...)
	if err != nil {
		return nil, fmt.Errorf("listing %s siblings: %w", f.Name, err)
	}
	if !slices.Contains(ids, id) {
		return nil, fmt.Errorf("%s %d is not part of the sibling set", f.Name, id)
	}
	ids = Reorder(ids, id, target)
	if err := write(ctx, q, f, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Next returns the position a row appended to the sibling set gets.
func Next(ctx context.Context, q *store.Queries, f store.Family, scope ...any) (int64, error) {
	n, err := q.CountFamily(ctx, f, scope...)
	if err != nil {
		return 0, fmt.Errorf("counting %s siblings: %w", f.Name, err)
	}
	return n + 1, nil
}

// Insert renumbers the set so that id, freshly created, sits at target.
// A zero target appends.
func Insert(ctx context.Context, q *store.Queries, f store.Family, id, target int64, scope ...any) ([]int64, error) {
	if target <= 0 {
		return Rescan(ctx, q, f, scope...)
	}
	return Move(ctx, q, f, id, target, scope...)
}

func write(ctx context.Context, q *store.Queries, f store.Family, ids []int64) error {
	for i, id := range ids {
		if err := q.SetFamilyPosition(ctx, f, id, int64(i+1)); err != nil {
			return fmt.Errorf("setting %s %d position: %w", f.Name, id, err)
		}
	}
	return nil
}
