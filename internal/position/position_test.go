// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package position

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/testutil"
)

func TestReorder(t *testing.T) {
	tests := []struct {
		name   string
		ids    []int64
		moved  int64
		target int64
		want   []int64
	}{
		{"move first to last", []int64{1, 2, 3}, 1, 3, []int64{2, 3, 1}},
		{"move last to first", []int64{1, 2, 3}, 3, 1, []int64{3, 1, 2}},
		{"move to middle", []int64{1, 2, 3, 4}, 4, 2, []int64{1, 4, 2, 3}},
		{"same place", []int64{1, 2, 3}, 2, 2, []int64{1, 2, 3}},
		{"target below range", []int64{1, 2, 3}, 2, -5, []int64{2, 1, 3}},
		{"target above range", []int64{1, 2, 3}, 1, 99, []int64{2, 3, 1}},
		{"unknown id", []int64{1, 2}, 7, 1, []int64{1, 2}},
		{"single", []int64{5}, 5, 3, []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := append([]int64(nil), tt.ids...)
			got := Reorder(tt.ids, tt.moved, tt.target)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, input, tt.ids, "input must not be modified")
		})
	}
}

func createColors(t *testing.T, q *store.Queries, websiteID int64, n int) []int64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]int64, 0, n)
	for range n {
		pos, err := Next(ctx, q, store.ColorFamily, websiteID)
		require.NoError(t, err)
		c, err := q.CreateColor(ctx, store.CreateColorParams{
			WebsiteID: websiteID,
			Name:      fmt.Sprintf("Color %d", pos),
			Slug:      fmt.Sprintf("color-%d", pos),
			Hex:       "#000000",
			Category:  "background",
			IsActive:  true,
			Position:  pos,
		})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	return ids
}

func positions(t *testing.T, q *store.Queries, websiteID int64) map[int64]int64 {
	t.Helper()
	colors, err := q.ListColors(context.Background(), websiteID)
	require.NoError(t, err)
	out := make(map[int64]int64, len(colors))
	for _, c := range colors {
		out[c.ID] = c.Position
	}
	return out
}

func TestMoveAndRescanKeepContiguousPositions(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	site := testutil.SeedSite(t, db)
	q := store.New(db)
	ctx := context.Background()

	ids := createColors(t, q, site.Website.ID, 4)
	assert.Equal(t, map[int64]int64{ids[0]: 1, ids[1]: 2, ids[2]: 3, ids[3]: 4}, positions(t, q, site.Website.ID))

	order, err := Move(ctx, q, store.ColorFamily, ids[3], 1, site.Website.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[3], ids[0], ids[1], ids[2]}, order)
	assert.Equal(t, map[int64]int64{ids[3]: 1, ids[0]: 2, ids[1]: 3, ids[2]: 4}, positions(t, q, site.Website.ID))

	require.NoError(t, q.DeleteColor(ctx, ids[0]))
	_, err = Rescan(ctx, q, store.ColorFamily, site.Website.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{ids[3]: 1, ids[1]: 2, ids[2]: 3}, positions(t, q, site.Website.ID))
}

func TestInsertAtTarget(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	site := testutil.SeedSite(t, db)
	q := store.New(db)
	ctx := context.Background()

	ids := createColors(t, q, site.Website.ID, 3)
	extra := createColors(t, q, site.Website.ID, 1)[0]
	require.Equal(t, int64(4), positions(t, q, site.Website.ID)[extra])

	order, err := Insert(ctx, q, store.ColorFamily, extra, 2, site.Website.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], extra, ids[1], ids[2]}, order)

	n, err := Next(ctx, q, store.ColorFamily, site.Website.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestMoveRejectsForeignRow(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	site := testutil.SeedSite(t, db)
	q := store.New(db)

	createColors(t, q, site.Website.ID, 2)
	_, err := Move(context.Background(), q, store.ColorFamily, 9999, 1, site.Website.ID)
	assert.Error(t, err)
}
