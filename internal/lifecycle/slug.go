// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/util"
)

// uniqueSlug slugifies input (or fallback when input is blank) and
// suffixes it until no other row of the scope uses it.
func uniqueSlug(ctx context.Context, q *store.Queries, scope store.SlugScope, scopeID int64, input, fallback string, excludeID int64) (string, error) {
	base := util.Slugify(input)
	if base == "" {
		base = util.Slugify(fallback)
	}
	if base == "" {
		return "", Invalid("slug", "cannot be derived, set a slug or a name")
	}
	return util.UniqueSlug(base, func(candidate string) (bool, error) {
		n, err := q.CountSlug(ctx, scope, scopeID, candidate, excludeID)
		return n > 0, err
	})
}

// entityUrls describes the urls of one routable entity.
type entityUrls struct {
	WebsiteID  int64
	EntityType string
	EntityID   int64
	Online     bool
	// Root gives every locale the empty code (the website index page).
	Root bool
}

// syncUrls writes one url per intl and makes sure each has a seo row.
// An explicit code wins. A blank code keeps the stored one, except for
// online entities which are re-slugged from the title.
func syncUrls(ctx context.Context, q *store.Queries, e entityUrls, intls []Intl, now time.Time) error {
	for _, in := range intls {
		code, err := urlCode(ctx, q, e, in)
		if err != nil {
			return err
		}
		u, err := q.UpsertUrl(ctx, store.UpsertUrlParams{
			WebsiteID:   e.WebsiteID,
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			Locale:      in.Locale,
			Code:        code,
			IsOnline:    e.Online,
			IsIndexable: true,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("saving %s url (%s): %w", e.EntityType, in.Locale, err)
		}
		if err := q.EnsureSeo(ctx, u.ID, now); err != nil {
			return fmt.Errorf("creating seo row: %w", err)
		}
	}
	return nil
}

func urlCode(ctx context.Context, q *store.Queries, e entityUrls, in Intl) (string, error) {
	if e.Root {
		return "", nil
	}

	base := util.Slugify(in.Code)
	if base == "" {
		existing, err := q.GetEntityUrl(ctx, e.EntityType, e.EntityID, in.Locale)
		switch {
		case err == nil && existing.Code != "" && !e.Online:
			return existing.Code, nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return "", err
		}
		base = util.Slugify(in.Title)
	}
	if base == "" {
		base = fmt.Sprintf("%s-%d", e.EntityType, e.EntityID)
	}

	return util.UniqueSlug(base, func(candidate string) (bool, error) {
		n, err := q.CountUrlCode(ctx, e.WebsiteID, in.Locale, candidate, e.EntityType, e.EntityID)
		return n > 0, err
	})
}
