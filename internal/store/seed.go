// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/mcms-go/internal/model"
)

// Default tenant created on an empty database.
const (
	DefaultWebsiteName = "Default"
	DefaultWebsiteSlug = "default"
	DefaultLocale      = "en"
	DefaultHost        = "localhost"
	DefaultKeyName     = "bootstrap"
)

// Seed creates a default website served on localhost and an admin API
// key when the database has neither. The raw key is logged once.
// It does nothing unless enabled.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}
	return RunInTx(ctx, db, func(q *Queries) error {
		now := time.Now().UTC()

		websites, err := q.ListWebsites(ctx)
		if err != nil {
			return fmt.Errorf("listing websites: %w", err)
		}
		if len(websites) == 0 {
			if err := seedWebsite(ctx, q, now); err != nil {
				return err
			}
		} else {
			slog.Info("websites already exist, skipping website seed")
		}

		keys, err := q.ListApiKeys(ctx)
		if err != nil {
			return fmt.Errorf("listing api keys: %w", err)
		}
		if len(keys) > 0 {
			slog.Info("api keys already exist, skipping key seed")
			return nil
		}
		raw, prefix, err := model.GenerateAPIKey()
		if err != nil {
			return fmt.Errorf("generating api key: %w", err)
		}
		key, err := q.CreateApiKey(ctx, CreateApiKeyParams{
			Name:        DefaultKeyName,
			KeyHash:     model.HashAPIKey(raw),
			KeyPrefix:   prefix,
			Permissions: model.PermissionsToJSON([]string{model.PermissionAdmin}),
			CreatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("creating api key: %w", err)
		}
		slog.Info("created bootstrap admin api key", "id", key.ID, "key", raw)
		return nil
	})
}

func seedWebsite(ctx context.Context, q *Queries, now time.Time) error {
	website, err := q.CreateWebsite(ctx, CreateWebsiteParams{
		Name:      DefaultWebsiteName,
		Slug:      DefaultWebsiteSlug,
		SiteUrl:   "http://" + DefaultHost,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating website: %w", err)
	}
	if _, err := q.CreateLanguage(ctx, CreateLanguageParams{
		WebsiteID: website.ID,
		Code:      DefaultLocale,
		Name:      "English",
		IsDefault: true,
		IsActive:  true,
		Position:  1,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("creating language: %w", err)
	}
	if _, err := q.CreateDomain(ctx, CreateDomainParams{
		WebsiteID: website.ID,
		Host:      DefaultHost,
		Locale:    DefaultLocale,
		IsDefault: true,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("creating domain: %w", err)
	}
	slog.Info("created default website", "id", website.ID, "host", DefaultHost)
	return nil
}
