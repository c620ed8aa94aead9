// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the mCMS project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/olegiv/mcms-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "mcms-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}


// Site is a seeded website with its languages.
type Site struct {
	Website   store.Website
	Languages []store.Language
}

// SeedSite creates a website "demo" served on example.test with the given
// locales (the first one is the default). Defaults to en and fr.
func SeedSite(t *testing.T, db *sql.DB, locales ...string) Site {
	t.Helper()

	if len(locales) == 0 {
		locales = []string{"en", "fr"}
	}

	ctx := context.Background()
	q := store.New(db)
	now := time.Now().UTC()

	website, err := q.CreateWebsite(ctx, store.CreateWebsiteParams{
		Name:      "Demo",
		Slug:      "demo",
		SiteUrl:   "https://example.test",
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateWebsite: %v", err)
	}

	site := Site{Website: website}
	for i, code := range locales {
		lang, err := q.CreateLanguage(ctx, store.CreateLanguageParams{
			WebsiteID: website.ID,
			Code:      code,
			Name:      code,
			IsDefault: i == 0,
			IsActive:  true,
			Position:  int64(i + 1),
			CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateLanguage(%s): %v", code, err)
		}
		site.Languages = append(site.Languages, lang)
	}

	if _, err := q.CreateDomain(ctx, store.CreateDomainParams{
		WebsiteID: website.ID,
		Host:      "example.test",
		Locale:    locales[0],
		IsDefault: true,
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateDomain: %v", err)
	}

	return site
}
