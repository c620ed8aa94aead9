// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package widget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/mcms-go/internal/store"
)

// ColorType offers the active colors of the website palette, optionally
// restricted to one category (background, text, button).
type ColorType struct {
	DB *sql.DB
}

func (ColorType) Name() string { return "color" }

func (t ColorType) Build(ctx context.Context, opts Options) (Field, error) {
	if opts.WebsiteID == 0 {
		return Field{}, errors.New("website is required")
	}
	q := store.New(t.DB)

	var (
		colors []store.Color
		err    error
	)
	if opts.Category != "" {
		colors, err = q.ListActiveColorsByCategory(ctx, opts.WebsiteID, opts.Category)
	} else {
		colors, err = q.ListColors(ctx, opts.WebsiteID)
	}
	if err != nil {
		return Field{}, fmt.Errorf("listing colors: %w", err)
	}

	f := newField(t.Name(), KindChoice, opts)
	if opts.Category != "" {
		f.setAttr("data-category", opts.Category)
	}
	for _, c := range colors {
		if !c.IsActive {
			continue
		}
		f.Choices = append(f.Choices, Choice{
			Value:      c.Slug,
			Label:      c.Name,
			Attributes: map[string]string{"data-color": c.Hex},
		})
	}
	return f, nil
}
