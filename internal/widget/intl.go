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

// IntlType groups one child input per active locale of the website.
// Only the default locale child inherits Required.
type IntlType struct {
	DB *sql.DB
}

func (IntlType) Name() string { return "intl" }

func (t IntlType) Build(ctx context.Context, opts Options) (Field, error) {
	if opts.WebsiteID == 0 {
		return Field{}, errors.New("website is required")
	}
	def, langs, err := websiteLocales(ctx, store.New(t.DB), opts.WebsiteID)
	if err != nil {
		return Field{}, err
	}

	kind := opts.ChildKind
	if kind == "" {
		kind = KindText
	}

	f := newField(t.Name(), KindGroup, opts)
	f.Required = false
	f.setAttr("data-default-locale", def)
	for _, l := range langs {
		label := l.Name
		if opts.Label != "" {
			label = fmt.Sprintf("%s (%s)", opts.Label, l.Code)
		}
		f.Children = append(f.Children, Field{
			Name:       fmt.Sprintf("%s[%s]", f.Name, l.Code),
			Type:       t.Name(),
			Kind:       kind,
			Label:      label,
			Required:   opts.Required && l.Code == def,
			Attributes: map[string]string{"lang": l.Code},
		})
	}
	return f, nil
}
