// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/olegiv/mcms-go/internal/theme"
	"github.com/olegiv/mcms-go/internal/util"
)

var fontExts = map[string]bool{
	".ttf":   true,
	".otf":   true,
	".woff":  true,
	".woff2": true,
}

// displayName turns a file or directory name into a label:
// "open-sans_bold" becomes "Open Sans Bold".
func displayName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.Und).String(strings.Join(strings.Fields(name), " "))
}

// IconType offers the SVG icons of one library, a subdirectory of Dir.
type IconType struct {
	Dir string
}

func (IconType) Name() string { return "icon" }

func (t IconType) Build(_ context.Context, opts Options) (Field, error) {
	dir := t.Dir
	if opts.Library != "" {
		var err error
		if dir, err = util.ResolveUnder(t.Dir, opts.Library); err != nil {
			return Field{}, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Field{}, fmt.Errorf("reading icons: %w", err)
	}

	f := newField(t.Name(), KindChoice, opts)
	if opts.Library != "" {
		f.setAttr("data-library", opts.Library)
	}
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".svg" {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		f.Choices = append(f.Choices, Choice{
			Value:      base,
			Label:      displayName(base),
			Attributes: map[string]string{"data-src": path.Join(opts.Library, e.Name())},
		})
	}
	sortChoices(f.Choices)
	return f, nil
}

// FontType offers the font families under Dir. A family is either a
// directory or a loose font file; "Roboto-Bold.ttf" belongs to "roboto".
type FontType struct {
	Dir string
}

func (FontType) Name() string { return "font" }

func (t FontType) Build(_ context.Context, opts Options) (Field, error) {
	entries, err := os.ReadDir(t.Dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Field{}, fmt.Errorf("reading fonts: %w", err)
	}

	families := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !e.IsDir() {
			ext := strings.ToLower(filepath.Ext(name))
			if !fontExts[ext] {
				continue
			}
			name = strings.TrimSuffix(name, filepath.Ext(name))
			if i := strings.IndexByte(name, '-'); i > 0 {
				name = name[:i]
			}
		}
		families[util.Slugify(name)] = true
	}

	f := newField(t.Name(), KindChoice, opts)
	for family := range families {
		if family == "" {
			continue
		}
		f.Choices = append(f.Choices, Choice{Value: family, Label: displayName(family)})
	}
	sortChoices(f.Choices)
	return f, nil
}

// ThemeType offers the themes found by a rescan of the theme catalog.
type ThemeType struct {
	Themes *theme.Manager
}

func (ThemeType) Name() string { return "theme" }

func (t ThemeType) Build(_ context.Context, opts Options) (Field, error) {
	if err := t.Themes.LoadThemes(); err != nil {
		return Field{}, err
	}

	f := newField(t.Name(), KindChoice, opts)
	for _, th := range t.Themes.ListThemes() {
		c := Choice{Value: th.Name, Label: th.Label()}
		if th.Config.Screenshot != "" {
			c.Attributes = map[string]string{"data-screenshot": path.Join(th.Name, th.Config.Screenshot)}
		}
		f.Choices = append(f.Choices, c)
	}
	return f, nil
}

func sortChoices(choices []Choice) {
	sort.Slice(choices, func(i, j int) bool { return choices[i].Label < choices[j].Label })
}
