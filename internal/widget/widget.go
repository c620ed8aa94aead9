// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package widget builds the field descriptors the admin UI renders as form
// inputs. Each Type turns Options into a Field, reading whatever it needs
// (palette, page tree, files on disk) at build time.
package widget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/olegiv/mcms-go/internal/theme"
)

// Field kinds understood by the admin UI.
const (
	KindText     = "text"
	KindTextarea = "textarea"
	KindChoice   = "choice"
	KindBoolean  = "boolean"
	KindDate     = "date"
	KindGroup    = "group"
)

// ErrUnknownType is returned when no type is registered under a name.
var ErrUnknownType = errors.New("unknown widget type")

// Field is the JSON descriptor of one admin input.
type Field struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Kind       string            `json:"kind"`
	Label      string            `json:"label,omitempty"`
	Required   bool              `json:"required"`
	Multiple   bool              `json:"multiple"`
	Choices    []Choice          `json:"choices,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []Field           `json:"children,omitempty"`
}

// Choice is one selectable value.
type Choice struct {
	Value      string            `json:"value"`
	Label      string            `json:"label"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Options configure a build. Types ignore the options they do not use.
type Options struct {
	Name       string
	Label      string
	Required   bool
	Multiple   bool
	WebsiteID  int64
	Locale     string
	Category   string // color category filter
	Library    string // icon library directory
	ChildKind  string // kind of intl children, text by default
	ExcludeID  int64  // page picker: hide this page and its subtree
	Choices    []Choice
	Attributes map[string]string
}

// Type builds one kind of field.
type Type interface {
	Name() string
	Build(ctx context.Context, opts Options) (Field, error)
}

// newField fills the parts every type shares.
func newField(typeName, kind string, opts Options) Field {
	name := opts.Name
	if name == "" {
		name = typeName
	}
	f := Field{
		Name:     name,
		Type:     typeName,
		Kind:     kind,
		Label:    opts.Label,
		Required: opts.Required,
		Multiple: opts.Multiple,
	}
	if len(opts.Attributes) > 0 {
		f.Attributes = make(map[string]string, len(opts.Attributes))
		for k, v := range opts.Attributes {
			f.Attributes[k] = v
		}
	}
	return f
}

func (f *Field) setAttr(key, value string) {
	if f.Attributes == nil {
		f.Attributes = make(map[string]string)
	}
	f.Attributes[key] = value
}

// Registry maps type names to types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Register adds t, replacing a type registered under the same name.
func (r *Registry) Register(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name()] = t
}

// Get returns the type registered under name.
func (r *Registry) Get(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build looks up name and builds its field.
func (r *Registry) Build(ctx context.Context, name string, opts Options) (Field, error) {
	t, ok := r.Get(name)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	f, err := t.Build(ctx, opts)
	if err != nil {
		return Field{}, fmt.Errorf("building %s widget: %w", name, err)
	}
	return f, nil
}

// Deps are the sources the built-in types read from.
type Deps struct {
	DB       *sql.DB
	IconsDir string
	FontsDir string
	Themes   *theme.Manager
}

// NewDefaultRegistry registers every built-in type.
func NewDefaultRegistry(d Deps) *Registry {
	r := NewRegistry()
	r.Register(TextType{})
	r.Register(BooleanType{})
	r.Register(ChoiceType{})
	r.Register(DateRangeType{})
	r.Register(IconType{Dir: d.IconsDir})
	r.Register(FontType{Dir: d.FontsDir})
	if d.Themes != nil {
		r.Register(ThemeType{Themes: d.Themes})
	}
	if d.DB != nil {
		r.Register(ColorType{DB: d.DB})
		r.Register(PageType{DB: d.DB})
		r.Register(IntlType{DB: d.DB})
	}
	return r
}
