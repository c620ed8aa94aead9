// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package widget

import "context"

// TextType is a single line text input.
type TextType struct{}

func (TextType) Name() string { return "text" }

func (t TextType) Build(_ context.Context, opts Options) (Field, error) {
	return newField(t.Name(), KindText, opts), nil
}

// BooleanType is a checkbox.
type BooleanType struct{}

func (BooleanType) Name() string { return "boolean" }

func (t BooleanType) Build(_ context.Context, opts Options) (Field, error) {
	f := newField(t.Name(), KindBoolean, opts)
	// A checkbox cannot be both required and unchecked.
	f.Required = false
	f.Multiple = false
	return f, nil
}

// ChoiceType is a select over the choices given in Options.
type ChoiceType struct{}

func (ChoiceType) Name() string { return "choice" }

func (t ChoiceType) Build(_ context.Context, opts Options) (Field, error) {
	f := newField(t.Name(), KindChoice, opts)
	f.Choices = append([]Choice(nil), opts.Choices...)
	return f, nil
}
