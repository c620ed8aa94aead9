// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of date inputs.
const DateLayout = "2006-01-02"

// ErrDateOrder is returned when a range ends before it starts.
var ErrDateOrder = errors.New("end date is before start date")

// DateRange is a submitted range. Either bound may be open.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// DateRangeType is a group of a start and an end date.
type DateRangeType struct{}

func (DateRangeType) Name() string { return "date_range" }

func (t DateRangeType) Build(_ context.Context, opts Options) (Field, error) {
	f := newField(t.Name(), KindGroup, opts)
	f.Multiple = false
	f.Children = []Field{
		{Name: f.Name + "_start", Type: t.Name(), Kind: KindDate, Label: "Start", Required: opts.Required},
		{Name: f.Name + "_end", Type: t.Name(), Kind: KindDate, Label: "End"},
	}
	return f, nil
}

// Parse reads the two submitted values. Blank values are open bounds.
func (DateRangeType) Parse(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		s, err := parseDate(start)
		if err != nil {
			return r, fmt.Errorf("start: %w", err)
		}
		r.Start = &s
	}
	if end != "" {
		e, err := parseDate(end)
		if err != nil {
			return r, fmt.Errorf("end: %w", err)
		}
		r.End = &e
	}
	return r, nil
}

// Validate ensures start <= end when both are set.
func (DateRangeType) Validate(r DateRange) error {
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return ErrDateOrder
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
