// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// PickIntl returns the row of items whose locale is locale, falling back
// to the row of the fallback locale, then to the first row.
// ok is false only when items is empty.
func PickIntl[T any](items []T, localeOf func(T) string, locale, fallback string) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	for _, it := range items {
		if localeOf(it) == locale {
			return it, true
		}
	}
	if fallback != "" && fallback != locale {
		for _, it := range items {
			if localeOf(it) == fallback {
				return it, true
			}
		}
	}
	return items[0], true
}
