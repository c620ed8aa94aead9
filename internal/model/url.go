// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// LocalePath builds the public path of a url code. The default locale
// has no prefix; other locales are served under /<locale>/.
func LocalePath(locale, defaultLocale, code string) string {
	code = strings.Trim(code, "/")
	prefix := ""
	if locale != "" && locale != defaultLocale {
		prefix = "/" + locale
	}
	if code == "" {
		if prefix == "" {
			return "/"
		}
		return prefix + "/"
	}
	return prefix + "/" + code
}

// AbsoluteURL joins a site url and a path.
func AbsoluteURL(siteURL, path string) string {
	return strings.TrimRight(siteURL, "/") + "/" + strings.TrimLeft(path, "/")
}
