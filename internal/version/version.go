// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import (
	"fmt"
	"strings"
)

// Product is the name sent in outgoing User-Agent headers.
const Product = "mCMS"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// Release returns the version without a leading "v", or "dev" for
// builds without ldflags.
func (i Info) Release() string {
	v := strings.TrimPrefix(i.Version, "v")
	if v == "" || v == "unknown" {
		return "dev"
	}
	return v
}

// UserAgent returns the User-Agent value for outgoing requests.
func (i Info) UserAgent() string {
	return Product + "/" + i.Release()
}

func (i Info) String() string {
	commit := i.GitCommit
	if commit == "" {
		commit = "unknown"
	}
	built := i.BuildTime
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("mcms %s (commit: %s, built: %s)", i.Release(), commit, built)
}
