// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"strings"

	"github.com/olegiv/mcms-go/internal/store"
)

// SaveSeo stores the meta overrides of one url and drops the cached meta
// of its website.
func (s *Service) SaveSeo(ctx context.Context, p store.UpsertSeoParams) (store.Seo, error) {
	var saved store.Seo
	err := s.write(ctx, "seo", func(q *store.Queries) (int64, error) {
		u, err := q.GetUrl(ctx, p.UrlID)
		if err != nil {
			return 0, err
		}
		if p.OgMediaID.Valid {
			m, err := q.GetMedia(ctx, p.OgMediaID.Int64)
			if err != nil || m.WebsiteID != u.WebsiteID {
				return 0, Invalid("og_media_id", "unknown media")
			}
		}
		p.MetaTitle = strings.TrimSpace(p.MetaTitle)
		p.MetaDescription = strings.TrimSpace(p.MetaDescription)
		p.UpdatedAt = s.nowUTC()
		saved, err = q.UpsertSeo(ctx, p)
		return u.WebsiteID, err
	})
	return saved, err
}
