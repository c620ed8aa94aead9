// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package locale resolves the website and locale of a request and lists
// the alternate urls used by locale switchers.
package locale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/olegiv/mcms-go/internal/geoip"
	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
)

// ErrNoLocale is returned for a website without active languages.
var ErrNoLocale = errors.New("website has no active language")

// How a locale was chosen.
const (
	SourceQuery   = "query"
	SourcePrefix  = "prefix"
	SourceHeader  = "accept-language"
	SourceGeoIP   = "geoip"
	SourceDomain  = "domain"
	SourceDefault = "default"
)

// Locale is one active language of a website.
type Locale struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// Request carries what a locale can be resolved from.
type Request struct {
	WebsiteID int64
	// Query is an explicit locale parameter.
	Query          string
	Path           string
	AcceptLanguage string
	IP             string
	// DomainLocale is the locale bound to the requested host.
	DomainLocale string
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Locale string `json:"locale"`
	Source string `json:"source"`
	// Code is the request path without its locale prefix and slashes.
	Code string `json:"code"`
}

// Alternate is the url of an entity in one locale.
type Alternate struct {
	Locale  string `json:"locale"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Current bool   `json:"current"`
	// Fallback is set when the entity has no online url in the locale and
	// URL points to the locale home.
	Fallback bool `json:"fallback,omitempty"`
}

// Service reads the locales of websites.
type Service struct {
	q      *store.Queries
	geo    *geoip.Lookup
	logger *slog.Logger
}

// NewService creates a locale service. geo may be nil.
func NewService(db *sql.DB, geo *geoip.Lookup, logger *slog.Logger) *Service {
	return &Service{q: store.New(db), geo: geo, logger: logger}
}

// Locales lists the active locales of a website in position order.
func (s *Service) Locales(ctx context.Context, websiteID int64) ([]Locale, error) {
	langs, err := s.q.ListActiveLanguages(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	out := make([]Locale, 0, len(langs))
	for _, l := range langs {
		out = append(out, Locale{Code: l.Code, Name: l.Name, IsDefault: l.IsDefault})
	}
	return out, nil
}

// Default returns the default locale of a website, or its first active
// locale when none is flagged.
func (s *Service) Default(ctx context.Context, websiteID int64) (string, error) {
	locales, err := s.Locales(ctx, websiteID)
	if err != nil {
		return "", err
	}
	return defaultOf(locales)
}

func defaultOf(locales []Locale) (string, error) {
	for _, l := range locales {
		if l.IsDefault {
			return l.Code, nil
		}
	}
	if len(locales) == 0 {
		return "", ErrNoLocale
	}
	return locales[0].Code, nil
}

// Resolve picks the locale of a request. An explicit query parameter or a
// path prefix always wins. Unprefixed pages are in the default locale,
// except the site root where the Accept-Language header, then the client
// country, then the host's locale choose.
func (s *Service) Resolve(ctx context.Context, req Request) (Resolution, error) {
	locales, err := s.Locales(ctx, req.WebsiteID)
	if err != nil {
		return Resolution{}, err
	}
	def, err := defaultOf(locales)
	if err != nil {
		return Resolution{}, err
	}
	codes := make([]string, 0, len(locales))
	for _, l := range locales {
		codes = append(codes, l.Code)
	}

	prefix, code := SplitPath(req.Path, codes)
	res := Resolution{Code: code}

	if q := canonical(req.Query, codes); q != "" {
		res.Locale, res.Source = q, SourceQuery
		return res, nil
	}
	if prefix != "" {
		res.Locale, res.Source = prefix, SourcePrefix
		return res, nil
	}
	if code != "" {
		res.Locale, res.Source = def, SourceDefault
		return res, nil
	}

	if l := MatchAcceptLanguage(req.AcceptLanguage, codes); l != "" {
		res.Locale, res.Source = l, SourceHeader
		return res, nil
	}
	if country := s.geo.Country(req.IP); country != "" {
		if l := MatchCountry(country, codes); l != "" {
			res.Locale, res.Source = l, SourceGeoIP
			return res, nil
		}
	}
	if l := canonical(req.DomainLocale, codes); l != "" {
		res.Locale, res.Source = l, SourceDomain
		return res, nil
	}
	res.Locale, res.Source = def, SourceDefault
	return res, nil
}

// Alternates lists the url of an entity in every active locale of its
// website. Locales where it is offline point to the locale home.
func (s *Service) Alternates(ctx context.Context, websiteID int64, entityType string, entityID int64, current string) ([]Alternate, error) {
	locales, err := s.Locales(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	def, err := defaultOf(locales)
	if err != nil {
		return nil, err
	}
	urls, err := s.q.ListEntityUrls(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing urls: %w", err)
	}
	byLocale := make(map[string]store.Url, len(urls))
	for _, u := range urls {
		if u.WebsiteID == websiteID && u.IsOnline {
			byLocale[u.Locale] = u
		}
	}

	out := make([]Alternate, 0, len(locales))
	for _, l := range locales {
		alt := Alternate{Locale: l.Code, Name: l.Name, Current: l.Code == current}
		if u, ok := byLocale[l.Code]; ok {
			alt.URL = model.LocalePath(l.Code, def, u.Code)
		} else {
			alt.URL = model.LocalePath(l.Code, def, "")
			alt.Fallback = true
		}
		out = append(out, alt)
	}
	return out, nil
}

// SplitPath separates a leading locale segment from the rest of a path.
// "/fr/a-propos" gives ("fr", "a-propos"); "/about" gives ("", "about").
func SplitPath(path string, codes []string) (prefix, code string) {
	trimmed := strings.Trim(path, "/")
	first, rest, _ := strings.Cut(trimmed, "/")
	if l := canonical(first, codes); l != "" && strings.EqualFold(first, l) {
		return l, strings.Trim(rest, "/")
	}
	return "", trimmed
}

// canonical returns the configured spelling of code, or "".
func canonical(code string, codes []string) string {
	if code == "" {
		return ""
	}
	for _, c := range codes {
		if strings.EqualFold(c, code) {
			return c
		}
	}
	return ""
}

// MatchAcceptLanguage returns the configured locale best matching an
// Accept-Language header, or "" when nothing matches.
func MatchAcceptLanguage(header string, codes []string) string {
	if header == "" || len(codes) == 0 {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return match(tags, codes)
}

// MatchCountry returns the configured locale of the likely language of a
// country, or "".
func MatchCountry(country string, codes []string) string {
	region, err := language.ParseRegion(country)
	if err != nil {
		return ""
	}
	tag, err := language.Compose(language.Und, region)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	likely, err := language.Compose(base, region)
	if err != nil {
		return ""
	}
	return match([]language.Tag{likely}, codes)
}

func match(want []language.Tag, codes []string) string {
	supported := make([]language.Tag, 0, len(codes))
	kept := make([]string, 0, len(codes))
	for _, c := range codes {
		tag, err := language.Parse(c)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		kept = append(kept, c)
	}
	if len(supported) == 0 {
		return ""
	}
	_, idx, conf := language.NewMatcher(supported).Match(want...)
	if conf == language.No || idx < 0 || idx >= len(kept) {
		return ""
	}
	return kept[idx]
}
