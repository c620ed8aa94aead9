// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package locale

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/util"
)

// DomainsFile is the name of the domain index file in the cache dir.
const DomainsFile = "domains.cache.json"

// ErrUnknownHost is returned when a host matches no domain and no website
// is marked default.
var ErrUnknownHost = errors.New("host serves no website")

// Target is what a host resolves to.
type Target struct {
	WebsiteID int64  `json:"website_id"`
	Locale    string `json:"locale"`
	Host      string `json:"host"`
}

// DomainIndex maps hosts to websites.
type DomainIndex struct {
	Hosts map[string]Target `json:"hosts"`
	// Primary holds the default domain of each website, keyed by id.
	Primary map[int64]Target `json:"primary"`
	// Fallback serves unknown hosts; zero when no website is default.
	Fallback Target    `json:"fallback"`
	BuiltAt  time.Time `json:"built_at"`
}

// Resolver answers host lookups from an in-memory index backed by the
// domains.cache.json file and the shared cache.
type Resolver struct {
	q      *store.Queries
	path   string
	shared *cache.TypedCache[DomainIndex]
	logger *slog.Logger

	mu    sync.RWMutex
	index *DomainIndex
}

// NewResolver creates a resolver writing its index to path. A nil cache
// manager keeps the index process-local.
func NewResolver(db *sql.DB, path string, cm *cache.Manager, logger *slog.Logger) *Resolver {
	r := &Resolver{q: store.New(db), path: path, logger: logger}
	if cm != nil {
		r.shared = cache.Register[DomainIndex](cm, cache.NamespaceDomains, 0)
	}
	return r
}

const sharedKey = "index"

// Load fills the index from the shared cache, then the file, and
// rebuilds it from the database when neither has it.
func (r *Resolver) Load(ctx context.Context) error {
	if r.shared != nil {
		if idx, ok := r.shared.Get(ctx, sharedKey); ok {
			r.swap(&idx)
			return nil
		}
	}
	if r.path != "" {
		data, err := os.ReadFile(r.path)
		switch {
		case err == nil:
			var idx DomainIndex
			if err := json.Unmarshal(data, &idx); err == nil && idx.Hosts != nil {
				r.swap(&idx)
				return nil
			}
			r.logger.Warn("domain index file unreadable, rebuilding", "path", r.path)
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("reading domain index: %w", err)
		}
	}
	return r.Rebuild(ctx)
}

// Rebuild reads every domain, writes the index file atomically and
// publishes the index. Lifecycle calls it after domain writes.
func (r *Resolver) Rebuild(ctx context.Context) error {
	idx, err := r.build(ctx)
	if err != nil {
		return err
	}
	if r.path != "" {
		data, err := json.MarshalIndent(idx, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding domain index: %w", err)
		}
		if err := util.WriteFileAtomic(r.path, data, 0o644); err != nil {
			return fmt.Errorf("writing domain index: %w", err)
		}
	}
	if r.shared != nil {
		if err := r.shared.Set(ctx, sharedKey, *idx); err != nil {
			r.logger.Warn("sharing domain index failed", "error", err)
		}
	}
	r.swap(idx)
	r.logger.Debug("domain index rebuilt", "hosts", len(idx.Hosts))
	return nil
}

func (r *Resolver) build(ctx context.Context) (*DomainIndex, error) {
	websites, err := r.q.ListWebsites(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing websites: %w", err)
	}
	domains, err := r.q.ListDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}

	idx := &DomainIndex{
		Hosts:   make(map[string]Target, len(domains)),
		Primary: make(map[int64]Target),
		BuiltAt: time.Now().UTC(),
	}
	for _, d := range domains {
		t := Target{WebsiteID: d.WebsiteID, Locale: d.Locale, Host: util.NormalizeHost(d.Host)}
		idx.Hosts[t.Host] = t
		if _, ok := idx.Primary[d.WebsiteID]; !ok || d.IsDefault {
			idx.Primary[d.WebsiteID] = t
		}
	}
	for _, w := range websites {
		if !w.IsDefault {
			continue
		}
		if t, ok := idx.Primary[w.ID]; ok {
			idx.Fallback = t
		} else {
			idx.Fallback = Target{WebsiteID: w.ID}
		}
	}
	return idx, nil
}

func (r *Resolver) swap(idx *DomainIndex) {
	r.mu.Lock()
	r.index = idx
	r.mu.Unlock()
}

func (r *Resolver) current(ctx context.Context) (*DomainIndex, error) {
	r.mu.RLock()
	idx := r.index
	r.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index, nil
}

// Resolve returns the website and locale served on host. Unknown hosts,
// with or without a "www." prefix, go to the default website.
func (r *Resolver) Resolve(ctx context.Context, host string) (Target, error) {
	idx, err := r.current(ctx)
	if err != nil {
		return Target{}, err
	}
	h := util.NormalizeHost(host)
	if t, ok := idx.Hosts[h]; ok {
		return t, nil
	}
	if bare, ok := strings.CutPrefix(h, "www."); ok {
		if t, ok := idx.Hosts[bare]; ok {
			return t, nil
		}
	} else if t, ok := idx.Hosts["www."+h]; ok {
		return t, nil
	}
	if idx.Fallback.WebsiteID != 0 {
		return idx.Fallback, nil
	}
	return Target{}, fmt.Errorf("%w: %s", ErrUnknownHost, h)
}

// PrimaryHost returns the default domain of a website.
func (r *Resolver) PrimaryHost(ctx context.Context, websiteID int64) (string, bool) {
	idx, err := r.current(ctx)
	if err != nil {
		return "", false
	}
	t, ok := idx.Primary[websiteID]
	return t.Host, ok
}
