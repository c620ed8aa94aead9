// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/mcms-go/internal/util"
)

// Manifest lists the files generated from one source.
type Manifest struct {
	MediaID   int64     `json:"media_id,omitempty"`
	Source    string    `json:"source"`
	Files     []string  `json:"files"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) manifestPath(mediaID int64, source string) string {
	if mediaID != 0 {
		return filepath.Join(s.cfg.ManifestDir, "media-"+strconv.FormatInt(mediaID, 10)+".json")
	}
	sum := sha256.Sum256([]byte(source))
	return filepath.Join(s.cfg.ManifestDir, "path-"+hex.EncodeToString(sum[:8])+".json")
}

// record adds files to the manifest of a source.
func (s *Service) record(mediaID int64, source string, files []string) error {
	if s.cfg.ManifestDir == "" {
		return nil
	}
	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()

	p := s.manifestPath(mediaID, source)
	m, err := readManifest(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	m.MediaID = mediaID
	m.Source = source

	changed := false
	for _, f := range files {
		if !slices.Contains(m.Files, f) {
			m.Files = append(m.Files, f)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	m.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(p, data, 0o644)
}

func readManifest(p string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(p)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest %s: %w", filepath.Base(p), err)
	}
	return m, nil
}

// Manifests returns every manifest on disk.
func (s *Service) Manifests() ([]Manifest, error) {
	entries, err := os.ReadDir(s.cfg.ManifestDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifests: %w", err)
	}
	var out []Manifest
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		m, err := readManifest(filepath.Join(s.cfg.ManifestDir, e.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable manifest", "file", e.Name(), "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Purge removes the generated files of one media.
func (s *Service) Purge(mediaID int64) error {
	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()
	return s.purgeLocked(s.manifestPath(mediaID, ""))
}

func (s *Service) purgeLocked(p string) error {
	m, err := readManifest(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, f := range m.Files {
		abs, err := util.ResolveUnder(s.cfg.PublicDir, f)
		if err != nil {
			continue
		}
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", f, err)
		}
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// PruneManifests drops the files of media that no longer exist and of
// path sources whose original is gone. It returns the manifests removed.
func (s *Service) PruneManifests(ctx context.Context) (int, error) {
	manifests, err := s.Manifests()
	if err != nil {
		return 0, err
	}

	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()

	pruned := 0
	for _, m := range manifests {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}
		stale, err := s.stale(ctx, m)
		if err != nil {
			return pruned, err
		}
		if !stale {
			continue
		}
		if err := s.purgeLocked(s.manifestPath(m.MediaID, m.Source)); err != nil {
			return pruned, err
		}
		pruned++
	}
	if pruned > 0 {
		s.logger.Info("pruned thumbnail manifests", "count", pruned)
	}
	return pruned, nil
}

func (s *Service) stale(ctx context.Context, m Manifest) (bool, error) {
	if m.MediaID != 0 {
		_, err := s.q.GetMedia(ctx, m.MediaID)
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	abs, err := util.ResolveUnder(s.cfg.PublicDir, m.Source)
	if err != nil {
		return true, nil
	}
	_, err = os.Stat(abs)
	return errors.Is(err, os.ErrNotExist), nil
}
