// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/util"
)

// DefaultQuality is used when neither the configuration nor the service sets one.
const DefaultQuality = 85

var (
	// ErrNoSource is returned when neither the original nor the placeholder can be read.
	ErrNoSource = errors.New("no image source")
	// ErrNoConfiguration is returned for an unknown configuration slug.
	ErrNoConfiguration = errors.New("unknown thumbnail configuration")

	// ErrInvalidOptions is returned for negative sizes or a quality above 100.
	ErrInvalidOptions = errors.New("invalid thumbnail options")

	errBrokenSource = errors.New("broken source image")
)

// Config locates the files the thumbnail service reads and writes.
type Config struct {
	PublicDir   string
	ThumbsDir   string // below PublicDir, also the URL prefix
	ManifestDir string
	Placeholder string // below PublicDir
	Quality     int
}

// Options size an ad-hoc thumbnail when no configuration slug is given.
type Options struct {
	Width   int  `json:"width"`
	Height  int  `json:"height"`
	Crop    bool `json:"crop"`
	Quality int  `json:"quality"`
}

// Request asks for the thumbnail of a media or of a file below PublicDir.
type Request struct {
	WebsiteID     int64
	MediaID       int64
	Path          string
	Configuration string
	Screen        string // detected from UserAgent when empty
	UserAgent     string
	Locale        string
	Lazy          bool
	Placeholder   string // overrides Config.Placeholder
	Options       Options
}

// Thumbnail is the rendered result.
type Thumbnail struct {
	Src         string            `json:"src"`
	Srcset      map[string]string `json:"srcset,omitempty"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Screen      string            `json:"screen"`
	Alt         string            `json:"alt"`
	Title       string            `json:"title"`
	Original    string            `json:"original"`
	Placeholder bool              `json:"placeholder"`
	Attributes  map[string]string `json:"attributes"`
}

// spec is one rendition to produce.
type spec struct {
	configID int64
	bucket   string
	width    int
	height   int
	crop     bool
	quality  int
}

// source is a readable original.
type source struct {
	rel    string // slash separated, below PublicDir
	abs    string
	mtime  time.Time
	format string
	width  int // after EXIF orientation
	height int
	orient int
}

// rendition is one generated (or reused) file.
type rendition struct {
	rel    string
	width  int
	height int
}

// Service renders thumbnails on demand.
type Service struct {
	q      *store.Queries
	cfg    Config
	logger *slog.Logger

	group      singleflight.Group
	manifestMu sync.Mutex
	rendered   atomic.Int64
}

// NewService creates a thumbnail service.
func NewService(db *sql.DB, cfg Config, logger *slog.Logger) *Service {
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = DefaultQuality
	}
	if cfg.ThumbsDir == "" {
		cfg.ThumbsDir = "thumbnails"
	}
	return &Service{q: store.New(db), cfg: cfg, logger: logger}
}

// Rendered reports how many files the service has encoded.
func (s *Service) Rendered() int64 {
	return s.rendered.Load()
}

// Execute resolves the source, picks the configuration for the screen and
// returns the thumbnail, generating files that do not exist yet.
func (s *Service) Execute(ctx context.Context, req Request) (Thumbnail, error) {
	rel, media, websiteID, err := s.resolve(ctx, req)
	if err != nil {
		return Thumbnail{}, err
	}

	screen := req.Screen
	if screen == "" {
		screen = DetectScreen(req.UserAgent)
	}
	if !model.IsScreen(screen) {
		screen = model.ScreenDesktop
	}

	specs, err := s.specs(ctx, websiteID, req)
	if err != nil {
		return Thumbnail{}, err
	}

	crops, err := s.cropBoxes(ctx, media, specs)
	if err != nil {
		return Thumbnail{}, err
	}

	src, err := s.openSource(rel)
	if err == nil {
		var (
			thumb Thumbnail
			files []string
		)
		thumb, files, err = s.build(src, specs, screen, crops)
		if err == nil {
			return s.finish(ctx, thumb, src.rel, files, req, media)
		}
	}
	if !errors.Is(err, errBrokenSource) {
		return Thumbnail{}, err
	}

	s.logger.Warn("thumbnail source unusable, using placeholder",
		"category", "media", "source", rel, "media_id", media.ID, "error", err)

	ph := req.Placeholder
	if ph == "" {
		ph = s.cfg.Placeholder
	}
	if ph == "" {
		return Thumbnail{}, fmt.Errorf("%w: %s", ErrNoSource, rel)
	}
	src, err = s.openSource(ph)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("%w: placeholder %s: %v", ErrNoSource, ph, err)
	}
	thumb, _, err := s.build(src, specs, screen, nil)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("%w: placeholder %s: %v", ErrNoSource, ph, err)
	}
	thumb.Placeholder = true
	// Placeholder files are shared and never recorded in a manifest.
	return s.finish(ctx, thumb, "", nil, req, media)
}

// resolve returns the source path below PublicDir.
func (s *Service) resolve(ctx context.Context, req Request) (string, store.Media, int64, error) {
	if req.MediaID != 0 {
		m, err := s.q.GetMedia(ctx, req.MediaID)
		if err != nil {
			return "", store.Media{}, 0, fmt.Errorf("loading media %d: %w", req.MediaID, err)
		}
		if req.WebsiteID != 0 && m.WebsiteID != req.WebsiteID {
			return "", store.Media{}, 0, fmt.Errorf("loading media %d: %w", req.MediaID, sql.ErrNoRows)
		}
		return m.Path, m, m.WebsiteID, nil
	}
	if req.Path == "" {
		return "", store.Media{}, 0, fmt.Errorf("%w: no media or path", ErrNoSource)
	}
	// Reject traversal up front; a missing file is handled by the placeholder.
	if _, err := util.ResolveUnder(s.cfg.PublicDir, req.Path); err != nil {
		return "", store.Media{}, 0, err
	}
	return strings.TrimPrefix(path.Clean("/"+req.Path), "/"), store.Media{}, req.WebsiteID, nil
}

// specs returns the rendition per screen.
func (s *Service) specs(ctx context.Context, websiteID int64, req Request) (map[string]spec, error) {
	out := make(map[string]spec)

	if req.Configuration == "" {
		o := req.Options
		if o.Width < 0 || o.Height < 0 || o.Quality < 0 || o.Quality > 100 {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidOptions, o)
		}
		sp := spec{
			bucket:  fmt.Sprintf("%dx%d", o.Width, o.Height),
			width:   o.Width,
			height:  o.Height,
			crop:    o.Crop && o.Width > 0 && o.Height > 0,
			quality: o.Quality,
		}
		if sp.crop {
			sp.bucket += "c"
		}
		out[model.ScreenDesktop] = sp
		return out, nil
	}

	configs, err := s.q.ListThumbConfigurationsBySlug(ctx, websiteID, req.Configuration)
	if err != nil {
		return nil, fmt.Errorf("listing thumb configurations: %w", err)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoConfiguration, req.Configuration)
	}
	for _, c := range configs {
		out[c.Screen] = spec{
			configID: c.ID,
			bucket:   c.Slug + "-" + c.Screen,
			width:    int(c.Width),
			height:   int(c.Height),
			crop:     c.Crop,
			quality:  int(c.Quality),
		}
	}
	return out, nil
}

// pick follows the screen fallback chain, then takes the largest screen
// that has a rendition.
func pick(specs map[string]spec, screen string) (string, spec) {
	for _, sc := range model.ScreenFallbacks[screen] {
		if sp, ok := specs[sc]; ok {
			return sc, sp
		}
	}
	for _, sc := range []string{model.ScreenDesktop, model.ScreenTablet, model.ScreenMobile} {
		if sp, ok := specs[sc]; ok {
			return sc, sp
		}
	}
	return model.ScreenDesktop, spec{}
}

// cropBoxes loads the stored crop of the media for each configuration.
func (s *Service) cropBoxes(ctx context.Context, media store.Media, specs map[string]spec) (map[int64]image.Rectangle, error) {
	if media.ID == 0 {
		return nil, nil
	}
	boxes := make(map[int64]image.Rectangle)
	for _, sp := range specs {
		if sp.configID == 0 {
			continue
		}
		t, err := s.q.GetThumb(ctx, media.ID, sp.configID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading crop: %w", err)
		}
		if t.CropWidth > 0 && t.CropHeight > 0 {
			boxes[sp.configID] = image.Rect(int(t.CropX), int(t.CropY), int(t.CropX+t.CropWidth), int(t.CropY+t.CropHeight))
		}
	}
	return boxes, nil
}

// openSource stats and sniffs a file below PublicDir.
func (s *Service) openSource(rel string) (source, error) {
	abs, err := util.ResolveUnder(s.cfg.PublicDir, rel)
	if err != nil {
		return source{}, err
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return source{}, fmt.Errorf("%w: %s missing", errBrokenSource, rel)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return source{}, fmt.Errorf("%w: %v", errBrokenSource, err)
	}
	format := detectFormat(data)
	if format == "" {
		return source{}, fmt.Errorf("%w: %s: %v", errBrokenSource, rel, ErrUnsupported)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return source{}, fmt.Errorf("%w: %s: %v", errBrokenSource, rel, err)
	}

	src := source{
		rel:    strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/"),
		abs:    abs,
		mtime:  info.ModTime(),
		format: format,
		width:  cfg.Width,
		height: cfg.Height,
		orient: 1,
	}
	if format == "jpeg" {
		src.orient = readExifOrientation(bytes.NewReader(data))
		if src.orient >= 5 && src.orient <= 8 {
			src.width, src.height = src.height, src.width
		}
	}
	return src, nil
}

// build renders the chosen screen plus the srcset of every screen.
// The returned files are relative to PublicDir, source copy first.
func (s *Service) build(src source, specs map[string]spec, screen string, crops map[int64]image.Rectangle) (Thumbnail, []string, error) {
	original, err := s.versionedCopy(src)
	if err != nil {
		return Thumbnail{}, nil, err
	}

	chosen, primary := pick(specs, screen)
	main, err := s.render(src, primary, crops[primary.configID], original)
	if err != nil {
		return Thumbnail{}, nil, err
	}

	thumb := Thumbnail{
		Src:      s.url(main.rel),
		Width:    main.width,
		Height:   main.height,
		Screen:   chosen,
		Original: s.url(original),
	}

	files := []string{original, main.rel}
	if len(specs) > 1 {
		thumb.Srcset = make(map[string]string, len(specs))
		var entries []rendition
		seen := map[string]bool{}
		for sc, sp := range specs {
			r, err := s.render(src, sp, crops[sp.configID], original)
			if err != nil {
				return Thumbnail{}, nil, err
			}
			thumb.Srcset[sc] = s.url(r.rel)
			files = append(files, r.rel)
			if !seen[r.rel] {
				seen[r.rel] = true
				entries = append(entries, r)
			}
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].width < entries[j].width })
		parts := make([]string, len(entries))
		for i, r := range entries {
			parts[i] = s.url(r.rel) + " " + strconv.Itoa(r.width) + "w"
		}
		thumb.Attributes = map[string]string{"srcset": strings.Join(parts, ", ")}
	}
	return thumb, files, nil
}

// render produces one rendition, reusing an existing file.
func (s *Service) render(src source, sp spec, box image.Rectangle, original string) (rendition, error) {
	bw, bh := src.width, src.height
	if !box.Empty() {
		box = box.Intersect(image.Rect(0, 0, src.width, src.height))
		if box.Empty() {
			box = image.Rectangle{}
		} else {
			bw, bh = box.Dx(), box.Dy()
		}
	}

	tw, th := TargetSize(bw, bh, sp.width, sp.height, sp.crop)
	if box.Empty() && tw == src.width && th == src.height {
		return rendition{rel: original, width: tw, height: th}, nil
	}

	quality := sp.quality
	if quality <= 0 {
		quality = s.cfg.Quality
	}

	key := renditionKey(src, tw, th, sp.crop, quality, box)
	base := strings.TrimSuffix(path.Base(src.rel), path.Ext(src.rel))
	rel := path.Join(s.cfg.ThumbsDir, sp.bucket, key[:2], base+"-"+key[:12]+outputExt(src.format))

	dst, err := util.ResolveUnder(s.cfg.PublicDir, rel)
	if err != nil {
		return rendition{}, err
	}
	if _, err := os.Stat(dst); err == nil {
		return rendition{rel: rel, width: tw, height: th}, nil
	}

	_, err, _ = s.group.Do(dst, func() (any, error) {
		if _, err := os.Stat(dst); err == nil {
			return nil, nil
		}
		return nil, s.generate(src, dst, box, tw, th, sp.crop, quality)
	})
	if err != nil {
		return rendition{}, err
	}
	return rendition{rel: rel, width: tw, height: th}, nil
}

func (s *Service) generate(src source, dst string, box image.Rectangle, tw, th int, crop bool, quality int) error {
	data, err := os.ReadFile(src.abs)
	if err != nil {
		return fmt.Errorf("%w: %v", errBrokenSource, err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", errBrokenSource, err)
	}
	img = applyOrientation(img, src.orient)

	if !box.Empty() {
		img = imaging.Crop(img, box)
	}
	b := img.Bounds()
	switch {
	case crop:
		img = imaging.Fill(img, tw, th, imaging.Center, imaging.Lanczos)
	case tw != b.Dx() || th != b.Dy():
		img = imaging.Resize(img, tw, th, imaging.Lanczos)
	}

	out, err := encodeImage(img, src.format, quality)
	if err != nil {
		return fmt.Errorf("encoding thumbnail: %w", err)
	}
	if err := util.WriteFileAtomic(dst, out, 0o644); err != nil {
		return err
	}
	s.rendered.Add(1)
	s.logger.Debug("thumbnail generated", "source", src.rel, "width", tw, "height", th)
	return nil
}

func renditionKey(src source, w, h int, crop bool, quality int, box image.Rectangle) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%d|%t|%d|%v",
		src.rel, src.mtime.UnixNano(), w, h, crop, quality, box)))
	return hex.EncodeToString(sum[:])
}

// versionedCopy copies the source to name.<mtime>.ext below the
// thumbnails directory and returns its path.
func (s *Service) versionedCopy(src source) (string, error) {
	dir := path.Dir(src.rel)
	ext := path.Ext(src.rel)
	base := strings.TrimSuffix(path.Base(src.rel), ext)
	rel := path.Join(s.cfg.ThumbsDir, "originals", dir, base+"."+strconv.FormatInt(src.mtime.Unix(), 10)+ext)

	dst, err := util.ResolveUnder(s.cfg.PublicDir, rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(dst); err == nil {
		return rel, nil
	}
	_, err, _ = s.group.Do(dst, func() (any, error) {
		data, err := os.ReadFile(src.abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBrokenSource, err)
		}
		return nil, util.WriteFileAtomic(dst, data, 0o644)
	})
	if err != nil {
		return "", err
	}
	return rel, nil
}

func (s *Service) url(rel string) string {
	return "/" + strings.TrimPrefix(rel, "/")
}

// finish adds alt/title, HTML attributes and records the manifest.
func (s *Service) finish(ctx context.Context, thumb Thumbnail, source string, files []string, req Request, media store.Media) (Thumbnail, error) {
	if media.ID != 0 {
		if err := s.describe(ctx, &thumb, media, req.Locale); err != nil {
			return Thumbnail{}, err
		}
	}
	if len(files) > 0 {
		if err := s.record(media.ID, source, files); err != nil {
			// The thumbnail is usable; pruning just misses these files.
			s.logger.Warn("failed to write thumbnail manifest", "category", "media", "error", err)
		}
	}

	if thumb.Attributes == nil {
		thumb.Attributes = make(map[string]string)
	}
	attrs := thumb.Attributes
	attrs["src"] = thumb.Src
	attrs["width"] = strconv.Itoa(thumb.Width)
	attrs["height"] = strconv.Itoa(thumb.Height)
	attrs["alt"] = thumb.Alt
	if thumb.Title != "" {
		attrs["title"] = thumb.Title
	}
	if req.Lazy {
		attrs["loading"] = "lazy"
		attrs["decoding"] = "async"
	}
	return thumb, nil
}

func (s *Service) describe(ctx context.Context, thumb *Thumbnail, media store.Media, locale string) error {
	intls, err := s.q.ListMediaIntls(ctx, media.ID)
	if err != nil {
		return fmt.Errorf("loading media intls: %w", err)
	}
	fallback := ""
	langs, err := s.q.ListActiveLanguages(ctx, media.WebsiteID)
	if err != nil {
		return fmt.Errorf("loading languages: %w", err)
	}
	for _, l := range langs {
		if l.IsDefault {
			fallback = l.Code
		}
	}
	if locale == "" {
		locale = fallback
	}
	if in, ok := model.PickIntl(intls, func(i store.MediaIntl) string { return i.Locale }, locale, fallback); ok {
		thumb.Alt = in.Alt
		thumb.Title = in.Title
	}
	if thumb.Title == "" {
		thumb.Title = thumb.Alt
	}
	return nil
}
