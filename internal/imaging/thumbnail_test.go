// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/testutil"
	"github.com/olegiv/mcms-go/internal/util"
)

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		w, h         int
		crop         bool
		wantW, wantH int
	}{
		{"fit width", 400, 200, 100, 0, false, 100, 50},
		{"fit height", 400, 200, 0, 50, false, 100, 50},
		{"fit box", 400, 200, 100, 100, false, 100, 50},
		{"no upscale fit", 400, 200, 1000, 0, false, 400, 200},
		{"no size", 400, 200, 0, 0, true, 400, 200},
		{"crop exact", 400, 200, 100, 100, true, 100, 100},
		{"crop no upscale", 400, 200, 800, 800, true, 200, 200},
		{"crop keeps ratio", 400, 200, 600, 150, true, 400, 100},
		{"empty source", 0, 0, 100, 100, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := TargetSize(tt.srcW, tt.srcH, tt.w, tt.h, tt.crop)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("TargetSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDetectScreen(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"", model.ScreenDesktop},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1", model.ScreenMobile},
		{"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1", model.ScreenTablet},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", model.ScreenDesktop},
	}
	for _, tt := range tests {
		if got := DetectScreen(tt.ua); got != tt.want {
			t.Errorf("DetectScreen(%.30q) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

type thumbFixture struct {
	svc    *Service
	public string
	q      *store.Queries
	site   testutil.Site
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, createTestImage(w, h)))
}

func newThumbFixture(t *testing.T) *thumbFixture {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	public := t.TempDir()
	writePNG(t, filepath.Join(public, "images", "placeholder.png"), 100, 100)
	writePNG(t, filepath.Join(public, "uploads", "photo.png"), 400, 200)

	svc := NewService(db, Config{
		PublicDir:   public,
		ThumbsDir:   "thumbnails",
		ManifestDir: filepath.Join(t.TempDir(), "manifests"),
		Placeholder: "images/placeholder.png",
		Quality:     80,
	}, testutil.TestLoggerSilent())

	return &thumbFixture{svc: svc, public: public, q: store.New(db), site: testutil.SeedSite(t, db)}
}

func (f *thumbFixture) exists(t *testing.T, url string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(f.public, filepath.FromSlash(strings.TrimPrefix(url, "/"))))
	return err == nil
}

func (f *thumbFixture) media(t *testing.T, rel string, w, h int64) store.Media {
	t.Helper()
	now := time.Now().UTC()
	m, err := f.q.CreateMedia(context.Background(), store.CreateMediaParams{
		WebsiteID: f.site.Website.ID, Uuid: "u-" + filepath.Base(rel), Filename: filepath.Base(rel),
		Path: rel, MimeType: MimeTypePNG, Width: w, Height: h, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return m
}

func TestExecuteResizesAndNeverUpscales(t *testing.T) {
	f := newThumbFixture(t)
	ctx := context.Background()

	th, err := f.svc.Execute(ctx, Request{Path: "uploads/photo.png", Options: Options{Width: 100}, Lazy: true})
	require.NoError(t, err)
	assert.Equal(t, 100, th.Width)
	assert.Equal(t, 50, th.Height)
	assert.False(t, th.Placeholder)
	assert.True(t, strings.HasPrefix(th.Src, "/thumbnails/100x0/"))
	assert.True(t, strings.HasSuffix(th.Src, ".png"))
	assert.True(t, f.exists(t, th.Src))
	assert.True(t, f.exists(t, th.Original))
	assert.Regexp(t, `^/thumbnails/originals/uploads/photo\.\d+\.png$`, th.Original)
	assert.Equal(t, "lazy", th.Attributes["loading"])
	assert.Equal(t, "100", th.Attributes["width"])

	// Reuse: same request renders nothing new.
	_, err = f.svc.Execute(ctx, Request{Path: "uploads/photo.png", Options: Options{Width: 100}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.svc.Rendered())

	big, err := f.svc.Execute(ctx, Request{Path: "uploads/photo.png", Options: Options{Width: 1000, Height: 1000}})
	require.NoError(t, err)
	assert.Equal(t, 400, big.Width)
	assert.Equal(t, 200, big.Height)
	assert.Equal(t, big.Original, big.Src)
	assert.NotContains(t, big.Attributes, "loading")
}

func TestExecutePlaceholderFallback(t *testing.T) {
	f := newThumbFixture(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(f.public, "uploads", "broken.jpg"), []byte("not an image"), 0o644))

	for _, p := range []string{"uploads/missing.png", "uploads/broken.jpg"} {
		th, err := f.svc.Execute(ctx, Request{Path: p, Options: Options{Width: 50}})
		require.NoError(t, err, p)
		assert.True(t, th.Placeholder, p)
		assert.Equal(t, 50, th.Width, p)
		assert.True(t, f.exists(t, th.Src), p)
	}

	_, err := f.svc.Execute(ctx, Request{Path: "uploads/missing.png", Placeholder: "images/none.png"})
	assert.True(t, errors.Is(err, ErrNoSource), "err = %v", err)

	_, err = f.svc.Execute(ctx, Request{Path: "../../etc/passwd"})
	assert.True(t, errors.Is(err, util.ErrPathTraversal), "err = %v", err)

	_, err = f.svc.Execute(ctx, Request{Path: "uploads/photo.png", Options: Options{Quality: 101}})
	assert.True(t, errors.Is(err, ErrInvalidOptions), "err = %v", err)
}

func TestExecuteCollapsesConcurrentRequests(t *testing.T) {
	f := newThumbFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Execute(ctx, Request{Path: "uploads/photo.png", Options: Options{Width: 64, Height: 64, Crop: true}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, f.svc.Rendered())
}

func TestExecuteConfigurationScreens(t *testing.T) {
	f := newThumbFixture(t)
	ctx := context.Background()
	writePNG(t, filepath.Join(f.public, "uploads", "u1", "hero.png"), 800, 400)
	m := f.media(t, "uploads/u1/hero.png", 800, 400)

	_, err := f.q.UpsertMediaIntl(ctx, m.ID, "en", "Hero image", "")
	require.NoError(t, err)

	for _, c := range []store.CreateThumbConfigurationParams{
		{Slug: "hero", Screen: model.ScreenTablet, Width: 300},
		{Slug: "hero", Screen: model.ScreenDesktop, Width: 600},
	} {
		c.WebsiteID = f.site.Website.ID
		_, err := f.q.CreateThumbConfiguration(ctx, c)
		require.NoError(t, err)
	}

	th, err := f.svc.Execute(ctx, Request{MediaID: m.ID, Configuration: "hero", Screen: model.ScreenMobile, Locale: "fr"})
	require.NoError(t, err)
	assert.Equal(t, model.ScreenTablet, th.Screen, "mobile falls back to tablet")
	assert.Equal(t, 300, th.Width)
	assert.Len(t, th.Srcset, 2)
	assert.Contains(t, th.Attributes["srcset"], " 300w, ")
	assert.Equal(t, "Hero image", th.Alt, "alt falls back to the default locale")
	assert.Equal(t, "Hero image", th.Title)

	_, err = f.svc.Execute(ctx, Request{MediaID: m.ID, Configuration: "nope"})
	assert.True(t, errors.Is(err, ErrNoConfiguration))

	// Another website cannot read this media.
	_, err = f.svc.Execute(ctx, Request{WebsiteID: f.site.Website.ID + 100, MediaID: m.ID, Configuration: "hero"})
	assert.Error(t, err)
}

func TestExecuteAppliesStoredCrop(t *testing.T) {
	f := newThumbFixture(t)
	ctx := context.Background()
	writePNG(t, filepath.Join(f.public, "uploads", "u2", "wide.png"), 800, 200)
	m := f.media(t, "uploads/u2/wide.png", 800, 200)

	c, err := f.q.CreateThumbConfiguration(ctx, store.CreateThumbConfigurationParams{
		WebsiteID: f.site.Website.ID, Slug: "square", Screen: model.ScreenDesktop, Width: 100, Height: 100, Crop: true,
	})
	require.NoError(t, err)
	_, err = f.q.UpsertThumb(ctx, store.UpsertThumbParams{
		MediaID: m.ID, ConfigurationID: c.ID, CropX: 600, CropY: 0, CropWidth: 200, CropHeight: 200, UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	th, err := f.svc.Execute(ctx, Request{MediaID: m.ID, Configuration: "square"})
	require.NoError(t, err)
	assert.Equal(t, 100, th.Width)
	assert.Equal(t, 100, th.Height)

	file, err := os.Open(filepath.Join(f.public, filepath.FromSlash(strings.TrimPrefix(th.Src, "/"))))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
}

func TestPruneManifests(t *testing.T) {
	f := newThumbFixture(t)
	ctx := context.Background()
	writePNG(t, filepath.Join(f.public, "uploads", "u3", "gone.png"), 200, 200)
	m := f.media(t, "uploads/u3/gone.png", 200, 200)

	th, err := f.svc.Execute(ctx, Request{MediaID: m.ID, Options: Options{Width: 50}})
	require.NoError(t, err)

	manifests, err := f.svc.Manifests()
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, m.ID, manifests[0].MediaID)
	assert.Equal(t, "uploads/u3/gone.png", manifests[0].Source)

	n, err := f.svc.PruneManifests(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "live media is kept")

	require.NoError(t, f.q.DeleteMedia(ctx, m.ID))
	n, err = f.svc.PruneManifests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, f.exists(t, th.Src))
	assert.False(t, f.exists(t, th.Original))

	manifests, err = f.svc.Manifests()
	require.NoError(t, err)
	assert.Empty(t, manifests)
}
