// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mcms-go/internal/imaging"
	"github.com/olegiv/mcms-go/internal/store"
	"github.com/olegiv/mcms-go/internal/testutil"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal.jpg", "normal.jpg"},
		{"file name.jpg", "file-name.jpg"},
		{"file'name.jpg", "filename.jpg"},
		{"file\"name.jpg", "filename.jpg"},
		{"<script>.jpg", "script.jpg"},
		{"file&name.jpg", "filename.jpg"},
		{"path/to/file.jpg", "file.jpg"},
		{"../../../etc/passwd", "passwd.bin"},
		{"noextension", "noextension.bin"},
		{"file#name?.jpg", "filename.jpg"},
		{"file%20name.jpg", "file20name.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetMimeTypeFromExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"image.jpg", imaging.MimeTypeJPEG},
		{"image.jpeg", imaging.MimeTypeJPEG},
		{"IMAGE.JPG", imaging.MimeTypeJPEG},
		{"photo.png", imaging.MimeTypePNG},
		{"animation.gif", imaging.MimeTypeGIF},
		{"modern.webp", imaging.MimeTypeWebP},
		{"logo.svg", imaging.MimeTypeSVG},
		{"document.pdf", imaging.MimeTypePDF},
		{"unknown.xyz", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := getMimeTypeFromExtension(tt.filename); got != tt.want {
				t.Errorf("getMimeTypeFromExtension(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

type mediaFixture struct {
	svc    *MediaService
	public string
	site   testutil.Site
	db     *sql.DB
}

func newMediaFixture(t *testing.T) *mediaFixture {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	public := t.TempDir()
	svc := NewMediaService(db, public, "uploads", nil, nil, testutil.TestLoggerSilent())
	return &mediaFixture{svc: svc, public: public, site: testutil.SeedSite(t, db), db: db}
}

func TestUploadImage(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()

	media, err := f.svc.Upload(ctx, Upload{
		WebsiteID: f.site.Website.ID,
		Filename:  "My Photo.png",
		Body:      bytes.NewReader(pngBytes(t, 40, 30)),
		Intls:     []MediaIntl{{Locale: "en", Alt: " A photo ", Title: "Photo"}},
	})
	require.NoError(t, err)

	assert.Equal(t, imaging.MimeTypePNG, media.MimeType)
	assert.Equal(t, int64(40), media.Width)
	assert.Equal(t, int64(30), media.Height)
	assert.Equal(t, "My-Photo.png", media.Filename)
	assert.Equal(t, "uploads/"+media.Uuid+"/My-Photo.png", media.Path)
	assert.Equal(t, "/"+media.Path, f.svc.URL(media))
	assert.FileExists(t, filepath.Join(f.public, filepath.FromSlash(media.Path)))

	intls, err := store.New(f.db).ListMediaIntls(ctx, media.ID)
	require.NoError(t, err)
	require.Len(t, intls, 1)
	assert.Equal(t, "A photo", intls[0].Alt)
}

func TestUploadRejects(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		up   Upload
		want error
	}{
		{"no website", Upload{Filename: "a.png", Body: bytes.NewReader(pngBytes(t, 2, 2))}, ErrNoWebsite},
		{"empty", Upload{WebsiteID: f.site.Website.ID, Filename: "a.png", Body: strings.NewReader("")}, ErrEmptyUpload},
		{"html", Upload{WebsiteID: f.site.Website.ID, Filename: "a.html", Body: strings.NewReader("<html><body>x</body></html>")}, ErrFileType},
		{"text named svg", Upload{WebsiteID: f.site.Website.ID, Filename: "a.svg", Body: strings.NewReader("plain text")}, ErrFileType},
		{"too large", Upload{WebsiteID: f.site.Website.ID, Filename: "big.pdf", Body: bytes.NewReader(make([]byte, MaxUploadSize+1))}, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, tt.up)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestUploadSVGAndDelete(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()

	media, err := f.svc.Upload(ctx, Upload{
		WebsiteID: f.site.Website.ID,
		Filename:  "logo.svg",
		Body:      strings.NewReader(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`),
	})
	require.NoError(t, err)
	assert.Equal(t, imaging.MimeTypeSVG, media.MimeType)
	assert.Zero(t, media.Width)

	require.NoError(t, f.svc.SetIntls(ctx, media.ID, []MediaIntl{{Locale: "fr", Alt: "Logo"}}))

	dir := filepath.Join(f.public, "uploads", media.Uuid)
	assert.DirExists(t, dir)

	require.NoError(t, f.svc.Delete(ctx, media.ID))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	_, err = store.New(f.db).GetMedia(ctx, media.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.Error(t, f.svc.Delete(ctx, media.ID))
}
