// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/mcms-go/internal/cache"
	"github.com/olegiv/mcms-go/internal/imaging"
	"github.com/olegiv/mcms-go/internal/store"
)

// MaxUploadSize bounds one uploaded file.
const MaxUploadSize = 20 * 1024 * 1024 // 20MB

// Upload errors.
var (
	ErrTooLarge    = errors.New("file exceeds the upload size limit")
	ErrFileType    = errors.New("file type is not allowed")
	ErrNoWebsite   = errors.New("media needs a website")
	ErrEmptyUpload = errors.New("empty upload")
)

// AllowedMimeTypes defines the MIME types that can be uploaded.
var AllowedMimeTypes = map[string]bool{
	imaging.MimeTypeJPEG: true,
	imaging.MimeTypePNG:  true,
	imaging.MimeTypeGIF:  true,
	imaging.MimeTypeWebP: true,
	imaging.MimeTypeSVG:  true,
	imaging.MimeTypePDF:  true,
}

// MediaIntl is the localized alt and title of a media.
type MediaIntl struct {
	Locale string `json:"locale"`
	Alt    string `json:"alt"`
	Title  string `json:"title"`
}

// Upload describes one incoming file.
type Upload struct {
	WebsiteID int64
	Filename  string
	Body      io.Reader
	Intls     []MediaIntl
}

// MediaService stores uploaded files below the public directory.
type MediaService struct {
	db         *sql.DB
	processor  *imaging.Processor
	uploadsURL string // uploads dir relative to the public dir
	thumbs     *imaging.Service
	cache      *cache.Manager
	logger     *slog.Logger
	now        func() time.Time
}

// NewMediaService creates a media service writing originals to
// publicDir/uploadsDir. thumbs and cm may be nil.
func NewMediaService(db *sql.DB, publicDir, uploadsDir string, thumbs *imaging.Service, cm *cache.Manager, logger *slog.Logger) *MediaService {
	uploadsDir = strings.Trim(path.Clean("/"+filepath.ToSlash(uploadsDir)), "/")
	return &MediaService{
		db:         db,
		processor:  imaging.NewProcessor(filepath.Join(publicDir, filepath.FromSlash(uploadsDir))),
		uploadsURL: uploadsDir,
		thumbs:     thumbs,
		cache:      cm,
		logger:     logger,
		now:        time.Now,
	}
}

// Upload validates and stores a file, then records the media row and its
// intls. Images are re-encoded upright; other files are kept as-is.
func (s *MediaService) Upload(ctx context.Context, up Upload) (store.Media, error) {
	if up.WebsiteID == 0 {
		return store.Media{}, ErrNoWebsite
	}
	data, err := io.ReadAll(io.LimitReader(up.Body, MaxUploadSize+1))
	if err != nil {
		return store.Media{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return store.Media{}, ErrEmptyUpload
	}
	if len(data) > MaxUploadSize {
		return store.Media{}, ErrTooLarge
	}

	mimeType := s.processor.DetectMimeType(data)
	// Sniffing sees SVG as XML or text.
	if !AllowedMimeTypes[mimeType] && getMimeTypeFromExtension(up.Filename) == imaging.MimeTypeSVG &&
		bytes.Contains(data, []byte("<svg")) {
		mimeType = imaging.MimeTypeSVG
	}
	if !AllowedMimeTypes[mimeType] {
		return store.Media{}, fmt.Errorf("%w: %s", ErrFileType, mimeType)
	}

	fileUUID := uuid.New().String()
	filename := sanitizeFilename(up.Filename)

	params := store.CreateMediaParams{
		WebsiteID: up.WebsiteID,
		Uuid:      fileUUID,
		Filename:  filename,
		MimeType:  mimeType,
		Size:      int64(len(data)),
	}
	if s.processor.IsImage(mimeType) {
		res, err := s.processor.ProcessImage(bytes.NewReader(data), fileUUID, filename)
		if err != nil {
			return store.Media{}, fmt.Errorf("processing image: %w", err)
		}
		params.Path = s.publicPath(res.RelPath)
		params.Filename = path.Base(res.RelPath)
		params.MimeType = res.MimeType
		params.Size = res.Size
		params.Width = int64(res.Width)
		params.Height = int64(res.Height)
	} else {
		rel, err := s.processor.StoreFile(data, fileUUID, filename)
		if err != nil {
			return store.Media{}, fmt.Errorf("storing file: %w", err)
		}
		params.Path = s.publicPath(rel)
	}

	now := s.now().UTC()
	params.CreatedAt, params.UpdatedAt = now, now

	var media store.Media
	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		media, err = q.CreateMedia(ctx, params)
		if err != nil {
			return fmt.Errorf("creating media record: %w", err)
		}
		for _, in := range up.Intls {
			if in.Locale == "" {
				continue
			}
			if _, err := q.UpsertMediaIntl(ctx, media.ID, in.Locale, strings.TrimSpace(in.Alt), strings.TrimSpace(in.Title)); err != nil {
				return fmt.Errorf("saving media intl: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if rmErr := s.processor.DeleteMediaFiles(fileUUID); rmErr != nil {
			s.logger.Warn("failed to clean up upload", "uuid", fileUUID, "error", rmErr)
		}
		return store.Media{}, err
	}

	s.logger.Info("media uploaded", "media_id", media.ID, "website_id", media.WebsiteID, "mime_type", media.MimeType)
	return media, nil
}

func (s *MediaService) publicPath(rel string) string {
	return path.Join(s.uploadsURL, filepath.ToSlash(rel))
}

// SetIntls saves the alt and title of a media per locale.
func (s *MediaService) SetIntls(ctx context.Context, mediaID int64, intls []MediaIntl) error {
	var websiteID int64
	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		media, err := q.GetMedia(ctx, mediaID)
		if err != nil {
			return err
		}
		websiteID = media.WebsiteID
		for _, in := range intls {
			if _, err := q.UpsertMediaIntl(ctx, mediaID, in.Locale, strings.TrimSpace(in.Alt), strings.TrimSpace(in.Title)); err != nil {
				return fmt.Errorf("saving media intl: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, websiteID)
	return nil
}

// Delete removes a media with its relations, crop boxes, generated
// thumbnails and original file.
func (s *MediaService) Delete(ctx context.Context, mediaID int64) error {
	queries := store.New(s.db)

	media, err := queries.GetMedia(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("failed to get media: %w", err)
	}
	if err := queries.DeleteMedia(ctx, mediaID); err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	if s.thumbs != nil {
		if err := s.thumbs.Purge(mediaID); err != nil {
			s.logger.Warn("failed to purge thumbnails", "media_id", mediaID, "error", err)
		}
	}
	// DB rows are already gone; leftover files are only logged.
	if err := s.processor.DeleteMediaFiles(media.Uuid); err != nil {
		s.logger.Warn("failed to delete media files", "media_id", mediaID, "error", err)
	}
	s.invalidate(ctx, media.WebsiteID)
	return nil
}

// URL returns the public URL path of a media original.
func (s *MediaService) URL(media store.Media) string {
	return "/" + strings.TrimPrefix(media.Path, "/")
}

func (s *MediaService) invalidate(ctx context.Context, websiteID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWebsite(ctx, websiteID); err != nil {
		s.logger.Warn("cache invalidation failed", "website_id", websiteID, "error", err)
	}
}

// Helper functions

func sanitizeFilename(filename string) string {
	// Remove path separators
	filename = path.Base(filepath.ToSlash(filename))

	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	filename = replacer.Replace(filename)
	if filename == "." || filename == ".." || filename == "/" {
		filename = "file"
	}

	// Ensure we have an extension
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}
	return filename
}

func getMimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return imaging.MimeTypeJPEG
	case ".png":
		return imaging.MimeTypePNG
	case ".gif":
		return imaging.MimeTypeGIF
	case ".webp":
		return imaging.MimeTypeWebP
	case ".svg":
		return imaging.MimeTypeSVG
	case ".pdf":
		return imaging.MimeTypePDF
	default:
		return "application/octet-stream"
	}
}
