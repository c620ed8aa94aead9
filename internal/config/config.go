// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"MCMS_DB_PATH" envDefault:"./data/mcms.db"`
	ServerHost string `env:"MCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"MCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"MCMS_LOG_LEVEL" envDefault:"info"`

	// Filesystem layout. Uploads and thumbnails live below the public tree.
	PublicDir  string `env:"MCMS_PUBLIC_DIR" envDefault:"./public"`
	UploadsDir string `env:"MCMS_UPLOADS_DIR" envDefault:"uploads"`
	ThumbsDir  string `env:"MCMS_THUMBS_DIR" envDefault:"thumbnails"`
	ThemesDir  string `env:"MCMS_THEMES_DIR" envDefault:"./themes"`
	FontsDir   string `env:"MCMS_FONTS_DIR" envDefault:"./public/fonts"`
	IconsDir   string `env:"MCMS_ICONS_DIR" envDefault:"./public/icons"`
	CacheDir   string `env:"MCMS_CACHE_DIR" envDefault:"./var/cache"`

	// Thumbnail generation
	ThumbQuality int    `env:"MCMS_THUMB_QUALITY" envDefault:"85"`
	Placeholder  string `env:"MCMS_PLACEHOLDER" envDefault:"images/placeholder.jpg"`

	// Cache configuration
	RedisURL     string `env:"MCMS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"MCMS_CACHE_PREFIX" envDefault:"mcms:"`   // Redis key prefix
	CacheTTL     int    `env:"MCMS_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"MCMS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// GeoIP configuration
	GeoIPDBPath string `env:"MCMS_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// API rate limiting (requests per second per key / per IP)
	APIRateLimit float64 `env:"MCMS_API_RATE_LIMIT" envDefault:"10"`
	APIRateBurst int     `env:"MCMS_API_RATE_BURST" envDefault:"20"`

	// SEO defaults
	DefaultOGImage string `env:"MCMS_SEO_OG_IMAGE"`
	TwitterHandle  string `env:"MCMS_SEO_TWITTER"`
	RobotsDisallow bool   `env:"MCMS_ROBOTS_DISALLOW_ALL" envDefault:"false"` // block crawlers on staging

	// JobSchedules overrides cron schedules by job name,
	// e.g. "sitemaps=0 */6 * * *;events=0 4 * * *".
	JobSchedules map[string]string `env:"MCMS_JOB_SCHEDULES" envSeparator:";" envKeyValSeparator:"="`

	// Seeding configuration
	DoSeed bool `env:"MCMS_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// UploadsPath returns the absolute-or-relative uploads directory below the public tree.
func (c Config) UploadsPath() string {
	return filepath.Join(c.PublicDir, c.UploadsDir)
}

// ThumbsPath returns the generated thumbnails directory below the public tree.
func (c Config) ThumbsPath() string {
	return filepath.Join(c.PublicDir, c.ThumbsDir)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("MCMS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.ThumbQuality < 1 || c.ThumbQuality > 100 {
		return fmt.Errorf("MCMS_THUMB_QUALITY must be between 1 and 100, got %d", c.ThumbQuality)
	}
	if c.APIRateLimit <= 0 {
		return fmt.Errorf("MCMS_API_RATE_LIMIT must be positive, got %v", c.APIRateLimit)
	}
	if c.APIRateBurst < 1 {
		return fmt.Errorf("MCMS_API_RATE_BURST must be at least 1, got %d", c.APIRateBurst)
	}
	switch c.Env {
	case "development", "production", "test":
	default:
		return fmt.Errorf("MCMS_ENV must be development, production or test, got %q", c.Env)
	}
	return nil
}
