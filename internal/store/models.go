// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type Website struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SiteUrl   string    `json:"site_url"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Domain struct {
	ID        int64     `json:"id"`
	WebsiteID int64     `json:"website_id"`
	Host      string    `json:"host"`
	Locale    string    `json:"locale"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type Language struct {
	ID        int64     `json:"id"`
	WebsiteID int64     `json:"website_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	IsActive  bool      `json:"is_active"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type Color struct {
	ID        int64  `json:"id"`
	WebsiteID int64  `json:"website_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Hex       string `json:"hex"`
	Category  string `json:"category"`
	IsActive  bool   `json:"is_active"`
	Position  int64  `json:"position"`
}

type Page struct {
	ID               int64         `json:"id"`
	WebsiteID        int64         `json:"website_id"`
	ParentID         sql.NullInt64 `json:"parent_id"`
	AdminName        string        `json:"admin_name"`
	Slug             string        `json:"slug"`
	Template         string        `json:"template"`
	Position         int64         `json:"position"`
	Level            int64         `json:"level"`
	IsIndex          bool          `json:"is_index"`
	IsOnline         bool          `json:"is_online"`
	PublicationStart sql.NullTime  `json:"publication_start"`
	PublicationEnd   sql.NullTime  `json:"publication_end"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type PageIntl struct {
	ID           int64     `json:"id"`
	PageID       int64     `json:"page_id"`
	Locale       string    `json:"locale"`
	Title        string    `json:"title"`
	Introduction string    `json:"introduction"`
	Body         string    `json:"body"`
	BodyHtml     string    `json:"body_html"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Url struct {
	ID          int64     `json:"id"`
	WebsiteID   int64     `json:"website_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	Locale      string    `json:"locale"`
	Code        string    `json:"code"`
	IsOnline    bool      `json:"is_online"`
	IsIndexable bool      `json:"is_indexable"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Seo struct {
	ID              int64         `json:"id"`
	UrlID           int64         `json:"url_id"`
	MetaTitle       string        `json:"meta_title"`
	MetaDescription string        `json:"meta_description"`
	CanonicalUrl    string        `json:"canonical_url"`
	NoIndex         bool          `json:"no_index"`
	NoFollow        bool          `json:"no_follow"`
	OgTitle         string        `json:"og_title"`
	OgDescription   string        `json:"og_description"`
	OgMediaID       sql.NullInt64 `json:"og_media_id"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type Layout struct {
	ID     int64 `json:"id"`
	PageID int64 `json:"page_id"`
}

type Zone struct {
	ID       int64  `json:"id"`
	LayoutID int64  `json:"layout_id"`
	Position int64  `json:"position"`
	Fullsize bool   `json:"fullsize"`
	CssClass string `json:"css_class"`
}

type Col struct {
	ID       int64 `json:"id"`
	ZoneID   int64 `json:"zone_id"`
	Position int64 `json:"position"`
	Size     int64 `json:"size"`
}

type Block struct {
	ID        int64  `json:"id"`
	ColID     int64  `json:"col_id"`
	Position  int64  `json:"position"`
	BlockType string `json:"block_type"`
	Content   string `json:"content"`
	Settings  string `json:"settings"`
}

type Menu struct {
	ID        int64     `json:"id"`
	WebsiteID int64     `json:"website_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	MaxLevel  int64     `json:"max_level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Link struct {
	ID           int64         `json:"id"`
	MenuID       int64         `json:"menu_id"`
	ParentID     sql.NullInt64 `json:"parent_id"`
	Locale       string        `json:"locale"`
	Title        string        `json:"title"`
	TargetPageID sql.NullInt64 `json:"target_page_id"`
	TargetUrl    string        `json:"target_url"`
	TargetStyle  string        `json:"target_style"`
	Position     int64         `json:"position"`
	Level        int64         `json:"level"`
	IsOnline     bool          `json:"is_online"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type Form struct {
	ID            int64     `json:"id"`
	WebsiteID     int64     `json:"website_id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Receivers     string    `json:"receivers"`
	ThanksMessage string    `json:"thanks_message"`
	IsOnline      bool      `json:"is_online"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type FormField struct {
	ID          int64  `json:"id"`
	FormID      int64  `json:"form_id"`
	Slug        string `json:"slug"`
	FieldType   string `json:"field_type"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	IsRequired  bool   `json:"is_required"`
	Choices     string `json:"choices"`
	Position    int64  `json:"position"`
}

type Newsletter struct {
	ID             int64     `json:"id"`
	WebsiteID      int64     `json:"website_id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	ExternalListID string    `json:"external_list_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type NewsletterEmail struct {
	ID           int64     `json:"id"`
	NewsletterID int64     `json:"newsletter_id"`
	Email        string    `json:"email"`
	Locale       string    `json:"locale"`
	CreatedAt    time.Time `json:"created_at"`
}

type Catalog struct {
	ID        int64     `json:"id"`
	WebsiteID int64     `json:"website_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CatalogCategory struct {
	ID        int64  `json:"id"`
	CatalogID int64  `json:"catalog_id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Position  int64  `json:"position"`
}

type Product struct {
	ID               int64        `json:"id"`
	CatalogID        int64        `json:"catalog_id"`
	Slug             string       `json:"slug"`
	Reference        string       `json:"reference"`
	Position         int64        `json:"position"`
	IsOnline         bool         `json:"is_online"`
	PublicationStart sql.NullTime `json:"publication_start"`
	PublicationEnd   sql.NullTime `json:"publication_end"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

type ProductIntl struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	Locale       string `json:"locale"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	Body         string `json:"body"`
	BodyHtml     string `json:"body_html"`
}

type Feature struct {
	ID        int64     `json:"id"`
	WebsiteID int64     `json:"website_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	AsFilter  bool      `json:"as_filter"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type FeatureValue struct {
	ID        int64  `json:"id"`
	FeatureID int64  `json:"feature_id"`
	Slug      string `json:"slug"`
	Label     string `json:"label"`
	Position  int64  `json:"position"`
}

type FeatureValueIntl struct {
	ID      int64  `json:"id"`
	ValueID int64  `json:"value_id"`
	Locale  string `json:"locale"`
	Label   string `json:"label"`
}

type FeatureValueProduct struct {
	ID          int64         `json:"id"`
	ProductID   int64         `json:"product_id"`
	FeatureID   int64         `json:"feature_id"`
	ValueID     sql.NullInt64 `json:"value_id"`
	CustomValue string        `json:"custom_value"`
	Locale      string        `json:"locale"`
	Position    int64         `json:"position"`
	JsonValues  string        `json:"json_values"`
}

type NewscastCategory struct {
	ID        int64  `json:"id"`
	WebsiteID int64  `json:"website_id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Position  int64  `json:"position"`
}

type Newscast struct {
	ID              int64         `json:"id"`
	WebsiteID       int64         `json:"website_id"`
	CategoryID      sql.NullInt64 `json:"category_id"`
	Slug            string        `json:"slug"`
	IsOnline        bool          `json:"is_online"`
	PublicationDate sql.NullTime  `json:"publication_date"`
	PublicationEnd  sql.NullTime  `json:"publication_end"`
	StartDate       sql.NullTime  `json:"start_date"`
	EndDate         sql.NullTime  `json:"end_date"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type NewscastIntl struct {
	ID           int64  `json:"id"`
	NewscastID   int64  `json:"newscast_id"`
	Locale       string `json:"locale"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	Body         string `json:"body"`
	BodyHtml     string `json:"body_html"`
}

type ContentTable struct {
	ID        int64     `json:"id"`
	WebsiteID int64     `json:"website_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	HeadRow   bool      `json:"head_row"`
	CreatedAt time.Time `json:"created_at"`
}

type TableCol struct {
	ID       int64 `json:"id"`
	TableID  int64 `json:"table_id"`
	Position int64 `json:"position"`
}

type TableCell struct {
	ID          int64  `json:"id"`
	ColID       int64  `json:"col_id"`
	RowPosition int64  `json:"row_position"`
	Locale      string `json:"locale"`
	Content     string `json:"content"`
}

type Media struct {
	ID        int64     `json:"id"`
	WebsiteID int64     `json:"website_id"`
	Uuid      string    `json:"uuid"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	MimeType  string    `json:"mime_type"`
	Width     int64     `json:"width"`
	Height    int64     `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MediaIntl struct {
	ID      int64  `json:"id"`
	MediaID int64  `json:"media_id"`
	Locale  string `json:"locale"`
	Alt     string `json:"alt"`
	Title   string `json:"title"`
}

type MediaRelation struct {
	ID         int64  `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Locale     string `json:"locale"`
	MediaID    int64  `json:"media_id"`
	Position   int64  `json:"position"`
	IsMain     bool   `json:"is_main"`
}

type ThumbConfiguration struct {
	ID        int64  `json:"id"`
	WebsiteID int64  `json:"website_id"`
	Slug      string `json:"slug"`
	Screen    string `json:"screen"`
	Width     int64  `json:"width"`
	Height    int64  `json:"height"`
	Crop      bool   `json:"crop"`
	Quality   int64  `json:"quality"`
}

type Thumb struct {
	ID              int64     `json:"id"`
	MediaID         int64     `json:"media_id"`
	ConfigurationID int64     `json:"configuration_id"`
	CropX           int64     `json:"crop_x"`
	CropY           int64     `json:"crop_y"`
	CropWidth       int64     `json:"crop_width"`
	CropHeight      int64     `json:"crop_height"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Listing struct {
	ID           int64     `json:"id"`
	WebsiteID    int64     `json:"website_id"`
	Slug         string    `json:"slug"`
	Kind         string    `json:"kind"`
	EntityType   string    `json:"entity_type"`
	OrderBy      string    `json:"order_by"`
	ItemsPerPage int64     `json:"items_per_page"`
	NbItems      int64     `json:"nb_items"`
	AsEvents     bool      `json:"as_events"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

type ApiKey struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	KeyHash     string       `json:"-"`
	KeyPrefix   string       `json:"key_prefix"`
	Permissions string       `json:"permissions"`
	IsActive    bool         `json:"is_active"`
	ExpiresAt   sql.NullTime `json:"expires_at"`
	LastUsedAt  sql.NullTime `json:"last_used_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Webhook struct {
	ID        int64     `json:"id"`
	WebsiteID int64     `json:"website_id"`
	Name      string    `json:"name"`
	Url       string    `json:"url"`
	Secret    string    `json:"-"`
	Events    string    `json:"events"`
	Headers   string    `json:"headers"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WebhookDelivery struct {
	ID           int64          `json:"id"`
	WebhookID    int64          `json:"webhook_id"`
	Event        string         `json:"event"`
	Payload      string         `json:"payload"`
	Status       string         `json:"status"`
	Attempts     int64          `json:"attempts"`
	ResponseCode sql.NullInt64  `json:"response_code"`
	ResponseBody sql.NullString `json:"response_body"`
	ErrorMessage sql.NullString `json:"error_message"`
	NextRetryAt  sql.NullTime   `json:"next_retry_at"`
	DeliveredAt  sql.NullTime   `json:"delivered_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
