// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Entity types, used as lifecycle keys and in polymorphic columns
// (urls.entity_type, media_relations.entity_type).
const (
	EntityWebsite             = "website"
	EntityDomain              = "domain"
	EntityLanguage            = "language"
	EntityColor               = "color"
	EntityPage                = "page"
	EntityLayout              = "layout"
	EntityZone                = "zone"
	EntityCol                 = "col"
	EntityBlock               = "block"
	EntityMenu                = "menu"
	EntityLink                = "link"
	EntityForm                = "form"
	EntityFormField           = "form_field"
	EntityNewsletter          = "newsletter"
	EntityCatalog             = "catalog"
	EntityCategory            = "category"
	EntityProduct             = "product"
	EntityFeature             = "feature"
	EntityFeatureValue        = "feature_value"
	EntityFeatureValueProduct = "feature_value_product"
	EntityNewscast            = "newscast"
	EntityNewscastCategory    = "newscast_category"
	EntityTable               = "table"
	EntityListing             = "listing"
	EntityMedia               = "media"
	EntityMediaRelation       = "media_relation"
	EntityThumbConfiguration  = "thumb_configuration"
)

// IsRoutable reports whether entities of type t own public urls.
func IsRoutable(t string) bool {
	switch t {
	case EntityPage, EntityProduct, EntityNewscast:
		return true
	}
	return false
}

// Screens a thumbnail configuration targets.
const (
	ScreenMobile  = "mobile"
	ScreenTablet  = "tablet"
	ScreenDesktop = "desktop"
)

// ScreenFallbacks lists, for each screen, the screens to try in order.
var ScreenFallbacks = map[string][]string{
	ScreenMobile:  {ScreenMobile, ScreenTablet, ScreenDesktop},
	ScreenTablet:  {ScreenTablet, ScreenDesktop},
	ScreenDesktop: {ScreenDesktop},
}

// IsScreen reports whether s is a known screen.
func IsScreen(s string) bool {
	_, ok := ScreenFallbacks[s]
	return ok
}

// Listing kinds.
const (
	ListingKindListing = "listing"
	ListingKindTeaser  = "teaser"
)

// Listing orders, written as field-direction.
const (
	OrderPositionAsc     = "position-asc"
	OrderPublicationDesc = "publicationDate-desc"
	OrderPublicationAsc  = "publicationDate-asc"
	OrderStartDateAsc    = "startDate-asc"
	OrderStartDateDesc   = "startDate-desc"
	OrderTitleAsc        = "title-asc"
	OrderTitleDesc       = "title-desc"
	OrderRandom          = "random"
)

// ListingOrders returns all accepted listing orders.
func ListingOrders() []string {
	return []string{
		OrderPositionAsc,
		OrderPublicationDesc,
		OrderPublicationAsc,
		OrderStartDateAsc,
		OrderStartDateDesc,
		OrderTitleAsc,
		OrderTitleDesc,
		OrderRandom,
	}
}

// Link targets.
const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

// Block types of a layout column.
const (
	BlockText  = "text"
	BlockMedia = "media"
	BlockTable = "table"
	BlockForm  = "form"
	BlockList  = "listing"
	BlockHTML  = "html"
)

// BlockTypes returns all block types accepted in a layout.
func BlockTypes() []string {
	return []string{BlockText, BlockMedia, BlockTable, BlockForm, BlockList, BlockHTML}
}

// Form field types.
const (
	FieldText     = "text"
	FieldEmail    = "email"
	FieldTextarea = "textarea"
	FieldChoice   = "choice"
	FieldCheckbox = "checkbox"
	FieldDate     = "date"
	FieldFile     = "file"
)

// FormFieldTypes returns every accepted form field type.
func FormFieldTypes() []string {
	return []string{FieldText, FieldEmail, FieldTextarea, FieldChoice, FieldCheckbox, FieldDate, FieldFile}
}

// Color palette categories.
const (
	ColorBackground = "background"
	ColorText       = "text"
	ColorButton     = "button"
)
