// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook notifies external endpoints of content changes. Each
// subscribed webhook gets a delivery row that is posted with an HMAC
// signature and retried with exponential backoff.
package webhook

import (
	"slices"
	"time"
)

// Event types a webhook can subscribe to.
const (
	EventContentChanged   = "content.changed"
	EventContentPublished = "content.published"
	EventTest             = "webhook.test"
)

// Events returns every subscribable event type.
func Events() []string {
	return []string{EventContentChanged, EventContentPublished, EventTest}
}

// IsEvent reports whether name is a known event type.
func IsEvent(name string) bool {
	return slices.Contains(Events(), name)
}

// Event is one notification for the webhooks of a website.
type Event struct {
	Type      string    `json:"type"`
	WebsiteID int64     `json:"website_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(websiteID int64, eventType string, data any) *Event {
	return &Event{
		Type:      eventType,
		WebsiteID: websiteID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ChangeEventData reports a committed write on an entity type.
type ChangeEventData struct {
	Entity string `json:"entity"`
}

// PublicationEventData lists the entities whose publication window
// opened or closed, by entity type.
type PublicationEventData struct {
	Published   map[string][]int64 `json:"published,omitempty"`
	Unpublished map[string][]int64 `json:"unpublished,omitempty"`
}

// TestEventData is the payload of a manual test delivery.
type TestEventData struct {
	Message   string    `json:"message"`
	WebhookID int64     `json:"webhook_id"`
	Timestamp time.Time `json:"timestamp"`
}
