// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const webhookColumns = `id, website_id, name, url, secret, events, headers, is_active, created_at, updated_at`

func scanWebhook(r rowScanner) (Webhook, error) {
	var i Webhook
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Name, &i.Url, &i.Secret, &i.Events, &i.Headers, &i.IsActive,
		&i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createWebhook = `-- name: CreateWebhook :one
INSERT INTO webhooks (website_id, name, url, secret, events, headers, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + webhookColumns

type CreateWebhookParams struct {
	WebsiteID int64     `json:"website_id"`
	Name      string    `json:"name"`
	Url       string    `json:"url"`
	Secret    string    `json:"secret"`
	Events    string    `json:"events"`
	Headers   string    `json:"headers"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateWebhook(ctx context.Context, arg CreateWebhookParams) (Webhook, error) {
	row := q.db.QueryRowContext(ctx, createWebhook, arg.WebsiteID, arg.Name, arg.Url, arg.Secret, arg.Events,
		arg.Headers, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	return scanWebhook(row)
}

const getWebhook = `-- name: GetWebhook :one
SELECT ` + webhookColumns + ` FROM webhooks WHERE id = ?`

func (q *Queries) GetWebhook(ctx context.Context, id int64) (Webhook, error) {
	return scanWebhook(q.db.QueryRowContext(ctx, getWebhook, id))
}

const listWebhooks = `-- name: ListWebhooks :many
SELECT ` + webhookColumns + ` FROM webhooks WHERE website_id = ? ORDER BY name, id`

func (q *Queries) ListWebhooks(ctx context.Context, websiteID int64) ([]Webhook, error) {
	rows, err := q.db.QueryContext(ctx, listWebhooks, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWebhook)
}

// The LIKE filter is coarse; callers check the decoded event list.
const listWebhooksForEvent = `-- name: ListWebhooksForEvent :many
SELECT ` + webhookColumns + ` FROM webhooks
WHERE website_id = ? AND is_active = 1 AND events LIKE '%"' || ? || '"%'
ORDER BY id`

func (q *Queries) ListWebhooksForEvent(ctx context.Context, websiteID int64, event string) ([]Webhook, error) {
	rows, err := q.db.QueryContext(ctx, listWebhooksForEvent, websiteID, event)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWebhook)
}

const updateWebhook = `-- name: UpdateWebhook :one
UPDATE webhooks SET name = ?, url = ?, secret = ?, events = ?, headers = ?, is_active = ?, updated_at = ?
WHERE id = ?
RETURNING ` + webhookColumns

type UpdateWebhookParams struct {
	Name      string    `json:"name"`
	Url       string    `json:"url"`
	Secret    string    `json:"secret"`
	Events    string    `json:"events"`
	Headers   string    `json:"headers"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateWebhook(ctx context.Context, arg UpdateWebhookParams) (Webhook, error) {
	row := q.db.QueryRowContext(ctx, updateWebhook, arg.Name, arg.Url, arg.Secret, arg.Events, arg.Headers,
		arg.IsActive, arg.UpdatedAt, arg.ID)
	return scanWebhook(row)
}

const deleteWebhook = `-- name: DeleteWebhook :exec
DELETE FROM webhooks WHERE id = ?`

func (q *Queries) DeleteWebhook(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteWebhook, id)
	return err
}

const deliveryColumns = `id, webhook_id, event, payload, status, attempts, response_code, response_body, error_message,
next_retry_at, delivered_at, created_at, updated_at`

func scanWebhookDelivery(r rowScanner) (WebhookDelivery, error) {
	var i WebhookDelivery
	err := r.Scan(&i.ID, &i.WebhookID, &i.Event, &i.Payload, &i.Status, &i.Attempts, &i.ResponseCode,
		&i.ResponseBody, &i.ErrorMessage, &i.NextRetryAt, &i.DeliveredAt, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createWebhookDelivery = `-- name: CreateWebhookDelivery :one
INSERT INTO webhook_deliveries (webhook_id, event, payload, status, attempts, created_at, updated_at)
VALUES (?, ?, ?, 'pending', 0, ?, ?)
RETURNING ` + deliveryColumns

type CreateWebhookDeliveryParams struct {
	WebhookID int64     `json:"webhook_id"`
	Event     string    `json:"event"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateWebhookDelivery(ctx context.Context, arg CreateWebhookDeliveryParams) (WebhookDelivery, error) {
	row := q.db.QueryRowContext(ctx, createWebhookDelivery, arg.WebhookID, arg.Event, arg.Payload, arg.CreatedAt, arg.UpdatedAt)
	return scanWebhookDelivery(row)
}

const getWebhookDelivery = `-- name: GetWebhookDelivery :one
SELECT ` + deliveryColumns + ` FROM webhook_deliveries WHERE id = ?`

func (q *Queries) GetWebhookDelivery(ctx context.Context, id int64) (WebhookDelivery, error) {
	return scanWebhookDelivery(q.db.QueryRowContext(ctx, getWebhookDelivery, id))
}

const listWebhookDeliveries = `-- name: ListWebhookDeliveries :many
SELECT ` + deliveryColumns + ` FROM webhook_deliveries WHERE webhook_id = ?
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListWebhookDeliveries(ctx context.Context, webhookID, limit, offset int64) ([]WebhookDelivery, error) {
	rows, err := q.db.QueryContext(ctx, listWebhookDeliveries, webhookID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWebhookDelivery)
}

const countWebhookDeliveries = `-- name: CountWebhookDeliveries :one
SELECT COUNT(*) FROM webhook_deliveries WHERE webhook_id = ?`

func (q *Queries) CountWebhookDeliveries(ctx context.Context, webhookID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countWebhookDeliveries, webhookID).Scan(&n)
	return n, err
}

// Deliveries never attempted have no retry time and are due at once.
// Claims older than staleBefore belong to an interrupted worker.
const listDueDeliveries = `-- name: ListDueDeliveries :many
SELECT ` + deliveryColumns + ` FROM webhook_deliveries
WHERE (status = 'pending' AND (next_retry_at IS NULL OR next_retry_at <= ?))
   OR (status = 'sending' AND updated_at <= ?)
ORDER BY id LIMIT ?`

func (q *Queries) ListDueDeliveries(ctx context.Context, now, staleBefore time.Time, limit int64) ([]WebhookDelivery, error) {
	rows, err := q.db.QueryContext(ctx, listDueDeliveries, now, staleBefore, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWebhookDelivery)
}

const claimDelivery = `-- name: ClaimDelivery :execrows
UPDATE webhook_deliveries SET status = 'sending', updated_at = ?
WHERE id = ? AND (status = 'pending' OR (status = 'sending' AND updated_at <= ?))`

// ClaimDelivery marks a delivery as being sent. It reports false when
// another worker holds it or it is already finished.
func (q *Queries) ClaimDelivery(ctx context.Context, id int64, now, staleBefore time.Time) (bool, error) {
	res, err := q.db.ExecContext(ctx, claimDelivery, now, id, staleBefore)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

const updateDeliverySuccess = `-- name: UpdateDeliverySuccess :exec
UPDATE webhook_deliveries
SET status = 'delivered', attempts = attempts + 1, response_code = ?, response_body = ?, error_message = NULL,
    next_retry_at = NULL, delivered_at = ?, updated_at = ?
WHERE id = ?`

type UpdateDeliverySuccessParams struct {
	ResponseCode sql.NullInt64  `json:"response_code"`
	ResponseBody sql.NullString `json:"response_body"`
	DeliveredAt  sql.NullTime   `json:"delivered_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ID           int64          `json:"id"`
}

func (q *Queries) UpdateDeliverySuccess(ctx context.Context, arg UpdateDeliverySuccessParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliverySuccess, arg.ResponseCode, arg.ResponseBody, arg.DeliveredAt,
		arg.UpdatedAt, arg.ID)
	return err
}

const updateDeliveryRetry = `-- name: UpdateDeliveryRetry :exec
UPDATE webhook_deliveries
SET status = 'pending', attempts = attempts + 1, response_code = ?, response_body = ?, error_message = ?,
    next_retry_at = ?, updated_at = ?
WHERE id = ?`

type UpdateDeliveryRetryParams struct {
	ResponseCode sql.NullInt64  `json:"response_code"`
	ResponseBody sql.NullString `json:"response_body"`
	ErrorMessage sql.NullString `json:"error_message"`
	NextRetryAt  sql.NullTime   `json:"next_retry_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ID           int64          `json:"id"`
}

func (q *Queries) UpdateDeliveryRetry(ctx context.Context, arg UpdateDeliveryRetryParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliveryRetry, arg.ResponseCode, arg.ResponseBody, arg.ErrorMessage,
		arg.NextRetryAt, arg.UpdatedAt, arg.ID)
	return err
}

const updateDeliveryDead = `-- name: UpdateDeliveryDead :exec
UPDATE webhook_deliveries
SET status = 'dead', attempts = attempts + 1, response_code = ?, error_message = ?, next_retry_at = NULL, updated_at = ?
WHERE id = ?`

type UpdateDeliveryDeadParams struct {
	ResponseCode sql.NullInt64  `json:"response_code"`
	ErrorMessage sql.NullString `json:"error_message"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ID           int64          `json:"id"`
}

func (q *Queries) UpdateDeliveryDead(ctx context.Context, arg UpdateDeliveryDeadParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliveryDead, arg.ResponseCode, arg.ErrorMessage, arg.UpdatedAt, arg.ID)
	return err
}

const deleteOldDeliveries = `-- name: DeleteOldDeliveries :execrows
DELETE FROM webhook_deliveries WHERE status IN ('delivered', 'dead') AND created_at < ?`

func (q *Queries) DeleteOldDeliveries(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteOldDeliveries, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const resetDeliveryForRetry = `-- name: ResetDeliveryForRetry :execrows
UPDATE webhook_deliveries SET status = 'pending', attempts = 0, next_retry_at = NULL, updated_at = ?
WHERE id = ? AND status = 'dead'`

// ResetDeliveryForRetry revives a dead delivery with a fresh attempt budget.
func (q *Queries) ResetDeliveryForRetry(ctx context.Context, id int64, now time.Time) (bool, error) {
	res, err := q.db.ExecContext(ctx, resetDeliveryForRetry, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
