// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/mcms-go/internal/store"
)

// Delivery configuration constants
const (
	MaxAttempts    = 5                // Maximum number of delivery attempts
	InitialBackoff = 1 * time.Minute  // Initial backoff delay
	MaxBackoff     = 24 * time.Hour   // Maximum backoff delay
	RequestTimeout = 30 * time.Second // HTTP request timeout
	ClaimTimeout   = 5 * time.Minute  // A claim older than this is taken over
	MaxResponseLen = 10 * 1024        // Maximum response body to store (10KB)
	UserAgent      = "mCMS/dev"       // Default User-Agent header value

	retryBatch = 100
)

// DeliveryResult represents the result of a delivery attempt.
type DeliveryResult struct {
	Success      bool
	StatusCode   int
	ResponseBody string
	Error        error
	ShouldRetry  bool
}

var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Deliver claims a delivery, posts it and records the outcome. A
// delivery another worker holds, or one already finished, is returned
// unchanged.
func (d *Dispatcher) Deliver(ctx context.Context, deliveryID int64) (store.WebhookDelivery, error) {
	now := d.now().UTC()
	claimed, err := d.queries.ClaimDelivery(ctx, deliveryID, now, now.Add(-ClaimTimeout))
	if err != nil {
		return store.WebhookDelivery{}, fmt.Errorf("claiming delivery %d: %w", deliveryID, err)
	}
	record, err := d.queries.GetWebhookDelivery(ctx, deliveryID)
	if err != nil {
		return store.WebhookDelivery{}, fmt.Errorf("loading delivery %d: %w", deliveryID, err)
	}
	if !claimed {
		d.logger.Debug("delivery not claimable", "delivery_id", deliveryID, "status", record.Status)
		return record, nil
	}

	wh, err := d.queries.GetWebhook(ctx, record.WebhookID)
	if err != nil {
		return record, fmt.Errorf("loading webhook %d: %w", record.WebhookID, err)
	}

	var result DeliveryResult
	if !wh.IsActive && record.Event != EventTest {
		result = DeliveryResult{Error: errors.New("webhook is inactive")}
	} else {
		result = d.attemptDelivery(ctx, wh, record)
	}
	if err := d.saveResult(ctx, record, result); err != nil {
		return record, err
	}
	return d.queries.GetWebhookDelivery(ctx, deliveryID)
}

func (d *Dispatcher) saveResult(ctx context.Context, record store.WebhookDelivery, result DeliveryResult) error {
	now := d.now().UTC()
	code := sql.NullInt64{Int64: int64(result.StatusCode), Valid: result.StatusCode > 0}
	body := sql.NullString{String: result.ResponseBody, Valid: result.ResponseBody != ""}
	errMsg := ""
	if result.Error != nil {
		errMsg = result.Error.Error()
	}
	errText := sql.NullString{String: errMsg, Valid: errMsg != ""}

	if result.Success {
		err := d.queries.UpdateDeliverySuccess(ctx, store.UpdateDeliverySuccessParams{
			ResponseCode: code,
			ResponseBody: body,
			DeliveredAt:  sql.NullTime{Time: now, Valid: true},
			UpdatedAt:    now,
			ID:           record.ID,
		})
		if err != nil {
			return fmt.Errorf("recording delivery %d success: %w", record.ID, err)
		}
		d.logger.Info("webhook delivered successfully",
			"delivery_id", record.ID,
			"webhook_id", record.WebhookID,
			"status_code", result.StatusCode)
		return nil
	}

	attempts := record.Attempts + 1
	if !result.ShouldRetry || attempts >= MaxAttempts {
		err := d.queries.UpdateDeliveryDead(ctx, store.UpdateDeliveryDeadParams{
			ResponseCode: code,
			ErrorMessage: errText,
			UpdatedAt:    now,
			ID:           record.ID,
		})
		if err != nil {
			return fmt.Errorf("recording delivery %d as dead: %w", record.ID, err)
		}
		d.logger.Warn("webhook delivery marked as dead",
			"delivery_id", record.ID,
			"webhook_id", record.WebhookID,
			"attempts", attempts,
			"reason", errMsg)
		return nil
	}

	backoff := calculateBackoff(attempts)
	nextRetry := now.Add(backoff)
	err := d.queries.UpdateDeliveryRetry(ctx, store.UpdateDeliveryRetryParams{
		ResponseCode: code,
		ResponseBody: body,
		ErrorMessage: errText,
		NextRetryAt:  sql.NullTime{Time: nextRetry, Valid: true},
		UpdatedAt:    now,
		ID:           record.ID,
	})
	if err != nil {
		return fmt.Errorf("scheduling delivery %d retry: %w", record.ID, err)
	}
	d.logger.Info("webhook delivery scheduled for retry",
		"delivery_id", record.ID,
		"webhook_id", record.WebhookID,
		"attempt", attempts,
		"next_retry_at", nextRetry.Format(time.RFC3339),
		"backoff", backoff.String())
	return nil
}

// attemptDelivery performs the HTTP POST.
func (d *Dispatcher) attemptDelivery(ctx context.Context, wh store.Webhook, record store.WebhookDelivery) DeliveryResult {
	payload := []byte(record.Payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.Url, bytes.NewReader(payload))
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("failed to create request: %w", err),
			ShouldRetry: false, // Bad URL, don't retry
		}
	}

	// Custom headers first so they cannot replace the signature.
	for key, value := range ParseHeaders(wh.Headers) {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.agent)
	req.Header.Set("X-Webhook-Signature", GenerateSignature(payload, wh.Secret))
	req.Header.Set("X-Webhook-Event", record.Event)
	req.Header.Set("X-Webhook-Delivery-ID", strconv.FormatInt(record.ID, 10))

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("request failed: %w", err),
			ShouldRetry: true, // Network error, retry
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	responseBody := string(body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return DeliveryResult{
			Success:      true,
			StatusCode:   resp.StatusCode,
			ResponseBody: responseBody,
		}
	}

	httpErr := fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		// Client errors are final except 408 and 429.
		return DeliveryResult{
			StatusCode:   resp.StatusCode,
			ResponseBody: responseBody,
			Error:        httpErr,
			ShouldRetry:  resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	return DeliveryResult{
		StatusCode:   resp.StatusCode,
		ResponseBody: responseBody,
		Error:        httpErr,
		ShouldRetry:  true,
	}
}

// calculateBackoff returns InitialBackoff * 2^(attempt-1), capped at MaxBackoff.
func calculateBackoff(attempt int64) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	backoff := time.Duration(float64(InitialBackoff) * math.Pow(2, float64(attempt-1)))
	if backoff > MaxBackoff {
		backoff = MaxBackoff
	}
	return backoff
}
